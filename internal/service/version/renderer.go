package version

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	domain "github.com/oshokin/app-version/internal/domain/version"
)

const (
	// DefaultFormat is rendered when no format name is given.
	DefaultFormat = "full"
	// VersionFormat is the format rendered by Current.
	VersionFormat = "version"

	placeholderOpen  = "{$"
	placeholderClose = "}"

	// maxPasses bounds substitution so cyclic format references terminate.
	maxPasses = 64
)

// Renderer expands format templates against the stored record.
//
// A template holds {$name} placeholders, resolved from current.<name> first
// and format.<name> second, and optional segments matched by the configured
// bracket pattern, which disappear when their payload is empty.
type Renderer struct {
	store *Store

	// pattern caches the compiled bracket pattern by its source text.
	pattern       *regexp.Regexp
	patternSource string
	mu            sync.Mutex
}

// NewRenderer creates a renderer over store.
func NewRenderer(store *Store) *Renderer {
	return &Renderer{store: store}
}

// Format renders format.<name>. An empty name renders the default format.
// The second result is false when no such format exists.
func (r *Renderer) Format(name string) (string, bool) {
	if name == "" {
		name = DefaultFormat
	}

	template, ok := r.store.Scalar(domain.PathFormats + "." + name)
	if !ok {
		return "", false
	}

	return r.Expand(template), true
}

// Current renders format.version.
func (r *Renderer) Current() string {
	template, _ := r.store.Scalar(domain.PathFormats + "." + VersionFormat)

	return r.Expand(template)
}

// Expand substitutes variables until the text is stable, then removes or
// unwraps optional segments until none are left.
func (r *Renderer) Expand(template string) string {
	text := template

	for range maxPasses {
		next := r.substitute(text)
		if next == text {
			break
		}

		text = next
	}

	pattern, err := r.bracketPattern()
	if err != nil || pattern == nil {
		return text
	}

	return elide(pattern, text)
}

// Validate reports whether the configured bracket pattern compiles and
// exposes the named groups the renderer relies on.
func (r *Renderer) Validate() error {
	_, err := r.bracketPattern()

	return err
}

// substitute performs one pass: it resolves placeholders from the top of the
// text until one cannot be resolved.
func (r *Renderer) substitute(text string) string {
	for range maxPasses {
		placeholder, name, found := firstPlaceholder(text)
		if !found {
			return text
		}

		value, ok := r.resolve(name)
		if !ok {
			return text
		}

		replaced := strings.ReplaceAll(text, placeholder, value)
		if replaced == text {
			return text
		}

		text = replaced
	}

	return text
}

// resolve looks name up in current values first, then in formats.
func (r *Renderer) resolve(name string) (string, bool) {
	if value, ok := r.store.Scalar(domain.PathCurrentNamespace + "." + name); ok {
		return value, true
	}

	if format, ok := r.store.Scalar(domain.PathFormats + "." + name); ok && format != "" {
		return format, true
	}

	return "", false
}

// bracketPattern compiles format.regex.optional_bracket, reusing the last
// compilation while the source text is unchanged. A missing pattern disables elision.
func (r *Renderer) bracketPattern() (*regexp.Regexp, error) {
	source, _ := r.store.Scalar(domain.PathOptionalBracket)

	r.mu.Lock()
	defer r.mu.Unlock()

	if source == r.patternSource && (r.pattern != nil || source == "") {
		return r.pattern, nil
	}

	if source == "" {
		r.pattern, r.patternSource = nil, ""

		return nil, nil
	}

	pattern, err := regexp.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", domain.PathOptionalBracket, err)
	}

	for _, group := range []string{"prefix", "spaces", "optional"} {
		if pattern.SubexpIndex(group) < 0 {
			return nil, fmt.Errorf("%s: missing named group %q", domain.PathOptionalBracket, group)
		}
	}

	r.pattern, r.patternSource = pattern, source

	return pattern, nil
}

// firstPlaceholder finds the leftmost, shortest {$name} in text.
func firstPlaceholder(text string) (placeholder, name string, found bool) {
	start := strings.Index(text, placeholderOpen)
	if start < 0 {
		return "", "", false
	}

	length := strings.Index(text[start+len(placeholderOpen):], placeholderClose)
	if length < 0 {
		return "", "", false
	}

	end := start + len(placeholderOpen) + length + len(placeholderClose)

	return text[start:end], text[start+len(placeholderOpen) : end-len(placeholderClose)], true
}

// elide rewrites every optional segment: an empty payload removes the segment,
// a non-empty one keeps prefix, spaces and payload without the bracket syntax.
func elide(pattern *regexp.Regexp, text string) string {
	prefix := pattern.SubexpIndex("prefix")
	spaces := pattern.SubexpIndex("spaces")
	optional := pattern.SubexpIndex("optional")

	for range maxPasses {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			return text
		}

		var replacement string
		if strings.TrimSpace(match[optional]) != "" {
			replacement = match[prefix] + match[spaces] + match[optional]
		}

		replaced := strings.ReplaceAll(text, match[0], replacement)
		if replaced == text {
			return text
		}

		text = replaced
	}

	return text
}
