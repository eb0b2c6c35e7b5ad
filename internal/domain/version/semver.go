package version

import (
	"fmt"
	"regexp"
	"strings"
)

// tagPattern is the SemVer 2.0 grammar with an optional label prefix.
// A tag must start a line, follow whitespace or follow a slash (refs/tags/...),
// and may carry the peeled-tag suffix ^{} printed by git ls-remote.
var tagPattern = regexp.MustCompile(
	`(?m)(?:^|[\s/])` +
		`(?P<label>[vV](?:ersion)?[ .]?)?` +
		`(?P<major>0|[1-9]\d*)\.(?P<minor>0|[1-9]\d*)\.(?P<patch>0|[1-9]\d*)` +
		`(?:-(?P<prerelease>(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?` +
		`(?:\+(?P<buildmetadata>[0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?` +
		`(?:\^\{\})?(?:$|\s)`,
)

// Tag holds the components of a semantic-version tag as matched text.
type Tag struct {
	// Label is the prefix before the version, such as "v".
	Label string
	// Major, Minor and Patch are the numeric components.
	Major string
	Minor string
	Patch string
	// Prerelease is the part after "-", without the dash.
	Prerelease string
	// BuildMetadata is the part after "+", without the plus.
	BuildMetadata string
}

// String renders the tag back into its canonical form.
func (t *Tag) String() string {
	var builder strings.Builder

	builder.WriteString(t.Label)
	builder.WriteString(t.Major + "." + t.Minor + "." + t.Patch)

	if t.Prerelease != "" {
		builder.WriteString("-" + t.Prerelease)
	}

	if t.BuildMetadata != "" {
		builder.WriteString("+" + t.BuildMetadata)
	}

	return builder.String()
}

// ExtractVersion returns the first semantic-version tag found in raw git output.
func ExtractVersion(raw string) (*Tag, error) {
	match := tagPattern.FindStringSubmatch(raw)
	if match == nil {
		return nil, fmt.Errorf("%w in %q", ErrGitTagNotFound, strings.TrimSpace(raw))
	}

	group := func(name string) string {
		return match[tagPattern.SubexpIndex(name)]
	}

	return &Tag{
		Label:         group("label"),
		Major:         group("major"),
		Minor:         group("minor"),
		Patch:         group("patch"),
		Prerelease:    group("prerelease"),
		BuildMetadata: group("buildmetadata"),
	}, nil
}
