package version

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// pathSeparator splits a record path into mapping keys.
	pathSeparator = "."

	// yamlIndent is the indentation used when the record is written back.
	yamlIndent = 2

	nullTag = "!!null"
)

// ErrInvalidValue is returned when a record value has an unexpected type.
var ErrInvalidValue = errors.New("invalid record value")

// Record is the persisted version document.
//
// It keeps the parsed YAML node tree rather than a decoded map, so keys keep
// their order and comments survive a load/save cycle. Values are addressed by
// dotted paths such as "current.major".
type Record struct {
	// root is the top-level mapping node.
	root *yaml.Node
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{
		root: newMapping(),
	}
}

// ParseRecord decodes a YAML document into a record.
// An empty document yields an empty record.
func ParseRecord(data []byte) (*Record, error) {
	var document yaml.Node
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	if document.Kind != yaml.DocumentNode || len(document.Content) == 0 {
		return NewRecord(), nil
	}

	root := resolve(document.Content[0])
	if isNull(root) {
		return NewRecord(), nil
	}

	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("decode record: top level: %w", ErrNotMapping)
	}

	// Document comments are only written back when they hang on the root.
	root.HeadComment = joinComments(document.HeadComment, root.HeadComment)
	root.FootComment = joinComments(root.FootComment, document.FootComment)

	return &Record{root: root}, nil
}

// Marshal encodes the record as YAML.
func (r *Record) Marshal() ([]byte, error) {
	var buffer bytes.Buffer

	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(yamlIndent)

	if err := encoder.Encode(r.root); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	return buffer.Bytes(), nil
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	return &Record{root: cloneNode(r.root)}
}

// Has reports whether the path exists, even when its value is empty or null.
func (r *Record) Has(path string) bool {
	return r.lookup(path) != nil
}

// Get decodes the value stored at path.
func (r *Record) Get(path string) (any, bool) {
	node := r.lookup(path)
	if node == nil {
		return nil, false
	}

	var value any
	if err := node.Decode(&value); err != nil {
		return nil, false
	}

	return value, true
}

// Scalar returns the scalar text stored at path. Null renders as "".
// The second result is false when the path is missing or not a scalar.
func (r *Record) Scalar(path string) (string, bool) {
	node := r.lookup(path)
	if node == nil || node.Kind != yaml.ScalarNode {
		return "", false
	}

	if isNull(node) {
		return "", true
	}

	return node.Value, true
}

// Int returns the integer stored at path. Missing, null and empty values are zero.
func (r *Record) Int(path string) (int, error) {
	value, _ := r.Scalar(path)

	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}

	number, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is %q, not an integer", ErrInvalidValue, path, value)
	}

	return number, nil
}

// Keys returns the sorted keys of the mapping at path.
func (r *Record) Keys(path string) []string {
	node := r.root
	if path != "" {
		node = r.lookup(path)
	}

	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}

	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}

	sort.Strings(keys)

	return keys
}

// Set stores value at path, creating intermediate mappings as needed.
// Comments attached to a replaced value are kept.
func (r *Record) Set(path string, value any) error {
	keys := splitPath(path)
	if len(keys) == 0 {
		return fmt.Errorf("set %q: empty path", path)
	}

	var valueNode yaml.Node
	if err := valueNode.Encode(value); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}

	parent := r.root

	for i, key := range keys[:len(keys)-1] {
		child := findValue(parent, key)

		switch {
		case child == nil:
			child = newMapping()
			appendPair(parent, key, child)
		case isNull(child):
			*child = *newMapping()
		case child.Kind != yaml.MappingNode:
			return fmt.Errorf("set %s: %s: %w", path, strings.Join(keys[:i+1], pathSeparator), ErrNotMapping)
		}

		parent = child
	}

	last := keys[len(keys)-1]

	existing := findValue(parent, last)
	if existing == nil {
		appendPair(parent, last, &valueNode)

		return nil
	}

	valueNode.HeadComment = existing.HeadComment
	valueNode.LineComment = existing.LineComment
	valueNode.FootComment = existing.FootComment
	*existing = valueNode

	return nil
}

// Map decodes the whole record into nested maps.
func (r *Record) Map() (map[string]any, error) {
	result := make(map[string]any)
	if err := r.root.Decode(&result); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	return result, nil
}

// lookup walks the mapping tree and returns the node at path.
func (r *Record) lookup(path string) *yaml.Node {
	keys := splitPath(path)
	if len(keys) == 0 {
		return nil
	}

	node := r.root
	for _, key := range keys {
		node = findValue(node, key)
		if node == nil {
			return nil
		}
	}

	return node
}

// splitPath turns "a.b.c" into its keys, ignoring empty segments.
func splitPath(path string) []string {
	parts := strings.Split(path, pathSeparator)

	keys := parts[:0]
	for _, part := range parts {
		if part != "" {
			keys = append(keys, part)
		}
	}

	return keys
}

// findValue returns the value node for key in a mapping node.
func findValue(mapping *yaml.Node, key string) *yaml.Node {
	mapping = resolve(mapping)
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return resolve(mapping.Content[i+1])
		}
	}

	return nil
}

// appendPair adds a key/value pair at the end of a mapping node.
func appendPair(mapping *yaml.Node, key string, value *yaml.Node) {
	keyNode := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Value: key,
	}

	mapping.Content = append(mapping.Content, keyNode, value)
}

// resolve follows alias nodes to their anchor.
func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}

	return node
}

func isNull(node *yaml.Node) bool {
	return node != nil && node.Kind == yaml.ScalarNode && node.ShortTag() == nullTag
}

func newMapping() *yaml.Node {
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}
}

// cloneNode deep-copies a node tree. Aliases are copied as their resolved value.
func cloneNode(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nil
	}

	node = resolve(node)

	cloned := *node
	cloned.Anchor = ""
	cloned.Alias = nil

	if len(node.Content) > 0 {
		cloned.Content = make([]*yaml.Node, len(node.Content))
		for i, child := range node.Content {
			cloned.Content[i] = cloneNode(child)
		}
	}

	return &cloned
}

func joinComments(first, second string) string {
	switch {
	case first == "":
		return second
	case second == "":
		return first
	default:
		return first + "\n\n" + second
	}
}
