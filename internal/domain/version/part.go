package version

import (
	"fmt"
	"strings"
)

// Part is a record component that can be incremented.
type Part string

const (
	// PartMajor bumps major and resets minor and patch.
	PartMajor Part = "major"
	// PartMinor bumps minor and resets patch.
	PartMinor Part = "minor"
	// PartPatch bumps patch.
	PartPatch Part = "patch"
	// PartCommit advances the hex commit counter.
	PartCommit Part = "commit"
	// PartTimestamp refreshes the timestamp to now.
	PartTimestamp Part = "timestamp"
)

// Parts lists every incrementable part in command order.
func Parts() []Part {
	return []Part{PartMajor, PartMinor, PartPatch, PartCommit, PartTimestamp}
}

// ParsePart maps an operation name to a Part.
// Names are case-insensitive and may carry an "increment" prefix.
func ParsePart(name string) (Part, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.TrimPrefix(normalized, "increment")
	normalized = strings.TrimLeft(normalized, "-_ ")

	for _, part := range Parts() {
		if string(part) == normalized {
			return part, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrMethodNotFound, name)
}

// Field returns the mode flag group guarding the part.
func (p Part) Field() Field {
	switch p {
	case PartCommit:
		return FieldCommit
	case PartTimestamp:
		return FieldTimestamp
	default:
		return FieldVersion
	}
}

// Event returns the event fired after the part is incremented.
func (p Part) Event() Event {
	switch p {
	case PartMajor:
		return EventMajorIncremented
	case PartMinor:
		return EventMinorIncremented
	case PartPatch:
		return EventPatchIncremented
	case PartCommit:
		return EventCommitIncremented
	default:
		return EventTimestampUpdated
	}
}
