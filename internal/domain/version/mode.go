package version

import (
	"fmt"
	"strings"
)

// Mode controls whether a field is changed by increment commands or by git.
type Mode string

const (
	// ModeIncrement allows manual increments.
	ModeIncrement Mode = "increment"
	// ModeAbsorb means the field is only set from source control.
	ModeAbsorb Mode = "absorb"
)

// Field is a group of record values sharing one mode flag.
type Field int

const (
	// FieldVersion covers major, minor and patch.
	FieldVersion Field = iota
	// FieldCommit covers current.commit.
	FieldCommit
	// FieldTimestamp covers current.timestamp.
	FieldTimestamp
)

// Record paths of the mode flags and the values they guard.
const (
	PathVersionMode   = "mode"
	PathCommitMode    = "commit.mode"
	PathTimestampMode = "current.timestamp.mode"

	PathMajor         = "current.major"
	PathMinor         = "current.minor"
	PathPatch         = "current.patch"
	PathLabel         = "current.label"
	PathPrerelease    = "current.prerelease"
	PathBuildMetadata = "current.buildmetadata"
	PathCommit        = "current.commit"
	PathTimestamp     = "current.timestamp"

	PathCommitIncrementBy = "commit.increment-by"
	PathCommitLength      = "commit.length"

	PathFormats          = "format"
	PathOptionalBracket  = "format.regex.optional_bracket"
	PathCurrentNamespace = "current"
)

// ModePath returns the record path of the field's mode flag.
func (f Field) ModePath() string {
	switch f {
	case FieldCommit:
		return PathCommitMode
	case FieldTimestamp:
		return PathTimestampMode
	default:
		return PathVersionMode
	}
}

// String returns the lowercase field name.
func (f Field) String() string {
	switch f {
	case FieldVersion:
		return "version"
	case FieldCommit:
		return "commit"
	case FieldTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Title returns the field name for user-facing messages.
func (f Field) Title() string {
	switch f {
	case FieldCommit:
		return "Commit"
	case FieldTimestamp:
		return "Timestamp"
	default:
		return "Version"
	}
}

// ModeOf returns the mode configured for field. Anything but "absorb" means increment.
func ModeOf(r *Record, field Field) Mode {
	value, _ := r.Scalar(field.ModePath())

	if Mode(strings.ToLower(strings.TrimSpace(value))) == ModeAbsorb {
		return ModeAbsorb
	}

	return ModeIncrement
}
