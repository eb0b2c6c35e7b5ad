package version

import (
	"errors"
	"fmt"
)

var (
	// ErrGitTagNotFound is returned when git output holds no semantic-version tag.
	ErrGitTagNotFound = errors.New("git tag not found")
	// ErrMethodNotFound is returned for an unknown operation name.
	ErrMethodNotFound = errors.New("method not found")
	// ErrAbsorbModeConflict is returned when incrementing a field that is in absorb mode.
	ErrAbsorbModeConflict = errors.New("field is in absorb mode")
	// ErrInvalidIncrement is returned when a hex counter cannot be incremented.
	ErrInvalidIncrement = errors.New("invalid increment")
	// ErrNotMapping is returned when a record path crosses a non-mapping node.
	ErrNotMapping = errors.New("record path is not a mapping")
)

// AbsorbModeError reports which field refused an increment.
type AbsorbModeError struct {
	// Field is the field whose mode is absorb.
	Field Field
}

// Error implements the error interface.
func (e *AbsorbModeError) Error() string {
	return fmt.Sprintf("%s is in git absorb mode, cannot be incremented", e.Field.Title())
}

// Is makes errors.Is(err, ErrAbsorbModeConflict) match.
func (e *AbsorbModeError) Is(target error) bool {
	return target == ErrAbsorbModeConflict
}
