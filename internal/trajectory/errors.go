package trajectory

import (
	"errors"
	"fmt"
)

// Domain errors for trajectory decoding.
var (
	// ErrMalformedInput indicates an unparseable or incomplete table.
	ErrMalformedInput = errors.New("trajectory: malformed input")

	// ErrTruncatedTrajectory indicates a frame with fewer than ParticleCount records.
	ErrTruncatedTrajectory = errors.New("trajectory: truncated trajectory")

	// ErrIO indicates the trajectory source could not be read.
	ErrIO = errors.New("trajectory: i/o failure")
)

// MalformedError locates a malformed cell. Row is zero-based; Field is -1
// when the whole row is at fault.
type MalformedError struct {
	Row    int
	Field  int
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Field < 0 {
		return fmt.Sprintf("%v: row %d: %s", ErrMalformedInput, e.Row, e.Reason)
	}
	return fmt.Sprintf("%v: row %d field %d: %s", ErrMalformedInput, e.Row, e.Field, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformedInput
}

// TruncatedError reports the frame that ran out of rows.
type TruncatedError struct {
	Frame int
	Want  int
	Got   int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("%v: frame %d has %d of %d records", ErrTruncatedTrajectory, e.Frame, e.Got, e.Want)
}

func (e *TruncatedError) Unwrap() error {
	return ErrTruncatedTrajectory
}

func malformed(row, field int, format string, args ...any) error {
	return &MalformedError{Row: row, Field: field, Reason: fmt.Sprintf(format, args...)}
}
