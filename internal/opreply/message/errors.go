package message

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariantViolation marks a programming error in the caller, such as
	// bulk transfers between op sequences of different lengths.
	ErrInvariantViolation = errors.New("message: invariant violation")

	// ErrMalformedMessage marks a payload that cannot be decoded at its
	// declared struct version.
	ErrMalformedMessage = errors.New("message: malformed message")

	ErrUnexpectedType      = errors.New("message: unexpected message type")
	ErrIncompatibleVersion = errors.New("message: incompatible struct version")
)

type InvariantError struct {
	Op   string // mutator that detected the violation
	Want int
	Have int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%v: %s want=%d have=%d", ErrInvariantViolation, e.Op, e.Want, e.Have)
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }

// MalformedError is returned by the decoder. Err carries the underlying
// wire.CodecError or osd.OutDataError.
type MalformedError struct {
	Version uint16
	Layout  string // "legacy" or "current"
	Err     error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%v (v%d %s): %v", ErrMalformedMessage, e.Version, e.Layout, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedMessage
}

type FrameError struct {
	Type          uint16
	Version       uint16
	CompatVersion uint16
	Err           error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%v: type=%d version=%d compat=%d", e.Err, e.Type, e.Version, e.CompatVersion)
}

func (e *FrameError) Unwrap() error { return e.Err }

func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedMessage)
}

func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}
