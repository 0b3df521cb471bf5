package osd

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFlag    = errors.New("osd: unknown flag")
	ErrUnknownFeature = errors.New("osd: unknown feature")
	ErrUnknownOpCode  = errors.New("osd: unknown op code")
	ErrOutDataShort   = errors.New("osd: out data shorter than declared payload lengths")
)

// OutDataError reports a mismatch between the ops' declared payload lengths
// and the shared out data blob.
type OutDataError struct {
	Op   int // index of the first op that could not be satisfied
	Want int
	Have int
	Err  error
}

func (e *OutDataError) Error() string {
	return fmt.Sprintf("%v: op=%d want=%d have=%d", e.Err, e.Op, e.Want, e.Have)
}

func (e *OutDataError) Unwrap() error { return e.Err }
