package tid

import "errors"

var (
	// Returned when the next tid is 0 or otherwise forbidden.
	ErrInvalidTid = errors.New("tid: invalid transaction id")

	// Returned when SetNext attempts to move the allocator backwards.
	ErrTidRegression = errors.New("tid: transaction id regression")

	// Returned when the id space is exhausted.
	ErrTidOverflow = errors.New("tid: transaction id overflow")
)

type TidError struct {
	Err  error
	Have uint64
	Want uint64
}

func (e *TidError) Error() string { return e.Err.Error() }
func (e *TidError) Unwrap() error { return e.Err }
