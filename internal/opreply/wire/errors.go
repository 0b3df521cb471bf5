package wire

import (
	"errors"
	"fmt"
)

var (
	ErrCodecTruncated = errors.New("wire: truncated payload")
	ErrCodecCorrupt   = errors.New("wire: corrupt payload")
	ErrCodecInvalid   = errors.New("wire: invalid value")
)

type CodecErrorKind uint8

const (
	CodecTruncated CodecErrorKind = iota
	CodecCorrupt
	CodecInvalid
)

func (k CodecErrorKind) String() string {
	switch k {
	case CodecTruncated:
		return "truncated"
	case CodecCorrupt:
		return "corrupt"
	case CodecInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

type CodecError struct {
	Kind  CodecErrorKind
	Field string // "oid", "num_ops", "op.payload_len", etc.
	At    int    // byte offset within the buffer where the failure occurred
	Want  int
	Have  int
	Err   error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("wire: %s field=%s at=%d want=%d have=%d: %v",
		e.Kind.String(), e.Field, e.At, e.Want, e.Have, e.Err,
	)
}

func (e *CodecError) Unwrap() error { return e.Err }

func (e *CodecError) Is(target error) bool {
	switch target {
	case ErrCodecTruncated:
		return e.Kind == CodecTruncated
	case ErrCodecCorrupt:
		return e.Kind == CodecCorrupt
	case ErrCodecInvalid:
		return e.Kind == CodecInvalid
	default:
		return false
	}
}

// AsCodecError extracts a *CodecError from err's chain.
func AsCodecError(err error) (*CodecError, bool) {
	var ce *CodecError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
