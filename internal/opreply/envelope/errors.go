package envelope

import (
	"errors"
	"fmt"
	"io"

	"github.com/julianstephens/opreply/internal/opreply/errorutil"
)

var (
	ErrTruncated        = errors.New("envelope: truncated")
	ErrCorrupt          = errors.New("envelope: corrupt")
	ErrTooLarge         = errors.New("envelope: too large")
	ErrInvalidLength    = errors.New("envelope: invalid length")
	ErrChecksumMismatch = errors.New("envelope: checksum mismatch")
)

type ParseErrorKind uint8

const (
	KindTruncated ParseErrorKind = iota
	KindInvalidLength
	KindTooLarge
	KindChecksumMismatch
	KindCorrupt
)

func (k ParseErrorKind) String() string {
	switch k {
	case KindTruncated:
		return "truncated"
	case KindInvalidLength:
		return "invalid_length"
	case KindTooLarge:
		return "too_large"
	case KindChecksumMismatch:
		return "checksum_mismatch"
	case KindCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

type ParseError struct {
	Kind ParseErrorKind
	// Offset is the starting byte offset of the frame (at the length prefix).
	Offset int64
	// Header is set once the fixed header has been read.
	Header      *Header
	DeclaredLen uint32
	Want        int
	Have        int
	Err         error
}

func (e *ParseError) coordinates() *errorutil.Coordinates {
	c := &errorutil.Coordinates{Offset: errorutil.Ptr(e.Offset)}
	if e.Header != nil {
		c.Tid = errorutil.Ptr(e.Header.Tid)
		c.Version = errorutil.Ptr(e.Header.Version)
	}
	return c
}

func (e *ParseError) Error() string {
	cause := "<nil>"
	if e.Err != nil {
		cause = e.Err.Error()
	}
	return fmt.Sprintf("envelope parse error kind=%s %s len=%d want=%d have=%d: %s",
		e.Kind.String(), e.coordinates(), e.DeclaredLen, e.Want, e.Have, cause)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrTruncated:
		return e.Kind == KindTruncated
	case ErrInvalidLength:
		return e.Kind == KindInvalidLength
	case ErrTooLarge:
		return e.Kind == KindTooLarge
	case ErrChecksumMismatch:
		return e.Kind == KindChecksumMismatch
	case ErrCorrupt:
		return e.Kind == KindCorrupt
	}
	return false
}

func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func IsCleanEOF(err error) bool {
	return errors.Is(err, io.EOF)
}

func IsTruncation(err error) bool {
	return errors.Is(err, ErrTruncated)
}

func IsCorruption(err error) bool {
	return errors.Is(err, ErrCorrupt) || errors.Is(err, ErrInvalidLength) || errors.Is(err, ErrTooLarge) ||
		errors.Is(err, ErrChecksumMismatch)
}
