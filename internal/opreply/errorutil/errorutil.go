package errorutil

import (
	"fmt"
	"strings"
)

// Coordinates locates an error within a capture stream: the byte offset of
// the failing frame, its transaction id and the struct version it declared.
type Coordinates struct {
	// Offset is the byte offset of the frame within the stream.
	Offset *int64

	// Tid is the transaction id carried by the frame header.
	Tid *uint64

	// Version is the struct version declared by the frame header.
	Version *uint16
}

// FormatCoordinates returns the non-nil coordinates as "at=X tid=Y v=Z".
// Returns an empty string if all coordinates are nil.
func (c *Coordinates) FormatCoordinates() string {
	if c == nil {
		return ""
	}

	var parts []string
	if c.Offset != nil {
		parts = append(parts, fmt.Sprintf("at=%d", *c.Offset))
	}
	if c.Tid != nil {
		parts = append(parts, fmt.Sprintf("tid=%d", *c.Tid))
	}
	if c.Version != nil {
		parts = append(parts, fmt.Sprintf("v=%d", *c.Version))
	}
	return strings.Join(parts, " ")
}

func (c *Coordinates) String() string {
	return c.FormatCoordinates()
}

// Ptr returns a pointer to v, for filling Coordinates inline.
func Ptr[T any](v T) *T {
	return &v
}
