package wire

import (
	"encoding/binary"
	"fmt"
)

// Decoder reads little-endian primitives from a byte slice. Every read names
// the field it is decoding so failures point at the exact spot in the stream.
type Decoder struct {
	data []byte
	off  int
}

func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Offset returns the number of bytes consumed.
func (d *Decoder) Offset() int { return d.off }

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.data) - d.off }

func (d *Decoder) need(want int, field string) error {
	have := d.Remaining()
	if have >= want {
		return nil
	}
	return &CodecError{
		Kind:  CodecTruncated,
		Field: field,
		At:    d.off,
		Want:  want,
		Have:  have,
		Err:   ErrCodecTruncated,
	}
}

func (d *Decoder) U8(field string) (uint8, error) {
	if err := d.need(1, field); err != nil {
		return 0, err
	}
	v := d.data[d.off]
	d.off++
	return v, nil
}

func (d *Decoder) U16(field string) (uint16, error) {
	if err := d.need(2, field); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(d.data[d.off : d.off+2])
	d.off += 2
	return v, nil
}

func (d *Decoder) U32(field string) (uint32, error) {
	if err := d.need(4, field); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(d.data[d.off : d.off+4])
	d.off += 4
	return v, nil
}

func (d *Decoder) U64(field string) (uint64, error) {
	if err := d.need(8, field); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(d.data[d.off : d.off+8])
	d.off += 8
	return v, nil
}

func (d *Decoder) I16(field string) (int16, error) {
	v, err := d.U16(field)
	return int16(v), err //nolint:gosec
}

func (d *Decoder) I32(field string) (int32, error) {
	v, err := d.U32(field)
	return int32(v), err //nolint:gosec
}

func (d *Decoder) I64(field string) (int64, error) {
	v, err := d.U64(field)
	return int64(v), err //nolint:gosec
}

// Raw returns the next n bytes without copying.
func (d *Decoder) Raw(n int, field string) ([]byte, error) {
	if n < 0 {
		return nil, &CodecError{
			Kind:  CodecInvalid,
			Field: field,
			At:    d.off,
			Have:  n,
			Err:   ErrCodecInvalid,
		}
	}
	if err := d.need(n, field); err != nil {
		return nil, err
	}
	b := d.data[d.off : d.off+n : d.off+n]
	d.off += n
	return b, nil
}

// Bytes reads a u32 length-prefixed byte string.
// Format: [len (4)][bytes]
func (d *Decoder) Bytes(field string) ([]byte, error) {
	n, err := d.U32(field + "_len")
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(d.Remaining()) {
		return nil, &CodecError{
			Kind:  CodecTruncated,
			Field: field,
			At:    d.off,
			Want:  int(n),
			Have:  d.Remaining(),
			Err:   ErrCodecTruncated,
		}
	}
	return d.Raw(int(n), field)
}

// String reads a u32 length-prefixed string.
func (d *Decoder) String(field string) (string, error) {
	b, err := d.Bytes(field)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Count reads a u32 element count and rejects counts whose elements cannot
// fit in the remaining bytes, before anything is allocated for them.
func (d *Decoder) Count(field string, elemSize int) (int, error) {
	start := d.off
	n, err := d.U32(field)
	if err != nil {
		return 0, err
	}
	if elemSize > 0 && uint64(n)*uint64(elemSize) > uint64(d.Remaining()) {
		return 0, &CodecError{
			Kind:  CodecCorrupt,
			Field: field,
			At:    start,
			Want:  int(uint64(n) * uint64(elemSize)), //nolint:gosec
			Have:  d.Remaining(),
			Err:   fmt.Errorf("%w: count %d exceeds remaining bytes", ErrCodecCorrupt, n),
		}
	}
	return int(n), nil
}

// RejectTrailing fails when unread bytes remain.
func (d *Decoder) RejectTrailing(field string) error {
	if d.Remaining() == 0 {
		return nil
	}
	return &CodecError{
		Kind:  CodecCorrupt,
		Field: field,
		At:    d.off,
		Want:  d.off,
		Have:  len(d.data),
		Err:   fmt.Errorf("%w: trailing bytes", ErrCodecCorrupt),
	}
}
