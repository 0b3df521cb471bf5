package wire

import "encoding/binary"

// Size of a length prefix written ahead of variable-length fields.
const LenPrefixSize = 4

// Encoder appends little-endian primitives to a growing buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder with room for sizeHint bytes.
func NewEncoder(sizeHint int) *Encoder {
	return &Encoder{buf: make([]byte, 0, sizeHint)}
}

func (e *Encoder) U8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *Encoder) U16(v uint16) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
}

func (e *Encoder) U32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *Encoder) U64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

func (e *Encoder) I16(v int16) { e.U16(uint16(v)) } //nolint:gosec
func (e *Encoder) I32(v int32) { e.U32(uint32(v)) } //nolint:gosec
func (e *Encoder) I64(v int64) { e.U64(uint64(v)) } //nolint:gosec

// Bytes writes b with a u32 length prefix.
// Format: [len (4)][bytes]
func (e *Encoder) Bytes(b []byte) {
	e.U32(uint32(len(b))) //nolint:gosec
	e.buf = append(e.buf, b...)
}

// String writes s with a u32 length prefix.
func (e *Encoder) String(s string) {
	e.U32(uint32(len(s))) //nolint:gosec
	e.buf = append(e.buf, s...)
}

// Raw writes b without a length prefix.
func (e *Encoder) Raw(b []byte) {
	e.buf = append(e.buf, b...)
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Output returns the encoded bytes. The Encoder must not be used afterwards.
func (e *Encoder) Output() []byte {
	out := e.buf
	e.buf = nil
	return out
}
