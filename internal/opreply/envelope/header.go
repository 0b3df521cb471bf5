package envelope

import "encoding/binary"

const (
	LenPrefixSize = 4 // Length of the frame length field
	CRCSize       = 4 // Length of the CRC32-C trailer
	// Header: [type (2)][version (2)][compat_version (2)][tid (8)][payload_len (4)][data_len (4)]
	HeaderSize = 2 + 2 + 2 + 8 + 4 + 4

	DefaultMaxFrameBytes = 16 * 1024 * 1024 // 16 MB
)

// Header is the envelope around a message payload. Version and
// CompatVersion are fixed per message type; Tid is copied from the request
// a reply answers.
type Header struct {
	Type          uint16 `json:"type"`
	Version       uint16 `json:"version"`
	CompatVersion uint16 `json:"compat_version"`
	Tid           uint64 `json:"tid"`
	PayloadLen    uint32 `json:"payload_len"`
	DataLen       uint32 `json:"data_len"`
}

// Limits bounds the memory a single frame may claim.
type Limits struct {
	MaxFrameBytes uint32
}

func DefaultLimits() Limits {
	return Limits{MaxFrameBytes: DefaultMaxFrameBytes}
}

func putHeader(b []byte, h Header) {
	binary.LittleEndian.PutUint16(b[0:2], h.Type)
	binary.LittleEndian.PutUint16(b[2:4], h.Version)
	binary.LittleEndian.PutUint16(b[4:6], h.CompatVersion)
	binary.LittleEndian.PutUint64(b[6:14], h.Tid)
	binary.LittleEndian.PutUint32(b[14:18], h.PayloadLen)
	binary.LittleEndian.PutUint32(b[18:22], h.DataLen)
}

func parseHeader(b []byte) Header {
	return Header{
		Type:          binary.LittleEndian.Uint16(b[0:2]),
		Version:       binary.LittleEndian.Uint16(b[2:4]),
		CompatVersion: binary.LittleEndian.Uint16(b[4:6]),
		Tid:           binary.LittleEndian.Uint64(b[6:14]),
		PayloadLen:    binary.LittleEndian.Uint32(b[14:18]),
		DataLen:       binary.LittleEndian.Uint32(b[18:22]),
	}
}

// ValidateFrameLength checks a declared frame length (header + payload +
// data) against limits.
func ValidateFrameLength(length uint32, limits Limits) error {
	if length < HeaderSize {
		return &ParseError{
			Kind:        KindInvalidLength,
			DeclaredLen: length,
			Want:        HeaderSize,
			Have:        int(length),
			Err:         ErrInvalidLength,
		}
	}
	if length > limits.MaxFrameBytes {
		return &ParseError{
			Kind:        KindTooLarge,
			DeclaredLen: length,
			Want:        int(limits.MaxFrameBytes),
			Have:        int(length),
			Err:         ErrTooLarge,
		}
	}
	return nil
}

// EncodedFrameSize returns the number of bytes a frame with the given
// section sizes occupies on the wire.
func EncodedFrameSize(payloadLen, dataLen int) int64 {
	return LenPrefixSize + HeaderSize + int64(payloadLen) + int64(dataLen) + CRCSize
}

func (l Limits) orDefault() Limits {
	if l.MaxFrameBytes == 0 {
		return DefaultLimits()
	}
	return l
}
