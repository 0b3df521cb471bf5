package envelope

import (
	"encoding/binary"
	"io"

	"github.com/julianstephens/go-utils/checksum"
)

// Frame is one message on the wire.
// Format: [frame_len (4)][header (22)][payload][data][crc32c (4)]
// frame_len covers header, payload and data; the CRC covers the same bytes.
type Frame struct {
	Header  Header `json:"header"`
	Payload []byte `json:"-"`
	Data    []byte `json:"-"`
	CRC     uint32 `json:"crc"`
}

// EncodeFrame serializes f, filling in the header's section lengths and
// the checksum.
func EncodeFrame(f Frame, limits Limits) ([]byte, error) {
	limits = limits.orDefault()
	total := uint64(HeaderSize) + uint64(len(f.Payload)) + uint64(len(f.Data))
	if total > uint64(limits.MaxFrameBytes) {
		return nil, &ParseError{
			Kind:   KindTooLarge,
			Header: &f.Header,
			Want:   int(limits.MaxFrameBytes),
			Have:   int(total), //nolint:gosec
			Err:    ErrTooLarge,
		}
	}
	frameLen := uint32(total) //nolint:gosec

	h := f.Header
	h.PayloadLen = uint32(len(f.Payload)) //nolint:gosec
	h.DataLen = uint32(len(f.Data))       //nolint:gosec

	buf := make([]byte, LenPrefixSize+int(frameLen)+CRCSize)
	binary.LittleEndian.PutUint32(buf[:LenPrefixSize], frameLen)
	putHeader(buf[LenPrefixSize:LenPrefixSize+HeaderSize], h)
	off := LenPrefixSize + HeaderSize
	off += copy(buf[off:], f.Payload)
	off += copy(buf[off:], f.Data)

	crc := checksum.CRC32C(buf[LenPrefixSize:off])
	binary.LittleEndian.PutUint32(buf[off:], crc)
	return buf, nil
}

// DecodeFrame parses exactly one frame from data. The returned payload and
// data sections alias data.
func DecodeFrame(data []byte, limits Limits) (Frame, error) {
	limits = limits.orDefault()
	if len(data) < LenPrefixSize+CRCSize {
		return Frame{}, &ParseError{
			Kind: KindTruncated,
			Want: LenPrefixSize + CRCSize,
			Have: len(data),
			Err:  io.ErrUnexpectedEOF,
		}
	}

	frameLen := binary.LittleEndian.Uint32(data[:LenPrefixSize])
	if err := ValidateFrameLength(frameLen, limits); err != nil {
		return Frame{}, err
	}

	wantTotal := LenPrefixSize + int(frameLen) + CRCSize
	if len(data) < wantTotal {
		return Frame{}, &ParseError{
			Kind:        KindTruncated,
			DeclaredLen: frameLen,
			Want:        wantTotal,
			Have:        len(data),
			Err:         io.ErrUnexpectedEOF,
		}
	}
	if len(data) != wantTotal {
		return Frame{}, &ParseError{
			Kind:        KindCorrupt,
			DeclaredLen: frameLen,
			Want:        wantTotal,
			Have:        len(data),
			Err:         ErrInvalidLength,
		}
	}

	return parseBody(0, frameLen, data[LenPrefixSize:])
}

// parseBody splits [header][payload][data][crc] and verifies the checksum.
func parseBody(offset int64, frameLen uint32, body []byte) (Frame, error) {
	h := parseHeader(body[:HeaderSize])
	if uint64(HeaderSize)+uint64(h.PayloadLen)+uint64(h.DataLen) != uint64(frameLen) {
		return Frame{}, &ParseError{
			Kind:        KindCorrupt,
			Offset:      offset,
			Header:      &h,
			DeclaredLen: frameLen,
			Want:        int(frameLen),
			Have:        HeaderSize + int(h.PayloadLen) + int(h.DataLen),
			Err:         ErrCorrupt,
		}
	}

	payloadEnd := HeaderSize + int(h.PayloadLen)
	dataEnd := payloadEnd + int(h.DataLen)
	f := Frame{
		Header:  h,
		Payload: body[HeaderSize:payloadEnd:payloadEnd],
		Data:    body[payloadEnd:dataEnd:dataEnd],
		CRC:     binary.LittleEndian.Uint32(body[frameLen : frameLen+CRCSize]),
	}
	if len(f.Data) == 0 {
		f.Data = nil
	}

	if !checksum.VerifyCRC32C(body[:frameLen], f.CRC) {
		return Frame{}, &ParseError{
			Kind:        KindChecksumMismatch,
			Offset:      offset,
			Header:      &h,
			DeclaredLen: frameLen,
			Err:         ErrChecksumMismatch,
		}
	}
	return f, nil
}
