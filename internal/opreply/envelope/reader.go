package envelope

import (
	"encoding/binary"
	"io"
)

// FrameReader reads consecutive frames from a stream, such as a capture file.
type FrameReader struct {
	r      io.Reader
	limits Limits
	offset int64
}

// NewFrameReader creates a FrameReader over r.
func NewFrameReader(r io.Reader, limits Limits) *FrameReader {
	return &FrameReader{
		r:      r,
		limits: limits.orDefault(),
	}
}

// Next reads the next frame. It returns io.EOF only when the stream ends
// cleanly on a frame boundary.
func (fr *FrameReader) Next() (Frame, error) {
	frameStart := fr.offset

	prefix := make([]byte, LenPrefixSize)
	n, err := io.ReadFull(fr.r, prefix)
	if err != nil {
		fr.offset += int64(n)
		if err == io.EOF && n == 0 {
			return Frame{}, io.EOF
		}
		return Frame{}, &ParseError{
			Kind:   KindTruncated,
			Offset: frameStart,
			Want:   LenPrefixSize,
			Have:   n,
			Err:    io.ErrUnexpectedEOF,
		}
	}

	frameLen := binary.LittleEndian.Uint32(prefix)
	if err := ValidateFrameLength(frameLen, fr.limits); err != nil {
		if pe, ok := AsParseError(err); ok {
			pe.Offset = frameStart
			return Frame{}, pe
		}
		return Frame{}, err
	}

	body := make([]byte, int(frameLen)+CRCSize)
	n, err = io.ReadFull(fr.r, body)
	if err != nil {
		fr.offset += int64(LenPrefixSize + n)
		return Frame{}, &ParseError{
			Kind:        KindTruncated,
			Offset:      frameStart,
			DeclaredLen: frameLen,
			Want:        int(frameLen) + CRCSize,
			Have:        n,
			Err:         io.ErrUnexpectedEOF,
		}
	}
	fr.offset += int64(LenPrefixSize + len(body))

	return parseBody(frameStart, frameLen, body)
}

// Offset returns the number of bytes consumed from the underlying reader.
func (fr *FrameReader) Offset() int64 {
	return fr.offset
}
