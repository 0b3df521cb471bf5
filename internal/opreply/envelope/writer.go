package envelope

import "io"

// FrameWriter appends frames to a stream.
type FrameWriter struct {
	w      io.Writer
	limits Limits
	offset int64
	frames int
}

func NewFrameWriter(w io.Writer, limits Limits) *FrameWriter {
	return &FrameWriter{w: w, limits: limits.orDefault()}
}

// Write encodes f and appends it, returning the offset it was written at.
func (fw *FrameWriter) Write(f Frame) (int64, error) {
	buf, err := EncodeFrame(f, fw.limits)
	if err != nil {
		return 0, err
	}
	at := fw.offset
	n, err := fw.w.Write(buf)
	fw.offset += int64(n)
	if err != nil {
		return at, err
	}
	fw.frames++
	return at, nil
}

// Offset returns the number of bytes written.
func (fw *FrameWriter) Offset() int64 { return fw.offset }

// Frames returns the number of frames written.
func (fw *FrameWriter) Frames() int { return fw.frames }
