package envelope_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/alecthomas/assert/v2"
	tst "github.com/julianstephens/go-utils/tests"

	"github.com/julianstephens/opreply/internal/opreply/envelope"
)

func sampleFrame(tid uint64, payload, data string) envelope.Frame {
	f := envelope.Frame{
		Header: envelope.Header{
			Type:          43,
			Version:       5,
			CompatVersion: 2,
			Tid:           tid,
		},
		Payload: []byte(payload),
	}
	if data != "" {
		f.Data = []byte(data)
	}
	return f
}

func TestFrameRoundTrip(t *testing.T) {
	f := sampleFrame(77, "payload-bytes", "out-data")
	buf, err := envelope.EncodeFrame(f, envelope.DefaultLimits())
	tst.RequireNoError(t, err)
	assert.Equal(t, envelope.EncodedFrameSize(len(f.Payload), len(f.Data)), int64(len(buf)))

	got, err := envelope.DecodeFrame(buf, envelope.DefaultLimits())
	tst.RequireNoError(t, err)
	assert.Equal(t, uint16(43), got.Header.Type)
	assert.Equal(t, uint16(5), got.Header.Version)
	assert.Equal(t, uint16(2), got.Header.CompatVersion)
	assert.Equal(t, uint64(77), got.Header.Tid)
	assert.Equal(t, uint32(len("payload-bytes")), got.Header.PayloadLen)
	assert.Equal(t, uint32(len("out-data")), got.Header.DataLen)
	assert.Equal(t, []byte("payload-bytes"), got.Payload)
	assert.Equal(t, []byte("out-data"), got.Data)
	tst.AssertTrue(t, got.CRC != 0, "expected checksum to be filled in")
}

func TestFrameEmptyDataIsNil(t *testing.T) {
	buf, err := envelope.EncodeFrame(sampleFrame(1, "p", ""), envelope.Limits{})
	tst.RequireNoError(t, err)
	got, err := envelope.DecodeFrame(buf, envelope.Limits{})
	tst.RequireNoError(t, err)
	tst.AssertTrue(t, got.Data == nil, "expected nil data section")
}

func TestDecodeFrameChecksumMismatch(t *testing.T) {
	buf, err := envelope.EncodeFrame(sampleFrame(77, "payload-bytes", "out-data"), envelope.DefaultLimits())
	tst.RequireNoError(t, err)
	buf[envelope.LenPrefixSize+envelope.HeaderSize+2] ^= 0xff

	_, err = envelope.DecodeFrame(buf, envelope.DefaultLimits())
	assert.IsError(t, err, envelope.ErrChecksumMismatch)
	tst.AssertTrue(t, envelope.IsCorruption(err), "checksum mismatch is corruption")
	tst.AssertFalse(t, envelope.IsTruncation(err), "checksum mismatch is not truncation")
	assert.Contains(t, err.Error(), "tid=77")

	pe, ok := envelope.AsParseError(err)
	tst.AssertTrue(t, ok, "expected ParseError")
	assert.Equal(t, envelope.KindChecksumMismatch, pe.Kind)
}

func TestDecodeFrameSectionLengthsDisagree(t *testing.T) {
	buf, err := envelope.EncodeFrame(sampleFrame(1, "abc", "de"), envelope.DefaultLimits())
	tst.RequireNoError(t, err)
	// payload_len sits at header offset 14.
	off := envelope.LenPrefixSize + 14
	binary.LittleEndian.PutUint32(buf[off:], 4)

	_, err = envelope.DecodeFrame(buf, envelope.DefaultLimits())
	assert.IsError(t, err, envelope.ErrCorrupt)
}

func TestDecodeFrameTruncated(t *testing.T) {
	buf, err := envelope.EncodeFrame(sampleFrame(1, "abc", "de"), envelope.DefaultLimits())
	tst.RequireNoError(t, err)

	for _, n := range []int{0, 3, envelope.LenPrefixSize + 10, len(buf) - 1} {
		_, err := envelope.DecodeFrame(buf[:n], envelope.DefaultLimits())
		assert.True(t, envelope.IsTruncation(err), "prefix %d should be truncated, got %v", n, err)
	}
}

func TestDecodeFrameTrailingBytes(t *testing.T) {
	buf, err := envelope.EncodeFrame(sampleFrame(1, "abc", ""), envelope.DefaultLimits())
	tst.RequireNoError(t, err)
	_, err = envelope.DecodeFrame(append(buf, 0), envelope.DefaultLimits())
	assert.IsError(t, err, envelope.ErrCorrupt)
}

func TestFrameLimits(t *testing.T) {
	small := envelope.Limits{MaxFrameBytes: envelope.HeaderSize + 8}

	_, err := envelope.EncodeFrame(sampleFrame(1, "0123456789", ""), small)
	assert.IsError(t, err, envelope.ErrTooLarge)

	buf, err := envelope.EncodeFrame(sampleFrame(1, "0123456789", ""), envelope.DefaultLimits())
	tst.RequireNoError(t, err)
	_, err = envelope.DecodeFrame(buf, small)
	assert.IsError(t, err, envelope.ErrTooLarge)

	assert.IsError(t, envelope.ValidateFrameLength(3, envelope.DefaultLimits()), envelope.ErrInvalidLength)
	tst.RequireNoError(t, envelope.ValidateFrameLength(envelope.HeaderSize, envelope.DefaultLimits()))
}

func TestWriterReader(t *testing.T) {
	frames := []envelope.Frame{
		sampleFrame(1, "first", "a"),
		sampleFrame(2, "second", ""),
		sampleFrame(3, "third", "bbbb"),
	}

	var buf bytes.Buffer
	w := envelope.NewFrameWriter(&buf, envelope.DefaultLimits())
	var want int64
	for _, f := range frames {
		at, err := w.Write(f)
		tst.RequireNoError(t, err)
		assert.Equal(t, want, at)
		want += envelope.EncodedFrameSize(len(f.Payload), len(f.Data))
	}
	assert.Equal(t, 3, w.Frames())
	assert.Equal(t, want, w.Offset())

	r := envelope.NewFrameReader(bytes.NewReader(buf.Bytes()), envelope.DefaultLimits())
	for i, f := range frames {
		got, err := r.Next()
		tst.RequireNoError(t, err)
		assert.Equal(t, f.Header.Tid, got.Header.Tid, "frame %d tid", i)
		assert.Equal(t, f.Payload, got.Payload, "frame %d payload", i)
		assert.Equal(t, f.Data, got.Data, "frame %d data", i)
	}
	_, err := r.Next()
	assert.True(t, errors.Is(err, io.EOF), "expected clean EOF, got %v", err)
	tst.AssertTrue(t, envelope.IsCleanEOF(err), "expected clean EOF")
	assert.Equal(t, want, r.Offset())
}

func TestReaderTornTail(t *testing.T) {
	var buf bytes.Buffer
	w := envelope.NewFrameWriter(&buf, envelope.DefaultLimits())
	_, err := w.Write(sampleFrame(1, "complete", ""))
	tst.RequireNoError(t, err)
	boundary := w.Offset()

	_, err = w.Write(sampleFrame(2, "torn", "data"))
	tst.RequireNoError(t, err)
	torn := buf.Bytes()[:buf.Len()-3]

	r := envelope.NewFrameReader(bytes.NewReader(torn), envelope.DefaultLimits())
	_, err = r.Next()
	tst.RequireNoError(t, err)

	_, err = r.Next()
	tst.AssertTrue(t, envelope.IsTruncation(err), "expected truncation")
	tst.AssertFalse(t, envelope.IsCleanEOF(err), "torn tail is not a clean EOF")
	pe, ok := envelope.AsParseError(err)
	tst.AssertTrue(t, ok, "expected ParseError")
	assert.Equal(t, boundary, pe.Offset)
}

func TestReaderTornPrefix(t *testing.T) {
	r := envelope.NewFrameReader(bytes.NewReader([]byte{0x10, 0x00}), envelope.DefaultLimits())
	_, err := r.Next()
	tst.AssertTrue(t, envelope.IsTruncation(err), "expected truncation")
	assert.Equal(t, int64(2), r.Offset())
}

func TestParseErrorKindString(t *testing.T) {
	assert.Equal(t, "checksum_mismatch", envelope.KindChecksumMismatch.String())
	assert.Equal(t, "too_large", envelope.KindTooLarge.String())
	assert.Equal(t, "unknown", envelope.ParseErrorKind(200).String())
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestWriterPropagatesWriteError(t *testing.T) {
	w := envelope.NewFrameWriter(failingWriter{err: errors.New("disk full")}, envelope.DefaultLimits())
	_, err := w.Write(sampleFrame(1, "p", ""))
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, 0, w.Frames())
	assert.Equal(t, int64(0), w.Offset())
}
