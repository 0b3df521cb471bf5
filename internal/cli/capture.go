package cli

import (
	"bufio"
	"errors"
	"io/fs"
	"os"

	"github.com/julianstephens/opreply/internal/opreply/envelope"
)

// openCapture opens a capture file for writing. Without appendTo the file
// is truncated.
func openCapture(path string, appendTo bool) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendTo {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(path, flags, 0o644) //nolint:gosec
}

// maxCaptureTid returns the highest tid in the capture at path, or 0 when
// the file does not exist. Any fault in the capture is returned.
func maxCaptureTid(path string, limits envelope.Limits) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	var maxTid uint64
	r := envelope.NewFrameReader(bufio.NewReader(f), limits)
	for {
		frame, err := r.Next()
		if envelope.IsCleanEOF(err) {
			return maxTid, nil
		}
		if err != nil {
			return 0, err
		}
		if frame.Header.Tid > maxTid {
			maxTid = frame.Header.Tid
		}
	}
}
