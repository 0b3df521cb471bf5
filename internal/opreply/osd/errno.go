package osd

import "golang.org/x/sys/unix"

// ErrnoString renders a negative result code using the platform's error
// text. Non-negative results render as an empty string.
func ErrnoString(r int32) string {
	if r >= 0 {
		return ""
	}
	return unix.Errno(-r).Error()
}

// ErrnoName returns the symbolic name (e.g. ENOENT) of a negative result
// code, or an empty string when there is none.
func ErrnoName(r int32) string {
	if r >= 0 {
		return ""
	}
	return unix.ErrnoName(unix.Errno(-r))
}
