package osd

import (
	"fmt"
	"strings"
)

// OpCode identifies a suboperation. The high nibble carries the mode
// (read/write) and the next nibble the type (data/attr/exec).
type OpCode uint16

const (
	opModeRead  = 0x1000
	opModeWrite = 0x2000
	opTypeData  = 0x0200
	opTypeAttr  = 0x0300
	opTypeExec  = 0x0400
)

const (
	OpRead      OpCode = opModeRead | opTypeData | 1
	OpStat      OpCode = opModeRead | opTypeData | 2
	OpWrite     OpCode = opModeWrite | opTypeData | 1
	OpWriteFull OpCode = opModeWrite | opTypeData | 2
	OpTruncate  OpCode = opModeWrite | opTypeData | 3
	OpZero      OpCode = opModeWrite | opTypeData | 4
	OpDelete    OpCode = opModeWrite | opTypeData | 5
	OpCreate    OpCode = opModeWrite | opTypeData | 13
	OpWatch     OpCode = opModeWrite | opTypeData | 15
	OpGetXattr  OpCode = opModeRead | opTypeAttr | 1
	OpSetXattr  OpCode = opModeWrite | opTypeAttr | 2
	OpCall      OpCode = opModeRead | opTypeExec | 1
)

var opNames = map[OpCode]string{
	OpRead:      "read",
	OpStat:      "stat",
	OpWrite:     "write",
	OpWriteFull: "writefull",
	OpTruncate:  "truncate",
	OpZero:      "zero",
	OpDelete:    "delete",
	OpCreate:    "create",
	OpWatch:     "watch",
	OpGetXattr:  "getxattr",
	OpSetXattr:  "setxattr",
	OpCall:      "call",
}

func (c OpCode) String() string {
	if n, ok := opNames[c]; ok {
		return n
	}
	return fmt.Sprintf("op-0x%04x", uint16(c))
}

func (c OpCode) IsWrite() bool { return c&opModeWrite != 0 }

// ParseOpCode maps an op name back to its code.
func ParseOpCode(name string) (OpCode, error) {
	for c, n := range opNames {
		if strings.EqualFold(n, name) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOpCode, name)
}

// Op is one suboperation of a request or reply.
//
// PayloadLen is the request's input length on the way in and the output
// length on the way out. OutData is owned by whoever holds the Op; the
// reply codec moves it in and out of the shared data section.
type Op struct {
	Code       OpCode `json:"code"`
	Flags      uint32 `json:"flags"`
	PayloadLen uint32 `json:"payload_len"`
	Rval       int32  `json:"rval"`
	OutData    []byte `json:"out_data,omitempty"`
}

func (o Op) String() string {
	var b strings.Builder
	b.WriteString(o.Code.String())
	if o.PayloadLen > 0 {
		fmt.Fprintf(&b, " out=%d", o.PayloadLen)
	}
	if o.Rval != 0 {
		fmt.Fprintf(&b, " r=%d", o.Rval)
	}
	return b.String()
}

// FormatOps renders ops as a bracketed, comma separated list.
func FormatOps(ops []Op) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// MergeOutData moves every op's out data into a single blob. Each op's
// PayloadLen is set to the length it contributed and its OutData is released.
// When a single op carries out data its buffer becomes the blob as is.
func MergeOutData(ops []Op) []byte {
	total, contributors, last := 0, 0, -1
	for i := range ops {
		if n := len(ops[i].OutData); n > 0 {
			total += n
			contributors++
			last = i
		}
	}

	var data []byte
	switch contributors {
	case 0:
	case 1:
		data = ops[last].OutData
	default:
		data = make([]byte, 0, total)
	}
	for i := range ops {
		ops[i].PayloadLen = uint32(len(ops[i].OutData)) //nolint:gosec
		if contributors > 1 {
			data = append(data, ops[i].OutData...)
		}
		ops[i].OutData = nil
	}
	return data
}

// SplitOutData hands each op the slice of data described by its PayloadLen.
// The returned slices share data's backing array with their capacity clamped,
// so data must not be reused by the caller afterwards. It returns the number
// of bytes consumed.
func SplitOutData(ops []Op, data []byte) (int, error) {
	off := 0
	for i := range ops {
		n := int(ops[i].PayloadLen)
		if n == 0 {
			ops[i].OutData = nil
			continue
		}
		if len(data)-off < n {
			return off, &OutDataError{
				Op:   i,
				Want: n,
				Have: len(data) - off,
				Err:  ErrOutDataShort,
			}
		}
		ops[i].OutData = data[off : off+n : off+n]
		off += n
	}
	return off, nil
}

// CloneOps copies ops, leaving OutData unset on the copies.
func CloneOps(ops []Op) []Op {
	if ops == nil {
		return nil
	}
	out := make([]Op, len(ops))
	for i, op := range ops {
		op.OutData = nil
		out[i] = op
	}
	return out
}
