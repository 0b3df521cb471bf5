package osd

import (
	"fmt"
	"sort"
	"strings"
)

// Flags carries acknowledgement, durability and request mode bits.
type Flags int64

const (
	FlagAck          Flags = 0x0001 // acknowledged, not yet durable
	FlagOnNVRAM      Flags = 0x0002 // committed to non-volatile cache
	FlagOnDisk       Flags = 0x0004 // committed to stable storage
	FlagRetry        Flags = 0x0008
	FlagRead         Flags = 0x0010
	FlagWrite        Flags = 0x0020
	FlagOrderSnap    Flags = 0x0040
	FlagBalanceReads Flags = 0x0100
	FlagParallelExec Flags = 0x0200
	FlagPGOp         Flags = 0x0400
	FlagExec         Flags = 0x0800
	FlagRWOrdered    Flags = 0x4000

	// AckMask covers every acknowledgement kind a reply can carry.
	AckMask = FlagOnDisk | FlagOnNVRAM | FlagAck
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagAck, "ack"},
	{FlagOnNVRAM, "onnvram"},
	{FlagOnDisk, "ondisk"},
	{FlagRetry, "retry"},
	{FlagRead, "read"},
	{FlagWrite, "write"},
	{FlagOrderSnap, "ordersnap"},
	{FlagBalanceReads, "balance_reads"},
	{FlagParallelExec, "parallelexec"},
	{FlagPGOp, "pgop"},
	{FlagExec, "exec"},
	{FlagRWOrdered, "rwordered"},
}

func (f Flags) IsOnDisk() bool  { return f&FlagOnDisk != 0 }
func (f Flags) IsOnNVRAM() bool { return f&FlagOnNVRAM != 0 }
func (f Flags) IsAck() bool     { return f&FlagAck != 0 }

// AckString names the strongest acknowledgement kind set in f.
func (f Flags) AckString() string {
	switch {
	case f.IsOnDisk():
		return "ondisk"
	case f.IsOnNVRAM():
		return "onnvram"
	default:
		return "ack"
	}
}

// Names lists the known flags set in f, in bit order.
func (f Flags) Names() []string {
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return names
}

func (f Flags) String() string {
	return strings.Join(f.Names(), "+")
}

// ParseFlags maps flag names back to bits.
func ParseFlags(names []string) (Flags, error) {
	var f Flags
	for _, n := range names {
		found := false
		for _, fn := range flagNames {
			if strings.EqualFold(fn.name, n) {
				f |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %q", ErrUnknownFlag, n)
		}
	}
	return f, nil
}

// ParseAckKind maps an acknowledgement name to its flag.
func ParseAckKind(name string) (Flags, error) {
	switch strings.ToLower(name) {
	case "", "ack":
		return FlagAck, nil
	case "onnvram":
		return FlagOnNVRAM, nil
	case "ondisk":
		return FlagOnDisk, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFlag, name)
	}
}

// Features is the capability bitmask negotiated with a peer.
type Features uint64

const (
	// FeaturePGID64 marks peers that understand wide placement group ids
	// and the self-describing reply layout.
	FeaturePGID64 Features = 1 << 11

	FeaturesAll Features = ^Features(0)
)

var featureNames = map[string]Features{
	"pgid64": FeaturePGID64,
	"all":    FeaturesAll,
}

func (f Features) Has(bit Features) bool {
	return f&bit == bit
}

// ParseFeatures maps feature names to bits. Unknown names are rejected.
func ParseFeatures(names []string) (Features, error) {
	var f Features
	for _, n := range names {
		bit, ok := featureNames[strings.ToLower(n)]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownFeature, n)
		}
		f |= bit
	}
	return f, nil
}

func (f Features) String() string {
	if f == FeaturesAll {
		return "all"
	}
	var names []string
	for n, bit := range featureNames {
		if bit != FeaturesAll && f.Has(bit) {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	if rest := f &^ FeaturePGID64; rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint64(rest)))
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}
