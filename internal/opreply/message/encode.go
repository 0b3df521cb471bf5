package message

import (
	"github.com/julianstephens/opreply/internal/opreply/osd"
	"github.com/julianstephens/opreply/internal/opreply/wire"
)

const (
	// Legacy fixed header:
	// [pgid (8)][flags (4)][epoch (4)][marker version (8)][marker epoch (4)]
	// [result (4)][num_ops (4)][object_len (4)]
	LegacyHeaderSize = 8 + 4 + 4 + 8 + 4 + 4 + 4 + 4
	// Legacy op descriptor: [code (2)][payload_len (4)]
	LegacyOpSize = 2 + 4
	// Current op descriptor: [code (2)][flags (4)][payload_len (4)]
	OpSize = 2 + 4 + 4

	EVersionSize = 8 + 4
	// Wide PGID: [struct_v (1)][pool (8)][seed (4)][preferred (4)]
	PGIDSize = 1 + 8 + 4 + 4
)

// Encoded is a reply payload ready to be placed in an envelope.
type Encoded struct {
	Version uint16
	Payload []byte
	Data    []byte
}

// EncodePayload serializes the reply for a peer advertising features.
//
// The ops' out data is moved into the shared data section first; after this
// call the individual ops no longer hold their out data. Peers without
// FeaturePGID64 receive the legacy layout at LegacyVersion, everyone else
// the current layout at HeadVersion.
func (r *Reply) EncodePayload(features osd.Features) Encoded {
	if !r.merged {
		r.data = osd.MergeOutData(r.ops)
		r.merged = true
	}

	if !features.Has(osd.FeaturePGID64) {
		return Encoded{Version: LegacyVersion, Payload: r.encodeLegacy(), Data: r.data}
	}
	return Encoded{Version: HeadVersion, Payload: r.encodeCurrent(), Data: r.data}
}

// Format: [legacy header][num_ops x (code, payload_len)][object name]
func (r *Reply) encodeLegacy() []byte {
	name := r.oid.Name
	e := wire.NewEncoder(LegacyHeaderSize + len(r.ops)*LegacyOpSize + len(name))

	e.U64(uint64(r.pgid.Legacy()))
	e.U32(uint32(r.flags)) //nolint:gosec
	e.U32(r.epoch)
	encodeEVersion(e, r.badReplayVersion)
	e.I32(r.result)
	e.U32(uint32(len(r.ops))) //nolint:gosec
	e.U32(uint32(len(name)))  //nolint:gosec

	for _, op := range r.ops {
		e.U16(uint16(op.Code))
		e.U32(op.PayloadLen)
	}

	e.Raw([]byte(name))
	return e.Output()
}

// Format: [oid][pgid][flags (8)][result (4)][marker][epoch (4)][num_ops (4)]
// [num_ops x op][retry (4)][num_ops x rval (4)][replay_version][user_version (8)]
func (r *Reply) encodeCurrent() []byte {
	size := wire.LenPrefixSize + len(r.oid.Name) + PGIDSize + 8 + 4 + EVersionSize + 4 + 4 +
		len(r.ops)*(OpSize+4) + 4 + EVersionSize + 8
	e := wire.NewEncoder(size)

	e.String(r.oid.Name)
	encodePGID(e, r.pgid)
	e.I64(int64(r.flags))
	e.I32(r.result)
	encodeEVersion(e, r.badReplayVersion)
	e.U32(r.epoch)

	e.U32(uint32(len(r.ops))) //nolint:gosec
	for _, op := range r.ops {
		e.U16(uint16(op.Code))
		e.U32(op.Flags)
		e.U32(op.PayloadLen)
	}

	e.I32(r.retryAttempt)

	for _, op := range r.ops {
		e.I32(op.Rval)
	}

	encodeEVersion(e, r.replayVersion)
	e.U64(r.userVersion)
	return e.Output()
}

// Format: [version (8)][epoch (4)]
func encodeEVersion(e *wire.Encoder, v osd.EVersion) {
	e.U64(v.Version)
	e.U32(v.Epoch)
}

// Format: [struct_v (1)][pool (8)][seed (4)][preferred (4)]
func encodePGID(e *wire.Encoder, p osd.PGID) {
	e.U8(osd.PGIDStructVersion)
	e.U64(p.Pool)
	e.U32(p.Seed)
	e.I32(p.Preferred)
}
