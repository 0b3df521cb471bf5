package message

import (
	"github.com/julianstephens/opreply/internal/opreply/osd"
	"github.com/julianstephens/opreply/internal/opreply/wire"
)

// Struct versions at which the current layout gained each field.
const (
	versionCurrentLayout uint16 = 2 // oid, wide pgid, self-describing fields
	versionRetryAttempt  uint16 = 3
	versionOpResults     uint16 = 4 // per-op rval and split out data
	versionSplitVersions uint16 = 5 // replay_version and user_version
)

// DecodePayload rebuilds a reply from a payload and data section written at
// struct version. Fields the version does not carry are derived:
//
//	< 2  legacy layout; retry is RetryUnknown, replay version is the marker,
//	     user version is the marker's ordinal
//	< 3  retry is RetryUnknown
//	< 4  out data stays in the shared data section
//	< 5  replay version is the marker, user version is its ordinal
//
// Payloads written above HeadVersion are decoded as far as this package
// understands them and the rest is ignored.
func DecodePayload(version uint16, payload, data []byte) (*Reply, error) {
	r := NewReply()
	r.data = data

	var err error
	if version < versionCurrentLayout {
		err = r.decodeLegacy(payload)
	} else {
		err = r.decodeCurrent(version, payload)
	}
	if err != nil {
		layout := "current"
		if version < versionCurrentLayout {
			layout = "legacy"
		}
		return nil, &MalformedError{Version: version, Layout: layout, Err: err}
	}
	if version < versionOpResults {
		// data still describes the ops' payload lengths; re-encoding must
		// not merge again.
		r.merged = true
	}
	return r, nil
}

func (r *Reply) decodeLegacy(payload []byte) error {
	d := wire.NewDecoder(payload)

	pg, err := d.U64("pgid")
	if err != nil {
		return err
	}
	flags, err := d.U32("flags")
	if err != nil {
		return err
	}
	epoch, err := d.U32("epoch")
	if err != nil {
		return err
	}
	marker, err := decodeEVersion(d, "reassert_version")
	if err != nil {
		return err
	}
	result, err := d.I32("result")
	if err != nil {
		return err
	}
	numOps, err := d.U32("num_ops")
	if err != nil {
		return err
	}
	objectLen, err := d.U32("object_len")
	if err != nil {
		return err
	}

	// The header declares both the op count and the name length; together
	// they must account for the rest of the payload.
	if uint64(numOps)*LegacyOpSize+uint64(objectLen) > uint64(d.Remaining()) {
		return &wire.CodecError{
			Kind:  wire.CodecTruncated,
			Field: "ops",
			At:    d.Offset(),
			Want:  int(uint64(numOps)*LegacyOpSize + uint64(objectLen)), //nolint:gosec
			Have:  d.Remaining(),
			Err:   wire.ErrCodecTruncated,
		}
	}

	ops := make([]osd.Op, numOps)
	for i := range ops {
		code, err := d.U16("op.code")
		if err != nil {
			return err
		}
		plen, err := d.U32("op.payload_len")
		if err != nil {
			return err
		}
		ops[i] = osd.Op{Code: osd.OpCode(code), PayloadLen: plen}
	}

	name, err := d.Raw(int(objectLen), "object_name")
	if err != nil {
		return err
	}
	if err := d.RejectTrailing("payload_length"); err != nil {
		return err
	}

	r.pgid = osd.PGIDFromLegacy(osd.LegacyPGID(pg))
	r.flags = osd.Flags(flags)
	r.epoch = epoch
	r.result = result
	r.ops = ops
	r.oid = osd.ObjectID{Name: string(name)}
	r.badReplayVersion = marker
	r.replayVersion = marker
	r.userVersion = marker.Version
	r.retryAttempt = RetryUnknown
	return nil
}

func (r *Reply) decodeCurrent(version uint16, payload []byte) error {
	d := wire.NewDecoder(payload)

	name, err := d.String("oid")
	if err != nil {
		return err
	}
	pgid, err := decodePGID(d)
	if err != nil {
		return err
	}
	flags, err := d.I64("flags")
	if err != nil {
		return err
	}
	result, err := d.I32("result")
	if err != nil {
		return err
	}
	marker, err := decodeEVersion(d, "bad_replay_version")
	if err != nil {
		return err
	}
	epoch, err := d.U32("epoch")
	if err != nil {
		return err
	}

	numOps, err := d.Count("num_ops", OpSize)
	if err != nil {
		return err
	}
	ops := make([]osd.Op, numOps)
	for i := range ops {
		code, err := d.U16("op.code")
		if err != nil {
			return err
		}
		opFlags, err := d.U32("op.flags")
		if err != nil {
			return err
		}
		plen, err := d.U32("op.payload_len")
		if err != nil {
			return err
		}
		ops[i] = osd.Op{Code: osd.OpCode(code), Flags: opFlags, PayloadLen: plen}
	}

	r.oid = osd.ObjectID{Name: name}
	r.pgid = pgid
	r.flags = osd.Flags(flags)
	r.result = result
	r.badReplayVersion = marker
	r.epoch = epoch
	r.ops = ops

	r.retryAttempt = RetryUnknown
	if version >= versionRetryAttempt {
		if r.retryAttempt, err = d.I32("retry_attempt"); err != nil {
			return err
		}
	}

	if version >= versionOpResults {
		for i := range r.ops {
			if r.ops[i].Rval, err = d.I32("op.rval"); err != nil {
				return err
			}
		}
	}

	if version >= versionSplitVersions {
		if r.replayVersion, err = decodeEVersion(d, "replay_version"); err != nil {
			return err
		}
		if r.userVersion, err = d.U64("user_version"); err != nil {
			return err
		}
	} else {
		r.replayVersion = r.badReplayVersion
		r.userVersion = r.badReplayVersion.Version
	}

	if version <= HeadVersion {
		if err := d.RejectTrailing("payload_length"); err != nil {
			return err
		}
	}

	if version >= versionOpResults {
		return r.splitOutData(version)
	}
	return nil
}

// splitOutData moves the shared data section into the ops.
func (r *Reply) splitOutData(version uint16) error {
	n, err := osd.SplitOutData(r.ops, r.data)
	if err != nil {
		return err
	}
	if n != len(r.data) && version <= HeadVersion {
		return &osd.OutDataError{
			Op:   len(r.ops),
			Want: n,
			Have: len(r.data),
			Err:  wire.ErrCodecCorrupt,
		}
	}
	r.data = nil
	return nil
}

func decodeEVersion(d *wire.Decoder, field string) (osd.EVersion, error) {
	v, err := d.U64(field + ".version")
	if err != nil {
		return osd.EVersion{}, err
	}
	epoch, err := d.U32(field + ".epoch")
	if err != nil {
		return osd.EVersion{}, err
	}
	return osd.EVersion{Epoch: epoch, Version: v}, nil
}

func decodePGID(d *wire.Decoder) (osd.PGID, error) {
	sv, err := d.U8("pgid.struct_v")
	if err != nil {
		return osd.PGID{}, err
	}
	if sv != osd.PGIDStructVersion {
		return osd.PGID{}, &wire.CodecError{
			Kind:  wire.CodecInvalid,
			Field: "pgid.struct_v",
			At:    d.Offset() - 1,
			Want:  int(osd.PGIDStructVersion),
			Have:  int(sv),
			Err:   wire.ErrCodecInvalid,
		}
	}
	pool, err := d.U64("pgid.pool")
	if err != nil {
		return osd.PGID{}, err
	}
	seed, err := d.U32("pgid.seed")
	if err != nil {
		return osd.PGID{}, err
	}
	preferred, err := d.I32("pgid.preferred")
	if err != nil {
		return osd.PGID{}, err
	}
	return osd.PGID{Pool: pool, Seed: seed, Preferred: preferred}, nil
}
