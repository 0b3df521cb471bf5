package message

import (
	"github.com/julianstephens/opreply/internal/opreply/envelope"
	"github.com/julianstephens/opreply/internal/opreply/osd"
)

// ToFrame encodes the reply for a peer advertising features and wraps it in
// an envelope carrying the reply's tid.
func (r *Reply) ToFrame(features osd.Features) envelope.Frame {
	enc := r.EncodePayload(features)
	compat := CompatVersion
	if enc.Version < compat {
		compat = enc.Version
	}
	return envelope.Frame{
		Header: envelope.Header{
			Type:          MsgTypeOSDOpReply,
			Version:       enc.Version,
			CompatVersion: compat,
			Tid:           r.tid,
		},
		Payload: enc.Payload,
		Data:    enc.Data,
	}
}

// FromFrame decodes a reply from an envelope. Frames of another type, or
// whose compat version is newer than HeadVersion, are rejected before the
// payload is read.
func FromFrame(f envelope.Frame) (*Reply, error) {
	h := f.Header
	if h.Type != MsgTypeOSDOpReply {
		return nil, &FrameError{Type: h.Type, Version: h.Version, CompatVersion: h.CompatVersion, Err: ErrUnexpectedType}
	}
	if h.CompatVersion > HeadVersion {
		return nil, &FrameError{Type: h.Type, Version: h.Version, CompatVersion: h.CompatVersion, Err: ErrIncompatibleVersion}
	}

	r, err := DecodePayload(h.Version, f.Payload, f.Data)
	if err != nil {
		return nil, err
	}
	r.tid = h.Tid
	return r, nil
}
