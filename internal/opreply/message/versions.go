package message

import "github.com/julianstephens/opreply/internal/opreply/osd"

// SetReplyVersions records the versions produced by a successful write.
//
// Legacy peers only read the bad replay version and treat it as the version
// the op produced. Watch-style ops advance the replay version without
// advancing the user version, so when uv is set its value replaces the
// ordinal of the marker while the epoch stays that of v.
func (r *Reply) SetReplyVersions(v osd.EVersion, uv uint64) {
	r.replayVersion = v
	r.userVersion = uv
	r.badReplayVersion = v
	if uv != 0 {
		r.badReplayVersion = r.badReplayVersion.WithVersion(uv)
	}
}

// SetEnoentReplyVersions records versions for a reply to an op whose target
// does not exist. No log entry was written, so the replay version is left
// alone and the marker carries v unmodified.
func (r *Reply) SetEnoentReplyVersions(v osd.EVersion, uv uint64) {
	r.userVersion = uv
	r.badReplayVersion = v
}
