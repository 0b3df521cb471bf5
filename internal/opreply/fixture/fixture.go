package fixture

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/julianstephens/opreply/internal/opreply"
	"github.com/julianstephens/opreply/internal/opreply/message"
	"github.com/julianstephens/opreply/internal/opreply/osd"
)

// Fixture is a TOML description of a reply, as written by hand for the
// encode command and for tests.
//
//	tid = 42
//	object = "rbd_data.1234"
//	pool = 2
//	request_flags = ["read"]
//	ack = "ondisk"
//	epoch = 42
//
//	[versions]
//	mode = "write"
//	epoch = 3
//	version = 10
//	user_version = 7
//
//	[[op]]
//	code = "read"
//	out = "hello, object"
type Fixture struct {
	Tid    uint64 `toml:"tid"`
	Object string `toml:"object"`
	Pool   uint64 `toml:"pool"`
	// Seed pins the placement group. When absent it is derived from the
	// object name and PGNum.
	Seed         *uint32  `toml:"seed"`
	PGNum        uint32   `toml:"pg_num"`
	RequestFlags []string `toml:"request_flags"`
	Ack          string   `toml:"ack"`
	Result       int32    `toml:"result"`
	Epoch        uint32   `toml:"epoch"`
	Retry        int32    `toml:"retry"`
	Versions     Versions `toml:"versions"`
	Ops          []Op     `toml:"op"`
}

// Versions selects how the reply's versions are recorded. Mode is "write"
// (the default), "enoent", or "none".
type Versions struct {
	Mode        string `toml:"mode"`
	Epoch       uint32 `toml:"epoch"`
	Version     uint64 `toml:"version"`
	UserVersion uint64 `toml:"user_version"`
}

// Op is one executed op. Out and OutHex are mutually exclusive.
type Op struct {
	Code   string `toml:"code"`
	Flags  uint32 `toml:"flags"`
	Rval   int32  `toml:"rval"`
	Out    string `toml:"out"`
	OutHex string `toml:"out_hex"`
}

// Load reads a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, &FixtureError{Path: path, Err: ErrFixtureDecode, Cause: err}
	}
	f, err := Parse(data)
	if err != nil {
		if fe, ok := err.(*FixtureError); ok {
			fe.Path = path
		}
		return nil, err
	}
	return f, nil
}

// Parse decodes a fixture. Unknown keys are rejected.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, &FixtureError{Err: ErrFixtureDecode, Cause: err}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, &FixtureError{
			Err:   ErrFixtureDecode,
			Field: undecoded[0].String(),
			Cause: errors.New("unknown key"),
		}
	}
	return &f, nil
}

// Build turns the fixture into a reply the way a storage node would: a
// reply is made from the request, the executed ops are swapped in and the
// versions are recorded.
func (f *Fixture) Build() (*message.Reply, error) {
	if f.Object == "" {
		return nil, invalid("object", errors.New("object name is required"))
	}
	if f.Tid == 0 {
		return nil, invalid("tid", errors.New("tid 0 is reserved"))
	}
	if f.Retry < message.RetryUnknown {
		return nil, invalid("retry", fmt.Errorf("retry attempt %d is below %d", f.Retry, message.RetryUnknown))
	}

	reqFlags, err := osd.ParseFlags(f.RequestFlags)
	if err != nil {
		return nil, invalid("request_flags", err)
	}
	ack, err := osd.ParseAckKind(f.Ack)
	if err != nil {
		return nil, invalid("ack", err)
	}

	reqOps := make([]osd.Op, len(f.Ops))
	executed := make([]osd.Op, len(f.Ops))
	for i, op := range f.Ops {
		code, err := osd.ParseOpCode(op.Code)
		if err != nil {
			return nil, invalid(fmt.Sprintf("op[%d].code", i), err)
		}
		out, err := op.outData()
		if err != nil {
			return nil, invalid(fmt.Sprintf("op[%d].out", i), err)
		}
		reqOps[i] = osd.Op{Code: code, Flags: op.Flags}
		executed[i] = osd.Op{Code: code, Flags: op.Flags, Rval: op.Rval, OutData: out}
	}

	oid := osd.ObjectID{Name: f.Object}
	req := &message.OpRequest{
		TID:      f.Tid,
		OID:      oid,
		PG:       f.pgid(oid),
		OpList:   reqOps,
		ReqFlags: reqFlags,
		Attempt:  f.Retry,
	}

	r := message.NewReplyFromRequest(req, f.Result, f.Epoch, ack)
	if _, err := r.SwapOps(executed); err != nil {
		return nil, err
	}

	v := osd.EVersion{Epoch: f.Versions.Epoch, Version: f.Versions.Version}
	switch strings.ToLower(f.Versions.Mode) {
	case "", "write":
		r.SetReplyVersions(v, f.Versions.UserVersion)
	case "enoent":
		r.SetEnoentReplyVersions(v, f.Versions.UserVersion)
	case "none":
	default:
		return nil, invalid("versions.mode", fmt.Errorf("unknown mode %q", f.Versions.Mode))
	}
	return r, nil
}

func (f *Fixture) pgid(oid osd.ObjectID) osd.PGID {
	if f.Seed != nil {
		return osd.PGID{Pool: f.Pool, Seed: *f.Seed, Preferred: -1}
	}
	pgNum := f.PGNum
	if pgNum == 0 {
		pgNum = opreply.DefaultPGNum
	}
	return osd.PGIDFor(oid, f.Pool, pgNum)
}

func (o Op) outData() ([]byte, error) {
	switch {
	case o.Out != "" && o.OutHex != "":
		return nil, errors.New("out and out_hex are mutually exclusive")
	case o.OutHex != "":
		return hex.DecodeString(o.OutHex)
	case o.Out != "":
		return []byte(o.Out), nil
	}
	return nil, nil
}
