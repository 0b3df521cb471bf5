package workload

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/opreply/internal/opreply"
	"github.com/julianstephens/opreply/internal/opreply/message"
	"github.com/julianstephens/opreply/internal/opreply/osd"
	"github.com/julianstephens/opreply/internal/opreply/tid"
)

// Kind is the shape of a generated reply.
type Kind int

const (
	// KindWrite advances both the replay and the user version.
	KindWrite Kind = iota
	// KindRead returns out data and reports the object's user version.
	KindRead
	// KindEnoent answers an op against a missing object.
	KindEnoent
	// KindWatch advances the replay version only.
	KindWatch
)

var kindNames = map[Kind]string{
	KindWrite:  "write",
	KindRead:   "read",
	KindEnoent: "enoent",
	KindWatch:  "watch",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a kind name to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(name, n) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("workload: unknown kind %q", name)
}

// AllKinds lists every kind in declaration order.
func AllKinds() []Kind {
	return []Kind{KindWrite, KindRead, KindEnoent, KindWatch}
}

type Options struct {
	Seed  int64
	Pool  uint64
	PGNum uint32
	// Kinds restricts the generated reply kinds; empty means AllKinds.
	Kinds []Kind
	// MaxOutData bounds the out data attached to a single read op.
	MaxOutData int
	// Epoch is the map epoch replies start at.
	Epoch uint32
}

func DefaultOptions() Options {
	return Options{
		Seed:       1,
		Pool:       opreply.DefaultPool,
		PGNum:      opreply.DefaultPGNum,
		Kinds:      AllKinds(),
		MaxOutData: 4096,
		Epoch:      1,
	}
}

// Generator produces a reproducible stream of replies. Two generators with
// the same options and allocator state yield byte-identical replies.
//
// A Generator is not safe for concurrent use.
type Generator struct {
	rng  *rand.Rand
	tids tid.Allocator
	opts Options

	// version is the placement group's log position; userVersion trails it
	// by the watch ops that did not change object data.
	version     uint64
	userVersion uint64
	epoch       uint32
}

func NewGenerator(tids tid.Allocator, opts Options) *Generator {
	if len(opts.Kinds) == 0 {
		opts.Kinds = AllKinds()
	}
	if opts.MaxOutData <= 0 {
		opts.MaxOutData = 1
	}
	if opts.PGNum == 0 {
		opts.PGNum = opreply.DefaultPGNum
	}
	return &Generator{
		rng:   rand.New(rand.NewSource(opts.Seed)), //nolint:gosec
		tids:  tids,
		opts:  opts,
		epoch: opts.Epoch,
	}
}

// Next returns the next reply and its kind.
func (g *Generator) Next() (*message.Reply, Kind, error) {
	kind := g.opts.Kinds[g.rng.Intn(len(g.opts.Kinds))]

	// Map epochs move slowly relative to ops.
	if g.rng.Intn(50) == 0 {
		g.epoch++
	}

	oid, err := g.objectID()
	if err != nil {
		return nil, kind, err
	}

	var r *message.Reply
	switch kind {
	case KindWrite:
		r, err = g.write(oid)
	case KindRead:
		r, err = g.read(oid)
	case KindEnoent:
		r, err = g.enoent(oid)
	case KindWatch:
		r, err = g.watch(oid)
	default:
		err = fmt.Errorf("workload: unknown kind %d", int(kind))
	}
	return r, kind, err
}

func (g *Generator) objectID() (osd.ObjectID, error) {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return osd.ObjectID{}, err
	}
	return osd.ObjectID{Name: "rbd_data." + strings.ReplaceAll(id.String(), "-", "")}, nil
}

func (g *Generator) request(oid osd.ObjectID, flags osd.Flags, codes ...osd.OpCode) *message.OpRequest {
	ops := make([]osd.Op, len(codes))
	for i, c := range codes {
		ops[i] = osd.Op{Code: c, PayloadLen: uint32(g.rng.Intn(8192))} //nolint:gosec
	}
	return &message.OpRequest{
		TID:      g.tids.Next(),
		OID:      oid,
		PG:       osd.PGIDFor(oid, g.opts.Pool, g.opts.PGNum),
		OpList:   ops,
		ReqFlags: flags,
		Attempt:  int32(g.rng.Intn(3)), //nolint:gosec
	}
}

func (g *Generator) nextVersion() osd.EVersion {
	g.version++
	return osd.EVersion{Epoch: g.epoch, Version: g.version}
}

func (g *Generator) write(oid osd.ObjectID) (*message.Reply, error) {
	codes := []osd.OpCode{osd.OpWrite}
	if g.rng.Intn(2) == 0 {
		codes = append(codes, osd.OpSetXattr)
	}
	req := g.request(oid, osd.FlagWrite|osd.FlagOnDisk, codes...)
	r := message.NewReplyFromRequest(req, 0, g.epoch, osd.FlagOnDisk)

	v := g.nextVersion()
	g.userVersion = v.Version
	r.SetReplyVersions(v, g.userVersion)
	return r, nil
}

func (g *Generator) read(oid osd.ObjectID) (*message.Reply, error) {
	req := g.request(oid, osd.FlagRead|osd.FlagAck, osd.OpRead, osd.OpStat)
	r := message.NewReplyFromRequest(req, 0, g.epoch, osd.FlagAck)

	executed := osd.CloneOps(req.OpList)
	executed[0].OutData = g.outData(1 + g.rng.Intn(g.opts.MaxOutData))
	executed[1].OutData = g.outData(16)
	if _, err := r.SwapOps(executed); err != nil {
		return nil, err
	}
	r.SetReplyVersions(osd.EVersion{}, g.userVersion)
	return r, nil
}

func (g *Generator) enoent(oid osd.ObjectID) (*message.Reply, error) {
	code := osd.OpRead
	if g.rng.Intn(2) == 0 {
		code = osd.OpDelete
	}
	req := g.request(oid, osd.FlagAck, code)
	r := message.NewReplyFromRequest(req, -2, g.epoch, osd.FlagAck)

	executed := osd.CloneOps(req.OpList)
	executed[0].Rval = -2
	if _, err := r.SwapOps(executed); err != nil {
		return nil, err
	}
	r.SetEnoentReplyVersions(osd.EVersion{Epoch: g.epoch, Version: g.version}, g.userVersion)
	return r, nil
}

func (g *Generator) watch(oid osd.ObjectID) (*message.Reply, error) {
	req := g.request(oid, osd.FlagWrite|osd.FlagOnDisk, osd.OpWatch)
	r := message.NewReplyFromRequest(req, 0, g.epoch, osd.FlagOnDisk)
	r.SetReplyVersions(g.nextVersion(), g.userVersion)
	return r, nil
}

func (g *Generator) outData(n int) []byte {
	b := make([]byte, n)
	_, _ = g.rng.Read(b)
	return b
}
