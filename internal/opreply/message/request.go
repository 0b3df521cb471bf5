package message

import "github.com/julianstephens/opreply/internal/opreply/osd"

// Request is the view of an originating object operation request that a
// reply is built from.
type Request interface {
	Tid() uint64
	ObjectID() osd.ObjectID
	PGID() osd.PGID
	Ops() []osd.Op
	Flags() osd.Flags
	RetryAttempt() int32
}

// OpRequest is a plain Request value.
type OpRequest struct {
	TID      uint64
	OID      osd.ObjectID
	PG       osd.PGID
	OpList   []osd.Op
	ReqFlags osd.Flags
	Attempt  int32
}

func (r *OpRequest) Tid() uint64            { return r.TID }
func (r *OpRequest) ObjectID() osd.ObjectID { return r.OID }
func (r *OpRequest) PGID() osd.PGID         { return r.PG }
func (r *OpRequest) Ops() []osd.Op          { return r.OpList }
func (r *OpRequest) Flags() osd.Flags       { return r.ReqFlags }
func (r *OpRequest) RetryAttempt() int32    { return r.Attempt }

var _ Request = (*OpRequest)(nil)
