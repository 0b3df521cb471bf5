package message

import (
	"fmt"
	"strings"

	"github.com/julianstephens/opreply/internal/opreply/osd"
)

// String renders the reply as
//
//	osd_op_reply(<tid> <oid> [<ops>] <ack> = <result> (<error text>))
//
// It only reads the reply.
func (r *Reply) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(%d %s %s", TypeName, r.tid, r.oid, osd.FormatOps(r.ops))
	b.WriteString(" ")
	b.WriteString(r.flags.AckString())
	fmt.Fprintf(&b, " = %d", r.result)
	if r.result < 0 {
		fmt.Fprintf(&b, " (%s)", osd.ErrnoString(r.result))
	}
	b.WriteString(")")
	return b.String()
}
