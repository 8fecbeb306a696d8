package driver

import (
	"go.etcd.io/raft/v3/raftpb"

	"github.com/dyxushuai/mumgo/internal/mumpb"
)

// kind tags WorkItem's exactly-one-set variant.
type kind int

const (
	kindRaftMessage kind = iota
	kindOp
	kindConfChange
)

// WorkItem is what RPC handlers hand to the driver's event loop: either an
// inbound raft message, a client mutation proposal, or a membership
// change proposal. Construct one through the New*Item functions below so
// exactly one variant is ever populated.
type WorkItem struct {
	kind        kind
	raftMessage raftpb.Message
	op          *mumpb.OpRequest
	confChange  *raftpb.ConfChange
}

// NewRaftMessageItem wraps an inbound raft message to be stepped into the
// consensus handle.
func NewRaftMessageItem(m raftpb.Message) WorkItem {
	return WorkItem{kind: kindRaftMessage, raftMessage: m}
}

// NewOpItem wraps a client mutation to be proposed. Get/Scan never produce
// a WorkItem; they're served directly from the KV store by the RPC layer.
func NewOpItem(op *mumpb.OpRequest) WorkItem {
	return WorkItem{kind: kindOp, op: op}
}

// NewConfChangeItem wraps a membership change to be proposed.
func NewConfChangeItem(cc *raftpb.ConfChange) WorkItem {
	return WorkItem{kind: kindConfChange, confChange: cc}
}
