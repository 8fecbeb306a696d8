package driver

import "go.etcd.io/raft/v3/raftpb"

// Transport is the outbound peer surface the driver drives: a node-id ->
// address directory plus a fire-and-forget unary send. Implemented by
// internal/transport; mocked in internal/mocks/transport for driver tests.
type Transport interface {
	// UpsertPeer records (or updates) the address for a node id.
	UpsertPeer(id uint64, addr string)
	// DeletePeer removes a node id from the directory.
	DeletePeer(id uint64)
	// Send delivers msg to msg.To best-effort, without blocking the caller.
	Send(msg raftpb.Message)
	// TearDown closes any pooled connections.
	TearDown() error
}
