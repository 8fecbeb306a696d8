// Package transport is the peer directory and lazily-connected RPC client
// pool the driver sends outbound raft messages through. Sends are
// fire-and-forget: the caller never awaits delivery, unknown destinations
// are logged and dropped, and connections are pooled by address and never
// eagerly closed.
package transport

import (
	"context"
	"sync"
	"time"

	"go.etcd.io/raft/v3/raftpb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/dyxushuai/mumgo/internal/mumpb"
	"github.com/dyxushuai/mumgo/raftlog"
)

// Transport owns the node-id -> address directory and the address -> client
// pool.
type Transport struct {
	mu      sync.RWMutex
	addrs   map[uint64]string
	clients map[string]mumpb.MumClient
	conns   map[string]*grpc.ClientConn
	log     raftlog.Logger
	timeout time.Duration
}

// New returns an empty Transport. sendTimeout bounds each fire-and-forget
// RPC; it does not block Send itself.
func New(log raftlog.Logger, sendTimeout time.Duration) *Transport {
	return &Transport{
		addrs:   make(map[uint64]string),
		clients: make(map[string]mumpb.MumClient),
		conns:   make(map[string]*grpc.ClientConn),
		log:     log,
		timeout: sendTimeout,
	}
}

// UpsertPeer records (or updates) the address for a node id.
func (t *Transport) UpsertPeer(id uint64, addr string) {
	if addr == "" {
		t.log.Warningf("transport: upsert peer %x with empty address ignored", id)
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.addrs[id] = addr
}

// DeletePeer removes a node id from the directory. The underlying client
// connection, if any, is left pooled by address in case another id shares
// it.
func (t *Transport) DeletePeer(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.addrs, id)
}

func (t *Transport) clientFor(addr string) (mumpb.MumClient, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.clients[addr]; ok {
		return c, nil
	}
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, err
	}
	c := mumpb.NewMumClient(conn)
	t.conns[addr] = conn
	t.clients[addr] = c
	return c, nil
}

// Send looks up msg.To, obtains or lazily creates a client keyed by its
// address, and issues an asynchronous unary RPC. It never blocks the caller
// on the RPC's completion and never retries; the raft library is expected
// to retransmit. Unknown destinations are logged and dropped.
func (t *Transport) Send(msg raftpb.Message) {
	t.mu.RLock()
	addr, ok := t.addrs[msg.To]
	t.mu.RUnlock()
	if !ok {
		t.log.Warningf("transport: missing connection for peer %x, dropping message", msg.To)
		return
	}

	client, err := t.clientFor(addr)
	if err != nil {
		t.log.Warningf("transport: dial %s: %v", addr, err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		if _, err := client.Raft(ctx, &mumpb.RaftMessage{Message: msg}); err != nil {
			t.log.Warningf("transport: send to %x (%s): %v", msg.To, addr, err)
		}
	}()
}

// TearDown closes every pooled connection.
func (t *Transport) TearDown() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var firstErr error
	for addr, conn := range t.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(t.conns, addr)
		delete(t.clients, addr)
	}
	return firstErr
}
