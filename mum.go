// Package mumgo wires together the driver, transport, and RPC front-end
// into a single running cluster member. It is a small assembly point, not
// where the interesting logic lives.
package mumgo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/dyxushuai/mumgo/internal/driver"
	"github.com/dyxushuai/mumgo/internal/kvstore"
	"github.com/dyxushuai/mumgo/internal/mumpb"
	"github.com/dyxushuai/mumgo/internal/rpcserver"
	"github.com/dyxushuai/mumgo/internal/transport"
	"github.com/dyxushuai/mumgo/metrics"
	"github.com/dyxushuai/mumgo/raftlog"
)

// Config describes one cluster member. Addrs must be ordered so that
// Addrs[ID-1] is this node's own bind address.
type Config struct {
	ID      uint64
	Addrs   []string
	WALDir  string
	SnapDir string

	Logger            raftlog.Logger
	Metrics           *metrics.Recorder
	TickInterval      time.Duration
	SnapshotTrigCount uint64
	SendTimeout       time.Duration
}

// Option mutates a Config; see WithLogger, WithMetrics, etc.
type Option func(*Config)

func WithLogger(l raftlog.Logger) Option { return func(c *Config) { c.Logger = l } }
func WithMetrics(m *metrics.Recorder) Option { return func(c *Config) { c.Metrics = m } }
func WithTickInterval(d time.Duration) Option { return func(c *Config) { c.TickInterval = d } }
func WithSnapshotTrigCount(n uint64) Option { return func(c *Config) { c.SnapshotTrigCount = n } }
func WithSendTimeout(d time.Duration) Option { return func(c *Config) { c.SendTimeout = d } }

// Node is one running cluster member: a driver event loop plus a gRPC
// front-end bound to its own address.
type Node struct {
	d          *driver.Driver
	grpcServer *grpc.Server
	addr       string
	cancel     context.CancelFunc
}

// NewNode constructs a Node from cfg without starting it; call Run to bring
// it up.
func NewNode(cfg Config, opts ...Option) (*Node, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = raftlog.NewGlog()
	}
	if cfg.ID == 0 || int(cfg.ID) > len(cfg.Addrs) {
		return nil, fmt.Errorf("mumgo: id %d out of range for %d addrs", cfg.ID, len(cfg.Addrs))
	}

	sendTimeout := cfg.SendTimeout
	if sendTimeout == 0 {
		sendTimeout = 2 * time.Second
	}
	tr := transport.New(cfg.Logger, sendTimeout)

	peers := make(map[uint64]string, len(cfg.Addrs))
	for i, addr := range cfg.Addrs {
		peers[uint64(i+1)] = addr
	}

	d, err := driver.New(driver.Config{
		ID:                cfg.ID,
		Peers:             peers,
		WALDir:            cfg.WALDir,
		SnapDir:           cfg.SnapDir,
		TickInterval:      cfg.TickInterval,
		SnapshotTrigCount: cfg.SnapshotTrigCount,
		Logger:            cfg.Logger,
		Transport:         tr,
		Metrics:           cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}

	srv := grpc.NewServer()
	mumpb.RegisterMumServer(srv, rpcserver.New(d))

	return &Node{
		d:          d,
		grpcServer: srv,
		addr:       cfg.Addrs[cfg.ID-1],
	}, nil
}

// KV exposes the underlying store for embedders that want direct,
// non-RPC access (e.g. tests).
func (n *Node) KV() *kvstore.Store { return n.d.KV() }

// Run starts the driver's event loop and the gRPC listener; it blocks
// until ctx is cancelled or either of them fails.
func (n *Node) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	n.cancel = cancel
	defer cancel()

	lis, err := net.Listen("tcp", n.addr)
	if err != nil {
		return fmt.Errorf("mumgo: listen on %s: %w", n.addr, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return n.d.Run(ctx) })
	g.Go(func() error { return n.grpcServer.Serve(lis) })
	g.Go(func() error {
		<-ctx.Done()
		n.grpcServer.GracefulStop()
		return n.d.Shutdown()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Shutdown cancels Run's context, stopping the node.
func (n *Node) Shutdown() {
	if n.cancel != nil {
		n.cancel()
	}
}
