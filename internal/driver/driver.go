// Package driver is the node driver: the event loop that multiplexes
// inbound work items and a tick timer, advances the consensus state,
// persists Ready batches to the WAL before any observable side effect,
// applies committed entries to the KV store, and triggers/publishes
// snapshots.
package driver

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.etcd.io/etcd/pkg/v3/idutil"
	"go.etcd.io/raft/v3"
	"go.etcd.io/raft/v3/raftpb"

	"github.com/dyxushuai/mumgo/internal/kvstore"
	"github.com/dyxushuai/mumgo/internal/mumerr"
	"github.com/dyxushuai/mumgo/internal/snapshotter"
	"github.com/dyxushuai/mumgo/internal/wal"
	"github.com/dyxushuai/mumgo/metrics"
	"github.com/dyxushuai/mumgo/raftlog"
)

// Driver owns the consensus handle and serializes all access to it on a
// single goroutine; no other component ever touches the raft.Node, the WAL
// or the snapshotter.
type Driver struct {
	id uint64

	appliedIndex  uint64
	snapshotIndex uint64
	confState     raftpb.ConfState

	// idgen issues conf-change proposal ids; it mixes the node id and a
	// timestamp so ids stay unique across restarts.
	idgen *idutil.Generator

	node        raft.Node
	raftStorage *raft.MemoryStorage
	wal         *wal.WAL
	snap        *snapshotter.Snapshotter
	kv          *kvstore.Store
	transport   Transport

	items  chan WorkItem
	ticker *time.Ticker

	log     raftlog.Logger
	metrics *metrics.Recorder
	cfg     Config
}

// KV exposes the state machine for RPC handlers serving Get/Scan directly,
// bypassing consensus entirely. Reads are served from local memory and are
// not linearizable.
func (d *Driver) KV() *kvstore.Store { return d.kv }

// New bootstraps a Driver: it loads the newest valid snapshot, opens (or
// creates) the WAL at that point, replays every record, and constructs the
// consensus handle accordingly. Replay failures are fatal: the replicated
// state is unrecoverable otherwise.
func New(cfg Config) (*Driver, error) {
	cfg.setDefaults()

	if err := os.MkdirAll(cfg.WALDir, 0o750); err != nil {
		return nil, mumerr.Path(err, "driver: mkdir wal dir")
	}
	if err := os.MkdirAll(cfg.SnapDir, 0o750); err != nil {
		return nil, mumerr.Path(err, "driver: mkdir snap dir")
	}

	snap := snapshotter.New(cfg.SnapDir, cfg.Logger)
	kv := kvstore.New()

	snapshot, hasSnapshot, err := snap.Load()
	if err != nil {
		cfg.Logger.Fatal(fmt.Sprintf("driver: load snapshot: %v", err))
	}

	fresh := !wal.Exist(cfg.WALDir)

	var w *wal.WAL
	if fresh {
		w, err = wal.Create(cfg.WALDir, cfg.Logger)
	} else {
		startIndex := uint64(0)
		if hasSnapshot {
			startIndex = snapshot.Metadata.Index
		}
		w, err = wal.OpenAt(cfg.WALDir, startIndex, cfg.Logger)
	}
	if err != nil {
		cfg.Logger.Fatal(fmt.Sprintf("driver: open wal: %v", err))
	}

	hs, entries, err := w.ReadAll()
	if err != nil {
		cfg.Logger.Fatal(fmt.Sprintf("driver: read wal: %v", err))
	}

	raftStorage := raft.NewMemoryStorage()
	d := &Driver{
		id:          cfg.ID,
		idgen:       idutil.NewGenerator(uint16(cfg.ID), time.Now()),
		raftStorage: raftStorage,
		wal:         w,
		snap:        snap,
		kv:          kv,
		transport:   cfg.Transport,
		items:       make(chan WorkItem, cfg.ItemQueueSize),
		ticker:      time.NewTicker(cfg.TickInterval),
		log:         cfg.Logger,
		metrics:     cfg.Metrics,
		cfg:         cfg,
	}

	if hasSnapshot {
		if err := raftStorage.ApplySnapshot(snapshot); err != nil {
			cfg.Logger.Fatal(fmt.Sprintf("driver: apply snapshot to storage: %v", err))
		}
		if err := kv.ImportSnapshot(snapshot.Data); err != nil {
			cfg.Logger.Fatal(fmt.Sprintf("driver: import snapshot into kv: %v", err))
		}
		d.appliedIndex = snapshot.Metadata.Index
		d.snapshotIndex = snapshot.Metadata.Index
		d.confState = snapshot.Metadata.ConfState
	}

	if err := raftStorage.SetHardState(hs); err != nil {
		cfg.Logger.Fatal(fmt.Sprintf("driver: set hardstate: %v", err))
	}
	if len(entries) > 0 {
		if err := raftStorage.Append(entries); err != nil {
			cfg.Logger.Fatal(fmt.Sprintf("driver: append replayed entries: %v", err))
		}
	}

	rc := &raft.Config{
		ID:                        cfg.ID,
		ElectionTick:              10,
		HeartbeatTick:             1,
		Storage:                   raftStorage,
		MaxSizePerMsg:             1 << 20,
		MaxInflightMsgs:           256,
		MaxUncommittedEntriesSize: 1 << 30,
		CheckQuorum:               true,
		PreVote:                   true,
	}

	if fresh {
		peers := make([]raft.Peer, 0, len(cfg.Peers))
		for id := range cfg.Peers {
			peers = append(peers, raft.Peer{ID: id})
		}
		d.node = raft.StartNode(rc, peers)
	} else {
		d.node = raft.RestartNode(rc)
	}

	for id, addr := range cfg.Peers {
		cfg.Transport.UpsertPeer(id, addr)
	}

	return d, nil
}

// Push hands a work item to the driver's event loop. It never waits for
// the proposal to commit: enqueue success is the only acknowledgement a
// client gets.
func (d *Driver) Push(ctx context.Context, item WorkItem) error {
	select {
	case d.items <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run is the event loop: it multiplexes work items, the tick timer, and
// the consensus library's Ready channel until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-d.ticker.C:
			d.node.Tick()

		case item := <-d.items:
			d.dispatch(ctx, item)

		case rd := <-d.node.Ready():
			if err := d.onReady(rd); err != nil {
				// Without Advance the library will not hand out another
				// Ready, so an unpersisted batch is never acknowledged.
				d.log.Errorf("driver: on ready: %v", err)
				continue
			}
			d.node.Advance()
		}
	}
}

func (d *Driver) dispatch(ctx context.Context, item WorkItem) {
	var err error
	switch item.kind {
	case kindRaftMessage:
		d.metrics.RaftMessageRecvTotal.Inc()
		err = d.node.Step(ctx, item.raftMessage)
	case kindOp:
		var data []byte
		data, err = item.op.Marshal()
		if err == nil {
			err = d.node.Propose(ctx, data)
		}
	case kindConfChange:
		cc := *item.confChange
		cc.ID = d.idgen.Next()
		err = d.node.ProposeConfChange(ctx, cc)
	}
	if err != nil {
		d.log.Warningf("driver: dispatch work item: %v", err)
	}
}

// Shutdown stops the ticker, the consensus handle, closes the WAL and
// tears down pooled transport connections. Work items still queued at this
// point are dropped; the WAL already holds everything that was persisted.
func (d *Driver) Shutdown() error {
	d.ticker.Stop()
	d.node.Stop()
	if err := d.wal.Close(); err != nil {
		return err
	}
	return d.transport.TearDown()
}
