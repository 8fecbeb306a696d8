package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.etcd.io/etcd/pkg/v3/idutil"
	"go.etcd.io/raft/v3"
	"go.etcd.io/raft/v3/raftpb"

	"github.com/dyxushuai/mumgo/internal/kvstore"
	transportmock "github.com/dyxushuai/mumgo/internal/mocks/transport"
	"github.com/dyxushuai/mumgo/internal/mumpb"
	"github.com/dyxushuai/mumgo/internal/snapshotter"
	"github.com/dyxushuai/mumgo/internal/wal"
	"github.com/dyxushuai/mumgo/metrics"
	"github.com/dyxushuai/mumgo/raftlog"
)

func mustMarshalOp(t *testing.T, op *mumpb.OpRequest) []byte {
	t.Helper()
	data, err := op.Marshal()
	require.NoError(t, err)
	return data
}

// newReadyTestDriver builds a driver with a real WAL and snapshotter in
// temp dirs and a mock transport, but no raft node: onReady never touches
// the node (Advance is the loop's job).
func newReadyTestDriver(t *testing.T, tr Transport) (*Driver, string, string) {
	t.Helper()
	log := raftlog.NewGlog()
	walDir := t.TempDir()
	snapDir := t.TempDir()

	w, err := wal.Create(walDir, log)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	d := &Driver{
		id:          1,
		idgen:       idutil.NewGenerator(1, time.Now()),
		raftStorage: raft.NewMemoryStorage(),
		wal:         w,
		snap:        snapshotter.New(snapDir, log),
		kv:          kvstore.New(),
		transport:   tr,
		ticker:      time.NewTicker(time.Hour),
		log:         log,
		metrics:     metrics.NewNop(),
		cfg:         Config{SnapshotTrigCount: 1, SnapshotCatchupEntries: 1},
	}
	return d, walDir, snapDir
}

func TestOnReadyPersistsAppliesAndSnapshots(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mt := transportmock.NewMockTransport(ctrl)
	mt.EXPECT().Send(gomock.Any()).Times(1)

	d, walDir, snapDir := newReadyTestDriver(t, mt)

	ents := []raftpb.Entry{
		{Term: 1, Index: 1, Type: raftpb.EntryNormal,
			Data: mustMarshalOp(t, &mumpb.OpRequest{Type: mumpb.OpSet, Key: []byte("a"), Value: []byte("1")})},
		{Term: 1, Index: 2, Type: raftpb.EntryNormal,
			Data: mustMarshalOp(t, &mumpb.OpRequest{Type: mumpb.OpSet, Key: []byte("b"), Value: []byte("2")})},
		{Term: 1, Index: 3, Type: raftpb.EntryNormal,
			Data: mustMarshalOp(t, &mumpb.OpRequest{Type: mumpb.OpDel, Key: []byte("a")})},
	}
	rd := raft.Ready{
		HardState:        raftpb.HardState{Term: 1, Vote: 1, Commit: 3},
		Entries:          ents,
		CommittedEntries: ents,
		Messages:         []raftpb.Message{{Type: raftpb.MsgApp, To: 2}},
		MustSync:         true,
	}

	require.NoError(t, d.onReady(rd))

	// State machine reflects every committed entry, in order.
	_, ok := d.kv.Get([]byte("a"))
	require.False(t, ok)
	v, ok := d.kv.Get([]byte("b"))
	require.True(t, ok)
	require.Equal(t, []byte("2"), v)
	require.Equal(t, uint64(3), d.appliedIndex)

	// appliedIndex - snapshotIndex exceeded the trigger, so a checkpoint
	// was written.
	require.Equal(t, uint64(3), d.snapshotIndex)
	snaps, err := filepath.Glob(filepath.Join(snapDir, "*.snap"))
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	// The WAL durably holds the batch: reopen and replay.
	require.NoError(t, d.wal.Close())
	w2, err := wal.OpenAt(walDir, 0, raftlog.NewGlog())
	require.NoError(t, err)
	defer w2.Close()
	hs, replayed, err := w2.ReadAll()
	require.NoError(t, err)
	require.Equal(t, rd.HardState, hs)
	require.Len(t, replayed, 3)
}

func TestOnReadyWALErrorStopsApply(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mt := transportmock.NewMockTransport(ctrl)

	d, walDir, _ := newReadyTestDriver(t, mt)

	// Closing the WAL makes the next Insert fail; nothing may be applied.
	require.NoError(t, d.wal.Close())
	require.NoError(t, os.RemoveAll(walDir))

	ents := []raftpb.Entry{
		{Term: 1, Index: 1, Type: raftpb.EntryNormal,
			Data: mustMarshalOp(t, &mumpb.OpRequest{Type: mumpb.OpSet, Key: []byte("a"), Value: []byte("1")})},
	}
	rd := raft.Ready{Entries: ents, CommittedEntries: ents, MustSync: true}

	require.Error(t, d.onReady(rd))
	_, ok := d.kv.Get([]byte("a"))
	require.False(t, ok)
	require.Zero(t, d.appliedIndex)
}

func TestApplyConfChangeUpdatesPeers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mt := transportmock.NewMockTransport(ctrl)
	mt.EXPECT().UpsertPeer(uint64(2), "127.0.0.1:9002")
	mt.EXPECT().DeletePeer(uint64(2))

	d, _, _ := newReadyTestDriver(t, mt)
	d.node = startTestNode(t)

	add := raftpb.ConfChange{Type: raftpb.ConfChangeAddNode, NodeID: 2, Context: []byte("127.0.0.1:9002")}
	data, err := add.Marshal()
	require.NoError(t, err)
	d.applyEntry(raftpb.Entry{Term: 1, Index: 1, Type: raftpb.EntryConfChange, Data: data})

	remove := raftpb.ConfChange{Type: raftpb.ConfChangeRemoveNode, NodeID: 2}
	data, err = remove.Marshal()
	require.NoError(t, err)
	d.applyEntry(raftpb.Entry{Term: 1, Index: 2, Type: raftpb.EntryConfChange, Data: data})

	require.Equal(t, uint64(2), d.appliedIndex)
}

func TestApplyConfChangeSelfRemovalTerminates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mt := transportmock.NewMockTransport(ctrl)

	exited := false
	old := processExit
	processExit = func() { exited = true }
	defer func() { processExit = old }()

	d, _, _ := newReadyTestDriver(t, mt)
	d.node = startTestNode(t)

	remove := raftpb.ConfChange{Type: raftpb.ConfChangeRemoveNode, NodeID: d.id}
	data, err := remove.Marshal()
	require.NoError(t, err)
	d.applyEntry(raftpb.Entry{Term: 1, Index: 1, Type: raftpb.EntryConfChange, Data: data})

	require.True(t, exited)
}

func startTestNode(t *testing.T) raft.Node {
	t.Helper()
	n := raft.StartNode(&raft.Config{
		ID:              1,
		ElectionTick:    10,
		HeartbeatTick:   1,
		Storage:         raft.NewMemoryStorage(),
		MaxSizePerMsg:   1 << 20,
		MaxInflightMsgs: 256,
	}, []raft.Peer{{ID: 1}, {ID: 2}})
	t.Cleanup(n.Stop)
	return n
}

func TestDispatchConfChangeLeavesCallerUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mt := transportmock.NewMockTransport(ctrl)

	d, _, _ := newReadyTestDriver(t, mt)
	d.node = startTestNode(t)

	// The proposal id is stamped on a copy; the caller's ConfChange must
	// not be mutated.
	// The test node has no leader, so the proposal itself blocks until the
	// context expires; dispatch logs that and returns.
	cc := raftpb.ConfChange{Type: raftpb.ConfChangeAddNode, NodeID: 2}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	d.dispatch(ctx, NewConfChangeItem(&cc))
	require.Zero(t, cc.ID)
}

func TestConfChangeIDsAreUniqueAndNonZero(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mt := transportmock.NewMockTransport(ctrl)

	d, _, _ := newReadyTestDriver(t, mt)

	a, b := d.idgen.Next(), d.idgen.Next()
	require.NotZero(t, a)
	require.NotEqual(t, a, b)
}
