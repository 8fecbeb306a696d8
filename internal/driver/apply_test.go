package driver

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.etcd.io/raft/v3/raftpb"

	"github.com/dyxushuai/mumgo/internal/kvstore"
	"github.com/dyxushuai/mumgo/internal/mumpb"
	"github.com/dyxushuai/mumgo/metrics"
	"github.com/dyxushuai/mumgo/raftlog"
)

func newTestDriver() *Driver {
	return &Driver{
		id:      1,
		kv:      kvstore.New(),
		log:     raftlog.NewGlog(),
		metrics: metrics.NewNop(),
		cfg:     Config{SnapshotTrigCount: 1, SnapshotCatchupEntries: 1},
	}
}

func TestApplyNormalSetAndDelete(t *testing.T) {
	d := newTestDriver()

	op := &mumpb.OpRequest{Type: mumpb.OpSet, Key: []byte("a"), Value: []byte("1")}
	data, err := op.Marshal()
	require.NoError(t, err)

	d.applyEntry(raftpb.Entry{Type: raftpb.EntryNormal, Index: 1, Data: data})
	require.Equal(t, uint64(1), d.appliedIndex)

	v, ok := d.kv.Get([]byte("a"))
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)

	del := &mumpb.OpRequest{Type: mumpb.OpDel, Key: []byte("a")}
	data, err = del.Marshal()
	require.NoError(t, err)
	d.applyEntry(raftpb.Entry{Type: raftpb.EntryNormal, Index: 2, Data: data})
	require.Equal(t, uint64(2), d.appliedIndex)

	_, ok = d.kv.Get([]byte("a"))
	require.False(t, ok)
}

func TestApplyNormalIgnoresEmptyEntry(t *testing.T) {
	d := newTestDriver()
	d.applyEntry(raftpb.Entry{Type: raftpb.EntryNormal, Index: 5, Data: nil})
	require.Equal(t, uint64(5), d.appliedIndex)
}

func TestEntsToApplyTrimsAlreadyApplied(t *testing.T) {
	d := newTestDriver()
	d.appliedIndex = 3

	ents := []raftpb.Entry{
		{Index: 2}, {Index: 3}, {Index: 4}, {Index: 5},
	}
	got := d.entsToApply(ents)
	require.Len(t, got, 2)
	require.Equal(t, uint64(4), got[0].Index)
	require.Equal(t, uint64(5), got[1].Index)
}

func TestEntsToApplyKeepsAllWhenContiguous(t *testing.T) {
	d := newTestDriver()
	d.appliedIndex = 3

	ents := []raftpb.Entry{{Index: 4}, {Index: 5}}
	got := d.entsToApply(ents)
	require.Len(t, got, 2)
}
