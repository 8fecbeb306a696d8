package snapshotter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.etcd.io/raft/v3/raftpb"

	"github.com/dyxushuai/mumgo/raftlog"
)

func mkSnap(index, term uint64, data string) raftpb.Snapshot {
	return raftpb.Snapshot{
		Data: []byte(data),
		Metadata: raftpb.SnapshotMetadata{
			Index: index,
			Term:  term,
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, raftlog.NewGlog())

	snap := mkSnap(10, 2, "payload")
	require.NoError(t, s.Save(snap))

	got, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, snap.Data, got.Data)
	require.Equal(t, snap.Metadata.Index, got.Metadata.Index)
}

func TestLoadReturnsNewestByTermIndex(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, raftlog.NewGlog())

	require.NoError(t, s.Save(mkSnap(5, 1, "old")))
	require.NoError(t, s.Save(mkSnap(10, 1, "new")))

	got, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(10), got.Metadata.Index)
}

func TestCorruptSnapshotIsQuarantined(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, raftlog.NewGlog())

	snap := mkSnap(1, 1, "payload")
	require.NoError(t, s.Save(snap))

	path := filepath.Join(dir, name(1, 1))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, ok, err := s.Load()
	require.NoError(t, err)
	require.False(t, ok)

	_, statErr := os.Stat(path + brokenExt)
	require.NoError(t, statErr)
}

func TestLoadNoSnapshots(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, raftlog.NewGlog())

	_, ok, err := s.Load()
	require.NoError(t, err)
	require.False(t, ok)
}
