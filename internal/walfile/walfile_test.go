package walfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dyxushuai/mumgo/internal/record"
)

func TestInsertSyncIterate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0.wal")

	f, err := Create(path)
	require.NoError(t, err)

	want := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	for _, d := range want {
		require.NoError(t, f.InsertRecord(record.New(record.TypeEntry, d)))
	}
	require.NoError(t, f.Sync())

	var got [][]byte
	err = f.Iterate(nil, func(r record.Record) error {
		require.NoError(t, r.Verify())
		got = append(got, r.Data)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.NoError(t, f.Close())
}

func TestIterateStopsAtTruncatedTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0.wal")

	f, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, f.InsertRecord(record.New(record.TypeEntry, []byte("whole"))))
	require.NoError(t, f.InsertRecord(record.New(record.TypeEntry, []byte("will be cut"))))
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	// Chop the last few bytes to simulate a crash mid-append.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw[:len(raw)-5], 0o600))

	f2, err := Open(path)
	require.NoError(t, err)
	defer f2.Close()

	truncated := false
	var got [][]byte
	err = f2.Iterate(func(error) { truncated = true }, func(r record.Record) error {
		got = append(got, r.Data)
		return nil
	})
	require.NoError(t, err)
	require.True(t, truncated)
	require.Equal(t, [][]byte{[]byte("whole")}, got)
}

func TestCheckCutBelowThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0.wal")

	f, err := Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.InsertRecord(record.New(record.TypeEntry, []byte("tiny"))))
	cut, err := f.CheckCut()
	require.NoError(t, err)
	require.False(t, cut)
}

func TestOpenMissingFileFails(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.wal"))
	require.Error(t, err)
}
