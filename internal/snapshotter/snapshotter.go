// Package snapshotter writes and reads CRC-framed state-machine checkpoints,
// discovering the newest valid snapshot and quarantining corrupt ones
// in place rather than repairing them.
package snapshotter

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.etcd.io/raft/v3"
	"go.etcd.io/raft/v3/raftpb"

	"github.com/dyxushuai/mumgo/internal/mumerr"
	"github.com/dyxushuai/mumgo/raftlog"
)

const (
	snapExt   = ".snap"
	brokenExt = ".broken"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Snapshotter persists raftpb.Snapshot values under dir.
type Snapshotter struct {
	dir string
	log raftlog.Logger
}

// New returns a Snapshotter rooted at dir. dir must already exist.
func New(dir string, log raftlog.Logger) *Snapshotter {
	return &Snapshotter{dir: dir, log: log}
}

func name(term, index uint64) string {
	return fmt.Sprintf("%016x-%016x%s", term, index, snapExt)
}

// Save writes (crc32c(bytes), bytes) to {term}-{index}.snap. An empty
// snapshot is not written and Save returns nil for it. On I/O failure it
// attempts to remove the partial file and surfaces the original error.
func (s *Snapshotter) Save(snap raftpb.Snapshot) error {
	if raft.IsEmptySnap(snap) {
		return nil
	}
	data, err := snap.Marshal()
	if err != nil {
		return mumerr.Serialization(err, "snapshotter: marshal snapshot")
	}

	path := filepath.Join(s.dir, name(snap.Metadata.Term, snap.Metadata.Index))
	if werr := s.writeFile(path, data); werr != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			_ = os.Remove(path)
		}
		return werr
	}
	return nil
}

func (s *Snapshotter) writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return mumerr.IO(err, "snapshotter: create "+path)
	}
	defer f.Close()

	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], crc32.Checksum(data, castagnoli))
	if _, err := f.Write(hdr[:]); err != nil {
		return mumerr.IO(err, "snapshotter: write crc")
	}
	if _, err := f.Write(data); err != nil {
		return mumerr.IO(err, "snapshotter: write payload")
	}
	return f.Sync()
}

// Load enumerates *.snap files newest-name-first, returning the first one
// whose stored CRC matches a freshly computed CRC over its payload. Files
// that fail are renamed with a .broken suffix and skipped. Returns
// (raftpb.Snapshot{}, false, nil) if no valid snapshot exists.
func (s *Snapshotter) Load() (raftpb.Snapshot, bool, error) {
	names, err := s.listDesc()
	if err != nil {
		return raftpb.Snapshot{}, false, err
	}
	for _, n := range names {
		path := filepath.Join(s.dir, n)
		snap, err := s.loadOne(path)
		if err != nil {
			s.log.Warningf("snapshotter: quarantining corrupt snapshot %s: %v", path, err)
			s.broken(path)
			continue
		}
		return snap, true, nil
	}
	return raftpb.Snapshot{}, false, nil
}

func (s *Snapshotter) loadOne(path string) (raftpb.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return raftpb.Snapshot{}, mumerr.IO(err, "snapshotter: read "+path)
	}
	if len(raw) < 4 {
		return raftpb.Snapshot{}, mumerr.Integrity(fmt.Errorf("truncated snapshot file"), path)
	}
	stored := binary.LittleEndian.Uint32(raw[:4])
	payload := raw[4:]
	if crc32.Checksum(payload, castagnoli) != stored {
		return raftpb.Snapshot{}, mumerr.Integrity(mumerr.ErrCrcMismatch, path)
	}
	var snap raftpb.Snapshot
	if err := snap.Unmarshal(payload); err != nil {
		return raftpb.Snapshot{}, mumerr.Serialization(err, "snapshotter: unmarshal "+path)
	}
	return snap, nil
}

// broken renames path to path+".broken", logging a warning (not an error)
// if the rename itself fails.
func (s *Snapshotter) broken(path string) {
	if err := os.Rename(path, path+brokenExt); err != nil {
		s.log.Warningf("snapshotter: rename %s to broken: %v", path, err)
	}
}

func (s *Snapshotter) listDesc() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, mumerr.Path(err, "snapshotter: read dir "+s.dir)
	}
	var names []string
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), snapExt) || strings.HasSuffix(e.Name(), brokenExt) {
			continue
		}
		if _, _, ok := parseName(e.Name()); !ok {
			s.log.Warningf("snapshotter: ignoring unparseable file %s", e.Name())
			continue
		}
		names = append(names, e.Name())
	}
	// Fixed-width hex names sort the same as their (term, index) pairs, so a
	// reverse string sort yields newest-first.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func parseName(n string) (term, index uint64, ok bool) {
	base := strings.TrimSuffix(n, snapExt)
	parts := strings.SplitN(base, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	t, err1 := strconv.ParseUint(parts[0], 16, 64)
	i, err2 := strconv.ParseUint(parts[1], 16, 64)
	return t, i, err1 == nil && err2 == nil
}
