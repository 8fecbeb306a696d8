// Package wal is the ordered collection of segment files that makes up the
// write-ahead log: it persists the raft library's HardState and log entries,
// replays them at bootstrap, and truncates old segments once a snapshot
// makes them unnecessary.
package wal

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.etcd.io/raft/v3/raftpb"

	"github.com/dyxushuai/mumgo/internal/mumerr"
	"github.com/dyxushuai/mumgo/internal/record"
	"github.com/dyxushuai/mumgo/internal/walfile"
	"github.com/dyxushuai/mumgo/raftlog"
)

const walExt = ".wal"

// segment is one open, locked file plus the bookkeeping WAL needs to
// address it (its sequence number and the raft index its name promises to
// start at).
type segment struct {
	seq        uint64
	startIndex uint64
	file       *walfile.File
}

func segmentName(seq, startIndex uint64) string {
	return fmt.Sprintf("%016x-%016x%s", seq, startIndex, walExt)
}

func parseSegmentName(name string) (seq, startIndex uint64, ok bool) {
	base := strings.TrimSuffix(name, walExt)
	parts := strings.SplitN(base, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	seq, err1 := strconv.ParseUint(parts[0], 16, 64)
	startIndex, err2 := strconv.ParseUint(parts[1], 16, 64)
	return seq, startIndex, err1 == nil && err2 == nil
}

// WAL is the ordered, oldest-first collection of segments currently live on
// disk, plus the raft index this WAL instance was opened/created at.
type WAL struct {
	dir   string
	start uint64
	segs  []*segment
	log   raftlog.Logger
}

// Create allocates a fresh WAL directory with a single segment at
// (seq=0, startIndex=0).
func Create(dir string, log raftlog.Logger) (*WAL, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, mumerr.Path(err, "wal: mkdir "+dir)
	}
	w := &WAL{dir: dir, start: 0, log: log}
	f, err := walfile.Create(filepath.Join(dir, segmentName(0, 0)))
	if err != nil {
		return nil, err
	}
	if err := writeIndexMarker(f, 0, 0); err != nil {
		return nil, err
	}
	w.segs = append(w.segs, &segment{seq: 0, startIndex: 0, file: f})
	return w, nil
}

// OpenAt lists *.wal files in ascending name order, retains the suffix
// starting at the segment nearest to (and not after) raftIndex, validates
// sequence numbers are strictly contiguous, and opens each.
func OpenAt(dir string, raftIndex uint64, log raftlog.Logger) (*WAL, error) {
	names, err := listAsc(dir)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, mumerr.Path(fmt.Errorf("no wal segments in %s", dir), "wal: open")
	}

	type parsed struct {
		seq, start uint64
		name       string
	}
	all := make([]parsed, 0, len(names))
	for _, n := range names {
		seq, start, ok := parseSegmentName(n)
		if !ok {
			return nil, mumerr.Path(fmt.Errorf("malformed segment name %q", n), "wal: open")
		}
		all = append(all, parsed{seq, start, n})
	}

	keepFrom := 0
	for i, p := range all {
		if p.start <= raftIndex {
			keepFrom = i
		}
	}
	kept := all[keepFrom:]

	for i := 1; i < len(kept); i++ {
		if kept[i].seq != kept[i-1].seq+1 {
			return nil, mumerr.Integrity(fmt.Errorf("non-contiguous wal sequence at %s", kept[i].name), "wal: open")
		}
	}

	w := &WAL{dir: dir, start: raftIndex, log: log}
	for _, p := range kept {
		f, err := walfile.Open(filepath.Join(dir, p.name))
		if err != nil {
			return nil, err
		}
		w.segs = append(w.segs, &segment{seq: p.seq, startIndex: p.start, file: f})
	}
	return w, nil
}

// ReadAll iterates every record across every segment, rebuilding the latest
// HardState seen (last State record wins) and the slice of entries whose
// index is greater than the WAL's start index. It verifies Crc records and
// checks that each segment's leading Index marker matches its filename.
func (w *WAL) ReadAll() (raftpb.HardState, []raftpb.Entry, error) {
	var hs raftpb.HardState
	var entries []raftpb.Entry

	for _, seg := range w.segs {
		first := true
		err := seg.file.Iterate(func(truncErr error) {
			w.log.Warningf("wal: segment %s truncated at tail: %v", seg.file.Path, truncErr)
		}, func(r record.Record) error {
			switch r.Type {
			case record.TypeIndex:
				seq, idx, ok := decodeIndexMarker(r.Data)
				if !ok {
					return mumerr.Serialization(fmt.Errorf("bad index marker"), "wal: decode index marker")
				}
				if first && (seq != seg.seq || idx != seg.startIndex) {
					return mumerr.Integrity(mumerr.ErrSnapshotMismatch, "wal: index marker seq mismatch")
				}
			case record.TypeCrc:
				if err := r.Verify(); err != nil {
					return err
				}
			case record.TypeState:
				if err := hs.Unmarshal(r.Data); err != nil {
					return mumerr.Serialization(err, "wal: decode hardstate")
				}
			case record.TypeEntry:
				var e raftpb.Entry
				if err := e.Unmarshal(r.Data); err != nil {
					return mumerr.Serialization(err, "wal: decode entry")
				}
				if e.Index > w.start {
					entries = append(entries, e)
				}
			}
			first = false
			return nil
		})
		if err != nil {
			return hs, nil, err
		}
	}
	return hs, entries, nil
}

// Insert appends each entry as an Entry record, then an optional State
// record, cutting to a new segment if the rollover threshold is exceeded,
// otherwise syncing when mustSync is set.
func (w *WAL) Insert(hs *raftpb.HardState, entries []raftpb.Entry, mustSync bool) error {
	if hs == nil && len(entries) == 0 {
		return nil
	}
	cur := w.segs[len(w.segs)-1]
	for _, e := range entries {
		data, err := e.Marshal()
		if err != nil {
			return mumerr.Serialization(err, "wal: marshal entry")
		}
		if err := cur.file.InsertRecord(record.New(record.TypeEntry, data)); err != nil {
			return err
		}
	}
	if hs != nil {
		data, err := hs.Marshal()
		if err != nil {
			return mumerr.Serialization(err, "wal: marshal hardstate")
		}
		if err := cur.file.InsertRecord(record.New(record.TypeState, data)); err != nil {
			return err
		}
	}

	cut, err := cur.file.CheckCut()
	if err != nil {
		return err
	}
	if cut {
		lastIndex := w.lastIndex(entries)
		return w.Cut(lastIndex + 1)
	}
	if mustSync {
		return cur.file.Sync()
	}
	return nil
}

func (w *WAL) lastIndex(inserted []raftpb.Entry) uint64 {
	if len(inserted) > 0 {
		return inserted[len(inserted)-1].Index
	}
	if len(w.segs) > 0 {
		return w.segs[len(w.segs)-1].startIndex
	}
	return w.start
}

// Cut syncs the current segment and opens a new one starting at
// newStartIndex.
func (w *WAL) Cut(newStartIndex uint64) error {
	cur := w.segs[len(w.segs)-1]
	if err := cur.file.Sync(); err != nil {
		return err
	}
	newSeq := cur.seq + 1
	f, err := walfile.Create(filepath.Join(w.dir, segmentName(newSeq, newStartIndex)))
	if err != nil {
		return err
	}
	if err := writeIndexMarker(f, newSeq, newStartIndex); err != nil {
		return err
	}
	w.segs = append(w.segs, &segment{seq: newSeq, startIndex: newStartIndex, file: f})
	return nil
}

// ReleaseLockTo closes and drops every segment whose entire index range is
// below index, releasing their OS locks and removing their files. The
// newest segment whose startIndex <= index is always kept.
func (w *WAL) ReleaseLockTo(index uint64) error {
	keepFrom := 0
	for i, seg := range w.segs {
		if seg.startIndex <= index {
			keepFrom = i
		}
	}
	for i := 0; i < keepFrom; i++ {
		if err := w.segs[i].file.Close(); err != nil {
			return err
		}
		if err := os.Remove(w.segs[i].file.Path); err != nil && !os.IsNotExist(err) {
			w.log.Warningf("wal: remove released segment %s: %v", w.segs[i].file.Path, err)
		}
	}
	w.segs = w.segs[keepFrom:]
	return nil
}

// Close syncs and releases the lock on every open segment.
func (w *WAL) Close() error {
	for _, seg := range w.segs {
		if err := seg.file.Close(); err != nil {
			return err
		}
	}
	return nil
}

func writeIndexMarker(f *walfile.File, seq, startIndex uint64) error {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], seq)
	binary.LittleEndian.PutUint64(buf[8:16], startIndex)
	return f.InsertRecord(record.New(record.TypeIndex, buf[:]))
}

func decodeIndexMarker(data []byte) (seq, startIndex uint64, ok bool) {
	if len(data) != 16 {
		return 0, 0, false
	}
	return binary.LittleEndian.Uint64(data[0:8]), binary.LittleEndian.Uint64(data[8:16]), true
}

func listAsc(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, mumerr.Path(err, "wal: read dir "+dir)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), walExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Exist reports whether dir already holds WAL segments.
func Exist(dir string) bool {
	names, err := listAsc(dir)
	return err == nil && len(names) > 0
}
