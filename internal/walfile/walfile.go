// Package walfile implements a single WAL segment file: an exclusively
// locked, append-only, length-prefixed record stream with size-based
// rollover.
package walfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"go.etcd.io/etcd/client/pkg/v3/fileutil"

	"github.com/dyxushuai/mumgo/internal/mumerr"
	"github.com/dyxushuai/mumgo/internal/record"
)

// SegmentSize is the rollover threshold.
const SegmentSize = 32 << 20

// File is one WAL segment: a locked file handle plus a buffered writer over
// it. The write cursor only ever advances; Iterate reads through a separate
// *os.File view so it never disturbs the append position.
type File struct {
	Path string
	f    *os.File
	w    *bufio.Writer
	lock *fileutil.LockedFile
}

// Create opens path for read+write+append, acquiring the exclusive OS
// advisory lock. It fails if the path exists and is already locked by
// another process.
func Create(path string) (*File, error) {
	lf, err := fileutil.TryLockFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, mumerr.IO(err, "walfile: create "+path)
	}
	return &File{Path: path, f: lf.File, w: bufio.NewWriter(lf.File), lock: lf}, nil
}

// Open is Create's counterpart for a pre-existing segment file.
func Open(path string) (*File, error) {
	lf, err := fileutil.TryLockFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, mumerr.IO(err, "walfile: open "+path)
	}
	if _, err := lf.Seek(0, io.SeekEnd); err != nil {
		return nil, mumerr.IO(err, "walfile: seek to end "+path)
	}
	return &File{Path: path, f: lf.File, w: bufio.NewWriter(lf.File), lock: lf}, nil
}

// InsertRecord appends len(encoded) as a little-endian u64 followed by the
// encoded record. It never calls fsync; callers batch writes and call Sync
// explicitly.
func (f *File) InsertRecord(r record.Record) error {
	enc := r.Marshal()
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(enc)))
	if _, err := f.w.Write(lenBuf[:]); err != nil {
		return mumerr.IO(err, "walfile: write length prefix")
	}
	if _, err := f.w.Write(enc); err != nil {
		return mumerr.IO(err, "walfile: write record")
	}
	return nil
}

// Sync flushes the buffered writer, then fdatasyncs the underlying file.
// Flush must happen before fsync or buffered bytes would never reach disk.
func (f *File) Sync() error {
	if err := f.w.Flush(); err != nil {
		return mumerr.IO(err, "walfile: flush")
	}
	if err := fileutil.Fdatasync(f.f); err != nil {
		return mumerr.IO(err, "walfile: fdatasync")
	}
	return nil
}

// Size returns the current write offset.
func (f *File) Size() (int64, error) {
	off, err := f.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, mumerr.IO(err, "walfile: seek current")
	}
	return off + int64(f.w.Buffered()), nil
}

// CheckCut reports whether the segment has grown past SegmentSize.
func (f *File) CheckCut() (bool, error) {
	sz, err := f.Size()
	if err != nil {
		return false, err
	}
	return sz >= SegmentSize, nil
}

// Iterate reads every record in file order through a fresh read view,
// independent of the write cursor. It stops at EOF or the first decode
// error; a decode error before EOF is reported to onTruncate as a tail
// truncation rather than surfaced.
func (f *File) Iterate(onTruncate func(error), fn func(record.Record) error) error {
	if err := f.w.Flush(); err != nil {
		return mumerr.IO(err, "walfile: flush before iterate")
	}
	rf, err := os.Open(f.Path)
	if err != nil {
		return mumerr.IO(err, "walfile: open read view")
	}
	defer rf.Close()

	r := bufio.NewReader(rf)
	for {
		var lenBuf [8]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				return mumerr.IO(err, "walfile: read length prefix")
			}
			if err == io.ErrUnexpectedEOF && onTruncate != nil {
				onTruncate(err)
			}
			return nil
		}
		n := binary.LittleEndian.Uint64(lenBuf[:])
		body := make([]byte, n)
		if _, err := io.ReadFull(r, body); err != nil {
			if onTruncate != nil {
				onTruncate(err)
			}
			return nil
		}
		rec, err := record.Unmarshal(bytes.NewReader(body))
		if err != nil {
			if onTruncate != nil {
				onTruncate(err)
			}
			return nil
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// Close flushes and syncs any buffered writes, then releases the OS lock
// and closes the underlying file.
func (f *File) Close() error {
	if err := f.Sync(); err != nil {
		return err
	}
	return f.lock.Close()
}
