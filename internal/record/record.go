// Package record implements the tagged, CRC-checked unit persisted inside
// WAL segment files: Entry/State/Crc/Index records, each framed
// with a type byte, a CRC32C of the payload, and a length-prefixed body.
package record

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/dyxushuai/mumgo/internal/mumerr"
)

// Type enumerates the record variants. Types are totally ordered by this
// enum; there is no dependency graph between records within a segment.
type Type uint8

const (
	TypeEntry Type = iota
	TypeState
	TypeCrc
	TypeIndex
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Record is the persisted unit: a type tag, a CRC32C over Data, and Data
// itself.
type Record struct {
	Type Type
	CRC  uint32
	Data []byte
}

// New computes the CRC32C over data and returns the record ready to encode.
func New(t Type, data []byte) Record {
	return Record{Type: t, CRC: crc32.Checksum(data, castagnoli), Data: data}
}

// Verify recomputes the CRC and compares it against the stored one.
func (r Record) Verify() error {
	if crc32.Checksum(r.Data, castagnoli) != r.CRC {
		return mumerr.Integrity(mumerr.ErrCrcMismatch, "record: crc mismatch")
	}
	return nil
}

// Marshal encodes the record as: [1 byte type][4 bytes LE crc][8 bytes LE
// len(data)][data]. The layout is fixed; readers in other languages depend
// on it.
func (r Record) Marshal() []byte {
	buf := make([]byte, 1+4+8+len(r.Data))
	buf[0] = byte(r.Type)
	binary.LittleEndian.PutUint32(buf[1:5], r.CRC)
	binary.LittleEndian.PutUint64(buf[5:13], uint64(len(r.Data)))
	copy(buf[13:], r.Data)
	return buf
}

// Unmarshal decodes a record previously produced by Marshal, reading it
// from r. It does not check the CRC; call Verify for that.
func Unmarshal(r io.Reader) (Record, error) {
	var hdr [13]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Record{}, err
	}
	n := binary.LittleEndian.Uint64(hdr[5:13])
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return Record{}, mumerr.Serialization(err, "record: short read")
	}
	rec := Record{
		Type: Type(hdr[0]),
		CRC:  binary.LittleEndian.Uint32(hdr[1:5]),
		Data: data,
	}
	return rec, nil
}
