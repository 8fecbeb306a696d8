// Package mumpb defines the wire messages carried over the three RPCs:
// OpRequest/OpResponse for client mutations and reads,
// ConfRequest/ConfResponse for membership changes, and RaftMessage/Done for
// inbound consensus traffic. Because this environment cannot run protoc,
// the Marshal/Unmarshal pairs below are hand-written in the same
// tag/wire-type framing protoc-gen-gogofaster emits, so the wire bytes stay
// compatible with a real .proto-generated client if one is introduced later.
package mumpb

import (
	"io"

	"github.com/gogo/protobuf/proto"
	"go.etcd.io/raft/v3/raftpb"

	"github.com/dyxushuai/mumgo/internal/mumerr"
)

// OpType enumerates the four client operations.
type OpType int32

const (
	OpSet OpType = iota
	OpGet
	OpDel
	OpScan
)

// KvPair is one returned (key, value) pair.
type KvPair struct {
	Key   []byte
	Value []byte
}

// OpRequest is the Op RPC's request message.
type OpRequest struct {
	Type  OpType
	Key   []byte
	Value []byte
	Limit uint32
}

// OpResponse is the Op RPC's response message.
type OpResponse struct {
	Kvs []*KvPair
}

// ConfRequest wraps a raft library ConfChange.
type ConfRequest struct {
	Change raftpb.ConfChange
}

// ConfResponse is empty; its presence documents the RPC's response type.
type ConfResponse struct{}

// RaftMessage wraps a raft library Message.
type RaftMessage struct {
	Message raftpb.Message
}

// Done is empty; it is the Raft RPC's response type.
type Done struct{}

// --- wire framing helpers (protobuf-compatible tag/varint/length-delimited) ---

func putUvarint(buf []byte, v uint64) []byte {
	var tmp [10]byte
	n := 0
	for v >= 0x80 {
		tmp[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	tmp[n] = byte(v)
	n++
	return append(buf, tmp[:n]...)
}

func tag(field int, wireType int) uint64 { return uint64(field)<<3 | uint64(wireType) }

const (
	wireVarint = 0
	wireBytes  = 2
)

func appendBytesField(buf []byte, field int, b []byte) []byte {
	if len(b) == 0 {
		return buf
	}
	buf = putUvarint(buf, tag(field, wireBytes))
	buf = putUvarint(buf, uint64(len(b)))
	return append(buf, b...)
}

func appendVarintField(buf []byte, field int, v uint64) []byte {
	if v == 0 {
		return buf
	}
	buf = putUvarint(buf, tag(field, wireVarint))
	buf = putUvarint(buf, v)
	return buf
}

type fieldVisitor func(field int, wireType int, data []byte) error

// walkFields parses a protobuf-wire-framed byte slice, invoking visit for
// each field with the raw bytes (already length-delimited for wireBytes,
// or the decoded varint re-encoded minimally for wireVarint).
func walkFields(buf []byte, visit fieldVisitor) error {
	i := 0
	for i < len(buf) {
		key, n := uvarint(buf[i:])
		if n <= 0 {
			return mumerr.Serialization(io.ErrUnexpectedEOF, "mumpb: bad tag")
		}
		i += n
		field := int(key >> 3)
		wt := int(key & 0x7)
		switch wt {
		case wireVarint:
			v, n := uvarint(buf[i:])
			if n <= 0 {
				return mumerr.Serialization(io.ErrUnexpectedEOF, "mumpb: bad varint")
			}
			i += n
			var tmp [10]byte
			m := putUvarint(tmp[:0], v)
			if err := visit(field, wt, m); err != nil {
				return err
			}
		case wireBytes:
			l, n := uvarint(buf[i:])
			if n <= 0 {
				return mumerr.Serialization(io.ErrUnexpectedEOF, "mumpb: bad length")
			}
			i += n
			if i+int(l) > len(buf) {
				return mumerr.Serialization(io.ErrUnexpectedEOF, "mumpb: short body")
			}
			if err := visit(field, wt, buf[i:i+int(l)]); err != nil {
				return err
			}
			i += int(l)
		default:
			return mumerr.Serialization(io.ErrUnexpectedEOF, "mumpb: unsupported wire type")
		}
	}
	return nil
}

func uvarint(buf []byte) (uint64, int) {
	var v uint64
	var shift uint
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, 0
}

// --- OpRequest ---

func (m *OpRequest) Marshal() ([]byte, error) {
	var buf []byte
	buf = appendVarintField(buf, 1, uint64(m.Type))
	buf = appendBytesField(buf, 2, m.Key)
	buf = appendBytesField(buf, 3, m.Value)
	buf = appendVarintField(buf, 4, uint64(m.Limit))
	return buf, nil
}

func (m *OpRequest) Unmarshal(data []byte) error {
	return walkFields(data, func(field, wt int, d []byte) error {
		switch field {
		case 1:
			v, _ := uvarint(d)
			m.Type = OpType(v)
		case 2:
			m.Key = append([]byte(nil), d...)
		case 3:
			m.Value = append([]byte(nil), d...)
		case 4:
			v, _ := uvarint(d)
			m.Limit = uint32(v)
		}
		return nil
	})
}

// --- KvPair ---

func (m *KvPair) Marshal() ([]byte, error) {
	var buf []byte
	buf = appendBytesField(buf, 1, m.Key)
	buf = appendBytesField(buf, 2, m.Value)
	return buf, nil
}

func (m *KvPair) Unmarshal(data []byte) error {
	return walkFields(data, func(field, wt int, d []byte) error {
		switch field {
		case 1:
			m.Key = append([]byte(nil), d...)
		case 2:
			m.Value = append([]byte(nil), d...)
		}
		return nil
	})
}

// --- OpResponse ---

func (m *OpResponse) Marshal() ([]byte, error) {
	var buf []byte
	for _, kv := range m.Kvs {
		enc, err := kv.Marshal()
		if err != nil {
			return nil, err
		}
		buf = putUvarint(buf, tag(1, wireBytes))
		buf = putUvarint(buf, uint64(len(enc)))
		buf = append(buf, enc...)
	}
	return buf, nil
}

func (m *OpResponse) Unmarshal(data []byte) error {
	return walkFields(data, func(field, wt int, d []byte) error {
		if field == 1 {
			kv := &KvPair{}
			if err := kv.Unmarshal(d); err != nil {
				return err
			}
			m.Kvs = append(m.Kvs, kv)
		}
		return nil
	})
}

// --- ConfRequest / ConfResponse ---

func (m *ConfRequest) Marshal() ([]byte, error) {
	enc, err := m.Change.Marshal()
	if err != nil {
		return nil, mumerr.Serialization(err, "mumpb: marshal confchange")
	}
	var buf []byte
	buf = appendBytesField(buf, 1, enc)
	return buf, nil
}

func (m *ConfRequest) Unmarshal(data []byte) error {
	return walkFields(data, func(field, wt int, d []byte) error {
		if field == 1 {
			return m.Change.Unmarshal(d)
		}
		return nil
	})
}

func (m *ConfResponse) Marshal() ([]byte, error) { return nil, nil }
func (m *ConfResponse) Unmarshal([]byte) error   { return nil }

// --- RaftMessage / Done ---

func (m *RaftMessage) Marshal() ([]byte, error) {
	enc, err := m.Message.Marshal()
	if err != nil {
		return nil, mumerr.Serialization(err, "mumpb: marshal raft message")
	}
	var buf []byte
	buf = appendBytesField(buf, 1, enc)
	return buf, nil
}

func (m *RaftMessage) Unmarshal(data []byte) error {
	return walkFields(data, func(field, wt int, d []byte) error {
		if field == 1 {
			return m.Message.Unmarshal(d)
		}
		return nil
	})
}

func (m *Done) Marshal() ([]byte, error) { return nil, nil }
func (m *Done) Unmarshal([]byte) error   { return nil }

// the following Reset/String/ProtoMessage methods satisfy
// github.com/gogo/protobuf/proto.Message for types that cross the grpc
// codec boundary, matching the shape protoc-gen-gogofaster emits.

func (m *OpRequest) Reset()         { *m = OpRequest{} }
func (m *OpRequest) String() string { return proto.CompactTextString(m) }
func (*OpRequest) ProtoMessage()    {}

func (m *OpResponse) Reset()         { *m = OpResponse{} }
func (m *OpResponse) String() string { return proto.CompactTextString(m) }
func (*OpResponse) ProtoMessage()    {}

func (m *ConfRequest) Reset()         { *m = ConfRequest{} }
func (m *ConfRequest) String() string { return proto.CompactTextString(m) }
func (*ConfRequest) ProtoMessage()    {}

func (m *ConfResponse) Reset()         { *m = ConfResponse{} }
func (m *ConfResponse) String() string { return proto.CompactTextString(m) }
func (*ConfResponse) ProtoMessage()    {}

func (m *RaftMessage) Reset()         { *m = RaftMessage{} }
func (m *RaftMessage) String() string { return proto.CompactTextString(m) }
func (*RaftMessage) ProtoMessage()    {}

func (m *Done) Reset()         { *m = Done{} }
func (m *Done) String() string { return proto.CompactTextString(m) }
func (*Done) ProtoMessage()    {}
