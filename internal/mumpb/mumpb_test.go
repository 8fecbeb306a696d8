package mumpb

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.etcd.io/raft/v3/raftpb"
)

func TestOpRequestRoundTrip(t *testing.T) {
	req := &OpRequest{Type: OpSet, Key: []byte("k"), Value: []byte("v"), Limit: 7}
	enc, err := req.Marshal()
	require.NoError(t, err)

	var got OpRequest
	require.NoError(t, got.Unmarshal(enc))
	require.Equal(t, req.Type, got.Type)
	require.Equal(t, req.Key, got.Key)
	require.Equal(t, req.Value, got.Value)
	require.Equal(t, req.Limit, got.Limit)
}

func TestOpResponseRoundTrip(t *testing.T) {
	resp := &OpResponse{Kvs: []*KvPair{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
	}}
	enc, err := resp.Marshal()
	require.NoError(t, err)

	var got OpResponse
	require.NoError(t, got.Unmarshal(enc))
	require.Len(t, got.Kvs, 2)
	require.Equal(t, []byte("a"), got.Kvs[0].Key)
	require.Equal(t, []byte("2"), got.Kvs[1].Value)
}

func TestRaftMessageRoundTrip(t *testing.T) {
	msg := &RaftMessage{Message: raftpb.Message{
		Type: raftpb.MsgApp,
		From: 1,
		To:   2,
		Term: 3,
	}}
	enc, err := msg.Marshal()
	require.NoError(t, err)

	var got RaftMessage
	require.NoError(t, got.Unmarshal(enc))
	require.Equal(t, msg.Message.Type, got.Message.Type)
	require.Equal(t, msg.Message.From, got.Message.From)
	require.Equal(t, msg.Message.To, got.Message.To)
	require.Equal(t, msg.Message.Term, got.Message.Term)
}

func TestConfRequestRoundTrip(t *testing.T) {
	req := &ConfRequest{Change: raftpb.ConfChange{
		Type:    raftpb.ConfChangeAddNode,
		NodeID:  9,
		Context: []byte("127.0.0.1:9003"),
	}}
	enc, err := req.Marshal()
	require.NoError(t, err)

	var got ConfRequest
	require.NoError(t, got.Unmarshal(enc))
	require.Equal(t, req.Change.Type, got.Change.Type)
	require.Equal(t, req.Change.NodeID, got.Change.NodeID)
	require.Equal(t, req.Change.Context, got.Change.Context)
}
