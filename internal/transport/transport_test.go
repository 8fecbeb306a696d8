package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.etcd.io/raft/v3/raftpb"

	"github.com/dyxushuai/mumgo/raftlog"
)

func TestSendToUnknownPeerDoesNotBlockOrPanic(t *testing.T) {
	tr := New(raftlog.NewGlog(), time.Second)

	done := make(chan struct{})
	go func() {
		tr.Send(raftpb.Message{To: 99})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on an unknown destination")
	}
}

func TestUpsertAndDeletePeer(t *testing.T) {
	tr := New(raftlog.NewGlog(), time.Second)
	tr.UpsertPeer(1, "127.0.0.1:9001")
	require.Equal(t, "127.0.0.1:9001", tr.addrs[1])

	tr.DeletePeer(1)
	_, ok := tr.addrs[1]
	require.False(t, ok)
}

func TestUpsertPeerIgnoresEmptyAddress(t *testing.T) {
	tr := New(raftlog.NewGlog(), time.Second)
	tr.UpsertPeer(2, "")
	_, ok := tr.addrs[2]
	require.False(t, ok)
}

func TestClientPooledByAddress(t *testing.T) {
	tr := New(raftlog.NewGlog(), time.Second)

	c1, err := tr.clientFor("127.0.0.1:9001")
	require.NoError(t, err)
	c2, err := tr.clientFor("127.0.0.1:9001")
	require.NoError(t, err)
	require.Same(t, c1, c2)
	require.Len(t, tr.conns, 1)

	require.NoError(t, tr.TearDown())
	require.Empty(t, tr.conns)
	require.Empty(t, tr.clients)
}
