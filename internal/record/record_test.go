package record

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	r := New(TypeEntry, []byte("hello raft"))
	enc := r.Marshal()

	got, err := Unmarshal(bytes.NewReader(enc))
	require.NoError(t, err)
	require.Equal(t, r.Type, got.Type)
	require.Equal(t, r.CRC, got.CRC)
	require.Equal(t, r.Data, got.Data)
	require.NoError(t, got.Verify())
}

func TestVerifyDetectsCorruption(t *testing.T) {
	r := New(TypeState, []byte("state bytes"))
	r.Data[0] ^= 0xFF
	require.Error(t, r.Verify())
}

func TestTypesOrdered(t *testing.T) {
	require.True(t, TypeEntry < TypeState)
	require.True(t, TypeState < TypeCrc)
	require.True(t, TypeCrc < TypeIndex)
}
