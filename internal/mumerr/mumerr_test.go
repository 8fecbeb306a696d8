package mumerr

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapPreservesKindAndCause(t *testing.T) {
	err := IO(io.ErrUnexpectedEOF, "read segment")
	require.True(t, Is(err, KindIO))
	require.False(t, Is(err, KindIntegrity))
	require.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	require.Contains(t, err.Error(), "io:")
}

func TestWrapNilIsNil(t *testing.T) {
	require.NoError(t, Wrap(KindPath, nil, "nothing"))
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := Integrity(ErrCrcMismatch, "record 7")
	require.True(t, Is(err, KindIntegrity))
	require.True(t, errors.Is(err, ErrCrcMismatch))
}
