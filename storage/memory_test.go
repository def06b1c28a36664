package storage

import (
	"testing"

	"github.com/mxhess/salvium-walletcore/types"
	"github.com/mxhess/salvium-walletcore/wallettypes"
	"github.com/stretchr/testify/require"
)

func keyImageForHeight(h uint64) (ki [32]byte) {
	ki[0] = byte(h)
	ki[1] = byte(h >> 8)
	return ki
}

func hashForHeight(h uint64) types.Hash {
	var out types.Hash
	out[0] = byte(h)
	out[1] = byte(h >> 8)
	return out
}

// TestReorgRollbackScenario reproduces spec §8 scenario 3 verbatim.
func TestReorgRollbackScenario(t *testing.T) {
	s := NewMemory()

	require.NoError(t, s.PutOutput(&wallettypes.Output{KeyImage: keyImageForHeight(50), BlockHeight: 50}))
	require.NoError(t, s.PutOutput(&wallettypes.Output{KeyImage: keyImageForHeight(100), BlockHeight: 100}))
	require.NoError(t, s.PutOutput(&wallettypes.Output{KeyImage: keyImageForHeight(150), BlockHeight: 150}))

	require.NoError(t, s.MarkOutputSpent(keyImageForHeight(50), hashForHeight(120), 120))

	require.NoError(t, s.PutTransaction(&wallettypes.Transaction{TxHash: hashForHeight(80), BlockHeight: 80}))
	require.NoError(t, s.PutTransaction(&wallettypes.Transaction{TxHash: hashForHeight(130), BlockHeight: 130}))

	for h := uint64(0); h < 200; h++ {
		require.NoError(t, s.PutBlockHash(h, hashForHeight(h)))
	}

	require.NoError(t, Reorg(s, 100))

	o50, ok, err := s.GetOutput(keyImageForHeight(50))
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, o50.IsSpent)

	o100, ok, err := s.GetOutput(keyImageForHeight(100))
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, o100)

	_, ok, err = s.GetOutput(keyImageForHeight(150))
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = s.GetTransaction(hashForHeight(80))
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = s.GetTransaction(hashForHeight(130))
	require.NoError(t, err)
	require.False(t, ok)

	h100, ok, err := s.GetBlockHash(100)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, hashForHeight(100), h100)

	_, ok, err = s.GetBlockHash(101)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUnspendOutputsAboveBoundary(t *testing.T) {
	s := NewMemory()
	ki := keyImageForHeight(1)
	require.NoError(t, s.PutOutput(&wallettypes.Output{KeyImage: ki, BlockHeight: 1}))
	require.NoError(t, s.MarkOutputSpent(ki, hashForHeight(1), 100))

	// h0 < h1: unspend fires.
	require.NoError(t, s.UnspendOutputsAbove(50))
	o, _, err := s.GetOutput(ki)
	require.NoError(t, err)
	require.False(t, o.IsSpent)

	require.NoError(t, s.MarkOutputSpent(ki, hashForHeight(1), 100))
	// h0 >= h1: unspend does not fire.
	require.NoError(t, s.UnspendOutputsAbove(100))
	o, _, err = s.GetOutput(ki)
	require.NoError(t, err)
	require.True(t, o.IsSpent)
}
