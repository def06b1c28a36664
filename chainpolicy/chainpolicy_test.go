package chainpolicy

import (
	"testing"

	"github.com/mxhess/salvium-walletcore/address"
	"github.com/stretchr/testify/require"
)

// TestForkPolicyMatrix reproduces spec §8 scenario 4 verbatim.
func TestForkPolicyMatrix(t *testing.T) {
	p := Resolve(100, address.Testnet, TxTransfer)
	require.Equal(t, Policy{HFVersion: 1, TxVersion: 2, RctType: RctBulletproofPlus, SigType: SigCLSAG, AssetType: "SAL", CarrotActive: false}, p)

	p = Resolve(815, address.Testnet, TxTransfer)
	require.Equal(t, Policy{HFVersion: 6, TxVersion: 3, RctType: RctSalviumZero, SigType: SigCLSAG, AssetType: "SAL1", CarrotActive: false}, p)

	p = Resolve(1100, address.Testnet, TxTransfer)
	require.Equal(t, Policy{HFVersion: 10, TxVersion: 4, RctType: RctSalviumOne, SigType: SigTCLSAG, AssetType: "SAL1", CarrotActive: true}, p)
}

func TestNonTransferVersionOverride(t *testing.T) {
	p := Resolve(900, address.Testnet, TxStake)
	require.Equal(t, uint8(2), p.TxVersion)

	p = Resolve(1200, address.Testnet, TxBurn)
	require.Equal(t, uint8(4), p.TxVersion)
}

func TestBelowFirstForkUsesEarliestStep(t *testing.T) {
	p := Resolve(0, address.Testnet, TxTransfer)
	require.Equal(t, uint8(1), p.HFVersion)
}
