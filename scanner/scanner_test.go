package scanner

import (
	"testing"

	"github.com/mxhess/salvium-walletcore/address"
	"github.com/mxhess/salvium-walletcore/crypto"
	"github.com/mxhess/salvium-walletcore/node"
	"github.com/mxhess/salvium-walletcore/types"
	"github.com/stretchr/testify/require"
)

func master(b byte) address.MasterSecret {
	var m address.MasterSecret
	m[0] = b
	return m
}

func TestScanLegacyMainAddress(t *testing.T) {
	keys := address.DeriveLegacyKeys(master(1))
	table := address.NewLegacyTable(keys.SpendPublic, keys.ViewSecret, 2, 2)

	r := crypto.RandomScalar(nil)
	R := crypto.ScalarMultBase(r)
	D := crypto.ScalarMult(r, keys.ViewPublic) // sender-side DH, symmetric with keys.ViewSecret*R

	derivationScalar := crypto.LegacyDerivationScalar(D, 0)
	Ko := crypto.Add(crypto.ScalarMultBase(derivationScalar), keys.SpendPublic)

	amount := uint64(12345)
	mask := crypto.LegacyCommitmentMask(derivationScalar)
	commitment := crypto.PedersenCommit(amount, mask)
	encAmount := crypto.EncryptAmount(derivationScalar, amount)
	viewTag := crypto.LegacyViewTag(D.Bytes(), 0)

	c := Candidate{
		Output: node.TxOutput{
			Variant:   node.OutputTagged,
			Key:       Ko.Bytes(),
			ViewTag1:  viewTag,
			AssetType: "SAL1",
		},
		TxHash:          types.Hash{0xaa},
		OutputIndex:     0,
		TxPubKey:        R.Bytes(),
		BlockHeight:     100,
		EncryptedAmount: encAmount,
		Commitment:      commitment.Bytes(),
	}

	out, err := ScanLegacy(LegacyKeyMaterial{ViewSecret: keys.ViewSecret, SpendKey: keys.SpendSecret}, table, c, 10)
	require.NoError(t, err)
	require.Equal(t, amount, out.Amount)
	require.True(t, out.SubaddressIndex.IsZero())
	require.Equal(t, uint64(110), out.UnlockHeight)
	require.NotEqual(t, [32]byte{}, out.KeyImage)
}

func TestScanLegacySubaddress(t *testing.T) {
	keys := address.DeriveLegacyKeys(master(2))
	idx := address.SubaddressIndex{Account: 1, Offset: 2}
	table := address.NewLegacyTable(keys.SpendPublic, keys.ViewSecret, 3, 3)

	subSpend := address.LegacySubaddressSpendPublic(keys.SpendPublic, keys.ViewSecret, idx)
	subView := address.LegacySubaddressViewPublic(keys.ViewSecret, subSpend)

	r := crypto.RandomScalar(nil)
	R := crypto.ScalarMult(r, subSpend) // subaddress tx key R = r*D, so k_v*R = r*subView
	D := crypto.ScalarMult(r, subView)

	derivationScalar := crypto.LegacyDerivationScalar(D, 0)
	Ko := crypto.Add(crypto.ScalarMultBase(derivationScalar), subSpend)

	amount := uint64(500)
	mask := crypto.LegacyCommitmentMask(derivationScalar)
	commitment := crypto.PedersenCommit(amount, mask)
	encAmount := crypto.EncryptAmount(derivationScalar, amount)

	c := Candidate{
		Output: node.TxOutput{
			Variant:   node.OutputRegular,
			Key:       Ko.Bytes(),
			AssetType: "SAL1",
		},
		TxHash:          types.Hash{0xbb},
		OutputIndex:     0,
		TxPubKey:        R.Bytes(),
		BlockHeight:     200,
		EncryptedAmount: encAmount,
		Commitment:      commitment.Bytes(),
	}

	out, err := ScanLegacy(LegacyKeyMaterial{ViewSecret: keys.ViewSecret, SpendKey: keys.SpendSecret}, table, c, 0)
	require.NoError(t, err)
	require.Equal(t, idx, out.SubaddressIndex)
	require.Equal(t, amount, out.Amount)
}

func TestScanLegacyViewTagMismatchRejected(t *testing.T) {
	keys := address.DeriveLegacyKeys(master(3))
	table := address.NewLegacyTable(keys.SpendPublic, keys.ViewSecret, 1, 1)

	r := crypto.RandomScalar(nil)
	R := crypto.ScalarMultBase(r)
	D := crypto.ScalarMult(r, keys.ViewPublic)
	derivationScalar := crypto.LegacyDerivationScalar(D, 0)
	Ko := crypto.Add(crypto.ScalarMultBase(derivationScalar), keys.SpendPublic)

	c := Candidate{
		Output: node.TxOutput{
			Variant:  node.OutputTagged,
			Key:      Ko.Bytes(),
			ViewTag1: crypto.LegacyViewTag(D.Bytes(), 0) ^ 0xFF,
		},
		TxPubKey: R.Bytes(),
	}

	_, err := ScanLegacy(LegacyKeyMaterial{ViewSecret: keys.ViewSecret}, table, c, 0)
	require.ErrorIs(t, err, ErrViewTagMismatch)
}

func TestScanCarrotMainAddress(t *testing.T) {
	keys := address.DeriveCarrotKeys(master(4))
	table := address.NewCarrotTable(keys.SpendPublic, [32]byte(keys.GenerateAddressSecret), 2, 2)

	d := crypto.RandomScalar(nil)
	De := crypto.ScalarMultBase(d)
	sharedUnctx := crypto.ScalarMult(d, crypto.ScalarMultBase(keys.ViewIncomingSecret)) // = k_vi * D_e

	firstKI := [32]byte{0x01, 0x02}
	inputContext := crypto.MakeInputContext(firstKI)

	amount := uint64(777)

	senderReceiverSecret := crypto.CarrotSenderReceiverSecret(sharedUnctx, De, inputContext)

	// Build the commitment as a real sender would: pick enote type, derive
	// blinding factor from the transcript, then commit. The one-time
	// address extension is derived from that commitment.
	bf := crypto.CarrotAmountBlindingFactor(senderReceiverSecret, amount, keys.SpendPublic, crypto.CarrotEnoteTypePayment)
	commitment := crypto.CarrotAmountCommitment(amount, bf)

	extensionG := crypto.CarrotSenderExtensionG(senderReceiverSecret, commitment)
	Ko := crypto.Add(crypto.ScalarMultBase(extensionG), keys.SpendPublic)

	mask := crypto.CarrotAmountEncryptionMask(senderReceiverSecret, Ko)
	encAmount := amount ^ uint64FromMask(mask)

	viewTag := crypto.CarrotViewTag(sharedUnctx, De, inputContext)

	c := Candidate{
		Output: node.TxOutput{
			Variant:   node.OutputCarrotV1,
			Key:       Ko.Bytes(),
			ViewTag3:  viewTag,
			AssetType: "SAL1",
		},
		TxHash:          types.Hash{0xcc},
		OutputIndex:     0,
		FirstKeyImage:   firstKI,
		BlockHeight:     500,
		EncryptedAmount: encAmount,
		Commitment:      commitment.Bytes(),
	}

	out, err := ScanCarrot(CarrotKeyMaterial{
		ViewIncomingSecret:    keys.ViewIncomingSecret,
		GenerateImageSecret:   keys.GenerateImageSecret,
		GenerateAddressSecret: [32]byte(keys.GenerateAddressSecret),
	}, keys.SpendPublic, table, De, c, 5)
	require.NoError(t, err)
	require.Equal(t, amount, out.Amount)
	require.True(t, out.IsCarrot)
	require.NotNil(t, out.CarrotSharedSecret)
	require.NotEqual(t, [32]byte{}, out.KeyImage)
}
