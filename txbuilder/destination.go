package txbuilder

import (
	"encoding/binary"

	"github.com/mxhess/salvium-walletcore/address"
	"github.com/mxhess/salvium-walletcore/crypto"
)

// buildDestinationOutput implements spec §4.11 step 9: a fresh ephemeral
// key r, the one-time address, view tag, encrypted amount/mask, and
// output commitment for one destination. carrotActive selects which
// enote scheme the fork is in at the resolved height (chainpolicy.Policy).
func buildDestinationOutput(dest Destination, enoteType byte, carrotActive bool, inputContext []byte, rng func() *crypto.Scalar) (*PreparedOutput, error) {
	if carrotActive && dest.Address.Format == address.Carrot {
		return buildCarrotOutput(dest, enoteType, inputContext, rng)
	}
	return buildLegacyOutput(dest, rng)
}

func buildLegacyOutput(dest Destination, rng func() *crypto.Scalar) (*PreparedOutput, error) {
	r := rng()
	R := crypto.ScalarMultBase(r)

	spend := dest.Address.SpendPub
	view := dest.Address.ViewPub

	// D = r * K_v (Diffie-Hellman shared secret with the recipient).
	D := crypto.ScalarMult(r, view)
	derivationScalar := crypto.LegacyDerivationScalar(D, 0)

	Ko := crypto.Add(spend, crypto.ScalarMultBase(derivationScalar))
	mask := crypto.LegacyCommitmentMask(derivationScalar)
	encryptedAmount := crypto.EncryptAmount(derivationScalar, dest.Amount)
	commitment := crypto.PedersenCommit(dest.Amount, mask)
	viewTag := crypto.LegacyViewTag(D.Bytes(), 0)

	return &PreparedOutput{
		OneTimeAddress:  Ko.Bytes(),
		Commitment:      commitment,
		Mask:            mask,
		Amount:          dest.Amount,
		EncryptedAmount: encryptedAmount,
		ViewTag1:        viewTag,
		EphemeralPub:    R.Bytes(),
	}, nil
}

// buildCarrotOutput implements the CARROT enote construction, mirroring
// scanner.ScanCarrot in reverse: the sender computes the same shared
// secret the receiver will (per this module's edwards25519-only DH
// decision, see DESIGN.md), derives k_o_g the same way, and picks the
// enote type (Payment for a destination, Change for the wallet's own
// change output).
func buildCarrotOutput(dest Destination, enoteType byte, inputContext []byte, rng func() *crypto.Scalar) (*PreparedOutput, error) {
	d_e := rng()
	D_e := crypto.ScalarMultBase(d_e)

	sharedUnctx := crypto.ScalarMult(d_e, dest.Address.ViewPub)

	senderReceiverSecret := crypto.CarrotSenderReceiverSecret(sharedUnctx, D_e, inputContext)
	viewTag := crypto.CarrotViewTag(sharedUnctx, D_e, inputContext)

	blindingFactor := crypto.CarrotAmountBlindingFactor(senderReceiverSecret, dest.Amount, dest.Address.SpendPub, enoteType)
	commitment := crypto.CarrotAmountCommitment(dest.Amount, blindingFactor)

	extensionG := crypto.CarrotSenderExtensionG(senderReceiverSecret, commitment)
	Ko := crypto.Add(dest.Address.SpendPub, crypto.ScalarMultBase(extensionG))

	amountMask := crypto.CarrotAmountEncryptionMask(senderReceiverSecret, Ko)
	encryptedAmount := dest.Amount ^ uint64FromBytes(amountMask)

	// The anchor is a random nonce the receiver decrypts and checks
	// against its own re-derivation as a Janus anti-burning proof; the
	// spec does not fix its plaintext, so a fresh random value is used
	// per output (see DESIGN.md).
	anchorMask := crypto.CarrotAnchorEncryptionMask(senderReceiverSecret, Ko)
	randomBytes := crypto.RandomScalar(nil).Bytes()
	var anchor [16]byte
	copy(anchor[:], randomBytes[:16])
	var encAnchor [16]byte
	for i := range encAnchor {
		encAnchor[i] = anchor[i] ^ anchorMask[i]
	}

	return &PreparedOutput{
		OneTimeAddress:  Ko.Bytes(),
		Commitment:      commitment,
		Mask:            blindingFactor,
		Amount:          dest.Amount,
		EncryptedAmount: encryptedAmount,
		ViewTag3:        viewTag,
		IsCarrot:        true,
		EncryptedAnchor: encAnchor,
		EphemeralPub:    D_e.Bytes(),
	}, nil
}

func uint64FromBytes(mask [8]byte) uint64 {
	return binary.LittleEndian.Uint64(mask[:])
}
