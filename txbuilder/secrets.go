package txbuilder

import (
	"errors"

	"github.com/mxhess/salvium-walletcore/address"
	"github.com/mxhess/salvium-walletcore/crypto"
	"github.com/mxhess/salvium-walletcore/wallettypes"
)

var ErrMissingDerivationKey = errors.New("output has neither a legacy tx pubkey nor a carrot shared secret")

// recoverOneTimeSecret reconstructs the spending scalar k_o for a
// previously-scanned output, per spec §4.11 step 7. This is the mirror
// image of scanner.ScanLegacy/ScanCarrot's nominal-spend-key recovery:
// there the wallet checks K_o == k_o*G without knowing k_o, here it holds
// every secret needed to compute k_o directly.
func recoverOneTimeSecret(keys Keys, o *wallettypes.Output) (*crypto.Scalar, error) {
	if o.IsCarrot {
		return recoverCarrotOneTimeSecret(keys, o)
	}
	return recoverLegacyOneTimeSecret(keys, o)
}

// recoverLegacyOneTimeSecret implements spec §4.11 step 7's legacy
// formulas:
//
//	main address:  k_o = H_s(x || i) + k_s
//	subaddress:    k_o = H_s(x || i) + k_s + H_s("SubAddr\0" || k_v || I || J)
func recoverLegacyOneTimeSecret(keys Keys, o *wallettypes.Output) (*crypto.Scalar, error) {
	if keys.Legacy == nil {
		return nil, ErrMissingDerivationKey
	}
	R, ok := crypto.PointDecompress(o.TxPubKey)
	if !ok {
		return nil, ErrMissingDerivationKey
	}
	D := crypto.LegacyDerivation(keys.Legacy.ViewSecret, R)
	extension := crypto.LegacyDerivationScalar(D, uint64(o.OutputIndex))

	spendSecret := keys.Legacy.SpendSecret
	if !o.SubaddressIndex.IsZero() {
		sub := address.LegacySubaddressSecret(keys.Legacy.ViewSecret, o.SubaddressIndex)
		spendSecret = crypto.ScalarZero().Add(spendSecret, sub)
	}
	return crypto.ScalarZero().Add(extension, spendSecret), nil
}

// recoverCarrotOneTimeSecret implements spec §4.11 step 7's CARROT
// formula for the main address:
//
//	k_o = k_gi + H_n("Carrot key extension G", s_sr_ctx, C_a)
//
// and, for a subaddress-owned output, additionally folds in the
// subaddress scalar the same way ScanCarrot's ownership test does.
func recoverCarrotOneTimeSecret(keys Keys, o *wallettypes.Output) (*crypto.Scalar, error) {
	if keys.Carrot == nil || o.CarrotSharedSecret == nil || o.Commitment == nil {
		return nil, ErrMissingDerivationKey
	}
	extensionG := crypto.CarrotSenderExtensionG(*o.CarrotSharedSecret, o.Commitment)

	base := keys.Carrot.GenerateImageSecret
	if !o.SubaddressIndex.IsZero() {
		genSecret := address.CarrotIndexGeneratorSecret(keys.Carrot.GenerateAddressSecret, o.SubaddressIndex)
		subScalar := address.CarrotSubaddressScalar(keys.Carrot.SpendPublic, o.SubaddressIndex, genSecret)
		base = crypto.ScalarZero().Add(base, subScalar)
	}
	return crypto.ScalarZero().Add(base, extensionG), nil
}
