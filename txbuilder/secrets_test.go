package txbuilder

import (
	"testing"

	"github.com/mxhess/salvium-walletcore/address"
	"github.com/mxhess/salvium-walletcore/crypto"
	"github.com/mxhess/salvium-walletcore/wallettypes"
)

func TestRecoverLegacyOneTimeSecretMatchesForwardDerivation(t *testing.T) {
	master := address.MasterSecret{1, 2, 3, 4}
	legacy := address.DeriveLegacyKeys(master)
	addr := &address.Address{Format: address.Legacy, SpendPub: legacy.SpendPublic, ViewPub: legacy.ViewPublic}

	rng := counterRNG()
	dest := Destination{Address: addr, Amount: 100}
	out, err := buildLegacyOutput(dest, rng)
	if err != nil {
		t.Fatalf("buildLegacyOutput: %v", err)
	}

	walletOutput := &wallettypes.Output{
		TxPubKey:        out.EphemeralPub,
		OutputPublicKey: out.OneTimeAddress,
		OutputIndex:     0,
	}

	keys := Keys{Legacy: legacy}
	secret, err := recoverOneTimeSecret(keys, walletOutput)
	if err != nil {
		t.Fatalf("recoverOneTimeSecret: %v", err)
	}

	Ko, ok := crypto.PointDecompress(out.OneTimeAddress)
	if !ok {
		t.Fatalf("output one-time address does not decompress")
	}
	if !crypto.ScalarMultBase(secret).Equal(Ko) {
		t.Fatal("recovered one-time secret does not match the output's one-time address")
	}
}

func TestRecoverOneTimeSecretMissingKeys(t *testing.T) {
	if _, err := recoverLegacyOneTimeSecret(Keys{}, &wallettypes.Output{}); err != ErrMissingDerivationKey {
		t.Fatalf("expected ErrMissingDerivationKey, got %v", err)
	}
	if _, err := recoverCarrotOneTimeSecret(Keys{}, &wallettypes.Output{}); err != ErrMissingDerivationKey {
		t.Fatalf("expected ErrMissingDerivationKey, got %v", err)
	}
}
