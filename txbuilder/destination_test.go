package txbuilder

import (
	"testing"

	"github.com/mxhess/salvium-walletcore/address"
	"github.com/mxhess/salvium-walletcore/crypto"
)

func TestBuildLegacyOutputCommitmentMatchesAmount(t *testing.T) {
	master := address.MasterSecret{9, 9, 9}
	legacy := address.DeriveLegacyKeys(master)
	addr := &address.Address{Format: address.Legacy, SpendPub: legacy.SpendPublic, ViewPub: legacy.ViewPublic}

	rng := counterRNG()
	dest := Destination{Address: addr, Amount: 77777}
	out, err := buildLegacyOutput(dest, rng)
	if err != nil {
		t.Fatalf("buildLegacyOutput: %v", err)
	}

	want := crypto.PedersenCommit(dest.Amount, out.Mask)
	if !out.Commitment.Equal(want) {
		t.Fatal("output commitment does not match amount and mask")
	}
	if out.IsCarrot {
		t.Fatal("legacy output incorrectly marked as carrot")
	}
}

func TestBuildDestinationOutputPicksSchemeByPolicyAndFormat(t *testing.T) {
	master := address.MasterSecret{5, 5, 5}
	legacy := address.DeriveLegacyKeys(master)
	legacyAddr := &address.Address{Format: address.Legacy, SpendPub: legacy.SpendPublic, ViewPub: legacy.ViewPublic}

	rng := counterRNG()
	dest := Destination{Address: legacyAddr, Amount: 1}

	out, err := buildDestinationOutput(dest, crypto.CarrotEnoteTypePayment, true, nil, rng)
	if err != nil {
		t.Fatalf("buildDestinationOutput: %v", err)
	}
	if out.IsCarrot {
		t.Fatal("a legacy-format address must never produce a carrot output, even when carrot is active")
	}

	carrot := address.DeriveCarrotKeys(master)
	carrotAddr := &address.Address{Format: address.Carrot, SpendPub: carrot.SpendPublic, ViewPub: carrot.ViewPublic}
	dest2 := Destination{Address: carrotAddr, Amount: 1}

	notActive, err := buildDestinationOutput(dest2, crypto.CarrotEnoteTypePayment, false, nil, rng)
	if err != nil {
		t.Fatalf("buildDestinationOutput: %v", err)
	}
	if notActive.IsCarrot {
		t.Fatal("a carrot-format address before the carrot fork must fall back to a legacy output")
	}

	active, err := buildDestinationOutput(dest2, crypto.CarrotEnoteTypePayment, true, nil, rng)
	if err != nil {
		t.Fatalf("buildDestinationOutput: %v", err)
	}
	if !active.IsCarrot {
		t.Fatal("a carrot-format address at an active carrot fork must produce a carrot output")
	}
}
