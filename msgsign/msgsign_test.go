package msgsign

import (
	"errors"
	"testing"

	"github.com/mxhess/salvium-walletcore/address"
	"github.com/mxhess/salvium-walletcore/crypto"
)

func testAddress() (*address.Address, *address.LegacyKeys) {
	keys := address.DeriveLegacyKeys(address.MasterSecret{1, 2, 3})
	addr := &address.Address{
		Format:   address.Legacy,
		Network:  address.Testnet,
		SpendPub: keys.SpendPublic,
		ViewPub:  keys.ViewPublic,
	}
	return addr, keys
}

func TestSignAndVerifySpendKeyV2(t *testing.T) {
	addr, keys := testAddress()
	message := []byte("hello wallet")

	sig, err := Sign(V2, addr, KeyTypeSpend, keys.SpendSecret, message, 0)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	result, err := Verify(addr, message, sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !result.Valid || result.Version != V2 || result.KeyType != KeyTypeSpend {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSignAndVerifyViewKeyV1(t *testing.T) {
	addr, keys := testAddress()
	message := []byte("view-only proof")

	sig, err := Sign(V1, addr, KeyTypeView, keys.ViewSecret, message, 0)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	result, err := Verify(addr, message, sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !result.Valid || result.Version != V1 || result.KeyType != KeyTypeView {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	addr, keys := testAddress()
	message := []byte("original message")

	sig, err := Sign(V2, addr, KeyTypeSpend, keys.SpendSecret, message, 0)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	result, err := Verify(addr, []byte("original Message"), sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.Valid {
		t.Fatal("expected a tampered message to fail verification")
	}
}

func TestVerifyRejectsUnrecognisedHeader(t *testing.T) {
	addr, _ := testAddress()
	if _, err := Verify(addr, []byte("m"), "NotASig"+"xxxxxx"); !errors.Is(err, ErrBadHeader) {
		t.Fatalf("expected ErrBadHeader, got %v", err)
	}
}

func TestVerifyRejectsWrongKeyEntirely(t *testing.T) {
	addr, _ := testAddress()
	otherKeys := address.DeriveLegacyKeys(address.MasterSecret{9, 9, 9})
	message := []byte("signed by someone else")

	otherAddr := &address.Address{Format: address.Legacy, SpendPub: otherKeys.SpendPublic, ViewPub: otherKeys.ViewPublic}
	sig, err := Sign(V2, otherAddr, KeyTypeSpend, otherKeys.SpendSecret, message, 0)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	result, err := Verify(addr, message, sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.Valid {
		t.Fatal("expected verification against an unrelated address to fail")
	}
}

func TestCommitmentDependsOnHashInput(t *testing.T) {
	rng := crypto.RandomScalar(nil)
	key := crypto.ScalarMultBase(rng)
	if commitment([32]byte{1}, key, key).Equal(commitment([32]byte{2}, key, key)) {
		t.Fatal("commitment should differ when the underlying hash differs")
	}
}
