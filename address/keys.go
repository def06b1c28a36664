package address

import (
	"github.com/mxhess/salvium-walletcore/crypto"
	"github.com/mxhess/salvium-walletcore/types"
)

// MasterSecret is the 32 random bytes uniquely identifying a wallet, the
// root of both key trees (spec §3).
type MasterSecret types.Hash

// LegacyKeys is the classic CryptoNote key tree: k_s = reduce32(master),
// k_v = reduce32(Keccak256(k_s)).
type LegacyKeys struct {
	SpendSecret *crypto.Scalar
	SpendPublic *crypto.Point
	ViewSecret  *crypto.Scalar
	ViewPublic  *crypto.Point
}

func DeriveLegacyKeys(master MasterSecret) *LegacyKeys {
	ks := crypto.ReduceFrom32([32]byte(master))
	Ks := crypto.ScalarMultBase(ks)

	ksBytes := ks.Bytes()
	kvHash := crypto.Keccak256(ksBytes[:])
	kv := crypto.ReduceFrom32([32]byte(kvHash))
	Kv := crypto.ScalarMultBase(kv)

	return &LegacyKeys{
		SpendSecret: ks,
		SpendPublic: Ks,
		ViewSecret:  kv,
		ViewPublic:  Kv,
	}
}

// Domain separators for the CARROT key tree (spec §3). Each step's parent
// secret becomes the Blake2b key of the next, per RFC 7693 keyed mode.
const (
	domainViewBalanceSecret     = "Carrot view-balance secret"
	domainProveSpendKey         = "Carrot prove-spend key"
	domainIncomingViewKey       = "Carrot incoming view key"
	domainGenerateImageKey      = "Carrot generate-image key"
	domainGenerateAddressSecret = "Carrot generate-address secret"
)

// CarrotKeys is the second-generation key tree active from hard fork 10.
// The account view public key is tied to the view-balance secret
// (K_v_main = k_vi * K_s_carrot) precisely so that the incoming-view key
// alone can never reconstruct an outgoing capability.
type CarrotKeys struct {
	ViewBalanceSecret     types.Hash
	ProveSpendSecret      *crypto.Scalar
	ViewIncomingSecret    *crypto.Scalar
	GenerateImageSecret   *crypto.Scalar
	GenerateAddressSecret types.Hash

	SpendPublic *crypto.Point // K_s = k_gi*G + k_ps*T
	ViewPublic  *crypto.Point // K_v_main = k_vi * K_s
}

func DeriveCarrotKeys(master MasterSecret) *CarrotKeys {
	masterBytes := [32]byte(master)

	sVB := crypto.Blake2b32(masterBytes[:], []byte(domainViewBalanceSecret))
	kPS := crypto.ScalarDerive(masterBytes[:], []byte(domainProveSpendKey))

	sVBBytes := [32]byte(sVB)
	kVI := crypto.ScalarDerive(sVBBytes[:], []byte(domainIncomingViewKey))
	kGI := crypto.ScalarDerive(sVBBytes[:], []byte(domainGenerateImageKey))
	sGA := crypto.Blake2b32(sVBBytes[:], []byte(domainGenerateAddressSecret))

	// K_s = k_gi*G + k_ps*T
	Ks := crypto.Add(crypto.ScalarMultBase(kGI), crypto.ScalarMult(kPS, crypto.GeneratorT))
	// K_v_main = k_vi * K_s
	Kv := crypto.ScalarMult(kVI, Ks)

	return &CarrotKeys{
		ViewBalanceSecret:     sVB,
		ProveSpendSecret:      kPS,
		ViewIncomingSecret:    kVI,
		GenerateImageSecret:   kGI,
		GenerateAddressSecret: sGA,
		SpendPublic:           Ks,
		ViewPublic:            Kv,
	}
}
