package crypto

import "git.gammaspectra.live/P2Pool/edwards25519"

// GeneratorG is the standard Edwards25519 basepoint, used for private-key
// public commitments (K = k*G) and the blinding term of Pedersen
// commitments.
var GeneratorG = &Point{inner: *edwards25519.NewGeneratorPoint()}

// GeneratorH is derived as 8 * decompress(Keccak256(G)); Monero-family
// coins use H (not G) to carry the amount term of a Pedersen commitment
// C = mask*G + v*H, by convention opposite the usual value/randomness
// naming. It is known that Keccak256(G) happens to decode as a valid
// compressed point for the canonical G encoding, which is why this can use
// HopefulHashToPoint instead of the unbiased map.
var GeneratorH = mustHash(HopefulHashToPoint(GeneratorG.Slice()))

// GeneratorT blinds the key-image commitment inside a CARROT spend public
// key (K_s = k_gi*G + k_ps*T). It is a nothing-up-my-sleeve point derived
// via the unbiased hash-to-point map, so nobody (including the ledger's
// designers) can know its discrete log with respect to G.
var GeneratorT = UnbiasedHashToPoint(inlineKeccak("Salvium Generator T"))

func inlineKeccak(s string) []byte {
	h := Keccak256([]byte(s))
	return h[:]
}

func mustHash(p *Point) *Point {
	if p == nil {
		panic("unreachable: generator hash-to-point failed")
	}
	return p
}
