package crypto

// KeyImage derives the linkability tag I = k_o * H_p(K_o) for a one-time
// keypair (k_o, K_o). Every wallet output has exactly one key image, and
// the ledger rejects any transaction that reuses one already seen.
func KeyImage(oneTimeSecret *Scalar, oneTimePublic *Point) *Point {
	hp := BiasedHashToPoint(oneTimePublic.Slice())
	return ScalarMult(oneTimeSecret, hp)
}
