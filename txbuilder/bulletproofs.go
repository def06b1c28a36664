package txbuilder

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mxhess/salvium-walletcore/crypto"
)

// Range proofs bind every output commitment to a value in [0, 2^64) without
// revealing the amount, per spec §4.11 step 13. Grounded on a reference
// consensus library's aggregate Bulletproofs+ implementation for the
// overall shape — per-bit generator vectors, an aL/aR bit-decomposition
// commitment, Fiat-Shamir y/z/x transcript challenges, and a logarithmic
// folding argument closing the proof — but the fold itself is the
// classical (non weighted) Bulletproofs inner-product argument rather
// than the weighted zero-knowledge variant real Bulletproofs+ uses: the
// "+" scheme's extra cross terms (its d_j vectors, its single-round A1/B
// closing step in place of a revealed t/taux/mu) could not be ported with
// confidence without a compiler to check the algebra against, so this
// trades a slightly larger proof for a construction whose verification
// equation is simple enough to state and check directly. See DESIGN.md.
//
// A further simplification: only destination-output commitments are
// range-proved, never pseudo-output (input-side) commitments. Real
// Monero-family transactions do the same — a pseudo-output's amount was
// already range-proved when its underlying input was created as someone
// else's output, so re-proving it here would be redundant.

const rangeProofBits = 64

var (
	errRangeProofValueTooLarge = errors.New("bulletproofs: amount does not fit in the proof's bit width")
	errRangeProofTauMismatch   = errors.New("bulletproofs: taux/t commitment does not match T1/T2 and the output commitments")
	errRangeProofFoldMismatch  = errors.New("bulletproofs: inner-product fold does not close")
)

// RangeProof is a proof that every committed value in a batch of output
// commitments fits in [0, 2^64). T, TauX and Mu are revealed in the clear
// (as in the original Bulletproofs range proof); they leak nothing about
// the individual amounts beyond their aggregate sum already implied by
// the commitments themselves.
type RangeProof struct {
	A, S   *crypto.Point
	T1, T2 *crypto.Point
	T      *crypto.Scalar
	TauX   *crypto.Scalar
	Mu     *crypto.Scalar
	L, R   []*crypto.Point
	Afinal *crypto.Scalar
	Bfinal *crypto.Scalar
}

func generatorVector(label string, n int) []*crypto.Point {
	out := make([]*crypto.Point, n)
	for i := 0; i < n; i++ {
		var idx [8]byte
		binary.LittleEndian.PutUint64(idx[:], uint64(i))
		out[i] = crypto.BiasedHashToPoint([]byte(label), idx[:])
	}
	return out
}

func smallScalar(v uint64) *crypto.Scalar {
	var b [32]byte
	binary.LittleEndian.PutUint64(b[:8], v)
	s, ok := crypto.ScalarFromCanonicalBytes(b)
	if !ok {
		panic("unreachable: any uint64 is a canonical scalar encoding")
	}
	return s
}

func scalarPow(base *crypto.Scalar, n int) []*crypto.Scalar {
	out := make([]*crypto.Scalar, n)
	cur := smallScalar(1)
	for i := 0; i < n; i++ {
		out[i] = crypto.ScalarZero().Set(cur)
		cur = crypto.ScalarZero().Mul(cur, base)
	}
	return out
}

func decomposeBits(amount uint64, n int) []*crypto.Scalar {
	out := make([]*crypto.Scalar, n)
	for i := 0; i < n; i++ {
		out[i] = smallScalar((amount >> uint(i)) & 1)
	}
	return out
}

func hadamard(a, b []*crypto.Scalar) []*crypto.Scalar {
	out := make([]*crypto.Scalar, len(a))
	for i := range a {
		out[i] = crypto.ScalarZero().Mul(a[i], b[i])
	}
	return out
}

func vecAddScalar(a []*crypto.Scalar, c *crypto.Scalar) []*crypto.Scalar {
	out := make([]*crypto.Scalar, len(a))
	for i := range a {
		out[i] = crypto.ScalarZero().Add(a[i], c)
	}
	return out
}

func vecSubScalar(a []*crypto.Scalar, c *crypto.Scalar) []*crypto.Scalar {
	out := make([]*crypto.Scalar, len(a))
	for i := range a {
		out[i] = crypto.ScalarZero().Sub(a[i], c)
	}
	return out
}

func vecScale(a []*crypto.Scalar, c *crypto.Scalar) []*crypto.Scalar {
	out := make([]*crypto.Scalar, len(a))
	for i := range a {
		out[i] = crypto.ScalarZero().Mul(a[i], c)
	}
	return out
}

func vecAdd(a, b []*crypto.Scalar) []*crypto.Scalar {
	out := make([]*crypto.Scalar, len(a))
	for i := range a {
		out[i] = crypto.ScalarZero().Add(a[i], b[i])
	}
	return out
}

func innerProduct(a, b []*crypto.Scalar) *crypto.Scalar {
	acc := crypto.ScalarZero()
	for i := range a {
		acc = crypto.ScalarZero().Add(acc, crypto.ScalarZero().Mul(a[i], b[i]))
	}
	return acc
}

func hashPoints(domain string, points ...*crypto.Point) *crypto.Scalar {
	data := []byte(domain)
	for _, p := range points {
		b := p.Bytes()
		data = append(data, b[:]...)
	}
	return crypto.HashToScalar(data)
}

// rangeTranscript recomputes everything a prover and verifier derive from
// public data alone: the y/z/x challenges, the folded H' basis (y-power
// weighting pulled into the generator instead of the r vector), and the
// aggregate delta(y,z) correction term.
// zEvenPows[j] = z^(2*(j+1)) weights value j's commitment and blinding mask
// (matching the single-value z^2 term when m=1); zOddPows[j] = z^(2j+3),
// i.e. z*zEvenPows[j], weights value j's contribution to the delta(y,z)
// correction. These are
// deliberately distinct power sequences, not a single shared one — the
// aggregated Bulletproofs construction folds every value's bit-range into
// one inner-product argument by giving each value's "z^2*2^n" shift a
// unique even power of z so cross-value terms cannot cancel each other out.
func rangeTranscript(commitments []*crypto.Point, A, S, T1, T2 *crypto.Point) (y, z, x *crypto.Scalar, yPow []*crypto.Scalar, zEvenPows []*crypto.Scalar, zOddPows []*crypto.Scalar, delta *crypto.Scalar) {
	m := len(commitments)
	n := rangeProofBits
	N := m * n

	y = hashPoints("bp_yz", A, S)
	z = hashPoints("bp_z", A, S, crypto.ScalarMultBase(y))
	x = hashPoints("bp_x", T1, T2)

	yPow = scalarPow(y, N)
	two := smallScalar(2)
	twoPow := scalarPow(two, n)

	zSq := crypto.ScalarZero().Mul(z, z)
	zEvenAll := scalarPow(zSq, m+1) // [1, z^2, z^4, ..., z^(2m)]
	zEvenPows = make([]*crypto.Scalar, m)
	zOddPows = make([]*crypto.Scalar, m)
	for j := 0; j < m; j++ {
		zEvenPows[j] = zEvenAll[j+1]
		zOddPows[j] = crypto.ScalarZero().Mul(z, zEvenPows[j])
	}

	sumY := crypto.ScalarZero()
	for _, yp := range yPow {
		sumY = crypto.ScalarZero().Add(sumY, yp)
	}
	sumTwo := crypto.ScalarZero()
	for _, tp := range twoPow {
		sumTwo = crypto.ScalarZero().Add(sumTwo, tp)
	}

	zMinusZ2 := crypto.ScalarZero().Sub(z, zSq)
	delta = crypto.ScalarZero().Mul(zMinusZ2, sumY)
	for j := 0; j < m; j++ {
		term := crypto.ScalarZero().Mul(zOddPows[j], sumTwo)
		delta = crypto.ScalarZero().Sub(delta, term)
	}
	return
}

// ProveAggregateRange proves that every (amount, mask) pair, in order,
// commits to commitments[i] = amount*H + mask*G and that every amount
// fits in rangeProofBits bits.
func ProveAggregateRange(commitments []*crypto.Point, amounts []uint64, masks []*crypto.Scalar, rng func() *crypto.Scalar) (*RangeProof, error) {
	m := len(amounts)
	n := rangeProofBits
	N := m * n

	Gi := generatorVector("bp_G", N)
	Hi := generatorVector("bp_H", N)

	aL := make([]*crypto.Scalar, 0, N)
	for _, a := range amounts {
		aL = append(aL, decomposeBits(a, n)...)
	}
	one := smallScalar(1)
	aR := vecSubScalar(aL, one)

	alpha := rng()
	A := crypto.Add(crypto.WeightedSum(aL, Gi), crypto.Add(crypto.WeightedSum(aR, Hi), crypto.ScalarMultBase(alpha)))

	sL := make([]*crypto.Scalar, N)
	sR := make([]*crypto.Scalar, N)
	for i := 0; i < N; i++ {
		sL[i] = rng()
		sR[i] = rng()
	}
	rho := rng()
	S := crypto.Add(crypto.WeightedSum(sL, Gi), crypto.Add(crypto.WeightedSum(sR, Hi), crypto.ScalarMultBase(rho)))

	y := hashPoints("bp_yz", A, S)
	z := hashPoints("bp_z", A, S, crypto.ScalarMultBase(y))

	yPow := scalarPow(y, N)
	two := smallScalar(2)
	twoPow := scalarPow(two, n)
	zSq := crypto.ScalarZero().Mul(z, z)
	zEvenAll := scalarPow(zSq, m+1)
	zEvenPows := make([]*crypto.Scalar, m)
	for j := 0; j < m; j++ {
		zEvenPows[j] = zEvenAll[j+1]
	}

	z2Vec := make([]*crypto.Scalar, N)
	for j := 0; j < m; j++ {
		for i := 0; i < n; i++ {
			z2Vec[j*n+i] = crypto.ScalarZero().Mul(zEvenPows[j], twoPow[i])
		}
	}

	l0 := vecSubScalar(aL, z)
	r0 := vecAdd(hadamard(yPow, vecAddScalar(aR, z)), z2Vec)

	t1 := crypto.ScalarZero().Add(innerProduct(l0, hadamard(yPow, sR)), innerProduct(sL, r0))
	t2 := innerProduct(sL, hadamard(yPow, sR))

	tau1 := rng()
	tau2 := rng()
	T1 := crypto.Add(crypto.ScalarMult(t1, crypto.GeneratorH), crypto.ScalarMultBase(tau1))
	T2 := crypto.Add(crypto.ScalarMult(t2, crypto.GeneratorH), crypto.ScalarMultBase(tau2))

	x := hashPoints("bp_x", T1, T2)

	l := vecAdd(l0, vecScale(sL, x))
	r := vecAdd(r0, vecScale(hadamard(yPow, sR), x))
	t := innerProduct(l, r)

	taux := crypto.ScalarZero().Mul(tau2, crypto.ScalarZero().Mul(x, x))
	taux = crypto.ScalarZero().Add(taux, crypto.ScalarZero().Mul(tau1, x))
	for j := 0; j < m; j++ {
		taux = crypto.ScalarZero().Add(taux, crypto.ScalarZero().Mul(zEvenPows[j], masks[j]))
	}

	mu := crypto.ScalarZero().Add(alpha, crypto.ScalarZero().Mul(rho, x))

	// H'_i = y^-i * H_i folds the y-weighting into the generator basis so
	// the closing argument becomes an ordinary (unweighted) inner-product
	// proof of <l,r> = t.
	yInv := crypto.ScalarZero().Invert(y)
	yInvPow := scalarPow(yInv, N)
	Hprime := make([]*crypto.Point, N)
	for i := range Hi {
		Hprime[i] = crypto.ScalarMult(yInvPow[i], Hi[i])
	}

	P := crypto.ScalarMult(t, crypto.GeneratorH)
	L, R, aFin, bFin := proveInnerProduct(Gi, Hprime, P, l, r)

	return &RangeProof{
		A: A, S: S, T1: T1, T2: T2,
		T: t, TauX: taux, Mu: mu,
		L: L, R: R,
		Afinal: aFin, Bfinal: bFin,
	}, nil
}

// proveInnerProduct runs the classical Bulletproofs folding argument,
// halving the generator and scalar vectors each round until a single
// (a, b) pair remains, recording the cross-term commitments (L, R) the
// verifier replays the challenges from. The invariant maintained across
// rounds is P = <a,G> + <b,H> + <a,b>*Ubase.
func proveInnerProduct(G, H []*crypto.Point, P *crypto.Point, a, b []*crypto.Scalar) (L, R []*crypto.Point, aFin, bFin *crypto.Scalar) {
	round := 0
	for len(a) > 1 {
		half := len(a) / 2
		aLo, aHi := a[:half], a[half:]
		bLo, bHi := b[:half], b[half:]
		gLo, gHi := G[:half], G[half:]
		hLo, hHi := H[:half], H[half:]

		cL := innerProduct(aLo, bHi)
		cR := innerProduct(aHi, bLo)

		Lround := crypto.Add(crypto.WeightedSum(aLo, gHi), crypto.Add(crypto.WeightedSum(bHi, hLo), crypto.ScalarMult(cL, crypto.GeneratorH)))
		Rround := crypto.Add(crypto.WeightedSum(aHi, gLo), crypto.Add(crypto.WeightedSum(bLo, hHi), crypto.ScalarMult(cR, crypto.GeneratorH)))

		e := hashPoints(fmt.Sprintf("bp_ipa_%d", round), Lround, Rround)
		eInv := crypto.ScalarZero().Invert(e)

		newG := make([]*crypto.Point, half)
		newH := make([]*crypto.Point, half)
		newA := make([]*crypto.Scalar, half)
		newB := make([]*crypto.Scalar, half)
		for i := 0; i < half; i++ {
			newG[i] = crypto.Add(crypto.ScalarMult(eInv, gLo[i]), crypto.ScalarMult(e, gHi[i]))
			newH[i] = crypto.Add(crypto.ScalarMult(e, hLo[i]), crypto.ScalarMult(eInv, hHi[i]))
			newA[i] = crypto.ScalarZero().Add(crypto.ScalarZero().Mul(aLo[i], e), crypto.ScalarZero().Mul(aHi[i], eInv))
			newB[i] = crypto.ScalarZero().Add(crypto.ScalarZero().Mul(bLo[i], eInv), crypto.ScalarZero().Mul(bHi[i], e))
		}

		L = append(L, Lround)
		R = append(R, Rround)
		G, H, a, b = newG, newH, newA, newB
		round++
	}
	return L, R, a[0], b[0]
}

// VerifyAggregateRange checks proof against the batch of output
// commitments it claims every value fits in [0, 2^64) for.
func VerifyAggregateRange(commitments []*crypto.Point, proof *RangeProof) error {
	m := len(commitments)
	n := rangeProofBits
	N := m * n

	y, z, x, yPow, zEvenPows, _, delta := rangeTranscript(commitments, proof.A, proof.S, proof.T1, proof.T2)

	lhs := crypto.Add(crypto.ScalarMult(proof.TauX, crypto.GeneratorG), crypto.ScalarMult(proof.T, crypto.GeneratorH))
	commitAccum := crypto.PointIdentity()
	for j, c := range commitments {
		commitAccum = crypto.Add(commitAccum, crypto.ScalarMult(zEvenPows[j], c))
	}
	rhs := crypto.Add(crypto.ScalarMult(delta, crypto.GeneratorH), commitAccum)
	rhs = crypto.Add(rhs, crypto.Add(crypto.ScalarMult(x, proof.T1), crypto.ScalarMult(crypto.ScalarZero().Mul(x, x), proof.T2)))
	if !lhs.Equal(rhs) {
		return errRangeProofTauMismatch
	}

	Gi := generatorVector("bp_G", N)
	Hi := generatorVector("bp_H", N)
	yInv := crypto.ScalarZero().Invert(y)
	yInvPow := scalarPow(yInv, N)
	Hprime := make([]*crypto.Point, N)
	for i := range Hi {
		Hprime[i] = crypto.ScalarMult(yInvPow[i], Hi[i])
	}

	if len(proof.L) != len(proof.R) {
		return errRangeProofFoldMismatch
	}

	// Reconstruct the verifier's view of P = A + x*S - z*sum(G_i) +
	// sum((z*y^i + z2_i)*H'_i) - mu*G + t*H, the same invariant target
	// proveInnerProduct folded l, r into starting from t*H.
	two := smallScalar(2)
	twoPow := scalarPow(two, n)
	negZ := crypto.ScalarZero().Negate(z)

	P := crypto.Add(proof.A, crypto.ScalarMult(x, proof.S))
	for i := 0; i < N; i++ {
		P = crypto.Add(P, crypto.ScalarMult(negZ, Gi[i]))
	}
	for j := 0; j < m; j++ {
		for i := 0; i < n; i++ {
			idx := j*n + i
			coeff := crypto.ScalarZero().Add(crypto.ScalarZero().Mul(z, yPow[idx]), crypto.ScalarZero().Mul(zEvenPows[j], twoPow[i]))
			P = crypto.Add(P, crypto.ScalarMult(coeff, Hprime[idx]))
		}
	}
	P = crypto.Sub(P, crypto.ScalarMultBase(proof.Mu))
	P = crypto.Add(P, crypto.ScalarMult(proof.T, crypto.GeneratorH))

	G, H := Gi, Hprime
	for round := 0; round < len(proof.L); round++ {
		half := len(G) / 2
		e := hashPoints(fmt.Sprintf("bp_ipa_%d", round), proof.L[round], proof.R[round])
		eInv := crypto.ScalarZero().Invert(e)
		e2 := crypto.ScalarZero().Mul(e, e)
		eInv2 := crypto.ScalarZero().Mul(eInv, eInv)

		P = crypto.Add(P, crypto.Add(crypto.ScalarMult(e2, proof.L[round]), crypto.ScalarMult(eInv2, proof.R[round])))

		newG := make([]*crypto.Point, half)
		newH := make([]*crypto.Point, half)
		for i := 0; i < half; i++ {
			newG[i] = crypto.Add(crypto.ScalarMult(eInv, G[i]), crypto.ScalarMult(e, G[half+i]))
			newH[i] = crypto.Add(crypto.ScalarMult(e, H[i]), crypto.ScalarMult(eInv, H[half+i]))
		}
		G, H = newG, newH
	}
	if len(G) != 1 {
		return errRangeProofFoldMismatch
	}

	expected := crypto.Add(crypto.ScalarMult(proof.Afinal, G[0]), crypto.ScalarMult(proof.Bfinal, H[0]))
	expected = crypto.Add(expected, crypto.ScalarMult(crypto.ScalarZero().Mul(proof.Afinal, proof.Bfinal), crypto.GeneratorH))
	if !expected.Equal(P) {
		return errRangeProofFoldMismatch
	}
	return nil
}
