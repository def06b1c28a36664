package txbuilder

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/mxhess/salvium-walletcore/node"
)

// Decoy selection parameters (spec §4.11 step 8), matching the classic
// CryptoNote/Monero recency-biased Gamma distribution: newer outputs are
// exponentially more likely to be picked as decoys than older ones, so a
// ring built from real spends doesn't stand out by output age.
const (
	gammaShape   = 19.28
	gammaScale   = 1.61
	recentWindow = 5 * 24 * 60 * 60 / 120 // ~5 days of blocks at a 2-minute target
)

// pickDecoyOffsets draws n-1 decoy global indices from dist plus the real
// output's own index, deduplicated, sorted ascending (fewer when dist holds
// fewer than n outputs), and returns the
// position the real index landed at after sorting (spec §4.11 step 8:
// "the real-index is re-located after sorting").
func pickDecoyOffsets(dist []node.OutputDistributionPoint, realIndex uint64, n int, rng *rand.Rand) (ring []uint64, signerIndex int) {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	total := uint64(0)
	if len(dist) > 0 {
		total = dist[len(dist)-1].Cumulative
	}

	// Only total distinct indices exist, so the ring cannot grow past that.
	if total < uint64(n) {
		n = int(total)
	}

	seen := map[uint64]struct{}{realIndex: {}}
	offsets := []uint64{realIndex}

	for len(offsets) < n && total > 0 {
		idx := gammaPick(total, rng)
		if idx >= total {
			idx = total - 1
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		offsets = append(offsets, idx)
	}

	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	for i, o := range offsets {
		if o == realIndex {
			signerIndex = i
			break
		}
	}
	return offsets, signerIndex
}

// gammaPick draws one output index biased toward the most recent
// recentWindow outputs, per the Gamma(shape, scale) age distribution.
func gammaPick(total uint64, rng *rand.Rand) uint64 {
	age := gammaSample(rng)
	if age < 0 {
		age = 0
	}
	offset := uint64(age)
	if offset >= total {
		return uint64(rng.Int63n(int64(total)))
	}
	return total - 1 - offset
}

// gammaSample draws from Gamma(gammaShape, gammaScale) via Marsaglia-Tsang,
// valid for shape >= 1 (true here).
func gammaSample(rng *rand.Rand) float64 {
	d := gammaShape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v * gammaScale
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v * gammaScale
		}
	}
}

// resolveRing fetches the ring's key/commitment pairs from the node for
// the given sorted global indices.
func resolveRing(ctx context.Context, n node.Node, indices []uint64) ([]RingMember, error) {
	refs, err := n.GetOuts(ctx, indices)
	if err != nil {
		return nil, err
	}
	members := make([]RingMember, len(refs))
	for i, o := range refs {
		members[i] = RingMember{GlobalIndex: o.GlobalIndex, Key: o.Key, Commitment: o.Mask}
	}
	return members, nil
}
