package txbuilder

import (
	"sort"

	"github.com/mxhess/salvium-walletcore/storage"
	"github.com/mxhess/salvium-walletcore/wallettypes"
	"github.com/mxhess/salvium-walletcore/walleterr"
)

// sweepCap bounds a SWEEP transaction's input count to respect the
// max-weight bound (spec §4.11's SWEEP specifics: "up to a cap of ~60").
const sweepCap = 60

// spendableOutputs lists candidates for assetType, filtered per spec
// §4.11 step 2: unspent, unfrozen, unlocked at tipHeight, and (for CARROT
// outputs) carrying the material the builder needs to spend them.
func spendableOutputs(s storage.Storage, assetType string, tipHeight uint64) ([]*wallettypes.Output, error) {
	all, err := s.GetOutputs(storage.OutputFilter{
		AssetType:       assetType,
		OnlyUnspent:     true,
		OnlyUnfrozen:    true,
		MaxUnlockHeight: &tipHeight,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*wallettypes.Output, 0, len(all))
	for _, o := range all {
		if o.Spendable(tipHeight) {
			out = append(out, o)
		}
	}
	return out, nil
}

// selectInputs runs the greedy UTXO selection of spec §4.11 step 4, biased
// toward the oldest outputs and coin-of-best-fit: if a single spendable
// output alone covers target, the smallest such output is used (avoiding
// an unnecessary multi-input, multi-decoy-set transaction); otherwise
// outputs are accumulated oldest-first until the running total reaches
// target.
func selectInputs(candidates []*wallettypes.Output, target uint64) ([]*wallettypes.Output, error) {
	if len(candidates) == 0 {
		return nil, walleterr.ErrInsufficientBalance
	}

	if fit := singleBestFit(candidates, target); fit != nil {
		return []*wallettypes.Output{fit}, nil
	}

	pool := make([]*wallettypes.Output, len(candidates))
	copy(pool, candidates)
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].BlockHeight != pool[j].BlockHeight {
			return pool[i].BlockHeight < pool[j].BlockHeight
		}
		return pool[i].Amount < pool[j].Amount
	})

	var selected []*wallettypes.Output
	var total uint64
	for _, o := range pool {
		if total >= target {
			break
		}
		selected = append(selected, o)
		total += o.Amount
	}

	if total < target {
		return nil, walleterr.ErrInsufficientBalance
	}
	return selected, nil
}

// singleBestFit returns the smallest single output that alone covers
// target, or nil if none does.
func singleBestFit(candidates []*wallettypes.Output, target uint64) *wallettypes.Output {
	var best *wallettypes.Output
	for _, o := range candidates {
		if o.Amount < target {
			continue
		}
		if best == nil || o.Amount < best.Amount {
			best = o
		}
	}
	return best
}

// selectForSweep takes every spendable output up to sweepCap, oldest
// first, as spec §4.11's SWEEP specifics require.
func selectForSweep(candidates []*wallettypes.Output) []*wallettypes.Output {
	pool := make([]*wallettypes.Output, len(candidates))
	copy(pool, candidates)
	sort.Slice(pool, func(i, j int) bool { return pool[i].BlockHeight < pool[j].BlockHeight })
	if len(pool) > sweepCap {
		pool = pool[:sweepCap]
	}
	return pool
}

func sumAmounts(outs []*wallettypes.Output) uint64 {
	var total uint64
	for _, o := range outs {
		total += o.Amount
	}
	return total
}
