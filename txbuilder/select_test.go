package txbuilder

import (
	"testing"

	"github.com/mxhess/salvium-walletcore/wallettypes"
)

func output(height, amount uint64) *wallettypes.Output {
	return &wallettypes.Output{BlockHeight: height, Amount: amount}
}

func TestSelectInputsPrefersSingleBestFit(t *testing.T) {
	candidates := []*wallettypes.Output{
		output(10, 1000),
		output(20, 5000),
		output(30, 6000),
	}
	chosen, err := selectInputs(candidates, 4500)
	if err != nil {
		t.Fatalf("selectInputs: %v", err)
	}
	if len(chosen) != 1 || chosen[0].Amount != 5000 {
		t.Fatalf("expected single best-fit output of 5000, got %+v", chosen)
	}
}

func TestSelectInputsAccumulatesOldestFirst(t *testing.T) {
	candidates := []*wallettypes.Output{
		output(30, 100),
		output(10, 200),
		output(20, 200),
	}
	chosen, err := selectInputs(candidates, 350)
	if err != nil {
		t.Fatalf("selectInputs: %v", err)
	}
	if len(chosen) != 2 {
		t.Fatalf("expected 2 inputs accumulated oldest-first, got %d", len(chosen))
	}
	if chosen[0].BlockHeight != 10 || chosen[1].BlockHeight != 20 {
		t.Fatalf("expected oldest-first order, got heights %d, %d", chosen[0].BlockHeight, chosen[1].BlockHeight)
	}
}

func TestSelectInputsInsufficientBalance(t *testing.T) {
	candidates := []*wallettypes.Output{output(1, 10)}
	if _, err := selectInputs(candidates, 100); err == nil {
		t.Fatal("expected insufficient balance error")
	}
}

func TestSelectForSweepCapsAtSweepCap(t *testing.T) {
	candidates := make([]*wallettypes.Output, sweepCap+10)
	for i := range candidates {
		candidates[i] = output(uint64(i), 1)
	}
	chosen := selectForSweep(candidates)
	if len(chosen) != sweepCap {
		t.Fatalf("expected %d outputs, got %d", sweepCap, len(chosen))
	}
	for i, o := range chosen {
		if o.BlockHeight != uint64(i) {
			t.Fatalf("expected oldest-first order at %d, got height %d", i, o.BlockHeight)
		}
	}
}
