package txbuilder

// Fee estimation is affine in serialized weight (spec §4.11 step 3, step
// 5): a fixed per-byte base rate scaled by the priority multiplier, over
// an estimated weight that only depends on input/output counts before the
// real ring and proof sizes are known.
const (
	feePerByteBase = 20 // atomic units per byte, testnet placeholder rate
	baseTxOverhead = 100
	perInputWeight = 1500 // CLSAG/TCLSAG ring signature dominates input weight
	perOutputWeight = 180  // one-time address + encrypted amount/anchor + range-proof share
)

// estimateWeight approximates the serialized size of a transaction with
// the given input/output counts, without yet knowing the exact ring or
// bulletproof encoding (spec §4.11 step 3's "guess").
func estimateWeight(numInputs, numOutputs int) uint64 {
	return uint64(baseTxOverhead + numInputs*perInputWeight + numOutputs*perOutputWeight)
}

// estimateFee computes the fee for a given shape and priority.
func estimateFee(numInputs, numOutputs int, priority Priority) uint64 {
	return estimateWeight(numInputs, numOutputs) * feePerByteBase * priority.multiplier()
}
