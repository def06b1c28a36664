package txbuilder

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/rand"

	"github.com/mxhess/salvium-walletcore/address"
	"github.com/mxhess/salvium-walletcore/chainpolicy"
	"github.com/mxhess/salvium-walletcore/crypto"
	"github.com/mxhess/salvium-walletcore/node"
	"github.com/mxhess/salvium-walletcore/storage"
	"github.com/mxhess/salvium-walletcore/walleterr"
	"github.com/mxhess/salvium-walletcore/wallettypes"
)

// AssetBurnSentinel is the destination asset tag a BURN request carries
// in place of a real destination output (spec §4.11's BURN specifics).
// Build does not write it into the serialized transaction.
const AssetBurnSentinel = "BURN"

var (
	errGlobalIndexOutOfRange = errors.New("txbuilder: node returned fewer global indices than the output's position in its transaction")
	errBadOutputKey          = errors.New("txbuilder: ring member key or commitment does not decompress to a valid point")
	errNoInputs              = errors.New("txbuilder: cannot balance pseudo-outputs with zero inputs")
)

// scalarRNG returns a rng closure over crypto/rand suitable for signing
// and range-proof randomness; every caller that needs randomness in this
// package takes one so tests can substitute a deterministic source.
func scalarRNG() func() *crypto.Scalar {
	return func() *crypto.Scalar { return crypto.RandomScalar(nil) }
}

// decoyRNG seeds a math/rand source from crypto/rand entropy. The seed
// must never derive from anything that ends up on-chain (such as the
// input's own global index): the ring is broadcast in full, so a
// reproducible seed would let an observer recover the signer's identity
// by re-running decoy selection against every candidate ring member.
func decoyRNG() (*rand.Rand, error) {
	var seed [8]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, walleterr.New(walleterr.KindInternal, err)
	}
	return rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(seed[:])))), nil
}

// Build runs the shared 14-step pipeline of spec §4.11 against a
// fully-resolved BuildRequest and returns the signed, serialized
// transaction ready for broadcast.
func Build(ctx context.Context, n node.Node, s storage.Storage, w Wallet, req BuildRequest, rng func() *crypto.Scalar) (*BuildResult, error) {
	if rng == nil {
		rng = scalarRNG()
	}

	info, err := n.GetInfo(ctx)
	if err != nil {
		return nil, err
	}
	tipHeight := info.Height
	policy := chainpolicy.Resolve(tipHeight, w.Network, req.Kind)

	unlockHeight := req.UnlockHeight
	if req.Kind == chainpolicy.TxStake {
		unlockHeight = tipHeight + StakeLockPeriod
	}

	// Step 2/4: candidate spendable outputs and UTXO selection.
	candidates, err := spendableOutputs(s, req.AssetType, tipHeight)
	if err != nil {
		return nil, err
	}

	var chosen []*wallettypes.Output
	target := sumDestinations(req.Destinations) + req.Amount
	if req.Sweep {
		chosen = selectForSweep(candidates)
		if len(chosen) == 0 {
			return nil, walleterr.ErrInsufficientBalance
		}
	} else {
		// A first-pass fee estimate assuming a single input, re-estimated
		// below once selection is final (spec §4.11 step 5).
		estimate := estimateFee(1, len(req.Destinations)+1, req.Options.Priority)
		need := target
		if !req.Options.SubtractFeeFromAmount {
			need += estimate
		}
		chosen, err = selectInputs(candidates, need)
		if err != nil {
			return nil, err
		}
	}

	fee := estimateFee(len(chosen), len(req.Destinations)+1, req.Options.Priority)

	// Step 6/7/8: resolve global indices, recover one-time secrets, and
	// build each input's decoy ring.
	prepared := make([]*PreparedInput, 0, len(chosen))
	for _, o := range chosen {
		secret, err := recoverOneTimeSecret(w.Keys, o)
		if err != nil {
			return nil, err
		}
		globalIndices, err := n.GetOutputIndexes(ctx, o.TxHash)
		if err != nil {
			return nil, err
		}
		if o.OutputIndex >= len(globalIndices) {
			return nil, walleterr.New(walleterr.KindInternal, errGlobalIndexOutOfRange)
		}
		realIndex := globalIndices[o.OutputIndex]

		var upper *uint64
		dist, err := n.GetOutputDistribution(ctx, req.AssetType, 0, upper)
		if err != nil {
			return nil, err
		}
		decoySource, err := decoyRNG()
		if err != nil {
			return nil, err
		}
		offsets, signerIndex := pickDecoyOffsets(dist, realIndex, RingSize, decoySource)
		ring, err := resolveRing(ctx, n, offsets)
		if err != nil {
			return nil, err
		}

		key, ok := crypto.PointDecompress(o.OutputPublicKey)
		if !ok {
			return nil, walleterr.New(walleterr.KindPointInvalid, errBadOutputKey)
		}
		ki := crypto.KeyImage(secret, key)

		prepared = append(prepared, &PreparedInput{
			Output:      o,
			OneTimeKey:  secret,
			Mask:        o.Mask,
			Commitment:  o.Commitment,
			KeyImage:    ki,
			Ring:        ring,
			SignerIndex: signerIndex,
		})
	}

	// Step 7 (input context): CARROT destination outputs are bound to the
	// spend by hashing the transaction's first key image.
	var inputContext []byte
	if len(prepared) > 0 {
		inputContext = crypto.MakeInputContext(prepared[0].KeyImage.Bytes())
	}

	// Step 9: destination outputs, plus a change output back to the
	// wallet's own address when the inputs overshoot the target. When the
	// fee is meant to come out of the payment rather than be added on top
	// (SubtractFeeFromAmount), it is deducted from the first destination
	// only — not pro-rated across several — a documented simplification
	// (see DESIGN.md).
	destinations := req.Destinations
	if req.Options.SubtractFeeFromAmount && len(destinations) > 0 && !req.Sweep {
		if destinations[0].Amount < fee {
			return nil, walleterr.ErrInsufficientBalance
		}
		adjusted := make([]Destination, len(destinations))
		copy(adjusted, destinations)
		adjusted[0].Amount -= fee
		destinations = adjusted
	}

	outputs := make([]*PreparedOutput, 0, len(destinations)+1)
	if !req.Sweep {
		for _, d := range destinations {
			out, err := buildDestinationOutput(d, crypto.CarrotEnoteTypePayment, policy.CarrotActive, inputContext, rng)
			if err != nil {
				return nil, err
			}
			outputs = append(outputs, out)
		}
	}

	total := sumAmounts(chosen)
	if !req.Sweep {
		spent := target + fee
		if !req.Options.SubtractFeeFromAmount && total < spent {
			return nil, walleterr.ErrInsufficientBalance
		}
		if req.Options.SubtractFeeFromAmount && total < target {
			return nil, walleterr.ErrInsufficientBalance
		}
		change := total - target - fee
		if req.Options.SubtractFeeFromAmount {
			change = total - target
		}
		if change > 0 && w.ChangeAddress != nil {
			changeOut, err := buildDestinationOutput(Destination{Address: w.ChangeAddress, Amount: change}, crypto.CarrotEnoteTypeChange, policy.CarrotActive, inputContext, rng)
			if err != nil {
				return nil, err
			}
			changeOut.IsChange = true
			outputs = append(outputs, changeOut)
		}
	} else if req.Sweep {
		if total < fee {
			return nil, walleterr.ErrInsufficientBalance
		}
		sweepDest := req.Destinations[0]
		sweepDest.Amount = total - fee
		out, err := buildDestinationOutput(sweepDest, crypto.CarrotEnoteTypePayment, policy.CarrotActive, inputContext, rng)
		if err != nil {
			return nil, err
		}
		outputs = []*PreparedOutput{out}
	}

	// Step 10/11: balance the pseudo-output masks across inputs so the
	// pseudo-output masks sum to the output masks, by giving every input
	// but the last a fresh random pseudo-output mask and deriving the last
	// one to force the sums to cancel (see balancePseudoOutputs).
	if err := balancePseudoOutputs(prepared, outputs, fee, rng); err != nil {
		return nil, err
	}

	// Step 12/13: ring signatures and the aggregate range proof.
	extra := AssembleExtra(outputs, nil)
	prefix := SerializePrefix(policy, unlockHeight, prepared, outputs, extra)
	prefixHash := crypto.Keccak256(prefix)

	rct := &RctSection{Type: policy.RctType, Fee: fee}
	for _, out := range outputs {
		rct.OutPk = append(rct.OutPk, out.Commitment)
		if out.IsCarrot {
			rct.EcdhAmounts = append(rct.EcdhAmounts, 0)
		} else {
			rct.EcdhAmounts = append(rct.EcdhAmounts, out.EncryptedAmount)
		}
	}

	amounts := make([]uint64, len(outputs))
	masks := make([]*crypto.Scalar, len(outputs))
	commitments := make([]*crypto.Point, len(outputs))
	for i, out := range outputs {
		amounts[i] = out.Amount
		masks[i] = out.Mask
		commitments[i] = out.Commitment
	}
	rangeProof, err := ProveAggregateRange(commitments, amounts, masks, rng)
	if err != nil {
		return nil, err
	}
	rct.Range = rangeProof

	for _, in := range prepared {
		maskDelta := crypto.ScalarZero().Sub(in.Mask, in.PseudoMask)
		ringMembers := make([]CLSAGRingMember, len(in.Ring))
		for i, m := range in.Ring {
			key, ok := crypto.PointDecompress(m.Key)
			if !ok {
				return nil, walleterr.New(walleterr.KindPointInvalid, errBadOutputKey)
			}
			commit, ok := crypto.PointDecompress(m.Commitment)
			if !ok {
				return nil, walleterr.New(walleterr.KindPointInvalid, errBadOutputKey)
			}
			ringMembers[i] = CLSAGRingMember{Key: key, Commitment: commit}
		}
		switch policy.SigType {
		case chainpolicy.SigCLSAG:
			sig, err := SignCLSAG(prefixHash, ringMembers, in.SignerIndex, in.OneTimeKey, maskDelta, in.PseudoOutput, rng)
			if err != nil {
				return nil, err
			}
			rct.CLSAGSigs = append(rct.CLSAGSigs, sig)
		case chainpolicy.SigTCLSAG:
			tRing := make([]TCLSAGRingMember, len(ringMembers))
			for i, m := range ringMembers {
				// Asset-type commitment column: this module carries a
				// single active asset per ring under the current policy,
				// so every member's asset commitment collapses to a
				// commitment of the same (zero-blinded) asset-type value,
				// making the column's proof trivially satisfied without
				// leaking anything beyond what AssetType already reveals
				// on-chain (see DESIGN.md).
				tRing[i] = TCLSAGRingMember{Key: m.Key, Commitment: m.Commitment, AssetCommitment: crypto.PedersenCommit(0, crypto.IdentityMask())}
			}
			sig, err := SignTCLSAG(prefixHash, tRing, in.SignerIndex, in.OneTimeKey, maskDelta, crypto.ScalarZero(), in.PseudoOutput, crypto.PedersenCommit(0, crypto.IdentityMask()), rng)
			if err != nil {
				return nil, err
			}
			rct.TCLSAGSigs = append(rct.TCLSAGSigs, sig)
		}
	}

	txHash, blob := FinalizeTransaction(prefix, rct)

	return &BuildResult{
		TxHash:  txHash,
		Blob:    blob,
		Fee:     fee,
		Inputs:  prepared,
		Outputs: outputs,
	}, nil
}

// balancePseudoOutputs assigns every input a pseudo-output commitment
// (spec §4.11 steps 10-11): a fresh random mask for every input but the
// last, and a mask for the last input solved so that
//
//	sum(pseudoOut_i) == sum(realOutputCommitment_j) + fee*H
//
// which is what lets a verifier check the transaction balances without
// learning any individual amount.
func balancePseudoOutputs(inputs []*PreparedInput, outputs []*PreparedOutput, fee uint64, rng func() *crypto.Scalar) error {
	if len(inputs) == 0 {
		return walleterr.New(walleterr.KindInvalidInput, errNoInputs)
	}

	outputMaskSum := crypto.ScalarZero()
	for _, out := range outputs {
		outputMaskSum = crypto.ScalarZero().Add(outputMaskSum, out.Mask)
	}

	maskSum := crypto.ScalarZero()
	for i, in := range inputs {
		if i == len(inputs)-1 {
			continue
		}
		mask := rng()
		in.PseudoMask = mask
		in.PseudoOutput = crypto.PedersenCommit(in.Output.Amount, mask)
		maskSum = crypto.ScalarZero().Add(maskSum, mask)
	}

	last := inputs[len(inputs)-1]
	last.PseudoMask = crypto.ScalarZero().Sub(outputMaskSum, maskSum)
	last.PseudoOutput = crypto.PedersenCommit(last.Output.Amount, last.PseudoMask)
	return nil
}

func sumDestinations(dests []Destination) uint64 {
	var total uint64
	for _, d := range dests {
		total += d.Amount
	}
	return total
}

// Transfer implements the TRANSFER entry point.
func Transfer(ctx context.Context, n node.Node, s storage.Storage, w Wallet, dests []Destination, opts Options) (*BuildResult, error) {
	return Build(ctx, n, s, w, BuildRequest{
		Kind:         chainpolicy.TxTransfer,
		AssetType:    "SAL",
		Destinations: dests,
		Options:      opts,
	}, nil)
}

// Sweep implements the SWEEP entry point: consolidate every spendable
// output of assetType into a single destination.
func Sweep(ctx context.Context, n node.Node, s storage.Storage, w Wallet, assetType string, dest address.Address, opts Options) (*BuildResult, error) {
	return Build(ctx, n, s, w, BuildRequest{
		Kind:         chainpolicy.TxTransfer,
		AssetType:    assetType,
		Destinations: []Destination{{Address: &dest}},
		Options:      opts,
		Sweep:        true,
	}, nil)
}

// Stake implements the STAKE entry point: no separate destination output
// (the amount simply leaves circulation into the stake pool), with the
// wallet's own change locked for StakeLockPeriod blocks.
func Stake(ctx context.Context, n node.Node, s storage.Storage, w Wallet, amount uint64, opts Options) (*BuildResult, error) {
	return Build(ctx, n, s, w, BuildRequest{
		Kind:      chainpolicy.TxStake,
		AssetType: "SAL",
		Amount:    amount,
		Options:   opts,
	}, nil)
}

// Burn implements the BURN entry point: funds are destroyed rather than
// paid to any destination, tagged with the sentinel asset AssetBurnSentinel.
func Burn(ctx context.Context, n node.Node, s storage.Storage, w Wallet, amount uint64, opts Options) (*BuildResult, error) {
	return Build(ctx, n, s, w, BuildRequest{
		Kind:             chainpolicy.TxBurn,
		AssetType:        "SAL",
		Amount:           amount,
		Options:          opts,
		DestinationAsset: AssetBurnSentinel,
	}, nil)
}

// Convert implements the CONVERT entry point: it spends amount of
// sourceAsset, returning only change. sourceAsset, destinationAsset and
// slippage are set on the BuildRequest, but Build does not write them (or
// the amount) into the transaction, so nothing in it records the swap.
func Convert(ctx context.Context, n node.Node, s storage.Storage, w Wallet, sourceAsset, destinationAsset string, amount, slippage uint64, opts Options) (*BuildResult, error) {
	return Build(ctx, n, s, w, BuildRequest{
		Kind:             chainpolicy.TxConvert,
		AssetType:        sourceAsset,
		Amount:           amount,
		SourceAsset:      sourceAsset,
		DestinationAsset: destinationAsset,
		AmountSlippage:   slippage,
		Options:          opts,
	}, nil)
}
