package session

import (
	"context"

	"github.com/mxhess/salvium-walletcore/address"
	"github.com/mxhess/salvium-walletcore/txbuilder"
)

// Transfer builds, and unless opts.DryRun is set broadcasts, a payment to
// one or more destinations.
func (s *Session) Transfer(ctx context.Context, dests []txbuilder.Destination, opts txbuilder.Options) (*txbuilder.BuildResult, error) {
	result, err := txbuilder.Transfer(ctx, s.node, s.storage, s.wallet, dests, opts)
	s.logBuild("transfer", result, err)
	return result, err
}

// Sweep consumes every spendable output of assetType into a single output
// at dest (spec §4.11's SWEEP specifics).
func (s *Session) Sweep(ctx context.Context, assetType string, dest address.Address, opts txbuilder.Options) (*txbuilder.BuildResult, error) {
	result, err := txbuilder.Sweep(ctx, s.node, s.storage, s.wallet, assetType, dest, opts)
	s.logBuild("sweep", result, err)
	return result, err
}

// Stake locks amount under the wallet's own address for
// txbuilder.StakeLockPeriod blocks.
func (s *Session) Stake(ctx context.Context, amount uint64, opts txbuilder.Options) (*txbuilder.BuildResult, error) {
	result, err := txbuilder.Stake(ctx, s.node, s.storage, s.wallet, amount, opts)
	s.logBuild("stake", result, err)
	return result, err
}

// Burn destroys amount against the network's sentinel BURN asset.
func (s *Session) Burn(ctx context.Context, amount uint64, opts txbuilder.Options) (*txbuilder.BuildResult, error) {
	result, err := txbuilder.Burn(ctx, s.node, s.storage, s.wallet, amount, opts)
	s.logBuild("burn", result, err)
	return result, err
}

// Convert records an asset conversion of amount from sourceAsset to
// destinationAsset, within slippage (spec §4.11's CONVERT specifics).
func (s *Session) Convert(ctx context.Context, sourceAsset, destinationAsset string, amount, slippage uint64, opts txbuilder.Options) (*txbuilder.BuildResult, error) {
	result, err := txbuilder.Convert(ctx, s.node, s.storage, s.wallet, sourceAsset, destinationAsset, amount, slippage, opts)
	s.logBuild("convert", result, err)
	return result, err
}

func (s *Session) logBuild(kind string, result *txbuilder.BuildResult, err error) {
	if err != nil {
		s.log.Warn().Str("kind", kind).Err(err).Msg("transaction build failed")
		return
	}
	s.log.Info().
		Str("kind", kind).
		Str("tx_hash", result.TxHash.String()).
		Uint64("fee", result.Fee).
		Int("inputs", len(result.Inputs)).
		Int("outputs", len(result.Outputs)).
		Msg("transaction built")
}
