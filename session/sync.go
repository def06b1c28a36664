package session

import (
	"context"
	"time"

	"github.com/mxhess/salvium-walletcore/crypto"
	"github.com/mxhess/salvium-walletcore/node"
	"github.com/mxhess/salvium-walletcore/scanner"
	"github.com/mxhess/salvium-walletcore/storage"
	"github.com/mxhess/salvium-walletcore/types"
	"github.com/mxhess/salvium-walletcore/wallettypes"
	"github.com/mxhess/salvium-walletcore/walleterr"
)

// SyncResult summarises one SyncOnce pass.
type SyncResult struct {
	FromHeight    uint64
	ToHeight      uint64
	BlocksScanned uint64
	OutputsFound  int
	ReorgHeight   *uint64
}

// Run drives SyncOnce on a ticker until ctx is cancelled, the way a full
// node polls its peer set for a new tip rather than blocking on one.
// A failed pass is logged and retried on the next tick rather than
// aborting the loop, since a single bad poll should not stop the wallet
// from ever syncing again.
func (s *Session) Run(ctx context.Context, interval time.Duration) error {
	if _, err := s.SyncOnce(ctx); err != nil {
		if walleterr.Of(err) == walleterr.KindCancelled {
			return nil
		}
		s.log.Warn().Err(err).Msg("initial sync pass failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.SyncOnce(ctx); err != nil {
				if walleterr.Of(err) == walleterr.KindCancelled {
					return nil
				}
				s.log.Warn().Err(err).Msg("sync pass failed")
			}
		}
	}
}

// SyncOnce advances the session from its last recorded height to the
// node's current tip, one block at a time, checking for a reorg first
// (spec §4.9, §5).
func (s *Session) SyncOnce(ctx context.Context) (SyncResult, error) {
	info, err := withRetry(ctx, s.retry, s.node.GetInfo)
	if err != nil {
		return SyncResult{}, err
	}

	reorgHeight, err := s.checkForReorg(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{FromHeight: s.height + 1, ToHeight: info.Height, ReorgHeight: reorgHeight}
	for h := s.height + 1; h <= info.Height; h++ {
		if err := ctx.Err(); err != nil {
			return result, walleterr.New(walleterr.KindCancelled, err)
		}

		block, err := withRetry(ctx, s.retry, func(c context.Context) (node.Block, error) {
			return s.node.GetBlock(c, h)
		})
		if err != nil {
			return result, err
		}

		found, err := s.scanBlock(ctx, block)
		if err != nil {
			return result, err
		}
		result.OutputsFound += found

		if err := s.storage.PutBlockHash(h, block.Hash); err != nil {
			return result, walleterr.New(walleterr.KindInternal, err)
		}
		s.height = h
		result.BlocksScanned++
	}

	if result.BlocksScanned > 0 {
		s.log.Info().
			Uint64("from", result.FromHeight).
			Uint64("to", s.height).
			Int("outputs", result.OutputsFound).
			Msg("sync pass complete")
	}
	return result, nil
}

// checkForReorg compares the block hash this session last recorded at its
// own height against what the node reports there now. On a mismatch it
// walks backward until it finds agreement, then applies storage.Reorg and
// rewinds the session's height so the next SyncOnce call rescans the
// replaced range (spec §4.9's rollback recipe).
func (s *Session) checkForReorg(ctx context.Context) (*uint64, error) {
	if s.height == 0 {
		return nil, nil
	}
	localHash, ok, err := s.storage.GetBlockHash(s.height)
	if err != nil {
		return nil, walleterr.New(walleterr.KindInternal, err)
	}
	if !ok {
		return nil, nil
	}

	block, err := withRetry(ctx, s.retry, func(c context.Context) (node.Block, error) {
		return s.node.GetBlock(c, s.height)
	})
	if err != nil {
		return nil, err
	}
	if block.Hash == localHash {
		return nil, nil
	}

	forkHeight := s.height
	for forkHeight > 0 {
		forkHeight--
		local, ok, err := s.storage.GetBlockHash(forkHeight)
		if err != nil {
			return nil, walleterr.New(walleterr.KindInternal, err)
		}
		if !ok {
			break
		}
		b, err := withRetry(ctx, s.retry, func(c context.Context) (node.Block, error) {
			return s.node.GetBlock(c, forkHeight)
		})
		if err != nil {
			return nil, err
		}
		if b.Hash == local {
			break
		}
	}

	s.log.Info().
		Uint64("fork_height", forkHeight).
		Uint64("previous_height", s.height).
		Msg("reorg detected, rolling back")
	if err := storage.Reorg(s.storage, forkHeight); err != nil {
		return nil, walleterr.New(walleterr.KindInternal, err)
	}
	s.height = forkHeight
	return &forkHeight, nil
}

// scanBlock fetches every transaction of block (the coinbase plus its
// regular transactions) and scans each in turn.
func (s *Session) scanBlock(ctx context.Context, block node.Block) (int, error) {
	hashes := make([]types.Hash, 0, len(block.TxHashes)+1)
	if !block.MinerTxHash.IsZero() {
		hashes = append(hashes, block.MinerTxHash)
	}
	hashes = append(hashes, block.TxHashes...)
	if len(hashes) == 0 {
		return 0, nil
	}

	txs, err := withRetry(ctx, s.retry, func(c context.Context) ([]node.Transaction, error) {
		return s.node.GetTransactions(c, hashes)
	})
	if err != nil {
		return 0, err
	}

	found := 0
	for _, tx := range txs {
		isCoinbase := tx.Hash == block.MinerTxHash
		n, err := s.scanTransaction(block.Height, isCoinbase, tx)
		if err != nil {
			return found, err
		}
		found += n
	}
	return found, nil
}

// scanTransaction marks any of the wallet's own outputs that tx spends,
// then scans each of tx's outputs against the wallet's key material,
// recording every one it recognises (spec §4.5, ordering guarantee of
// spec §5: outputs are recorded in output order within a transaction).
func (s *Session) scanTransaction(height uint64, isCoinbase bool, tx node.Transaction) (int, error) {
	for _, ki := range tx.KeyImages {
		owned, ok, err := s.storage.GetOutput(ki)
		if err != nil {
			return 0, walleterr.New(walleterr.KindInternal, err)
		}
		if ok && !owned.IsSpent {
			if err := s.storage.MarkOutputSpent(ki, tx.Hash, height); err != nil {
				return 0, walleterr.New(walleterr.KindInternal, err)
			}
		}
	}

	var firstKeyImage [32]byte
	if len(tx.KeyImages) > 0 {
		firstKeyImage = tx.KeyImages[0]
	}
	var ephemeralPub *crypto.Point
	if tx.PubKeys.Main != ([32]byte{}) {
		if p, ok := crypto.PointDecompress(tx.PubKeys.Main); ok {
			ephemeralPub = p
		}
	}

	found := 0
	for i, out := range tx.Outputs {
		candidate := scanner.Candidate{
			Output:          out,
			TxHash:          tx.Hash,
			OutputIndex:     i,
			TxPubKey:        tx.PubKeys.Main,
			FirstKeyImage:   firstKeyImage,
			IsCoinbase:      isCoinbase,
			BlockHeight:     height,
			EncryptedAmount: out.EncryptedAmount,
			Commitment:      out.Commitment,
		}

		result, err := s.scanCandidate(ephemeralPub, candidate)
		if err != nil {
			// ErrNotOwned/ErrViewTagMismatch are the overwhelming common
			// case (almost every output on chain belongs to someone
			// else); any other scanner error means malformed input on
			// this one candidate, which must not abort the whole pass.
			continue
		}

		if err := s.storage.PutOutput(result); err != nil {
			return found, walleterr.New(walleterr.KindInternal, err)
		}
		found++
	}

	if found > 0 {
		record := &wallettypes.Transaction{
			TxHash:      tx.Hash,
			BlockHeight: height,
			Direction:   wallettypes.DirectionIn,
		}
		if err := s.storage.PutTransaction(record); err != nil {
			return found, walleterr.New(walleterr.KindInternal, err)
		}
	}

	return found, nil
}

// scanCandidate dispatches c to the legacy or carrot pipeline by its
// output variant, using whichever key material and subaddress table this
// session was configured with; a session missing the relevant tree simply
// never recognises that variant's outputs.
func (s *Session) scanCandidate(ephemeralPub *crypto.Point, c scanner.Candidate) (*wallettypes.Output, error) {
	if c.Output.Variant == node.OutputCarrotV1 {
		if s.carrot == nil || s.wallet.CarrotTable == nil || s.wallet.Keys.Carrot == nil || ephemeralPub == nil {
			return nil, scanner.ErrNotOwned
		}
		return scanner.ScanCarrot(*s.carrot, s.wallet.Keys.Carrot.SpendPublic, s.wallet.CarrotTable, ephemeralPub, c, s.lockPeriod)
	}
	if s.legacy == nil || s.wallet.LegacyTable == nil {
		return nil, scanner.ErrNotOwned
	}
	return scanner.ScanLegacy(*s.legacy, s.wallet.LegacyTable, c, s.lockPeriod)
}
