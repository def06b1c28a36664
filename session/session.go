// Package session implements the orchestration layer of spec §5: a
// Session bundles a Node, a Storage, the wallet's own key material and
// subaddress tables, and a retry/timeout policy, and drives the sync loop
// that turns fetched blocks into scanned outputs, the reorg-rollback
// recipe, and the transfer/sweep/stake/burn/convert entry points.
package session

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mxhess/salvium-walletcore/scanner"
	"github.com/mxhess/salvium-walletcore/storage"
	"github.com/mxhess/salvium-walletcore/txbuilder"
	"github.com/mxhess/salvium-walletcore/node"
)

// RetryPolicy is the per-Node-call retry policy of spec §5's "all Node
// calls have a per-call timeout with an outer retry policy".
type RetryPolicy struct {
	Retries int
	Delay   time.Duration
	Timeout time.Duration
}

// DefaultRetryPolicy is spec §5's "default 2 retries, 1s delay". Timeout is
// left generous since a real adapter's own transport timeout, not this
// one, is usually what fires first.
var DefaultRetryPolicy = RetryPolicy{Retries: 2, Delay: time.Second, Timeout: 30 * time.Second}

// Config bundles the dependencies and key material a Session needs.
// Exactly one of Legacy/Carrot may be nil for a wallet that only tracks
// one key tree, but never both.
type Config struct {
	Node    node.Node
	Storage storage.Storage
	Wallet  txbuilder.Wallet

	Legacy *scanner.LegacyKeyMaterial
	Carrot *scanner.CarrotKeyMaterial

	// LockPeriod is the unlock delay applied to newly discovered outputs
	// (spec §3's unlock_height = block_height + lock_period).
	LockPeriod uint64

	// StartHeight is the height immediately below the first block a fresh
	// Session will scan; a wallet restored from a mnemonic sets this to
	// its recorded restore height instead of 0 to skip pre-creation
	// history.
	StartHeight uint64

	Retry  RetryPolicy
	Logger zerolog.Logger
}

// Session drives the wallet core's sync loop and transaction operations
// against one Node/Storage pair. It presumes the cooperative,
// single-threaded execution model of spec §5: callers must not invoke
// SyncOnce, Run, or a builder entry point concurrently on the same
// Session.
type Session struct {
	node    node.Node
	storage storage.Storage
	wallet  txbuilder.Wallet

	legacy *scanner.LegacyKeyMaterial
	carrot *scanner.CarrotKeyMaterial

	lockPeriod uint64
	height     uint64

	retry RetryPolicy
	log   zerolog.Logger
}

// New builds a Session from cfg. A zero-value Retry falls back to
// DefaultRetryPolicy rather than retrying zero times, since a caller that
// simply forgot to set it almost certainly wants the spec default, not a
// silent no-retry policy.
func New(cfg Config) *Session {
	retry := cfg.Retry
	if retry == (RetryPolicy{}) {
		retry = DefaultRetryPolicy
	}
	return &Session{
		node:       cfg.Node,
		storage:    cfg.Storage,
		wallet:     cfg.Wallet,
		legacy:     cfg.Legacy,
		carrot:     cfg.Carrot,
		lockPeriod: cfg.LockPeriod,
		height:     cfg.StartHeight,
		retry:      retry,
		log:        cfg.Logger.With().Str("component", "session").Logger(),
	}
}

// Height returns the highest block height this session has fully scanned
// and recorded.
func (s *Session) Height() uint64 {
	return s.height
}
