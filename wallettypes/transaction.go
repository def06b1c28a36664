package wallettypes

import "github.com/mxhess/salvium-walletcore/types"

// Direction classifies a wallet transaction from the wallet's own point of
// view: whether it only received funds, only sent them, or (a self-transfer
// or a stake/change combination) did both.
type Direction uint8

const (
	DirectionIn Direction = iota
	DirectionOut
	DirectionBoth
)

// Transaction is a summarised, wallet-relevant view of an on-chain
// transaction; the raw serialized blob is not retained once broadcast.
type Transaction struct {
	TxHash      types.Hash
	BlockHeight uint64
	Direction   Direction
	Amount      uint64
	Fee         uint64
	Timestamp   uint64
}
