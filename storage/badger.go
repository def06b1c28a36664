package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/mxhess/salvium-walletcore/types"
	"github.com/mxhess/salvium-walletcore/wallettypes"
)

// Badger is a durable Storage implementation. Where Memory relies on a
// single in-process mutex, Badger writes every multi-key operation
// (DeleteOutputsAbove, UnspendOutputsAbove, ...) through its own
// WriteBatch. The steps of the reorg recipe (Reorg) are separate
// operations and so separate batches: Badger takes no outer lock and has
// no single batch spanning them, and a failure between steps leaves the
// earlier steps applied.
type Badger struct {
	db *badger.DB
}

func OpenBadger(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open wallet database at %s: %w", path, err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

const (
	prefixOutput      = "o:"
	prefixTransaction = "t:"
	prefixBlockHash   = "b:"
)

func outputKey(keyImage [32]byte) []byte {
	return append([]byte(prefixOutput), keyImage[:]...)
}

func txKey(hash types.Hash) []byte {
	return append([]byte(prefixTransaction), hash[:]...)
}

func blockHashKey(height uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], height)
	return append([]byte(prefixBlockHash), buf[:]...)
}

func (b *Badger) PutOutput(o *wallettypes.Output) error {
	data, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(outputKey(o.KeyImage), data)
	})
}

func (b *Badger) GetOutput(keyImage [32]byte) (*wallettypes.Output, bool, error) {
	var o wallettypes.Output
	found := true
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(outputKey(keyImage))
		if err == badger.ErrKeyNotFound {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &o)
		})
	})
	if err != nil || !found {
		return nil, false, err
	}
	return &o, true, nil
}

func (b *Badger) GetOutputs(filter OutputFilter) ([]*wallettypes.Output, error) {
	var out []*wallettypes.Output
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(prefixOutput)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var o wallettypes.Output
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &o)
			}); err != nil {
				return err
			}
			if filter.AssetType != "" && o.AssetType != filter.AssetType {
				continue
			}
			if filter.OnlyUnspent && o.IsSpent {
				continue
			}
			if filter.OnlyUnfrozen && o.IsFrozen {
				continue
			}
			if filter.MaxUnlockHeight != nil && o.UnlockHeight > *filter.MaxUnlockHeight {
				continue
			}
			cp := o
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

// forEachOutput runs fn over every stored output inside a single
// read-write batch, letting the reorg recipe's per-output mutations
// commit atomically.
func (b *Badger) forEachOutput(fn func(o *wallettypes.Output) (mutated, remove bool)) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(prefixOutput)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var o wallettypes.Output
			key := append([]byte(nil), it.Item().Key()...)
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &o)
			}); err != nil {
				return err
			}
			mutated, remove := fn(&o)
			if remove {
				if err := wb.Delete(key); err != nil {
					return err
				}
				continue
			}
			if mutated {
				data, err := json.Marshal(&o)
				if err != nil {
					return err
				}
				if err := wb.Set(key, data); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return wb.Flush()
}

func (b *Badger) DeleteOutputsAbove(height uint64) error {
	return b.forEachOutput(func(o *wallettypes.Output) (bool, bool) {
		return false, o.BlockHeight > height
	})
}

func (b *Badger) MarkOutputSpent(keyImage [32]byte, txHash types.Hash, spentHeight uint64) error {
	o, ok, err := b.GetOutput(keyImage)
	if err != nil || !ok {
		return err
	}
	o.IsSpent = true
	o.SpentTxHash = txHash
	o.SpentHeight = spentHeight
	return b.PutOutput(o)
}

func (b *Badger) UnspendOutputsAbove(height uint64) error {
	return b.forEachOutput(func(o *wallettypes.Output) (bool, bool) {
		if o.IsSpent && o.SpentHeight > height {
			o.IsSpent = false
			o.SpentTxHash = types.ZeroHash
			o.SpentHeight = 0
			return true, false
		}
		return false, false
	})
}

func (b *Badger) FreezeOutput(keyImage [32]byte, frozen bool) error {
	o, ok, err := b.GetOutput(keyImage)
	if err != nil || !ok {
		return err
	}
	o.IsFrozen = frozen
	return b.PutOutput(o)
}

func (b *Badger) PutTransaction(tx *wallettypes.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(txKey(tx.TxHash), data)
	})
}

func (b *Badger) GetTransaction(txHash types.Hash) (*wallettypes.Transaction, bool, error) {
	var tx wallettypes.Transaction
	found := true
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(txKey(txHash))
		if err == badger.ErrKeyNotFound {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &tx)
		})
	})
	if err != nil || !found {
		return nil, false, err
	}
	return &tx, true, nil
}

func (b *Badger) DeleteTransactionsAbove(height uint64) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(prefixTransaction)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var tx wallettypes.Transaction
			key := append([]byte(nil), it.Item().Key()...)
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &tx)
			}); err != nil {
				return err
			}
			if tx.BlockHeight > height {
				if err := wb.Delete(key); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return wb.Flush()
}

func (b *Badger) PutBlockHash(height uint64, hash types.Hash) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(blockHashKey(height), hash[:])
	})
}

func (b *Badger) GetBlockHash(height uint64) (types.Hash, bool, error) {
	var h types.Hash
	found := true
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blockHashKey(height))
		if err == badger.ErrKeyNotFound {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			copy(h[:], val)
			return nil
		})
	})
	if err != nil || !found {
		return h, false, err
	}
	return h, true, nil
}

func (b *Badger) DeleteBlockHashesAbove(height uint64) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(prefixBlockHash)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			h := binary.BigEndian.Uint64(key[len(prefixBlockHash):])
			if h > height {
				if err := wb.Delete(key); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return wb.Flush()
}

func (b *Badger) Clear() error {
	return b.db.DropAll()
}

var _ Storage = (*Badger)(nil)
