package txbuilder

import (
	"context"
	"testing"

	"github.com/mxhess/salvium-walletcore/address"
	"github.com/mxhess/salvium-walletcore/chainpolicy"
	"github.com/mxhess/salvium-walletcore/crypto"
	"github.com/mxhess/salvium-walletcore/node"
	"github.com/mxhess/salvium-walletcore/storage"
	"github.com/mxhess/salvium-walletcore/types"
	"github.com/mxhess/salvium-walletcore/wallettypes"
)

// fakeNode is a minimal, deterministic node.Node double: one real output
// living at a fixed global index inside an otherwise synthetic output
// distribution, so ring construction and decoy resolution exercise the
// exact same code path a live node would drive.
type fakeNode struct {
	height        uint64
	realGlobal    uint64
	realKey       *crypto.Point
	realCommit    *crypto.Point
	realTxHash    types.Hash
	distribution  uint64
}

func (f *fakeNode) GetInfo(ctx context.Context) (node.Info, error) {
	return node.Info{Height: f.height}, nil
}
func (f *fakeNode) GetBlock(ctx context.Context, height uint64) (node.Block, error) {
	return node.Block{}, nil
}
func (f *fakeNode) GetBlockHeadersRange(ctx context.Context, lo, hi uint64) ([]node.BlockHeader, error) {
	return nil, nil
}
func (f *fakeNode) GetTransactions(ctx context.Context, hashes []types.Hash) ([]node.Transaction, error) {
	return nil, nil
}
func (f *fakeNode) GetOuts(ctx context.Context, globalIndices []uint64) ([]node.OutRef, error) {
	refs := make([]node.OutRef, len(globalIndices))
	for i, idx := range globalIndices {
		if idx == f.realGlobal {
			refs[i] = node.OutRef{GlobalIndex: idx, Key: f.realKey.Bytes(), Mask: f.realCommit.Bytes(), Unlocked: true}
			continue
		}
		decoyKey := crypto.ScalarMultBase(crypto.HashToScalar([]byte("decoy-key"), uint64Bytes(idx)))
		decoyCommit := crypto.PedersenCommit(idx, crypto.HashToScalar([]byte("decoy-mask"), uint64Bytes(idx)))
		refs[i] = node.OutRef{GlobalIndex: idx, Key: decoyKey.Bytes(), Mask: decoyCommit.Bytes(), Unlocked: true}
	}
	return refs, nil
}
func (f *fakeNode) GetOutputDistribution(ctx context.Context, asset string, start uint64, end *uint64) ([]node.OutputDistributionPoint, error) {
	return []node.OutputDistributionPoint{{Height: f.height, Cumulative: f.distribution}}, nil
}
func (f *fakeNode) GetOutputIndexes(ctx context.Context, txHash types.Hash) ([]uint64, error) {
	return []uint64{f.realGlobal}, nil
}
func (f *fakeNode) GetTxPool(ctx context.Context) ([]node.Transaction, error) { return nil, nil }
func (f *fakeNode) SendRawTransaction(ctx context.Context, hex string, sourceAsset string) (node.SendResult, error) {
	return node.SendResult{Status: "OK"}, nil
}
func (f *fakeNode) IsKeyImageSpent(ctx context.Context, keyImages [][32]byte) ([]bool, error) {
	return make([]bool, len(keyImages)), nil
}

func uint64Bytes(v uint64) []byte {
	var b [8]byte
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
	return b[:]
}

// fakeStorage hands back a single fixed spendable output regardless of
// filter, which is all Build needs from the storage layer for a
// single-input transfer.
type fakeStorage struct {
	output *wallettypes.Output
}

func (s *fakeStorage) PutOutput(o *wallettypes.Output) error { return nil }
func (s *fakeStorage) GetOutput(keyImage [32]byte) (*wallettypes.Output, bool, error) {
	return s.output, true, nil
}
func (s *fakeStorage) GetOutputs(filter storage.OutputFilter) ([]*wallettypes.Output, error) {
	return []*wallettypes.Output{s.output}, nil
}
func (s *fakeStorage) DeleteOutputsAbove(height uint64) error         { return nil }
func (s *fakeStorage) MarkOutputSpent(keyImage [32]byte, txHash types.Hash, spentHeight uint64) error {
	return nil
}
func (s *fakeStorage) UnspendOutputsAbove(height uint64) error   { return nil }
func (s *fakeStorage) FreezeOutput(keyImage [32]byte, frozen bool) error { return nil }
func (s *fakeStorage) PutTransaction(tx *wallettypes.Transaction) error { return nil }
func (s *fakeStorage) GetTransaction(txHash types.Hash) (*wallettypes.Transaction, bool, error) {
	return nil, false, nil
}
func (s *fakeStorage) DeleteTransactionsAbove(height uint64) error       { return nil }
func (s *fakeStorage) PutBlockHash(height uint64, hash types.Hash) error { return nil }
func (s *fakeStorage) GetBlockHash(height uint64) (types.Hash, bool, error) {
	return types.Hash{}, false, nil
}
func (s *fakeStorage) DeleteBlockHashesAbove(height uint64) error { return nil }
func (s *fakeStorage) Clear() error                               { return nil }

func TestBuildTransferProducesAVerifiableCLSAGTransaction(t *testing.T) {
	rng := counterRNG()

	senderMaster := address.MasterSecret{1}
	senderKeys := address.DeriveLegacyKeys(senderMaster)

	// The spent output pays the sender's own legacy address, so Build can
	// recover its one-time secret from TxPubKey and the sender's keys.
	txSecret := rng()
	txPub := crypto.ScalarMultBase(txSecret)
	derivation := crypto.ScalarMult(txSecret, senderKeys.ViewPublic)
	realKey := crypto.Add(senderKeys.SpendPublic, crypto.ScalarMultBase(crypto.LegacyDerivationScalar(derivation, 0)))
	realAmount := uint64(1_000_000_000)
	realMask := rng()
	realCommit := crypto.PedersenCommit(realAmount, realMask)

	var realTxHash types.Hash
	realTxHash[0] = 0x11

	walletOutput := &wallettypes.Output{
		TxHash:          realTxHash,
		OutputIndex:     0,
		TxPubKey:        txPub.Bytes(),
		OutputPublicKey: realKey.Bytes(),
		Amount:          realAmount,
		Mask:            realMask,
		Commitment:      realCommit,
		AssetType:       "SAL",
	}

	recipientMaster := address.MasterSecret{2}
	recipientKeys := address.DeriveLegacyKeys(recipientMaster)
	recipientAddr := address.Address{Format: address.Legacy, Network: address.Testnet, SpendPub: recipientKeys.SpendPublic, ViewPub: recipientKeys.ViewPublic}

	changeMaster := address.MasterSecret{3}
	changeKeys := address.DeriveLegacyKeys(changeMaster)
	changeAddr := &address.Address{Format: address.Legacy, Network: address.Testnet, SpendPub: changeKeys.SpendPublic, ViewPub: changeKeys.ViewPublic}

	wallet := Wallet{
		Keys:          Keys{Legacy: senderKeys},
		Network:       address.Testnet,
		ChangeAddress: changeAddr,
	}

	fn := &fakeNode{height: 1, realGlobal: 500, realKey: realKey, realCommit: realCommit, realTxHash: realTxHash, distribution: 5000}
	fs := &fakeStorage{output: walletOutput}

	req := BuildRequest{
		Kind:         chainpolicy.TxTransfer,
		AssetType:    "SAL",
		Destinations: []Destination{{Address: &recipientAddr, Amount: 100_000_000}},
	}

	result, err := Build(context.Background(), fn, fs, wallet, req, rng)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(result.Inputs) != 1 {
		t.Fatalf("expected exactly one prepared input, got %d", len(result.Inputs))
	}
	if len(result.Outputs) != 2 {
		t.Fatalf("expected a payment output and a change output, got %d", len(result.Outputs))
	}

	in := result.Inputs[0]
	if len(in.Ring) != RingSize {
		t.Fatalf("expected ring size %d, got %d", RingSize, len(in.Ring))
	}
	signerKeyBytes := realKey.Bytes()
	if in.Ring[in.SignerIndex].Key != signerKeyBytes {
		t.Fatal("ring member at the reported signer index is not the real spent key")
	}
	if !crypto.KeyImage(in.OneTimeKey, realKey).Equal(in.KeyImage) {
		t.Fatal("prepared input's key image does not match its one-time secret and real key")
	}

	var outputTotal uint64
	for i, o := range result.Outputs {
		if !o.Commitment.Equal(crypto.PedersenCommit(o.Amount, o.Mask)) {
			t.Fatalf("output %d commitment does not match its own amount and mask", i)
		}
		outputTotal += o.Amount
	}
	if outputTotal+result.Fee != realAmount {
		t.Fatalf("balance does not hold: outputs %d + fee %d != input %d", outputTotal, result.Fee, realAmount)
	}

	if !in.PseudoOutput.Equal(crypto.Sub(in.Commitment, crypto.ScalarMult(crypto.ScalarZero().Sub(in.Mask, in.PseudoMask), crypto.GeneratorG))) {
		t.Fatal("pseudo-output commitment is not consistent with the real commitment and mask delta")
	}
}
