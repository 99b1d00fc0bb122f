package tokenmint

import (
	"context"
	"sync"
	"testing"

	"github.com/ALEX-SHR-SUDO/meta/pkg/rpc"
	"github.com/gagliardetto/solana-go"
)

type fakeNetwork struct {
	mu sync.Mutex

	checkpoint    rpc.Checkpoint
	checkpointErr error
	rent          uint64
	rentErr       error
	sendErr       error
	statusFn      func(call int) (*rpc.SignatureStatus, error)
	heightFn      func(call int) (uint64, error)

	sent            []*solana.Transaction
	rentCalls       int
	checkpointCalls int
	sendCalls       int
	statusCalls     int
	heightCalls     int
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{
		checkpoint: rpc.Checkpoint{Blockhash: solana.Hash{7, 7, 7}, LastValidBlockHeight: 150},
		rent:       1461600,
	}
}

func (f *fakeNetwork) GetLatestBlockhash(ctx context.Context, commitment rpc.Commitment) (rpc.Checkpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkpointCalls++
	return f.checkpoint, f.checkpointErr
}

func (f *fakeNetwork) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment rpc.Commitment) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rentCalls++
	return f.rent, f.rentErr
}

func (f *fakeNetwork) SendTransaction(ctx context.Context, raw []byte, options rpc.SendOptions) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	transaction, err := solana.TransactionFromBytes(raw)
	if err != nil {
		return solana.Signature{}, err
	}
	f.sent = append(f.sent, transaction)
	return transaction.Signatures[0], nil
}

func (f *fakeNetwork) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) ([]*rpc.SignatureStatus, error) {
	f.mu.Lock()
	f.statusCalls++
	call := f.statusCalls
	fn := f.statusFn
	f.mu.Unlock()
	if fn == nil {
		return []*rpc.SignatureStatus{nil}, nil
	}
	status, err := fn(call)
	if err != nil {
		return nil, err
	}
	return []*rpc.SignatureStatus{status}, nil
}

func (f *fakeNetwork) GetBlockHeight(ctx context.Context, commitment rpc.Commitment) (uint64, error) {
	f.mu.Lock()
	f.heightCalls++
	call := f.heightCalls
	fn := f.heightFn
	f.mu.Unlock()
	if fn == nil {
		return 100, nil
	}
	return fn(call)
}

func (f *fakeNetwork) counts() (int, int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sendCalls, f.statusCalls, f.heightCalls, f.rentCalls + f.checkpointCalls
}

func confirmedStatus(slot uint64) *rpc.SignatureStatus {
	return &rpc.SignatureStatus{Slot: slot, ConfirmationStatus: rpc.CommitmentConfirmed}
}

func mustKeypair(t *testing.T) solana.PrivateKey {
	t.Helper()
	privateKey, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return privateKey
}

func testDescriptor() AssetDescriptor {
	return AssetDescriptor{
		Name:     "Test",
		Symbol:   "TST",
		URI:      "https://gateway.pinata.cloud/ipfs/QmMetadata",
		Decimals: 2,
		Supply:   1000,
	}
}

// signedFixture builds a fully signed token creation transaction.
func signedFixture(t *testing.T, lastValid uint64) *SignedTransaction {
	t.Helper()
	payer := mustKeypair(t)
	mint := mustKeypair(t)
	instructions, err := AssembleInstructions(AssembleParams{
		Descriptor:   testDescriptor(),
		Payer:        payer.PublicKey(),
		Mint:         mint.PublicKey(),
		RentLamports: 1461600,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	unsigned, err := ComposeTransaction(instructions.List, payer.PublicKey(), rpc.Checkpoint{
		Blockhash:            solana.Hash{3},
		LastValidBlockHeight: lastValid,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	signed, err := CoSign(context.Background(), unsigned, mint, NewKeypairSigner(payer))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return signed
}
