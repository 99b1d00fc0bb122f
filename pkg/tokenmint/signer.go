package tokenmint

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Signer adds the payer signature to a transaction. Implementations must
// not change the message; they may return the same value or a copy.
type Signer interface {
	SignTransaction(ctx context.Context, transaction *solana.Transaction) (*solana.Transaction, error)
}

type SignerFunc func(ctx context.Context, transaction *solana.Transaction) (*solana.Transaction, error)

func (f SignerFunc) SignTransaction(ctx context.Context, transaction *solana.Transaction) (*solana.Transaction, error) {
	return f(ctx, transaction)
}

// WireSignerFunc signs a serialized, partially signed transaction and
// returns the serialized result. Wallet bridges exchange transactions in
// this form.
type WireSignerFunc func(ctx context.Context, partial []byte) ([]byte, error)

func (f WireSignerFunc) SignTransaction(ctx context.Context, transaction *solana.Transaction) (*solana.Transaction, error) {
	padded := cloneTransaction(transaction)
	withSignatureSlots(padded)
	partial, err := padded.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction for signing: %w", err)
	}
	signed, err := f(ctx, partial)
	if err != nil {
		return nil, err
	}
	decoded, err := solana.TransactionFromBytes(signed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signed transaction: %w", err)
	}
	return decoded, nil
}

// KeypairSigner signs with a local key.
type KeypairSigner struct {
	privateKey solana.PrivateKey
}

func NewKeypairSigner(privateKey solana.PrivateKey) *KeypairSigner {
	return &KeypairSigner{privateKey: privateKey}
}

func (s *KeypairSigner) PublicKey() solana.PublicKey {
	return s.privateKey.PublicKey()
}

func (s *KeypairSigner) SignTransaction(ctx context.Context, transaction *solana.Transaction) (*solana.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := partialSign(transaction, s.privateKey); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return transaction, nil
}
