package tokenmint

import (
	"context"
	"strings"
	"time"

	"github.com/ALEX-SHR-SUDO/meta/pkg/rpc"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

// AssetDescriptor describes the token to create. Supply is in whole tokens
// and is scaled by 10^Decimals into base units.
type AssetDescriptor struct {
	Name        string `json:"name" yaml:"name"`
	Symbol      string `json:"symbol" yaml:"symbol"`
	Description string `json:"description,omitempty" yaml:"description"`
	URI         string `json:"uri,omitempty" yaml:"uri"`
	Decimals    uint8  `json:"decimals" yaml:"decimals"`
	Supply      uint64 `json:"supply" yaml:"supply"`
}

// Validate checks the fields that do not depend on the ledger.
func (d AssetDescriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return newError(KindInvalidParameters, StageValidate, nil, "token name is required")
	}
	if strings.TrimSpace(d.Symbol) == "" {
		return newError(KindInvalidParameters, StageValidate, nil, "token symbol is required")
	}
	if _, err := ScaleSupply(d.Supply, d.Decimals); err != nil {
		return newError(KindInvalidParameters, StageValidate, err, "invalid supply")
	}
	return nil
}

type AssembleParams struct {
	Descriptor AssetDescriptor
	Payer      solana.PublicKey
	Mint       solana.PublicKey
	// RentLamports funds the mint account; the pipeline fetches it from
	// getMinimumBalanceForRentExemption.
	RentLamports uint64
}

// Instructions is the assembled token creation sequence together with the
// values derived while building it.
type Instructions struct {
	List                   []solana.Instruction
	AssociatedTokenAccount solana.PublicKey
	Amount                 uint64
}

type UnsignedTransaction struct {
	Transaction  *solana.Transaction
	Instructions []solana.Instruction
	Checkpoint   rpc.Checkpoint
	Payer        solana.PublicKey
}

type SignedTransaction struct {
	Transaction  *solana.Transaction
	Instructions []solana.Instruction
	Checkpoint   rpc.Checkpoint
	Payer        solana.PublicKey
	Mint         solana.PublicKey
}

// Signature returns the transaction id.
func (s *SignedTransaction) Signature() solana.Signature {
	if s == nil || s.Transaction == nil || len(s.Transaction.Signatures) == 0 {
		return solana.Signature{}
	}
	return s.Transaction.Signatures[0]
}

type Confirmation struct {
	Mint      solana.PublicKey
	Signature solana.Signature
	Slot      uint64
	Status    rpc.Commitment
}

// Network is the subset of the JSON-RPC API used by the pipeline.
// *rpc.Client implements it.
type Network interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.Commitment) (rpc.Checkpoint, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment rpc.Commitment) (uint64, error)
	SendTransaction(ctx context.Context, raw []byte, options rpc.SendOptions) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) ([]*rpc.SignatureStatus, error)
	GetBlockHeight(ctx context.Context, commitment rpc.Commitment) (uint64, error)
}

// SignatureSubscriber wakes the confirmation loop early. *rpc.WSClient
// implements it.
type SignatureSubscriber interface {
	SubscribeSignature(ctx context.Context, signature solana.Signature, commitment rpc.Commitment) (*rpc.SignatureSubscription, error)
}

type Config struct {
	Network Network
	// Subscriber is optional; without it confirmation relies on polling.
	Subscriber SignatureSubscriber
	// Commitment is the confirmation level CreateToken waits for.
	Commitment rpc.Commitment
	// CheckpointCommitment is used for the blockhash and rent queries.
	CheckpointCommitment rpc.Commitment
	PollInterval         time.Duration
	SigningTimeout       time.Duration
	SkipPreflight        bool
	Logger               *zerolog.Logger
}

type CreateTokenRequest struct {
	Descriptor AssetDescriptor
	// Payer funds the launch and becomes mint and freeze authority.
	Payer  solana.PublicKey
	Signer Signer
}

type CreateTokenResult struct {
	Mint                   solana.PublicKey `json:"mint"`
	AssociatedTokenAccount solana.PublicKey `json:"associatedTokenAccount"`
	Signature              string           `json:"signature"`
	Amount                 uint64           `json:"amount"`
	UIAmount               string           `json:"uiAmount"`
	MetadataURI            string           `json:"metadataUri,omitempty"`
	Slot                   uint64           `json:"slot"`
	Status                 rpc.Commitment   `json:"status"`
}
