package rpc

import (
	"encoding/json"
	"strings"

	"github.com/gagliardetto/solana-go"
)

type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

func (c Commitment) rank() int {
	switch Commitment(strings.ToLower(string(c))) {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	default:
		return 0
	}
}

// Reaches reports whether c is at least as strong as target.
func (c Commitment) Reaches(target Commitment) bool {
	return c.rank() > 0 && c.rank() >= target.rank()
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// Checkpoint is a recent blockhash plus the last block height at which a
// transaction bound to it can still be processed.
type Checkpoint struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

type ResponseContext struct {
	Slot uint64 `json:"slot"`
}

type latestBlockhashResult struct {
	Context ResponseContext `json:"context"`
	Value   struct {
		Blockhash            string `json:"blockhash"`
		LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
	} `json:"value"`
}

// SignatureStatus is one entry of getSignatureStatuses.
type SignatureStatus struct {
	Slot               uint64          `json:"slot"`
	Confirmations      *uint64         `json:"confirmations"`
	Err                json.RawMessage `json:"err"`
	ConfirmationStatus Commitment      `json:"confirmationStatus"`
}

// Failed reports whether the ledger recorded a transaction error.
func (s SignatureStatus) Failed() bool {
	trimmed := strings.TrimSpace(string(s.Err))
	return trimmed != "" && trimmed != "null"
}

type signatureStatusesResult struct {
	Context ResponseContext    `json:"context"`
	Value   []*SignatureStatus `json:"value"`
}

type SendOptions struct {
	SkipPreflight       bool
	PreflightCommitment Commitment
	MaxRetries          *uint
}
