package tokenmint

import (
	"github.com/ALEX-SHR-SUDO/meta/pkg/rpc"
	"github.com/gagliardetto/solana-go"
)

// ComposeTransaction compiles instructions into an unsigned transaction
// paid by payer and bound to checkpoint. The instruction order is kept.
func ComposeTransaction(
	instructions []solana.Instruction,
	payer solana.PublicKey,
	checkpoint rpc.Checkpoint,
) (*UnsignedTransaction, error) {
	if checkpoint.Blockhash.IsZero() {
		return nil, newError(KindCheckpointUnavailable, StageCompose, nil, "checkpoint blockhash is empty")
	}
	if len(instructions) == 0 {
		return nil, newError(KindInvalidParameters, StageCompose, nil, "no instructions to compose")
	}
	if payer.IsZero() {
		return nil, newError(KindInvalidParameters, StageCompose, nil, "payer is required")
	}

	transaction, err := solana.NewTransaction(instructions, checkpoint.Blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, newError(KindInvalidParameters, StageCompose, err, "failed to compile message")
	}
	withSignatureSlots(transaction)

	return &UnsignedTransaction{
		Transaction:  transaction,
		Instructions: append([]solana.Instruction(nil), instructions...),
		Checkpoint:   checkpoint,
		Payer:        payer,
	}, nil
}
