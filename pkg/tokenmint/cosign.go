package tokenmint

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

// CoSign signs unsigned with the ephemeral mint key and then asks signer
// for the payer signature. The signer receives a copy; the value it returns
// must carry the same message and a valid signature from every required
// signer. CoSign never submits.
func CoSign(
	ctx context.Context,
	unsigned *UnsignedTransaction,
	ephemeral solana.PrivateKey,
	signer Signer,
) (*SignedTransaction, error) {
	if unsigned == nil || unsigned.Transaction == nil {
		return nil, newError(KindInvalidParameters, StageSign, nil, "transaction is required")
	}
	if signer == nil {
		return nil, newError(KindInvalidParameters, StageSign, nil, "signer is required")
	}

	if len(ephemeral) == 0 {
		return nil, newError(KindInvalidParameters, StageSign, nil, "mint key is required")
	}

	local := cloneTransaction(unsigned.Transaction)
	if err := partialSign(local, ephemeral); err != nil {
		return nil, newError(KindSigningRejected, StageSign, err, "failed to apply mint signature")
	}
	mintSignature, _ := signatureOf(local, ephemeral.PublicKey())

	if err := ctx.Err(); err != nil {
		return nil, newError(KindSigningRejected, StageSign, err, "signing canceled")
	}
	returned, err := signer.SignTransaction(ctx, cloneTransaction(local))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, newError(KindSigningRejected, StageSign, err, "signing canceled")
		}
		return nil, newError(KindSigningRejected, StageSign, err, "signer declined")
	}
	if returned == nil {
		return nil, newError(KindSigningRejected, StageSign, nil, "signer returned no transaction")
	}
	if !sameMessage(returned.Message, local.Message) {
		return nil, newError(KindSigningRejected, StageSign, nil, "signer altered the transaction message")
	}
	if signature, ok := signatureOf(returned, ephemeral.PublicKey()); !ok || signature != mintSignature {
		return nil, newError(KindSigningRejected, StageSign, nil, "signer dropped the mint signature")
	}
	if err := returned.VerifySignatures(); err != nil {
		return nil, newError(KindSigningRejected, StageSign, err, "signed transaction is incomplete")
	}

	return &SignedTransaction{
		Transaction:  returned,
		Instructions: unsigned.Instructions,
		Checkpoint:   unsigned.Checkpoint,
		Payer:        unsigned.Payer,
		Mint:         ephemeral.PublicKey(),
	}, nil
}
