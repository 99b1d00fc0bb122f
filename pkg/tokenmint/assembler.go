package tokenmint

import (
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
)

// AssembleInstructions builds the four token creation instructions in
// order: create the mint account, initialize the mint, create the payer's
// associated token account, mint the scaled supply into it. It makes no
// network calls. On failure no instructions are returned.
func AssembleInstructions(params AssembleParams) (Instructions, error) {
	if params.Payer.IsZero() {
		return Instructions{}, newError(KindInvalidParameters, StageAssemble, nil, "payer is required")
	}
	if params.Mint.IsZero() {
		return Instructions{}, newError(KindInvalidParameters, StageAssemble, nil, "mint is required")
	}
	if params.Payer == params.Mint {
		return Instructions{}, newError(KindInvalidParameters, StageAssemble, nil, "mint must differ from payer")
	}
	if err := params.Descriptor.Validate(); err != nil {
		return Instructions{}, err
	}

	amount, err := ScaleSupply(params.Descriptor.Supply, params.Descriptor.Decimals)
	if err != nil {
		return Instructions{}, newError(KindInvalidParameters, StageAssemble, err, "invalid supply")
	}

	associatedAccount, _, err := solana.FindAssociatedTokenAddress(params.Payer, params.Mint)
	if err != nil {
		return Instructions{}, newError(KindInvalidParameters, StageAssemble, err, "failed to derive associated token account")
	}

	payer := params.Payer
	createAccount, err := system.NewCreateAccountInstruction(
		params.RentLamports,
		token.MINT_SIZE,
		solana.TokenProgramID,
		payer,
		params.Mint,
	).ValidateAndBuild()
	if err != nil {
		return Instructions{}, newError(KindInvalidParameters, StageAssemble, err, "failed to build create account instruction")
	}
	initializeMint, err := token.NewInitializeMintInstruction(
		params.Descriptor.Decimals,
		payer,
		payer,
		params.Mint,
		solana.SysVarRentPubkey,
	).ValidateAndBuild()
	if err != nil {
		return Instructions{}, newError(KindInvalidParameters, StageAssemble, err, "failed to build initialize mint instruction")
	}
	createAssociated, err := associatedtokenaccount.NewCreateInstruction(payer, payer, params.Mint).ValidateAndBuild()
	if err != nil {
		return Instructions{}, newError(KindInvalidParameters, StageAssemble, err, "failed to build associated account instruction")
	}
	mintTo, err := token.NewMintToInstruction(amount, params.Mint, associatedAccount, payer, nil).ValidateAndBuild()
	if err != nil {
		return Instructions{}, newError(KindInvalidParameters, StageAssemble, err, "failed to build mint to instruction")
	}

	return Instructions{
		List:                   []solana.Instruction{createAccount, initializeMint, createAssociated, mintTo},
		AssociatedTokenAccount: associatedAccount,
		Amount:                 amount,
	}, nil
}
