package tokenmint

import (
	"context"
	"errors"
	"time"

	"github.com/ALEX-SHR-SUDO/meta/pkg/rpc"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/rs/zerolog"
)

const defaultSigningTimeout = 5 * time.Minute

// Client runs the token creation pipeline. It holds no per-call state and
// is safe for concurrent use.
type Client struct {
	network              Network
	tracker              *Tracker
	checkpointCommitment rpc.Commitment
	signingTimeout       time.Duration
	logger               zerolog.Logger
	newKeypair           func() (solana.PrivateKey, error)
}

// NewClient creates a new Client.
func NewClient(config Config) (*Client, error) {
	if config.Network == nil {
		return nil, errors.New("network is required")
	}

	checkpointCommitment := config.CheckpointCommitment
	if checkpointCommitment == "" {
		checkpointCommitment = rpc.CommitmentFinalized
	}
	signingTimeout := config.SigningTimeout
	if signingTimeout <= 0 {
		signingTimeout = defaultSigningTimeout
	}
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	tracker, err := NewTracker(config.Network, TrackerConfig{
		Commitment:    config.Commitment,
		PollInterval:  config.PollInterval,
		SkipPreflight: config.SkipPreflight,
		Subscriber:    config.Subscriber,
		Logger:        &logger,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		network:              config.Network,
		tracker:              tracker,
		checkpointCommitment: checkpointCommitment,
		signingTimeout:       signingTimeout,
		logger:               logger,
		newKeypair:           solana.NewRandomPrivateKey,
	}, nil
}

// CreateToken creates the mint, the payer's associated token account and
// the initial supply in one transaction. The returned mint address is the
// public key of a key generated for this call alone.
func (c *Client) CreateToken(ctx context.Context, request CreateTokenRequest) (CreateTokenResult, error) {
	if request.Payer.IsZero() {
		return CreateTokenResult{}, newError(KindInvalidParameters, StageValidate, nil, "payer is required")
	}
	if request.Signer == nil {
		return CreateTokenResult{}, newError(KindInvalidParameters, StageValidate, nil, "signer is required")
	}
	if err := request.Descriptor.Validate(); err != nil {
		return CreateTokenResult{}, err
	}

	ephemeral, err := c.newKeypair()
	if err != nil {
		return CreateTokenResult{}, newError(KindInternal, StageKeygen, err, "failed to generate mint key")
	}
	logger := c.logger.With().
		Str("mint", ephemeral.PublicKey().String()).
		Str("payer", request.Payer.String()).
		Str("symbol", request.Descriptor.Symbol).
		Logger()

	rent, err := c.network.GetMinimumBalanceForRentExemption(ctx, token.MINT_SIZE, c.checkpointCommitment)
	if err != nil {
		return CreateTokenResult{}, c.callError(ctx, StageRent, err, "failed to fetch rent exemption for the mint account")
	}
	logger.Debug().Uint64("lamports", rent).Msg("rent exemption fetched")

	instructions, err := AssembleInstructions(AssembleParams{
		Descriptor:   request.Descriptor,
		Payer:        request.Payer,
		Mint:         ephemeral.PublicKey(),
		RentLamports: rent,
	})
	if err != nil {
		return CreateTokenResult{}, err
	}

	checkpoint, err := c.network.GetLatestBlockhash(ctx, c.checkpointCommitment)
	if err != nil {
		if ctx.Err() != nil {
			return CreateTokenResult{}, newError(KindCanceled, StageCheckpoint, err, "failed to fetch checkpoint")
		}
		return CreateTokenResult{}, newError(KindCheckpointUnavailable, StageCheckpoint, err, "failed to fetch checkpoint")
	}
	logger.Debug().
		Str("blockhash", checkpoint.Blockhash.String()).
		Uint64("last_valid_block_height", checkpoint.LastValidBlockHeight).
		Msg("checkpoint fetched")

	unsigned, err := ComposeTransaction(instructions.List, request.Payer, checkpoint)
	if err != nil {
		return CreateTokenResult{}, err
	}

	signingCtx, cancel := context.WithTimeout(ctx, c.signingTimeout)
	signed, err := CoSign(signingCtx, unsigned, ephemeral, request.Signer)
	cancel()
	if err != nil {
		logger.Warn().Err(err).Msg("signing failed")
		return CreateTokenResult{}, err
	}

	confirmation, err := c.tracker.SubmitAndConfirm(ctx, signed)
	if err != nil {
		return CreateTokenResult{}, err
	}

	return CreateTokenResult{
		Mint:                   confirmation.Mint,
		AssociatedTokenAccount: instructions.AssociatedTokenAccount,
		Signature:              confirmation.Signature.String(),
		Amount:                 instructions.Amount,
		UIAmount:               FormatUIAmount(instructions.Amount, request.Descriptor.Decimals),
		MetadataURI:            request.Descriptor.URI,
		Slot:                   confirmation.Slot,
		Status:                 confirmation.Status,
	}, nil
}

func (c *Client) callError(ctx context.Context, stage Stage, err error, message string) error {
	if ctx.Err() != nil {
		return newError(KindCanceled, stage, err, "%s", message)
	}
	return newError(KindNetwork, stage, err, "%s", message)
}
