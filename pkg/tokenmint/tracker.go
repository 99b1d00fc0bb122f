package tokenmint

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/ALEX-SHR-SUDO/meta/pkg/rpc"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

const defaultPollInterval = 2 * time.Second

type TrackerConfig struct {
	Commitment    rpc.Commitment
	PollInterval  time.Duration
	SkipPreflight bool
	Subscriber    SignatureSubscriber
	Logger        *zerolog.Logger
}

// Tracker submits a signed transaction once and follows it until it is
// confirmed, rejected or expired.
type Tracker struct {
	network       Network
	subscriber    SignatureSubscriber
	commitment    rpc.Commitment
	pollInterval  time.Duration
	skipPreflight bool
	logger        zerolog.Logger
}

func NewTracker(network Network, config TrackerConfig) (*Tracker, error) {
	if network == nil {
		return nil, errors.New("network is required")
	}
	commitment := config.Commitment
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	if !commitment.Reaches(rpc.CommitmentProcessed) {
		return nil, errors.New("commitment must be processed, confirmed or finalized")
	}
	interval := config.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	return &Tracker{
		network:       network,
		subscriber:    config.Subscriber,
		commitment:    commitment,
		pollInterval:  interval,
		skipPreflight: config.SkipPreflight,
		logger:        logger,
	}, nil
}

type pollOutcome int

const (
	outcomePending pollOutcome = iota
	outcomeConfirmed
	outcomeExpired
)

// SubmitAndConfirm sends signed exactly once and waits for its outcome.
// A transaction that is not confirmed by the time the block height passes
// the checkpoint's last valid height is reported as expired after one
// final status check.
func (t *Tracker) SubmitAndConfirm(ctx context.Context, signed *SignedTransaction) (Confirmation, error) {
	if signed == nil || signed.Transaction == nil {
		return Confirmation{}, newError(KindInvalidParameters, StageSubmit, nil, "signed transaction is required")
	}
	if err := signed.Transaction.VerifySignatures(); err != nil {
		return Confirmation{}, newError(KindSigningRejected, StageSubmit, err, "refusing to submit an incompletely signed transaction")
	}
	raw, err := signed.Transaction.MarshalBinary()
	if err != nil {
		return Confirmation{}, newError(KindInvalidParameters, StageSubmit, err, "failed to encode transaction")
	}

	expected := signed.Signature()
	logger := t.logger.With().Str("signature", expected.String()).Logger()

	signature, err := t.network.SendTransaction(ctx, raw, rpc.SendOptions{
		SkipPreflight:       t.skipPreflight,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return Confirmation{}, t.submitError(ctx, err)
	}
	if signature != expected {
		logger.Warn().Str("reported", signature.String()).Msg("node reported a different signature than the fee payer signature")
	}
	logger.Debug().Uint64("last_valid_block_height", signed.Checkpoint.LastValidBlockHeight).Msg("transaction submitted")

	var wake <-chan rpc.SignatureNotification
	if t.subscriber != nil {
		subscription, err := t.subscriber.SubscribeSignature(ctx, expected, t.commitment)
		if err != nil {
			logger.Debug().Err(err).Msg("signature subscription unavailable, polling only")
		} else {
			defer subscription.Close()
			wake = subscription.Notifications()
		}
	}

	confirmation := Confirmation{Mint: signed.Mint, Signature: expected}
	for {
		outcome, status, err := t.poll(ctx, expected, signed.Checkpoint.LastValidBlockHeight)
		if err != nil {
			return Confirmation{}, err
		}
		switch outcome {
		case outcomeConfirmed:
			confirmation.Slot = status.Slot
			confirmation.Status = status.ConfirmationStatus
			logger.Info().Uint64("slot", status.Slot).Str("status", string(status.ConfirmationStatus)).Msg("transaction confirmed")
			return confirmation, nil
		case outcomeExpired:
			logger.Warn().Msg("transaction expired before confirmation")
			return Confirmation{}, newError(
				KindExpired,
				StageConfirm,
				nil,
				"block height exceeded %d before %s was confirmed",
				signed.Checkpoint.LastValidBlockHeight,
				expected,
			)
		}

		select {
		case <-ctx.Done():
			return Confirmation{}, newError(KindCanceled, StageConfirm, ctx.Err(), "stopped waiting for confirmation of %s", expected)
		case notification, ok := <-wake:
			if !ok {
				wake = nil
				continue
			}
			if notification.Failed() {
				return Confirmation{}, rejectedStatus(notification.Err)
			}
		case <-time.After(t.pollInterval):
		}
	}
}

// poll checks the signature status first and the block height second, so a
// transaction that lands in the last valid block is still reported as
// confirmed.
func (t *Tracker) poll(ctx context.Context, signature solana.Signature, lastValid uint64) (pollOutcome, *rpc.SignatureStatus, error) {
	outcome, status, err := t.checkStatus(ctx, signature)
	if err != nil || outcome != outcomePending {
		return outcome, status, err
	}

	height, err := t.network.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		if isRetryableWaitError(err) {
			t.logger.Debug().Err(err).Msg("block height query failed, retrying")
			return outcomePending, nil, nil
		}
		return outcomePending, nil, t.networkError(ctx, StageConfirm, err, "failed to read block height")
	}
	if height <= lastValid {
		return outcomePending, nil, nil
	}

	outcome, status, err = t.checkStatus(ctx, signature)
	if err != nil || outcome != outcomePending {
		return outcome, status, err
	}
	return outcomeExpired, nil, nil
}

func (t *Tracker) checkStatus(ctx context.Context, signature solana.Signature) (pollOutcome, *rpc.SignatureStatus, error) {
	statuses, err := t.network.GetSignatureStatuses(ctx, signature)
	if err != nil {
		if isRetryableWaitError(err) {
			t.logger.Debug().Err(err).Msg("signature status query failed, retrying")
			return outcomePending, nil, nil
		}
		return outcomePending, nil, t.networkError(ctx, StageConfirm, err, "failed to read signature status")
	}
	if len(statuses) == 0 || statuses[0] == nil {
		return outcomePending, nil, nil
	}

	status := statuses[0]
	if status.Failed() {
		return outcomePending, status, rejectedStatus(status.Err)
	}
	if status.ConfirmationStatus.Reaches(t.commitment) {
		return outcomeConfirmed, status, nil
	}
	return outcomePending, status, nil
}

// submitError separates a transaction the node judged invalid from a node
// that could not take it. Only the former is a rejection.
func (t *Tracker) submitError(ctx context.Context, err error) error {
	var rpcErr *rpc.RPCError
	if errors.As(err, &rpcErr) && (rpcErr.IsPreflightFailure() || rpcErr.TransactionError() != "") {
		createErr := newError(KindRejected, StageSubmit, err, "transaction rejected by the node")
		createErr.Logs = rpcErr.Logs()
		return createErr
	}
	return t.networkError(ctx, StageSubmit, err, "failed to submit transaction")
}

func (t *Tracker) networkError(ctx context.Context, stage Stage, err error, message string) error {
	if ctx.Err() != nil {
		return newError(KindCanceled, stage, err, "%s", message)
	}
	return newError(KindNetwork, stage, err, "%s", message)
}

func rejectedStatus(detail []byte) error {
	return newError(KindRejected, StageConfirm, nil, "transaction failed on the ledger: %s", strings.TrimSpace(string(detail)))
}

func isRetryableWaitError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *rpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= http.StatusInternalServerError
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE)
}
