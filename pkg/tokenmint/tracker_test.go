package tokenmint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/ALEX-SHR-SUDO/meta/pkg/rpc"
	"github.com/gorilla/websocket"
)

func newTestTracker(t *testing.T, network Network, subscriber SignatureSubscriber, interval time.Duration) *Tracker {
	t.Helper()
	tracker, err := NewTracker(network, TrackerConfig{PollInterval: interval, Subscriber: subscriber})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tracker
}

func TestSubmitAndConfirmConfirmed(t *testing.T) {
	network := newFakeNetwork()
	network.statusFn = func(call int) (*rpc.SignatureStatus, error) {
		if call < 3 {
			return &rpc.SignatureStatus{Slot: 10, ConfirmationStatus: rpc.CommitmentProcessed}, nil
		}
		return confirmedStatus(12), nil
	}
	signed := signedFixture(t, 150)

	confirmation, err := newTestTracker(t, network, nil, time.Millisecond).SubmitAndConfirm(context.Background(), signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmation.Signature != signed.Signature() {
		t.Fatalf("expected signature %s, got %s", signed.Signature(), confirmation.Signature)
	}
	if confirmation.Mint != signed.Mint || confirmation.Slot != 12 || confirmation.Status != rpc.CommitmentConfirmed {
		t.Fatalf("unexpected confirmation: %+v", confirmation)
	}
	sends, statuses, _, _ := network.counts()
	if sends != 1 {
		t.Fatalf("expected exactly one submission, got %d", sends)
	}
	if statuses != 3 {
		t.Fatalf("expected 3 status checks, got %d", statuses)
	}
}

func TestSubmitAndConfirmExpiredOnce(t *testing.T) {
	network := newFakeNetwork()
	network.heightFn = func(call int) (uint64, error) {
		if call == 1 {
			return 100, nil
		}
		return 151, nil
	}
	signed := signedFixture(t, 150)

	_, err := newTestTracker(t, network, nil, time.Millisecond).SubmitAndConfirm(context.Background(), signed)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected expired, got %v", err)
	}
	if StageOf(err) != StageConfirm {
		t.Fatalf("expected confirm stage, got %q", StageOf(err))
	}

	sends, statuses, heights, _ := network.counts()
	if sends != 1 || statuses != 3 || heights != 2 {
		t.Fatalf("expected 1 send, 3 status checks, 2 height checks; got %d, %d, %d", sends, statuses, heights)
	}

	time.Sleep(20 * time.Millisecond)
	_, laterStatuses, laterHeights, _ := network.counts()
	if laterStatuses != statuses || laterHeights != heights {
		t.Fatal("expected polling to stop after expiry")
	}
}

func TestSubmitAndConfirmLandsInLastValidBlock(t *testing.T) {
	network := newFakeNetwork()
	network.heightFn = func(int) (uint64, error) { return 151, nil }
	network.statusFn = func(call int) (*rpc.SignatureStatus, error) {
		if call == 2 {
			return confirmedStatus(150), nil
		}
		return nil, nil
	}

	confirmation, err := newTestTracker(t, network, nil, time.Millisecond).SubmitAndConfirm(context.Background(), signedFixture(t, 150))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmation.Slot != 150 {
		t.Fatalf("expected slot 150, got %d", confirmation.Slot)
	}
}

func TestSubmitAndConfirmPreflightRejection(t *testing.T) {
	network := newFakeNetwork()
	network.sendErr = &rpc.RPCError{
		Code:    rpc.ErrorCodePreflightFailure,
		Message: "Transaction simulation failed: Error processing Instruction 0: custom program error: 0x1",
		Data:    json.RawMessage(`{"err":{"InstructionError":[0,{"Custom":1}]},"logs":["Program 11111111111111111111111111111111 invoke [1]","Transfer: insufficient lamports 0, need 1461600"]}`),
	}

	_, err := newTestTracker(t, network, nil, time.Millisecond).SubmitAndConfirm(context.Background(), signedFixture(t, 150))
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejected, got %v", err)
	}
	var createErr *CreateError
	if !errors.As(err, &createErr) {
		t.Fatalf("expected CreateError, got %T", err)
	}
	if createErr.Stage != StageSubmit || len(createErr.Logs) != 2 {
		t.Fatalf("unexpected error detail: %+v", createErr)
	}
	if !strings.Contains(createErr.Logs[1], "insufficient lamports") {
		t.Fatalf("expected logs verbatim, got %v", createErr.Logs)
	}
	_, statuses, _, _ := network.counts()
	if statuses != 0 {
		t.Fatal("expected no polling after rejection")
	}
}

func TestSubmitAndConfirmUnhealthyNodeIsNetworkError(t *testing.T) {
	network := newFakeNetwork()
	network.sendErr = &rpc.RPCError{Code: rpc.ErrorCodeNodeUnhealthy, Message: "Node is unhealthy"}

	_, err := newTestTracker(t, network, nil, time.Millisecond).SubmitAndConfirm(context.Background(), signedFixture(t, 150))
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if errors.Is(err, ErrRejected) {
		t.Fatal("expected an unhealthy node not to count as a rejection")
	}
	if StageOf(err) != StageSubmit {
		t.Fatalf("expected submit stage, got %q", StageOf(err))
	}
	var rpcErr *rpc.RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Code != rpc.ErrorCodeNodeUnhealthy {
		t.Fatalf("expected the rpc error as cause, got %v", err)
	}
}

func TestSubmitAndConfirmTransactionErrorIsRejected(t *testing.T) {
	network := newFakeNetwork()
	network.sendErr = &rpc.RPCError{
		Code:    -32003,
		Message: "Transaction signature verification failure",
		Data:    json.RawMessage(`{"err":"SignatureFailure"}`),
	}

	_, err := newTestTracker(t, network, nil, time.Millisecond).SubmitAndConfirm(context.Background(), signedFixture(t, 150))
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejected, got %v", err)
	}
}

func TestSubmitAndConfirmLedgerFailure(t *testing.T) {
	network := newFakeNetwork()
	network.statusFn = func(int) (*rpc.SignatureStatus, error) {
		return &rpc.SignatureStatus{
			Slot:               9,
			Err:                json.RawMessage(`{"InstructionError":[3,{"Custom":4}]}`),
			ConfirmationStatus: rpc.CommitmentConfirmed,
		}, nil
	}

	_, err := newTestTracker(t, network, nil, time.Millisecond).SubmitAndConfirm(context.Background(), signedFixture(t, 150))
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "InstructionError") {
		t.Fatalf("expected ledger error detail, got %v", err)
	}
}

func TestSubmitAndConfirmRetriesTransientErrors(t *testing.T) {
	network := newFakeNetwork()
	network.statusFn = func(call int) (*rpc.SignatureStatus, error) {
		switch call {
		case 1:
			return nil, &net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)}
		case 2:
			return nil, &rpc.HTTPError{Method: "getSignatureStatuses", StatusCode: http.StatusTooManyRequests}
		default:
			return confirmedStatus(5), nil
		}
	}

	if _, err := newTestTracker(t, network, nil, time.Millisecond).SubmitAndConfirm(context.Background(), signedFixture(t, 150)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubmitAndConfirmPermanentNetworkError(t *testing.T) {
	network := newFakeNetwork()
	network.statusFn = func(int) (*rpc.SignatureStatus, error) {
		return nil, &rpc.HTTPError{Method: "getSignatureStatuses", StatusCode: http.StatusUnauthorized, Body: "forbidden"}
	}

	_, err := newTestTracker(t, network, nil, time.Millisecond).SubmitAndConfirm(context.Background(), signedFixture(t, 150))
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestSubmitAndConfirmRefusesPartialSignatures(t *testing.T) {
	network := newFakeNetwork()
	_, _, unsigned := composeFixture(t)

	_, err := newTestTracker(t, network, nil, time.Millisecond).SubmitAndConfirm(context.Background(), &SignedTransaction{
		Transaction: unsigned.Transaction,
		Checkpoint:  unsigned.Checkpoint,
	})
	if !errors.Is(err, ErrSigningRejected) {
		t.Fatalf("expected signing rejected, got %v", err)
	}
	sends, _, _, _ := network.counts()
	if sends != 0 {
		t.Fatal("expected no submission")
	}
}

func TestSubmitAndConfirmCanceled(t *testing.T) {
	network := newFakeNetwork()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestTracker(t, network, nil, time.Hour).SubmitAndConfirm(ctx, signedFixture(t, 150))
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestSubmitAndConfirmWakesOnNotification(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var subscribe map[string]any
		if err := conn.ReadJSON(&subscribe); err != nil {
			return
		}
		_ = conn.WriteJSON(map[string]any{"jsonrpc": "2.0", "id": subscribe["id"], "result": 7})
		_ = conn.WriteJSON(map[string]any{
			"jsonrpc": "2.0",
			"method":  "signatureNotification",
			"params": map[string]any{
				"subscription": 7,
				"result": map[string]any{
					"context": map[string]any{"slot": 33},
					"value":   map[string]any{"err": nil},
				},
			},
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	subscriber, err := rpc.NewWSClient(rpc.WSConfig{Endpoint: "ws" + strings.TrimPrefix(server.URL, "http")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	network := newFakeNetwork()
	network.statusFn = func(call int) (*rpc.SignatureStatus, error) {
		if call == 1 {
			return nil, nil
		}
		return confirmedStatus(33), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	confirmation, err := newTestTracker(t, network, subscriber, time.Hour).SubmitAndConfirm(ctx, signedFixture(t, 150))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmation.Slot != 33 {
		t.Fatalf("expected slot 33, got %d", confirmation.Slot)
	}
}

type timeoutError struct{}

func (timeoutError) Error() string { return "i/o timeout" }
func (timeoutError) Timeout() bool { return true }
func (timeoutError) Temporary() bool { return true }

func TestIsRetryableWaitError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "wrapped eof", err: fmt.Errorf("rpc getSignatureStatuses request failed: %w", io.EOF), want: true},
		{name: "unexpected eof", err: fmt.Errorf("decode: %w", io.ErrUnexpectedEOF), want: true},
		{name: "connection refused", err: &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, want: true},
		{name: "timeout", err: &net.OpError{Op: "read", Net: "tcp", Err: timeoutError{}}, want: true},
		{name: "eof inside a word", err: errors.New("account Geoff not found"), want: false},
		{name: "eof inside an offset", err: errors.New("invalid deoffset in request"), want: false},
		{name: "rate limited", err: &rpc.HTTPError{Method: "getSignatureStatuses", StatusCode: http.StatusTooManyRequests}, want: true},
		{name: "server error", err: &rpc.HTTPError{Method: "getSignatureStatuses", StatusCode: http.StatusBadGateway}, want: true},
		{name: "unauthorized", err: &rpc.HTTPError{Method: "getSignatureStatuses", StatusCode: http.StatusUnauthorized}, want: false},
		{name: "canceled", err: fmt.Errorf("request: %w", context.Canceled), want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: false},
	}
	for _, tc := range cases {
		if got := isRetryableWaitError(tc.err); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
