package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
)

type recordedCall struct {
	Method string
	Params []json.RawMessage
}

func newRPCServer(t *testing.T, handle func(method string, params []json.RawMessage) (any, *RPCError)) (*httptest.Server, *[]recordedCall) {
	t.Helper()
	calls := make([]recordedCall, 0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		var payload struct {
			JSONRPC string            `json:"jsonrpc"`
			ID      string            `json:"id"`
			Method  string            `json:"method"`
			Params  []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if payload.JSONRPC != "2.0" || payload.ID == "" {
			t.Fatalf("unexpected envelope: %+v", payload)
		}
		calls = append(calls, recordedCall{Method: payload.Method, Params: payload.Params})

		result, rpcErr := handle(payload.Method, payload.Params)
		body := map[string]any{"jsonrpc": "2.0", "id": payload.ID}
		if rpcErr != nil {
			body["error"] = rpcErr
		} else {
			body["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	client, err := NewClient(Config{Endpoint: endpoint, Headers: map[string]string{"X-Test": "1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client
}

func TestNewClientEndpointResolution(t *testing.T) {
	client, err := NewClient(Config{Network: "mainnet"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Endpoint() != "https://api.mainnet-beta.solana.com" {
		t.Fatalf("unexpected endpoint %q", client.Endpoint())
	}

	if _, err := NewClient(Config{Endpoint: "ftp://example.com"}); err == nil {
		t.Fatal("expected scheme error")
	}
	if _, err := NewClient(Config{Network: "moonnet"}); err == nil {
		t.Fatal("expected network error")
	}
}

func TestGetLatestBlockhash(t *testing.T) {
	blockhash := solana.Hash{1, 2, 3}
	server, calls := newRPCServer(t, func(method string, params []json.RawMessage) (any, *RPCError) {
		return map[string]any{
			"context": map[string]any{"slot": 42},
			"value": map[string]any{
				"blockhash":            blockhash.String(),
				"lastValidBlockHeight": 1234,
			},
		}, nil
	})

	checkpoint, err := newTestClient(t, server.URL).GetLatestBlockhash(context.Background(), CommitmentFinalized)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if checkpoint.Blockhash != blockhash || checkpoint.LastValidBlockHeight != 1234 {
		t.Fatalf("unexpected checkpoint: %+v", checkpoint)
	}
	if (*calls)[0].Method != "getLatestBlockhash" || !strings.Contains(string((*calls)[0].Params[0]), `"finalized"`) {
		t.Fatalf("unexpected call: %+v", (*calls)[0])
	}
}

func TestGetMinimumBalanceForRentExemption(t *testing.T) {
	server, calls := newRPCServer(t, func(method string, params []json.RawMessage) (any, *RPCError) {
		return 1461600, nil
	})

	lamports, err := newTestClient(t, server.URL).GetMinimumBalanceForRentExemption(context.Background(), 82, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lamports != 1461600 {
		t.Fatalf("expected 1461600, got %d", lamports)
	}
	if string((*calls)[0].Params[0]) != "82" {
		t.Fatalf("expected data size 82, got %s", (*calls)[0].Params[0])
	}
}

func TestSendTransaction(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	signature := solana.Signature{9, 9}
	server, calls := newRPCServer(t, func(method string, params []json.RawMessage) (any, *RPCError) {
		return signature.String(), nil
	})

	got, err := newTestClient(t, server.URL).SendTransaction(context.Background(), raw, SendOptions{PreflightCommitment: CommitmentConfirmed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != signature {
		t.Fatalf("expected %s, got %s", signature, got)
	}

	call := (*calls)[0]
	var encoded string
	if err := json.Unmarshal(call.Params[0], &encoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if encoded != base64.StdEncoding.EncodeToString(raw) {
		t.Fatalf("expected base64 payload, got %q", encoded)
	}
	var options map[string]any
	if err := json.Unmarshal(call.Params[1], &options); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if options["encoding"] != "base64" || options["skipPreflight"] != false || options["preflightCommitment"] != "confirmed" {
		t.Fatalf("unexpected options: %v", options)
	}
}

func TestSendTransactionPreflightFailure(t *testing.T) {
	server, _ := newRPCServer(t, func(method string, params []json.RawMessage) (any, *RPCError) {
		return nil, &RPCError{
			Code:    -32002,
			Message: "Transaction simulation failed: Attempt to debit an account but found no record of a prior credit.",
			Data:    json.RawMessage(`{"err":"AccountNotFound","logs":["log one","log two"]}`),
		}
	})

	_, err := newTestClient(t, server.URL).SendTransaction(context.Background(), []byte{1}, SendOptions{})
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected RPCError, got %v", err)
	}
	if rpcErr.Code != -32002 {
		t.Fatalf("unexpected code %d", rpcErr.Code)
	}
	logs := rpcErr.Logs()
	if len(logs) != 2 || logs[0] != "log one" {
		t.Fatalf("unexpected logs %v", logs)
	}
	if rpcErr.TransactionError() != `"AccountNotFound"` {
		t.Fatalf("unexpected transaction error %q", rpcErr.TransactionError())
	}
}

func TestGetSignatureStatuses(t *testing.T) {
	server, _ := newRPCServer(t, func(method string, params []json.RawMessage) (any, *RPCError) {
		return map[string]any{
			"context": map[string]any{"slot": 100},
			"value": []any{
				nil,
				map[string]any{"slot": 99, "confirmations": nil, "err": nil, "confirmationStatus": "finalized"},
				map[string]any{"slot": 98, "confirmations": 3, "err": map[string]any{"InstructionError": []any{0, "InvalidAccountData"}}, "confirmationStatus": "confirmed"},
			},
		}, nil
	})

	statuses, err := newTestClient(t, server.URL).GetSignatureStatuses(context.Background(), solana.Signature{1}, solana.Signature{2}, solana.Signature{3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if statuses[0] != nil {
		t.Fatal("expected unknown signature to be nil")
	}
	if statuses[1].Failed() || !statuses[1].ConfirmationStatus.Reaches(CommitmentConfirmed) {
		t.Fatalf("unexpected status %+v", statuses[1])
	}
	if !statuses[2].Failed() || statuses[2].Confirmations == nil || *statuses[2].Confirmations != 3 {
		t.Fatalf("unexpected status %+v", statuses[2])
	}
}

func TestGetBlockHeight(t *testing.T) {
	server, _ := newRPCServer(t, func(method string, params []json.RawMessage) (any, *RPCError) {
		return 5150, nil
	})

	height, err := newTestClient(t, server.URL).GetBlockHeight(context.Background(), CommitmentConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if height != 5150 {
		t.Fatalf("expected 5150, got %d", height)
	}
}

func TestHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test") != "1" {
			t.Fatalf("expected custom header")
		}
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).GetBlockHeight(context.Background(), "")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests || httpErr.Body != "slow down" || httpErr.Method != "getBlockHeight" {
		t.Fatalf("unexpected error %+v", httpErr)
	}
}

func TestCommitmentReaches(t *testing.T) {
	if !CommitmentFinalized.Reaches(CommitmentConfirmed) {
		t.Fatal("finalized should reach confirmed")
	}
	if CommitmentProcessed.Reaches(CommitmentConfirmed) {
		t.Fatal("processed should not reach confirmed")
	}
	if Commitment("").Reaches(CommitmentProcessed) {
		t.Fatal("empty commitment should reach nothing")
	}
}
