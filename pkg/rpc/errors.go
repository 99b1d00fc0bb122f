package rpc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JSON-RPC error codes returned by sendTransaction.
const (
	ErrorCodePreflightFailure = -32002
	ErrorCodeNodeUnhealthy    = -32005
)

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if e == nil {
		return "rpc request failed"
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// IsPreflightFailure reports whether the node simulated the transaction
// and the simulation failed.
func (e *RPCError) IsPreflightFailure() bool {
	return e != nil && e.Code == ErrorCodePreflightFailure
}

// Logs returns program logs attached to a failed simulation, if any.
func (e *RPCError) Logs() []string {
	if e == nil || len(e.Data) == 0 {
		return nil
	}
	var payload struct {
		Logs []string `json:"logs"`
	}
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return nil
	}
	return payload.Logs
}

// TransactionError returns the raw err field of the simulation result.
func (e *RPCError) TransactionError() string {
	if e == nil || len(e.Data) == 0 {
		return ""
	}
	var payload struct {
		Err json.RawMessage `json:"err"`
	}
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return ""
	}
	trimmed := strings.TrimSpace(string(payload.Err))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}

// HTTPError is a non-2xx HTTP response from the node.
type HTTPError struct {
	Method     string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("rpc %s failed with status %d: %s", e.Method, e.StatusCode, e.Body)
}
