package rpc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ALEX-SHR-SUDO/meta/pkg/shared"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

type Config struct {
	Network    string
	Endpoint   string
	HTTPClient *http.Client
	Headers    map[string]string
}

type Client struct {
	endpoint   string
	httpClient *http.Client
	headers    map[string]string
}

// NewClient creates a new Client. Endpoint overrides the public endpoint of
// Network.
func NewClient(config Config) (*Client, error) {
	endpoint := strings.TrimSpace(config.Endpoint)
	if endpoint == "" {
		network, err := shared.NormalizeNetwork(config.Network)
		if err != nil {
			return nil, err
		}
		endpoint = shared.RPCEndpoint(network)
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid rpc endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid rpc endpoint: scheme must be http or https")
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return nil, fmt.Errorf("invalid rpc endpoint: host is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	headers := map[string]string{}
	for key, value := range config.Headers {
		headers[key] = value
	}

	return &Client{
		endpoint:   parsed.String(),
		httpClient: httpClient,
		headers:    headers,
	}, nil
}

// Endpoint returns the resolved HTTP endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// GetLatestBlockhash returns a checkpoint to bind a new transaction to.
func (c *Client) GetLatestBlockhash(ctx context.Context, commitment Commitment) (Checkpoint, error) {
	var result latestBlockhashResult
	if err := c.call(ctx, "getLatestBlockhash", []any{commitmentConfig(commitment)}, &result); err != nil {
		return Checkpoint{}, err
	}

	blockhash, err := solana.HashFromBase58(result.Value.Blockhash)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("node returned an invalid blockhash: %w", err)
	}
	return Checkpoint{
		Blockhash:            blockhash,
		LastValidBlockHeight: result.Value.LastValidBlockHeight,
	}, nil
}

// GetMinimumBalanceForRentExemption returns the lamports an account of
// dataSize bytes must hold to be rent exempt.
func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment Commitment) (uint64, error) {
	var lamports uint64
	if err := c.call(ctx, "getMinimumBalanceForRentExemption", []any{dataSize, commitmentConfig(commitment)}, &lamports); err != nil {
		return 0, err
	}
	return lamports, nil
}

// SendTransaction submits wire format bytes once and returns the signature
// the node reports. A failed preflight comes back as *RPCError with the
// simulation logs in its data.
func (c *Client) SendTransaction(ctx context.Context, raw []byte, options SendOptions) (solana.Signature, error) {
	config := map[string]any{
		"encoding":      "base64",
		"skipPreflight": options.SkipPreflight,
	}
	if options.PreflightCommitment != "" {
		config["preflightCommitment"] = options.PreflightCommitment
	}
	if options.MaxRetries != nil {
		config["maxRetries"] = *options.MaxRetries
	}

	var encoded string
	if err := c.call(ctx, "sendTransaction", []any{base64.StdEncoding.EncodeToString(raw), config}, &encoded); err != nil {
		return solana.Signature{}, err
	}

	signature, err := solana.SignatureFromBase58(encoded)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("node returned an invalid signature: %w", err)
	}
	return signature, nil
}

// GetSignatureStatuses returns one entry per signature; entries are nil
// for signatures the node has not seen.
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) ([]*SignatureStatus, error) {
	if len(signatures) == 0 {
		return nil, fmt.Errorf("at least one signature is required")
	}

	encoded := make([]string, len(signatures))
	for index, signature := range signatures {
		encoded[index] = signature.String()
	}

	var result signatureStatusesResult
	params := []any{encoded, map[string]any{"searchTransactionHistory": false}}
	if err := c.call(ctx, "getSignatureStatuses", params, &result); err != nil {
		return nil, err
	}
	if len(result.Value) != len(signatures) {
		return nil, fmt.Errorf("node returned %d statuses for %d signatures", len(result.Value), len(signatures))
	}
	return result.Value, nil
}

// GetBlockHeight returns the current block height.
func (c *Client) GetBlockHeight(ctx context.Context, commitment Commitment) (uint64, error) {
	var height uint64
	if err := c.call(ctx, "getBlockHeight", []any{commitmentConfig(commitment)}, &height); err != nil {
		return 0, err
	}
	return height, nil
}

func commitmentConfig(commitment Commitment) map[string]any {
	if commitment == "" {
		commitment = CommitmentFinalized
	}
	return map[string]any{"commitment": commitment}
}

func (c *Client) call(ctx context.Context, method string, params []any, target any) error {
	payload, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Accept", "application/json")
	for key, value := range c.headers {
		httpRequest.Header.Set(key, value)
	}

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return fmt.Errorf("rpc %s request failed: %w", method, err)
	}
	defer httpResponse.Body.Close()

	body, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return fmt.Errorf("failed to read rpc %s response: %w", method, err)
	}
	if httpResponse.StatusCode < 200 || httpResponse.StatusCode >= 300 {
		return &HTTPError{
			Method:     method,
			StatusCode: httpResponse.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var decoded response
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("failed to decode rpc %s response: %w", method, err)
	}
	if decoded.Error != nil {
		return decoded.Error
	}
	if len(decoded.Result) == 0 {
		return fmt.Errorf("rpc %s response did not include a result", method)
	}
	if err := json.Unmarshal(decoded.Result, target); err != nil {
		return fmt.Errorf("failed to decode rpc %s result: %w", method, err)
	}
	return nil
}
