package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ALEX-SHR-SUDO/meta/pkg/shared"
	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/websocket"
)

type WSConfig struct {
	Network string
	// Endpoint is the websocket URL. When empty it is derived from
	// RPCEndpoint, or from the public endpoint of Network.
	Endpoint         string
	RPCEndpoint      string
	HandshakeTimeout time.Duration
}

type WSClient struct {
	endpoint string
	dialer   *websocket.Dialer
	timeout  time.Duration
}

// SignatureNotification is delivered once the subscribed signature reaches
// the requested commitment.
type SignatureNotification struct {
	Slot uint64
	Err  json.RawMessage
}

// Failed reports whether the transaction was processed with an error.
func (n SignatureNotification) Failed() bool {
	trimmed := strings.TrimSpace(string(n.Err))
	return trimmed != "" && trimmed != "null"
}

type SignatureSubscription struct {
	conn           *websocket.Conn
	subscriptionID uint64
	notifications  chan SignatureNotification
	done           chan struct{}
	closeOnce      sync.Once
	mu             sync.Mutex
	err            error
}

type wsMessage struct {
	ID     any             `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
	Params struct {
		Subscription uint64 `json:"subscription"`
		Result       struct {
			Context ResponseContext `json:"context"`
			Value   json.RawMessage `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// NewWSClient creates a new WSClient.
func NewWSClient(config WSConfig) (*WSClient, error) {
	endpoint := strings.TrimSpace(config.Endpoint)
	if endpoint == "" {
		rpcEndpoint := strings.TrimSpace(config.RPCEndpoint)
		if rpcEndpoint == "" {
			network, err := shared.NormalizeNetwork(config.Network)
			if err != nil {
				return nil, err
			}
			rpcEndpoint = shared.RPCEndpoint(network)
		}
		derived, err := shared.WebSocketEndpoint(rpcEndpoint)
		if err != nil {
			return nil, err
		}
		endpoint = derived
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket endpoint: %w", err)
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return nil, fmt.Errorf("invalid websocket endpoint: scheme must be ws or wss")
	}

	timeout := config.HandshakeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WSClient{
		endpoint: parsed.String(),
		dialer: &websocket.Dialer{
			HandshakeTimeout: timeout,
		},
		timeout: timeout,
	}, nil
}

// Endpoint returns the resolved websocket endpoint.
func (c *WSClient) Endpoint() string {
	return c.endpoint
}

// SubscribeSignature opens a connection and subscribes to signature. The
// subscription ends after the first notification, on read failure, on
// Close, or when ctx is done.
func (c *WSClient) SubscribeSignature(
	ctx context.Context,
	signature solana.Signature,
	commitment Commitment,
) (*SignatureSubscription, error) {
	if commitment == "" {
		commitment = CommitmentConfirmed
	}

	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.endpoint, err)
	}

	subscribe := request{
		JSONRPC: "2.0",
		ID:      "1",
		Method:  "signatureSubscribe",
		Params:  []any{signature.String(), map[string]any{"commitment": commitment}},
	}
	if err := conn.WriteJSON(subscribe); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to send signatureSubscribe: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(c.timeout))
	var ack wsMessage
	if err := conn.ReadJSON(&ack); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to read signatureSubscribe response: %w", err)
	}
	if ack.Error != nil {
		_ = conn.Close()
		return nil, ack.Error
	}
	var subscriptionID uint64
	if err := json.Unmarshal(ack.Result, &subscriptionID); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("unexpected signatureSubscribe response: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	subscription := &SignatureSubscription{
		conn:           conn,
		subscriptionID: subscriptionID,
		notifications:  make(chan SignatureNotification, 1),
		done:           make(chan struct{}),
	}
	go subscription.read()
	go func() {
		select {
		case <-ctx.Done():
			subscription.Close()
		case <-subscription.done:
		}
	}()

	return subscription, nil
}

// Notifications yields at most one notification and is closed when the
// subscription ends.
func (s *SignatureSubscription) Notifications() <-chan SignatureNotification {
	return s.notifications
}

// Err returns the read error that ended the subscription, if any.
func (s *SignatureSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the subscription. It is safe to call more than once.
func (s *SignatureSubscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func (s *SignatureSubscription) read() {
	defer close(s.notifications)
	defer s.Close()

	for {
		var message wsMessage
		if err := s.conn.ReadJSON(&message); err != nil {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			return
		}
		if message.Method != "signatureNotification" || message.Params.Subscription != s.subscriptionID {
			continue
		}

		var value struct {
			Err json.RawMessage `json:"err"`
		}
		if err := json.Unmarshal(message.Params.Result.Value, &value); err != nil {
			// "receivedSignature" string notifications carry no outcome.
			continue
		}
		s.notifications <- SignatureNotification{
			Slot: message.Params.Result.Context.Slot,
			Err:  value.Err,
		}
		return
	}
}
