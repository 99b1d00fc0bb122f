package shared

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	NetworkMainnet  = "mainnet-beta"
	NetworkDevnet   = "devnet"
	NetworkTestnet  = "testnet"
	NetworkLocalnet = "localnet"
)

// NormalizeNetwork maps user input onto a supported cluster name. An empty
// value selects devnet.
func NormalizeNetwork(network string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(network))
	if normalized == "" {
		return NetworkDevnet, nil
	}

	switch normalized {
	case "mainnet", NetworkMainnet:
		return NetworkMainnet, nil
	case NetworkDevnet, NetworkTestnet:
		return normalized, nil
	case NetworkLocalnet, "localhost":
		return NetworkLocalnet, nil
	default:
		return "", fmt.Errorf("unsupported network %q", network)
	}
}

// RPCEndpoint returns the public JSON-RPC endpoint of a normalized network.
func RPCEndpoint(network string) string {
	switch network {
	case NetworkMainnet:
		return "https://api.mainnet-beta.solana.com"
	case NetworkTestnet:
		return "https://api.testnet.solana.com"
	case NetworkLocalnet:
		return "http://127.0.0.1:8899"
	default:
		return "https://api.devnet.solana.com"
	}
}

// WebSocketEndpoint derives the pubsub endpoint from an RPC endpoint: the
// scheme becomes ws or wss and an explicit port is incremented by one, the
// convention of the reference validator.
func WebSocketEndpoint(rpcEndpoint string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rpcEndpoint))
	if err != nil {
		return "", fmt.Errorf("invalid rpc endpoint: %w", err)
	}

	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	case "http":
		parsed.Scheme = "ws"
	default:
		return "", fmt.Errorf("invalid rpc endpoint: scheme must be http or https")
	}

	if port := parsed.Port(); port != "" {
		number, err := strconv.Atoi(port)
		if err != nil {
			return "", fmt.Errorf("invalid rpc endpoint port %q", port)
		}
		parsed.Host = net.JoinHostPort(parsed.Hostname(), strconv.Itoa(number+1))
	}

	return parsed.String(), nil
}
