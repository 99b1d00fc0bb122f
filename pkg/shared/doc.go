// Package shared provides the configuration layer of the token launch
// toolkit: network normalization and public endpoint defaults, .env and
// environment variable loading, YAML configuration files, and payer key
// parsing.
//
// # Environment Variables
//
//	SOLANA_NETWORK       mainnet-beta, devnet, testnet or localnet (default devnet)
//	SOLANA_RPC_URL       overrides the public RPC endpoint of the network
//	SOLANA_WS_URL        overrides the websocket endpoint derived from the RPC URL
//	PAYER_KEYPAIR        keypair file path, JSON byte array, base58 or hex secret
//	PINATA_API_KEY       Pinata API key
//	PINATA_SECRET_KEY    Pinata secret API key
//	PINATA_GATEWAY_URL   gateway prefix for returned URIs
//	UPLOAD_LISTEN_ADDR   listen address of the upload endpoints
//
// Values already present in the process environment win over a .env file.
// Configuration is resolved once, by the entry point, and passed to
// constructors as explicit structs.
package shared
