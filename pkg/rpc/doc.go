// Package rpc is a JSON-RPC client for a Solana-compatible ledger node. It
// covers the calls needed to launch a token: fetching a recent blockhash
// checkpoint, querying rent exemption, submitting a signed transaction,
// reading signature statuses and the current block height.
//
// WSClient adds the websocket signatureSubscribe notification so callers
// can react to a confirmation without waiting for the next poll.
package rpc
