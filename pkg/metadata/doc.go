// Package metadata builds the off-chain JSON document that describes a
// token: name, symbol, description and image, in the layout wallets and
// explorers read from a metadata URI.
package metadata
