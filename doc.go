// Package meta is a toolkit for launching fungible tokens on a Solana
// compatible ledger. It builds the token creation transaction, co-signs it
// with a fresh mint key and an external wallet signer, submits it once and
// tracks it until it is confirmed, rejected or expired. It also pins token
// images and metadata documents to IPFS through Pinata.
//
// # Packages
//
//   - tokenmint: instruction assembly, transaction composition, co-signing,
//     submission and confirmation, and the CreateToken pipeline
//   - solana: keys, program-derived addresses, instructions and the
//     transaction wire format
//   - rpc: JSON-RPC and websocket clients
//   - metadata: the off-chain token metadata document
//   - pinata: the Pinata pinning client
//   - uploadapi: HTTP upload endpoints and their client
//   - launch: upload image, upload metadata, create token
//   - shared: networks, configuration and payer keys
//
// # Examples
//
//	go run ./examples/create-token -name Test -symbol TST -decimals 2 -supply 1000 -image logo.png
//	go run ./examples/upload-server -addr :8080
//	go run ./examples/build-create-instructions -decimals 2 -supply 1000
package meta
