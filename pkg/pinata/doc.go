// Package pinata is a client for the Pinata IPFS pinning API. It pins
// files and JSON documents and returns their gateway URIs.
package pinata
