package shared

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/mr-tron/base58"
)

// ParsePrivateKey accepts a keypair file path, a solana-keygen JSON byte
// array, a base58 secret, or a hex secret (raw seed or DER encoded), in
// that order.
func ParsePrivateKey(raw string) (solana.PrivateKey, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return nil, fmt.Errorf("private key cannot be empty")
	}

	if strings.HasPrefix(candidate, "[") {
		return parseKeygenSecret([]byte(candidate))
	}

	if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
		return LoadKeypairFile(candidate)
	}

	base58Secret, base58Err := base58.Decode(candidate)
	if base58Err == nil {
		privateKey, keyErr := PrivateKeyFromSecret(base58Secret)
		if keyErr == nil {
			return privateKey, nil
		}
		base58Err = keyErr
	}

	hexKey, hexErr := hedera.PrivateKeyFromStringEd25519(strings.TrimPrefix(candidate, "0x"))
	if hexErr == nil {
		return PrivateKeyFromSecret(hexKey.BytesRaw())
	}

	return nil, fmt.Errorf(
		"failed to parse private key as base58 (%v) or hex (%v)",
		base58Err,
		hexErr,
	)
}

// PrivateKeyFromSecret accepts a 32 byte seed or the 64 byte
// seed-plus-public-key layout written by solana-keygen. For the 64 byte
// form the trailing public key must match the seed.
func PrivateKeyFromSecret(secret []byte) (solana.PrivateKey, error) {
	if len(secret) != ed25519.SeedSize && len(secret) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("secret key must be 32 or 64 bytes, got %d", len(secret))
	}

	privateKey := solana.PrivateKey(ed25519.NewKeyFromSeed(secret[:ed25519.SeedSize]))
	if len(secret) == ed25519.PrivateKeySize && !bytes.Equal(secret[ed25519.SeedSize:], privateKey[ed25519.SeedSize:]) {
		return nil, fmt.Errorf(
			"secret key public half %s does not match seed %s",
			base58.Encode(secret[ed25519.SeedSize:]),
			privateKey.PublicKey(),
		)
	}
	return privateKey, nil
}

// LoadKeypairFile reads a solana-keygen keypair file.
func LoadKeypairFile(path string) (solana.PrivateKey, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file: %w", err)
	}
	return parseKeygenSecret(bytes.TrimSpace(content))
}

func parseKeygenSecret(content []byte) (solana.PrivateKey, error) {
	privateKey, err := solana.PrivateKeyFromSolanaKeygenFileBytes(content)
	if err != nil {
		return nil, fmt.Errorf("keypair must be a 64 byte JSON array: %w", err)
	}
	return PrivateKeyFromSecret(privateKey)
}

// PayerKeypair parses the configured payer key.
func (c Config) PayerKeypair() (solana.PrivateKey, error) {
	if err := c.RequirePayer(); err != nil {
		return nil, err
	}
	return ParsePrivateKey(c.Payer.Keypair)
}
