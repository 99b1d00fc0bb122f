package tokenmint

import (
	"bytes"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// withSignatureSlots grows the signature list to one slot per required
// signer. Empty slots hold the zero signature.
func withSignatureSlots(transaction *solana.Transaction) {
	required := int(transaction.Message.Header.NumRequiredSignatures)
	for len(transaction.Signatures) < required {
		transaction.Signatures = append(transaction.Signatures, solana.Signature{})
	}
}

func signerIndex(message solana.Message, key solana.PublicKey) int {
	required := int(message.Header.NumRequiredSignatures)
	for index, account := range message.AccountKeys {
		if index >= required {
			break
		}
		if account == key {
			return index
		}
	}
	return -1
}

// signatureOf returns the signature in key's slot, if key is a required
// signer and the slot is filled.
func signatureOf(transaction *solana.Transaction, key solana.PublicKey) (solana.Signature, bool) {
	index := signerIndex(transaction.Message, key)
	if index < 0 || index >= len(transaction.Signatures) || transaction.Signatures[index].IsZero() {
		return solana.Signature{}, false
	}
	return transaction.Signatures[index], true
}

// partialSign fills the slots of keys and leaves every other slot as is.
func partialSign(transaction *solana.Transaction, keys ...solana.PrivateKey) error {
	byPublicKey := make(map[solana.PublicKey]*solana.PrivateKey, len(keys))
	for index := range keys {
		publicKey := keys[index].PublicKey()
		if signerIndex(transaction.Message, publicKey) < 0 {
			return fmt.Errorf("%s is not a required signer", publicKey)
		}
		byPublicKey[publicKey] = &keys[index]
	}

	withSignatureSlots(transaction)
	_, err := transaction.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		return byPublicKey[key]
	})
	return err
}

func cloneTransaction(transaction *solana.Transaction) *solana.Transaction {
	clone := *transaction
	clone.Signatures = append([]solana.Signature(nil), transaction.Signatures...)
	clone.Message.AccountKeys = append(solana.PublicKeySlice(nil), transaction.Message.AccountKeys...)
	clone.Message.Instructions = make([]solana.CompiledInstruction, len(transaction.Message.Instructions))
	for index, instruction := range transaction.Message.Instructions {
		clone.Message.Instructions[index] = solana.CompiledInstruction{
			ProgramIDIndex: instruction.ProgramIDIndex,
			Accounts:       append([]uint16(nil), instruction.Accounts...),
			Data:           append(solana.Base58(nil), instruction.Data...),
		}
	}
	return &clone
}

func sameMessage(left solana.Message, right solana.Message) bool {
	leftBytes, err := left.MarshalBinary()
	if err != nil {
		return false
	}
	rightBytes, err := right.MarshalBinary()
	if err != nil {
		return false
	}
	return bytes.Equal(leftBytes, rightBytes)
}
