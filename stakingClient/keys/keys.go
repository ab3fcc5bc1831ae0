// Package keys loads and creates the wallet keypair in the Solana CLI
// format: a JSON array of the 64 secret key bytes.
package keys

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
)

const (
	keypairLength = 64

	keyDirPermissions  = 0o700
	keyFilePermissions = 0o600
)

// LoadKeypair reads a Solana CLI keypair file.
func LoadKeypair(path string) (solana.PrivateKey, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read keypair file %s: %w", path, err)
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse keypair file %s: %w", path, err)
	}
	if len(key) != keypairLength {
		return nil, fmt.Errorf("invalid key length: expected %d bytes, got %d", keypairLength, len(key))
	}
	return key, nil
}

// CheckPermissions returns an error when the keypair file is readable by
// group or others.
func CheckPermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat keypair file: %w", err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return fmt.Errorf("keypair file %s has permissions %04o, expected 0600", path, perm)
	}
	return nil
}

// GenerateKeypair creates a new random keypair and writes it to path. It
// refuses to overwrite an existing file.
func GenerateKeypair(path string) (solana.PrivateKey, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("keypair file %s already exists", path)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to check keypair file: %w", err)
	}

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	if err := SaveKeypair(path, key); err != nil {
		return nil, err
	}
	return key, nil
}

// SaveKeypair writes key to path in the Solana CLI format.
func SaveKeypair(path string, key solana.PrivateKey) error {
	if len(key) != keypairLength {
		return fmt.Errorf("invalid key length: expected %d bytes, got %d", keypairLength, len(key))
	}

	// []byte would marshal as base64; the CLI format is a number array.
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return fmt.Errorf("failed to encode keypair: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), keyDirPermissions); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, data, keyFilePermissions); err != nil {
		return fmt.Errorf("failed to write keypair file: %w", err)
	}
	return nil
}
