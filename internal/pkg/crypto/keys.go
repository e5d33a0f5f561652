// Package crypto provides key derivation utilities for the Sunset
// marketplace.
package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the derived key size in bytes (256 bits).
const KeySize = 32

// ErrEmptySecret indicates no master secret was configured.
var ErrEmptySecret = errors.New("master secret must not be empty")

// DeriveKey derives a purpose-bound key from the configured master
// secret using HKDF-SHA256. Distinct purposes yield independent keys,
// so the URL-signing key can never be confused with any future use of
// the same secret.
func DeriveKey(secret, purpose string) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}
