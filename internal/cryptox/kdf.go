package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the PBKDF2 round count used for both derivations.
	DefaultIterations = 250000

	// KeyLength is the size of the vault key and of the auth proof.
	KeyLength = 32

	// SaltLength is the size of salts produced by GenerateSalt and the
	// minimum accepted by the derivation functions.
	SaltLength = 16
)

// ContextLabel separates the derivation domains.
type ContextLabel string

const (
	LabelAuth  ContextLabel = "auth"
	LabelVault ContextLabel = "vault"
)

// GenerateSalt returns SaltLength random bytes, base64 encoded. It is called
// once per account at registration.
func GenerateSalt() (string, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// DecodeSalt decodes a base64 account salt and checks its length.
func DecodeSalt(saltB64 string) ([]byte, error) {
	if saltB64 == "" {
		return nil, fmt.Errorf("%w: missing salt", ErrInvalidInput)
	}
	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return nil, fmt.Errorf("%w: salt is not base64: %v", ErrInvalidInput, err)
	}
	if len(salt) < SaltLength {
		return nil, fmt.Errorf("%w: salt must be at least %d bytes", ErrInvalidInput, SaltLength)
	}
	return salt, nil
}

// DeriveBits runs PBKDF2-HMAC-SHA256 over password with salt || label and
// returns length bytes.
//
// Parameters:
//   - password: the master password; it is not modified.
//   - saltB64: base64 account salt, at least SaltLength bytes once decoded.
//   - label: derivation domain, LabelAuth or LabelVault.
//   - iterations: PBKDF2 round count, usually DefaultIterations.
//   - length: output size in bytes.
//
// Any invalid parameter yields ErrInvalidInput.
func DeriveBits(password []byte, saltB64 string, label ContextLabel, iterations, length int) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: empty password", ErrInvalidInput)
	}
	if label == "" {
		return nil, fmt.Errorf("%w: missing context label", ErrInvalidInput)
	}
	if iterations <= 0 || length <= 0 {
		return nil, fmt.Errorf("%w: iterations and length must be positive", ErrInvalidInput)
	}

	salt, err := DecodeSalt(saltB64)
	if err != nil {
		return nil, err
	}

	labeled := make([]byte, 0, len(salt)+len(label))
	labeled = append(labeled, salt...)
	labeled = append(labeled, label...)

	return pbkdf2.Key(password, labeled, iterations, length, sha256.New), nil
}

// DeriveAuthProof derives the bytes presented to the server at login.
func DeriveAuthProof(password []byte, saltB64 string, iterations int) ([]byte, error) {
	return DeriveBits(password, saltB64, LabelAuth, iterations, KeyLength)
}

// DeriveVaultKey derives the AES-256-GCM vault key. Extractable keys can be
// exported once with Export; use them only to carry the key over a second
// factor challenge.
func DeriveVaultKey(password []byte, saltB64 string, iterations int, extractable bool) (*VaultKey, error) {
	raw, err := DeriveBits(password, saltB64, LabelVault, iterations, KeyLength)
	if err != nil {
		return nil, err
	}
	return newVaultKey(raw, extractable)
}
