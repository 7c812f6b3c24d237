package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
)

// VaultKey is an AES-256-GCM key kept sealed in a memguard enclave. The raw
// bytes are only unsealed for the duration of a single cipher operation.
//
// A VaultKey is safe for concurrent use.
type VaultKey struct {
	mu          sync.RWMutex
	enclave     *memguard.Enclave
	extractable bool
}

// ImportVaultKey wraps raw key bytes in a non-extractable VaultKey.
// raw is wiped.
func ImportVaultKey(raw []byte) (*VaultKey, error) {
	return newVaultKey(raw, false)
}

func newVaultKey(raw []byte, extractable bool) (*VaultKey, error) {
	if len(raw) != KeyLength {
		memguard.WipeBytes(raw)
		return nil, fmt.Errorf("%w: key must be %d bytes", ErrInvalidInput, KeyLength)
	}
	// NewEnclave wipes raw after sealing it.
	return &VaultKey{enclave: memguard.NewEnclave(raw), extractable: extractable}, nil
}

// Extractable reports whether Export is still allowed.
func (k *VaultKey) Extractable() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.extractable && k.enclave != nil
}

// Export returns a copy of the raw key bytes. It succeeds once, and only for
// keys derived in extractable mode; the key is non-extractable afterwards.
// The caller owns the returned slice and must wipe it.
func (k *VaultKey) Export() ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.enclave == nil {
		return nil, ErrKeyDestroyed
	}
	if !k.extractable {
		return nil, ErrKeyNotExtractable
	}

	buf, err := k.enclave.Open()
	if err != nil {
		return nil, fmt.Errorf("open enclave: %w", err)
	}
	defer buf.Destroy()

	out := make([]byte, buf.Size())
	copy(out, buf.Bytes())
	k.extractable = false
	return out, nil
}

// Destroy drops the sealed key. Later operations fail with ErrKeyDestroyed.
func (k *VaultKey) Destroy() {
	if k == nil {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.enclave = nil
	k.extractable = false
}

func (k *VaultKey) Destroyed() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.enclave == nil
}

func (k *VaultKey) withAEAD(fn func(aead cipher.AEAD) error) error {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.enclave == nil {
		return ErrKeyDestroyed
	}

	buf, err := k.enclave.Open()
	if err != nil {
		return fmt.Errorf("open enclave: %w", err)
	}
	defer buf.Destroy()

	block, err := aes.NewCipher(buf.Bytes())
	if err != nil {
		return err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}
	return fn(aead)
}
