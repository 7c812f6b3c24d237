package cryptox

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// IVLength is the GCM nonce size used for every field.
const IVLength = 12

// EncryptedField is the wire form of one encrypted value.
type EncryptedField struct {
	IV     string `json:"iv"`
	Cipher string `json:"cipher"`
}

// Field is a document value: either plaintext or an EncryptedField.
// The zero value is the empty plaintext.
type Field struct {
	plain string
	enc   *EncryptedField
}

// Plain wraps a plaintext value.
func Plain(s string) Field { return Field{plain: s} }

// Encrypted wraps an {iv, cipher} envelope.
func Encrypted(e EncryptedField) Field { return Field{enc: &e} }

// IsEncrypted reports whether f holds an envelope rather than plaintext.
func (f Field) IsEncrypted() bool { return f.enc != nil }

// Plaintext returns the value and true for plaintext fields.
func (f Field) Plaintext() (string, bool) {
	if f.enc != nil {
		return "", false
	}
	return f.plain, true
}

// Ciphertext returns the envelope and true for encrypted fields.
func (f Field) Ciphertext() (EncryptedField, bool) {
	if f.enc == nil {
		return EncryptedField{}, false
	}
	return *f.enc, true
}

// String never reveals ciphertext material.
func (f Field) String() string {
	if f.enc != nil {
		return "[encrypted]"
	}
	return f.plain
}

func (f Field) MarshalJSON() ([]byte, error) {
	if f.enc != nil {
		return json.Marshal(f.enc)
	}
	return json.Marshal(f.plain)
}

// UnmarshalJSON accepts a string, a complete {iv, cipher} object, or a JSON
// scalar (kept as its JSON text, null as ""). Any other object is rejected
// with ErrMixedField.
func (f *Field) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("%w: empty field", ErrInvalidInput)
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Plain(s)
		return nil
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		var e EncryptedField
		ivRaw, hasIV := raw["iv"]
		cipherRaw, hasCipher := raw["cipher"]
		if !hasIV || !hasCipher {
			return ErrMixedField
		}
		if json.Unmarshal(ivRaw, &e.IV) != nil || json.Unmarshal(cipherRaw, &e.Cipher) != nil {
			return ErrMixedField
		}
		*f = Encrypted(e)
		return nil
	case '[':
		return fmt.Errorf("%w: arrays are not field values", ErrInvalidInput)
	case 'n':
		*f = Plain("")
		return nil
	default:
		*f = Plain(string(b))
		return nil
	}
}

// IsEncryptedShape reports whether v looks like an {iv, cipher} envelope.
// It understands Field, EncryptedField, decoded JSON objects and raw JSON.
func IsEncryptedShape(v any) bool {
	switch value := v.(type) {
	case Field:
		return value.IsEncrypted()
	case *Field:
		return value != nil && value.IsEncrypted()
	case EncryptedField:
		return true
	case *EncryptedField:
		return value != nil
	case map[string]any:
		_, iv := value["iv"].(string)
		_, c := value["cipher"].(string)
		return iv && c
	case json.RawMessage:
		return isEncryptedJSON(value)
	case []byte:
		return isEncryptedJSON(value)
	default:
		return false
	}
}

func isEncryptedJSON(b []byte) bool {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return false
	}
	return IsEncryptedShape(m)
}

// EncryptField seals plaintext under key with a fresh random IV.
func EncryptField(plaintext string, key *VaultKey) (EncryptedField, error) {
	if key == nil {
		return EncryptedField{}, fmt.Errorf("%w: nil key", ErrInvalidInput)
	}

	iv := make([]byte, IVLength)
	if _, err := rand.Read(iv); err != nil {
		return EncryptedField{}, err
	}

	var sealed []byte
	err := key.withAEAD(func(aead cipher.AEAD) error {
		sealed = aead.Seal(nil, iv, []byte(plaintext), nil)
		return nil
	})
	if err != nil {
		return EncryptedField{}, err
	}

	return EncryptedField{
		IV:     base64.StdEncoding.EncodeToString(iv),
		Cipher: base64.StdEncoding.EncodeToString(sealed),
	}, nil
}

// EncryptValue encrypts strings as is and anything else as its JSON encoding.
func EncryptValue(v any, key *VaultKey) (EncryptedField, error) {
	if s, ok := v.(string); ok {
		return EncryptField(s, key)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return EncryptedField{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return EncryptField(string(b), key)
}

// DecryptField opens an envelope produced by EncryptField. Authentication
// failures are reported as ErrTamperedOrWrongKey.
func DecryptField(f EncryptedField, key *VaultKey) (string, error) {
	if key == nil {
		return "", fmt.Errorf("%w: nil key", ErrInvalidInput)
	}

	iv, err := base64.StdEncoding.DecodeString(f.IV)
	if err != nil {
		return "", fmt.Errorf("%w: iv is not base64", ErrInvalidInput)
	}
	if len(iv) != IVLength {
		return "", fmt.Errorf("%w: iv must be %d bytes", ErrInvalidInput, IVLength)
	}
	sealed, err := base64.StdEncoding.DecodeString(f.Cipher)
	if err != nil {
		return "", fmt.Errorf("%w: cipher is not base64", ErrInvalidInput)
	}

	var plain []byte
	err = key.withAEAD(func(aead cipher.AEAD) error {
		var openErr error
		plain, openErr = aead.Open(nil, iv, sealed, nil)
		if openErr != nil {
			return ErrTamperedOrWrongKey
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// EncryptField and DecryptField as methods let *VaultKey serve as a field
// cipher for the document codec.
func (k *VaultKey) EncryptField(plaintext string) (EncryptedField, error) {
	return EncryptField(plaintext, k)
}

func (k *VaultKey) DecryptField(f EncryptedField) (string, error) {
	return DecryptField(f, k)
}
