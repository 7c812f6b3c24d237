// Package codec applies field envelopes to whole documents. Only the
// sensitive fields of each document kind are touched; ids, timestamps and
// the remaining fields pass through unchanged.
package codec

import (
	"fmt"

	"github.com/dmitrijs2005/vaultify/internal/client/models"
	"github.com/dmitrijs2005/vaultify/internal/cryptox"
)

// FieldCipher encrypts and decrypts single values. *cryptox.VaultKey
// implements it.
type FieldCipher interface {
	EncryptField(plaintext string) (cryptox.EncryptedField, error)
	DecryptField(f cryptox.EncryptedField) (string, error)
}

// NeedsDecryption reports whether any field of any item is encrypted.
func NeedsDecryption(doc models.Document) bool {
	for _, it := range doc.Items {
		for _, f := range it.Fields {
			if cryptox.IsEncryptedShape(f) {
				return true
			}
		}
	}
	return false
}

// EncryptDocument returns a copy of doc with every sensitive field encrypted.
// Fields that are already encrypted are kept as they are. Missing vault
// fields are encrypted as empty strings, missing card fields stay absent.
func EncryptDocument(kind models.Kind, doc models.Document, c FieldCipher) (models.Document, error) {
	out := doc.Clone()
	for i := range out.Items {
		it := &out.Items[i]
		if it.Fields == nil {
			it.Fields = make(map[string]cryptox.Field)
		}
		for _, name := range kind.SensitiveFields() {
			f, ok := it.Fields[name]
			if !ok && kind == models.KindCards {
				continue
			}
			if f.IsEncrypted() {
				continue
			}
			plain, _ := f.Plaintext()
			enc, err := c.EncryptField(plain)
			if err != nil {
				return models.Document{}, fmt.Errorf("encrypt %s of item %s: %w", name, it.ID, err)
			}
			it.Fields[name] = cryptox.Encrypted(enc)
		}
	}
	return out, nil
}

// DecryptDocument returns a copy of doc with every encrypted sensitive field
// opened. The first failure aborts the whole document.
func DecryptDocument(kind models.Kind, doc models.Document, c FieldCipher) (models.Document, error) {
	out := doc.Clone()
	for i := range out.Items {
		it := &out.Items[i]
		if it.Fields == nil {
			it.Fields = make(map[string]cryptox.Field)
		}
		for _, name := range kind.SensitiveFields() {
			f, ok := it.Fields[name]
			if !ok {
				if kind == models.KindVault {
					it.Fields[name] = cryptox.Plain("")
				}
				continue
			}
			enc, encrypted := f.Ciphertext()
			if !encrypted {
				continue
			}
			plain, err := c.DecryptField(enc)
			if err != nil {
				return models.Document{}, fmt.Errorf("decrypt %s of item %s: %w", name, it.ID, err)
			}
			it.Fields[name] = cryptox.Plain(plain)
		}
	}
	return out, nil
}
