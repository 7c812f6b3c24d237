// Package models defines the client-side vault documents: the generic item
// and document shapes exchanged with the server, and typed views for login
// entries and payment cards.
package models

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/dmitrijs2005/vaultify/internal/cryptox"
)

// Kind selects a document and its sensitive field list.
type Kind string

const (
	KindVault Kind = "vault"
	KindCards Kind = "cards"
)

var sensitiveFields = map[Kind][]string{
	KindVault: {"notes", "link", "username", "password"},
	KindCards: {"title", "cardholderName", "cardNumber", "expiryDate", "cvv", "notes"},
}

func (k Kind) Valid() bool {
	_, ok := sensitiveFields[k]
	return ok
}

// SensitiveFields lists the fields that are encrypted before upload.
func (k Kind) SensitiveFields() []string {
	return sensitiveFields[k]
}

// ParseKind validates a kind coming from user input or the wire.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown document kind %q", s)
	}
	return k, nil
}

const (
	fieldID        = "id"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

// Item is one entry of a document: a stable id, timestamps and named fields.
type Item struct {
	ID        string
	Fields    map[string]cryptox.Field
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Get returns the plaintext value of name, or "" when it is absent or
// still encrypted.
func (it Item) Get(name string) string {
	f, ok := it.Fields[name]
	if !ok {
		return ""
	}
	s, _ := f.Plaintext()
	return s
}

func (it *Item) Set(name, value string) {
	if it.Fields == nil {
		it.Fields = make(map[string]cryptox.Field)
	}
	it.Fields[name] = cryptox.Plain(value)
}

func (it Item) Clone() Item {
	out := it
	out.Fields = maps.Clone(it.Fields)
	return out
}

func (it Item) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(it.Fields)+3)
	for name, f := range it.Fields {
		m[name] = f
	}
	m[fieldID] = it.ID
	if !it.CreatedAt.IsZero() {
		m[fieldCreatedAt] = it.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !it.UpdatedAt.IsZero() {
		m[fieldUpdatedAt] = it.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(m)
}

func (it *Item) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	out := Item{Fields: make(map[string]cryptox.Field, len(raw))}
	for name, value := range raw {
		switch name {
		case fieldID:
			out.ID = decodeID(value)
		case fieldCreatedAt:
			out.CreatedAt = decodeTime(value)
		case fieldUpdatedAt:
			out.UpdatedAt = decodeTime(value)
		default:
			var f cryptox.Field
			if err := json.Unmarshal(value, &f); err != nil {
				return fmt.Errorf("field %q: %w", name, err)
			}
			out.Fields[name] = f
		}
	}

	*it = out
	return nil
}

func decodeID(b json.RawMessage) string {
	var s string
	if json.Unmarshal(b, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(b, &n) == nil {
		return n.String()
	}
	return ""
}

// decodeTime accepts RFC 3339 strings and epoch milliseconds. Anything else
// is treated as missing and filled in during normalization.
func decodeTime(b json.RawMessage) time.Time {
	var s string
	if json.Unmarshal(b, &s) == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms)
		}
		return time.Time{}
	}
	var ms int64
	if json.Unmarshal(b, &ms) == nil {
		return time.UnixMilli(ms)
	}
	return time.Time{}
}

// Document is an ordered collection of items, serialized as {"items": [...]}.
type Document struct {
	Items []Item `json:"items"`
}

func (d Document) MarshalJSON() ([]byte, error) {
	items := d.Items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(struct {
		Items []Item `json:"items"`
	}{Items: items})
}

// Clone deep-copies the document so callers cannot mutate the original.
func (d Document) Clone() Document {
	out := Document{Items: make([]Item, len(d.Items))}
	for i, it := range d.Items {
		out.Items[i] = it.Clone()
	}
	return out
}

// Find returns the index of the item with id, or -1.
func (d Document) Find(id string) int {
	for i, it := range d.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
