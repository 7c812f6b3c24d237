package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrValidation = errors.New("validation error")

// ValidationError lists every problem found in one item.
type ValidationError struct {
	Problems  []string
	Duplicate bool
}

func (e *ValidationError) Error() string {
	return "validation error: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewID returns a fresh item id.
func NewID() string { return uuid.NewString() }

// Normalize fills in id and timestamps and tidies plaintext values the way
// the kind expects. Encrypted values are left untouched.
func Normalize(kind Kind, it Item, now time.Time) Item {
	out := it.Clone()
	if out.ID == "" {
		out.ID = NewID()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = now
	}

	switch kind {
	case KindVault:
		trimPlain(&out, "title", "username", "link", "notes")
	case KindCards:
		trimPlain(&out, "title", "cardholderName", "notes")
		if f, ok := out.Fields["cardNumber"]; ok {
			if s, plain := f.Plaintext(); plain {
				out.Set("cardNumber", stripSpaces(s))
			}
		}
	}
	return out
}

func trimPlain(it *Item, names ...string) {
	for _, name := range names {
		f, ok := it.Fields[name]
		if !ok {
			continue
		}
		if s, plain := f.Plaintext(); plain {
			it.Set(name, strings.TrimSpace(s))
		}
	}
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
