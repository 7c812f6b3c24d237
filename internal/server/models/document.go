package models

import "time"

// Document is one encrypted blob per user and kind ("vault" or "cards"). The
// server stores it opaquely.
type Document struct {
	UserID    string
	Kind      string
	Blob      []byte
	UpdatedAt time.Time
}
