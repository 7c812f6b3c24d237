// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account. AuthHash is bcrypt over the client's auth proof; the
// server never sees the master password or the vault key.
type User struct {
	ID        string
	Email     string
	Salt      string
	AuthHash  []byte
	CreatedAt time.Time

	Premium    bool
	PremiumKey string

	TwoFAEnabled bool
	TwoFASecret  string
}

// SecondFactorRequired reports whether a password login must be completed
// with a one-time code.
func (u *User) SecondFactorRequired() bool {
	return u.Premium && u.TwoFAEnabled
}
