package models

import "time"

// LoginTicket is the short-lived handle that links a password login to the
// one-time code that completes it.
type LoginTicket struct {
	Ticket    string
	UserID    string
	ExpiresAt time.Time
}

func (t *LoginTicket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
