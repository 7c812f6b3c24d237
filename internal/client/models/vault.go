package models

import (
	"strings"
	"time"
)

// VaultItem is the typed view of a login entry.
type VaultItem struct {
	ID        string
	Title     string
	Username  string
	Password  string
	Link      string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func VaultItemFromItem(it Item) VaultItem {
	return VaultItem{
		ID:        it.ID,
		Title:     it.Get("title"),
		Username:  it.Get("username"),
		Password:  it.Get("password"),
		Link:      it.Get("link"),
		Notes:     it.Get("notes"),
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}

func (v VaultItem) Item() Item {
	it := Item{ID: v.ID, CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt}
	it.Set("title", v.Title)
	it.Set("username", v.Username)
	it.Set("password", v.Password)
	it.Set("link", v.Link)
	it.Set("notes", v.Notes)
	return it
}

// ValidateVaultItem requires a title.
func ValidateVaultItem(v VaultItem) error {
	if strings.TrimSpace(v.Title) == "" {
		return &ValidationError{Problems: []string{"title is required"}}
	}
	return nil
}
