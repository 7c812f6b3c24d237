package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vaultify/internal/client/client"
	"github.com/dmitrijs2005/vaultify/internal/client/models"
	"github.com/dmitrijs2005/vaultify/internal/client/passgen"
	"github.com/dmitrijs2005/vaultify/internal/client/services"
	"github.com/dmitrijs2005/vaultify/internal/common"
)

var documentKinds = []models.Kind{models.KindVault, models.KindCards}

var errNoSession = errors.New("not logged in")

func (a *App) mustEngine(kind models.Kind) (documentEngine, error) {
	e, ok := a.engine(kind)
	if !ok {
		printlnFn("Please log in first")
		return nil, errNoSession
	}
	return e, nil
}

// List prints one line per item of the given kind.
func (a *App) List(ctx context.Context, kind models.Kind) error {
	e, err := a.mustEngine(kind)
	if err != nil {
		return err
	}

	items := e.Items()
	if len(items) == 0 {
		printlnFn("No entries")
		return nil
	}
	for _, it := range items {
		printlnFn(summary(kind, it))
	}
	return nil
}

func summary(kind models.Kind, it models.Item) string {
	if kind == models.KindCards {
		c := models.CardFromItem(it)
		return fmt.Sprintf("%s  %-20s %-10s %s  %s", c.ID, c.Title, models.CardBrand(c.CardNumber),
			models.MaskCardNumber(c.CardNumber), c.ExpiryDate)
	}
	v := models.VaultItemFromItem(it)
	return fmt.Sprintf("%s  %-20s %-24s %s", v.ID, v.Title, v.Username, v.Link)
}

// Add prompts for a new item and hands it to the engine, which uploads it
// after the debounce delay.
func (a *App) Add(ctx context.Context, kind models.Kind) error {
	e, err := a.mustEngine(kind)
	if err != nil {
		return err
	}

	var it models.Item
	if kind == models.KindCards {
		c, err := a.inputCard(models.Card{})
		if err != nil {
			return err
		}
		if err := models.ValidateCard(c, cardsOf(e.Items())); err != nil {
			return invalid(err)
		}
		it = c.Item()
	} else {
		v, err := a.inputVaultItem(models.VaultItem{})
		if err != nil {
			return err
		}
		if err := models.ValidateVaultItem(v); err != nil {
			return invalid(err)
		}
		it = v.Item()
	}

	added, err := e.Add(it)
	if err != nil {
		return a.report(ctx, "add failed", err)
	}
	printlnFn("Added", added.ID)
	return nil
}

// Edit prompts for every field of an existing item, keeping the current
// value on an empty answer.
func (a *App) Edit(ctx context.Context, kind models.Kind, id string) error {
	e, err := a.mustEngine(kind)
	if err != nil {
		return err
	}
	current, ok := e.Get(id)
	if !ok {
		printlnFn("No entry with id", id)
		return services.ErrItemNotFound
	}

	var it models.Item
	if kind == models.KindCards {
		c, err := a.inputCard(models.CardFromItem(current))
		if err != nil {
			return err
		}
		if err := models.ValidateCard(c, cardsOf(e.Items())); err != nil {
			return invalid(err)
		}
		it = c.Item()
	} else {
		v, err := a.inputVaultItem(models.VaultItemFromItem(current))
		if err != nil {
			return err
		}
		if err := models.ValidateVaultItem(v); err != nil {
			return invalid(err)
		}
		it = v.Item()
	}

	if _, err := e.Update(it); err != nil {
		return a.report(ctx, "update failed", err)
	}
	printlnFn("Updated", id)
	return nil
}

func (a *App) Delete(ctx context.Context, kind models.Kind, id string) error {
	e, err := a.mustEngine(kind)
	if err != nil {
		return err
	}
	if err := e.Remove(id); err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			printlnFn("No entry with id", id)
			return err
		}
		return a.report(ctx, "delete failed", err)
	}
	printlnFn("Deleted", id)
	return nil
}

// Show prints every field of the item with the given id, looking in both
// documents.
func (a *App) Show(ctx context.Context, id string) error {
	for _, kind := range documentKinds {
		e, err := a.mustEngine(kind)
		if err != nil {
			return err
		}
		it, ok := e.Get(id)
		if !ok {
			continue
		}
		if kind == models.KindCards {
			c := models.CardFromItem(it)
			printlnFn("Title:      ", c.Title)
			printlnFn("Cardholder: ", c.CardholderName)
			printlnFn("Number:     ", models.FormatCardNumber(c.CardNumber), "("+models.CardBrand(c.CardNumber)+")")
			printlnFn("Expires:    ", c.ExpiryDate)
			printlnFn("CVV:        ", c.CVV)
			printlnFn("Notes:      ", c.Notes)
		} else {
			v := models.VaultItemFromItem(it)
			printlnFn("Title:    ", v.Title)
			printlnFn("Username: ", v.Username)
			printlnFn("Password: ", v.Password)
			printlnFn("Link:     ", v.Link)
			printlnFn("Notes:    ", v.Notes)
		}
		if !it.UpdatedAt.IsZero() {
			printlnFn("Updated:  ", it.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	}
	printlnFn("No entry with id", id)
	return services.ErrItemNotFound
}

// Save uploads both documents right away.
func (a *App) Save(ctx context.Context) error {
	for _, kind := range documentKinds {
		e, err := a.mustEngine(kind)
		if err != nil {
			return err
		}
		if err := e.Save(ctx); err != nil {
			if errors.Is(err, client.ErrSessionExpired) {
				a.onSessionExpired()
				a.reapExpired()
				return err
			}
			return a.report(ctx, "save failed", err)
		}
	}
	printlnFn("Saved")
	return nil
}

func (a *App) inputVaultItem(v models.VaultItem) (models.VaultItem, error) {
	var err error
	if v.Title, err = GetTextWithDefault(a.reader, "Title", v.Title, a.out); err != nil {
		return v, err
	}
	if v.Username, err = GetTextWithDefault(a.reader, "Username", v.Username, a.out); err != nil {
		return v, err
	}

	prompt := "Password (empty to generate)"
	if v.Password != "" {
		prompt = "Password (empty to keep)"
	}
	pw, err := getPassword(prompt, a.out)
	if err != nil {
		return v, err
	}
	switch {
	case len(pw) > 0:
		v.Password = string(pw)
	case v.Password == "":
		if v.Password, err = generatePassword(passgen.DefaultOptions()); err != nil {
			return v, err
		}
		printlnFn("Generated password:", v.Password)
	}
	common.WipeByteArray(pw)

	if v.Link, err = GetTextWithDefault(a.reader, "Link", v.Link, a.out); err != nil {
		return v, err
	}
	if v.Notes, err = GetTextWithDefault(a.reader, "Notes", v.Notes, a.out); err != nil {
		return v, err
	}
	return v, nil
}

func (a *App) inputCard(c models.Card) (models.Card, error) {
	var err error
	if c.Title, err = GetTextWithDefault(a.reader, "Card title", c.Title, a.out); err != nil {
		return c, err
	}
	if c.CardholderName, err = GetTextWithDefault(a.reader, "Cardholder name", c.CardholderName, a.out); err != nil {
		return c, err
	}
	if c.CardNumber, err = GetTextWithDefault(a.reader, "Card number", c.CardNumber, a.out); err != nil {
		return c, err
	}
	if c.ExpiryDate, err = GetTextWithDefault(a.reader, "Expiry (MM/YY)", c.ExpiryDate, a.out); err != nil {
		return c, err
	}

	prompt := "CVV"
	if c.CVV != "" {
		prompt += " (empty to keep)"
	}
	cvv, err := getPassword(prompt, a.out)
	if err != nil {
		return c, err
	}
	if len(cvv) > 0 {
		c.CVV = strings.TrimSpace(string(cvv))
	}
	common.WipeByteArray(cvv)

	if c.Notes, err = GetTextWithDefault(a.reader, "Notes", c.Notes, a.out); err != nil {
		return c, err
	}
	return c, nil
}

func cardsOf(items []models.Item) []models.Card {
	out := make([]models.Card, 0, len(items))
	for _, it := range items {
		out = append(out, models.CardFromItem(it))
	}
	return out
}

func invalid(err error) error {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		for _, p := range ve.Problems {
			printlnFn(" -", p)
		}
		return err
	}
	printlnFn("Error:", err)
	return err
}
