package cli

import (
	"context"

	"github.com/dmitrijs2005/vaultify/internal/client/models"
)

// Find lists the entries of both documents whose title, username, link,
// cardholder, card number or notes contain term.
func (a *App) Find(ctx context.Context, term string) error {
	found := 0
	for _, kind := range documentKinds {
		e, err := a.mustEngine(kind)
		if err != nil {
			return err
		}
		for _, it := range models.Filter(kind, e.Items(), term) {
			printlnFn(summary(kind, it))
			found++
		}
	}
	if found == 0 {
		printlnFn("No entries match", term)
	}
	return nil
}
