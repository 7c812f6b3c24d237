package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/vaultify/internal/client/passgen"
)

// generatePassword is a test seam for passgen.Generate.
var generatePassword = passgen.Generate

// Generate prints a random password. Arguments are an optional length and
// --no-symbols; it works without a session.
func (a *App) Generate(ctx context.Context, args []string) error {
	opts := passgen.DefaultOptions()
	for _, arg := range args {
		switch arg {
		case "--no-symbols":
			opts.Symbols = false
		default:
			n, err := strconv.Atoi(arg)
			if err != nil {
				printlnFn("Usage: generate [length] [--no-symbols]")
				return fmt.Errorf("%w: %q", passgen.ErrLength, arg)
			}
			opts.Length = n
		}
	}

	pw, err := generatePassword(opts)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}
	printlnFn(pw)
	return nil
}
