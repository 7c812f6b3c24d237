package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vaultify/internal/client/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a recording stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	List(ctx context.Context, kind models.Kind) error
	Add(ctx context.Context, kind models.Kind) error
	Edit(ctx context.Context, kind models.Kind, id string) error
	Delete(ctx context.Context, kind models.Kind, id string) error
	Show(ctx context.Context, id string) error
	Save(ctx context.Context) error
	Find(ctx context.Context, term string) error
	Generate(ctx context.Context, args []string) error

	SetupSecondFactor(ctx context.Context) error
	EnableSecondFactor(ctx context.Context) error
	SecondFactorStatus(ctx context.Context) error
	DisableSecondFactor(ctx context.Context) error
	UpgradePremium(ctx context.Context) error
	PremiumStatus(ctx context.Context) error
	DisablePremium(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, generate [length], exit"
	helpLoggedIn  = "Available commands: list, cards, find <term>, add, addcard, edit <id>, editcard <id>, delete <id>, deletecard <id>, show <id>, save,\n" +
		"  generate [length] [--no-symbols],\n" +
		"  2fa-setup, 2fa-enable, 2fa-status, 2fa-disable, premium, premium-status, premium-disable, logout, exit"
)

// runREPL reads commands from scanner until EOF or "exit"/"quit" and
// dispatches them to a. statusFn is rendered into the prompt before every
// command. Handlers report their own errors; the loop only ignores them.
//
// Commands that need an argument print a usage line when it is missing.
// Commands that need a session are refused while logged out.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("vault %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "register":
			_ = a.Register(ctx)
			continue
		case "login":
			_ = a.Login(ctx)
			continue
		case "generate", "gen":
			_ = a.Generate(ctx, args)
			continue
		}

		if !knownCommand(cmd) {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}

		switch cmd {
		case "l", "list":
			_ = a.List(ctx, models.KindVault)
		case "cards":
			_ = a.List(ctx, models.KindCards)
		case "add":
			_ = a.Add(ctx, models.KindVault)
		case "addcard":
			_ = a.Add(ctx, models.KindCards)
		case "edit", "editcard", "delete", "deletecard", "show":
			if len(args) == 0 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			id := args[0]
			switch cmd {
			case "edit":
				_ = a.Edit(ctx, models.KindVault, id)
			case "editcard":
				_ = a.Edit(ctx, models.KindCards, id)
			case "delete":
				_ = a.Delete(ctx, models.KindVault, id)
			case "deletecard":
				_ = a.Delete(ctx, models.KindCards, id)
			case "show":
				_ = a.Show(ctx, id)
			}
		case "find":
			if len(args) == 0 {
				printlnFn("Usage: find <term>")
				continue
			}
			_ = a.Find(ctx, strings.Join(args, " "))
		case "save":
			_ = a.Save(ctx)
		case "2fa-setup":
			_ = a.SetupSecondFactor(ctx)
		case "2fa-enable":
			_ = a.EnableSecondFactor(ctx)
		case "2fa-status":
			_ = a.SecondFactorStatus(ctx)
		case "2fa-disable":
			_ = a.DisableSecondFactor(ctx)
		case "premium":
			_ = a.UpgradePremium(ctx)
		case "premium-status":
			_ = a.PremiumStatus(ctx)
		case "premium-disable":
			_ = a.DisablePremium(ctx)
		case "logout":
			_ = a.Logout(ctx)
		}
	}
}

var sessionCommands = map[string]struct{}{
	"l": {}, "list": {}, "cards": {}, "find": {}, "add": {}, "addcard": {},
	"edit": {}, "editcard": {}, "delete": {}, "deletecard": {}, "show": {}, "save": {},
	"2fa-setup": {}, "2fa-enable": {}, "2fa-status": {}, "2fa-disable": {},
	"premium": {}, "premium-status": {}, "premium-disable": {}, "logout": {},
}

func knownCommand(cmd string) bool {
	_, ok := sessionCommands[cmd]
	return ok
}
