// Package cli provides the interactive vault command-line client.
//
// It wires configuration, the transport client, the login flow and one sync
// engine per document kind behind a small REPL. Typical flow: log in with the
// master password (and a one-time code when the account asks for one), edit
// passwords and cards locally, and let the engines upload the encrypted
// documents in the background.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
