// Package client talks to the vault backend.
//
// The Client interface is transport agnostic. GRPCClient speaks the
// vaultify.Vault gRPC service of the reference server; HTTPClient speaks the
// REST API of the original deployment. Both map backend failures to the
// sentinel errors in errors.go so callers can use errors.Is regardless of
// transport.
//
// Clients are stateless with respect to the session: authenticated calls take
// the bearer token explicitly.
package client
