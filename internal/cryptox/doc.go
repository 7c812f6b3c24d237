// Package cryptox implements the client-side cryptography of the vault:
// password based derivation of the authentication proof and the vault key,
// and per-field AES-256-GCM envelopes.
//
// Key derivation
//
// Both secrets come from PBKDF2-HMAC-SHA256 over the user's password. The
// PBKDF2 salt is the account salt followed by a context label ("auth" or
// "vault"), so the same password and salt produce unrelated outputs:
//
//	proof, _ := cryptox.DeriveAuthProof(pw, salt, cryptox.DefaultIterations)
//	key, _ := cryptox.DeriveVaultKey(pw, salt, cryptox.DefaultIterations, false)
//
// The proof is sent to the server; the key never leaves the process.
//
// Field envelopes
//
// Every sensitive field is encrypted on its own with a fresh 12-byte IV and
// stored as base64 {"iv": ..., "cipher": ...}. Field models a document value
// as either plaintext or such an envelope.
package cryptox
