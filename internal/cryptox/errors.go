package cryptox

import "errors"

var (
	// ErrInvalidInput reports bad parameters: a missing or short salt, an empty
	// password, malformed base64 or a wrong IV length.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTamperedOrWrongKey reports a failed GCM authentication check.
	ErrTamperedOrWrongKey = errors.New("ciphertext tampered or wrong key")

	// ErrKeyNotExtractable is returned by Export on a key derived without
	// the extractable flag.
	ErrKeyNotExtractable = errors.New("key is not extractable")

	// ErrKeyDestroyed is returned by any use of a key after Destroy.
	ErrKeyDestroyed = errors.New("key destroyed")

	// ErrMixedField reports an object that is neither plaintext nor a complete
	// {iv, cipher} envelope.
	ErrMixedField = errors.New("field is partially encrypted")
)
