// Package passgen generates random passwords for new vault entries.
package passgen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
)

const (
	charsetLower   = "abcdefghijklmnopqrstuvwxyz"
	charsetUpper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	charsetDigits  = "0123456789"
	charsetSymbols = "!@#$%^&*()_+-=[]{}|;:,.<>?"
	ambiguous      = "Il1O0"

	DefaultLength = 16
	MaxLength     = 256
)

var (
	ErrNoCharset = errors.New("no character classes selected")
	ErrLength    = errors.New("invalid password length")
)

// randReader is a test seam for crypto/rand.Reader.
var randReader io.Reader = rand.Reader

// Options selects the length and the character classes of a password.
type Options struct {
	Length         int
	Lower          bool
	Upper          bool
	Digits         bool
	Symbols        bool
	AvoidAmbiguous bool
}

// DefaultOptions is 16 characters from every class, without look-alikes.
func DefaultOptions() Options {
	return Options{
		Length:         DefaultLength,
		Lower:          true,
		Upper:          true,
		Digits:         true,
		Symbols:        true,
		AvoidAmbiguous: true,
	}
}

func (o Options) classes() []string {
	var sets []string
	add := func(on bool, set string) {
		if !on {
			return
		}
		if o.AvoidAmbiguous {
			set = strings.Map(func(r rune) rune {
				if strings.ContainsRune(ambiguous, r) {
					return -1
				}
				return r
			}, set)
		}
		sets = append(sets, set)
	}
	add(o.Lower, charsetLower)
	add(o.Upper, charsetUpper)
	add(o.Digits, charsetDigits)
	add(o.Symbols, charsetSymbols)
	return sets
}

// Generate returns a password holding at least one character of every
// selected class, in random order.
func Generate(o Options) (string, error) {
	sets := o.classes()
	if len(sets) == 0 {
		return "", ErrNoCharset
	}
	if o.Length < len(sets) || o.Length > MaxLength {
		return "", fmt.Errorf("%w: %d (want %d..%d)", ErrLength, o.Length, len(sets), MaxLength)
	}

	all := strings.Join(sets, "")
	out := make([]byte, 0, o.Length)
	for _, set := range sets {
		c, err := pick(set)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < o.Length {
		c, err := pick(all)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	// Fisher-Yates so the guaranteed characters do not sit at the front.
	for i := len(out) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

func pick(set string) (byte, error) {
	i, err := randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randInt(n int) (int, error) {
	v, err := rand.Int(randReader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	return int(v.Int64()), nil
}
