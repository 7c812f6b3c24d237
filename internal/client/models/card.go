package models

import (
	"regexp"
	"strings"
	"time"
)

// Card is the typed view of a payment card entry.
type Card struct {
	ID             string
	Title          string
	CardholderName string
	CardNumber     string
	ExpiryDate     string
	CVV            string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func CardFromItem(it Item) Card {
	return Card{
		ID:             it.ID,
		Title:          it.Get("title"),
		CardholderName: it.Get("cardholderName"),
		CardNumber:     it.Get("cardNumber"),
		ExpiryDate:     it.Get("expiryDate"),
		CVV:            it.Get("cvv"),
		Notes:          it.Get("notes"),
		CreatedAt:      it.CreatedAt,
		UpdatedAt:      it.UpdatedAt,
	}
}

func (c Card) Item() Item {
	it := Item{ID: c.ID, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
	it.Set("title", c.Title)
	it.Set("cardholderName", c.CardholderName)
	it.Set("cardNumber", c.CardNumber)
	it.Set("expiryDate", c.ExpiryDate)
	it.Set("cvv", c.CVV)
	it.Set("notes", c.Notes)
	return it
}

var expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)

// ValidateCard checks required fields and rejects a card number that another
// card in existing already uses.
func ValidateCard(c Card, existing []Card) error {
	var problems []string

	if strings.TrimSpace(c.Title) == "" {
		problems = append(problems, "card title is required")
	}
	if strings.TrimSpace(c.CardholderName) == "" {
		problems = append(problems, "cardholder name is required")
	}
	number := stripSpaces(c.CardNumber)
	if len(number) < 16 || !isDigits(number) {
		problems = append(problems, "card number must be at least 16 digits")
	}
	if !expiryPattern.MatchString(c.ExpiryDate) {
		problems = append(problems, "valid expiry date (MM/YY) is required")
	}
	if len(c.CVV) < 3 || !isDigits(c.CVV) {
		problems = append(problems, "CVV must be at least 3 digits")
	}

	duplicate := IsDuplicateCard(c, existing)
	if duplicate {
		problems = append(problems, "card number already exists")
	}

	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems, Duplicate: duplicate}
}

// IsDuplicateCard reports whether another card (by id) has the same number.
func IsDuplicateCard(c Card, existing []Card) bool {
	number := stripSpaces(c.CardNumber)
	if number == "" {
		return false
	}
	for _, other := range existing {
		if c.ID != "" && other.ID == c.ID {
			continue
		}
		if stripSpaces(other.CardNumber) == number {
			return true
		}
	}
	return false
}

// FormatCardNumber groups the digits of n by four.
func FormatCardNumber(n string) string {
	var digits strings.Builder
	for _, r := range n {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	var out strings.Builder
	for i, r := range d {
		if i > 0 && i%4 == 0 {
			out.WriteByte(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

var brands = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"VISA", regexp.MustCompile(`^4`)},
	{"MASTERCARD", regexp.MustCompile(`^5[1-5]`)},
	{"AMEX", regexp.MustCompile(`^3[47]`)},
	{"DISCOVER", regexp.MustCompile(`^6(?:011|5)`)},
	{"JCB", regexp.MustCompile(`^(?:2131|1800|35)`)},
	{"DINERS", regexp.MustCompile(`^3(?:0[0-5]|[68])`)},
}

// CardBrand guesses the card network from the number prefix.
func CardBrand(n string) string {
	n = stripSpaces(n)
	for _, b := range brands {
		if b.pattern.MatchString(n) {
			return b.name
		}
	}
	return "CARD"
}

// MaskCardNumber keeps only the last four digits visible.
func MaskCardNumber(n string) string {
	n = stripSpaces(n)
	if len(n) <= 4 {
		return n
	}
	return strings.Repeat("•", len(n)-4) + n[len(n)-4:]
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
