package models

import "strings"

var searchFields = map[Kind][]string{
	KindVault: {"title", "username", "link", "notes"},
	KindCards: {"title", "cardholderName", "cardNumber", "notes"},
}

// Matches reports whether term occurs, ignoring case, in one of the
// searchable fields of it. Card numbers also match with spaces removed
// from term. An empty term matches everything.
func Matches(kind Kind, it Item, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, name := range searchFields[kind] {
		v := strings.ToLower(it.Get(name))
		if strings.Contains(v, term) {
			return true
		}
		if name == "cardNumber" && strings.Contains(v, stripSpaces(term)) {
			return true
		}
	}
	return false
}

// Filter returns the items of kind that match term, in their original order.
func Filter(kind Kind, items []Item, term string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if Matches(kind, it, term) {
			out = append(out, it)
		}
	}
	return out
}
