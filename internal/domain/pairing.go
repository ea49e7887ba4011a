package domain

import (
	"strings"

	"github.com/google/uuid"
)

// WinePairing is a wine shared across recipes, identified by (Name, Type).
type WinePairing struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"wine_name"`
	Type     string    `json:"wine_type"`
	Flavor   string    `json:"flavor"`
	Profile  string    `json:"profile"`
	Proteins string    `json:"proteins"`
	Reason   string    `json:"reason"`
	Region   string    `json:"region"`
}

// PairingSuggestion is one wine proposed by the pairing generator.
type PairingSuggestion struct {
	Name     string `json:"wine_name"`
	Type     string `json:"wine_type"`
	Flavor   string `json:"flavor"`
	Profile  string `json:"profile"`
	Proteins string `json:"proteins"`
	Reason   string `json:"reason"`
	Region   string `json:"region"`
}

// Key is the natural key wines are deduplicated on.
func (p PairingSuggestion) Key() string {
	return strings.ToLower(strings.TrimSpace(p.Name)) + "|" + strings.ToLower(strings.TrimSpace(p.Type))
}

// DescribeDish renders the text sent to the pairing generator:
// "<dish>", "<dish> with a" or "<dish> with a, b, and c". Two ingredients
// render as "<dish> with a, and b".
func DescribeDish(dishName string, ingredients []string) string {
	names := make([]string, 0, len(ingredients))
	for _, in := range ingredients {
		if s := strings.TrimSpace(in); s != "" {
			names = append(names, s)
		}
	}

	switch len(names) {
	case 0:
		return dishName
	case 1:
		return dishName + " with " + names[0]
	default:
		return dishName + " with " + strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}
