package models

import (
	"strings"

	"github.com/google/uuid"
)

// Product is a read-only catalog snapshot used during behavior analysis
// and candidate ranking.
type Product struct {
	ID          uuid.UUID   `json:"id"`
	CategoryIDs []uuid.UUID `json:"category_ids"`
	Brand       string      `json:"brand,omitempty"`
	Price       *float64    `json:"price,omitempty"`
	Keywords    []string    `json:"keywords"`
	Tags        []string    `json:"tags"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
}

// ProductKeywords is the keyword projection of a product, used by the
// keyword recommender which only needs ids and keyword lists.
type ProductKeywords struct {
	ID       uuid.UUID `json:"id"`
	Keywords []string  `json:"keywords"`
}

// CanonicalProductID normalizes a raw product reference to the lowercase
// hyphenated UUID string, the form product maps and model item keys are
// keyed by. Parsing accepts the variants uuid.Parse accepts (uppercase,
// braced, urn prefixed); ok is false for anything that does not parse.
func CanonicalProductID(raw string) (string, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return id.String(), true
}
