package models

import (
	"fmt"
	"strings"
)

// PriceTier is the price filter sent to the places service. The zero value means any price.
type PriceTier string

const (
	PriceAny       PriceTier = ""
	PriceCheap     PriceTier = "$"
	PriceModerate  PriceTier = "$$"
	PriceExpensive PriceTier = "$$$"
)

// PriceTiers lists the selectable tiers in picker order.
var PriceTiers = []PriceTier{PriceAny, PriceCheap, PriceModerate, PriceExpensive}

// ParsePriceTier accepts "", "any", "$", "$$" and "$$$".
func ParsePriceTier(s string) (PriceTier, error) {
	switch p := strings.TrimSpace(s); strings.ToLower(p) {
	case "", "any":
		return PriceAny, nil
	case "$", "$$", "$$$":
		return PriceTier(p), nil
	default:
		return PriceAny, fmt.Errorf("invalid price tier %q: want one of $, $$, $$$ or any", s)
	}
}

// Label is the human readable form used by pickers.
func (p PriceTier) Label() string {
	if p == PriceAny {
		return "Any price"
	}
	return string(p)
}

// SearchFilters holds the user-entered search input.
type SearchFilters struct {
	Term  string    `json:"term"`
	Price PriceTier `json:"price"`
}

const (
	// DefaultRadius is the search radius in meters.
	DefaultRadius = 25000
	// MaxRadius is the largest radius the places service accepts.
	MaxRadius = 40000
)

// SearchQuery is the full parameter set of one places search.
type SearchQuery struct {
	Term      string
	Price     PriceTier
	Latitude  float64
	Longitude float64
	OpenNow   bool
	Radius    int // meters; 0 uses the client's configured radius
	Limit     int // 0 uses the client's configured limit
}

// NewSearchQuery builds the query for the given filters at the given position.
func NewSearchQuery(f SearchFilters, at Coordinates) SearchQuery {
	return SearchQuery{
		Term:      strings.TrimSpace(f.Term),
		Price:     f.Price,
		Latitude:  at.Latitude,
		Longitude: at.Longitude,
		OpenNow:   true,
	}
}
