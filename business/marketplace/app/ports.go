// Package app defines the marketplace client port consumed by the scanner.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	catalogDomain "watcharb/business/catalog/domain"
	"watcharb/business/marketplace/domain"
)

// SearchOptions bound one marketplace query.
type SearchOptions struct {
	MinPriceUSD decimal.Decimal
	MaxPriceUSD decimal.Decimal // zero means unbounded
	Limit       int
}

// Client is one marketplace integration. Implementations normalize upstream
// payloads into SearchResult records; callers never see raw payloads.
type Client interface {
	// Platform identifies which marketplace this client queries.
	Platform() catalogDomain.Platform

	// Search returns normalized listings matching the query.
	Search(ctx context.Context, query string, opts SearchOptions) ([]domain.SearchResult, error)
}
