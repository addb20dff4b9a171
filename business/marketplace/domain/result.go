// Package domain contains the normalized listing contract produced by
// marketplace clients.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	catalogDomain "watcharb/business/catalog/domain"
	listingDomain "watcharb/business/listing/domain"
)

// SearchResult is one marketplace hit normalized into the common schema.
// Every client returns these regardless of upstream payload shape.
type SearchResult struct {
	Platform     catalogDomain.Platform
	ExternalID   string
	Title        string
	Price        decimal.Decimal
	Currency     string
	PriceUSD     decimal.Decimal
	BoxPapers    catalogDomain.BoxPapersStatus
	Condition    string
	SellerName   string
	SellerRating float64
	ListingURL   string
	ImageURL     string
	Location     string
	SearchQuery  string
}

// Listing converts the result into a listing row for the given reference.
func (r *SearchResult) Listing(referenceID int64, scrapedAt time.Time) *listingDomain.Listing {
	return &listingDomain.Listing{
		WatchReferenceID: referenceID,
		Platform:         r.Platform,
		ExternalID:       r.ExternalID,
		Price:            r.Price,
		Currency:         r.Currency,
		PriceUSD:         r.PriceUSD,
		BoxPapers:        r.BoxPapers,
		Condition:        r.Condition,
		SellerName:       r.SellerName,
		SellerRating:     r.SellerRating,
		ListingURL:       r.ListingURL,
		ImageURL:         r.ImageURL,
		Location:         r.Location,
		IsActive:         true,
		ScrapedAt:        scrapedAt,
	}
}
