// Package domain contains the core domain types for the listing context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	catalogDomain "watcharb/business/catalog/domain"
)

// Listing is one observed offer for a watch reference on one platform at one
// point in time. Listings are upserted by the scanner keyed by
// platform+external id, flagged inactive after a staleness window, and never
// physically deleted while opportunities reference them.
type Listing struct {
	ID               int64
	WatchReferenceID int64
	Platform         catalogDomain.Platform
	ExternalID       string
	Price            decimal.Decimal
	Currency         string
	PriceUSD         decimal.Decimal // authoritative for all comparisons
	BoxPapers        catalogDomain.BoxPapersStatus
	Condition        string
	SellerName       string
	SellerRating     float64 // percentage, 0 when unknown
	ListingURL       string
	ImageURL         string
	Location         string
	IsActive         bool
	ScrapedAt        time.Time
	CreatedAt        time.Time
}
