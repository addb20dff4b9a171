// Package domain contains the core domain types for the listing context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	catalogDomain "watcharb/business/catalog/domain"
)

// PriceSource tags where a market valuation came from.
type PriceSource string

const (
	// SourceWatchCharts marks valuations imported from WatchCharts.
	SourceWatchCharts PriceSource = "watchcharts"

	// SourceCalculated marks valuations derived from listing averages.
	SourceCalculated PriceSource = "calculated"
)

// MarketPrice is an observed or computed fair value for a watch reference at
// a given box/papers tier.
type MarketPrice struct {
	ID               int64
	WatchReferenceID int64
	BoxPapers        catalogDomain.BoxPapersStatus
	MarketPriceUSD   decimal.Decimal
	DealerPriceUSD   decimal.Decimal
	Source           PriceSource
	RecordedAt       time.Time
}
