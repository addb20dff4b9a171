// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	catalogDomain "watcharb/business/catalog/domain"
)

// OpportunityType distinguishes how an opportunity was detected.
type OpportunityType string

const (
	// TypeCrossPlatform means the cheapest listing on one platform undercuts
	// another platform's average for the same box/papers tier.
	TypeCrossPlatform OpportunityType = "cross_platform"

	// TypeUndervalued means a single listing is priced below fair market
	// value regardless of cross-platform spread.
	TypeUndervalued OpportunityType = "undervalued"
)

// Opportunity is a scored arbitrage signal tying one listing (the buy side)
// to a watch reference. Every persisted opportunity has already cleared the
// profit and ROI thresholds.
type Opportunity struct {
	ID               string
	ListingID        int64
	WatchReferenceID int64
	Type             OpportunityType

	BuyPrice    decimal.Decimal
	BuyPlatform catalogDomain.Platform
	BoxPapers   catalogDomain.BoxPapersStatus

	EstimatedSellPrice decimal.Decimal
	SellPlatform       *catalogDomain.Platform // nil for undervalued signals
	FairMarketValue    decimal.Decimal

	DiscountToMarketPct decimal.Decimal
	PlatformFeeEstimate decimal.Decimal
	ShippingEstimate    decimal.Decimal
	EstimatedProfit     decimal.Decimal
	ROIPercent          decimal.Decimal

	ConfidenceScore int // 0-100, heuristic, not a probability
	IsActive        bool
	FoundAt         time.Time
}

// SellPlatformString returns the sell platform or empty for undervalued signals.
func (o *Opportunity) SellPlatformString() string {
	if o.SellPlatform == nil {
		return ""
	}
	return string(*o.SellPlatform)
}
