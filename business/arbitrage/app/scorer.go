// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"watcharb/business/arbitrage/domain"
	catalogDomain "watcharb/business/catalog/domain"
	listingDomain "watcharb/business/listing/domain"
)

// ScoringConfig holds the fee table and the profitability thresholds.
type ScoringConfig struct {
	// Fees maps platform to its sell-side fee fraction.
	Fees map[catalogDomain.Platform]decimal.Decimal

	// DefaultFeeRate applies when a platform is missing from the table.
	DefaultFeeRate decimal.Decimal

	// ShippingCost is a flat per-deal shipping estimate.
	ShippingCost decimal.Decimal

	// MinProfitUSD and MinROI are hard filters: candidates below either
	// threshold are not opportunities.
	MinProfitUSD decimal.Decimal
	MinROI       decimal.Decimal // fraction, e.g. 0.05
}

// Candidate is a detection result awaiting profit and confidence scoring.
type Candidate struct {
	Type               domain.OpportunityType
	EstimatedSellPrice decimal.Decimal
	SellPlatform       *catalogDomain.Platform // nil when no resale venue is implied
	FairMarketValue    decimal.Decimal
}

// Scorer turns detection candidates into scored opportunities.
type Scorer struct {
	config ScoringConfig
}

// NewScorer creates a Scorer with the given fee table and thresholds.
func NewScorer(config ScoringConfig) *Scorer {
	return &Scorer{config: config}
}

// Score computes the economics of buying the listing and selling at the
// candidate's estimated price. It returns nil, without error, when the
// candidate does not clear the profit or ROI thresholds.
func (s *Scorer) Score(listing *listingDomain.Listing, c Candidate) *domain.Opportunity {
	// A zero fair value cannot anchor a discount; skip the listing.
	if c.FairMarketValue.IsZero() {
		return nil
	}

	buyPrice := listing.PriceUSD
	feeRate := s.feeRate(listing, c.SellPlatform)

	platformFee := c.EstimatedSellPrice.Mul(feeRate)
	shipping := s.config.ShippingCost

	estimatedProfit := c.EstimatedSellPrice.Sub(buyPrice).Sub(platformFee).Sub(shipping)

	roiPercent := decimal.Zero
	if !buyPrice.IsZero() {
		roiPercent = estimatedProfit.Div(buyPrice).Mul(decimal.NewFromInt(100))
	}

	discountToMarket := c.FairMarketValue.Sub(buyPrice).
		Div(c.FairMarketValue).
		Mul(decimal.NewFromInt(100))

	if estimatedProfit.LessThan(s.config.MinProfitUSD) {
		return nil
	}
	if roiPercent.LessThan(s.config.MinROI.Mul(decimal.NewFromInt(100))) {
		return nil
	}

	return &domain.Opportunity{
		ID:                  uuid.NewString(),
		ListingID:           listing.ID,
		WatchReferenceID:    listing.WatchReferenceID,
		Type:                c.Type,
		BuyPrice:            buyPrice,
		BuyPlatform:         listing.Platform,
		BoxPapers:           listing.BoxPapers,
		EstimatedSellPrice:  c.EstimatedSellPrice,
		SellPlatform:        c.SellPlatform,
		FairMarketValue:     c.FairMarketValue,
		DiscountToMarketPct: discountToMarket,
		PlatformFeeEstimate: platformFee,
		ShippingEstimate:    shipping,
		EstimatedProfit:     estimatedProfit,
		ROIPercent:          roiPercent,
		ConfidenceScore:     s.confidence(listing),
		IsActive:            true,
		FoundAt:             time.Now().UTC(),
	}
}

// feeRate resolves the sell-side fee: sell platform when known, otherwise the
// listing's own platform, otherwise the default.
func (s *Scorer) feeRate(listing *listingDomain.Listing, sellPlatform *catalogDomain.Platform) decimal.Decimal {
	platform := listing.Platform
	if sellPlatform != nil {
		platform = *sellPlatform
	}
	if rate, ok := s.config.Fees[platform]; ok {
		return rate
	}
	return s.config.DefaultFeeRate
}

// confidence computes the heuristic 0-100 score from listing attributes.
// Deterministic: the same listing always scores the same.
func (s *Scorer) confidence(listing *listingDomain.Listing) int {
	score := 50

	// Highest matching seller-rating tier only.
	switch {
	case listing.SellerRating >= 99:
		score += 15
	case listing.SellerRating >= 95:
		score += 10
	case listing.SellerRating >= 90:
		score += 5
	}

	if listing.BoxPapers.Known() {
		score += 10
	}

	// eBay buyer protection.
	if listing.Platform == catalogDomain.PlatformEBay {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
