// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"
	"time"

	"watcharb/business/arbitrage/domain"
	catalogDomain "watcharb/business/catalog/domain"
	listingDomain "watcharb/business/listing/domain"
)

// Repository is the persistence port the engine depends on. Implementations
// live in internal/store; the engine never sees the storage technology.
type Repository interface {
	// ListReferences returns the full watch catalog.
	ListReferences(ctx context.Context) ([]catalogDomain.WatchReference, error)

	// ListActiveListings returns all active listings for one reference.
	ListActiveListings(ctx context.Context, referenceID int64) ([]listingDomain.Listing, error)

	// ListMarketPrices returns the known market valuations for one reference.
	ListMarketPrices(ctx context.Context, referenceID int64) ([]listingDomain.MarketPrice, error)

	// DeactivateOpportunities flags every active opportunity inactive.
	DeactivateOpportunities(ctx context.Context) error

	// InsertOpportunities persists a batch of scored opportunities.
	InsertOpportunities(ctx context.Context, opps []*domain.Opportunity) error

	// InTx runs fn against a transactional view of the repository. All reads
	// and writes inside fn commit or roll back together; stores without
	// native transactions serialize fn instead.
	InTx(ctx context.Context, fn func(Repository) error) error
}

// RunSummary describes one completed analysis pass.
type RunSummary struct {
	References       int
	ListingsAnalyzed int
	Opportunities    int
	Duration         time.Duration
}

// Reporter is the presentation port for analysis results.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report sends a single opportunity to be displayed/logged.
	Report(opp *domain.Opportunity)

	// RunCompleted sends the summary of a finished analysis pass.
	RunCompleted(summary RunSummary)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
