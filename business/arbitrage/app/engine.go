// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"watcharb/business/arbitrage/domain"
	catalogDomain "watcharb/business/catalog/domain"
	listingDomain "watcharb/business/listing/domain"
	"watcharb/internal/apperror"
	"watcharb/internal/logger"
)

const tracerName = "arbitrage_engine"

// EngineConfig holds detection thresholds that are not part of scoring.
type EngineConfig struct {
	// CrossPlatformMargin is the minimum spread between the cheapest listing
	// on the buy platform and the sell platform's average, as a fraction.
	CrossPlatformMargin decimal.Decimal

	// MinDiscount is the minimum discount to fair value for an undervalued
	// signal, as a fraction.
	MinDiscount decimal.Decimal
}

// Engine detects arbitrage opportunities across the whole catalog. One
// AnalyzeAll pass replaces the previous opportunity snapshot; overlapping
// passes are rejected.
type Engine struct {
	repo     Repository
	scorer   *Scorer
	reporter Reporter
	config   EngineConfig
	logger   logger.LoggerInterface
	tracer   trace.Tracer

	running atomic.Bool

	runsTotal    metric.Int64Counter
	oppsFound    metric.Int64Counter
	listingsSeen metric.Int64Counter
	runsFailed   metric.Int64Counter
}

// NewEngine creates an arbitrage Engine. Reporter may be nil.
func NewEngine(
	repo Repository,
	scorer *Scorer,
	reporter Reporter,
	config EngineConfig,
	log logger.LoggerInterface,
) (*Engine, error) {
	meter := otel.GetMeterProvider().Meter(tracerName)

	runsTotal, err := meter.Int64Counter("arbitrage_runs_total",
		metric.WithDescription("Completed analysis passes"))
	if err != nil {
		return nil, err
	}
	runsFailed, err := meter.Int64Counter("arbitrage_runs_failed_total",
		metric.WithDescription("Analysis passes aborted by a repository failure"))
	if err != nil {
		return nil, err
	}
	oppsFound, err := meter.Int64Counter("arbitrage_opportunities_total",
		metric.WithDescription("Opportunities persisted, by type"))
	if err != nil {
		return nil, err
	}
	listingsSeen, err := meter.Int64Counter("arbitrage_listings_analyzed_total",
		metric.WithDescription("Active listings considered during analysis"))
	if err != nil {
		return nil, err
	}

	return &Engine{
		repo:         repo,
		scorer:       scorer,
		reporter:     reporter,
		config:       config,
		logger:       log,
		tracer:       otel.Tracer(tracerName),
		runsTotal:    runsTotal,
		runsFailed:   runsFailed,
		oppsFound:    oppsFound,
		listingsSeen: listingsSeen,
	}, nil
}

// AnalyzeAll deactivates the previous opportunity snapshot, re-analyzes every
// reference with at least one active listing, and persists the new snapshot
// in one transaction. It returns the persisted opportunities.
//
// The engine is a single-writer batch: a second call while one is running
// returns CodeAnalysisInProgress without touching the store.
func (e *Engine) AnalyzeAll(ctx context.Context) ([]*domain.Opportunity, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, apperror.New(apperror.CodeAnalysisInProgress)
	}
	defer e.running.Store(false)

	ctx, span := e.tracer.Start(ctx, "engine.analyze_all")
	defer span.End()

	started := time.Now()
	var (
		opportunities []*domain.Opportunity
		references    int
		listingsSeen  int
	)

	err := e.repo.InTx(ctx, func(repo Repository) error {
		// Snapshot replacement: the old set goes inactive before any new
		// opportunity is computed, inside the same transaction.
		if err := repo.DeactivateOpportunities(ctx); err != nil {
			return err
		}

		refs, err := repo.ListReferences(ctx)
		if err != nil {
			return err
		}

		for i := range refs {
			ref := &refs[i]

			listings, err := repo.ListActiveListings(ctx, ref.ID)
			if err != nil {
				return err
			}
			if len(listings) == 0 {
				continue
			}
			references++
			listingsSeen += len(listings)

			opportunities = append(opportunities, e.findCrossPlatform(ref, listings)...)

			prices, err := repo.ListMarketPrices(ctx, ref.ID)
			if err != nil {
				return err
			}
			opportunities = append(opportunities, e.findUndervalued(ref, listings, prices)...)
		}

		return repo.InsertOpportunities(ctx, opportunities)
	})
	if err != nil {
		e.runsFailed.Add(ctx, 1)
		span.RecordError(err)
		e.logger.Error(ctx, "analysis run failed", "error", err)
		return nil, apperror.New(apperror.CodeAnalysisFailed, apperror.WithCause(err))
	}

	e.runsTotal.Add(ctx, 1)
	e.listingsSeen.Add(ctx, int64(listingsSeen))
	for _, opp := range opportunities {
		e.oppsFound.Add(ctx, 1, metric.WithAttributes(
			attribute.String("type", string(opp.Type)),
		))
	}
	span.SetAttributes(
		attribute.Int("references", references),
		attribute.Int("opportunities", len(opportunities)),
	)

	summary := RunSummary{
		References:       references,
		ListingsAnalyzed: listingsSeen,
		Opportunities:    len(opportunities),
		Duration:         time.Since(started),
	}
	e.logger.Info(ctx, "analysis run complete",
		"references", summary.References,
		"listings", summary.ListingsAnalyzed,
		"opportunities", summary.Opportunities,
		"duration", summary.Duration,
	)

	if e.reporter != nil {
		for _, opp := range opportunities {
			e.reporter.Report(opp)
		}
		e.reporter.RunCompleted(summary)
	}

	return opportunities, nil
}

// platformStats aggregates one platform's listings within a tier.
type platformStats struct {
	cheapest *listingDomain.Listing
	mean     decimal.Decimal
}

// findCrossPlatform emits a candidate for every ordered platform pair where
// the cheapest listing on the buy side undercuts the sell side's average by
// at least the configured margin. Tiers never mix: an unknown-status listing
// is only ever compared with other unknown-status listings.
func (e *Engine) findCrossPlatform(
	ref *catalogDomain.WatchReference,
	listings []listingDomain.Listing,
) []*domain.Opportunity {
	var opportunities []*domain.Opportunity

	for _, tier := range groupByTier(listings) {
		if len(tier) < 2 {
			continue
		}

		byPlatform := make(map[catalogDomain.Platform][]*listingDomain.Listing)
		for _, l := range tier {
			byPlatform[l.Platform] = append(byPlatform[l.Platform], l)
		}
		if len(byPlatform) < 2 {
			continue
		}

		stats := make(map[catalogDomain.Platform]platformStats, len(byPlatform))
		platforms := make([]catalogDomain.Platform, 0, len(byPlatform))
		for platform, group := range byPlatform {
			stats[platform] = summarize(group)
			platforms = append(platforms, platform)
		}
		// Deterministic pair ordering across runs.
		sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })

		threshold := decimal.NewFromInt(1).Sub(e.config.CrossPlatformMargin)

		for _, buy := range platforms {
			for _, sell := range platforms {
				if buy == sell {
					continue
				}
				buyStats, sellStats := stats[buy], stats[sell]
				if !buyStats.cheapest.PriceUSD.LessThan(sellStats.mean.Mul(threshold)) {
					continue
				}
				sellPlatform := sell
				opp := e.scorer.Score(buyStats.cheapest, Candidate{
					Type:               domain.TypeCrossPlatform,
					EstimatedSellPrice: sellStats.mean,
					SellPlatform:       &sellPlatform,
					FairMarketValue:    sellStats.mean,
				})
				if opp != nil {
					opportunities = append(opportunities, opp)
				}
			}
		}
	}

	return opportunities
}

// findUndervalued emits a candidate for every listing priced at least the
// configured discount below its tier's fair value. When no market price rows
// exist the listing pool itself is the market: per-tier averages stand in.
func (e *Engine) findUndervalued(
	ref *catalogDomain.WatchReference,
	listings []listingDomain.Listing,
	prices []listingDomain.MarketPrice,
) []*domain.Opportunity {
	fairValues := make(map[catalogDomain.BoxPapersStatus]decimal.Decimal, len(prices))
	for _, mp := range prices {
		fairValues[mp.BoxPapers] = mp.MarketPriceUSD
	}
	if len(fairValues) == 0 {
		fairValues = fallbackValuation(listings)
	}

	var opportunities []*domain.Opportunity

	for i := range listings {
		listing := &listings[i]

		fairValue, ok := fairValues[listing.BoxPapers]
		if !ok {
			fairValue, ok = fairValues[catalogDomain.BoxPapersUnknown]
		}
		if !ok || fairValue.IsZero() {
			continue // no valuation possible for this listing
		}

		discount := fairValue.Sub(listing.PriceUSD).Div(fairValue)
		if discount.LessThan(e.config.MinDiscount) {
			continue
		}

		opp := e.scorer.Score(listing, Candidate{
			Type:               domain.TypeUndervalued,
			EstimatedSellPrice: fairValue,
			SellPlatform:       nil,
			FairMarketValue:    fairValue,
		})
		if opp != nil {
			opportunities = append(opportunities, opp)
		}
	}

	return opportunities
}

// groupByTier partitions listings by exact box/papers status.
func groupByTier(listings []listingDomain.Listing) map[catalogDomain.BoxPapersStatus][]*listingDomain.Listing {
	tiers := make(map[catalogDomain.BoxPapersStatus][]*listingDomain.Listing)
	for i := range listings {
		l := &listings[i]
		tiers[l.BoxPapers] = append(tiers[l.BoxPapers], l)
	}
	return tiers
}

// summarize computes the cheapest listing and the arithmetic mean price of a
// non-empty group.
func summarize(group []*listingDomain.Listing) platformStats {
	cheapest := group[0]
	sum := decimal.Zero
	for _, l := range group {
		if l.PriceUSD.LessThan(cheapest.PriceUSD) {
			cheapest = l
		}
		sum = sum.Add(l.PriceUSD)
	}
	return platformStats{
		cheapest: cheapest,
		mean:     sum.Div(decimal.NewFromInt(int64(len(group)))),
	}
}

// fallbackValuation averages listing prices per tier.
func fallbackValuation(listings []listingDomain.Listing) map[catalogDomain.BoxPapersStatus]decimal.Decimal {
	sums := make(map[catalogDomain.BoxPapersStatus]decimal.Decimal)
	counts := make(map[catalogDomain.BoxPapersStatus]int64)
	for i := range listings {
		l := &listings[i]
		sums[l.BoxPapers] = sums[l.BoxPapers].Add(l.PriceUSD)
		counts[l.BoxPapers]++
	}

	averages := make(map[catalogDomain.BoxPapersStatus]decimal.Decimal, len(sums))
	for tier, sum := range sums {
		averages[tier] = sum.Div(decimal.NewFromInt(counts[tier]))
	}
	return averages
}
