package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	catalogDomain "watcharb/business/catalog/domain"
	marketApp "watcharb/business/marketplace/app"
	"watcharb/internal/logger"
)

const (
	tracerName = "watcharb/business/scanner/app"
	meterName  = "watcharb/business/scanner/app"
)

// Config holds scanner tuning.
type Config struct {
	MinPriceUSD  decimal.Decimal
	ListingLimit int
	StaleWindow  time.Duration
}

type scannerMetrics struct {
	listingsUpserted metric.Int64Counter
	scanErrors       metric.Int64Counter
	staleMarked      metric.Int64Counter
}

// Scanner fans the catalog out across the marketplace clients and upserts
// whatever they return. One failing platform never aborts the cycle; errors
// are collected into the stats so a partial scan still commits.
type Scanner struct {
	store   ListingStore
	clients []marketApp.Client
	config  Config
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	metrics *scannerMetrics
}

// NewScanner creates a scanner over the given marketplace clients.
func NewScanner(store ListingStore, clients []marketApp.Client, cfg Config, log logger.LoggerInterface) (*Scanner, error) {
	s := &Scanner{
		store:   store,
		clients: clients,
		config:  cfg,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}

	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return s, nil
}

func (s *Scanner) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &scannerMetrics{}

	s.metrics.listingsUpserted, err = meter.Int64Counter(
		"scanner_listings_upserted_total",
		metric.WithDescription("Listings created or refreshed by the scanner"),
		metric.WithUnit("{listing}"),
	)
	if err != nil {
		return err
	}

	s.metrics.scanErrors, err = meter.Int64Counter(
		"scanner_errors_total",
		metric.WithDescription("Marketplace query failures during scans"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	s.metrics.staleMarked, err = meter.Int64Counter(
		"scanner_stale_listings_total",
		metric.WithDescription("Listings deactivated for staleness"),
		metric.WithUnit("{listing}"),
	)
	return err
}

// ScanAll refreshes listings for every catalog reference, then deactivates
// listings not seen within the staleness window.
func (s *Scanner) ScanAll(ctx context.Context) (*Stats, error) {
	ctx, span := s.tracer.Start(ctx, "scanner.scan_all")
	defer span.End()

	start := time.Now()

	refs, err := s.store.ListReferences(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load references: %w", err)
	}

	stats := &Stats{
		ByPlatform: make(map[catalogDomain.Platform]int),
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		s.scanReference(ctx, ref, stats)
		stats.ReferencesScanned++
	}

	cutoff := time.Now().Add(-s.config.StaleWindow)
	stale, err := s.store.MarkStaleListings(ctx, cutoff)
	if err != nil {
		span.RecordError(err)
		stats.Errors = append(stats.Errors, fmt.Sprintf("mark stale: %v", err))
	} else {
		stats.StaleMarked = stale
		s.metrics.staleMarked.Add(ctx, stale)
	}

	stats.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("references", stats.ReferencesScanned),
		attribute.Int("created", stats.Created),
		attribute.Int("updated", stats.Updated),
		attribute.Int("errors", len(stats.Errors)),
	)

	s.logger.Info(ctx, "scan cycle complete",
		"references", stats.ReferencesScanned,
		"created", stats.Created,
		"updated", stats.Updated,
		"stale_marked", stats.StaleMarked,
		"errors", len(stats.Errors),
		"duration", stats.Duration.String())

	return stats, nil
}

// ScanReference refreshes listings for a single reference number.
func (s *Scanner) ScanReference(ctx context.Context, referenceNumber string) (*Stats, error) {
	refs, err := s.store.ListReferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("load references: %w", err)
	}

	stats := &Stats{
		ByPlatform: make(map[catalogDomain.Platform]int),
	}

	start := time.Now()
	for _, ref := range refs {
		if ref.ReferenceNumber != referenceNumber {
			continue
		}
		s.scanReference(ctx, ref, stats)
		stats.ReferencesScanned++
		stats.Duration = time.Since(start)
		return stats, nil
	}

	return nil, fmt.Errorf("reference %s not found", referenceNumber)
}

// scanReference queries every platform for one reference in parallel.
// Upserts are platform-local and idempotent, so the fan-out is safe.
func (s *Scanner) scanReference(ctx context.Context, ref catalogDomain.WatchReference, stats *Stats) {
	ctx, span := s.tracer.Start(ctx, "scanner.scan_reference",
		trace.WithAttributes(attribute.String("reference", ref.ReferenceNumber)),
	)
	defer span.End()

	query := ref.SearchQuery()
	scrapedAt := time.Now().UTC()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, client := range s.clients {
		g.Go(func() error {
			platform := client.Platform()

			results, err := client.Search(gctx, query, marketApp.SearchOptions{
				MinPriceUSD: s.config.MinPriceUSD,
				Limit:       s.config.ListingLimit,
			})
			if err != nil {
				s.metrics.scanErrors.Add(gctx, 1,
					metric.WithAttributes(attribute.String("platform", string(platform))))
				s.logger.Warn(gctx, "marketplace search failed",
					"platform", string(platform), "query", query, "error", err)

				mu.Lock()
				stats.Errors = append(stats.Errors,
					fmt.Sprintf("%s %q: %v", platform, query, err))
				mu.Unlock()
				return nil // a dead platform must not cancel the others
			}

			var created, updated int
			for i := range results {
				listing := results[i].Listing(ref.ID, scrapedAt)
				if !listing.BoxPapers.Valid() {
					continue
				}

				isNew, err := s.store.UpsertListing(gctx, listing)
				if err != nil {
					mu.Lock()
					stats.Errors = append(stats.Errors,
						fmt.Sprintf("%s upsert %s: %v", platform, listing.ExternalID, err))
					mu.Unlock()
					continue
				}
				if isNew {
					created++
				} else {
					updated++
				}
			}

			s.metrics.listingsUpserted.Add(gctx, int64(created+updated),
				metric.WithAttributes(attribute.String("platform", string(platform))))

			mu.Lock()
			stats.Created += created
			stats.Updated += updated
			stats.ByPlatform[platform] += created + updated
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()
}
