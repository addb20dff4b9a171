package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"watcharb/business/arbitrage/app"
	"watcharb/business/arbitrage/domain"
	catalogDomain "watcharb/business/catalog/domain"
	listingDomain "watcharb/business/listing/domain"
	"watcharb/internal/apperror"
	"watcharb/internal/logger"
	"watcharb/internal/store/memory"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (l nopLogger) With(args ...any) logger.LoggerInterface          { return l }

func testEngineConfig() app.EngineConfig {
	return app.EngineConfig{
		CrossPlatformMargin: decimal.RequireFromString("0.10"),
		MinDiscount:         decimal.RequireFromString("0.10"),
	}
}

func testScorer() *app.Scorer {
	return app.NewScorer(app.ScoringConfig{
		Fees: map[catalogDomain.Platform]decimal.Decimal{
			catalogDomain.PlatformEBay:     decimal.RequireFromString("0.13"),
			catalogDomain.PlatformChrono24: decimal.RequireFromString("0.065"),
		},
		DefaultFeeRate: decimal.RequireFromString("0.10"),
		ShippingCost:   decimal.RequireFromString("75"),
		MinProfitUSD:   decimal.RequireFromString("200"),
		MinROI:         decimal.RequireFromString("0.05"),
	})
}

// seedReference inserts a brand and one reference, returning the reference ID.
func seedReference(t *testing.T, st *memory.Store) int64 {
	t.Helper()
	ctx := context.Background()

	brandID, err := st.InsertBrand(ctx, catalogDomain.Brand{Name: "Rolex", Slug: "rolex"})
	if err != nil {
		t.Fatalf("insert brand: %v", err)
	}
	refID, err := st.InsertReference(ctx, catalogDomain.WatchReference{
		BrandID:         brandID,
		BrandName:       "Rolex",
		ReferenceNumber: "126610LN",
		ModelName:       "Submariner Date",
	})
	if err != nil {
		t.Fatalf("insert reference: %v", err)
	}
	return refID
}

func addListing(t *testing.T, st *memory.Store, refID int64, platform catalogDomain.Platform, externalID, priceUSD string, bp catalogDomain.BoxPapersStatus) {
	t.Helper()
	price := decimal.RequireFromString(priceUSD)
	_, err := st.UpsertListing(context.Background(), &listingDomain.Listing{
		WatchReferenceID: refID,
		Platform:         platform,
		ExternalID:       externalID,
		Price:            price,
		Currency:         "USD",
		PriceUSD:         price,
		BoxPapers:        bp,
		IsActive:         true,
		ScrapedAt:        time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("upsert listing: %v", err)
	}
}

func newTestEngine(t *testing.T, repo app.Repository) *app.Engine {
	t.Helper()
	engine, err := app.NewEngine(repo, testScorer(), nil, testEngineConfig(), nopLogger{})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_CrossPlatformSpread(t *testing.T) {
	st := memory.New()
	refID := seedReference(t, st)

	// Cheapest eBay full set at 12800 against a 14500 Chrono24 average.
	addListing(t, st, refID, catalogDomain.PlatformEBay, "e1", "12800", catalogDomain.BoxPapersFullSet)
	addListing(t, st, refID, catalogDomain.PlatformChrono24, "c1", "14000", catalogDomain.BoxPapersFullSet)
	addListing(t, st, refID, catalogDomain.PlatformChrono24, "c2", "15000", catalogDomain.BoxPapersFullSet)

	engine := newTestEngine(t, st)
	opps, err := engine.AnalyzeAll(context.Background())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}
	opp := opps[0]
	if opp.Type != domain.TypeCrossPlatform {
		t.Errorf("type = %s, want %s", opp.Type, domain.TypeCrossPlatform)
	}
	if opp.BuyPlatform != catalogDomain.PlatformEBay {
		t.Errorf("buy platform = %s, want ebay", opp.BuyPlatform)
	}
	if opp.SellPlatform == nil || *opp.SellPlatform != catalogDomain.PlatformChrono24 {
		t.Errorf("sell platform = %v, want chrono24", opp.SellPlatform)
	}
	// 14500 - 12800 - 14500*0.065 - 75
	if want := decimal.RequireFromString("682.5"); !opp.EstimatedProfit.Equal(want) {
		t.Errorf("profit = %s, want %s", opp.EstimatedProfit, want)
	}
}

func TestEngine_SpreadBelowMargin(t *testing.T) {
	st := memory.New()
	refID := seedReference(t, st)

	// 14200 is not below 13000 * 0.90, and the reverse direction fails too.
	addListing(t, st, refID, catalogDomain.PlatformEBay, "e1", "14200", catalogDomain.BoxPapersFullSet)
	addListing(t, st, refID, catalogDomain.PlatformChrono24, "c1", "13000", catalogDomain.BoxPapersFullSet)

	engine := newTestEngine(t, st)
	opps, err := engine.AnalyzeAll(context.Background())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(opps) != 0 {
		t.Fatalf("expected no opportunities, got %d", len(opps))
	}
}

func TestEngine_UndervaluedAgainstMarketPrice(t *testing.T) {
	st := memory.New()
	refID := seedReference(t, st)
	ctx := context.Background()

	addListing(t, st, refID, catalogDomain.PlatformChrono24, "c1", "27000", catalogDomain.BoxPapersFullSet)
	_, err := st.InsertMarketPrice(ctx, listingDomain.MarketPrice{
		WatchReferenceID: refID,
		BoxPapers:        catalogDomain.BoxPapersFullSet,
		MarketPriceUSD:   decimal.RequireFromString("32000"),
		Source:           listingDomain.SourceWatchCharts,
		RecordedAt:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("insert market price: %v", err)
	}

	engine := newTestEngine(t, st)
	opps, err := engine.AnalyzeAll(ctx)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}
	opp := opps[0]
	if opp.Type != domain.TypeUndervalued {
		t.Errorf("type = %s, want %s", opp.Type, domain.TypeUndervalued)
	}
	if opp.SellPlatform != nil {
		t.Errorf("undervalued opportunity should not imply a sell venue, got %s", *opp.SellPlatform)
	}
	if want := decimal.RequireFromString("32000"); !opp.FairMarketValue.Equal(want) {
		t.Errorf("fair value = %s, want %s", opp.FairMarketValue, want)
	}
}

func TestEngine_UndervaluedUnknownTierFallback(t *testing.T) {
	st := memory.New()
	refID := seedReference(t, st)
	ctx := context.Background()

	// No box_only market price exists, so the unknown-tier value stands in.
	addListing(t, st, refID, catalogDomain.PlatformChrono24, "c1", "27000", catalogDomain.BoxPapersBoxOnly)
	_, err := st.InsertMarketPrice(ctx, listingDomain.MarketPrice{
		WatchReferenceID: refID,
		BoxPapers:        catalogDomain.BoxPapersUnknown,
		MarketPriceUSD:   decimal.RequireFromString("32000"),
		Source:           listingDomain.SourceWatchCharts,
		RecordedAt:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("insert market price: %v", err)
	}

	engine := newTestEngine(t, st)
	opps, err := engine.AnalyzeAll(ctx)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}
	opp := opps[0]
	if opp.Type != domain.TypeUndervalued {
		t.Errorf("type = %s, want %s", opp.Type, domain.TypeUndervalued)
	}
	if want := decimal.RequireFromString("32000"); !opp.FairMarketValue.Equal(want) {
		t.Errorf("fair value = %s, want %s", opp.FairMarketValue, want)
	}
	// 32000 - 27000 - 32000*0.065 - 75
	if want := decimal.RequireFromString("2845"); !opp.EstimatedProfit.Equal(want) {
		t.Errorf("profit = %s, want %s", opp.EstimatedProfit, want)
	}
}

func TestEngine_UndervaluedListingPoolFallback(t *testing.T) {
	st := memory.New()
	refID := seedReference(t, st)

	// No market price rows at all: the tier's own average of 28000 is the
	// fair value, and only the 24000 outlier clears the 10% discount.
	addListing(t, st, refID, catalogDomain.PlatformChrono24, "c1", "24000", catalogDomain.BoxPapersFullSet)
	addListing(t, st, refID, catalogDomain.PlatformChrono24, "c2", "30000", catalogDomain.BoxPapersFullSet)
	addListing(t, st, refID, catalogDomain.PlatformChrono24, "c3", "30000", catalogDomain.BoxPapersFullSet)

	engine := newTestEngine(t, st)
	opps, err := engine.AnalyzeAll(context.Background())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}
	opp := opps[0]
	if opp.Type != domain.TypeUndervalued {
		t.Errorf("type = %s, want %s", opp.Type, domain.TypeUndervalued)
	}
	if want := decimal.RequireFromString("24000"); !opp.BuyPrice.Equal(want) {
		t.Errorf("buy price = %s, want %s", opp.BuyPrice, want)
	}
	if want := decimal.RequireFromString("28000"); !opp.FairMarketValue.Equal(want) {
		t.Errorf("fair value = %s, want %s", opp.FairMarketValue, want)
	}
	// 28000 - 24000 - 28000*0.065 - 75
	if want := decimal.RequireFromString("2105"); !opp.EstimatedProfit.Equal(want) {
		t.Errorf("profit = %s, want %s", opp.EstimatedProfit, want)
	}
}

func TestEngine_SingleListingNoOpportunity(t *testing.T) {
	st := memory.New()
	refID := seedReference(t, st)

	addListing(t, st, refID, catalogDomain.PlatformEBay, "e1", "12800", catalogDomain.BoxPapersFullSet)

	engine := newTestEngine(t, st)
	opps, err := engine.AnalyzeAll(context.Background())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	// One listing means no spread and a fallback fair value equal to its own
	// price, so nothing qualifies.
	if len(opps) != 0 {
		t.Fatalf("expected no opportunities, got %d", len(opps))
	}
}

func TestEngine_TiersNeverMix(t *testing.T) {
	st := memory.New()
	refID := seedReference(t, st)

	// A huge spread, but the listings sit in different box/papers tiers.
	addListing(t, st, refID, catalogDomain.PlatformEBay, "e1", "12800", catalogDomain.BoxPapersFullSet)
	addListing(t, st, refID, catalogDomain.PlatformChrono24, "c1", "20000", catalogDomain.BoxPapersNone)

	engine := newTestEngine(t, st)
	opps, err := engine.AnalyzeAll(context.Background())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(opps) != 0 {
		t.Fatalf("expected no opportunities across tiers, got %d", len(opps))
	}
}

func TestEngine_ZeroPriceListingIsRejected(t *testing.T) {
	st := memory.New()
	refID := seedReference(t, st)
	ctx := context.Background()

	addListing(t, st, refID, catalogDomain.PlatformChrono24, "c1", "0", catalogDomain.BoxPapersFullSet)
	_, err := st.InsertMarketPrice(ctx, listingDomain.MarketPrice{
		WatchReferenceID: refID,
		BoxPapers:        catalogDomain.BoxPapersFullSet,
		MarketPriceUSD:   decimal.RequireFromString("32000"),
		Source:           listingDomain.SourceWatchCharts,
		RecordedAt:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("insert market price: %v", err)
	}

	engine := newTestEngine(t, st)
	opps, err := engine.AnalyzeAll(ctx)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(opps) != 0 {
		t.Fatalf("zero-price listing must not score, got %d opportunities", len(opps))
	}
}

func TestEngine_RerunReplacesSnapshot(t *testing.T) {
	st := memory.New()
	refID := seedReference(t, st)
	ctx := context.Background()

	addListing(t, st, refID, catalogDomain.PlatformEBay, "e1", "12800", catalogDomain.BoxPapersFullSet)
	addListing(t, st, refID, catalogDomain.PlatformChrono24, "c1", "14000", catalogDomain.BoxPapersFullSet)
	addListing(t, st, refID, catalogDomain.PlatformChrono24, "c2", "15000", catalogDomain.BoxPapersFullSet)

	engine := newTestEngine(t, st)
	for i := 0; i < 3; i++ {
		if _, err := engine.AnalyzeAll(ctx); err != nil {
			t.Fatalf("analyze run %d: %v", i, err)
		}
	}

	active, err := st.ListActiveOpportunities(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("re-running analysis must replace the snapshot, got %d active opportunities", len(active))
	}
}

// blockingRepo parks inside InTx until released, so a second AnalyzeAll can be
// issued while the first is mid-flight.
type blockingRepo struct {
	*memory.Store
	entered chan struct{}
	release chan struct{}
}

func (r *blockingRepo) InTx(ctx context.Context, fn func(app.Repository) error) error {
	close(r.entered)
	<-r.release
	return r.Store.InTx(ctx, fn)
}

func TestEngine_ConcurrentRunRejected(t *testing.T) {
	st := memory.New()
	seedReference(t, st)

	repo := &blockingRepo{
		Store:   st,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	engine := newTestEngine(t, repo)

	done := make(chan error, 1)
	go func() {
		_, err := engine.AnalyzeAll(context.Background())
		done <- err
	}()

	<-repo.entered
	_, err := engine.AnalyzeAll(context.Background())
	if !errors.Is(err, apperror.New(apperror.CodeAnalysisInProgress)) {
		t.Fatalf("expected analysis-in-progress error, got %v", err)
	}

	close(repo.release)
	if err := <-done; err != nil {
		t.Fatalf("first run should complete cleanly, got %v", err)
	}
}
