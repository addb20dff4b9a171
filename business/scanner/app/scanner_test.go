package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	catalogDomain "watcharb/business/catalog/domain"
	marketApp "watcharb/business/marketplace/app"
	marketDomain "watcharb/business/marketplace/domain"
	"watcharb/internal/logger"
	"watcharb/internal/store/memory"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (l nopLogger) With(args ...any) logger.LoggerInterface          { return l }

// fakeClient returns canned results, or an error when err is set.
type fakeClient struct {
	platform catalogDomain.Platform
	results  []marketDomain.SearchResult
	err      error
	queries  []string
}

func (c *fakeClient) Platform() catalogDomain.Platform { return c.platform }

func (c *fakeClient) Search(_ context.Context, query string, _ marketApp.SearchOptions) ([]marketDomain.SearchResult, error) {
	c.queries = append(c.queries, query)
	if c.err != nil {
		return nil, c.err
	}
	return c.results, nil
}

func fakeResult(platform catalogDomain.Platform, externalID, priceUSD string, bp catalogDomain.BoxPapersStatus) marketDomain.SearchResult {
	price := decimal.RequireFromString(priceUSD)
	return marketDomain.SearchResult{
		Platform:   platform,
		ExternalID: externalID,
		Title:      "Rolex Submariner 126610LN",
		Price:      price,
		Currency:   "USD",
		PriceUSD:   price,
		BoxPapers:  bp,
	}
}

func seedOneReference(t *testing.T, st *memory.Store) {
	t.Helper()
	ctx := context.Background()

	brandID, err := st.InsertBrand(ctx, catalogDomain.Brand{Name: "Rolex", Slug: "rolex"})
	if err != nil {
		t.Fatalf("insert brand: %v", err)
	}
	if _, err := st.InsertReference(ctx, catalogDomain.WatchReference{
		BrandID:         brandID,
		BrandName:       "Rolex",
		ReferenceNumber: "126610LN",
	}); err != nil {
		t.Fatalf("insert reference: %v", err)
	}
}

func testConfig() Config {
	return Config{
		MinPriceUSD:  decimal.RequireFromString("3000"),
		ListingLimit: 50,
		StaleWindow:  24 * time.Hour,
	}
}

func TestScanner_ScanAll(t *testing.T) {
	st := memory.New()
	seedOneReference(t, st)

	ebayClient := &fakeClient{
		platform: catalogDomain.PlatformEBay,
		results: []marketDomain.SearchResult{
			fakeResult(catalogDomain.PlatformEBay, "e1", "12800", catalogDomain.BoxPapersFullSet),
			fakeResult(catalogDomain.PlatformEBay, "e2", "13400", catalogDomain.BoxPapersUnknown),
		},
	}
	chronoClient := &fakeClient{
		platform: catalogDomain.PlatformChrono24,
		results: []marketDomain.SearchResult{
			fakeResult(catalogDomain.PlatformChrono24, "c1", "14000", catalogDomain.BoxPapersFullSet),
		},
	}

	scanner, err := NewScanner(st, []marketApp.Client{ebayClient, chronoClient}, testConfig(), nopLogger{})
	if err != nil {
		t.Fatalf("new scanner: %v", err)
	}

	stats, err := scanner.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if stats.ReferencesScanned != 1 {
		t.Errorf("references scanned = %d, want 1", stats.ReferencesScanned)
	}
	if stats.Created != 3 {
		t.Errorf("created = %d, want 3", stats.Created)
	}
	if len(stats.Errors) != 0 {
		t.Errorf("unexpected errors: %v", stats.Errors)
	}
	if stats.ByPlatform[catalogDomain.PlatformEBay] != 2 {
		t.Errorf("ebay upserts = %d, want 2", stats.ByPlatform[catalogDomain.PlatformEBay])
	}

	// Brand plus reference number is the search query.
	if len(ebayClient.queries) != 1 || ebayClient.queries[0] != "Rolex 126610LN" {
		t.Errorf("ebay queries = %v", ebayClient.queries)
	}
}

func TestScanner_RescanUpdatesInsteadOfCreating(t *testing.T) {
	st := memory.New()
	seedOneReference(t, st)

	client := &fakeClient{
		platform: catalogDomain.PlatformEBay,
		results: []marketDomain.SearchResult{
			fakeResult(catalogDomain.PlatformEBay, "e1", "12800", catalogDomain.BoxPapersFullSet),
		},
	}
	scanner, err := NewScanner(st, []marketApp.Client{client}, testConfig(), nopLogger{})
	if err != nil {
		t.Fatalf("new scanner: %v", err)
	}

	ctx := context.Background()
	if _, err := scanner.ScanAll(ctx); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	stats, err := scanner.ScanAll(ctx)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}

	if stats.Created != 0 || stats.Updated != 1 {
		t.Errorf("created = %d, updated = %d, want 0 and 1", stats.Created, stats.Updated)
	}
}

func TestScanner_OnePlatformFailureDoesNotAbort(t *testing.T) {
	st := memory.New()
	seedOneReference(t, st)

	healthy := &fakeClient{
		platform: catalogDomain.PlatformEBay,
		results: []marketDomain.SearchResult{
			fakeResult(catalogDomain.PlatformEBay, "e1", "12800", catalogDomain.BoxPapersFullSet),
		},
	}
	dead := &fakeClient{
		platform: catalogDomain.PlatformChrono24,
		err:      context.DeadlineExceeded,
	}

	scanner, err := NewScanner(st, []marketApp.Client{healthy, dead}, testConfig(), nopLogger{})
	if err != nil {
		t.Fatalf("new scanner: %v", err)
	}

	stats, err := scanner.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("scan should survive a platform failure: %v", err)
	}

	if stats.Created != 1 {
		t.Errorf("created = %d, want 1 from the healthy platform", stats.Created)
	}
	if len(stats.Errors) != 1 {
		t.Errorf("errors = %v, want exactly one", stats.Errors)
	}

	listings, err := st.ListActiveListings(context.Background(), 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listings) != 1 {
		t.Errorf("expected the healthy platform's listing to commit, got %d", len(listings))
	}
}

func TestScanner_SkipsInvalidBoxPapers(t *testing.T) {
	st := memory.New()
	seedOneReference(t, st)

	client := &fakeClient{
		platform: catalogDomain.PlatformEBay,
		results: []marketDomain.SearchResult{
			fakeResult(catalogDomain.PlatformEBay, "e1", "12800", catalogDomain.BoxPapersStatus("mint?")),
			fakeResult(catalogDomain.PlatformEBay, "e2", "12900", catalogDomain.BoxPapersFullSet),
		},
	}
	scanner, err := NewScanner(st, []marketApp.Client{client}, testConfig(), nopLogger{})
	if err != nil {
		t.Fatalf("new scanner: %v", err)
	}

	stats, err := scanner.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if stats.Created != 1 {
		t.Errorf("created = %d, want only the valid listing", stats.Created)
	}
}

func TestScanner_ScanReferenceUnknownNumber(t *testing.T) {
	st := memory.New()
	seedOneReference(t, st)

	scanner, err := NewScanner(st, nil, testConfig(), nopLogger{})
	if err != nil {
		t.Fatalf("new scanner: %v", err)
	}

	if _, err := scanner.ScanReference(context.Background(), "000000"); err == nil {
		t.Fatal("expected an error for an unknown reference number")
	}
}
