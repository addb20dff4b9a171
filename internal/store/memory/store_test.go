package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	arbApp "watcharb/business/arbitrage/app"
	arbDomain "watcharb/business/arbitrage/domain"
	catalogDomain "watcharb/business/catalog/domain"
	listingDomain "watcharb/business/listing/domain"
	"watcharb/internal/store"
)

func seedCatalog(t *testing.T, s *Store) int64 {
	t.Helper()
	ctx := context.Background()

	brandID, err := s.InsertBrand(ctx, catalogDomain.Brand{Name: "Rolex", Slug: "rolex"})
	if err != nil {
		t.Fatalf("insert brand: %v", err)
	}
	refID, err := s.InsertReference(ctx, catalogDomain.WatchReference{
		BrandID:         brandID,
		ReferenceNumber: "126610LN",
		ModelName:       "Submariner Date",
	})
	if err != nil {
		t.Fatalf("insert reference: %v", err)
	}
	return refID
}

func TestStore_InsertBrandIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.InsertBrand(ctx, catalogDomain.Brand{Name: "Rolex", Slug: "rolex"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	second, err := s.InsertBrand(ctx, catalogDomain.Brand{Name: "Rolex", Slug: "rolex"})
	if err != nil {
		t.Fatalf("re-insert: %v", err)
	}
	if first != second {
		t.Errorf("same slug should reuse the row: got ids %d and %d", first, second)
	}
}

func TestStore_ReferenceGetsBrandName(t *testing.T) {
	s := New()
	refID := seedCatalog(t, s)

	refs, err := s.ListReferences(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != refID {
		t.Fatalf("unexpected catalog: %+v", refs)
	}
	if refs[0].BrandName != "Rolex" {
		t.Errorf("brand name = %q, want Rolex", refs[0].BrandName)
	}
}

func TestStore_UpsertListing(t *testing.T) {
	s := New()
	refID := seedCatalog(t, s)
	ctx := context.Background()

	l := &listingDomain.Listing{
		WatchReferenceID: refID,
		Platform:         catalogDomain.PlatformEBay,
		ExternalID:       "v1|123|0",
		Price:            decimal.RequireFromString("12800"),
		PriceUSD:         decimal.RequireFromString("12800"),
		BoxPapers:        catalogDomain.BoxPapersFullSet,
		ScrapedAt:        time.Now().UTC(),
	}

	created, err := s.UpsertListing(ctx, l)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !created {
		t.Error("first upsert should create")
	}
	if l.ID == 0 {
		t.Error("upsert should assign an id")
	}

	// Same key again with a new price.
	update := *l
	update.ID = 0
	update.PriceUSD = decimal.RequireFromString("12500")
	update.Price = update.PriceUSD
	created, err = s.UpsertListing(ctx, &update)
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if created {
		t.Error("second upsert with the same key should update")
	}
	if update.ID != l.ID {
		t.Errorf("update should reuse id %d, got %d", l.ID, update.ID)
	}

	active, err := s.ListActiveListings(ctx, refID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(active))
	}
	if want := decimal.RequireFromString("12500"); !active[0].PriceUSD.Equal(want) {
		t.Errorf("price = %s, want %s", active[0].PriceUSD, want)
	}
}

func TestStore_UpsertListingRejectsEmptyKey(t *testing.T) {
	s := New()

	_, err := s.UpsertListing(context.Background(), &listingDomain.Listing{
		Platform: catalogDomain.PlatformEBay,
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStore_MarkStaleListings(t *testing.T) {
	s := New()
	refID := seedCatalog(t, s)
	ctx := context.Background()
	now := time.Now().UTC()

	fresh := &listingDomain.Listing{
		WatchReferenceID: refID,
		Platform:         catalogDomain.PlatformEBay,
		ExternalID:       "fresh",
		PriceUSD:         decimal.RequireFromString("10000"),
		ScrapedAt:        now,
	}
	stale := &listingDomain.Listing{
		WatchReferenceID: refID,
		Platform:         catalogDomain.PlatformEBay,
		ExternalID:       "stale",
		PriceUSD:         decimal.RequireFromString("11000"),
		ScrapedAt:        now.Add(-30 * time.Hour),
	}
	for _, l := range []*listingDomain.Listing{fresh, stale} {
		if _, err := s.UpsertListing(ctx, l); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	flagged, err := s.MarkStaleListings(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("mark stale: %v", err)
	}
	if flagged != 1 {
		t.Errorf("flagged = %d, want 1", flagged)
	}

	active, err := s.ListActiveListings(ctx, refID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ExternalID != "fresh" {
		t.Fatalf("expected only the fresh listing to stay active, got %+v", active)
	}

	// A later rescan of the stale listing reactivates it.
	stale.ScrapedAt = now
	if _, err := s.UpsertListing(ctx, stale); err != nil {
		t.Fatalf("rescan upsert: %v", err)
	}
	active, err = s.ListActiveListings(ctx, refID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected rescan to reactivate, got %d active", len(active))
	}
}

func TestStore_OpportunitySnapshot(t *testing.T) {
	s := New()
	ctx := context.Background()

	makeOpp := func(id, profit string) *arbDomain.Opportunity {
		return &arbDomain.Opportunity{
			ID:              id,
			Type:            arbDomain.TypeCrossPlatform,
			BuyPlatform:     catalogDomain.PlatformEBay,
			EstimatedProfit: decimal.RequireFromString(profit),
			IsActive:        true,
			FoundAt:         time.Now().UTC(),
		}
	}

	if err := s.InsertOpportunities(ctx, []*arbDomain.Opportunity{
		makeOpp("a", "500"),
		makeOpp("b", "900"),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := s.DeactivateOpportunities(ctx); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := s.InsertOpportunities(ctx, []*arbDomain.Opportunity{makeOpp("c", "700")}); err != nil {
		t.Fatalf("insert new snapshot: %v", err)
	}

	active, err := s.ListActiveOpportunities(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != "c" {
		t.Fatalf("expected only the new snapshot active, got %+v", active)
	}
}

func TestStore_InsertOpportunitiesDuplicateID(t *testing.T) {
	s := New()
	ctx := context.Background()

	opp := &arbDomain.Opportunity{ID: "dup", IsActive: true}
	if err := s.InsertOpportunities(ctx, []*arbDomain.Opportunity{opp}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := s.InsertOpportunities(ctx, []*arbDomain.Opportunity{opp})
	if !errors.Is(err, store.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestStore_InTxSerializes(t *testing.T) {
	s := New()
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = s.InTx(ctx, func(arbApp.Repository) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	second := make(chan struct{})
	go func() {
		defer close(second)
		_ = s.InTx(ctx, func(arbApp.Repository) error { return nil })
	}()

	select {
	case <-second:
		t.Fatal("second transaction ran while the first was still open")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-done
	<-second
}
