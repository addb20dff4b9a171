// Package memory is an in-memory store implementation used by tests and by
// the memory store mode. Safe for concurrent use; copy-on-read.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	arbApp "watcharb/business/arbitrage/app"
	arbDomain "watcharb/business/arbitrage/domain"
	catalogDomain "watcharb/business/catalog/domain"
	listingDomain "watcharb/business/listing/domain"
	"watcharb/internal/store"
)

// Store holds the whole data set behind one RWMutex.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex // serializes InTx bodies

	brandSeq   int64
	refSeq     int64
	listingSeq int64
	priceSeq   int64

	brands        map[int64]catalogDomain.Brand
	references    map[int64]catalogDomain.WatchReference
	listings      map[listingKey]*listingDomain.Listing
	marketPrices  map[int64][]listingDomain.MarketPrice // by reference id
	opportunities map[string]*arbDomain.Opportunity
}

type listingKey struct {
	platform   catalogDomain.Platform
	externalID string
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		brands:        make(map[int64]catalogDomain.Brand),
		references:    make(map[int64]catalogDomain.WatchReference),
		listings:      make(map[listingKey]*listingDomain.Listing),
		marketPrices:  make(map[int64][]listingDomain.MarketPrice),
		opportunities: make(map[string]*arbDomain.Opportunity),
	}
}

// InTx serializes fn against other transactions. The memory store has no
// rollback; a failed fn may leave partial writes, matching the caller's
// retry-wholesale contract.
func (s *Store) InTx(_ context.Context, fn func(arbApp.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

// InsertBrand adds a brand, reusing an existing row with the same slug.
func (s *Store) InsertBrand(_ context.Context, brand catalogDomain.Brand) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.brands {
		if existing.Slug == brand.Slug {
			return id, nil
		}
	}

	s.brandSeq++
	brand.ID = s.brandSeq
	s.brands[brand.ID] = brand
	return brand.ID, nil
}

// InsertReference adds a watch reference, reusing an existing row with the
// same reference number.
func (s *Store) InsertReference(_ context.Context, ref catalogDomain.WatchReference) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.references {
		if existing.ReferenceNumber == ref.ReferenceNumber {
			return id, nil
		}
	}

	s.refSeq++
	ref.ID = s.refSeq
	if brand, ok := s.brands[ref.BrandID]; ok {
		ref.BrandName = brand.Name
	}
	s.references[ref.ID] = ref
	return ref.ID, nil
}

// CountReferences returns the catalog size.
func (s *Store) CountReferences(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.references), nil
}

// ListReferences returns the catalog ordered by id.
func (s *Store) ListReferences(_ context.Context) ([]catalogDomain.WatchReference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := make([]catalogDomain.WatchReference, 0, len(s.references))
	for _, ref := range s.references {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}

// UpsertListing creates or updates a listing keyed by platform+external id.
// Updates refresh price, activity, and scrape time in place. Returns true
// when a new row was created.
func (s *Store) UpsertListing(_ context.Context, l *listingDomain.Listing) (bool, error) {
	if l == nil || l.ExternalID == "" {
		return false, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := listingKey{platform: l.Platform, externalID: l.ExternalID}
	if existing, ok := s.listings[key]; ok {
		existing.Price = l.Price
		existing.PriceUSD = l.PriceUSD
		existing.IsActive = true
		existing.ScrapedAt = l.ScrapedAt
		l.ID = existing.ID
		return false, nil
	}

	s.listingSeq++
	clone := *l
	clone.ID = s.listingSeq
	clone.IsActive = true
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = clone.ScrapedAt
	}
	s.listings[key] = &clone
	l.ID = clone.ID
	return true, nil
}

// MarkStaleListings deactivates active listings scraped before cutoff and
// returns how many were flagged.
func (s *Store) MarkStaleListings(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var flagged int64
	for _, l := range s.listings {
		if l.IsActive && l.ScrapedAt.Before(cutoff) {
			l.IsActive = false
			flagged++
		}
	}
	return flagged, nil
}

// ListActiveListings returns copies of the active listings for one reference,
// ordered by id.
func (s *Store) ListActiveListings(_ context.Context, referenceID int64) ([]listingDomain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []listingDomain.Listing
	for _, l := range s.listings {
		if l.WatchReferenceID == referenceID && l.IsActive {
			result = append(result, *l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// InsertMarketPrice records a market valuation for a reference.
func (s *Store) InsertMarketPrice(_ context.Context, mp listingDomain.MarketPrice) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.priceSeq++
	mp.ID = s.priceSeq
	s.marketPrices[mp.WatchReferenceID] = append(s.marketPrices[mp.WatchReferenceID], mp)
	return mp.ID, nil
}

// ListMarketPrices returns the valuations recorded for one reference.
func (s *Store) ListMarketPrices(_ context.Context, referenceID int64) ([]listingDomain.MarketPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prices := s.marketPrices[referenceID]
	result := make([]listingDomain.MarketPrice, len(prices))
	copy(result, prices)
	return result, nil
}

// DeactivateOpportunities flags every active opportunity inactive.
func (s *Store) DeactivateOpportunities(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, opp := range s.opportunities {
		opp.IsActive = false
	}
	return nil
}

// InsertOpportunities persists a batch of opportunities.
func (s *Store) InsertOpportunities(_ context.Context, opps []*arbDomain.Opportunity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, opp := range opps {
		if opp == nil || opp.ID == "" {
			return store.ErrInvalidInput
		}
		if _, exists := s.opportunities[opp.ID]; exists {
			return store.ErrDuplicateKey
		}
		clone := *opp
		s.opportunities[opp.ID] = &clone
	}
	return nil
}

// ListActiveOpportunities returns copies of the active snapshot, most
// profitable first.
func (s *Store) ListActiveOpportunities(_ context.Context) ([]arbDomain.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []arbDomain.Opportunity
	for _, opp := range s.opportunities {
		if opp.IsActive {
			result = append(result, *opp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EstimatedProfit.GreaterThan(result[j].EstimatedProfit)
	})
	return result, nil
}

// Close is a no-op; it exists to satisfy the store lifecycle.
func (s *Store) Close() {}
