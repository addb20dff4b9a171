// Package app contains the scanner service that refreshes the listing pool
// from the marketplace clients.
package app

import (
	"context"
	"time"

	catalogDomain "watcharb/business/catalog/domain"
	listingDomain "watcharb/business/listing/domain"
)

// ListingStore is the persistence port the scanner depends on.
type ListingStore interface {
	// ListReferences returns the full watch catalog.
	ListReferences(ctx context.Context) ([]catalogDomain.WatchReference, error)

	// UpsertListing inserts or refreshes a listing keyed by
	// platform+external id. Returns true when a new row was created.
	UpsertListing(ctx context.Context, l *listingDomain.Listing) (bool, error)

	// MarkStaleListings deactivates active listings last seen before cutoff.
	MarkStaleListings(ctx context.Context, cutoff time.Time) (int64, error)
}

// Stats describes one completed scan cycle.
type Stats struct {
	ReferencesScanned int
	Created           int
	Updated           int
	StaleMarked       int64
	ByPlatform        map[catalogDomain.Platform]int
	Errors            []string
	Duration          time.Duration
}
