// Package catalog seeds the watch reference catalog.
package catalog

import (
	"context"
	"errors"

	catalogDomain "watcharb/business/catalog/domain"
	"watcharb/internal/apperror"
	"watcharb/internal/logger"
	"watcharb/internal/store"
)

// Store is the persistence port the seeder depends on.
type Store interface {
	CountReferences(ctx context.Context) (int, error)
	InsertBrand(ctx context.Context, brand catalogDomain.Brand) (int64, error)
	InsertReference(ctx context.Context, ref catalogDomain.WatchReference) (int64, error)
}

// SeedIfEmpty loads the well-known catalog when the store has no references.
// Re-running against a populated store is a no-op, so startup can always
// call it. Returns how many references were inserted.
func SeedIfEmpty(ctx context.Context, s Store, log logger.LoggerInterface) (int, error) {
	count, err := s.CountReferences(ctx)
	if err != nil {
		return 0, apperror.New(apperror.CodeCatalogSeedFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to count references"))
	}
	if count > 0 {
		log.Debug(ctx, "catalog already seeded", "references", count)
		return 0, nil
	}

	inserted := 0
	for _, brand := range WellKnown {
		brandID, err := s.InsertBrand(ctx, catalogDomain.Brand{
			Name: brand.Name,
			Slug: brand.Slug,
		})
		if err != nil && !errors.Is(err, store.ErrDuplicateKey) {
			return inserted, apperror.New(apperror.CodeCatalogSeedFailed,
				apperror.WithCause(err),
				apperror.WithContext("failed to insert brand "+brand.Slug))
		}

		for _, watch := range brand.Watches {
			_, err := s.InsertReference(ctx, catalogDomain.WatchReference{
				BrandID:         brandID,
				BrandName:       brand.Name,
				ReferenceNumber: watch.Ref,
				ModelName:       watch.Model,
				Collection:      watch.Collection,
				CaseSizeMM:      watch.SizeMM,
			})
			if errors.Is(err, store.ErrDuplicateKey) {
				continue
			}
			if err != nil {
				return inserted, apperror.New(apperror.CodeCatalogSeedFailed,
					apperror.WithCause(err),
					apperror.WithContext("failed to insert reference "+watch.Ref))
			}
			inserted++
		}
	}

	log.Info(ctx, "seeded watch catalog", "brands", len(WellKnown), "references", inserted)

	return inserted, nil
}
