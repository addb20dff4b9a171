package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	arbApp "watcharb/business/arbitrage/app"
	arbDomain "watcharb/business/arbitrage/domain"
	catalogDomain "watcharb/business/catalog/domain"
	listingDomain "watcharb/business/listing/domain"
	"watcharb/internal/store"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, letting the same
// statements run inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL-backed repository for catalog, listing and
// opportunity data.
type Store struct {
	pool *pgxpool.Pool
	q    querier
}

// NewStore wraps an already-connected pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// InTx runs fn inside a single database transaction.
func (s *Store) InTx(ctx context.Context, fn func(arbApp.Repository) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}

	txStore := &Store{pool: s.pool, q: tx}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit tx: %w", err)
	}
	return nil
}

func (s *Store) InsertBrand(ctx context.Context, brand catalogDomain.Brand) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO brands (name, slug)
		VALUES ($1, $2)
		RETURNING id`,
		brand.Name, brand.Slug,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, store.ErrDuplicateKey
		}
		return 0, fmt.Errorf("postgres: insert brand: %w", err)
	}
	return id, nil
}

func (s *Store) InsertReference(ctx context.Context, ref catalogDomain.WatchReference) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO watch_references
			(brand_id, reference_number, model_name, collection, case_size_mm, movement, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		ref.BrandID, ref.ReferenceNumber, ref.ModelName, ref.Collection,
		ref.CaseSizeMM, ref.Movement, ref.ImageURL,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, store.ErrDuplicateKey
		}
		return 0, fmt.Errorf("postgres: insert reference: %w", err)
	}
	return id, nil
}

func (s *Store) CountReferences(ctx context.Context) (int, error) {
	var n int
	if err := s.q.QueryRow(ctx, `SELECT COUNT(*) FROM watch_references`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count references: %w", err)
	}
	return n, nil
}

func (s *Store) ListReferences(ctx context.Context) ([]catalogDomain.WatchReference, error) {
	rows, err := s.q.Query(ctx, `
		SELECT r.id, r.brand_id, b.name, r.reference_number, r.model_name,
		       r.collection, r.case_size_mm, r.movement, r.image_url
		FROM watch_references r
		JOIN brands b ON b.id = r.brand_id
		ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list references: %w", err)
	}
	defer rows.Close()

	var refs []catalogDomain.WatchReference
	for rows.Next() {
		var r catalogDomain.WatchReference
		if err := rows.Scan(&r.ID, &r.BrandID, &r.BrandName, &r.ReferenceNumber,
			&r.ModelName, &r.Collection, &r.CaseSizeMM, &r.Movement, &r.ImageURL); err != nil {
			return nil, fmt.Errorf("postgres: scan reference: %w", err)
		}
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list references: %w", err)
	}
	return refs, nil
}

// UpsertListing inserts a listing or, when the platform+external id pair
// already exists, refreshes its price, activity flag and scrape time. The
// returned bool reports whether a new row was created.
func (s *Store) UpsertListing(ctx context.Context, l *listingDomain.Listing) (bool, error) {
	var created bool
	err := s.q.QueryRow(ctx, `
		INSERT INTO listings
			(reference_id, platform, external_id, price, currency, price_usd,
			 box_papers, condition, seller_name, seller_rating, listing_url,
			 image_url, location, is_active, scraped_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, TRUE, $14, NOW())
		ON CONFLICT (platform, external_id) DO UPDATE SET
			price      = EXCLUDED.price,
			price_usd  = EXCLUDED.price_usd,
			is_active  = TRUE,
			scraped_at = EXCLUDED.scraped_at
		RETURNING id, (xmax = 0)`,
		l.WatchReferenceID, l.Platform, l.ExternalID, l.Price, l.Currency,
		l.PriceUSD, l.BoxPapers, l.Condition, l.SellerName, l.SellerRating,
		l.ListingURL, l.ImageURL, l.Location, l.ScrapedAt,
	).Scan(&l.ID, &created)
	if err != nil {
		return false, fmt.Errorf("postgres: upsert listing: %w", err)
	}
	return created, nil
}

// MarkStaleListings deactivates active listings last seen before cutoff and
// returns how many rows changed.
func (s *Store) MarkStaleListings(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE listings SET is_active = FALSE
		WHERE is_active AND scraped_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: mark stale listings: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) ListActiveListings(ctx context.Context, referenceID int64) ([]listingDomain.Listing, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, reference_id, platform, external_id, price, currency,
		       price_usd, box_papers, condition, seller_name, seller_rating,
		       listing_url, image_url, location, is_active, scraped_at, created_at
		FROM listings
		WHERE reference_id = $1 AND is_active
		ORDER BY price_usd`, referenceID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active listings: %w", err)
	}
	defer rows.Close()

	var listings []listingDomain.Listing
	for rows.Next() {
		var l listingDomain.Listing
		if err := rows.Scan(&l.ID, &l.WatchReferenceID, &l.Platform, &l.ExternalID,
			&l.Price, &l.Currency, &l.PriceUSD, &l.BoxPapers, &l.Condition,
			&l.SellerName, &l.SellerRating, &l.ListingURL, &l.ImageURL,
			&l.Location, &l.IsActive, &l.ScrapedAt, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list active listings: %w", err)
	}
	return listings, nil
}

func (s *Store) InsertMarketPrice(ctx context.Context, mp listingDomain.MarketPrice) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO market_prices
			(reference_id, box_papers, market_price_usd, dealer_price_usd, source, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		mp.WatchReferenceID, mp.BoxPapers, mp.MarketPriceUSD,
		mp.DealerPriceUSD, mp.Source, mp.RecordedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert market price: %w", err)
	}
	return id, nil
}

func (s *Store) ListMarketPrices(ctx context.Context, referenceID int64) ([]listingDomain.MarketPrice, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, reference_id, box_papers, market_price_usd, dealer_price_usd,
		       source, recorded_at
		FROM market_prices
		WHERE reference_id = $1
		ORDER BY recorded_at DESC`, referenceID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list market prices: %w", err)
	}
	defer rows.Close()

	var prices []listingDomain.MarketPrice
	for rows.Next() {
		var mp listingDomain.MarketPrice
		if err := rows.Scan(&mp.ID, &mp.WatchReferenceID, &mp.BoxPapers,
			&mp.MarketPriceUSD, &mp.DealerPriceUSD, &mp.Source, &mp.RecordedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan market price: %w", err)
		}
		prices = append(prices, mp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list market prices: %w", err)
	}
	return prices, nil
}

func (s *Store) DeactivateOpportunities(ctx context.Context) error {
	if _, err := s.q.Exec(ctx,
		`UPDATE arbitrage_opportunities SET is_active = FALSE WHERE is_active`,
	); err != nil {
		return fmt.Errorf("postgres: deactivate opportunities: %w", err)
	}
	return nil
}

func (s *Store) InsertOpportunities(ctx context.Context, opps []*arbDomain.Opportunity) error {
	for _, o := range opps {
		var sellPlatform *string
		if o.SellPlatform != nil {
			v := string(*o.SellPlatform)
			sellPlatform = &v
		}
		_, err := s.q.Exec(ctx, `
			INSERT INTO arbitrage_opportunities
				(id, listing_id, reference_id, opportunity_type, buy_price_usd,
				 buy_platform, box_papers, est_sell_price_usd, sell_platform,
				 fair_market_value, discount_pct, platform_fee_usd, shipping_usd,
				 est_profit_usd, roi_pct, confidence_score, is_active, found_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
			o.ID, o.ListingID, o.WatchReferenceID, o.Type, o.BuyPrice,
			o.BuyPlatform, o.BoxPapers, o.EstimatedSellPrice, sellPlatform,
			o.FairMarketValue, o.DiscountToMarketPct, o.PlatformFeeEstimate,
			o.ShippingEstimate, o.EstimatedProfit, o.ROIPercent,
			o.ConfidenceScore, o.IsActive, o.FoundAt,
		)
		if err != nil {
			return fmt.Errorf("postgres: insert opportunity: %w", err)
		}
	}
	return nil
}

func (s *Store) ListActiveOpportunities(ctx context.Context) ([]arbDomain.Opportunity, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, listing_id, reference_id, opportunity_type, buy_price_usd,
		       buy_platform, box_papers, est_sell_price_usd, sell_platform,
		       fair_market_value, discount_pct, platform_fee_usd, shipping_usd,
		       est_profit_usd, roi_pct, confidence_score, is_active, found_at
		FROM arbitrage_opportunities
		WHERE is_active
		ORDER BY est_profit_usd DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active opportunities: %w", err)
	}
	defer rows.Close()

	var opps []arbDomain.Opportunity
	for rows.Next() {
		var (
			o            arbDomain.Opportunity
			sellPlatform *string
		)
		if err := rows.Scan(&o.ID, &o.ListingID, &o.WatchReferenceID, &o.Type,
			&o.BuyPrice, &o.BuyPlatform, &o.BoxPapers, &o.EstimatedSellPrice,
			&sellPlatform, &o.FairMarketValue, &o.DiscountToMarketPct,
			&o.PlatformFeeEstimate, &o.ShippingEstimate, &o.EstimatedProfit,
			&o.ROIPercent, &o.ConfidenceScore, &o.IsActive, &o.FoundAt); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		if sellPlatform != nil {
			p := catalogDomain.Platform(*sellPlatform)
			o.SellPlatform = &p
		}
		opps = append(opps, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list active opportunities: %w", err)
	}
	return opps, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
