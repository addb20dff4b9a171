// Package chrono24 provides the Chrono24 marketplace client. Chrono24 has no
// public API, so listings are scraped from the search results page.
package chrono24

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	catalogDomain "watcharb/business/catalog/domain"
	marketApp "watcharb/business/marketplace/app"
	"watcharb/business/marketplace/domain"
	"watcharb/internal/apperror"
	"watcharb/internal/logger"
	"watcharb/internal/ratelimit"
)

const (
	tracerName = "watcharb/business/marketplace/infra/chrono24"

	searchPath     = "/search/index.htm"
	defaultTimeout = 15 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var priceDigits = regexp.MustCompile(`[^0-9]`)

// Config holds Chrono24 client configuration.
type Config struct {
	Enabled           bool
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client scrapes Chrono24 search results into normalized listings.
type Client struct {
	http    *http.Client
	config  Config
	limiter *ratelimit.Limiter
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewClient creates a new Chrono24 scraper client.
func NewClient(cfg Config, log logger.LoggerInterface) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		config:  cfg,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}
}

// Available reports whether the integration is enabled in configuration.
func (c *Client) Available() bool {
	return c.config.Enabled
}

// Platform identifies this client as the Chrono24 integration.
func (c *Client) Platform() catalogDomain.Platform {
	return catalogDomain.PlatformChrono24
}

// Search scrapes the search results page for the query and returns listings
// within the price window.
func (c *Client) Search(ctx context.Context, query string, opts marketApp.SearchOptions) ([]domain.SearchResult, error) {
	ctx, span := c.tracer.Start(ctx, "chrono24.search",
		trace.WithAttributes(
			attribute.String("query", query),
			attribute.Int("limit", opts.Limit),
		),
	)
	defer span.End()

	if !c.config.Enabled {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("dosearch", "true")
	params.Set("pageSize", strconv.Itoa(limit))
	params.Set("sortorder", "1") // price ascending

	searchURL := strings.TrimSuffix(c.config.BaseURL, "/") + searchPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeChrono24Unavailable,
			apperror.WithCause(err),
			apperror.WithContext("search request failed"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.New(apperror.CodeChrono24Unavailable,
			apperror.WithContext(fmt.Sprintf("HTTP %d", resp.StatusCode)))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeChrono24ParseError,
			apperror.WithCause(err),
			apperror.WithContext("failed to parse search results page"))
	}

	results := c.parseResults(doc, query, opts)

	span.SetAttributes(attribute.Int("results", len(results)))
	c.logger.Debug(ctx, "chrono24 search complete", "query", query, "results", len(results))

	return results, nil
}

// parseResults extracts listing cards from the results document. Cards that
// fail to yield an id and a price are skipped rather than failing the scan.
func (c *Client) parseResults(doc *goquery.Document, query string, opts marketApp.SearchOptions) []domain.SearchResult {
	var results []domain.SearchResult

	doc.Find("a.article-item, div.article-item-container").Each(func(_ int, s *goquery.Selection) {
		id := s.AttrOr("data-article-id", "")
		if id == "" {
			if href := s.AttrOr("href", ""); href != "" {
				id = idFromHref(href)
			}
		}
		if id == "" {
			return
		}

		title := strings.TrimSpace(s.Find(".text-bold, .article-title").First().Text())
		description := strings.TrimSpace(s.Find(".text-ellipsis, .article-description").First().Text())

		price := parsePrice(s.Find(".article-price, .price").First().Text())
		if price.IsZero() {
			return
		}
		if price.LessThan(opts.MinPriceUSD) {
			return
		}
		if opts.MaxPriceUSD.IsPositive() && price.GreaterThan(opts.MaxPriceUSD) {
			return
		}

		listingURL := s.AttrOr("href", "")
		if listingURL != "" && !strings.HasPrefix(listingURL, "http") {
			listingURL = strings.TrimSuffix(c.config.BaseURL, "/") + listingURL
		}

		imageURL := s.Find("img").First().AttrOr("data-lazy-sweet-spot-master-src", "")
		if imageURL == "" {
			imageURL = s.Find("img").First().AttrOr("src", "")
		}

		sellerRating := parseRating(s.Find(".rating, .article-rating").First().Text())
		location := strings.TrimSpace(s.Find(".article-location, .js-tooltip").First().AttrOr("data-content", ""))

		results = append(results, domain.SearchResult{
			Platform:     catalogDomain.PlatformChrono24,
			ExternalID:   id,
			Title:        title,
			Price:        price,
			Currency:     "USD",
			PriceUSD:     price, // conversion is a pass-through
			BoxPapers:    detectBoxPapers(title + " " + description),
			Condition:    strings.TrimSpace(s.Find(".article-condition").First().Text()),
			SellerName:   strings.TrimSpace(s.Find(".article-merchant-name").First().Text()),
			SellerRating: sellerRating,
			ListingURL:   listingURL,
			ImageURL:     imageURL,
			Location:     location,
			SearchQuery:  query,
		})
	})

	return results
}

// idFromHref pulls the numeric article id out of a listing URL like
// /rolex/submariner--id12345678.htm.
func idFromHref(href string) string {
	idx := strings.LastIndex(href, "--id")
	if idx < 0 {
		return ""
	}
	id := href[idx+4:]
	return strings.TrimSuffix(id, ".htm")
}

// parsePrice strips currency symbols and separators, e.g. "$12,500" -> 12500.
func parsePrice(text string) decimal.Decimal {
	digits := priceDigits.ReplaceAllString(text, "")
	if digits == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero
	}
	return v
}

// parseRating reads a "4.8" style rating and scales it to a percentage.
func parseRating(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.Fields(text)[0], 64)
	if err != nil {
		return 0
	}
	if v <= 5 {
		return v / 5 * 100
	}
	return v
}

// detectBoxPapers classifies completeness from Chrono24 card text. Chrono24
// descriptions name box and papers separately, so the box/papers signals are
// combined instead of matched in priority order.
func detectBoxPapers(text string) catalogDomain.BoxPapersStatus {
	text = strings.ToLower(text)

	for _, p := range []string{
		"full set", "box and papers", "box & papers", "b&p",
		"complete set", "with box, papers",
	} {
		if strings.Contains(text, p) {
			return catalogDomain.BoxPapersFullSet
		}
	}

	hasPapers := containsAny(text, "papers only", "with papers", "original papers", "warranty card")
	hasBox := containsAny(text, "with box", "original box", "inner box", "outer box")
	noPapers := containsAny(text, "no papers", "without papers")
	noBox := containsAny(text, "no box", "without box")

	switch {
	case hasPapers && hasBox:
		return catalogDomain.BoxPapersFullSet
	case hasPapers:
		return catalogDomain.BoxPapersPapersOnly
	case hasBox:
		return catalogDomain.BoxPapersBoxOnly
	case noBox && noPapers:
		return catalogDomain.BoxPapersNone
	}

	return catalogDomain.BoxPapersUnknown
}

func containsAny(text string, patterns ...string) bool {
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
