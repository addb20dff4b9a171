// Package ebay provides the eBay Browse API marketplace client.
package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	catalogDomain "watcharb/business/catalog/domain"
	marketApp "watcharb/business/marketplace/app"
	"watcharb/business/marketplace/domain"
	"watcharb/internal/apperror"
	"watcharb/internal/circuitbreaker"
	"watcharb/internal/httpclient"
	"watcharb/internal/logger"
	"watcharb/internal/ratelimit"
)

const (
	tracerName = "watcharb/business/marketplace/infra/ebay"

	oauthEndpoint  = "/identity/v1/oauth2/token"
	searchEndpoint = "/buy/browse/v1/item_summary/search"
	oauthScope     = "https://api.ebay.com/oauth/api_scope"

	// Browse API category for wristwatches.
	wristwatchCategoryID = "31387"

	// Tokens are refreshed this long before their reported expiry.
	tokenSafetyMargin = 60 * time.Second

	defaultTimeout = 10 * time.Second
)

// Config holds eBay client configuration.
type Config struct {
	ClientID          string
	ClientSecret      string
	BaseURL           string
	MarketplaceID     string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client queries the eBay Browse API and normalizes item summaries.
type Client struct {
	client  httpclient.Client
	config  Config
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[*searchResponse]
	logger  logger.LoggerInterface
	tracer  trace.Tracer

	tokenMu      sync.Mutex
	accessToken  string
	tokenExpires time.Time
}

// NewClient creates a new eBay Browse API client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, apperror.New(apperror.CodeEBayAuthFailed,
			apperror.WithContext("client id and secret are required"))
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	httpClient, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("ebay"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	breakerCfg := circuitbreaker.DefaultConfig("ebay-browse")
	breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Info(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	return &Client{
		client:  httpClient,
		config:  cfg,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[*searchResponse](breakerCfg),
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// Platform identifies this client as the eBay integration.
func (c *Client) Platform() catalogDomain.Platform {
	return catalogDomain.PlatformEBay
}

// tokenResponse is the OAuth client-credentials grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// token returns a cached OAuth application token, requesting a new one when
// the cached token is missing or near expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpires) {
		return c.accessToken, nil
	}

	ctx, span := c.tracer.Start(ctx, "ebay.oauth.token")
	defer span.End()

	var result tokenResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.Label{Key: "endpoint", Value: "oauth"}),
	).
		SetBasicAuth(c.config.ClientID, c.config.ClientSecret).
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
			"scope":      oauthScope,
		}).
		SetResult(&result).
		Post(ctx, oauthEndpoint)

	if err != nil {
		span.RecordError(err)
		return "", apperror.New(apperror.CodeEBayAuthFailed,
			apperror.WithCause(err),
			apperror.WithContext("oauth token request failed"))
	}
	if resp.IsError() {
		return "", apperror.New(apperror.CodeEBayAuthFailed,
			apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
	}
	if result.AccessToken == "" {
		return "", apperror.New(apperror.CodeEBayAuthFailed,
			apperror.WithContext("oauth response carried no access token"))
	}

	c.accessToken = result.AccessToken
	c.tokenExpires = time.Now().Add(time.Duration(result.ExpiresIn)*time.Second - tokenSafetyMargin)

	c.logger.Debug(ctx, "refreshed ebay access token", "expires_in", result.ExpiresIn)

	return c.accessToken, nil
}

// searchResponse is the Browse API item_summary/search payload, reduced to
// the fields the normalizer reads.
type searchResponse struct {
	Total         int           `json:"total"`
	ItemSummaries []itemSummary `json:"itemSummaries"`
}

type itemSummary struct {
	ItemID    string `json:"itemId"`
	Title     string `json:"title"`
	Condition string `json:"condition"`
	Price     struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
	} `json:"price"`
	Seller struct {
		Username           string `json:"username"`
		FeedbackPercentage string `json:"feedbackPercentage"`
	} `json:"seller"`
	ItemWebURL string `json:"itemWebUrl"`
	Image      struct {
		ImageURL string `json:"imageUrl"`
	} `json:"image"`
	ItemLocation struct {
		Country string `json:"country"`
	} `json:"itemLocation"`
}

// Search queries the Browse API for listings matching the query, bounded to
// the wristwatch category and the given price window.
func (c *Client) Search(ctx context.Context, query string, opts marketApp.SearchOptions) ([]domain.SearchResult, error) {
	ctx, span := c.tracer.Start(ctx, "ebay.search",
		trace.WithAttributes(
			attribute.String("query", query),
			attribute.Int("limit", opts.Limit),
		),
	)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return nil, err
	}

	token, err := c.token(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result, err := c.breaker.Execute(func() (*searchResponse, error) {
		return c.search(ctx, token, query, opts)
	})
	if err != nil {
		span.RecordError(err)
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, apperror.New(apperror.CodeCircuitOpen,
				apperror.WithCause(err),
				apperror.WithContext("ebay browse breaker open"))
		}
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(result.ItemSummaries))
	for _, item := range result.ItemSummaries {
		results = append(results, c.normalize(item, query))
	}

	span.SetAttributes(attribute.Int("results", len(results)))
	c.logger.Debug(ctx, "ebay search complete", "query", query, "results", len(results))

	return results, nil
}

func (c *Client) search(ctx context.Context, token, query string, opts marketApp.SearchOptions) (*searchResponse, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	var result searchResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.Label{Key: "endpoint", Value: "item_summary_search"}),
		httpclient.WithResponseErrorHandler(ebayErrorHandler),
	).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("X-EBAY-C-MARKETPLACE-ID", c.config.MarketplaceID).
		SetQueryParam("q", query).
		SetQueryParam("filter", c.priceFilter(opts)).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetQueryParam("sort", "price").
		SetResult(&result).
		Get(ctx, searchEndpoint)

	if err != nil {
		if resp != nil && resp.StatusCode == 429 {
			return nil, apperror.New(apperror.CodeEBayRateLimited,
				apperror.WithCause(err),
				apperror.WithContext("browse api rate limit"))
		}
		return nil, apperror.New(apperror.CodeEBayAPIError,
			apperror.WithCause(err),
			apperror.WithContext("item summary search failed"))
	}
	if resp.IsError() {
		return nil, apperror.New(apperror.CodeEBayAPIError,
			apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	return &result, nil
}

// priceFilter builds the Browse API price window filter, e.g.
// "price:[3000..],categoryIds:{31387}".
func (c *Client) priceFilter(opts marketApp.SearchOptions) string {
	var sb strings.Builder
	sb.WriteString("price:[")
	sb.WriteString(opts.MinPriceUSD.StringFixed(0))
	sb.WriteString("..")
	if opts.MaxPriceUSD.IsPositive() {
		sb.WriteString(opts.MaxPriceUSD.StringFixed(0))
	}
	sb.WriteString("],categoryIds:{")
	sb.WriteString(wristwatchCategoryID)
	sb.WriteString("}")
	return sb.String()
}

// normalize converts one item summary to the common listing schema. Currency
// conversion is a pass-through: price_usd mirrors price.
func (c *Client) normalize(item itemSummary, searchQuery string) domain.SearchResult {
	price, err := decimal.NewFromString(item.Price.Value)
	if err != nil {
		price = decimal.Zero
	}

	rating, _ := strconv.ParseFloat(item.Seller.FeedbackPercentage, 64)

	return domain.SearchResult{
		Platform:     catalogDomain.PlatformEBay,
		ExternalID:   item.ItemID,
		Title:        item.Title,
		Price:        price,
		Currency:     nonEmpty(item.Price.Currency, "USD"),
		PriceUSD:     price,
		BoxPapers:    domain.DetectBoxPapers(item.Title),
		Condition:    item.Condition,
		SellerName:   item.Seller.Username,
		SellerRating: rating,
		ListingURL:   item.ItemWebURL,
		ImageURL:     item.Image.ImageURL,
		Location:     item.ItemLocation.Country,
		SearchQuery:  searchQuery,
	}
}

func nonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// ebayAPIError is the Browse API error envelope.
type ebayAPIError struct {
	Errors []struct {
		ErrorID int    `json:"errorId"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (e *ebayAPIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("ebay API error %d: %s", e.Errors[0].ErrorID, e.Errors[0].Message)
	}
	return "ebay API error"
}

// ebayErrorHandler parses Browse API error responses.
func ebayErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr ebayAPIError
		if err := json.Unmarshal(body, &apiErr); err == nil && len(apiErr.Errors) > 0 {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}
