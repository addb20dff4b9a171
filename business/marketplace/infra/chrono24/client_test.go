package chrono24

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	catalogDomain "watcharb/business/catalog/domain"
	marketApp "watcharb/business/marketplace/app"
	"watcharb/internal/logger"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (l nopLogger) With(args ...any) logger.LoggerInterface          { return l }

const searchPage = `<!DOCTYPE html>
<html><body>
<div class="article-items">
  <a class="article-item" data-article-id="31415926" href="/rolex/submariner--id31415926.htm">
    <img data-lazy-sweet-spot-master-src="https://img.example.com/31415926.jpg" src="placeholder.gif"/>
    <div class="text-bold">Rolex Submariner Date 126610LN</div>
    <div class="text-ellipsis">2022, with box, original papers</div>
    <div class="article-price">$13,450</div>
    <div class="rating">4.8</div>
  </a>
  <a class="article-item" href="/rolex/submariner--id27182818.htm">
    <div class="text-bold">Rolex Submariner 126610LN</div>
    <div class="text-ellipsis">watch only, no box, no papers</div>
    <div class="article-price">$11,900</div>
  </a>
  <a class="article-item" data-article-id="16180339" href="/rolex/submariner--id16180339.htm">
    <div class="text-bold">Rolex Submariner bezel insert</div>
    <div class="article-price">$250</div>
  </a>
  <a class="article-item" data-article-id="00000000" href="/rolex/broken.htm">
    <div class="text-bold">No price card</div>
  </a>
</div>
</body></html>`

func TestClient_Search(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != searchPath {
			t.Errorf("path = %s, want %s", r.URL.Path, searchPath)
		}
		gotQuery = r.URL.Query().Get("query")
		if r.URL.Query().Get("dosearch") != "true" {
			t.Error("dosearch param missing")
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(searchPage))
	}))
	defer server.Close()

	client := NewClient(Config{
		Enabled:           true,
		BaseURL:           server.URL,
		RequestsPerMinute: 600,
	}, nopLogger{})

	results, err := client.Search(context.Background(), "Rolex 126610LN", marketApp.SearchOptions{
		MinPriceUSD: decimal.RequireFromString("3000"),
		Limit:       50,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if gotQuery != "Rolex 126610LN" {
		t.Errorf("query param = %q", gotQuery)
	}

	// The bezel insert is under the price floor and the priceless card is
	// skipped, so two listings survive.
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	first := results[0]
	if first.ExternalID != "31415926" {
		t.Errorf("external id = %s", first.ExternalID)
	}
	if want := decimal.RequireFromString("13450"); !first.PriceUSD.Equal(want) {
		t.Errorf("price = %s, want %s", first.PriceUSD, want)
	}
	if first.BoxPapers != catalogDomain.BoxPapersFullSet {
		t.Errorf("box/papers = %s, want full set", first.BoxPapers)
	}
	if first.SellerRating < 95.9 || first.SellerRating > 96.1 {
		t.Errorf("seller rating = %v, want ~96", first.SellerRating)
	}
	if first.ListingURL != server.URL+"/rolex/submariner--id31415926.htm" {
		t.Errorf("listing url = %s", first.ListingURL)
	}
	if first.ImageURL != "https://img.example.com/31415926.jpg" {
		t.Errorf("image url = %s", first.ImageURL)
	}

	second := results[1]
	if second.ExternalID != "27182818" {
		t.Errorf("id from href = %s, want 27182818", second.ExternalID)
	}
	if second.BoxPapers != catalogDomain.BoxPapersNone {
		t.Errorf("box/papers = %s, want none", second.BoxPapers)
	}
}

func TestClient_SearchDisabled(t *testing.T) {
	client := NewClient(Config{Enabled: false}, nopLogger{})

	results, err := client.Search(context.Background(), "anything", marketApp.SearchOptions{})
	if err != nil {
		t.Fatalf("disabled client should not error: %v", err)
	}
	if results != nil {
		t.Fatalf("disabled client should return nothing, got %d", len(results))
	}
}

func TestClient_SearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{
		Enabled:           true,
		BaseURL:           server.URL,
		RequestsPerMinute: 600,
	}, nopLogger{})

	if _, err := client.Search(context.Background(), "Rolex", marketApp.SearchOptions{}); err == nil {
		t.Fatal("expected an error on HTTP 503")
	}
}

func TestIDFromHref(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/rolex/submariner--id12345678.htm", "12345678"},
		{"/rolex/no-id-here.htm", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := idFromHref(tt.href); got != tt.want {
			t.Errorf("idFromHref(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"$12,500", "12500"},
		{"12.500 €", "12500"},
		{"Price on request", "0"},
		{"", "0"},
	}
	for _, tt := range tests {
		if got := parsePrice(tt.text); !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("parsePrice(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestDetectBoxPapersSignals(t *testing.T) {
	tests := []struct {
		text string
		want catalogDomain.BoxPapersStatus
	}{
		{"2022 full set", catalogDomain.BoxPapersFullSet},
		{"with box, original papers", catalogDomain.BoxPapersFullSet},
		{"original papers, service 2023", catalogDomain.BoxPapersPapersOnly},
		{"original box included", catalogDomain.BoxPapersBoxOnly},
		{"no box, no papers", catalogDomain.BoxPapersNone},
		{"excellent condition", catalogDomain.BoxPapersUnknown},
	}
	for _, tt := range tests {
		if got := detectBoxPapers(tt.text); got != tt.want {
			t.Errorf("detectBoxPapers(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}
