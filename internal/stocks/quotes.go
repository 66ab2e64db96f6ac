// Package stocks proxies the Bursa renewable-energy ticker board, shielding
// the upstream quote provider behind a 15-minute cache.
package stocks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Zhihong0321/ATAP-solar/internal/cache"
	"github.com/Zhihong0321/ATAP-solar/internal/logger"
	"github.com/Zhihong0321/ATAP-solar/internal/models"
	"github.com/go-resty/resty/v2"
)

// Bursa renewable energy tickers shown on the public site.
var tickers = []string{
	"0215.KL", // Solarvest
	"0223.KL", // Samaiden
	"5184.KL", // Cypark
	"0233.KL", // Pekat
	"0262.KL", // Sunview
	"3069.KL", // Mega First
	"0132.KL", // Kinergy Advancement (KAB)
	"0168.KL", // BM Greentech
}

// Upstream names can be verbose; curated display names take precedence.
var nameMap = map[string]string{
	"0215.KL": "Solarvest",
	"0223.KL": "Samaiden",
	"5184.KL": "Cypark",
	"0233.KL": "Pekat",
	"0262.KL": "Sunview",
	"3069.KL": "Mega First",
	"0132.KL": "KAB",
	"0168.KL": "BM Greentech",
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []upstreamQuote `json:"result"`
		Error  *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

type upstreamQuote struct {
	Symbol                     string  `json:"symbol"`
	ShortName                  string  `json:"shortName"`
	RegularMarketPrice         float64 `json:"regularMarketPrice"`
	RegularMarketChange        float64 `json:"regularMarketChange"`
	RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
}

// Service fetches and caches the quote board. The cache check and the
// upstream refresh are not held under one lock; concurrent requests hitting
// an expired cache may each call upstream, which is accepted for this
// request volume since the reads are idempotent.
type Service struct {
	client *resty.Client
	cache  cache.QuoteCache
}

func NewService(baseURL string, quoteCache cache.QuoteCache) *Service {
	return &Service{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second),
		cache: quoteCache,
	}
}

// Quotes returns the ticker board, serving the cached snapshot while it is
// fresh. On upstream failure the cache is left untouched and the error is
// surfaced; there is no stale-if-error fallback.
func (s *Service) Quotes(ctx context.Context) ([]models.Quote, error) {
	if cached, ok := s.cache.Get(ctx); ok {
		return cached, nil
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("symbols", strings.Join(tickers, ",")).
		Get("/v7/finance/quote")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from quote provider", resp.StatusCode())
	}

	var parsed quoteResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse quote response: %w", err)
	}
	if parsed.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quote provider error: %s", parsed.QuoteResponse.Error.Description)
	}

	quotes := make([]models.Quote, 0, len(parsed.QuoteResponse.Result))
	for _, q := range parsed.QuoteResponse.Result {
		quotes = append(quotes, models.Quote{
			Symbol:        q.Symbol,
			Name:          displayName(q),
			Price:         q.RegularMarketPrice,
			Change:        q.RegularMarketChange,
			ChangePercent: q.RegularMarketChangePercent,
		})
	}

	if err := s.cache.Set(ctx, quotes); err != nil {
		logger.WithError(err).Msg("Failed to store quote snapshot")
	}
	return quotes, nil
}

func displayName(q upstreamQuote) string {
	if name, ok := nameMap[q.Symbol]; ok {
		return name
	}
	if q.ShortName != "" {
		return q.ShortName
	}
	return q.Symbol
}
