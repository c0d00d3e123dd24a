package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"arbscan/internal/config"
)

// HTTPSource fetches live prices from per-exchange REST endpoints.
// Every request carries an explicit timeout; a slow or failing feed is
// reported as ErrPriceUnavailable and never blocks a scan cycle.
type HTTPSource struct {
	logger    *slog.Logger
	client    *http.Client
	exchanges map[string]config.ExchangeConfig
	tokens    map[string]config.TokenConfig
}

// NewHTTPSource creates a live price source over the configured endpoints.
func NewHTTPSource(logger *slog.Logger, cfg *config.Config) *HTTPSource {
	return &HTTPSource{
		logger:    logger,
		client:    &http.Client{Timeout: cfg.Source.Timeout},
		exchanges: cfg.Exchanges,
		tokens:    cfg.Tokens,
	}
}

func (s *HTTPSource) Mode() string { return "live" }

// priceResponse is the feed's JSON body. Price comes back as a string so the
// feed can stay exact; a numeric price is also accepted.
type priceResponse struct {
	Token string          `json:"token"`
	Price decimal.Decimal `json:"price"`
}

// GetPrice performs a GET against the exchange's price endpoint.
func (s *HTTPSource) GetPrice(ctx context.Context, token, exchange string) (decimal.Decimal, error) {
	ex, ok := s.exchanges[exchange]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownExchange, exchange)
	}
	if _, ok := s.tokens[token]; !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownToken, token)
	}

	reqURL := fmt.Sprintf("%s/price?token=%s", ex.Endpoint, url.QueryEscape(token))
	ctx, cancel := context.WithTimeout(ctx, s.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, exchange, err)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, exchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: %s: status %d", ErrPriceUnavailable, exchange, resp.StatusCode)
	}

	var body priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: bad response: %v", ErrPriceUnavailable, exchange, err)
	}
	if !body.Price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s: non-positive price %s", ErrPriceUnavailable, exchange, body.Price)
	}

	s.logger.Debug("fetched price",
		"token", token,
		"exchange", exchange,
		"price", body.Price.String(),
		"elapsed", time.Since(start),
	)
	return body.Price, nil
}
