package arbitrage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"arbscan/internal/config"
	"arbscan/internal/model"
)

// Sink receives the opportunities of a reporting cycle.
type Sink interface {
	Publish(ctx context.Context, opportunities []model.ArbitrageOpportunity) error
}

// PriceCache receives best-effort latest-price writes from the price loop.
type PriceCache interface {
	SetLatestPrice(ctx context.Context, price model.TokenPrice) error
}

// Engine owns the shared scan state and drives the three periodic loops:
// price updates, opportunity scans, and reporting. The loops run as separate
// goroutines, so every access to the shared maps goes through the mutex.
type Engine struct {
	logger  *slog.Logger
	cfg     *config.Config
	scanner *OpportunityScanner
	filter  *ThresholdFilter
	sink    Sink
	cache   PriceCache

	mu      sync.RWMutex
	latest  map[string]map[string]model.TokenPrice // token -> exchange -> price
	history map[string]map[string]*model.PriceHistory
	active  []model.ArbitrageOpportunity
	priced  bool // at least one price sweep has completed

	tokens    []string
	exchanges []string
}

// NewEngine creates an engine over the configured tokens and exchanges.
func NewEngine(logger *slog.Logger, cfg *config.Config, scanner *OpportunityScanner, filter *ThresholdFilter) *Engine {
	tokens := make([]string, 0, len(cfg.Tokens))
	for t := range cfg.Tokens {
		tokens = append(tokens, t)
	}
	exchanges := make([]string, 0, len(cfg.Exchanges))
	for e := range cfg.Exchanges {
		exchanges = append(exchanges, e)
	}
	return &Engine{
		logger:    logger,
		cfg:       cfg,
		scanner:   scanner,
		filter:    filter,
		latest:    make(map[string]map[string]model.TokenPrice),
		history:   make(map[string]map[string]*model.PriceHistory),
		tokens:    tokens,
		exchanges: exchanges,
	}
}

// SetSink wires the reporting sink. Without one the report loop idles.
func (e *Engine) SetSink(sink Sink) { e.sink = sink }

// SetCache wires the optional latest-price cache.
func (e *Engine) SetCache(cache PriceCache) { e.cache = cache }

// Run drives the three loops until ctx is cancelled. An initial price sweep
// runs before the tickers start so the first scan has data to work with.
func (e *Engine) Run(ctx context.Context) {
	e.priceSweep(ctx)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		e.loop(ctx, e.cfg.Scanner.PriceInterval, e.priceSweep)
	}()
	go func() {
		defer wg.Done()
		e.loop(ctx, e.cfg.Scanner.ScanInterval, e.scanCycle)
	}()
	go func() {
		defer wg.Done()
		e.loop(ctx, e.cfg.Scanner.ReportInterval, e.reportCycle)
	}()
	wg.Wait()
}

func (e *Engine) loop(ctx context.Context, interval time.Duration, step func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			step(ctx)
		}
	}
}

// priceSweep refreshes the latest price and history for every token/exchange
// pair. Failed fetches are already excluded by the scanner.
func (e *Engine) priceSweep(ctx context.Context) {
	for _, token := range e.tokens {
		prices := e.scanner.FetchPrices(ctx, token, e.exchanges)

		e.mu.Lock()
		for _, p := range prices {
			if e.latest[p.Token] == nil {
				e.latest[p.Token] = make(map[string]model.TokenPrice)
			}
			e.latest[p.Token][p.Exchange] = p

			if e.history[p.Token] == nil {
				e.history[p.Token] = make(map[string]*model.PriceHistory)
			}
			h := e.history[p.Token][p.Exchange]
			if h == nil {
				h = model.NewPriceHistory(e.cfg.Scanner.HistoryCapacity)
				e.history[p.Token][p.Exchange] = h
			}
			h.Push(p)
		}
		if len(prices) > 0 {
			e.priced = true
		}
		e.mu.Unlock()

		if e.cache != nil {
			for _, p := range prices {
				if err := e.cache.SetLatestPrice(ctx, p); err != nil {
					e.logger.Warn("price cache write failed", "token", p.Token, "exchange", p.Exchange, "error", err)
				}
			}
		}
	}
}

// scanCycle evaluates the latest price snapshot and replaces the active
// opportunity set. Most recent scan wins; cycles are not deduplicated.
func (e *Engine) scanCycle(_ context.Context) {
	snapshot, ready := e.priceSnapshot()
	if !ready {
		e.logger.Debug("scan skipped, no price sweep has completed yet")
		return
	}

	var found []model.ArbitrageOpportunity
	for token, byExchange := range snapshot {
		prices := make([]model.TokenPrice, 0, len(byExchange))
		for _, p := range byExchange {
			prices = append(prices, p)
		}
		opp, err := e.scanner.Evaluate(token, prices, e.cfg.Scanner.TradeSizeUSD)
		if err != nil {
			continue
		}
		found = append(found, opp)
	}

	filtered := e.filter.Apply(found)

	e.mu.Lock()
	e.active = filtered
	e.mu.Unlock()

	e.logger.Info("scan cycle complete", "evaluated", len(snapshot), "found", len(found), "kept", len(filtered))
}

// reportCycle publishes a copy of the non-stale active opportunities.
func (e *Engine) reportCycle(ctx context.Context) {
	if e.sink == nil {
		return
	}
	opportunities := e.ActiveOpportunities()
	if err := e.sink.Publish(ctx, opportunities); err != nil {
		e.logger.Error("publish failed", "error", err)
	}
}

// priceSnapshot copies the latest-price map so evaluation runs without
// holding the lock.
func (e *Engine) priceSnapshot() (map[string]map[string]model.TokenPrice, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.priced {
		return nil, false
	}
	snapshot := make(map[string]map[string]model.TokenPrice, len(e.latest))
	for token, byExchange := range e.latest {
		inner := make(map[string]model.TokenPrice, len(byExchange))
		for ex, p := range byExchange {
			inner[ex] = p
		}
		snapshot[token] = inner
	}
	return snapshot, true
}

// ActiveOpportunities returns a copy of the current opportunity set with
// stale entries dropped.
func (e *Engine) ActiveOpportunities() []model.ArbitrageOpportunity {
	now := time.Now()
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.ArbitrageOpportunity, 0, len(e.active))
	for _, opp := range e.active {
		if opp.IsStale(now, e.cfg.Scanner.FreshnessWindow) {
			continue
		}
		out = append(out, opp)
	}
	return out
}

// Trend reports the short-term price direction for a token on an exchange,
// for display only.
func (e *Engine) Trend(token, exchange string) model.Trend {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if byExchange, ok := e.history[token]; ok {
		if h, ok := byExchange[exchange]; ok {
			return h.Trend()
		}
	}
	return model.TrendFlat
}
