package arbitrage

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"arbscan/internal/config"
	"arbscan/internal/model"
)

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Publish(ctx context.Context, opportunities []model.ArbitrageOpportunity) error {
	args := m.Called(ctx, opportunities)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) SetLatestPrice(ctx context.Context, price model.TokenPrice) error {
	args := m.Called(ctx, price)
	return args.Error(0)
}

func engineConfig() *config.Config {
	cfg := testConfig()
	cfg.Tokens = map[string]config.TokenConfig{"WETH": {Decimals: 18}}
	cfg.Scanner = config.ScannerConfig{
		TradeSizeUSD:    decimal.NewFromInt(10000),
		MinProfitUSD:    decimal.NewFromInt(5),
		PriceInterval:   time.Second,
		ScanInterval:    time.Second,
		ReportInterval:  time.Second,
		FreshnessWindow: 30 * time.Second,
		HistoryCapacity: 100,
	}
	return cfg
}

func newTestEngine(t *testing.T, src *stubSource) *Engine {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	cfg := engineConfig()
	scanner := NewOpportunityScanner(logger, src, NewCostModel(cfg), cfg.Scanner.MinProfitUSD)
	filter, err := NewThresholdFilter(decimal.Zero)
	require.NoError(t, err)
	return NewEngine(logger, cfg, scanner, filter)
}

func TestEngine_SweepThenScan(t *testing.T) {
	src := &stubSource{prices: map[string]map[string]string{
		"dex_a": {"WETH": "3300.0"},
		"dex_b": {"WETH": "3400.0"},
		"dex_c": {"WETH": "3410.0"},
	}}
	engine := newTestEngine(t, src)

	// Scanning before any sweep must be a no-op, not an error.
	engine.scanCycle(context.Background())
	assert.Empty(t, engine.ActiveOpportunities())

	engine.priceSweep(context.Background())
	engine.scanCycle(context.Background())

	opps := engine.ActiveOpportunities()
	require.Len(t, opps, 1)
	assert.Equal(t, "dex_a", opps[0].BuyExchange)
	assert.Equal(t, "dex_c", opps[0].SellExchange)
	assert.True(t, opps[0].NetProfit.IsPositive())
}

func TestEngine_StaleOpportunitiesDropped(t *testing.T) {
	src := &stubSource{prices: map[string]map[string]string{
		"dex_a": {"WETH": "3300.0"},
		"dex_b": {"WETH": "3400.0"},
	}}
	engine := newTestEngine(t, src)
	engine.priceSweep(context.Background())
	engine.scanCycle(context.Background())

	engine.mu.Lock()
	for i := range engine.active {
		engine.active[i].Timestamp = time.Now().Add(-time.Minute)
	}
	engine.mu.Unlock()

	assert.Empty(t, engine.ActiveOpportunities())
}

func TestEngine_ReportPublishesSnapshot(t *testing.T) {
	src := &stubSource{prices: map[string]map[string]string{
		"dex_a": {"WETH": "3300.0"},
		"dex_b": {"WETH": "3400.0"},
	}}
	engine := newTestEngine(t, src)

	sink := new(MockSink)
	sink.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()
	engine.SetSink(sink)

	engine.priceSweep(context.Background())
	engine.scanCycle(context.Background())
	engine.reportCycle(context.Background())

	sink.AssertExpectations(t)
}

func TestEngine_CacheReceivesSweep(t *testing.T) {
	src := &stubSource{prices: map[string]map[string]string{
		"dex_a": {"WETH": "3300.0"},
		"dex_b": {"WETH": "3400.0"},
		"dex_c": {"WETH": "3410.0"},
	}}
	engine := newTestEngine(t, src)

	cache := new(MockCache)
	cache.On("SetLatestPrice", mock.Anything, mock.Anything).Return(nil).Times(3)
	engine.SetCache(cache)

	engine.priceSweep(context.Background())
	cache.AssertExpectations(t)
}

func TestEngine_TrendTracksHistory(t *testing.T) {
	src := &stubSource{prices: map[string]map[string]string{
		"dex_a": {"WETH": "3300.0"},
		"dex_b": {"WETH": "3400.0"},
	}}
	engine := newTestEngine(t, src)

	engine.priceSweep(context.Background())
	assert.Equal(t, model.TrendFlat, engine.Trend("WETH", "dex_a"))

	src.prices["dex_a"]["WETH"] = "3350.0"
	engine.priceSweep(context.Background())
	assert.Equal(t, model.TrendUp, engine.Trend("WETH", "dex_a"))

	src.prices["dex_a"]["WETH"] = "3200.0"
	engine.priceSweep(context.Background())
	assert.Equal(t, model.TrendDown, engine.Trend("WETH", "dex_a"))

	// Unknown pairs read flat, never panic.
	assert.Equal(t, model.TrendFlat, engine.Trend("WETH", "nowhere"))
}
