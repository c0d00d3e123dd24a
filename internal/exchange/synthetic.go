package exchange

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"

	"arbscan/internal/config"
)

// SyntheticSource generates prices as a bounded random walk around each
// token's configured base price, with a per-exchange spread bias so that
// venues drift apart and opportunities actually appear. Used for demo and
// test runs; never mixed with the live source.
type SyntheticSource struct {
	mu        sync.Mutex
	rng       *rand.Rand
	last      map[string]decimal.Decimal // token -> last walked mid price
	base      map[string]decimal.Decimal
	exchanges map[string]config.ExchangeConfig
}

// walkStep bounds a single random-walk step to ±0.25% of the mid price.
const walkStep = 0.0025

// NewSyntheticSource creates a synthetic source. A zero seed yields a fixed
// default so repeated runs stay reproducible.
func NewSyntheticSource(cfg *config.Config) *SyntheticSource {
	seed := cfg.Source.Seed
	if seed == 0 {
		seed = 1
	}
	return &SyntheticSource{
		rng:       rand.New(rand.NewSource(seed)),
		last:      make(map[string]decimal.Decimal),
		base:      cfg.Source.BasePrices,
		exchanges: cfg.Exchanges,
	}
}

func (s *SyntheticSource) Mode() string { return "synthetic" }

// GetPrice walks the token's mid price one step and applies the exchange's
// spread bias.
func (s *SyntheticSource) GetPrice(_ context.Context, token, exchange string) (decimal.Decimal, error) {
	ex, ok := s.exchanges[exchange]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownExchange, exchange)
	}
	base, ok := s.base[token]
	if !ok || !base.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s (no base price configured)", ErrUnknownToken, token)
	}

	s.mu.Lock()
	mid, ok := s.last[token]
	if !ok {
		mid = base
	}
	step := decimal.NewFromFloat((s.rng.Float64()*2 - 1) * walkStep)
	mid = mid.Mul(decimal.NewFromInt(1).Add(step))
	// Keep the walk within ±5% of base so prices stay plausible.
	lo := base.Mul(decimal.NewFromFloat(0.95))
	hi := base.Mul(decimal.NewFromFloat(1.05))
	if mid.LessThan(lo) {
		mid = lo
	} else if mid.GreaterThan(hi) {
		mid = hi
	}
	s.last[token] = mid
	s.mu.Unlock()

	price := mid.Mul(decimal.NewFromInt(1).Add(ex.SpreadBias))
	return price, nil
}
