package arbitrage

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"arbscan/internal/exchange"
	"arbscan/internal/model"
)

// ErrInsufficientData marks a token for which fewer than two exchanges
// returned a price this cycle; ErrNoSpread a token whose venues show no
// positive spread. Either way the token is skipped for the cycle only.
var (
	ErrInsufficientData = errors.New("insufficient price data")
	ErrNoSpread         = errors.New("no positive spread")
)

var hundred = decimal.NewFromInt(100)

// OpportunityScanner finds, for each token, the best buy/sell exchange pair
// and computes net profitability against the cost model.
type OpportunityScanner struct {
	logger *slog.Logger
	source exchange.PriceSource
	costs  *CostModel
	// minProfit tags opportunities as profitable; filtering stays the
	// ThresholdFilter's job.
	minProfit decimal.Decimal
}

// NewOpportunityScanner creates a scanner over the given price source and
// cost model.
func NewOpportunityScanner(logger *slog.Logger, source exchange.PriceSource, costs *CostModel, minProfit decimal.Decimal) *OpportunityScanner {
	return &OpportunityScanner{
		logger:    logger,
		source:    source,
		costs:     costs,
		minProfit: minProfit,
	}
}

// FetchPrices queries every exchange for token concurrently and returns the
// prices that arrived. A failing exchange is logged and excluded; it never
// aborts the sweep.
func (s *OpportunityScanner) FetchPrices(ctx context.Context, token string, exchanges []string) []model.TokenPrice {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		prices []model.TokenPrice
	)
	for _, ex := range exchanges {
		wg.Add(1)
		go func(ex string) {
			defer wg.Done()
			price, err := s.source.GetPrice(ctx, token, ex)
			if err != nil {
				s.logger.Warn("price fetch failed, excluding data point",
					"token", token, "exchange", ex, "error", err)
				return
			}
			mu.Lock()
			prices = append(prices, model.TokenPrice{
				Token:     token,
				Exchange:  ex,
				Price:     price,
				Timestamp: time.Now(),
			})
			mu.Unlock()
		}(ex)
	}
	wg.Wait()
	return prices
}

// Scan evaluates each token across all exchanges and returns one opportunity
// per token with a usable spread. Opportunities are emitted regardless of
// sign; only the Profitable tag reflects the minimum-profit setting.
func (s *OpportunityScanner) Scan(ctx context.Context, tokens, exchanges []string, tradeSizeUSD decimal.Decimal) []model.ArbitrageOpportunity {
	var opportunities []model.ArbitrageOpportunity
	for _, token := range tokens {
		prices := s.FetchPrices(ctx, token, exchanges)
		opp, err := s.Evaluate(token, prices, tradeSizeUSD)
		if err != nil {
			if errors.Is(err, ErrInsufficientData) {
				s.logger.Debug("token skipped this cycle", "token", token, "prices", len(prices))
			}
			continue
		}
		opportunities = append(opportunities, opp)
	}
	return opportunities
}

// Evaluate selects the global min as the buy venue and the global max as the
// sell venue, tie-breaking lexicographically by exchange name so repeated
// runs over the same input pick the same pairing.
func (s *OpportunityScanner) Evaluate(token string, prices []model.TokenPrice, tradeSizeUSD decimal.Decimal) (model.ArbitrageOpportunity, error) {
	if len(prices) < 2 {
		return model.ArbitrageOpportunity{}, ErrInsufficientData
	}

	buy, sell := prices[0], prices[0]
	for _, p := range prices[1:] {
		if c := p.Price.Cmp(buy.Price); c < 0 || (c == 0 && p.Exchange < buy.Exchange) {
			buy = p
		}
		if c := p.Price.Cmp(sell.Price); c > 0 || (c == 0 && p.Exchange < sell.Exchange) {
			sell = p
		}
	}

	if buy.Exchange == sell.Exchange || !sell.Price.GreaterThan(buy.Price) {
		return model.ArbitrageOpportunity{}, ErrNoSpread
	}

	// gross = (sell - buy) * (size / buy), i.e. spread times units bought.
	units := tradeSizeUSD.Div(buy.Price)
	gross := sell.Price.Sub(buy.Price).Mul(units)
	costs := s.costs.EstimateCost(tradeSizeUSD, buy.Exchange, sell.Exchange)
	net := gross.Sub(costs.Total)

	return model.ArbitrageOpportunity{
		ID:              uuid.NewString(),
		Token:           token,
		BuyExchange:     buy.Exchange,
		SellExchange:    sell.Exchange,
		BuyPrice:        buy.Price,
		SellPrice:       sell.Price,
		TradeSizeUSD:    tradeSizeUSD,
		GrossProfit:     gross,
		Costs:           costs,
		NetProfit:       net,
		ProfitMarginPct: net.Div(tradeSizeUSD).Mul(hundred),
		Profitable:      net.GreaterThan(s.minProfit),
		Timestamp:       time.Now(),
	}, nil
}
