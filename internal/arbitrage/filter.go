package arbitrage

import (
	"sort"

	"github.com/shopspring/decimal"

	"arbscan/internal/config"
	"arbscan/internal/model"
)

// ThresholdFilter applies a minimum-net-profit-in-USD cutoff. Pure: it never
// mutates its input.
type ThresholdFilter struct {
	threshold decimal.Decimal
}

// NewThresholdFilter rejects a negative threshold; that is a configuration
// defect, not a runtime condition.
func NewThresholdFilter(threshold decimal.Decimal) (*ThresholdFilter, error) {
	if threshold.IsNegative() {
		return nil, &config.ConfigurationError{Field: "scanner.min_profit_usd", Reason: "must not be negative"}
	}
	return &ThresholdFilter{threshold: threshold}, nil
}

// Apply returns the opportunities with net profit at or above the threshold,
// sorted by descending net profit. Ties sort by token, then buy exchange, so
// the ordering is stable across runs.
func (f *ThresholdFilter) Apply(opportunities []model.ArbitrageOpportunity) []model.ArbitrageOpportunity {
	out := make([]model.ArbitrageOpportunity, 0, len(opportunities))
	for _, opp := range opportunities {
		if opp.NetProfit.GreaterThanOrEqual(f.threshold) {
			out = append(out, opp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].NetProfit.Cmp(out[j].NetProfit); c != 0 {
			return c > 0
		}
		if out[i].Token != out[j].Token {
			return out[i].Token < out[j].Token
		}
		return out[i].BuyExchange < out[j].BuyExchange
	})
	return out
}
