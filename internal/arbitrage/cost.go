package arbitrage

import (
	"github.com/shopspring/decimal"

	"arbscan/internal/config"
	"arbscan/internal/model"
)

var two = decimal.NewFromInt(2)

// CostModel computes the total cost of executing a round-trip flash-loan
// arbitrage trade of a given notional size. Deterministic given its inputs
// and the configured rates; all arithmetic is decimal.
type CostModel struct {
	slippageRate     decimal.Decimal
	flashLoanFeeRate decimal.Decimal
	protocolFeeRate  decimal.Decimal
	gasEstimates     map[string]decimal.Decimal
	defaultGasUSD    decimal.Decimal
}

// NewCostModel builds a cost model from the configured rates and per-exchange
// gas estimates.
func NewCostModel(cfg *config.Config) *CostModel {
	gas := make(map[string]decimal.Decimal, len(cfg.Exchanges))
	for name, ex := range cfg.Exchanges {
		gas[name] = ex.GasEstimateUSD
	}
	return &CostModel{
		slippageRate:     cfg.Costs.SlippageRate,
		flashLoanFeeRate: cfg.Costs.FlashLoanFeeRate,
		protocolFeeRate:  cfg.Costs.ProtocolFeeRate,
		gasEstimates:     gas,
		defaultGasUSD:    decimal.NewFromInt(20),
	}
}

// EstimateCost itemizes the cost of a trade of tradeSizeUSD bought on
// buyExchange and sold on sellExchange. Protocol fees are charged on both
// legs.
func (c *CostModel) EstimateCost(tradeSizeUSD decimal.Decimal, buyExchange, sellExchange string) model.CostBreakdown {
	gas := c.gasEstimate(buyExchange).Add(c.gasEstimate(sellExchange))
	slippage := tradeSizeUSD.Mul(c.slippageRate)
	flashFee := tradeSizeUSD.Mul(c.flashLoanFeeRate)
	protocol := tradeSizeUSD.Mul(c.protocolFeeRate).Mul(two)

	return model.CostBreakdown{
		GasCost:      gas,
		SlippageCost: slippage,
		FlashLoanFee: flashFee,
		ProtocolFees: protocol,
		Total:        gas.Add(slippage).Add(flashFee).Add(protocol),
	}
}

func (c *CostModel) gasEstimate(exchange string) decimal.Decimal {
	if g, ok := c.gasEstimates[exchange]; ok && g.IsPositive() {
		return g
	}
	return c.defaultGasUSD
}
