package arbitrage

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"arbscan/internal/config"
)

func TestCostModel_Breakdown(t *testing.T) {
	costs := NewCostModel(testConfig())

	got := costs.EstimateCost(decimal.NewFromInt(10000), "dex_a", "dex_b")

	assert.True(t, got.GasCost.Equal(decimal.NewFromInt(40)), "gas = %s", got.GasCost)
	assert.True(t, got.SlippageCost.Equal(decimal.NewFromInt(50)), "slippage = %s", got.SlippageCost)
	assert.True(t, got.FlashLoanFee.Equal(decimal.NewFromInt(9)), "flash fee = %s", got.FlashLoanFee)
	assert.True(t, got.ProtocolFees.Equal(decimal.NewFromInt(60)), "protocol = %s", got.ProtocolFees)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(159)), "total = %s", got.Total)
}

func TestCostModel_Deterministic(t *testing.T) {
	costs := NewCostModel(testConfig())
	size := decimal.RequireFromString("12345.67")

	first := costs.EstimateCost(size, "dex_a", "dex_c")
	for i := 0; i < 5; i++ {
		again := costs.EstimateCost(size, "dex_a", "dex_c")
		assert.True(t, first.Total.Equal(again.Total))
		assert.True(t, first.GasCost.Equal(again.GasCost))
		assert.True(t, first.SlippageCost.Equal(again.SlippageCost))
		assert.True(t, first.FlashLoanFee.Equal(again.FlashLoanFee))
		assert.True(t, first.ProtocolFees.Equal(again.ProtocolFees))
	}
}

func TestCostModel_UnknownExchangeUsesDefaultGas(t *testing.T) {
	cfg := testConfig()
	cfg.Exchanges["dex_nogas"] = config.ExchangeConfig{}
	costs := NewCostModel(cfg)

	got := costs.EstimateCost(decimal.NewFromInt(1000), "dex_nogas", "somewhere_else")
	// Both legs fall back to the $20 default.
	assert.True(t, got.GasCost.Equal(decimal.NewFromInt(40)), "gas = %s", got.GasCost)
}

func TestCostModel_TotalIsSumOfParts(t *testing.T) {
	costs := NewCostModel(testConfig())
	got := costs.EstimateCost(decimal.RequireFromString("98765.4321"), "dex_b", "dex_c")

	sum := got.GasCost.Add(got.SlippageCost).Add(got.FlashLoanFee).Add(got.ProtocolFees)
	assert.True(t, got.Total.Equal(sum))
}
