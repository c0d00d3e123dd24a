package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenPrice represents a single observed price for a token on an exchange.
type TokenPrice struct {
	Token     string          `json:"token"`
	Exchange  string          `json:"exchange"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
	// Liquidity is the quoted depth in USD, zero when the source does not report it.
	Liquidity decimal.Decimal `json:"liquidity,omitempty"`
}

// CostBreakdown itemizes the cost of executing a round-trip arbitrage trade.
// All values are USD. Total is always the sum of the four line items.
type CostBreakdown struct {
	GasCost      decimal.Decimal `json:"gas_cost"`
	SlippageCost decimal.Decimal `json:"slippage_cost"`
	FlashLoanFee decimal.Decimal `json:"flash_loan_fee"`
	ProtocolFees decimal.Decimal `json:"protocol_fees"`
	Total        decimal.Decimal `json:"total"`
}

// ArbitrageOpportunity represents a detected cross-exchange price discrepancy
// for a token, net of estimated execution costs.
type ArbitrageOpportunity struct {
	ID              string          `json:"id" db:"id"`
	Token           string          `json:"token" db:"token"`
	BuyExchange     string          `json:"buy_exchange" db:"buy_exchange"`
	SellExchange    string          `json:"sell_exchange" db:"sell_exchange"`
	BuyPrice        decimal.Decimal `json:"buy_price" db:"buy_price"`
	SellPrice       decimal.Decimal `json:"sell_price" db:"sell_price"`
	TradeSizeUSD    decimal.Decimal `json:"trade_size_usd" db:"trade_size_usd"`
	GrossProfit     decimal.Decimal `json:"gross_profit" db:"gross_profit"`
	Costs           CostBreakdown   `json:"costs"`
	NetProfit       decimal.Decimal `json:"net_profit" db:"net_profit"`
	ProfitMarginPct decimal.Decimal `json:"profit_margin_pct" db:"profit_margin_pct"`
	Profitable      bool            `json:"profitable" db:"profitable"`
	Timestamp       time.Time       `json:"timestamp" db:"timestamp"`
}

// IsStale reports whether the opportunity is older than the freshness window.
func (o ArbitrageOpportunity) IsStale(now time.Time, window time.Duration) bool {
	return now.Sub(o.Timestamp) > window
}
