package exchange

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Sentinel errors for price-source failures. ErrPriceUnavailable covers
// transient fetch failures and is recovered per scan cycle; the unknown-token
// and unknown-exchange errors signal misconfiguration.
var (
	ErrPriceUnavailable = errors.New("price unavailable")
	ErrUnknownToken     = errors.New("unknown token")
	ErrUnknownExchange  = errors.New("unknown exchange")
)

// PriceSource defines the standard interface for all price-source strategies.
type PriceSource interface {
	// GetPrice returns the current USD unit price of token on exchange.
	GetPrice(ctx context.Context, token, exchange string) (decimal.Decimal, error)
	Mode() string
}
