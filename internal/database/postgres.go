package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"arbscan/internal/model"
)

// PostgresRepository persists opportunities as an append-only log.
type PostgresRepository struct {
	Pool *pgxpool.Pool
}

// NewPostgresRepository connects a pool over the given DSN.
func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresRepository{Pool: pool}, nil
}

// Migrate creates the opportunities table when it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS opportunities (
		id UUID PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		token VARCHAR(20) NOT NULL,
		buy_exchange VARCHAR(50) NOT NULL,
		sell_exchange VARCHAR(50) NOT NULL,
		buy_price NUMERIC(30, 8) NOT NULL,
		sell_price NUMERIC(30, 8) NOT NULL,
		trade_size_usd NUMERIC(30, 8) NOT NULL,
		gross_profit NUMERIC(30, 8) NOT NULL,
		gas_cost NUMERIC(30, 8) NOT NULL,
		slippage_cost NUMERIC(30, 8) NOT NULL,
		flash_loan_fee NUMERIC(30, 8) NOT NULL,
		protocol_fees NUMERIC(30, 8) NOT NULL,
		total_cost NUMERIC(30, 8) NOT NULL,
		net_profit NUMERIC(30, 8) NOT NULL,
		profit_margin_pct NUMERIC(30, 8) NOT NULL,
		profitable BOOLEAN NOT NULL
	);`
	_, err := r.Pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("migrate opportunities table: %w", err)
	}
	return nil
}

// LogOpportunity appends one detected opportunity. Decimal values are passed
// as their exact string form and stored as NUMERIC.
func (r *PostgresRepository) LogOpportunity(ctx context.Context, opp model.ArbitrageOpportunity) error {
	const query = `
	INSERT INTO opportunities (
		id, timestamp, token, buy_exchange, sell_exchange,
		buy_price, sell_price, trade_size_usd, gross_profit,
		gas_cost, slippage_cost, flash_loan_fee, protocol_fees, total_cost,
		net_profit, profit_margin_pct, profitable
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.Pool.Exec(ctx, query,
		opp.ID,
		opp.Timestamp,
		opp.Token,
		opp.BuyExchange,
		opp.SellExchange,
		opp.BuyPrice.String(),
		opp.SellPrice.String(),
		opp.TradeSizeUSD.String(),
		opp.GrossProfit.String(),
		opp.Costs.GasCost.String(),
		opp.Costs.SlippageCost.String(),
		opp.Costs.FlashLoanFee.String(),
		opp.Costs.ProtocolFees.String(),
		opp.Costs.Total.String(),
		opp.NetProfit.String(),
		opp.ProfitMarginPct.String(),
		opp.Profitable,
	)
	if err != nil {
		return fmt.Errorf("insert opportunity: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *PostgresRepository) Close() {
	r.Pool.Close()
}
