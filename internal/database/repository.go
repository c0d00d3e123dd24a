package database

import (
	"context"

	"arbscan/internal/model"
)

// Repository defines the standard interface for database operations.
type Repository interface {
	LogOpportunity(ctx context.Context, opp model.ArbitrageOpportunity) error
}
