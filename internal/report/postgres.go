package report

import (
	"context"
	"log/slog"

	"arbscan/internal/database"
	"arbscan/internal/model"
)

// PostgresSink appends every published opportunity to the database. A failed
// insert is logged per row; the rest of the cycle still lands.
type PostgresSink struct {
	logger *slog.Logger
	repo   database.Repository
}

// NewPostgresSink persists through the given repository.
func NewPostgresSink(logger *slog.Logger, repo database.Repository) *PostgresSink {
	return &PostgresSink{logger: logger, repo: repo}
}

func (s *PostgresSink) Publish(ctx context.Context, opportunities []model.ArbitrageOpportunity) error {
	for _, opp := range opportunities {
		if err := s.repo.LogOpportunity(ctx, opp); err != nil {
			s.logger.Error("failed to log opportunity", "token", opp.Token, "error", err)
		}
	}
	return nil
}
