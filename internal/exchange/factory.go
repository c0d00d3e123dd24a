package exchange

import (
	"fmt"
	"log/slog"

	"arbscan/internal/config"
)

// NewSource creates the price source selected by the configured mode.
func NewSource(logger *slog.Logger, cfg *config.Config) (PriceSource, error) {
	switch cfg.Source.Mode {
	case "live":
		return NewHTTPSource(logger, cfg), nil
	case "synthetic":
		return NewSyntheticSource(cfg), nil
	default:
		return nil, fmt.Errorf("unknown source mode: %s", cfg.Source.Mode)
	}
}
