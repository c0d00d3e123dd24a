package report

import (
	"context"
	"log/slog"

	"arbscan/internal/model"
)

// Sink delivers a reporting cycle's opportunities to one consumer.
type Sink interface {
	Publish(ctx context.Context, opportunities []model.ArbitrageOpportunity) error
}

// MultiSink fans a publish out to every configured sink. A failing sink is
// logged and skipped; the remaining sinks still receive the cycle.
type MultiSink struct {
	logger *slog.Logger
	sinks  []Sink
}

// NewMultiSink creates a fan-out over the given sinks.
func NewMultiSink(logger *slog.Logger, sinks ...Sink) *MultiSink {
	return &MultiSink{logger: logger, sinks: sinks}
}

// Publish never returns an error; per-sink failures are isolated.
func (m *MultiSink) Publish(ctx context.Context, opportunities []model.ArbitrageOpportunity) error {
	for _, sink := range m.sinks {
		if err := sink.Publish(ctx, opportunities); err != nil {
			m.logger.Error("sink publish failed", "sink", name(sink), "error", err)
		}
	}
	return nil
}

func name(s Sink) string {
	switch s.(type) {
	case *TableSink:
		return "table"
	case *JSONFileSink:
		return "jsonfile"
	case *Hub:
		return "websocket"
	case *PostgresSink:
		return "postgres"
	default:
		return "unknown"
	}
}
