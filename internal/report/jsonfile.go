package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"arbscan/internal/model"
)

// snapshot is the JSON document written per reporting cycle.
type snapshot struct {
	Timestamp     time.Time                    `json:"timestamp"`
	Count         int                          `json:"count"`
	Opportunities []model.ArbitrageOpportunity `json:"opportunities"`
}

// JSONFileSink persists the latest cycle as a JSON file. The write goes
// through a temp file and rename so readers never see a partial document.
type JSONFileSink struct {
	path string
}

// NewJSONFileSink writes snapshots to path, creating parent directories as
// needed.
func NewJSONFileSink(path string) (*JSONFileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &JSONFileSink{path: path}, nil
}

// Publish replaces the snapshot file with the current cycle.
func (s *JSONFileSink) Publish(_ context.Context, opportunities []model.ArbitrageOpportunity) error {
	doc := snapshot{
		Timestamp:     time.Now(),
		Count:         len(opportunities),
		Opportunities: opportunities,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
