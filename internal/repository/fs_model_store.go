package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"StockCast/internal/domain/models"
	applogger "StockCast/pkg/logger"
)

// FSModelStore persists one model artifact per symbol as a JSON file under
// a configured directory. Saves are atomic via rename so a crashed write
// never leaves a truncated artifact behind.
type FSModelStore struct {
	dir string
	l   *applogger.Logger
}

func NewFSModelStore(dir string, l *applogger.Logger) (*FSModelStore, error) {
	if dir == "" {
		dir = "models"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	return &FSModelStore{dir: dir, l: l}, nil
}

func (s *FSModelStore) Load(ctx context.Context, symbol string) (*models.ModelArtifact, error) {
	b, err := os.ReadFile(s.path(symbol))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrModelNotFound
		}
		return nil, fmt.Errorf("read artifact for %s: %w", symbol, err)
	}
	var artifact models.ModelArtifact
	if err := json.Unmarshal(b, &artifact); err != nil {
		return nil, fmt.Errorf("decode artifact for %s: %w", symbol, err)
	}
	return &artifact, nil
}

func (s *FSModelStore) Save(ctx context.Context, artifact *models.ModelArtifact) error {
	b, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("encode artifact for %s: %w", artifact.Symbol, err)
	}

	target := s.path(artifact.Symbol)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write artifact for %s: %w", artifact.Symbol, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace artifact for %s: %w", artifact.Symbol, err)
	}

	if s.l != nil {
		s.l.Info("model artifact saved",
			applogger.String("symbol", artifact.Symbol),
			applogger.Int("version", artifact.Version),
			applogger.String("path", target),
		)
	}
	return nil
}

// Compatible reports whether the stored artifact can still serve a
// prediction. Architecture and window size are the artifact's own (they
// were tuned, not configured), so compatibility means the feature schema
// the scaler was fitted on still matches the current matrix width.
func (s *FSModelStore) Compatible(artifact *models.ModelArtifact, _ models.HyperparameterConfig) bool {
	if artifact == nil || artifact.Model.ID == "" {
		return false
	}
	if artifact.Config.WindowSize < 2 {
		return false
	}
	return len(artifact.Scaler.Min) == len(models.FeatureColumns) &&
		len(artifact.Scaler.Max) == len(models.FeatureColumns)
}

func (s *FSModelStore) path(symbol string) string {
	name := strings.NewReplacer("^", "", "/", "_", "\\", "_").Replace(symbol)
	return filepath.Join(s.dir, strings.ToUpper(name)+".json")
}
