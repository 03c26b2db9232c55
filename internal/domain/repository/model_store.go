package repository

import (
	"context"

	"StockCast/internal/domain/models"
)

// ModelStore persists one trained artifact per symbol. Save supersedes the
// previous artifact; durability is the store's problem, not the core's.
type ModelStore interface {
	Load(ctx context.Context, symbol string) (*models.ModelArtifact, error)
	Save(ctx context.Context, artifact *models.ModelArtifact) error
	// Compatible reports whether the stored artifact can serve a prediction
	// under the given config (matching window size and feature width).
	Compatible(artifact *models.ModelArtifact, cfg models.HyperparameterConfig) bool
}

// SignalPublisher hands generated signals to the external output consumer.
type SignalPublisher interface {
	PublishSignal(ctx context.Context, signal models.TradingSignal) error
	Close() error
}

// Metrics records pipeline observability counters.
type Metrics interface {
	RecordTrial(outcome string, seconds float64)
	RecordBestMAPE(symbol string, mape float64)
	RecordPrediction(symbol string, seconds float64)
	RecordSignal(symbol, action string)
	RecordError(kind string)
}
