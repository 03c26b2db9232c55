package service

import (
	"context"

	"StockCast/internal/domain/models"
)

// EpochCallback is invoked synchronously once per training epoch, in order.
// No concurrency is implied; a caller displaying progress never races the
// underlying computation.
type EpochCallback func(epoch int, loss float64)

// SequenceForecaster is the consumed training capability. The core depends
// on it only through this contract; gradient descent and layer architecture
// live on the other side.
type SequenceForecaster interface {
	// Fit trains a model on the training windows until cfg.Epochs or early stop.
	Fit(ctx context.Context, train []models.Window, cfg models.HyperparameterConfig, onEpoch EpochCallback) (models.TrainedModel, error)
	// Evaluate scores a trained model against held-out windows.
	Evaluate(ctx context.Context, model models.TrainedModel, val []models.Window, cfg models.HyperparameterConfig) (models.Evaluation, error)
	// Predict returns the next value one step ahead of window. Multi-step
	// forecasting is the prediction engine's responsibility.
	Predict(ctx context.Context, model models.TrainedModel, window [][]float64) (float64, error)
}
