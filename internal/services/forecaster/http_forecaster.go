package forecaster

import (
	"context"
	"fmt"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/service"
	"StockCast/pkg/config"
	applogger "StockCast/pkg/logger"
)

const predictAttempts = 3

// HTTPForecaster talks to the external model service over JSON/HTTP. The
// service owns gradient descent and layer architecture; this client only
// moves windows and opaque model state across the wire.
type HTTPForecaster struct {
	*httpServiceBase
	log *applogger.Logger
}

var _ service.SequenceForecaster = (*HTTPForecaster)(nil)

// NewHTTPForecaster builds a forecaster client from config.
func NewHTTPForecaster(cfg *config.Config, log *applogger.Logger) *HTTPForecaster {
	return &HTTPForecaster{
		httpServiceBase: newHTTPServiceBase(cfg),
		log:             log.With("forecaster"),
	}
}

type fitRequest struct {
	Windows []models.Window             `json:"windows"`
	Config  models.HyperparameterConfig `json:"config"`
}

type fitResponse struct {
	Model  models.TrainedModel `json:"model"`
	Epochs []epochEntry        `json:"epochs"`
}

type epochEntry struct {
	Epoch int     `json:"epoch"`
	Loss  float64 `json:"loss"`
}

// Fit trains a model remotely and replays the returned epoch history through
// onEpoch in order. The callback runs after the HTTP exchange completes, so
// it observes a finished run rather than a live one; ordering still holds.
func (f *HTTPForecaster) Fit(ctx context.Context, train []models.Window, cfg models.HyperparameterConfig, onEpoch service.EpochCallback) (models.TrainedModel, error) {
	if len(train) == 0 {
		return models.TrainedModel{}, fmt.Errorf("fit: no training windows")
	}

	var resp fitResponse
	if err := f.postJSON(ctx, "/model/fit", fitRequest{Windows: train, Config: cfg}, &resp); err != nil {
		return models.TrainedModel{}, err
	}
	if resp.Model.ID == "" {
		return models.TrainedModel{}, fmt.Errorf("fit: service returned no model id")
	}

	if onEpoch != nil {
		for _, e := range resp.Epochs {
			onEpoch(e.Epoch, e.Loss)
		}
	}

	f.log.Debug("model fitted",
		applogger.String("model_id", resp.Model.ID),
		applogger.String("architecture", cfg.Architecture),
		applogger.Int("epochs", len(resp.Epochs)),
	)
	return resp.Model, nil
}

type evaluateRequest struct {
	Model   models.TrainedModel         `json:"model"`
	Windows []models.Window             `json:"windows"`
	Config  models.HyperparameterConfig `json:"config"`
}

// Evaluate scores a trained model against held-out windows.
func (f *HTTPForecaster) Evaluate(ctx context.Context, model models.TrainedModel, val []models.Window, cfg models.HyperparameterConfig) (models.Evaluation, error) {
	if len(val) == 0 {
		return models.Evaluation{}, fmt.Errorf("evaluate: no validation windows")
	}

	var eval models.Evaluation
	if err := f.postJSON(ctx, "/model/evaluate", evaluateRequest{Model: model, Windows: val, Config: cfg}, &eval); err != nil {
		return models.Evaluation{}, err
	}
	return eval, nil
}

type predictRequest struct {
	Model  models.TrainedModel `json:"model"`
	Window [][]float64         `json:"window"`
}

type predictResponse struct {
	Value float64 `json:"value"`
}

// Predict returns the one-step-ahead value for window. Predict is idempotent
// on the service side, so transient failures are retried.
func (f *HTTPForecaster) Predict(ctx context.Context, model models.TrainedModel, window [][]float64) (float64, error) {
	if len(window) == 0 {
		return 0, fmt.Errorf("predict: empty window")
	}

	var resp predictResponse
	if err := f.postJSONWithRetry(ctx, "/model/predict", predictRequest{Model: model, Window: window}, &resp, predictAttempts); err != nil {
		return 0, err
	}
	return resp.Value, nil
}
