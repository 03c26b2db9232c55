package models

import (
	"encoding/json"
	"time"
)

// HyperparameterConfig is one point of the tuning grid. Fields mirror what
// the sequence-forecaster capability consumes; nothing else is passed through.
type HyperparameterConfig struct {
	Architecture string  `json:"architecture" yaml:"architecture" validate:"oneof=lstm gru dense"`
	WindowSize   int     `json:"window_size" yaml:"window_size" validate:"gte=2,lte=365"`
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate" validate:"gt=0,lte=1"`
	BatchSize    int     `json:"batch_size" yaml:"batch_size" validate:"gte=1,lte=4096"`
	Epochs       int     `json:"epochs" yaml:"epochs" validate:"gte=1,lte=10000"`
}

// Window is a fixed-length slice of consecutive feature rows plus the next
// closing price as target. The target date is strictly after the window's
// last feature date.
type Window struct {
	Features [][]float64 `json:"features"`
	Target   float64     `json:"target"`
}

// Dataset is a chronological train/validation partition of windows.
// Train always precedes Validation in time.
type Dataset struct {
	Train      []Window
	Validation []Window
}

// Evaluation is the forecaster's verdict on a trained model against
// held-out data. Valid signals the model cleared the minimum-quality bar
// worth persisting.
type Evaluation struct {
	Loss  float64 `json:"loss"`
	MAPE  float64 `json:"mape"`
	MAE   float64 `json:"mae"`
	Valid bool    `json:"valid"`
}

// TrainedModel is the opaque handle returned by Fit. State is whatever the
// forecaster capability needs to evaluate and predict; this core never
// inspects it.
type TrainedModel struct {
	ID    string          `json:"id"`
	State json.RawMessage `json:"state"`
}

// TrialResult is the outcome of one tuner trial.
type TrialResult struct {
	Config   HyperparameterConfig `json:"config"`
	MAPE     float64              `json:"mape"`
	Loss     float64              `json:"loss"`
	Duration time.Duration        `json:"duration"`
	Err      string               `json:"error,omitempty"`
}

// Failed reports whether the trial is excluded from best-selection.
func (t TrialResult) Failed() bool { return t.Err != "" }

// ScalerParams are the per-column min/max fitted on the training partition.
// They travel with the artifact so prediction reuses the exact training scale.
type ScalerParams struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// ModelArtifact is the persisted form of a trained model plus the metadata
// needed to rebuild its input window at prediction time. Superseded by
// retraining; the store keeps one per symbol.
type ModelArtifact struct {
	Symbol         string               `json:"symbol"`
	Version        int                  `json:"version"`
	TrainedAt      time.Time            `json:"trained_at"`
	DataPoints     int                  `json:"data_points"`
	ValidationLoss float64              `json:"validation_loss"`
	MAE            float64              `json:"mae"`
	Config         HyperparameterConfig `json:"config"`
	Scaler         ScalerParams         `json:"scaler"`
	Model          TrainedModel         `json:"model"`
}
