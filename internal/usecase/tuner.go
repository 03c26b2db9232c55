package usecase

import (
	"context"
	"math"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	domsvc "StockCast/internal/domain/service"
	"StockCast/internal/services/dataset"
	"StockCast/pkg/config"
	applogger "StockCast/pkg/logger"
)

// ProgressFunc receives tuning progress after every finished trial,
// successful or not. bestMAPE is NaN until the first successful trial.
type ProgressFunc func(completed, total int, bestMAPE float64)

// TuneReport is the outcome of a full grid search. Best is the zero value
// when every trial failed; callers must check BestFound.
type TuneReport struct {
	Symbol    string               `json:"symbol"`
	Best      models.TrialResult   `json:"best"`
	BestFound bool                 `json:"best_found"`
	Trials    []models.TrialResult `json:"trials"`
}

// Tuner runs an exhaustive grid search over hyperparameter configurations.
// Every trial trains and scores a fresh model on a leakage-safe split of the
// same feature series; the grid order is deterministic so reruns are
// comparable.
type Tuner struct {
	forecaster domsvc.SequenceForecaster
	metrics    domrepo.Metrics
	cfg        *config.Config
	log        *applogger.Logger
}

func NewTuner(forecaster domsvc.SequenceForecaster, metrics domrepo.Metrics, cfg *config.Config, log *applogger.Logger) *Tuner {
	return &Tuner{forecaster: forecaster, metrics: metrics, cfg: cfg, log: log.With("tuner")}
}

// Grid expands the configured search space in a fixed nesting order:
// architecture, window size, learning rate, batch size, epochs.
func (t *Tuner) Grid() []models.HyperparameterConfig {
	g := t.cfg.Tuning.Grid
	out := make([]models.HyperparameterConfig, 0, len(g.Architectures)*len(g.WindowSizes)*len(g.LearningRates)*len(g.BatchSizes)*len(g.Epochs))
	for _, arch := range g.Architectures {
		for _, ws := range g.WindowSizes {
			for _, lr := range g.LearningRates {
				for _, bs := range g.BatchSizes {
					for _, ep := range g.Epochs {
						out = append(out, models.HyperparameterConfig{
							Architecture: arch,
							WindowSize:   ws,
							LearningRate: lr,
							BatchSize:    bs,
							Epochs:       ep,
						})
					}
				}
			}
		}
	}
	return out
}

// Tune searches the whole grid over the given feature series. Individual
// trial failures are contained and recorded; only context cancellation or an
// undersized series aborts the search. Selection prefers lower MAPE, then
// lower loss, then earlier grid position.
func (t *Tuner) Tune(ctx context.Context, symbol string, features []models.FeatureVector, onProgress ProgressFunc) (TuneReport, error) {
	report := TuneReport{Symbol: symbol}

	if got := len(features); got < t.cfg.Tuning.MinObservations {
		t.metrics.RecordError("tuner_insufficient_data")
		return report, models.NewInsufficientData("tuner", t.cfg.Tuning.MinObservations, got)
	}

	grid := t.Grid()
	report.Trials = make([]models.TrialResult, 0, len(grid))
	windower := dataset.NewWindower(t.cfg.Market.FeatureConfig)
	bestMAPE := math.NaN()

	t.log.Info("grid search started",
		applogger.String("symbol", symbol),
		applogger.Int("trials", len(grid)),
		applogger.Int("observations", len(features)),
	)

	for i, hp := range grid {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		started := time.Now()
		trial := t.runTrial(ctx, windower, features, hp)
		trial.Duration = time.Since(started)
		report.Trials = append(report.Trials, trial)

		if trial.Failed() {
			t.metrics.RecordTrial("failure", trial.Duration.Seconds())
			t.log.Warn("trial failed",
				applogger.String("symbol", symbol),
				applogger.String("architecture", hp.Architecture),
				applogger.Int("window_size", hp.WindowSize),
				applogger.String("error", trial.Err),
			)
		} else {
			t.metrics.RecordTrial("success", trial.Duration.Seconds())
			if better(trial, report.Best, report.BestFound) {
				report.Best = trial
				report.BestFound = true
				bestMAPE = trial.MAPE
			}
		}

		if onProgress != nil {
			onProgress(i+1, len(grid), bestMAPE)
		}
	}

	if report.BestFound {
		t.metrics.RecordBestMAPE(symbol, report.Best.MAPE)
		t.log.Info("grid search finished",
			applogger.String("symbol", symbol),
			applogger.String("architecture", report.Best.Config.Architecture),
			applogger.Int("window_size", report.Best.Config.WindowSize),
			applogger.Float64("best_mape", report.Best.MAPE),
		)
	} else {
		t.log.Warn("grid search produced no usable model", applogger.String("symbol", symbol))
	}
	return report, nil
}

// runTrial trains and scores one grid point. Any error is folded into the
// result rather than propagated.
func (t *Tuner) runTrial(ctx context.Context, windower *dataset.Windower, features []models.FeatureVector, hp models.HyperparameterConfig) models.TrialResult {
	trial := models.TrialResult{Config: hp}

	windows, err := windower.BuildWindows(features, hp.WindowSize)
	if err != nil {
		trial.Err = err.Error()
		return trial
	}
	ds := dataset.Split(windows, t.cfg.Tuning.TrainFraction)
	if len(ds.Train) == 0 || len(ds.Validation) == 0 {
		trial.Err = "split produced an empty partition"
		return trial
	}

	scaler, err := dataset.FitScaler(ds.Train)
	if err != nil {
		trial.Err = err.Error()
		return trial
	}
	train := scaler.Transform(ds.Train)
	val := scaler.Transform(ds.Validation)

	model, err := t.forecaster.Fit(ctx, train, hp, nil)
	if err != nil {
		trial.Err = err.Error()
		return trial
	}
	eval, err := t.forecaster.Evaluate(ctx, model, val, hp)
	if err != nil {
		trial.Err = err.Error()
		return trial
	}
	if math.IsNaN(eval.MAPE) || math.IsInf(eval.MAPE, 0) {
		trial.Err = "evaluation returned a non-finite MAPE"
		return trial
	}

	trial.MAPE = eval.MAPE
	trial.Loss = eval.Loss
	return trial
}

// better reports whether candidate beats the incumbent. Strict comparisons
// keep the earliest grid position on exact ties.
func better(candidate, incumbent models.TrialResult, incumbentFound bool) bool {
	if !incumbentFound {
		return true
	}
	if candidate.MAPE != incumbent.MAPE {
		return candidate.MAPE < incumbent.MAPE
	}
	return candidate.Loss < incumbent.Loss
}
