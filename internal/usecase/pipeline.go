package usecase

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	domsvc "StockCast/internal/domain/service"
	"StockCast/internal/services/dataset"
	"StockCast/internal/services/features"
	"StockCast/pkg/config"
	applogger "StockCast/pkg/logger"
)

// Pipeline drives the full per-symbol flow: features, grid search, final
// training, artifact persistence, forecast and signal publication. Symbols
// are processed sequentially; one symbol's failure never aborts the rest.
type Pipeline struct {
	source     *featureSource
	tuner      *Tuner
	predictor  *Predictor
	forecaster domsvc.SequenceForecaster
	models     domrepo.ModelStore
	publisher  domrepo.SignalPublisher
	metrics    domrepo.Metrics
	cfg        *config.Config
	log        *applogger.Logger
}

func NewPipeline(quotes domrepo.QuoteStore, engineer *features.Engineer, tuner *Tuner, predictor *Predictor, forecaster domsvc.SequenceForecaster, store domrepo.ModelStore, publisher domrepo.SignalPublisher, metrics domrepo.Metrics, cfg *config.Config, log *applogger.Logger) *Pipeline {
	return &Pipeline{
		source:     newFeatureSource(quotes, engineer, cfg),
		tuner:      tuner,
		predictor:  predictor,
		forecaster: forecaster,
		models:     store,
		publisher:  publisher,
		metrics:    metrics,
		cfg:        cfg,
		log:        log.With("pipeline"),
	}
}

// Run processes every configured symbol in order. Per-symbol failures are
// logged and counted; only context cancellation stops the loop.
func (p *Pipeline) Run(ctx context.Context) error {
	for _, symbol := range p.cfg.Symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.RunSymbol(ctx, symbol); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.metrics.RecordError("pipeline_symbol")
			p.log.Error("symbol run failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
	}
	return nil
}

// RunSymbol retrains the symbol's model and publishes a fresh forecast
// signal.
func (p *Pipeline) RunSymbol(ctx context.Context, symbol string) error {
	started := time.Now()

	if _, _, err := p.TuneAndTrain(ctx, symbol, 0, nil); err != nil {
		return err
	}

	pred, err := p.predictor.Predict(ctx, symbol, p.cfg.Prediction.Days)
	if err != nil {
		return err
	}
	signal := p.predictor.GenerateSignal(pred)

	if p.publisher != nil {
		if err := p.publisher.PublishSignal(ctx, signal); err != nil {
			p.metrics.RecordError("signal_publish")
			p.log.Error("signal publish failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
	}

	p.log.Info("symbol run finished",
		applogger.String("symbol", symbol),
		applogger.String("action", string(signal.Action)),
		applogger.Float64("delta", signal.Delta),
		applogger.Duration("took", time.Since(started)),
	)
	return nil
}

// TuneAndTrain grid-searches the symbol over the n most recent quotes,
// refits the winning configuration on the training partition and persists
// the resulting artifact. The tune report is returned even when no trial
// succeeded.
func (p *Pipeline) TuneAndTrain(ctx context.Context, symbol string, n int, onProgress ProgressFunc) (TuneReport, *models.ModelArtifact, error) {
	feats, _, err := p.source.LatestFeatures(ctx, symbol, n)
	if err != nil {
		return TuneReport{}, nil, err
	}

	report, err := p.tuner.Tune(ctx, symbol, feats, onProgress)
	if err != nil {
		return report, nil, err
	}
	if !report.BestFound {
		return report, nil, fmt.Errorf("no hyperparameter configuration produced a usable model for %s", symbol)
	}

	artifact, err := p.train(ctx, symbol, feats, report.Best.Config)
	if err != nil {
		return report, nil, err
	}
	return report, artifact, nil
}

// train fits the chosen configuration once more on the training partition
// and persists the artifact together with its scaler.
func (p *Pipeline) train(ctx context.Context, symbol string, feats []models.FeatureVector, hp models.HyperparameterConfig) (*models.ModelArtifact, error) {
	windower := dataset.NewWindower(p.cfg.Market.FeatureConfig)
	windows, err := windower.BuildWindows(feats, hp.WindowSize)
	if err != nil {
		return nil, err
	}
	ds := dataset.Split(windows, p.cfg.Tuning.TrainFraction)
	if len(ds.Train) == 0 || len(ds.Validation) == 0 {
		return nil, models.NewInsufficientData("train", 2, len(windows))
	}

	scaler, err := dataset.FitScaler(ds.Train)
	if err != nil {
		return nil, err
	}
	train := scaler.Transform(ds.Train)
	val := scaler.Transform(ds.Validation)

	model, err := p.forecaster.Fit(ctx, train, hp, func(epoch int, loss float64) {
		p.log.Debug("training epoch",
			applogger.String("symbol", symbol),
			applogger.Int("epoch", epoch),
			applogger.Float64("loss", loss),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("final fit for %s: %w", symbol, err)
	}
	eval, err := p.forecaster.Evaluate(ctx, model, val, hp)
	if err != nil {
		return nil, fmt.Errorf("final evaluation for %s: %w", symbol, err)
	}
	if !eval.Valid {
		return nil, fmt.Errorf("final model for %s below the minimum quality bar", symbol)
	}

	version := 1
	if prev, err := p.models.Load(ctx, symbol); err == nil && prev != nil {
		version = prev.Version + 1
	}
	// MAE is the scaled validation error mapped back to price units so
	// prediction bounds live on the same scale as prices.
	mae := scaler.InverseTarget(eval.MAE) - scaler.InverseTarget(0)

	artifact := &models.ModelArtifact{
		Symbol:         symbol,
		Version:        version,
		TrainedAt:      time.Now().UTC(),
		DataPoints:     len(feats),
		ValidationLoss: eval.Loss,
		MAE:            mae,
		Config:         hp,
		Scaler:         scaler.Params(),
		Model:          model,
	}
	if err := p.models.Save(ctx, artifact); err != nil {
		return nil, fmt.Errorf("save artifact for %s: %w", symbol, err)
	}

	p.log.Info("model trained",
		applogger.String("symbol", symbol),
		applogger.Int("version", version),
		applogger.Float64("validation_loss", eval.Loss),
		applogger.Float64("mae", mae),
	)
	return artifact, nil
}
