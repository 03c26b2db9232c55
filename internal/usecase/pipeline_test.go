package usecase

import (
	"context"
	"fmt"
	"testing"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/features"
	"StockCast/internal/services/indicators"
	"StockCast/pkg/config"
)

type stubPublisher struct {
	signals []models.TradingSignal
	err     error
}

func (s *stubPublisher) PublishSignal(ctx context.Context, sig models.TradingSignal) error {
	if s.err != nil {
		return s.err
	}
	s.signals = append(s.signals, sig)
	return nil
}

func (s *stubPublisher) Close() error { return nil }

func pipelineConfig() *config.Config {
	cfg := predictorConfig()
	cfg.Symbols = []string{"AAPL"}
	cfg.Tuning.MinObservations = 50
	cfg.Tuning.TrainFraction = 0.8
	cfg.Tuning.Grid.Architectures = []string{"lstm"}
	cfg.Tuning.Grid.WindowSizes = []int{5}
	cfg.Tuning.Grid.LearningRates = []float64{0.001}
	cfg.Tuning.Grid.BatchSizes = []int{32}
	cfg.Tuning.Grid.Epochs = []int{5}
	return cfg
}

func testPipeline(t *testing.T, fc *stubForecaster, store *stubModelStore, pub *stubPublisher) *Pipeline {
	t.Helper()
	quotes := &stubQuoteStore{series: map[string][]models.PricePoint{
		"AAPL":  dailyQuotes(80, 100, 0.5),
		"^GSPC": dailyQuotes(80, 4000, 2),
		"^VIX":  dailyQuotes(80, 15, 0.01),
	}}
	cfg := pipelineConfig()
	log := testLogger(t)
	metrics := newStubMetrics()
	engineer := features.NewEngineer(indicators.NewMemoizer(nil, 0), log)
	tuner := NewTuner(fc, metrics, cfg, log)
	predictor := NewPredictor(quotes, store, fc, engineer, metrics, cfg, log)
	return NewPipeline(quotes, engineer, tuner, predictor, fc, store, pub, metrics, cfg, log)
}

func TestTuneAndTrainPersistsArtifact(t *testing.T) {
	fc := &stubForecaster{}
	store := &stubModelStore{}
	p := testPipeline(t, fc, store, &stubPublisher{})

	report, artifact, err := p.TuneAndTrain(context.Background(), "AAPL", 0, nil)
	if err != nil {
		t.Fatalf("TuneAndTrain: %v", err)
	}
	if !report.BestFound {
		t.Fatal("expected a best trial")
	}
	if artifact == nil || store.saved == nil {
		t.Fatal("artifact not persisted")
	}
	if artifact.Version != 1 {
		t.Fatalf("first version = %d, want 1", artifact.Version)
	}
	if artifact.Config != report.Best.Config {
		t.Fatalf("artifact config %+v != best config %+v", artifact.Config, report.Best.Config)
	}
	if len(artifact.Scaler.Min) != len(models.FeatureColumns) {
		t.Fatalf("scaler width = %d", len(artifact.Scaler.Min))
	}
	if artifact.Model.ID == "" {
		t.Fatal("trained model handle missing")
	}

	// Retraining supersedes the previous artifact.
	_, second, err := p.TuneAndTrain(context.Background(), "AAPL", 0, nil)
	if err != nil {
		t.Fatalf("second TuneAndTrain: %v", err)
	}
	if second.Version != 2 {
		t.Fatalf("second version = %d, want 2", second.Version)
	}
}

func TestTuneAndTrainFailsWithoutUsableModel(t *testing.T) {
	fc := &stubForecaster{
		fitErr: func(models.HyperparameterConfig) error { return fmt.Errorf("diverged") },
	}
	p := testPipeline(t, fc, &stubModelStore{}, &stubPublisher{})

	report, _, err := p.TuneAndTrain(context.Background(), "AAPL", 0, nil)
	if err == nil {
		t.Fatal("expected error when every trial fails")
	}
	if report.BestFound {
		t.Fatal("report must not claim a best trial")
	}
}

func TestTuneAndTrainRejectsInvalidFinalModel(t *testing.T) {
	calls := 0
	fc := &stubForecaster{
		evaluate: func(models.HyperparameterConfig) (models.Evaluation, error) {
			calls++
			// Trial evaluation passes, the final refit does not clear the bar.
			if calls > 1 {
				return models.Evaluation{Loss: 0.5, MAPE: 40, MAE: 10, Valid: false}, nil
			}
			return models.Evaluation{Loss: 0.01, MAPE: 2.5, MAE: 1, Valid: true}, nil
		},
	}
	store := &stubModelStore{}
	p := testPipeline(t, fc, store, &stubPublisher{})

	if _, _, err := p.TuneAndTrain(context.Background(), "AAPL", 0, nil); err == nil {
		t.Fatal("expected error for invalid final model")
	}
	if store.saved != nil {
		t.Fatal("invalid model must not be persisted")
	}
}

func TestRunSymbolPublishesSignal(t *testing.T) {
	fc := &stubForecaster{predict: func(window [][]float64) (float64, error) {
		return 0.6, nil
	}}
	pub := &stubPublisher{}
	p := testPipeline(t, fc, &stubModelStore{}, pub)

	if err := p.RunSymbol(context.Background(), "AAPL"); err != nil {
		t.Fatalf("RunSymbol: %v", err)
	}
	if len(pub.signals) != 1 {
		t.Fatalf("published signals = %d, want 1", len(pub.signals))
	}
	sig := pub.signals[0]
	if sig.Symbol != "AAPL" {
		t.Fatalf("signal symbol = %s", sig.Symbol)
	}
	if sig.Action != models.ActionBuy && sig.Action != models.ActionSell && sig.Action != models.ActionHold {
		t.Fatalf("signal action = %s", sig.Action)
	}
}

func TestRunContainsSymbolFailures(t *testing.T) {
	fc := &stubForecaster{
		fitErr: func(models.HyperparameterConfig) error { return fmt.Errorf("service down") },
	}
	p := testPipeline(t, fc, &stubModelStore{}, &stubPublisher{})

	// The only symbol fails, yet Run itself succeeds.
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
