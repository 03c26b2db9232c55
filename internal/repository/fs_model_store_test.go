package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

func artifactFixture(symbol string, version int) *models.ModelArtifact {
	width := len(models.FeatureColumns)
	params := models.ScalerParams{Min: make([]float64, width), Max: make([]float64, width)}
	for c := 0; c < width; c++ {
		params.Max[c] = 1
	}
	return &models.ModelArtifact{
		Symbol:         symbol,
		Version:        version,
		TrainedAt:      time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
		DataPoints:     300,
		ValidationLoss: 0.012,
		MAE:            1.8,
		Config: models.HyperparameterConfig{
			Architecture: "lstm", WindowSize: 30,
			LearningRate: 0.001, BatchSize: 32, Epochs: 50,
		},
		Scaler: params,
		Model:  models.TrainedModel{ID: "m-7", State: json.RawMessage(`{"weights":"..."}`)},
	}
}

func TestFSModelStoreRoundTrip(t *testing.T) {
	store, err := NewFSModelStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFSModelStore: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Load(ctx, "AAPL"); err != models.ErrModelNotFound {
		t.Fatalf("missing artifact err = %v, want ErrModelNotFound", err)
	}

	want := artifactFixture("AAPL", 1)
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx, "AAPL")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Version != 1 || got.Config != want.Config || got.Model.ID != "m-7" {
		t.Fatalf("loaded artifact mismatch: %+v", got)
	}
	if string(got.Model.State) != string(want.Model.State) {
		t.Fatalf("model state = %s", got.Model.State)
	}

	// A newer version supersedes the old one in place.
	if err := store.Save(ctx, artifactFixture("AAPL", 2)); err != nil {
		t.Fatalf("Save v2: %v", err)
	}
	got, err = store.Load(ctx, "AAPL")
	if err != nil {
		t.Fatalf("Load v2: %v", err)
	}
	if got.Version != 2 {
		t.Fatalf("version = %d, want 2", got.Version)
	}
}

func TestFSModelStoreSymbolIsolation(t *testing.T) {
	store, err := NewFSModelStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFSModelStore: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, artifactFixture("AAPL", 1)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.Load(ctx, "MSFT"); err != models.ErrModelNotFound {
		t.Fatalf("other symbol err = %v, want ErrModelNotFound", err)
	}
}

func TestFSModelStoreCompatible(t *testing.T) {
	store, err := NewFSModelStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFSModelStore: %v", err)
	}
	cfg := models.HyperparameterConfig{Architecture: "gru", WindowSize: 20}

	good := artifactFixture("AAPL", 1)
	if !store.Compatible(good, cfg) {
		t.Fatal("well-formed artifact must be compatible")
	}
	if store.Compatible(nil, cfg) {
		t.Fatal("nil artifact must be incompatible")
	}

	narrow := artifactFixture("AAPL", 1)
	narrow.Scaler.Min = narrow.Scaler.Min[:3]
	narrow.Scaler.Max = narrow.Scaler.Max[:3]
	if store.Compatible(narrow, cfg) {
		t.Fatal("scaler width mismatch must be incompatible")
	}

	unfitted := artifactFixture("AAPL", 1)
	unfitted.Model.ID = ""
	if store.Compatible(unfitted, cfg) {
		t.Fatal("artifact without a model handle must be incompatible")
	}
}
