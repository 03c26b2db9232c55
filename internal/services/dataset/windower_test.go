package dataset

import (
	"errors"
	"math"
	"testing"

	"StockCast/internal/domain/models"
	"StockCast/pkg/util"
)

func featureSeries(start string, n int) []models.FeatureVector {
	day, _ := util.ParseDate(start)
	out := make([]models.FeatureVector, n)
	for i := range out {
		out[i] = models.FeatureVector{
			Date:         util.FormatDate(day.AddDate(0, 0, i)),
			Close:        100 + float64(i),
			Returns:      0.01,
			RSI:          55,
			SMA20:        100,
			SMA50:        100,
			VolumeRatio:  1,
			MarketRegime: models.RegimeNeutral,
			Beta:         models.Measured(1.1),
		}
	}
	return out
}

func allToggles() models.FeatureToggles {
	return models.FeatureToggles{
		Enabled:                 true,
		IncludeBeta:             true,
		IncludeCorrelation:      true,
		IncludeDistanceFromMA:   true,
		IncludeMarketReturn:     true,
		IncludeRegime:           true,
		IncludeRelativeReturn:   true,
		IncludeVix:              true,
		IncludeVolatilitySpread: true,
	}
}

func TestBuildWindowsCountAndTarget(t *testing.T) {
	features := featureSeries("2024-01-01", 12)
	w := NewWindower(allToggles())

	windows, err := w.BuildWindows(features, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 7 {
		t.Fatalf("expected 7 windows, got %d", len(windows))
	}
	first := windows[0]
	if len(first.Features) != 5 {
		t.Fatalf("expected window of 5 rows, got %d", len(first.Features))
	}
	// Target is the close strictly after the window's last feature date.
	if first.Target != features[5].Close {
		t.Fatalf("expected target %f, got %f", features[5].Close, first.Target)
	}
}

func TestBuildWindowsStopsAtGap(t *testing.T) {
	features := featureSeries("2024-01-01", 20)
	// Introduce a two-week hole after index 9.
	day, _ := util.ParseDate(features[9].Date)
	for i := 10; i < len(features); i++ {
		features[i].Date = util.FormatDate(day.AddDate(0, 0, 14+i-10))
	}

	w := NewWindower(allToggles())
	windows, err := w.BuildWindows(features, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only the 10 pre-gap vectors are usable: 10-4 = 6 windows.
	if len(windows) != 6 {
		t.Fatalf("expected 6 windows before the gap, got %d", len(windows))
	}
}

func TestBuildWindowsGapTooEarly(t *testing.T) {
	features := featureSeries("2024-01-01", 20)
	day, _ := util.ParseDate(features[2].Date)
	for i := 3; i < len(features); i++ {
		features[i].Date = util.FormatDate(day.AddDate(0, 0, 30+i))
	}

	w := NewWindower(allToggles())
	_, err := w.BuildWindows(features, 10)
	if !errors.Is(err, models.ErrSeriesGap) {
		t.Fatalf("expected ErrSeriesGap, got %v", err)
	}
}

func TestBuildWindowsInsufficientData(t *testing.T) {
	w := NewWindower(allToggles())
	_, err := w.BuildWindows(featureSeries("2024-01-01", 5), 10)
	if !models.IsInsufficientData(err) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}

func TestSplitChronological(t *testing.T) {
	features := featureSeries("2024-01-01", 30)
	w := NewWindower(allToggles())
	windows, err := w.BuildWindows(features, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ds := Split(windows, 0.8)
	if len(ds.Train)+len(ds.Validation) != len(windows) {
		t.Fatalf("partition sizes don't add up")
	}
	if len(ds.Train) != 20 {
		t.Fatalf("expected 20 training windows, got %d", len(ds.Train))
	}
	// The series is increasing, so chronological order means every
	// validation target exceeds every training target.
	maxTrain := ds.Train[len(ds.Train)-1].Target
	for _, w := range ds.Validation {
		if w.Target <= maxTrain {
			t.Fatalf("validation window precedes training data")
		}
	}
}

func TestScalerRoundTrip(t *testing.T) {
	features := featureSeries("2024-01-01", 40)
	w := NewWindower(allToggles())
	windows, err := w.BuildWindows(features, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ds := Split(windows, 0.8)

	scaler, err := FitScaler(ds.Train)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	norm := scaler.Transform(ds.Train)
	for i, w := range norm {
		for _, row := range w.Features {
			for c, v := range row {
				if v < 0 || v > 1 {
					t.Fatalf("train window %d column %d out of [0,1]: %f", i, c, v)
				}
			}
		}
		back := scaler.InverseTarget(w.Target)
		if math.Abs(back-ds.Train[i].Target) > 1e-9 {
			t.Fatalf("round-trip target %f != %f", back, ds.Train[i].Target)
		}
	}
}

func TestScalerFitOnlyOnTrain(t *testing.T) {
	features := featureSeries("2024-01-01", 40)
	w := NewWindower(allToggles())
	windows, _ := w.BuildWindows(features, 5)
	ds := Split(windows, 0.8)

	scaler, err := FitScaler(ds.Train)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Validation closes exceed the training maximum in this increasing
	// series, so normalized values must exceed 1 rather than being refit.
	norm := scaler.Transform(ds.Validation)
	last := norm[len(norm)-1]
	if last.Target <= 1 {
		t.Fatalf("expected validation target above training scale, got %f", last.Target)
	}
}

func TestScalerParamsRoundTrip(t *testing.T) {
	features := featureSeries("2024-01-01", 20)
	w := NewWindower(allToggles())
	windows, _ := w.BuildWindows(features, 5)

	scaler, err := FitScaler(windows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rebuilt, err := ScalerFromParams(scaler.Params())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := windows[0].Features[0]
	a := scaler.TransformRow(row)
	b := rebuilt.TransformRow(row)
	for c := range a {
		if a[c] != b[c] {
			t.Fatalf("rebuilt scaler diverges at column %d", c)
		}
	}
}
