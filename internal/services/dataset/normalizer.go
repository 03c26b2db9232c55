package dataset

import (
	"fmt"

	"StockCast/internal/domain/models"
)

// MinMaxScaler normalizes each feature column independently into [0, 1].
// Parameters are fit strictly on the training partition and reused
// unmodified everywhere else, so validation statistics never leak into
// training.
type MinMaxScaler struct {
	min []float64
	max []float64
}

// FitScaler computes per-column min/max over the training windows.
func FitScaler(train []models.Window) (*MinMaxScaler, error) {
	if len(train) == 0 || len(train[0].Features) == 0 {
		return nil, models.NewInsufficientData("scaler", 1, 0)
	}
	width := len(train[0].Features[0])
	s := &MinMaxScaler{
		min: make([]float64, width),
		max: make([]float64, width),
	}
	for c := 0; c < width; c++ {
		s.min[c] = train[0].Features[0][c]
		s.max[c] = train[0].Features[0][c]
	}
	for _, w := range train {
		for _, row := range w.Features {
			if len(row) != width {
				return nil, fmt.Errorf("ragged feature row: want %d columns, got %d", width, len(row))
			}
			for c, v := range row {
				if v < s.min[c] {
					s.min[c] = v
				}
				if v > s.max[c] {
					s.max[c] = v
				}
			}
		}
		// Targets share the close column's scale.
		if w.Target < s.min[models.CloseColumn] {
			s.min[models.CloseColumn] = w.Target
		}
		if w.Target > s.max[models.CloseColumn] {
			s.max[models.CloseColumn] = w.Target
		}
	}
	return s, nil
}

// ScalerFromParams rebuilds a scaler persisted with a model artifact.
func ScalerFromParams(p models.ScalerParams) (*MinMaxScaler, error) {
	if len(p.Min) == 0 || len(p.Min) != len(p.Max) {
		return nil, fmt.Errorf("invalid scaler params: %d min, %d max", len(p.Min), len(p.Max))
	}
	return &MinMaxScaler{min: p.Min, max: p.Max}, nil
}

// Params exports the fitted parameters for persistence with the artifact.
func (s *MinMaxScaler) Params() models.ScalerParams {
	return models.ScalerParams{Min: s.min, Max: s.max}
}

func (s *MinMaxScaler) scale(c int, v float64) float64 {
	span := s.max[c] - s.min[c]
	if span == 0 {
		return 0
	}
	return (v - s.min[c]) / span
}

// TransformRow normalizes a single feature row in place-safe copy.
func (s *MinMaxScaler) TransformRow(row []float64) []float64 {
	out := make([]float64, len(row))
	for c, v := range row {
		if c < len(s.min) {
			out[c] = s.scale(c, v)
		}
	}
	return out
}

// Transform normalizes windows and their targets with the fitted parameters.
func (s *MinMaxScaler) Transform(windows []models.Window) []models.Window {
	out := make([]models.Window, len(windows))
	for i, w := range windows {
		rows := make([][]float64, len(w.Features))
		for j, row := range w.Features {
			rows[j] = s.TransformRow(row)
		}
		out[i] = models.Window{
			Features: rows,
			Target:   s.scale(models.CloseColumn, w.Target),
		}
	}
	return out
}

// InverseTarget maps a normalized prediction back to price scale.
func (s *MinMaxScaler) InverseTarget(v float64) float64 {
	span := s.max[models.CloseColumn] - s.min[models.CloseColumn]
	return v*span + s.min[models.CloseColumn]
}
