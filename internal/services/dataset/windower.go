// Package dataset slices feature series into the fixed-length lookback
// windows the forecaster consumes, with chronological partitioning and
// leakage-safe normalization.
package dataset

import (
	"errors"
	"fmt"

	"StockCast/internal/domain/models"
	"StockCast/pkg/util"
)

var errWindowTooSmall = errors.New("window size must be at least 2")

// MaxCalendarGapDays is the largest calendar-day distance between two
// consecutive feature dates still treated as contiguous. Daily quote series
// carry weekend and holiday gaps; anything wider aborts window construction
// across it.
const MaxCalendarGapDays = 5

// DefaultTrainFraction is the share of windows assigned to the training
// partition; the most recent remainder is validation.
const DefaultTrainFraction = 0.8

// Windower builds windows from feature vectors under a fixed toggle set so
// matrix width stays stable for a given configuration.
type Windower struct {
	toggles models.FeatureToggles
}

func NewWindower(toggles models.FeatureToggles) *Windower {
	return &Windower{toggles: toggles}
}

// BuildWindows produces sliding windows of exactly windowSize consecutive
// vectors with the next close as target. Construction stops at the first
// calendar gap instead of bridging it.
func (w *Windower) BuildWindows(features []models.FeatureVector, windowSize int) ([]models.Window, error) {
	if windowSize < 2 {
		return nil, fmt.Errorf("window size %d: %w", windowSize, errWindowTooSmall)
	}
	if len(features) < windowSize+1 {
		return nil, models.NewInsufficientData("windower", windowSize+1, len(features))
	}

	// Usable prefix: cut at the first gap.
	usable := len(features)
	for i := 1; i < len(features); i++ {
		if util.DaysBetween(features[i-1].Date, features[i].Date) > MaxCalendarGapDays {
			usable = i
			break
		}
	}
	if usable < windowSize+1 {
		return nil, fmt.Errorf("usable series of %d after gap at index %d: %w", usable, usable, models.ErrSeriesGap)
	}

	windows := make([]models.Window, 0, usable-windowSize)
	for i := 0; i+windowSize < usable; i++ {
		rows := make([][]float64, windowSize)
		for j := 0; j < windowSize; j++ {
			rows[j] = features[i+j].Row(w.toggles)
		}
		windows = append(windows, models.Window{
			Features: rows,
			Target:   features[i+windowSize].Close,
		})
	}
	return windows, nil
}

// Split partitions windows chronologically: the earliest trainFraction goes
// to training, the most recent remainder to validation. Never randomized;
// shuffling would destroy the temporal-causality assumption the forecaster
// relies on.
func Split(windows []models.Window, trainFraction float64) models.Dataset {
	if trainFraction <= 0 || trainFraction >= 1 {
		trainFraction = DefaultTrainFraction
	}
	cut := int(float64(len(windows)) * trainFraction)
	if cut < 1 {
		cut = 1
	}
	if cut >= len(windows) {
		cut = len(windows) - 1
	}
	if cut < 1 {
		return models.Dataset{Train: windows}
	}
	return models.Dataset{
		Train:      windows[:cut],
		Validation: windows[cut:],
	}
}
