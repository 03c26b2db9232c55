package models

import "math"

// MarketRegime is a coarse trend classification of the benchmark index,
// derived from moving-average crossovers only, never from future data.
type MarketRegime string

const (
	RegimeBull    MarketRegime = "BULL"
	RegimeBear    MarketRegime = "BEAR"
	RegimeNeutral MarketRegime = "NEUTRAL"
)

// FeatureValue is a measurement that may have been defaulted because its
// lookback window was too short. Downstream consumers can tell a neutral
// default apart from a real estimate.
type FeatureValue struct {
	Value     float64 `json:"value"`
	Defaulted bool    `json:"defaulted,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// Measured wraps a real estimate.
func Measured(v float64) FeatureValue {
	return FeatureValue{Value: v}
}

// Defaulted wraps a neutral fallback with the reason it was used.
func Defaulted(v float64, reason string) FeatureValue {
	return FeatureValue{Value: v, Defaulted: true, Reason: reason}
}

// FeatureVector holds the per-date inputs the forecaster trains on.
// One entry per stock date where all required context exists; nothing in it
// is ever computed from a date later than its own.
type FeatureVector struct {
	Date             string       `json:"date"`
	Close            float64      `json:"close"`
	Returns          float64      `json:"returns"`
	RSI              float64      `json:"rsi"`
	SMA20            float64      `json:"sma_20"`
	SMA50            float64      `json:"sma_50"`
	VolumeRatio      float64      `json:"volume_ratio"`
	OBV              float64      `json:"obv"`
	MarketReturn     float64      `json:"market_return"`
	RelativeReturn   float64      `json:"relative_return"`
	Beta             FeatureValue `json:"beta"`
	IndexCorrelation FeatureValue `json:"index_correlation"`
	DistanceFromMA   float64      `json:"distance_from_ma"`
	MarketRegime     MarketRegime `json:"market_regime"`
	VixLevel         float64      `json:"vix_level"`
	VolatilitySpread float64      `json:"volatility_spread"`
}

// IsFinite reports whether every numeric field of the vector is finite.
// Vectors failing this are dropped at the feature boundary instead of
// propagating NaN/Inf into training.
func (f FeatureVector) IsFinite() bool {
	for _, v := range []float64{
		f.Close, f.Returns, f.RSI, f.SMA20, f.SMA50, f.VolumeRatio, f.OBV,
		f.MarketReturn, f.RelativeReturn, f.Beta.Value, f.IndexCorrelation.Value,
		f.DistanceFromMA, f.VixLevel, f.VolatilitySpread,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FeatureToggles selects which context columns enter the training matrix.
// Disabled columns are zeroed out of the matrix, not removed from the struct,
// so the matrix width stays stable across configurations.
type FeatureToggles struct {
	Enabled                 bool `yaml:"enabled" default:"true"`
	IncludeBeta             bool `yaml:"include_beta" default:"true"`
	IncludeCorrelation      bool `yaml:"include_correlation" default:"true"`
	IncludeDistanceFromMA   bool `yaml:"include_distance_from_ma" default:"true"`
	IncludeMarketReturn     bool `yaml:"include_market_return" default:"true"`
	IncludeRegime           bool `yaml:"include_regime" default:"true"`
	IncludeRelativeReturn   bool `yaml:"include_relative_return" default:"true"`
	IncludeVix              bool `yaml:"include_vix" default:"true"`
	IncludeVolatilitySpread bool `yaml:"include_volatility_spread" default:"true"`
}

// regimeScore maps the regime onto a numeric column for the model.
func regimeScore(r MarketRegime) float64 {
	switch r {
	case RegimeBull:
		return 1
	case RegimeBear:
		return -1
	default:
		return 0
	}
}

// Column indices the prediction engine depends on when it feeds predicted
// closes back into the window.
const (
	CloseColumn   = 0
	ReturnsColumn = 1
)

// FeatureColumns is the fixed order of the numeric matrix built by Row.
var FeatureColumns = []string{
	"close", "returns", "rsi", "sma_20", "sma_50", "volume_ratio", "obv",
	"market_return", "relative_return", "beta", "index_correlation",
	"distance_from_ma", "market_regime", "vix_level", "volatility_spread",
}

// Row renders the vector as a numeric row in FeatureColumns order,
// zeroing columns the toggles exclude.
func (f FeatureVector) Row(t FeatureToggles) []float64 {
	row := []float64{
		f.Close, f.Returns, f.RSI, f.SMA20, f.SMA50, f.VolumeRatio, f.OBV,
		f.MarketReturn, f.RelativeReturn, f.Beta.Value, f.IndexCorrelation.Value,
		f.DistanceFromMA, regimeScore(f.MarketRegime), f.VixLevel, f.VolatilitySpread,
	}
	if !t.Enabled {
		for i := 7; i < len(row); i++ {
			row[i] = 0
		}
		return row
	}
	if !t.IncludeMarketReturn {
		row[7] = 0
	}
	if !t.IncludeRelativeReturn {
		row[8] = 0
	}
	if !t.IncludeBeta {
		row[9] = 0
	}
	if !t.IncludeCorrelation {
		row[10] = 0
	}
	if !t.IncludeDistanceFromMA {
		row[11] = 0
	}
	if !t.IncludeRegime {
		row[12] = 0
	}
	if !t.IncludeVix {
		row[13] = 0
	}
	if !t.IncludeVolatilitySpread {
		row[14] = 0
	}
	return row
}
