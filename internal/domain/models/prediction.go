package models

import "time"

// SignalAction is the discrete trading recommendation.
type SignalAction string

const (
	ActionBuy  SignalAction = "BUY"
	ActionSell SignalAction = "SELL"
	ActionHold SignalAction = "HOLD"
)

// DailyForecast is one step of the predicted price path. Bounds widen with
// the day offset; day 1 carries the raw model error.
type DailyForecast struct {
	Date       string  `json:"date"`
	DayOffset  int     `json:"day_offset"`
	Price      float64 `json:"price"`
	UpperBound float64 `json:"upper_bound"`
	LowerBound float64 `json:"lower_bound"`
}

// PredictionResult is the full autoregressive forecast for a symbol.
type PredictionResult struct {
	Symbol         string          `json:"symbol"`
	PredictionDate string          `json:"prediction_date"`
	CurrentPrice   float64         `json:"current_price"`
	History        []PricePoint    `json:"history"`
	Forecast       []DailyForecast `json:"forecast"`
	MAE            float64         `json:"mean_absolute_error"`
	PriceChange    float64         `json:"price_change"`
	PercentChange  float64         `json:"percent_change"`
}

// TradingSignal is the threshold-based recommendation derived from a
// prediction. Identical inputs always produce the identical action.
type TradingSignal struct {
	Symbol     string       `json:"symbol"`
	Action     SignalAction `json:"action"`
	Confidence float64      `json:"confidence"`
	Delta      float64      `json:"delta"`
	Reason     string       `json:"reason"`
	Timestamp  time.Time    `json:"timestamp"`
}
