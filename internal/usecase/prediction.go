package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	domsvc "StockCast/internal/domain/service"
	"StockCast/internal/services/dataset"
	"StockCast/internal/services/features"
	"StockCast/pkg/config"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/util"
)

// Predictor loads a persisted model and produces an autoregressive
// multi-day price forecast with widening uncertainty bounds, plus a
// threshold-based trading signal.
type Predictor struct {
	source     *featureSource
	models     domrepo.ModelStore
	forecaster domsvc.SequenceForecaster
	metrics    domrepo.Metrics
	cfg        *config.Config
	log        *applogger.Logger
}

func NewPredictor(quotes domrepo.QuoteStore, store domrepo.ModelStore, forecaster domsvc.SequenceForecaster, engineer *features.Engineer, metrics domrepo.Metrics, cfg *config.Config, log *applogger.Logger) *Predictor {
	return &Predictor{
		source:     newFeatureSource(quotes, engineer, cfg),
		models:     store,
		forecaster: forecaster,
		metrics:    metrics,
		cfg:        cfg,
		log:        log.With("predictor"),
	}
}

// Predict forecasts `days` closing prices ahead of the latest stored quote.
// Each step feeds the previous prediction back into the input window, so the
// model never sees more than windowSize most-recent points, a mix of real
// and predicted values as the horizon grows.
func (p *Predictor) Predict(ctx context.Context, symbol string, days int) (models.PredictionResult, error) {
	started := time.Now()
	defer func() {
		p.metrics.RecordPrediction(symbol, time.Since(started).Seconds())
	}()

	artifact, err := p.models.Load(ctx, symbol)
	if err != nil {
		p.metrics.RecordError("model_load")
		return models.PredictionResult{}, err
	}
	if !p.models.Compatible(artifact, p.cfg.ModelConfig()) {
		p.metrics.RecordError("model_incompatible")
		return models.PredictionResult{}, fmt.Errorf("stored model for %s does not match the current configuration, retrain before predicting", symbol)
	}

	feats, stock, err := p.source.LatestFeatures(ctx, symbol, 0)
	if err != nil {
		return models.PredictionResult{}, err
	}

	windowSize := artifact.Config.WindowSize
	if len(feats) < windowSize {
		return models.PredictionResult{}, models.NewInsufficientData("predictor", windowSize, len(feats))
	}
	current := feats[len(feats)-windowSize:]
	if err := checkContiguous(current); err != nil {
		return models.PredictionResult{}, err
	}

	scaler, err := dataset.ScalerFromParams(artifact.Scaler)
	if err != nil {
		return models.PredictionResult{}, fmt.Errorf("rebuild scaler: %w", err)
	}

	toggles := p.cfg.Market.FeatureConfig
	raw := make([][]float64, windowSize)
	scaled := make([][]float64, windowSize)
	for i, f := range current {
		raw[i] = f.Row(toggles)
		scaled[i] = scaler.TransformRow(raw[i])
	}

	currentPrice := current[len(current)-1].Close
	lastDate := current[len(current)-1].Date
	prevClose := currentPrice

	forecast := make([]models.DailyForecast, 0, days)
	date := lastDate
	for k := 1; k <= days; k++ {
		if err := ctx.Err(); err != nil {
			return models.PredictionResult{}, err
		}

		scaledNext, err := p.forecaster.Predict(ctx, artifact.Model, scaled)
		if err != nil {
			p.metrics.RecordError("forecast")
			return models.PredictionResult{}, fmt.Errorf("predict step %d: %w", k, err)
		}
		price := scaler.InverseTarget(scaledNext)
		if math.IsNaN(price) || math.IsInf(price, 0) {
			p.metrics.RecordError("forecast")
			return models.PredictionResult{}, fmt.Errorf("predict step %d: non-finite price", k)
		}

		bound := artifact.MAE * p.errorGrowth(k)
		date = nextTradingDay(date)
		forecast = append(forecast, models.DailyForecast{
			Date:       date,
			DayOffset:  k,
			Price:      price,
			UpperBound: price + bound,
			LowerBound: math.Max(0, price-bound),
		})

		// Feed the prediction back in: the new row reuses the latest real
		// context columns with the predicted close and its implied return.
		next := make([]float64, len(raw[len(raw)-1]))
		copy(next, raw[len(raw)-1])
		next[models.CloseColumn] = price
		if prevClose != 0 {
			next[models.ReturnsColumn] = (price - prevClose) / prevClose
		} else {
			next[models.ReturnsColumn] = 0
		}
		raw = append(raw[1:], next)
		scaled = append(scaled[1:], scaler.TransformRow(next))
		prevClose = price
	}

	final := forecast[len(forecast)-1].Price
	result := models.PredictionResult{
		Symbol:         symbol,
		PredictionDate: lastDate,
		CurrentPrice:   currentPrice,
		History:        tail(stock, p.cfg.Prediction.HistoryDays),
		Forecast:       forecast,
		MAE:            artifact.MAE,
		PriceChange:    final - currentPrice,
	}
	if currentPrice != 0 {
		result.PercentChange = (final - currentPrice) / currentPrice
	}

	p.log.Info("forecast produced",
		applogger.String("symbol", symbol),
		applogger.Int("days", days),
		applogger.Float64("current_price", currentPrice),
		applogger.Float64("final_price", final),
	)
	return result, nil
}

// GenerateSignal derives a trading signal from a prediction. Pure in
// (percent change, confidence, thresholds): identical inputs always produce
// the identical action.
func (p *Predictor) GenerateSignal(pred models.PredictionResult) models.TradingSignal {
	confidence := Confidence(pred.MAE, pred.CurrentPrice)
	action, reason := classify(pred.PercentChange, confidence,
		p.cfg.Prediction.BuyThreshold, p.cfg.Prediction.SellThreshold, p.cfg.Prediction.MinConfidence)

	p.metrics.RecordSignal(pred.Symbol, string(action))
	return models.TradingSignal{
		Symbol:     pred.Symbol,
		Action:     action,
		Confidence: confidence,
		Delta:      pred.PercentChange,
		Reason:     reason,
		Timestamp:  time.Now().UTC(),
	}
}

// Confidence maps the model's residual error onto [0,1]. Lower relative
// error means higher confidence, monotonically; an error as large as the
// price itself means none.
func Confidence(mae, price float64) float64 {
	if price <= 0 || mae < 0 || math.IsNaN(mae) {
		return 0
	}
	c := 1 - mae/price
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func classify(delta, confidence, buy, sell, minConfidence float64) (models.SignalAction, string) {
	switch {
	case delta >= buy && confidence >= minConfidence:
		return models.ActionBuy, fmt.Sprintf("predicted move %+.2f%% clears buy threshold %+.2f%%", delta*100, buy*100)
	case delta <= sell && confidence >= minConfidence:
		return models.ActionSell, fmt.Sprintf("predicted move %+.2f%% clears sell threshold %+.2f%%", delta*100, sell*100)
	case confidence < minConfidence:
		return models.ActionHold, fmt.Sprintf("confidence %.2f below minimum %.2f", confidence, minConfidence)
	default:
		return models.ActionHold, fmt.Sprintf("predicted move %+.2f%% inside thresholds", delta*100)
	}
}

func (p *Predictor) errorGrowth(k int) float64 {
	if strings.EqualFold(p.cfg.Prediction.ErrorGrowth, "linear") {
		return float64(k)
	}
	return math.Sqrt(float64(k))
}

// checkContiguous rejects a prediction window that spans a calendar gap.
func checkContiguous(window []models.FeatureVector) error {
	for i := 1; i < len(window); i++ {
		if util.DaysBetween(window[i-1].Date, window[i].Date) > dataset.MaxCalendarGapDays {
			return fmt.Errorf("gap between %s and %s in prediction window: %w",
				window[i-1].Date, window[i].Date, models.ErrSeriesGap)
		}
	}
	return nil
}

// nextTradingDay advances one calendar day, then skips over weekends.
func nextTradingDay(date string) string {
	d := util.AddDays(date, 1)
	if t, ok := util.ParseDate(d); ok {
		for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
			t = t.AddDate(0, 0, 1)
		}
		return util.FormatDate(t)
	}
	return d
}

func tail(points []models.PricePoint, n int) []models.PricePoint {
	if n <= 0 || len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}
