// Package features combines a target instrument's series with benchmark and
// volatility-index context into the per-date vectors the forecaster trains on.
package features

import (
	"context"
	"fmt"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/indicators"
	applogger "StockCast/pkg/logger"
)

const (
	// BetaWindow is the minimum trailing observations for a measured beta.
	BetaWindow = 30
	// CorrelationWindow is the minimum trailing observations for a measured
	// correlation; volatility spread uses the same window.
	CorrelationWindow = 20

	rsiPeriod     = 14
	volumePeriod  = 20
	benchmarkFast = 50
	benchmarkSlow = 200
)

// Engineer builds FeatureVectors. Indicator calls go through the memoizer so
// repeated runs over the same series don't recompute.
type Engineer struct {
	memo *indicators.Memoizer
	log  *applogger.Logger
}

func NewEngineer(memo *indicators.Memoizer, log *applogger.Logger) *Engineer {
	return &Engineer{memo: memo, log: log}
}

func seriesID(symbol string, series []models.PricePoint) string {
	if len(series) == 0 {
		return symbol
	}
	return fmt.Sprintf("%s:%s:%s", symbol, series[0].Date, series[len(series)-1].Date)
}

// Calculate produces one FeatureVector per stock date with index >= 1 where
// the benchmark and volatility series carry an aligned entry. Misaligned
// benchmark or volatility dates are skipped, never filled. Nothing is ever
// computed from a date later than the vector's own.
func (e *Engineer) Calculate(ctx context.Context, symbol string, stock, market, volatility []models.PricePoint) ([]models.FeatureVector, error) {
	if len(stock) < 2 {
		return nil, models.NewInsufficientData("features", 2, len(stock))
	}

	stockCloses := models.Closes(stock)
	stockVolumes := models.Volumes(stock)
	marketCloses := models.Closes(market)

	stockID := seriesID(symbol, stock)
	marketID := seriesID("benchmark", market)

	stockReturns := e.memo.Returns(ctx, stockID, stockCloses)
	marketReturns := e.memo.Returns(ctx, marketID, marketCloses)
	rsi := e.memo.RSI(ctx, stockID, stockCloses, rsiPeriod)
	sma20 := e.memo.SMA(ctx, stockID, stockCloses, 20)
	sma50 := e.memo.SMA(ctx, stockID, stockCloses, benchmarkFast)
	ma50 := e.memo.SMA(ctx, marketID, marketCloses, benchmarkFast)
	ma200 := e.memo.SMA(ctx, marketID, marketCloses, benchmarkSlow)
	volumeRatio := indicators.VolumeRatio(stockVolumes, volumePeriod)
	obv := indicators.OBV(stockCloses, stockVolumes)

	marketIdx := make(map[string]int, len(market))
	for i, p := range market {
		marketIdx[p.Date] = i
	}
	volIdx := make(map[string]int, len(volatility))
	for i, p := range volatility {
		volIdx[p.Date] = i
	}

	// Trailing aligned return pairs for beta/correlation/spread. Only dates
	// that produced a vector contribute, so both series stay in lockstep.
	alignedStock := make([]float64, 0, len(stock))
	alignedMarket := make([]float64, 0, len(stock))

	vectors := make([]models.FeatureVector, 0, len(stock)-1)
	dropped := 0
	for i := 1; i < len(stock); i++ {
		date := stock[i].Date

		mi, ok := marketIdx[date]
		if !ok || mi == 0 {
			// No benchmark return for this date; skipped entirely.
			continue
		}
		vi, ok := volIdx[date]
		if !ok {
			// Volatility-index absence drops the date (stricter than the
			// benchmark: no neutral fallback).
			continue
		}

		alignedStock = append(alignedStock, stockReturns[i])
		alignedMarket = append(alignedMarket, marketReturns[mi])

		beta := trailingBeta(alignedStock, alignedMarket)
		corr := trailingCorrelation(alignedStock, alignedMarket)

		v := models.FeatureVector{
			Date:             date,
			Close:            stock[i].Close,
			Returns:          stockReturns[i],
			RSI:              rsi[i],
			SMA20:            sma20[i],
			SMA50:            sma50[i],
			VolumeRatio:      volumeRatio[i],
			OBV:              obv[i],
			MarketReturn:     marketReturns[mi],
			RelativeReturn:   stockReturns[i] - marketReturns[mi],
			Beta:             beta,
			IndexCorrelation: corr,
			DistanceFromMA:   distanceFromMA(market[mi].Close, ma200[mi]),
			MarketRegime:     ClassifyRegime(market[mi].Close, ma50[mi], ma200[mi]),
			VixLevel:         volatility[vi].Close,
			VolatilitySpread: trailingSpread(alignedStock, alignedMarket),
		}

		if !v.IsFinite() {
			dropped++
			continue
		}
		vectors = append(vectors, v)
	}

	if dropped > 0 && e.log != nil {
		e.log.Warn("dropped non-finite feature vectors",
			applogger.String("symbol", symbol),
			applogger.Int("dropped", dropped),
		)
	}
	if len(vectors) == 0 {
		return nil, models.NewInsufficientData("features", 1, 0)
	}
	return vectors, nil
}

// trailingBeta estimates beta over the trailing BetaWindow aligned
// observations. Fewer observations, or a flat benchmark window, defaults to
// the neutral sensitivity of 1.
func trailingBeta(stockReturns, marketReturns []float64) models.FeatureValue {
	if len(stockReturns) < BetaWindow {
		return models.Defaulted(1, "fewer than 30 aligned observations")
	}
	s := stockReturns[len(stockReturns)-BetaWindow:]
	m := marketReturns[len(marketReturns)-BetaWindow:]
	mv := variance(m)
	if mv == 0 {
		return models.Defaulted(1, "zero benchmark variance")
	}
	return models.Measured(covariance(s, m) / mv)
}

// trailingCorrelation computes Pearson correlation over the trailing
// CorrelationWindow aligned observations, defaulting to 0.
func trailingCorrelation(stockReturns, marketReturns []float64) models.FeatureValue {
	if len(stockReturns) < CorrelationWindow {
		return models.Defaulted(0, "fewer than 20 aligned observations")
	}
	s := stockReturns[len(stockReturns)-CorrelationWindow:]
	m := marketReturns[len(marketReturns)-CorrelationWindow:]
	r, ok := pearson(s, m)
	if !ok {
		return models.Defaulted(0, "zero variance in window")
	}
	return models.Measured(r)
}

func trailingSpread(stockReturns, marketReturns []float64) float64 {
	return indicators.Volatility(stockReturns, CorrelationWindow) -
		indicators.Volatility(marketReturns, CorrelationWindow)
}

func distanceFromMA(price, ma200 float64) float64 {
	if ma200 == 0 {
		return 0
	}
	return (price - ma200) / ma200
}

// ClassifyRegime is a pure function of the benchmark price and its two
// moving averages.
func ClassifyRegime(price, ma50, ma200 float64) models.MarketRegime {
	switch {
	case price > ma200 && ma50 > ma200:
		return models.RegimeBull
	case price < ma200 && ma50 < ma200:
		return models.RegimeBear
	default:
		return models.RegimeNeutral
	}
}
