package usecase

import (
	"context"
	"fmt"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/services/features"
	"StockCast/pkg/config"
)

// quoteFetchDepth is how many daily quotes are loaded per series before
// feature engineering. Generous enough to cover the 200-day benchmark
// moving average plus the largest configurable window.
const quoteFetchDepth = 600

// featureSource loads the three aligned series a symbol needs and turns
// them into feature vectors.
type featureSource struct {
	quotes   domrepo.QuoteStore
	engineer *features.Engineer
	cfg      *config.Config
}

func newFeatureSource(quotes domrepo.QuoteStore, engineer *features.Engineer, cfg *config.Config) *featureSource {
	return &featureSource{quotes: quotes, engineer: engineer, cfg: cfg}
}

// LatestFeatures fetches the n most recent quotes for the symbol, the
// benchmark and the volatility index, and runs feature engineering.
// n <= 0 falls back to the default fetch depth. The raw stock series is
// returned alongside for historical context.
func (s *featureSource) LatestFeatures(ctx context.Context, symbol string, n int) ([]models.FeatureVector, []models.PricePoint, error) {
	if n <= 0 {
		n = quoteFetchDepth
	}
	stock, err := s.quotes.GetLatestQuotes(ctx, symbol, n)
	if err != nil {
		return nil, nil, fmt.Errorf("load quotes for %s: %w", symbol, err)
	}
	market, err := s.quotes.GetLatestQuotes(ctx, s.cfg.Market.BenchmarkSymbol, n)
	if err != nil {
		return nil, nil, fmt.Errorf("load benchmark quotes: %w", err)
	}
	volatility, err := s.quotes.GetLatestQuotes(ctx, s.cfg.Market.VolatilitySymbol, n)
	if err != nil {
		return nil, nil, fmt.Errorf("load volatility quotes: %w", err)
	}

	feats, err := s.engineer.Calculate(ctx, symbol, stock, market, volatility)
	if err != nil {
		return nil, nil, err
	}
	return feats, stock, nil
}
