package repository

import (
	"context"

	"StockCast/internal/domain/models"
)

// QuoteStore provides read-only access to stored daily quotes. Writes are
// owned by the external sync collaborator; this core never appends.
type QuoteStore interface {
	// GetDailyQuotes returns quotes for symbol in [from, to], ordered by date ascending.
	GetDailyQuotes(ctx context.Context, symbol, from, to string) ([]models.PricePoint, error)
	// GetLatestQuotes returns the most recent n quotes, ordered by date ascending.
	GetLatestQuotes(ctx context.Context, symbol string, n int) ([]models.PricePoint, error)
}
