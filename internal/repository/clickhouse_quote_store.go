package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	pkgch "StockCast/pkg/clickhouse"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/util"
)

// CHQuoteStore reads daily quotes from ClickHouse. The table is appended by
// the external sync collaborator; this store never writes.
type CHQuoteStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHQuoteStore(ch *pkgch.Client, table string) *CHQuoteStore {
	if table == "" {
		table = "daily_quotes"
	}
	return &CHQuoteStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHQuoteStore) SetLogger(l *applogger.Logger) { s.l = l }

// Schema returns the DDL the store expects, for bootstrap via InitSchema.
func (s *CHQuoteStore) Schema() []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            date      Date,
            symbol    LowCardinality(String),
            open      Float64,
            high      Float64,
            low       Float64,
            close     Float64,
            adj_close Float64,
            volume    Float64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (symbol, date)
    `, s.table)}
}

func (s *CHQuoteStore) GetDailyQuotes(ctx context.Context, symbol, from, to string) ([]models.PricePoint, error) {
	start := time.Now()
	const qtpl = `
        SELECT date, open, high, low, close, adj_close, volume
        FROM %s
        WHERE symbol = ? AND date >= ? AND date <= ?
        ORDER BY date ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		s.logError("daily_quotes query error", symbol, err)
		return nil, fmt.Errorf("get daily quotes: %w", err)
	}
	defer rows.Close()

	out, err := s.scanQuotes(rows, symbol)
	if err != nil {
		return nil, err
	}
	s.logOK("daily_quotes ok", symbol, len(out), time.Since(start))
	return out, nil
}

func (s *CHQuoteStore) GetLatestQuotes(ctx context.Context, symbol string, n int) ([]models.PricePoint, error) {
	start := time.Now()
	const qtpl = `
        SELECT date, open, high, low, close, adj_close, volume
        FROM (
            SELECT date, open, high, low, close, adj_close, volume
            FROM %s
            WHERE symbol = ?
            ORDER BY date DESC
            LIMIT ?
        )
        ORDER BY date ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		s.logError("latest_quotes query error", symbol, err)
		return nil, fmt.Errorf("get latest quotes: %w", err)
	}
	defer rows.Close()

	out, err := s.scanQuotes(rows, symbol)
	if err != nil {
		return nil, err
	}
	s.logOK("latest_quotes ok", symbol, len(out), time.Since(start))
	return out, nil
}

func (s *CHQuoteStore) scanQuotes(rows *sql.Rows, symbol string) ([]models.PricePoint, error) {
	out := make([]models.PricePoint, 0, 512)
	for rows.Next() {
		var (
			d time.Time
			p models.PricePoint
		)
		if err := rows.Scan(&d, &p.Open, &p.High, &p.Low, &p.Close, &p.AdjClose, &p.Volume); err != nil {
			s.logError("quotes scan error", symbol, err)
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		p.Date = util.FormatDate(d)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		s.logError("quotes rows error", symbol, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHQuoteStore) logError(msg, symbol string, err error) {
	if s.l != nil {
		s.l.Error("clickhouse "+msg,
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}
}

func (s *CHQuoteStore) logOK(msg, symbol string, rows int, took time.Duration) {
	if s.l != nil {
		s.l.Debug("clickhouse "+msg,
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Int("rows", rows),
			applogger.Duration("duration_ms", took),
		)
	}
}
