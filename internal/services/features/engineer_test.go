package features

import (
	"context"
	"math"
	"testing"

	"StockCast/internal/domain/models"
	"StockCast/pkg/util"
)

func dailySeries(start string, closes []float64) []models.PricePoint {
	day, _ := util.ParseDate(start)
	out := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = models.PricePoint{
			Date:     util.FormatDate(day.AddDate(0, 0, i)),
			Open:     c,
			High:     c * 1.01,
			Low:      c * 0.99,
			Close:    c,
			AdjClose: c,
			Volume:   1000,
		}
	}
	return out
}

func increasing(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func decreasing(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start - float64(i)*step
	}
	return out
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func newTestEngineer() *Engineer {
	return NewEngineer(nil, nil)
}

func TestCalculateSkipsFirstDate(t *testing.T) {
	n := 40
	stock := dailySeries("2024-01-01", increasing(n, 100, 1))
	market := dailySeries("2024-01-01", increasing(n, 4000, 2))
	vix := dailySeries("2024-01-01", flat(n, 15))

	got, err := newTestEngineer().Calculate(context.Background(), "TEST", stock, market, vix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != n-1 {
		t.Fatalf("expected %d vectors, got %d", n-1, len(got))
	}
	if got[0].Date != stock[1].Date {
		t.Fatalf("expected first vector at %s, got %s", stock[1].Date, got[0].Date)
	}
}

func TestCalculateSkipsMisalignedBenchmarkDates(t *testing.T) {
	n := 30
	stock := dailySeries("2024-01-01", increasing(n, 100, 1))
	market := dailySeries("2024-01-01", increasing(n, 4000, 2))
	vix := dailySeries("2024-01-01", flat(n, 15))

	// Remove one mid-series benchmark date; that stock date must vanish
	// from the output without any fill.
	missing := market[10].Date
	market = append(market[:10:10], market[11:]...)

	got, err := newTestEngineer().Calculate(context.Background(), "TEST", stock, market, vix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range got {
		if v.Date == missing {
			t.Fatalf("expected date %s to be skipped", missing)
		}
	}
	if len(got) != n-2 {
		t.Fatalf("expected %d vectors, got %d", n-2, len(got))
	}
}

func TestCalculateDropsDatesWithoutVolatilityEntry(t *testing.T) {
	n := 30
	stock := dailySeries("2024-01-01", increasing(n, 100, 1))
	market := dailySeries("2024-01-01", increasing(n, 4000, 2))
	vix := dailySeries("2024-01-01", flat(n, 15))

	missing := vix[5].Date
	vix = append(vix[:5:5], vix[6:]...)

	got, err := newTestEngineer().Calculate(context.Background(), "TEST", stock, market, vix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range got {
		if v.Date == missing {
			t.Fatalf("expected date %s to be dropped", missing)
		}
	}
}

func TestBetaDefaultsBelowWindow(t *testing.T) {
	n := 25 // < BetaWindow+1 aligned observations
	stock := dailySeries("2024-01-01", increasing(n, 100, 1))
	market := dailySeries("2024-01-01", increasing(n, 4000, 2))
	vix := dailySeries("2024-01-01", flat(n, 15))

	got, err := newTestEngineer().Calculate(context.Background(), "TEST", stock, market, vix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := got[len(got)-1]
	if !last.Beta.Defaulted || last.Beta.Value != 1 {
		t.Fatalf("expected defaulted beta 1, got %+v", last.Beta)
	}
}

func TestCorrelationDefaultsBelowWindow(t *testing.T) {
	n := 15 // < CorrelationWindow aligned observations
	stock := dailySeries("2024-01-01", increasing(n, 100, 1))
	market := dailySeries("2024-01-01", increasing(n, 4000, 2))
	vix := dailySeries("2024-01-01", flat(n, 15))

	got, err := newTestEngineer().Calculate(context.Background(), "TEST", stock, market, vix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := got[len(got)-1]
	if !last.IndexCorrelation.Defaulted || last.IndexCorrelation.Value != 0 {
		t.Fatalf("expected defaulted correlation 0, got %+v", last.IndexCorrelation)
	}
}

func TestBetaMeasuredWithEnoughObservations(t *testing.T) {
	n := 60
	closes := make([]float64, n)
	marketCloses := make([]float64, n)
	closes[0], marketCloses[0] = 100, 4000
	for i := 1; i < n; i++ {
		// stock moves at exactly twice the benchmark's daily return
		r := 0.001 * float64((i%5)-2)
		marketCloses[i] = marketCloses[i-1] * (1 + r)
		closes[i] = closes[i-1] * (1 + 2*r)
	}
	stock := dailySeries("2024-01-01", closes)
	market := dailySeries("2024-01-01", marketCloses)
	vix := dailySeries("2024-01-01", flat(n, 15))

	got, err := newTestEngineer().Calculate(context.Background(), "TEST", stock, market, vix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := got[len(got)-1]
	if last.Beta.Defaulted {
		t.Fatalf("expected measured beta, got defaulted: %s", last.Beta.Reason)
	}
	if math.Abs(last.Beta.Value-2) > 0.05 {
		t.Fatalf("expected beta near 2, got %f", last.Beta.Value)
	}
	if last.IndexCorrelation.Defaulted || last.IndexCorrelation.Value < 0.99 {
		t.Fatalf("expected correlation near 1, got %+v", last.IndexCorrelation)
	}
}

func TestRegimeClassification(t *testing.T) {
	n := 260
	vix := dailySeries("2023-01-01", flat(n, 15))

	bullStock := dailySeries("2023-01-01", increasing(n, 100, 0.5))
	bullMarket := dailySeries("2023-01-01", increasing(n, 4000, 2))
	got, err := newTestEngineer().Calculate(context.Background(), "TEST", bullStock, bullMarket, vix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[len(got)-1].MarketRegime != models.RegimeBull {
		t.Fatalf("expected BULL tail, got %s", got[len(got)-1].MarketRegime)
	}

	bearStock := dailySeries("2023-01-01", decreasing(n, 500, 0.5))
	bearMarket := dailySeries("2023-01-01", decreasing(n, 4000, 2))
	got, err = newTestEngineer().Calculate(context.Background(), "TEST", bearStock, bearMarket, vix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[len(got)-1].MarketRegime != models.RegimeBear {
		t.Fatalf("expected BEAR tail, got %s", got[len(got)-1].MarketRegime)
	}

	flatStock := dailySeries("2023-01-01", flat(n, 100))
	flatMarket := dailySeries("2023-01-01", flat(n, 4000))
	got, err = newTestEngineer().Calculate(context.Background(), "TEST", flatStock, flatMarket, vix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[len(got)-1].MarketRegime != models.RegimeNeutral {
		t.Fatalf("expected NEUTRAL tail, got %s", got[len(got)-1].MarketRegime)
	}
}

func TestClassifyRegimePure(t *testing.T) {
	if r := ClassifyRegime(110, 105, 100); r != models.RegimeBull {
		t.Fatalf("expected BULL, got %s", r)
	}
	if r := ClassifyRegime(90, 95, 100); r != models.RegimeBear {
		t.Fatalf("expected BEAR, got %s", r)
	}
	if r := ClassifyRegime(110, 95, 100); r != models.RegimeNeutral {
		t.Fatalf("expected NEUTRAL, got %s", r)
	}
}

func TestCalculateInsufficientData(t *testing.T) {
	stock := dailySeries("2024-01-01", []float64{100})
	_, err := newTestEngineer().Calculate(context.Background(), "TEST", stock, nil, nil)
	if !models.IsInsufficientData(err) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}

func TestCalculateNoAlignedDates(t *testing.T) {
	stock := dailySeries("2024-01-01", increasing(10, 100, 1))
	market := dailySeries("2030-01-01", increasing(10, 4000, 2))
	vix := dailySeries("2030-01-01", flat(10, 15))
	_, err := newTestEngineer().Calculate(context.Background(), "TEST", stock, market, vix)
	if !models.IsInsufficientData(err) {
		t.Fatalf("expected InsufficientDataError for zero usable dates, got %v", err)
	}
}
