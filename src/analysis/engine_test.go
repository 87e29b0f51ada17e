package analysis

import (
	"math"
	"testing"
	"time"

	"market-terminal/src/models"
)

// -----------------------------------------------------------------------------

func fptr(f float64) *float64 { return &f }

func bar(ticker string, day int, open, close float64) models.MMarketRow {
	return models.MMarketRow{
		Ticker:    ticker,
		AssetType: models.AssetStocks,
		Date:      time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC),
		Open:      fptr(open),
		Close:     fptr(close),
	}
}

func testEngine(window int) *Engine {
	return NewEngine(&models.MConfig{Analysis: models.MAnalysisConfig{RollingWindow: window}})
}

// -----------------------------------------------------------------------------

func TestComputeUnknownMode(t *testing.T) {
	if _, err := testEngine(20).Compute(nil, "vwap"); err == nil {
		t.Fatal("unknown mode must error")
	}
}

// -----------------------------------------------------------------------------

func TestRollingMeanGroupsPerTicker(t *testing.T) {
	// Interleaved tickers: a window across the concatenation would mix them.
	var rows []models.MMarketRow
	for day := 1; day <= 3; day++ {
		rows = append(rows, bar("AAPL", day, 100, float64(day)))
		rows = append(rows, bar("MSFT", day, 100, float64(day*10)))
	}

	series := testEngine(3).RollingMeanByTicker(rows)

	aapl, ok := series["AAPL"]
	if !ok || len(aapl) != 3 {
		t.Fatalf("expected 3 AAPL points, got %v", aapl)
	}
	if aapl[0].Value != nil || aapl[1].Value != nil {
		t.Errorf("first two positions must be nil")
	}
	if aapl[2].Value == nil || math.Abs(*aapl[2].Value-2) > 1e-9 {
		t.Errorf("AAPL window mean should be 2, got %v", aapl[2].Value)
	}

	msft := series["MSFT"]
	if msft[2].Value == nil || math.Abs(*msft[2].Value-20) > 1e-9 {
		t.Errorf("MSFT window mean should be 20, got %v", msft[2].Value)
	}
}

// -----------------------------------------------------------------------------

func TestPerformanceByTicker(t *testing.T) {
	rows := []models.MMarketRow{
		bar("AAPL", 1, 100, 110),
		bar("AAPL", 2, 110, 120),
	}

	series := testEngine(20).PerformanceByTicker(rows)
	aapl := series["AAPL"]
	if len(aapl) != 2 {
		t.Fatalf("expected 2 points, got %v", aapl)
	}
	if math.Abs(*aapl[0].Value-10) > 1e-9 {
		t.Errorf("day 1 should be +10%%, got %v", *aapl[0].Value)
	}
	if math.Abs(*aapl[1].Value-20) > 1e-9 {
		t.Errorf("day 2 should be +20%%, got %v", *aapl[1].Value)
	}
}

// -----------------------------------------------------------------------------

func TestPerformanceOmitsZeroBaseline(t *testing.T) {
	rows := []models.MMarketRow{
		bar("DEAD", 1, 0, 1),
		bar("AAPL", 1, 100, 110),
	}

	series := testEngine(20).PerformanceByTicker(rows)
	if _, ok := series["DEAD"]; ok {
		t.Error("zero-baseline ticker must be omitted")
	}
	if _, ok := series["AAPL"]; !ok {
		t.Error("healthy ticker must be unaffected")
	}
}

// -----------------------------------------------------------------------------

func TestSummaries(t *testing.T) {
	rows := []models.MMarketRow{
		bar("AAPL", 1, 100, 105),
		bar("AAPL", 2, 105, 110),
	}

	summaries := testEngine(20).Summaries(rows)
	s, ok := summaries["AAPL"]
	if !ok {
		t.Fatal("expected AAPL summary")
	}
	if s.Close != 110 {
		t.Errorf("latest close should be 110, got %v", s.Close)
	}
	if math.Abs(s.ChangePct-10) > 1e-9 {
		t.Errorf("change should be +10%%, got %v", s.ChangePct)
	}
	if !s.LatestDate.Equal(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("latest date wrong: %v", s.LatestDate)
	}
}

// -----------------------------------------------------------------------------

func TestGroupByTickerPreservesOrderAndSkipsNilClose(t *testing.T) {
	rows := []models.MMarketRow{
		bar("AAPL", 1, 100, 101),
		{Ticker: "AAPL", Date: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}, // nil Close
		bar("AAPL", 3, 100, 103),
	}

	groups := GroupByTicker(rows)
	group := groups["AAPL"]
	if len(group) != 2 {
		t.Fatalf("nil-close row must be excluded, got %d rows", len(group))
	}
	if !group[0].Date.Before(group[1].Date) {
		t.Error("relative order must be preserved")
	}
}
