package analysis

import (
	"testing"
	"time"

	"market-terminal/src/models"
)

// -----------------------------------------------------------------------------

func contract(symbol string, strike float64, price float64, updated time.Time) models.MOptionRow {
	return models.MOptionRow{
		UnderlyingTicker: "AAPL",
		ContractSymbol:   symbol,
		Type:             models.OptionCall,
		Strike:           fptr(strike),
		LastPrice:        fptr(price),
		LastUpdated:      updated,
	}
}

// -----------------------------------------------------------------------------

func TestLatestSnapshotKeepsNewestPerContract(t *testing.T) {
	t0 := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(30 * time.Minute)
	t2 := t0.Add(60 * time.Minute)

	history := []models.MOptionRow{
		contract("C200", 200, 5.0, t0),
		contract("C210", 210, 3.0, t0),
		contract("C200", 200, 5.5, t2),
		contract("C200", 200, 5.2, t1),
	}

	snapshot := LatestSnapshot(history)
	if len(snapshot) != 2 {
		t.Fatalf("expected one row per contract, got %d", len(snapshot))
	}

	byName := make(map[string]models.MOptionRow)
	for _, row := range snapshot {
		byName[row.ContractSymbol] = row
	}

	c200 := byName["C200"]
	if !c200.LastUpdated.Equal(t2) || *c200.LastPrice != 5.5 {
		t.Errorf("C200 should resolve to its newest observation, got %+v", c200)
	}
}

// -----------------------------------------------------------------------------

func TestLatestSnapshotTieBreakIsDeterministic(t *testing.T) {
	ts := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	history := []models.MOptionRow{
		contract("C200", 200, 1.0, ts),
		contract("C200", 200, 2.0, ts),
	}

	// Equal timestamps resolve to the later row in input order, every time.
	for i := 0; i < 10; i++ {
		snapshot := LatestSnapshot(history)
		if len(snapshot) != 1 {
			t.Fatalf("expected 1 row, got %d", len(snapshot))
		}
		if *snapshot[0].LastPrice != 2.0 {
			t.Fatalf("tie must resolve to the later input row, got price %v", *snapshot[0].LastPrice)
		}
	}
}

// -----------------------------------------------------------------------------

func TestLatestSnapshotEmpty(t *testing.T) {
	if got := LatestSnapshot(nil); got != nil {
		t.Errorf("empty history should yield nil, got %v", got)
	}
}

// -----------------------------------------------------------------------------

func TestSplitLegsSortsByStrike(t *testing.T) {
	ts := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	put := contract("P190", 190, 2.0, ts)
	put.Type = models.OptionPut

	noStrike := contract("C???", 0, 1.0, ts)
	noStrike.Strike = nil

	rows := []models.MOptionRow{
		contract("C210", 210, 3.0, ts),
		noStrike,
		contract("C200", 200, 5.0, ts),
		put,
	}

	calls, puts := SplitLegs(rows)
	if len(calls) != 3 || len(puts) != 1 {
		t.Fatalf("expected 3 calls / 1 put, got %d/%d", len(calls), len(puts))
	}
	if *calls[0].Strike != 200 || *calls[1].Strike != 210 {
		t.Errorf("calls must be strike-ascending, got %v then %v", calls[0].Strike, calls[1].Strike)
	}
	if calls[2].Strike != nil {
		t.Errorf("null strikes must sort last")
	}
}
