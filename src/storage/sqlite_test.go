package storage

import (
	"testing"
	"time"

	"market-terminal/src/logger"
	"market-terminal/src/models"
)

// -----------------------------------------------------------------------------

func fptr(f float64) *float64 { return &f }
func iptr(n int64) *int64     { return &n }

func memoryDB(t *testing.T) *SQLiteDB {
	t.Helper()

	cfg := &models.MConfig{
		Storage: models.MStorageConfig{DBType: "sqlite", DBPath: ":memory:"},
	}
	db, err := NewSQLiteDB(cfg, logger.NewLogger("test"))
	if err != nil {
		t.Fatalf("NewSQLiteDB: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// -----------------------------------------------------------------------------

func TestMarketRoundTrip(t *testing.T) {
	db := memoryDB(t)

	d1 := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 1, 5, 10, 15, 0, 0, time.UTC)
	updated := time.Date(2026, 1, 5, 10, 20, 0, 123456789, time.UTC)

	rows := []models.MMarketRow{
		{
			Ticker: "AAPL", AssetType: models.AssetStocks, Date: d2,
			Open: fptr(101), High: fptr(102), Low: fptr(100), Close: fptr(101.5),
			Volume: iptr(1000), LastUpdated: updated,
		},
		{
			Ticker: "AAPL", AssetType: models.AssetStocks, Date: d1,
			Close: fptr(100.5), LastUpdated: updated, // other fields NULL
		},
	}

	if err := db.AppendMarketRows(rows); err != nil {
		t.Fatalf("AppendMarketRows: %v", err)
	}

	got, err := db.QueryMarketRows(models.MMarketFilter{AssetType: models.AssetStocks})
	if err != nil {
		t.Fatalf("QueryMarketRows: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}

	// Date ascending regardless of insertion order
	if !got[0].Date.Equal(d1) || !got[1].Date.Equal(d2) {
		t.Errorf("rows not ordered by date: %v then %v", got[0].Date, got[1].Date)
	}

	// Nulls survive the round trip as nils
	first := got[0]
	if first.Open != nil || first.High != nil || first.Low != nil || first.Volume != nil {
		t.Errorf("null fields should come back nil: %+v", first)
	}
	if first.Close == nil || *first.Close != 100.5 {
		t.Errorf("close lost in round trip: %v", first.Close)
	}

	// LastUpdated keeps nanosecond precision
	if !got[1].LastUpdated.Equal(updated) {
		t.Errorf("last_updated lost precision: %v vs %v", got[1].LastUpdated, updated)
	}
}

// -----------------------------------------------------------------------------

func TestMarketAppendAccumulates(t *testing.T) {
	db := memoryDB(t)

	row := models.MMarketRow{
		Ticker: "BTC-USD", AssetType: models.AssetCrypto,
		Date:        time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Close:       fptr(42000),
		LastUpdated: time.Now().UTC(),
	}

	for i := 0; i < 3; i++ {
		if err := db.AppendMarketRows([]models.MMarketRow{row}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := db.QueryMarketRows(models.MMarketFilter{AssetType: models.AssetCrypto})
	if err != nil {
		t.Fatalf("QueryMarketRows: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("appends must accumulate, expected 3 rows, got %d", len(got))
	}
}

// -----------------------------------------------------------------------------

func TestMarketTickerFilter(t *testing.T) {
	db := memoryDB(t)

	updated := time.Now().UTC()
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rows := []models.MMarketRow{
		{Ticker: "AAPL", AssetType: models.AssetStocks, Date: date, Close: fptr(1), LastUpdated: updated},
		{Ticker: "MSFT", AssetType: models.AssetStocks, Date: date, Close: fptr(2), LastUpdated: updated},
		{Ticker: "NVDA", AssetType: models.AssetStocks, Date: date, Close: fptr(3), LastUpdated: updated},
	}
	if err := db.AppendMarketRows(rows); err != nil {
		t.Fatalf("AppendMarketRows: %v", err)
	}

	got, err := db.QueryMarketRows(models.MMarketFilter{
		AssetType: models.AssetStocks,
		Tickers:   []string{"AAPL", "NVDA"},
	})
	if err != nil {
		t.Fatalf("QueryMarketRows: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 filtered rows, got %d", len(got))
	}
	for _, row := range got {
		if row.Ticker == "MSFT" {
			t.Errorf("MSFT should be filtered out")
		}
	}
}

// -----------------------------------------------------------------------------

func TestOptionsRoundTripAndOrdering(t *testing.T) {
	db := memoryDB(t)

	expiry := time.Date(2026, 9, 18, 0, 0, 0, 0, time.UTC)
	t0 := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(30 * time.Minute)

	rows := []models.MOptionRow{
		{
			UnderlyingTicker: "AAPL", ContractSymbol: "C200", Type: models.OptionCall,
			Strike: fptr(200), Expiry: expiry, LastPrice: fptr(5.5),
			ImpliedVolatility: fptr(0.3), LastUpdated: t1,
		},
		{
			UnderlyingTicker: "AAPL", ContractSymbol: "P200", Type: models.OptionPut,
			Expiry: expiry, LastUpdated: t0, // strike/price/iv NULL
		},
	}
	if err := db.AppendOptionRows(rows); err != nil {
		t.Fatalf("AppendOptionRows: %v", err)
	}

	got, err := db.QueryOptionRows("AAPL")
	if err != nil {
		t.Fatalf("QueryOptionRows: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}

	// last_updated ascending
	if !got[0].LastUpdated.Equal(t0) || !got[1].LastUpdated.Equal(t1) {
		t.Errorf("rows not ordered by last_updated: %v then %v", got[0].LastUpdated, got[1].LastUpdated)
	}

	if got[0].Strike != nil || got[0].LastPrice != nil || got[0].ImpliedVolatility != nil {
		t.Errorf("null option fields should come back nil: %+v", got[0])
	}
	if got[1].Type != models.OptionCall || !got[1].Expiry.Equal(expiry) {
		t.Errorf("typed fields lost in round trip: %+v", got[1])
	}
}

// -----------------------------------------------------------------------------

func TestDistinctListings(t *testing.T) {
	db := memoryDB(t)

	updated := time.Now().UTC()
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	if err := db.AppendMarketRows([]models.MMarketRow{
		{Ticker: "AAPL", AssetType: models.AssetStocks, Date: date, Close: fptr(1), LastUpdated: updated},
		{Ticker: "BTC-USD", AssetType: models.AssetCrypto, Date: date, Close: fptr(2), LastUpdated: updated},
		{Ticker: "MSFT", AssetType: models.AssetStocks, Date: date, Close: fptr(3), LastUpdated: updated},
	}); err != nil {
		t.Fatalf("AppendMarketRows: %v", err)
	}

	types, err := db.DistinctAssetTypes()
	if err != nil {
		t.Fatalf("DistinctAssetTypes: %v", err)
	}
	if len(types) != 2 {
		t.Errorf("expected 2 asset types, got %v", types)
	}

	expiry := time.Date(2026, 9, 18, 0, 0, 0, 0, time.UTC)
	if err := db.AppendOptionRows([]models.MOptionRow{
		{UnderlyingTicker: "AAPL", ContractSymbol: "C1", Type: models.OptionCall, Expiry: expiry, LastUpdated: updated},
		{UnderlyingTicker: "TSLA", ContractSymbol: "C2", Type: models.OptionCall, Expiry: expiry, LastUpdated: updated},
		{UnderlyingTicker: "AAPL", ContractSymbol: "C3", Type: models.OptionCall, Expiry: expiry, LastUpdated: updated},
	}); err != nil {
		t.Fatalf("AppendOptionRows: %v", err)
	}

	underlyings, err := db.DistinctUnderlyings()
	if err != nil {
		t.Fatalf("DistinctUnderlyings: %v", err)
	}
	if len(underlyings) != 2 || underlyings[0] != "AAPL" || underlyings[1] != "TSLA" {
		t.Errorf("expected [AAPL TSLA], got %v", underlyings)
	}
}
