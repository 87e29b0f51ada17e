package ingest

import (
	"fmt"
	"time"

	"market-terminal/src/models"
)

// -----------------------------------------------------------------------------
// Row Normalizer: one raw fetched table in, canonical market rows out.
// The canonical schema is declared here once, as a fixed ordered field
// list; it is never inferred from whatever the provider happened to send.
// -----------------------------------------------------------------------------

// marketField binds one canonical column to its assignment into the row.
// A column absent from the raw input assigns its null value.
type marketField struct {
	name   string
	assign func(row *models.MMarketRow, raw models.MRawRow)
}

// MarketSchema is the canonical Market Row column set, in output order.
// Ticker, AssetType, Date and LastUpdated are stamped separately.
var MarketSchema = []marketField{
	{"Open", func(row *models.MMarketRow, raw models.MRawRow) { row.Open = raw.Float("Open") }},
	{"High", func(row *models.MMarketRow, raw models.MRawRow) { row.High = raw.Float("High") }},
	{"Low", func(row *models.MMarketRow, raw models.MRawRow) { row.Low = raw.Float("Low") }},
	{"Close", func(row *models.MMarketRow, raw models.MRawRow) { row.Close = raw.Float("Close") }},
	{"Volume", func(row *models.MMarketRow, raw models.MRawRow) { row.Volume = raw.Int("Volume") }},
}

// Provider names for the bar timestamp, in lookup order.
var dateColumns = []string{"Date", "Datetime", "index"}

// -----------------------------------------------------------------------------

// NormalizeMarketRows converts one instrument's raw table into canonical
// market rows:
//   - every canonical column exists in the output; missing ones are null
//   - timestamps are made timezone-naive (wall-clock reading kept, offset dropped)
//   - LastUpdated is the passed ingestion time, never provider data
//   - rows without a Close are dropped
//
// Errors are per-instrument: the caller contains them without touching
// sibling instruments.
func NormalizeMarketRows(raw models.MRawTable, ticker string, assetType models.MAssetType, ingestedAt time.Time) ([]models.MMarketRow, error) {
	if ticker == "" {
		return nil, fmt.Errorf("normalize: empty ticker")
	}

	var rows []models.MMarketRow

	for _, rawRow := range raw.Rows {
		date, ok := rowDate(rawRow)
		if !ok {
			// A bar without a timestamp cannot be placed on any axis.
			continue
		}

		row := models.MMarketRow{
			Ticker:      ticker,
			AssetType:   assetType,
			Date:        StripTimezone(date),
			LastUpdated: ingestedAt,
		}

		for _, field := range MarketSchema {
			field.assign(&row, rawRow)
		}

		// A bar without a closing price is not a usable observation.
		if row.Close == nil {
			continue
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// -----------------------------------------------------------------------------

func rowDate(raw models.MRawRow) (time.Time, bool) {
	for _, col := range dateColumns {
		if t, ok := raw.Time(col); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// -----------------------------------------------------------------------------

// StripTimezone drops the timezone offset from a timestamp, keeping the
// wall-clock reading. The naive result is carried as UTC so that every
// instrument compares consistently and the sink never sees an offset.
func StripTimezone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
