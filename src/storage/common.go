package storage

import (
	"database/sql"
	"time"

	"market-terminal/src/models"
)

// -----------------------------------------------------------------------------
// Shared row marshalling. Timestamps are stored as integers: bar dates and
// expiries as unix seconds of the timezone-naive reading, LastUpdated as
// unix nanoseconds so that ingestion order stays a total order.
// -----------------------------------------------------------------------------

func scanMarketRows(rows *sql.Rows) ([]models.MMarketRow, error) {
	var out []models.MMarketRow

	for rows.Next() {
		var (
			row        models.MMarketRow
			date, last int64
			o, h, l, c sql.NullFloat64
			vol        sql.NullInt64
		)
		if err := rows.Scan(&row.Ticker, &row.AssetType, &date, &o, &h, &l, &c, &vol, &last); err != nil {
			return nil, err
		}
		row.Date = time.Unix(date, 0).UTC()
		row.LastUpdated = time.Unix(0, last).UTC()
		row.Open = nullFloat(o)
		row.High = nullFloat(h)
		row.Low = nullFloat(l)
		row.Close = nullFloat(c)
		row.Volume = nullInt(vol)
		out = append(out, row)
	}

	return out, rows.Err()
}

// -----------------------------------------------------------------------------

func scanOptionRows(rows *sql.Rows) ([]models.MOptionRow, error) {
	var out []models.MOptionRow

	for rows.Next() {
		var (
			row          models.MOptionRow
			expiry, last int64
			strike       sql.NullFloat64
			price, iv    sql.NullFloat64
		)
		if err := rows.Scan(&row.UnderlyingTicker, &row.ContractSymbol, &row.Type, &strike, &expiry, &price, &iv, &last); err != nil {
			return nil, err
		}
		row.Expiry = time.Unix(expiry, 0).UTC()
		row.LastUpdated = time.Unix(0, last).UTC()
		row.Strike = nullFloat(strike)
		row.LastPrice = nullFloat(price)
		row.ImpliedVolatility = nullFloat(iv)
		out = append(out, row)
	}

	return out, rows.Err()
}

// -----------------------------------------------------------------------------

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// -----------------------------------------------------------------------------

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
