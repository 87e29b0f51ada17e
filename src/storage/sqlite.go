package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"market-terminal/src/logger"
	"market-terminal/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*SQLiteDB, error) {
	return &SQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Initialize() error {
	db, err := sql.Open("sqlite", d.Config.Storage.DBPath)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) createTables() error {
	// Both tables are pure history logs: no primary key, appends only.
	query := `
		CREATE TABLE IF NOT EXISTS market_data (
			ticker TEXT NOT NULL,
			asset_type TEXT NOT NULL,
			date INTEGER NOT NULL,
			open REAL,
			high REAL,
			low REAL,
			close REAL,
			volume INTEGER,
			last_updated INTEGER NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create market_data: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS options_data (
			underlying_ticker TEXT NOT NULL,
			contract_symbol TEXT,
			type TEXT NOT NULL,
			strike REAL,
			expiry INTEGER NOT NULL,
			last_price REAL,
			implied_volatility REAL,
			last_updated INTEGER NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create options_data: %w", err)
	}

	if _, err := d.DB.Exec(`CREATE INDEX IF NOT EXISTS idx_market_asset_date ON market_data (asset_type, date)`); err != nil {
		return fmt.Errorf("failed to create market index: %w", err)
	}
	if _, err := d.DB.Exec(`CREATE INDEX IF NOT EXISTS idx_options_underlying ON options_data (underlying_ticker, last_updated)`); err != nil {
		return fmt.Errorf("failed to create options index: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) AppendMarketRows(rows []models.MMarketRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO market_data (ticker, asset_type, date, open, high, low, close, volume, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.Exec(r.Ticker, string(r.AssetType), r.Date.Unix(), r.Open, r.High, r.Low, r.Close, r.Volume, r.LastUpdated.UnixNano())
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) AppendOptionRows(rows []models.MOptionRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO options_data (underlying_ticker, contract_symbol, type, strike, expiry, last_price, implied_volatility, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.Exec(r.UnderlyingTicker, r.ContractSymbol, string(r.Type), r.Strike, r.Expiry.Unix(), r.LastPrice, r.ImpliedVolatility, r.LastUpdated.UnixNano())
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) QueryMarketRows(filter models.MMarketFilter) ([]models.MMarketRow, error) {
	query := `
		SELECT ticker, asset_type, date, open, high, low, close, volume, last_updated
		FROM market_data
		WHERE asset_type = ?
	`
	args := []interface{}{string(filter.AssetType)}

	if len(filter.Tickers) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.Tickers)), ",")
		query += fmt.Sprintf(" AND ticker IN (%s)", placeholders)
		for _, t := range filter.Tickers {
			args = append(args, t)
		}
	}

	query += " ORDER BY date ASC"

	rows, err := d.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMarketRows(rows)
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) QueryOptionRows(underlying string) ([]models.MOptionRow, error) {
	rows, err := d.DB.Query(`
		SELECT underlying_ticker, contract_symbol, type, strike, expiry, last_price, implied_volatility, last_updated
		FROM options_data
		WHERE underlying_ticker = ?
		ORDER BY last_updated ASC
	`, underlying)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOptionRows(rows)
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) DistinctAssetTypes() ([]models.MAssetType, error) {
	rows, err := d.DB.Query(`SELECT DISTINCT asset_type FROM market_data ORDER BY asset_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MAssetType
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, models.MAssetType(t))
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) DistinctUnderlyings() ([]string, error) {
	rows, err := d.DB.Query(`SELECT DISTINCT underlying_ticker FROM options_data ORDER BY underlying_ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
