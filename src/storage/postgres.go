package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"market-terminal/src/logger"
	"market-terminal/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	// Schema name follows the executable so parallel deployments don't collide
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	// History tables accumulate across restarts: no drops, no primary key.
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."market_data" (
			ticker TEXT NOT NULL,
			asset_type TEXT NOT NULL,
			date BIGINT NOT NULL,
			open DOUBLE PRECISION,
			high DOUBLE PRECISION,
			low DOUBLE PRECISION,
			close DOUBLE PRECISION,
			volume BIGINT,
			last_updated BIGINT NOT NULL
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create market_data: %w", err)
	}

	query = fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."options_data" (
			underlying_ticker TEXT NOT NULL,
			contract_symbol TEXT,
			type TEXT NOT NULL,
			strike DOUBLE PRECISION,
			expiry BIGINT NOT NULL,
			last_price DOUBLE PRECISION,
			implied_volatility DOUBLE PRECISION,
			last_updated BIGINT NOT NULL
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create options_data: %w", err)
	}

	query = fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_market_asset_date ON "%s"."market_data" (asset_type, date)`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create market index: %w", err)
	}
	query = fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_options_underlying ON "%s"."options_data" (underlying_ticker, last_updated)`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create options index: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) AppendMarketRows(rows []models.MMarketRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO "%s"."market_data" (ticker, asset_type, date, open, high, low, close, volume, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, d.Schema))
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

func (d *PostgresDB) AppendOptionRows(rows []models.MOptionRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO "%s"."options_data" (underlying_ticker, contract_symbol, type, strike, expiry, last_price, implied_volatility, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, d.Schema))
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

func (d *PostgresDB) QueryMarketRows(filter models.MMarketFilter) ([]models.MMarketRow, error) {
	query := fmt.Sprintf(`
		SELECT ticker, asset_type, date, open, high, low, close, volume, last_updated
		FROM "%s"."market_data"
		WHERE asset_type = $1
	`, d.Schema)
	args := []interface{}{string(filter.AssetType)}

	if len(filter.Tickers) > 0 {
		placeholders := make([]string, len(filter.Tickers))
		for i, t := range filter.Tickers {
			placeholders[i] = fmt.Sprintf("$%d", i+2)
			args = append(args, t)
		}
		query += fmt.Sprintf(" AND ticker IN (%s)", strings.Join(placeholders, ", "))
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

func (d *PostgresDB) QueryOptionRows(underlying string) ([]models.MOptionRow, error) {
	rows, err := d.DB.Query(fmt.Sprintf(`
		SELECT underlying_ticker, contract_symbol, type, strike, expiry, last_price, implied_volatility, last_updated
		FROM "%s"."options_data"
		WHERE underlying_ticker = $1
		ORDER BY last_updated ASC
	`, d.Schema), underlying)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOptionRows(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) DistinctAssetTypes() ([]models.MAssetType, error) {
	rows, err := d.DB.Query(fmt.Sprintf(`SELECT DISTINCT asset_type FROM "%s"."market_data" ORDER BY asset_type`, d.Schema))
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

func (d *PostgresDB) DistinctUnderlyings() ([]string, error) {
	rows, err := d.DB.Query(fmt.Sprintf(`SELECT DISTINCT underlying_ticker FROM "%s"."options_data" ORDER BY underlying_ticker`, d.Schema))
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

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
