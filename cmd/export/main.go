package main

import (
	"flag"
	"fmt"
	"os"

	"market-terminal/src/config"
	"market-terminal/src/interfaces"
	"market-terminal/src/logger"
	"market-terminal/src/models"
	"market-terminal/src/storage"
)

// -----------------------------------------------------------------------------
// export copies the full accumulated history out of the configured sink into
// a standalone SQLite file, e.g. to hand a snapshot to a dashboard or to
// archive a postgres deployment locally.
// -----------------------------------------------------------------------------

func main() {

	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	outPath := flag.String("out", "export.db", "path of the SQLite file to write")
	flag.Parse()

	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewLogger("Export")

	// Source: the configured sink
	var src interfaces.IDatabase

	switch config.Storage.DBType {
	case "postgres":
		src, err = storage.NewPostgresDB(config.MConfig, appLogger)
	default:
		src, err = storage.NewSQLiteDB(config.MConfig, appLogger)
	}
	if err != nil {
		appLogger.Critical("Failed to init source db: %v", err)
	}
	if err := src.Initialize(); err != nil {
		appLogger.Critical("Failed to open source db: %v", err)
	}
	defer src.Close()

	// Destination: a fresh SQLite file
	if err := os.Remove(*outPath); err != nil && !os.IsNotExist(err) {
		appLogger.Critical("Failed to remove existing export file: %v", err)
	}

	outCfg := *config.MConfig
	outCfg.Storage = models.MStorageConfig{DBType: "sqlite", DBPath: *outPath}

	dst, err := storage.NewSQLiteDB(&outCfg, appLogger)
	if err != nil {
		appLogger.Critical("Failed to init export db: %v", err)
	}
	if err := dst.Initialize(); err != nil {
		appLogger.Critical("Failed to create export db: %v", err)
	}
	defer dst.Close()

	marketRows, optionRows, err := copyAll(src, dst)
	if err != nil {
		appLogger.Critical("Export failed: %v", err)
	}

	appLogger.Info("Exported %d market rows and %d option rows to %s", marketRows, optionRows, *outPath)
}

// -----------------------------------------------------------------------------

func copyAll(src, dst interfaces.IDatabase) (marketRows, optionRows int, err error) {
	assetTypes, err := src.DistinctAssetTypes()
	if err != nil {
		return 0, 0, fmt.Errorf("listing asset types: %w", err)
	}

	for _, assetType := range assetTypes {
		rows, err := src.QueryMarketRows(models.MMarketFilter{AssetType: assetType})
		if err != nil {
			return marketRows, optionRows, fmt.Errorf("reading %s rows: %w", assetType, err)
		}
		if err := dst.AppendMarketRows(rows); err != nil {
			return marketRows, optionRows, fmt.Errorf("writing %s rows: %w", assetType, err)
		}
		marketRows += len(rows)
	}

	underlyings, err := src.DistinctUnderlyings()
	if err != nil {
		return marketRows, optionRows, fmt.Errorf("listing underlyings: %w", err)
	}

	for _, underlying := range underlyings {
		rows, err := src.QueryOptionRows(underlying)
		if err != nil {
			return marketRows, optionRows, fmt.Errorf("reading %s options: %w", underlying, err)
		}
		if err := dst.AppendOptionRows(rows); err != nil {
			return marketRows, optionRows, fmt.Errorf("writing %s options: %w", underlying, err)
		}
		optionRows += len(rows)
	}

	return marketRows, optionRows, nil
}
