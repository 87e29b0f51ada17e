package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"market-terminal/src/analysis"
	"market-terminal/src/config"
	"market-terminal/src/data_source/yahoo"
	"market-terminal/src/ingest"
	"market-terminal/src/interfaces"
	"market-terminal/src/logger"
	"market-terminal/src/network"
	"market-terminal/src/server"
	"market-terminal/src/storage"
	"market-terminal/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.Name)

	// 2. Setup Storage
	var db interfaces.IDatabase

	switch config.Storage.DBType {
	case "postgres":
		db, err = storage.NewPostgresDB(config.MConfig, appLogger)
	default:
		// Default to SQLite
		db, err = storage.NewSQLiteDB(config.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}
	defer db.Close()

	// 3. Setup Components
	var networkManager interfaces.INetworkManager = network.NewAsyncNetworkManager(config.MConfig, appLogger)
	var source interfaces.IMarketSource = yahoo.NewSource(config.MConfig, networkManager)

	// Market-hours gating covers only exchange-traded categories
	var exchangeTickers []string
	for _, category := range config.Universe {
		if category.ExchangeTraded {
			exchangeTickers = append(exchangeTickers, category.Tickers...)
		}
	}
	hours := utils.NewMarketHours(exchangeTickers, appLogger)

	engine := analysis.NewEngine(config.MConfig)

	coordinator := ingest.NewCoordinator(config.MConfig, source, db, hours)
	optionsCoordinator := ingest.NewOptionsCoordinator(config.MConfig, source, db)

	// 4. Start Server
	var srv interfaces.IDataExchanger = server.NewAPIServer(config.MConfig, db, engine, appLogger)
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 5. Schedulers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	marketCycle := func(ctx context.Context) error {
		report, err := coordinator.RunCycle(ctx)
		if err != nil {
			return err
		}
		srv.Broadcast(report)
		return nil
	}

	optionsCycle := func(ctx context.Context) error {
		report, err := optionsCoordinator.RunCycle(ctx)
		if err != nil {
			return err
		}
		srv.Broadcast(report)
		return nil
	}

	marketScheduler := utils.NewScheduler("market",
		time.Duration(config.Ingestion.MarketIntervalSeconds)*time.Second, marketCycle)
	optionsScheduler := utils.NewScheduler("options",
		time.Duration(config.Ingestion.OptionsIntervalSeconds)*time.Second, optionsCycle)

	wg := &sync.WaitGroup{}
	wg.Add(2)
	go marketScheduler.Run(ctx, wg)
	go optionsScheduler.Run(ctx, wg)

	// 6. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	wg.Wait()
	srv.Stop()
}
