package config

import (
	"os"
	"path/filepath"
	"testing"

	"market-terminal/src/models"
)

// -----------------------------------------------------------------------------

func validConfig() *Config {
	return &Config{MConfig: &models.MConfig{
		Name:     "Test",
		Host:     "127.0.0.1",
		Port:     8020,
		LogLevel: "INFO",
		Storage:  models.MStorageConfig{DBType: "sqlite", DBPath: "test.db"},
		Network: models.MNetworkConfig{
			RequestTimeout:     10,
			MaxRetries:         3,
			ConcurrentRequests: 5,
		},
		Ingestion: models.MIngestConfig{
			MarketIntervalSeconds:  900,
			OptionsIntervalSeconds: 1800,
		},
		Universe: []models.MCategory{
			{Name: "Stocks", ExchangeTraded: true, Tickers: []string{"AAPL"}},
		},
		Options:  models.MOptionsConfig{Tickers: []string{"AAPL"}},
		Analysis: models.MAnalysisConfig{RollingWindow: 20},
	}}
}

// -----------------------------------------------------------------------------

func TestValidateAcceptsValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

// -----------------------------------------------------------------------------

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty name", func(c *Config) { c.Name = "" }},
		{"empty host", func(c *Config) { c.Host = "" }},
		{"privileged port", func(c *Config) { c.Port = 80 }},
		{"port too high", func(c *Config) { c.Port = 70000 }},
		{"empty db type", func(c *Config) { c.Storage.DBType = "" }},
		{"sqlite without path", func(c *Config) { c.Storage.DBPath = "" }},
		{"postgres without dsn", func(c *Config) {
			c.Storage.DBType = "postgres"
			c.Storage.DBConnectionString = ""
		}},
		{"zero timeout", func(c *Config) { c.Network.RequestTimeout = 0 }},
		{"negative retries", func(c *Config) { c.Network.MaxRetries = -1 }},
		{"zero concurrency", func(c *Config) { c.Network.ConcurrentRequests = 0 }},
		{"zero market interval", func(c *Config) { c.Ingestion.MarketIntervalSeconds = 0 }},
		{"zero options interval", func(c *Config) { c.Ingestion.OptionsIntervalSeconds = 0 }},
		{"empty universe", func(c *Config) { c.Universe = nil }},
		{"unnamed category", func(c *Config) { c.Universe[0].Name = "" }},
		{"duplicate category", func(c *Config) {
			c.Universe = append(c.Universe, models.MCategory{Name: "Stocks", Tickers: []string{"MSFT"}})
		}},
		{"category without tickers", func(c *Config) { c.Universe[0].Tickers = nil }},
		{"rolling window of one", func(c *Config) { c.Analysis.RollingWindow = 1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tc.name)
			}
		})
	}
}

// -----------------------------------------------------------------------------

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	original := validConfig()
	if err := original.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := NewConfig(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	if loaded.Name != original.Name || loaded.Port != original.Port {
		t.Errorf("reloaded config differs: %+v", loaded.MConfig)
	}
	if len(loaded.Universe) != 1 || loaded.Universe[0].Name != "Stocks" {
		t.Errorf("universe lost in round trip: %+v", loaded.Universe)
	}
	if !loaded.Universe[0].ExchangeTraded {
		t.Errorf("exchange_traded flag lost in round trip")
	}
}

// -----------------------------------------------------------------------------

func TestNewConfigMissingFile(t *testing.T) {
	if _, err := NewConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file must error")
	}
}

// -----------------------------------------------------------------------------

func TestNewConfigMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("name: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewConfig(path); err == nil {
		t.Fatal("malformed yaml must error")
	}
}
