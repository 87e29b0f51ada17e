package models

// MConfig Structure
type MConfig struct {
	Name      string          `yaml:"name"`
	Host      string          `yaml:"host"`
	Port      int             `yaml:"port"`
	LogLevel  string          `yaml:"log_level"`
	Storage   MStorageConfig  `yaml:"storage"`
	Network   MNetworkConfig  `yaml:"network"`
	Ingestion MIngestConfig   `yaml:"ingestion"`
	Universe  []MCategory     `yaml:"universe"`
	Options   MOptionsConfig  `yaml:"options"`
	Analysis  MAnalysisConfig `yaml:"analysis"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Proxies            []string `yaml:"proxies"`
	RequestTimeout     int      `yaml:"timeout"`
	MaxRetries         int      `yaml:"retries"`
	ConcurrentRequests int      `yaml:"concurrent_requests"`
	UserAgent          string   `yaml:"user_agent"`
}

type MIngestConfig struct {
	MarketIntervalSeconds  int `yaml:"market_interval_seconds"`
	OptionsIntervalSeconds int `yaml:"options_interval_seconds"`
}

// MCategory is one slice of the fixed instrument universe. Categories are
// fetched in the order they appear in the config file.
type MCategory struct {
	Name           string   `yaml:"name"`
	ExchangeTraded bool     `yaml:"exchange_traded"`
	Tickers        []string `yaml:"tickers"`
}

type MOptionsConfig struct {
	Tickers []string `yaml:"tickers"`
}

type MAnalysisConfig struct {
	RollingWindow int `yaml:"rolling_window"`
}
