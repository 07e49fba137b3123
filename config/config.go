package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete engine configuration
type Config struct {
	Account    AccountConfig    `json:"account" yaml:"account"`
	Market     MarketConfig     `json:"market" yaml:"market"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Bots       []BotConfig      `json:"bots,omitempty" yaml:"bots,omitempty"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Server     ServerConfig     `json:"server" yaml:"server"`
}

// AccountConfig contains the opening state of the ledger
type AccountConfig struct {
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
}

// MarketConfig controls the synthetic market data generator
type MarketConfig struct {
	Symbols         []string `json:"symbols" yaml:"symbols"`
	WindowSize      int      `json:"window_size" yaml:"window_size"`
	SeedPoints      int      `json:"seed_points" yaml:"seed_points"`
	SeedSpacing     Duration `json:"seed_spacing" yaml:"seed_spacing"`
	SeedJitter      float64  `json:"seed_jitter" yaml:"seed_jitter"`
	TickJitter      float64  `json:"tick_jitter" yaml:"tick_jitter"`
	TickInterval    Duration `json:"tick_interval" yaml:"tick_interval"`
	TickerInterval  Duration `json:"ticker_interval" yaml:"ticker_interval"`
	ProviderURL     string   `json:"provider_url,omitempty" yaml:"provider_url,omitempty"`
	ProviderTimeout Duration `json:"provider_timeout" yaml:"provider_timeout"`
}

// SimulationConfig contains trade and statistics simulation parameters
type SimulationConfig struct {
	Seed                uint64   `json:"seed,omitempty" yaml:"seed,omitempty"` // 0 picks a random seed
	ActivityProbability float64  `json:"activity_probability" yaml:"activity_probability"`
	SignalProbability   float64  `json:"signal_probability" yaml:"signal_probability"`
	StatsProbability    float64  `json:"stats_probability" yaml:"stats_probability"`
	MaxPnLSwing         float64  `json:"max_pnl_swing" yaml:"max_pnl_swing"`
	MinQuantity         int      `json:"min_quantity" yaml:"min_quantity"`
	MaxQuantity         int      `json:"max_quantity" yaml:"max_quantity"`
	MinReschedule       Duration `json:"min_reschedule" yaml:"min_reschedule"`
	MaxReschedule       Duration `json:"max_reschedule" yaml:"max_reschedule"`
	HistoryLimit        int      `json:"history_limit" yaml:"history_limit"`
}

// BotConfig declares a bot created at startup
type BotConfig struct {
	ID             string  `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	Asset          string  `json:"asset" yaml:"asset"`
	Strategy       string  `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Frequency      string  `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	Risk           string  `json:"risk,omitempty" yaml:"risk,omitempty"`
	FloorPrice     float64 `json:"floor_price,omitempty" yaml:"floor_price,omitempty"`
	DailyLossLimit float64 `json:"daily_loss_limit,omitempty" yaml:"daily_loss_limit,omitempty"`
	MaxPositions   float64 `json:"max_positions,omitempty" yaml:"max_positions,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	LedgerFile string `json:"ledger_file,omitempty" yaml:"ledger_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LogConfig selects log level and output format ("json" or "pretty")
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// ServerConfig contains the HTTP adapter settings
type ServerConfig struct {
	Addr           string   `json:"addr" yaml:"addr"`
	StreamInterval Duration `json:"stream_interval" yaml:"stream_interval"`
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML or JSON based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides selected fields from ATB_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("ATB_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ATB_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ATB_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("ATB_PROVIDER_URL"); v != "" {
		c.Market.ProviderURL = v
	}
	if v := os.Getenv("ATB_BALANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ATB_BALANCE: %w", err)
		}
		c.Account.Balance = f
	}
	if v := os.Getenv("ATB_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("ATB_SEED: %w", err)
		}
		c.Simulation.Seed = n
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Balance < 0 {
		return fmt.Errorf("account.balance must not be negative")
	}

	m := c.Market
	if len(m.Symbols) == 0 {
		return fmt.Errorf("market.symbols must not be empty")
	}
	if m.WindowSize < 10 {
		return fmt.Errorf("market.window_size must be at least 10")
	}
	if m.SeedPoints < 1 || m.SeedPoints > m.WindowSize {
		return fmt.Errorf("market.seed_points must be between 1 and window_size")
	}
	if m.SeedSpacing <= 0 {
		return fmt.Errorf("market.seed_spacing must be positive")
	}
	if m.SeedJitter < 0 || m.SeedJitter > 1 {
		return fmt.Errorf("market.seed_jitter must be between 0 and 1")
	}
	if m.TickJitter < 0 || m.TickJitter > 1 {
		return fmt.Errorf("market.tick_jitter must be between 0 and 1")
	}
	if m.TickInterval <= 0 || m.TickerInterval <= 0 {
		return fmt.Errorf("market tick and ticker intervals must be positive")
	}

	s := c.Simulation
	for name, p := range map[string]float64{
		"activity_probability": s.ActivityProbability,
		"signal_probability":   s.SignalProbability,
		"stats_probability":    s.StatsProbability,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("simulation.%s must be between 0 and 1", name)
		}
	}
	if s.MaxPnLSwing < 0 {
		return fmt.Errorf("simulation.max_pnl_swing must not be negative")
	}
	if s.MinQuantity < 1 || s.MaxQuantity < s.MinQuantity {
		return fmt.Errorf("simulation quantity range must satisfy 1 <= min_quantity <= max_quantity")
	}
	if s.MinReschedule <= 0 || s.MaxReschedule < s.MinReschedule {
		return fmt.Errorf("simulation reschedule range must satisfy 0 < min_reschedule <= max_reschedule")
	}

	seen := make(map[string]bool, len(c.Bots))
	for i, b := range c.Bots {
		if b.ID == "" || b.Name == "" || b.Asset == "" {
			return fmt.Errorf("bots[%d]: id, name and asset are required", i)
		}
		if seen[b.ID] {
			return fmt.Errorf("bots[%d]: duplicate id %q", i, b.ID)
		}
		seen[b.ID] = true
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.LedgerFile == "" {
			return fmt.Errorf("journal trades_file and ledger_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	if c.Server.StreamInterval < 0 {
		return fmt.Errorf("server.stream_interval must not be negative")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Currency: "USD",
			Balance:  100000,
		},
		Market: MarketConfig{
			Symbols:         []string{"AAPL", "GOOGL", "MSFT", "TSLA", "AMZN", "BTC", "ETH"},
			WindowSize:      100,
			SeedPoints:      100,
			SeedSpacing:     Duration(time.Minute),
			SeedJitter:      0.10,
			TickJitter:      0.02,
			TickInterval:    Duration(5 * time.Second),
			TickerInterval:  Duration(30 * time.Second),
			ProviderTimeout: Duration(3 * time.Second),
		},
		Simulation: SimulationConfig{
			ActivityProbability: 0.2,
			SignalProbability:   0.05,
			StatsProbability:    0.1,
			MaxPnLSwing:         1000,
			MinQuantity:         1,
			MaxQuantity:         10,
			MinReschedule:       Duration(10 * time.Second),
			MaxReschedule:       Duration(30 * time.Second),
			HistoryLimit:        500,
		},
		Bots: []BotConfig{
			{ID: "bot1", Name: "Stock Bot 1", Asset: "AAPL"},
			{ID: "bot2", Name: "Stock Bot 2", Asset: "GOOGL"},
			{ID: "bot3", Name: "Stock Bot 3", Asset: "MSFT"},
			{ID: "bot4", Name: "Stock Bot 4", Asset: "TSLA"},
			{ID: "bot5", Name: "Stock Bot 5", Asset: "AMZN"},
			{ID: "bot6", Name: "Crypto Bot 1", Asset: "BTC"},
			{ID: "bot7", Name: "Crypto Bot 2", Asset: "ETH"},
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			StreamInterval: Duration(2 * time.Second),
		},
	}
}
