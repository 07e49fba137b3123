package bots

import (
	"fmt"
	"math"
	"time"
)

// State is a bot's lifecycle state.
type State string

const (
	Inactive State = "inactive"
	Active   State = "active"
)

type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

type Frequency string

const (
	Realtime Frequency = "realtime"
	Every1m  Frequency = "1m"
	Every5m  Frequency = "5m"
	Every15m Frequency = "15m"
	Hourly   Frequency = "1h"
	Daily    Frequency = "1d"
)

// Defaults applied to empty configuration fields and by Reset.
const (
	DefaultStrategy       = "ma"
	DefaultFrequency      = Realtime
	DefaultRisk           = RiskMedium
	DefaultDailyLossLimit = 1000.0
	DefaultMaxPositions   = 10.0
)

func ParseRisk(s string) (Risk, error) {
	switch r := Risk(s); r {
	case RiskLow, RiskMedium, RiskHigh:
		return r, nil
	}
	return "", fmt.Errorf("%w: risk %q", ErrInvalidConfig, s)
}

func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(s); f {
	case Realtime, Every1m, Every5m, Every15m, Hourly, Daily:
		return f, nil
	}
	return "", fmt.Errorf("%w: frequency %q", ErrInvalidConfig, s)
}

// Stats is the cumulative trade record of one bot.
type Stats struct {
	TotalPnL      float64 `json:"total_pnl" yaml:"total_pnl"`
	DailyPnL      float64 `json:"daily_pnl" yaml:"daily_pnl"`
	TradeCount    int     `json:"trade_count" yaml:"trade_count"`
	WinningTrades int     `json:"winning_trades" yaml:"winning_trades"`
	WinRate       float64 `json:"win_rate" yaml:"win_rate"`
}

// Bot is a read-only copy of a registry entry.
type Bot struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	Asset          string    `json:"asset" yaml:"asset"`
	Strategy       string    `json:"strategy" yaml:"strategy"`
	Frequency      Frequency `json:"frequency" yaml:"frequency"`
	Risk           Risk      `json:"risk" yaml:"risk"`
	FloorPrice     float64   `json:"floor_price" yaml:"floor_price"`
	DailyLossLimit float64   `json:"daily_loss_limit" yaml:"daily_loss_limit"`
	MaxPositions   float64   `json:"max_positions" yaml:"max_positions"`
	State          State     `json:"state" yaml:"state"`
	Created        time.Time `json:"created" yaml:"created"`
	Stats          Stats     `json:"stats" yaml:"stats"`
}

func (b Bot) Active() bool { return b.State == Active }

// Config describes a bot to create. Empty optional fields take the
// package defaults.
type Config struct {
	Name           string    `json:"name" yaml:"name"`
	Asset          string    `json:"asset" yaml:"asset"`
	Strategy       string    `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Frequency      Frequency `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	Risk           Risk      `json:"risk,omitempty" yaml:"risk,omitempty"`
	FloorPrice     float64   `json:"floor_price,omitempty" yaml:"floor_price,omitempty"`
	DailyLossLimit float64   `json:"daily_loss_limit,omitempty" yaml:"daily_loss_limit,omitempty"`
	MaxPositions   float64   `json:"max_positions,omitempty" yaml:"max_positions,omitempty"`
}

func (c Config) withDefaults() Config {
	if c.Strategy == "" {
		c.Strategy = DefaultStrategy
	}
	if c.Frequency == "" {
		c.Frequency = DefaultFrequency
	}
	if c.Risk == "" {
		c.Risk = DefaultRisk
	}
	if c.DailyLossLimit == 0 {
		c.DailyLossLimit = DefaultDailyLossLimit
	}
	if c.MaxPositions == 0 {
		c.MaxPositions = DefaultMaxPositions
	}
	return c
}

// Validate checks a config after defaults are applied.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if c.Asset == "" {
		return fmt.Errorf("%w: asset is required", ErrInvalidConfig)
	}
	if _, err := ParseFrequency(string(c.Frequency)); err != nil {
		return err
	}
	if _, err := ParseRisk(string(c.Risk)); err != nil {
		return err
	}
	for _, v := range []float64{c.FloorPrice, c.DailyLossLimit, c.MaxPositions} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: numeric limits must be finite and not negative", ErrInvalidConfig)
		}
	}
	return nil
}

// Update carries a partial reconfiguration. Nil fields are left alone;
// empty Name and Asset are ignored.
type Update struct {
	Name           *string    `json:"name,omitempty" yaml:"name,omitempty"`
	Asset          *string    `json:"asset,omitempty" yaml:"asset,omitempty"`
	Strategy       *string    `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Frequency      *Frequency `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	Risk           *Risk      `json:"risk,omitempty" yaml:"risk,omitempty"`
	FloorPrice     *float64   `json:"floor_price,omitempty" yaml:"floor_price,omitempty"`
	DailyLossLimit *float64   `json:"daily_loss_limit,omitempty" yaml:"daily_loss_limit,omitempty"`
	MaxPositions   *float64   `json:"max_positions,omitempty" yaml:"max_positions,omitempty"`
}
