package stats

import (
	"math/rand/v2"
	"time"

	"github.com/rustyeddy/atb/sim"
)

// Snapshot is the dashboard headline figures.
type Snapshot struct {
	TotalPnL        float64   `json:"total_pnl" yaml:"total_pnl"`
	DailyPnL        float64   `json:"daily_pnl" yaml:"daily_pnl"`
	ActivePositions int       `json:"active_positions" yaml:"active_positions"`
	WinRate         float64   `json:"win_rate" yaml:"win_rate"`
	TotalTrades     int       `json:"total_trades" yaml:"total_trades"`
	WinningTrades   int       `json:"winning_trades" yaml:"winning_trades"`
	Executions      int       `json:"executions" yaml:"executions"`
	Buys            int       `json:"buys" yaml:"buys"`
	Sells           int       `json:"sells" yaml:"sells"`
	Day             time.Time `json:"day" yaml:"day"`
}

type Config struct {
	Probability float64 // chance of a P&L sample per Perturb
	MaxSwing    float64 // full width of a sample, 1000 = ±500
}

func DefaultConfig() Config {
	return Config{Probability: 0.1, MaxSwing: 1000}
}

// WinRate is winning/total as a percentage, 0 when there are no trades.
func WinRate(total, winning int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(winning) / float64(total) * 100
}

// Aggregator keeps two independent channels: sampled P&L from Perturb,
// and counts of emitted trade events from RecordTrade. The channels are
// not reconciled. Not safe for concurrent use.
type Aggregator struct {
	cfg  Config
	rng  *rand.Rand
	snap Snapshot
}

// New builds an aggregator whose daily figures start on the UTC day of
// start. A nil rng gets a randomly seeded source.
func New(cfg Config, rng *rand.Rand, start time.Time) *Aggregator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Aggregator{
		cfg:  cfg,
		rng:  rng,
		snap: Snapshot{Day: dayOf(start)},
	}
}

// Perturb rolls the daily figures over when now is on a later UTC day,
// then with Probability adds a uniform sample in ±MaxSwing/2 to total and
// daily P&L and counts it as a trade. The sample is returned with ok true
// when one was drawn.
func (a *Aggregator) Perturb(now time.Time) (delta float64, ok bool) {
	a.Rollover(now)
	if a.rng.Float64() >= a.cfg.Probability {
		return 0, false
	}
	delta = (a.rng.Float64() - 0.5) * a.cfg.MaxSwing
	a.Apply(delta)
	return delta, true
}

// Apply folds one P&L result into the headline figures.
func (a *Aggregator) Apply(pnl float64) {
	a.snap.TotalPnL += pnl
	a.snap.DailyPnL += pnl
	a.snap.TotalTrades++
	if pnl > 0 {
		a.snap.WinningTrades++
	}
	a.snap.WinRate = WinRate(a.snap.TotalTrades, a.snap.WinningTrades)
}

// Rollover zeroes daily P&L when now falls on a later UTC day than the
// current one and reports whether it did.
func (a *Aggregator) Rollover(now time.Time) bool {
	day := dayOf(now)
	if !day.After(a.snap.Day) {
		return false
	}
	a.snap.Day = day
	a.snap.DailyPnL = 0
	return true
}

// RecordTrade counts an emitted trade event.
func (a *Aggregator) RecordTrade(e sim.TradeEvent) {
	a.snap.Executions++
	switch e.Side {
	case sim.Buy:
		a.snap.Buys++
	case sim.Sell:
		a.snap.Sells++
	}
}

// OnTrade implements sim.TradeSink.
func (a *Aggregator) OnTrade(e sim.TradeEvent) { a.RecordTrade(e) }

func (a *Aggregator) SetActivePositions(n int) {
	a.snap.ActivePositions = n
}

func (a *Aggregator) Snapshot() Snapshot { return a.snap }

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
