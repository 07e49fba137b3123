package stats

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rustyeddy/atb/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

func TestWinRate(t *testing.T) {
	tests := []struct {
		total, winning int
		want           float64
	}{
		{0, 0, 0},
		{4, 3, 75.0},
		{10, 10, 100},
		{3, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WinRate(tt.total, tt.winning))
	}
}

func TestApply(t *testing.T) {
	a := New(DefaultConfig(), nil, t0)
	for _, pnl := range []float64{100, 50, -25, 10} {
		a.Apply(pnl)
	}
	s := a.Snapshot()
	assert.Equal(t, 4, s.TotalTrades)
	assert.Equal(t, 3, s.WinningTrades)
	assert.Equal(t, 75.0, s.WinRate)
	assert.Equal(t, 135.0, s.TotalPnL)
	assert.Equal(t, 135.0, s.DailyPnL)
}

func TestPerturbBounds(t *testing.T) {
	a := New(DefaultConfig(), rand.New(rand.NewPCG(1, 2)), t0)

	draws := 0
	for i := 0; i < 5000; i++ {
		delta, ok := a.Perturb(t0)
		if !ok {
			assert.Zero(t, delta)
			continue
		}
		draws++
		assert.LessOrEqual(t, delta, 500.0)
		assert.GreaterOrEqual(t, delta, -500.0)
	}
	s := a.Snapshot()
	assert.Equal(t, draws, s.TotalTrades)
	assert.InDelta(t, 500, draws, 100)
	assert.Equal(t, WinRate(s.TotalTrades, s.WinningTrades), s.WinRate)
	assert.InDelta(t, s.TotalPnL, s.DailyPnL, 1e-6)
}

func TestPerturbNeverFires(t *testing.T) {
	a := New(Config{Probability: 0, MaxSwing: 1000}, rand.New(rand.NewPCG(1, 2)), t0)
	for i := 0; i < 100; i++ {
		_, ok := a.Perturb(t0)
		require.False(t, ok)
	}
	assert.Equal(t, Snapshot{Day: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}, a.Snapshot())
}

func TestDailyRollover(t *testing.T) {
	a := New(DefaultConfig(), nil, t0)
	a.Apply(200)

	assert.False(t, a.Rollover(t0.Add(time.Hour)))
	assert.Equal(t, 200.0, a.Snapshot().DailyPnL)

	assert.True(t, a.Rollover(t0.Add(24*time.Hour)))
	s := a.Snapshot()
	assert.Equal(t, 0.0, s.DailyPnL)
	assert.Equal(t, 200.0, s.TotalPnL)
	assert.Equal(t, 1, s.TotalTrades)

	assert.False(t, a.Rollover(t0))
}

func TestRecordTradeSeparateChannel(t *testing.T) {
	a := New(DefaultConfig(), nil, t0)
	a.OnTrade(sim.TradeEvent{Side: sim.Buy})
	a.RecordTrade(sim.TradeEvent{Side: sim.Sell})
	a.RecordTrade(sim.TradeEvent{Side: sim.Buy})
	a.SetActivePositions(2)

	s := a.Snapshot()
	assert.Equal(t, 3, s.Executions)
	assert.Equal(t, 2, s.Buys)
	assert.Equal(t, 1, s.Sells)
	assert.Equal(t, 0, s.TotalTrades)
	assert.Equal(t, 0.0, s.TotalPnL)
	assert.Equal(t, 2, s.ActivePositions)
}
