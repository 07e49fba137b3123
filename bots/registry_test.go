package bots

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/atb/internal/id"
	"github.com/rustyeddy/atb/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

func newRegistry() *Registry {
	return NewRegistry(func() time.Time { return t0 })
}

func TestCreateDefaults(t *testing.T) {
	r := newRegistry()
	b, err := r.Create(Config{Name: "Trend", Asset: "AAPL"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(b.ID, "bot_"))
	assert.Equal(t, Inactive, b.State)
	assert.Equal(t, DefaultStrategy, b.Strategy)
	assert.Equal(t, Realtime, b.Frequency)
	assert.Equal(t, RiskMedium, b.Risk)
	assert.Equal(t, 1000.0, b.DailyLossLimit)
	assert.Equal(t, 10.0, b.MaxPositions)
	assert.Equal(t, t0, b.Created)
	assert.Equal(t, Stats{}, b.Stats)

	minted, err := id.Time(b.ID)
	require.NoError(t, err)
	assert.True(t, minted.Equal(t0), "id stamped at %v", minted)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing name", Config{Asset: "AAPL"}},
		{"missing asset", Config{Name: "x"}},
		{"bad risk", Config{Name: "x", Asset: "AAPL", Risk: "extreme"}},
		{"bad frequency", Config{Name: "x", Asset: "AAPL", Frequency: "hourly"}},
		{"negative floor", Config{Name: "x", Asset: "AAPL", FloorPrice: -1}},
		{"negative positions", Config{Name: "x", Asset: "AAPL", MaxPositions: -2}},
		{"nan positions", Config{Name: "x", Asset: "AAPL", MaxPositions: math.NaN()}},
		{"infinite loss limit", Config{Name: "x", Asset: "AAPL", DailyLossLimit: math.Inf(1)}},
	}
	r := newRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Create(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
	assert.Equal(t, 0, r.Len())
}

func TestCreateWithIDDuplicate(t *testing.T) {
	r := newRegistry()
	_, err := r.CreateWithID("bot1", Config{Name: "Stock Bot 1", Asset: "AAPL"})
	require.NoError(t, err)
	_, err = r.CreateWithID("bot1", Config{Name: "again", Asset: "MSFT"})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestCreateForMarket(t *testing.T) {
	r := newRegistry()
	a, _ := market.Lookup("GC=F")
	b, err := r.CreateForMarket(a)
	require.NoError(t, err)
	assert.Equal(t, "Gold Futures Bot", b.Name)
	assert.Equal(t, "GC=F", b.Asset)
	assert.Equal(t, "Custom", b.Strategy)
	assert.Equal(t, Inactive, b.State)
}

func TestStartPauseIdempotent(t *testing.T) {
	r := newRegistry()
	b, _ := r.Create(Config{Name: "x", Asset: "AAPL"})

	changed, err := r.Start(b.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = r.Start(b.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, r.IsActive(b.ID))
	assert.Equal(t, 1, r.ActiveCount())

	changed, _ = r.Pause(b.ID)
	assert.True(t, changed)
	changed, _ = r.Pause(b.ID)
	assert.False(t, changed)
	assert.False(t, r.IsActive(b.ID))

	_, err = r.Start("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Pause("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetKeepsStats(t *testing.T) {
	r := newRegistry()
	b, _ := r.Create(Config{Name: "x", Asset: "AAPL", Risk: RiskHigh, Frequency: Every5m})
	r.Start(b.ID)
	require.NoError(t, r.RecordTrade(b.ID, 50))

	got, err := r.Reset(b.ID)
	require.NoError(t, err)
	assert.Equal(t, Inactive, got.State)
	assert.Equal(t, RiskMedium, got.Risk)
	assert.Equal(t, Realtime, got.Frequency)
	assert.Equal(t, 1, got.Stats.TradeCount)
	assert.Equal(t, 50.0, got.Stats.TotalPnL)
}

func TestReconfigure(t *testing.T) {
	r := newRegistry()
	b, _ := r.Create(Config{Name: "x", Asset: "AAPL"})

	empty := ""
	name := "renamed"
	risk := RiskLow
	floor := 140.0
	positions := 2.5
	got, err := r.Reconfigure(b.ID, Update{Name: &name, Asset: &empty, Risk: &risk, FloorPrice: &floor, MaxPositions: &positions})
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, "AAPL", got.Asset)
	assert.Equal(t, RiskLow, got.Risk)
	assert.Equal(t, 140.0, got.FloorPrice)
	assert.Equal(t, 2.5, got.MaxPositions)
	assert.Equal(t, DefaultStrategy, got.Strategy)

	bad := Risk("wild")
	_, err = r.Reconfigure(b.ID, Update{Name: &empty, Risk: &bad})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	cur, _ := r.Get(b.ID)
	assert.Equal(t, got, cur)

	_, err = r.Reconfigure("missing", Update{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	r := newRegistry()
	a, _ := r.Create(Config{Name: "a", Asset: "AAPL"})
	b, _ := r.Create(Config{Name: "b", Asset: "MSFT"})
	c, _ := r.Create(Config{Name: "c", Asset: "TSLA"})

	var deleted []string
	r.OnDelete(DeleteFunc(func(id string) { deleted = append(deleted, id) }))

	require.NoError(t, r.Delete(b.ID))
	assert.Equal(t, []string{b.ID}, deleted)
	assert.False(t, r.Has(b.ID))

	ids := []string{}
	for _, x := range r.List() {
		ids = append(ids, x.ID)
	}
	assert.Equal(t, []string{a.ID, c.ID}, ids)

	assert.ErrorIs(t, r.Delete(b.ID), ErrNotFound)
	assert.Len(t, deleted, 1)
}

func TestRecordTradeWinRate(t *testing.T) {
	r := newRegistry()
	b, _ := r.Create(Config{Name: "x", Asset: "AAPL"})
	for _, pnl := range []float64{10, 20, -5, 30} {
		require.NoError(t, r.RecordTrade(b.ID, pnl))
	}
	got, _ := r.Get(b.ID)
	assert.Equal(t, 4, got.Stats.TradeCount)
	assert.Equal(t, 3, got.Stats.WinningTrades)
	assert.Equal(t, 75.0, got.Stats.WinRate)
	assert.Equal(t, 55.0, got.Stats.DailyPnL)

	r.ResetDaily()
	got, _ = r.Get(b.ID)
	assert.Equal(t, 0.0, got.Stats.DailyPnL)
	assert.Equal(t, 55.0, got.Stats.TotalPnL)

	assert.ErrorIs(t, r.RecordTrade("missing", 1), ErrNotFound)
}

func TestParseEnums(t *testing.T) {
	f, err := ParseFrequency("5m")
	assert.NoError(t, err)
	assert.Equal(t, Every5m, f)
	_, err = ParseFrequency("")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	rk, err := ParseRisk("high")
	assert.NoError(t, err)
	assert.Equal(t, RiskHigh, rk)
}
