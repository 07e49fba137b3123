package sim

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rustyeddy/atb/bots"
	"github.com/rustyeddy/atb/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

type fixture struct {
	reg   *bots.Registry
	store *market.Store
	sim   *Simulator
	bot   bots.Bot
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	now := func() time.Time { return t0 }
	reg := bots.NewRegistry(now)
	store := market.NewStore(market.DefaultOptions(), rand.New(rand.NewPCG(3, 4)), now)
	store.Seed("AAPL", 150)

	b, err := reg.Create(bots.Config{Name: "Stock Bot 1", Asset: "AAPL"})
	require.NoError(t, err)

	return &fixture{
		reg:   reg,
		store: store,
		sim:   New(cfg, reg, store, rand.New(rand.NewPCG(1, 2))),
		bot:   b,
	}
}

func alwaysTrade() Config {
	cfg := DefaultConfig()
	cfg.ActivityProbability = 1
	return cfg
}

func TestFireEmitsTrade(t *testing.T) {
	f := newFixture(t, alwaysTrade())
	var seen []TradeEvent
	f.sim.AddSink(SinkFunc(func(e TradeEvent) { seen = append(seen, e) }))

	f.reg.Start(f.bot.ID)
	f.sim.Schedule(f.bot.ID, t0)

	events, err := f.sim.Advance(t0)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	last, _ := f.store.Last("AAPL")
	assert.Equal(t, f.bot.ID, ev.BotID)
	assert.Equal(t, "AAPL", ev.Symbol)
	assert.Equal(t, last.Price, ev.Price)
	assert.Equal(t, 99, ev.ChartIndex)
	assert.GreaterOrEqual(t, ev.Quantity, 1)
	assert.LessOrEqual(t, ev.Quantity, 10)
	assert.Contains(t, []Side{Buy, Sell}, ev.Side)
	assert.Equal(t, seen, events)
	assert.Equal(t, events, f.sim.Trades(f.bot.ID))

	next, ok := f.sim.Pending(f.bot.ID)
	require.True(t, ok)
	assert.GreaterOrEqual(t, next.Sub(t0), 10*time.Second)
	assert.LessOrEqual(t, next.Sub(t0), 30*time.Second)
}

func TestPausedBotFiresInert(t *testing.T) {
	f := newFixture(t, alwaysTrade())
	f.reg.Start(f.bot.ID)
	f.sim.Schedule(f.bot.ID, t0.Add(10*time.Second))
	f.reg.Pause(f.bot.ID)

	events, err := f.sim.Advance(t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, events)
	_, ok := f.sim.Pending(f.bot.ID)
	assert.False(t, ok)
	assert.Empty(t, f.sim.Trades(f.bot.ID))
}

func TestInactiveBotNeverTrades(t *testing.T) {
	f := newFixture(t, alwaysTrade())
	now := t0
	f.sim.Schedule(f.bot.ID, now)
	for i := 0; i < 100; i++ {
		events, _ := f.sim.Advance(now)
		assert.Empty(t, events)
		now = now.Add(5 * time.Second)
	}
}

func TestActivityRate(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.reg.Start(f.bot.ID)

	n := 0
	for i := 0; i < 2000; i++ {
		_, ok, err := f.sim.Fire(f.bot, t0)
		require.NoError(t, err)
		if ok {
			n++
		}
	}
	assert.InDelta(t, 400, n, 80)
}

func TestFireWithoutPrice(t *testing.T) {
	f := newFixture(t, alwaysTrade())
	b, _ := f.reg.Create(bots.Config{Name: "x", Asset: "NOPE"})
	f.reg.Start(b.ID)
	f.reg.Start(f.bot.ID)
	f.sim.Schedule(b.ID, t0)
	f.sim.Schedule(f.bot.ID, t0)

	events, err := f.sim.Advance(t0)
	assert.ErrorIs(t, err, ErrNoPrice)
	assert.Len(t, events, 1)
	_, ok := f.sim.Pending(b.ID)
	assert.True(t, ok)
}

func TestHistoryLimit(t *testing.T) {
	cfg := alwaysTrade()
	cfg.HistoryLimit = 5
	f := newFixture(t, cfg)
	f.reg.Start(f.bot.ID)
	b, _ := f.reg.Get(f.bot.ID)

	for i := 0; i < 12; i++ {
		f.sim.Fire(b, t0.Add(time.Duration(i)*time.Second))
	}
	h := f.sim.Trades(f.bot.ID)
	require.Len(t, h, 5)
	assert.Equal(t, t0.Add(11*time.Second), h[4].Time)
	assert.Len(t, f.sim.Recent(0), 5)
	assert.Len(t, f.sim.Recent(2), 2)
}

func TestForgetOnDelete(t *testing.T) {
	f := newFixture(t, alwaysTrade())
	f.reg.OnDelete(f.sim)
	f.reg.Start(f.bot.ID)
	b, _ := f.reg.Get(f.bot.ID)
	f.sim.Fire(b, t0)
	f.sim.Annotate(b.ID, "AAPL", MarkStart)
	f.sim.Schedule(b.ID, t0.Add(time.Second))

	require.NoError(t, f.reg.Delete(b.ID))
	assert.Empty(t, f.sim.Trades(b.ID))
	assert.Empty(t, f.sim.Recent(0))
	_, ok := f.sim.Pending(b.ID)
	assert.False(t, ok)
}

func TestSignalsFollowDirection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SignalProbability = 1
	f := newFixture(t, cfg)

	pts := []market.Point{{Price: 10}, {Price: 11}, {Price: 9}, {Price: 9}}
	sig := f.sim.Signals(pts)
	require.Len(t, sig, 3)
	assert.Equal(t, MarkBuy, sig[0].Kind)
	assert.Equal(t, 1, sig[0].Index)
	assert.Equal(t, MarkSell, sig[1].Kind)
	assert.Equal(t, MarkSell, sig[2].Kind)

	cfg.SignalProbability = 0
	f = newFixture(t, cfg)
	assert.Empty(t, f.sim.Signals(pts))
}

func TestMarkersMergeAndClamp(t *testing.T) {
	cfg := alwaysTrade()
	cfg.SignalProbability = 0
	f := newFixture(t, cfg)
	f.reg.Start(f.bot.ID)
	b, _ := f.reg.Get(f.bot.ID)

	ev, ok, err := f.sim.Fire(b, t0)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, f.sim.Annotate(b.ID, "AAPL", MarkPause))
	assert.False(t, f.sim.Annotate(b.ID, "NOPE", MarkStart))

	pts, _ := f.store.Points("AAPL")
	short := pts[:20]
	markers := f.sim.Markers(b.ID, short)
	require.Len(t, markers, 2)

	assert.Equal(t, FromTrade, markers[0].Source)
	assert.Equal(t, 19, markers[0].Index)
	assert.Equal(t, ev.Price, markers[0].Price)
	assert.Equal(t, MarkPause, markers[1].Kind)
	assert.Equal(t, FromLifecycle, markers[1].Source)

	assert.Empty(t, f.sim.Markers(b.ID, nil))
}
