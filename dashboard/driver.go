package dashboard

import (
	"context"
	"time"

	"github.com/rustyeddy/atb/sim"
)

// Step reports what one Advance did.
type Step struct {
	Ticked    bool             `json:"ticked"`
	Refreshed bool             `json:"refreshed"`
	PnL       *float64         `json:"pnl,omitempty"`
	Trades    []sim.TradeEvent `json:"trades,omitempty"`
}

// Advance runs every trigger due at now: the market tick with the stats
// sample, the ticker refresh and the per-bot activity checks. The
// cadences are independent and a failing trigger never stops the others.
func (d *Dashboard) Advance(now time.Time) Step {
	d.mu.Lock()
	defer d.mu.Unlock()

	var st Step

	if !now.Before(d.nextTick) {
		n := d.store.TickAll()
		st.Ticked = true
		if d.stats.Rollover(now) {
			d.bots.ResetDaily()
			d.log.Info().Time("day", d.stats.Snapshot().Day).Msg("daily pnl reset")
		}
		if delta, ok := d.stats.Perturb(now); ok {
			st.PnL = &delta
			d.attributeLocked(delta)
		}
		d.ticker.Refresh(d.store, now)
		d.nextTick = next(d.nextTick, now, d.cfg.Market.TickInterval.D())
		d.log.Trace().Int("symbols", n).Msg("market tick")
	}

	if !now.Before(d.nextTicker) {
		d.ticker.Refresh(d.store, now)
		st.Refreshed = true
		d.nextTicker = next(d.nextTicker, now, d.cfg.Market.TickerInterval.D())
	}

	trades, err := d.sim.Advance(now)
	if err != nil {
		d.log.Error().Err(err).Msg("activity check failed")
	}
	for _, e := range trades {
		d.log.Debug().
			Str("bot", e.BotID).
			Str("side", string(e.Side)).
			Int("qty", e.Quantity).
			Str("symbol", e.Symbol).
			Float64("price", e.Price).
			Msg("trade executed")
	}
	st.Trades = trades

	d.stats.SetActivePositions(d.bots.ActiveCount())
	return st
}

// attributeLocked credits a sampled P&L result to one active bot chosen
// at random. Nothing is credited when no bot is running.
func (d *Dashboard) attributeLocked(pnl float64) {
	var active []string
	for _, b := range d.bots.List() {
		if b.Active() {
			active = append(active, b.ID)
		}
	}
	if len(active) == 0 {
		return
	}
	botID := active[d.rng.IntN(len(active))]
	if err := d.bots.RecordTrade(botID, pnl); err != nil {
		d.log.Error().Err(err).Str("bot", botID).Msg("record pnl")
	}
}

// next returns the first multiple of every after prev that is later than
// now, so a stalled driver does not replay missed ticks.
func next(prev, now time.Time, every time.Duration) time.Time {
	t := prev.Add(every)
	if !t.After(now) {
		t = now.Add(every)
	}
	return t
}

// Run drives Advance from a ticker at resolution until ctx is done.
func (d *Dashboard) Run(ctx context.Context, resolution time.Duration) error {
	if resolution <= 0 {
		resolution = time.Second
	}
	t := time.NewTicker(resolution)
	defer t.Stop()

	d.log.Info().Dur("resolution", resolution).Msg("driver started")
	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("driver stopped")
			return nil
		case <-t.C:
			d.Advance(d.now())
		}
	}
}
