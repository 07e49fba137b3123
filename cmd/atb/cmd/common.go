package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/atb/config"
	"github.com/rustyeddy/atb/dashboard"
	"github.com/rustyeddy/atb/internal/logger"
	"github.com/rustyeddy/atb/journal"
	"github.com/rustyeddy/atb/provider"
)

// virtualClock lets a command run the simulation faster than real time.
type virtualClock struct{ t time.Time }

func (c *virtualClock) Now() time.Time { return c.t }

// openDashboard builds and bootstraps a dashboard with the configured
// logger, journal and provider. The caller closes it.
func openDashboard(ctx context.Context, cfg *config.Config, opts ...dashboard.Option) (*dashboard.Dashboard, zerolog.Logger, error) {
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return nil, log, fmt.Errorf("open journal: %w", err)
	}

	base := []dashboard.Option{
		dashboard.WithLogger(log),
		dashboard.WithJournal(j),
	}
	if cfg.Market.ProviderURL != "" {
		base = append(base, dashboard.WithProvider(
			provider.NewClient(cfg.Market.ProviderURL, cfg.Market.ProviderTimeout.D()),
		))
	}

	d, err := dashboard.New(cfg, append(base, opts...)...)
	if err != nil {
		j.Close()
		return nil, log, err
	}
	if err := d.Bootstrap(ctx); err != nil {
		d.Close()
		return nil, log, err
	}
	return d, log, nil
}

func startAll(d *dashboard.Dashboard) error {
	for _, b := range d.Bots() {
		if _, err := d.StartBot(b.ID); err != nil {
			return err
		}
	}
	return nil
}

// simulate advances d on clk from its current time for span in steps of
// resolution and returns the number of trades executed.
func simulate(d *dashboard.Dashboard, clk *virtualClock, span, resolution time.Duration) int {
	trades := 0
	end := clk.t.Add(span)
	for clk.t.Before(end) {
		clk.t = clk.t.Add(resolution)
		trades += len(d.Advance(clk.t).Trades)
	}
	return trades
}
