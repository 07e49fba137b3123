// Package dashboard ties the market store, bot registry, trade simulator,
// ledger and statistics together behind one serialized command and
// snapshot surface.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/atb/bots"
	"github.com/rustyeddy/atb/config"
	"github.com/rustyeddy/atb/internal/logger"
	"github.com/rustyeddy/atb/journal"
	"github.com/rustyeddy/atb/ledger"
	"github.com/rustyeddy/atb/market"
	"github.com/rustyeddy/atb/review"
	"github.com/rustyeddy/atb/sim"
	"github.com/rustyeddy/atb/stats"
)

// View is the presentation state that shapes chart and review reads.
type View struct {
	Timeframe   market.Timeframe `json:"timeframe" yaml:"timeframe"`
	Zoom        float64          `json:"zoom" yaml:"zoom"`
	Filter      review.Filter    `json:"filter" yaml:"filter"`
	SelectedBot string           `json:"selected_bot,omitempty" yaml:"selected_bot,omitempty"`
}

// Dashboard serializes every command, read and driver step behind one
// mutex. The components it owns are not goroutine-safe on their own.
type Dashboard struct {
	mu sync.Mutex

	cfg      *config.Config
	now      func() time.Time
	rng      *rand.Rand
	log      zerolog.Logger
	journal  journal.Journal
	provider market.Provider

	store  *market.Store
	ticker *market.TickerFeed
	bots   *bots.Registry
	sim    *sim.Simulator
	ledger *ledger.Ledger
	stats  *stats.Aggregator

	view       View
	nextTick   time.Time
	nextTicker time.Time
	started    bool
}

type Option func(*Dashboard)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) { d.now = now }
}

// WithRand seeds every component from r instead of the configured seed.
func WithRand(r *rand.Rand) Option {
	return func(d *Dashboard) { d.rng = r }
}

func WithLogger(l zerolog.Logger) Option {
	return func(d *Dashboard) { d.log = l }
}

func WithJournal(j journal.Journal) Option {
	return func(d *Dashboard) { d.journal = j }
}

// WithProvider sets the source tried before synthetic seeding.
func WithProvider(p market.Provider) Option {
	return func(d *Dashboard) { d.provider = p }
}

// New builds a dashboard from a validated configuration. Nothing is
// seeded until Bootstrap.
func New(cfg *config.Config, opts ...Option) (*Dashboard, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	d := &Dashboard{
		cfg:     cfg,
		now:     time.Now,
		log:     logger.Nop(),
		journal: journal.Discard{},
		view: View{
			Timeframe: market.M1,
			Zoom:      1,
			Filter:    review.All,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.rng == nil {
		seed := cfg.Simulation.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		d.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	m := cfg.Market
	d.store = market.NewStore(market.Options{
		Capacity:    m.WindowSize,
		SeedPoints:  m.SeedPoints,
		SeedSpacing: m.SeedSpacing.D(),
		SeedJitter:  m.SeedJitter,
		TickJitter:  m.TickJitter,
	}, d.child(), d.now)
	d.ticker = market.NewTickerFeed()
	d.bots = bots.NewRegistry(d.now)

	s := cfg.Simulation
	d.sim = sim.New(sim.Config{
		ActivityProbability: s.ActivityProbability,
		SignalProbability:   s.SignalProbability,
		MinQuantity:         s.MinQuantity,
		MaxQuantity:         s.MaxQuantity,
		MinReschedule:       s.MinReschedule.D(),
		MaxReschedule:       s.MaxReschedule.D(),
		HistoryLimit:        s.HistoryLimit,
	}, d.bots, d.store, d.child())

	l, err := ledger.New(decimal.NewFromFloat(cfg.Account.Balance), d.now)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	d.ledger = l
	d.stats = stats.New(stats.Config{
		Probability: s.StatsProbability,
		MaxSwing:    s.MaxPnLSwing,
	}, d.child(), d.now())

	d.bots.OnDelete(d.sim)
	d.bots.OnDelete(d.ledger)
	d.sim.AddSink(d.stats)
	d.sim.AddSink(sim.SinkFunc(d.journalTrade))
	d.ledger.SetRecorder(ledger.RecorderFunc(d.journalEntry))
	for _, e := range d.ledger.Entries() {
		d.journalEntry(e)
	}

	return d, nil
}

// child derives an independent random stream for one component.
func (d *Dashboard) child() *rand.Rand {
	return rand.New(rand.NewPCG(d.rng.Uint64(), d.rng.Uint64()))
}

// Bootstrap loads the configured symbols, falling back to synthetic data
// per symbol, creates the configured bots and primes the ticker. Provider
// failures are logged and never returned.
func (d *Dashboard) Bootstrap(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return errors.New("dashboard: already bootstrapped")
	}

	for _, sym := range d.cfg.Market.Symbols {
		d.loadLocked(ctx, sym)
	}

	for _, bc := range d.cfg.Bots {
		b, err := d.bots.CreateWithID(bc.ID, bots.Config{
			Name:           bc.Name,
			Asset:          bc.Asset,
			Strategy:       bc.Strategy,
			Frequency:      bots.Frequency(bc.Frequency),
			Risk:           bots.Risk(bc.Risk),
			FloorPrice:     bc.FloorPrice,
			DailyLossLimit: bc.DailyLossLimit,
			MaxPositions:   bc.MaxPositions,
		})
		if err != nil {
			return fmt.Errorf("bootstrap bot %s: %w", bc.ID, err)
		}
		d.ensureLocked(b.Asset)
	}

	now := d.now()
	d.ticker.Refresh(d.store, now)
	d.nextTick = now.Add(d.cfg.Market.TickInterval.D())
	d.nextTicker = now.Add(d.cfg.Market.TickerInterval.D())
	d.started = true

	d.log.Info().
		Int("symbols", len(d.store.Symbols())).
		Int("bots", d.bots.Len()).
		Str("balance", d.ledger.Main().String()).
		Msg("dashboard ready")
	return nil
}

func (d *Dashboard) loadLocked(ctx context.Context, symbol string) {
	if d.provider == nil {
		d.store.Seed(symbol, market.BasePrice(symbol))
		return
	}
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Market.ProviderTimeout.D())
	defer cancel()

	src, err := d.store.Load(ctx, d.provider, symbol)
	if err != nil {
		d.log.Warn().Err(err).Str("symbol", symbol).Msg("using synthetic market data")
		return
	}
	d.log.Debug().Str("symbol", symbol).Str("source", string(src)).Int("points", d.store.Len(symbol)).Msg("market data loaded")
}

// ensureLocked creates a series on first reference.
func (d *Dashboard) ensureLocked(symbol string) {
	if d.store.Ensure(symbol) {
		d.log.Debug().Str("symbol", symbol).Msg("series seeded")
	}
}

func (d *Dashboard) journalTrade(e sim.TradeEvent) {
	if err := d.journal.RecordTrade(journal.TradeFromEvent(e)); err != nil {
		d.log.Error().Err(err).Str("trade", e.ID).Msg("journal trade")
	}
}

func (d *Dashboard) journalEntry(e ledger.Entry) {
	if err := d.journal.RecordLedger(journal.LedgerFromEntry(e)); err != nil {
		d.log.Error().Err(err).Int("seq", e.Seq).Msg("journal ledger entry")
	}
}

// Close closes the journal.
func (d *Dashboard) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.journal.Close()
}
