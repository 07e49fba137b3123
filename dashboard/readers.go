package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/atb/bots"
	"github.com/rustyeddy/atb/indicators"
	"github.com/rustyeddy/atb/ledger"
	"github.com/rustyeddy/atb/market"
	"github.com/rustyeddy/atb/review"
	"github.com/rustyeddy/atb/sim"
	"github.com/rustyeddy/atb/stats"
)

// Chart is everything needed to draw one price chart.
type Chart struct {
	Symbol    string               `json:"symbol" yaml:"symbol"`
	BotID     string               `json:"bot_id,omitempty" yaml:"bot_id,omitempty"`
	Timeframe market.Timeframe     `json:"timeframe" yaml:"timeframe"`
	Zoom      float64              `json:"zoom" yaml:"zoom"`
	Points    []market.Point       `json:"points" yaml:"points"`
	Candles   []market.Candle      `json:"candles" yaml:"candles"`
	Markers   []sim.Marker         `json:"markers" yaml:"markers"`
	Overlays  []indicators.Overlay `json:"overlays" yaml:"overlays"`
}

// Overlay periods drawn on every chart.
const (
	MAPeriod  = 20
	EMAPeriod = 20
	ATRPeriod = 14
)

// Market is a catalog entry joined with the live quote, if tracked.
type Market struct {
	market.Asset `yaml:",inline"`
	Tracked      bool          `json:"tracked" yaml:"tracked"`
	Quote        *market.Quote `json:"quote,omitempty" yaml:"quote,omitempty"`
}

// Snapshot is a full read of the dashboard state.
type Snapshot struct {
	Time     time.Time           `json:"time" yaml:"time"`
	View     View                `json:"view" yaml:"view"`
	Bots     []bots.Bot          `json:"bots" yaml:"bots"`
	Ticker   []market.Quote      `json:"ticker" yaml:"ticker"`
	Balances ledger.Balances     `json:"balances" yaml:"balances"`
	Stats    stats.Snapshot      `json:"stats" yaml:"stats"`
	Review   review.Review       `json:"review" yaml:"review"`
	Trades   []sim.TradeEvent    `json:"trades" yaml:"trades"`
	Markets  []market.SeriesView `json:"markets,omitempty" yaml:"markets,omitempty"`
}

func (d *Dashboard) Bots() []bots.Bot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bots.List()
}

func (d *Dashboard) Bot(botID string) (bots.Bot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bots.Get(botID)
}

// Trades returns the retained history of botID, or the newest trades
// across all bots when botID is empty.
func (d *Dashboard) Trades(botID string) ([]sim.TradeEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if botID == "" {
		return d.sim.Recent(0), nil
	}
	if !d.bots.Has(botID) {
		return nil, fmt.Errorf("trades: %w: %s", bots.ErrNotFound, botID)
	}
	return d.sim.Trades(botID), nil
}

func (d *Dashboard) Ticker() []market.Quote {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ticker.Quotes()
}

// Chart renders symbol with the current timeframe and zoom. The series is
// created on first reference.
func (d *Dashboard) Chart(symbol string) (Chart, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Chart{}, fmt.Errorf("chart: %w: symbol is required", ErrInvalidArgument)
	}
	d.ensureLocked(symbol)
	c, err := d.chartLocked(symbol)
	if err != nil {
		return Chart{}, err
	}
	c.Markers = d.sim.Signals(c.Points)
	return c, nil
}

// BotChart renders the asset of botID with its trade and lifecycle
// markers merged over the signal overlay.
func (d *Dashboard) BotChart(botID string) (Chart, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, err := d.bots.Get(botID)
	if err != nil {
		return Chart{}, fmt.Errorf("bot chart: %w", err)
	}
	d.ensureLocked(b.Asset)
	c, err := d.chartLocked(b.Asset)
	if err != nil {
		return Chart{}, err
	}
	c.BotID = botID
	c.Markers = d.sim.Markers(botID, c.Points)
	return c, nil
}

func (d *Dashboard) chartLocked(symbol string) (Chart, error) {
	pts, err := d.store.ZoomedWindow(symbol, d.view.Zoom)
	if err != nil {
		return Chart{}, fmt.Errorf("chart: %w", err)
	}
	candles, err := d.store.Window(symbol, d.view.Timeframe)
	if err != nil {
		return Chart{}, fmt.Errorf("chart: %w", err)
	}
	prices := indicators.Prices(pts)
	return Chart{
		Symbol:    symbol,
		Timeframe: d.view.Timeframe,
		Zoom:      d.view.Zoom,
		Points:    pts,
		Candles:   candles,
		Overlays: []indicators.Overlay{
			indicators.Line(indicators.NewMA(MAPeriod), prices),
			indicators.Line(indicators.NewEMA(EMAPeriod), prices),
			indicators.CandleLine(indicators.NewATR(ATRPeriod), candles),
		},
	}, nil
}

func (d *Dashboard) Balances() ledger.Balances {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ledger.Balances()
}

func (d *Dashboard) LedgerEntries() []ledger.Entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ledger.Entries()
}

func (d *Dashboard) Stats() stats.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats.Snapshot()
}

// Review analyzes every series under the current market filter.
func (d *Dashboard) Review() review.Review {
	d.mu.Lock()
	defer d.mu.Unlock()
	return review.Analyze(d.store.Snapshot(), d.view.Filter)
}

// ReviewWith analyzes every series under f without touching the view.
func (d *Dashboard) ReviewWith(f review.Filter) review.Review {
	d.mu.Lock()
	defer d.mu.Unlock()
	return review.Analyze(d.store.Snapshot(), f)
}

func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view
}

// Markets searches the catalog and the tracked symbols. Tracked symbols
// missing from the catalog are included when they match.
func (d *Dashboard) Markets(search string) []Market {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []Market
	seen := make(map[string]bool)
	add := func(a market.Asset) {
		m := Market{Asset: a, Tracked: d.store.Has(a.Symbol)}
		if q, ok := d.ticker.Quote(a.Symbol); ok {
			m.Quote = &q
		}
		seen[a.Symbol] = true
		out = append(out, m)
	}
	for _, a := range market.Search(search) {
		add(a)
	}
	term := strings.ToLower(strings.TrimSpace(search))
	for _, sym := range d.store.Symbols() {
		if seen[sym] || !strings.Contains(strings.ToLower(sym), term) {
			continue
		}
		a, _ := market.Lookup(sym)
		add(a)
	}
	return out
}

// Snapshot reads the whole state. Raw series are included when withSeries
// is set.
func (d *Dashboard) Snapshot(withSeries bool) Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked(withSeries)
}

func (d *Dashboard) snapshotLocked(withSeries bool) Snapshot {
	series := d.store.Snapshot()
	s := Snapshot{
		Time:     d.now(),
		View:     d.view,
		Bots:     d.bots.List(),
		Ticker:   d.ticker.Quotes(),
		Balances: d.ledger.Balances(),
		Stats:    d.stats.Snapshot(),
		Review:   review.Analyze(series, d.view.Filter),
		Trades:   d.sim.Recent(0),
	}
	if withSeries {
		s.Markets = series
	}
	return s
}
