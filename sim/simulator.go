package sim

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rustyeddy/atb/bots"
	"github.com/rustyeddy/atb/internal/id"
	"github.com/rustyeddy/atb/market"
)

var ErrNoPrice = errors.New("no price for asset")

type Config struct {
	ActivityProbability float64
	SignalProbability   float64
	MinQuantity         int
	MaxQuantity         int
	MinReschedule       time.Duration
	MaxReschedule       time.Duration
	HistoryLimit        int // per bot, and for the global log
}

func DefaultConfig() Config {
	return Config{
		ActivityProbability: 0.2,
		SignalProbability:   0.05,
		MinQuantity:         1,
		MaxQuantity:         10,
		MinReschedule:       10 * time.Second,
		MaxReschedule:       30 * time.Second,
		HistoryLimit:        500,
	}
}

// Bots resolves a bot's current definition at fire time.
type Bots interface {
	Get(botID string) (bots.Bot, error)
}

// Prices reads the latest price and the series length of a symbol.
type Prices interface {
	Last(symbol string) (market.Point, bool)
	Len(symbol string) int
}

// Simulator emits random trade events for active bots. Each bot has at
// most one pending activity check; the active flag is read when the check
// fires, so a paused bot's pending check is simply dropped. Not safe for
// concurrent use.
type Simulator struct {
	cfg     Config
	bots    Bots
	prices  Prices
	rng     *rand.Rand
	sched   *Scheduler
	ids     *id.Generator
	sinks   []TradeSink
	history map[string][]TradeEvent
	notes   map[string][]Marker
	log     []TradeEvent
}

// New builds a simulator. A nil rng gets a randomly seeded source.
func New(cfg Config, b Bots, p Prices, rng *rand.Rand) *Simulator {
	if cfg.MinQuantity < 1 {
		cfg.MinQuantity = 1
	}
	if cfg.MaxQuantity < cfg.MinQuantity {
		cfg.MaxQuantity = cfg.MinQuantity
	}
	if cfg.MinReschedule <= 0 {
		cfg.MinReschedule = time.Second
	}
	if cfg.MaxReschedule < cfg.MinReschedule {
		cfg.MaxReschedule = cfg.MinReschedule
	}
	if cfg.HistoryLimit < 1 {
		cfg.HistoryLimit = DefaultConfig().HistoryLimit
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulator{
		cfg:     cfg,
		bots:    b,
		prices:  p,
		rng:     rng,
		sched:   NewScheduler(),
		ids:     id.NewGenerator("trd", nil),
		history: make(map[string][]TradeEvent),
		notes:   make(map[string][]Marker),
	}
}

func (s *Simulator) Config() Config { return s.cfg }

// AddSink registers a receiver for emitted trades, in registration order.
func (s *Simulator) AddSink(sink TradeSink) {
	s.sinks = append(s.sinks, sink)
}

// Schedule queues an activity check for botID at t, replacing any
// pending one.
func (s *Simulator) Schedule(botID string, t time.Time) {
	s.sched.At(botID, t)
}

func (s *Simulator) Cancel(botID string) bool {
	return s.sched.Cancel(botID)
}

// Pending reports the next activity check of botID.
func (s *Simulator) Pending(botID string) (time.Time, bool) {
	return s.sched.Pending(botID)
}

// Advance fires every check due at now. Checks of missing or inactive
// bots are dropped. A failing check is reported in the joined error and
// does not stop the others.
func (s *Simulator) Advance(now time.Time) ([]TradeEvent, error) {
	var (
		out  []TradeEvent
		errs []error
	)
	for _, botID := range s.sched.Due(now) {
		bot, err := s.bots.Get(botID)
		if err != nil || !bot.Active() {
			continue
		}
		ev, ok, err := s.Fire(bot, now)
		s.sched.At(botID, now.Add(s.rescheduleDelay()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			out = append(out, ev)
		}
	}
	return out, errors.Join(errs...)
}

// Fire runs one activity check for bot. With ActivityProbability it emits
// a trade at the asset's last price with a random side and quantity.
func (s *Simulator) Fire(bot bots.Bot, now time.Time) (TradeEvent, bool, error) {
	if s.rng.Float64() >= s.cfg.ActivityProbability {
		return TradeEvent{}, false, nil
	}

	last, ok := s.prices.Last(bot.Asset)
	if !ok {
		return TradeEvent{}, false, fmt.Errorf("bot %s: %w %s", bot.ID, ErrNoPrice, bot.Asset)
	}

	side := Buy
	if s.rng.Float64() >= 0.5 {
		side = Sell
	}
	qty := s.cfg.MinQuantity + s.rng.IntN(s.cfg.MaxQuantity-s.cfg.MinQuantity+1)

	ev := TradeEvent{
		ID:         s.ids.At(now),
		BotID:      bot.ID,
		Symbol:     bot.Asset,
		Side:       side,
		Price:      last.Price,
		Quantity:   qty,
		Time:       now,
		ChartIndex: s.prices.Len(bot.Asset) - 1,
	}
	s.record(ev)
	for _, sink := range s.sinks {
		sink.OnTrade(ev)
	}
	return ev, true, nil
}

func (s *Simulator) record(ev TradeEvent) {
	h := append(s.history[ev.BotID], ev)
	if len(h) > s.cfg.HistoryLimit {
		h = h[len(h)-s.cfg.HistoryLimit:]
	}
	s.history[ev.BotID] = h

	s.log = append(s.log, ev)
	if len(s.log) > s.cfg.HistoryLimit {
		s.log = s.log[len(s.log)-s.cfg.HistoryLimit:]
	}
}

func (s *Simulator) rescheduleDelay() time.Duration {
	span := int64(s.cfg.MaxReschedule - s.cfg.MinReschedule)
	return s.cfg.MinReschedule + time.Duration(s.rng.Int64N(span+1))
}

// Trades returns a copy of botID's retained history, oldest first.
func (s *Simulator) Trades(botID string) []TradeEvent {
	h := s.history[botID]
	out := make([]TradeEvent, len(h))
	copy(out, h)
	return out
}

// Recent returns up to n of the newest events across all bots, oldest
// first. n <= 0 returns everything retained.
func (s *Simulator) Recent(n int) []TradeEvent {
	src := s.log
	if n > 0 && n < len(src) {
		src = src[len(src)-n:]
	}
	out := make([]TradeEvent, len(src))
	copy(out, src)
	return out
}

// Forget drops everything held for botID: its pending check, trade
// history and annotations.
func (s *Simulator) Forget(botID string) {
	s.sched.Cancel(botID)
	delete(s.history, botID)
	delete(s.notes, botID)

	kept := s.log[:0]
	for _, ev := range s.log {
		if ev.BotID != botID {
			kept = append(kept, ev)
		}
	}
	s.log = kept
}

// OnBotDeleted implements bots.DeleteListener.
func (s *Simulator) OnBotDeleted(botID string) { s.Forget(botID) }
