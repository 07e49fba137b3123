package bots

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/atb/internal/id"
	"github.com/rustyeddy/atb/market"
)

var (
	ErrNotFound      = errors.New("bot not found")
	ErrInvalidConfig = errors.New("invalid bot config")
	ErrDuplicateID   = errors.New("duplicate bot id")
)

// DeleteListener is notified after a bot is removed so that state keyed
// by the bot id can be dropped.
type DeleteListener interface {
	OnBotDeleted(botID string)
}

// DeleteFunc adapts a function to DeleteListener.
type DeleteFunc func(botID string)

func (f DeleteFunc) OnBotDeleted(botID string) { f(botID) }

// Registry owns every bot definition. It is not safe for concurrent use.
type Registry struct {
	now       func() time.Time
	ids       *id.Generator
	bots      map[string]*Bot
	order     []string
	listeners []DeleteListener
}

// NewRegistry returns an empty registry. A nil now uses time.Now.
func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		now:  now,
		ids:  id.NewGenerator("bot", nil),
		bots: make(map[string]*Bot),
	}
}

// OnDelete registers l for delete cascades, in registration order.
func (r *Registry) OnDelete(l DeleteListener) {
	r.listeners = append(r.listeners, l)
}

// Create adds an inactive bot with zero stats and a fresh id.
func (r *Registry) Create(cfg Config) (Bot, error) {
	return r.CreateWithID(r.ids.At(r.now()), cfg)
}

// CreateWithID adds a bot under an explicit id.
func (r *Registry) CreateWithID(botID string, cfg Config) (Bot, error) {
	if botID == "" {
		return Bot{}, fmt.Errorf("%w: id is required", ErrInvalidConfig)
	}
	if _, ok := r.bots[botID]; ok {
		return Bot{}, fmt.Errorf("%w: %s", ErrDuplicateID, botID)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Bot{}, err
	}

	b := &Bot{
		ID:             botID,
		Name:           cfg.Name,
		Asset:          cfg.Asset,
		Strategy:       cfg.Strategy,
		Frequency:      cfg.Frequency,
		Risk:           cfg.Risk,
		FloorPrice:     cfg.FloorPrice,
		DailyLossLimit: cfg.DailyLossLimit,
		MaxPositions:   cfg.MaxPositions,
		State:          Inactive,
		Created:        r.now(),
	}
	r.bots[botID] = b
	r.order = append(r.order, botID)
	return *b, nil
}

// CreateForMarket creates a bot named after asset with the custom
// strategy tag.
func (r *Registry) CreateForMarket(asset market.Asset) (Bot, error) {
	name := asset.Name
	if name == "" {
		name = asset.Symbol
	}
	return r.Create(Config{
		Name:     name + " Bot",
		Asset:    asset.Symbol,
		Strategy: "Custom",
	})
}

// Start activates a bot. changed is false when it was already active.
func (r *Registry) Start(botID string) (changed bool, err error) {
	return r.setState(botID, Active)
}

// Pause deactivates a bot. changed is false when it was already inactive.
func (r *Registry) Pause(botID string) (changed bool, err error) {
	return r.setState(botID, Inactive)
}

func (r *Registry) setState(botID string, s State) (bool, error) {
	b, err := r.lookup(botID)
	if err != nil {
		return false, err
	}
	if b.State == s {
		return false, nil
	}
	b.State = s
	return true, nil
}

// Reset deactivates a bot and restores frequency and risk to their
// defaults. Stats are kept.
func (r *Registry) Reset(botID string) (Bot, error) {
	b, err := r.lookup(botID)
	if err != nil {
		return Bot{}, err
	}
	b.State = Inactive
	b.Frequency = DefaultFrequency
	b.Risk = DefaultRisk
	return *b, nil
}

// Reconfigure applies u to a bot. The update is validated as a whole
// and nothing changes on error.
func (r *Registry) Reconfigure(botID string, u Update) (Bot, error) {
	b, err := r.lookup(botID)
	if err != nil {
		return Bot{}, err
	}

	next := *b
	if u.Name != nil && *u.Name != "" {
		next.Name = *u.Name
	}
	if u.Asset != nil && *u.Asset != "" {
		next.Asset = *u.Asset
	}
	if u.Strategy != nil {
		next.Strategy = *u.Strategy
	}
	if u.Frequency != nil {
		next.Frequency = *u.Frequency
	}
	if u.Risk != nil {
		next.Risk = *u.Risk
	}
	if u.FloorPrice != nil {
		next.FloorPrice = *u.FloorPrice
	}
	if u.DailyLossLimit != nil {
		next.DailyLossLimit = *u.DailyLossLimit
	}
	if u.MaxPositions != nil {
		next.MaxPositions = *u.MaxPositions
	}

	cfg := Config{
		Name:           next.Name,
		Asset:          next.Asset,
		Strategy:       next.Strategy,
		Frequency:      next.Frequency,
		Risk:           next.Risk,
		FloorPrice:     next.FloorPrice,
		DailyLossLimit: next.DailyLossLimit,
		MaxPositions:   next.MaxPositions,
	}
	if err := cfg.Validate(); err != nil {
		return Bot{}, err
	}

	*b = next
	return next, nil
}

// Delete removes a bot and then runs the delete listeners.
func (r *Registry) Delete(botID string) error {
	if _, err := r.lookup(botID); err != nil {
		return err
	}
	delete(r.bots, botID)
	for i, bid := range r.order {
		if bid == botID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	for _, l := range r.listeners {
		l.OnBotDeleted(botID)
	}
	return nil
}

func (r *Registry) Get(botID string) (Bot, error) {
	b, err := r.lookup(botID)
	if err != nil {
		return Bot{}, err
	}
	return *b, nil
}

func (r *Registry) Has(botID string) bool {
	_, ok := r.bots[botID]
	return ok
}

// IsActive reports whether botID exists and is active.
func (r *Registry) IsActive(botID string) bool {
	b, ok := r.bots[botID]
	return ok && b.State == Active
}

// List returns copies of every bot in creation order.
func (r *Registry) List() []Bot {
	out := make([]Bot, 0, len(r.order))
	for _, bid := range r.order {
		out = append(out, *r.bots[bid])
	}
	return out
}

func (r *Registry) Len() int { return len(r.order) }

func (r *Registry) ActiveCount() int {
	n := 0
	for _, b := range r.bots {
		if b.State == Active {
			n++
		}
	}
	return n
}

// RecordTrade folds one realized trade result into a bot's stats.
func (r *Registry) RecordTrade(botID string, pnl float64) error {
	b, err := r.lookup(botID)
	if err != nil {
		return err
	}
	b.Stats.TotalPnL += pnl
	b.Stats.DailyPnL += pnl
	b.Stats.TradeCount++
	if pnl > 0 {
		b.Stats.WinningTrades++
	}
	b.Stats.WinRate = float64(b.Stats.WinningTrades) / float64(b.Stats.TradeCount) * 100
	return nil
}

// ResetDaily zeroes every bot's daily P&L.
func (r *Registry) ResetDaily() {
	for _, b := range r.bots {
		b.Stats.DailyPnL = 0
	}
}

func (r *Registry) lookup(botID string) (*Bot, error) {
	b, ok := r.bots[botID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, botID)
	}
	return b, nil
}
