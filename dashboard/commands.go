package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/atb/bots"
	"github.com/rustyeddy/atb/ledger"
	"github.com/rustyeddy/atb/market"
	"github.com/rustyeddy/atb/review"
	"github.com/rustyeddy/atb/sim"
)

// ErrInvalidArgument marks a malformed command argument.
var ErrInvalidArgument = errors.New("invalid argument")

// CreateBot registers a new inactive bot and makes sure its asset has a
// series.
func (d *Dashboard) CreateBot(cfg bots.Config) (bots.Bot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cfg.Asset = strings.TrimSpace(cfg.Asset)
	cfg.Name = strings.TrimSpace(cfg.Name)
	b, err := d.bots.Create(cfg)
	if err != nil {
		return bots.Bot{}, fmt.Errorf("create bot: %w", err)
	}
	d.ensureLocked(b.Asset)
	d.log.Info().Str("bot", b.ID).Str("asset", b.Asset).Msg("bot created")
	return b, nil
}

// CreateBotForMarket creates a bot for symbol named after its catalog
// entry.
func (d *Dashboard) CreateBotForMarket(symbol string) (bots.Bot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return bots.Bot{}, fmt.Errorf("create bot: %w: symbol is required", ErrInvalidArgument)
	}
	asset, _ := market.Lookup(symbol)
	b, err := d.bots.CreateForMarket(asset)
	if err != nil {
		return bots.Bot{}, fmt.Errorf("create bot: %w", err)
	}
	d.ensureLocked(b.Asset)
	d.log.Info().Str("bot", b.ID).Str("asset", b.Asset).Msg("bot created for market")
	return b, nil
}

// StartBot activates a bot. A newly started bot gets an immediate
// activity check. changed is false when it was already running.
func (d *Dashboard) StartBot(botID string) (changed bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	changed, err = d.bots.Start(botID)
	if err != nil {
		return false, fmt.Errorf("start bot: %w", err)
	}
	if changed {
		b, _ := d.bots.Get(botID)
		d.sim.Schedule(botID, d.now())
		d.sim.Annotate(botID, b.Asset, sim.MarkStart)
		d.log.Info().Str("bot", botID).Msg("bot started")
	}
	d.stats.SetActivePositions(d.bots.ActiveCount())
	return changed, nil
}

// PauseBot deactivates a bot. Its pending activity check stays queued and
// is dropped when it fires.
func (d *Dashboard) PauseBot(botID string) (changed bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	changed, err = d.bots.Pause(botID)
	if err != nil {
		return false, fmt.Errorf("pause bot: %w", err)
	}
	if changed {
		b, _ := d.bots.Get(botID)
		d.sim.Annotate(botID, b.Asset, sim.MarkPause)
		d.log.Info().Str("bot", botID).Msg("bot paused")
	}
	d.stats.SetActivePositions(d.bots.ActiveCount())
	return changed, nil
}

// ResetBot deactivates a bot and restores its frequency and risk.
func (d *Dashboard) ResetBot(botID string) (bots.Bot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, err := d.bots.Reset(botID)
	if err != nil {
		return bots.Bot{}, fmt.Errorf("reset bot: %w", err)
	}
	d.stats.SetActivePositions(d.bots.ActiveCount())
	d.log.Info().Str("bot", botID).Msg("bot reset")
	return b, nil
}

// DeleteBot removes a bot. Its allocation returns to available funds and
// its trade history is dropped.
func (d *Dashboard) DeleteBot(botID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	released := d.ledger.Allocation(botID)
	if err := d.bots.Delete(botID); err != nil {
		return fmt.Errorf("delete bot: %w", err)
	}
	if d.view.SelectedBot == botID {
		d.view.SelectedBot = ""
	}
	d.stats.SetActivePositions(d.bots.ActiveCount())
	d.log.Info().Str("bot", botID).Str("released", released.String()).Msg("bot deleted")
	return nil
}

func (d *Dashboard) ReconfigureBot(botID string, u bots.Update) (bots.Bot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, err := d.bots.Reconfigure(botID, u)
	if err != nil {
		return bots.Bot{}, fmt.Errorf("reconfigure bot: %w", err)
	}
	d.ensureLocked(b.Asset)
	return b, nil
}

func (d *Dashboard) Deposit(amount decimal.Decimal) (ledger.Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := d.ledger.Deposit(amount)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("deposit: %w", err)
	}
	d.log.Info().Str("amount", amount.String()).Msg("deposit")
	return e, nil
}

func (d *Dashboard) TransferToBot(botID string, amount decimal.Decimal) (ledger.Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.bots.Has(botID) {
		return ledger.Entry{}, fmt.Errorf("transfer: %w: %s", bots.ErrNotFound, botID)
	}
	e, err := d.ledger.TransferToBot(botID, amount)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("transfer: %w", err)
	}
	d.log.Info().Str("bot", botID).Str("amount", amount.String()).Msg("transfer to bot")
	return e, nil
}

func (d *Dashboard) WithdrawFromBot(botID string, amount decimal.Decimal) (ledger.Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.bots.Has(botID) {
		return ledger.Entry{}, fmt.Errorf("withdraw: %w: %s", bots.ErrNotFound, botID)
	}
	e, err := d.ledger.WithdrawFromBot(botID, amount)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("withdraw: %w", err)
	}
	d.log.Info().Str("bot", botID).Str("amount", amount.String()).Msg("withdraw from bot")
	return e, nil
}

func (d *Dashboard) SetTimeframe(token string) (market.Timeframe, error) {
	tf, err := market.ParseTimeframe(strings.TrimSpace(token))
	if err != nil {
		return "", fmt.Errorf("set timeframe: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view.Timeframe = tf
	return tf, nil
}

// SetZoom stores the zoom level, clamped to market.MinZoom, and returns
// the value kept.
func (d *Dashboard) SetZoom(level float64) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view.Zoom = market.ClampZoom(level)
	return d.view.Zoom
}

func (d *Dashboard) SetMarketFilter(filter string) review.Filter {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view.Filter = review.ParseFilter(filter)
	return d.view.Filter
}

// SelectBot picks the bot whose chart and markers are shown. An empty id
// clears the selection.
func (d *Dashboard) SelectBot(botID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if botID != "" && !d.bots.Has(botID) {
		return fmt.Errorf("select bot: %w: %s", bots.ErrNotFound, botID)
	}
	d.view.SelectedBot = botID
	return nil
}
