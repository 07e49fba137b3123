// journal/journal.go
package journal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/atb/ledger"
	"github.com/rustyeddy/atb/sim"
)

// TradeRecord is the audit row of one simulated trade event.
type TradeRecord struct {
	TradeID    string
	BotID      string
	Symbol     string
	Side       string
	Price      float64
	Quantity   int
	Time       time.Time
	ChartIndex int
}

// LedgerRecord is the audit row of one ledger mutation.
type LedgerRecord struct {
	Seq       int
	Time      time.Time
	Kind      string
	BotID     string
	Amount    decimal.Decimal
	Main      decimal.Decimal
	Available decimal.Decimal
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordLedger(LedgerRecord) error
	Close() error
}

func TradeFromEvent(e sim.TradeEvent) TradeRecord {
	return TradeRecord{
		TradeID:    e.ID,
		BotID:      e.BotID,
		Symbol:     e.Symbol,
		Side:       string(e.Side),
		Price:      e.Price,
		Quantity:   e.Quantity,
		Time:       e.Time,
		ChartIndex: e.ChartIndex,
	}
}

func LedgerFromEntry(e ledger.Entry) LedgerRecord {
	return LedgerRecord{
		Seq:       e.Seq,
		Time:      e.Time,
		Kind:      string(e.Kind),
		BotID:     e.BotID,
		Amount:    e.Amount,
		Main:      e.Main,
		Available: e.Available,
	}
}

// Discard drops every record.
type Discard struct{}

func (Discard) RecordTrade(TradeRecord) error   { return nil }
func (Discard) RecordLedger(LedgerRecord) error { return nil }
func (Discard) Close() error                    { return nil }
