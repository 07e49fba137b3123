package sim

import "time"

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// TradeEvent is one simulated execution. Events are immutable once
// emitted.
type TradeEvent struct {
	ID         string    `json:"id" yaml:"id"`
	BotID      string    `json:"bot_id" yaml:"bot_id"`
	Symbol     string    `json:"symbol" yaml:"symbol"`
	Side       Side      `json:"side" yaml:"side"`
	Price      float64   `json:"price" yaml:"price"`
	Quantity   int       `json:"quantity" yaml:"quantity"`
	Time       time.Time `json:"time" yaml:"time"`
	ChartIndex int       `json:"chart_index" yaml:"chart_index"`
}

// Notional is price times quantity.
func (e TradeEvent) Notional() float64 {
	return e.Price * float64(e.Quantity)
}

// TradeSink receives every emitted trade event.
type TradeSink interface {
	OnTrade(TradeEvent)
}

// SinkFunc adapts a function to TradeSink.
type SinkFunc func(TradeEvent)

func (f SinkFunc) OnTrade(e TradeEvent) { f(e) }
