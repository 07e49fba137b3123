package market

import "time"

// Quote is one ticker entry.
type Quote struct {
	Symbol        string    `json:"symbol" yaml:"symbol"`
	Price         float64   `json:"price" yaml:"price"`
	Change        float64   `json:"change" yaml:"change"`
	ChangePercent float64   `json:"change_percent" yaml:"change_percent"`
	Time          time.Time `json:"time" yaml:"time"`
}

// TickerFeed caches the quotes computed by the last Refresh.
type TickerFeed struct {
	quotes    []Quote
	refreshed time.Time
}

func NewTickerFeed() *TickerFeed {
	return &TickerFeed{}
}

// Refresh recomputes one quote per series: last price, and change from the
// oldest point in the window.
func (f *TickerFeed) Refresh(s *Store, now time.Time) {
	quotes := make([]Quote, 0, len(s.order))
	for _, sym := range s.order {
		ser := s.series[sym]
		first, ok := ser.First()
		if !ok {
			continue
		}
		last, _ := ser.Last()

		q := Quote{
			Symbol: sym,
			Price:  last.Price,
			Change: last.Price - first.Price,
			Time:   last.Time,
		}
		if first.Price != 0 {
			q.ChangePercent = q.Change / first.Price * 100
		}
		quotes = append(quotes, q)
	}
	f.quotes = quotes
	f.refreshed = now
}

// Quotes returns a copy of the last refresh in symbol order.
func (f *TickerFeed) Quotes() []Quote {
	out := make([]Quote, len(f.quotes))
	copy(out, f.quotes)
	return out
}

func (f *TickerFeed) Quote(symbol string) (Quote, bool) {
	for _, q := range f.quotes {
		if q.Symbol == symbol {
			return q, true
		}
	}
	return Quote{}, false
}

func (f *TickerFeed) Refreshed() time.Time { return f.refreshed }
