package sim

import "github.com/rustyeddy/atb/market"

type MarkerKind string

const (
	MarkBuy   MarkerKind = "BUY"
	MarkSell  MarkerKind = "SELL"
	MarkStart MarkerKind = "START"
	MarkPause MarkerKind = "PAUSE"
)

type MarkerSource string

const (
	FromSignal    MarkerSource = "signal"
	FromTrade     MarkerSource = "trade"
	FromLifecycle MarkerSource = "lifecycle"
)

// Marker is a point to draw over a price chart.
type Marker struct {
	Kind   MarkerKind   `json:"kind" yaml:"kind"`
	Source MarkerSource `json:"source" yaml:"source"`
	Index  int          `json:"index" yaml:"index"`
	Price  float64      `json:"price" yaml:"price"`
}

// Signals samples the overlay policy over pts: each index i >= 1 is
// marked with probability SignalProbability, BUY when the price rose from
// i-1 and SELL otherwise. The overlay is decorative and independent of
// the trades a bot emits.
func (s *Simulator) Signals(pts []market.Point) []Marker {
	var out []Marker
	for i := 1; i < len(pts); i++ {
		if s.rng.Float64() >= s.cfg.SignalProbability {
			continue
		}
		kind := MarkSell
		if pts[i].Price > pts[i-1].Price {
			kind = MarkBuy
		}
		out = append(out, Marker{Kind: kind, Source: FromSignal, Index: i, Price: pts[i].Price})
	}
	return out
}

// Markers merges a fresh overlay for pts with the stored trades and
// lifecycle annotations of botID. Stored indexes are clamped into pts.
func (s *Simulator) Markers(botID string, pts []market.Point) []Marker {
	out := s.Signals(pts)
	if len(pts) == 0 {
		return out
	}
	clamp := func(i int) int {
		if i < 0 {
			return 0
		}
		if i >= len(pts) {
			return len(pts) - 1
		}
		return i
	}
	for _, e := range s.history[botID] {
		kind := MarkBuy
		if e.Side == Sell {
			kind = MarkSell
		}
		out = append(out, Marker{Kind: kind, Source: FromTrade, Index: clamp(e.ChartIndex), Price: e.Price})
	}
	for _, m := range s.notes[botID] {
		m.Index = clamp(m.Index)
		out = append(out, m)
	}
	return out
}

// Annotate records a lifecycle marker for botID at the newest point of
// symbol. Nothing is recorded when the symbol has no data.
func (s *Simulator) Annotate(botID, symbol string, kind MarkerKind) bool {
	last, ok := s.prices.Last(symbol)
	if !ok {
		return false
	}
	notes := append(s.notes[botID], Marker{
		Kind:   kind,
		Source: FromLifecycle,
		Index:  s.prices.Len(symbol) - 1,
		Price:  last.Price,
	})
	if len(notes) > s.cfg.HistoryLimit {
		notes = notes[len(notes)-s.cfg.HistoryLimit:]
	}
	s.notes[botID] = notes
	return true
}
