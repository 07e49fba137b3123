// Package review summarizes the market series held by a store.
package review

import (
	"math"
	"strings"

	"github.com/rustyeddy/atb/market"
)

// NoData is the symbol reported when no series qualifies.
const NoData = "-"

// PerformanceLimit caps the per-market performance list.
const PerformanceLimit = 8

// Filter restricts a review to all markets, one category or one symbol.
type Filter string

const (
	All         Filter = "all"
	Stocks      Filter = "stocks"
	Crypto      Filter = "crypto"
	Commodities Filter = "commodities"
)

// ParseFilter normalizes s. Category names are case-insensitive, an empty
// string means All and anything else is taken as a symbol.
func ParseFilter(s string) Filter {
	s = strings.TrimSpace(s)
	switch f := Filter(strings.ToLower(s)); f {
	case "", All:
		return All
	case Stocks, Crypto, Commodities:
		return f
	}
	return Filter(s)
}

// Match reports whether symbol passes f.
func (f Filter) Match(symbol string) bool {
	switch f {
	case "", All:
		return true
	case Stocks:
		return market.CategoryOf(symbol) == market.Stock
	case Crypto:
		return market.CategoryOf(symbol) == market.Crypto
	case Commodities:
		return market.CategoryOf(symbol) == market.Commodity
	}
	return string(f) == symbol
}

// Mover names one symbol and a percentage.
type Mover struct {
	Symbol  string  `json:"symbol" yaml:"symbol"`
	Percent float64 `json:"percent" yaml:"percent"`
}

func (m Mover) Found() bool { return m.Symbol != NoData }

type Performance struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Change float64 `json:"change" yaml:"change"`
}

type Review struct {
	Filter        Filter        `json:"filter" yaml:"filter"`
	TotalMarkets  int           `json:"total_markets" yaml:"total_markets"`
	BiggestGainer Mover         `json:"biggest_gainer" yaml:"biggest_gainer"`
	BiggestLoser  Mover         `json:"biggest_loser" yaml:"biggest_loser"`
	MostVolatile  Mover         `json:"most_volatile" yaml:"most_volatile"`
	Performance   []Performance `json:"performance" yaml:"performance"`
}

// Analyze reviews series in the order given. Only series with at least
// two points are ranked. Gainer and loser are the maximum and minimum
// signed change; on ties the earlier series wins.
func Analyze(series []market.SeriesView, f Filter) Review {
	r := Review{
		Filter:        f,
		BiggestGainer: Mover{Symbol: NoData},
		BiggestLoser:  Mover{Symbol: NoData},
		MostVolatile:  Mover{Symbol: NoData},
		Performance:   []Performance{},
	}

	for _, s := range series {
		if !f.Match(s.Symbol) {
			continue
		}
		r.TotalMarkets++

		change, ok := Change(s.Points)
		if len(r.Performance) < PerformanceLimit {
			r.Performance = append(r.Performance, Performance{Symbol: s.Symbol, Change: change})
		}
		if !ok {
			continue
		}

		if !r.BiggestGainer.Found() || change > r.BiggestGainer.Percent {
			r.BiggestGainer = Mover{Symbol: s.Symbol, Percent: change}
		}
		if !r.BiggestLoser.Found() || change < r.BiggestLoser.Percent {
			r.BiggestLoser = Mover{Symbol: s.Symbol, Percent: change}
		}
		if v := Volatility(s.Points); !r.MostVolatile.Found() || v > r.MostVolatile.Percent {
			r.MostVolatile = Mover{Symbol: s.Symbol, Percent: v}
		}
	}
	return r
}

// Change is the percent move from the first to the last point. ok is
// false with fewer than two points.
func Change(pts []market.Point) (pct float64, ok bool) {
	if len(pts) < 2 || pts[0].Price == 0 {
		return 0, false
	}
	first, last := pts[0].Price, pts[len(pts)-1].Price
	return (last - first) / first * 100, true
}

// Volatility is the population standard deviation of prices over their
// mean, as a percentage.
func Volatility(pts []market.Point) float64 {
	if len(pts) == 0 {
		return 0
	}
	var sum float64
	for _, p := range pts {
		sum += p.Price
	}
	mean := sum / float64(len(pts))
	if mean == 0 {
		return 0
	}
	var ss float64
	for _, p := range pts {
		d := p.Price - mean
		ss += d * d
	}
	return math.Sqrt(ss/float64(len(pts))) / mean * 100
}
