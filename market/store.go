package market

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

var ErrUnknownSymbol = errors.New("unknown symbol")

const (
	DefaultCapacity = 100

	// MinZoom is the smallest accepted zoom multiplier.
	MinZoom = 0.1
	// MinZoomPoints is the fewest points a zoomed window shows.
	MinZoomPoints = 10

	// maxStep bounds a single relative perturbation so prices keep their sign.
	maxStep = 0.5
)

// Options configures the synthetic generator.
type Options struct {
	Capacity    int
	SeedPoints  int
	SeedSpacing time.Duration
	SeedJitter  float64 // full width of the seed perturbation, 0.10 = ±5%
	TickJitter  float64 // full width of the tick perturbation, 0.02 = ±1%
}

func DefaultOptions() Options {
	return Options{
		Capacity:    DefaultCapacity,
		SeedPoints:  DefaultCapacity,
		SeedSpacing: time.Minute,
		SeedJitter:  0.10,
		TickJitter:  0.02,
	}
}

// Store holds one rolling series per symbol. It is not safe for
// concurrent use; callers serialize access.
type Store struct {
	opts   Options
	rng    *rand.Rand
	now    func() time.Time
	order  []string
	series map[string]*Series
}

// NewStore builds a store. A nil rng gets a randomly seeded source and a
// nil now uses time.Now.
func NewStore(opts Options, rng *rand.Rand, now func() time.Time) *Store {
	if opts.Capacity < 1 {
		opts.Capacity = DefaultCapacity
	}
	if opts.SeedPoints < 1 || opts.SeedPoints > opts.Capacity {
		opts.SeedPoints = opts.Capacity
	}
	if opts.SeedSpacing <= 0 {
		opts.SeedSpacing = time.Minute
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		opts:   opts,
		rng:    rng,
		now:    now,
		series: make(map[string]*Series),
	}
}

func (s *Store) Options() Options { return s.opts }

// Symbols returns every known symbol in the order it was first referenced.
func (s *Store) Symbols() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Store) Has(symbol string) bool {
	_, ok := s.series[symbol]
	return ok
}

func (s *Store) Len(symbol string) int {
	if ser, ok := s.series[symbol]; ok {
		return ser.Len()
	}
	return 0
}

func (s *Store) Last(symbol string) (Point, bool) {
	ser, ok := s.series[symbol]
	if !ok {
		return Point{}, false
	}
	return ser.Last()
}

// Points returns a chronological copy of the series for symbol.
func (s *Store) Points(symbol string) ([]Point, bool) {
	ser, ok := s.series[symbol]
	if !ok {
		return nil, false
	}
	return ser.Points(), true
}

// Ensure seeds symbol at its catalog base price unless it already exists.
// It reports whether a new series was created.
func (s *Store) Ensure(symbol string) bool {
	if s.Has(symbol) {
		return false
	}
	s.Seed(symbol, BasePrice(symbol))
	return true
}

// Seed (re)generates the initial window for symbol: SeedPoints samples at
// SeedSpacing ending now, each an independent perturbation of basePrice.
// A non-positive basePrice falls back to the catalog price.
func (s *Store) Seed(symbol string, basePrice float64) {
	if !(basePrice > 0) || math.IsInf(basePrice, 0) {
		basePrice = BasePrice(symbol)
	}

	ser := s.seriesFor(symbol)
	ser.Reset()

	now := s.now()
	n := s.opts.SeedPoints
	for i := 0; i < n; i++ {
		ser.Push(Point{
			Time:   now.Add(-time.Duration(n-1-i) * s.opts.SeedSpacing),
			Price:  s.perturb(basePrice, s.opts.SeedJitter),
			Volume: s.rng.Float64() * 1_000_000,
		})
	}
}

// Tick appends one random-walk step to symbol. Unknown or empty series are
// left alone and ok is false.
func (s *Store) Tick(symbol string) (p Point, ok bool) {
	ser, found := s.series[symbol]
	if !found {
		return Point{}, false
	}
	last, found := ser.Last()
	if !found {
		return Point{}, false
	}

	t := s.now()
	if t.Before(last.Time) {
		t = last.Time
	}
	p = Point{
		Time:   t,
		Price:  s.perturb(last.Price, s.opts.TickJitter),
		Volume: s.rng.Float64() * 1_000_000,
	}
	ser.Push(p)
	return p, true
}

// TickAll ticks every symbol in insertion order.
func (s *Store) TickAll() int {
	n := 0
	for _, sym := range s.order {
		if _, ok := s.Tick(sym); ok {
			n++
		}
	}
	return n
}

// Replace installs pts as the series for symbol. The whole batch is
// validated first; on error nothing changes. Only the newest Capacity
// points are kept.
func (s *Store) Replace(symbol string, pts []Point) error {
	if len(pts) == 0 {
		return errors.New("empty series")
	}
	for i, p := range pts {
		if !(p.Price > 0) || math.IsInf(p.Price, 0) {
			return fmt.Errorf("point %d: invalid price %v", i, p.Price)
		}
		if p.Volume < 0 || math.IsNaN(p.Volume) || math.IsInf(p.Volume, 0) {
			return fmt.Errorf("point %d: invalid volume %v", i, p.Volume)
		}
		if i > 0 && p.Time.Before(pts[i-1].Time) {
			return fmt.Errorf("point %d: timestamp out of order", i)
		}
	}

	if len(pts) > s.opts.Capacity {
		pts = pts[len(pts)-s.opts.Capacity:]
	}
	ser := s.seriesFor(symbol)
	ser.Reset()
	for _, p := range pts {
		ser.Push(p)
	}
	return nil
}

// Window regenerates a chart view for timeframe around the latest price of
// symbol (its catalog price when unseeded). The point count and spacing are
// fixed per timeframe; values are synthetic.
func (s *Store) Window(symbol string, tf Timeframe) ([]Candle, error) {
	n, interval, err := tf.Layout()
	if err != nil {
		return nil, err
	}

	base := BasePrice(symbol)
	if last, ok := s.Last(symbol); ok {
		base = last.Price
	}

	now := s.now()
	out := make([]Candle, 0, n)
	for i := n - 1; i >= 0; i-- {
		closePrice := s.perturb(base, 0.02)
		openPrice := s.perturb(closePrice, 0.005)
		high := math.Max(openPrice, closePrice) * (1 + s.rng.Float64()*0.01)
		low := math.Min(openPrice, closePrice) * (1 - s.rng.Float64()*0.01)
		out = append(out, Candle{
			Time:   now.Add(-time.Duration(i) * interval),
			Open:   openPrice,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: math.Floor(s.rng.Float64() * 1_000_000),
		})
	}
	return out, nil
}

// ZoomedWindow returns the trailing max(MinZoomPoints, floor(N/zoom))
// points of symbol, never more than N. Zoom is clamped to MinZoom.
func (s *Store) ZoomedWindow(symbol string, zoom float64) ([]Point, error) {
	ser, ok := s.series[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return ser.Tail(ZoomCount(ser.Len(), zoom)), nil
}

// ZoomCount is the number of trailing points shown for n points at zoom.
func ZoomCount(n int, zoom float64) int {
	zoom = ClampZoom(zoom)
	count := int(math.Floor(float64(n) / zoom))
	if count < MinZoomPoints {
		count = MinZoomPoints
	}
	if count > n {
		count = n
	}
	return count
}

// ClampZoom maps non-finite or too-small zoom levels to MinZoom.
func ClampZoom(zoom float64) float64 {
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) || zoom < MinZoom {
		return MinZoom
	}
	return zoom
}

// SeriesView is a read-only copy of one series.
type SeriesView struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Points []Point `json:"points" yaml:"points"`
}

// Snapshot copies every series in insertion order.
func (s *Store) Snapshot() []SeriesView {
	out := make([]SeriesView, 0, len(s.order))
	for _, sym := range s.order {
		out = append(out, SeriesView{Symbol: sym, Points: s.series[sym].Points()})
	}
	return out
}

func (s *Store) seriesFor(symbol string) *Series {
	ser, ok := s.series[symbol]
	if !ok {
		ser = NewSeries(symbol, s.opts.Capacity)
		s.series[symbol] = ser
		s.order = append(s.order, symbol)
	}
	return ser
}

// perturb returns price*(1+r) with r uniform in ±jitter/2, clamped to
// ±maxStep. The result is always positive for a positive price.
func (s *Store) perturb(price, jitter float64) float64 {
	r := (s.rng.Float64() - 0.5) * jitter
	r = math.Max(-maxStep, math.Min(maxStep, r))
	next := price * (1 + r)
	if !(next > 0) || math.IsInf(next, 0) {
		return price
	}
	return next
}
