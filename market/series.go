package market

// Series is a fixed-capacity FIFO ring of points in chronological order.
// Pushing onto a full series evicts the oldest point.
type Series struct {
	Symbol string

	buf  []Point
	head int // index of the oldest point
	n    int
}

func NewSeries(symbol string, capacity int) *Series {
	if capacity < 1 {
		capacity = 1
	}
	return &Series{
		Symbol: symbol,
		buf:    make([]Point, capacity),
	}
}

func (s *Series) Len() int { return s.n }

func (s *Series) Cap() int { return len(s.buf) }

// Push appends p. A timestamp earlier than the newest point is raised to
// it so times never go backwards.
func (s *Series) Push(p Point) {
	if last, ok := s.Last(); ok && p.Time.Before(last.Time) {
		p.Time = last.Time
	}

	if s.n < len(s.buf) {
		s.buf[(s.head+s.n)%len(s.buf)] = p
		s.n++
		return
	}
	s.buf[s.head] = p
	s.head = (s.head + 1) % len(s.buf)
}

// At returns the i'th point, 0 being the oldest.
func (s *Series) At(i int) Point {
	if i < 0 || i >= s.n {
		panic("market: series index out of range")
	}
	return s.buf[(s.head+i)%len(s.buf)]
}

func (s *Series) First() (Point, bool) {
	if s.n == 0 {
		return Point{}, false
	}
	return s.At(0), true
}

func (s *Series) Last() (Point, bool) {
	if s.n == 0 {
		return Point{}, false
	}
	return s.At(s.n - 1), true
}

// Points returns a chronological copy of the series.
func (s *Series) Points() []Point {
	return s.Tail(s.n)
}

// Tail returns a copy of the newest n points.
func (s *Series) Tail(n int) []Point {
	if n > s.n {
		n = s.n
	}
	if n <= 0 {
		return []Point{}
	}
	out := make([]Point, n)
	start := s.n - n
	for i := range out {
		out[i] = s.At(start + i)
	}
	return out
}

// Reset drops every point.
func (s *Series) Reset() {
	s.head = 0
	s.n = 0
}
