// Package indicators provides streaming technical indicators and the
// chart overlays built from them.
package indicators

import "fmt"

// Indicator consumes one price at a time.
type Indicator interface {
	Name() string
	Warmup() int
	Reset()
	Update(price float64)
	Ready() bool
	Value() float64
}

// SimpleMA is a streaming Simple Moving Average.
type SimpleMA struct {
	period int
	window []float64
	sum    float64
}

func NewMA(period int) *SimpleMA {
	if period < 1 {
		period = 1
	}
	return &SimpleMA{period: period, window: make([]float64, 0, period)}
}

func (m *SimpleMA) Name() string { return fmt.Sprintf("MA(%d)", m.period) }
func (m *SimpleMA) Warmup() int  { return m.period }

func (m *SimpleMA) Reset() {
	m.window = m.window[:0]
	m.sum = 0
}

func (m *SimpleMA) Update(price float64) {
	if len(m.window) == m.period {
		m.sum -= m.window[0]
		m.window = append(m.window[:0], m.window[1:]...)
	}
	m.window = append(m.window, price)
	m.sum += price
}

func (m *SimpleMA) Ready() bool { return len(m.window) >= m.period }

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.sum / float64(m.period)
}

// ExponentialMA is seeded with the SMA of its first period prices.
type ExponentialMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

func NewEMA(period int) *ExponentialMA {
	if period < 1 {
		period = 1
	}
	return &ExponentialMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *ExponentialMA) Name() string { return fmt.Sprintf("EMA(%d)", e.period) }
func (e *ExponentialMA) Warmup() int  { return e.period }

func (e *ExponentialMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *ExponentialMA) Update(price float64) {
	if e.count < e.period {
		e.warmupSum += price
		e.count++
		if e.count == e.period {
			e.ema = e.warmupSum / float64(e.period)
		}
		return
	}
	e.ema = (price-e.ema)*e.multiplier + e.ema
}

func (e *ExponentialMA) Ready() bool { return e.count >= e.period }

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}

// Overlay is an indicator line aligned to a chart: Values[i] belongs to
// sample Start+i.
type Overlay struct {
	Name   string    `json:"name" yaml:"name"`
	Start  int       `json:"start" yaml:"start"`
	Values []float64 `json:"values" yaml:"values"`
}

// Line resets ind, feeds it prices and collects every ready value. An
// indicator that never warms up yields an empty overlay with Start at
// len(prices).
func Line(ind Indicator, prices []float64) Overlay {
	ind.Reset()
	o := Overlay{Name: ind.Name(), Start: len(prices), Values: []float64{}}
	for i, p := range prices {
		ind.Update(p)
		if !ind.Ready() {
			continue
		}
		if len(o.Values) == 0 {
			o.Start = i
		}
		o.Values = append(o.Values, ind.Value())
	}
	return o
}
