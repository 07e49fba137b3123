package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/atb/market"
)

var closes = []float64{102, 105, 106, 108, 110}

func TestSimpleMAStreaming(t *testing.T) {
	ma := NewMA(3)
	assert.Equal(t, "MA(3)", ma.Name())
	assert.Equal(t, 3, ma.Warmup())
	assert.False(t, ma.Ready())
	assert.Equal(t, 0.0, ma.Value())

	ma.Update(closes[0])
	ma.Update(closes[1])
	assert.False(t, ma.Ready())

	ma.Update(closes[2])
	require.True(t, ma.Ready())
	assert.InDelta(t, (102.0+105+106)/3, ma.Value(), 1e-9)

	ma.Update(closes[3])
	assert.InDelta(t, (105.0+106+108)/3, ma.Value(), 1e-9)

	ma.Reset()
	assert.False(t, ma.Ready())
	assert.Equal(t, 0.0, ma.Value())
}

func TestExponentialMA(t *testing.T) {
	ema := NewEMA(3)
	for _, c := range closes[:3] {
		ema.Update(c)
	}
	require.True(t, ema.Ready())
	seed := (102.0 + 105 + 106) / 3
	assert.InDelta(t, seed, ema.Value(), 1e-9)

	ema.Update(108)
	assert.InDelta(t, (108-seed)*0.5+seed, ema.Value(), 1e-9)
}

func TestLine(t *testing.T) {
	o := Line(NewMA(3), closes)
	assert.Equal(t, "MA(3)", o.Name)
	assert.Equal(t, 2, o.Start)
	require.Len(t, o.Values, 3)
	assert.InDelta(t, (106.0+108+110)/3, o.Values[2], 1e-9)

	short := Line(NewEMA(10), closes)
	assert.Equal(t, len(closes), short.Start)
	assert.Empty(t, short.Values)
	assert.NotNil(t, short.Values)
}

func TestATR(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := []market.Candle{
		{Time: base, Open: 100, High: 105, Low: 99, Close: 102},
		{Time: base.Add(time.Hour), Open: 102, High: 107, Low: 101, Close: 105},
		{Time: base.Add(2 * time.Hour), Open: 105, High: 108, Low: 104, Close: 106},
		{Time: base.Add(3 * time.Hour), Open: 106, High: 110, Low: 100, Close: 108},
	}

	a := NewATR(2)
	assert.Equal(t, 3, a.Warmup())
	o := CandleLine(a, candles)
	assert.Equal(t, "ATR(2)", o.Name)
	assert.Equal(t, 2, o.Start)
	require.Len(t, o.Values, 2)

	// true ranges: 6, 4, 10
	assert.InDelta(t, 5.0, o.Values[0], 1e-9)
	assert.InDelta(t, 7.5, o.Values[1], 1e-9)
}

func TestPrices(t *testing.T) {
	pts := []market.Point{{Price: 1}, {Price: 2.5}}
	assert.Equal(t, []float64{1, 2.5}, Prices(pts))
}
