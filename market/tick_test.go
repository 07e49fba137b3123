package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerFeedRefresh(t *testing.T) {
	s, _ := newTestStore(t, DefaultOptions())
	require.NoError(t, s.Replace("AAPL", []Point{
		{Time: t0, Price: 100},
		{Time: t0.Add(time.Minute), Price: 105},
		{Time: t0.Add(2 * time.Minute), Price: 110},
	}))
	require.NoError(t, s.Replace("BTC", []Point{
		{Time: t0, Price: 200},
		{Time: t0.Add(time.Minute), Price: 150},
	}))

	f := NewTickerFeed()
	assert.Empty(t, f.Quotes())

	f.Refresh(s, t0.Add(time.Hour))
	quotes := f.Quotes()
	require.Len(t, quotes, 2)

	assert.Equal(t, "AAPL", quotes[0].Symbol)
	assert.Equal(t, 110.0, quotes[0].Price)
	assert.InDelta(t, 10, quotes[0].Change, 1e-9)
	assert.InDelta(t, 10, quotes[0].ChangePercent, 1e-9)

	q, ok := f.Quote("BTC")
	require.True(t, ok)
	assert.InDelta(t, -50, q.Change, 1e-9)
	assert.InDelta(t, -25, q.ChangePercent, 1e-9)
	assert.Equal(t, t0.Add(time.Hour), f.Refreshed())

	_, ok = f.Quote("NOPE")
	assert.False(t, ok)
}
