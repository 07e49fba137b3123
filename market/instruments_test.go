package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, Stock, CategoryOf("AAPL"))
	assert.Equal(t, Crypto, CategoryOf("BTC"))
	assert.Equal(t, Commodity, CategoryOf("GC=F"))
	assert.Equal(t, Commodity, CategoryOf("XX=F"))
	assert.Equal(t, Crypto, CategoryOf("DOGE-USD"))
	assert.Equal(t, Stock, CategoryOf("IBM"))
}

func TestLookupUnknown(t *testing.T) {
	a, ok := Lookup("IBM")
	assert.False(t, ok)
	assert.Equal(t, DefaultBasePrice, a.BasePrice)
	assert.Equal(t, 150.0, BasePrice("AAPL"))
}

func TestSearch(t *testing.T) {
	res := Search("gold")
	if assert.Len(t, res, 1) {
		assert.Equal(t, "GC=F", res[0].Symbol)
	}

	res = Search("FUTURES")
	assert.Len(t, res, 10)
	for i := 1; i < len(res); i++ {
		assert.Less(t, res[i-1].Symbol, res[i].Symbol)
	}

	assert.Len(t, Search(""), len(Assets))
	assert.Empty(t, Search("zzz"))
}

func TestParseTimeframe(t *testing.T) {
	tf, err := ParseTimeframe("1h")
	assert.NoError(t, err)
	assert.Equal(t, H1, tf)

	tf, err = ParseTimeframe("MN1")
	assert.NoError(t, err)
	assert.Equal(t, MN1, tf)

	_, err = ParseTimeframe("3d")
	assert.ErrorIs(t, err, ErrUnknownTimeframe)

	assert.True(t, M15.Intraday())
	assert.False(t, W1.Intraday())
}
