// market/instruments.go
package market

import (
	"sort"
	"strings"
)

type Category string

const (
	Stock     Category = "stock"
	Crypto    Category = "crypto"
	Commodity Category = "commodity"
)

// DefaultBasePrice is used for symbols missing from the catalog.
const DefaultBasePrice = 100.0

type Asset struct {
	Symbol    string   `json:"symbol" yaml:"symbol"`
	Name      string   `json:"name" yaml:"name"`
	Category  Category `json:"category" yaml:"category"`
	BasePrice float64  `json:"base_price" yaml:"base_price"`
}

var Assets = map[string]Asset{
	"AAPL":  {Symbol: "AAPL", Name: "Apple Inc.", Category: Stock, BasePrice: 150},
	"GOOGL": {Symbol: "GOOGL", Name: "Alphabet Inc.", Category: Stock, BasePrice: 2800},
	"MSFT":  {Symbol: "MSFT", Name: "Microsoft Corp.", Category: Stock, BasePrice: 300},
	"TSLA":  {Symbol: "TSLA", Name: "Tesla Inc.", Category: Stock, BasePrice: 200},
	"AMZN":  {Symbol: "AMZN", Name: "Amazon.com Inc.", Category: Stock, BasePrice: 3200},

	"BTC":     {Symbol: "BTC", Name: "Bitcoin", Category: Crypto, BasePrice: 45000},
	"ETH":     {Symbol: "ETH", Name: "Ethereum", Category: Crypto, BasePrice: 3000},
	"BTC-USD": {Symbol: "BTC-USD", Name: "Bitcoin USD", Category: Crypto, BasePrice: 45000},
	"ETH-USD": {Symbol: "ETH-USD", Name: "Ethereum USD", Category: Crypto, BasePrice: 3000},

	"SI=F": {Symbol: "SI=F", Name: "Silver Futures", Category: Commodity, BasePrice: 24.50},
	"GC=F": {Symbol: "GC=F", Name: "Gold Futures", Category: Commodity, BasePrice: 1950},
	"CL=F": {Symbol: "CL=F", Name: "Crude Oil Futures", Category: Commodity, BasePrice: 75.30},
	"HG=F": {Symbol: "HG=F", Name: "Copper Futures", Category: Commodity, BasePrice: 3.85},
	"PL=F": {Symbol: "PL=F", Name: "Platinum Futures", Category: Commodity, BasePrice: 950},
	"PA=F": {Symbol: "PA=F", Name: "Palladium Futures", Category: Commodity, BasePrice: 1200},
	"NG=F": {Symbol: "NG=F", Name: "Natural Gas Futures", Category: Commodity, BasePrice: 2.85},
	"ZW=F": {Symbol: "ZW=F", Name: "Wheat Futures", Category: Commodity, BasePrice: 6.50},
	"ZC=F": {Symbol: "ZC=F", Name: "Corn Futures", Category: Commodity, BasePrice: 5.20},
	"ZS=F": {Symbol: "ZS=F", Name: "Soybean Futures", Category: Commodity, BasePrice: 12.80},
}

// Lookup returns the catalog entry for symbol. Unknown symbols get a
// synthesized entry with the default base price.
func Lookup(symbol string) (Asset, bool) {
	if a, ok := Assets[symbol]; ok {
		return a, true
	}
	return Asset{
		Symbol:    symbol,
		Name:      symbol,
		Category:  CategoryOf(symbol),
		BasePrice: DefaultBasePrice,
	}, false
}

func BasePrice(symbol string) float64 {
	a, _ := Lookup(symbol)
	return a.BasePrice
}

// CategoryOf classifies a symbol. Catalog entries win; otherwise futures
// ("=F") are commodities and "-USD" pairs are crypto.
func CategoryOf(symbol string) Category {
	if a, ok := Assets[symbol]; ok {
		return a.Category
	}
	switch {
	case strings.Contains(symbol, "=F"):
		return Commodity
	case strings.Contains(symbol, "-USD"):
		return Crypto
	default:
		return Stock
	}
}

// Search matches term case-insensitively against catalog symbols and
// names. Results are sorted by symbol.
func Search(term string) []Asset {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []Asset
	for _, a := range Assets {
		if term == "" ||
			strings.Contains(strings.ToLower(a.Symbol), term) ||
			strings.Contains(strings.ToLower(a.Name), term) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
