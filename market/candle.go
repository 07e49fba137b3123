package market

import "time"

// Point is one sample of an asset series.
type Point struct {
	Time   time.Time `json:"time" yaml:"time"`
	Price  float64   `json:"price" yaml:"price"`
	Volume float64   `json:"volume" yaml:"volume"`
}

// Candle represents OHLC (Open, High, Low, Close) candlestick data
type Candle struct {
	Time   time.Time `json:"time" yaml:"time"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
}
