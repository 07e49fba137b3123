package market

import (
	"context"
	"errors"
	"fmt"
)

// ErrDataUnavailable marks a provider fetch that failed and was replaced
// by synthetic data.
var ErrDataUnavailable = errors.New("market data unavailable")

// Provider supplies historical series for a symbol.
type Provider interface {
	FetchSeries(ctx context.Context, symbol string) ([]Point, error)
}

type Source string

const (
	SourceProvider  Source = "provider"
	SourceSynthetic Source = "synthetic"
)

// Load fills symbol from p. The fetched batch is applied all-or-nothing;
// any failure seeds the series synthetically at the catalog price and
// returns an error wrapping ErrDataUnavailable. The series exists after
// Load either way.
func (s *Store) Load(ctx context.Context, p Provider, symbol string) (Source, error) {
	if p == nil {
		s.Seed(symbol, BasePrice(symbol))
		return SourceSynthetic, nil
	}

	pts, err := p.FetchSeries(ctx, symbol)
	if err == nil {
		err = s.Replace(symbol, pts)
	}
	if err != nil {
		s.Seed(symbol, BasePrice(symbol))
		return SourceSynthetic, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, symbol, err)
	}
	return SourceProvider, nil
}
