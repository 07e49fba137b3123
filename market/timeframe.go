package market

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnknownTimeframe = errors.New("unknown timeframe")

// Timeframe is a chart resampling token.
type Timeframe string

const (
	M1  Timeframe = "1m"
	M5  Timeframe = "5m"
	M15 Timeframe = "15m"
	H1  Timeframe = "1h"
	D1  Timeframe = "1d"
	W1  Timeframe = "1w"
	MN1 Timeframe = "1M"
)

// Timeframes lists every supported token, shortest first.
var Timeframes = []Timeframe{M1, M5, M15, H1, D1, W1, MN1}

// Layout returns the number of points and spacing generated for tf.
func (tf Timeframe) Layout() (points int, interval time.Duration, err error) {
	switch tf {
	case M1:
		return 60, time.Minute, nil
	case M5:
		return 60, 5 * time.Minute, nil
	case M15:
		return 60, 15 * time.Minute, nil
	case H1:
		return 24, time.Hour, nil
	case D1:
		return 30, 24 * time.Hour, nil
	case W1:
		return 52, 7 * 24 * time.Hour, nil
	case MN1:
		return 12, 30 * 24 * time.Hour, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownTimeframe, string(tf))
	}
}

// Intraday reports whether labels for tf are times rather than dates.
func (tf Timeframe) Intraday() bool {
	switch tf {
	case M1, M5, M15, H1:
		return true
	}
	return false
}

// ParseTimeframe validates a token. The broker-style spellings (M1, H1,
// D1, W1, MN1) are accepted as aliases.
func ParseTimeframe(s string) (Timeframe, error) {
	switch s {
	case "M1":
		s = string(M1)
	case "M5":
		s = string(M5)
	case "M15":
		s = string(M15)
	case "H1":
		s = string(H1)
	case "D1":
		s = string(D1)
	case "W1":
		s = string(W1)
	case "MN1":
		s = string(MN1)
	}
	tf := Timeframe(s)
	if _, _, err := tf.Layout(); err != nil {
		return "", err
	}
	return tf, nil
}
