package model

import (
	"strings"
	"time"
)

// Timeframe is a candle bucket size. Native timeframes are fetched
// directly from the provider; synthetic ones are resampled locally
// from a native base.
type Timeframe string

const (
	TF1Min  Timeframe = "1min"
	TF5Min  Timeframe = "5min"
	TF15Min Timeframe = "15min"
	TF30Min Timeframe = "30min"
	TF45Min Timeframe = "45min"
	TF1H    Timeframe = "1h"
	TF2H    Timeframe = "2h"
	TF3H    Timeframe = "3h"
	TF4H    Timeframe = "4h"
	TF1D    Timeframe = "1d"
	TF1W    Timeframe = "1W"
	TF2W    Timeframe = "2W"
	TF1M    Timeframe = "1M"
)

// NotifyTimeframes are the timeframes the alert scheduler evaluates.
var NotifyTimeframes = []Timeframe{TF15Min, TF30Min, TF45Min, TF1H, TF2H, TF3H, TF4H}

// baseOf maps each synthetic timeframe to the native timeframe it is
// resampled from. Native timeframes are absent.
var baseOf = map[Timeframe]Timeframe{
	TF30Min: TF15Min,
	TF45Min: TF15Min,
	TF2H:    TF1H,
	TF3H:    TF1H,
	TF4H:    TF1H,
	TF1W:    TF1D,
	TF2W:    TF1D,
	TF1M:    TF1D,
}

var durations = map[Timeframe]time.Duration{
	TF1Min:  time.Minute,
	TF5Min:  5 * time.Minute,
	TF15Min: 15 * time.Minute,
	TF30Min: 30 * time.Minute,
	TF45Min: 45 * time.Minute,
	TF1H:    time.Hour,
	TF2H:    2 * time.Hour,
	TF3H:    3 * time.Hour,
	TF4H:    4 * time.Hour,
}

// ParseTimeframe normalizes a user-supplied interval string.
// "1w"/"1W" → 1W and "1m"/"1M" → 1M (monthly, not 1 minute — the
// minute timeframe is spelled "1min"); everything else is lowercased.
func ParseTimeframe(s string) (Timeframe, bool) {
	switch strings.ToLower(s) {
	case "1w":
		return TF1W, true
	case "2w":
		return TF2W, true
	case "1m":
		return TF1M, true
	}
	tf := Timeframe(strings.ToLower(s))
	if tf.Native() || tf.Synthetic() {
		return tf, true
	}
	return "", false
}

// Native reports whether tf is fetched directly from the provider.
func (tf Timeframe) Native() bool {
	switch tf {
	case TF1Min, TF5Min, TF15Min, TF1H, TF1D:
		return true
	}
	return false
}

// Synthetic reports whether tf is derived locally from a native base.
func (tf Timeframe) Synthetic() bool {
	_, ok := baseOf[tf]
	return ok
}

// Base returns the native timeframe to fetch for tf. For native
// timeframes Base returns tf itself.
func (tf Timeframe) Base() Timeframe {
	if b, ok := baseOf[tf]; ok {
		return b
	}
	return tf
}

// Intraday reports whether tf is an intra-session bucket (minutes or
// hours, session-anchored) as opposed to daily and above.
func (tf Timeframe) Intraday() bool {
	_, ok := durations[tf]
	return ok
}

// Duration returns the bucket length for intraday timeframes and 0
// for daily and above (those bins are calendar-based, not fixed-width).
func (tf Timeframe) Duration() time.Duration {
	return durations[tf]
}

// ProviderInterval returns the minute interval value the intraday
// chart API expects for a native intraday timeframe (1, 5, 15 or 60).
func (tf Timeframe) ProviderInterval() int {
	if d, ok := durations[tf]; ok {
		return int(d / time.Minute)
	}
	return 0
}
