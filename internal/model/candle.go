package model

import (
	"encoding/json"
	"math"
	"time"
)

// RawBar is a single OHLCV row as delivered by the provider, with the
// timestamp already converted to exchange-local time. Immutable once
// normalized.
type RawBar struct {
	TS     time.Time `json:"ts"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Candle is a resampled OHLCV bar for one instrument and timeframe.
// TS is the bucket start (left-labeled). Volume is 0 for weekly and
// above, where the source daily series may omit it.
type Candle struct {
	Instrument Instrument `json:"instrument"`
	Timeframe  Timeframe  `json:"timeframe"`
	TS         time.Time  `json:"ts"`
	Open       float64    `json:"open"`
	High       float64    `json:"high"`
	Low        float64    `json:"low"`
	Close      float64    `json:"close"`
	Volume     int64      `json:"volume"`
}

// Valid reports whether all four price fields are finite. Bars failing
// this are skipped, never classified.
func (c *Candle) Valid() bool {
	return finite(c.Open) && finite(c.High) && finite(c.Low) && finite(c.Close)
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
