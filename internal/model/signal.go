package model

import (
	"fmt"
	"strconv"
	"time"
)

// Direction of a classified candle pattern.
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
)

// Signal is one classified candle: the pattern grade plus the derived
// stoploss and target distances in index points. Ephemeral — derived
// per evaluation, journaled only when notified.
type Signal struct {
	Time       time.Time  `json:"time"`
	Instrument Instrument `json:"instrument"`
	Timeframe  Timeframe  `json:"timeframe"`
	Direction  Direction  `json:"direction"`
	Grade      string     `json:"grade"`
	Stoploss   float64    `json:"stoploss"`
	Target     float64    `json:"target"`
}

// Message renders the alert text sent to the notification channel.
func (s *Signal) Message() string {
	arrow := "📈 Bullish"
	if s.Direction == Bearish {
		arrow = "📉 Bearish"
	}
	return fmt.Sprintf("%s Signal - %s at %s (%s, %s)\nStoploss: %s pts | Target: %s pts",
		arrow, s.Grade, s.Time.Format("2006-01-02 15:04:05-07:00"),
		s.Instrument, s.Timeframe, fmtPts(s.Stoploss), fmtPts(s.Target))
}

// fmtPts trims trailing zeros so 30.00 renders as "30" and 12.50 as "12.5".
func fmtPts(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
