// Package pattern classifies a single completed candle against a
// fixed, priority-ordered rule set. Rules are evaluated independently
// per candle; the first match per direction wins.
package pattern

import (
	"math"

	"github.com/arunpanwar240-bot/apna-screener/internal/model"
)

// Grade identifies which rule matched, in priority order.
type Grade string

const (
	Excellent  Grade = "EXCELLENT CANDLE"
	VeryGood   Grade = "VERY GOOD CANDLE"
	RiskReward Grade = "1:2 RISK REWARD CANDLE"
)

// Match is one classification with its stoploss and target distances
// in index points, rounded to 2 decimals.
type Match struct {
	Grade    Grade
	Stoploss float64
	Target   float64
}

// Bullish evaluates the bullish rules on one candle's prices. The
// ordering is a tie-break policy: a candle satisfying rule 1 is
// EXCELLENT even when later rules would also hold.
func Bullish(o, h, l, c float64) (Match, bool) {
	body := math.Abs(c - o)
	m := Match{
		Stoploss: round2(body + (o - l)),
		Target:   round2(h - c),
	}
	switch {
	case o == l && (h-c) >= 2*(c-l):
		m.Grade = Excellent
	case (o-l) <= (c-o) && (h-c) >= 2*(c-o):
		m.Grade = VeryGood
	case (h-c) >= 2*(c-o) && (o-l) < 4*(c-o) && (h-c) >= 2*(c-l):
		m.Grade = RiskReward
	default:
		return Match{}, false
	}
	return m, true
}

// Bearish mirrors the bullish rules with open↔close and high↔low
// swapped directionally.
func Bearish(o, h, l, c float64) (Match, bool) {
	body := math.Abs(c - o)
	m := Match{
		Stoploss: round2(body + (h - o)),
		Target:   round2(c - l),
	}
	switch {
	case o == h && (c-l) >= 2*(h-c):
		m.Grade = Excellent
	case (h-o) <= (o-c) && (c-l) >= 2*(o-c):
		m.Grade = VeryGood
	case (c-l) >= 2*(o-c) && (h-o) < 4*(o-c) && (c-l) >= 2*(h-c):
		m.Grade = RiskReward
	default:
		return Match{}, false
	}
	return m, true
}

// Classify evaluates one candle and returns at most one bullish and
// one bearish signal. A candle with any non-finite price is skipped.
func Classify(c model.Candle) (bull, bear *model.Signal) {
	if !c.Valid() {
		return nil, nil
	}
	if m, ok := Bullish(c.Open, c.High, c.Low, c.Close); ok {
		bull = toSignal(c, model.Bullish, m)
	}
	if m, ok := Bearish(c.Open, c.High, c.Low, c.Close); ok {
		bear = toSignal(c, model.Bearish, m)
	}
	return bull, bear
}

func toSignal(c model.Candle, dir model.Direction, m Match) *model.Signal {
	return &model.Signal{
		Time:       c.TS,
		Instrument: c.Instrument,
		Timeframe:  c.Timeframe,
		Direction:  dir,
		Grade:      string(m.Grade),
		Stoploss:   m.Stoploss,
		Target:     m.Target,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
