// Package resample aggregates native OHLCV bars into coarser
// timeframes. Intraday bins are anchored at the 09:15 session open;
// weekly and above are derived from daily bars with calendar-based
// anchoring.
package resample

import (
	"sort"
	"time"

	"github.com/arunpanwar240-bot/apna-screener/internal/markethours"
	"github.com/arunpanwar240-bot/apna-screener/internal/model"
)

// Intraday resamples a chronological same-instrument series into
// session-anchored bins of tf's duration. Bars outside [09:15, 15:30]
// never contribute; a bin with no contributing bars is dropped, and so
// is any bin whose window does not fit inside the session.
func Intraday(inst model.Instrument, tf model.Timeframe, bars []model.RawBar) []model.Candle {
	d := tf.Duration()
	if d <= 0 || len(bars) == 0 {
		return nil
	}

	sorted := make([]model.RawBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TS.Before(sorted[j].TS) })

	var out []model.Candle
	for start := 0; start < len(sorted); {
		day := markethours.DayKey(sorted[start].TS)
		end := start
		for end < len(sorted) && markethours.DayKey(sorted[end].TS) == day {
			end++
		}
		out = append(out, resampleDay(inst, tf, d, sorted[start:end])...)
		start = end
	}
	return out
}

func resampleDay(inst model.Instrument, tf model.Timeframe, d time.Duration, bars []model.RawBar) []model.Candle {
	var out []model.Candle
	for _, bin := range markethours.BinEdges(bars[0].TS, d) {
		var (
			agg     model.Candle
			started bool
		)
		for _, b := range bars {
			if !markethours.InSession(b.TS) {
				continue
			}
			if b.TS.Before(bin.Left) || !b.TS.Before(bin.Right) {
				continue
			}
			if !started {
				agg = model.Candle{
					Instrument: inst,
					Timeframe:  tf,
					TS:         bin.Left,
					Open:       b.Open,
					High:       b.High,
					Low:        b.Low,
					Close:      b.Close,
					Volume:     b.Volume,
				}
				started = true
				continue
			}
			if b.High > agg.High {
				agg.High = b.High
			}
			if b.Low < agg.Low {
				agg.Low = b.Low
			}
			agg.Close = b.Close
			agg.Volume += b.Volume
		}
		if started {
			out = append(out, agg)
		}
	}
	return out
}

// FromNative converts already-native bars into candles of tf,
// keeping only bars inside the session window. Used when the
// requested timeframe is directly fetchable and needs no binning.
func FromNative(inst model.Instrument, tf model.Timeframe, bars []model.RawBar) []model.Candle {
	var out []model.Candle
	for _, b := range bars {
		if tf.Intraday() && !markethours.InSession(b.TS) {
			continue
		}
		out = append(out, model.Candle{
			Instrument: inst,
			Timeframe:  tf,
			TS:         b.TS,
			Open:       b.Open,
			High:       b.High,
			Low:        b.Low,
			Close:      b.Close,
			Volume:     b.Volume,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TS.Before(out[j].TS) })
	return out
}
