package resample

import (
	"sort"
	"time"

	"github.com/arunpanwar240-bot/apna-screener/internal/markethours"
	"github.com/arunpanwar240-bot/apna-screener/internal/model"
)

// Long-horizon candles are built from the provider's daily series.
// Volume is not carried: the daily history endpoint omits it for
// indices, so only OHLC is aggregated.

// WeeklyFromMonthStart bins daily bars into 7-day windows anchored at
// the first trading day of each calendar month. This intentionally
// produces "week N of month" bars rather than ISO calendar weeks.
func WeeklyFromMonthStart(inst model.Instrument, daily []model.RawBar) []model.Candle {
	if len(daily) == 0 {
		return nil
	}
	sorted := sortedCopy(daily)

	var out []model.Candle
	for start := 0; start < len(sorted); {
		y, m := monthKey(sorted[start].TS)
		end := start
		for end < len(sorted) {
			ey, em := monthKey(sorted[end].TS)
			if ey != y || em != m {
				break
			}
			end++
		}
		anchor := midnight(sorted[start].TS)
		out = append(out, binByWindow(inst, model.TF1W, sorted[start:end], anchor, 7*24*time.Hour)...)
		start = end
	}
	return out
}

// BiWeekly bins daily bars into 14-day windows anchored to the Monday
// on or before the first bar's day.
func BiWeekly(inst model.Instrument, daily []model.RawBar) []model.Candle {
	if len(daily) == 0 {
		return nil
	}
	sorted := sortedCopy(daily)
	anchor := precedingMonday(sorted[0].TS)
	return binByWindow(inst, model.TF2W, sorted, anchor, 14*24*time.Hour)
}

// Monthly bins daily bars by calendar month, labeled at month start.
func Monthly(inst model.Instrument, daily []model.RawBar) []model.Candle {
	if len(daily) == 0 {
		return nil
	}
	sorted := sortedCopy(daily)

	var out []model.Candle
	for start := 0; start < len(sorted); {
		y, m := monthKey(sorted[start].TS)
		end := start
		for end < len(sorted) {
			ey, em := monthKey(sorted[end].TS)
			if ey != y || em != m {
				break
			}
			end++
		}
		label := time.Date(y, m, 1, 0, 0, 0, 0, markethours.IST)
		out = append(out, aggregate(inst, model.TF1M, label, sorted[start:end]))
		start = end
	}
	return out
}

// binByWindow assigns bars to fixed-width windows counted from anchor
// and aggregates each non-empty window, left-labeled.
func binByWindow(inst model.Instrument, tf model.Timeframe, bars []model.RawBar, anchor time.Time, width time.Duration) []model.Candle {
	groups := make(map[int64][]model.RawBar)
	var idxs []int64
	for _, b := range bars {
		if b.TS.Before(anchor) {
			continue
		}
		idx := int64(b.TS.Sub(anchor) / width)
		if _, seen := groups[idx]; !seen {
			idxs = append(idxs, idx)
		}
		groups[idx] = append(groups[idx], b)
	}
	sort.Slice(idxs, func(i, j int) bool { return idxs[i] < idxs[j] })

	out := make([]model.Candle, 0, len(idxs))
	for _, idx := range idxs {
		label := anchor.Add(time.Duration(idx) * width)
		out = append(out, aggregate(inst, tf, label, groups[idx]))
	}
	return out
}

func aggregate(inst model.Instrument, tf model.Timeframe, label time.Time, bars []model.RawBar) model.Candle {
	c := model.Candle{
		Instrument: inst,
		Timeframe:  tf,
		TS:         label,
		Open:       bars[0].Open,
		High:       bars[0].High,
		Low:        bars[0].Low,
		Close:      bars[0].Close,
	}
	for _, b := range bars[1:] {
		if b.High > c.High {
			c.High = b.High
		}
		if b.Low < c.Low {
			c.Low = b.Low
		}
		c.Close = b.Close
	}
	return c
}

func sortedCopy(bars []model.RawBar) []model.RawBar {
	out := make([]model.RawBar, len(bars))
	copy(out, bars)
	sort.Slice(out, func(i, j int) bool { return out[i].TS.Before(out[j].TS) })
	return out
}

func monthKey(t time.Time) (int, time.Month) {
	ist := t.In(markethours.IST)
	return ist.Year(), ist.Month()
}

func midnight(t time.Time) time.Time {
	ist := t.In(markethours.IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, markethours.IST)
}

func precedingMonday(t time.Time) time.Time {
	d := midnight(t)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
