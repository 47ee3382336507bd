package resample

import (
	"time"

	"github.com/arunpanwar240-bot/apna-screener/internal/markethours"
	"github.com/arunpanwar240-bot/apna-screener/internal/model"
)

// IsComplete reports whether the candle's bucket has fully closed as
// of now. The provider returns the in-progress bar for the current
// window, so the trailing element of a fetched series may still be
// forming; only closed bars may be classified or notified.
func IsComplete(c model.Candle, now time.Time) bool {
	now = now.In(markethours.IST)
	if d := c.Timeframe.Duration(); d > 0 {
		return !c.TS.Add(d).After(now)
	}
	switch c.Timeframe {
	case model.TF1D:
		// A daily bar is closed once its session has ended.
		return !markethours.SessionEnd(c.TS).After(now)
	case model.TF1W:
		return !c.TS.Add(7 * 24 * time.Hour).After(now)
	case model.TF2W:
		return !c.TS.Add(14 * 24 * time.Hour).After(now)
	case model.TF1M:
		ist := c.TS.In(markethours.IST)
		next := time.Date(ist.Year(), ist.Month()+1, 1, 0, 0, 0, 0, markethours.IST)
		return !next.After(now)
	}
	return false
}

// DropForming removes trailing candles whose buckets are still open.
// Earlier candles are left untouched: a closed bar followed by a
// forming one keeps its place.
func DropForming(candles []model.Candle, now time.Time) []model.Candle {
	end := len(candles)
	for end > 0 && !IsComplete(candles[end-1], now) {
		end--
	}
	return candles[:end]
}
