package markethours

import (
	"fmt"
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST = time.FixedZone("IST", 5*3600+30*60)

// Market hours in IST
const (
	OpenHour    = 9
	OpenMinute  = 15
	CloseHour   = 15
	CloseMinute = 30
)

// SessionOffset is the session start expressed as minutes from local
// midnight (9*60+15). Intraday bins are anchored at this offset.
const SessionOffset = OpenHour*60 + OpenMinute

// IsMarketOpen returns true if t falls within NSE trading hours
// (9:15 AM – 3:30 PM IST, Mon–Fri, excluding holidays).
func IsMarketOpen(t time.Time) bool {
	ist := t.In(IST)
	wd := ist.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	if IsHoliday(ist) {
		return false
	}
	hm := ist.Hour()*60 + ist.Minute()
	return hm >= OpenHour*60+OpenMinute && hm < CloseHour*60+CloseMinute
}

// InSession reports whether t's local time-of-day lies inside the
// session window. Both ends are inclusive: a bar stamped exactly 15:30
// belongs to the session. Unlike IsMarketOpen this ignores weekday and
// holiday state — it is a pure window test applied to historical bars.
func InSession(t time.Time) bool {
	ist := t.In(IST)
	sec := ist.Hour()*3600 + ist.Minute()*60 + ist.Second()
	return sec >= (OpenHour*60+OpenMinute)*60 && sec <= (CloseHour*60+CloseMinute)*60
}

// DayKey returns the IST calendar date of t as "2006-01-02". All
// per-day grouping keys off this.
func DayKey(t time.Time) string {
	return t.In(IST).Format("2006-01-02")
}

// SessionStart returns 09:15 IST on t's calendar day.
func SessionStart(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), OpenHour, OpenMinute, 0, 0, IST)
}

// SessionEnd returns 15:30 IST on t's calendar day.
func SessionEnd(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), CloseHour, CloseMinute, 0, 0, IST)
}

// Bin is one left-labeled aggregation window: [Left, Right).
type Bin struct {
	Left  time.Time
	Right time.Time
}

// BinEdges returns the session-anchored bins of the given duration for
// t's calendar day. The first bin starts at 09:15; edges advance by d.
// A bin whose right edge would pass 15:30 is never emitted, so a
// trailing window that straddles market close is dropped entirely.
func BinEdges(t time.Time, d time.Duration) []Bin {
	if d <= 0 {
		return nil
	}
	start := SessionStart(t)
	end := SessionEnd(t)
	var bins []Bin
	for left := start; !left.Add(d).After(end); left = left.Add(d) {
		bins = append(bins, Bin{Left: left, Right: left.Add(d)})
	}
	return bins
}

// NextOpen returns the next market open time (9:15 AM IST on next trading day).
// If t is before today's open on a trading day, returns today's open.
func NextOpen(t time.Time) time.Time {
	ist := t.In(IST)

	todayOpen := SessionStart(ist)
	if ist.Before(todayOpen) && isTradingDay(ist) {
		return todayOpen
	}

	d := ist.AddDate(0, 0, 1)
	for i := 0; i < 10; i++ { // max 10 days ahead (holidays + weekends)
		if isTradingDay(d) {
			return SessionStart(d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return SessionStart(ist.AddDate(0, 0, 1))
}

func isTradingDay(t time.Time) bool {
	wd := t.In(IST).Weekday()
	return wd >= time.Monday && wd <= time.Friday && !IsHoliday(t)
}

// StatusString returns a human-readable market status.
func StatusString(t time.Time) string {
	if IsMarketOpen(t) {
		d := SessionEnd(t).Sub(t.In(IST))
		return fmt.Sprintf("Market Open — closes in %s", fmtDur(d))
	}
	next := NextOpen(t)
	d := next.Sub(t)
	ist := next.In(IST)
	return fmt.Sprintf("Market Closed — opens %s %s (%s)",
		ist.Weekday().String()[:3], ist.Format("15:04"), fmtDur(d))
}

func fmtDur(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
