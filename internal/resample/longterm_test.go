package resample

import (
	"testing"
	"time"

	"github.com/arunpanwar240-bot/apna-screener/internal/markethours"
	"github.com/arunpanwar240-bot/apna-screener/internal/model"
)

// daily builds a daily bar at midnight IST.
func daily(year int, month time.Month, day int, o, h, l, c float64) model.RawBar {
	return model.RawBar{
		TS:    time.Date(year, month, day, 0, 0, 0, 0, markethours.IST),
		Open:  o,
		High:  h,
		Low:   l,
		Close: c,
	}
}

func TestWeeklyFromMonthStart_AnchorsAtFirstTradingDay(t *testing.T) {
	// January 2026 begins on a Thursday; the anchor is the first bar's
	// day, not a calendar Monday.
	bars := []model.RawBar{
		daily(2026, time.January, 1, 100, 110, 95, 105),
		daily(2026, time.January, 2, 105, 115, 100, 110),
		daily(2026, time.January, 5, 110, 120, 105, 115),
		daily(2026, time.January, 7, 115, 125, 110, 120),
		daily(2026, time.January, 8, 120, 130, 115, 125), // second 7-day window
		daily(2026, time.January, 12, 125, 135, 120, 130),
	}
	out := WeeklyFromMonthStart(model.Nifty, bars)

	if len(out) != 2 {
		t.Fatalf("expected 2 weekly candles, got %d", len(out))
	}
	w1, w2 := out[0], out[1]
	if !w1.TS.Equal(time.Date(2026, time.January, 1, 0, 0, 0, 0, markethours.IST)) {
		t.Errorf("week 1 label = %v, want Jan 1", w1.TS)
	}
	if !w2.TS.Equal(time.Date(2026, time.January, 8, 0, 0, 0, 0, markethours.IST)) {
		t.Errorf("week 2 label = %v, want Jan 8", w2.TS)
	}
	if w1.Open != 100 || w1.High != 125 || w1.Low != 95 || w1.Close != 120 {
		t.Errorf("week 1 OHLC = %v/%v/%v/%v, want 100/125/95/120", w1.Open, w1.High, w1.Low, w1.Close)
	}
	if w2.Open != 120 || w2.Close != 130 {
		t.Errorf("week 2 open/close = %v/%v, want 120/130", w2.Open, w2.Close)
	}
	if w1.Volume != 0 {
		t.Errorf("weekly candles carry no volume, got %d", w1.Volume)
	}
}

func TestWeeklyFromMonthStart_ResetsAnchorPerMonth(t *testing.T) {
	bars := []model.RawBar{
		daily(2026, time.January, 28, 100, 110, 95, 105),
		daily(2026, time.February, 2, 110, 120, 105, 115),
	}
	out := WeeklyFromMonthStart(model.Nifty, bars)

	if len(out) != 2 {
		t.Fatalf("expected 2 candles (one per month), got %d", len(out))
	}
	if !out[1].TS.Equal(time.Date(2026, time.February, 2, 0, 0, 0, 0, markethours.IST)) {
		t.Errorf("February anchor = %v, want Feb 2", out[1].TS)
	}
}

func TestBiWeekly_AnchorsToPrecedingMonday(t *testing.T) {
	// Jan 7 2026 is a Wednesday; the preceding Monday is Jan 5.
	bars := []model.RawBar{
		daily(2026, time.January, 7, 100, 110, 95, 105),
		daily(2026, time.January, 8, 105, 115, 100, 110),
		daily(2026, time.January, 20, 110, 120, 105, 115), // next 14-day window
	}
	out := BiWeekly(model.BankNifty, bars)

	if len(out) != 2 {
		t.Fatalf("expected 2 bi-weekly candles, got %d", len(out))
	}
	if !out[0].TS.Equal(time.Date(2026, time.January, 5, 0, 0, 0, 0, markethours.IST)) {
		t.Errorf("first window label = %v, want Mon Jan 5", out[0].TS)
	}
	if !out[1].TS.Equal(time.Date(2026, time.January, 19, 0, 0, 0, 0, markethours.IST)) {
		t.Errorf("second window label = %v, want Mon Jan 19", out[1].TS)
	}
	if out[0].High != 115 || out[0].Close != 110 {
		t.Errorf("first window high/close = %v/%v, want 115/110", out[0].High, out[0].Close)
	}
}

func TestMonthly_BinsByCalendarMonth(t *testing.T) {
	bars := []model.RawBar{
		daily(2026, time.January, 5, 100, 110, 95, 105),
		daily(2026, time.January, 30, 105, 120, 100, 115),
		daily(2026, time.February, 2, 115, 125, 110, 120),
	}
	out := Monthly(model.Nifty, bars)

	if len(out) != 2 {
		t.Fatalf("expected 2 monthly candles, got %d", len(out))
	}
	if !out[0].TS.Equal(time.Date(2026, time.January, 1, 0, 0, 0, 0, markethours.IST)) {
		t.Errorf("January label = %v, want Jan 1", out[0].TS)
	}
	if out[0].Open != 100 || out[0].High != 120 || out[0].Low != 95 || out[0].Close != 115 {
		t.Errorf("January OHLC = %v/%v/%v/%v", out[0].Open, out[0].High, out[0].Low, out[0].Close)
	}
	if !out[1].TS.Equal(time.Date(2026, time.February, 1, 0, 0, 0, 0, markethours.IST)) {
		t.Errorf("February label = %v, want Feb 1", out[1].TS)
	}
}

func TestLongTerm_EmptyInput(t *testing.T) {
	if out := WeeklyFromMonthStart(model.Nifty, nil); len(out) != 0 {
		t.Errorf("weekly: expected empty, got %d", len(out))
	}
	if out := BiWeekly(model.Nifty, nil); len(out) != 0 {
		t.Errorf("bi-weekly: expected empty, got %d", len(out))
	}
	if out := Monthly(model.Nifty, nil); len(out) != 0 {
		t.Errorf("monthly: expected empty, got %d", len(out))
	}
}
