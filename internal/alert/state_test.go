package alert

import (
	"testing"
	"time"

	"github.com/arunpanwar240-bot/apna-screener/internal/markethours"
	"github.com/arunpanwar240-bot/apna-screener/internal/model"
)

func sig(tf model.Timeframe, grade string) model.Signal {
	return model.Signal{
		Time:       time.Date(2026, time.January, 5, 10, 15, 0, 0, markethours.IST),
		Instrument: model.Nifty,
		Timeframe:  tf,
		Direction:  model.Bullish,
		Grade:      grade,
		Stoploss:   10,
		Target:     20,
	}
}

func TestState_SeenMarkSeen(t *testing.T) {
	s := NewState()
	k := Key{Instrument: model.Nifty, Timeframe: model.TF15Min}

	if s.Seen(k, "2026-01-05T10:15:00+05:30") {
		t.Error("fresh state should not have seen anything")
	}
	s.MarkSeen(k, "2026-01-05T10:15:00+05:30")
	if !s.Seen(k, "2026-01-05T10:15:00+05:30") {
		t.Error("marked timestamp should be seen")
	}
	// A newer bar on the same pair is not seen.
	if s.Seen(k, "2026-01-05T10:30:00+05:30") {
		t.Error("different timestamp should not be seen")
	}
	// The same timestamp on another pair is independent.
	other := Key{Instrument: model.BankNifty, Timeframe: model.TF15Min}
	if s.Seen(other, "2026-01-05T10:15:00+05:30") {
		t.Error("pairs must not share dedup slots")
	}
}

func TestState_MessageDedup(t *testing.T) {
	s := NewState()
	msg := "alert text"

	if s.MessageSent(msg) {
		t.Error("unseen message reported sent")
	}
	s.MarkMessageSent(msg)
	if !s.MessageSent(msg) {
		t.Error("sent message not recorded")
	}
	s.ResetMessages()
	if s.MessageSent(msg) {
		t.Error("midnight reset should clear the sent set")
	}
}

func TestState_RoundRobin(t *testing.T) {
	s := NewState()

	if _, ok := s.NextTodaySignal(); ok {
		t.Error("empty rotation should report ok=false")
	}

	a := sig(model.TF15Min, "A")
	b := sig(model.TF30Min, "B")
	c := sig(model.TF1H, "C")
	s.RecordSignal(a, a.Message())
	s.RecordSignal(b, b.Message())
	s.RecordSignal(c, c.Message())

	var got []string
	for i := 0; i < 5; i++ {
		next, ok := s.NextTodaySignal()
		if !ok {
			t.Fatal("rotation unexpectedly empty")
		}
		got = append(got, next.Grade)
	}
	want := []string{"A", "B", "C", "A", "B"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rotation order = %v, want %v", got, want)
		}
	}
}

func TestState_ResetTodayClearsRotationAndCursor(t *testing.T) {
	s := NewState()
	a := sig(model.TF15Min, "A")
	s.RecordSignal(a, a.Message())
	s.NextTodaySignal()

	s.ResetToday()
	if got := s.TodaySignals(); len(got) != 0 {
		t.Errorf("expected empty rotation after reset, got %d", len(got))
	}
	if _, ok := s.NextTodaySignal(); ok {
		t.Error("cursor read after reset should report ok=false")
	}

	// The sent-message set survives a session-open reset.
	s.MarkMessageSent("x")
	s.ResetToday()
	if !s.MessageSent("x") {
		t.Error("session-open reset must not clear the sent-message set")
	}
}

func TestState_LastAlert(t *testing.T) {
	s := NewState()
	if s.LastAlert() != "" {
		t.Error("fresh state should have no last alert")
	}
	a := sig(model.TF15Min, "A")
	s.RecordSignal(a, "first")
	b := sig(model.TF30Min, "B")
	s.RecordSignal(b, "second")
	if got := s.LastAlert(); got != "second" {
		t.Errorf("last alert = %q, want %q", got, "second")
	}
}
