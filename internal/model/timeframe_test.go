package model

import (
	"testing"
	"time"
)

func TestParseTimeframe(t *testing.T) {
	cases := []struct {
		in   string
		want Timeframe
		ok   bool
	}{
		{"15min", TF15Min, true},
		{"30min", TF30Min, true},
		{"1h", TF1H, true},
		{"1H", TF1H, true},
		{"1d", TF1D, true},
		{"1w", TF1W, true},
		{"1W", TF1W, true},
		{"2w", TF2W, true},
		// "1m" is monthly; the minute timeframe is "1min".
		{"1m", TF1M, true},
		{"1M", TF1M, true},
		{"1min", TF1Min, true},
		{"7min", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseTimeframe(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseTimeframe(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestTimeframe_Base(t *testing.T) {
	cases := map[Timeframe]Timeframe{
		TF15Min: TF15Min,
		TF30Min: TF15Min,
		TF45Min: TF15Min,
		TF1H:    TF1H,
		TF2H:    TF1H,
		TF4H:    TF1H,
		TF1D:    TF1D,
		TF1W:    TF1D,
		TF2W:    TF1D,
		TF1M:    TF1D,
	}
	for tf, want := range cases {
		if got := tf.Base(); got != want {
			t.Errorf("%s.Base() = %s, want %s", tf, got, want)
		}
	}
}

func TestTimeframe_IntradayAndDuration(t *testing.T) {
	if !TF45Min.Intraday() || TF45Min.Duration() != 45*time.Minute {
		t.Error("45min should be intraday with a 45m duration")
	}
	if TF1D.Intraday() || TF1D.Duration() != 0 {
		t.Error("1d is calendar-binned, not intraday")
	}
	if TF1W.Intraday() {
		t.Error("1W is not intraday")
	}
}

func TestTimeframe_ProviderInterval(t *testing.T) {
	if got := TF1H.ProviderInterval(); got != 60 {
		t.Errorf("1h interval = %d, want 60", got)
	}
	if got := TF15Min.ProviderInterval(); got != 15 {
		t.Errorf("15min interval = %d, want 15", got)
	}
	if got := TF1D.ProviderInterval(); got != 0 {
		t.Errorf("1d interval = %d, want 0", got)
	}
}

func TestInstruments(t *testing.T) {
	all := Instruments()
	if len(all) != 3 {
		t.Fatalf("expected 3 instruments, got %d", len(all))
	}
	for _, inst := range all {
		if !inst.Valid() {
			t.Errorf("%s should be valid", inst)
		}
		if inst.SecurityID() == "" {
			t.Errorf("%s has no security id", inst)
		}
	}
	if Instrument("DOWJONES").Valid() {
		t.Error("unknown instrument should be invalid")
	}
}
