package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arunpanwar240-bot/apna-screener/internal/alert"
	"github.com/arunpanwar240-bot/apna-screener/internal/markethours"
	"github.com/arunpanwar240-bot/apna-screener/internal/model"
	"github.com/arunpanwar240-bot/apna-screener/internal/notification"
	"github.com/arunpanwar240-bot/apna-screener/internal/pipeline"
	"github.com/arunpanwar240-bot/apna-screener/internal/settings"
)

type stubSource struct {
	bars []model.RawBar
}

func (s *stubSource) IntradayBars(ctx context.Context, inst model.Instrument, interval int, from, to time.Time) ([]model.RawBar, error) {
	return s.bars, nil
}

func (s *stubSource) DailyBars(ctx context.Context, inst model.Instrument, from, to time.Time) ([]model.RawBar, error) {
	return s.bars, nil
}

func newTestHandler(t *testing.T, bars []model.RawBar) (*Handler, *settings.Store) {
	t.Helper()
	st := settings.Load(filepath.Join(t.TempDir(), "config.json"))
	pipe := pipeline.New(&stubSource{bars: bars}, nil, nil)
	h := NewHandler(pipe, alert.NewState(), st, notification.NewLogNotifier(), nil, nil)
	h.now = func() time.Time {
		return time.Date(2026, time.January, 5, 11, 0, 0, 0, markethours.IST)
	}
	return h, st
}

func doRequest(t *testing.T, h *Handler, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestView_Defaults(t *testing.T) {
	// One bullish EXCELLENT bar, already closed by the frozen 11:00 clock.
	bars := []model.RawBar{{
		TS:     time.Date(2026, time.January, 5, 10, 15, 0, 0, markethours.IST),
		Open:   100, High: 120, Low: 100, Close: 105,
		Volume: 10,
	}}
	h, _ := newTestHandler(t, bars)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/view", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var vm ViewModel
	if err := json.Unmarshal(rec.Body.Bytes(), &vm); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if vm.Index != model.Nifty {
		t.Errorf("default index = %s, want NIFTY", vm.Index)
	}
	if vm.Interval != model.TF15Min {
		t.Errorf("default interval = %s, want 15min", vm.Interval)
	}
	if vm.FromDate != "2026-01-05" || vm.ToDate != "2026-01-05" {
		t.Errorf("default range = %s..%s, want today", vm.FromDate, vm.ToDate)
	}
	if len(vm.Candles) != 1 {
		t.Errorf("candles = %d, want 1", len(vm.Candles))
	}
	// The same stub bar serves all three instruments; each classifies
	// bullish on the display path (no dedup).
	if len(vm.BullishSignals) != 3 {
		t.Errorf("bullish signals = %d, want 3", len(vm.BullishSignals))
	}
	if vm.AlertsActive {
		t.Error("alerts_active should be false with unset credentials")
	}
}

func TestView_SelectsInstrumentAndInterval(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/view?index=BANKNIFTY&interval=1h", "")
	var vm ViewModel
	json.Unmarshal(rec.Body.Bytes(), &vm)
	if vm.Index != model.BankNifty || vm.Interval != model.TF1H {
		t.Errorf("selection = %s/%s", vm.Index, vm.Interval)
	}
}

func TestTodaysSignal_EmptyReturnsNull(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/todays_signal", "")
	var resp map[string]json.RawMessage
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if string(resp["signal"]) != "null" {
		t.Errorf("signal = %s, want null", resp["signal"])
	}
}

func TestTodaysSignal_RotatesThroughList(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	for _, grade := range []string{"A", "B"} {
		h.state.RecordSignal(model.Signal{Grade: grade}, grade)
	}

	var grades []string
	for i := 0; i < 3; i++ {
		rec := doRequest(t, h, http.MethodGet, "/api/v1/todays_signal", "")
		var resp struct {
			Signal model.Signal `json:"signal"`
		}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		grades = append(grades, resp.Signal.Grade)
	}
	want := []string{"A", "B", "A"}
	for i := range want {
		if grades[i] != want[i] {
			t.Fatalf("rotation = %v, want %v", grades, want)
		}
	}
}

func TestSettings_UpdateAndMaskedGet(t *testing.T) {
	h, st := newTestHandler(t, nil)

	body := `{"client_id":"cid","access_token":"secret-token-1234","telegram_bot_token":"bot-token-5678","telegram_chat_id":"99"}`
	rec := doRequest(t, h, http.MethodPost, "/api/v1/settings", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	if !st.ProviderConfigured() {
		t.Error("store not updated")
	}

	rec = doRequest(t, h, http.MethodGet, "/api/v1/settings", "")
	var got map[string]string
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got["client_id"] != "cid" {
		t.Errorf("client_id = %q", got["client_id"])
	}
	if got["access_token"] != "****1234" {
		t.Errorf("access_token = %q, want masked", got["access_token"])
	}
	if got["telegram_bot_token"] != "****5678" {
		t.Errorf("telegram_bot_token = %q, want masked", got["telegram_bot_token"])
	}
	if got["telegram_chat_id"] != "99" {
		t.Errorf("telegram_chat_id = %q", got["telegram_chat_id"])
	}
}

func TestHistory_NilJournal(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/signals/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string][]model.Signal
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["signals"] == nil || len(resp["signals"]) != 0 {
		t.Errorf("signals = %v, want empty list", resp["signals"])
	}
}

func TestLastAlert(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	h.state.RecordSignal(model.Signal{Grade: "A"}, "last message text")

	rec := doRequest(t, h, http.MethodGet, "/api/v1/last_alert", "")
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["last_alert"] != "last message text" {
		t.Errorf("last_alert = %q", resp["last_alert"])
	}
}
