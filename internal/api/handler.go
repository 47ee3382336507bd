// Package api exposes the JSON API consumed by the dashboard: the
// on-demand display path (dedup bypassed), the rotating today's-signal
// poll, the settings form and a live signal stream.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arunpanwar240-bot/apna-screener/internal/alert"
	"github.com/arunpanwar240-bot/apna-screener/internal/markethours"
	"github.com/arunpanwar240-bot/apna-screener/internal/model"
	"github.com/arunpanwar240-bot/apna-screener/internal/notification"
	"github.com/arunpanwar240-bot/apna-screener/internal/pattern"
	"github.com/arunpanwar240-bot/apna-screener/internal/pipeline"
	"github.com/arunpanwar240-bot/apna-screener/internal/settings"
	"github.com/arunpanwar240-bot/apna-screener/internal/store/sqlite"
)

// Handler holds the dependencies of all API routes.
type Handler struct {
	pipe     *pipeline.Pipeline
	state    *alert.State
	settings *settings.Store
	notifier notification.Notifier
	journal  *sqlite.Journal // nil disables /signals/history
	hub      *Hub
	now      func() time.Time
}

// NewHandler creates the API handler. journal and hub may be nil.
func NewHandler(pipe *pipeline.Pipeline, state *alert.State, st *settings.Store, notifier notification.Notifier, journal *sqlite.Journal, hub *Hub) *Handler {
	return &Handler{
		pipe:     pipe,
		state:    state,
		settings: st,
		notifier: notifier,
		journal:  journal,
		hub:      hub,
		now:      time.Now,
	}
}

// RegisterRoutes mounts all routes under /api/v1.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/view", h.View)
	g.GET("/todays_signal", h.TodaysSignal)
	g.GET("/last_alert", h.LastAlert)
	g.GET("/test_alert", h.TestAlert)
	g.GET("/settings", h.GetSettings)
	g.POST("/settings", h.UpdateSettings)
	g.GET("/signals/history", h.History)
	if h.hub != nil {
		g.GET("/stream", h.hub.ServeWS)
	}
}

// ViewModel is the display-path response: the candle table for the
// selected index plus the signals detected across all indices for the
// chosen timeframe. No dedup applies here.
type ViewModel struct {
	Index          model.Instrument   `json:"index"`
	Interval       model.Timeframe    `json:"interval"`
	FromDate       string             `json:"from_date"`
	ToDate         string             `json:"to_date"`
	IndexChoices   []model.Instrument `json:"index_choices"`
	Candles        []model.Candle     `json:"candles"`
	BullishSignals []model.Signal     `json:"bullish_signals"`
	BearishSignals []model.Signal     `json:"bearish_signals"`
	TodaysSignals  []model.Signal     `json:"todays_signals"`
	LastAlert      string             `json:"last_alert"`
	AlertsActive   bool               `json:"alerts_active"`
}

// View builds the dashboard view model. Provider failures degrade to
// an empty table, never an error page; an unset credential pair is
// reported through alerts_active so the UI can show its banner.
func (h *Handler) View(c echo.Context) error {
	now := h.now().In(markethours.IST)
	today := now.Format("2006-01-02")

	selected := model.Instrument(c.QueryParam("index"))
	if !selected.Valid() {
		selected = model.Nifty
	}
	tf, ok := model.ParseTimeframe(c.QueryParam("interval"))
	if !ok {
		tf = model.TF15Min
	}
	from := parseDate(c.QueryParam("from_date"), today)
	to := parseDate(c.QueryParam("to_date"), today)

	vm := ViewModel{
		Index:        selected,
		Interval:     tf,
		FromDate:     from.Format("2006-01-02"),
		ToDate:       to.Format("2006-01-02"),
		IndexChoices: model.Instruments(),
		AlertsActive: h.settings.ProviderConfigured(),
	}

	for _, inst := range model.Instruments() {
		candles, err := h.pipe.Candles(c.Request().Context(), inst, tf, from, to)
		if err != nil {
			log.Printf("[api] view %s %s: %v", inst, tf, err)
			continue
		}
		if inst == selected {
			vm.Candles = candles
		}
		for _, candle := range candles {
			bull, bear := pattern.Classify(candle)
			if bull != nil {
				vm.BullishSignals = append(vm.BullishSignals, *bull)
			}
			if bear != nil {
				vm.BearishSignals = append(vm.BearishSignals, *bear)
			}
		}
	}

	vm.TodaysSignals = h.state.TodaySignals()
	vm.LastAlert = h.state.LastAlert()
	return c.JSON(http.StatusOK, vm)
}

// TodaysSignal returns the next entry of the rotating list, advancing
// the round-robin cursor, or an explicit null when the list is empty.
func (h *Handler) TodaysSignal(c echo.Context) error {
	sig, ok := h.state.NextTodaySignal()
	if !ok {
		return c.JSON(http.StatusOK, map[string]any{"signal": nil})
	}
	return c.JSON(http.StatusOK, map[string]any{"signal": sig})
}

// LastAlert returns the most recent alert message.
func (h *Handler) LastAlert(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"last_alert": h.state.LastAlert()})
}

// TestAlert sends a probe message through the notification channel.
func (h *Handler) TestAlert(c echo.Context) error {
	msg := "🔔 Test alert from apna-screener"
	if err := h.notifier.Send(c.Request().Context(), msg); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]any{"ok": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// credentialsForm mirrors settings.Credentials with form bindings so
// the settings page can post either JSON or form data.
type credentialsForm struct {
	ClientID         string `json:"client_id" form:"client_id"`
	AccessToken      string `json:"access_token" form:"access_token"`
	TelegramBotToken string `json:"telegram_bot_token" form:"telegram_bot_token"`
	TelegramChatID   string `json:"telegram_chat_id" form:"telegram_chat_id"`
}

// GetSettings returns the current credentials with secrets masked.
func (h *Handler) GetSettings(c echo.Context) error {
	creds := h.settings.Get()
	return c.JSON(http.StatusOK, map[string]string{
		"client_id":          creds.ClientID,
		"access_token":       mask(creds.AccessToken),
		"telegram_bot_token": mask(creds.TelegramBotToken),
		"telegram_chat_id":   creds.TelegramChatID,
	})
}

// UpdateSettings replaces the four credentials and persists them.
func (h *Handler) UpdateSettings(c echo.Context) error {
	var form credentialsForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	err := h.settings.Update(settings.Credentials{
		ClientID:         form.ClientID,
		AccessToken:      form.AccessToken,
		TelegramBotToken: form.TelegramBotToken,
		TelegramChatID:   form.TelegramChatID,
	})
	if err != nil {
		log.Printf("[api] settings save: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to save settings"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"saved": true})
}

// History returns recently notified signals from the journal.
func (h *Handler) History(c echo.Context) error {
	if h.journal == nil {
		return c.JSON(http.StatusOK, map[string]any{"signals": []model.Signal{}})
	}
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	sigs, err := h.journal.Recent(limit)
	if err != nil {
		log.Printf("[api] history: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "journal read failed"})
	}
	if sigs == nil {
		sigs = []model.Signal{}
	}
	return c.JSON(http.StatusOK, map[string]any{"signals": sigs})
}

func parseDate(s, fallback string) time.Time {
	if s == "" {
		s = fallback
	}
	t, err := time.ParseInLocation("2006-01-02", s, markethours.IST)
	if err != nil {
		t, _ = time.ParseInLocation("2006-01-02", fallback, markethours.IST)
	}
	return t
}

func mask(s string) string {
	if len(s) <= 4 {
		return s
	}
	return "****" + s[len(s)-4:]
}
