package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arunpanwar240-bot/apna-screener/internal/markethours"
)

// Metrics holds all Prometheus metrics for the alert service.
type Metrics struct {
	TicksTotal          prometheus.Counter
	PairsEvaluated      prometheus.Counter
	FetchErrors         *prometheus.CounterVec // labels: kind
	SignalsTotal        *prometheus.CounterVec // labels: direction
	Suppressed          prometheus.Counter
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
	ResampleDur         prometheus.Histogram
	TickDur             prometheus.Histogram
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alertd_ticks_total",
			Help: "Scheduler ticks executed during session hours",
		}),
		PairsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alertd_pairs_evaluated_total",
			Help: "Total (instrument, timeframe) evaluations",
		}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alertd_fetch_errors_total",
			Help: "Provider fetch failures (by kind)",
		}, []string{"kind"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alertd_signals_total",
			Help: "Classified signals on closed bars (by direction)",
		}, []string{"direction"}),
		Suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alertd_suppressed_total",
			Help: "Evaluations suppressed by the dedup key",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alertd_notifications_sent_total",
			Help: "Alerts delivered to the notification channel",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alertd_notifications_failed_total",
			Help: "Alert delivery failures",
		}),
		ResampleDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "alertd_resample_duration_seconds",
			Help:    "Resampler latency per series",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}),
		TickDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "alertd_tick_duration_seconds",
			Help:    "Full scheduler tick latency",
			Buckets: prometheus.DefBuckets,
		}),
	}

	prometheus.MustRegister(
		m.TicksTotal, m.PairsEvaluated, m.FetchErrors, m.SignalsTotal,
		m.Suppressed, m.NotificationsSent, m.NotificationsFailed,
		m.ResampleDur, m.TickDur,
	)
	return m
}

// HealthStatus tracks service liveness, exposed on /healthz.
type HealthStatus struct {
	mu sync.RWMutex

	ProviderConfigured bool
	TelegramConfigured bool
	RedisConnected     bool
	SQLiteOK           bool
	LastTickTime       time.Time
	StartedAt          time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

func (h *HealthStatus) SetProviderConfigured(v bool) {
	h.mu.Lock()
	h.ProviderConfigured = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetTelegramConfigured(v bool) {
	h.mu.Lock()
	h.TelegramConfigured = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetRedisConnected(v bool) {
	h.mu.Lock()
	h.RedisConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetSQLiteOK(v bool) {
	h.mu.Lock()
	h.SQLiteOK = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastTickTime(t time.Time) {
	h.mu.Lock()
	h.LastTickTime = t
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overall := "healthy"
	code := http.StatusOK
	if !h.ProviderConfigured || !h.SQLiteOK {
		overall = "degraded"
		code = http.StatusServiceUnavailable
	}

	lastTick := ""
	if !h.LastTickTime.IsZero() {
		lastTick = h.LastTickTime.Format(time.RFC3339)
	}

	now := time.Now()
	status := struct {
		Status             string `json:"status"`
		Uptime             string `json:"uptime"`
		Market             string `json:"market"`
		ProviderConfigured bool   `json:"provider_configured"`
		TelegramConfigured bool   `json:"telegram_configured"`
		RedisConnected     bool   `json:"redis_connected"`
		SQLiteOK           bool   `json:"sqlite_ok"`
		LastTickTime       string `json:"last_tick_time"`
	}{
		Status:             overall,
		Uptime:             now.Sub(h.StartedAt).Round(time.Second).String(),
		Market:             markethours.StatusString(now),
		ProviderConfigured: h.ProviderConfigured,
		TelegramConfigured: h.TelegramConfigured,
		RedisConnected:     h.RedisConnected,
		SQLiteOK:           h.SQLiteOK,
		LastTickTime:       lastTick,
	}

	w.Header().Set("Content-Type", "application/json")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		addr: addr,
		srv:  &http.Server{Addr: addr, Handler: mux},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
