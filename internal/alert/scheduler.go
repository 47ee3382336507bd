package alert

import (
	"context"
	"log"
	"time"

	"github.com/arunpanwar240-bot/apna-screener/internal/markethours"
	"github.com/arunpanwar240-bot/apna-screener/internal/metrics"
	"github.com/arunpanwar240-bot/apna-screener/internal/model"
	"github.com/arunpanwar240-bot/apna-screener/internal/notification"
	"github.com/arunpanwar240-bot/apna-screener/internal/pattern"
	"github.com/arunpanwar240-bot/apna-screener/internal/pipeline"
	"github.com/arunpanwar240-bot/apna-screener/internal/provider/dhan"
)

const defaultInterval = 60 * time.Second

// Journal records notified signals. Implemented by the sqlite store.
type Journal interface {
	Append(sig model.Signal) error
}

// Broadcaster pushes notified signals to live dashboard clients.
type Broadcaster interface {
	BroadcastSignal(sig model.Signal)
}

// Config wires a Scheduler. Journal, Stream, Metrics and Health are
// optional.
type Config struct {
	Pipeline *pipeline.Pipeline
	Notifier notification.Notifier
	State    *State
	Journal  Journal
	Stream   Broadcaster
	Metrics  *metrics.Metrics
	Health   *metrics.HealthStatus

	// Interval is the polling tick. Defaults to 60s.
	Interval time.Duration
	// NotifyDelay is the courtesy pause before each outbound
	// notification. Local to the scheduler tick; it never blocks the
	// display path.
	NotifyDelay time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Scheduler polls every (instrument × notify timeframe) pair on a
// fixed tick during session hours and forwards newly closed,
// not-yet-sent signals to the notification channel.
type Scheduler struct {
	pipe        *pipeline.Pipeline
	notifier    notification.Notifier
	state       *State
	journal     Journal
	stream      Broadcaster
	prom        *metrics.Metrics
	health      *metrics.HealthStatus
	interval    time.Duration
	notifyDelay time.Duration
	now         func() time.Time

	// Day keys of the last executed resets, so each boundary fires
	// exactly once per day.
	lastMessageReset string
	lastSessionReset string
}

// New creates a Scheduler.
func New(cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.NotifyDelay < 0 {
		cfg.NotifyDelay = 0
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.State == nil {
		cfg.State = NewState()
	}
	return &Scheduler{
		pipe:        cfg.Pipeline,
		notifier:    cfg.Notifier,
		state:       cfg.State,
		journal:     cfg.Journal,
		stream:      cfg.Stream,
		prom:        cfg.Metrics,
		health:      cfg.Health,
		interval:    cfg.Interval,
		notifyDelay: cfg.NotifyDelay,
		now:         cfg.Now,
	}
}

// State returns the scheduler's alert state for the display path.
func (s *Scheduler) State() *State { return s.state }

// Run executes the polling loop. Blocks until ctx is cancelled; the
// stop is clean and loses no dedup state.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("[scheduler] started (interval=%v, delay=%v)", s.interval, s.notifyDelay)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[scheduler] stopped")
			return
		case <-ticker.C:
			now := s.now()
			s.housekeep(now)
			if markethours.IsMarketOpen(now) {
				s.Tick(ctx, now)
			}
		}
	}
}

// housekeep runs the daily boundary resets: the sent-message set at
// local midnight, the rotation list at session open.
func (s *Scheduler) housekeep(now time.Time) {
	day := markethours.DayKey(now)

	if s.lastMessageReset == "" {
		s.lastMessageReset = day
	} else if day != s.lastMessageReset {
		s.state.ResetMessages()
		s.lastMessageReset = day
		log.Println("[scheduler] midnight reset: sent-message set cleared")
	}

	if s.lastSessionReset != day && !now.Before(markethours.SessionStart(now)) {
		s.state.ResetToday()
		s.lastSessionReset = day
		log.Println("[scheduler] session open reset: today's signals cleared")
	}
}

// Tick evaluates every tracked pair once. Failures are isolated per
// pair: a provider error on one series never aborts the others.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	start := time.Now()
	if s.prom != nil {
		s.prom.TicksTotal.Inc()
	}

	for _, tf := range model.NotifyTimeframes {
		for _, inst := range model.Instruments() {
			if ctx.Err() != nil {
				return
			}
			s.evaluate(ctx, inst, tf, now)
		}
	}

	if s.health != nil {
		s.health.SetLastTickTime(now)
	}
	if s.prom != nil {
		s.prom.TickDur.Observe(time.Since(start).Seconds())
	}
}

func (s *Scheduler) evaluate(ctx context.Context, inst model.Instrument, tf model.Timeframe, now time.Time) {
	if s.prom != nil {
		s.prom.PairsEvaluated.Inc()
	}

	candles, err := s.pipe.ClosedCandles(ctx, inst, tf, now, now, now)
	if err != nil {
		kind := dhan.ErrKind(err)
		if s.prom != nil {
			s.prom.FetchErrors.WithLabelValues(kind.String()).Inc()
		}
		if kind != dhan.KindNotConfigured {
			log.Printf("[scheduler] %s %s: fetch failed (%s): %v", inst, tf, kind, err)
		}
		return
	}
	if len(candles) == 0 {
		return
	}

	last := candles[len(candles)-1]
	key := Key{Instrument: inst, Timeframe: tf}
	ts := last.TS.Format(time.RFC3339)
	if s.state.Seen(key, ts) {
		if s.prom != nil {
			s.prom.Suppressed.Inc()
		}
		return
	}

	bull, bear := pattern.Classify(last)
	sig := bull
	if sig == nil {
		sig = bear
	}
	if sig == nil {
		// No pattern: still mark the bar seen so it is not re-evaluated.
		s.state.MarkSeen(key, ts)
		return
	}

	if s.prom != nil {
		s.prom.SignalsTotal.WithLabelValues(string(sig.Direction)).Inc()
	}

	s.notify(ctx, *sig)
	s.state.MarkSeen(key, ts)
}

// notify dispatches one signal: record it in the rotation, pause the
// courtesy delay, send unless the identical text already went out
// today. Delivery failure is logged, not retried — the bar stays
// marked seen either way.
func (s *Scheduler) notify(ctx context.Context, sig model.Signal) {
	msg := sig.Message()
	s.state.RecordSignal(sig, msg)

	if s.state.MessageSent(msg) {
		return
	}

	if s.notifyDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.notifyDelay):
		}
	}

	if err := s.notifier.Send(ctx, msg); err != nil {
		if s.prom != nil {
			s.prom.NotificationsFailed.Inc()
		}
		log.Printf("[scheduler] notify %s %s: %v", sig.Instrument, sig.Timeframe, err)
		return
	}

	s.state.MarkMessageSent(msg)
	if s.prom != nil {
		s.prom.NotificationsSent.Inc()
	}
	if s.journal != nil {
		if err := s.journal.Append(sig); err != nil {
			log.Printf("[scheduler] journal append: %v", err)
		}
	}
	if s.stream != nil {
		s.stream.BroadcastSignal(sig)
	}
	log.Printf("[scheduler] alert sent: %s %s %s @ %s", sig.Instrument, sig.Timeframe, sig.Grade, sig.Time)
}
