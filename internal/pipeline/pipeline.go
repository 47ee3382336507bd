// Package pipeline is the one shared fetch → normalize → resample
// path. The alert scheduler and the display API both invoke it, with
// different post-processing (dedup vs. render), so the two call sites
// cannot drift apart.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/arunpanwar240-bot/apna-screener/internal/cache"
	"github.com/arunpanwar240-bot/apna-screener/internal/metrics"
	"github.com/arunpanwar240-bot/apna-screener/internal/model"
	"github.com/arunpanwar240-bot/apna-screener/internal/resample"
)

// BarSource fetches native bars from the market-data provider.
// Implemented by the dhan client; stubbed in tests.
type BarSource interface {
	IntradayBars(ctx context.Context, inst model.Instrument, interval int, from, to time.Time) ([]model.RawBar, error)
	DailyBars(ctx context.Context, inst model.Instrument, from, to time.Time) ([]model.RawBar, error)
}

// Pipeline wires the provider, the optional bar cache and the
// resampler into one reusable series builder. Stateless between
// calls; safe for concurrent use.
type Pipeline struct {
	source BarSource
	cache  *cache.Cache // nil disables caching
	prom   *metrics.Metrics
}

// New creates a pipeline. cache and prom may be nil.
func New(source BarSource, c *cache.Cache, prom *metrics.Metrics) *Pipeline {
	return &Pipeline{source: source, cache: c, prom: prom}
}

// Candles fetches and resamples the series for (inst, tf) over the
// inclusive [from, to] date range. The trailing bar may still be
// forming; callers on the alert path must filter with ClosedCandles.
func (p *Pipeline) Candles(ctx context.Context, inst model.Instrument, tf model.Timeframe, from, to time.Time) ([]model.Candle, error) {
	bars, err := p.nativeBars(ctx, inst, tf.Base(), from, to)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, nil
	}

	start := time.Now()
	var candles []model.Candle
	switch {
	case tf.Intraday() && tf.Synthetic():
		candles = resample.Intraday(inst, tf, bars)
	case tf.Intraday() || tf == model.TF1D:
		candles = resample.FromNative(inst, tf, bars)
	case tf == model.TF1W:
		candles = resample.WeeklyFromMonthStart(inst, bars)
	case tf == model.TF2W:
		candles = resample.BiWeekly(inst, bars)
	case tf == model.TF1M:
		candles = resample.Monthly(inst, bars)
	default:
		return nil, fmt.Errorf("pipeline: unsupported timeframe %q", tf)
	}
	if p.prom != nil {
		p.prom.ResampleDur.Observe(time.Since(start).Seconds())
	}
	return candles, nil
}

// ClosedCandles is Candles with still-forming trailing bars removed;
// the last element, if any, is the most recent fully closed bar as of
// now.
func (p *Pipeline) ClosedCandles(ctx context.Context, inst model.Instrument, tf model.Timeframe, from, to, now time.Time) ([]model.Candle, error) {
	candles, err := p.Candles(ctx, inst, tf, from, to)
	if err != nil {
		return nil, err
	}
	return resample.DropForming(candles, now), nil
}

// nativeBars fetches one native series, consulting the cache first.
func (p *Pipeline) nativeBars(ctx context.Context, inst model.Instrument, base model.Timeframe, from, to time.Time) ([]model.RawBar, error) {
	key := cache.Key(inst, base, from, to)
	if bars, ok := p.cache.GetBars(ctx, key); ok {
		return bars, nil
	}

	var (
		bars []model.RawBar
		err  error
	)
	if base.Intraday() {
		bars, err = p.source.IntradayBars(ctx, inst, base.ProviderInterval(), from, to)
	} else {
		bars, err = p.source.DailyBars(ctx, inst, from, to)
	}
	if err != nil {
		return nil, err
	}
	if len(bars) > 0 {
		p.cache.PutBars(ctx, key, bars)
	}
	return bars, nil
}
