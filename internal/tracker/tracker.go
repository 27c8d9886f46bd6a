package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayoisaiah/webfocus/internal/debounce"
	"github.com/ayoisaiah/webfocus/internal/metrics"
	"github.com/ayoisaiah/webfocus/internal/models"
)

const (
	// DefaultDebounce collapses bursts of browser events.
	DefaultDebounce = 500 * time.Millisecond
	// DefaultInterval is the period of the safety net alarm.
	DefaultInterval = 15 * time.Second
)

// Store persists the open marker and receives closed intervals.
type Store interface {
	Marker() (*models.Marker, error)
	SetMarker(m models.Marker) error
	ClearMarker() error
	RecordTime(domain string, secs int64, at time.Time) string
}

// Observer produces activity samples.
type Observer interface {
	Sample(ctx context.Context) Sample
}

// Options configures a Tracker.
type Options struct {
	Now      func() time.Time
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	OnSample func(ctx context.Context, s Sample)
	Debounce time.Duration
}

// Tracker drives Transition from browser events and a periodic alarm.
type Tracker struct {
	store    Store
	observer Observer
	opts     Options
	logger   *slog.Logger
	trigger  *debounce.Debouncer
	baseCtx  context.Context
	mu       sync.Mutex
	ctxMu    sync.Mutex
}

// New returns a Tracker reading samples from observer.
func New(store Store, observer Observer, opts Options) *Tracker {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	t := &Tracker{
		store:    store,
		observer: observer,
		opts:     opts,
		logger:   opts.Logger,
		baseCtx:  context.Background(),
	}

	t.trigger = debounce.New(opts.Debounce, func() {
		_ = t.Update(t.context())
	})

	return t
}

// Trigger schedules an update once browser events have settled. reason is
// only used for logging.
func (t *Tracker) Trigger(reason string) {
	t.logger.Debug("tracking trigger", slog.String("reason", reason))
	t.trigger.Call()
}

// Update samples activity and applies one transition. Failures, including
// panics, clear the marker so that a broken session cannot linger, and are
// logged and returned.
func (t *Tracker) Update(ctx context.Context) error {
	sample, err := t.update(ctx)
	if err != nil {
		return err
	}

	if t.opts.OnSample != nil {
		t.opts.OnSample(ctx, sample)
	}

	return nil
}

func (t *Tracker) update(ctx context.Context) (sample Sample, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tracking update panicked: %v", r)
		}

		if err == nil {
			return
		}

		t.logger.Error("tracking update failed", slog.Any("error", err))

		if cErr := t.store.ClearMarker(); cErr != nil {
			t.logger.Error("clearing tracking marker failed", slog.Any("error", cErr))
		}
	}()

	sample = t.observer.Sample(ctx)

	return sample, t.apply(sample)
}

func (t *Tracker) apply(sample Sample) error {
	prev, err := t.store.Marker()
	if err != nil {
		return err
	}

	now := t.opts.Now()
	next, closed := Transition(sample, prev, now)

	if closed.Seconds > 0 {
		category := t.store.RecordTime(closed.Domain, closed.Seconds, now)

		t.logger.Debug(
			"recorded interval",
			slog.String("domain", closed.Domain),
			slog.String("category", category),
			slog.Int64("seconds", closed.Seconds),
		)
	}

	switch {
	case next != nil:
		err = t.store.SetMarker(*next)
	case prev != nil:
		err = t.store.ClearMarker()
	}

	if err != nil {
		return err
	}

	action := Classify(prev, next)
	t.opts.Metrics.Transition(string(action), next != nil)

	return nil
}

// Stop cancels any pending trigger and closes the open interval.
func (t *Tracker) Stop() error {
	t.trigger.Cancel()

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.apply(Sample{})
}

// Run re-evaluates tracking every interval until ctx is done.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	t.ctxMu.Lock()
	t.baseCtx = ctx
	t.ctxMu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	_ = t.Update(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = t.Update(ctx)
		}
	}
}

func (t *Tracker) context() context.Context {
	t.ctxMu.Lock()
	defer t.ctxMu.Unlock()

	return t.baseCtx
}
