// Package background composes the webfocus background process: it owns the
// state, drives tracking, enforces rules and runs the pomodoro timer while
// the browser is connected.
package background

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/ayoisaiah/webfocus/internal/config"
	"github.com/ayoisaiah/webfocus/internal/host"
	"github.com/ayoisaiah/webfocus/internal/message"
	"github.com/ayoisaiah/webfocus/internal/metrics"
	"github.com/ayoisaiah/webfocus/internal/nativemsg"
	"github.com/ayoisaiah/webfocus/internal/rules"
	"github.com/ayoisaiah/webfocus/internal/state"
	"github.com/ayoisaiah/webfocus/internal/tracker"
	"github.com/ayoisaiah/webfocus/store"
	"github.com/ayoisaiah/webfocus/timer"
)

// TypePomodoroStatus is pushed every second while a UI surface is open.
const TypePomodoroStatus = "pomodoroStatusUpdate"

// Options configures a Service.
type Options struct {
	Now      func() time.Time
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Notifier timer.Notifier
}

// Service is the running background process.
type Service struct {
	cfg        *config.Config
	opts       Options
	logger     *slog.Logger
	in         io.Reader
	writer     *nativemsg.Writer
	remote     *host.Remote
	state      *state.State
	tracker    *tracker.Tracker
	engine     *rules.Engine
	timer      *timer.Timer
	dispatcher *message.Dispatcher
	surfaces   atomic.Int32
}

// New wires every component of the background process. Messages are read
// from in and written to out; local is the durable storage area.
func New(
	cfg *config.Config,
	local store.DB,
	in io.Reader,
	out io.Writer,
	opts Options,
) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	m := metrics.New(opts.Registry)

	s := &Service{
		cfg:    cfg,
		opts:   opts,
		logger: opts.Logger,
		in:     in,
		writer: nativemsg.NewWriter(out),
	}

	s.remote = host.NewRemote(s.writer, cfg.Host.Timeout)

	idle, retention := cfg.StateOptions()
	blockPage := state.DefaultBlockPage()

	s.state = state.New(local, store.NewMemory(), state.Options{
		Now:           opts.Now,
		Logger:        opts.Logger.With(slog.String("component", "state")),
		Metrics:       m,
		BlockPage:     &blockPage,
		Pomodoro:      cfg.PomodoroSettings(),
		SaveDelay:     cfg.Storage.SaveDelay,
		IdleThreshold: idle,
		Retention:     retention,
	})

	s.engine = rules.New(s.state, s.remote, rules.Options{
		Now:       opts.Now,
		Logger:    opts.Logger.With(slog.String("component", "rules")),
		Metrics:   m,
		BlockPage: cfg.BlockPage.URL,
	})

	sampler := tracker.NewSampler(
		s.remote,
		s.remote,
		s.state.IdleThreshold,
		opts.Logger.With(slog.String("component", "sampler")),
	)

	s.tracker = tracker.New(s.state, sampler, tracker.Options{
		Now:      opts.Now,
		Logger:   opts.Logger.With(slog.String("component", "tracker")),
		Metrics:  m,
		OnSample: s.enforce,
		Debounce: cfg.Tracking.Debounce,
	})

	s.timer = timer.New(s.state, timer.Options{
		Now:            opts.Now,
		Logger:         opts.Logger.With(slog.String("component", "pomodoro")),
		Notifier:       opts.Notifier,
		Permissions:    s.remote,
		SessionCmd:     cfg.Pomodoro.SessionCmd,
		AutoStartBreak: cfg.Pomodoro.AutoStartBreak,
		AutoStartWork:  cfg.Pomodoro.AutoStartWork,
	})

	s.dispatcher = message.New(s.writer, s.remote, opts.Logger)
	s.register()

	s.state.Subscribe(func(c state.Change) {
		if c != state.SettingsChanged {
			s.engine.Refresh()
		}
	})

	return s
}

// Run serves the browser until it disconnects or ctx is cancelled, then
// closes the open tracking interval and flushes state.
func (s *Service) Run(ctx context.Context) error {
	s.state.Load()
	s.engine.Refresh()
	s.timer.Load()

	s.logger.Info("background process started")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()

		err := s.dispatcher.Serve(ctx, nativemsg.NewReader(s.in))
		if err != nil && ctx.Err() != nil {
			return nil
		}

		return err
	})

	g.Go(func() error {
		<-ctx.Done()

		if c, ok := s.in.(io.Closer); ok {
			_ = c.Close()
		}

		return nil
	})

	g.Go(func() error {
		return s.tracker.Run(ctx, s.cfg.Tracking.CheckInterval)
	})

	g.Go(func() error {
		return s.checkLimits(ctx)
	})

	g.Go(func() error {
		return s.timer.Run(ctx, s.broadcast)
	})

	g.Go(func() error {
		return s.prune(ctx)
	})

	if s.cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return s.serveMetrics(ctx)
		})
	}

	err := g.Wait()

	s.shutdown()

	return err
}

func (s *Service) shutdown() {
	if err := s.tracker.Stop(); err != nil {
		s.logger.Error("closing tracking interval failed", slog.Any("error", err))
	}

	s.remote.Close()

	if err := s.state.Flush(); err != nil {
		s.logger.Error("final save failed", slog.Any("error", err))
	}

	s.logger.Info("background process stopped")
}

// enforce redirects the active tab when a rule applies to it. It runs after
// every tracking update.
func (s *Service) enforce(ctx context.Context, sample tracker.Sample) {
	if !sample.Active || sample.URL == "" {
		return
	}

	if _, err := s.engine.EnforceActiveTab(ctx, sample.TabID, sample.URL); err != nil {
		s.logger.Warn("enforcing rules on active tab failed", slog.Any("error", err))
	}
}

// checkLimits re-evaluates rules against the active tab so that a limit
// reached mid-visit takes effect without a navigation.
func (s *Service) checkLimits(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Limits.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			tab, err := s.remote.ActiveTab(ctx)
			if err != nil {
				s.logger.Debug("limit check skipped", slog.Any("error", err))
				continue
			}

			if tab == nil {
				continue
			}

			s.enforce(ctx, tracker.Sample{Active: true, URL: tab.URL, TabID: tab.ID})
		}
	}
}

// prune removes expired history shortly after startup and then daily.
func (s *Service) prune(ctx context.Context) error {
	delay := time.NewTimer(s.cfg.Storage.PruneDelay)
	defer delay.Stop()

	select {
	case <-ctx.Done():
		return nil
	case <-delay.C:
	}

	ticker := time.NewTicker(s.cfg.Storage.PruneInterval)
	defer ticker.Stop()

	for {
		s.pruneOnce()

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Service) pruneOnce() {
	removed, err := s.state.Prune()
	if err != nil {
		s.logger.Error("pruning history failed", slog.Any("error", err))
		return
	}

	if removed > 0 {
		s.logger.Info("pruned history", slog.Int("entries", removed))
	}
}

// broadcast pushes the timer status while at least one UI surface is open.
func (s *Service) broadcast(status timer.Status) {
	if s.surfaces.Load() <= 0 {
		return
	}

	if err := s.writer.Send(TypePomodoroStatus, status); err != nil {
		s.logger.Debug("pomodoro status push failed", slog.Any("error", err))
	}
}

func (s *Service) serveMetrics(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Metrics.Addr,
		Handler:           metrics.Handler(s.opts.Registry),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("serving metrics", slog.String("addr", s.cfg.Metrics.Addr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
