package tracker

import (
	"context"
	"log/slog"

	"github.com/ayoisaiah/webfocus/internal/host"
	"github.com/ayoisaiah/webfocus/internal/site"
)

// IdleDisabled turns idle detection off.
const IdleDisabled = -1

// Sampler observes the browser to produce activity samples.
type Sampler struct {
	idle      host.IdleQuerier
	tabs      host.TabQuerier
	threshold func() int
	logger    *slog.Logger
}

// NewSampler returns a Sampler that reads the idle threshold in seconds from
// threshold at every sample.
func NewSampler(
	idle host.IdleQuerier,
	tabs host.TabQuerier,
	threshold func() int,
	logger *slog.Logger,
) *Sampler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Sampler{
		idle:      idle,
		tabs:      tabs,
		threshold: threshold,
		logger:    logger,
	}
}

// Sample reports whether the user is engaged with a web page in the focused
// window. Idle query failures count as active; tab query failures count as
// no tab.
func (s *Sampler) Sample(ctx context.Context) Sample {
	if !s.userActive(ctx) {
		return Sample{}
	}

	tab, err := s.tabs.ActiveTab(ctx)
	if err != nil {
		s.logger.Warn("querying active tab failed", slog.Any("error", err))
		return Sample{}
	}

	if tab == nil || !tab.WindowFocused {
		return Sample{}
	}

	domain, ok := site.ExtractDomain(tab.URL)
	if !ok {
		return Sample{}
	}

	return Sample{Active: true, Domain: domain, URL: tab.URL, TabID: tab.ID}
}

func (s *Sampler) userActive(ctx context.Context) bool {
	threshold := s.threshold()
	if threshold == IdleDisabled || threshold < 1 {
		return true
	}

	state, err := s.idle.QueryIdle(ctx, threshold)
	if err != nil {
		s.logger.Warn("querying idle state failed", slog.Any("error", err))
		return true
	}

	return state == host.Active
}
