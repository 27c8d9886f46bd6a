// Package rules decides when navigations and open tabs must be redirected to
// the block page.
package rules

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ayoisaiah/webfocus/internal/host"
	"github.com/ayoisaiah/webfocus/internal/metrics"
	"github.com/ayoisaiah/webfocus/internal/models"
	"github.com/ayoisaiah/webfocus/internal/site"
)

// FrameMain is the resource type of a top level navigation.
const FrameMain = "main_frame"

// Source provides the configuration and today's totals rules are evaluated
// against.
type Source interface {
	Rules() []models.Rule
	Assignments() map[string]string
	DomainsOn(date string) models.Seconds
	CategoriesOn(date string) models.Seconds
	Today() string
}

// Request is a navigation about to happen.
type Request struct {
	URL    string `json:"url"`
	Method string `json:"method"`
	Frame  string `json:"type"`
	TabID  int    `json:"tabId"`
}

// cache is the immutable view consulted on the navigation path.
type cache struct {
	assignments map[string]string
	blocks      []models.Rule
}

// Options configures an Engine.
type Options struct {
	Now       func() time.Time
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	BlockPage string
}

// Engine evaluates block and limit rules.
type Engine struct {
	src        Source
	redirector host.Redirector
	opts       Options
	logger     *slog.Logger
	cache      atomic.Pointer[cache]
}

// New returns an Engine. Call Refresh before the first navigation check.
func New(src Source, redirector host.Redirector, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		src:        src,
		redirector: redirector,
		opts:       opts,
		logger:     opts.Logger,
	}
}

// BlockPage returns the address redirects point to.
func (e *Engine) BlockPage() string {
	return e.opts.BlockPage
}

// Refresh rebuilds the navigation cache from the current configuration.
func (e *Engine) Refresh() {
	c := &cache{assignments: e.src.Assignments()}

	for _, r := range e.src.Rules() {
		if r.Type == models.BlockURL || r.Type == models.BlockCategory {
			c.blocks = append(c.blocks, r)
		}
	}

	e.cache.Store(c)

	e.logger.Debug("rule cache refreshed", slog.Int("blocks", len(c.blocks)))
}

// CheckNavigation decides whether a navigation must be redirected. Only GET
// requests for the main frame of web pages are considered. It never touches
// storage and never blocks.
func (e *Engine) CheckNavigation(req Request) (Decision, bool) {
	if req.Frame != FrameMain || !strings.EqualFold(req.Method, "GET") {
		return Decision{}, false
	}

	return e.checkBlocks(req.URL)
}

func (e *Engine) checkBlocks(rawURL string) (Decision, bool) {
	if e.isBlockPage(rawURL) {
		return Decision{}, false
	}

	domain, ok := site.ExtractDomain(rawURL)
	if !ok {
		return Decision{}, false
	}

	c := e.cache.Load()
	if c == nil || len(c.blocks) == 0 {
		return Decision{}, false
	}

	now := e.opts.Now()
	category := ""

	for _, r := range c.blocks {
		matched, err := e.safely(r, func() (bool, error) {
			switch r.Type {
			case models.BlockURL:
				if !site.MatchPattern(domain, r.Value) {
					return false, nil
				}
			case models.BlockCategory:
				if category == "" {
					category = site.ResolveCategory(domain, c.assignments, site.Fallback)
				}

				if !strings.EqualFold(category, r.Value) {
					return false, nil
				}
			default:
				return false, nil
			}

			return ScheduleActive(r, now)
		})
		if err != nil || !matched {
			continue
		}

		return Decision{URL: rawURL, Reason: ReasonBlock, Rule: r}, true
	}

	return Decision{}, false
}

// CheckLimits reports the first limit rule whose daily allowance domain has
// used up.
func (e *Engine) CheckLimits(domain string) (Decision, bool) {
	if domain == "" {
		return Decision{}, false
	}

	var (
		today      = e.src.Today()
		domains    models.Seconds
		categories models.Seconds
		category   string
	)

	for _, r := range e.src.Rules() {
		if !r.Type.IsLimit() {
			continue
		}

		var spent int64

		matched, err := e.safely(r, func() (bool, error) {
			if r.LimitSeconds <= 0 {
				return false, fmt.Errorf("limit of %ds is not positive", r.LimitSeconds)
			}

			switch r.Type {
			case models.LimitURL:
				if !site.MatchPattern(domain, r.Value) {
					return false, nil
				}

				if domains == nil {
					domains = e.src.DomainsOn(today)
				}

				for d, secs := range domains {
					if site.MatchPattern(d, r.Value) {
						spent += secs
					}
				}
			case models.LimitCategory:
				if category == "" {
					category = site.ResolveCategory(domain, e.src.Assignments(), site.Fallback)
				}

				if !strings.EqualFold(category, r.Value) {
					return false, nil
				}

				if categories == nil {
					categories = e.src.CategoriesOn(today)
				}

				for c, secs := range categories {
					if strings.EqualFold(c, r.Value) {
						spent += secs
					}
				}
			}

			return spent >= r.LimitSeconds, nil
		})
		if err != nil || !matched {
			continue
		}

		return Decision{Reason: ReasonLimit, Rule: r, Spent: spent}, true
	}

	return Decision{}, false
}

// EnforceActiveTab redirects the tab showing rawURL if a block rule is now in
// effect or a limit has been reached. It reports whether a redirect was
// issued.
func (e *Engine) EnforceActiveTab(ctx context.Context, tabID int, rawURL string) (bool, error) {
	d, hit := e.checkBlocks(rawURL)

	if !hit {
		domain, ok := site.ExtractDomain(rawURL)
		if !ok || e.isBlockPage(rawURL) {
			return false, nil
		}

		d, hit = e.CheckLimits(domain)
		if !hit {
			return false, nil
		}

		d.URL = rawURL
	}

	if err := e.redirector.Redirect(ctx, tabID, d.RedirectURL(e.opts.BlockPage)); err != nil {
		return false, err
	}

	e.opts.Metrics.Redirected(string(d.Reason), string(d.Rule.Type))

	e.logger.Info(
		"redirected tab",
		slog.Int("tab", tabID),
		slog.String("reason", string(d.Reason)),
		slog.String("rule", string(d.Rule.Type)),
		slog.String("value", d.Rule.Value),
	)

	return true, nil
}

// Record counts a redirect that the browser performed on its own after a
// navigation check.
func (e *Engine) Record(d Decision) {
	e.opts.Metrics.Redirected(string(d.Reason), string(d.Rule.Type))
}

func (e *Engine) isBlockPage(rawURL string) bool {
	return e.opts.BlockPage != "" && strings.HasPrefix(rawURL, e.opts.BlockPage)
}

// safely evaluates one rule. Errors and panics are logged and reported so
// the caller can skip the rule.
func (e *Engine) safely(r models.Rule, eval func() (bool, error)) (matched bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}

		if err != nil {
			e.logger.Warn(
				"skipping rule",
				slog.String("type", string(r.Type)),
				slog.String("value", r.Value),
				slog.Any("error", err),
			)

			matched = false
		}
	}()

	return eval()
}
