// Package state owns the in-memory application state and its persistence.
// Every component reads and mutates tracked data through a State, which
// batches writes to the underlying store.
package state

import (
	_ "embed"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/ayoisaiah/webfocus/internal/debounce"
	"github.com/ayoisaiah/webfocus/internal/metrics"
	"github.com/ayoisaiah/webfocus/internal/models"
	"github.com/ayoisaiah/webfocus/store"
)

// Storage keys. All but keyTrackingSession and keyPomodoroState are also top
// level keys of the export document.
const (
	keyCategories      = "categories"
	keyAssignments     = "categoryAssignments"
	keyRules           = "rules"
	keyRatings         = "categoryProductivityRatings"
	keyTrackedTime     = "trackedTime"
	keyCategoryTime    = "categoryTime"
	keyDailyDomain     = "dailyDomainData"
	keyDailyCategory   = "dailyCategoryData"
	keyHourly          = "hourlyData"
	keyPomodoroStats   = "pomodoroStats"
	keyBlockPage       = "blockPageSettings"
	keyPomodoro        = "pomodoroSettings"
	keyIdleThreshold   = "idleThreshold"
	keyRetention       = "dataRetentionDays"
	keyTimeFormat      = "timeFormat"
	keyPomodoroState   = "pomodoroState"
	keyTrackingSession = "trackingSession"
)

// DefaultSaveDelay is how long batched saves wait for further mutations.
const DefaultSaveDelay = 3 * time.Second

// DefaultIdleThreshold is the idle threshold in seconds on first install.
const DefaultIdleThreshold = 1800

//go:embed default_config.json
var defaultConfig []byte

// Change identifies which part of the configuration was modified.
type Change int

const (
	CategoriesChanged Change = iota + 1
	RulesChanged
	SettingsChanged
	Imported
)

// Defaults is the category configuration merged into empty installs.
type Defaults struct {
	Assignments map[string]string `json:"categoryAssignments"`
	Categories  []string          `json:"categories"`
}

// Options seeds a State. Zero values fall back to the built-in defaults;
// IdleThreshold and Retention fall back only when nil since zero is a valid
// setting for both.
type Options struct {
	Now           func() time.Time
	Defaults      func() (*Defaults, error)
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	BlockPage     *models.BlockPage
	Pomodoro      models.PomodoroSettings
	SaveDelay     time.Duration
	IdleThreshold *int
	Retention     *models.Retention
}

// State is the single owner of configuration and tracked history.
type State struct {
	local     store.DB
	session   store.DB
	opts      Options
	saver     *debounce.Debouncer
	logger    *slog.Logger
	data      models.Snapshot
	pomodoro  *models.PomodoroState
	listeners []func(Change)
	timeFmt   string
	mu        sync.Mutex
	listenMu  sync.Mutex
	saveMu    sync.Mutex
}

// New returns a State persisting to local. The tracking marker lives in
// session, which is expected to be discarded when the process exits.
func New(local, session store.DB, opts Options) *State {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Defaults == nil {
		opts.Defaults = EmbeddedDefaults
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if opts.SaveDelay <= 0 {
		opts.SaveDelay = DefaultSaveDelay
	}

	if opts.IdleThreshold == nil {
		idle := DefaultIdleThreshold
		opts.IdleThreshold = &idle
	}

	if opts.Retention == nil {
		retention := models.DefaultRetention
		opts.Retention = &retention
	}

	if opts.Pomodoro == (models.PomodoroSettings{}) {
		opts.Pomodoro = DefaultPomodoroSettings()
	}

	if opts.BlockPage == nil {
		bp := DefaultBlockPage()
		opts.BlockPage = &bp
	}

	s := &State{
		local:   local,
		session: session,
		opts:    opts,
		logger:  opts.Logger,
	}

	s.data = s.seed()
	s.data.Categories = []string{"Other"}
	s.saver = debounce.New(opts.SaveDelay, func() {
		if err := s.Save(); err != nil {
			s.logger.Error("batched save failed", slog.Any("error", err))
		}
	})

	return s
}

// EmbeddedDefaults decodes the category configuration bundled with the
// binary.
func EmbeddedDefaults() (*Defaults, error) {
	var d Defaults

	if err := json.Unmarshal(defaultConfig, &d); err != nil {
		return nil, err
	}

	return &d, nil
}

// DefaultPomodoroSettings returns the classic 25/5/15 configuration.
func DefaultPomodoroSettings() models.PomodoroSettings {
	return models.PomodoroSettings{
		WorkSeconds:             25 * 60,
		ShortBreakSeconds:       5 * 60,
		LongBreakSeconds:        15 * 60,
		SessionsBeforeLongBreak: 4,
		NotificationsEnabled:    true,
	}
}

// DefaultBlockPage returns the text shown on redirects until customised.
func DefaultBlockPage() models.BlockPage {
	return models.BlockPage{
		Heading:    "Stay focused",
		Message:    "This site is blocked right now.",
		ButtonText: "Go back",
		Quotes: []string{
			"The secret of getting ahead is getting started.",
			"Focus on being productive instead of busy.",
			"Starve your distractions, feed your focus.",
		},
		ShowURL:       true,
		ShowReason:    true,
		ShowRule:      true,
		ShowLimit:     true,
		ShowSchedule:  true,
		ShowButton:    true,
		QuotesEnabled: true,
	}
}

// seed returns an empty snapshot carrying the configured defaults.
func (s *State) seed() models.Snapshot {
	snap := models.Snapshot{
		IdleThreshold: *s.opts.IdleThreshold,
		RetentionDays: *s.opts.Retention,
		Pomodoro:      s.opts.Pomodoro,
		BlockPage:     *s.opts.BlockPage,
	}

	snap.BlockPage.Quotes = append([]string(nil), s.opts.BlockPage.Quotes...)
	snap.EnsureMaps()

	return snap
}

// fields maps each persisted key to the snapshot field it decodes into.
func fields(snap *models.Snapshot) map[string]any {
	return map[string]any{
		keyCategories:    &snap.Categories,
		keyAssignments:   &snap.Assignments,
		keyRules:         &snap.Rules,
		keyRatings:       &snap.Ratings,
		keyTrackedTime:   &snap.TrackedTime,
		keyCategoryTime:  &snap.CategoryTime,
		keyDailyDomain:   &snap.DailyDomain,
		keyDailyCategory: &snap.DailyCategory,
		keyHourly:        &snap.Hourly,
		keyPomodoroStats: &snap.PomodoroStats,
		keyBlockPage:     &snap.BlockPage,
		keyPomodoro:      &snap.Pomodoro,
		keyIdleThreshold: &snap.IdleThreshold,
		keyRetention:     &snap.RetentionDays,
	}
}

// Snapshot returns a deep copy of the current state.
func (s *State) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.data.Clone()
}

// Subscribe registers fn to be called after configuration changes.
func (s *State) Subscribe(fn func(Change)) {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()

	s.listeners = append(s.listeners, fn)
}

func (s *State) notify(c Change) {
	s.listenMu.Lock()
	listeners := append([]func(Change){}, s.listeners...)
	s.listenMu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
}

// commit persists the state immediately and informs subscribers.
func (s *State) commit(c Change) error {
	s.saver.Cancel()

	if err := s.saveBlocking(); err != nil {
		return err
	}

	s.notify(c)

	return nil
}

// IdleThreshold returns the idle threshold in seconds. Values below 1 mean
// the user is always considered active.
func (s *State) IdleThreshold() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.data.IdleThreshold
}

// SetIdleThreshold updates the idle threshold.
func (s *State) SetIdleThreshold(secs int) error {
	s.mu.Lock()
	s.data.IdleThreshold = secs
	s.mu.Unlock()

	return s.commit(SettingsChanged)
}

// Retention returns the configured history retention.
func (s *State) Retention() models.Retention {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.data.RetentionDays
}

// SetRetention updates the history retention.
func (s *State) SetRetention(r models.Retention) error {
	s.mu.Lock()
	s.data.RetentionDays = r
	s.mu.Unlock()

	return s.commit(SettingsChanged)
}

// BlockPage returns the block page settings.
func (s *State) BlockPage() models.BlockPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	bp := s.data.BlockPage
	bp.Quotes = append([]string(nil), bp.Quotes...)

	return bp
}

// SetBlockPage replaces the block page settings.
func (s *State) SetBlockPage(bp models.BlockPage) error {
	s.mu.Lock()
	s.data.BlockPage = bp
	s.mu.Unlock()

	return s.commit(SettingsChanged)
}

// TimeFormat returns the user's preferred clock format ("12h" or "24h").
func (s *State) TimeFormat() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timeFmt == "" {
		return "24h"
	}

	return s.timeFmt
}

// SetTimeFormat stores the preferred clock format.
func (s *State) SetTimeFormat(format string) error {
	s.mu.Lock()
	s.timeFmt = format
	s.mu.Unlock()

	return s.commit(SettingsChanged)
}
