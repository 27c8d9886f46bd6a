// Package timer operates the pomodoro countdown and recovers interrupted
// timers in a paused state
package timer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ayoisaiah/webfocus/internal/host"
	"github.com/ayoisaiah/webfocus/internal/models"
	"github.com/ayoisaiah/webfocus/internal/timeutil"
)

// persistEvery is how often a running countdown is written to the store.
const persistEvery = 30

// Store persists timer position, settings and completed sessions.
type Store interface {
	PomodoroSettings() models.PomodoroSettings
	PomodoroState() (models.PomodoroState, bool)
	SetPomodoroState(ps models.PomodoroState)
	SetPomodoroNotifications(enabled bool) error
	RecordPomodoro(at time.Time, workSecs int64)
}

// Options configures a Timer.
type Options struct {
	Now            func() time.Time
	Logger         *slog.Logger
	Notifier       Notifier
	Permissions    host.Permissions
	SessionCmd     string
	AutoStartBreak bool
	AutoStartWork  bool
}

// Status is the timer position reported to UI surfaces.
type Status struct {
	Phase                   models.Phase    `json:"phase"`
	RunState                models.RunState `json:"runState"`
	Display                 string          `json:"display"`
	Remaining               int             `json:"remainingSeconds"`
	Duration                int             `json:"durationSeconds"`
	WorkCycle               int             `json:"workCycle"`
	SessionsBeforeLongBreak int             `json:"sessionsBeforeLongBreak"`
	NotificationsEnabled    bool            `json:"notificationsEnabled"`
}

// completion describes a finished phase whose side effects run outside the
// timer lock.
type completion struct {
	finished models.Phase
	next     models.Phase
}

// Timer is the pomodoro state machine.
type Timer struct {
	store  Store
	opts   Options
	logger *slog.Logger
	state  models.PomodoroState
	ticks  int
	mu     sync.Mutex
}

// New returns a stopped Timer at the start of a work session.
func New(store Store, opts Options) *Timer {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	t := &Timer{
		store:  store,
		opts:   opts,
		logger: opts.Logger,
	}

	t.state = t.fresh(models.Work, 1)

	return t
}

func (t *Timer) fresh(phase models.Phase, cycle int) models.PomodoroState {
	return models.PomodoroState{
		Phase:     phase,
		RunState:  models.Stopped,
		Remaining: t.duration(phase),
		WorkCycle: cycle,
	}
}

func (t *Timer) duration(phase models.Phase) int {
	s := t.store.PomodoroSettings()

	switch phase {
	case models.ShortBreak:
		return s.ShortBreakSeconds
	case models.LongBreak:
		return s.LongBreakSeconds
	default:
		return s.WorkSeconds
	}
}

// Load restores the persisted position. A timer that was running when the
// process stopped comes back paused.
func (t *Timer) Load() {
	t.mu.Lock()
	defer t.mu.Unlock()

	ps, ok := t.store.PomodoroState()
	if !ok {
		return
	}

	if !ps.Phase.Valid() {
		ps.Phase = models.Work
	}

	if ps.WorkCycle < 1 {
		ps.WorkCycle = 1
	}

	if ps.Remaining <= 0 || ps.Remaining > t.duration(ps.Phase) {
		ps.Remaining = t.duration(ps.Phase)
	}

	changed := false

	if ps.RunState == models.Running {
		ps.RunState = models.Paused
		changed = true

		t.logger.Info(
			"recovered interrupted pomodoro as paused",
			slog.String("phase", string(ps.Phase)),
			slog.Int("remaining", ps.Remaining),
		)
	}

	t.state = ps

	if changed {
		t.persistLocked()
	}
}

// Status reports the current position.
func (t *Timer) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.statusLocked()
}

func (t *Timer) statusLocked() Status {
	s := t.store.PomodoroSettings()

	return Status{
		Phase:                   t.state.Phase,
		RunState:                t.state.RunState,
		Remaining:               t.state.Remaining,
		Display:                 timeutil.FormatClockSeconds(t.state.Remaining),
		Duration:                t.duration(t.state.Phase),
		WorkCycle:               t.state.WorkCycle,
		SessionsBeforeLongBreak: s.SessionsBeforeLongBreak,
		NotificationsEnabled:    s.NotificationsEnabled,
	}
}

// Start runs the countdown from where it stopped.
func (t *Timer) Start() Status {
	return t.transition(func() {
		t.state.RunState = models.Running
	})
}

// Pause suspends a running countdown.
func (t *Timer) Pause() Status {
	return t.transition(func() {
		if t.state.RunState == models.Running {
			t.state.RunState = models.Paused
		}
	})
}

// Reset stops the timer and restores the full length of the current phase.
func (t *Timer) Reset() Status {
	return t.transition(func() {
		t.state = t.fresh(t.state.Phase, t.state.WorkCycle)
	})
}

// ChangePhase stops the timer and switches to phase.
func (t *Timer) ChangePhase(phase models.Phase) (Status, error) {
	if !phase.Valid() {
		return t.Status(), errInvalidPhase.Fmt(phase)
	}

	return t.transition(func() {
		t.state = t.fresh(phase, t.state.WorkCycle)
	}), nil
}

// Skip ends the current phase without crediting it and moves to the next.
func (t *Timer) Skip() Status {
	return t.transition(func() {
		t.advanceLocked()
	})
}

// ApplySettings picks up new phase lengths. A stopped timer adopts the new
// length of its phase; a started one keeps counting down.
func (t *Timer) ApplySettings() Status {
	return t.transition(func() {
		if t.state.RunState == models.Stopped {
			t.state.Remaining = t.duration(t.state.Phase)
		} else if full := t.duration(t.state.Phase); t.state.Remaining > full {
			t.state.Remaining = full
		}
	})
}

func (t *Timer) transition(fn func()) Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	fn()
	t.persistLocked()

	return t.statusLocked()
}

// Tick advances a running countdown by one second and completes the phase
// when it reaches zero.
func (t *Timer) Tick(ctx context.Context) Status {
	t.mu.Lock()

	if t.state.RunState != models.Running {
		status := t.statusLocked()
		t.mu.Unlock()

		return status
	}

	t.state.Remaining--
	t.ticks++

	var done *completion

	if t.state.Remaining <= 0 {
		done = t.completeLocked()
		t.persistLocked()
	} else if t.ticks%persistEvery == 0 {
		t.persistLocked()
	}

	status := t.statusLocked()
	t.mu.Unlock()

	if done != nil {
		t.finish(ctx, *done)
	}

	return status
}

// completeLocked credits a finished work session and moves to the next phase.
func (t *Timer) completeLocked() *completion {
	finished := t.state.Phase

	if finished == models.Work {
		t.store.RecordPomodoro(t.opts.Now(), int64(t.duration(models.Work)))
	}

	t.advanceLocked()

	switch {
	case t.state.Phase == models.Work && t.opts.AutoStartWork,
		t.state.Phase != models.Work && t.opts.AutoStartBreak:
		t.state.RunState = models.Running
	}

	t.logger.Info(
		"pomodoro phase complete",
		slog.String("finished", string(finished)),
		slog.String("next", string(t.state.Phase)),
		slog.Int("cycle", t.state.WorkCycle),
	)

	return &completion{finished: finished, next: t.state.Phase}
}

// advanceLocked moves to the phase after the current one. Every Nth work
// session is followed by a long break, which restarts the cycle count.
func (t *Timer) advanceLocked() {
	every := t.store.PomodoroSettings().SessionsBeforeLongBreak
	if every < 1 {
		every = 1
	}

	switch t.state.Phase {
	case models.Work:
		if t.state.WorkCycle >= every {
			t.state = t.fresh(models.LongBreak, t.state.WorkCycle)
		} else {
			t.state = t.fresh(models.ShortBreak, t.state.WorkCycle)
		}
	case models.ShortBreak:
		t.state = t.fresh(models.Work, t.state.WorkCycle+1)
	default:
		t.state = t.fresh(models.Work, 1)
	}
}

func (t *Timer) persistLocked() {
	t.store.SetPomodoroState(t.state)
}

// finish notifies the user and runs the session command.
func (t *Timer) finish(ctx context.Context, c completion) {
	if t.notificationsAllowed(ctx) && t.opts.Notifier != nil {
		err := t.opts.Notifier.Notify(
			phaseTitles[c.finished]+" is finished",
			phaseMessages[c.next],
		)
		if err != nil {
			t.logger.Warn("unable to display notification", slog.Any("error", err))
		}
	}

	if t.opts.SessionCmd != "" {
		go func() {
			if err := runSessionCmd(ctx, t.opts.SessionCmd); err != nil {
				t.logger.Warn("session command failed", slog.Any("error", err))
			}
		}()
	}
}

// notificationsAllowed checks the user setting against the live permission.
// A setting left enabled after the permission was revoked is switched off.
func (t *Timer) notificationsAllowed(ctx context.Context) bool {
	if !t.store.PomodoroSettings().NotificationsEnabled {
		return false
	}

	if t.opts.Permissions == nil {
		return true
	}

	granted, err := t.opts.Permissions.NotificationsGranted(ctx)
	if err != nil {
		t.logger.Warn("checking notification permission failed", slog.Any("error", err))
		return false
	}

	if granted {
		return true
	}

	t.logger.Info("notification permission revoked, disabling pomodoro notifications")

	if err := t.store.SetPomodoroNotifications(false); err != nil {
		t.logger.Error("persisting notification setting failed", slog.Any("error", err))
	}

	return false
}

// ReconcileNotifications re-checks the browser permission after the browser
// reported a change and reports whether notifications remain enabled.
func (t *Timer) ReconcileNotifications(ctx context.Context) bool {
	return t.notificationsAllowed(ctx)
}

// SetNotifications changes the notification setting. Enabling requires the
// browser permission.
func (t *Timer) SetNotifications(ctx context.Context, enabled bool) error {
	if enabled && t.opts.Permissions != nil {
		granted, err := t.opts.Permissions.NotificationsGranted(ctx)
		if err != nil {
			return err
		}

		if !granted {
			if err := t.store.SetPomodoroNotifications(false); err != nil {
				return err
			}

			return errNotificationsDenied
		}
	}

	return t.store.SetPomodoroNotifications(enabled)
}

// Run ticks the timer every second until ctx is done. onTick receives the
// status after each tick.
func (t *Timer) Run(ctx context.Context, onTick func(Status)) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.mu.Lock()
			t.persistLocked()
			t.mu.Unlock()

			return nil
		case <-ticker.C:
			status := t.Tick(ctx)

			if onTick != nil {
				onTick(status)
			}
		}
	}
}
