package timer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/webfocus/internal/models"
)

type memStore struct {
	state    *models.PomodoroState
	settings models.PomodoroSettings
	sessions []int64
	saves    int
}

func newMemStore() *memStore {
	return &memStore{settings: models.PomodoroSettings{
		WorkSeconds:             3,
		ShortBreakSeconds:       2,
		LongBreakSeconds:        4,
		SessionsBeforeLongBreak: 2,
		NotificationsEnabled:    true,
	}}
}

func (m *memStore) PomodoroSettings() models.PomodoroSettings { return m.settings }

func (m *memStore) PomodoroState() (models.PomodoroState, bool) {
	if m.state == nil {
		return models.PomodoroState{}, false
	}

	return *m.state, true
}

func (m *memStore) SetPomodoroState(ps models.PomodoroState) {
	m.state = &ps
	m.saves++
}

func (m *memStore) SetPomodoroNotifications(enabled bool) error {
	m.settings.NotificationsEnabled = enabled
	return nil
}

func (m *memStore) RecordPomodoro(_ time.Time, workSecs int64) {
	m.sessions = append(m.sessions, workSecs)
}

type notifier struct {
	titles []string
}

func (n *notifier) Notify(title, _ string) error {
	n.titles = append(n.titles, title)
	return nil
}

type permissions struct {
	err     error
	granted bool
}

func (p permissions) NotificationsGranted(context.Context) (bool, error) {
	return p.granted, p.err
}

func tickN(t *Timer, n int) Status {
	var s Status
	for range n {
		s = t.Tick(context.Background())
	}

	return s
}

func TestWorkCycleRoutesToLongBreak(t *testing.T) {
	store := newMemStore()
	n := &notifier{}
	tm := New(store, Options{Notifier: n, Permissions: permissions{granted: true}})

	s := tm.Start()
	assert.Equal(t, models.Running, s.RunState)
	assert.Equal(t, "00:03", s.Display)

	s = tickN(tm, 3)
	assert.Equal(t, models.ShortBreak, s.Phase)
	assert.Equal(t, models.Stopped, s.RunState)
	assert.Equal(t, []int64{3}, store.sessions)

	tm.Start()
	s = tickN(tm, 2)
	assert.Equal(t, models.Work, s.Phase)
	assert.Equal(t, 2, s.WorkCycle)
	assert.Len(t, store.sessions, 1, "breaks are not credited")

	tm.Start()
	s = tickN(tm, 3)
	assert.Equal(t, models.LongBreak, s.Phase)
	assert.Len(t, store.sessions, 2)

	tm.Start()
	s = tickN(tm, 4)
	assert.Equal(t, models.Work, s.Phase)
	assert.Equal(t, 1, s.WorkCycle)

	assert.Equal(t, []string{
		"Work session is finished",
		"Short break is finished",
		"Work session is finished",
		"Long break is finished",
	}, n.titles)
}

func TestAutoStartBreak(t *testing.T) {
	store := newMemStore()
	tm := New(store, Options{AutoStartBreak: true})

	tm.Start()
	s := tickN(tm, 3)

	assert.Equal(t, models.ShortBreak, s.Phase)
	assert.Equal(t, models.Running, s.RunState)

	s = tickN(tm, 2)
	assert.Equal(t, models.Work, s.Phase)
	assert.Equal(t, models.Stopped, s.RunState)
}

func TestPausedTimerDoesNotTick(t *testing.T) {
	tm := New(newMemStore(), Options{})

	tm.Start()
	tickN(tm, 1)
	tm.Pause()

	s := tickN(tm, 5)
	assert.Equal(t, models.Paused, s.RunState)
	assert.Equal(t, 2, s.Remaining)

	s = tm.Reset()
	assert.Equal(t, models.Stopped, s.RunState)
	assert.Equal(t, 3, s.Remaining)
}

func TestLoadRecoversRunningAsPaused(t *testing.T) {
	store := newMemStore()
	store.state = &models.PomodoroState{
		Phase:     models.ShortBreak,
		RunState:  models.Running,
		Remaining: 1,
		WorkCycle: 1,
	}

	tm := New(store, Options{})
	tm.Load()

	s := tm.Status()
	assert.Equal(t, models.Paused, s.RunState)
	assert.Equal(t, models.ShortBreak, s.Phase)
	assert.Equal(t, 1, s.Remaining)
	assert.Equal(t, models.Paused, store.state.RunState)

	s = tickN(tm, 3)
	assert.Equal(t, 1, s.Remaining, "a recovered timer waits for the user")
}

func TestSkipAndChangePhase(t *testing.T) {
	store := newMemStore()
	tm := New(store, Options{})

	s := tm.Skip()
	assert.Equal(t, models.ShortBreak, s.Phase)
	assert.Empty(t, store.sessions)

	s, err := tm.ChangePhase(models.LongBreak)
	require.NoError(t, err)
	assert.Equal(t, models.LongBreak, s.Phase)
	assert.Equal(t, 4, s.Remaining)

	_, err = tm.ChangePhase("nap")
	assert.ErrorIs(t, err, errInvalidPhase)
}

func TestApplySettings(t *testing.T) {
	store := newMemStore()
	tm := New(store, Options{})

	store.settings.WorkSeconds = 10
	s := tm.ApplySettings()
	assert.Equal(t, 10, s.Remaining)

	tm.Start()
	tickN(tm, 2)

	store.settings.WorkSeconds = 5
	s = tm.ApplySettings()
	assert.Equal(t, 5, s.Remaining)
	assert.Equal(t, models.Running, s.RunState)
}

func TestRevokedPermissionDisablesNotifications(t *testing.T) {
	store := newMemStore()
	n := &notifier{}
	tm := New(store, Options{Notifier: n, Permissions: permissions{granted: false}})

	tm.Start()
	tickN(tm, 3)

	assert.Empty(t, n.titles)
	assert.False(t, store.settings.NotificationsEnabled)
}

func TestReconcileNotifications(t *testing.T) {
	store := newMemStore()

	tm := New(store, Options{Permissions: permissions{granted: true}})
	assert.True(t, tm.ReconcileNotifications(context.Background()))
	assert.True(t, store.settings.NotificationsEnabled)

	tm = New(store, Options{Permissions: permissions{granted: false}})
	assert.False(t, tm.ReconcileNotifications(context.Background()))
	assert.False(t, store.settings.NotificationsEnabled)
}

func TestSetNotifications(t *testing.T) {
	store := newMemStore()
	store.settings.NotificationsEnabled = false

	tm := New(store, Options{Permissions: permissions{granted: false}})
	assert.ErrorIs(t, tm.SetNotifications(context.Background(), true), errNotificationsDenied)
	assert.False(t, store.settings.NotificationsEnabled)

	tm = New(store, Options{Permissions: permissions{err: errors.New("gone")}})
	assert.Error(t, tm.SetNotifications(context.Background(), true))

	tm = New(store, Options{Permissions: permissions{granted: true}})
	require.NoError(t, tm.SetNotifications(context.Background(), true))
	assert.True(t, store.settings.NotificationsEnabled)

	require.NoError(t, tm.SetNotifications(context.Background(), false))
	assert.False(t, store.settings.NotificationsEnabled)
}

func TestRunSessionCmd(t *testing.T) {
	assert.NoError(t, runSessionCmd(context.Background(), ""))
	assert.ErrorIs(t, runSessionCmd(context.Background(), `echo "unterminated`), errSessionCmd)
}
