package tracker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/webfocus/internal/host"
	"github.com/ayoisaiah/webfocus/internal/models"
)

var t0 = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.Local)

func TestTransition(t *testing.T) {
	cases := []struct {
		prev       *models.Marker
		wantMarker *models.Marker
		name       string
		sample     Sample
		want       Interval
		after      time.Duration
	}{
		{
			name:       "start",
			sample:     Sample{Active: true, Domain: "a.com"},
			wantMarker: &models.Marker{Domain: "a.com"},
		},
		{
			name:   "stop after 65s",
			prev:   &models.Marker{Domain: "a.com"},
			after:  65 * time.Second,
			sample: Sample{},
			want:   Interval{Domain: "a.com", Seconds: 65},
		},
		{
			name:       "switch credits previous domain",
			prev:       &models.Marker{Domain: "a.com"},
			after:      30 * time.Second,
			sample:     Sample{Active: true, Domain: "b.com"},
			want:       Interval{Domain: "a.com", Seconds: 30},
			wantMarker: &models.Marker{Domain: "b.com"},
		},
		{
			name:       "same domain restarts epoch",
			prev:       &models.Marker{Domain: "a.com"},
			after:      1500 * time.Millisecond,
			sample:     Sample{Active: true, Domain: "a.com"},
			want:       Interval{Domain: "a.com", Seconds: 2},
			wantMarker: &models.Marker{Domain: "a.com"},
		},
		{
			name:       "sub second interval records nothing",
			prev:       &models.Marker{Domain: "a.com"},
			after:      400 * time.Millisecond,
			sample:     Sample{Active: true, Domain: "a.com"},
			wantMarker: &models.Marker{Domain: "a.com"},
		},
		{
			name:   "inactive to inactive",
			sample: Sample{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.prev != nil {
				tc.prev.Since = t0
			}

			now := t0.Add(tc.after)

			next, closed := Transition(tc.sample, tc.prev, now)

			assert.Equal(t, tc.want, closed)

			if tc.wantMarker == nil {
				assert.Nil(t, next)
				return
			}

			require.NotNil(t, next)
			assert.Equal(t, tc.wantMarker.Domain, next.Domain)
			assert.True(t, next.Since.Equal(now))
		})
	}
}

type fakeHost struct {
	idleErr   error
	tabErr    error
	tab       *host.Tab
	idle      host.IdleState
	idleCalls int
}

func (h *fakeHost) QueryIdle(_ context.Context, _ int) (host.IdleState, error) {
	h.idleCalls++
	return h.idle, h.idleErr
}

func (h *fakeHost) ActiveTab(context.Context) (*host.Tab, error) {
	return h.tab, h.tabErr
}

func TestSampler(t *testing.T) {
	focused := &host.Tab{ID: 3, URL: "https://www.go.dev/doc", WindowFocused: true}
	onGoDev := Sample{Active: true, Domain: "go.dev", URL: focused.URL, TabID: 3}

	cases := []struct {
		host      fakeHost
		name      string
		want      Sample
		threshold int
		idleCalls int
	}{
		{
			name:      "active on web page",
			host:      fakeHost{idle: host.Active, tab: focused},
			threshold: 1800,
			want:      onGoDev,
			idleCalls: 1,
		},
		{
			name:      "idle",
			host:      fakeHost{idle: host.Idle, tab: focused},
			threshold: 1800,
			idleCalls: 1,
		},
		{
			name:      "locked",
			host:      fakeHost{idle: host.Locked, tab: focused},
			threshold: 60,
			idleCalls: 1,
		},
		{
			name:      "idle detection disabled",
			host:      fakeHost{idle: host.Idle, tab: focused},
			threshold: IdleDisabled,
			want:      onGoDev,
		},
		{
			name:      "threshold below one",
			host:      fakeHost{idle: host.Idle, tab: focused},
			threshold: 0,
			want:      onGoDev,
		},
		{
			name:      "idle query failure counts as active",
			host:      fakeHost{idleErr: errors.New("boom"), tab: focused},
			threshold: 1800,
			want:      onGoDev,
			idleCalls: 1,
		},
		{
			name:      "tab query failure counts as no tab",
			host:      fakeHost{idle: host.Active, tabErr: errors.New("boom")},
			threshold: 1800,
			idleCalls: 1,
		},
		{
			name:      "window not focused",
			host:      fakeHost{idle: host.Active, tab: &host.Tab{URL: "https://go.dev"}},
			threshold: 1800,
			idleCalls: 1,
		},
		{
			name: "internal page",
			host: fakeHost{
				idle: host.Active,
				tab:  &host.Tab{URL: "chrome://settings", WindowFocused: true},
			},
			threshold: 1800,
			idleCalls: 1,
		},
		{
			name:      "no active tab",
			host:      fakeHost{idle: host.Active},
			threshold: 1800,
			idleCalls: 1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := tc.host
			s := NewSampler(&h, &h, func() int { return tc.threshold }, nil)

			assert.Equal(t, tc.want, s.Sample(context.Background()))
			assert.Equal(t, tc.idleCalls, h.idleCalls)
		})
	}
}

type fakeStore struct {
	marker   *models.Marker
	recorded map[string]int64
	clears   int
	mu       sync.Mutex
}

func newFakeStore() *fakeStore {
	return &fakeStore{recorded: make(map[string]int64)}
}

func (s *fakeStore) Marker() (*models.Marker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.marker == nil {
		return nil, nil
	}

	m := *s.marker

	return &m, nil
}

func (s *fakeStore) SetMarker(m models.Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.marker = &m

	return nil
}

func (s *fakeStore) ClearMarker() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.marker = nil
	s.clears++

	return nil
}

func (s *fakeStore) RecordTime(domain string, secs int64, _ time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recorded[domain] += secs

	return "Other"
}

type scripted struct {
	next  func() Sample
	calls atomic.Int32
}

func (o *scripted) Sample(context.Context) Sample {
	o.calls.Add(1)
	return o.next()
}

type clock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func TestUpdateRecordsElapsedTime(t *testing.T) {
	store := newFakeStore()
	clk := &clock{now: t0}
	sample := Sample{Active: true, Domain: "a.com"}
	obs := &scripted{next: func() Sample { return sample }}

	var seen []Sample

	tr := New(store, obs, Options{
		Now:      clk.Now,
		OnSample: func(_ context.Context, s Sample) { seen = append(seen, s) },
	})

	ctx := context.Background()

	require.NoError(t, tr.Update(ctx))
	assert.Empty(t, store.recorded)
	require.NotNil(t, store.marker)

	clk.Advance(40 * time.Second)
	sample = Sample{Active: true, Domain: "b.com"}
	require.NoError(t, tr.Update(ctx))

	require.NoError(t, tr.Update(ctx))

	clk.Advance(25 * time.Second)
	sample = Sample{}
	require.NoError(t, tr.Update(ctx))

	assert.Equal(t, map[string]int64{"a.com": 40, "b.com": 25}, store.recorded)
	assert.Nil(t, store.marker)
	assert.Len(t, seen, 4)
}

func TestAlarmIsIdempotent(t *testing.T) {
	store := newFakeStore()
	clk := &clock{now: t0}
	obs := &scripted{next: func() Sample { return Sample{Active: true, Domain: "a.com"} }}
	tr := New(store, obs, Options{Now: clk.Now})

	ctx := context.Background()

	require.NoError(t, tr.Update(ctx))
	clk.Advance(15 * time.Second)
	require.NoError(t, tr.Update(ctx))
	require.NoError(t, tr.Update(ctx))
	require.NoError(t, tr.Update(ctx))

	assert.Equal(t, map[string]int64{"a.com": 15}, store.recorded)
}

func TestPanicClearsMarker(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.SetMarker(models.Marker{Since: t0, Domain: "a.com"}))

	obs := &scripted{next: func() Sample { panic("tab vanished") }}
	tr := New(store, obs, Options{Now: func() time.Time { return t0 }})

	err := tr.Update(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "tab vanished")
	assert.Nil(t, store.marker)
	assert.Equal(t, 1, store.clears)
}

func TestTriggerDebouncesBursts(t *testing.T) {
	store := newFakeStore()
	clk := &clock{now: t0}

	var domain atomic.Value
	domain.Store("a.com")

	obs := &scripted{next: func() Sample {
		return Sample{Active: true, Domain: domain.Load().(string)}
	}}

	tr := New(store, obs, Options{Now: clk.Now, Debounce: 30 * time.Millisecond})

	for _, d := range []string{"a.com", "b.com", "c.com"} {
		domain.Store(d)
		tr.Trigger("tabActivated")
	}

	require.Eventually(t, func() bool {
		return obs.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	assert.EqualValues(t, 1, obs.calls.Load())

	m, err := store.Marker()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "c.com", m.Domain)
}

func TestStopClosesOpenInterval(t *testing.T) {
	store := newFakeStore()
	clk := &clock{now: t0}
	obs := &scripted{next: func() Sample { return Sample{Active: true, Domain: "a.com"} }}
	tr := New(store, obs, Options{Now: clk.Now})

	require.NoError(t, tr.Update(context.Background()))
	clk.Advance(10 * time.Second)
	require.NoError(t, tr.Stop())

	assert.Equal(t, map[string]int64{"a.com": 10}, store.recorded)
	assert.Nil(t, store.marker)
}

func TestRunStopsWithContext(t *testing.T) {
	store := newFakeStore()
	obs := &scripted{next: func() Sample { return Sample{} }}
	tr := New(store, obs, Options{})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() { done <- tr.Run(ctx, 10*time.Millisecond) }()

	require.Eventually(t, func() bool {
		return obs.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
