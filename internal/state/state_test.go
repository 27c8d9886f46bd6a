package state

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/webfocus/internal/models"
	"github.com/ayoisaiah/webfocus/store"
)

var testNow = time.Date(2025, time.March, 10, 10, 0, 0, 0, time.Local)

type fixture struct {
	state   *State
	local   *store.Memory
	session *store.Memory
}

func newFixture(t *testing.T, seed map[string]any) fixture {
	t.Helper()

	local := store.NewMemory()
	session := store.NewMemory()

	if len(seed) > 0 {
		values := make(map[string][]byte, len(seed))

		for k, v := range seed {
			if raw, ok := v.(string); ok {
				values[k] = []byte(raw)
				continue
			}

			b, err := json.Marshal(v)
			require.NoError(t, err)

			values[k] = b
		}

		require.NoError(t, local.Set(values))
	}

	s := New(local, session, Options{
		Now:       func() time.Time { return testNow },
		SaveDelay: 40 * time.Millisecond,
	})

	return fixture{state: s, local: local, session: session}
}

func stored(t *testing.T, db store.DB, key string, v any) {
	t.Helper()

	raw, err := db.Get(key)
	require.NoError(t, err)
	require.Contains(t, raw, key)
	require.NoError(t, json.Unmarshal(raw[key], v))
}

type failingDB struct{ *store.Memory }

func (failingDB) Get(...string) (map[string][]byte, error) {
	return nil, errors.New("storage unavailable")
}

func TestLoadFirstInstallMergesDefaults(t *testing.T) {
	f := newFixture(t, nil)

	f.state.Load()

	cats := f.state.Categories()
	assert.Contains(t, cats, "Other")
	assert.Contains(t, cats, "Development")
	assert.Equal(t, "Development", f.state.CategoryOf("github.com"))
	assert.Equal(t, "Learning", f.state.CategoryOf("en.wikipedia.org"))
	assert.Equal(t, 1800, f.state.IdleThreshold())
	assert.Equal(t, models.DefaultRetention, f.state.Retention())

	var persisted []string
	stored(t, f.local, keyCategories, &persisted)
	assert.Equal(t, cats, persisted)
}

func TestLoadSeedsZeroSettings(t *testing.T) {
	idle := 0
	retention := models.Retention(0)

	s := New(store.NewMemory(), store.NewMemory(), Options{
		Now:           func() time.Time { return testNow },
		IdleThreshold: &idle,
		Retention:     &retention,
	})

	s.Load()

	assert.Equal(t, 0, s.IdleThreshold())
	assert.Equal(t, models.Retention(0), s.Retention())
}

func TestLoadKeepsExistingAssignments(t *testing.T) {
	f := newFixture(t, map[string]any{
		keyCategories:  []string{"Work", "Other"},
		keyAssignments: map[string]string{"github.com": "Work"},
	})

	f.state.Load()

	assert.Equal(t, "Work", f.state.CategoryOf("github.com"))
	assert.Equal(t, []string{"Work", "Other"}, f.state.Categories())
	assert.Equal(t, 1, f.local.Writes(), "nothing to repair, nothing written")
}

func TestLoadClearsStaleMarker(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.state.SetMarker(models.Marker{
		Since:  testNow.Add(-time.Hour),
		Domain: "example.com",
	}))

	f.state.Load()

	m, err := f.state.Marker()
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestLoadRepairsMalformedValues(t *testing.T) {
	f := newFixture(t, map[string]any{
		keyCategories:    []string{"Work"},
		keyAssignments:   map[string]string{"news.ycombinator.com": "Reading"},
		keyRules:         `{"not": "a list"}`,
		keyIdleThreshold: `"soon"`,
		keyRetention:     `"forever"`,
	})

	f.state.Load()

	assert.Empty(t, f.state.Rules())
	assert.Equal(t, 1800, f.state.IdleThreshold())
	assert.True(t, f.state.Retention().Keeps())

	cats := f.state.Categories()
	assert.Contains(t, cats, "Other")
	assert.Contains(t, cats, "Reading")
	assert.Equal(t, "Reading", f.state.CategoryOf("news.ycombinator.com"))
}

func TestLoadAddsCategoriesReferencedByRules(t *testing.T) {
	f := newFixture(t, map[string]any{
		keyCategories:  []string{"Other"},
		keyAssignments: map[string]string{"x.com": "Other"},
		keyRules: []models.Rule{
			{Type: models.BlockCategory, Value: "Games"},
			{Type: "teleport", Value: "nowhere"},
		},
	})

	f.state.Load()

	assert.Contains(t, f.state.Categories(), "Games")
	assert.Len(t, f.state.Rules(), 1)
}

func TestLoadStartsEmptyWhenStoreFails(t *testing.T) {
	local := failingDB{store.NewMemory()}
	s := New(local, store.NewMemory(), Options{})

	s.Load()

	assert.Equal(t, []string{"Other"}, s.Categories())
	assert.Empty(t, s.Snapshot().TrackedTime)
}

func TestRecordTimeAttributesAllAggregates(t *testing.T) {
	f := newFixture(t, map[string]any{
		keyCategories:  []string{"Work", "Other"},
		keyAssignments: map[string]string{"*.example.com": "Work"},
	})

	f.state.Load()

	at := time.Date(2025, time.March, 10, 14, 30, 0, 0, time.Local)
	cat := f.state.RecordTime("app.example.com", 90, at)
	f.state.RecordTime("unknown.org", 30, at)
	f.state.RecordTime("unknown.org", 0, at)

	assert.Equal(t, "Work", cat)

	snap := f.state.Snapshot()
	assert.Equal(t, models.Seconds{"app.example.com": 90, "unknown.org": 30}, snap.TrackedTime)
	assert.Equal(t, models.Seconds{"Work": 90, "Other": 30}, snap.CategoryTime)
	assert.Equal(t, int64(90), snap.DailyDomain["2025-03-10"]["app.example.com"])
	assert.Equal(t, int64(30), snap.DailyCategory["2025-03-10"]["Other"])
	assert.Equal(t, int64(120), snap.Hourly["2025-03-10"]["14"])
}

func TestBatchedSavesCoalesce(t *testing.T) {
	f := newFixture(t, map[string]any{
		keyCategories:  []string{"Other"},
		keyAssignments: map[string]string{"a.com": "Other"},
	})

	f.state.Load()

	base := f.local.Writes()

	f.state.RecordTime("a.com", 10, testNow)
	f.state.RecordTime("a.com", 15, testNow)
	f.state.RecordTime("b.com", 5, testNow)

	require.Eventually(t, func() bool {
		return f.local.Writes() == base+1
	}, time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, base+1, f.local.Writes())

	var tracked models.Seconds
	stored(t, f.local, keyTrackedTime, &tracked)
	assert.Equal(t, models.Seconds{"a.com": 25, "b.com": 5}, tracked)
}

func TestSaveDroppedWhileInFlight(t *testing.T) {
	f := newFixture(t, nil)

	f.state.saveMu.Lock()
	err := f.state.Save()
	f.state.saveMu.Unlock()

	require.NoError(t, err)
	assert.Zero(t, f.local.Writes())

	require.NoError(t, f.state.Save())
	assert.Equal(t, 1, f.local.Writes())
}

func TestFlushWritesPendingChanges(t *testing.T) {
	f := newFixture(t, map[string]any{
		keyCategories:  []string{"Other"},
		keyAssignments: map[string]string{"a.com": "Other"},
	})

	f.state.Load()

	f.state.RecordTime("a.com", 10, testNow)
	require.NoError(t, f.state.Flush())

	var tracked models.Seconds
	stored(t, f.local, keyTrackedTime, &tracked)
	assert.Equal(t, int64(10), tracked["a.com"])
}

func TestPruneOldData(t *testing.T) {
	f := newFixture(t, map[string]any{
		keyCategories:  []string{"Other"},
		keyAssignments: map[string]string{"a.com": "Other"},
		keyDailyDomain: models.Daily{
			"2025-03-07": {"a.com": 1},
			"2025-03-09": {"a.com": 2},
			"2025-03-10": {"a.com": 3},
		},
		keyHourly: models.Daily{
			"2025-03-07": {"09": 1},
			"2025-03-10": {"09": 3},
		},
	})

	f.state.Load()

	base := f.local.Writes()

	removed, err := f.state.PruneOldData(2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, base+1, f.local.Writes())

	snap := f.state.Snapshot()
	assert.NotContains(t, snap.DailyDomain, "2025-03-07")
	assert.Contains(t, snap.DailyDomain, "2025-03-09")
	assert.Contains(t, snap.DailyDomain, "2025-03-10")
	assert.NotContains(t, snap.Hourly, "2025-03-07")

	removed, err = f.state.PruneOldData(2)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, base+1, f.local.Writes(), "nothing pruned, nothing saved")

	removed, err = f.state.PruneOldData(models.Forever)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRenameCategoryCascades(t *testing.T) {
	f := newFixture(t, map[string]any{
		keyCategories:  []string{"Social", "Other"},
		keyAssignments: map[string]string{"x.com": "Social"},
		keyRules: []models.Rule{
			{Type: models.LimitCategory, Value: "Social", LimitSeconds: 600},
		},
		keyRatings:     map[string]int{"Social": -1},
		keyTrackedTime: models.Seconds{"x.com": 40},
		keyDailyDomain: models.Daily{"2025-03-10": {"x.com": 40}},
	})

	f.state.Load()

	var changes []Change
	f.state.Subscribe(func(c Change) { changes = append(changes, c) })

	require.NoError(t, f.state.RenameCategory("social", "Distractions"))

	snap := f.state.Snapshot()
	assert.Equal(t, []string{"Distractions", "Other"}, snap.Categories)
	assert.Equal(t, "Distractions", snap.Assignments["x.com"])
	assert.Equal(t, "Distractions", snap.Rules[0].Value)
	assert.Equal(t, map[string]int{"Distractions": -1}, snap.Ratings)
	assert.Equal(t, models.Seconds{"Distractions": 40}, snap.CategoryTime)
	assert.Equal(t, int64(40), snap.DailyCategory["2025-03-10"]["Distractions"])
	assert.Equal(t, []Change{CategoriesChanged}, changes)
}

func TestDeleteCategoryCascades(t *testing.T) {
	f := newFixture(t, map[string]any{
		keyCategories:  []string{"Social", "Other"},
		keyAssignments: map[string]string{"x.com": "Social"},
		keyRules: []models.Rule{
			{Type: models.BlockCategory, Value: "Social"},
			{Type: models.BlockURL, Value: "y.com"},
		},
		keyTrackedTime: models.Seconds{"x.com": 40},
	})

	f.state.Load()

	require.NoError(t, f.state.DeleteCategory("Social"))

	snap := f.state.Snapshot()
	assert.Equal(t, []string{"Other"}, snap.Categories)
	assert.Equal(t, "Other", snap.Assignments["x.com"])
	assert.Equal(t, []models.Rule{{Type: models.BlockURL, Value: "y.com"}}, snap.Rules)
	assert.Equal(t, models.Seconds{"Other": 40}, snap.CategoryTime)
}

func TestCategoryErrors(t *testing.T) {
	f := newFixture(t, map[string]any{
		keyCategories:  []string{"Work", "Other"},
		keyAssignments: map[string]string{"a.com": "Work"},
	})

	f.state.Load()

	assert.ErrorIs(t, f.state.AddCategory("  "), errEmptyCategory)
	assert.ErrorIs(t, f.state.AddCategory("work"), errCategoryExists)
	assert.ErrorIs(t, f.state.RenameCategory("Other", "Misc"), errFallbackProtected)
	assert.ErrorIs(t, f.state.DeleteCategory("other"), errFallbackProtected)
	assert.ErrorIs(t, f.state.RenameCategory("Play", "Fun"), errCategoryNotFound)
	assert.ErrorIs(t, f.state.RenameCategory("Work", "other"), errCategoryExists)
	assert.ErrorIs(t, f.state.Assign("b.com", "Play"), errCategoryNotFound)
	assert.ErrorIs(t, f.state.Assign("not a domain", "Work"), errInvalidPattern)
	assert.ErrorIs(t, f.state.Unassign("b.com"), errAssignmentNotFound)
	assert.ErrorIs(t, f.state.SetRating("Work", 3), errInvalidRating)

	require.NoError(t, f.state.RenameCategory("Work", "WORK"))
	assert.Equal(t, []string{"WORK", "Other"}, f.state.Categories())
}

func TestAssignNormalisesPattern(t *testing.T) {
	f := newFixture(t, map[string]any{
		keyCategories:  []string{"Work", "Other"},
		keyAssignments: map[string]string{"a.com": "Work"},
		keyTrackedTime: models.Seconds{"docs.b.com": 10},
	})

	f.state.Load()

	require.NoError(t, f.state.Assign("https://www.B.com/path", "work"))

	assert.Equal(t, "Work", f.state.Assignments()["b.com"])
	assert.Equal(t, models.Seconds{"Work": 10}, f.state.Snapshot().CategoryTime)

	require.NoError(t, f.state.Unassign("b.com"))
	assert.NotContains(t, f.state.Assignments(), "b.com")
}

func TestAddRuleValidation(t *testing.T) {
	cases := []struct {
		name string
		rule models.Rule
		want error
	}{
		{
			name: "unknown type",
			rule: models.Rule{Type: "nope", Value: "a.com"},
			want: errInvalidRuleType,
		},
		{
			name: "empty value",
			rule: models.Rule{Type: models.BlockURL, Value: " "},
			want: errEmptyRuleValue,
		},
		{
			name: "unknown category",
			rule: models.Rule{Type: models.BlockCategory, Value: "Games"},
			want: errCategoryNotFound,
		},
		{
			name: "zero limit",
			rule: models.Rule{Type: models.LimitURL, Value: "a.com"},
			want: errInvalidLimit,
		},
		{
			name: "negative limit",
			rule: models.Rule{Type: models.LimitURL, Value: "a.com", LimitSeconds: -5},
			want: errInvalidLimit,
		},
		{
			name: "start without end",
			rule: models.Rule{Type: models.BlockURL, Value: "a.com", StartTime: "09:00"},
			want: errIncompleteSchedule,
		},
		{
			name: "bad clock",
			rule: models.Rule{Type: models.BlockURL, Value: "a.com", StartTime: "9am", EndTime: "17:00"},
			want: errInvalidClock,
		},
		{
			name: "bad day",
			rule: models.Rule{Type: models.BlockURL, Value: "a.com", Days: []string{"Funday"}},
			want: errInvalidDay,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.state.Load()

			assert.ErrorIs(t, f.state.AddRule(tc.rule), tc.want)
		})
	}
}

func TestAddRuleShortLimit(t *testing.T) {
	f := newFixture(t, nil)
	f.state.Load()

	rule := models.Rule{Type: models.LimitURL, Value: "x.com", LimitSeconds: 30}
	require.NoError(t, f.state.AddRule(rule))
	assert.Equal(t, []models.Rule{rule}, f.state.Rules())
}

func TestAddRuleNormalises(t *testing.T) {
	f := newFixture(t, nil)
	f.state.Load()

	require.NoError(t, f.state.AddRule(models.Rule{
		Type:      models.BlockURL,
		Value:     "https://www.Reddit.com/r/golang",
		StartTime: "09:00",
		EndTime:   "17:00",
		Days:      []string{"friday", "Mon", "mon"},
	}))

	require.NoError(t, f.state.AddRule(models.Rule{
		Type:         models.LimitCategory,
		Value:        "social media",
		LimitSeconds: 3600,
		Days:         []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	}))

	want := []models.Rule{
		{
			Type:      models.BlockURL,
			Value:     "reddit.com",
			StartTime: "09:00",
			EndTime:   "17:00",
			Days:      []string{"Mon", "Fri"},
		},
		{
			Type:         models.LimitCategory,
			Value:        "Social Media",
			LimitSeconds: 3600,
		},
	}

	if diff := cmp.Diff(want, f.state.Rules()); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}

	err := f.state.AddRule(models.Rule{Type: models.BlockURL, Value: "REDDIT.com"})
	assert.ErrorIs(t, err, errDuplicateRule)

	require.NoError(t, f.state.UpdateRule(
		models.Rule{Type: models.BlockURL, Value: "reddit.com"},
		models.Rule{Type: models.BlockURL, Value: "reddit.com"},
	))
	assert.False(t, f.state.Rules()[0].HasSchedule())

	require.NoError(t, f.state.RemoveRule(models.BlockURL, "www.reddit.com"))
	assert.Len(t, f.state.Rules(), 1)
	assert.ErrorIs(t, f.state.RemoveRule(models.BlockURL, "reddit.com"), errRuleNotFound)
}

func TestExportImportRoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	f.state.Load()

	f.state.RecordTime("github.com", 120, testNow)
	require.NoError(t, f.state.AddRule(models.Rule{Type: models.BlockURL, Value: "x.com"}))
	require.NoError(t, f.state.SetRetention(models.Forever))

	exported, err := f.state.Export()
	require.NoError(t, err)

	g := newFixture(t, nil)
	g.state.Load()

	var changes []Change
	g.state.Subscribe(func(c Change) { changes = append(changes, c) })

	require.NoError(t, g.state.Import(exported))

	again, err := g.state.Export()
	require.NoError(t, err)

	assert.JSONEq(t, string(exported), string(again))
	assert.Equal(t, []Change{Imported}, changes)
	assert.True(t, g.state.Retention().Keeps())
}

func TestImportRejectsInvalidDocuments(t *testing.T) {
	f := newFixture(t, nil)
	f.state.Load()

	valid := map[string]any{
		"categories":          []string{"Other"},
		"categoryAssignments": map[string]string{},
		"rules":               []models.Rule{},
		"trackedTime":         map[string]int{},
		"categoryTime":        map[string]int{},
		"dailyDomainData":     map[string]any{},
		"dailyCategoryData":   map[string]any{},
		"hourlyData":          map[string]any{},
	}

	encode := func(mutate func(map[string]any)) []byte {
		doc := make(map[string]any, len(valid))
		for k, v := range valid {
			doc[k] = v
		}

		mutate(doc)

		b, err := json.Marshal(doc)
		require.NoError(t, err)

		return b
	}

	before, err := f.state.Export()
	require.NoError(t, err)

	assert.ErrorIs(t, f.state.Import([]byte("[1,2]")), errImportDecode)
	assert.ErrorIs(t, f.state.Import(encode(func(d map[string]any) {
		delete(d, "rules")
	})), errImportMissingKey)
	assert.ErrorIs(t, f.state.Import(encode(func(d map[string]any) {
		d["categories"] = "Work"
	})), errImportKeyType)
	assert.ErrorIs(t, f.state.Import(encode(func(d map[string]any) {
		d["pomodoroStats"] = []int{1}
	})), errImportKeyType)

	after, err := f.state.Export()
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after), "failed imports leave state untouched")

	require.NoError(t, f.state.Import(encode(func(map[string]any) {})))
	assert.Equal(t, []string{"Other"}, f.state.Categories())
	assert.Empty(t, f.state.Assignments())
}

func TestPomodoroPersistence(t *testing.T) {
	f := newFixture(t, nil)
	f.state.Load()

	_, ok := f.state.PomodoroState()
	assert.False(t, ok)

	f.state.SetPomodoroState(models.PomodoroState{
		Phase:     models.Work,
		RunState:  models.Running,
		Remaining: 600,
		WorkCycle: 2,
	})
	f.state.RecordPomodoro(testNow, 1500)
	f.state.RecordPomodoro(testNow, 1500)
	require.NoError(t, f.state.Flush())

	g := New(f.local, store.NewMemory(), Options{})
	g.Load()

	ps, ok := g.PomodoroState()
	require.True(t, ok)
	assert.Equal(t, 600, ps.Remaining)

	day, all := g.PomodoroStats("2025-03-10")
	assert.Equal(t, models.PomodoroDay{CompletedSessions: 2, WorkSeconds: 3000}, day)
	assert.Equal(t, day, all)

	assert.ErrorIs(t, g.SetPomodoroSettings(models.PomodoroSettings{WorkSeconds: 60}), errInvalidPomodoro)
}
