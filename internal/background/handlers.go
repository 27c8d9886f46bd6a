package background

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ayoisaiah/webfocus/internal/message"
	"github.com/ayoisaiah/webfocus/internal/models"
	"github.com/ayoisaiah/webfocus/internal/nativemsg"
	"github.com/ayoisaiah/webfocus/internal/rules"
	"github.com/ayoisaiah/webfocus/timer"
)

// Browser events that may change what the user is looking at.
var trackingEvents = []string{
	"tabActivated",
	"tabUpdated",
	"windowFocusChanged",
	"idleStateChanged",
}

type (
	navigationResult struct {
		RedirectURL string `json:"redirectUrl,omitempty"`
		Redirect    bool   `json:"redirect"`
	}

	phaseRequest struct {
		Phase models.Phase `json:"phase"`
	}

	notificationRequest struct {
		Enabled bool `json:"enabled"`
	}

	dateRequest struct {
		Date string `json:"date"`
	}

	pomodoroStatsResult struct {
		Date    string             `json:"date"`
		Day     models.PomodoroDay `json:"day"`
		AllTime models.PomodoroDay `json:"allTime"`
	}

	trackedDataResult struct {
		Domains    models.Seconds `json:"domains"`
		Categories models.Seconds `json:"categories"`
		Date       string         `json:"date"`
	}

	categoryRequest struct {
		Name string `json:"name"`
	}

	renameRequest struct {
		From string `json:"from"`
		To   string `json:"to"`
	}

	assignRequest struct {
		Domain   string `json:"domain"`
		Category string `json:"category"`
	}

	ratingRequest struct {
		Category string `json:"category"`
		Rating   int    `json:"rating"`
	}

	updateRuleRequest struct {
		Old     models.Rule `json:"old"`
		Updated models.Rule `json:"updated"`
	}

	removeRuleRequest struct {
		Type  models.RuleType `json:"type"`
		Value string          `json:"value"`
	}

	configResult struct {
		Assignments map[string]string `json:"categoryAssignments"`
		Ratings     map[string]int    `json:"categoryProductivityRatings"`
		Categories  []string          `json:"categories"`
		Rules       []models.Rule     `json:"rules"`
	}

	settings struct {
		IdleThreshold *int                     `json:"idleThreshold,omitempty"`
		Retention     *models.Retention        `json:"dataRetentionDays,omitempty"`
		BlockPage     *models.BlockPage        `json:"blockPageSettings,omitempty"`
		Pomodoro      *models.PomodoroSettings `json:"pomodoroSettings,omitempty"`
		TimeFormat    *string                  `json:"timeFormat,omitempty"`
	}
)

func (s *Service) register() {
	d := s.dispatcher

	for _, event := range trackingEvents {
		d.Handle(event, func(context.Context, nativemsg.Envelope) (any, error) {
			s.tracker.Trigger(event)
			return nil, nil
		})
	}

	d.Handle("permissionsChanged", message.Notify(func(ctx context.Context) {
		s.timer.ReconcileNotifications(ctx)
	}))

	d.Handle("checkNavigation", message.Typed(s.checkNavigation))

	d.Handle("uiSurfaceOpened", func(context.Context, nativemsg.Envelope) (any, error) {
		s.surfaces.Add(1)
		return s.timer.Status(), nil
	})

	d.Handle("uiSurfaceClosed", message.Notify(func(context.Context) {
		if s.surfaces.Add(-1) < 0 {
			s.surfaces.Store(0)
		}
	}))

	s.registerConfig()
	s.registerPomodoro()
}

func (s *Service) checkNavigation(_ context.Context, req rules.Request) (any, error) {
	d, hit := s.engine.CheckNavigation(req)
	if !hit {
		return navigationResult{}, nil
	}

	s.engine.Record(d)

	return navigationResult{
		Redirect:    true,
		RedirectURL: d.RedirectURL(s.engine.BlockPage()),
	}, nil
}

// registerConfig installs the configuration and history handlers used by
// the options and dashboard pages.
func (s *Service) registerConfig() {
	d := s.dispatcher

	d.Handle("categoriesUpdated", message.Notify(func(context.Context) {
		s.state.RecomputeCategoryTime()
		s.engine.Refresh()
	}))

	d.Handle("rulesUpdated", message.Notify(func(context.Context) {
		s.engine.Refresh()
	}))

	d.Handle("importedData", message.Notify(func(context.Context) {
		s.reload()
	}))

	d.Handle("getConfig", func(context.Context, nativemsg.Envelope) (any, error) {
		return configResult{
			Categories:  s.state.Categories(),
			Assignments: s.state.Assignments(),
			Rules:       s.state.Rules(),
			Ratings:     s.state.Ratings(),
		}, nil
	})

	d.Handle("addCategory", message.Typed(func(_ context.Context, r categoryRequest) (any, error) {
		return nil, s.state.AddCategory(r.Name)
	}))

	d.Handle("renameCategory", message.Typed(func(_ context.Context, r renameRequest) (any, error) {
		return nil, s.state.RenameCategory(r.From, r.To)
	}))

	d.Handle("deleteCategory", message.Typed(func(_ context.Context, r categoryRequest) (any, error) {
		return nil, s.state.DeleteCategory(r.Name)
	}))

	d.Handle("assignDomain", message.Typed(func(_ context.Context, r assignRequest) (any, error) {
		return nil, s.state.Assign(r.Domain, r.Category)
	}))

	d.Handle("unassignDomain", message.Typed(func(_ context.Context, r assignRequest) (any, error) {
		return nil, s.state.Unassign(r.Domain)
	}))

	d.Handle("setCategoryRating", message.Typed(func(_ context.Context, r ratingRequest) (any, error) {
		return nil, s.state.SetRating(r.Category, r.Rating)
	}))

	d.Handle("addRule", message.Typed(func(_ context.Context, r models.Rule) (any, error) {
		return nil, s.state.AddRule(r)
	}))

	d.Handle("updateRule", message.Typed(func(_ context.Context, r updateRuleRequest) (any, error) {
		return nil, s.state.UpdateRule(r.Old, r.Updated)
	}))

	d.Handle("removeRule", message.Typed(func(_ context.Context, r removeRuleRequest) (any, error) {
		return nil, s.state.RemoveRule(r.Type, r.Value)
	}))

	d.Handle("getTrackedData", message.Typed(func(_ context.Context, r dateRequest) (any, error) {
		date := r.Date
		if date == "" {
			date = s.state.Today()
		}

		return trackedDataResult{
			Date:       date,
			Domains:    s.state.DomainsOn(date),
			Categories: s.state.CategoriesOn(date),
		}, nil
	}))

	d.Handle("exportData", func(context.Context, nativemsg.Envelope) (any, error) {
		doc, err := s.state.Export()
		if err != nil {
			return nil, err
		}

		return json.RawMessage(doc), nil
	})

	d.Handle("importData", func(_ context.Context, env nativemsg.Envelope) (any, error) {
		if err := s.state.Import(env.Payload); err != nil {
			return nil, err
		}

		s.timer.ApplySettings()

		return nil, nil
	})

	d.Handle("getSettings", func(context.Context, nativemsg.Envelope) (any, error) {
		return s.settings(), nil
	})

	d.Handle("updateSettings", message.Typed(s.updateSettings))
}

func (s *Service) settings() settings {
	idle := s.state.IdleThreshold()
	retention := s.state.Retention()
	bp := s.state.BlockPage()
	ps := s.state.PomodoroSettings()
	format := s.state.TimeFormat()

	return settings{
		IdleThreshold: &idle,
		Retention:     &retention,
		BlockPage:     &bp,
		Pomodoro:      &ps,
		TimeFormat:    &format,
	}
}

// updateSettings applies the fields present in req. Fields are applied in
// order and the first failure stops the update.
func (s *Service) updateSettings(ctx context.Context, req settings) (any, error) {
	if req.IdleThreshold != nil {
		if err := s.state.SetIdleThreshold(*req.IdleThreshold); err != nil {
			return nil, err
		}

		s.tracker.Trigger("idleThresholdChanged")
	}

	if req.Retention != nil {
		if err := s.state.SetRetention(*req.Retention); err != nil {
			return nil, err
		}
	}

	if req.BlockPage != nil {
		if err := s.state.SetBlockPage(*req.BlockPage); err != nil {
			return nil, err
		}
	}

	if req.TimeFormat != nil {
		if err := s.state.SetTimeFormat(*req.TimeFormat); err != nil {
			return nil, err
		}
	}

	if req.Pomodoro != nil {
		if _, err := s.applyPomodoroSettings(ctx, *req.Pomodoro); err != nil {
			return nil, err
		}
	}

	return s.settings(), nil
}

// reload re-reads state after another surface replaced it wholesale. The
// open interval is closed and pending changes are saved first, then tracking
// resumes from a fresh sample.
func (s *Service) reload() {
	if err := s.tracker.Stop(); err != nil {
		s.logger.Error("closing tracking interval failed", slog.Any("error", err))
	}

	if err := s.state.Flush(); err != nil {
		s.logger.Error("saving before reload failed", slog.Any("error", err))
	}

	s.state.Load()
	s.engine.Refresh()
	s.timer.ApplySettings()
	s.tracker.Trigger("reload")
}

func (s *Service) registerPomodoro() {
	d := s.dispatcher

	status := func(fn func() timer.Status) message.HandlerFunc {
		return func(context.Context, nativemsg.Envelope) (any, error) {
			return fn(), nil
		}
	}

	d.Handle("getPomodoroStatus", status(s.timer.Status))
	d.Handle("startPomodoro", status(s.timer.Start))
	d.Handle("pausePomodoro", status(s.timer.Pause))
	d.Handle("resetPomodoro", status(s.timer.Reset))
	d.Handle("skipPomodoro", status(s.timer.Skip))

	d.Handle("changePomodoroPhase", message.Typed(func(_ context.Context, r phaseRequest) (any, error) {
		return s.timer.ChangePhase(r.Phase)
	}))

	d.Handle("pomodoroSettingsChanged", func(ctx context.Context, env nativemsg.Envelope) (any, error) {
		if len(env.Payload) == 0 {
			return s.timer.ApplySettings(), nil
		}

		var ps models.PomodoroSettings
		if err := env.Decode(&ps); err != nil {
			return nil, err
		}

		return s.applyPomodoroSettings(ctx, ps)
	})

	d.Handle("updatePomodoroNotificationSetting", message.Typed(
		func(ctx context.Context, r notificationRequest) (any, error) {
			if err := s.timer.SetNotifications(ctx, r.Enabled); err != nil {
				return nil, err
			}

			return s.timer.Status(), nil
		},
	))

	d.Handle("getPomodoroStatsForDate", message.Typed(func(_ context.Context, r dateRequest) (any, error) {
		date := r.Date
		if date == "" {
			date = s.state.Today()
		}

		day, all := s.state.PomodoroStats(date)

		return pomodoroStatsResult{Date: date, Day: day, AllTime: all}, nil
	}))
}

// applyPomodoroSettings stores new settings. Turning notifications on still
// needs the browser permission.
func (s *Service) applyPomodoroSettings(
	ctx context.Context,
	ps models.PomodoroSettings,
) (timer.Status, error) {
	enable := ps.NotificationsEnabled
	ps.NotificationsEnabled = enable && s.state.PomodoroSettings().NotificationsEnabled

	if err := s.state.SetPomodoroSettings(ps); err != nil {
		return s.timer.Status(), err
	}

	if enable != ps.NotificationsEnabled {
		if err := s.timer.SetNotifications(ctx, enable); err != nil {
			return s.timer.Status(), err
		}
	}

	return s.timer.ApplySettings(), nil
}
