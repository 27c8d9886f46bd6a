package app

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/webfocus/internal/timeutil"
	"github.com/ayoisaiah/webfocus/internal/ui"
	"github.com/ayoisaiah/webfocus/stats"
)

// statsAction prints the report of a single day or of all tracked history.
func statsAction(ctx *cli.Context) error {
	st, cleanup, err := openState(ctx)
	if err != nil {
		return err
	}

	defer cleanup()

	var r stats.Report

	if ctx.Bool("all-time") {
		r = stats.AllTime(st.Snapshot())
	} else {
		date, err := timeutil.ParseDate(ctx.String("date"), time.Now())
		if err != nil {
			return err
		}

		r = stats.ForDay(st.Snapshot(), date)
	}

	if ctx.Bool("json") {
		b, err := r.JSON()
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(os.Stdout, string(b))

		return err
	}

	return r.Render(os.Stdout)
}

// pomodoroStatsAction prints completed pomodoro sessions for a day and for
// all time.
func pomodoroStatsAction(ctx *cli.Context) error {
	date, err := timeutil.ParseDate(ctx.String("date"), time.Now())
	if err != nil {
		return err
	}

	st, cleanup, err := openState(ctx)
	if err != nil {
		return err
	}

	defer cleanup()

	day, allTime := st.PomodoroStats(date)

	ui.PrintTable([][]string{
		{"PERIOD", "SESSIONS", "FOCUS TIME"},
		{
			date,
			fmt.Sprintf("%d", day.CompletedSessions),
			timeutil.FormatSeconds(day.WorkSeconds),
		},
		{
			"All time",
			fmt.Sprintf("%d", allTime.CompletedSessions),
			timeutil.FormatSeconds(allTime.WorkSeconds),
		},
	}, os.Stdout)

	return nil
}
