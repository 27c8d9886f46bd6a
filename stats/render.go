package stats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/ayoisaiah/webfocus/internal/timeutil"
	"github.com/ayoisaiah/webfocus/internal/ui"
)

const (
	barChartChar = "▇"
	noDataMsg    = "No browsing time was tracked for this period"
)

// Render writes the report as coloured text and tables.
func (r Report) Render(w io.Writer) error {
	title := "All time"
	if r.Date != "" {
		title = r.Date
	}

	header := pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgYellow)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		WithFullWidth().
		Sprintf("Browsing stats · %s", title)

	fmt.Fprintln(w, header)
	fmt.Fprint(w, r.summary())

	if r.TotalSeconds == 0 && len(r.Domains) == 0 {
		pterm.Info.WithWriter(w).Println(noDataMsg)
		return nil
	}

	fmt.Fprintf(w, "\n%s\n", ui.Blue("Categories"))
	ui.PrintTable(table("CATEGORY", r.Categories, len(r.Categories), r.TotalSeconds), w)

	fmt.Fprintf(w, "\n%s\n", ui.Blue("Top sites"))
	ui.PrintTable(table("DOMAIN", r.Domains, topDomains, r.TotalSeconds), w)

	if chart := r.hourlyChart(); chart != "" {
		fmt.Fprintf(w, "\n%s\n%s", ui.Blue("By hour (minutes)"), chart)
	}

	return nil
}

func (r Report) summary() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s\n", ui.Blue("Summary")))
	b.WriteString(fmt.Sprintf("Time tracked: %s\n", ui.Green(timeutil.FormatSeconds(r.TotalSeconds))))

	if r.Productivity >= 0 {
		b.WriteString(fmt.Sprintf("Productivity: %s\n", ui.Green(strconv.Itoa(r.Productivity)+"%")))
	}

	b.WriteString(fmt.Sprintf(
		"Pomodoros completed: %s (%s focused)\n",
		ui.Green(r.Pomodoro.CompletedSessions),
		ui.Green(timeutil.FormatSeconds(r.Pomodoro.WorkSeconds)),
	))

	return b.String()
}

// table builds the rows of a breakdown limited to limit entries.
func table(heading string, entries []Entry, limit int, total int64) [][]string {
	rows := [][]string{{"#", heading, "TIME", "SHARE"}}

	for i, e := range entries {
		if i >= limit {
			break
		}

		share := "-"
		if total > 0 {
			share = fmt.Sprintf("%.1f%%", float64(e.Seconds)*100/float64(total))
		}

		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.Name,
			timeutil.FormatSeconds(e.Seconds),
			share,
		})
	}

	return rows
}

func (r Report) hourlyChart() string {
	if len(r.Hourly) == 0 {
		return ""
	}

	bars := make(pterm.Bars, 0, len(r.Hourly))

	for _, h := range r.Hourly {
		bars = append(bars, pterm.Bar{
			Label: h.Name + ":00",
			Value: int(timeutil.Round(float64(h.Seconds) / 60)),
		})
	}

	chart, err := pterm.DefaultBarChart.WithHorizontalBarCharacter(barChartChar).
		WithHorizontal().
		WithShowValue().
		WithBars(bars).
		Srender()
	if err != nil {
		pterm.Error.Println(err)
		return ""
	}

	return chart
}
