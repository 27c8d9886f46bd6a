// Package app defines the webfocus command-line interface
package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/webfocus/internal/config"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the webfocus app instance.
func Get() *cli.App {
	return &cli.App{
		Name: "webfocus",
		Authors: []*cli.Author{
			{
				Name:  "Ayooluwa Isaiah",
				Email: "ayo@freshman.tech",
			},
		},
		Usage: `
		webfocus is the background process of the webfocus browser extension. It
		tracks the time spent on each website, enforces block and daily limit
		rules and runs a pomodoro timer. Browsers start it through native
		messaging; the other commands inspect and edit its data from a terminal.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the background process on the native messaging channel",
				Flags:  serveFlags(),
				Action: serveAction,
			},
			{
				Name:  "stats",
				Usage: "Print the time spent per site and category",
				Flags: []cli.Flag{
					dateFlag,
					allTimeFlag,
					jsonFlag,
				},
				Action: statsAction,
			},
			{
				Name:      "export",
				Usage:     "Export all data as a JSON document",
				ArgsUsage: "[FILE]",
				Action:    exportAction,
			},
			{
				Name:      "import",
				Usage:     "Replace all data with a previously exported document",
				ArgsUsage: "FILE",
				Flags:     []cli.Flag{yesFlag},
				Action:    importAction,
			},
			{
				Name:   "prune",
				Usage:  "Remove history older than the retention period",
				Action: pruneAction,
			},
			rulesCommand(),
			categoriesCommand(),
			{
				Name:      "assign",
				Usage:     "Assign a domain to a category, or list assignments",
				ArgsUsage: "[DOMAIN CATEGORY]",
				Action:    assignAction,
			},
			{
				Name:      "unassign",
				Usage:     "Remove a domain assignment",
				ArgsUsage: "DOMAIN",
				Action:    unassignAction,
			},
			{
				Name:  "pomodoro",
				Usage: "Inspect pomodoro history",
				Subcommands: []*cli.Command{
					{
						Name:   "stats",
						Usage:  "Print completed pomodoro sessions",
						Flags:  []cli.Flag{dateFlag},
						Action: pomodoroStatsAction,
					},
				},
			},
			{
				Name:  "install",
				Usage: "Register webfocus as a native messaging host",
				Flags: []cli.Flag{
					chromeIDFlag,
					chromiumIDFlag,
					firefoxIDFlag,
				},
				Action: installAction,
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
		},
		Flags:  append(serveFlags(), noColorFlag, parentWindowFlag),
		Action: serveAction,
		Before: beforeAction,
		After:  afterAction,
	}
}
