package app

import "github.com/urfave/cli/v2"

var (
	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	// Chrome on Windows passes the handle of the calling window.
	parentWindowFlag = &cli.StringFlag{
		Name:   "parent-window",
		Hidden: true,
	}

	dateFlag = &cli.StringFlag{
		Name:    "date",
		Aliases: []string{"d"},
		Usage:   "Day to report on (e.g. 'yesterday', '3 days ago', '2024-01-15')",
		Value:   "today",
	}

	allTimeFlag = &cli.BoolFlag{
		Name:    "all-time",
		Aliases: []string{"a"},
		Usage:   "Report on all tracked history instead of a single day",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the report as JSON",
	}

	yesFlag = &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Skip the confirmation prompt",
	}

	ruleTypeFlag = &cli.StringFlag{
		Name:     "type",
		Aliases:  []string{"t"},
		Usage:    "Rule type: block-url, block-category, limit-url or limit-category",
		Required: true,
	}

	ruleValueFlag = &cli.StringFlag{
		Name:     "value",
		Aliases:  []string{"v"},
		Usage:    "URL pattern (e.g. '*.reddit.com') or category name",
		Required: true,
	}

	ruleLimitFlag = &cli.StringFlag{
		Name:    "limit",
		Aliases: []string{"l"},
		Usage:   "Daily allowance for limit rules (e.g. '45m', '1h30m')",
	}

	ruleStartFlag = &cli.StringFlag{
		Name:  "start",
		Usage: "Start of the daily block window (HH:MM)",
	}

	ruleEndFlag = &cli.StringFlag{
		Name:  "end",
		Usage: "End of the daily block window (HH:MM)",
	}

	ruleDaysFlag = &cli.StringFlag{
		Name:  "days",
		Usage: "Comma-delimited days the block applies on (e.g. 'Mon,Tue,Wed')",
	}

	chromeIDFlag = &cli.StringFlag{
		Name:  "chrome",
		Usage: "Extension ID of the Chrome extension",
	}

	chromiumIDFlag = &cli.StringFlag{
		Name:  "chromium",
		Usage: "Extension ID of the Chromium extension",
	}

	firefoxIDFlag = &cli.StringFlag{
		Name:  "firefox",
		Usage: "Extension ID of the Firefox add-on",
	}
)

// serveFlags returns fresh instances of the background process flags so
// that they can be attached to both the app and the serve command.
func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "work",
			Aliases: []string{"w"},
			Usage:   "Default work duration in minutes (default: 25)",
		},
		&cli.StringFlag{
			Name:    "short-break",
			Aliases: []string{"s"},
			Usage:   "Default short break duration in minutes (default: 5)",
		},
		&cli.StringFlag{
			Name:    "long-break",
			Aliases: []string{"l"},
			Usage:   "Default long break duration in minutes (default: 15)",
		},
		&cli.UintFlag{
			Name:    "long-break-interval",
			Aliases: []string{"int"},
			Usage:   "The number of work sessions before a long break (default: 4)",
		},
		&cli.BoolFlag{
			Name:  "disable-notification",
			Usage: "Disable the system notification shown when a pomodoro phase ends",
		},
		&cli.StringFlag{
			Name:    "session-cmd",
			Aliases: []string{"cmd"},
			Usage:   "Execute an arbitrary command after each pomodoro phase",
		},
		&cli.IntFlag{
			Name:  "idle-threshold",
			Usage: "Seconds without input before tracking pauses on first install (-1 disables)",
		},
		&cli.StringFlag{
			Name:  "retention",
			Usage: "Days of history kept on first install, or 'forever'",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "Serve Prometheus metrics on this address (e.g. '127.0.0.1:9310')",
		},
	}
}
