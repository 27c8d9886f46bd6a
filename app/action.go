package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/webfocus/internal/background"
	"github.com/ayoisaiah/webfocus/internal/config"
	"github.com/ayoisaiah/webfocus/internal/logging"
	"github.com/ayoisaiah/webfocus/internal/pathutil"
	"github.com/ayoisaiah/webfocus/internal/state"
	"github.com/ayoisaiah/webfocus/store"
	"github.com/ayoisaiah/webfocus/timer"
)

const (
	envNoColor         = "NO_COLOR"
	envWebfocusNoColor = "WEBFOCUS_NO_COLOR"
	metaLogCloser      = "logCloser"
)

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	return config.New(
		config.WithPaths(
			pathutil.ConfigFilePath(),
			pathutil.DBFilePath(),
			pathutil.LogFilePath(),
		),
		config.WithViperConfig(pathutil.ConfigFilePath()),
		config.WithCLIConfig(ctx),
	)
}

// setupLogger installs the file logger as the default slog logger. The file
// is closed by afterAction.
func setupLogger(ctx *cli.Context, cfg *config.Config) (*slog.Logger, error) {
	logger, closer, err := logging.New(logging.Options{
		Path:       cfg.System.LogPath,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return nil, err
	}

	if ctx.App.Metadata == nil {
		ctx.App.Metadata = make(map[string]any)
	}

	ctx.App.Metadata[metaLogCloser] = closer

	slog.SetDefault(logger)

	return logger, nil
}

// openState loads the persisted state for a one-off command. The returned
// function flushes pending changes and releases the database.
func openState(ctx *cli.Context) (*state.State, func(), error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}

	logger, err := setupLogger(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	db, err := store.NewClient(cfg.System.DBPath)
	if err != nil {
		return nil, nil, err
	}

	idle, retention := cfg.StateOptions()

	st := state.New(db, store.NewMemory(), state.Options{
		Logger:        logger,
		Pomodoro:      cfg.PomodoroSettings(),
		SaveDelay:     cfg.Storage.SaveDelay,
		IdleThreshold: idle,
		Retention:     retention,
	})

	st.Load()

	cleanup := func() {
		if err := st.Flush(); err != nil {
			logger.Error("saving state failed", slog.Any("error", err))
		}

		_ = db.Close()
	}

	return st, cleanup, nil
}

// serveAction runs the background process until the browser disconnects or
// the process is interrupted. Browsers pass their own positional arguments,
// which are ignored.
func serveAction(ctx *cli.Context) error {
	// stdout carries native messages
	pterm.SetDefaultOutput(os.Stderr)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	logger, err := setupLogger(ctx, cfg)
	if err != nil {
		return err
	}

	db, err := store.NewClient(cfg.System.DBPath)
	if err != nil {
		logger.Error("opening database failed", slog.Any("error", err))
		return err
	}

	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := background.New(cfg, db, os.Stdin, os.Stdout, background.Options{
		Logger:   logger,
		Registry: reg,
		Notifier: timer.NewDesktopNotifier(ctx.App.Name),
	})

	logger.InfoContext(
		runCtx,
		"starting webfocus",
		slog.String("version", config.Version),
		slog.Any("args", ctx.Args().Slice()),
	)

	return svc.Run(runCtx)
}

func beforeAction(ctx *cli.Context) error {
	// Override the default help template
	cli.AppHelpTemplate = helpText()

	// Override the default version printer
	oldVersionPrinter := cli.VersionPrinter
	cli.VersionPrinter = func(c *cli.Context) {
		oldVersionPrinter(c)
		fmt.Printf(
			"https://github.com/ayoisaiah/webfocus/releases/%s\n",
			c.App.Version,
		)
	}

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	// Disable colour output if WEBFOCUS_NO_COLOR is set
	if _, exists := os.LookupEnv(envWebfocusNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return pathutil.Initialize()
}

func afterAction(ctx *cli.Context) error {
	slog.InfoContext(ctx.Context, "exiting webfocus")

	if c, ok := ctx.App.Metadata[metaLogCloser].(io.Closer); ok {
		return c.Close()
	}

	return nil
}
