package app

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/webfocus/internal/static"
	"github.com/ayoisaiah/webfocus/report"
)

// installAction registers the running binary as the native messaging host
// of each browser an extension ID was given for.
func installAction(ctx *cli.Context) error {
	ids := make(map[static.Browser]string)

	for flag, b := range map[string]static.Browser{
		"chrome":   static.Chrome,
		"chromium": static.Chromium,
		"firefox":  static.Firefox,
	} {
		if id := ctx.String(flag); id != "" {
			ids[b] = id
		}
	}

	if len(ids) == 0 {
		return errMissingArgs.Fmt("an extension ID for at least one browser")
	}

	bin, err := os.Executable()
	if err != nil {
		return err
	}

	bin, err = filepath.EvalSymlinks(bin)
	if err != nil {
		return err
	}

	written, err := static.Install(static.InstallOptions{
		BinPath:     bin,
		ExtensionID: ids,
	})
	if err != nil {
		return err
	}

	for _, path := range written {
		report.Success("Wrote %s", path)
	}

	return nil
}
