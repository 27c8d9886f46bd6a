package app

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/webfocus/internal/osutil"
	"github.com/ayoisaiah/webfocus/report"
)

// exportAction writes the export document to FILE, or to stdout when no
// file is given.
func exportAction(ctx *cli.Context) error {
	st, cleanup, err := openState(ctx)
	if err != nil {
		return err
	}

	defer cleanup()

	doc, err := st.Export()
	if err != nil {
		return err
	}

	path := ctx.Args().First()
	if path == "" || path == "-" {
		_, err = fmt.Fprintln(os.Stdout, string(doc))
		return err
	}

	if err := os.WriteFile(path, doc, osutil.FilePermission); err != nil {
		return err
	}

	report.Success("Exported data to %s", path)

	return nil
}

// importAction replaces the stored data with an exported document.
func importAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errMissingArgs.Fmt("the file to import")
	}

	path := ctx.Args().First()

	doc, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ok, err := confirm(
		"Replace all webfocus data with "+path+"?",
		"Tracked history, categories, rules and settings are overwritten.",
		ctx.Bool("yes"),
	)
	if err != nil {
		return err
	}

	if !ok {
		return errImportCancelled
	}

	st, cleanup, err := openState(ctx)
	if err != nil {
		return err
	}

	defer cleanup()

	if err := st.Import(doc); err != nil {
		return err
	}

	report.Success("Imported data from %s", path)

	return nil
}

// pruneAction removes history older than the retention period.
func pruneAction(ctx *cli.Context) error {
	st, cleanup, err := openState(ctx)
	if err != nil {
		return err
	}

	defer cleanup()

	n, err := st.Prune()
	if err != nil {
		return err
	}

	if n == 0 {
		report.Info("No history is older than the retention period")
		return nil
	}

	report.Success("Removed %d days of history", n)

	return nil
}
