// Package report prints user facing outcomes of CLI commands
package report

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/ayoisaiah/webfocus/internal/osutil"
)

// Success prints a confirmation message.
func Success(format string, args ...any) {
	pterm.Success.Printfln(format, args...)
}

// Info prints an informational message.
func Info(format string, args ...any) {
	pterm.Info.Printfln(format, args...)
}

// Quit prints err to stderr and exits with a failure status. Stdout may be
// the native messaging channel.
func Quit(err error) {
	pterm.Error.WithWriter(os.Stderr).Println(err)
	os.Exit(osutil.ExitError.Int())
}
