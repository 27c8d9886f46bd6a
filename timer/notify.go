package timer

import (
	"context"
	"os/exec"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/gen2brain/beeep"
	"github.com/kballard/go-shellquote"

	"github.com/ayoisaiah/webfocus/internal/models"
)

// Notifier displays a desktop notification.
type Notifier interface {
	Notify(title, message string) error
}

// DesktopNotifier shows notifications through the operating system.
type DesktopNotifier struct {
	Icon string
}

// NewDesktopNotifier returns a DesktopNotifier using the icon installed in
// the data directory of app, if any.
func NewDesktopNotifier(app string) DesktopNotifier {
	// pathToIcon will be an empty string if file is not found
	pathToIcon, _ := xdg.SearchDataFile(filepath.Join(app, "static", "icon.png"))

	return DesktopNotifier{Icon: pathToIcon}
}

func (n DesktopNotifier) Notify(title, message string) error {
	return beeep.Notify(title, message, n.Icon)
}

var phaseTitles = map[models.Phase]string{
	models.Work:       "Work session",
	models.ShortBreak: "Short break",
	models.LongBreak:  "Long break",
}

var phaseMessages = map[models.Phase]string{
	models.Work:       "Focus on your task",
	models.ShortBreak: "Take a breather",
	models.LongBreak:  "Take a long break",
}

// runSessionCmd executes the specified command.
func runSessionCmd(ctx context.Context, sessionCmd string) error {
	if sessionCmd == "" {
		return nil
	}

	cmdSlice, err := shellquote.Split(sessionCmd)
	if err != nil {
		return errSessionCmd.Wrap(err)
	}

	if len(cmdSlice) == 0 {
		return nil
	}

	name := cmdSlice[0]
	args := cmdSlice[1:]

	cmd := exec.CommandContext(ctx, name, args...)

	return cmd.Run()
}
