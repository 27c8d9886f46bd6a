package app

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/kballard/go-shellquote"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/webfocus/internal/osutil"
	"github.com/ayoisaiah/webfocus/internal/pathutil"
)

func firstNonEmptyString(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}

	return ""
}

// editConfigAction handles the edit-config command which opens the webfocus
// config file in the user's default text editor.
func editConfigAction(ctx *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == osutil.Windows {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	// EDITOR may carry arguments such as "code --wait"
	args, err := shellquote.Split(editor)
	if err != nil || len(args) == 0 {
		args = []string{editor}
	}

	// Writes the default file on first use. An invalid file is opened as is
	// so it can be fixed.
	_, _ = loadConfig(ctx)

	args = append(args, pathutil.ConfigFilePath())

	cmd := exec.CommandContext(ctx.Context, args[0], args[1:]...)

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}
