// Package osutil holds OS specific constants
package osutil

const (
	Windows = "windows"
	Darwin  = "darwin"
)

type exitCode int

const (
	ExitOK    exitCode = 0
	ExitError exitCode = 1
)

// Int returns the numeric exit status.
func (c exitCode) Int() int {
	return int(c)
}

const (
	DirPermission  = 0o755
	FilePermission = 0o644
)
