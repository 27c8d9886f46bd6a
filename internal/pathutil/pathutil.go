// Package pathutil manages application file paths and locations
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

const appDir = "webfocus"

// Paths holds all application path configurations.
type Paths struct {
	configFileName string
	dbFileName     string
	logFileName    string

	configFilePath string
	dbFilePath     string
	logFilePath    string
}

var (
	paths   *Paths
	once    sync.Once
	initErr error
)

// Initialize resolves the file locations. Only the first call has an effect.
func Initialize() error {
	once.Do(func() {
		paths = newPaths(os.Getenv("WEBFOCUS_ENV"))
		initErr = paths.computePaths()
	})

	return initErr
}

// Must panics if paths haven't been initialized.
func Must() *Paths {
	if paths == nil {
		panic("pathutil.Initialize() must be called before accessing paths")
	}

	return paths
}

// ConfigFilePath returns the location of the YAML config file.
func ConfigFilePath() string {
	return Must().configFilePath
}

// DBFilePath returns the location of the bbolt database.
func DBFilePath() string {
	return Must().dbFilePath
}

// LogFilePath returns the location of the log file.
func LogFilePath() string {
	return Must().logFilePath
}

// newPaths derives file names, suffixing them with env when it is set so
// that development runs do not touch real data.
func newPaths(env string) *Paths {
	p := &Paths{
		configFileName: "config.yml",
		dbFileName:     "webfocus.db",
		logFileName:    "webfocus.log",
	}

	env = strings.TrimSpace(env)
	if env != "" {
		p.configFileName = fmt.Sprintf("config_%s.yml", env)
		p.dbFileName = fmt.Sprintf("webfocus_%s.db", env)
		p.logFileName = fmt.Sprintf("webfocus_%s.log", env)
	}

	return p
}

func (p *Paths) computePaths() error {
	var err error

	p.configFilePath, err = xdg.ConfigFile(filepath.Join(appDir, p.configFileName))
	if err != nil {
		return err
	}

	dataDir, err := xdg.DataFile(appDir)
	if err != nil {
		return err
	}

	p.dbFilePath = filepath.Join(dataDir, p.dbFileName)
	p.logFilePath = filepath.Join(dataDir, "log", p.logFileName)

	return os.MkdirAll(filepath.Dir(p.logFilePath), 0o750)
}
