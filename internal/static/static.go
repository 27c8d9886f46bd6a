// Package static embeds the native messaging host manifests and installs them
// where each browser looks for them
package static

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"text/template"

	"github.com/adrg/xdg"

	"github.com/ayoisaiah/webfocus/internal/osutil"
)

// HostName is the native messaging host name the extension connects to.
const HostName = "com.webfocus.host"

// Browser identifies a supported browser family.
type Browser string

const (
	Chrome   Browser = "chrome"
	Chromium Browser = "chromium"
	Firefox  Browser = "firefox"
)

var errUnsupportedOS = errors.New(
	"manifest install is not supported on this OS; register the host manually",
)

//go:embed files/*.json
var files embed.FS

var templates = template.Must(template.ParseFS(files, "files/*.json"))

type manifest struct {
	Name        string
	Description string
	Path        string
	ExtensionID string
}

// InstallOptions configures Install.
type InstallOptions struct {
	BinPath     string
	ExtensionID map[Browser]string
}

// ManifestDirs returns the per-user manifest directory of each browser.
func ManifestDirs(goos, configHome, home string) (map[Browser]string, error) {
	switch goos {
	case osutil.Darwin:
		return map[Browser]string{
			Chrome:   filepath.Join(configHome, "Google", "Chrome", "NativeMessagingHosts"),
			Chromium: filepath.Join(configHome, "Chromium", "NativeMessagingHosts"),
			Firefox:  filepath.Join(configHome, "Mozilla", "NativeMessagingHosts"),
		}, nil
	case osutil.Windows:
		return nil, errUnsupportedOS
	default:
		return map[Browser]string{
			Chrome:   filepath.Join(configHome, "google-chrome", "NativeMessagingHosts"),
			Chromium: filepath.Join(configHome, "chromium", "NativeMessagingHosts"),
			Firefox:  filepath.Join(home, ".mozilla", "native-messaging-hosts"),
		}, nil
	}
}

// Render produces the manifest of browser b.
func Render(b Browser, binPath, extensionID string) ([]byte, error) {
	name := "chrome.json"
	if b == Firefox {
		name = "firefox.json"
	}

	var buf bytes.Buffer

	err := templates.ExecuteTemplate(&buf, name, manifest{
		Name:        HostName,
		Description: "webfocus activity tracker",
		Path:        binPath,
		ExtensionID: extensionID,
	})
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Install writes a manifest for every browser that has an extension ID and
// returns the files written.
func Install(opts InstallOptions) ([]string, error) {
	dirs, err := ManifestDirs(runtime.GOOS, xdg.ConfigHome, xdg.Home)
	if err != nil {
		return nil, err
	}

	return install(dirs, opts)
}

func install(dirs map[Browser]string, opts InstallOptions) ([]string, error) {
	var written []string

	for _, b := range []Browser{Chrome, Chromium, Firefox} {
		id := opts.ExtensionID[b]
		if id == "" {
			continue
		}

		content, err := Render(b, opts.BinPath, id)
		if err != nil {
			return written, err
		}

		dir := dirs[b]
		if err := os.MkdirAll(dir, osutil.DirPermission); err != nil {
			return written, fmt.Errorf("creating %s: %w", dir, err)
		}

		dest := filepath.Join(dir, HostName+".json")
		if err := os.WriteFile(dest, content, osutil.FilePermission); err != nil {
			return written, err
		}

		written = append(written, dest)
	}

	return written, nil
}
