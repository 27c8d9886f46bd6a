package static

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	b, err := Render(Chrome, `/opt/web focus/webfocus`, "abcdef")
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))

	assert.Equal(t, HostName, m["name"])
	assert.Equal(t, "/opt/web focus/webfocus", m["path"])
	assert.Equal(t, "stdio", m["type"])
	assert.Equal(t, []any{"chrome-extension://abcdef/"}, m["allowed_origins"])

	b, err = Render(Firefox, "/usr/bin/webfocus", "webfocus@example.com")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, []any{"webfocus@example.com"}, m["allowed_extensions"])
}

func TestManifestDirs(t *testing.T) {
	dirs, err := ManifestDirs("linux", "/home/u/.config", "/home/u")
	require.NoError(t, err)
	assert.Equal(t, "/home/u/.config/google-chrome/NativeMessagingHosts", dirs[Chrome])
	assert.Equal(t, "/home/u/.mozilla/native-messaging-hosts", dirs[Firefox])

	_, err = ManifestDirs("windows", "", "")
	assert.ErrorIs(t, err, errUnsupportedOS)
}

func TestInstallSkipsBrowsersWithoutID(t *testing.T) {
	root := t.TempDir()
	dirs := map[Browser]string{
		Chrome:   filepath.Join(root, "chrome"),
		Chromium: filepath.Join(root, "chromium"),
		Firefox:  filepath.Join(root, "firefox"),
	}

	written, err := install(dirs, InstallOptions{
		BinPath:     "/usr/bin/webfocus",
		ExtensionID: map[Browser]string{Firefox: "webfocus@example.com"},
	})
	require.NoError(t, err)

	want := filepath.Join(root, "firefox", HostName+".json")
	assert.Equal(t, []string{want}, written)
	assert.FileExists(t, want)

	_, err = os.Stat(dirs[Chrome])
	assert.True(t, os.IsNotExist(err))
}
