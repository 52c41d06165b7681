// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

// SetHomeDir points the platform's home variable (USERPROFILE on Windows,
// HOME elsewhere) at dir and returns a function restoring it.
func SetHomeDir(t testing.TB, dir string) func() {
	t.Helper()

	if runtime.GOOS == "windows" {
		return MustSetenv(t, "USERPROFILE", dir)
	}
	return MustSetenv(t, "HOME", dir)
}

// IsolateUserConfig makes os.UserConfigDir resolve inside home, so a test
// never reads or writes the developer's real luapack.cue. The returned
// function restores every variable it touched.
//
//	restore := testutil.IsolateUserConfig(t, t.TempDir())
//	defer restore()
func IsolateUserConfig(t testing.TB, home string) func() {
	t.Helper()

	restores := []func(){SetHomeDir(t, home)}
	switch runtime.GOOS {
	case "windows":
		restores = append(restores, MustSetenv(t, "AppData", UserConfigPath(home)))
	case "darwin", "ios", "plan9":
	default:
		restores = append(restores, MustUnsetenv(t, "XDG_CONFIG_HOME"))
	}
	return func() {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
	}
}

// UserConfigPath is the user config directory os.UserConfigDir reports once
// IsolateUserConfig has pointed it at home.
func UserConfigPath(home string) string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming")
	case "darwin", "ios":
		return filepath.Join(home, "Library", "Application Support")
	case "plan9":
		return filepath.Join(home, "lib")
	default:
		return filepath.Join(home, ".config")
	}
}
