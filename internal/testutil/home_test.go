// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func homeVar() string {
	if runtime.GOOS == "windows" {
		return "USERPROFILE"
	}
	return "HOME"
}

func TestSetHomeDir_RestoresPrevious(t *testing.T) {
	key := homeVar()
	original, had := os.LookupEnv(key)

	tests := []struct {
		name string
		dir  string
	}{
		{"temp dir", t.TempDir()},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore := SetHomeDir(t, tt.dir)
			if got := os.Getenv(key); got != tt.dir {
				t.Errorf("%s = %q, want %q", key, got, tt.dir)
			}
			restore()

			got, ok := os.LookupEnv(key)
			if ok != had || got != original {
				t.Errorf("after restore %s = (%q, %v), want (%q, %v)", key, got, ok, original, had)
			}
		})
	}
}

func TestIsolateUserConfig_LuapackDirUnderHome(t *testing.T) {
	home := t.TempDir()
	if runtime.GOOS != "windows" {
		restoreXDG := MustSetenv(t, "XDG_CONFIG_HOME", filepath.Join(home, "elsewhere"))
		defer restoreXDG()
	}

	restore := IsolateUserConfig(t, home)
	base, err := os.UserConfigDir()
	if err != nil {
		restore()
		t.Fatalf("os.UserConfigDir() error: %v", err)
	}
	if want := UserConfigPath(home); base != want {
		t.Errorf("os.UserConfigDir() = %s, want %s", base, want)
	}
	restore()

	if runtime.GOOS != "windows" {
		if got := os.Getenv("XDG_CONFIG_HOME"); got != filepath.Join(home, "elsewhere") {
			t.Errorf("after restore XDG_CONFIG_HOME = %q, want the earlier value", got)
		}
	}
}

func TestUserConfigPath_InsideHome(t *testing.T) {
	t.Parallel()

	for _, home := range []string{"/home/dev", filepath.Join("tmp", "case")} {
		got := UserConfigPath(home)
		rel, err := filepath.Rel(home, got)
		if err != nil || rel == "." || rel == ".." || filepath.IsAbs(rel) {
			t.Errorf("UserConfigPath(%q) = %q, want a directory below home", home, got)
		}
	}
}
