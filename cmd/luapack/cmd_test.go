// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luapack/luapack/internal/config"
	"github.com/luapack/luapack/internal/testutil"
	"github.com/luapack/luapack/pkg/types"

	"github.com/spf13/afero"
)

type stubConfig struct {
	cfg *config.Config
	err error
}

func (s stubConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	cfg := *s.cfg
	return &cfg, nil
}

func defaults() stubConfig {
	return stubConfig{cfg: config.DefaultConfig()}
}

var program = map[string]string{
	"/proj/main.lua": "local util = require(\"util\")\nlocal json = require(\"json\")\nprint(util.name, json.name)\n",
	"/proj/util.lua": "module.exports = {name = \"util\"}\n",

	"/proj/lua_modules/json/package.json": `{"name": "json", "luaMain": "init.lua"}`,
	"/proj/lua_modules/json/init.lua":     "return {name = \"json\"}\n",
}

// runCLI executes the command tree without fang and returns what it wrote.
func runCLI(t *testing.T, deps Dependencies, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	deps.Stdout = &out
	deps.Stderr = &errOut
	app, appErr := NewApp(deps)
	if appErr != nil {
		t.Fatalf("NewApp() failed: %v", appErr)
	}

	root := NewRootCommand(app)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func requireExitCode(t *testing.T, err error, want types.ExitCode) {
	t.Helper()

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v (%T), want *ExitError", err, err)
	}
	if exitErr.Code != want {
		t.Errorf("exit code = %d, want %d", exitErr.Code, want)
	}
}

func TestBuild_Stdout(t *testing.T) {
	t.Parallel()

	fs := testutil.MemTree(t, program)
	stdout, stderr, err := runCLI(t, Dependencies{Config: defaults(), Fs: fs}, "build", "/proj/main.lua")
	if err != nil {
		t.Fatalf("build failed: %v\n%s", err, stderr)
	}

	for _, want := range []string{
		"local __luapack_load",
		"__luapack_modules[1] = function(...)",
		"__luapack_modules[2] = function(...)",
		"local util = __luapack_load(1)",
		"local json = __luapack_load(2)",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("bundle missing %q:\n%s", want, stdout)
		}
	}
	if !strings.HasSuffix(stdout, "\n") {
		t.Error("bundle should end with a newline")
	}
}

func TestBuild_OutputFile(t *testing.T) {
	t.Parallel()

	fs := testutil.MemTree(t, program)
	stdout, stderr, err := runCLI(t, Dependencies{Config: defaults(), Fs: fs},
		"build", "--minify", "-o", "/out/dist/bundle.lua", "/proj/main.lua")
	if err != nil {
		t.Fatalf("build failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "Bundled 3 scripts") {
		t.Errorf("stdout = %q, want a success line", stdout)
	}

	data, err := afero.ReadFile(fs, "/out/dist/bundle.lua")
	if err != nil {
		t.Fatalf("bundle not written: %v", err)
	}
	code := string(data)
	if strings.Count(code, "\n") != 1 {
		t.Errorf("minified bundle should be a single line, got:\n%s", code)
	}
}

func TestBuild_FlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Output = "/out/from-config.lua"
	cfg.Minify = true
	fs := testutil.MemTree(t, program)

	_, stderr, err := runCLI(t, Dependencies{Config: stubConfig{cfg: cfg}, Fs: fs},
		"build", "--minify=false", "--indent", "\t", "-o", "/out/from-flag.lua", "/proj/main.lua")
	if err != nil {
		t.Fatalf("build failed: %v\n%s", err, stderr)
	}

	if ok, _ := afero.Exists(fs, "/out/from-config.lua"); ok {
		t.Error("--output should replace the configured output")
	}
	data, err := afero.ReadFile(fs, "/out/from-flag.lua")
	if err != nil {
		t.Fatalf("bundle not written: %v", err)
	}
	if !strings.Contains(string(data), "\n\tlocal") {
		t.Errorf("expected tab-indented readable output:\n%s", data)
	}
}

func TestBuild_ConfigOutput(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Output = "/out/app.lua"
	fs := testutil.MemTree(t, program)

	stdout, stderr, err := runCLI(t, Dependencies{Config: stubConfig{cfg: cfg}, Fs: fs}, "build", "/proj/main.lua")
	if err != nil {
		t.Fatalf("build failed: %v\n%s", err, stderr)
	}
	if strings.Contains(stdout, "__luapack_load") {
		t.Error("bundle should go to the configured file, not stdout")
	}
	if ok, _ := afero.Exists(fs, "/out/app.lua"); !ok {
		t.Error("bundle not written to the configured output")
	}
}

func TestBuild_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		files      map[string]string
		args       []string
		wantStderr []string
	}{
		{
			name:       "missing entry",
			files:      map[string]string{},
			args:       []string{"build", "/proj/main.lua"},
			wantStderr: []string{"entry script not found", "Check the entry path"},
		},
		{
			name:  "missing module",
			files: map[string]string{"/proj/main.lua": `require("missing")`},
			args:  []string{"build", "/proj/main.lua"},
			wantStderr: []string{
				`module "missing" not found`,
				"Looked for:",
				"/proj/missing.lua",
			},
		},
		{
			name: "cycle",
			files: map[string]string{
				"/proj/main.lua": `require("a")`,
				"/proj/a.lua":    `require("b")`,
				"/proj/b.lua":    `require("a")`,
			},
			args:       []string{"build", "/proj/main.lua"},
			wantStderr: []string{"circular dependency", "luapack graph"},
		},
		{
			name:       "dynamic require",
			files:      map[string]string{"/proj/main.lua": "local n = \"x\"\nrequire(n)\n"},
			args:       []string{"build", "/proj/main.lua"},
			wantStderr: []string{"/proj/main.lua:2", "single string literal"},
		},
		{
			name:       "export in entry",
			files:      map[string]string{"/proj/main.lua": "module.exports = 1\n"},
			args:       []string{"build", "/proj/main.lua"},
			wantStderr: []string{"module.exports assigned in the entry script"},
		},
		{
			name:       "syntax error",
			files:      map[string]string{"/proj/main.lua": "local = 1\n"},
			args:       []string{"build", "/proj/main.lua"},
			wantStderr: []string{"syntax error in /proj/main.lua"},
		},
		{
			name:       "invalid indent",
			files:      program,
			args:       []string{"build", "--indent", "xx", "/proj/main.lua"},
			wantStderr: []string{"invalid indent", "Use spaces or tabs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := testutil.MemTree(t, tt.files)
			stdout, stderr, err := runCLI(t, Dependencies{Config: defaults(), Fs: fs}, tt.args...)
			requireExitCode(t, err, types.ExitBuildFailed)
			if stdout != "" {
				t.Errorf("failed build wrote to stdout: %q", stdout)
			}
			for _, want := range tt.wantStderr {
				if !strings.Contains(stderr, want) {
					t.Errorf("stderr missing %q:\n%s", want, stderr)
				}
			}
		})
	}
}

func TestBuild_VerboseShowsErrorChain(t *testing.T) {
	t.Parallel()

	fs := testutil.MemTree(t, map[string]string{"/proj/main.lua": `require("missing")`})
	_, stderr, err := runCLI(t, Dependencies{Config: defaults(), Fs: fs}, "--verbose", "build", "/proj/main.lua")
	requireExitCode(t, err, types.ExitBuildFailed)
	if !strings.Contains(stderr, "Error chain:") {
		t.Errorf("verbose output should include the error chain:\n%s", stderr)
	}
	if !strings.Contains(stderr, "not found") {
		t.Errorf("verbose output should include the issue card:\n%s", stderr)
	}
}

func TestBuild_DebugLogsResolution(t *testing.T) {
	t.Parallel()

	fs := testutil.MemTree(t, program)
	_, stderr, err := runCLI(t, Dependencies{Config: defaults(), Fs: fs}, "--debug", "build", "/proj/main.lua")
	if err != nil {
		t.Fatalf("build failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stderr, "resolve") || !strings.Contains(stderr, "luapack") {
		t.Errorf("--debug should log resolution traces, got:\n%s", stderr)
	}
}

func TestBuild_ConfigLoadFailure(t *testing.T) {
	t.Parallel()

	stub := stubConfig{err: errors.New("boom")}
	_, stderr, err := runCLI(t, Dependencies{Config: stub, Fs: afero.NewMemMapFs()}, "build", "/proj/main.lua")
	requireExitCode(t, err, types.ExitBuildFailed)
	if !strings.Contains(stderr, "load configuration") || !strings.Contains(stderr, "boom") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestBuild_Usage(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, Dependencies{Config: defaults(), Fs: afero.NewMemMapFs()}, "build")
	if err == nil {
		t.Fatal("build without an entry should fail")
	}
	if got := exitCode(err); got != types.ExitUsage {
		t.Errorf("exitCode() = %d, want %d", got, types.ExitUsage)
	}
}

func TestGraph_Plain(t *testing.T) {
	t.Parallel()

	fs := testutil.MemTree(t, program)
	stdout, stderr, err := runCLI(t, Dependencies{Config: defaults(), Fs: fs}, "graph", "--plain", "/proj/main.lua")
	if err != nil {
		t.Fatalf("graph failed: %v\n%s", err, stderr)
	}

	for _, want := range []string{
		"# main.lua",
		"| 0 | `main.lua` |  | `util.lua`, `lua_modules/json/init.lua` |",
		"| 1 | `util.lua` |  |  |",
		"| 2 | `lua_modules/json/init.lua` | json |  |",
		"## Load order",
		"3. `main.lua`",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("graph missing %q:\n%s", want, stdout)
		}
	}
}

func TestGraph_Rendered(t *testing.T) {
	t.Parallel()

	fs := testutil.MemTree(t, program)
	stdout, stderr, err := runCLI(t, Dependencies{Config: defaults(), Fs: fs}, "graph", "/proj/main.lua")
	if err != nil {
		t.Fatalf("graph failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "util.lua") || !strings.Contains(stdout, "Load order") {
		t.Errorf("graph should render the markdown report:\n%s", stdout)
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Minify = true
	stdout, _, err := runCLI(t, Dependencies{Config: stubConfig{cfg: cfg}}, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"// source: (defaults)", "minify: true", "indent: \"  \""} {
		if !strings.Contains(stdout, want) {
			t.Errorf("config show missing %q:\n%s", want, stdout)
		}
	}
}

func TestConfigInitAndPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "luapack.cue")
	deps := Dependencies{Config: config.NewProvider()}

	stdout, _, err := runCLI(t, deps, "--config", path, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if strings.TrimSpace(stdout) != path {
		t.Errorf("config path = %q, want %q", stdout, path)
	}

	if _, stderr, err := runCLI(t, deps, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init failed: %v\n%s", err, stderr)
	}

	stdout, stderr, err := runCLI(t, deps, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "// source: "+path) {
		t.Errorf("config show should report the written file:\n%s", stdout)
	}

	_, stderr, err = runCLI(t, deps, "--config", path, "config", "init")
	requireExitCode(t, err, types.ExitBuildFailed)
	if !strings.Contains(stderr, "--force") {
		t.Errorf("second init should suggest --force:\n%s", stderr)
	}

	if _, stderr, err := runCLI(t, deps, "--config", path, "config", "init", "--force"); err != nil {
		t.Fatalf("config init --force failed: %v\n%s", err, stderr)
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	err := &ExitError{Code: types.ExitBuildFailed, Err: cause}
	if err.Error() != "cause" || !errors.Is(err, cause) {
		t.Errorf("ExitError should wrap its cause, got %q", err.Error())
	}
	bare := &ExitError{Code: types.ExitUsage}
	if bare.Error() != "exit status 2" {
		t.Errorf("Error() = %q, want %q", bare.Error(), "exit status 2")
	}
	if exitCode(err) != types.ExitBuildFailed {
		t.Errorf("exitCode() = %d, want %d", exitCode(err), types.ExitBuildFailed)
	}
}
