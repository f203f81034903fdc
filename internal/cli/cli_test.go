package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/humbkr/nextjs-project-starter/internal/branding"
	"github.com/humbkr/nextjs-project-starter/internal/config"
	"github.com/humbkr/nextjs-project-starter/internal/prompt"
	"github.com/humbkr/nextjs-project-starter/internal/recipe"
	"github.com/humbkr/nextjs-project-starter/internal/runtime"
	"github.com/humbkr/nextjs-project-starter/internal/runtime/runtimetest"
)

type testIO struct {
	env    *environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(t *testing.T, ex runtime.Executor, stdin string) *testIO {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv(branding.EnvVar("home"), t.TempDir())
	t.Setenv("NO_COLOR", "1")

	tio := &testIO{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	tio.env = &environment{
		stdin:  strings.NewReader(stdin),
		stdout: tio.stdout,
		stderr: tio.stderr,
		build:  buildInfo{version: "1.2.3", commit: "abc1234", date: "2026-01-02"},
		newExecutor: func(io.Writer, io.Writer) runtime.Executor {
			return ex
		},
		newPrompter: func(in io.Reader, out io.Writer) prompt.Prompter {
			return prompt.NewLinePrompter(in, out)
		},
	}
	return tio
}

func (tio *testIO) run(t *testing.T, args ...string) int {
	t.Helper()
	return ExitCode(run(context.Background(), tio.env, args))
}

func fakeToolchain() *runtimetest.Executor {
	ex := runtimetest.New("node", "yarn")
	ex.Handle("node -v", runtimetest.Stdout("v20.11.0\n"))
	ex.Handle("yarn create", func(cmd runtime.Command) (*runtime.Result, error) {
		dir := filepath.Join(cmd.Dir, cmd.Args[len(cmd.Args)-1])
		if err := os.MkdirAll(filepath.Join(dir, "public"), 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name":"demo"}`), 0644); err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(dir, "public", "favicon.ico"), []byte("ico"), 0644); err != nil {
			return nil, err
		}
		return &runtime.Result{}, nil
	})
	return ex
}

func TestNewCommand(t *testing.T) {
	root := t.TempDir()
	tio := newTestEnv(t, fakeToolchain(), "demo\n")

	if code := tio.run(t, "new", "--dir", root, "--no-git"); code != 0 {
		t.Fatalf("exit code = %d\nstdout:\n%s\nstderr:\n%s", code, tio.stdout, tio.stderr)
	}

	dest := filepath.Join(root, "demo")
	for _, want := range []string{"src/pages/index.tsx", "package.json", ".gitignore"} {
		if _, err := os.Stat(filepath.Join(dest, want)); err != nil {
			t.Errorf("%s missing: %v", want, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dest, "public", "favicon.ico")); !os.IsNotExist(err) {
		t.Errorf("favicon.ico should be removed, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, ".git")); !os.IsNotExist(err) {
		t.Errorf(".git should not exist with --no-git, stat err = %v", err)
	}

	out := tio.stdout.String()
	for _, want := range []string{prompt.ProjectNameQuestion, "Copying source structure...", "copy-templates", "init-repository"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q\n%s", want, out)
		}
	}
	if !strings.Contains(tio.stderr.String(), "run=") {
		t.Errorf("stderr logs missing run id:\n%s", tio.stderr)
	}
}

func TestNewCommandNameArgument(t *testing.T) {
	root := t.TempDir()
	tio := newTestEnv(t, fakeToolchain(), "")

	if code := tio.run(t, "new", "site", "--dir", root, "--no-git"); code != 0 {
		t.Fatalf("exit code = %d\nstderr:\n%s", code, tio.stderr)
	}
	if strings.Contains(tio.stdout.String(), prompt.ProjectNameQuestion) {
		t.Error("prompt shown although name was given")
	}
	if _, err := os.Stat(filepath.Join(root, "site", "package.json")); err != nil {
		t.Errorf("project not created: %v", err)
	}
}

func TestNewCommandTemplateDir(t *testing.T) {
	root := t.TempDir()
	templates := t.TempDir()
	if err := os.WriteFile(filepath.Join(templates, "README.md"), []byte("# custom\n"), 0644); err != nil {
		t.Fatal(err)
	}
	tio := newTestEnv(t, fakeToolchain(), "demo\n")

	if code := tio.run(t, "new", "--dir", root, "--no-git", "--template-dir", templates); code != 0 {
		t.Fatalf("exit code = %d\nstderr:\n%s", code, tio.stderr)
	}
	data, err := os.ReadFile(filepath.Join(root, "demo", "README.md"))
	if err != nil {
		t.Fatalf("README.md not copied: %v", err)
	}
	if string(data) != "# custom\n" {
		t.Errorf("README.md = %q", data)
	}
	if _, err := os.Stat(filepath.Join(root, "demo", "src")); !os.IsNotExist(err) {
		t.Errorf("built-in templates copied alongside custom dir, stat err = %v", err)
	}
}

func TestNewCommandRelativeTemplateDir(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "tpl"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "tpl", "README.md"), []byte("# relative\n"), 0644); err != nil {
		t.Fatal(err)
	}
	root := t.TempDir()
	t.Chdir(base)
	tio := newTestEnv(t, fakeToolchain(), "demo\n")

	if code := tio.run(t, "new", "--dir", root, "--no-git", "--template-dir", "tpl"); code != 0 {
		t.Fatalf("exit code = %d\nstderr:\n%s", code, tio.stderr)
	}
	if _, err := os.Stat(filepath.Join(root, "demo", "README.md")); err != nil {
		t.Errorf("template from working directory not copied: %v", err)
	}
}

func TestTemplateSourceResolvesAgainstWorkingDir(t *testing.T) {
	base := t.TempDir()
	t.Chdir(base)
	rec, err := recipe.Load()
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = templateSource("missing", rec)
	if err == nil {
		t.Fatal("expected error for missing template directory")
	}
	if want := filepath.Join(base, "missing"); !strings.Contains(err.Error(), want) {
		t.Errorf("error = %v, want absolute path %s", err, want)
	}
	if rec.TemplateSet != "base" {
		t.Errorf("TemplateSet = %q, want unchanged on error", rec.TemplateSet)
	}
}

func TestHelpIsNotAnError(t *testing.T) {
	tio := newTestEnv(t, fakeToolchain(), "")
	if err := run(context.Background(), tio.env, []string{"--help"}); err != nil {
		t.Errorf("run(--help) = %v, want nil", err)
	}
	if !strings.Contains(tio.stdout.String(), "new") {
		t.Errorf("help output missing commands:\n%s", tio.stdout)
	}
}

func TestNewCommandExitCodes(t *testing.T) {
	tests := []struct {
		name      string
		installed []string
		args      []string
		stdin     string
		wantCode  int
		wantErr   string
	}{
		{
			name:      "missing package manager",
			installed: []string{"node"},
			args:      []string{"new"},
			stdin:     "demo\n",
			wantCode:  ExitPrecondition,
			wantErr:   "Error (precondition)",
		},
		{
			name:      "unsupported package manager",
			installed: []string{"node", "yarn"},
			args:      []string{"new", "--package-manager", "bun"},
			stdin:     "demo\n",
			wantCode:  ExitInvalid,
			wantErr:   "unsupported package manager",
		},
		{
			name:      "invalid project name",
			installed: []string{"node", "yarn"},
			args:      []string{"new"},
			stdin:     "../escape\n",
			wantCode:  ExitInvalid,
			wantErr:   "Error (invalid_input)",
		},
		{
			name:      "no answer",
			installed: []string{"node", "yarn"},
			args:      []string{"new"},
			stdin:     "",
			wantCode:  ExitInvalid,
			wantErr:   "no answer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := runtimetest.New(tt.installed...)
			ex.Handle("node -v", runtimetest.Stdout("v20.11.0"))
			tio := newTestEnv(t, ex, tt.stdin)

			args := append(tt.args, "--dir", t.TempDir())
			if code := tio.run(t, args...); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nstderr:\n%s", code, tt.wantCode, tio.stderr)
			}
			if !strings.Contains(tio.stderr.String(), tt.wantErr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantErr, tio.stderr)
			}
		})
	}
}

func TestNewCommandFailedInstall(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{name: "fail fast", args: nil, wantCode: ExitCommand},
		{name: "best effort flag", args: []string{"--best-effort"}, wantCode: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := fakeToolchain()
			ex.Handle("yarn add", runtimetest.Exit(1))
			tio := newTestEnv(t, ex, "demo\n")

			args := append([]string{"new", "--dir", t.TempDir(), "--no-git"}, tt.args...)
			if code := tio.run(t, args...); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nstdout:\n%s\nstderr:\n%s", code, tt.wantCode, tio.stdout, tio.stderr)
			}
		})
	}
}

func TestDoctor(t *testing.T) {
	t.Run("all present", func(t *testing.T) {
		tio := newTestEnv(t, fakeToolchain(), "")
		if code := tio.run(t, "doctor"); code != 0 {
			t.Fatalf("exit code = %d\nstderr:\n%s", code, tio.stderr)
		}
		out := tio.stdout.String()
		for _, want := range []string{
			"[ OK ] node v20.11.0 found at /usr/bin/node",
			"[ OK ] yarn found at /usr/bin/yarn",
			"[ OK ] template set base (available: base)",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("stdout missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("old node", func(t *testing.T) {
		ex := fakeToolchain()
		ex.Handle("node -v", runtimetest.Stdout("v16.20.0"))
		tio := newTestEnv(t, ex, "")
		if code := tio.run(t, "doctor"); code != 0 {
			t.Fatalf("exit code = %d", code)
		}
		if !strings.Contains(tio.stdout.String(), "[WARN]") {
			t.Errorf("stdout missing warning:\n%s", tio.stdout)
		}
	})

	t.Run("missing package manager", func(t *testing.T) {
		tio := newTestEnv(t, runtimetest.New("node"), "")
		if code := tio.run(t, "doctor", "--package-manager", "npm"); code != ExitPrecondition {
			t.Errorf("exit code = %d, want %d", code, ExitPrecondition)
		}
		if !strings.Contains(tio.stdout.String(), "[MISS] npm not found") {
			t.Errorf("stdout missing MISS line:\n%s", tio.stdout)
		}
	})

	t.Run("missing template directory", func(t *testing.T) {
		tio := newTestEnv(t, fakeToolchain(), "")
		t.Setenv(branding.EnvVar(config.KeyTemplateDir), filepath.Join(t.TempDir(), "absent"))
		if code := tio.run(t, "doctor"); code != ExitInternal {
			t.Errorf("exit code = %d, want %d", code, ExitInternal)
		}
		if !strings.Contains(tio.stdout.String(), "[FAIL] template directory") {
			t.Errorf("stdout missing template failure:\n%s", tio.stdout)
		}
	})

	t.Run("manifest check", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "package.json")
		if err := os.WriteFile(path, []byte(`{"name":"demo"}`), 0644); err != nil {
			t.Fatal(err)
		}
		tio := newTestEnv(t, fakeToolchain(), "")
		if code := tio.run(t, "doctor", "--check-manifest", path); code != ExitInternal {
			t.Errorf("exit code = %d, want %d", code, ExitInternal)
		}
		if !strings.Contains(tio.stdout.String(), "[FAIL]") {
			t.Errorf("stdout missing FAIL line:\n%s", tio.stdout)
		}
	})
}

func TestConfigSetGet(t *testing.T) {
	tio := newTestEnv(t, fakeToolchain(), "")

	if code := tio.run(t, "config", "set", "package_manager", "npm"); code != 0 {
		t.Fatalf("set exit code = %d\nstderr:\n%s", code, tio.stderr)
	}
	if !strings.Contains(tio.stdout.String(), "Set package_manager = npm") {
		t.Errorf("stdout = %q", tio.stdout)
	}

	viper.Reset()
	tio.stdout.Reset()
	if code := tio.run(t, "config", "get", "package_manager"); code != 0 {
		t.Fatalf("get exit code = %d", code)
	}
	if got := strings.TrimSpace(tio.stdout.String()); got != "npm" {
		t.Errorf("get package_manager = %q, want npm", got)
	}

	tio.stderr.Reset()
	if code := tio.run(t, "config", "get", "colour"); code != ExitInternal {
		t.Errorf("unknown key exit code = %d, want %d", code, ExitInternal)
	}
	if !strings.Contains(tio.stderr.String(), "unknown setting") {
		t.Errorf("stderr = %q", tio.stderr)
	}
}

func TestVersion(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "default", args: []string{"version"}, want: "nextjs-starter version 1.2.3 (commit: abc1234, built: 2026-01-02)\n"},
		{name: "short", args: []string{"version", "--short"}, want: "1.2.3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tio := newTestEnv(t, fakeToolchain(), "")
			if code := tio.run(t, tt.args...); code != 0 {
				t.Fatalf("exit code = %d", code)
			}
			if tio.stdout.String() != tt.want {
				t.Errorf("stdout = %q, want %q", tio.stdout, tt.want)
			}
		})
	}

	t.Run("json", func(t *testing.T) {
		tio := newTestEnv(t, fakeToolchain(), "")
		if code := tio.run(t, "version", "--json"); code != 0 {
			t.Fatalf("exit code = %d", code)
		}
		var info map[string]string
		if err := json.Unmarshal(tio.stdout.Bytes(), &info); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if info["version"] != "1.2.3" || info["commit"] != "abc1234" {
			t.Errorf("info = %v", info)
		}
	})
}

func TestInvalidLogLevel(t *testing.T) {
	tio := newTestEnv(t, fakeToolchain(), "")
	if code := tio.run(t, "version", "--log-level", "loud"); code != ExitInvalid {
		t.Errorf("exit code = %d, want %d", code, ExitInvalid)
	}
}
