//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir    string // NEXTSTARTER_HOME
	BinDir     string // stub node/yarn executables, first on PATH
	ProjectDir string // invocation root
	LogFile    string // one line per stub invocation
}

const nodeStub = `#!/bin/sh
echo "node $*" >> "$STUB_LOG"
echo v20.11.0
`

const yarnStub = `#!/bin/sh
echo "yarn $*" >> "$STUB_LOG"
case "$1" in
  create)
    mkdir -p "$3/public" "$3/pages/api"
    printf '{"name":"%s","scripts":{"dev":"next"}}' "$3" > "$3/package.json"
    printf '/node_modules\n/.next/\n' > "$3/.gitignore"
    touch "$3/public/favicon.ico" "$3/public/vercel.svg" "$3/pages/index.js"
    ;;
  add)
    if [ -n "$STUB_FAIL_ADD" ]; then
      echo "network unreachable" >&2
      exit 1
    fi
    ;;
esac
`

// setupTestEnv creates isolated directories, installs stub executables and
// points PATH at them. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if goruntime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}

	env := &testEnv{
		HomeDir:    t.TempDir(),
		BinDir:     t.TempDir(),
		ProjectDir: t.TempDir(),
	}
	env.LogFile = filepath.Join(env.HomeDir, "stub.log")

	writeExecutable(t, filepath.Join(env.BinDir, "node"), nodeStub)
	writeExecutable(t, filepath.Join(env.BinDir, "yarn"), yarnStub)

	t.Setenv("NEXTSTARTER_HOME", env.HomeDir)
	t.Setenv("STUB_LOG", env.LogFile)
	t.Setenv("PATH", env.BinDir+string(os.PathListSeparator)+"/bin:/usr/bin")

	return env
}

// invocations returns the stub command lines in call order.
func (e *testEnv) invocations(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(e.LogFile)
	if err != nil {
		t.Fatalf("reading stub log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func writeExecutable(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected file %s to exist: %v", path, err)
		return
	}
	if info.IsDir() {
		t.Errorf("expected %s to be a file, got directory", path)
	}
}

func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory %s to exist: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory", path)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be gone, stat err = %v", path, err)
	}
}
