package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command describes one external program invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env entries are added on top of the current process environment.
	Env []string
	// Quiet keeps the output off the executor's writers. It is still
	// captured in Result.
	Quiet bool
}

// String renders the command the way an operator would type it.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result captures the outcome of a finished command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Executor runs external programs.
type Executor interface {
	// LookPath resolves an executable name on PATH.
	LookPath(name string) (string, error)
	// Run executes cmd and blocks until it exits. A non-zero exit status is
	// reported through Result.ExitCode; the error is reserved for failures
	// to start or wait for the process.
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecExecutor is the os/exec backed Executor.
type ExecExecutor struct {
	// Stdout and Stderr receive the child's output as it is produced;
	// defaults to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// LookPath implements Executor.
func (e *ExecExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run implements Executor.
func (e *ExecExecutor) Run(ctx context.Context, c Command) (*Result, error) {
	bin, err := exec.LookPath(c.Name)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", c.Name, err)
	}

	cmd := exec.CommandContext(ctx, bin, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = os.Environ()
	for _, kv := range c.Env {
		key, value, _ := strings.Cut(kv, "=")
		cmd.Env = setEnv(cmd.Env, key, value)
	}

	stdout := e.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := e.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	if c.Quiet {
		stdout, stderr = io.Discard, io.Discard
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = io.MultiWriter(stdout, &stdoutBuf)
	cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)
	// Interactive scaffolders (create-next-app asks questions) need the
	// operator's terminal.
	cmd.Stdin = os.Stdin

	err = cmd.Run()

	result := &Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("executing %s: %w", c.Name, err)
	}

	return result, nil
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
