// Package runtimetest provides a scripted runtime.Executor for tests.
package runtimetest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/humbkr/nextjs-project-starter/internal/runtime"
)

// Executor is a fake runtime.Executor. Executables listed in Paths are
// "installed"; Handlers run instead of real programs.
type Executor struct {
	// Paths maps executable name to the path LookPath returns.
	Paths map[string]string
	// Handlers are keyed by the command line prefix ("yarn add", "node -v", "yarn").
	// The longest matching prefix wins.
	Handlers map[string]func(runtime.Command) (*runtime.Result, error)

	mu       sync.Mutex
	commands []runtime.Command
}

// New returns a fake with the given executables installed.
func New(installed ...string) *Executor {
	e := &Executor{
		Paths:    map[string]string{},
		Handlers: map[string]func(runtime.Command) (*runtime.Result, error){},
	}
	for _, name := range installed {
		e.Paths[name] = "/usr/bin/" + name
	}
	return e
}

// Handle registers fn for commands starting with prefix.
func (e *Executor) Handle(prefix string, fn func(runtime.Command) (*runtime.Result, error)) {
	e.Handlers[prefix] = fn
}

// LookPath implements runtime.Executor.
func (e *Executor) LookPath(name string) (string, error) {
	if p, ok := e.Paths[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
}

// Run implements runtime.Executor.
func (e *Executor) Run(ctx context.Context, cmd runtime.Command) (*runtime.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.commands = append(e.commands, cmd)
	e.mu.Unlock()

	if _, err := e.LookPath(cmd.Name); err != nil {
		return nil, err
	}

	line := cmd.String()
	var best string
	for prefix := range e.Handlers {
		if (line == prefix || strings.HasPrefix(line, prefix+" ")) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return &runtime.Result{}, nil
	}
	return e.Handlers[best](cmd)
}

// Commands returns every command Run received, in order.
func (e *Executor) Commands() []runtime.Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]runtime.Command, len(e.commands))
	copy(out, e.commands)
	return out
}

// Lines returns Commands rendered as strings.
func (e *Executor) Lines() []string {
	var lines []string
	for _, c := range e.Commands() {
		lines = append(lines, c.String())
	}
	return lines
}

// Exit is a handler that returns the given exit code.
func Exit(code int) func(runtime.Command) (*runtime.Result, error) {
	return func(runtime.Command) (*runtime.Result, error) {
		return &runtime.Result{ExitCode: code}, nil
	}
}

// Stdout is a handler that prints out and exits 0.
func Stdout(out string) func(runtime.Command) (*runtime.Result, error) {
	return func(runtime.Command) (*runtime.Result, error) {
		return &runtime.Result{Stdout: out}, nil
	}
}
