package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// State is the information threaded through the steps. Steps return a
// modified copy; they never mutate the value they receive.
type State struct {
	// Root is the directory the generator was invoked from.
	Root string
	// ProjectName is the operator's answer to the project name question.
	ProjectName string
	// Destination is where file operations happen. It starts equal to Root
	// and moves to Root/ProjectName once the app has been created.
	Destination string
}

// NewState returns the initial state for a run rooted at root.
func NewState(root string) State {
	return State{Root: root, Destination: root}
}

// Step is one named unit of the pipeline.
type Step struct {
	Name string
	Run  func(ctx context.Context, st State, out *Output) (State, error)
}

// Status is the outcome of a step.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StepResult records what happened to one step.
type StepResult struct {
	Name     string
	Status   Status
	Duration time.Duration
	Warnings []string
	Err      error
}

// Reporter receives the operator-facing progress lines.
type Reporter interface {
	Info(msg string)
	Warn(msg string)
}

// PlainReporter writes progress lines to W without styling.
type PlainReporter struct {
	W io.Writer
}

func (p PlainReporter) Info(msg string) { fmt.Fprintln(p.W, msg) }
func (p PlainReporter) Warn(msg string) { fmt.Fprintf(p.W, "warning: %s\n", msg) }

// Output is handed to a running step for progress lines and warnings.
type Output struct {
	step     string
	reporter Reporter
	logger   *slog.Logger
	warnings []string
}

// Logf prints a progress line.
func (o *Output) Logf(format string, args ...any) {
	o.reporter.Info(fmt.Sprintf(format, args...))
}

// Warnf prints a warning and records it on the step result.
func (o *Output) Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	o.warnings = append(o.warnings, msg)
	o.reporter.Warn(msg)
	o.logger.Warn(msg, "step", o.step)
}

// Logger returns the diagnostic logger scoped to the step.
func (o *Output) Logger() *slog.Logger { return o.logger }

// StepError reports which step failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

// Runner executes steps in order.
type Runner struct {
	Steps    []Step
	Reporter Reporter
	Logger   *slog.Logger
}

// Run executes every step, threading the state through them. It stops at
// the first error, returning the last good state, one result per step and
// the error wrapped in a *StepError.
func (r *Runner) Run(ctx context.Context, st State) (State, []StepResult, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reporter := r.Reporter
	if reporter == nil {
		reporter = PlainReporter{W: io.Discard}
	}

	results := make([]StepResult, 0, len(r.Steps))
	for i, step := range r.Steps {
		if err := ctx.Err(); err != nil {
			results = append(results, skipped(r.Steps[i:])...)
			return st, results, err
		}

		out := &Output{step: step.Name, reporter: reporter, logger: logger.With("step", step.Name)}
		out.logger.Debug("step started", "destination", st.Destination)

		start := time.Now()
		next, err := step.Run(ctx, st, out)
		res := StepResult{
			Name:     step.Name,
			Duration: time.Since(start),
			Warnings: out.warnings,
		}

		if err != nil {
			res.Status = StatusFailed
			res.Err = err
			results = append(results, res)
			results = append(results, skipped(r.Steps[i+1:])...)
			out.logger.Error("step failed", "error", err)
			return st, results, &StepError{Step: step.Name, Err: err}
		}

		res.Status = StatusOK
		results = append(results, res)
		out.logger.Debug("step finished", "duration", res.Duration)
		st = next
	}

	return st, results, nil
}

func skipped(steps []Step) []StepResult {
	out := make([]StepResult, 0, len(steps))
	for _, s := range steps {
		out = append(out, StepResult{Name: s.Name, Status: StatusSkipped})
	}
	return out
}
