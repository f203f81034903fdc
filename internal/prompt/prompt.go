// Package prompt asks the operator for the project information the generator
// needs. Only one question exists today: the project name.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// ProjectNameQuestion is the single question asked by the generator.
const ProjectNameQuestion = "Project name:"

var (
	// ErrNoAnswer is returned when input ends before an answer is given.
	ErrNoAnswer = errors.New("no answer given")
	// ErrInvalidProjectName is returned by ValidateProjectName.
	ErrInvalidProjectName = errors.New("invalid project name")
)

// Prompter asks a free-text question and returns the answer.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
}

// LinePrompter reads one line per question from R, writing the question to W.
// A read interrupted by context cancellation stays pending and answers the
// next Ask, so no input line is lost. Ask must not be called concurrently.
type LinePrompter struct {
	r       *bufio.Reader
	w       io.Writer
	pending chan lineRead
}

type lineRead struct {
	line string
	err  error
}

// NewLinePrompter returns a LinePrompter over r and w.
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{r: bufio.NewReader(r), w: w}
}

// Ask implements Prompter.
func (p *LinePrompter) Ask(ctx context.Context, question string) (string, error) {
	fmt.Fprintf(p.w, "%s ", question)

	if p.pending == nil {
		done := make(chan lineRead, 1)
		go func() {
			line, err := p.r.ReadString('\n')
			done <- lineRead{line: line, err: err}
		}()
		p.pending = done
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a := <-p.pending:
		p.pending = nil
		if a.err != nil {
			if !errors.Is(a.err, io.EOF) {
				return "", fmt.Errorf("reading answer: %w", a.err)
			}
			if a.line == "" {
				return "", ErrNoAnswer
			}
		}
		return strings.TrimSpace(a.line), nil
	}
}

// ReadlinePrompter asks questions on an interactive terminal with line editing.
type ReadlinePrompter struct{}

// Ask implements Prompter.
func (ReadlinePrompter) Ask(ctx context.Context, question string) (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          question + " ",
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	})
	if err != nil {
		return "", fmt.Errorf("initializing prompt: %w", err)
	}
	defer rl.Close()

	stop := context.AfterFunc(ctx, func() { rl.Close() })
	defer stop()

	line, err := rl.Readline()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, readline.ErrInterrupt):
		return "", ErrNoAnswer
	case err != nil:
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// ForTerminal picks ReadlinePrompter when in is an interactive terminal and
// a LinePrompter otherwise.
func ForTerminal(in *os.File, out io.Writer) Prompter {
	if term.IsTerminal(int(in.Fd())) {
		return ReadlinePrompter{}
	}
	return NewLinePrompter(in, out)
}

// ValidateProjectName rejects names that cannot be a single directory under
// the invocation root. Anything else is accepted as-is.
func ValidateProjectName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidProjectName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q refers to an existing directory", ErrInvalidProjectName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q must not contain path separators", ErrInvalidProjectName, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: name contains a NUL byte", ErrInvalidProjectName)
	}
	return nil
}
