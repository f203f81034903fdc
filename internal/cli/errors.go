package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/humbkr/nextjs-project-starter/internal/pipeline"
	"github.com/humbkr/nextjs-project-starter/internal/pkgmanager"
	"github.com/humbkr/nextjs-project-starter/internal/prompt"
	"github.com/humbkr/nextjs-project-starter/internal/runtime"
)

type ErrorKind string

const (
	KindInternal     ErrorKind = "internal"
	KindPrecondition ErrorKind = "precondition"
	KindInvalid      ErrorKind = "invalid_input"
	KindCommand      ErrorKind = "external_command"
)

const (
	ExitInternal     = 1
	ExitPrecondition = 2
	ExitInvalid      = 3
	ExitCommand      = 4
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Kind    ErrorKind
	Message string
	Err     error
}

func (e ExitError) Error() string {
	return errorMessage(e)
}

func (e ExitError) Unwrap() error { return e.Err }

// NormalizeError classifies err into an ExitError.
func NormalizeError(err error) ExitError {
	if err == nil {
		return ExitError{Code: 0}
	}
	var exitErr ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code == 0 {
			exitErr.Code = ExitInternal
		}
		return exitErr
	}

	var cmdErr *pipeline.CommandError
	switch {
	case errors.Is(err, runtime.ErrMissingExecutable):
		return ExitError{Code: ExitPrecondition, Kind: KindPrecondition, Err: err}
	case errors.Is(err, prompt.ErrNoAnswer),
		errors.Is(err, prompt.ErrInvalidProjectName),
		errors.Is(err, pkgmanager.ErrUnsupportedManager):
		return ExitError{Code: ExitInvalid, Kind: KindInvalid, Err: err}
	case errors.As(err, &cmdErr),
		errors.Is(err, pipeline.ErrDestinationMissing):
		return ExitError{Code: ExitCommand, Kind: KindCommand, Err: err}
	default:
		return ExitError{Code: ExitInternal, Kind: KindInternal, Err: err}
	}
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return NormalizeError(err).Code
}

func writeCLIError(w io.Writer, exitErr ExitError) error {
	if exitErr.Code == 0 {
		return nil
	}
	styles := newStyles(w)
	prefix := "Error"
	if exitErr.Kind != "" {
		prefix = fmt.Sprintf("Error (%s)", exitErr.Kind)
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", styles.Error.Render(prefix), errorMessage(exitErr))
	return err
}

func errorMessage(exitErr ExitError) string {
	if exitErr.Message != "" {
		return exitErr.Message
	}
	if exitErr.Err != nil {
		return exitErr.Err.Error()
	}
	return "unknown error"
}
