package pipeline

import (
	"errors"
	"fmt"
)

// ErrDestinationMissing is returned when the app creation command did not
// produce the expected project directory.
var ErrDestinationMissing = errors.New("project directory was not created")

// CommandError is returned when an external command exits with a non-zero
// status and the run is not in best-effort mode.
type CommandError struct {
	Step     string
	Command  string
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%q exited with status %d", e.Command, e.ExitCode)
}
