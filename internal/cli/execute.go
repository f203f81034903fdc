package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
)

// Execute runs the CLI with build info injected via ldflags. A returned
// error has already been reported on stderr; ExitCode maps it to the
// process exit status.
func Execute(version, commit, date string) error {
	env := defaultEnvironment(buildInfo{version: version, commit: commit, date: date})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, env, os.Args[1:])
}

func run(ctx context.Context, env *environment, args []string) error {
	cmd := newRootCmd(env)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	exitErr := NormalizeError(err)
	env.log().Debug("command failed", "kind", exitErr.Kind, "code", exitErr.Code)
	_ = writeCLIError(cmd.ErrOrStderr(), exitErr)
	return exitErr
}
