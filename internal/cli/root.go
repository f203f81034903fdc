package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/humbkr/nextjs-project-starter/internal/branding"
	"github.com/humbkr/nextjs-project-starter/internal/config"
	"github.com/humbkr/nextjs-project-starter/internal/platform"
	"github.com/humbkr/nextjs-project-starter/internal/prompt"
	"github.com/humbkr/nextjs-project-starter/internal/runtime"
)

type buildInfo struct {
	version string
	commit  string
	date    string
}

// environment carries the process streams and collaborators shared by
// all commands.
type environment struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	build  buildInfo

	newExecutor func(stdout, stderr io.Writer) runtime.Executor
	newPrompter func(in io.Reader, out io.Writer) prompt.Prompter

	logger *slog.Logger
}

func defaultEnvironment(build buildInfo) *environment {
	return &environment{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		build:  build,
		newExecutor: func(stdout, stderr io.Writer) runtime.Executor {
			return &runtime.ExecExecutor{Stdout: stdout, Stderr: stderr}
		},
		newPrompter: func(in io.Reader, out io.Writer) prompt.Prompter {
			if f, ok := in.(*os.File); ok {
				return prompt.ForTerminal(f, out)
			}
			return prompt.NewLinePrompter(in, out)
		},
	}
}

func (e *environment) log() *slog.Logger {
	if e.logger == nil {
		return slog.Default()
	}
	return e.logger
}

func newRootCmd(env *environment) *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	root := &cobra.Command{
		Use:   branding.CLIName(),
		Short: branding.Description(),
		Long: branding.DisplayName() + ` provisions a ready-to-code Next.js project: it checks the toolchain,
scaffolds the app, installs linting and test tooling, copies a source layout
and tidies up the generated files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(env.stdin)
	root.SetOut(env.stdout)
	root.SetErr(env.stderr)

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		config.Load()
		if err := config.BindFlag(config.KeyLogLevel, root.PersistentFlags().Lookup("log-level")); err != nil {
			return err
		}
		if err := config.BindFlag(config.KeyLogFormat, root.PersistentFlags().Lookup("log-format")); err != nil {
			return err
		}

		settings := config.Resolve()
		logger, err := platform.ConfigureLogger(settings.LogLevel, settings.LogFormat, env.stderr)
		if err != nil {
			return ExitError{Code: ExitInvalid, Kind: KindInvalid, Err: err}
		}
		env.logger = logger.With("run", ulid.Make().String())
		env.logger.Debug("configuration loaded", "file", config.FilePath(), "command", cmd.Name())
		return nil
	}

	root.AddCommand(
		newNewCmd(env),
		newDoctorCmd(env),
		newConfigCmd(env),
		newVersionCmd(env),
	)
	return root
}
