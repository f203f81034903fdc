package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/humbkr/nextjs-project-starter/internal/config"
	"github.com/humbkr/nextjs-project-starter/internal/pipeline"
	"github.com/humbkr/nextjs-project-starter/internal/pkgmanager"
	"github.com/humbkr/nextjs-project-starter/internal/recipe"
	"github.com/humbkr/nextjs-project-starter/internal/scaffold"
)

type newOptions struct {
	dir   string
	noGit bool
}

func newNewCmd(env *environment) *cobra.Command {
	opts := &newOptions{}
	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Create a new Next.js project",
		Long: `Create a Next.js project in <dir>/<name>.

The project name is asked interactively unless given as an argument. After the
app is scaffolded, runtime, lint and test dependencies are installed, package.json
is extended with the lint and hook configuration, the source layout is copied
and leftover files are removed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindings := map[string]string{
				config.KeyPackageManager: "package-manager",
				config.KeyBestEffort:     "best-effort",
				config.KeyTemplateDir:    "template-dir",
			}
			for key, flag := range bindings {
				if err := config.BindFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}

			settings := config.Resolve()
			if opts.noGit {
				settings.GitInit = false
			}
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			return runNew(cmd.Context(), env, settings, name, opts.dir)
		},
	}

	cmd.Flags().String("package-manager", "", fmt.Sprintf("Package manager to drive %v", pkgmanager.Supported()))
	cmd.Flags().Bool("best-effort", false, "Continue when an external command exits with a non-zero status")
	cmd.Flags().String("template-dir", "", "Copy this directory instead of the built-in source layout (relative paths resolve against the current directory, not --dir)")
	cmd.Flags().BoolVar(&opts.noGit, "no-git", false, "Do not initialise a git repository")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "Directory to create the project in (default: current directory)")
	return cmd
}

func runNew(ctx context.Context, env *environment, settings config.Settings, name, dir string) error {
	root, err := resolveRoot(dir)
	if err != nil {
		return err
	}

	ex := env.newExecutor(env.stdout, env.stderr)
	mgr, err := pkgmanager.New(settings.PackageManager, ex)
	if err != nil {
		return err
	}

	rec, err := recipe.Load()
	if err != nil {
		return err
	}
	templates, source, err := templateSource(settings.TemplateDir, rec)
	if err != nil {
		return err
	}

	logger := env.log().With("command", "new")
	g := &pipeline.Generator{
		Executor:  ex,
		Manager:   mgr,
		Prompter:  env.newPrompter(env.stdin, env.stdout),
		Recipe:    rec,
		Templates: templates,
		Options: pipeline.Options{
			ProjectName:       name,
			RuntimeConstraint: settings.NodeConstraint,
			BestEffort:        settings.BestEffort,
			GitInit:           settings.GitInit,
		},
		Reporter: newReporter(env.stdout),
		Logger:   logger,
	}

	logger.Info("generating project", "root", root, "package_manager", mgr.Name(),
		"templates", source, "best_effort", settings.BestEffort)
	st, results, err := g.Run(ctx, root)

	fmt.Fprintln(env.stdout)
	renderSummary(env.stdout, results)

	if err != nil {
		return err
	}
	logger.Info("project generated", "path", st.Destination)
	return nil
}

func resolveRoot(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project root %s is not a directory", abs)
	}
	return abs, nil
}

// templateSource returns the template filesystem and where it comes from.
// A custom directory is resolved against the working directory, not the
// project root, and is used as the template set itself.
func templateSource(dir string, rec *recipe.Recipe) (fs.FS, string, error) {
	if dir == "" {
		return scaffold.Embedded(), "embedded", nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving template directory %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, "", fmt.Errorf("template directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("template directory %s is not a directory", abs)
	}
	rec.TemplateSet = "."
	return os.DirFS(abs), abs, nil
}
