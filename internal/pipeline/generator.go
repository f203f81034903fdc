package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"

	"github.com/humbkr/nextjs-project-starter/internal/gitignore"
	"github.com/humbkr/nextjs-project-starter/internal/manifest"
	"github.com/humbkr/nextjs-project-starter/internal/pkgmanager"
	"github.com/humbkr/nextjs-project-starter/internal/platform"
	"github.com/humbkr/nextjs-project-starter/internal/prompt"
	"github.com/humbkr/nextjs-project-starter/internal/recipe"
	"github.com/humbkr/nextjs-project-starter/internal/runtime"
	"github.com/humbkr/nextjs-project-starter/internal/scaffold"
)

// Step names, in execution order.
const (
	StepValidateEnv    = "validate-env"
	StepCollectInfo    = "collect-info"
	StepCreateApp      = "create-app"
	StepInstallDeps    = "install-deps"
	StepCopyTemplates  = "copy-templates"
	StepCleanup        = "cleanup"
	StepInitRepository = "init-repository"
)

// ClosingNote is printed after a successful run.
const ClosingNote = "-- Don't forget to have a look at the generated project README.md for manual configuration steps. --"

// Options tune a generator run.
type Options struct {
	// ProjectName skips the prompt when set.
	ProjectName string
	// RuntimeConstraint is the semver constraint checked against `node -v`.
	RuntimeConstraint string
	// BestEffort turns non-zero subprocess exits into warnings.
	BestEffort bool
	// GitInit initialises a repository in the project when none exists.
	GitInit bool
}

// Generator provisions a new project.
type Generator struct {
	Executor  runtime.Executor
	Manager   *pkgmanager.Manager
	Prompter  prompt.Prompter
	Recipe    *recipe.Recipe
	Templates fs.FS
	Options   Options
	Reporter  Reporter
	Logger    *slog.Logger
}

// Steps returns the generator's steps in execution order.
func (g *Generator) Steps() []Step {
	return []Step{
		{Name: StepValidateEnv, Run: g.validateEnv},
		{Name: StepCollectInfo, Run: g.collectInfo},
		{Name: StepCreateApp, Run: g.createApp},
		{Name: StepInstallDeps, Run: g.installDeps},
		{Name: StepCopyTemplates, Run: g.copyTemplates},
		{Name: StepCleanup, Run: g.cleanup},
		{Name: StepInitRepository, Run: g.initRepository},
	}
}

// Run executes all steps from root and prints the closing note on success.
func (g *Generator) Run(ctx context.Context, root string) (State, []StepResult, error) {
	runner := &Runner{Steps: g.Steps(), Reporter: g.Reporter, Logger: g.Logger}
	st, results, err := runner.Run(ctx, NewState(root))
	if err != nil {
		return st, results, err
	}
	if g.Reporter != nil {
		g.Reporter.Info(ClosingNote)
	}
	return st, results, nil
}

func (g *Generator) validateEnv(ctx context.Context, st State, out *Output) (State, error) {
	report, err := runtime.Validate(ctx, g.Executor, runtime.Requirements{
		Runtime:           runtime.RuntimeNode,
		RuntimeConstraint: g.Options.RuntimeConstraint,
		PackageManager:    g.Manager.Name(),
		InstallURL:        g.Manager.InstallURL(),
	})
	if report != nil {
		if report.RuntimeVersion != "" {
			out.Logf("Node version is %s", report.RuntimeVersion)
		}
		for _, w := range report.Warnings {
			out.Warnf("%s", w)
		}
	}

	out.Logf("Checking %s installation...", g.Manager.Name())
	if err != nil {
		var missing *runtime.MissingExecutableError
		if errors.As(err, &missing) {
			out.Logf("Error: %s is not installed. Follow instructions here: %s", missing.Name, missing.InstallURL)
			out.Logf("Please install the required elements before resuming initialisation.")
		}
		return st, err
	}
	out.Logf("DONE")
	return st, nil
}

func (g *Generator) collectInfo(ctx context.Context, st State, out *Output) (State, error) {
	name := g.Options.ProjectName
	if name == "" {
		answer, err := g.Prompter.Ask(ctx, prompt.ProjectNameQuestion)
		if err != nil {
			return st, err
		}
		name = answer
	}
	if err := prompt.ValidateProjectName(name); err != nil {
		return st, err
	}
	out.Logger().Debug("project name collected", "project", name)
	st.ProjectName = name
	return st, nil
}

func (g *Generator) createApp(ctx context.Context, st State, out *Output) (State, error) {
	dest := filepath.Join(st.Root, st.ProjectName)
	out.Logf("Initialising a Next.js project in %s...", dest)

	cmd, res, err := g.Manager.Create(ctx, st.Root, g.Recipe.Framework, st.ProjectName)
	if err != nil {
		return st, fmt.Errorf("running %s: %w", cmd, err)
	}
	if err := g.checkExit(out, StepCreateApp, cmd, res); err != nil {
		return st, err
	}

	if info, err := os.Stat(dest); err != nil || !info.IsDir() {
		if !g.Options.BestEffort {
			return st, fmt.Errorf("%w: %s", ErrDestinationMissing, dest)
		}
		out.Warnf("%s: %s", ErrDestinationMissing, dest)
	}

	st.Destination = dest
	out.Logf("DONE")
	return st, nil
}

func (g *Generator) installDeps(ctx context.Context, st State, out *Output) (State, error) {
	open := false
	for _, group := range g.Recipe.Dependencies {
		if group.Message != "" {
			if open {
				out.Logf("DONE")
			}
			out.Logf("%s", group.Message)
			open = true
		}

		cmd, res, err := g.Manager.Add(ctx, st.Destination, group.Packages, group.Dev)
		if err != nil {
			return st, fmt.Errorf("installing %s dependencies: %w", group.Name, err)
		}
		if err := g.checkExit(out, StepInstallDeps, cmd, res); err != nil {
			return st, err
		}

		if group.MergeManifest {
			if err := g.mergeManifest(st.Destination, out); err != nil {
				return st, err
			}
		}
	}
	if open {
		out.Logf("DONE")
	}
	return st, nil
}

func (g *Generator) mergeManifest(dir string, out *Output) error {
	path := filepath.Join(dir, manifest.FileName)
	merged, err := manifest.MergeFile(path)
	if err != nil {
		return err
	}
	result, err := manifest.Validate(merged)
	if err != nil {
		return err
	}
	for _, issue := range result.Issues {
		out.Warnf("%s: %s", manifest.FileName, issue)
	}
	return nil
}

func (g *Generator) copyTemplates(_ context.Context, st State, out *Output) (State, error) {
	out.Logf("Copying source structure...")
	res, err := scaffold.Copy(g.Templates, g.Recipe.TemplateSet, st.Destination)
	if err != nil {
		return st, err
	}
	for _, f := range res.Files {
		out.Logger().Debug("template copied", "path", f.Path, "action", string(f.Action))
	}
	out.Logger().Info("templates copied", "set", g.Recipe.TemplateSet, "files", res.Paths())
	out.Logf("DONE")
	return st, nil
}

func (g *Generator) cleanup(_ context.Context, st State, out *Output) (State, error) {
	for _, rel := range g.Recipe.Cleanup.Files {
		if err := platform.RemoveFile(filepath.Join(st.Destination, filepath.FromSlash(rel))); err != nil {
			return st, err
		}
	}
	for _, rel := range g.Recipe.Cleanup.Dirs {
		if err := platform.RemoveTree(filepath.Join(st.Destination, filepath.FromSlash(rel))); err != nil {
			return st, err
		}
	}
	if err := gitignore.AppendBlock(st.Destination, g.Recipe.Gitignore); err != nil {
		return st, err
	}
	out.Logger().Debug("cleanup finished",
		"files", len(g.Recipe.Cleanup.Files), "dirs", len(g.Recipe.Cleanup.Dirs))
	return st, nil
}

func (g *Generator) initRepository(_ context.Context, st State, out *Output) (State, error) {
	if !g.Options.GitInit {
		out.Logger().Debug("repository init disabled")
		return st, nil
	}
	if platform.Exists(filepath.Join(st.Destination, git.GitDirName)) {
		return st, nil
	}
	if _, err := git.PlainInit(st.Destination, false); err != nil {
		if errors.Is(err, git.ErrRepositoryAlreadyExists) {
			return st, nil
		}
		return st, fmt.Errorf("initialising repository: %w", err)
	}
	out.Logger().Info("repository initialised", "path", st.Destination)
	return st, nil
}

// checkExit turns a non-zero exit into a *CommandError, or a warning in
// best-effort mode.
func (g *Generator) checkExit(out *Output, step string, cmd runtime.Command, res *runtime.Result) error {
	if res == nil || res.ExitCode == 0 {
		return nil
	}
	cerr := &CommandError{Step: step, Command: cmd.String(), ExitCode: res.ExitCode}
	if g.Options.BestEffort {
		out.Warnf("%v", cerr)
		return nil
	}
	return cerr
}
