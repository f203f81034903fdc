package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/humbkr/nextjs-project-starter/internal/config"
	"github.com/humbkr/nextjs-project-starter/internal/manifest"
	"github.com/humbkr/nextjs-project-starter/internal/pkgmanager"
	"github.com/humbkr/nextjs-project-starter/internal/recipe"
	"github.com/humbkr/nextjs-project-starter/internal/runtime"
	"github.com/humbkr/nextjs-project-starter/internal/scaffold"
)

func newDoctorCmd(env *environment) *cobra.Command {
	var checkManifest string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the toolchain needed to create a project",
		Long: `Verify that node and the configured package manager are installed and that
node satisfies the configured version constraint, and that the template set
used by "new" is available. Nothing is written to disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.BindFlag(config.KeyPackageManager, cmd.Flags().Lookup("package-manager")); err != nil {
				return err
			}
			settings := config.Resolve()
			out := cmd.OutOrStdout()

			if err := runRuntimeCheck(cmd, env, settings); err != nil {
				return err
			}
			if err := runTemplateCheck(out, settings.TemplateDir); err != nil {
				return err
			}
			if checkManifest != "" {
				return runManifestCheck(out, checkManifest)
			}
			return nil
		},
	}
	cmd.Flags().String("package-manager", "", "Package manager to check")
	cmd.Flags().StringVar(&checkManifest, "check-manifest", "", "Validate a package.json at the given path")
	return cmd
}

func runRuntimeCheck(cmd *cobra.Command, env *environment, settings config.Settings) error {
	out := cmd.OutOrStdout()
	st := newStyles(out)

	ex := env.newExecutor(io.Discard, io.Discard)
	mgr, err := pkgmanager.New(settings.PackageManager, ex)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Runtime check:")
	report, err := runtime.Validate(cmd.Context(), ex, runtime.Requirements{
		Runtime:           runtime.RuntimeNode,
		RuntimeConstraint: settings.NodeConstraint,
		PackageManager:    mgr.Name(),
		InstallURL:        mgr.InstallURL(),
	})
	if report != nil {
		if report.RuntimePath != "" {
			fmt.Fprintf(out, "  %s %s %s found at %s\n", st.Success.Render("[ OK ]"), runtime.RuntimeNode, report.RuntimeVersion, report.RuntimePath)
		}
		for _, w := range report.Warnings {
			fmt.Fprintf(out, "  %s %s\n", st.Warning.Render("[WARN]"), w)
		}
	}

	var missing *runtime.MissingExecutableError
	if errors.As(err, &missing) {
		fmt.Fprintf(out, "  %s %s not found (install: %s)\n", st.Error.Render("[MISS]"), missing.Name, missing.InstallURL)
		return err
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  %s %s found at %s\n", st.Success.Render("[ OK ]"), mgr.Name(), report.PackageManagerPath)
	return nil
}

func runTemplateCheck(out io.Writer, dir string) error {
	st := newStyles(out)
	fmt.Fprintln(out, "Template check:")

	rec, err := recipe.Load()
	if err != nil {
		return err
	}
	templates, source, err := templateSource(dir, rec)
	if err != nil {
		fmt.Fprintf(out, "  %s %v\n", st.Error.Render("[FAIL]"), err)
		return err
	}
	if dir != "" {
		fmt.Fprintf(out, "  %s template directory %s\n", st.Success.Render("[ OK ]"), source)
		return nil
	}

	sets, err := scaffold.Sets(templates)
	if err != nil {
		return fmt.Errorf("listing template sets: %w", err)
	}
	if !slices.Contains(sets, rec.TemplateSet) {
		fmt.Fprintf(out, "  %s template set %q is not embedded (available: %s)\n",
			st.Error.Render("[FAIL]"), rec.TemplateSet, strings.Join(sets, ", "))
		return fmt.Errorf("template set %q not found", rec.TemplateSet)
	}
	fmt.Fprintf(out, "  %s template set %s (available: %s)\n",
		st.Success.Render("[ OK ]"), rec.TemplateSet, strings.Join(sets, ", "))
	return nil
}

func runManifestCheck(out io.Writer, path string) error {
	st := newStyles(out)
	fmt.Fprintf(out, "Manifest validation: %s\n", path)

	result, err := manifest.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(out, "  %s %v\n", st.Error.Render("[FAIL]"), err)
		return fmt.Errorf("manifest validation failed: %w", err)
	}

	if result.Valid {
		fmt.Fprintf(out, "  %s Valid starter manifest\n", st.Success.Render("[ OK ]"))
		return nil
	}

	fmt.Fprintf(out, "  %s %d validation issue(s):\n", st.Error.Render("[FAIL]"), len(result.Issues))
	for _, issue := range result.Issues {
		fmt.Fprintf(out, "    - %s\n", issue)
	}
	return fmt.Errorf("manifest %s has %d validation issue(s)", path, len(result.Issues))
}
