package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// RuntimeNode is the executable queried for the runtime version.
const RuntimeNode = "node"

// ErrMissingExecutable is returned when a required executable is not on PATH.
var ErrMissingExecutable = errors.New("required executable not found")

// MissingExecutableError names the missing executable and where to get it.
type MissingExecutableError struct {
	Name       string
	InstallURL string
}

func (e *MissingExecutableError) Error() string {
	msg := fmt.Sprintf("%s is not installed", e.Name)
	if e.InstallURL != "" {
		msg += ". Follow instructions here: " + e.InstallURL
	}
	return msg
}

func (e *MissingExecutableError) Unwrap() error { return ErrMissingExecutable }

// Requirements lists what the environment must provide.
type Requirements struct {
	// Runtime is the executable whose version is reported (normally "node").
	Runtime string
	// RuntimeConstraint is a semver constraint such as ">= 18.18.0". Empty
	// disables the check.
	RuntimeConstraint string
	// PackageManager must be on PATH; its absence aborts the run.
	PackageManager string
	// InstallURL is shown when PackageManager is missing.
	InstallURL string
}

// Report is the outcome of a successful validation.
type Report struct {
	RuntimeVersion     string
	RuntimePath        string
	PackageManagerPath string
	Warnings           []string
}

// NodeVersion runs `<runtime> -v` and returns the raw output and parsed version.
func NodeVersion(ctx context.Context, ex Executor, runtime string) (string, *semver.Version, error) {
	if runtime == "" {
		runtime = RuntimeNode
	}
	res, err := ex.Run(ctx, Command{Name: runtime, Args: []string{"-v"}, Quiet: true})
	if err != nil {
		return "", nil, err
	}
	raw := strings.TrimSpace(res.Stdout)
	if res.ExitCode != 0 {
		return raw, nil, fmt.Errorf("%s -v exited with status %d", runtime, res.ExitCode)
	}
	v, err := parseSemver(raw)
	if err != nil {
		return raw, nil, fmt.Errorf("parsing %s version %q: %w", runtime, raw, err)
	}
	return raw, v, nil
}

// Validate checks the runtime version and the package manager. Only a
// missing package manager is fatal; runtime problems become warnings.
// It never writes to the filesystem.
func Validate(ctx context.Context, ex Executor, req Requirements) (*Report, error) {
	runtime := req.Runtime
	if runtime == "" {
		runtime = RuntimeNode
	}
	report := &Report{}

	if path, err := ex.LookPath(runtime); err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%s not found on PATH", runtime))
	} else {
		report.RuntimePath = path
		raw, v, err := NodeVersion(ctx, ex, runtime)
		report.RuntimeVersion = raw
		switch {
		case err != nil:
			report.Warnings = append(report.Warnings, err.Error())
		case req.RuntimeConstraint != "":
			ok, err := satisfies(v, req.RuntimeConstraint)
			if err != nil {
				report.Warnings = append(report.Warnings, err.Error())
			} else if !ok {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("%s %s does not satisfy %q", runtime, raw, req.RuntimeConstraint))
			}
		}
	}

	if req.PackageManager == "" {
		return nil, fmt.Errorf("no package manager configured")
	}
	path, err := ex.LookPath(req.PackageManager)
	if err != nil {
		return report, &MissingExecutableError{Name: req.PackageManager, InstallURL: req.InstallURL}
	}
	report.PackageManagerPath = path

	return report, nil
}

func satisfies(v *semver.Version, constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid runtime constraint %q: %w", constraint, err)
	}
	return c.Check(v), nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	return semver.NewVersion(version)
}
