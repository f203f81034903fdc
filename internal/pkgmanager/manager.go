// Package pkgmanager builds and runs JavaScript package-manager commands:
// scaffolding a new app with "create" and adding dependencies.
package pkgmanager

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/humbkr/nextjs-project-starter/internal/runtime"
)

// ErrUnsupportedManager is returned for a package manager name with no flavor.
var ErrUnsupportedManager = errors.New("unsupported package manager")

// flavor captures how one package manager spells the commands we need.
type flavor struct {
	devFlag    string
	addVerb    string
	installURL string
}

var flavors = map[string]flavor{
	"yarn": {addVerb: "add", devFlag: "--dev", installURL: "https://yarnpkg.com/lang/en/docs/install"},
	"npm":  {addVerb: "install", devFlag: "--save-dev", installURL: "https://docs.npmjs.com/downloading-and-installing-node-js-and-npm"},
	"pnpm": {addVerb: "add", devFlag: "--save-dev", installURL: "https://pnpm.io/installation"},
}

// Supported returns the supported package manager names, sorted.
func Supported() []string {
	names := make([]string, 0, len(flavors))
	for name := range flavors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Manager runs one package manager through an Executor.
type Manager struct {
	name string
	f    flavor
	ex   runtime.Executor
}

// New returns the Manager for name.
func New(name string, ex runtime.Executor) (*Manager, error) {
	f, ok := flavors[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %v)", ErrUnsupportedManager, name, Supported())
	}
	return &Manager{name: name, f: f, ex: ex}, nil
}

// Name returns the executable name.
func (m *Manager) Name() string { return m.name }

// InstallURL returns the page explaining how to install the manager.
func (m *Manager) InstallURL() string { return m.f.installURL }

// CreateCommand returns the command that scaffolds app (e.g. "next-app")
// into a new directory called project under dir.
func (m *Manager) CreateCommand(dir, app, project string) runtime.Command {
	return runtime.Command{
		Name: m.name,
		Args: []string{"create", app, project},
		Dir:  dir,
	}
}

// AddCommand returns the command that adds packages to the project in dir.
func (m *Manager) AddCommand(dir string, packages []string, dev bool) runtime.Command {
	args := []string{m.f.addVerb}
	if dev {
		args = append(args, m.f.devFlag)
	}
	args = append(args, packages...)
	return runtime.Command{Name: m.name, Args: args, Dir: dir}
}

// Create runs CreateCommand.
func (m *Manager) Create(ctx context.Context, dir, app, project string) (runtime.Command, *runtime.Result, error) {
	cmd := m.CreateCommand(dir, app, project)
	res, err := m.ex.Run(ctx, cmd)
	return cmd, res, err
}

// Add runs AddCommand. An empty package list runs nothing.
func (m *Manager) Add(ctx context.Context, dir string, packages []string, dev bool) (runtime.Command, *runtime.Result, error) {
	cmd := m.AddCommand(dir, packages, dev)
	if len(packages) == 0 {
		return cmd, &runtime.Result{}, nil
	}
	res, err := m.ex.Run(ctx, cmd)
	return cmd, res, err
}
