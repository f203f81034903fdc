// Package recipe holds the fixed plan the generator applies to every new
// project: which app to scaffold, which packages to add, what to clean up
// and which ignore rules to append. The plan ships embedded as YAML.
package recipe

import (
	_ "embed"
	"fmt"

	"go.yaml.in/yaml/v3"
)

//go:embed recipe.yaml
var rawRecipe []byte

// Recipe is the full generation plan.
type Recipe struct {
	Framework    string            `yaml:"framework"`
	TemplateSet  string            `yaml:"template_set"`
	Dependencies []DependencyGroup `yaml:"dependencies"`
	Cleanup      Cleanup           `yaml:"cleanup"`
	Gitignore    string            `yaml:"gitignore"`
}

// DependencyGroup is one package-manager install invocation.
type DependencyGroup struct {
	Name     string   `yaml:"name"`
	Message  string   `yaml:"message,omitempty"`
	Dev      bool     `yaml:"dev,omitempty"`
	Packages []string `yaml:"packages"`
	// MergeManifest merges the starter configuration into package.json
	// once this group is installed.
	MergeManifest bool `yaml:"merge_manifest,omitempty"`
}

// Cleanup lists scaffold leftovers removed at the end of a run. Paths are
// relative to the project directory.
type Cleanup struct {
	Files []string `yaml:"files"`
	Dirs  []string `yaml:"dirs"`
}

// Load parses the embedded recipe.
func Load() (*Recipe, error) {
	return Parse(rawRecipe)
}

// Parse decodes and validates a recipe document.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing recipe: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks the recipe is usable.
func (r *Recipe) Validate() error {
	if r.Framework == "" {
		return fmt.Errorf("recipe: framework is required")
	}
	if r.TemplateSet == "" {
		return fmt.Errorf("recipe: template_set is required")
	}
	seen := make(map[string]bool, len(r.Dependencies))
	for i, g := range r.Dependencies {
		if g.Name == "" {
			return fmt.Errorf("recipe: dependency group %d has no name", i)
		}
		if seen[g.Name] {
			return fmt.Errorf("recipe: duplicate dependency group %q", g.Name)
		}
		seen[g.Name] = true
		if len(g.Packages) == 0 {
			return fmt.Errorf("recipe: dependency group %q has no packages", g.Name)
		}
	}
	return nil
}
