package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/humbkr/nextjs-project-starter/internal/platform"
)

//go:embed all:templates
var templateFS embed.FS

// Action describes what Copy did with one file.
type Action string

const (
	ActionCreate    Action = "create"
	ActionOverwrite Action = "overwrite"
	ActionIdentical Action = "identical"
)

// File is one copied template file.
type File struct {
	Path   string // slash-separated, relative to the output directory
	Action Action
}

// Result holds the outcome of a copy.
type Result struct {
	OutputDir string
	Files     []File
}

// Paths returns the relative paths of the copied files.
func (r *Result) Paths() []string {
	out := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		out = append(out, f.Path)
	}
	return out
}

// Embedded returns the template tree compiled into the binary. Sets are
// its top-level directories.
func Embedded() fs.FS {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Sets lists the template sets available in fsys.
func Sets(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var sets []string
	for _, e := range entries {
		if e.IsDir() {
			sets = append(sets, e.Name())
		}
	}
	return sets, nil
}

// Copy writes every file of template set into outputDir, keeping relative
// paths and overwriting what is already there. Hidden files are included.
// Files whose content already matches are left untouched.
func Copy(fsys fs.FS, set, outputDir string) (*Result, error) {
	root := path.Clean(set)
	info, err := fs.Stat(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("template set %q not found: %w", set, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template set %q is not a directory", set)
	}

	result := &Result{OutputDir: outputDir}

	err = fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel := p
		switch {
		case p == root:
			rel = "."
		case root != ".":
			rel = p[len(root)+1:]
		}
		target := filepath.Join(outputDir, filepath.FromSlash(rel))

		if d.IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", p, err)
		}

		action, err := writeFile(target, content)
		if err != nil {
			return err
		}
		if info, err := d.Info(); err == nil && platform.IsExecutable(info.Mode()) {
			if err := platform.MarkExecutable(target); err != nil {
				return err
			}
		}
		result.Files = append(result.Files, File{Path: rel, Action: action})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func writeFile(target string, content []byte) (Action, error) {
	action := ActionCreate
	existing, err := platform.FileSHA256(target)
	switch {
	case err == nil && existing == platform.BytesSHA256(content):
		return ActionIdentical, nil
	case err == nil:
		action = ActionOverwrite
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("reading %s: %w", target, err)
	}

	if err := os.WriteFile(target, content, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", target, err)
	}
	return action, nil
}
