// Package gitignore appends rule blocks to a project's .gitignore.
package gitignore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the ignore-file name.
const FileName = ".gitignore"

// Separator goes between existing content and an appended block.
const Separator = "\n\n"

// AppendBlock appends block to dir/.gitignore. Trailing whitespace of the
// existing content is trimmed and a blank line separates it from the block.
// A missing file is created holding only the block. If the file already
// ends with block, nothing is written.
func AppendBlock(dir, block string) error {
	gitignorePath := filepath.Join(dir, FileName)

	content, err := os.ReadFile(gitignorePath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", FileName, err)
	}

	existing := strings.TrimRight(string(content), " \t\r\n")
	if HasBlock(existing, block) {
		return nil
	}

	output := block
	if existing != "" {
		output = existing + Separator + block
	}

	if err := os.WriteFile(gitignorePath, []byte(output), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", FileName, err)
	}
	return nil
}

// HasBlock reports whether content already ends with block, ignoring
// trailing whitespace on both.
func HasBlock(content, block string) bool {
	block = strings.TrimRight(block, " \t\r\n")
	if block == "" {
		return true
	}
	return strings.HasSuffix(strings.TrimRight(content, " \t\r\n"), block)
}
