package platform

import (
	"fmt"
	"io/fs"
	"os"
	"runtime"
)

// IsExecutable reports whether mode carries any execute bit.
func IsExecutable(mode fs.FileMode) bool {
	return mode.Perm()&0o111 != 0
}

// MarkExecutable adds an execute bit for every class that can read path.
// Windows has no execute bits, so it is a no-op there.
func MarkExecutable(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	perm := info.Mode().Perm()
	if err := os.Chmod(path, perm|(perm&0o444)>>2); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}
