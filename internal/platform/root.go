package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindNotesFile looks for name in startDir and then in each parent,
// the way git finds its repository. It returns the absolute path of the
// first match.
func FindNotesFile(startDir, name string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, name) {
			return filepath.Join(dir, name), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%s not found above %s", name, abs)
}

// ResolveNotesPath returns path unchanged when it is absolute, nested or
// present in the working directory. A bare file name that does not exist
// yet is searched for upwards; if nothing is found, path is returned as is.
func ResolveNotesPath(path string) string {
	if filepath.IsAbs(path) || filepath.Base(path) != path || hasFile(".", path) {
		return path
	}
	if found, err := FindNotesFile(".", path); err == nil {
		return found
	}
	return path
}

func hasFile(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && !info.IsDir()
}
