package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolvePaths resolves a list of paths relative to a base directory.
// Absolute paths are returned unchanged, a leading "~/" expands to the
// user's home directory, and other relative paths are joined onto baseDir.
func ResolvePaths(paths []string, baseDir string) []string {
	if len(paths) == 0 {
		return nil
	}

	resolved := make([]string, 0, len(paths))
	for _, path := range paths {
		resolved = append(resolved, ResolvePath(path, baseDir))
	}
	return resolved
}

// ResolvePath resolves a single path the same way as [ResolvePaths]. An
// empty path stays empty.
func ResolvePath(path, baseDir string) string {
	switch {
	case path == "":
		return ""
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	case filepath.IsAbs(path):
		return path
	default:
		return filepath.Join(baseDir, path)
	}
}
