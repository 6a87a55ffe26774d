package registry

import (
	"os"
	"path/filepath"
	"strings"
)

// statPdsc resolves a project-local pack `path:` to the pdsc file it
// contains: the path itself if it already names a .pdsc file, or the
// single .pdsc file found directly within it otherwise.
func statPdsc(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".pdsc") {
			return filepath.Join(path, e.Name()), nil
		}
	}
	return "", os.ErrNotExist
}
