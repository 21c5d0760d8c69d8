package source

import (
	"path/filepath"
	"strings"
)

// RelativePath returns path relative to baseDir when it lies inside it,
// and the cleaned absolute path otherwise.
func RelativePath(path, baseDir string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(absPath), nil
	}
	return normalizePath(rel), nil
}

func normalizePath(p string) string {
	// forward slashes so reports read the same on every platform
	return filepath.ToSlash(filepath.Clean(p))
}
