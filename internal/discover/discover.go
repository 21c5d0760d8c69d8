// Package discover selects the source files a run operates on. Directories are
// listed one level deep only; subdirectories are never entered.
package discover

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtension is the source extension targeted when none is configured.
const DefaultExtension = ".c"

// ErrNoFiles is returned by Paths when nothing matched.
var ErrNoFiles = errors.New("no source files found")

// Matches reports whether name is a visible file name with extension ext.
// Names starting with a dot are skipped, like shell globs do.
func Matches(name, ext string) bool {
	return !strings.HasPrefix(name, ".") && filepath.Ext(name) == ext
}

// Files lists the files in dir whose extension is ext, sorted by name.
// Subdirectories are not entered.
func Files(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if !Matches(entry.Name(), ext) {
			continue
		}
		ok, err := isFile(dir, entry)
		if err != nil {
			return nil, err
		}
		if ok {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func isFile(dir string, entry fs.DirEntry) (bool, error) {
	if entry.Type().IsRegular() {
		return true, nil
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false, nil
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", entry.Name(), err)
	}
	return info.Mode().IsRegular(), nil
}

// Paths resolves command-line arguments into a file set. A directory argument
// contributes its matching files, a file argument is kept when its extension
// matches. Duplicates are dropped and the result is sorted. With no arguments
// the working directory is used.
func Paths(ctx context.Context, paths []string, ext string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		key := filepath.Clean(path)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		files = append(files, key)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if info.IsDir() {
			listed, err := Files(p, ext)
			if err != nil {
				return nil, err
			}
			for _, f := range listed {
				addFile(f)
			}
			continue
		}
		if filepath.Ext(p) == ext {
			addFile(p)
		}
	}

	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	sort.Strings(files)
	return files, nil
}
