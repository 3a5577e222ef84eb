package guide

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// FilterPaths returns the files under root matching any include pattern
// and no exclude pattern. Patterns are slash separated, relative to root,
// and support "**". The result is sorted and free of duplicates.
func FilterPaths(root string, include, exclude []string) ([]string, error) {
	fsys := os.DirFS(root)
	matched := make(map[string]bool)
	for _, pattern := range include {
		names, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, name := range names {
			matched[name] = true
		}
	}
	for _, pattern := range exclude {
		names, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, name := range names {
			delete(matched, name)
		}
	}

	out := make([]string, 0, len(matched))
	for name := range matched {
		out = append(out, filepath.Join(root, filepath.FromSlash(name)))
	}
	slices.Sort(out)
	return out, nil
}
