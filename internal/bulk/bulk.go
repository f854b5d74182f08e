// Package bulk discovers template files under a directory tree for the bulk
// commands.
package bulk

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/FocuswithJustin/ArenaForge/core/errors"
)

// Scan returns the template files (.yaml, .yml) under root in sorted order.
// Directories whose name ends in "_variations" are always skipped, as are
// any named in ignoreDirs. Hidden files and directories are skipped unless
// includeHidden is set.
func Scan(root string, ignoreDirs []string, includeHidden bool) ([]string, error) {
	ignored := make(map[string]bool, len(ignoreDirs))
	for _, d := range ignoreDirs {
		ignored[filepath.Clean(d)] = true
	}

	var templates []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		hidden := strings.HasPrefix(name, ".") && path != root

		if d.IsDir() {
			if path == root {
				return nil
			}
			if hidden && !includeHidden {
				return filepath.SkipDir
			}
			if strings.HasSuffix(name, "_variations") || ignored[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if hidden && !includeHidden {
			return nil
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml":
			templates = append(templates, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewIO("scan", root, err)
	}

	sort.Strings(templates)
	return templates, nil
}
