// Package workspace enumerates the project's source files, honoring
// .gitignore rules.
package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"blastradius/internal/symbols"
)

// skipDirs are never descended into regardless of ignore rules
var skipDirs = map[string]struct{}{
	"node_modules": {},
	"dist":         {},
	"out":          {},
	"build":        {},
	"coverage":     {},
}

// Scan walks root and returns the absolute, normalized paths of source
// files with one of the given extensions, in directory-walk order (entries
// of each directory in lexical order). Hidden directories and
// .gitignore matches are skipped.
func Scan(root string, extensions []string) ([]string, error) {
	var ignore *gitignore.GitIgnore
	if gi, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		ignore = gi
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if _, skip := skipDirs[name]; skip {
				return filepath.SkipDir
			}
			if ignore != nil && ignore.MatchesPath(relPath(root, path)+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !hasExtension(name, extensions) {
			return nil
		}
		if ignore != nil && ignore.MatchesPath(relPath(root, path)) {
			return nil
		}
		files = append(files, symbols.NormalizePath(path))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Exists reports whether a path is still present on disk
func Exists(path string) bool {
	_, err := os.Stat(filepath.FromSlash(path))
	return err == nil
}

func hasExtension(name string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) && !strings.HasSuffix(name, ".d.ts") {
			return true
		}
	}
	return false
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
