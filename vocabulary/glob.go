package vocabulary

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/semgloss/glossary"
)

// Override records a key redefined by a later file.
type Override struct {
	Key  string
	File string
}

// LoadResult is the merged content of several vocabulary files.
type LoadResult struct {
	Terms     map[string]glossary.Entry
	Files     []string
	Overrides []Override
}

// ResolveFiles expands patterns to regular files. Patterns without glob
// characters must name an existing file. Matches are sorted within each
// pattern and deduplicated across patterns.
func ResolveFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		matches, err := resolvePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

func resolvePattern(pattern string) ([]string, error) {
	if !containsGlob(pattern) {
		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("path is a directory: %s", absPath)
		}
		return []string{absPath}, nil
	}

	absPattern, err := filepath.Abs(pattern)
	if err != nil {
		return nil, err
	}
	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, m)
	}
	slices.Sort(files)
	return files, nil
}

// LoadGlob loads and merges every file matched by patterns.
func LoadGlob(patterns []string) (*LoadResult, error) {
	files, err := ResolveFiles(patterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, strings.Join(patterns, ", "))
	}

	result := &LoadResult{
		Terms: make(map[string]glossary.Entry),
		Files: files,
	}
	for _, path := range files {
		terms, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		overridden := Merge(result.Terms, terms)
		slices.Sort(overridden)
		for _, key := range overridden {
			result.Overrides = append(result.Overrides, Override{Key: key, File: path})
		}
	}
	return result, nil
}

// WatchRoots returns the directories to watch for changes to files matched by
// patterns: the static prefix of each glob, or the parent of a literal path.
func WatchRoots(patterns []string) ([]string, error) {
	var roots []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		absPattern, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}
		var root string
		if containsGlob(pattern) {
			base, _ := doublestar.SplitPattern(filepath.ToSlash(absPattern))
			root = filepath.FromSlash(base)
		} else {
			root = filepath.Dir(absPattern)
		}
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	return roots, nil
}

// MatchesAny reports whether path matches one of patterns.
func MatchesAny(patterns []string, path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, pattern := range patterns {
		absPattern, err := filepath.Abs(pattern)
		if err != nil {
			continue
		}
		if !containsGlob(pattern) {
			if absPattern == absPath {
				return true
			}
			continue
		}
		if ok, _ := doublestar.PathMatch(absPattern, absPath); ok {
			return true
		}
	}
	return false
}

func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
