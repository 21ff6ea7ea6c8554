// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// SourceExtensions are the file extensions picked up when walking a
// directory. Explicitly named files are analyzed regardless of extension.
var SourceExtensions = []string{".py", ".js", ".ts", ".java", ".cpp", ".c", ".h", ".go", ".rs", ".php"}

// =============================================================================
// EXCLUDE MATCHING
// =============================================================================

// Excluder decides whether a path is filtered out by glob patterns.
//
// Description:
//
//	Patterns use shell-style wildcards where '*' also crosses '/'. A path
//	is excluded when a pattern matches either the whole path or its base
//	name. A pattern ending in '/' names a directory and excludes every
//	path with a component of that name.
//
// Thread Safety: Immutable after construction, safe for concurrent use.
type Excluder struct {
	globs []*regexp.Regexp
	dirs  []*regexp.Regexp
}

// NewExcluder compiles patterns. Empty patterns are ignored.
func NewExcluder(patterns []string) *Excluder {
	e := &Excluder{}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if dir, ok := strings.CutSuffix(p, "/"); ok && dir != "" {
			e.dirs = append(e.dirs, globToRegexp(dir))
			continue
		}
		e.globs = append(e.globs, globToRegexp(p))
	}
	return e
}

// Excluded reports whether path is filtered out.
func (e *Excluder) Excluded(path string) bool {
	base := filepath.Base(path)
	for _, g := range e.globs {
		if g.MatchString(path) || g.MatchString(base) {
			return true
		}
	}
	if len(e.dirs) == 0 {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if e.excludedDir(part) {
			return true
		}
	}
	return false
}

// ExcludedDir reports whether a directory named name is pruned from walks.
func (e *Excluder) ExcludedDir(name string) bool {
	return e.excludedDir(name)
}

func (e *Excluder) excludedDir(name string) bool {
	for _, d := range e.dirs {
		if d.MatchString(name) {
			return true
		}
	}
	return false
}

// globToRegexp translates a shell-style pattern into an anchored regexp.
// An unterminated '[' is taken literally.
func globToRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`(?s)^`)

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			// A leading '!' negates; a ']' right after the opener is a member.
			j := i + 1
			if j < len(pattern) && pattern[j] == '!' {
				j++
			}
			if j < len(pattern) && pattern[j] == ']' {
				j++
			}
			end := strings.IndexByte(pattern[j:], ']')
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class := strings.ReplaceAll(pattern[i+1:j+end], `\`, `\\`)
			i = j + end
			switch {
			case strings.HasPrefix(class, "!"):
				class = "^" + class[1:]
			case strings.HasPrefix(class, "^"):
				class = `\` + class
			}
			b.WriteString("[" + class + "]")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString(`$`)
	return regexp.MustCompile(b.String())
}

// =============================================================================
// DISCOVERY
// =============================================================================

// Discover expands paths into the ordered list of files to analyze.
//
// Description:
//
//	Files are kept unless excluded. Directories are walked recursively in
//	lexical order, keeping files with a SourceExtensions suffix that are
//	not excluded. Excluded directories are not descended into. Entries
//	below a root that cannot be read are logged and skipped.
//
// Inputs:
//
//	paths - Files and directories, in the order they should be scanned.
//	excluder - Exclude filter. Must not be nil.
//	logger - Receives skipped entries. Nil means slog.Default().
//
// Outputs:
//
//	[]string - Files in discovery order. Never nil.
//	error - ErrPathNotFound for a missing root, or a root that cannot be read.
func Discover(paths []string, excluder *Excluder, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	files := make([]string, 0)
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrPathNotFound, root)
			}
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}

		if !info.IsDir() {
			if !excluder.Excluded(root) {
				files = append(files, root)
			}
			continue
		}

		found, err := walkDir(root, excluder, logger)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func walkDir(root string, excluder *Excluder, logger *slog.Logger) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root || d == nil {
				return fmt.Errorf("walk %s: %w", path, err)
			}
			logger.Warn("skipping unreadable path",
				slog.String("path", path),
				slog.String("error", err.Error()))
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && excluder.excludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isRegularFile(path, d) {
			return nil
		}
		if !slices.Contains(SourceExtensions, filepath.Ext(path)) || excluder.Excluded(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// isRegularFile follows symlinks so linked files are scanned like real ones.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
