// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rules holds what the four rule sets share: the per-file input
// handle, line splitting, regex pattern tables and complexity counting.
package rules

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/codeguardian/services/guardian/ast"
)

// File is the input every rule set receives.
//
// Description:
//
//	Content is split into lines once and, when a parser is registered for
//	the extension, parsed once. The tree is shared by the structural
//	checks of the security, performance and maintainability rule sets.
//
// Thread Safety: Read-only after NewFile returns. Close must be called once
// all rule sets are done.
type File struct {
	// Path is the file path as discovered.
	Path string

	// Content is the decoded file text.
	Content string

	// Lines is Content split on line boundaries.
	Lines []string

	// Tree is the syntax tree, or nil when no structural parse is available.
	Tree *ast.Tree

	// ParseErr explains why Tree is nil.
	ParseErr error
}

// NewFile splits content and, if registry has a parser for path, parses it.
//
// A nil registry disables structural parsing.
func NewFile(ctx context.Context, registry *ast.Registry, path, content string) *File {
	f := &File{
		Path:    path,
		Content: content,
		Lines:   SplitLines(content),
	}

	if registry == nil {
		f.ParseErr = ast.ErrUnsupportedLanguage
		return f
	}
	parser, ok := registry.ForPath(path)
	if !ok {
		f.ParseErr = fmt.Errorf("%w: %s", ast.ErrUnsupportedLanguage, filepath.Ext(path))
		return f
	}

	tree, err := parser.Parse(ctx, []byte(content), path)
	if err != nil {
		f.ParseErr = err
		return f
	}
	f.Tree = tree
	return f
}

// Close releases the syntax tree.
func (f *File) Close() {
	if f.Tree != nil {
		f.Tree.Close()
		f.Tree = nil
	}
}

// Structural reports whether a syntax tree is available.
func (f *File) Structural() bool {
	return f.Tree != nil
}

// Parseable reports whether the language has a parser at all, i.e. whether
// structural checks apply to this file.
func (f *File) Parseable() bool {
	return f.Tree != nil || !errors.Is(f.ParseErr, ast.ErrUnsupportedLanguage)
}

// SyntaxError reports whether parsing failed because of invalid syntax.
func (f *File) SyntaxError() bool {
	return errors.Is(f.ParseErr, ast.ErrSyntax)
}

// HasExtension reports whether the path ends with one of exts.
func (f *File) HasExtension(exts ...string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(f.Path, ext) {
			return true
		}
	}
	return false
}
