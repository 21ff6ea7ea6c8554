// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ast provides syntax trees for the structural rule sets.
//
// Trees are produced by tree-sitter. A parser only returns a tree when the
// source is free of syntax errors; rule sets treat any other outcome as
// "no structural parse available" and fall back to line patterns.
package ast

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Parser produces syntax trees for one language.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Parser interface {
	// Parse builds a syntax tree for content.
	//
	// Returns a *SyntaxError (errors.Is ErrSyntax) when the source does not
	// parse cleanly. The caller must Close the returned tree.
	Parse(ctx context.Context, content []byte, filePath string) (*Tree, error)

	// Language returns the language name, e.g. "python".
	Language() string

	// Extensions returns the handled extensions including the dot, e.g. ".py".
	Extensions() []string
}

// =============================================================================
// TREE
// =============================================================================

// Tree is a parsed file.
//
// Nodes obtained from Root are only valid until Close is called.
type Tree struct {
	// FilePath is the path the tree was parsed for.
	FilePath string

	// Language is the parser language.
	Language string

	// Hash is the SHA256 of the source, hex-encoded.
	Hash string

	// Source is the parsed content. Node byte ranges index into it.
	Source []byte

	tree *sitter.Tree
}

// Root returns the module node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Text returns the source text covered by n.
func (t *Tree) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(t.Source)
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry maps file extensions to parsers.
//
// Thread Safety: Safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	byLanguage  map[string]Parser
	byExtension map[string]Parser
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byLanguage:  make(map[string]Parser),
		byExtension: make(map[string]Parser),
	}
}

// DefaultRegistry returns a registry with every built-in parser registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewPythonParser())
	return r
}

// Register adds p, replacing any parser previously registered for the same
// language or extensions.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byLanguage[p.Language()] = p
	for _, ext := range p.Extensions() {
		r.byExtension[strings.ToLower(ext)] = p
	}
}

// ForPath returns the parser for the extension of path.
func (r *Registry) ForPath(path string) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byExtension[strings.ToLower(filepath.Ext(path))]
	return p, ok
}

// ForLanguage returns the parser registered for language.
func (r *Registry) ForLanguage(language string) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byLanguage[language]
	return p, ok
}

// Languages returns the registered language names, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byLanguage))
	for lang := range r.byLanguage {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}
