// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rules

import (
	"context"
	"errors"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/codeguardian/services/guardian/ast"
	"github.com/AleutianAI/codeguardian/services/guardian/models"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"single no newline", "a", []string{"a"}},
		{"trailing newline", "a\nb\n", []string{"a", "b"}},
		{"crlf", "a\r\nb", []string{"a", "b"}},
		{"bare cr", "a\rb", []string{"a", "b"}},
		{"blank lines kept", "a\n\n\nb", []string{"a", "", "", "b"}},
		{"only newline", "\n", []string{""}},
		{"unicode separator", "a\u2028b", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLines(tt.in))
		})
	}
}

func TestWidthAndIndent(t *testing.T) {
	assert.Equal(t, 3, Width("héé"))
	assert.Equal(t, 4, Indent("    x = 1"))
	assert.Equal(t, 2, Indent("\t\tpass"))
	assert.Equal(t, 3, Indent("   "))
	assert.Equal(t, "x = 1", Snippet("   x = 1\t"))
}

func TestMatchLines_OrderAndMultiplicity(t *testing.T) {
	patterns := []Pattern{
		Severe(IgnoreCase(`eval\s*\(`), "eval", models.SeverityCritical),
		Severe(`exec\s*\(`, "exec", models.SeverityCritical),
	}
	hits := MatchLines([]string{"ok", "EVAL(x); exec(y)", "exec(z)"}, patterns)

	require.Len(t, hits, 3)
	assert.Equal(t, 2, hits[0].Line)
	assert.Equal(t, "eval", hits[0].Pattern.Description)
	assert.Equal(t, 2, hits[1].Line)
	assert.Equal(t, "exec", hits[1].Pattern.Description)
	assert.Equal(t, 3, hits[2].Line)
}

func TestNewFile_Python(t *testing.T) {
	f := NewFile(context.Background(), ast.DefaultRegistry(), "m.py", "x = 1\n")
	defer f.Close()

	assert.True(t, f.Structural())
	assert.True(t, f.Parseable())
	assert.False(t, f.SyntaxError())
	assert.Equal(t, []string{"x = 1"}, f.Lines)
}

func TestNewFile_SyntaxError(t *testing.T) {
	f := NewFile(context.Background(), ast.DefaultRegistry(), "m.py", "def (:\n")
	defer f.Close()

	assert.False(t, f.Structural())
	assert.True(t, f.Parseable())
	assert.True(t, f.SyntaxError())
}

func TestNewFile_Unsupported(t *testing.T) {
	f := NewFile(context.Background(), ast.DefaultRegistry(), "app.js", "var x = 1;")
	defer f.Close()

	assert.False(t, f.Structural())
	assert.False(t, f.Parseable())
	assert.True(t, errors.Is(f.ParseErr, ast.ErrUnsupportedLanguage))
	assert.True(t, f.HasExtension(".ts", ".js"))

	noRegistry := NewFile(context.Background(), nil, "m.py", "x = 1")
	assert.False(t, noRegistry.Parseable())
}

func TestComplexityIncrement(t *testing.T) {
	src := `
def f(a, b, c):
    if a and b and c:
        pass
    elif b or c:
        pass
    for i in range(3):
        while a:
            pass
    try:
        pass
    except ValueError:
        pass
    with open("x") as fh:
        pass
    return [x for x in a if x]
`
	f := NewFile(context.Background(), ast.DefaultRegistry(), "c.py", src)
	defer f.Close()
	require.True(t, f.Structural())

	total := 0
	ast.Inspect(f.Tree.Root(), func(n *sitter.Node) bool {
		total += ComplexityIncrement(n)
		return true
	})
	// if, 2 ands, elif, or, for, while, try, with
	assert.Equal(t, 9, total)
}

func TestGuard(t *testing.T) {
	err := Guard(func() { panic("boom") })
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())

	assert.NoError(t, Guard(func() {}))
}

func TestMeanAndClamp(t *testing.T) {
	assert.Equal(t, 0.0, Mean([]int{}))
	assert.Equal(t, 2.5, Mean([]int{2, 3}))
	assert.Equal(t, 0.0, Clamp(-1, 0, 10))
	assert.Equal(t, 10.0, Clamp(12, 0, 10))
}
