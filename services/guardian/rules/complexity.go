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
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AleutianAI/codeguardian/services/guardian/ast"
)

// ComplexityIncrement returns how much n adds to the enclosing function's
// cyclomatic-style complexity.
//
// Description:
//
//	if/elif, for, while, try and with each add one. Boolean operators add
//	one per operator node; tree-sitter nests "a and b and c" as two binary
//	nodes, which matches counting operands minus one.
func ComplexityIncrement(n *sitter.Node) int {
	switch n.Type() {
	case ast.NodeIfStatement, ast.NodeElifClause,
		ast.NodeForStatement, ast.NodeWhileStatement,
		ast.NodeTryStatement, ast.NodeWithStatement,
		ast.NodeBooleanOperator:
		return 1
	default:
		return 0
	}
}

// IsFunction reports whether n is a function definition.
func IsFunction(n *sitter.Node) bool {
	return n.Type() == ast.NodeFunctionDefinition
}

// IsLoop reports whether n is a for or while statement.
func IsLoop(n *sitter.Node) bool {
	return n.Type() == ast.NodeForStatement || n.Type() == ast.NodeWhileStatement
}

// Mean returns the arithmetic mean of values, or 0 for none.
func Mean[T int | float64](values []T) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values))
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Guard runs fn and converts a panic into an error.
//
// Structural checks run inside Guard so an unexpected tree shape degrades
// to a low-severity analysis finding instead of aborting the scan.
func Guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	fn()
	return nil
}
