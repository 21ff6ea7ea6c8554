// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package performance

import (
	"fmt"
	"slices"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AleutianAI/codeguardian/services/guardian/ast"
	"github.com/AleutianAI/codeguardian/services/guardian/config"
	"github.com/AleutianAI/codeguardian/services/guardian/models"
	"github.com/AleutianAI/codeguardian/services/guardian/rules"
)

// maxLoopDepth is the deepest loop nesting that is not reported.
const maxLoopDepth = 2

// visitor tracks per-function complexity and loop nesting.
//
// Complexity is saved and reset to 1 on entering a function and restored on
// leaving it, so nested functions are measured on their own. Loop nesting
// is not reset at function boundaries.
type visitor struct {
	tree            *ast.Tree
	path            string
	maxComplexity   int
	checkComplexity bool
	checkLoops      bool

	findings     []models.Finding
	complexity   int
	saved        []int
	loopDepth    int
	complexities []int
}

func newVisitor(tree *ast.Tree, path string, cfg config.PerformanceConfig) *visitor {
	return &visitor{
		tree:            tree,
		path:            path,
		maxComplexity:   cfg.MaxComplexity,
		checkComplexity: cfg.CheckComplexity,
		checkLoops:      cfg.CheckInefficientLoops,
	}
}

func (v *visitor) Enter(n *sitter.Node) bool {
	switch n.Type() {
	case ast.NodeFunctionDefinition:
		v.saved = append(v.saved, v.complexity)
		v.complexity = 1
		return true
	case ast.NodeForStatement:
		v.enterLoop(n)
		v.checkRangeLen(n)
	case ast.NodeWhileStatement:
		v.enterLoop(n)
	case ast.NodeListComprehension:
		v.checkNestedComprehension(n)
	case ast.NodeCall:
		v.checkAppend(n)
	}
	v.complexity += rules.ComplexityIncrement(n)
	return true
}

func (v *visitor) Leave(n *sitter.Node) {
	switch n.Type() {
	case ast.NodeFunctionDefinition:
		v.leaveFunction(n)
	case ast.NodeForStatement, ast.NodeWhileStatement:
		v.loopDepth--
	}
}

func (v *visitor) leaveFunction(n *sitter.Node) {
	if v.checkComplexity && v.complexity > v.maxComplexity {
		severity := models.SeverityMedium
		if float64(v.complexity) > float64(v.maxComplexity)*1.5 {
			severity = models.SeverityHigh
		}
		v.add(models.NewFinding(severity, models.CategoryPerformance,
			fmt.Sprintf("Function complexity (%d) exceeds threshold (%d)", v.complexity, v.maxComplexity),
			v.path, ast.Line(n)).
			WithRule("performance.complexity").
			WithSuggestion("Consider breaking this function into smaller functions."))
	}

	v.complexities = append(v.complexities, v.complexity)
	last := len(v.saved) - 1
	v.complexity = v.saved[last]
	v.saved = v.saved[:last]
}

func (v *visitor) enterLoop(n *sitter.Node) {
	v.loopDepth++
	if !v.checkLoops || v.loopDepth <= maxLoopDepth {
		return
	}
	v.add(models.NewFinding(models.SeverityMedium, models.CategoryPerformance,
		fmt.Sprintf("Deeply nested loops (depth: %d) may cause performance issues", v.loopDepth),
		v.path, ast.Line(n)).
		WithRule("performance.nested_loops").
		WithSuggestion("Consider flattening the loop structure or using more efficient algorithms."))
}

// checkRangeLen flags "for i in range(len(x))".
func (v *visitor) checkRangeLen(n *sitter.Node) {
	if !v.checkLoops {
		return
	}
	iter := n.ChildByFieldName(ast.FieldRight)
	if iter == nil || iter.Type() != ast.NodeCall {
		return
	}
	if name, object := ast.CallTarget(v.tree, iter); name != "range" || object != "" {
		return
	}
	args := ast.CallArguments(iter)
	if len(args) != 1 || args[0].Type() != ast.NodeCall {
		return
	}
	if name, object := ast.CallTarget(v.tree, args[0]); name != "len" || object != "" {
		return
	}
	v.add(models.NewFinding(models.SeverityLow, models.CategoryPerformance,
		"Use enumerate() or direct iteration instead of range(len())", v.path, ast.Line(n)).
		WithRule("performance.range_len").
		WithSuggestion(`Use "for i, item in enumerate(collection)" or "for item in collection".`))
}

var comprehensionTypes = []string{
	ast.NodeListComprehension, ast.NodeSetComprehension,
	ast.NodeDictComprehension, ast.NodeGeneratorExpression,
}

// checkNestedComprehension flags a list comprehension iterating over
// another comprehension.
func (v *visitor) checkNestedComprehension(n *sitter.Node) {
	if !v.checkLoops {
		return
	}
	for _, clause := range ast.NamedChildren(n) {
		if clause.Type() != ast.NodeForInClause {
			continue
		}
		iter := clause.ChildByFieldName(ast.FieldRight)
		if iter == nil || !slices.Contains(comprehensionTypes, iter.Type()) {
			continue
		}
		v.add(models.NewFinding(models.SeverityMedium, models.CategoryPerformance,
			"Nested list comprehensions can be hard to read and maintain", v.path, ast.Line(n)).
			WithRule("performance.nested_comprehension").
			WithSuggestion("Consider breaking into separate comprehensions or using traditional loops."))
		return
	}
}

// checkAppend flags x.append(...) issued inside a loop body.
func (v *visitor) checkAppend(n *sitter.Node) {
	if !v.checkLoops || v.loopDepth == 0 {
		return
	}
	if name, object := ast.CallTarget(v.tree, n); name != "append" || object == "" {
		return
	}
	v.add(models.NewFinding(models.SeverityLow, models.CategoryPerformance,
		"List.append() in nested loop may be inefficient", v.path, ast.Line(n)).
		WithRule("performance.append_in_loop").
		WithSuggestion("Consider using list comprehension or preallocating the list."))
}

// complexityScore is 10 minus penalties for average complexity above the
// threshold and peak complexity above 1.5x the threshold.
func (v *visitor) complexityScore() float64 {
	if !v.checkComplexity || len(v.complexities) == 0 {
		return MaxScore
	}
	limit := float64(v.maxComplexity)
	avg := rules.Mean(v.complexities)
	peak := float64(slices.Max(v.complexities))

	score := MaxScore
	score -= max(0, (avg-limit)*0.5)
	score -= max(0, (peak-limit*1.5)*0.3)
	return max(0, score)
}

func (v *visitor) add(f models.Finding) {
	v.findings = append(v.findings, f)
}
