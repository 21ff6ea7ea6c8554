// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package maintainability

import (
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AleutianAI/codeguardian/services/guardian/ast"
	"github.com/AleutianAI/codeguardian/services/guardian/config"
	"github.com/AleutianAI/codeguardian/services/guardian/models"
	"github.com/AleutianAI/codeguardian/services/guardian/rules"
)

const (
	maxParameters       = 5
	docstringMinLength  = 5
	lengthPenaltyFactor = 0.1
	complexityPenalty   = 0.2
	methodsPenalty      = 0.1
)

var (
	pascalCase    = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)
	snakeCase     = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	allCapsLetter = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

// loopIndexNames are single-letter names accepted without a finding.
var loopIndexNames = map[string]bool{"i": true, "j": true, "k": true, "x": true, "y": true, "z": true}

// ============================================================================
// TRAVERSAL STATE
// ============================================================================

// visitor walks a Python tree collecting class and function metrics.
//
// Complexity is saved and reset to 1 on entering a function, then checked
// and restored on leaving it.
type visitor struct {
	tree        *ast.Tree
	path        string
	cfg         config.MaintainabilityConfig
	checkNaming bool

	findings []models.Finding

	complexity int
	saved      []int

	functionLengths []int
	complexities    []int
	methodCounts    []int
}

func newVisitor(tree *ast.Tree, path string, cfg config.MaintainabilityConfig) *visitor {
	return &visitor{
		tree:        tree,
		path:        path,
		cfg:         cfg,
		checkNaming: cfg.CheckNamingConventions,
	}
}

func (v *visitor) Enter(n *sitter.Node) bool {
	switch n.Type() {
	case ast.NodeClassDefinition:
		v.enterClass(n)
	case ast.NodeFunctionDefinition:
		v.enterFunction(n)
		v.saved = append(v.saved, v.complexity)
		v.complexity = 1
		return true
	case ast.NodeAssignment, ast.NodeAugmentedAssignment,
		ast.NodeForStatement, ast.NodeForInClause:
		v.checkTargets(n.ChildByFieldName(ast.FieldLeft))
	case ast.NodeNamedExpression:
		v.checkTargets(n.ChildByFieldName(ast.FieldName))
	case ast.NodeWithItem:
		if value := n.ChildByFieldName(ast.FieldValue); value != nil && value.Type() == ast.NodeAsPattern {
			v.checkTargets(value.ChildByFieldName(ast.FieldAlias))
		}
	}
	v.complexity += rules.ComplexityIncrement(n)
	return true
}

func (v *visitor) Leave(n *sitter.Node) {
	if n.Type() != ast.NodeFunctionDefinition {
		return
	}
	if v.complexity > v.cfg.MaxComplexity {
		v.add(models.SeverityMedium,
			fmt.Sprintf("Function complexity (%d) is too high", v.complexity), n,
			"high_complexity", "Simplify the function by extracting complex logic into helper functions.")
	}
	v.complexities = append(v.complexities, v.complexity)

	last := len(v.saved) - 1
	v.complexity = v.saved[last]
	v.saved = v.saved[:last]
}

// ============================================================================
// CLASSES AND FUNCTIONS
// ============================================================================

func (v *visitor) enterClass(n *sitter.Node) {
	name := v.tree.Text(n.ChildByFieldName(ast.FieldName))
	body := n.ChildByFieldName(ast.FieldBody)

	if v.checkNaming && !pascalCase.MatchString(name) {
		v.add(models.SeverityLow,
			fmt.Sprintf("Class name %q doesn't follow PascalCase convention", name), n,
			"class_naming", "Use PascalCase for class names (e.g., MyClass).")
	}

	methods := countMethods(body)
	if methods > v.cfg.MaxClassMethods {
		v.add(models.SeverityMedium,
			fmt.Sprintf("Class has too many methods (%d)", methods), n,
			"too_many_methods", "Consider splitting the class or using composition.")
	}
	v.methodCounts = append(v.methodCounts, methods)

	if !ast.HasDocstring(v.tree, body) {
		v.add(models.SeverityLow,
			fmt.Sprintf("Class %q missing docstring", name), n,
			"missing_docstring", "Add a docstring to explain the class purpose.")
	}
}

func (v *visitor) enterFunction(n *sitter.Node) {
	name := v.tree.Text(n.ChildByFieldName(ast.FieldName))

	if v.checkNaming && !snakeCase.MatchString(name) && !strings.HasPrefix(name, "__") {
		v.add(models.SeverityLow,
			fmt.Sprintf("Function name %q doesn't follow snake_case convention", name), n,
			"function_naming", "Use snake_case for function names (e.g., my_function).")
	}

	length := ast.StatementEndLine(n) - ast.Line(n)
	if length > v.cfg.MaxFunctionLength {
		v.add(models.SeverityMedium,
			fmt.Sprintf("Function is too long (%d lines)", length), n,
			"long_function", "Break long functions into smaller, focused functions.")
	}
	v.functionLengths = append(v.functionLengths, length)

	if params := countParameters(n.ChildByFieldName(ast.FieldParameters)); params > maxParameters {
		v.add(models.SeverityMedium,
			fmt.Sprintf("Function has too many parameters (%d)", params), n,
			"too_many_params", "Consider using a configuration object or reducing parameters.")
	}

	if length > docstringMinLength && !strings.HasPrefix(name, "_") &&
		!ast.HasDocstring(v.tree, n.ChildByFieldName(ast.FieldBody)) {
		v.add(models.SeverityLow,
			fmt.Sprintf("Function %q missing docstring", name), n,
			"missing_docstring", "Add a docstring to explain the function purpose and parameters.")
	}
}

// countMethods counts function definitions directly in a class body,
// decorated or not.
func countMethods(body *sitter.Node) int {
	if body == nil {
		return 0
	}
	count := 0
	for _, stmt := range ast.NamedChildren(body) {
		if ast.DefinitionOf(stmt).Type() == ast.NodeFunctionDefinition {
			count++
		}
	}
	return count
}

// countParameters counts positional-or-keyword parameters. Parameters
// before "/" are positional-only and those after "*" or "*args" are
// keyword-only; neither are counted, nor are "*args" and "**kwargs".
func countParameters(params *sitter.Node) int {
	if params == nil {
		return 0
	}
	count := 0
	for _, p := range ast.NamedChildren(params) {
		switch paramKind(p) {
		case ast.NodePositionalSeparator:
			count = 0
		case ast.NodeKeywordSeparator, ast.NodeListSplatPattern:
			return count
		case ast.NodeDictSplatPattern, ast.NodeComment:
		default:
			count++
		}
	}
	return count
}

// paramKind reports the splat kind of a typed parameter such as
// "*args: int", or the node type otherwise.
func paramKind(p *sitter.Node) string {
	if p.Type() == ast.NodeTypedParameter && p.NamedChildCount() > 0 {
		switch inner := p.NamedChild(0).Type(); inner {
		case ast.NodeListSplatPattern, ast.NodeDictSplatPattern:
			return inner
		}
	}
	return p.Type()
}

// ============================================================================
// VARIABLE NAMES
// ============================================================================

// checkTargets inspects the names bound by an assignment target, unpacking
// tuples and lists. Attribute and subscript targets bind no name.
func (v *visitor) checkTargets(target *sitter.Node) {
	if target == nil || !v.checkNaming {
		return
	}
	switch target.Type() {
	case ast.NodeIdentifier:
		v.checkName(target)
	case ast.NodeAsPatternTarget:
		if target.NamedChildCount() == 0 {
			v.checkName(target)
			return
		}
		v.checkTargets(target.NamedChild(0))
	case ast.NodePatternList, ast.NodeTuplePattern, ast.NodeListPattern,
		ast.NodeTuple, ast.NodeList, ast.NodeParenthesizedExpr,
		ast.NodeListSplatPattern:
		for _, child := range ast.NamedChildren(target) {
			v.checkTargets(child)
		}
	}
}

func (v *visitor) checkName(n *sitter.Node) {
	name := v.tree.Text(n)

	if len([]rune(name)) == 1 && !loopIndexNames[name] {
		v.add(models.SeverityLow,
			fmt.Sprintf("Single-letter variable name %q is not descriptive", name), n,
			"short_variable_name", "Use descriptive variable names instead of single letters.")
	}

	// Every all-caps name is upper case, so only the underscore is tested.
	if allCapsLetter.MatchString(name) && !strings.Contains(name, "_") {
		v.findings = append(v.findings, models.NewFinding(models.SeverityLow, models.CategoryMaintainability,
			fmt.Sprintf("Constant %q should use UPPER_CASE convention", name), v.path, ast.Line(n)).
			WithRule("maintainability.constant_naming"))
	}
}

// ============================================================================
// SCORING
// ============================================================================

// structuralScore is 10 minus penalties for average function length,
// average complexity and average methods per class above their limits.
func (v *visitor) structuralScore() float64 {
	score := MaxScore
	score -= excess(v.functionLengths, v.cfg.MaxFunctionLength) * lengthPenaltyFactor
	score -= excess(v.complexities, v.cfg.MaxComplexity) * complexityPenalty
	score -= excess(v.methodCounts, v.cfg.MaxClassMethods) * methodsPenalty
	return max(0, score)
}

// excess returns how far the mean of values is above limit, or 0.
func excess(values []int, limit int) float64 {
	if len(values) == 0 {
		return 0
	}
	return max(0, rules.Mean(values)-float64(limit))
}

func (v *visitor) add(sev models.Severity, msg string, n *sitter.Node, rule, suggestion string) {
	v.findings = append(v.findings,
		models.NewFinding(sev, models.CategoryMaintainability, msg, v.path, ast.Line(n)).
			WithRule("maintainability."+rule).
			WithSuggestion(suggestion))
}
