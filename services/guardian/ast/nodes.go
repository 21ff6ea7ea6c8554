// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Tree-sitter Python node types used by the structural rule sets.
const (
	NodeModule              = "module"
	NodeFunctionDefinition  = "function_definition"
	NodeClassDefinition     = "class_definition"
	NodeDecoratedDefinition = "decorated_definition"
	NodeBlock               = "block"
	NodeExpressionStatement = "expression_statement"
	NodeImportStatement     = "import_statement"
	NodeImportFromStatement = "import_from_statement"
	NodeDottedName          = "dotted_name"
	NodeAliasedImport       = "aliased_import"
	NodeIfStatement         = "if_statement"
	NodeElifClause          = "elif_clause"
	NodeForStatement        = "for_statement"
	NodeWhileStatement      = "while_statement"
	NodeTryStatement        = "try_statement"
	NodeWithStatement       = "with_statement"
	NodeWithItem            = "with_item"
	NodeBooleanOperator     = "boolean_operator"
	NodeListComprehension   = "list_comprehension"
	NodeSetComprehension    = "set_comprehension"
	NodeDictComprehension   = "dictionary_comprehension"
	NodeGeneratorExpression = "generator_expression"
	NodeForInClause         = "for_in_clause"
	NodeCall                = "call"
	NodeArgumentList        = "argument_list"
	NodeAttribute           = "attribute"
	NodeIdentifier          = "identifier"
	NodeString              = "string"
	NodeConcatenatedString  = "concatenated_string"
	NodeAssignment          = "assignment"
	NodeAugmentedAssignment = "augmented_assignment"
	NodeNamedExpression     = "named_expression"
	NodeAsPattern           = "as_pattern"
	NodeAsPatternTarget     = "as_pattern_target"
	NodePatternList         = "pattern_list"
	NodeTuplePattern        = "tuple_pattern"
	NodeListPattern         = "list_pattern"
	NodeTuple               = "tuple"
	NodeList                = "list"
	NodeParenthesizedExpr   = "parenthesized_expression"
	NodeListSplatPattern    = "list_splat_pattern"
	NodeDictSplatPattern    = "dictionary_splat_pattern"
	NodeTypedParameter      = "typed_parameter"
	NodeDefaultParameter    = "default_parameter"
	NodeTypedDefaultParam   = "typed_default_parameter"
	NodeKeywordSeparator    = "keyword_separator"
	NodePositionalSeparator = "positional_separator"
	NodeComment             = "comment"
	NodeStringContent       = "string_content"
	NodeInterpolation       = "interpolation"
	NodeConditionalExpr     = "conditional_expression"
	NodeLambda              = "lambda"
)

// Tree-sitter Python field names.
const (
	FieldFunction   = "function"
	FieldArguments  = "arguments"
	FieldName       = "name"
	FieldBody       = "body"
	FieldParameters = "parameters"
	FieldLeft       = "left"
	FieldRight      = "right"
	FieldObject     = "object"
	FieldAttribute  = "attribute"
	FieldDefinition = "definition"
	FieldAlias      = "alias"
	FieldValue      = "value"
)

// Visitor receives nodes during a depth-first walk.
//
// Enter is called before a node's children are visited; returning false
// skips the children (Leave is still called). Leave is called after.
type Visitor interface {
	Enter(n *sitter.Node) bool
	Leave(n *sitter.Node)
}

// Walk visits n and its named descendants depth-first in source order.
func Walk(n *sitter.Node, v Visitor) {
	if n == nil || n.IsNull() {
		return
	}
	if v.Enter(n) {
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			Walk(n.NamedChild(i), v)
		}
	}
	v.Leave(n)
}

// Inspect calls fn for n and each named descendant. Returning false from fn
// skips that node's children.
func Inspect(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil || n.IsNull() {
		return
	}
	if !fn(n) {
		return
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		Inspect(n.NamedChild(i), fn)
	}
}

// Line returns the 1-based start line of n.
func Line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// EndLine returns the 1-based line of the last byte of n.
func EndLine(n *sitter.Node) int {
	end := n.EndPoint()
	// A node ending at column 0 ends on the previous line's newline.
	if end.Column == 0 && end.Row > n.StartPoint().Row {
		return int(end.Row)
	}
	return int(end.Row) + 1
}

// StatementEndLine is EndLine without trailing comments. The grammar
// attaches comments that follow the last statement of a block to the
// block itself, so they would otherwise extend every enclosing node.
func StatementEndLine(n *sitter.Node) int {
	i := int(n.ChildCount()) - 1
	for i >= 0 && n.Child(i).Type() == NodeComment {
		i--
	}
	if i < 0 {
		return EndLine(n)
	}
	last := n.Child(i)
	if !last.IsNamed() {
		return EndLine(last)
	}
	return StatementEndLine(last)
}

// Column returns the 1-based start column of n.
func Column(n *sitter.Node) int {
	return int(n.StartPoint().Column) + 1
}

// NamedChildren returns the named children of n.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// firstSyntaxError returns the first ERROR or MISSING node under n.
func firstSyntaxError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if found := firstSyntaxError(child); found != nil {
			return found
		}
	}
	return nil
}
