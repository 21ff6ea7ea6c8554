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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// StringLiteral returns the value of a plain Python string literal.
//
// Description:
//
//	Strips the prefix letters and the quotes. Returns ok=false for
//	f-strings and bytes literals, which are not plain text constants.
//	Escape sequences are left as written.
//
// Inputs:
//
//	t - The tree n belongs to.
//	n - A node of type "string".
//
// Outputs:
//
//	string - The literal body.
//	bool - False if n is not a plain string literal.
func StringLiteral(t *Tree, n *sitter.Node) (string, bool) {
	if n == nil || n.Type() != NodeString {
		return "", false
	}
	text := t.Text(n)

	prefixEnd := strings.IndexAny(text, `"'`)
	if prefixEnd < 0 {
		return "", false
	}
	prefix := strings.ToLower(text[:prefixEnd])
	if strings.ContainsAny(prefix, "fb") {
		return "", false
	}
	body := text[prefixEnd:]

	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(body) >= 2*len(q) && strings.HasPrefix(body, q) && strings.HasSuffix(body, q) {
			return body[len(q) : len(body)-len(q)], true
		}
	}
	return "", false
}

// HasDocstring reports whether a function or class body starts with a
// non-empty string expression.
func HasDocstring(t *Tree, body *sitter.Node) bool {
	if body == nil {
		return false
	}
	for _, stmt := range NamedChildren(body) {
		if stmt.Type() == NodeComment {
			continue
		}
		if stmt.Type() != NodeExpressionStatement || stmt.NamedChildCount() != 1 {
			return false
		}
		value, ok := StringLiteral(t, stmt.NamedChild(0))
		return ok && strings.TrimSpace(value) != ""
	}
	return false
}

// CallTarget describes the callee of a call node.
//
// For "eval(x)" it returns ("eval", ""); for "os.system(x)" it returns
// ("system", "os"). Other callee shapes return empty strings.
func CallTarget(t *Tree, call *sitter.Node) (name, object string) {
	fn := call.ChildByFieldName(FieldFunction)
	if fn == nil {
		return "", ""
	}
	switch fn.Type() {
	case NodeIdentifier:
		return t.Text(fn), ""
	case NodeAttribute:
		attr := fn.ChildByFieldName(FieldAttribute)
		obj := fn.ChildByFieldName(FieldObject)
		return t.Text(attr), t.Text(obj)
	default:
		return "", ""
	}
}

// CallArguments returns the positional and keyword argument nodes of a call.
//
// A call whose sole argument is a bare generator expression returns that
// expression as the single argument.
func CallArguments(call *sitter.Node) []*sitter.Node {
	args := call.ChildByFieldName(FieldArguments)
	if args == nil {
		return nil
	}
	if args.Type() == NodeGeneratorExpression {
		return []*sitter.Node{args}
	}
	out := make([]*sitter.Node, 0, args.NamedChildCount())
	for _, child := range NamedChildren(args) {
		if child.Type() == NodeComment {
			continue
		}
		out = append(out, child)
	}
	return out
}

// DefinitionOf unwraps a decorated_definition to the function or class it
// decorates. Other nodes are returned unchanged.
func DefinitionOf(n *sitter.Node) *sitter.Node {
	if n != nil && n.Type() == NodeDecoratedDefinition {
		if def := n.ChildByFieldName(FieldDefinition); def != nil {
			return def
		}
	}
	return n
}
