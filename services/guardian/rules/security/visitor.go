// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package security

import (
	"fmt"
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AleutianAI/codeguardian/services/guardian/ast"
	"github.com/AleutianAI/codeguardian/services/guardian/models"
)

// tokenShape matches base64-ish literals that look like keys.
var tokenShape = regexp.MustCompile(`^[A-Za-z0-9+/=]{20,}$`)

// dangerousBuiltins are the dynamic-code-execution primitives.
var dangerousBuiltins = map[string]bool{"eval": true, "exec": true}

// riskyModules are modules whose import alone is worth flagging.
var riskyModules = map[string]bool{"pickle": true, "cPickle": true}

// visitor is the structural pass over a Python tree.
type visitor struct {
	tree         *ast.Tree
	path         string
	checkSecrets bool
	findings     []models.Finding
}

func (v *visitor) Enter(n *sitter.Node) bool {
	switch n.Type() {
	case ast.NodeCall:
		v.visitCall(n)
	case ast.NodeImportStatement:
		v.visitImport(n)
	case ast.NodeString:
		// f-string interpolations hold calls of their own.
		v.visitString(n)
	}
	return true
}

func (v *visitor) Leave(*sitter.Node) {}

func (v *visitor) visitCall(n *sitter.Node) {
	name, object := ast.CallTarget(v.tree, n)

	if object == "" && dangerousBuiltins[name] {
		v.add(models.NewFinding(models.SeverityCritical, models.CategorySecurity,
			fmt.Sprintf("Dangerous use of %s() function", name), v.path, ast.Line(n)).
			WithRule("security.dangerous_call").
			WithSuggestion(fmt.Sprintf("Avoid using %s() with untrusted input. Use safer alternatives.", name)))
	}

	if name == "system" && object == "os" {
		v.add(models.NewFinding(models.SeverityHigh, models.CategorySecurity,
			"Use of os.system() can lead to command injection", v.path, ast.Line(n)).
			WithRule("security.command_injection").
			WithSuggestion("Use subprocess.run() with shell=False instead of os.system()."))
	}
}

// visitImport flags "import pickle" style statements. One finding per
// matching module name.
func (v *visitor) visitImport(n *sitter.Node) {
	for _, child := range ast.NamedChildren(n) {
		module := child
		if child.Type() == ast.NodeAliasedImport {
			module = child.ChildByFieldName(ast.FieldName)
		}
		if module == nil || module.Type() != ast.NodeDottedName {
			continue
		}
		if !riskyModules[v.tree.Text(module)] {
			continue
		}
		v.add(models.NewFinding(models.SeverityMedium, models.CategorySecurity,
			"Import of pickle module detected - be careful with untrusted data", v.path, ast.Line(n)).
			WithRule("security.risky_import").
			WithSuggestion("Consider using safer serialization formats like JSON."))
	}
}

func (v *visitor) visitString(n *sitter.Node) {
	if !v.checkSecrets {
		return
	}
	value, ok := ast.StringLiteral(v.tree, n)
	if !ok || !tokenShape.MatchString(value) {
		return
	}
	v.add(models.NewFinding(models.SeverityMedium, models.CategorySecurity,
		"Potential hardcoded secret detected", v.path, ast.Line(n)).
		WithRule("security.potential_secret").
		WithSuggestion("Move secrets to environment variables or configuration files."))
}

func (v *visitor) add(f models.Finding) {
	v.findings = append(v.findings, f)
}
