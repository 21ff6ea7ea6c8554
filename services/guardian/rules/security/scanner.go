// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package security detects vulnerable code with line patterns and, for
// languages with a syntax tree, a structural pass.
package security

import (
	"context"
	"fmt"

	"github.com/AleutianAI/codeguardian/services/guardian/ast"
	"github.com/AleutianAI/codeguardian/services/guardian/config"
	"github.com/AleutianAI/codeguardian/services/guardian/models"
	"github.com/AleutianAI/codeguardian/services/guardian/rules"
)

// Scanner is the security rule set.
//
// Thread Safety: Stateless after construction, safe for concurrent use.
type Scanner struct {
	cfg config.SecurityConfig
}

// NewScanner creates a Scanner for the given configuration.
func NewScanner(cfg *config.Config) *Scanner {
	return &Scanner{cfg: cfg.Security}
}

// Name returns the rule set name.
func (s *Scanner) Name() string {
	return string(models.CategorySecurity)
}

// Scan returns every security finding for one file.
//
// Description:
//
//	Enabled pattern categories run first, category by category, each
//	emitting one finding per (line, matching pattern). The structural pass
//	follows when the file has a syntax tree. A syntax error skips the
//	structural pass silently; any other parse or traversal failure becomes
//	a low "security.ast_error" finding.
//
// Inputs:
//
//	f - The file to scan. Must not be nil.
//
// Outputs:
//
//	[]models.Finding - Findings in emission order. Never nil.
func (s *Scanner) Scan(f *rules.File) []models.Finding {
	findings := make([]models.Finding, 0)

	for _, group := range patternGroups {
		if !group.enabled(&s.cfg) {
			continue
		}
		for _, hit := range rules.MatchLines(f.Lines, group.patterns) {
			findings = append(findings,
				models.NewFinding(group.severity, models.CategorySecurity, hit.Pattern.Description, f.Path, hit.Line).
					WithRule("security."+string(group.category)).
					WithSnippet(rules.Snippet(hit.Text)).
					WithSuggestion(group.suggestion))
		}
	}

	return append(findings, s.scanStructure(f)...)
}

// ScanContent is a convenience wrapper that builds the rules.File itself.
func (s *Scanner) ScanContent(ctx context.Context, path, content string) []models.Finding {
	f := rules.NewFile(ctx, ast.DefaultRegistry(), path, content)
	defer f.Close()
	return s.Scan(f)
}

func (s *Scanner) scanStructure(f *rules.File) []models.Finding {
	if !f.Parseable() || f.SyntaxError() {
		return nil
	}
	if !f.Structural() {
		return []models.Finding{astError(f.Path, f.ParseErr)}
	}

	v := &visitor{tree: f.Tree, path: f.Path, checkSecrets: s.cfg.CheckHardcodedSecrets}
	if err := rules.Guard(func() { ast.Walk(f.Tree.Root(), v) }); err != nil {
		return append(v.findings, astError(f.Path, err))
	}
	return v.findings
}

func astError(path string, err error) models.Finding {
	return models.NewFinding(models.SeverityLow, models.CategorySecurity,
		fmt.Sprintf("AST analysis failed: %v", err), path, 0).
		WithRule("security.ast_error")
}
