// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package performance detects performance anti-patterns and scores files
// on a 0-10 scale.
package performance

import (
	"context"
	"fmt"

	"github.com/AleutianAI/codeguardian/services/guardian/ast"
	"github.com/AleutianAI/codeguardian/services/guardian/config"
	"github.com/AleutianAI/codeguardian/services/guardian/models"
	"github.com/AleutianAI/codeguardian/services/guardian/rules"
)

// MaxScore is the score of a file with no performance findings.
const MaxScore = 10.0

// Analyzer is the performance rule set.
//
// Thread Safety: Stateless after construction, safe for concurrent use.
type Analyzer struct {
	cfg config.PerformanceConfig
}

// NewAnalyzer creates an Analyzer for the given configuration.
func NewAnalyzer(cfg *config.Config) *Analyzer {
	return &Analyzer{cfg: cfg.Performance}
}

// Name returns the rule set name.
func (a *Analyzer) Name() string {
	return string(models.CategoryPerformance)
}

// Analyze returns the performance findings and score for one file.
//
// Description:
//
//	Line patterns run on every file. Files with a structural parse get the
//	complexity and loop checks, and their starting score is capped by the
//	structural complexity score. Files in the web-scripting family get the
//	script patterns instead. The score then loses 3 per critical, 2 per
//	high and 1 per medium finding, floored at 0.
//
// Inputs:
//
//	f - The file to analyze. Must not be nil.
//
// Outputs:
//
//	[]models.Finding - Findings in emission order. Never nil.
//	float64 - Score in [0,10].
func (a *Analyzer) Analyze(f *rules.File) ([]models.Finding, float64) {
	findings := a.scanLines(f.Path, f.Lines, a.linePatterns(), true)
	score := MaxScore

	if f.Parseable() {
		structural, structuralScore := a.analyzeStructure(f)
		findings = append(findings, structural...)
		score = min(score, structuralScore)
	} else if f.HasExtension(ScriptExtensions...) {
		findings = append(findings, a.scanLines(f.Path, f.Lines, scriptPatterns, false)...)
	}

	for _, finding := range findings {
		switch finding.Severity {
		case models.SeverityCritical:
			score -= 3
		case models.SeverityHigh:
			score -= 2
		case models.SeverityMedium:
			score -= 1
		}
	}
	return findings, rules.Clamp(score, 0, MaxScore)
}

// AnalyzeContent is a convenience wrapper that builds the rules.File itself.
func (a *Analyzer) AnalyzeContent(ctx context.Context, path, content string) ([]models.Finding, float64) {
	f := rules.NewFile(ctx, ast.DefaultRegistry(), path, content)
	defer f.Close()
	return a.Analyze(f)
}

func (a *Analyzer) linePatterns() []rules.Pattern {
	var patterns []rules.Pattern
	if a.cfg.CheckInefficientLoops {
		patterns = append(patterns, loopPatterns...)
	}
	if a.cfg.CheckMemoryUsage {
		patterns = append(patterns, memoryPatterns...)
	}
	return append(patterns, ioPatterns...)
}

// scanLines emits one finding per (line, pattern) hit. Generic patterns
// carry a keyword-derived suggestion; script patterns carry none.
func (a *Analyzer) scanLines(path string, lines []string, patterns []rules.Pattern, generic bool) []models.Finding {
	findings := make([]models.Finding, 0)
	ruleID := "performance.pattern"
	if !generic {
		ruleID = "performance.javascript"
	}
	for _, hit := range rules.MatchLines(lines, patterns) {
		finding := models.NewFinding(hit.Pattern.Severity, models.CategoryPerformance, hit.Pattern.Description, path, hit.Line).
			WithRule(ruleID).
			WithSnippet(rules.Snippet(hit.Text))
		if generic {
			finding = finding.WithSuggestion(suggestionFor(hit.Pattern.Description))
		}
		findings = append(findings, finding)
	}
	return findings
}

// analyzeStructure runs the visitor. A syntax error yields nothing and a
// neutral score; other failures yield a low "performance.ast_error".
func (a *Analyzer) analyzeStructure(f *rules.File) ([]models.Finding, float64) {
	if f.SyntaxError() {
		return nil, MaxScore
	}
	if !f.Structural() {
		return []models.Finding{astError(f.Path, f.ParseErr)}, MaxScore
	}

	v := newVisitor(f.Tree, f.Path, a.cfg)
	if err := rules.Guard(func() { ast.Walk(f.Tree.Root(), v) }); err != nil {
		return append(v.findings, astError(f.Path, err)), MaxScore
	}
	return v.findings, v.complexityScore()
}

func astError(path string, err error) models.Finding {
	return models.NewFinding(models.SeverityLow, models.CategoryPerformance,
		fmt.Sprintf("AST analysis failed: %v", err), path, 0).
		WithRule("performance.ast_error")
}
