// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package maintainability scores readability and structure on a 0-10 scale.
package maintainability

import (
	"context"
	"fmt"

	"github.com/AleutianAI/codeguardian/services/guardian/ast"
	"github.com/AleutianAI/codeguardian/services/guardian/config"
	"github.com/AleutianAI/codeguardian/services/guardian/models"
	"github.com/AleutianAI/codeguardian/services/guardian/rules"
)

// MaxScore is the score of a file with no maintainability findings.
const MaxScore = 10.0

// syntaxErrorScore replaces the structural score of unparseable files.
const syntaxErrorScore = 5.0

// severityPenalty is subtracted from the score once per finding.
var severityPenalty = map[models.Severity]float64{
	models.SeverityCritical: 2,
	models.SeverityHigh:     1.5,
	models.SeverityMedium:   1,
	models.SeverityLow:      0.5,
}

// Scorer is the maintainability rule set.
//
// Thread Safety: Stateless after construction, safe for concurrent use.
type Scorer struct {
	cfg config.MaintainabilityConfig
}

// NewScorer creates a Scorer for the given configuration.
func NewScorer(cfg *config.Config) *Scorer {
	return &Scorer{cfg: cfg.Maintainability}
}

// Name returns the rule set name.
func (s *Scorer) Name() string {
	return string(models.CategoryMaintainability)
}

// Score returns the maintainability findings and score for one file.
//
// Description:
//
//	Line heuristics run on every file. Files with a structural parser also
//	get class and function checks; their structural score caps the starting
//	score. Every finding then costs 2 (critical), 1.5 (high), 1 (medium) or
//	0.5 (low), floored at 0.
//
// Inputs:
//
//	f - The file to score. Must not be nil.
//
// Outputs:
//
//	[]models.Finding - Line findings first, then structural findings. Never nil.
//	float64 - Score in [0,10].
func (s *Scorer) Score(f *rules.File) ([]models.Finding, float64) {
	findings := scanLines(f.Path, f.Lines)
	score := MaxScore

	if f.Parseable() {
		structural, structuralScore := s.analyzeStructure(f)
		findings = append(findings, structural...)
		score = min(score, structuralScore)
	}

	for _, finding := range findings {
		score -= severityPenalty[finding.Severity]
	}
	return findings, rules.Clamp(score, 0, MaxScore)
}

// ScoreContent is a convenience wrapper that builds the rules.File itself.
func (s *Scorer) ScoreContent(ctx context.Context, path, content string) ([]models.Finding, float64) {
	f := rules.NewFile(ctx, ast.DefaultRegistry(), path, content)
	defer f.Close()
	return s.Score(f)
}

func (s *Scorer) analyzeStructure(f *rules.File) ([]models.Finding, float64) {
	if f.SyntaxError() {
		return []models.Finding{
			models.NewFinding(models.SeverityHigh, models.CategoryMaintainability,
				"Syntax error in file", f.Path, 0).
				WithRule("maintainability.syntax_error").
				WithSuggestion("Fix syntax errors to improve code maintainability."),
		}, syntaxErrorScore
	}
	if !f.Structural() {
		return []models.Finding{analysisError(f.Path, f.ParseErr)}, MaxScore
	}

	v := newVisitor(f.Tree, f.Path, s.cfg)
	if err := rules.Guard(func() { ast.Walk(f.Tree.Root(), v) }); err != nil {
		return append(v.findings, analysisError(f.Path, err)), MaxScore
	}
	return v.findings, v.structuralScore()
}

func analysisError(path string, err error) models.Finding {
	return models.NewFinding(models.SeverityLow, models.CategoryMaintainability,
		fmt.Sprintf("Structure analysis failed: %v", err), path, 0).
		WithRule("maintainability.analysis_error")
}
