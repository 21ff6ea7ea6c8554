// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"context"

	"github.com/AleutianAI/codeguardian/services/guardian/ast"
	"github.com/AleutianAI/codeguardian/services/guardian/config"
	"github.com/AleutianAI/codeguardian/services/guardian/models"
	"github.com/AleutianAI/codeguardian/services/guardian/rules"
	"github.com/AleutianAI/codeguardian/services/guardian/rules/aidetect"
	"github.com/AleutianAI/codeguardian/services/guardian/rules/maintainability"
	"github.com/AleutianAI/codeguardian/services/guardian/rules/performance"
	"github.com/AleutianAI/codeguardian/services/guardian/rules/security"
)

// FileAnalyzer runs every enabled rule set over one file.
//
// Description:
//
//	Rule sets disabled in the configuration are never constructed, so
//	they emit nothing and leave their score keys unset. The file is split
//	and parsed once and shared by all rule sets.
//
// Thread Safety: Safe for concurrent use; every call works on its own file.
type FileAnalyzer struct {
	registry        *ast.Registry
	security        *security.Scanner
	performance     *performance.Analyzer
	maintainability *maintainability.Scorer
	detector        *aidetect.Detector
}

// NewFileAnalyzer builds the enabled rule sets from cfg.
//
// Inputs:
//
//	cfg - Validated configuration. Must not be nil.
//	registry - Parsers for structural checks. nil disables structural checks.
func NewFileAnalyzer(cfg *config.Config, registry *ast.Registry) *FileAnalyzer {
	a := &FileAnalyzer{registry: registry}
	if cfg.Security.Enabled {
		a.security = security.NewScanner(cfg)
	}
	if cfg.Performance.Enabled {
		a.performance = performance.NewAnalyzer(cfg)
	}
	if cfg.Maintainability.Enabled {
		a.maintainability = maintainability.NewScorer(cfg)
	}
	if cfg.AIDetection.Enabled {
		a.detector = aidetect.NewDetector(cfg)
	}
	return a
}

// Analyze runs the rule sets in fixed order: security, performance,
// maintainability, then AI detection when detectAI is set.
//
// Description:
//
//	A panic escaping a rule set keeps whatever was collected so far and
//	appends a medium "analysis" finding; it never reaches the caller.
//
// Outputs:
//
//	models.FileResult - Findings in rule-set then emission order. Never
//	                    has a nil Findings slice.
func (a *FileAnalyzer) Analyze(ctx context.Context, path, content string, detectAI bool) models.FileResult {
	ctx, span := startFileSpan(ctx, path, len(content))
	defer span.End()

	result := models.FileResult{Path: path, Findings: make([]models.Finding, 0)}

	err := rules.Guard(func() {
		f := rules.NewFile(ctx, a.registry, path, content)
		defer f.Close()
		a.run(f, detectAI, &result)
	})
	if err != nil {
		span.RecordError(err)
		result.Findings = append(result.Findings, failureFinding(path, err))
	}
	return result
}

func (a *FileAnalyzer) run(f *rules.File, detectAI bool, result *models.FileResult) {
	if a.security != nil {
		result.Findings = append(result.Findings, a.security.Scan(f)...)
	}

	if a.performance != nil {
		findings, score := a.performance.Analyze(f)
		result.Findings = append(result.Findings, findings...)
		result.Scores.PerformanceScore = models.Score(score)
	}

	if a.maintainability != nil {
		findings, score := a.maintainability.Score(f)
		result.Findings = append(result.Findings, findings...)
		result.Scores.MaintainabilityScore = models.Score(score)
	}

	if detectAI && a.detector != nil {
		confidence, patterns := a.detector.Detect(f)
		result.Scores.AIConfidence = models.Score(confidence)
		if patterns == nil {
			patterns = []models.AIPattern{}
		}
		result.Scores.AIPatterns = patterns
		result.Scores.StyleMetrics = aidetect.StyleMetrics(f.Content)
	}
}
