// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package aidetect estimates how likely a file is to be machine-generated.
//
// Matches are weighted signals, not Findings. Their weights are folded into
// a single per-file confidence that never exceeds MaxConfidence.
package aidetect

import (
	"strings"

	"github.com/AleutianAI/codeguardian/services/guardian/config"
	"github.com/AleutianAI/codeguardian/services/guardian/models"
	"github.com/AleutianAI/codeguardian/services/guardian/rules"
)

// MaxConfidence caps the aggregate confidence.
const MaxConfidence = 0.95

// dampening is added to the match count when averaging weights, so a
// handful of matches never approaches MaxConfidence.
const dampening = 2

// Detector is the AI-pattern rule set.
//
// Thread Safety: Stateless after construction, safe for concurrent use.
type Detector struct {
	cfg config.AIDetectionConfig
}

// NewDetector creates a Detector for the given configuration.
func NewDetector(cfg *config.Config) *Detector {
	return &Detector{cfg: cfg.AIDetection}
}

// Name returns the rule set name.
func (d *Detector) Name() string {
	return "ai_detection"
}

// Detect scores one file.
//
// Description:
//
//	Families run in a fixed order: comments, then per line structure and
//	code idioms, then identifier names, then whole-content import
//	sequences, then string literals. Confidence is the sum of all match
//	weights divided by (matches + 2), capped at MaxConfidence, and 0 with
//	no matches.
//
// Inputs:
//
//	f - The file to inspect. Must not be nil.
//
// Outputs:
//
//	float64 - Aggregate confidence in [0, MaxConfidence], computed over
//	          every match.
//	[]models.AIPattern - Only the matches whose own weight is at least
//	                     the configured threshold. Never nil.
func (d *Detector) Detect(f *rules.File) (float64, []models.AIPattern) {
	var matches []models.AIPattern

	if d.cfg.CheckCommentPatterns {
		matches = append(matches, matchLines(f.Lines, models.PatternComment, commentPatterns)...)
	}
	if d.cfg.CheckCodePatterns {
		matches = append(matches, d.matchCode(f.Lines)...)
	}
	matches = append(matches, matchNaming(f.Lines)...)
	matches = append(matches, matchImports(f.Content, f.Lines)...)
	matches = append(matches, matchLines(f.Lines, models.PatternStrings, stringPatterns)...)

	return aggregate(matches), d.filter(matches)
}

// DetectContent is a convenience wrapper over Detect that skips parsing.
func (d *Detector) DetectContent(content, path string) (float64, []models.AIPattern) {
	return d.Detect(&rules.File{Path: path, Content: content, Lines: rules.SplitLines(content)})
}

func aggregate(matches []models.AIPattern) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += m.Confidence
	}
	return min(MaxConfidence, sum/float64(len(matches)+dampening))
}

func (d *Detector) filter(matches []models.AIPattern) []models.AIPattern {
	out := make([]models.AIPattern, 0, len(matches))
	for _, m := range matches {
		if m.Confidence >= d.cfg.ConfidenceThreshold {
			out = append(out, m)
		}
	}
	return out
}

// ============================================================================
// FAMILIES
// ============================================================================

func newPattern(kind string, p rules.Pattern, line int, text string) models.AIPattern {
	return models.AIPattern{
		PatternType: kind,
		Confidence:  p.Weight,
		Description: p.Description,
		LineNumber:  line,
		Evidence:    strings.TrimSpace(text),
	}
}

// matchLines emits one AIPattern per (line, pattern) hit.
func matchLines(lines []string, kind string, patterns []rules.Pattern) []models.AIPattern {
	var out []models.AIPattern
	for _, hit := range rules.MatchLines(lines, patterns) {
		out = append(out, newPattern(kind, hit.Pattern, hit.Line, hit.Text))
	}
	return out
}

// matchCode checks structure names before code idioms on each line.
func (d *Detector) matchCode(lines []string) []models.AIPattern {
	var out []models.AIPattern
	for i, line := range lines {
		for _, p := range structurePatterns {
			if p.Match(line) {
				out = append(out, newPattern(models.PatternStructure, p, i+1, line))
			}
		}
		for _, p := range codePatterns {
			if p.Match(line) {
				out = append(out, newPattern(models.PatternCode, p, i+1, line))
			}
		}
	}
	return out
}

// matchNaming emits at most one AIPattern per pattern per line, however
// many times the name appears on it.
func matchNaming(lines []string) []models.AIPattern {
	return matchLines(lines, models.PatternNaming, namingPatterns)
}

// matchImports applies the import patterns to the whole content. A hit is
// reported at the first line mentioning "import".
func matchImports(content string, lines []string) []models.AIPattern {
	var out []models.AIPattern
	for _, p := range importPatterns {
		if !p.Regex.MatchString(content) {
			continue
		}
		for i, line := range lines {
			if strings.Contains(line, "import") {
				out = append(out, newPattern(models.PatternImports, p, i+1, line))
				break
			}
		}
	}
	return out
}
