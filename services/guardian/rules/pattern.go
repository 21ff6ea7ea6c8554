// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rules

import (
	"regexp"

	"github.com/AleutianAI/codeguardian/services/guardian/models"
)

// Pattern is one regex rule applied to individual source lines.
//
// Severity is used by the finding-producing rule sets, Weight by the
// AI-pattern rule set. Tables are built once at package init and shared
// read-only across goroutines.
type Pattern struct {
	Regex       *regexp.Regexp
	Description string
	Severity    models.Severity
	Weight      float64
}

// Match reports whether the pattern matches line.
func (p Pattern) Match(line string) bool {
	return p.Regex.MatchString(line)
}

// Severe builds a severity-carrying pattern. Panics on an invalid expression.
func Severe(expr, description string, severity models.Severity) Pattern {
	return Pattern{
		Regex:       regexp.MustCompile(expr),
		Description: description,
		Severity:    severity,
	}
}

// Weighted builds a confidence-weighted pattern. Panics on an invalid expression.
func Weighted(expr, description string, weight float64) Pattern {
	return Pattern{
		Regex:       regexp.MustCompile(expr),
		Description: description,
		Weight:      weight,
	}
}

// LineMatch is a single (line, pattern) hit.
type LineMatch struct {
	// Line is 1-based.
	Line    int
	Text    string
	Pattern Pattern
}

// MatchLines applies every pattern to every line.
//
// Results are ordered by line, then by pattern order, and a line matching
// several patterns yields one hit per pattern.
func MatchLines(lines []string, patterns []Pattern) []LineMatch {
	var out []LineMatch
	for i, line := range lines {
		for _, p := range patterns {
			if p.Match(line) {
				out = append(out, LineMatch{Line: i + 1, Text: line, Pattern: p})
			}
		}
	}
	return out
}

// IgnoreCase prefixes expr with the case-insensitive flag.
func IgnoreCase(expr string) string {
	return "(?i)" + expr
}
