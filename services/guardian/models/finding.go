// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package models

import "fmt"

// =============================================================================
// FINDING
// =============================================================================

// Finding is a single detected issue.
//
// Description:
//
//	Findings are values. Rule sets build them with NewFinding and the
//	With* helpers, which return modified copies; nothing mutates a
//	Finding after it has been appended to a result.
//
// Thread Safety: Immutable value type, safe to share.
type Finding struct {
	// Severity is always one of the four defined severities.
	Severity Severity `json:"severity"`

	// Category is always one of the four defined categories.
	Category Category `json:"category"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// FilePath is the path of the analyzed file.
	FilePath string `json:"file_path"`

	// LineNumber is 1-based; 0 means the whole file.
	LineNumber int `json:"line_number"`

	// ColumnNumber is 1-based; 0 means unknown.
	ColumnNumber int `json:"column_number"`

	// RuleID is a dotted identifier such as "security.sql_injection".
	// Empty for synthetic analysis-error findings.
	RuleID string `json:"rule_id"`

	// Confidence is in [0,1]. Defaults to 1.0.
	Confidence float64 `json:"confidence"`

	// SourceSnippet is the triggering line with surrounding whitespace trimmed.
	SourceSnippet string `json:"source_snippet,omitempty"`

	// Suggestion is remediation advice.
	Suggestion string `json:"suggestion,omitempty"`
}

// NewFinding creates a finding with full confidence and no optional fields.
func NewFinding(severity Severity, category Category, message, path string, line int) Finding {
	return Finding{
		Severity:   severity,
		Category:   category,
		Message:    message,
		FilePath:   path,
		LineNumber: line,
		Confidence: 1.0,
	}
}

// WithRule returns a copy of f with the rule identifier set.
func (f Finding) WithRule(ruleID string) Finding {
	f.RuleID = ruleID
	return f
}

// WithSnippet returns a copy of f with the source snippet set.
func (f Finding) WithSnippet(snippet string) Finding {
	f.SourceSnippet = snippet
	return f
}

// WithSuggestion returns a copy of f with the suggestion set.
func (f Finding) WithSuggestion(suggestion string) Finding {
	f.Suggestion = suggestion
	return f
}

// WithColumn returns a copy of f with the column set.
func (f Finding) WithColumn(column int) Finding {
	f.ColumnNumber = column
	return f
}

// Location formats the finding position as "path:line" or "path:line:col".
func (f Finding) Location() string {
	if f.ColumnNumber > 0 {
		return fmt.Sprintf("%s:%d:%d", f.FilePath, f.LineNumber, f.ColumnNumber)
	}
	return fmt.Sprintf("%s:%d", f.FilePath, f.LineNumber)
}

// =============================================================================
// AI PATTERN
// =============================================================================

// AIPattern type names.
const (
	PatternComment   = "comment"
	PatternStructure = "structure"
	PatternCode      = "code"
	PatternNaming    = "naming"
	PatternImports   = "imports"
	PatternStrings   = "strings"
)

// AIPattern is a single machine-authorship signal.
//
// AIPatterns never become Findings; they feed the per-file ai_confidence score.
type AIPattern struct {
	PatternType string  `json:"pattern_type"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
	LineNumber  int     `json:"line_number"`
	Evidence    string  `json:"evidence"`
}

// StyleMetrics summarizes the formatting regularity of a file.
type StyleMetrics struct {
	AvgLineLength        float64 `json:"avg_line_length"`
	CommentRatio         float64 `json:"comment_ratio"`
	EmptyLineRatio       float64 `json:"empty_line_ratio"`
	DocstringPresent     bool    `json:"docstring_present"`
	TypeHintsPresent     bool    `json:"type_hints_present"`
	ConsistentFormatting bool    `json:"consistent_formatting"`
	OverCommented        bool    `json:"over_commented"`

	// PerfectSpacing is nil when the file contains no '=' at all.
	PerfectSpacing *bool `json:"perfect_spacing,omitempty"`
}
