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

// =============================================================================
// PER-FILE SCORES
// =============================================================================

// FileScores holds the numeric summaries computed for one file.
//
// A nil pointer means the producing rule set was disabled for the file,
// so the key is absent from serialized output.
type FileScores struct {
	// PerformanceScore is in [0,10].
	PerformanceScore *float64 `json:"performance_score,omitempty"`

	// MaintainabilityScore is in [0,10].
	MaintainabilityScore *float64 `json:"maintainability_score,omitempty"`

	// AIConfidence is in [0,0.95].
	AIConfidence *float64 `json:"ai_confidence,omitempty"`

	// AIPatterns holds the matches at or above the configured threshold.
	// Nil when detection did not run; empty when it ran and nothing matched.
	AIPatterns []AIPattern `json:"ai_patterns,omitzero"`

	// StyleMetrics is nil when the file has no non-blank lines.
	StyleMetrics *StyleMetrics `json:"style_metrics,omitempty"`
}

// Score returns a pointer to v, for populating FileScores.
func Score(v float64) *float64 {
	return &v
}

// FileResult is the output of analyzing a single file.
type FileResult struct {
	Path     string     `json:"path"`
	Findings []Finding  `json:"findings"`
	Scores   FileScores `json:"scores"`
}

// =============================================================================
// ANALYSIS RESULT
// =============================================================================

// AnalysisResult is the aggregate report for one scan.
//
// Description:
//
//	Built incrementally by the analyzer and finalized once after all files
//	have been processed. Callers receive it read-only.
//
// Thread Safety: Not safe for concurrent mutation. Safe to read concurrently
// once returned by the analyzer.
type AnalysisResult struct {
	// RunID identifies the scan in logs and reports.
	RunID string `json:"run_id,omitempty"`

	// FilesScanned is the number of files handed to the per-file analyzer.
	FilesScanned int `json:"files_scanned"`

	// SecurityIssues counts security findings surviving the severity filter.
	SecurityIssues int `json:"security_issues"`

	// PerformanceIssues counts performance findings surviving the severity filter.
	PerformanceIssues int `json:"performance_issues"`

	// MaintainabilityScore is the mean per-file maintainability score.
	MaintainabilityScore float64 `json:"maintainability_score"`

	// AIGeneratedPercentage is the mean per-file AI confidence times 100.
	AIGeneratedPercentage float64 `json:"ai_generated_percentage"`

	// Issues are ordered by file discovery order, then emission order.
	Issues []Finding `json:"issues"`

	// FileScores maps file path to that file's scores.
	FileScores map[string]FileScores `json:"file_scores"`

	// ExecutionTime is wall-clock seconds for the whole scan.
	ExecutionTime float64 `json:"execution_time"`
}

// NewAnalysisResult returns an empty result with its neutral defaults.
func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		MaintainabilityScore: 10.0,
		Issues:               []Finding{},
		FileScores:           make(map[string]FileScores),
	}
}

// HasCriticalIssues reports whether any surviving finding is critical.
func (r *AnalysisResult) HasCriticalIssues() bool {
	for _, f := range r.Issues {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// IssuesBySeverity returns the findings with exactly the given severity.
func (r *AnalysisResult) IssuesBySeverity(severity Severity) []Finding {
	out := make([]Finding, 0)
	for _, f := range r.Issues {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

// IssuesByCategory returns the findings in the given category.
func (r *AnalysisResult) IssuesByCategory(category Category) []Finding {
	out := make([]Finding, 0)
	for _, f := range r.Issues {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

// CountBySeverity tallies findings per severity name.
func (r *AnalysisResult) CountBySeverity() map[string]int {
	counts := make(map[string]int, len(AllSeverities))
	for _, s := range AllSeverities {
		counts[s.String()] = 0
	}
	for _, f := range r.Issues {
		counts[f.Severity.String()]++
	}
	return counts
}

// CountByCategory tallies findings per category.
func (r *AnalysisResult) CountByCategory() map[string]int {
	counts := make(map[string]int)
	for _, f := range r.Issues {
		counts[string(f.Category)]++
	}
	return counts
}
