// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/AleutianAI/codeguardian/services/guardian/models"
)

// Document is the JSON report layout.
type Document struct {
	// Metadata describes the tool and the run.
	Metadata Metadata `json:"metadata"`

	// Summary holds the aggregate numbers.
	Summary Summary `json:"summary"`

	// Issues are the rendered findings.
	Issues []models.Finding `json:"issues"`

	// FileScores maps file path to that file's scores.
	FileScores map[string]models.FileScores `json:"file_scores"`

	// IssuesBySeverity always has all four severities.
	IssuesBySeverity map[string]int `json:"issues_by_severity"`

	// IssuesByCategory always has every category.
	IssuesByCategory map[string]int `json:"issues_by_category"`
}

// Metadata identifies the report.
type Metadata struct {
	Tool          string    `json:"tool"`
	Version       string    `json:"version"`
	GeneratedAt   time.Time `json:"generated_at"`
	ExecutionTime float64   `json:"execution_time"`
	RunID         string    `json:"run_id,omitempty"`
}

// Summary mirrors the scalar fields of AnalysisResult.
type Summary struct {
	FilesScanned          int     `json:"files_scanned"`
	SecurityIssues        int     `json:"security_issues"`
	PerformanceIssues     int     `json:"performance_issues"`
	MaintainabilityScore  float64 `json:"maintainability_score"`
	AIGeneratedPercentage float64 `json:"ai_generated_percentage"`
	TotalIssues           int     `json:"total_issues"`
}

// NewDocument builds the JSON document for an already prepared result.
func NewDocument(result *models.AnalysisResult, generatedAt time.Time) Document {
	byCategory := make(map[string]int, len(models.AllCategories))
	for _, c := range models.AllCategories {
		byCategory[string(c)] = 0
	}
	for c, n := range result.CountByCategory() {
		byCategory[c] = n
	}

	return Document{
		Metadata: Metadata{
			Tool:          ToolName,
			Version:       ToolVersion,
			GeneratedAt:   generatedAt,
			ExecutionTime: result.ExecutionTime,
			RunID:         result.RunID,
		},
		Summary: Summary{
			FilesScanned:          result.FilesScanned,
			SecurityIssues:        result.SecurityIssues,
			PerformanceIssues:     result.PerformanceIssues,
			MaintainabilityScore:  result.MaintainabilityScore,
			AIGeneratedPercentage: result.AIGeneratedPercentage,
			TotalIssues:           len(result.Issues),
		},
		Issues:           result.Issues,
		FileScores:       result.FileScores,
		IssuesBySeverity: result.CountBySeverity(),
		IssuesByCategory: byCategory,
	}
}

func (g *Generator) writeJSON(w io.Writer, result *models.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(NewDocument(result, g.now())); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}
