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
	"strings"

	"github.com/AleutianAI/codeguardian/services/guardian/models"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
)

// SARIF 2.1.0 subset written by this package.
type (
	sarifLog struct {
		Version string     `json:"version"`
		Schema  string     `json:"$schema"`
		Runs    []sarifRun `json:"runs"`
	}

	sarifRun struct {
		Tool    sarifTool     `json:"tool"`
		Results []sarifResult `json:"results"`
	}

	sarifTool struct {
		Driver sarifDriver `json:"driver"`
	}

	sarifDriver struct {
		Name           string      `json:"name"`
		Version        string      `json:"version"`
		InformationURI string      `json:"informationUri"`
		Rules          []sarifRule `json:"rules"`
	}

	sarifRule struct {
		ID                   string             `json:"id"`
		Name                 string             `json:"name"`
		ShortDescription     sarifMessage       `json:"shortDescription"`
		FullDescription      sarifMessage       `json:"fullDescription"`
		DefaultConfiguration sarifConfiguration `json:"defaultConfiguration"`
	}

	sarifConfiguration struct {
		Level string `json:"level"`
	}

	sarifResult struct {
		RuleID    string          `json:"ruleId,omitempty"`
		Level     string          `json:"level"`
		Message   sarifMessage    `json:"message"`
		Locations []sarifLocation `json:"locations"`
	}

	sarifMessage struct {
		Text string `json:"text"`
	}

	sarifLocation struct {
		PhysicalLocation sarifPhysical `json:"physicalLocation"`
	}

	sarifPhysical struct {
		ArtifactLocation sarifArtifact `json:"artifactLocation"`
		Region           sarifRegion   `json:"region"`
	}

	sarifArtifact struct {
		URI string `json:"uri"`
	}

	sarifRegion struct {
		StartLine   int `json:"startLine"`
		StartColumn int `json:"startColumn"`
	}
)

// sarifLevel maps critical and high to error, medium to warning and low
// to note.
func sarifLevel(s models.Severity) string {
	switch s {
	case models.SeverityCritical, models.SeverityHigh:
		return "error"
	case models.SeverityLow:
		return "note"
	default:
		return "warning"
	}
}

// sarifRules derives one rule per distinct rule id, described by its
// first finding.
func sarifRules(issues []models.Finding) []sarifRule {
	rules := make([]sarifRule, 0)
	seen := make(map[string]bool)
	for _, f := range issues {
		if f.RuleID == "" || seen[f.RuleID] {
			continue
		}
		seen[f.RuleID] = true

		full := f.Suggestion
		if full == "" {
			full = f.Message
		}
		rules = append(rules, sarifRule{
			ID:                   f.RuleID,
			Name:                 strings.ToUpper(strings.ReplaceAll(f.RuleID, ".", "_")),
			ShortDescription:     sarifMessage{Text: f.Message},
			FullDescription:      sarifMessage{Text: full},
			DefaultConfiguration: sarifConfiguration{Level: sarifLevel(f.Severity)},
		})
	}
	return rules
}

func toSARIF(result *models.AnalysisResult) sarifLog {
	results := make([]sarifResult, 0, len(result.Issues))
	for _, f := range result.Issues {
		// SARIF regions are 1-based; whole-file findings point at line 1.
		line := max(f.LineNumber, 1)
		column := max(f.ColumnNumber, 1)
		results = append(results, sarifResult{
			RuleID:  f.RuleID,
			Level:   sarifLevel(f.Severity),
			Message: sarifMessage{Text: f.Message},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysical{
					ArtifactLocation: sarifArtifact{URI: f.FilePath},
					Region:           sarifRegion{StartLine: line, StartColumn: column},
				},
			}},
		})
	}

	return sarifLog{
		Version: sarifVersion,
		Schema:  sarifSchema,
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           ToolName,
				Version:        ToolVersion,
				InformationURI: ToolURI,
				Rules:          sarifRules(result.Issues),
			}},
			Results: results,
		}},
	}
}

func writeSARIF(w io.Writer, result *models.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toSARIF(result)); err != nil {
		return fmt.Errorf("encode sarif report: %w", err)
	}
	return nil
}
