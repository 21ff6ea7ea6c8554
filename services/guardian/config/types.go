// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config holds the resolved settings object consumed by the analyzer
// and every rule set.
package config

import "github.com/AleutianAI/codeguardian/services/guardian/models"

// Config is the full guardian configuration document.
//
// Thread Safety: Treat as immutable after Load returns. Rule sets and the
// analyzer only read from it.
type Config struct {
	Version         int                   `yaml:"version" json:"version"`
	Security        SecurityConfig        `yaml:"security" json:"security"`
	Performance     PerformanceConfig     `yaml:"performance" json:"performance"`
	Maintainability MaintainabilityConfig `yaml:"maintainability" json:"maintainability"`
	AIDetection     AIDetectionConfig     `yaml:"ai_detection" json:"ai_detection"`
	Exclude         []string              `yaml:"exclude" json:"exclude"`
	Reporting       ReportingConfig       `yaml:"reporting" json:"reporting"`
	Analysis        AnalysisConfig        `yaml:"analysis" json:"analysis"`
}

// SecurityConfig toggles the security rule set and its five pattern categories.
type SecurityConfig struct {
	Enabled                    bool   `yaml:"enabled" json:"enabled"`
	SeverityThreshold          string `yaml:"severity_threshold" json:"severity_threshold" validate:"severity"`
	CheckSQLInjection          bool   `yaml:"check_sql_injection" json:"check_sql_injection"`
	CheckXSS                   bool   `yaml:"check_xss" json:"check_xss"`
	CheckHardcodedSecrets      bool   `yaml:"check_hardcoded_secrets" json:"check_hardcoded_secrets"`
	CheckUnsafeDeserialization bool   `yaml:"check_unsafe_deserialization" json:"check_unsafe_deserialization"`
	CheckAIVulnerabilities     bool   `yaml:"check_ai_vulnerabilities" json:"check_ai_vulnerabilities"`
}

// PerformanceConfig configures the performance rule set.
type PerformanceConfig struct {
	Enabled               bool `yaml:"enabled" json:"enabled"`
	CheckComplexity       bool `yaml:"check_complexity" json:"check_complexity"`
	CheckMemoryUsage      bool `yaml:"check_memory_usage" json:"check_memory_usage"`
	CheckInefficientLoops bool `yaml:"check_inefficient_loops" json:"check_inefficient_loops"`
	MaxComplexity         int  `yaml:"max_complexity" json:"max_complexity" validate:"min=1"`
}

// MaintainabilityConfig configures the maintainability rule set.
type MaintainabilityConfig struct {
	Enabled                bool `yaml:"enabled" json:"enabled"`
	MaxComplexity          int  `yaml:"max_complexity" json:"max_complexity" validate:"min=1"`
	MaxFunctionLength      int  `yaml:"max_function_length" json:"max_function_length" validate:"min=1"`
	MaxClassMethods        int  `yaml:"max_class_methods" json:"max_class_methods" validate:"min=1"`
	CheckNamingConventions bool `yaml:"check_naming_conventions" json:"check_naming_conventions"`
}

// AIDetectionConfig configures the AI-pattern rule set.
type AIDetectionConfig struct {
	Enabled              bool    `yaml:"enabled" json:"enabled"`
	ConfidenceThreshold  float64 `yaml:"confidence_threshold" json:"confidence_threshold" validate:"gte=0,lte=1"`
	CheckCommentPatterns bool    `yaml:"check_comment_patterns" json:"check_comment_patterns"`
	CheckCodePatterns    bool    `yaml:"check_code_patterns" json:"check_code_patterns"`
}

// ReportingConfig only affects rendered reports, never the AnalysisResult.
type ReportingConfig struct {
	IncludeSourceSnippets bool `yaml:"include_source_snippets" json:"include_source_snippets"`
	MaxIssuesPerFile      int  `yaml:"max_issues_per_file" json:"max_issues_per_file" validate:"min=0"`
	ShowAIConfidence      bool `yaml:"show_ai_confidence" json:"show_ai_confidence"`
}

// AnalysisConfig controls how the scan is executed.
type AnalysisConfig struct {
	// Workers is the number of parallel per-file workers. 0 runs sequentially.
	Workers int `yaml:"workers" json:"workers" validate:"min=0,max=256"`

	// MaxFileSize is the largest file, in bytes, that will be read.
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size" validate:"min=1"`

	// MinSeverity overrides security.severity_threshold when set.
	MinSeverity string `yaml:"min_severity,omitempty" json:"min_severity,omitempty" validate:"omitempty,severity"`
}

// DefaultExcludes are applied on every scan in addition to caller patterns.
var DefaultExcludes = []string{
	"*.pyc",
	"__pycache__/",
	".git/",
	"node_modules/",
	"venv/",
	".env",
	"*.min.js",
	"*.min.css",
}

// DefaultMaxFileSize is 10MB, matching the parser's limit.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// DefaultConfig returns the built-in configuration document.
func DefaultConfig() *Config {
	excludes := make([]string, len(DefaultExcludes))
	copy(excludes, DefaultExcludes)

	return &Config{
		Version: 1,
		Security: SecurityConfig{
			Enabled:                    true,
			SeverityThreshold:          "medium",
			CheckSQLInjection:          true,
			CheckXSS:                   true,
			CheckHardcodedSecrets:      true,
			CheckUnsafeDeserialization: true,
			CheckAIVulnerabilities:     true,
		},
		Performance: PerformanceConfig{
			Enabled:               true,
			CheckComplexity:       true,
			CheckMemoryUsage:      true,
			CheckInefficientLoops: true,
			MaxComplexity:         10,
		},
		Maintainability: MaintainabilityConfig{
			Enabled:                true,
			MaxComplexity:          10,
			MaxFunctionLength:      50,
			MaxClassMethods:        20,
			CheckNamingConventions: true,
		},
		AIDetection: AIDetectionConfig{
			Enabled:              true,
			ConfidenceThreshold:  0.7,
			CheckCommentPatterns: true,
			CheckCodePatterns:    true,
		},
		Exclude: excludes,
		Reporting: ReportingConfig{
			IncludeSourceSnippets: true,
			MaxIssuesPerFile:      20,
			ShowAIConfidence:      true,
		},
		Analysis: AnalysisConfig{
			Workers:     0,
			MaxFileSize: DefaultMaxFileSize,
		},
	}
}

// MinSeverity returns the effective minimum severity for reported findings.
//
// analysis.min_severity wins over security.severity_threshold. Unknown
// names resolve to medium.
func (c *Config) MinSeverity() models.Severity {
	if c.Analysis.MinSeverity != "" {
		return models.SeverityFromString(c.Analysis.MinSeverity)
	}
	return models.SeverityFromString(c.Security.SeverityThreshold)
}

// Clone returns a deep copy, for callers that need a variant of a loaded config.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Exclude = make([]string, len(c.Exclude))
	copy(clone.Exclude, c.Exclude)
	return &clone
}
