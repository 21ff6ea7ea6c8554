// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package guardian

import (
	"errors"

	"github.com/AleutianAI/codeguardian/services/guardian/analyzer"
)

// ServiceName identifies the HTTP service in traces.
const ServiceName = "codeguardian"

// Sentinel errors for the HTTP service.
var (
	// ErrAbsolutePath indicates a scan path was absolute.
	ErrAbsolutePath = errors.New("scan paths must be relative to the service root")

	// ErrPathTraversal indicates a scan path escapes the service root.
	ErrPathTraversal = errors.New("path escapes the service root")
)

// AnalyzeRequest is the body of POST /v1/guardian/analyze.
type AnalyzeRequest struct {
	// Files are analyzed in order. Required, at least one.
	Files []analyzer.Source `json:"files" binding:"required,min=1,dive"`

	// MinSeverity overrides the configured minimum severity.
	MinSeverity string `json:"min_severity" binding:"omitempty,oneof=low medium high critical"`

	// DetectAI toggles AI-pattern detection. Defaults to true.
	DetectAI *bool `json:"detect_ai"`
}

// ScanRequest is the body of POST /v1/guardian/scan.
type ScanRequest struct {
	// Paths are files or directories relative to the service root.
	Paths []string `json:"paths" binding:"required,min=1,dive,required"`

	// Exclude is appended to the configured exclude patterns.
	Exclude []string `json:"exclude"`

	// MinSeverity overrides the configured minimum severity.
	MinSeverity string `json:"min_severity" binding:"omitempty,oneof=low medium high critical"`

	// DetectAI toggles AI-pattern detection. Defaults to true.
	DetectAI *bool `json:"detect_ai"`
}

// HealthResponse is the body of GET /v1/guardian/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the machine-readable error code.
	Code string `json:"code,omitempty"`

	// Details provides additional error context (optional).
	Details string `json:"details,omitempty"`
}
