// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report renders an AnalysisResult as a terminal summary, JSON,
// SARIF 2.1.0 or a self-contained HTML page.
//
// Reporting options only shape the rendered output. The AnalysisResult
// passed in is never modified.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/AleutianAI/codeguardian/services/guardian/config"
	"github.com/AleutianAI/codeguardian/services/guardian/models"
)

const (
	// ToolName is reported in JSON metadata and as the SARIF driver.
	ToolName = "Code Guardian"

	// ToolVersion is the version written into reports.
	ToolVersion = "0.1.0"

	// ToolURI is the SARIF driver informationUri.
	ToolURI = "https://github.com/AleutianAI/codeguardian"
)

// ErrUnknownFormat is returned for a format name outside Formats.
var ErrUnknownFormat = errors.New("unknown report format")

// Format selects a renderer.
type Format string

const (
	FormatCLI   Format = "cli"
	FormatJSON  Format = "json"
	FormatHTML  Format = "html"
	FormatSARIF Format = "sarif"
)

// Formats lists every supported format.
var Formats = []Format{FormatCLI, FormatJSON, FormatHTML, FormatSARIF}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// DefaultOutput is the file written when no output path is given.
// The terminal format always writes to stdout.
func (f Format) DefaultOutput() string {
	switch f {
	case FormatJSON:
		return "ai-guardian-report.json"
	case FormatHTML:
		return "ai-guardian-report.html"
	case FormatSARIF:
		return "ai-guardian-report.sarif"
	default:
		return ""
	}
}

// Generator renders reports.
//
// Thread Safety: Safe for concurrent use.
type Generator struct {
	opts  config.ReportingConfig
	now   func() time.Time
	color func(io.Writer) bool
}

// Option configures the Generator.
type Option func(*Generator)

// WithClock fixes the report timestamp. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithColor forces terminal colors on or off instead of detecting a TTY.
func WithColor(enabled bool) Option {
	return func(g *Generator) {
		g.color = func(io.Writer) bool { return enabled }
	}
}

// NewGenerator creates a Generator for the reporting section of cfg.
func NewGenerator(opts config.ReportingConfig, options ...Option) *Generator {
	g := &Generator{
		opts:  opts,
		now:   time.Now,
		color: isTerminal,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Write renders result in format to w.
//
// Inputs:
//
//	w - Destination.
//	format - One of Formats.
//	result - The scan result. Not modified.
//
// Outputs:
//
//	error - ErrUnknownFormat, or an encoding/write error.
func (g *Generator) Write(w io.Writer, format Format, result *models.AnalysisResult) error {
	view := g.prepare(result)
	switch format {
	case FormatCLI:
		return g.writeText(w, view)
	case FormatJSON:
		return g.writeJSON(w, view)
	case FormatHTML:
		return g.writeHTML(w, view)
	case FormatSARIF:
		return writeSARIF(w, view)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile renders result into path, creating or truncating it.
func (g *Generator) WriteFile(path string, format Format, result *models.AnalysisResult) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close report %s: %w", path, cerr)
		}
	}()
	return g.Write(f, format, result)
}

// prepare returns a shallow copy of result whose Issues honor
// max_issues_per_file and include_source_snippets.
func (g *Generator) prepare(result *models.AnalysisResult) *models.AnalysisResult {
	view := *result
	view.Issues = make([]models.Finding, 0, len(result.Issues))

	perFile := make(map[string]int)
	for _, f := range result.Issues {
		if limit := g.opts.MaxIssuesPerFile; limit > 0 {
			if perFile[f.FilePath] >= limit {
				continue
			}
			perFile[f.FilePath]++
		}
		if !g.opts.IncludeSourceSnippets {
			f.SourceSnippet = ""
		}
		view.Issues = append(view.Issues, f)
	}
	if view.FileScores == nil {
		view.FileScores = make(map[string]models.FileScores)
	}
	return &view
}

// isTerminal reports whether w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return fdIsTerminal(f.Fd())
}
