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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/AleutianAI/codeguardian/services/guardian/models"
)

// textIssueLimit is how many issues the terminal summary lists.
const textIssueLimit = 10

// Palette shared with the rest of the CLI.
var (
	colorTeal    = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorInfo    = lipgloss.Color("#5DADE2")
	colorMuted   = lipgloss.Color("#2C4A54")

	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	styleMetric = lipgloss.NewStyle().Foreground(colorTeal)
	styleBorder = lipgloss.NewStyle().Foreground(colorMuted)
	styleAlert  = lipgloss.NewStyle().Bold(true).Foreground(colorError)

	severityStyles = map[models.Severity]lipgloss.Style{
		models.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(colorError),
		models.SeverityHigh:     lipgloss.NewStyle().Foreground(colorError),
		models.SeverityMedium:   lipgloss.NewStyle().Foreground(colorWarning),
		models.SeverityLow:      lipgloss.NewStyle().Foreground(colorInfo),
	}
)

// Status icons for the summary table.
const (
	iconOK      = "✓"
	iconWarning = "⚠"
	iconError   = "✗"
	iconInfo    = "•"
)

func fdIsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// painter applies styles only when the destination is a terminal.
type painter bool

func (p painter) paint(style lipgloss.Style, text string) string {
	if !p {
		return text
	}
	return style.Render(text)
}

// summaryRows builds the Metric / Value / Status rows.
func (g *Generator) summaryRows(r *models.AnalysisResult) [][]string {
	status := func(bad bool, badIcon string) string {
		if bad {
			return badIcon
		}
		return iconOK
	}

	maintIcon := iconOK
	if r.MaintainabilityScore < 7 {
		maintIcon = iconWarning
	}

	rows := [][]string{
		{"Files Scanned", strconv.Itoa(r.FilesScanned), iconInfo},
		{"Security Issues", strconv.Itoa(r.SecurityIssues), status(r.SecurityIssues > 0, iconError)},
		{"Performance Issues", strconv.Itoa(r.PerformanceIssues), status(r.PerformanceIssues > 0, iconWarning)},
		{"Maintainability Score", fmt.Sprintf("%.1f/10", r.MaintainabilityScore), maintIcon},
	}
	if g.opts.ShowAIConfidence {
		rows = append(rows, []string{"AI-Generated Code", fmt.Sprintf("%.1f%%", r.AIGeneratedPercentage), iconInfo})
	}
	return rows
}

func (g *Generator) writeText(w io.Writer, r *models.AnalysisResult) error {
	p := painter(g.color(w))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Metric", "Value", "Status").
		Rows(g.summaryRows(r)...)
	if p {
		t = t.BorderStyle(styleBorder).StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return base.Inherit(styleHeader)
			case col == 0:
				return base.Inherit(styleMetric)
			case col == 1:
				return base.Align(lipgloss.Right)
			default:
				return base.Align(lipgloss.Center)
			}
		})
	}

	var b strings.Builder
	b.WriteString("\n" + p.paint(styleTitle, "Analysis Results") + "\n\n")
	b.WriteString(t.String() + "\n")

	if len(r.Issues) > 0 {
		b.WriteString("\n" + p.paint(styleAlert, "Issues Found:") + "\n\n")
		for _, f := range r.Issues[:min(len(r.Issues), textIssueLimit)] {
			label := p.paint(severityStyles[f.Severity], "● "+strings.ToUpper(f.Severity.String()))
			fmt.Fprintf(&b, "%s: %s (%s:%d)\n", label, f.Message, f.FilePath, f.LineNumber)
		}
		if extra := len(r.Issues) - textIssueLimit; extra > 0 {
			fmt.Fprintf(&b, "\n... and %d more issues\n", extra)
		}
	}

	if r.HasCriticalIssues() {
		b.WriteString("\n" + p.paint(styleAlert, "Critical issues found!") + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
