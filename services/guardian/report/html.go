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
	"html/template"
	"io"
	"sync"

	"github.com/AleutianAI/codeguardian/services/guardian/models"
)

// htmlIssueLimit caps the issue list on the HTML page. The JSON report
// has the rest.
const htmlIssueLimit = 20

var (
	htmlOnce sync.Once
	htmlTmpl *template.Template
	htmlErr  error
)

type htmlData struct {
	GeneratedAt string
	Result      *models.AnalysisResult
	Issues      []models.Finding
	Remaining   int
	ShowAI      bool
	ScoreClass  string
	Critical    bool
}

func htmlTemplate() (*template.Template, error) {
	htmlOnce.Do(func() {
		funcs := template.FuncMap{
			"f1": func(v float64) string { return fmt.Sprintf("%.1f", v) },
			"f2": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		}
		htmlTmpl, htmlErr = template.New("report").Funcs(funcs).Parse(htmlSource)
	})
	return htmlTmpl, htmlErr
}

func scoreClass(score float64) string {
	switch {
	case score >= 7:
		return "score-good"
	case score >= 5:
		return "score-warning"
	default:
		return "score-danger"
	}
}

func (g *Generator) writeHTML(w io.Writer, result *models.AnalysisResult) error {
	tmpl, err := htmlTemplate()
	if err != nil {
		return fmt.Errorf("parse html template: %w", err)
	}

	issues := result.Issues
	remaining := 0
	if len(issues) > htmlIssueLimit {
		remaining = len(issues) - htmlIssueLimit
		issues = issues[:htmlIssueLimit]
	}

	data := htmlData{
		GeneratedAt: g.now().Format("2006-01-02 15:04:05"),
		Result:      result,
		Issues:      issues,
		Remaining:   remaining,
		ShowAI:      g.opts.ShowAIConfidence,
		ScoreClass:  scoreClass(result.MaintainabilityScore),
		Critical:    result.HasCriticalIssues(),
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

const htmlSource = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Code Guardian Report</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', system-ui, sans-serif; margin: 0; padding: 20px; background: #f8f9fa; }
.container { max-width: 1200px; margin: 0 auto; }
.header, .section, .metric-card { background: white; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
.header { padding: 30px; margin-bottom: 20px; }
.title { font-size: 2.5rem; color: #2c3e50; margin: 0; }
.subtitle { color: #6c757d; margin: 10px 0 0 0; }
.summary-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 20px; margin-bottom: 30px; }
.metric-card { padding: 20px; text-align: center; }
.metric-value { font-size: 2rem; font-weight: bold; margin-bottom: 5px; }
.metric-label { color: #6c757d; font-size: 0.9rem; }
.section { padding: 20px; margin-bottom: 20px; }
.section-title { font-size: 1.5rem; margin-bottom: 20px; color: #2c3e50; }
.issue { padding: 15px; border-left: 4px solid; margin-bottom: 10px; background: #f8f9fa; border-radius: 0 4px 4px 0; }
.issue-critical { border-left-color: #dc3545; }
.issue-high { border-left-color: #fd7e14; }
.issue-medium { border-left-color: #ffc107; }
.issue-low { border-left-color: #6c757d; }
.issue-header { font-weight: bold; margin-bottom: 5px; }
.issue-meta { font-size: 0.9rem; color: #6c757d; margin-bottom: 10px; }
.issue-suggestion { background: #e3f2fd; padding: 10px; border-radius: 4px; font-size: 0.9rem; }
.badge { display: inline-block; padding: 4px 8px; border-radius: 12px; font-size: 0.8rem; font-weight: bold; text-transform: uppercase; color: white; }
.badge-critical { background: #dc3545; }
.badge-high { background: #fd7e14; }
.badge-medium { background: #ffc107; color: #212529; }
.badge-low { background: #6c757d; }
.score-good { color: #28a745; }
.score-warning { color: #ffc107; }
.score-danger { color: #dc3545; }
code { background: #f1f3f4; padding: 2px 4px; border-radius: 3px; font-family: 'Monaco', 'Consolas', monospace; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h1 class="title">Code Guardian Report</h1>
    <p class="subtitle">Generated on {{.GeneratedAt}}</p>
  </div>

  <div class="summary-grid">
    <div class="metric-card"><div class="metric-value">{{.Result.FilesScanned}}</div><div class="metric-label">Files Scanned</div></div>
    <div class="metric-card"><div class="metric-value">{{.Result.SecurityIssues}}</div><div class="metric-label">Security Issues</div></div>
    <div class="metric-card"><div class="metric-value">{{.Result.PerformanceIssues}}</div><div class="metric-label">Performance Issues</div></div>
    <div class="metric-card"><div class="metric-value {{.ScoreClass}}">{{f1 .Result.MaintainabilityScore}}/10</div><div class="metric-label">Maintainability Score</div></div>
    {{- if .ShowAI}}
    <div class="metric-card"><div class="metric-value">{{f1 .Result.AIGeneratedPercentage}}%</div><div class="metric-label">AI Generated Code</div></div>
    {{- end}}
  </div>

  {{- if .Issues}}
  <div class="section">
    <h2 class="section-title">Issues Found</h2>
    {{- range .Issues}}
    <div class="issue issue-{{.Severity}}">
      <div class="issue-header"><span class="badge badge-{{.Severity}}">{{.Severity}}</span> {{.Message}}</div>
      <div class="issue-meta"><code>{{.FilePath}}</code> at line {{.LineNumber}}{{if .RuleID}} &bull; Rule: {{.RuleID}}{{end}}</div>
      {{- if .SourceSnippet}}
      <div style="margin: 10px 0;"><code>{{.SourceSnippet}}</code></div>
      {{- end}}
      {{- if .Suggestion}}
      <div class="issue-suggestion"><strong>Suggestion:</strong> {{.Suggestion}}</div>
      {{- end}}
    </div>
    {{- end}}
    {{- if .Remaining}}
    <p><em>... and {{.Remaining}} more issues. See JSON report for complete details.</em></p>
    {{- end}}
  </div>
  {{- end}}

  <div class="section">
    <h2 class="section-title">Analysis Summary</h2>
    <p>Scanned <strong>{{.Result.FilesScanned}}</strong> files in <strong>{{f2 .Result.ExecutionTime}}</strong> seconds.</p>
    {{- if and .ShowAI (gt .Result.AIGeneratedPercentage 50.0)}}
    <p>This codebase appears to contain a significant amount of AI-generated code ({{f1 .Result.AIGeneratedPercentage}}%). Consider reviewing AI-generated sections carefully.</p>
    {{- end}}
    {{- if .Critical}}
    <p><strong>Critical issues found!</strong> Please address these security vulnerabilities immediately.</p>
    {{- end}}
  </div>
</div>
</body>
</html>
`
