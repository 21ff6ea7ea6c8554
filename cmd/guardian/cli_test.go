// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/codeguardian/services/guardian/report"
)

const (
	cleanSource = `def add(left, right):
    return left + right
`
	secretSource = `password = "hunter2hunter2"
`
)

// run executes the CLI and returns the exit code, stdout and stderr.
func run(t *testing.T, ctx context.Context, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(ctx, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"critical", errCriticalIssues, ExitCritical},
		{"plain error", errors.New("boom"), ExitError},
		{"wrapped exit", &exitError{code: 7}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestVersion(t *testing.T) {
	code, out, _ := run(t, context.Background(), "version")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, report.ToolName)
	assert.Contains(t, out, version)
}

func TestScan_Clean(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clean.py", cleanSource)

	code, out, _ := run(t, context.Background(), "scan", dir)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Analysis Results")
	assert.NotContains(t, out, "Critical issues found!")
}

func TestScan_CriticalExitCode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "settings.py", secretSource)

	code, out, _ := run(t, context.Background(), "scan", dir)
	assert.Equal(t, ExitCritical, code)
	assert.Contains(t, out, "Critical issues found!")
}

func TestScan_JSONReport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "settings.py", secretSource)
	out := filepath.Join(t.TempDir(), "report.json")

	code, _, stderr := run(t, context.Background(), "scan", dir, "--format", "json", "--output", out)
	assert.Equal(t, ExitCritical, code)
	assert.Contains(t, stderr, "Report saved to "+out)
	assert.Contains(t, stderr, "Critical issues found!")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc report.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, report.ToolName, doc.Metadata.Tool)
	assert.Equal(t, 1, doc.Summary.FilesScanned)
	assert.Positive(t, doc.IssuesBySeverity["critical"])
}

func TestScan_StdoutReport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clean.py", cleanSource)

	code, out, _ := run(t, context.Background(), "scan", dir, "--format", "sarif", "--output", "-")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, `"version": "2.1.0"`)
}

func TestScan_SeverityFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "settings.py", secretSource)
	out := filepath.Join(t.TempDir(), "report.json")

	code, _, _ := run(t, context.Background(), "scan", dir, "--severity", "critical",
		"--format", "json", "--output", out, "--no-ai-patterns")
	assert.Equal(t, ExitCritical, code)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc report.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, f := range doc.Issues {
		assert.Equal(t, "critical", f.Severity.String())
	}
	assert.Nil(t, doc.FileScores[filepath.Join(dir, "settings.py")].AIConfidence)
}

func TestScan_Exclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clean.py", cleanSource)
	writeFile(t, dir, "legacy/settings.py", secretSource)

	code, _, _ := run(t, context.Background(), "scan", dir, "--exclude", "legacy/")
	assert.Equal(t, ExitSuccess, code)
}

func TestScan_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clean.py", cleanSource)
	badConfig := writeFile(t, t.TempDir(), "bad.yml", "performance:\n  max_complexity: -1\n")

	tests := []struct {
		name string
		args []string
	}{
		{"missing path", []string{"scan", filepath.Join(dir, "missing")}},
		{"unknown format", []string{"scan", dir, "--format", "xml"}},
		{"unknown severity", []string{"scan", dir, "--severity", "urgent"}},
		{"invalid config", []string{"scan", dir, "--config", badConfig}},
		{"missing config", []string{"scan", dir, "--config", filepath.Join(dir, "nope.yml")}},
		{"bad log level", []string{"scan", dir, "--log-level", "verbose"}},
		{"bad exporter", []string{"scan", dir, "--trace-exporter", "zipkin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, context.Background(), tt.args...)
			assert.Equal(t, ExitError, code)
			assert.Contains(t, stderr, "Error:")
		})
	}
}

func TestScan_CacheDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "settings.py", secretSource)
	cacheDir := filepath.Join(t.TempDir(), "cache")

	code1, out1, _ := run(t, context.Background(), "scan", dir, "--cache-dir", cacheDir, "--format", "sarif", "-o", "-")
	code2, out2, _ := run(t, context.Background(), "scan", dir, "--cache-dir", cacheDir, "--format", "sarif", "-o", "-")

	assert.Equal(t, ExitCritical, code1)
	assert.Equal(t, code1, code2)
	assert.Equal(t, out1, out2)

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestScan_LogDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clean.py", cleanSource)
	logDir := filepath.Join(t.TempDir(), "logs")

	code, _, _ := run(t, context.Background(), "scan", dir, "--log-dir", logDir, "--log-level", "info")
	assert.Equal(t, ExitSuccess, code)

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(logDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Starting scan"`)
	assert.Contains(t, string(data), `"min_severity":"medium"`)
	assert.Contains(t, string(data), `"paths":["`)
}

func TestScan_MetricsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clean.py", cleanSource)
	metrics := filepath.Join(t.TempDir(), "guardian.prom")

	code, _, _ := run(t, context.Background(), "scan", dir, "--metrics-file", metrics)
	assert.Equal(t, ExitSuccess, code)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "guardian_analyzer_files_total")
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()

	code, out, _ := run(t, context.Background(), "config", "init", dir)
	require.Equal(t, ExitSuccess, code)
	path := filepath.Join(dir, ".ai-guardian.yml")
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	code, _, stderr := run(t, context.Background(), "config", "init", dir)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "already exists")

	code, out, _ = run(t, context.Background(), "config", "show", "--config", path)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "max_complexity: 10")
	assert.Contains(t, out, "severity_threshold: medium")
}

func TestWatch_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clean.py", cleanSource)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	code, out, stderr := run(t, ctx, "watch", dir, "--debounce", "20ms")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Analysis Results")
	assert.Contains(t, stderr, "Watching 1 path(s)")
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	code, _, stderr := run(t, ctx, "serve", "--addr", "127.0.0.1:0", "--root", t.TempDir())
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stderr, "Guardian service listening")
}
