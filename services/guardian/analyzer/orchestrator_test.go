// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/codeguardian/services/guardian/cache"
	"github.com/AleutianAI/codeguardian/services/guardian/config"
	"github.com/AleutianAI/codeguardian/services/guardian/models"
)

const vulnerableSource = `import os


def get_user(cursor, user_id):
    cursor.execute("SELECT * FROM users WHERE id = " + user_id)
    return cursor.fetchone()


def run(cmd):
    os.system(cmd)
    result = eval(cmd)
    return result
`

const slowSource = `def pairs(items):
    out = []
    for a in items:
        for b in items:
            out.append((a, b))
    return out
`

const cleanSource = `def add(left, right):
    return left + right
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrchestrator(cfg *config.Config, opts ...Option) *Orchestrator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return New(cfg, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func sampleSources() []Source {
	return []Source{
		{Path: "vuln.py", Content: vulnerableSource},
		{Path: "slow.py", Content: slowSource},
		{Path: "clean.py", Content: cleanSource},
		{Path: "empty.py", Content: ""},
	}
}

func lowOptions() ScanOptions {
	return ScanOptions{MinSeverity: models.SeverityLow, DetectAI: true}
}

// stable strips the fields that differ between otherwise identical scans.
func stable(r *models.AnalysisResult) *models.AnalysisResult {
	r.RunID = ""
	r.ExecutionTime = 0
	return r
}

func TestAnalyzeSources_Basic(t *testing.T) {
	o := newTestOrchestrator(nil)

	result, err := o.AnalyzeSources(context.Background(), sampleSources(), lowOptions())
	require.NoError(t, err)

	assert.Equal(t, 4, result.FilesScanned)
	assert.NotEmpty(t, result.RunID)
	assert.Positive(t, result.SecurityIssues)
	assert.Positive(t, result.PerformanceIssues)
	assert.Len(t, result.FileScores, 4)

	sql := result.IssuesByCategory(models.CategorySecurity)
	require.NotEmpty(t, sql)
	assert.Equal(t, "vuln.py", sql[0].FilePath)

	// Issues keep source order: every vuln.py finding precedes slow.py's.
	lastVuln, firstSlow := -1, len(result.Issues)
	for i, f := range result.Issues {
		if f.FilePath == "vuln.py" {
			lastVuln = i
		}
		if f.FilePath == "slow.py" && i < firstSlow {
			firstSlow = i
		}
	}
	assert.Less(t, lastVuln, firstSlow)
}

func TestAnalyzeSources_EmptyFile(t *testing.T) {
	o := newTestOrchestrator(nil)

	result, err := o.AnalyzeSources(context.Background(), []Source{{Path: "empty.py"}}, lowOptions())
	require.NoError(t, err)

	assert.Empty(t, result.Issues)
	assert.InDelta(t, 10.0, result.MaintainabilityScore, 1e-9)
	assert.Zero(t, result.AIGeneratedPercentage)

	scores := result.FileScores["empty.py"]
	require.NotNil(t, scores.PerformanceScore)
	assert.InDelta(t, 10.0, *scores.PerformanceScore, 1e-9)
	require.NotNil(t, scores.AIConfidence)
	assert.Zero(t, *scores.AIConfidence)
	assert.NotNil(t, scores.AIPatterns)
	assert.Empty(t, scores.AIPatterns)
	assert.Nil(t, scores.StyleMetrics)
}

func TestAnalyzeSources_NoFiles(t *testing.T) {
	o := newTestOrchestrator(nil)

	result, err := o.AnalyzeSources(context.Background(), nil, lowOptions())
	require.NoError(t, err)

	assert.Zero(t, result.FilesScanned)
	assert.NotNil(t, result.Issues)
	assert.InDelta(t, 10.0, result.MaintainabilityScore, 1e-9)
	assert.Zero(t, result.AIGeneratedPercentage)
}

func TestAnalyzeSources_SeverityFilterIsMonotonic(t *testing.T) {
	o := newTestOrchestrator(nil)

	var previous = -1
	for _, sev := range []models.Severity{models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow} {
		result, err := o.AnalyzeSources(context.Background(), sampleSources(), ScanOptions{MinSeverity: sev})
		require.NoError(t, err)

		for _, f := range result.Issues {
			assert.True(t, f.Severity.AtLeast(sev), "%s below %s", f.Severity, sev)
		}
		assert.GreaterOrEqual(t, len(result.Issues), previous)
		previous = len(result.Issues)

		// Counts are taken after filtering.
		assert.Equal(t, len(result.IssuesByCategory(models.CategorySecurity)), result.SecurityIssues)
		assert.Equal(t, len(result.IssuesByCategory(models.CategoryPerformance)), result.PerformanceIssues)
	}
}

func TestAnalyzeSources_ParallelMatchesSequential(t *testing.T) {
	var sources []Source
	for range 6 {
		sources = append(sources, sampleSources()...)
	}
	for i := range sources {
		sources[i].Path = filepath.Join("pkg", string(rune('a'+i%26)), sources[i].Path)
	}

	sequential, err := newTestOrchestrator(nil).AnalyzeSources(context.Background(), sources, lowOptions())
	require.NoError(t, err)

	parallel, err := newTestOrchestrator(nil, WithWorkers(4)).AnalyzeSources(context.Background(), sources, lowOptions())
	require.NoError(t, err)

	assert.Equal(t, stable(sequential), stable(parallel))
}

func TestAnalyzeSources_DeterministicAcrossRuns(t *testing.T) {
	o := newTestOrchestrator(nil)

	first, err := o.AnalyzeSources(context.Background(), sampleSources(), lowOptions())
	require.NoError(t, err)
	second, err := o.AnalyzeSources(context.Background(), sampleSources(), lowOptions())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, stable(first), stable(second))
}

func TestAnalyzeSources_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{0, 4} {
		o := newTestOrchestrator(nil, WithWorkers(workers))
		result, err := o.AnalyzeSources(ctx, sampleSources(), lowOptions())
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, result)
	}
}

func TestAnalyzeSources_DisabledRuleSets(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Security.Enabled = false
	cfg.Performance.Enabled = false
	o := newTestOrchestrator(cfg)

	result, err := o.AnalyzeSources(context.Background(), sampleSources(), lowOptions())
	require.NoError(t, err)

	assert.Zero(t, result.SecurityIssues)
	assert.Zero(t, result.PerformanceIssues)
	assert.Empty(t, result.IssuesByCategory(models.CategorySecurity))
	for _, scores := range result.FileScores {
		assert.Nil(t, scores.PerformanceScore)
		assert.NotNil(t, scores.MaintainabilityScore)
	}
}

func TestAnalyzeSources_DetectAIOff(t *testing.T) {
	o := newTestOrchestrator(nil)

	result, err := o.AnalyzeSources(context.Background(), sampleSources(), ScanOptions{MinSeverity: models.SeverityLow})
	require.NoError(t, err)

	assert.Zero(t, result.AIGeneratedPercentage)
	for _, scores := range result.FileScores {
		assert.Nil(t, scores.AIConfidence)
		assert.Nil(t, scores.AIPatterns)
		assert.Nil(t, scores.StyleMetrics)
	}
}

func TestAnalyze_FromDisk(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "vuln.py"), []byte(vulnerableSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("password = 'hunter2hunter2'\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "vendor", "lib.py"), []byte(vulnerableSource), 0o644))

	o := newTestOrchestrator(nil)
	result, err := o.Analyze(context.Background(), []string{root}, ScanOptions{
		Exclude:     []string{"vendor/"},
		MinSeverity: models.SeverityLow,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesScanned)
	assert.Contains(t, result.FileScores, filepath.Join(root, "vuln.py"))
	assert.Positive(t, result.SecurityIssues)
}

func TestAnalyze_UnreadableDirectoryStillReports(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "ok"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ok", "a.py"), []byte(cleanSource), 0o644))
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.MkdirAll(locked, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(locked, "b.py"), []byte(vulnerableSource), 0o644))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })
	if _, err := os.ReadDir(locked); err == nil {
		t.Skip("directory permissions are not enforced for this user")
	}

	result, err := newTestOrchestrator(nil).Analyze(context.Background(), []string{root}, lowOptions())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.FilesScanned)
	assert.Contains(t, result.FileScores, filepath.Join(root, "ok", "a.py"))
}

func TestAnalyze_MissingPath(t *testing.T) {
	o := newTestOrchestrator(nil)

	_, err := o.Analyze(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, lowOptions())
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestAnalyze_OversizedFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.MaxFileSize = 16
	path := filepath.Join(t.TempDir(), "big.py")
	require.NoError(t, os.WriteFile(path, []byte(vulnerableSource), 0o644))

	result, err := newTestOrchestrator(cfg).Analyze(context.Background(), []string{path}, lowOptions())
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	issue := result.Issues[0]
	assert.Equal(t, models.SeverityMedium, issue.Severity)
	assert.Equal(t, models.CategoryAnalysis, issue.Category)
	assert.Equal(t, 0, issue.LineNumber)
	assert.True(t, strings.HasPrefix(issue.Message, "Failed to analyze file: "))
	assert.Contains(t, issue.Message, "file too large")
	assert.Empty(t, issue.RuleID)

	// No rule set ran, so the file counts as fully maintainable.
	assert.InDelta(t, 10.0, result.MaintainabilityScore, 1e-9)
}

func TestAnalyze_InvalidUTF8IsDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\xff\xfe\n"), 0o644))

	result, err := newTestOrchestrator(nil).Analyze(context.Background(), []string{path}, lowOptions())
	require.NoError(t, err)
	assert.Empty(t, result.IssuesByCategory(models.CategoryAnalysis))
}

// =============================================================================
// CACHE
// =============================================================================

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]models.FileResult
	hits    int
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]models.FileResult)}
}

func (c *fakeCache) Get(key string) (models.FileResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return r, ok
}

func (c *fakeCache) Put(key string, result models.FileResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = result
	c.puts++
}

func TestAnalyzeSources_CacheRoundTrip(t *testing.T) {
	fc := newFakeCache()
	o := newTestOrchestrator(nil, WithCache(fc))

	first, err := o.AnalyzeSources(context.Background(), sampleSources(), lowOptions())
	require.NoError(t, err)
	assert.Equal(t, 4, fc.puts)
	assert.Zero(t, fc.hits)

	second, err := o.AnalyzeSources(context.Background(), sampleSources(), lowOptions())
	require.NoError(t, err)
	assert.Equal(t, 4, fc.hits)
	assert.Equal(t, 4, fc.puts)

	assert.Equal(t, stable(first), stable(second))
}

func TestAnalyzeSources_CacheHitBypassesRules(t *testing.T) {
	cfg := config.DefaultConfig()
	fc := newFakeCache()
	planted := models.FileResult{
		Path: "clean.py",
		Findings: []models.Finding{
			models.NewFinding(models.SeverityCritical, models.CategorySecurity, "planted", "clean.py", 1),
		},
	}
	fc.entries[cache.Key(config.Fingerprint(cfg), true, "clean.py", cleanSource)] = planted

	result, err := newTestOrchestrator(cfg, WithCache(fc)).AnalyzeSources(
		context.Background(), []Source{{Path: "clean.py", Content: cleanSource}}, lowOptions())
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, "planted", result.Issues[0].Message)
	assert.True(t, result.HasCriticalIssues())
}

func TestAnalyzeSources_CacheKeyIncludesAIFlag(t *testing.T) {
	fc := newFakeCache()
	o := newTestOrchestrator(nil, WithCache(fc))
	src := []Source{{Path: "clean.py", Content: cleanSource}}

	_, err := o.AnalyzeSources(context.Background(), src, ScanOptions{MinSeverity: models.SeverityLow})
	require.NoError(t, err)
	result, err := o.AnalyzeSources(context.Background(), src, lowOptions())
	require.NoError(t, err)

	assert.Zero(t, fc.hits)
	assert.NotNil(t, result.FileScores["clean.py"].AIConfidence)
}

func TestAnalyzeSources_BadgerCache(t *testing.T) {
	store, err := cache.OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	o := newTestOrchestrator(nil, WithCache(store))
	first, err := o.AnalyzeSources(context.Background(), sampleSources(), lowOptions())
	require.NoError(t, err)

	n, err := store.Len()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	second, err := o.AnalyzeSources(context.Background(), sampleSources(), lowOptions())
	require.NoError(t, err)
	assert.Equal(t, stable(first), stable(second))
}

// =============================================================================
// AGGREGATION
// =============================================================================

func TestAggregate(t *testing.T) {
	finding := func(sev models.Severity, cat models.Category, path string) models.Finding {
		return models.NewFinding(sev, cat, "m", path, 1)
	}

	results := []models.FileResult{
		{
			Path: "a.py",
			Findings: []models.Finding{
				finding(models.SeverityCritical, models.CategorySecurity, "a.py"),
				finding(models.SeverityLow, models.CategoryPerformance, "a.py"),
			},
			Scores: models.FileScores{MaintainabilityScore: models.Score(6), AIConfidence: models.Score(0.2)},
		},
		{
			Path: "b.py",
			Findings: []models.Finding{
				finding(models.SeverityMedium, models.CategoryPerformance, "b.py"),
			},
			Scores: models.FileScores{AIConfidence: models.Score(0.4)},
		},
		{Path: "c.py", Findings: []models.Finding{}},
	}

	t.Run("medium threshold", func(t *testing.T) {
		out := Aggregate(results, models.SeverityMedium)

		assert.Equal(t, 3, out.FilesScanned)
		require.Len(t, out.Issues, 2)
		assert.Equal(t, "a.py", out.Issues[0].FilePath)
		assert.Equal(t, "b.py", out.Issues[1].FilePath)
		assert.Equal(t, 1, out.SecurityIssues)
		assert.Equal(t, 1, out.PerformanceIssues)
		assert.True(t, out.HasCriticalIssues())

		// (6 + 10 + 10) / 3
		assert.InDelta(t, 26.0/3.0, out.MaintainabilityScore, 1e-9)
		// mean(0.2, 0.4) * 100; c.py never ran detection.
		assert.InDelta(t, 30.0, out.AIGeneratedPercentage, 1e-9)
	})

	t.Run("low threshold keeps everything", func(t *testing.T) {
		out := Aggregate(results, models.SeverityLow)
		assert.Len(t, out.Issues, 3)
		assert.Equal(t, 2, out.PerformanceIssues)
	})

	t.Run("critical threshold", func(t *testing.T) {
		out := Aggregate(results, models.SeverityCritical)
		assert.Len(t, out.Issues, 1)
		assert.Zero(t, out.PerformanceIssues)
	})

	t.Run("duplicate path is last wins", func(t *testing.T) {
		dup := []models.FileResult{
			{Path: "a.py", Scores: models.FileScores{MaintainabilityScore: models.Score(4)}},
			{Path: "a.py", Scores: models.FileScores{MaintainabilityScore: models.Score(8)}},
		}
		out := Aggregate(dup, models.SeverityLow)

		assert.Equal(t, 2, out.FilesScanned)
		assert.Len(t, out.FileScores, 1)
		assert.InDelta(t, 8.0, out.MaintainabilityScore, 1e-9)
	})

	t.Run("empty", func(t *testing.T) {
		out := Aggregate(nil, models.SeverityLow)
		assert.InDelta(t, 10.0, out.MaintainabilityScore, 1e-9)
		assert.Zero(t, out.AIGeneratedPercentage)
		assert.NotNil(t, out.Issues)
		assert.NotNil(t, out.FileScores)
	})
}
