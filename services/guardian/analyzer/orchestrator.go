// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analyzer discovers files, runs the rule sets over each one and
// merges the per-file results into a single AnalysisResult.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/codeguardian/services/guardian/ast"
	"github.com/AleutianAI/codeguardian/services/guardian/cache"
	"github.com/AleutianAI/codeguardian/services/guardian/config"
	"github.com/AleutianAI/codeguardian/services/guardian/models"
	"github.com/AleutianAI/codeguardian/services/guardian/rules"
	"github.com/AleutianAI/codeguardian/services/guardian/rules/maintainability"
)

// =============================================================================
// TYPES
// =============================================================================

// Source is one file handed to the analyzer with its content already read.
type Source struct {
	Path    string `json:"path" binding:"required"`
	Content string `json:"content"`
}

// ScanOptions are the per-scan settings that are not part of Config.
type ScanOptions struct {
	// Exclude is appended to the configured exclude patterns.
	Exclude []string

	// MinSeverity drops findings below it from AnalysisResult.Issues.
	MinSeverity models.Severity

	// DetectAI runs the AI-pattern rule set when it is also enabled in Config.
	DetectAI bool
}

// DefaultScanOptions returns the options implied by cfg alone.
func DefaultScanOptions(cfg *config.Config) ScanOptions {
	return ScanOptions{MinSeverity: cfg.MinSeverity(), DetectAI: true}
}

// ResultCache stores per-file results by content-addressed key.
//
// Implementations must be safe for concurrent use. Errors are the
// implementation's concern; a failed Get is a miss.
type ResultCache interface {
	Get(key string) (models.FileResult, bool)
	Put(key string, result models.FileResult)
}

// job is one file waiting for analysis. load is deferred so only the files
// currently being analyzed are held in memory.
type job struct {
	path string
	load func() (string, error)
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator runs whole scans.
//
// Description:
//
//	A scan moves through discovery, per-file analysis and aggregation.
//	Per-file analysis is sequential by default; with workers > 1 it runs
//	on an errgroup pool. Results are slotted by discovery index, so the
//	issue order is identical in both modes.
//
// Thread Safety: Safe for concurrent use. Each scan owns its result.
type Orchestrator struct {
	cfg         *config.Config
	files       *FileAnalyzer
	registry    *ast.Registry
	cache       ResultCache
	logger      *slog.Logger
	workers     int
	fingerprint string
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithCache enables the per-file result cache.
func WithCache(c ResultCache) Option {
	return func(o *Orchestrator) {
		o.cache = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithRegistry replaces the parser registry. nil disables structural checks.
func WithRegistry(registry *ast.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithWorkers overrides analysis.workers.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		o.workers = n
	}
}

// New creates an Orchestrator.
//
// Inputs:
//
//	cfg - Validated configuration. It is read, never modified.
//	opts - Optional configuration options.
//
// Outputs:
//
//	*Orchestrator - Ready to scan.
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:         cfg,
		registry:    ast.DefaultRegistry(),
		logger:      slog.Default(),
		workers:     cfg.Analysis.Workers,
		fingerprint: config.Fingerprint(cfg),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.files = NewFileAnalyzer(cfg, o.registry)
	return o
}

// Config returns the configuration the orchestrator was built with.
func (o *Orchestrator) Config() *config.Config {
	return o.cfg
}

// Discover expands paths using the configured and extra exclude patterns.
func (o *Orchestrator) Discover(paths []string, exclude []string) ([]string, error) {
	patterns := append(append([]string{}, exclude...), o.cfg.Exclude...)
	return Discover(paths, NewExcluder(patterns), o.logger)
}

// Analyze scans files and directories from disk.
//
// Description:
//
//	Discovers files, reads each one best-effort (invalid UTF-8 dropped),
//	analyzes it and aggregates. Unreadable or oversized files become a
//	single medium "analysis" finding instead of failing the scan.
//
// Inputs:
//
//	ctx - Cancellation is checked between files.
//	paths - Files and directories to scan.
//	opts - Per-scan options.
//
// Outputs:
//
//	*models.AnalysisResult - The finished result.
//	error - ErrPathNotFound or a walk error from discovery, or ctx.Err().
func (o *Orchestrator) Analyze(ctx context.Context, paths []string, opts ScanOptions) (*models.AnalysisResult, error) {
	start := time.Now()

	files, err := o.Discover(paths, opts.Exclude)
	if err != nil {
		return nil, err
	}

	jobs := make([]job, len(files))
	for i, path := range files {
		jobs[i] = job{path: path, load: o.reader(path)}
	}
	return o.scan(ctx, start, jobs, opts)
}

// AnalyzeSources scans in-memory content. No discovery or exclude
// filtering is applied; every source is analyzed in the given order.
func (o *Orchestrator) AnalyzeSources(ctx context.Context, sources []Source, opts ScanOptions) (*models.AnalysisResult, error) {
	start := time.Now()

	jobs := make([]job, len(sources))
	for i, src := range sources {
		content := strings.ToValidUTF8(src.Content, "")
		jobs[i] = job{path: src.Path, load: func() (string, error) { return content, nil }}
	}
	return o.scan(ctx, start, jobs, opts)
}

// reader returns a loader that enforces analysis.max_file_size.
func (o *Orchestrator) reader(path string) func() (string, error) {
	return func() (string, error) {
		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		if limit := o.cfg.Analysis.MaxFileSize; limit > 0 && info.Size() > limit {
			return "", fmt.Errorf("%w: %d bytes exceeds limit %d", ErrFileTooLarge, info.Size(), limit)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return strings.ToValidUTF8(string(data), ""), nil
	}
}

// =============================================================================
// SCAN PIPELINE
// =============================================================================

func (o *Orchestrator) scan(ctx context.Context, start time.Time, jobs []job, opts ScanOptions) (*models.AnalysisResult, error) {
	runID := uuid.NewString()
	ctx, span := startScanSpan(ctx, runID, len(jobs))
	defer span.End()

	logger := o.logger.With(slog.String("run_id", runID))
	logger.Debug("scan started", slog.Int("files", len(jobs)), slog.Int("workers", o.workers))

	results, err := o.analyzeAll(ctx, logger, jobs, opts.DetectAI)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("scan canceled", slog.String("error", err.Error()))
		return nil, err
	}

	result := Aggregate(results, opts.MinSeverity)
	result.RunID = runID
	duration := time.Since(start)
	result.ExecutionTime = duration.Seconds()

	span.SetAttributes(
		attribute.Int("analyzer.issues", len(result.Issues)),
		attribute.Float64("analyzer.maintainability_score", result.MaintainabilityScore),
	)
	recordScanMetrics(ctx, result, duration)
	logger.Info("scan complete",
		slog.Int("files", result.FilesScanned),
		slog.Int("issues", len(result.Issues)),
		slog.Int("security_issues", result.SecurityIssues),
		slog.Int("performance_issues", result.PerformanceIssues),
		slog.Duration("duration", duration),
	)
	return result, nil
}

// analyzeAll returns one FileResult per job, in job order.
func (o *Orchestrator) analyzeAll(ctx context.Context, logger *slog.Logger, jobs []job, detectAI bool) ([]models.FileResult, error) {
	results := make([]models.FileResult, len(jobs))

	if o.workers <= 1 {
		for i, j := range jobs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = o.analyzeJob(ctx, logger, j, detectAI)
		}
		return results, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = o.analyzeJob(gCtx, logger, j, detectAI)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// analyzeJob loads, analyzes and caches one file. It never fails.
func (o *Orchestrator) analyzeJob(ctx context.Context, logger *slog.Logger, j job, detectAI bool) models.FileResult {
	start := time.Now()

	content, err := j.load()
	if err != nil {
		logger.Warn("file read failed", slog.String("file", j.path), slog.String("error", err.Error()))
		result := models.FileResult{Path: j.path, Findings: []models.Finding{failureFinding(j.path, err)}}
		recordFileMetrics(ctx, result, time.Since(start), "failed")
		return result
	}

	var key string
	if o.cache != nil {
		key = cache.Key(o.fingerprint, detectAI, j.path, content)
		if cached, ok := o.cache.Get(key); ok {
			recordFileMetrics(ctx, cached, time.Since(start), "cached")
			return cached
		}
	}

	result := o.files.Analyze(ctx, j.path, content, detectAI)
	if o.cache != nil {
		o.cache.Put(key, result)
	}
	recordFileMetrics(ctx, result, time.Since(start), "analyzed")
	return result
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Aggregate merges per-file results into an AnalysisResult.
//
// Description:
//
//	Findings are concatenated in result order and filtered to minSeverity
//	and above; the category counts are taken after filtering. The
//	maintainability score is the mean over distinct paths, counting 10
//	for files without one. The AI percentage is the mean confidence over
//	files where detection ran, times 100. RunID and ExecutionTime are
//	left for the caller.
//
// Inputs:
//
//	results - Per-file results in discovery order.
//	minSeverity - Lowest severity kept in Issues.
//
// Outputs:
//
//	*models.AnalysisResult - The aggregate. Never nil.
func Aggregate(results []models.FileResult, minSeverity models.Severity) *models.AnalysisResult {
	out := models.NewAnalysisResult()
	out.FilesScanned = len(results)

	var paths []string
	var aiScores []float64
	for _, r := range results {
		for _, f := range r.Findings {
			if f.Severity.AtLeast(minSeverity) {
				out.Issues = append(out.Issues, f)
			}
		}
		if _, seen := out.FileScores[r.Path]; !seen {
			paths = append(paths, r.Path)
		}
		out.FileScores[r.Path] = r.Scores
		if r.Scores.AIConfidence != nil {
			aiScores = append(aiScores, *r.Scores.AIConfidence)
		}
	}

	counts := out.CountByCategory()
	out.SecurityIssues = counts[string(models.CategorySecurity)]
	out.PerformanceIssues = counts[string(models.CategoryPerformance)]

	if len(paths) > 0 {
		maint := make([]float64, len(paths))
		for i, p := range paths {
			maint[i] = maintainabilityOf(out.FileScores[p])
		}
		out.MaintainabilityScore = rules.Mean(maint)
	}
	if len(aiScores) > 0 {
		out.AIGeneratedPercentage = rules.Mean(aiScores) * 100
	}
	return out
}

func maintainabilityOf(s models.FileScores) float64 {
	if s.MaintainabilityScore == nil {
		return maintainability.MaxScore
	}
	return *s.MaintainabilityScore
}
