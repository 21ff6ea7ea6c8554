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
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/codeguardian/services/guardian/models"
)

// Package-level tracer and meter for analysis.
var (
	tracer = otel.Tracer("guardian.analyzer")
	meter  = otel.Meter("guardian.analyzer")
)

// =============================================================================
// OpenTelemetry Metrics
// =============================================================================

var (
	fileLatency metric.Float64Histogram
	scanLatency metric.Float64Histogram
	scanTotal   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		fileLatency, err = meter.Float64Histogram(
			"guardian_file_analysis_duration_seconds",
			metric.WithDescription("Duration of single-file analysis"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		scanLatency, err = meter.Float64Histogram(
			"guardian_scan_duration_seconds",
			metric.WithDescription("Duration of whole scans"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		scanTotal, err = meter.Int64Counter(
			"guardian_scan_total",
			metric.WithDescription("Total number of scans"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	// filesAnalyzed counts per-file outcomes.
	// Labels: status (analyzed, failed, cached)
	filesAnalyzed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "guardian",
		Subsystem: "analyzer",
		Name:      "files_total",
		Help:      "Files processed by the analyzer",
	}, []string{"status"})

	// findingsReported counts findings surviving the severity filter.
	// Labels: category, severity
	findingsReported = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "guardian",
		Subsystem: "analyzer",
		Name:      "findings_total",
		Help:      "Findings reported after severity filtering",
	}, []string{"category", "severity"})

	// aiConfidence tracks the distribution of per-file AI confidence.
	aiConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "guardian",
		Subsystem: "analyzer",
		Name:      "ai_confidence",
		Help:      "Distribution of per-file AI confidence",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95},
	})
)

// =============================================================================
// Recording helpers
// =============================================================================

func startFileSpan(ctx context.Context, path string, size int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "analyzer.AnalyzeFile",
		trace.WithAttributes(
			attribute.String("analyzer.file", path),
			attribute.Int("analyzer.content_size", size),
		),
	)
}

func startScanSpan(ctx context.Context, runID string, files int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "analyzer.Scan",
		trace.WithAttributes(
			attribute.String("analyzer.run_id", runID),
			attribute.Int("analyzer.files", files),
		),
	)
}

func recordFileMetrics(ctx context.Context, result models.FileResult, duration time.Duration, status string) {
	filesAnalyzed.WithLabelValues(status).Inc()
	if result.Scores.AIConfidence != nil {
		aiConfidence.Observe(*result.Scores.AIConfidence)
	}

	if err := initMetrics(); err != nil {
		return
	}
	fileLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("status", status),
	))
}

func recordScanMetrics(ctx context.Context, result *models.AnalysisResult, duration time.Duration) {
	for _, f := range result.Issues {
		findingsReported.WithLabelValues(string(f.Category), f.Severity.String()).Inc()
	}

	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.Bool("critical", result.HasCriticalIssues()),
	)
	scanLatency.Record(ctx, duration.Seconds(), attrs)
	scanTotal.Add(ctx, 1, attrs)
}
