// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for parsing.
var (
	tracer = otel.Tracer("guardian.ast")
	meter  = otel.Meter("guardian.ast")
)

// Metrics for parse operations.
var (
	parseLatency metric.Float64Histogram
	parseTotal   metric.Int64Counter
	syntaxErrors metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		parseLatency, err = meter.Float64Histogram(
			"guardian_parse_duration_seconds",
			metric.WithDescription("Duration of syntax tree parsing"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseTotal, err = meter.Int64Counter(
			"guardian_parse_total",
			metric.WithDescription("Total number of parse operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		syntaxErrors, err = meter.Int64Counter(
			"guardian_parse_syntax_errors_total",
			metric.WithDescription("Parses rejected because of syntax errors"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordParseMetrics records one parse outcome.
func recordParseMetrics(ctx context.Context, language string, duration time.Duration, parseErr error) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("language", language),
		attribute.Bool("success", parseErr == nil),
	)
	parseLatency.Record(ctx, duration.Seconds(), attrs)
	parseTotal.Add(ctx, 1, attrs)

	if errors.Is(parseErr, ErrSyntax) {
		syntaxErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("language", language)))
	}
}

// startParseSpan creates a span for a parse operation. Caller must End it.
func startParseSpan(ctx context.Context, language, filePath string, contentSize int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "ast.Parse",
		trace.WithAttributes(
			attribute.String("ast.language", language),
			attribute.String("ast.file", filePath),
			attribute.Int("ast.content_size", contentSize),
		),
	)
}
