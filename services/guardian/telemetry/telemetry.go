// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry wires the OpenTelemetry SDK and the Prometheus registry
// for the guardian CLI and service.
//
// Instrumented packages use otel.Tracer and otel.Meter directly. Until Init
// runs those are no-ops, so library users and tests pay nothing.
//
// # Environment Variables
//
//   - OTEL_TRACES_EXPORTER: otlp, stdout, or none (default: none)
//   - OTEL_METRICS_EXPORTER: prometheus, stdout, or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint (default: localhost:4317)
//   - GUARDIAN_ENV: environment name (default: development)
//
// # Thread Safety
//
// Call Init once at startup. Everything else is safe for concurrent use.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Exporter names accepted in Config.
const (
	ExporterNone       = "none"
	ExporterStdout     = "stdout"
	ExporterOTLP       = "otlp"
	ExporterPrometheus = "prometheus"
)

var (
	// ErrNilContext is returned when Init is called with a nil context.
	ErrNilContext = errors.New("context must not be nil")

	// ErrUnknownExporter is returned for an exporter name not listed above.
	ErrUnknownExporter = errors.New("unknown exporter")
)

// Config controls telemetry behavior.
type Config struct {
	// ServiceName identifies this service in traces and metrics.
	ServiceName string `json:"service_name"`

	// ServiceVersion is the version string for this service.
	ServiceVersion string `json:"service_version"`

	// Environment identifies the deployment environment.
	Environment string `json:"environment"`

	// TraceExporter selects the trace exporter: "otlp", "stdout", or "none".
	TraceExporter string `json:"trace_exporter"`

	// MetricExporter selects the metric exporter: "prometheus", "stdout", or "none".
	MetricExporter string `json:"metric_exporter"`

	// OTLPEndpoint is the OTLP receiver endpoint for traces.
	OTLPEndpoint string `json:"otlp_endpoint"`

	// OTLPInsecure disables TLS for OTLP connections.
	OTLPInsecure bool `json:"otlp_insecure"`

	// Writer receives stdout exporter output. Defaults to os.Stderr so
	// telemetry never interleaves with a report written to stdout.
	Writer io.Writer `json:"-"`
}

// DefaultConfig returns defaults suitable for a CLI: everything off unless
// the environment asks for it.
func DefaultConfig(version string) Config {
	return Config{
		ServiceName:    "codeguardian",
		ServiceVersion: version,
		Environment:    getEnvOr("GUARDIAN_ENV", "development"),
		TraceExporter:  getEnvOr("OTEL_TRACES_EXPORTER", ExporterNone),
		MetricExporter: getEnvOr("OTEL_METRICS_EXPORTER", ExporterNone),
		OTLPEndpoint:   getEnvOr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTLPInsecure:   true,
	}
}

// Init initializes the telemetry stack with the given configuration.
//
// Description:
//
//	Sets up the global TracerProvider, MeterProvider and W3C trace-context
//	propagator. After Init returns, otel.Tracer() and otel.Meter() in every
//	package export through the configured backends.
//
// Inputs:
//
//	ctx - Context for exporter connections.
//	cfg - Telemetry configuration.
//
// Outputs:
//
//	shutdown - Flushes and stops exporters. Must be called on exit.
//	error - ErrNilContext, ErrUnknownExporter, or an exporter failure.
//
// Thread Safety: Call once at application startup.
func Init(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}

	var shutdownFuncs []func(context.Context) error
	shutdown = func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdownFuncs {
			if err := fn(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
		attribute.String("deployment.environment", cfg.Environment),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.TraceExporter != ExporterNone && cfg.TraceExporter != "" {
		tp, err := initTracer(ctx, cfg, res)
		if err != nil {
			return nil, fmt.Errorf("init tracer: %w", err)
		}
		otel.SetTracerProvider(tp)
		shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
	}

	if cfg.MetricExporter != ExporterNone && cfg.MetricExporter != "" {
		mp, err := initMeter(cfg, res)
		if err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("init meter: %w", err)
		}
		otel.SetMeterProvider(mp)
		shutdownFuncs = append(shutdownFuncs, mp.Shutdown)
	}

	return shutdown, nil
}

func initTracer(ctx context.Context, cfg Config, res *resource.Resource) (*trace.TracerProvider, error) {
	var exporter trace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)

	case ExporterStdout:
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(cfg.Writer), stdouttrace.WithPrettyPrint())

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.TraceExporter)
	}
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.AlwaysSample()),
	), nil
}

// otelRegistry holds metrics exported by the OTel Prometheus exporter.
// It is kept apart from the default registry so repeated Init calls never
// collide on collector registration.
var (
	otelRegistry   *prometheus.Registry
	otelRegistryMu sync.RWMutex
)

func initMeter(cfg Config, res *resource.Resource) (*metric.MeterProvider, error) {
	switch cfg.MetricExporter {
	case ExporterPrometheus:
		reg := prometheus.NewRegistry()
		exporter, err := promexporter.New(promexporter.WithRegisterer(reg))
		if err != nil {
			return nil, fmt.Errorf("create prometheus exporter: %w", err)
		}

		otelRegistryMu.Lock()
		otelRegistry = reg
		otelRegistryMu.Unlock()

		return metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(exporter),
		), nil

	case ExporterStdout:
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Writer), stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		return metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(metric.NewPeriodicReader(exporter)),
		), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.MetricExporter)
	}
}

// Gatherer returns every Prometheus metric the process exposes: the
// promauto collectors on the default registry plus, when the prometheus
// metric exporter is active, the OTel instruments.
//
// Thread Safety: Safe for concurrent use.
func Gatherer() prometheus.Gatherer {
	otelRegistryMu.RLock()
	defer otelRegistryMu.RUnlock()

	if otelRegistry == nil {
		return prometheus.DefaultGatherer
	}
	return prometheus.Gatherers{prometheus.DefaultGatherer, otelRegistry}
}

// MetricsHandler returns the HTTP handler for the /metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Gatherer(), promhttp.HandlerOpts{})
}

// WriteTextfile writes all metrics to path in the Prometheus text format,
// for pickup by the node_exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Gatherer()); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

// getEnvOr returns the environment variable value or the fallback.
func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
