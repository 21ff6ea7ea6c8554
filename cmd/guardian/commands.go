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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/codeguardian/pkg/logging"
	"github.com/AleutianAI/codeguardian/services/guardian/config"
	"github.com/AleutianAI/codeguardian/services/guardian/report"
	"github.com/AleutianAI/codeguardian/services/guardian/telemetry"
)

// =============================================================================
// EXIT CODES
// =============================================================================

// Exit codes shared by every command.
const (
	ExitSuccess  = 0
	ExitCritical = 1
	ExitError    = 2
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = report.ToolVersion

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// errCriticalIssues is returned by scan when the result holds critical findings.
var errCriticalIssues = &exitError{code: ExitCritical, err: errors.New("critical issues found")}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitError
}

// =============================================================================
// GLOBAL OPTIONS
// =============================================================================

// app holds the state shared by all commands for one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath     string
	logLevel       string
	logDir         string
	logJSON        bool
	metricsFile    string
	traceExporter  string
	metricExporter string

	logger            *slog.Logger
	logs              *logging.Logger
	shutdownTelemetry func(context.Context) error
}

// loadConfig resolves --config, or searches the working directory.
func (a *app) loadConfig() (*config.Config, error) {
	return config.Load(a.configPath)
}

// setup installs the logger and telemetry before any command runs.
func (a *app) setup(cmd *cobra.Command) error {
	level, err := logging.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}
	logs, err := logging.New(logging.Config{
		Level:   level,
		Writer:  a.stderr,
		LogDir:  a.logDir,
		Service: "guardian",
		JSON:    a.logJSON,
	})
	if err != nil {
		return err
	}
	a.logs = logs
	a.logger = logs.Slog()
	slog.SetDefault(a.logger)

	tcfg := telemetry.DefaultConfig(version)
	if cmd.Flags().Changed("trace-exporter") {
		tcfg.TraceExporter = a.traceExporter
	}
	if cmd.Flags().Changed("metric-exporter") {
		tcfg.MetricExporter = a.metricExporter
	}
	tcfg.Writer = a.stderr

	shutdown, err := telemetry.Init(cmd.Context(), tcfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	a.shutdownTelemetry = shutdown
	return nil
}

// teardown flushes telemetry, writes --metrics-file and closes the log
// file. Runs even when the command failed.
func (a *app) teardown() {
	defer func() {
		if a.logs != nil {
			a.logs.Close()
		}
	}()

	if a.shutdownTelemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownTelemetry(ctx); err != nil {
			a.logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}
	if a.metricsFile != "" {
		if err := telemetry.WriteTextfile(a.metricsFile); err != nil {
			a.logger.Warn("Could not write metrics file", slog.String("path", a.metricsFile), slog.String("error", err.Error()))
		}
	}
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "guardian",
		Short: "Static analysis for security, performance and maintainability issues",
		Long: `Guardian scans source files with four rule sets (security, performance,
maintainability and AI-generated-code patterns) and renders the findings
as a terminal summary, JSON, HTML or SARIF.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "",
		"Configuration file (default: .ai-guardian.yml in the working directory)")
	flags.StringVar(&a.logLevel, "log-level", "warn",
		"Log level: debug, info, warn, error")
	flags.StringVar(&a.logDir, "log-dir", "",
		"Also write JSON logs to a daily file in this directory")
	flags.BoolVar(&a.logJSON, "log-json", false,
		"Write console logs as JSON")
	flags.StringVar(&a.metricsFile, "metrics-file", "",
		"Write Prometheus metrics in text format to this file on exit")
	flags.StringVar(&a.traceExporter, "trace-exporter", telemetry.ExporterNone,
		"Trace exporter: none, stdout, otlp")
	flags.StringVar(&a.metricExporter, "metric-exporter", telemetry.ExporterNone,
		"Metric exporter: none, stdout, prometheus")

	rootCmd.AddCommand(
		newScanCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return rootCmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "%s %s\n", report.ToolName, version)
		},
	}
}

// execute runs one CLI invocation and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{
		stdout: stdout,
		stderr: stderr,
		logger: slog.New(slog.NewTextHandler(stderr, nil)),
	}
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	a.teardown()

	code := exitCode(err)
	if err != nil && code == ExitError {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return code
}
