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
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/codeguardian/services/guardian/analyzer"
	"github.com/AleutianAI/codeguardian/services/guardian/cache"
	"github.com/AleutianAI/codeguardian/services/guardian/config"
	"github.com/AleutianAI/codeguardian/services/guardian/models"
	"github.com/AleutianAI/codeguardian/services/guardian/report"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// scanFlags are shared by scan and watch.
type scanFlags struct {
	format    string
	output    string
	severity  string
	exclude   []string
	includeAI bool
	noAI      bool
	cacheDir  string
	workers   int
}

func (f *scanFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.format, "format", "f", string(report.FormatCLI),
		"Output format: cli, json, html, sarif")
	flags.StringVarP(&f.output, "output", "o", "",
		"Report file (default depends on format, '-' for stdout)")
	flags.StringVarP(&f.severity, "severity", "s", "medium",
		"Minimum severity to report: low, medium, high, critical")
	flags.StringArrayVarP(&f.exclude, "exclude", "e", nil,
		"Exclude files matching this glob (repeatable)")
	flags.BoolVar(&f.includeAI, "include-ai-patterns", true,
		"Run AI-generated-code detection")
	flags.BoolVar(&f.noAI, "no-ai-patterns", false,
		"Skip AI-generated-code detection")
	flags.StringVar(&f.cacheDir, "cache-dir", "",
		"Cache per-file results in this directory")
	flags.IntVarP(&f.workers, "workers", "w", 0,
		"Parallel workers (default: analysis.workers from the config)")
}

// options resolves flags over the configuration. --severity only wins
// when given explicitly, so analysis.min_severity in the file still applies.
func (f *scanFlags) options(cmd *cobra.Command, cfg *config.Config) (analyzer.ScanOptions, error) {
	opts := analyzer.DefaultScanOptions(cfg)
	opts.Exclude = f.exclude
	opts.DetectAI = f.includeAI && !f.noAI

	if cmd.Flags().Changed("severity") {
		sev, err := models.ParseSeverity(f.severity)
		if err != nil {
			return opts, err
		}
		opts.MinSeverity = sev
	}
	return opts, nil
}

// engine builds the orchestrator. The returned close func releases the cache.
func (f *scanFlags) engine(cmd *cobra.Command, a *app, cfg *config.Config) (*analyzer.Orchestrator, func(), error) {
	opts := []analyzer.Option{analyzer.WithLogger(a.logger)}
	if cmd.Flags().Changed("workers") {
		opts = append(opts, analyzer.WithWorkers(f.workers))
	}

	closeFn := func() {}
	if f.cacheDir != "" {
		store, err := cache.OpenDir(f.cacheDir, a.logger)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, analyzer.WithCache(store))
		closeFn = func() {
			if err := store.Close(); err != nil {
				a.logger.Warn("Cache close failed", slog.String("error", err.Error()))
			}
		}
	}
	return analyzer.New(cfg, opts...), closeFn, nil
}

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

func newScanCmd(a *app) *cobra.Command {
	f := &scanFlags{}
	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Scan files and directories",
		Long: `Scan source files for security, performance, maintainability and
AI-generated-code issues.

Examples:
  guardian scan
  guardian scan ./src --severity high
  guardian scan . --exclude "tests/" --exclude "*_pb2.py"
  guardian scan . --format sarif --output results.sarif

Exit Codes:
  0 = No critical issues
  1 = Critical issues found
  2 = Error (invalid config or path, scan failure)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			return runScan(cmd, a, f, args)
		},
	}
	f.register(cmd)
	return cmd
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runScan(cmd *cobra.Command, a *app, f *scanFlags, paths []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(f.format)
	if err != nil {
		return err
	}
	opts, err := f.options(cmd, cfg)
	if err != nil {
		return err
	}

	engine, closeEngine, err := f.engine(cmd, a, cfg)
	if err != nil {
		return err
	}
	defer closeEngine()

	a.logger.Info("Starting scan",
		slog.Any("paths", paths),
		slog.String("min_severity", opts.MinSeverity.String()))
	result, err := engine.Analyze(cmd.Context(), paths, opts)
	if err != nil {
		return err
	}

	if err := writeReport(a, report.NewGenerator(cfg.Reporting), format, f.output, result); err != nil {
		return err
	}
	if result.HasCriticalIssues() {
		return errCriticalIssues
	}
	return nil
}

// writeReport sends the terminal format to stdout and file formats to
// their default file unless --output says otherwise.
func writeReport(a *app, gen *report.Generator, format report.Format, output string, result *models.AnalysisResult) error {
	if output == "" {
		output = format.DefaultOutput()
	}
	if output == "" || output == "-" {
		if err := gen.Write(a.stdout, format, result); err != nil {
			return err
		}
	} else {
		if err := gen.WriteFile(output, format, result); err != nil {
			return err
		}
		fmt.Fprintf(a.stderr, "Report saved to %s\n", output)
	}

	// The terminal report carries its own critical banner.
	if format != report.FormatCLI && result.HasCriticalIssues() {
		fmt.Fprintln(a.stderr, "Critical issues found!")
	}
	return nil
}
