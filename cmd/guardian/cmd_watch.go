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
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/codeguardian/services/guardian/analyzer"
	"github.com/AleutianAI/codeguardian/services/guardian/config"
	"github.com/AleutianAI/codeguardian/services/guardian/report"
	"github.com/AleutianAI/codeguardian/services/guardian/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	f := &scanFlags{}
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Rescan whenever source files change",
		Long: `Run a scan, then watch the given directories and rescan after each
burst of changes. Enable --cache-dir to make rescans of unchanged files free.

Examples:
  guardian watch
  guardian watch ./src --cache-dir .guardian-cache`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			return runWatch(cmd, a, f, args, debounce)
		},
	}
	f.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultOptions().Debounce,
		"Quiet period after the last change before rescanning")
	return cmd
}

func runWatch(cmd *cobra.Command, a *app, f *scanFlags, paths []string, debounce time.Duration) error {
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

	gen := report.NewGenerator(cfg.Reporting)
	rescan := func(ctx context.Context, changed []string) {
		if len(changed) > 0 {
			a.logger.Info("Changes detected", slog.Int("files", len(changed)))
		}
		result, err := engine.Analyze(ctx, paths, opts)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				a.logger.Error("Scan failed", slog.String("error", err.Error()))
			}
			return
		}
		if err := writeReport(a, gen, format, f.output, result); err != nil {
			a.logger.Error("Report failed", slog.String("error", err.Error()))
		}
	}

	ctx := cmd.Context()
	rescan(ctx, nil)
	fmt.Fprintf(a.stderr, "Watching %d path(s) for changes. Press Ctrl+C to stop.\n", len(paths))

	w := watch.New(paths, rescan, watch.Options{
		Debounce: debounce,
		Exclude:  watchExcluder(cfg, opts),
		Logger:   a.logger,
	})
	return w.Run(ctx)
}

// watchExcluder applies the same patterns a scan does, so excluded trees are
// never registered with the OS watcher.
func watchExcluder(cfg *config.Config, opts analyzer.ScanOptions) *analyzer.Excluder {
	return analyzer.NewExcluder(slices.Concat(opts.Exclude, cfg.Exclude))
}
