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
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/codeguardian/services/guardian"
	"github.com/AleutianAI/codeguardian/services/guardian/analyzer"
	"github.com/AleutianAI/codeguardian/services/guardian/cache"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr     string
		root     string
		cacheDir string
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP service",
		Long: `Serve the analyzer over HTTP.

Endpoints:
  POST /v1/guardian/analyze  Analyze in-memory files
  POST /v1/guardian/scan     Scan paths relative to --root
  GET  /v1/guardian/health   Health check
  GET  /metrics              Prometheus metrics

Examples:
  guardian serve
  guardian serve --addr :9090 --root /srv/repos --metric-exporter prometheus`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			absRoot, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("resolve root: %w", err)
			}

			opts := []analyzer.Option{analyzer.WithLogger(a.logger)}
			if cmd.Flags().Changed("workers") {
				opts = append(opts, analyzer.WithWorkers(workers))
			}
			if cacheDir != "" {
				store, err := cache.OpenDir(cacheDir, a.logger)
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts, analyzer.WithCache(store))
			}

			if a.logLevel == "debug" {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			engine := analyzer.New(cfg, opts...)
			handlers := guardian.NewHandlers(engine, cfg, absRoot, version)
			fmt.Fprintf(a.stderr, "Guardian service listening on %s (root %s)\n", addr, absRoot)
			return guardian.Serve(cmd.Context(), addr, guardian.NewRouter(handlers), a.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&root, "root", ".", "Directory that scan paths are resolved against")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Cache per-file results in this directory")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0,
		"Parallel workers per request (default: analysis.workers from the config)")
	return cmd
}
