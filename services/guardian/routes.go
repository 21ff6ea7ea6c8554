// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package guardian

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/codeguardian/services/guardian/telemetry"
)

// shutdownTimeout bounds graceful shutdown of in-flight scans.
const shutdownTimeout = 30 * time.Second

// RegisterRoutes registers all guardian routes with the router.
//
// Description:
//
//	Registers all /v1/guardian/* endpoints with the given Gin router group.
//
// Endpoints:
//
//	POST /v1/guardian/analyze - Analyze in-memory files
//	POST /v1/guardian/scan - Scan paths under the service root
//	GET  /v1/guardian/health - Health check
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	guardian := rg.Group("/guardian")
	{
		guardian.POST("/analyze", handlers.HandleAnalyze)
		guardian.POST("/scan", handlers.HandleScan)
		guardian.GET("/health", handlers.HandleHealth)
	}
}

// NewRouter builds the full engine: recovery, tracing, request metrics,
// /metrics and the /v1 routes.
func NewRouter(handlers *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(ServiceName))
	router.Use(metricsMiddleware())

	router.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))

	v1 := router.Group("/v1")
	RegisterRoutes(v1, handlers)
	return router
}

// Serve runs handler on addr until ctx is canceled, then drains
// in-flight requests.
//
// Outputs:
//
//	error - Listener failures. nil after a clean shutdown.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Guardian service listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down guardian service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
