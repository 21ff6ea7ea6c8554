// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package guardian exposes the analyzer over HTTP.
package guardian

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/codeguardian/services/guardian/analyzer"
	"github.com/AleutianAI/codeguardian/services/guardian/config"
	"github.com/AleutianAI/codeguardian/services/guardian/models"
	"github.com/AleutianAI/codeguardian/services/guardian/report"
	"github.com/AleutianAI/codeguardian/services/guardian/telemetry"
)

// maxRequestBytes bounds request bodies. Individual files are further
// bounded by analysis.max_file_size.
const maxRequestBytes = 64 << 20

// Analyzer is the part of analyzer.Orchestrator the handlers use.
type Analyzer interface {
	Analyze(ctx context.Context, paths []string, opts analyzer.ScanOptions) (*models.AnalysisResult, error)
	AnalyzeSources(ctx context.Context, sources []analyzer.Source, opts analyzer.ScanOptions) (*models.AnalysisResult, error)
}

// Handlers contains the HTTP handlers for the guardian service.
type Handlers struct {
	engine  Analyzer
	cfg     *config.Config
	root    string
	version string
	reports *report.Generator
}

// NewHandlers creates handlers.
//
// Inputs:
//
//	engine - Runs the scans.
//	cfg - Configuration the engine was built with. Supplies defaults.
//	root - Directory that scan paths are resolved against.
//	version - Reported by the health endpoint.
func NewHandlers(engine Analyzer, cfg *config.Config, root, version string) *Handlers {
	return &Handlers{
		engine:  engine,
		cfg:     cfg,
		root:    root,
		version: version,
		reports: report.NewGenerator(cfg.Reporting, report.WithColor(false)),
	}
}

// HandleAnalyze handles POST /v1/guardian/analyze.
//
// Description:
//
//	Analyzes in-memory file contents. No exclude filtering is applied.
//
// Query Parameters:
//
//	format - Optional. json, sarif, html or cli renders a report instead of
//	         returning the raw AnalysisResult.
//
// Response:
//
//	200 OK: models.AnalysisResult, or the rendered report
//	400 Bad Request: Validation error
//	500 Internal Server Error: Processing error
func (h *Handlers) HandleAnalyze(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := telemetry.LoggerWithTrace(c.Request.Context(),
		slog.With(slog.String("request_id", requestID), slog.String("handler", "HandleAnalyze")))

	format, ok := h.requestedFormat(c, logger)
	if !ok {
		return
	}

	var req AnalyzeRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	opts := h.scanOptions(req.MinSeverity, req.DetectAI)
	result, err := h.engine.AnalyzeSources(c.Request.Context(), req.Files, opts)
	if err != nil {
		h.fail(c, logger, err)
		return
	}

	logger.Info("Analysis complete",
		slog.String("run_id", result.RunID),
		slog.Int("files", result.FilesScanned),
		slog.Int("issues", len(result.Issues)))
	h.respond(c, logger, format, result)
}

// HandleScan handles POST /v1/guardian/scan.
//
// Description:
//
//	Scans files and directories under the service root.
//
// Response:
//
//	200 OK: models.AnalysisResult, or the rendered report
//	400 Bad Request: Validation error or a path outside the root
//	404 Not Found: A path does not exist
//	500 Internal Server Error: Processing error
func (h *Handlers) HandleScan(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := telemetry.LoggerWithTrace(c.Request.Context(),
		slog.With(slog.String("request_id", requestID), slog.String("handler", "HandleScan")))

	format, ok := h.requestedFormat(c, logger)
	if !ok {
		return
	}

	var req ScanRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	paths := make([]string, len(req.Paths))
	for i, p := range req.Paths {
		resolved, err := h.resolve(p)
		if err != nil {
			logger.Warn("Rejected scan path", slog.String("path", p), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_PATH"})
			return
		}
		paths[i] = resolved
	}

	opts := h.scanOptions(req.MinSeverity, req.DetectAI)
	opts.Exclude = req.Exclude

	logger.Info("Scanning paths", slog.Int("paths", len(paths)))
	result, err := h.engine.Analyze(c.Request.Context(), paths, opts)
	if err != nil {
		h.fail(c, logger, err)
		return
	}
	h.respond(c, logger, format, result)
}

// HandleHealth handles GET /v1/guardian/health. Always returns 200 if running.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: h.version,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func bindJSON(c *gin.Context, logger *slog.Logger, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		logger.Warn("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return false
	}
	return true
}

func (h *Handlers) scanOptions(minSeverity string, detectAI *bool) analyzer.ScanOptions {
	opts := analyzer.DefaultScanOptions(h.cfg)
	if minSeverity != "" {
		opts.MinSeverity = models.SeverityFromString(minSeverity)
	}
	if detectAI != nil {
		opts.DetectAI = *detectAI
	}
	return opts
}

// resolve maps a request path onto the service root.
func (h *Handlers) resolve(p string) (string, error) {
	if filepath.IsAbs(p) {
		return "", ErrAbsolutePath
	}
	clean := filepath.Clean(filepath.FromSlash(p))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return filepath.Join(h.root, clean), nil
}

// requestedFormat reads ?format=. An empty value means the raw result.
func (h *Handlers) requestedFormat(c *gin.Context, logger *slog.Logger) (report.Format, bool) {
	name := c.Query("format")
	if name == "" {
		return "", true
	}
	format, err := report.ParseFormat(name)
	if err != nil {
		logger.Warn("Unknown report format", slog.String("format", name))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_FORMAT"})
		return "", false
	}
	return format, true
}

func (h *Handlers) respond(c *gin.Context, logger *slog.Logger, format report.Format, result *models.AnalysisResult) {
	if format == "" {
		c.JSON(http.StatusOK, result)
		return
	}

	var buf bytes.Buffer
	if err := h.reports.Write(&buf, format, result); err != nil {
		logger.Error("Report rendering failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "REPORT_FAILED"})
		return
	}
	c.Data(http.StatusOK, contentType(format), buf.Bytes())
}

func contentType(format report.Format) string {
	switch format {
	case report.FormatHTML:
		return "text/html; charset=utf-8"
	case report.FormatCLI:
		return "text/plain; charset=utf-8"
	default:
		return "application/json; charset=utf-8"
	}
}

func (h *Handlers) fail(c *gin.Context, logger *slog.Logger, err error) {
	statusCode := http.StatusInternalServerError
	errCode := "ANALYSIS_FAILED"

	switch {
	case errors.Is(err, analyzer.ErrPathNotFound):
		statusCode = http.StatusNotFound
		errCode = "PATH_NOT_FOUND"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		statusCode = http.StatusServiceUnavailable
		errCode = "CANCELED"
	}

	logger.Error("Analysis failed", slog.String("error", err.Error()))
	c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
}

// getOrCreateRequestID echoes X-Request-ID or generates one.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
