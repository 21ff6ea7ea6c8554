// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging builds the slog loggers used by the guardian CLI.
//
// Logs go to a console writer (stderr by default) and, when a log
// directory is configured, to a daily JSON file as well:
//
//	logger, err := logging.New(logging.Config{
//	    Level:   slog.LevelInfo,
//	    LogDir:  "~/.guardian/logs",
//	    Service: "guardian",
//	})
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//	slog.SetDefault(logger.Slog())
//
// Reports are written to stdout, so nothing here ever writes there.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrUnknownLevel is returned by ParseLevel for names outside
// debug, info, warn and error.
var ErrUnknownLevel = errors.New("unknown log level")

// ParseLevel resolves a level name, case-insensitively. "" is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
}

// =============================================================================
// Configuration
// =============================================================================

// Config configures a Logger. The zero value logs info and above to
// stderr as text.
type Config struct {
	// Level is the minimum level written to every destination.
	Level slog.Level

	// Writer is the console destination. Default: os.Stderr
	Writer io.Writer

	// LogDir enables file logging. The file is "{Service}_{YYYY-MM-DD}.log",
	// always JSON. A leading ~ expands to the home directory.
	LogDir string

	// Service is attached to every record as the "service" attribute.
	Service string

	// JSON switches the console format from text to JSON.
	JSON bool

	// Quiet disables the console destination.
	Quiet bool
}

// =============================================================================
// Logger
// =============================================================================

// Logger owns the slog.Logger and the log file behind it.
//
// Thread Safety: Safe for concurrent use.
type Logger struct {
	slog *slog.Logger
	path string

	mu   sync.Mutex
	file *os.File
}

// New creates a Logger.
//
// Outputs:
//
//	*Logger - Ready to use. Close releases the log file.
//	error - The log directory or file could not be created.
func New(cfg Config) (*Logger, error) {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	logger := &Logger{}

	var handlers []slog.Handler
	if !cfg.Quiet {
		w := cfg.Writer
		if w == nil {
			w = os.Stderr
		}
		if cfg.JSON {
			handlers = append(handlers, slog.NewJSONHandler(w, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(w, opts))
		}
	}

	if cfg.LogDir != "" {
		dir := expandPath(cfg.LogDir)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		service := cfg.Service
		if service == "" {
			service = "guardian"
		}
		logger.path = filepath.Join(dir, fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02")))

		file, err := os.OpenFile(logger.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logger.file = file
		handlers = append(handlers, slog.NewJSONHandler(file, opts))
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(io.Discard, opts)
	case 1:
		handler = handlers[0]
	default:
		handler = &multiHandler{handlers: handlers}
	}
	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}

	logger.slog = slog.New(handler)
	return logger, nil
}

// Slog returns the underlying logger.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Path is the log file path, or "" when file logging is off.
func (l *Logger) Path() string {
	return l.path
}

// Close syncs and closes the log file. Safe to call more than once.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	file := l.file
	l.file = nil
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("sync log file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

// =============================================================================
// Multi-Handler
// =============================================================================

// multiHandler fans records out to several handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}
