// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch triggers rescans when source files change on disk.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/codeguardian/services/guardian/analyzer"
)

// ErrAlreadyRunning is returned by Run when the watcher is already active.
var ErrAlreadyRunning = errors.New("watcher is already running")

// Handler is called with the distinct source files changed during one
// debounce window, in the order they were first seen.
type Handler func(ctx context.Context, changed []string)

// Options configures the Watcher.
type Options struct {
	// Debounce is how long to wait for more changes before calling the
	// handler. Default: 300ms
	Debounce time.Duration

	// Exclude filters paths exactly like a scan does.
	Exclude *analyzer.Excluder

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		Debounce: 300 * time.Millisecond,
		Exclude:  analyzer.NewExcluder(nil),
		Logger:   slog.Default(),
	}
}

// Watcher watches directory trees and batches source changes.
//
// Description:
//
//	Every non-excluded directory under the roots is registered with
//	fsnotify. Directories created later are added as they appear. Only
//	files with one of analyzer.SourceExtensions are reported.
//
// Thread Safety: Run may be called once at a time. The handler is always
// called from the Run goroutine, never concurrently with itself.
type Watcher struct {
	roots    []string
	handler  Handler
	debounce time.Duration
	exclude  *analyzer.Excluder
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// New creates a watcher over roots. Nothing is watched until Run.
func New(roots []string, handler Handler, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultOptions().Debounce
	}
	if opts.Exclude == nil {
		opts.Exclude = analyzer.NewExcluder(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Watcher{
		roots:    slices.Clone(roots),
		handler:  handler,
		debounce: opts.Debounce,
		exclude:  opts.Exclude,
		logger:   opts.Logger,
	}
}

// Run watches until ctx is canceled.
//
// Outputs:
//
//	error - nil after cancellation. Setup failures are returned before
//	        any event is processed.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	for _, root := range w.roots {
		if err := w.addRecursive(fsw, root); err != nil {
			return err
		}
	}

	var (
		pending []string
		seen    = make(map[string]bool)
		timer   *time.Timer
		timerC  <-chan time.Time
	)
	flush := func() {
		if len(pending) > 0 && w.handler != nil {
			w.handler(ctx, pending)
		}
		pending = nil
		clear(seen)
		timer, timerC = nil, nil
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.exclude.Excluded(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if w.exclude.ExcludedDir(filepath.Base(event.Name)) {
					continue
				}
				if err := w.addRecursive(fsw, event.Name); err != nil {
					w.logger.Warn("Could not watch new directory", slog.String("path", event.Name), slog.String("error", err.Error()))
				}
				continue
			}
			if !isSource(event.Name) || seen[event.Name] {
				continue
			}
			seen[event.Name] = true
			pending = append(pending, event.Name)

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watch error", slog.String("error", err.Error()))

		case <-timerC:
			flush()
		}
	}
}

// addRecursive registers root and every non-excluded directory below it.
func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fsw.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && w.exclude.ExcludedDir(d.Name()) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isSource(path string) bool {
	return slices.Contains(analyzer.SourceExtensions, filepath.Ext(path))
}
