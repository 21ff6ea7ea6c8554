// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: slog.LevelWarn, Writer: &buf, Service: "test"})
	require.NoError(t, err)
	defer logger.Close()

	logger.Slog().Info("hidden")
	logger.Slog().Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "key=value")
	assert.Contains(t, out, "service=test")
	assert.Empty(t, logger.Path())
}

func TestNew_ConsoleJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf, JSON: true})
	require.NoError(t, err)

	logger.Slog().Info("hello", "n", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.EqualValues(t, 3, rec["n"])
}

func TestNew_LogDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer
	logger, err := New(Config{Writer: &console, LogDir: dir, Service: "guardian"})
	require.NoError(t, err)

	logger.Slog().Info("both destinations")
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())

	assert.True(t, strings.HasPrefix(filepath.Base(logger.Path()), "guardian_"))
	data, err := os.ReadFile(logger.Path())
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &rec))
	assert.Equal(t, "both destinations", rec["msg"])
	assert.Equal(t, "guardian", rec["service"])
	assert.Contains(t, console.String(), "both destinations")
}

func TestNew_QuietWithoutFile(t *testing.T) {
	logger, err := New(Config{Quiet: true})
	require.NoError(t, err)
	logger.Slog().Error("discarded")
	assert.NoError(t, logger.Close())
}

func TestNew_InvalidLogDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := New(Config{LogDir: filepath.Join(blocker, "logs")})
	assert.Error(t, err)
}

func TestMultiHandler_LevelsPerHandler(t *testing.T) {
	var low, high bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&low, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&high, &slog.HandlerOptions{Level: slog.LevelError}),
	}}
	logger := slog.New(h).With("scan", "a").WithGroup("g")

	logger.Debug("debug only", "k", 1)
	logger.Error("everywhere", "k", 2)

	assert.Contains(t, low.String(), "debug only")
	assert.Contains(t, low.String(), "g.k=1")
	assert.NotContains(t, high.String(), "debug only")
	assert.Contains(t, high.String(), "everywhere")
	assert.Contains(t, high.String(), "scan=a")
}

func TestLogger_ConcurrentUse(t *testing.T) {
	logger, err := New(Config{LogDir: t.TempDir(), Quiet: true})
	require.NoError(t, err)
	defer logger.Close()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Slog().Info("worker", "id", i)
		}()
	}
	wg.Wait()
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, filepath.Join(home, ".guardian"), expandPath("~/.guardian"))
	assert.Equal(t, "/var/log", expandPath("/var/log"))
	assert.Equal(t, "rel/path", expandPath("rel/path"))
}
