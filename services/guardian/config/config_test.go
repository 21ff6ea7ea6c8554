// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/codeguardian/services/guardian/models"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))

	assert.True(t, cfg.Security.Enabled)
	assert.Equal(t, 10, cfg.Performance.MaxComplexity)
	assert.Equal(t, 50, cfg.Maintainability.MaxFunctionLength)
	assert.Equal(t, 20, cfg.Maintainability.MaxClassMethods)
	assert.InDelta(t, 0.7, cfg.AIDetection.ConfidenceThreshold, 1e-9)
	assert.Equal(t, DefaultExcludes, cfg.Exclude)
	assert.Equal(t, models.SeverityMedium, cfg.MinSeverity())
}

func TestParse_KeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Parse([]byte(`
security:
  check_sql_injection: false
maintainability:
  max_class_methods: 5
`))
	require.NoError(t, err)

	assert.False(t, cfg.Security.CheckSQLInjection)
	assert.True(t, cfg.Security.CheckXSS)
	assert.True(t, cfg.Security.Enabled)
	assert.Equal(t, 5, cfg.Maintainability.MaxClassMethods)
	assert.Equal(t, 50, cfg.Maintainability.MaxFunctionLength)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"zero complexity", "performance:\n  max_complexity: 0\n"},
		{"threshold above one", "ai_detection:\n  confidence_threshold: 1.5\n"},
		{"bad severity", "security:\n  severity_threshold: urgent\n"},
		{"bad min severity", "analysis:\n  min_severity: blocker\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse([]byte("security: [unterminated"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidConfig))
}

func TestMinSeverity_AnalysisOverridesSecurity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Security.SeverityThreshold = "low"
	assert.Equal(t, models.SeverityLow, cfg.MinSeverity())

	cfg.Analysis.MinSeverity = "critical"
	assert.Equal(t, models.SeverityCritical, cfg.MinSeverity())
}

func TestLoad_DiscoversFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".ai-guardian.yaml")
	require.NoError(t, os.WriteFile(path, []byte("performance:\n  max_complexity: 7\n"), 0644))

	assert.Equal(t, path, Discover(dir))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Performance.MaxComplexity)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestInitAndSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	path, err := Init(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".ai-guardian.yml"), path)

	_, err = Init(dir)
	assert.True(t, errors.Is(err, ErrConfigExists))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestFingerprint(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	b.Maintainability.MaxComplexity = 11
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestClone_Independent(t *testing.T) {
	a := DefaultConfig()
	b := a.Clone()
	b.Exclude[0] = "changed"
	assert.Equal(t, "*.pyc", a.Exclude[0])
}
