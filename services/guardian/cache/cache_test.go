// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/codeguardian/services/guardian/models"
)

func TestKey(t *testing.T) {
	base := Key("fp", true, "a.py", "x = 1")

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, base, Key("fp", true, "a.py", "x = 1"))
		assert.Len(t, base, 64)
	})

	t.Run("every input changes the key", func(t *testing.T) {
		assert.NotEqual(t, base, Key("fp2", true, "a.py", "x = 1"))
		assert.NotEqual(t, base, Key("fp", false, "a.py", "x = 1"))
		assert.NotEqual(t, base, Key("fp", true, "b.py", "x = 1"))
		assert.NotEqual(t, base, Key("fp", true, "a.py", "x = 2"))
	})

	t.Run("no concatenation collisions", func(t *testing.T) {
		assert.NotEqual(t, Key("fp", true, "ab", "c"), Key("fp", true, "a", "bc"))
	})
}

func sampleResult() models.FileResult {
	return models.FileResult{
		Path: "app.py",
		Findings: []models.Finding{
			models.NewFinding(models.SeverityCritical, models.CategorySecurity, "Potential SQL injection vulnerability", "app.py", 3).
				WithRule("security.sql_injection").
				WithSnippet(`cursor.execute("SELECT * FROM t WHERE id = " + uid)`),
		},
		Scores: models.FileScores{
			PerformanceScore:     models.Score(10),
			MaintainabilityScore: models.Score(8.5),
			AIConfidence:         models.Score(0.3),
		},
	}
}

func TestStore_InMemory(t *testing.T) {
	store, err := OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	t.Run("miss", func(t *testing.T) {
		_, ok := store.Get("missing")
		assert.False(t, ok)
	})

	t.Run("round trip", func(t *testing.T) {
		want := sampleResult()
		store.Put("k1", want)

		got, ok := store.Get("k1")
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("empty findings stay non-nil", func(t *testing.T) {
		store.Put("k2", models.FileResult{Path: "empty.py", Findings: []models.Finding{}})

		got, ok := store.Get("k2")
		require.True(t, ok)
		assert.NotNil(t, got.Findings)
		assert.Empty(t, got.Findings)
	})

	t.Run("len and purge", func(t *testing.T) {
		n, err := store.Len()
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		require.NoError(t, store.Purge())
		n, err = store.Len()
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestStore_Persistent(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenDir(dir, nil)
	require.NoError(t, err)
	store.Put("k", sampleResult())
	require.NoError(t, store.Close())

	reopened, err := OpenDir(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok := reopened.Get("k")
	require.True(t, ok)
	assert.Equal(t, "app.py", got.Path)
	require.Len(t, got.Findings, 1)
	assert.Equal(t, models.SeverityCritical, got.Findings[0].Severity)
}

func TestOpen_RequiresDir(t *testing.T) {
	_, err := Open(Config{})
	assert.ErrorIs(t, err, ErrDirRequired)
}
