// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package aidetect

import (
	"regexp"
	"strings"

	"github.com/AleutianAI/codeguardian/services/guardian/models"
	"github.com/AleutianAI/codeguardian/services/guardian/rules"
)

const (
	consistentVariance = 100
	overCommentedRatio = 0.3
	perfectSpacingRate = 0.8
)

var (
	spacedAfter  = regexp.MustCompile(`=\s+\w+`)
	spacedBefore = regexp.MustCompile(`\w+\s+=`)
)

// StyleMetrics measures formatting regularity.
//
// Description:
//
//	Line lengths are averaged over non-blank lines; the comment and blank
//	ratios are over all lines. PerfectSpacing compares whitespace-padded
//	assignment operators against every '=' in the content and is left nil
//	when there is none.
//
// Outputs:
//
//	*models.StyleMetrics - nil when content has no non-blank lines.
func StyleMetrics(content string) *models.StyleMetrics {
	lines := rules.SplitLines(content)

	var widths []int
	comments, blanks := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			blanks++
			continue
		}
		widths = append(widths, rules.Width(line))
		if strings.HasPrefix(trimmed, "#") {
			comments++
		}
	}
	if len(widths) == 0 {
		return nil
	}

	avg := rules.Mean(widths)
	var variance float64
	for _, w := range widths {
		diff := float64(w) - avg
		variance += diff * diff
	}
	variance /= float64(len(widths))

	total := float64(len(lines))
	m := &models.StyleMetrics{
		AvgLineLength:        avg,
		CommentRatio:         float64(comments) / total,
		EmptyLineRatio:       float64(blanks) / total,
		DocstringPresent:     strings.Contains(content, `"""`) || strings.Contains(content, `'''`),
		TypeHintsPresent:     strings.Contains(content, ": ") && strings.Contains(content, "->"),
		ConsistentFormatting: variance < consistentVariance,
	}
	m.OverCommented = m.CommentRatio > overCommentedRatio

	if assignments := strings.Count(content, "="); assignments > 0 {
		spaced := len(spacedAfter.FindAllStringIndex(content, -1)) +
			len(spacedBefore.FindAllStringIndex(content, -1))
		perfect := float64(spaced)/float64(assignments) > perfectSpacingRate
		m.PerfectSpacing = &perfect
	}
	return m
}
