// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package maintainability

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AleutianAI/codeguardian/services/guardian/models"
	"github.com/AleutianAI/codeguardian/services/guardian/rules"
)

const (
	maxLineLength   = 120
	maxDefCommas    = 5
	maxIndentation  = 24
	definitionToken = "def "
)

var (
	magicNumber      = regexp.MustCompile(`\b\d{2,}\b`)
	commentedNumber  = regexp.MustCompile(`#.*\d+`)
	pendingWorkToken = regexp.MustCompile(`(?i)#.*\b(TODO|FIXME|HACK|XXX)\b`)
)

// scanLines runs the text heuristics over every line. They apply to all
// languages and carry no source snippet.
func scanLines(path string, lines []string) []models.Finding {
	findings := make([]models.Finding, 0)
	add := func(sev models.Severity, msg string, line int, rule, suggestion string) {
		findings = append(findings, models.NewFinding(sev, models.CategoryMaintainability, msg, path, line).
			WithRule("maintainability."+rule).
			WithSuggestion(suggestion))
	}

	for i, line := range lines {
		num := i + 1
		isDef := strings.Contains(line, definitionToken)

		if width := rules.Width(line); width > maxLineLength {
			add(models.SeverityLow, fmt.Sprintf("Line too long (%d characters)", width), num,
				"line_length", "Break long lines into multiple lines for better readability.")
		}

		if isDef && strings.Count(line, ",") > maxDefCommas {
			add(models.SeverityMedium, "Function has too many parameters", num,
				"too_many_params", "Consider using a configuration object or breaking the function apart.")
		}

		// A number anywhere after a '#' suppresses the whole line.
		if !isDef && magicNumber.MatchString(line) && !commentedNumber.MatchString(line) {
			add(models.SeverityLow, "Magic number detected - consider using named constants", num,
				"magic_number", "Replace magic numbers with named constants.")
		}

		if pendingWorkToken.MatchString(line) {
			add(models.SeverityLow, "TODO/FIXME comment found", num,
				"todo_comment", "Address TODO/FIXME comments before deployment.")
		}

		if rules.Indent(line) > maxIndentation {
			add(models.SeverityMedium, "Code is too deeply nested", num,
				"deep_nesting", "Consider extracting nested code into separate functions.")
		}
	}
	return findings
}
