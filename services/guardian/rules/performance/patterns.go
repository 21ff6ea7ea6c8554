// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package performance

import (
	"strings"

	"github.com/AleutianAI/codeguardian/services/guardian/models"
	"github.com/AleutianAI/codeguardian/services/guardian/rules"
)

func pattern(expr, description string, severity models.Severity) rules.Pattern {
	return rules.Severe(rules.IgnoreCase(expr), description, severity)
}

// loopPatterns flag inefficient iteration idioms. The append/for pattern
// spans two lines and so never matches a single line; it is kept for
// parity with multi-line matchers.
var loopPatterns = []rules.Pattern{
	pattern(`for.*in.*range\(len\(`, "Inefficient loop - use enumerate() or direct iteration", models.SeverityMedium),
	pattern(`while.*len\(.*\)\s*>`, "Inefficient while loop checking length", models.SeverityMedium),
	pattern(`\.append\(.*\)\s*\n.*for.*in`, "List comprehension may be more efficient", models.SeverityLow),
	pattern(`list\(filter\(.*list\(map\(`, "Nested list comprehension may be more efficient", models.SeverityMedium),
}

// memoryPatterns flag allocation churn.
var memoryPatterns = []rules.Pattern{
	pattern(`.*\+=.*\[.*\]`, "Potential memory inefficiency with list concatenation", models.SeverityMedium),
	pattern(`.*\.copy\(\).*in.*loop`, "Copying in loop can cause memory issues", models.SeverityHigh),
	pattern(`pd\.concat.*in.*for`, "Inefficient pandas concatenation in loop", models.SeverityHigh),
	pattern(`np\.concatenate.*for.*in`, "Inefficient numpy concatenation in loop", models.SeverityMedium),
}

// ioPatterns flag I/O issued from inside loops.
var ioPatterns = []rules.Pattern{
	pattern(`\.execute\(.*for.*in`, "Database queries in loop - consider batch operations", models.SeverityHigh),
	pattern(`open\(.*for.*in`, "File operations in loop can be inefficient", models.SeverityMedium),
	pattern(`requests\.get\(.*for`, "HTTP requests in loop without session reuse", models.SeverityHigh),
	pattern(`time\.sleep\(.*for`, "Sleep in loop may indicate inefficient design", models.SeverityLow),
}

// scriptPatterns apply only to the web-scripting family.
var scriptPatterns = []rules.Pattern{
	pattern(`document\.getElementById.*in.*for`, "DOM queries in loop are inefficient", models.SeverityHigh),
	pattern(`\.innerHTML\s*\+=`, "innerHTML concatenation causes reflow", models.SeverityMedium),
	pattern(`new.*RegExp.*in.*for`, "RegExp creation in loop is inefficient", models.SeverityMedium),
	pattern(`JSON\.parse.*JSON\.stringify`, "Deep clone via JSON is inefficient", models.SeverityMedium),
	pattern(`addEventListener.*in.*for`, "Event listeners in loop without cleanup", models.SeverityHigh),
}

// ScriptExtensions are the files the script patterns apply to.
var ScriptExtensions = []string{".js", ".ts", ".jsx", ".tsx"}

// suggestionKeys maps a description keyword to remediation text. Order
// matters: the first keyword found in the description wins.
var suggestionKeys = []struct {
	keyword    string
	suggestion string
}{
	{"inefficient loop", "Use enumerate() or iterate directly over the collection."},
	{"list comprehension", "Consider using list comprehension for better performance."},
	{"concatenation", "Use join() for string concatenation or extend() for lists."},
	{"database queries", "Use batch operations or bulk inserts instead of individual queries."},
	{"http requests", "Use session objects to reuse connections."},
	{"dom queries", "Cache DOM elements outside of loops."},
	{"memory inefficiency", "Consider using generators or processing data in chunks."},
}

const defaultSuggestion = "Review this code for potential performance improvements."

// suggestionFor picks remediation text by keyword lookup on description.
func suggestionFor(description string) string {
	lower := strings.ToLower(description)
	for _, s := range suggestionKeys {
		if strings.Contains(lower, s.keyword) {
			return s.suggestion
		}
	}
	return defaultSuggestion
}
