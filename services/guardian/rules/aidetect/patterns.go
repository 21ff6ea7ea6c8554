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
	"github.com/AleutianAI/codeguardian/services/guardian/rules"
)

func folded(expr, description string, weight float64) rules.Pattern {
	return rules.Weighted(rules.IgnoreCase(expr), description, weight)
}

// commentPatterns match explanatory comment phrasing. Case-insensitive.
// The JSDoc pattern spans lines and so never matches a single line.
var commentPatterns = []rules.Pattern{
	folded(`#\s*(This|Here)\s+is\s+(a|an)\s+`, "AI-style explanatory comment", 0.8),
	folded(`#\s*Note:\s*`, "AI-style note comment", 0.7),
	folded(`#\s*Important:\s*`, "AI-style important comment", 0.7),
	folded(`#\s*Example:\s*`, "AI-style example comment", 0.6),
	folded(`#\s*TODO:\s*Implement\s+`, "Generic TODO comment", 0.5),
	folded(`#\s*(Initialize|Create|Define)\s+(the|a)\s+`, "AI-style action comment", 0.7),
	folded(`/\*\*\s*\n\s*\*\s*(This|Here)`, "AI-style JSDoc comment", 0.8),
}

// codePatterns match boilerplate idioms. The two multi-line entries never
// match a single line.
var codePatterns = []rules.Pattern{
	rules.Weighted(`if\s+.*\s+is\s+not\s+None\s*:`, "Verbose None check", 0.6),
	rules.Weighted(`\.format\(\s*\)`, "Empty format() call", 0.5),
	rules.Weighted(`print\s*\(\s*f?["'].*\{.*\}.*["']\s*\)`, "Debug print statement", 0.4),
	rules.Weighted(`import\s+sys\s*\n.*sys\.path\.append`, "Manual path manipulation", 0.7),
	rules.Weighted(`try:\s*\n.*except\s+Exception\s+as\s+e:\s*\n.*print`, "Generic exception handling", 0.6),
	rules.Weighted(`def\s+main\s*\(\s*\)\s*:`, "Generic main function", 0.5),
	rules.Weighted(`if\s+__name__\s*==\s*["']__main__["']:`, "Standard main guard", 0.4),
}

// namingPatterns match placeholder identifiers.
var namingPatterns = []rules.Pattern{
	rules.Weighted(`\bdata\b`, `Generic "data" variable name`, 0.6),
	rules.Weighted(`\bresult\b`, `Generic "result" variable name`, 0.5),
	rules.Weighted(`\bvalue\b`, `Generic "value" variable name`, 0.5),
	rules.Weighted(`\bitem\b`, `Generic "item" variable name`, 0.4),
	rules.Weighted(`\btemp\b`, `Generic "temp" variable name`, 0.6),
	rules.Weighted(`\bmy_\w+`, `AI-style "my_" prefixed variables`, 0.7),
}

// structurePatterns match placeholder class and function names.
var structurePatterns = []rules.Pattern{
	rules.Weighted(`class\s+MyClass\s*[\(:]`, `Generic "MyClass" class name`, 0.9),
	rules.Weighted(`def\s+my_function\s*\(`, `Generic "my_function" function name`, 0.9),
	rules.Weighted(`def\s+calculate_\w+\s*\(`, "AI-style calculate_ function", 0.6),
	rules.Weighted(`def\s+process_\w+\s*\(`, "AI-style process_ function", 0.6),
	rules.Weighted(`def\s+handle_\w+\s*\(`, "AI-style handle_ function", 0.6),
}

// importPatterns run against the whole content, so they may span lines.
var importPatterns = []rules.Pattern{
	rules.Weighted(`(?m)import\s+os\s*\n.*import\s+sys\s*\n.*import\s+json`, "Common AI import sequence", 0.7),
	rules.Weighted(`(?m)from\s+typing\s+import\s+List,\s*Dict,\s*Any`, "Common typing imports", 0.6),
	rules.Weighted(`(?m)import\s+\w+\s+as\s+\w{1,2}\s*\n`, "Short alias imports", 0.5),
}

// stringPatterns match boilerplate literals. Case-insensitive.
var stringPatterns = []rules.Pattern{
	folded(`["']Hello,?\s+World!?["']`, "Hello World string", 0.8),
	folded(`["']This\s+is\s+a\s+test["']`, "Test string", 0.7),
	folded(`["']Enter\s+\w+:`, "Input prompt string", 0.6),
	folded(`["']Processing\s+\w+\.\.\.["']`, "Processing message", 0.6),
}
