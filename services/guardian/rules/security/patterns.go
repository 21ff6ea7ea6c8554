// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package security

import (
	"github.com/AleutianAI/codeguardian/services/guardian/config"
	"github.com/AleutianAI/codeguardian/services/guardian/models"
	"github.com/AleutianAI/codeguardian/services/guardian/rules"
)

// Category names the five line-pattern families. It is also the rule id
// suffix, e.g. "security.sql_injection".
type Category string

const (
	CategorySQLInjection    Category = "sql_injection"
	CategoryXSS             Category = "xss"
	CategorySecrets         Category = "secrets"
	CategoryDeserialization Category = "deserialization"
	CategoryAISpecific      Category = "ai_specific"
)

// patternGroup is one toggleable category of line patterns.
type patternGroup struct {
	category   Category
	severity   models.Severity
	suggestion string
	enabled    func(cfg *config.SecurityConfig) bool
	patterns   []rules.Pattern
}

// pattern builds a case-insensitive line pattern inheriting the group severity.
func pattern(expr, description string) rules.Pattern {
	return rules.Severe(rules.IgnoreCase(expr), description, models.SeverityLow)
}

// patternGroups is the line-pattern database, in emission order.
//
// Secret-shaped values accept '_' and '-' so that prefixed keys such as
// "sk_live_..." are recognized.
var patternGroups = []patternGroup{
	{
		category:   CategorySQLInjection,
		severity:   models.SeverityHigh,
		suggestion: "Use parameterized queries or ORM methods instead of string concatenation.",
		enabled:    func(c *config.SecurityConfig) bool { return c.CheckSQLInjection },
		patterns: []rules.Pattern{
			pattern(`execute\s*\(\s*["'].*%.*["']`, "SQL injection via string formatting"),
			pattern(`cursor\.execute\s*\(\s*f["']`, "SQL injection via f-string"),
			pattern(`query\s*=\s*["'].*\+.*["']`, "SQL injection via string concatenation"),
			pattern(`WHERE.*=.*\+`, "Potential SQL injection in WHERE clause"),
		},
	},
	{
		category:   CategoryXSS,
		severity:   models.SeverityHigh,
		suggestion: "Sanitize user input and use safe DOM manipulation methods.",
		enabled:    func(c *config.SecurityConfig) bool { return c.CheckXSS },
		patterns: []rules.Pattern{
			pattern(`innerHTML\s*=.*\+`, "XSS via innerHTML concatenation"),
			pattern(`document\.write\s*\(.*\+`, "XSS via document.write concatenation"),
			pattern(`eval\s*\(.*user`, "XSS via eval with user input"),
			pattern(`<script>.*\$\{`, "XSS via template literal in script tag"),
		},
	},
	{
		category:   CategorySecrets,
		severity:   models.SeverityCritical,
		suggestion: "Move secrets to environment variables or secure key management systems.",
		enabled:    func(c *config.SecurityConfig) bool { return c.CheckHardcodedSecrets },
		patterns: []rules.Pattern{
			pattern(`password\s*=\s*["'][^"']{8,}["']`, "Hardcoded password"),
			pattern(`api[_-]?key\s*=\s*["'][A-Za-z0-9_\-]{16,}["']`, "Hardcoded API key"),
			pattern(`secret[_-]?key\s*=\s*["'][A-Za-z0-9_\-]{16,}["']`, "Hardcoded secret key"),
			pattern(`token\s*=\s*["'][A-Za-z0-9_\-]{20,}["']`, "Hardcoded token"),
			pattern(`aws[_-]?access[_-]?key.*=\s*["']AKIA[A-Z0-9]{16}["']`, "AWS access key"),
		},
	},
	{
		category:   CategoryDeserialization,
		severity:   models.SeverityCritical,
		suggestion: "Validate input and use safe serialization formats like JSON.",
		enabled:    func(c *config.SecurityConfig) bool { return c.CheckUnsafeDeserialization },
		patterns: []rules.Pattern{
			pattern(`pickle\.loads?\s*\(`, "Unsafe pickle deserialization"),
			pattern(`yaml\.load\s*\(`, "Unsafe YAML deserialization"),
			pattern(`json\.loads?\s*\(.*input`, "Potentially unsafe JSON deserialization"),
			pattern(`eval\s*\(`, "Code injection via eval"),
			pattern(`exec\s*\(`, "Code injection via exec"),
		},
	},
	{
		category:   CategoryAISpecific,
		severity:   models.SeverityHigh,
		suggestion: "Validate file paths and sanitize inputs before loading models.",
		enabled:    func(c *config.SecurityConfig) bool { return c.CheckAIVulnerabilities },
		patterns: []rules.Pattern{
			pattern(`model\.load\s*\(.*input`, "Unsafe model loading from user input"),
			pattern(`torch\.load\s*\(.*request`, "Unsafe PyTorch model loading"),
			pattern(`joblib\.load\s*\(.*user`, "Unsafe joblib loading from user input"),
			pattern(`subprocess\.call\s*\(.*input`, "Command injection via subprocess"),
			pattern(`os\.system\s*\(.*\+`, "Command injection via os.system"),
		},
	},
}

// Categories returns the category names in emission order.
func Categories() []Category {
	out := make([]Category, 0, len(patternGroups))
	for _, g := range patternGroups {
		out = append(out, g.category)
	}
	return out
}
