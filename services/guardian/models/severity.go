// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSeverity is returned when a severity name is not recognized.
var ErrUnknownSeverity = errors.New("unknown severity")

// =============================================================================
// SEVERITY
// =============================================================================

// Severity is the ordinal urgency of a finding.
//
// The numeric values are significant: minimum-severity filtering compares
// them directly (low < medium < high < critical).
type Severity int

const (
	// SeverityLow marks style and hygiene issues.
	SeverityLow Severity = iota

	// SeverityMedium marks issues that should be fixed eventually.
	SeverityMedium

	// SeverityHigh marks issues that are likely bugs or vulnerabilities.
	SeverityHigh

	// SeverityCritical marks issues that must be fixed before shipping.
	SeverityCritical
)

// AllSeverities lists every severity from most to least urgent.
var AllSeverities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the four defined severities.
func (s Severity) Valid() bool {
	return s >= SeverityLow && s <= SeverityCritical
}

// AtLeast reports whether s is at or above the given minimum.
func (s Severity) AtLeast(min Severity) bool {
	return s >= min
}

// ParseSeverity parses a severity name.
//
// Description:
//
//	Accepts "low", "medium", "high" and "critical", case-insensitively and
//	ignoring surrounding whitespace.
//
// Inputs:
//
//	name - The severity name.
//
// Outputs:
//
//	Severity - The parsed severity.
//	error - ErrUnknownSeverity (wrapped) if the name is not recognized.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return SeverityMedium, fmt.Errorf("%w: %q", ErrUnknownSeverity, name)
	}
}

// SeverityFromString parses a severity name, falling back to medium for
// unrecognized input.
func SeverityFromString(name string) Severity {
	s, err := ParseSeverity(name)
	if err != nil {
		return SeverityMedium
	}
	return s
}

// MarshalText encodes the severity as its lowercase name.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeverity, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity from its name.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// =============================================================================
// CATEGORY
// =============================================================================

// Category groups findings by the rule set that produced them.
type Category string

const (
	// CategorySecurity is produced by the security rule set.
	CategorySecurity Category = "security"

	// CategoryPerformance is produced by the performance rule set.
	CategoryPerformance Category = "performance"

	// CategoryMaintainability is produced by the maintainability rule set.
	CategoryMaintainability Category = "maintainability"

	// CategoryAnalysis marks synthetic findings for files that could not be analyzed.
	CategoryAnalysis Category = "analysis"
)

// AllCategories lists every category in report order.
var AllCategories = []Category{CategorySecurity, CategoryPerformance, CategoryMaintainability, CategoryAnalysis}

// Valid reports whether c is one of the defined categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySecurity, CategoryPerformance, CategoryMaintainability, CategoryAnalysis:
		return true
	default:
		return false
	}
}
