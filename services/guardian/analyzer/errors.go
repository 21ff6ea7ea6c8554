// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/codeguardian/services/guardian/models"
)

var (
	// ErrPathNotFound indicates a root path passed to a scan does not exist.
	ErrPathNotFound = errors.New("path not found")

	// ErrFileTooLarge indicates a file exceeds analysis.max_file_size.
	// It never aborts a scan; the file gets an analysis finding instead.
	ErrFileTooLarge = errors.New("file too large")
)

// failureFinding converts a whole-file failure into the single finding
// reported for that file.
func failureFinding(path string, err error) models.Finding {
	return models.NewFinding(models.SeverityMedium, models.CategoryAnalysis,
		fmt.Sprintf("Failed to analyze file: %v", err), path, 0)
}
