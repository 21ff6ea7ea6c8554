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
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/codeguardian/services/guardian/models"
)

// configValidate is the validator instance for configuration documents.
// Initialized in init() with custom validators.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()

	// Severity names are parsed by models.ParseSeverity.
	_ = configValidate.RegisterValidation("severity", validateSeverity)
}

// validateSeverity accepts any name models.ParseSeverity understands.
func validateSeverity(fl validator.FieldLevel) bool {
	_, err := models.ParseSeverity(fl.Field().String())
	return err == nil
}

// Validate checks numeric thresholds and enum values.
//
// Description:
//
//	Thresholds must be positive, the AI confidence threshold must lie in
//	[0,1] and severity names must be one of low, medium, high, critical.
//
// Outputs:
//
//	error - Wraps ErrInvalidConfig with the failing fields, or nil.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := configValidate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
