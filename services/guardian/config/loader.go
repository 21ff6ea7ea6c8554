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
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is returned when a configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfigExists is returned by Init when the target file already exists.
	ErrConfigExists = errors.New("configuration file already exists")
)

// FileNames are the configuration file names searched, in order, when no
// explicit path is given.
var FileNames = []string{".ai-guardian.yml", ".ai-guardian.yaml", "ai-guardian.yml"}

// Discover returns the first configuration file present in dir, or "" if none.
func Discover(dir string) string {
	for _, name := range FileNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Load resolves the configuration for a scan.
//
// Description:
//
//	If path is empty, the working directory is searched for one of
//	FileNames; when none exists the defaults are returned. Values from the
//	file are decoded over DefaultConfig, so unspecified keys keep their
//	defaults. The result is validated before being returned.
//
// Inputs:
//
//	path - Explicit configuration file path, or "" to search.
//
// Outputs:
//
//	*Config - The resolved configuration. Never nil on success.
//	error - Read, decode or validation failure. Always fatal to the scan.
func Load(path string) (*Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not determine working directory: %w", err)
		}
		path = Discover(cwd)
		if path == "" {
			return DefaultConfig(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create the config directory: %w", err)
		}
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Init writes the default configuration as .ai-guardian.yml in dir.
//
// Returns the written path, or ErrConfigExists if the file is already there.
func Init(dir string) (string, error) {
	path := filepath.Join(dir, FileNames[0])
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := Save(path, DefaultConfig()); err != nil {
		return "", err
	}
	return path, nil
}

// Marshal encodes cfg as a YAML document with two-space indentation.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Fingerprint returns a stable hash of the configuration.
//
// Two configs with the same fingerprint produce identical per-file results,
// which makes it usable as part of a cache key.
func Fingerprint(cfg *Config) string {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
