// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cache provides a content-addressed store for per-file analysis
// results, backed by BadgerDB.
//
// A cached result is only valid for the exact configuration, path and
// content that produced it, so every one of those goes into the key. Rule
// sets are deterministic, which makes a hit indistinguishable from a fresh
// analysis.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/codeguardian/services/guardian/models"
)

// keyPrefix namespaces result entries so the database can hold other
// record kinds later without a migration.
const keyPrefix = "result/v1/"

// ErrDirRequired is returned when a persistent store is opened without a directory.
var ErrDirRequired = errors.New("cache directory is required for persistent store")

// Key derives the cache key for one file.
//
// Description:
//
//	The key is the hex sha256 over the config fingerprint, the AI flag, the
//	path and the content, each length-prefixed so no two inputs collide by
//	concatenation.
//
// Inputs:
//
//	fingerprint - config.Fingerprint of the active configuration.
//	detectAI - Whether AI detection was requested for the scan.
//	path - The file path as reported in findings.
//	content - The decoded file content.
//
// Outputs:
//
//	string - 64 hex characters.
func Key(fingerprint string, detectAI bool, path, content string) string {
	h := sha256.New()
	for _, part := range []string{fingerprint, strconv.FormatBool(detectAI), path, content} {
		h.Write([]byte(strconv.Itoa(len(part))))
		h.Write([]byte{':'})
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Config holds configuration for a result store.
type Config struct {
	// Dir is the directory for BadgerDB files.
	// Ignored when InMemory is true.
	Dir string

	// InMemory keeps everything in RAM. Useful for testing.
	InMemory bool

	// Logger receives cache failures and BadgerDB's own warnings.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
// Info and debug chatter is demoted to debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store is a BadgerDB-backed result cache.
//
// Description:
//
//	Get and Put never return errors. A failed read is a miss and a failed
//	write is dropped; both are logged at Warn. A broken cache therefore
//	slows a scan down but never changes its output.
//
// Thread Safety: Safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open creates and opens a result store.
//
// Inputs:
//
//	cfg - Store configuration. Dir is required unless InMemory is true.
//
// Outputs:
//
//	*Store - The opened store. Caller must call Close() when done.
//	error - ErrDirRequired, or a wrapped BadgerDB open error.
//
// Thread Safety: The returned *Store is safe for concurrent use.
func Open(cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			return nil, ErrDirRequired
		}
		if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", cfg.Dir, err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open result cache: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// OpenDir opens a persistent store at dir.
func OpenDir(dir string, logger *slog.Logger) (*Store, error) {
	return Open(Config{Dir: dir, Logger: logger})
}

// OpenInMemory opens a store that is discarded on Close.
func OpenInMemory() (*Store, error) {
	return Open(Config{InMemory: true})
}

// Get returns the cached result for key.
func (s *Store) Get(key string) (models.FileResult, bool) {
	var result models.FileResult
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &result)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			s.logger.Warn("cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return models.FileResult{}, false
	}
	if result.Findings == nil {
		result.Findings = make([]models.Finding, 0)
	}
	return result, true
}

// Put stores result under key, replacing any earlier entry.
func (s *Store) Put(key string, result models.FileResult) {
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), data)
	})
	if err != nil {
		s.logger.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Len counts stored results.
func (s *Store) Len() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Purge deletes every stored result.
func (s *Store) Purge() error {
	return s.db.DropPrefix([]byte(keyPrefix))
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
