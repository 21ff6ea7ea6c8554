// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"errors"
	"fmt"
)

// Sentinel errors for parse failure conditions.
//
// Rule sets check these with errors.Is() to decide whether to skip
// structural checks silently (ErrSyntax) or report an analysis failure.
var (
	// ErrUnsupportedLanguage indicates no parser is registered for the file extension.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrParseFailed indicates tree-sitter produced no usable tree.
	ErrParseFailed = errors.New("parse failed")

	// ErrInvalidContent indicates the content is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")

	// ErrFileTooLarge indicates the content exceeds the parser's size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrSyntax indicates the tree contains error or missing nodes.
	//
	// Always returned wrapped in a *SyntaxError carrying the first
	// error position.
	ErrSyntax = errors.New("syntax error")
)

// SyntaxError describes the first syntax error found in a file.
//
// Example:
//
//	tree, err := parser.Parse(ctx, content, "main.py")
//	var synErr *SyntaxError
//	if errors.As(err, &synErr) {
//	    fmt.Printf("syntax error at %s:%d\n", synErr.FilePath, synErr.Line)
//	}
type SyntaxError struct {
	// FilePath is the file being parsed.
	FilePath string

	// Line is 1-based.
	Line int

	// Column is 1-based.
	Column int
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: invalid syntax", e.FilePath, e.Line, e.Column)
}

// Unwrap makes errors.Is(err, ErrSyntax) succeed.
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}
