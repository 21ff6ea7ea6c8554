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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"go.opentelemetry.io/otel/codes"
)

// DefaultMaxFileSize is the largest file the parser accepts (10MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// PythonParserOption configures a PythonParser.
type PythonParserOption func(*PythonParser)

// WithPythonMaxFileSize sets the maximum accepted content size in bytes.
func WithPythonMaxFileSize(bytes int64) PythonParserOption {
	return func(p *PythonParser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// PythonParser builds tree-sitter syntax trees for Python source.
//
// Description:
//
//	A new tree-sitter parser is created per call, so one PythonParser can
//	serve every worker of a parallel scan.
//
// Thread Safety:
//
//	PythonParser instances are safe for concurrent use.
type PythonParser struct {
	maxFileSize int64
}

// NewPythonParser creates a PythonParser with the given options.
func NewPythonParser(opts ...PythonParserOption) *PythonParser {
	p := &PythonParser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Language returns "python".
func (p *PythonParser) Language() string {
	return "python"
}

// Extensions returns the Python source extension.
func (p *PythonParser) Extensions() []string {
	return []string{".py"}
}

// Parse builds a syntax tree for Python source code.
//
// Description:
//
//	Validates size and encoding, parses with tree-sitter and rejects trees
//	containing ERROR or MISSING nodes. Unlike an error-tolerant symbol
//	extractor, the structural rule sets need a faithful tree, so any syntax
//	error is reported rather than partially recovered.
//
// Inputs:
//   - ctx: Context for cancellation. Checked before and after parsing.
//   - content: Raw Python source. Must be valid UTF-8.
//   - filePath: Path used in errors and span attributes.
//
// Outputs:
//   - *Tree: The parsed tree. Caller must Close it.
//   - error: Non-nil on failure:
//   - ErrFileTooLarge: Content exceeds the size limit
//   - ErrInvalidContent: Content is not valid UTF-8
//   - *SyntaxError (errors.Is ErrSyntax): Source has syntax errors
//   - ErrParseFailed: tree-sitter returned no tree
//   - Context errors: Context was canceled
//
// Thread Safety:
//
//	This method is safe for concurrent use.
func (p *PythonParser) Parse(ctx context.Context, content []byte, filePath string) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}

	ctx, span := startParseSpan(ctx, p.Language(), filePath, len(content))
	defer span.End()
	start := time.Now()

	tree, err := p.parse(ctx, content, filePath)
	recordParseMetrics(ctx, p.Language(), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return tree, nil
}

func (p *PythonParser) parse(ctx context.Context, content []byte, filePath string) (*Tree, error) {
	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	hash := sha256.Sum256(content)

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	st, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	if st == nil {
		return nil, ErrParseFailed
	}

	if err := ctx.Err(); err != nil {
		st.Close()
		return nil, fmt.Errorf("parse canceled after tree-sitter: %w", err)
	}

	root := st.RootNode()
	if root == nil {
		st.Close()
		return nil, fmt.Errorf("%w: nil root node", ErrParseFailed)
	}

	if root.HasError() {
		synErr := &SyntaxError{FilePath: filePath, Line: 1, Column: 1}
		if bad := firstSyntaxError(root); bad != nil {
			synErr.Line = Line(bad)
			synErr.Column = Column(bad)
		}
		st.Close()
		return nil, synErr
	}

	return &Tree{
		FilePath: filePath,
		Language: p.Language(),
		Hash:     hex.EncodeToString(hash[:]),
		Source:   content,
		tree:     st,
	}, nil
}
