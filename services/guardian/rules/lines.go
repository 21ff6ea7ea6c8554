// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rules

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitLines splits content into physical lines.
//
// Description:
//
//	Recognizes \n, \r\n and \r plus the other Unicode line separators
//	(\v, \f, \x1c-\x1e, U+0085, U+2028, U+2029). Terminators are not kept
//	and a trailing terminator does not produce an empty final line, so ""
//	yields no lines at all.
func SplitLines(content string) []string {
	lines := make([]string, 0, strings.Count(content, "\n")+1)
	start := 0
	for i := 0; i < len(content); {
		r, size := utf8.DecodeRuneInString(content[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, content[start:i])
		i += size
		if r == '\r' && i < len(content) && content[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(content) {
		lines = append(lines, content[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	default:
		return false
	}
}

// Width returns the number of characters in line.
func Width(line string) int {
	return utf8.RuneCountInString(line)
}

// Indent returns the number of leading whitespace characters in line.
func Indent(line string) int {
	return Width(line) - Width(strings.TrimLeftFunc(line, unicode.IsSpace))
}

// Snippet trims surrounding whitespace from a triggering line.
func Snippet(line string) string {
	return strings.TrimSpace(line)
}
