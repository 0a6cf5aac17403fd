// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"strconv"
	"strings"
	"unicode"
)

// Tokenize lowercases text, strips punctuation and splits on whitespace.
// Tokens that are empty after stripping are dropped, so "great !" yields a
// single token.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if tok := normalizeToken(f); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// normalizeToken lowercases s and removes punctuation, symbols and invalid
// UTF-8. Letters, digits and marks are kept.
func normalizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == unicode.ReplacementChar:
			continue
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func uitoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}
