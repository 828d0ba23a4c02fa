// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

// Package textanalysis turns raw message text into ranked word frequencies.
//
// Tokenization skips blank messages, fenced code blocks and bare links, then
// keeps lowercase alphabetic words of at least two letters that are not
// stopwords. Large inputs are split into batches and tokenized on a bounded
// worker pool; see Analyzer.
package textanalysis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tomtom215/guildstats/internal/validation"
)

const codeFence = "```"

// Tokenizer filters messages into qualifying words.
type Tokenizer struct {
	extra map[string]struct{}
}

// NewTokenizer returns a tokenizer that drops the English stopwords plus
// any extra words given. Extra words are matched case-insensitively.
func NewTokenizer(extra ...string) *Tokenizer {
	t := &Tokenizer{}
	if len(extra) > 0 {
		t.extra = make(map[string]struct{}, len(extra))
		for _, w := range extra {
			t.extra[strings.ToLower(w)] = struct{}{}
		}
	}
	return t
}

// TokenizeAndFilter tokenizes messages with the default English stopwords.
func TokenizeAndFilter(messages []string) []string {
	return NewTokenizer().TokenizeAndFilter(messages)
}

// TokenizeAndFilter returns the qualifying words of messages in order.
func (t *Tokenizer) TokenizeAndFilter(messages []string) []string {
	var tokens []string
	for _, msg := range messages {
		tokens = t.appendTokens(tokens, msg)
	}
	return tokens
}

func (t *Tokenizer) appendTokens(tokens []string, msg string) []string {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" || isCodeBlock(trimmed) || isURL(trimmed) {
		return tokens
	}
	for _, field := range strings.Fields(trimmed) {
		if utf8.RuneCountInString(field) < 2 || !isAlpha(field) {
			continue
		}
		word := strings.ToLower(field)
		if t.isStopword(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

func (t *Tokenizer) isStopword(word string) bool {
	if IsStopword(word) {
		return true
	}
	_, ok := t.extra[word]
	return ok
}

func isCodeBlock(s string) bool {
	return strings.HasPrefix(s, codeFence) || strings.HasSuffix(s, codeFence)
}

// isURL reports whether the whole message is a single URL.
func isURL(s string) bool {
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}
	return validation.GetValidator().Var(s, "url") == nil
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
