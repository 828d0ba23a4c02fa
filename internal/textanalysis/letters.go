// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package textanalysis

import (
	"sort"
	"unicode"

	"github.com/tomtom215/guildstats/internal/models"
)

// CountLetters counts the letters of batch after lower-casing. Digits,
// punctuation, whitespace and symbols are skipped.
func CountLetters(batch []string) map[rune]int64 {
	counts := make(map[rune]int64)
	for _, msg := range batch {
		for _, r := range msg {
			if unicode.IsLetter(r) {
				counts[unicode.ToLower(r)]++
			}
		}
	}
	return counts
}

// rankLetters orders by count descending, then letter ascending.
func rankLetters(counts map[rune]int64) []models.LetterCount {
	out := make([]models.LetterCount, 0, len(counts))
	for r, n := range counts {
		out = append(out, models.LetterCount{Letter: string(r), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Letter < out[j].Letter
	})
	return out
}
