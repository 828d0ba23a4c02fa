// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package textanalysis

import (
	"sort"

	"github.com/tomtom215/guildstats/internal/models"
)

// frequencies counts words and remembers first-seen order.
type frequencies struct {
	counts map[string]int64
	order  []string
}

func newFrequencies() *frequencies {
	return &frequencies{counts: make(map[string]int64)}
}

func (f *frequencies) add(word string, n int64) {
	if _, ok := f.counts[word]; !ok {
		f.order = append(f.order, word)
	}
	f.counts[word] += n
}

func countTokens(tokens []string) *frequencies {
	f := newFrequencies()
	for _, w := range tokens {
		f.add(w, 1)
	}
	return f
}

// merge folds other into f. Words new to f keep other's first-seen order
// after every word f already has.
func (f *frequencies) merge(other *frequencies) {
	for _, w := range other.order {
		f.add(w, other.counts[w])
	}
}

// top ranks by count descending. Equal counts keep first-seen order.
// amount <= 0 returns every word.
func (f *frequencies) top(amount int) []models.WordCount {
	out := make([]models.WordCount, len(f.order))
	for i, w := range f.order {
		out[i] = models.WordCount{Word: w, Count: f.counts[w]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if amount > 0 && amount < len(out) {
		out = out[:amount]
	}
	return out
}

// TopWords ranks tokens by frequency, ties broken by first appearance.
// amount <= 0 returns every distinct word.
func TopWords(tokens []string, amount int) []models.WordCount {
	return countTokens(tokens).top(amount)
}
