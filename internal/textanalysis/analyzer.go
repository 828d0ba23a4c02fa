// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package textanalysis

import (
	"context"
	"fmt"

	"github.com/gammazero/workerpool"

	"github.com/tomtom215/guildstats/internal/config"
	"github.com/tomtom215/guildstats/internal/logging"
	"github.com/tomtom215/guildstats/internal/metrics"
	"github.com/tomtom215/guildstats/internal/models"
)

const (
	DefaultBatchSize = 10000
	DefaultWorkers   = 8
)

// Analyzer computes word and letter frequencies over large message sets by
// processing fixed-size batches on a bounded worker pool and summing the
// results.
type Analyzer struct {
	batchSize int
	workers   int
	stopwords []string

	// tokenize and countLetters are swapped in tests to simulate failing
	// batches.
	tokenize     func(t *Tokenizer, batch []string) []string
	countLetters func(batch []string) map[rune]int64
}

// NewAnalyzer builds an Analyzer from the analytics config. Zero values
// fall back to the defaults.
func NewAnalyzer(cfg *config.AnalyticsConfig) *Analyzer {
	a := &Analyzer{
		batchSize:    DefaultBatchSize,
		workers:      DefaultWorkers,
		tokenize:     (*Tokenizer).TokenizeAndFilter,
		countLetters: CountLetters,
	}
	if cfg != nil {
		if cfg.BatchSize > 0 {
			a.batchSize = cfg.BatchSize
		}
		if cfg.Workers > 0 {
			a.workers = cfg.Workers
		}
		a.stopwords = append(a.stopwords, cfg.Stopwords...)
	}
	return a
}

type batchResult[T any] struct {
	index     int
	value     T
	failed    bool
	abandoned bool
}

// batchRun is the outcome of fanning one computation over every batch.
// Completed holds the results of batches that finished, in input order.
type batchRun[T any] struct {
	completed []T
	batches   int
	degraded  bool
	partial   bool
}

// Analyze returns the top amount words of messages. extraStopwords extend
// the configured list for this call only.
//
// A batch that fails is left out of the merge and marks the result
// Degraded. Cancelling ctx stops waiting for outstanding batches and
// returns what completed with Partial set. Neither is reported as an error.
func (a *Analyzer) Analyze(ctx context.Context, messages []string, amount int, extraStopwords ...string) (models.WordFrequencies, error) {
	if amount <= 0 {
		return models.WordFrequencies{}, fmt.Errorf("%w: amount must be positive", models.ErrInvalidArgument)
	}
	if len(messages) == 0 {
		return models.WordFrequencies{Words: []models.WordCount{}}, nil
	}

	stop := make([]string, 0, len(a.stopwords)+len(extraStopwords))
	stop = append(append(stop, a.stopwords...), extraStopwords...)
	tok := NewTokenizer(stop...)

	run := fanOut(ctx, a.workers, splitBatches(messages, a.batchSize), func(batch []string) *frequencies {
		return countTokens(a.tokenize(tok, batch))
	})

	merged := newFrequencies()
	for _, f := range run.completed {
		merged.merge(f)
	}
	run.warnIncomplete(ctx, "Word frequency computed from incomplete input")
	return models.WordFrequencies{
		Words:    merged.top(amount),
		Degraded: run.degraded,
		Partial:  run.partial,
	}, nil
}

// LetterFrequencies counts every letter of messages, case folded, on the
// same batched worker pool as Analyze. Failure and cancellation set
// Degraded and Partial the same way.
func (a *Analyzer) LetterFrequencies(ctx context.Context, messages []string) (models.LetterFrequencies, error) {
	if len(messages) == 0 {
		return models.LetterFrequencies{Letters: []models.LetterCount{}}, nil
	}

	run := fanOut(ctx, a.workers, splitBatches(messages, a.batchSize), a.countLetters)

	merged := make(map[rune]int64)
	for _, counts := range run.completed {
		for r, n := range counts {
			merged[r] += n
		}
	}
	run.warnIncomplete(ctx, "Letter frequency computed from incomplete input")
	return models.LetterFrequencies{
		Letters:  rankLetters(merged),
		Degraded: run.degraded,
		Partial:  run.partial,
	}, nil
}

// fanOut runs fn over every batch on a bounded worker pool. A panicking
// batch is recorded as failed; cancelling ctx abandons what has not
// finished.
func fanOut[T any](ctx context.Context, workers int, batches [][]string, fn func([]string) T) batchRun[T] {
	results := make(chan batchResult[T], len(batches))

	wp := workerpool.New(workers)
	for i, batch := range batches {
		i, batch := i, batch
		wp.Submit(func() {
			results <- runBatch(ctx, i, batch, fn)
		})
	}

	collected := make([]*T, len(batches))
	run := batchRun[T]{batches: len(batches)}
	received := 0

collect:
	for received < len(batches) {
		select {
		case r := <-results:
			received++
			switch {
			case r.failed:
				run.degraded = true
				metrics.RecordTextBatch("failed")
			case r.abandoned:
				run.partial = true
				metrics.RecordTextBatch("abandoned")
			default:
				v := r.value
				collected[r.index] = &v
				metrics.RecordTextBatch("ok")
			}
		case <-ctx.Done():
			run.partial = true
			for i := received; i < len(batches); i++ {
				metrics.RecordTextBatch("abandoned")
			}
			break collect
		}
	}

	if run.partial {
		// Running batches finish into the buffered channel; queued ones are dropped.
		go wp.Stop()
	} else {
		wp.StopWait()
	}

	for _, v := range collected {
		if v != nil {
			run.completed = append(run.completed, *v)
		}
	}
	return run
}

func (r batchRun[T]) warnIncomplete(ctx context.Context, msg string) {
	if !r.degraded && !r.partial {
		return
	}
	logging.Ctx(ctx).Warn().
		Int("batches", r.batches).
		Bool("degraded", r.degraded).
		Bool("partial", r.partial).
		Msg(msg)
}

func runBatch[T any](ctx context.Context, index int, batch []string, fn func([]string) T) (res batchResult[T]) {
	res.index = index
	if ctx.Err() != nil {
		res.abandoned = true
		return res
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Int("batch", index).Interface("panic", r).Msg("Text analysis batch failed")
			res = batchResult[T]{index: index, failed: true}
		}
	}()
	res.value = fn(batch)
	return res
}

func splitBatches(messages []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	batches := make([][]string, 0, (len(messages)+size-1)/size)
	for start := 0; start < len(messages); start += size {
		end := start + size
		if end > len(messages) {
			end = len(messages)
		}
		batches = append(batches, messages[start:end])
	}
	return batches
}
