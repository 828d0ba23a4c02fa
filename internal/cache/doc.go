// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

/*
Package cache provides a generic, thread-safe LRU cache with per-entry TTL.

The ingestion router uses it as the backing store for duplicate detection:
every event is keyed by guild, message id and kind, and Seen answers "was
this key recorded within the TTL" while recording it in the same critical
section.

	dedup := cache.New[string, struct{}](10000, 10*time.Minute)
	if dedup.Seen("42/1001/message.created", struct{}{}) {
		// redelivery, drop it
	}

Capacity bounds memory. Once full, the least recently used key is evicted,
so a very old duplicate may slip through; the store's insert is idempotent
on message id, which makes that harmless.
*/
package cache
