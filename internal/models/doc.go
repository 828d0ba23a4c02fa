// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

/*
Package models defines the data structures shared by the guildstats store,
identity resolver, analytics engine, HTTP API and ingestion consumer.

Key Components:

  - Message: one chat message inside a guild partition
  - MessageFilter / TimeRange: query-time selection of messages
  - AliasMapping, IgnoreEntry, ConfigEntry: keyed guild configuration rows
  - LeaderboardEntry, MentionCount, WordCount, ActivityBucket, Profile: query results
  - ErrNotFound, ErrAlreadyExists, ErrInvalidArgument, ErrInternal: error taxonomy

All identifiers (guild, channel, user, message) are 64-bit snowflakes.
*/
package models
