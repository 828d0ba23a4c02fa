// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package models

// AliasMapping maps a secondary identity onto a canonical one.
type AliasMapping struct {
	GuildID     int64 `json:"guild_id"`
	CanonicalID int64 `json:"canonical_id"`
	AliasID     int64 `json:"alias_id"`
}

// IgnoreScope is the kind of target an ignore entry excludes.
type IgnoreScope string

const (
	IgnoreChannel IgnoreScope = "channel"
	IgnoreUser    IgnoreScope = "user"
)

// IgnoreEntry excludes a channel or user from query results. It never
// deletes data.
type IgnoreEntry struct {
	GuildID  int64       `json:"guild_id"`
	Scope    IgnoreScope `json:"scope"`
	TargetID int64       `json:"target_id"`
}

// Guild config keys.
const (
	ConfigTimezone = "timezone"
	ConfigPaused   = "paused"
	ConfigStopword = "stopword"
)

// ConfigEntry is a keyed per-guild setting.
type ConfigEntry struct {
	GuildID int64  `json:"guild_id"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}
