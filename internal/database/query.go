// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/guildstats/internal/models"
)

const messageColumns = `guild_id, message_id, channel_id, author_id, aliased_author_id, content,
	epoch, is_bot, has_embed, num_attachments, ctx_id, mentions`

// GroupBy is the dimension CountBy aggregates on.
type GroupBy string

const (
	GroupByAuthor  GroupBy = "aliased_author_id"
	GroupByChannel GroupBy = "channel_id"
)

// buildFilterConditions turns a MessageFilter into WHERE conditions scoped to
// one guild. Every value is bound as a parameter.
func buildFilterConditions(guildID int64, filter models.MessageFilter) (string, []interface{}) {
	conditions := []string{"guild_id = ?"}
	args := []interface{}{guildID}

	if filter.ChannelID != nil {
		conditions = append(conditions, "channel_id = ?")
		args = append(args, *filter.ChannelID)
	}
	if filter.AuthorID != nil {
		conditions = append(conditions, "aliased_author_id = ?")
		args = append(args, *filter.AuthorID)
	}
	if filter.TimeRange != nil {
		conditions = append(conditions, "epoch >= ?")
		args = append(args, filter.TimeRange.Start)
		if filter.TimeRange.End != 0 {
			conditions = append(conditions, "epoch < ?")
			args = append(args, filter.TimeRange.End)
		}
	}
	if filter.RequireContent {
		conditions = append(conditions, "content IS NOT NULL AND trim(content) <> ''")
	}
	if filter.ExcludeBots {
		conditions = append(conditions, "NOT is_bot")
	}
	conditions, args = appendNotInClause("channel_id", filter.ExcludeChannels, conditions, args)
	conditions, args = appendNotInClause("aliased_author_id", filter.ExcludeAuthors, conditions, args)

	return strings.Join(conditions, " AND "), args
}

func appendNotInClause(column string, ids []int64, conditions []string, args []interface{}) ([]string, []interface{}) {
	if len(ids) == 0 {
		return conditions, args
	}
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	conditions = append(conditions, fmt.Sprintf("%s NOT IN (%s)", column, strings.Join(placeholders, ", ")))
	return conditions, args
}

func validateFilter(filter models.MessageFilter) error {
	if filter.TimeRange != nil {
		return filter.TimeRange.Validate()
	}
	return nil
}

// Query returns every message of guildID matching filter. Rows come back in
// epoch order, but callers must not rely on any ordering contract.
func (db *DB) Query(ctx context.Context, guildID int64, filter models.MessageFilter) ([]models.Message, error) {
	var out []models.Message
	err := db.Scan(ctx, guildID, filter, func(m *models.Message) error {
		out = append(out, *m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Scan streams matching messages to fn without materializing the result.
// An error from fn stops the scan and is returned unchanged.
func (db *DB) Scan(ctx context.Context, guildID int64, filter models.MessageFilter, fn func(*models.Message) error) error {
	if err := db.requirePartition(guildID); err != nil {
		return err
	}
	if err := validateFilter(filter); err != nil {
		return err
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := buildFilterConditions(guildID, filter)
	query := fmt.Sprintf("SELECT %s FROM messages WHERE %s ORDER BY epoch, message_id", messageColumns, where)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		observe("scan", start, err)
		return internalErr("query messages", err)
	}
	defer closeWithLog(rows, "message rows")

	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			observe("scan", start, err)
			return err
		}
		if err := fn(msg); err != nil {
			observe("scan", start, nil)
			return err
		}
	}
	err = rows.Err()
	observe("scan", start, err)
	if err != nil {
		return internalErr("iterate messages", err)
	}
	return nil
}

func scanMessage(rows *sql.Rows) (*models.Message, error) {
	var (
		m        models.Message
		content  sql.NullString
		ctxID    sql.NullInt64
		mentions sql.NullString
	)
	if err := rows.Scan(&m.GuildID, &m.MessageID, &m.ChannelID, &m.AuthorID, &m.AliasedAuthorID,
		&content, &m.Epoch, &m.IsBot, &m.HasEmbed, &m.NumAttachments, &ctxID, &mentions); err != nil {
		return nil, internalErr("scan message", err)
	}
	if content.Valid {
		s := content.String
		m.Content = &s
	}
	if ctxID.Valid {
		id := ctxID.Int64
		m.CtxID = &id
	}
	ids, err := DecodeMentions(mentions)
	if err != nil {
		return nil, err
	}
	m.Mentions = ids
	return &m, nil
}

// Count returns the number of messages of guildID matching filter.
func (db *DB) Count(ctx context.Context, guildID int64, filter models.MessageFilter) (int64, error) {
	if err := db.requirePartition(guildID); err != nil {
		return 0, err
	}
	if err := validateFilter(filter); err != nil {
		return 0, err
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := buildFilterConditions(guildID, filter)
	start := time.Now()
	var n int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages WHERE "+where, args...).Scan(&n)
	observe("count", start, err)
	if err != nil {
		return 0, internalErr("count messages", err)
	}
	return n, nil
}

// CountBy returns message counts of guildID grouped by the given dimension.
// Groups with no matching messages are absent.
func (db *DB) CountBy(ctx context.Context, guildID int64, group GroupBy, filter models.MessageFilter) (map[int64]int64, error) {
	if group != GroupByAuthor && group != GroupByChannel {
		return nil, fmt.Errorf("%w: unknown grouping %q", models.ErrInvalidArgument, group)
	}
	if err := db.requirePartition(guildID); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := buildFilterConditions(guildID, filter)
	// group is one of two constants, never caller input
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM messages WHERE %s GROUP BY %s", group, where, group)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		observe("count_by", start, err)
		return nil, internalErr("group messages", err)
	}
	defer closeWithLog(rows, "group rows")

	counts := make(map[int64]int64)
	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			observe("count_by", start, err)
			return nil, internalErr("scan group", err)
		}
		counts[id] = n
	}
	err = rows.Err()
	observe("count_by", start, err)
	if err != nil {
		return nil, internalErr("iterate groups", err)
	}
	return counts, nil
}

// Epochs returns the timestamps of matching messages. Activity series only
// need the time dimension, so this avoids decoding whole rows.
func (db *DB) Epochs(ctx context.Context, guildID int64, filter models.MessageFilter) ([]int64, error) {
	if err := db.requirePartition(guildID); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := buildFilterConditions(guildID, filter)
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, "SELECT epoch FROM messages WHERE "+where, args...)
	if err != nil {
		observe("epochs", start, err)
		return nil, internalErr("query epochs", err)
	}
	defer closeWithLog(rows, "epoch rows")

	var epochs []int64
	for rows.Next() {
		var e int64
		if err := rows.Scan(&e); err != nil {
			observe("epochs", start, err)
			return nil, internalErr("scan epoch", err)
		}
		epochs = append(epochs, e)
	}
	err = rows.Err()
	observe("epochs", start, err)
	if err != nil {
		return nil, internalErr("iterate epochs", err)
	}
	return epochs, nil
}
