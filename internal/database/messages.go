// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/guildstats/internal/models"
)

const insertMessageSQL = `INSERT INTO messages (
	guild_id, message_id, channel_id, author_id, aliased_author_id, content,
	epoch, is_bot, has_embed, num_attachments, ctx_id, mentions
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`

func insertArgs(m *models.Message) []interface{} {
	aliased := m.AliasedAuthorID
	if aliased == 0 {
		aliased = m.AuthorID
	}
	return []interface{}{
		m.GuildID, m.MessageID, m.ChannelID, m.AuthorID, aliased, m.Content,
		m.Epoch, m.IsBot, m.HasEmbed, m.NumAttachments, m.CtxID, EncodeMentions(m.Mentions),
	}
}

// Insert stores msg in its guild partition. It returns false without error
// when a message with the same id is already stored, and
// models.ErrNotFound when the partition does not exist.
func (db *DB) Insert(ctx context.Context, msg *models.Message) (bool, error) {
	if err := msg.Validate(); err != nil {
		return false, err
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	unlock, err := db.lockPartition(msg.GuildID)
	if err != nil {
		return false, err
	}
	defer unlock()

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, insertMessageSQL, insertArgs(msg)...)
	observe("insert", start, err)
	if err != nil {
		return false, internalErr("insert message", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, internalErr("read insert result", err)
	}
	return n > 0, nil
}

// InsertBatch stores msgs (all for guildID) in one transaction and returns
// how many were new. Duplicates are skipped.
func (db *DB) InsertBatch(ctx context.Context, guildID int64, msgs []models.Message) (int, error) {
	for i := range msgs {
		if msgs[i].GuildID != guildID {
			return 0, fmt.Errorf("%w: message %d belongs to guild %d, not %d",
				models.ErrInvalidArgument, msgs[i].MessageID, msgs[i].GuildID, guildID)
		}
		if err := msgs[i].Validate(); err != nil {
			return 0, err
		}
	}
	if len(msgs) == 0 {
		return 0, db.requirePartition(guildID)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	unlock, err := db.lockPartition(guildID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	start := time.Now()
	inserted, err := db.insertBatchTx(ctx, msgs)
	observe("insert_batch", start, err)
	return inserted, err
}

func (db *DB) insertBatchTx(ctx context.Context, msgs []models.Message) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, internalErr("begin insert transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertMessageSQL)
	if err != nil {
		return 0, internalErr("prepare insert", err)
	}
	defer closeWithLog(stmt, "insert statement")

	inserted := 0
	for i := range msgs {
		res, err := stmt.ExecContext(ctx, insertArgs(&msgs[i])...)
		if err != nil {
			return 0, internalErr("insert message", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, internalErr("commit insert", err)
	}
	committed = true
	return inserted, nil
}

// Delete removes one message permanently.
func (db *DB) Delete(ctx context.Context, guildID, messageID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	unlock, err := db.lockPartition(guildID)
	if err != nil {
		return err
	}
	defer unlock()

	start := time.Now()
	res, err := db.conn.ExecContext(ctx,
		"DELETE FROM messages WHERE guild_id = ? AND message_id = ?", guildID, messageID)
	observe("delete", start, err)
	if err != nil {
		return internalErr("delete message", err)
	}
	return requireAffected(res, guildID, messageID)
}

// EditContent replaces the content of one message. Nothing else changes.
func (db *DB) EditContent(ctx context.Context, guildID, messageID int64, content *string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	unlock, err := db.lockPartition(guildID)
	if err != nil {
		return err
	}
	defer unlock()

	start := time.Now()
	res, err := db.conn.ExecContext(ctx,
		"UPDATE messages SET content = ? WHERE guild_id = ? AND message_id = ?",
		content, guildID, messageID)
	observe("edit_content", start, err)
	if err != nil {
		return internalErr("edit message", err)
	}
	return requireAffected(res, guildID, messageID)
}

// RewriteAliasedAuthor collapses every message whose canonical author is
// from onto to, returning the number of rewritten rows.
func (db *DB) RewriteAliasedAuthor(ctx context.Context, guildID, from, to int64) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	unlock, err := db.lockPartition(guildID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	start := time.Now()
	res, err := db.conn.ExecContext(ctx,
		"UPDATE messages SET aliased_author_id = ? WHERE guild_id = ? AND aliased_author_id = ?",
		to, guildID, from)
	observe("rewrite_alias", start, err)
	if err != nil {
		return 0, internalErr("rewrite aliased author", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func requireAffected(res rowsAffecter, guildID, messageID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return internalErr("read affected rows", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: message %d in guild %d", models.ErrNotFound, messageID, guildID)
	}
	return nil
}
