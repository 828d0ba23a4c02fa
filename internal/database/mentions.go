// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/guildstats/internal/models"
)

// NoMentions is stored when a message mentions nobody. It is distinct from
// NULL (not yet populated), from "" and from any valid id.
const NoMentions = "000"

const mentionSeparator = ","

// EncodeMentions serializes ids into the mentions column.
func EncodeMentions(ids []int64) string {
	if len(ids) == 0 {
		return NoMentions
	}
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteString(mentionSeparator)
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}

// DecodeMentions parses the mentions column. NULL, "" and NoMentions all
// decode to an empty list.
func DecodeMentions(raw sql.NullString) ([]int64, error) {
	if !raw.Valid {
		return nil, nil
	}
	s := strings.TrimSpace(raw.String)
	if s == "" || s == NoMentions {
		return nil, nil
	}

	parts := strings.Split(s, mentionSeparator)
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed mentions %q: %w", models.ErrInternal, s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
