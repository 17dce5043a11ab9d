// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const kvTable = "kv"

// sqlite uses "?" placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func buildUpsertQuery(key string, value []byte, now time.Time) (string, []any, error) {
	return psql.
		Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, string(value), now.UTC()).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
}

func buildGetQuery(key string) (string, []any, error) {
	return psql.
		Select("value").
		From(kvTable).
		Where(sq.Eq{"key": key}).
		ToSql()
}

func buildDeleteQuery(key string) (string, []any, error) {
	return psql.
		Delete(kvTable).
		Where(sq.Eq{"key": key}).
		ToSql()
}

func buildKeysQuery(prefix string) (string, []any, error) {
	q := psql.Select("key").From(kvTable).OrderBy("key")
	if prefix != "" {
		q = q.Where("key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%")
	}
	return q.ToSql()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
