// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

// sqliteStore is the [DurableStore] backed by the "kv" table.
type sqliteStore struct {
	db     *DB
	logger *logger.Logger
	now    func() time.Time
}

// NewSQLiteStore wraps an open, migrated connection.
func NewSQLiteStore(db *DB, log *logger.Logger) DurableStore {
	if log == nil {
		log = logger.Nop()
	}
	return &sqliteStore{db: db, logger: log, now: time.Now}
}

func (s *sqliteStore) Set(ctx context.Context, key string, value any) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w (key=%s): %w", ErrEncodingValue, key, err)
	}

	query, args, err := buildUpsertQuery(key, payload, s.now())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		s.logger.Err(err).
			Str("func", "*sqliteStore.Set").
			Str("key", key).
			Msg("failed to upsert value")
		return fmt.Errorf("%w (key=%s): %w", ErrExecutingStatement, key, err)
	}

	return nil
}

func (s *sqliteStore) Get(ctx context.Context, key string, dst any) bool {
	found, err := s.Lookup(ctx, key, dst)
	return found && err == nil
}

func (s *sqliteStore) Lookup(ctx context.Context, key string, dst any) (bool, error) {
	query, args, err := buildGetQuery(key)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var raw string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		s.logger.Err(err).Str("func", "*sqliteStore.Lookup").Str("key", key).Msg("failed to read value")
		return false, fmt.Errorf("%w (key=%s): %w", ErrExecutingQuery, key, err)
	}

	return decodeInto(s.logger, key, []byte(raw), dst), nil
}

func (s *sqliteStore) Remove(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}

	query, args, err := buildDeleteQuery(key)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		s.logger.Err(err).Str("func", "*sqliteStore.Remove").Str("key", key).Msg("failed to delete value")
		return fmt.Errorf("%w (key=%s): %w", ErrExecutingStatement, key, err)
	}

	return nil
}

func (s *sqliteStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	query, args, err := buildKeysQuery(prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var k string
		if err = rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		keys = append(keys, k)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return keys, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// decodeInto treats a corrupt value as a miss: it is logged and dst is left
// untouched. Decoding goes through a scratch value so that a failure halfway
// through cannot leave dst partially filled.
func decodeInto(log *logger.Logger, key string, raw []byte, dst any) bool {
	if dst == nil {
		return true
	}
	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		log.Warn().Str("key", key).Msg("durable store destination is not a non-nil pointer")
		return false
	}

	scratch := reflect.New(target.Elem().Type())
	if err := json.Unmarshal(raw, scratch.Interface()); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("corrupt value in durable store, treating as missing")
		return false
	}
	target.Elem().Set(scratch.Elem())
	return true
}
