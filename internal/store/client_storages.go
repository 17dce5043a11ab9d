package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

// NewDurableStore initialises the client storage layer:
//  1. an in-memory DSN (":memory:" or "memory") yields a volatile store;
//  2. otherwise the sqlite file named by cfg.DB.DSN is opened (created if it
//     does not exist yet) and migrated.
func NewDurableStore(ctx context.Context, cfg config.ClientStorage, log *logger.Logger) (DurableStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	log.Info().Str("dsn", cfg.DB.DSN).Msg("creating durable store...")

	if isMemoryDSN(cfg.DB.DSN) {
		return NewMemoryStore(log), nil
	}

	db, err := NewConnectSQLite(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err = db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return NewSQLiteStore(db, log), nil
}

func isMemoryDSN(dsn string) bool {
	dsn = strings.TrimSpace(dsn)
	return dsn == "" || dsn == ":memory:" || dsn == "memory"
}
