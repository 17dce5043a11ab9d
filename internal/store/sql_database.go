package store

import (
	"context"
	"database/sql"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/migrations"
)

// DB wraps the sqlite connection pool together with the logger used for
// driver-level diagnostics.
type DB struct {
	*sql.DB
	logger *logger.Logger
}

// Migrate applies the embedded schema migrations.
func (db *DB) Migrate(ctx context.Context) error {
	applied, err := migrations.Migrate(ctx, db.DB)
	if err != nil {
		return err
	}
	if applied > 0 {
		db.logger.Info().Int("applied", applied).Msg("durable store schema migrated")
	}
	return nil
}
