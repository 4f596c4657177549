// Package migrate applies ordered schema migrations to a logical database
// before the service starts serving traffic.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
)

// Database is a migratable logical database. StoredVersion returns 0 when no
// version has been persisted yet. MigrateStep must be idempotent: a crash
// after a step's side effect but before the version is persisted causes the
// step to run again on the next start.
type Database interface {
	Name() string
	TargetVersion() int
	StoredVersion(ctx context.Context) (int, error)
	SetStoredVersion(ctx context.Context, version int) error
	MigrateStep(ctx context.Context, to int) error
}

// Run brings db up to its target version. Steps run strictly in ascending
// order, one at a time, since later migrations may depend on earlier ones
// having committed. The stored version is only advanced after every step
// succeeds, so a failed run retries from the same version. A returned error
// is fatal: the caller must not serve traffic on a partially-migrated
// schema.
func Run(ctx context.Context, db Database) error {
	stored, err := db.StoredVersion(ctx)
	if err != nil {
		return fmt.Errorf("migrate %s: read stored version: %w", db.Name(), err)
	}

	target := db.TargetVersion()
	if stored >= target {
		slog.Debug("schema up to date", "db", db.Name(), "version", stored)
		return nil
	}

	slog.Info("migrating schema", "db", db.Name(), "from", stored, "to", target)

	for to := stored + 1; to <= target; to++ {
		if err := db.MigrateStep(ctx, to); err != nil {
			return fmt.Errorf("migrate %s: step to version %d: %w", db.Name(), to, err)
		}
		slog.Info("migration step applied", "db", db.Name(), "version", to)
	}

	if err := db.SetStoredVersion(ctx, target); err != nil {
		return fmt.Errorf("migrate %s: persist version %d: %w", db.Name(), target, err)
	}

	return nil
}
