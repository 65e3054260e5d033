// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"time"
)

// Maintain compacts the vault file and verifies its integrity. It runs
// PRAGMA optimize, VACUUM (which also rewrites pages freed by deletions),
// a WAL checkpoint and PRAGMA integrity_check. It must not be called inside
// a transaction.
func (s *SqliteStore) Maintain(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	sqlDB := s.bun.DB
	// PRAGMA optimize may not be useful for small or in-memory databases;
	// treat its failure as non-fatal.
	if _, err := sqlDB.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		dbLogf("db: sqlite optimize failed (ignored): %v", err)
	}
	if _, err := sqlDB.ExecContext(ctx, "VACUUM;"); err != nil {
		return storageErr("vacuum", err)
	}
	// Not supported for in-memory databases; ignore errors.
	_, _ = sqlDB.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE);")

	var res string
	if err := sqlDB.QueryRowContext(ctx, "PRAGMA integrity_check;").Scan(&res); err != nil {
		return storageErr("integrity check", err)
	}
	if res != "ok" {
		return storageErr("integrity check", fmt.Errorf("sqlite integrity_check reported: %s", res))
	}
	return nil
}
