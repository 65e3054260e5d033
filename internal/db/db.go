// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db // import "github.com/toeirei/keyvault/internal/db"

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var (
	//go:embed migrations
	embeddedMigrations embed.FS
	// sqlOpenFunc allows tests to override database opening behavior.
	sqlOpenFunc = sql.Open
)

const migrationsPath = "migrations/sqlite"

// Connection pragmas applied to every vault file. synchronous(FULL) makes a
// committed transaction durable across power loss; secure_delete(ON)
// overwrites freed pages so deleted secret blobs do not linger in the file.
const pragmas = "_pragma=busy_timeout(5000)" +
	"&_pragma=journal_mode(WAL)" +
	"&_pragma=synchronous(FULL)" +
	"&_pragma=foreign_keys(ON)" +
	"&_pragma=secure_delete(ON)"

// PathDSN builds the DSN for a vault file at the given filesystem path.
func PathDSN(p string) string {
	u := url.URL{Scheme: "file", Opaque: p, RawQuery: pragmas}
	return u.String()
}

// MemoryDSN builds a DSN for a named, shared in-memory database. The
// database lives as long as the store holding it stays open.
func MemoryDSN(name string) string {
	// WAL is not applicable to in-memory databases.
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)",
		url.PathEscape(name))
}

// Open opens the SQLite database identified by dsn and returns a store
// backed by it. The schema is not touched; call Initialize before use.
func Open(dsn string) (*SqliteStore, error) {
	start := time.Now()
	sqlDB, err := sqlOpenFunc("sqlite", dsn)
	if err != nil {
		return nil, storageErr("open database", err)
	}

	// A single connection serializes every reader and writer in the process,
	// which is what keeps AllRecords a consistent snapshot. It also keeps a
	// shared in-memory database alive for as long as the store is open.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, storageErr("ping database", err)
	}
	dbLogf("db: opened sqlite in %s", time.Since(start))

	return newSqliteStore(sqlDB), nil
}

func newSqliteStore(sqlDB *sql.DB) *SqliteStore {
	return &SqliteStore{bun: bun.NewDB(sqlDB, sqlitedialect.New())}
}

// RunMigrations applies the embedded schema migrations that have not been
// recorded in schema_migrations yet. Each migration runs in its own
// transaction together with its bookkeeping row.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	start := time.Now()
	entries, err := fs.ReadDir(embeddedMigrations, migrationsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read embedded migrations (%s): %w", migrationsPath, err)
	}

	var ups []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name := e.Name(); strings.HasSuffix(name, ".up.sql") {
			ups = append(ups, name)
		}
	}
	sort.Strings(ups)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMP)`); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	for _, fname := range ups {
		version := strings.TrimSuffix(fname, ".up.sql")

		var exists int
		err := db.QueryRowContext(ctx, "SELECT 1 FROM schema_migrations WHERE version = ?", version).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check migration version %s: %w", version, err)
		}

		data, err := embeddedMigrations.ReadFile(path.Join(migrationsPath, fname))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", fname, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx, string(data)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)", version, time.Now().UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", version, err)
		}
		dbLogf("db: applied migration %s", version)
	}

	dbLogf("db: migrations completed in %s", time.Since(start))
	return nil
}
