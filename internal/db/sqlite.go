// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db // import "github.com/toeirei/keyvault/internal/db"

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/toeirei/keyvault/internal/model"
	"github.com/uptrace/bun"
)

// Compile-time interface satisfaction check.
var _ Store = (*SqliteStore)(nil)

// SqliteStore is the SQLite implementation of the Store interface.
type SqliteStore struct {
	bun *bun.DB
}

// Close releases the database connection.
func (s *SqliteStore) Close() error {
	if err := s.bun.Close(); err != nil {
		return storageErr("close database", err)
	}
	return nil
}

// Initialize applies the embedded migrations.
func (s *SqliteStore) Initialize(ctx context.Context) error {
	if err := RunMigrations(ctx, s.bun.DB); err != nil {
		return storageErr("initialize schema", err)
	}
	if v, err := s.SchemaVersion(ctx); err == nil {
		dbLogf("db: schema at %s", v)
	}
	return nil
}

// SchemaVersion returns the latest applied migration, or "" before
// Initialize.
func (s *SqliteStore) SchemaVersion(ctx context.Context) (string, error) {
	var versions []string
	if err := QueryRawInto(ctx, s.bun, &versions, "SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", storageErr("read schema version", err)
	}
	if len(versions) == 0 {
		return "", nil
	}
	return versions[0], nil
}

// StoreMasterConfig writes the singleton master config row, replacing any
// previous one in a single statement.
func (s *SqliteStore) StoreMasterConfig(ctx context.Context, salt, verifier []byte) error {
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		_, err := ExecRaw(ctx, tx,
			`INSERT INTO master_config (id, salt, verifier, created_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET salt = excluded.salt, verifier = excluded.verifier`,
			masterConfigID, salt, verifier, time.Now().UTC())
		return err
	})
	if err != nil {
		return storageErr("store master config", err)
	}
	dbLogf("db: master config stored")
	return nil
}

// GetMasterConfig returns the master config, or nil when the vault has not
// been initialized.
func (s *SqliteStore) GetMasterConfig(ctx context.Context) (*model.MasterConfig, error) {
	var m MasterConfigModel
	err := s.bun.NewSelect().Model(&m).Where("id = ?", masterConfigID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get master config", err)
	}
	mc := masterConfigModelToModel(m)
	return &mc, nil
}

const upsertCredentialSQL = `INSERT INTO credentials (service, username, secret_blob, updated_at) VALUES (?, ?, ?, ?)
	 ON CONFLICT (service) DO UPDATE SET
	   username = excluded.username,
	   secret_blob = excluded.secret_blob,
	   updated_at = excluded.updated_at`

// UpsertCredential inserts the credential or replaces the existing one with
// the same service.
func (s *SqliteStore) UpsertCredential(ctx context.Context, service, username string, blob []byte) error {
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		_, err := ExecRaw(ctx, tx, upsertCredentialSQL, service, username, blob, time.Now().UTC())
		return err
	})
	if err != nil {
		return storageErr(fmt.Sprintf("upsert credential %q", service), err)
	}
	dbLogf("db: credential %q upserted", service)
	return nil
}

// UpsertCredentials stores every credential inside a single transaction.
// A failing row rolls back the rows written before it.
func (s *SqliteStore) UpsertCredentials(ctx context.Context, creds []model.Credential) error {
	now := time.Now().UTC()
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		for _, c := range creds {
			if _, err := ExecRaw(ctx, tx, upsertCredentialSQL, c.Service, c.Username, c.SecretBlob, now); err != nil {
				return fmt.Errorf("%q: %w", c.Service, err)
			}
		}
		return nil
	})
	if err != nil {
		return storageErr("upsert credentials", err)
	}
	dbLogf("db: %d credentials upserted", len(creds))
	return nil
}

// GetCredential returns the credential for service, or nil when absent.
func (s *SqliteStore) GetCredential(ctx context.Context, service string) (*model.Credential, error) {
	var m CredentialModel
	err := s.bun.NewSelect().Model(&m).Where("service = ?", service).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(fmt.Sprintf("get credential %q", service), err)
	}
	c := credentialModelToModel(m)
	return &c, nil
}

// ListCredentials returns service and username of every credential,
// ordered by service ascending (byte-wise).
func (s *SqliteStore) ListCredentials(ctx context.Context) ([]model.CredentialSummary, error) {
	var rows []CredentialModel
	err := s.bun.NewSelect().
		Model(&rows).
		Column("service", "username", "updated_at").
		OrderExpr("service ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storageErr("list credentials", err)
	}

	out := make([]model.CredentialSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.CredentialSummary{
			Service:   r.Service,
			Username:  r.Username,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return out, nil
}

// AllRecords returns every credential including its encrypted blob. The
// rows are read inside one transaction so they form a single snapshot.
func (s *SqliteStore) AllRecords(ctx context.Context) ([]model.Credential, error) {
	var rows []CredentialModel
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(&rows).OrderExpr("service ASC").Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, storageErr("read all credentials", err)
	}

	out := make([]model.Credential, 0, len(rows))
	for _, r := range rows {
		out = append(out, credentialModelToModel(r))
	}
	return out, nil
}

// DeleteCredential removes the credential for service. Deleting a service
// that does not exist is a no-op.
func (s *SqliteStore) DeleteCredential(ctx context.Context, service string) error {
	var affected int64
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		res, err := ExecRaw(ctx, tx, "DELETE FROM credentials WHERE service = ?", service)
		if err != nil {
			return err
		}
		affected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return storageErr(fmt.Sprintf("delete credential %q", service), err)
	}
	dbLogf("db: delete credential %q removed %d row(s)", service, affected)
	return nil
}
