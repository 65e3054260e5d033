// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/toeirei/keyvault/internal/model"
)

// Store defines the persistence contract of the vault. Absent rows are
// reported as a nil result with a nil error.
type Store interface {
	// Initialize creates the schema if absent. Safe to call on every start.
	Initialize(ctx context.Context) error

	// Master config methods
	StoreMasterConfig(ctx context.Context, salt, verifier []byte) error
	GetMasterConfig(ctx context.Context) (*model.MasterConfig, error)

	// Credential methods
	UpsertCredential(ctx context.Context, service, username string, blob []byte) error
	// UpsertCredentials writes all creds in one transaction; on failure
	// none of them is stored.
	UpsertCredentials(ctx context.Context, creds []model.Credential) error
	GetCredential(ctx context.Context, service string) (*model.Credential, error)
	ListCredentials(ctx context.Context) ([]model.CredentialSummary, error)
	AllRecords(ctx context.Context) ([]model.Credential, error)
	DeleteCredential(ctx context.Context, service string) error

	Close() error
}
