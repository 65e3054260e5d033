// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/toeirei/keyvault/internal/db"
	"github.com/toeirei/keyvault/internal/model"
)

const humanDelay = time.Second

var storeSeq atomic.Int64

func newTestStore(t *testing.T) *db.SqliteStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := db.Open(db.MemoryDSN(fmt.Sprintf("vault_%s_%d", name, storeSeq.Add(1))))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

// unlockedVault initializes a vault with password and returns the service
// together with a live session key.
func unlockedVault(t *testing.T, password string) (*Service, *SessionKey, db.Store) {
	t.Helper()
	store := newTestStore(t)
	auth := NewAuthenticator(store, nil)
	ctx := context.Background()

	require.NoError(t, auth.Initialize(ctx, Attempt{Password: password, Elapsed: humanDelay}))
	res, err := auth.Unlock(ctx, Attempt{Password: password, Elapsed: humanDelay})
	require.NoError(t, err)
	require.Equal(t, OutcomeUnlocked, res.Outcome)
	t.Cleanup(res.Key.Destroy)
	return NewService(store), res.Key, store
}

// countingStore wraps a Store and records how many calls were made.
type countingStore struct {
	db.Store
	mu    sync.Mutex
	calls []string
	fail  error
}

func (c *countingStore) record(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, name)
	return c.fail
}

func (c *countingStore) GetMasterConfig(ctx context.Context) (*model.MasterConfig, error) {
	if err := c.record("GetMasterConfig"); err != nil {
		return nil, err
	}
	return c.Store.GetMasterConfig(ctx)
}

func (c *countingStore) UpsertCredential(ctx context.Context, service, username string, blob []byte) error {
	if err := c.record("UpsertCredential"); err != nil {
		return err
	}
	return c.Store.UpsertCredential(ctx, service, username, blob)
}

func (c *countingStore) UpsertCredentials(ctx context.Context, creds []model.Credential) error {
	if err := c.record("UpsertCredentials"); err != nil {
		return err
	}
	return c.Store.UpsertCredentials(ctx, creds)
}

func (c *countingStore) GetCredential(ctx context.Context, service string) (*model.Credential, error) {
	if err := c.record("GetCredential"); err != nil {
		return nil, err
	}
	return c.Store.GetCredential(ctx, service)
}

func (c *countingStore) ListCredentials(ctx context.Context) ([]model.CredentialSummary, error) {
	if err := c.record("ListCredentials"); err != nil {
		return nil, err
	}
	return c.Store.ListCredentials(ctx)
}

func (c *countingStore) AllRecords(ctx context.Context) ([]model.Credential, error) {
	if err := c.record("AllRecords"); err != nil {
		return nil, err
	}
	return c.Store.AllRecords(ctx)
}

func (c *countingStore) DeleteCredential(ctx context.Context, service string) error {
	if err := c.record("DeleteCredential"); err != nil {
		return err
	}
	return c.Store.DeleteCredential(ctx, service)
}

func (c *countingStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}
