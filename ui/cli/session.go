// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/toeirei/keyvault/internal/db"
	"github.com/toeirei/keyvault/internal/guard"
	"github.com/toeirei/keyvault/internal/i18n"
	"github.com/toeirei/keyvault/internal/logging"
	"github.com/toeirei/keyvault/internal/vault"
)

// openStore opens the configured vault file. Unless create is set, a
// missing file is reported as an uninitialized vault and nothing is
// created on disk.
func (a *app) openStore(ctx context.Context, create bool) (*db.SqliteStore, error) {
	path := a.cfg.Vault.Path
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		if !create {
			return nil, vault.ErrVaultUninitialized
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("could not create vault directory: %w", err)
		}
	}

	store, err := db.Open(db.PathDSN(path))
	if err != nil {
		return nil, err
	}
	if err := store.Initialize(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		logging.Warnf("could not restrict permissions of %s: %v", path, err)
	}
	return store, nil
}

// newGuard builds the guard from the configuration. The random challenge is
// only added when challenge is set.
func (a *app) newGuard(challenge bool) *guard.Guard {
	g := guard.New(a.cfg.Guard.Threshold)
	if challenge {
		length := a.cfg.Guard.ChallengeLength
		if length <= 0 {
			length = guard.DefaultChallengeLength
		}
		g.WithChallenge(guard.LineReaderFunc(a.prompter.Challenge), length)
	}
	return g
}

// unlock prompts for the master password and returns a live session key.
// Uninitialized vaults are detected before prompting.
func (a *app) unlock(ctx context.Context, store db.Store, challenge bool) (*vault.SessionKey, error) {
	auth := vault.NewAuthenticator(store, a.newGuard(challenge))

	ok, err := auth.Initialized(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, vault.ErrVaultUninitialized
	}

	pw, elapsed, err := a.prompter.ReadPassword(i18n.T("prompt.master_password"))
	if err != nil {
		return nil, err
	}
	res, err := auth.Unlock(ctx, vault.Attempt{Password: pw, Elapsed: elapsed})
	if err != nil {
		return nil, err
	}

	switch res.Outcome {
	case vault.OutcomeUnlocked:
		return res.Key, nil
	case vault.OutcomeUninitialized:
		return nil, vault.ErrVaultUninitialized
	}
	logging.Debugf("unlock denied in state %s", auth.State())
	return nil, vault.ErrAuthentication
}

// liveSessions counts sessions that have been opened but not closed.
var liveSessions atomic.Int32

// session is an unlocked vault for the duration of one command.
type session struct {
	store *db.SqliteStore
	key   *vault.SessionKey
	svc   *vault.Service

	closed bool
}

func (s *session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.key.Destroy()
	_ = s.store.Close()
	liveSessions.Add(-1)
}

// openSession opens the vault and unlocks it. The caller must Close the
// returned session.
func (a *app) openSession(ctx context.Context, challenge bool) (*session, error) {
	store, err := a.openStore(ctx, false)
	if err != nil {
		return nil, err
	}
	key, err := a.unlock(ctx, store, challenge)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	liveSessions.Add(1)
	return &session{store: store, key: key, svc: vault.NewService(store)}, nil
}
