// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"errors"

	"github.com/toeirei/keyvault/internal/crypto"
	"github.com/toeirei/keyvault/internal/db"
)

var (
	// ErrGuardRejected is returned by Initialize when the anti-automation
	// guard refuses the attempt. Unlock reports the same condition as a
	// plain OutcomeDenied.
	ErrGuardRejected = errors.New("rejected by anti-automation guard")
	// ErrVaultUninitialized is returned by operations that need a master
	// config when none exists.
	ErrVaultUninitialized = errors.New("vault is not initialized")
	// ErrAlreadyInitialized is returned by Initialize when a master config
	// already exists.
	ErrAlreadyInitialized = errors.New("vault is already initialized")
	// ErrRecordNotFound is returned when no credential exists for a service.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidRecord is returned for empty services or usernames.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrEmptyPassword is returned when a master password is empty.
	ErrEmptyPassword = errors.New("master password must not be empty")
	// ErrSessionClosed is returned when a destroyed session key is used.
	ErrSessionClosed = errors.New("session key has been destroyed")

	// Re-exported so callers only need this package for errors.Is checks.
	ErrAuthentication = crypto.ErrAuthentication
	ErrDerivation     = crypto.ErrDerivation
	ErrStorage        = db.ErrStorage
)
