// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStorage wraps every I/O or transactional failure of the store. The
	// transaction that produced it has been rolled back.
	ErrStorage = errors.New("storage failure")
	// ErrLocked is returned when another process holds the vault file lock.
	ErrLocked = errors.New("vault file is locked")
	// ErrConstraint is returned when a row violates a schema constraint.
	ErrConstraint = errors.New("constraint violation")
)

// MapDBError inspects low-level driver errors and maps the ones callers may
// want to act on to package sentinels. The original error stays in the
// chain. This is a string-based mapping so the driver package does not leak
// into callers.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	le := strings.ToLower(err.Error())
	switch {
	case strings.Contains(le, "database is locked") || strings.Contains(le, "sqlite_busy"):
		return fmt.Errorf("%w: %w", ErrLocked, err)
	case strings.Contains(le, "constraint failed") || strings.Contains(le, "sqlite_constraint"):
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	}
	return err
}

// storageErr wraps err as an ErrStorage for the named operation.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, MapDBError(err))
}
