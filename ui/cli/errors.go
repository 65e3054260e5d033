// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"

	"github.com/toeirei/keyvault/internal/i18n"
	"github.com/toeirei/keyvault/internal/prompt"
	"github.com/toeirei/keyvault/internal/vault"
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitDenied        = 2
	ExitUninitialized = 3
	ExitNotFound      = 4
)

// ExitError carries the exit code for a failed command. Its message is
// already localized for the user.
type ExitError struct {
	Code int
	Msg  string
	Err  error
}

func (e *ExitError) Error() string { return e.Msg }

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode returns the process exit code for an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitFailure
}

// userError converts an error from the vault layer into an ExitError with a
// localized message. Denied and guard-rejected attempts are reported
// identically.
func userError(err error) error {
	if err == nil {
		return nil
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return err
	}

	switch {
	case errors.Is(err, vault.ErrAuthentication), errors.Is(err, vault.ErrGuardRejected):
		return &ExitError{Code: ExitDenied, Msg: i18n.T("vault.access_denied"), Err: err}
	case errors.Is(err, vault.ErrVaultUninitialized):
		return &ExitError{Code: ExitUninitialized, Msg: i18n.T("vault.uninitialized"), Err: err}
	case errors.Is(err, vault.ErrAlreadyInitialized):
		return &ExitError{Code: ExitFailure, Msg: i18n.T("vault.already_initialized"), Err: err}
	case errors.Is(err, vault.ErrInvalidRecord):
		return &ExitError{Code: ExitFailure, Msg: i18n.T("vault.invalid_record"), Err: err}
	case errors.Is(err, vault.ErrEmptyPassword):
		return &ExitError{Code: ExitFailure, Msg: i18n.T("init.empty_password"), Err: err}
	case errors.Is(err, prompt.ErrCancelled):
		return &ExitError{Code: ExitFailure, Msg: i18n.T("add.aborted"), Err: err}
	case errors.Is(err, vault.ErrStorage):
		return &ExitError{Code: ExitFailure, Msg: i18n.T("vault.storage_error", err), Err: err}
	}
	return &ExitError{Code: ExitFailure, Msg: i18n.T("vault.error", err), Err: err}
}

func notFound(service string, err error) error {
	return &ExitError{Code: ExitNotFound, Msg: i18n.T("vault.not_found", service), Err: err}
}
