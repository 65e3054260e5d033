// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/toeirei/keyvault/internal/i18n"
	"github.com/toeirei/keyvault/internal/logging"
	"github.com/toeirei/keyvault/internal/model"
	"github.com/toeirei/keyvault/internal/passgen"
	"github.com/toeirei/keyvault/internal/vault"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new vault and set the master password",
		Long: `Creates the vault file, generates a random salt and stores a verifier for the
master password. The password is entered twice and followed by a short
security check that must be typed back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return userError(a.runInit(cmd))
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	ctx := cmd.Context()
	store, err := a.openStore(ctx, true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	auth := vault.NewAuthenticator(store, a.newGuard(true))
	ok, err := auth.Initialized(ctx)
	if err != nil {
		return err
	}
	if ok {
		return vault.ErrAlreadyInitialized
	}

	pw, elapsed, err := a.prompter.ReadPassword(i18n.T("prompt.new_master_password"))
	if err != nil {
		return err
	}
	if pw == "" {
		return vault.ErrEmptyPassword
	}
	again, _, err := a.prompter.ReadPassword(i18n.T("prompt.repeat_master_password"))
	if err != nil {
		return err
	}
	if again != pw {
		return &ExitError{Code: ExitFailure, Msg: i18n.T("init.password_mismatch")}
	}

	if err := auth.Initialize(ctx, vault.Attempt{Password: pw, Elapsed: elapsed}); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("init.success", a.cfg.Vault.Path))
	return nil
}

func newAddCmd(a *app) *cobra.Command {
	var (
		username string
		generate bool
		length   int
		force    bool
	)
	cmd := &cobra.Command{
		Use:   "add <service>",
		Short: "Store or replace the credential for a service",
		Long: `Stores a username and secret for a service. The secret is read from a hidden
prompt, or generated with --gen and printed once. An existing credential for
the same service is replaced after confirmation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return &ExitError{Code: ExitFailure, Msg: i18n.T("add.username_required")}
			}
			return userError(a.runAdd(cmd, args[0], username, generate, length, force))
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username for the service (required)")
	cmd.Flags().BoolVarP(&generate, "gen", "g", false, "generate a random secret")
	cmd.Flags().IntVarP(&length, "length", "l", passgen.DefaultLength, "length of the generated secret")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing credential without asking")
	return cmd
}

func (a *app) runAdd(cmd *cobra.Command, service, username string, generate bool, length int, force bool) error {
	ctx := cmd.Context()
	s, err := a.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	exists, err := s.svc.Exists(ctx, s.key, service)
	if err != nil {
		return err
	}
	if exists && !force {
		ok, err := a.prompter.Confirm(i18n.T("add.overwrite", service))
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("add.aborted"))
			return nil
		}
	}

	var secret string
	if generate {
		secret, err = passgen.Generate(length)
		if err != nil {
			return err
		}
	} else {
		secret, _, err = a.prompter.ReadPassword(i18n.T("prompt.secret", service))
		if err != nil {
			return err
		}
	}

	if err := s.svc.Store(ctx, s.key, service, username, secret); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if generate {
		_, _ = fmt.Fprintln(out, i18n.T("add.generated", secret))
	}
	_, _ = fmt.Fprintln(out, i18n.T("add.saved", service))
	return nil
}

func newGetCmd(a *app) *cobra.Command {
	var copyToClipboard bool
	cmd := &cobra.Command{
		Use:   "get <service>",
		Short: "Show the credential for a service",
		Long: `Prints the username and secret stored for a service. With --copy the secret is
placed on the clipboard instead and cleared again after clipboard.clear_after.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return userError(a.runGet(cmd, args[0], copyToClipboard))
		},
	}
	cmd.Flags().BoolVarP(&copyToClipboard, "copy", "c", false, "copy the secret to the clipboard")
	return cmd
}

// fetch unlocks the vault for a single lookup. The session is closed before
// it returns.
func (a *app) fetch(ctx context.Context, service string) (*model.PlainCredential, error) {
	s, err := a.openSession(ctx, false)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	cred, err := s.svc.Fetch(ctx, s.key, service)
	if errors.Is(err, vault.ErrRecordNotFound) {
		return nil, notFound(service, err)
	}
	return cred, err
}

func (a *app) runGet(cmd *cobra.Command, service string, copyToClipboard bool) error {
	ctx := cmd.Context()
	cred, err := a.fetch(ctx, service)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, i18n.T("get.username", cred.Username))
	if !copyToClipboard {
		_, _ = fmt.Fprintln(out, i18n.T("get.secret", cred.Secret))
		return nil
	}

	if err := clipboardWriteAll(cred.Secret); err != nil {
		return &ExitError{Code: ExitFailure, Msg: i18n.T("get.clipboard_error", err), Err: err}
	}
	clearAfter := a.cfg.Clipboard.ClearAfter
	_, _ = fmt.Fprintln(out, i18n.T("get.copied", service, clearAfter))
	clearClipboardAfter(ctx, cred.Secret, clearAfter)
	_, _ = fmt.Fprintln(out, i18n.T("get.cleared"))
	return nil
}

// clearClipboardAfter waits for d (or cancellation) and then empties the
// clipboard if it still holds secret.
func clearClipboardAfter(ctx context.Context, secret string, d time.Duration) {
	if d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
	}
	current, err := clipboardReadAll()
	if err != nil {
		logging.Debugf("clipboard read failed: %v", err)
	}
	if err == nil && current != secret {
		// Something else was copied meanwhile.
		return
	}
	if err := clipboardWriteAll(""); err != nil {
		logging.Warnf("could not clear clipboard: %v", err)
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored services and usernames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return userError(a.runList(cmd))
		},
	}
}

func (a *app) runList(cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, err := a.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.svc.List(ctx, s.key)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, i18n.T("list.empty"))
		return nil
	}

	width := len(i18n.T("list.service"))
	for _, e := range entries {
		if len(e.Service) > width {
			width = len(e.Service)
		}
	}
	col := lipgloss.NewStyle().Width(width + 2)
	_, _ = fmt.Fprintln(out, headerStyle.Render(col.Render(i18n.T("list.service"))+i18n.T("list.username")))
	for _, e := range entries {
		_, _ = fmt.Fprintln(out, col.Render(e.Service)+e.Username)
	}
	return nil
}

func newRmCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <service>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete the credential for a service",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return userError(a.runRm(cmd, args[0], yes))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *app) runRm(cmd *cobra.Command, service string, yes bool) error {
	ctx := cmd.Context()
	s, err := a.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	exists, err := s.svc.Exists(ctx, s.key, service)
	if err != nil {
		return err
	}
	if !exists {
		_, _ = fmt.Fprintln(out, i18n.T("rm.absent", service))
		return nil
	}
	if !yes {
		ok, err := a.prompter.Confirm(i18n.T("rm.confirm", service))
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(out, i18n.T("add.aborted"))
			return nil
		}
	}

	if err := s.svc.Delete(ctx, s.key, service); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, i18n.T("rm.deleted", service))
	return nil
}
