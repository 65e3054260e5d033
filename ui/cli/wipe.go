// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/toeirei/keyvault/internal/i18n"
)

// sqliteSidecars are the suffixes of files SQLite keeps next to a database
// in WAL mode.
var sqliteSidecars = []string{"", "-wal", "-shm", "-journal"}

func newWipeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "wipe",
		Short: "Permanently delete the vault",
		Long: `Deletes the vault file and every secret in it. Requires the master password,
a typed security check and a final confirmation. This cannot be undone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return userError(a.runWipe(cmd))
		},
	}
}

func (a *app) runWipe(cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, err := a.openSession(ctx, true)
	if err != nil {
		return err
	}
	// Close before removing so the WAL is not recreated.
	s.Close()

	path := a.cfg.Vault.Path
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(i18n.T("wipe.warning", path)))
	ok, err := a.prompter.Confirm(i18n.T("wipe.confirm"))
	if err != nil {
		return err
	}
	if !ok {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("add.aborted"))
		return nil
	}

	if err := removeVaultFiles(path); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("wipe.done"))
	return nil
}

func removeVaultFiles(path string) error {
	var errs []error
	for _, suffix := range sqliteSidecars {
		if err := os.Remove(path + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
