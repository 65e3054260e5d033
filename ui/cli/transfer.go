// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toeirei/keyvault/internal/i18n"
	"github.com/toeirei/keyvault/internal/transfer"
)

// resolveFormat picks the explicit --format value or guesses from path.
func resolveFormat(flag, path string) (transfer.Format, error) {
	if flag == "" {
		return transfer.DetectFormat(path), nil
	}
	f, err := transfer.ParseFormat(flag)
	if err != nil {
		return "", &ExitError{Code: ExitFailure, Msg: i18n.T("export.unknown_format", flag), Err: err}
	}
	return f, nil
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		yes    bool
	)
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write all credentials to a plaintext file",
		Long: `Decrypts every credential and writes it to file as JSON, CSV or YAML. The
format is taken from --format or the file extension. A trailing .zst
compresses the output with Zstandard. The file is created with mode 0600
but its content is NOT encrypted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return userError(a.runExport(cmd, args[0], format, yes))
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json, csv or yaml (default: from extension)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, path, formatFlag string, yes bool) error {
	f, err := resolveFormat(formatFlag, path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := a.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(i18n.T("export.warning")))
	if !yes {
		ok, err := a.prompter.Confirm(i18n.T("export.confirm", path))
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("add.aborted"))
			return nil
		}
	}

	creds, err := s.svc.ExportAll(ctx, s.key)
	if err != nil {
		return err
	}
	if err := transfer.WriteFile(path, f, creds); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("export.done", len(creds), path))
	return nil
}

func newImportCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Store credentials from an export file",
		Long: `Reads credentials written by 'keyvault export' (or any file in the same
layout) and stores each one, replacing existing credentials for the same
service. Nothing is stored unless every record is valid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return userError(a.runImport(cmd, args[0], format))
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json, csv or yaml (default: from extension)")
	return cmd
}

func (a *app) runImport(cmd *cobra.Command, path, formatFlag string) error {
	f, err := resolveFormat(formatFlag, path)
	if err != nil {
		return err
	}
	creds, err := transfer.ReadFile(path, f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := a.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.svc.StoreAll(ctx, s.key, creds); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("import.done", len(creds), path))
	return nil
}
