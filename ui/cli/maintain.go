// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/toeirei/keyvault/internal/config"
	"github.com/toeirei/keyvault/internal/i18n"
)

func newMaintainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "maintain",
		Short: "Compact and verify the vault file",
		Long: `Runs SQLite maintenance on the vault file: PRAGMA optimize, VACUUM, a WAL
checkpoint and an integrity check. VACUUM also drops pages left behind by
deleted credentials.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return userError(a.runMaintain(cmd))
		},
	}
}

func (a *app) runMaintain(cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, err := a.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	// The session key is not needed past this point.
	s.key.Destroy()
	if err := s.store.Maintain(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("maintain.done"))
	return nil
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or persist the effective configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(&a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	var system bool
	write := &cobra.Command{
		Use:   "write",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteConfigFile(&a.cfg, system)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	write.Flags().BoolVar(&system, "system", false, "write the system-wide config instead of the user config")

	cmd.AddCommand(show, write)
	return cmd
}
