// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/toeirei/keyvault/internal/i18n"
	"github.com/toeirei/keyvault/internal/vault"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	itemStyle  = lipgloss.NewStyle().PaddingLeft(2)
)

func newAuditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Report weak and reused secrets",
		Long: `Decrypts every stored secret and reports services whose secret is shorter than
12 characters and groups of services sharing the same secret.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return userError(a.runAudit(cmd))
		},
	}
}

func (a *app) runAudit(cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, err := a.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	rep, err := s.svc.AuditAll(ctx, s.key)
	if err != nil {
		return err
	}
	renderReport(cmd.OutOrStdout(), rep)
	return nil
}

func renderReport(w io.Writer, rep vault.Report) {
	_, _ = fmt.Fprintln(w, titleStyle.Render(i18n.T("audit.title")))
	if rep.Clean() {
		_, _ = fmt.Fprintln(w, okStyle.Render(i18n.T("audit.clean")))
		return
	}
	if len(rep.Weak) > 0 {
		_, _ = fmt.Fprintln(w, warnStyle.Render(i18n.T("audit.weak_header", vault.WeakThreshold)))
		for _, s := range rep.Weak {
			_, _ = fmt.Fprintln(w, itemStyle.Render("- "+s))
		}
	}
	if len(rep.ReuseGroups) > 0 {
		_, _ = fmt.Fprintln(w, warnStyle.Render(i18n.T("audit.reuse_header")))
		for _, g := range rep.ReuseGroups {
			_, _ = fmt.Fprintln(w, itemStyle.Render("- "+strings.Join(g, ", ")))
		}
	}
}
