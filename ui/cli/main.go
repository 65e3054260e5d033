// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the keyvault command tree: the root command with its
// persistent flags, configuration loading and process-level hardening.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/toeirei/keyvault/buildvars"
	"github.com/toeirei/keyvault/internal/config"
	"github.com/toeirei/keyvault/internal/crypto"
	"github.com/toeirei/keyvault/internal/db"
	"github.com/toeirei/keyvault/internal/i18n"
	"github.com/toeirei/keyvault/internal/logging"
	"github.com/toeirei/keyvault/internal/prompt"
)

const modulePath = "github.com/toeirei/keyvault"

// Overridable in tests.
var (
	newPrompter = func(cmd *cobra.Command) prompt.Prompter {
		return prompt.NewTerminal(cmd.InOrStdin(), cmd.ErrOrStderr())
	}
	clipboardWriteAll = clipboard.WriteAll
	clipboardReadAll  = clipboard.ReadAll
)

// app holds the state shared by the commands of one invocation.
type app struct {
	cfg      config.Config
	cfgFile  string
	prompter prompt.Prompter
}

// setup loads the configuration and applies the global settings derived
// from it. It runs before every subcommand.
func (a *app) setup(cmd *cobra.Command) error {
	var cfgPath *string
	if cmd.Flags().Changed("config") {
		if _, err := os.Stat(a.cfgFile); err != nil {
			return fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
		}
		cfgPath = &a.cfgFile
	}

	cfg, err := config.LoadConfig[config.Config](cmd, config.Defaults(), cfgPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if cfg.Vault.Path == "" {
		cfg.Vault.Path = config.Defaults()["vault.path"].(string)
	}
	a.cfg = cfg

	logging.SetDebug(cfg.Verbose)
	db.SetDebug(cfg.Verbose)
	if _, ok := i18n.GetAvailableLocales()[cfg.Language]; !ok {
		logging.Warnf("unknown language %q, using en", cfg.Language)
		cfg.Language = "en"
		a.cfg.Language = "en"
	}
	i18n.Init(cfg.Language)
	logging.Debugf("language %s", i18n.GetLang())
	a.prompter = newPrompter(cmd)
	logging.Debugf("using vault %s", cfg.Vault.Path)
	return nil
}

// NewRootCmd creates the root command. Each call returns an independent
// command tree, which tests rely on.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "keyvault",
		Short: "Keyvault is a local, single-user secrets vault.",
		Long: `Keyvault stores service credentials in a local SQLite file. Every secret is
encrypted with ChaCha20-Poly1305 under a key derived from your master
password with Argon2id. The master password itself is never stored.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	v, c, d := resolveBuildVersion(nil)
	cmd.Version = compositeVersion(v, c, d)

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: keyvault.yaml in the user config dir)")
	pf.String("vault", "", "path of the vault file (default ./vault.db)")
	pf.String("lang", "", "output language, one of: "+strings.Join(i18n.Locales(), ", "))
	pf.BoolP("verbose", "v", false, "enable debug logging")
	_ = pf.SetAnnotation("vault", config.FlagKeyAnnotation, []string{"vault.path"})
	_ = pf.SetAnnotation("lang", config.FlagKeyAnnotation, []string{"language"})

	cmd.AddCommand(
		newInitCmd(a),
		newAddCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newRmCmd(a),
		newAuditCmd(a),
		newWipeCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newMaintainCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the CLI entrypoint. The caller maps the returned error to a
// process exit code with ExitCode.
func Execute() error {
	if err := crypto.DisableCoreDumps(); err != nil {
		logging.Debugf("could not disable core dumps: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var ee *ExitError
	if !errors.As(err, &ee) {
		// Cobra usage errors and config failures.
		err = &ExitError{Code: ExitFailure, Msg: err.Error(), Err: err}
	}
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, i18n.T("version.line", v))
			_, _ = fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				_, _ = fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}
}

func compositeVersion(v, c, d string) string {
	out := v
	if c != "" && c != "dev" {
		out += " (" + c + ")"
	}
	if d != "" {
		out += " built: " + d
	}
	return out
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If `info` is nil, it reads build info from
// the runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault("dev")
	resolvedCommit := buildvars.GitCommit
	if resolvedCommit == "" {
		resolvedCommit = "dev"
	}
	resolvedDate := buildvars.BuildDate

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}
	if info != nil {
		if resolvedVersion == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// Some build paths only record the module as a dependency.
		if resolvedVersion == "dev" {
			for _, dep := range info.Deps {
				if dep.Path == modulePath && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" && resolvedCommit == "dev" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" && resolvedDate == "" {
					resolvedDate = s.Value
				}
			}
		}
	}
	// As a last resort show the commit injected via ldflags.
	if resolvedVersion == "dev" && buildvars.GitCommit != "" {
		resolvedVersion = buildvars.GitCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}
