// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	cfg "github.com/toeirei/keyvault/internal/config"
)

// isolate points the user config dir at a temp dir and runs from another
// temp dir so no real keyvault.yaml is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	t.Chdir(t.TempDir())
	return tmp
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got.Vault.Path != "./vault.db" {
		t.Fatalf("unexpected vault path %q", got.Vault.Path)
	}
	if got.Language != "en" {
		t.Fatalf("unexpected language %q", got.Language)
	}
	if got.Guard.Threshold != 50*time.Millisecond {
		t.Fatalf("unexpected threshold %v", got.Guard.Threshold)
	}
	if got.Guard.ChallengeLength != 6 {
		t.Fatalf("unexpected challenge length %d", got.Guard.ChallengeLength)
	}
	if got.Clipboard.ClearAfter != 30*time.Second {
		t.Fatalf("unexpected clipboard timeout %v", got.Clipboard.ClearAfter)
	}
}

func TestLoadConfig_ReadsExplicitFile(t *testing.T) {
	isolate(t)
	file := filepath.Join(t.TempDir(), "cfg.yaml")
	data := "vault:\n  path: /srv/vault.db\nlanguage: de\nguard:\n  threshold: 120ms\n"
	if err := os.WriteFile(file, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got.Vault.Path != "/srv/vault.db" || got.Language != "de" {
		t.Fatalf("file values not applied: %+v", got)
	}
	if got.Guard.Threshold != 120*time.Millisecond {
		t.Fatalf("expected 120ms threshold, got %v", got.Guard.Threshold)
	}
	// Keys absent from the file keep their defaults.
	if got.Guard.ChallengeLength != 6 {
		t.Fatalf("expected default challenge length, got %d", got.Guard.ChallengeLength)
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	isolate(t)
	file := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(file, []byte("vault: [unterminated"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), &file); err == nil {
		t.Fatalf("expected error for malformed config file")
	}
}

func TestLoadConfig_EnvVarParsing(t *testing.T) {
	isolate(t)
	t.Setenv("KEYVAULT_VAULT_PATH", "/env/vault.db")
	t.Setenv("KEYVAULT_LANGUAGE", "de")
	t.Setenv("KEYVAULT_CLIPBOARD_CLEAR_AFTER", "5s")

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got.Vault.Path != "/env/vault.db" {
		t.Fatalf("expected env vault path, got %q", got.Vault.Path)
	}
	if got.Language != "de" {
		t.Fatalf("expected de from env, got %q", got.Language)
	}
	if got.Clipboard.ClearAfter != 5*time.Second {
		t.Fatalf("expected 5s from env, got %v", got.Clipboard.ClearAfter)
	}
}

func TestLoadConfig_FlagBindingOverridesEnv(t *testing.T) {
	isolate(t)
	t.Setenv("KEYVAULT_VAULT_PATH", "/env/vault.db")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("vault", "", "")
	_ = cmd.Flags().SetAnnotation("vault", cfg.FlagKeyAnnotation, []string{"vault.path"})
	if err := cmd.Flags().Set("vault", "/flag/vault.db"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](cmd, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got.Vault.Path != "/flag/vault.db" {
		t.Fatalf("expected flag to win over env, got %q", got.Vault.Path)
	}
}

func TestLoadConfig_UnsetFlagKeepsEnv(t *testing.T) {
	isolate(t)
	t.Setenv("KEYVAULT_VAULT_PATH", "/env/vault.db")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("vault", "", "")
	_ = cmd.Flags().SetAnnotation("vault", cfg.FlagKeyAnnotation, []string{"vault.path"})

	got, err := cfg.LoadConfig[cfg.Config](cmd, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got.Vault.Path != "/env/vault.db" {
		t.Fatalf("expected env value when flag is unset, got %q", got.Vault.Path)
	}
}

func TestWriteConfigFile_CreatesFile(t *testing.T) {
	isolate(t)

	c := cfg.Config{}
	c.Vault.Path = "/data/vault.db"
	c.Language = "de"

	path, err := cfg.WriteConfigFile(&c, false)
	if err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}
	want, err := cfg.GetConfigPath(false)
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	if path != want {
		t.Fatalf("expected %s, got %s", want, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected config file at %s: %v", path, err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode 0600, got %v", info.Mode().Perm())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var back map[string]any
	if err := yaml.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal written config: %v", err)
	}
	vault, _ := back["vault"].(map[string]any)
	if vault["path"] != "/data/vault.db" || back["language"] != "de" {
		t.Fatalf("written config mismatch: %v", back)
	}
}

func TestGetConfigPath_System(t *testing.T) {
	p, err := cfg.GetConfigPath(true)
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	if filepath.Base(p) != "keyvault.yaml" {
		t.Fatalf("unexpected file name in %s", p)
	}
}
