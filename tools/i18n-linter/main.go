// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks the locale files against the message IDs passed to
// i18n.T in the source tree. It fails when a used ID is absent from the
// primary locale or when another locale lacks a key of the primary one.
// Keys that no code uses are reported as a warning.
package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
)

var usedKeyRe = regexp.MustCompile(`i18n\.T\("([^"]+)"`)

func main() {
	root := "."
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	os.Exit(run(root, os.Stdout))
}

// run lints the module rooted at root and returns the process exit code.
func run(root string, out io.Writer) int {
	used, err := findUsedKeys(root)
	if err != nil {
		_, _ = fmt.Fprintf(out, "error scanning sources: %v\n", err)
		return 1
	}
	primary, err := loadKeysFromLocale(filepath.Join(root, localesDir, primaryLocale))
	if err != nil {
		_, _ = fmt.Fprintf(out, "error loading %s: %v\n", primaryLocale, err)
		return 1
	}
	_, _ = fmt.Fprintf(out, "%d keys used in code, %d keys in %s\n", len(used), len(primary), primaryLocale)

	failed := false
	for _, key := range difference(used, primary) {
		_, _ = fmt.Fprintf(out, "undefined: %s\n", key)
		failed = true
	}
	for _, key := range difference(primary, used) {
		_, _ = fmt.Fprintf(out, "orphaned: %s\n", key)
	}

	files, err := filepath.Glob(filepath.Join(root, localesDir, "*.yaml"))
	if err != nil {
		_, _ = fmt.Fprintf(out, "error listing locales: %v\n", err)
		return 1
	}
	for _, file := range files {
		name := filepath.Base(file)
		if name == primaryLocale {
			continue
		}
		keys, err := loadKeysFromLocale(file)
		if err != nil {
			_, _ = fmt.Fprintf(out, "error loading %s: %v\n", name, err)
			failed = true
			continue
		}
		for _, key := range difference(primary, keys) {
			_, _ = fmt.Fprintf(out, "%s missing: %s\n", name, key)
			failed = true
		}
	}

	if failed {
		return 1
	}
	_, _ = fmt.Fprintln(out, "all locales consistent")
	return 0
}

// findUsedKeys collects the literal message IDs passed to i18n.T in the
// non-test Go files below root.
func findUsedKeys(root string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case "tools", "_examples", ".git":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, m := range usedKeyRe.FindAllStringSubmatch(string(content), -1) {
			keys[m[1]] = struct{}{}
		}
		return nil
	})
	return keys, err
}

// loadKeysFromLocale returns the message IDs defined in a locale file.
// Nested maps are flattened with dots, so both layouts are accepted.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{})
	flatten("", data, keys)
	return keys, nil
}

func flatten(prefix string, node any, keys map[string]struct{}) {
	m, ok := node.(map[string]any)
	if !ok {
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
		return
	}
	for k, v := range m {
		if prefix != "" {
			k = prefix + "." + k
		}
		flatten(k, v, keys)
	}
}

// difference returns the sorted keys of a that are not in b.
func difference(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
