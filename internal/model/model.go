// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the records persisted in and returned by the vault.
package model

import (
	"fmt"
	"time"
)

// MasterConfig is the singleton row that marks a vault as initialized. Salt
// feeds the key derivation; Verifier is the canary bundle used to check a
// candidate key.
type MasterConfig struct {
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}

// Credential is a stored record. SecretBlob is an encrypted bundle and is
// never interpreted outside the vault service.
type Credential struct {
	Service    string
	Username   string
	SecretBlob []byte
	UpdatedAt  time.Time
}

// CredentialSummary is the non-secret part of a credential used for listings.
type CredentialSummary struct {
	Service   string
	Username  string
	UpdatedAt time.Time
}

// String returns the username@service representation.
func (c CredentialSummary) String() string {
	return fmt.Sprintf("%s@%s", c.Username, c.Service)
}

// PlainCredential is a decrypted credential as consumed by audit and export.
type PlainCredential struct {
	Service  string `json:"service" yaml:"service"`
	Username string `json:"username" yaml:"username"`
	Secret   string `json:"secret" yaml:"secret"`
}
