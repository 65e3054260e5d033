// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"time"

	"github.com/toeirei/keyvault/internal/model"
	"github.com/uptrace/bun"
)

// masterConfigID is the only id the master_config table accepts.
const masterConfigID = 1

// MasterConfigModel maps the singleton master_config row.
type MasterConfigModel struct {
	bun.BaseModel `bun:"table:master_config"`
	ID            int       `bun:"id,pk"`
	Salt          []byte    `bun:"salt"`
	Verifier      []byte    `bun:"verifier"`
	CreatedAt     time.Time `bun:"created_at"`
}

// CredentialModel maps the credentials table.
type CredentialModel struct {
	bun.BaseModel `bun:"table:credentials"`
	Service       string    `bun:"service,pk"`
	Username      string    `bun:"username"`
	SecretBlob    []byte    `bun:"secret_blob"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

func masterConfigModelToModel(m MasterConfigModel) model.MasterConfig {
	return model.MasterConfig{
		Salt:      m.Salt,
		Verifier:  m.Verifier,
		CreatedAt: m.CreatedAt,
	}
}

func credentialModelToModel(m CredentialModel) model.Credential {
	return model.Credential{
		Service:    m.Service,
		Username:   m.Username,
		SecretBlob: m.SecretBlob,
		UpdatedAt:  m.UpdatedAt,
	}
}
