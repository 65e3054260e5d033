// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"context"
	"fmt"
	"strings"

	"github.com/toeirei/keyvault/internal/crypto"
	"github.com/toeirei/keyvault/internal/db"
	"github.com/toeirei/keyvault/internal/model"
)

// Service performs credential operations under a session key obtained from
// Authenticator.Unlock. Each operation issues exactly one store call.
type Service struct {
	store db.Store
}

// NewService returns a Service backed by store.
func NewService(store db.Store) *Service {
	return &Service{store: store}
}

func validateRecord(service, username string) error {
	if strings.TrimSpace(service) == "" || strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: service and username must not be empty", ErrInvalidRecord)
	}
	return nil
}

// Store encrypts secret and inserts or replaces the credential for service.
func (s *Service) Store(ctx context.Context, key *SessionKey, service, username, secret string) error {
	if err := validateRecord(service, username); err != nil {
		return err
	}
	k, err := key.material()
	if err != nil {
		return err
	}

	pt := []byte(secret)
	defer crypto.Zero(pt)
	blob, err := crypto.Encrypt(pt, k)
	if err != nil {
		return err
	}
	return s.store.UpsertCredential(ctx, service, username, blob)
}

// StoreAll validates and encrypts every credential and then writes them in
// a single store call. Either all of them are stored or none is.
func (s *Service) StoreAll(ctx context.Context, key *SessionKey, creds []model.PlainCredential) error {
	for i, c := range creds {
		if err := validateRecord(c.Service, c.Username); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	k, err := key.material()
	if err != nil {
		return err
	}

	sealed := make([]model.Credential, 0, len(creds))
	for _, c := range creds {
		pt := []byte(c.Secret)
		blob, err := crypto.Encrypt(pt, k)
		crypto.Zero(pt)
		if err != nil {
			return err
		}
		sealed = append(sealed, model.Credential{Service: c.Service, Username: c.Username, SecretBlob: blob})
	}
	return s.store.UpsertCredentials(ctx, sealed)
}

// Exists reports whether a credential is stored for service. It does not
// decrypt anything.
func (s *Service) Exists(ctx context.Context, key *SessionKey, service string) (bool, error) {
	if !key.Alive() {
		return false, ErrSessionClosed
	}
	c, err := s.store.GetCredential(ctx, service)
	if err != nil {
		return false, err
	}
	return c != nil, nil
}

// Fetch returns the decrypted credential for service, or ErrRecordNotFound.
func (s *Service) Fetch(ctx context.Context, key *SessionKey, service string) (*model.PlainCredential, error) {
	k, err := key.material()
	if err != nil {
		return nil, err
	}
	c, err := s.store.GetCredential(ctx, service)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, service)
	}
	return decryptCredential(*c, k)
}

// List returns the services and usernames in the vault, sorted by service.
func (s *Service) List(ctx context.Context, key *SessionKey) ([]model.CredentialSummary, error) {
	if !key.Alive() {
		return nil, ErrSessionClosed
	}
	return s.store.ListCredentials(ctx)
}

// Delete removes the credential for service. Deleting a missing service is
// not an error.
func (s *Service) Delete(ctx context.Context, key *SessionKey, service string) error {
	if !key.Alive() {
		return ErrSessionClosed
	}
	return s.store.DeleteCredential(ctx, service)
}

// ExportAll decrypts every credential from a single snapshot. Any record
// that fails to decrypt aborts the export with ErrAuthentication.
func (s *Service) ExportAll(ctx context.Context, key *SessionKey) ([]model.PlainCredential, error) {
	k, err := key.material()
	if err != nil {
		return nil, err
	}
	recs, err := s.store.AllRecords(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.PlainCredential, 0, len(recs))
	for _, r := range recs {
		pc, err := decryptCredential(r, k)
		if err != nil {
			return nil, err
		}
		out = append(out, *pc)
	}
	return out, nil
}

// AuditAll decrypts every credential and reports weak and reused secrets.
func (s *Service) AuditAll(ctx context.Context, key *SessionKey) (Report, error) {
	plain, err := s.ExportAll(ctx, key)
	if err != nil {
		return Report{}, err
	}
	return Audit(plain), nil
}

func decryptCredential(c model.Credential, key []byte) (*model.PlainCredential, error) {
	pt, err := crypto.Decrypt(c.SecretBlob, key)
	if err != nil {
		return nil, fmt.Errorf("decrypt %s: %w", c.Service, err)
	}
	defer crypto.Zero(pt)
	return &model.PlainCredential{
		Service:  c.Service,
		Username: c.Username,
		Secret:   string(pt),
	}, nil
}
