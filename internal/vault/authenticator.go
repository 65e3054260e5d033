// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/toeirei/keyvault/internal/crypto"
	"github.com/toeirei/keyvault/internal/db"
	"github.com/toeirei/keyvault/internal/guard"
	"github.com/toeirei/keyvault/internal/logging"
	"github.com/toeirei/keyvault/internal/security"
)

// canary is the fixed plaintext sealed into the verifier at initialization.
// A candidate key is correct exactly when it opens the verifier to this
// value.
var canary = security.Secret("keyvault:verifier:v1")

// State is a step of the unlock state machine.
type State int

const (
	StateLocked State = iota
	StateChallenged
	StateVerifying
	StateUnlocked
	StateDenied
	StateUninitialized
)

func (s State) String() string {
	switch s {
	case StateLocked:
		return "locked"
	case StateChallenged:
		return "challenged"
	case StateVerifying:
		return "verifying"
	case StateUnlocked:
		return "unlocked"
	case StateDenied:
		return "denied"
	case StateUninitialized:
		return "uninitialized"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Outcome is the externally visible result of an unlock attempt. The zero
// value is OutcomeDenied.
type Outcome int

const (
	OutcomeDenied Outcome = iota
	OutcomeUnlocked
	OutcomeUninitialized
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnlocked:
		return "unlocked"
	case OutcomeUninitialized:
		return "uninitialized"
	}
	return "denied"
}

// Attempt is one submitted master password together with the time that
// passed between showing the prompt and the submission.
type Attempt struct {
	Password string
	Elapsed  time.Duration
}

// Result of Unlock. Key is non-nil only for OutcomeUnlocked and must be
// destroyed by the caller.
type Result struct {
	Outcome Outcome
	Key     *SessionKey
}

// Authenticator verifies master passwords against the stored verifier.
// An Authenticator handles one attempt at a time.
type Authenticator struct {
	store db.Store
	guard *guard.Guard
	state State
}

// NewAuthenticator returns an Authenticator backed by store. A nil guard
// applies the default typing-speed check only.
func NewAuthenticator(store db.Store, g *guard.Guard) *Authenticator {
	if g == nil {
		g = guard.New(guard.DefaultThreshold)
	}
	return &Authenticator{store: store, guard: g, state: StateLocked}
}

// State returns the state reached by the most recent attempt.
func (a *Authenticator) State() State { return a.state }

// Initialized reports whether the vault has a master config.
func (a *Authenticator) Initialized(ctx context.Context) (bool, error) {
	mc, err := a.store.GetMasterConfig(ctx)
	if err != nil {
		return false, err
	}
	return mc != nil, nil
}

// Unlock runs one attempt through the guard and the verifier check.
// Guard rejection and a wrong password both yield OutcomeDenied. A non-nil
// error is returned only for storage or derivation failures.
func (a *Authenticator) Unlock(ctx context.Context, attempt Attempt) (Result, error) {
	a.state = StateLocked

	mc, err := a.store.GetMasterConfig(ctx)
	if err != nil {
		a.state = StateDenied
		return Result{}, err
	}
	if mc == nil {
		a.state = StateUninitialized
		return Result{Outcome: OutcomeUninitialized}, nil
	}

	a.state = StateChallenged
	if !a.guard.Allow(attempt.Password, attempt.Elapsed) {
		logging.Debugf("vault: unlock attempt rejected by guard")
		a.state = StateDenied
		return Result{}, nil
	}

	a.state = StateVerifying
	key, err := crypto.DeriveKey(attempt.Password, mc.Salt)
	if err != nil {
		a.state = StateDenied
		return Result{}, err
	}

	pt, err := crypto.Decrypt(mc.Verifier, key)
	if err != nil || !canary.Equal(pt) {
		crypto.Zero(pt)
		key.Zero()
		a.state = StateDenied
		if err != nil && !errors.Is(err, crypto.ErrAuthentication) {
			return Result{}, err
		}
		return Result{}, nil
	}
	crypto.Zero(pt)

	a.state = StateUnlocked
	return Result{Outcome: OutcomeUnlocked, Key: newSessionKey(key)}, nil
}

// Initialize creates the master config for a new vault from attempt. It
// fails with ErrAlreadyInitialized when the vault already has one and with
// ErrGuardRejected when the guard refuses the attempt.
func (a *Authenticator) Initialize(ctx context.Context, attempt Attempt) error {
	if attempt.Password == "" {
		return ErrEmptyPassword
	}

	mc, err := a.store.GetMasterConfig(ctx)
	if err != nil {
		return err
	}
	if mc != nil {
		return ErrAlreadyInitialized
	}

	if !a.guard.Allow(attempt.Password, attempt.Elapsed) {
		return ErrGuardRejected
	}

	salt, err := crypto.NewSalt()
	if err != nil {
		return err
	}
	key, err := crypto.DeriveKey(attempt.Password, salt)
	if err != nil {
		return err
	}
	defer key.Zero()

	verifier, err := crypto.Encrypt(canary, key)
	if err != nil {
		return err
	}
	if err := a.store.StoreMasterConfig(ctx, salt, verifier); err != nil {
		return err
	}
	logging.Debugf("vault: master config created")
	return nil
}
