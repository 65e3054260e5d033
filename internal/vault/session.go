// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"github.com/toeirei/keyvault/internal/crypto"
	"github.com/toeirei/keyvault/internal/logging"
	"github.com/toeirei/keyvault/internal/security"
)

// Overridable in tests.
var (
	lockMemory   = crypto.LockMemory
	unlockMemory = crypto.UnlockMemory
)

// SessionKey holds the key derived for one unlocked invocation. It is never
// persisted. Callers must Destroy it as soon as the operation completes.
type SessionKey struct {
	key    security.Secret
	locked bool
}

func newSessionKey(key security.Secret) *SessionKey {
	sk := &SessionKey{key: key}
	if err := lockMemory(key); err != nil {
		logging.Debugf("vault: could not lock session key in memory: %v", err)
	} else {
		sk.locked = true
	}
	return sk
}

// Destroy zeroes the key material and then releases its memory lock, so the
// pages are never swappable while they still hold the key. It is safe to
// call more than once and on a nil receiver.
func (k *SessionKey) Destroy() {
	if k == nil || k.key == nil {
		return
	}
	buf := []byte(k.key)
	k.key.Zero()
	if k.locked {
		_ = unlockMemory(buf)
		k.locked = false
	}
}

// Alive reports whether the key has not been destroyed yet.
func (k *SessionKey) Alive() bool {
	return k != nil && len(k.key) == crypto.KeySize
}

// String never reveals key material.
func (k *SessionKey) String() string {
	return k.key.String()
}

func (k *SessionKey) material() ([]byte, error) {
	if !k.Alive() {
		return nil, ErrSessionClosed
	}
	return k.key, nil
}
