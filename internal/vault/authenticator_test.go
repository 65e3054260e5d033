// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toeirei/keyvault/internal/crypto"
	"github.com/toeirei/keyvault/internal/db"
	"github.com/toeirei/keyvault/internal/guard"
	"github.com/toeirei/keyvault/internal/logging"
)

type fixedReader struct{ answer string }

func (f fixedReader) ReadLine(string) (string, error) { return f.answer, nil }

func TestAuthenticator_EndToEnd(t *testing.T) {
	store := newTestStore(t)
	auth := NewAuthenticator(store, nil)
	ctx := context.Background()

	res, err := auth.Unlock(ctx, Attempt{Password: "Correct1!", Elapsed: humanDelay})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUninitialized, res.Outcome)
	assert.Nil(t, res.Key)
	assert.Equal(t, StateUninitialized, auth.State())

	require.NoError(t, auth.Initialize(ctx, Attempt{Password: "Correct1!", Elapsed: humanDelay}))

	res, err = auth.Unlock(ctx, Attempt{Password: "Correct1!", Elapsed: humanDelay})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnlocked, res.Outcome)
	require.NotNil(t, res.Key)
	assert.True(t, res.Key.Alive())
	assert.Equal(t, StateUnlocked, auth.State())
	res.Key.Destroy()
	assert.False(t, res.Key.Alive())

	res, err = auth.Unlock(ctx, Attempt{Password: "Wrong1!", Elapsed: humanDelay})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDenied, res.Outcome)
	assert.Nil(t, res.Key)
	assert.Equal(t, StateDenied, auth.State())
}

func TestAuthenticator_GuardRejectionLooksLikeDenied(t *testing.T) {
	store := newTestStore(t)
	auth := NewAuthenticator(store, nil)
	ctx := context.Background()
	require.NoError(t, auth.Initialize(ctx, Attempt{Password: "Correct1!", Elapsed: humanDelay}))

	// The right password typed impossibly fast is denied just like a wrong one.
	res, err := auth.Unlock(ctx, Attempt{Password: "Correct1!", Elapsed: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDenied, res.Outcome)
	assert.Nil(t, res.Key)
}

func TestAuthenticator_ChallengeFailureDenies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, NewAuthenticator(store, nil).Initialize(ctx, Attempt{Password: "Correct1!", Elapsed: humanDelay}))

	g := guard.New(guard.DefaultThreshold).WithChallenge(fixedReader{answer: "wrong"}, 8)
	res, err := NewAuthenticator(store, g).Unlock(ctx, Attempt{Password: "Correct1!", Elapsed: humanDelay})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDenied, res.Outcome)
}

func TestAuthenticator_InitializeTwice(t *testing.T) {
	store := newTestStore(t)
	auth := NewAuthenticator(store, nil)
	ctx := context.Background()

	require.NoError(t, auth.Initialize(ctx, Attempt{Password: "Correct1!", Elapsed: humanDelay}))
	before, err := store.GetMasterConfig(ctx)
	require.NoError(t, err)

	err = auth.Initialize(ctx, Attempt{Password: "Other1!", Elapsed: humanDelay})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	after, err := store.GetMasterConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Salt, after.Salt)
	assert.Equal(t, before.Verifier, after.Verifier)
}

func TestAuthenticator_InitializeRejections(t *testing.T) {
	store := newTestStore(t)
	auth := NewAuthenticator(store, nil)
	ctx := context.Background()

	assert.ErrorIs(t, auth.Initialize(ctx, Attempt{Password: "", Elapsed: humanDelay}), ErrEmptyPassword)
	assert.ErrorIs(t, auth.Initialize(ctx, Attempt{Password: "Correct1!", Elapsed: time.Millisecond}), ErrGuardRejected)

	mc, err := store.GetMasterConfig(ctx)
	require.NoError(t, err)
	assert.Nil(t, mc, "rejected initialization must not write a master config")
}

func TestAuthenticator_VerifierLayout(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, NewAuthenticator(store, nil).Initialize(ctx, Attempt{Password: "Correct1!", Elapsed: humanDelay}))

	mc, err := store.GetMasterConfig(ctx)
	require.NoError(t, err)
	assert.Len(t, mc.Salt, crypto.SaltSize)
	assert.Len(t, mc.Verifier, crypto.MinBundleSize+len(canary))
}

func TestAuthenticator_CorruptVerifierDenied(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	auth := NewAuthenticator(store, nil)
	require.NoError(t, auth.Initialize(ctx, Attempt{Password: "Correct1!", Elapsed: humanDelay}))

	mc, err := store.GetMasterConfig(ctx)
	require.NoError(t, err)
	tampered := append([]byte(nil), mc.Verifier...)
	tampered[len(tampered)-1] ^= 0x01
	require.NoError(t, store.StoreMasterConfig(ctx, mc.Salt, tampered))

	res, err := auth.Unlock(ctx, Attempt{Password: "Correct1!", Elapsed: humanDelay})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDenied, res.Outcome)
}

func TestAuthenticator_StorageFailureIsError(t *testing.T) {
	boom := errors.New("boom")
	cs := &countingStore{Store: newTestStore(t), fail: boom}
	auth := NewAuthenticator(cs, nil)

	res, err := auth.Unlock(context.Background(), Attempt{Password: "Correct1!", Elapsed: humanDelay})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, OutcomeDenied, res.Outcome)
	assert.Nil(t, res.Key)
}

func TestAuthenticator_StorageErrorFromClosedStore(t *testing.T) {
	store, err := db.Open(db.MemoryDSN("vault_closed_store"))
	require.NoError(t, err)
	require.NoError(t, store.Initialize(context.Background()))
	require.NoError(t, store.Close())

	_, err = NewAuthenticator(store, nil).Unlock(context.Background(), Attempt{Password: "Correct1!", Elapsed: humanDelay})
	assert.ErrorIs(t, err, ErrStorage)
}

func TestStateAndOutcomeStrings(t *testing.T) {
	assert.Equal(t, "verifying", StateVerifying.String())
	assert.Equal(t, "denied", Outcome(0).String())
	assert.Equal(t, "uninitialized", OutcomeUninitialized.String())
}

func TestAuthenticator_Initialized(t *testing.T) {
	store := newTestStore(t)
	auth := NewAuthenticator(store, nil)
	ctx := context.Background()

	ok, err := auth.Initialized(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, auth.Initialize(ctx, Attempt{Password: "Correct1!", Elapsed: humanDelay}))
	ok, err = auth.Initialized(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthenticator_QuietAtInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.L
	logging.L = clog.NewWithOptions(&buf, clog.Options{Level: clog.InfoLevel})
	t.Cleanup(func() { logging.L = prev })

	store := newTestStore(t)
	auth := NewAuthenticator(store, nil)
	ctx := context.Background()

	require.NoError(t, auth.Initialize(ctx, Attempt{Password: "Correct1!", Elapsed: humanDelay}))
	res, err := auth.Unlock(ctx, Attempt{Password: "Correct1!", Elapsed: humanDelay})
	require.NoError(t, err)
	res.Key.Destroy()
	assert.Empty(t, buf.String())
}
