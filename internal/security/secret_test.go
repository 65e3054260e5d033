// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package security

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecret_RedactsEverywhere(t *testing.T) {
	s := Secret("hunter2")

	assert.Equal(t, "[SECRET]", s.String())
	assert.Equal(t, "[SECRET]", fmt.Sprintf("%v", s))
	assert.Equal(t, "[SECRET]", fmt.Sprintf("%s", s))
	assert.Equal(t, "[SECRET]", fmt.Sprintf("%x", s))
	assert.Equal(t, "[SECRET]", fmt.Sprintf("%#v", s))

	out, err := json.Marshal(struct {
		Key Secret `json:"key"`
	}{Key: s})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"[SECRET]"}`, string(out))

	txt, err := s.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "[SECRET]", string(txt))
}

func TestSecret_ZeroWipesBackingArray(t *testing.T) {
	backing := []byte{1, 2, 3, 4}
	s := Secret(backing)
	s.Zero()

	assert.Nil(t, s)
	assert.Equal(t, []byte{0, 0, 0, 0}, backing)

	var nilSecret *Secret
	nilSecret.Zero() // must not panic
}

func TestSecret_Equal(t *testing.T) {
	assert.True(t, Secret("same").Equal(Secret("same")))
	assert.False(t, Secret("same").Equal(Secret("diff")))
	assert.False(t, Secret("short").Equal(Secret("shorter")))
}
