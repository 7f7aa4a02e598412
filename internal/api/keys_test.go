package api

import (
	"context"
	"strings"
	"testing"

	"github.com/scamwatch/sentinel/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	raw, key, err := generateKey("ops", 30)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(raw, keyPrefix))
	assert.Equal(t, hashKey(raw), key.KeyHash)
	assert.NotContains(t, key.KeyHash, raw)
	assert.Equal(t, 30, key.RequestsPerMinute)

	other, _, err := generateKey("ops", 30)
	require.NoError(t, err)
	assert.NotEqual(t, raw, other)
}

func TestSeedBootstrapKey(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()

	created, err := SeedBootstrapKey(ctx, store, "", 60)
	require.NoError(t, err)
	assert.False(t, created)

	created, err = SeedBootstrapKey(ctx, store, testBootstrapKey, 60)
	require.NoError(t, err)
	assert.True(t, created)

	// restarting with the same key leaves a single record
	created, err = SeedBootstrapKey(ctx, store, testBootstrapKey, 60)
	require.NoError(t, err)
	assert.False(t, created)

	keys, err := store.ListAPIKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "bootstrap", keys[0].Name)

	got, err := store.GetAPIKeyByHash(ctx, hashKey(testBootstrapKey))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 60, got.RequestsPerMinute)
}
