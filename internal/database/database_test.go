package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scamwatch/sentinel/internal/config"
	"github.com/scamwatch/sentinel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "sentinel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Store{
		"sqlite": sqlite,
		"memory": NewMemoryStore(),
	}
}

func TestStore_APIKeyLifecycle(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			created := time.Now().UTC().Truncate(time.Second)
			key := &models.APIKey{
				ID:                "key-1",
				KeyHash:           "hash-1",
				Name:              "ops",
				RequestsPerMinute: 30,
				CreatedAt:         created,
			}
			require.NoError(t, store.CreateAPIKey(ctx, key))

			got, err := store.GetAPIKeyByHash(ctx, "hash-1")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "ops", got.Name)
			assert.Equal(t, 30, got.RequestsPerMinute)
			assert.Nil(t, got.LastUsedAt)

			missing, err := store.GetAPIKeyByHash(ctx, "nope")
			require.NoError(t, err)
			assert.Nil(t, missing)

			used := created.Add(time.Minute)
			require.NoError(t, store.UpdateAPIKeyLastUsed(ctx, "key-1", used))
			got, err = store.GetAPIKeyByHash(ctx, "hash-1")
			require.NoError(t, err)
			require.NotNil(t, got.LastUsedAt)
			assert.True(t, used.Equal(*got.LastUsedAt))

			keys, err := store.ListAPIKeys(ctx)
			require.NoError(t, err)
			require.Len(t, keys, 1)
			assert.Empty(t, keys[0].KeyHash)

			require.NoError(t, store.DeleteAPIKey(ctx, "key-1"))
			keys, err = store.ListAPIKeys(ctx)
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestStore_AuditLogs(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Second)
			entries := []models.AuditLog{
				{ID: "a1", Endpoint: "/api/fraud/analyze", Channel: models.ChannelText, Items: 1, Flagged: 1},
				{ID: "a2", Endpoint: "/api/fraud/analyze-batch", Channel: models.ChannelMixed, Items: 5, Flagged: 2, Failed: 1, APIKeyID: "k1"},
				{ID: "a3", Endpoint: "/api/fraud/analyze", Channel: models.ChannelText, Items: 1, APIKeyID: "k1"},
			}
			for i := range entries {
				e := entries[i]
				e.Method = "POST"
				e.RequestID = "req-" + e.ID
				e.ResponseCode = 200
				e.Timestamp = base.Add(time.Duration(i) * time.Second)
				require.NoError(t, store.LogRequest(ctx, &e))
			}

			logs, err := store.GetAuditLogs(ctx, AuditFilter{Limit: 2})
			require.NoError(t, err)
			require.Len(t, logs, 2)
			assert.Equal(t, "a3", logs[0].ID)
			assert.Equal(t, "a2", logs[1].ID)
			assert.Equal(t, models.ChannelMixed, logs[1].Channel)
			assert.Equal(t, 5, logs[1].Items)
			assert.Equal(t, 2, logs[1].Flagged)
			assert.Equal(t, 1, logs[1].Failed)
			assert.Equal(t, "req-a2", logs[1].RequestID)

			logs, err = store.GetAuditLogs(ctx, AuditFilter{Limit: 10, Offset: 2})
			require.NoError(t, err)
			require.Len(t, logs, 1)
			assert.Equal(t, "a1", logs[0].ID)

			logs, err = store.GetAuditLogs(ctx, AuditFilter{Channel: models.ChannelText})
			require.NoError(t, err)
			require.Len(t, logs, 2)
			assert.Equal(t, "a3", logs[0].ID)

			logs, err = store.GetAuditLogs(ctx, AuditFilter{Channel: models.ChannelText, APIKeyID: "k1"})
			require.NoError(t, err)
			require.Len(t, logs, 1)
			assert.Equal(t, "a3", logs[0].ID)
		})
	}
}

func TestSQLiteStore_ReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentinel.db")
	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.LogRequest(context.Background(), &models.AuditLog{
		ID: "x", Endpoint: "/api/ping", Method: "GET", Channel: models.ChannelVoice, Timestamp: time.Now().UTC(),
	}))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.Migrate())

	var version int
	require.NoError(t, second.db.QueryRow(`PRAGMA user_version`).Scan(&version))
	assert.Equal(t, len(migrations), version)

	logs, err := second.GetAuditLogs(context.Background(), AuditFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ChannelVoice, logs[0].Channel)
}

func TestNewSQLiteStore_BadPath(t *testing.T) {
	// the parent is a regular file, so the directory cannot be created
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	_, err := NewSQLiteStore(filepath.Join(file, "sentinel.db"))

	assert.ErrorContains(t, err, "failed to create data directory")
}

func TestNewSQLiteStore_NotADatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.db")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 512)), 0644))

	store, err := NewSQLiteStore(path)

	require.Error(t, err)
	assert.Nil(t, store)
	assert.Regexp(t, `failed to (connect to database|run migrations)`, err.Error())
}

func TestOpen(t *testing.T) {
	s, err := Open(config.DatabaseConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	assert.NoError(t, s.Ping(context.Background()))

	_, err = Open(config.DatabaseConfig{Driver: "postgres"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMemoryStore().LogRequest(ctx, &models.AuditLog{ID: "x"})

	assert.ErrorIs(t, err, context.Canceled)
}
