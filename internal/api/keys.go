package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scamwatch/sentinel/internal/database"
	"github.com/scamwatch/sentinel/internal/models"
)

const keyPrefix = "snt_"

// generateKey returns a new raw key and its stored record. The raw key is
// never persisted.
func generateKey(name string, rpm int) (string, *models.APIKey, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, err
	}
	raw := keyPrefix + base64.RawURLEncoding.EncodeToString(buf)
	return raw, keyRecord(raw, name, rpm), nil
}

func keyRecord(raw, name string, rpm int) *models.APIKey {
	return &models.APIKey{
		ID:                uuid.New().String(),
		KeyHash:           hashKey(raw),
		Name:              name,
		RequestsPerMinute: rpm,
		CreatedAt:         time.Now().UTC(),
	}
}

// SeedBootstrapKey stores raw as an API key unless a key with the same hash
// already exists. It reports whether a key was created.
func SeedBootstrapKey(ctx context.Context, store database.Store, raw string, rpm int) (bool, error) {
	if raw == "" {
		return false, nil
	}
	existing, err := store.GetAPIKeyByHash(ctx, hashKey(raw))
	if err != nil {
		return false, fmt.Errorf("look up bootstrap key: %w", err)
	}
	if existing != nil {
		return false, nil
	}
	if err := store.CreateAPIKey(ctx, keyRecord(raw, "bootstrap", rpm)); err != nil {
		return false, fmt.Errorf("create bootstrap key: %w", err)
	}
	return true, nil
}
