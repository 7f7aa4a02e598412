// Package database provides the data access layer with support for multiple backends.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/scamwatch/sentinel/internal/config"
	"github.com/scamwatch/sentinel/internal/models"
)

// Store defines the interface for data persistence. Analyses themselves are
// never stored; only API keys and request audit entries are.
type Store interface {
	// API Keys
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	GetAPIKeyByHash(ctx context.Context, hash string) (*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id string, t time.Time) error
	DeleteAPIKey(ctx context.Context, id string) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)

	// Audit logs
	LogRequest(ctx context.Context, log *models.AuditLog) error
	GetAuditLogs(ctx context.Context, filter AuditFilter) ([]*models.AuditLog, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
	Migrate() error
}

// AuditFilter selects audit entries, newest first. Zero fields match
// everything.
type AuditFilter struct {
	Limit    int
	Offset   int
	Channel  models.Channel
	APIKeyID string
}

func (f AuditFilter) matches(l *models.AuditLog) bool {
	if f.Channel != "" && l.Channel != f.Channel {
		return false
	}
	if f.APIKeyID != "" && l.APIKeyID != f.APIKeyID {
		return false
	}
	return true
}

// Open creates the store selected by cfg.
func Open(cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}
