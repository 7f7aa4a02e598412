package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/scamwatch/sentinel/internal/models"
)

// MemoryStore implements Store in process memory. Contents are lost on exit.
type MemoryStore struct {
	mu    sync.RWMutex
	keys  map[string]models.APIKey // by ID
	audit []models.AuditLog
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string]models.APIKey)}
}

func (s *MemoryStore) Migrate() error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.ID] = *key
	return nil
}

func (s *MemoryStore) GetAPIKeyByHash(ctx context.Context, hash string) (*models.APIKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range s.keys {
		if k.KeyHash == hash {
			k := k
			return &k, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) UpdateAPIKeyLastUsed(ctx context.Context, id string, t time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if k, ok := s.keys[id]; ok {
		k.LastUsedAt = &t
		s.keys[id] = k
	}
	return nil
}

func (s *MemoryStore) DeleteAPIKey(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, id)
	return nil
}

func (s *MemoryStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]*models.APIKey, 0, len(s.keys))
	for _, k := range s.keys {
		k := k
		k.KeyHash = ""
		keys = append(keys, &k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].CreatedAt.After(keys[j].CreatedAt) })
	return keys, nil
}

func (s *MemoryStore) LogRequest(ctx context.Context, log *models.AuditLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, *log)
	return nil
}

// GetAuditLogs returns matching entries newest first.
func (s *MemoryStore) GetAuditLogs(ctx context.Context, f AuditFilter) ([]*models.AuditLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.AuditLog, 0, len(s.audit))
	for i := range s.audit {
		l := s.audit[i]
		if f.matches(&l) {
			matched = append(matched, &l)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Timestamp.After(matched[j].Timestamp) })

	offset := max(f.Offset, 0)
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, nil
}
