// Package api provides HTTP API handlers and middleware.
package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/scamwatch/sentinel/internal/database"
	"github.com/scamwatch/sentinel/internal/models"
)

type contextKey string

const (
	apiKeyContextKey contextKey = "apiKey"
	requestIDKey     contextKey = "requestID"
	auditNoteKey     contextKey = "auditNote"
)

// AuthMiddleware validates Bearer API keys against the store.
func AuthMiddleware(store database.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				writeError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			key, err := store.GetAPIKeyByHash(r.Context(), hashKey(parts[1]))
			if err != nil {
				log.Error().Err(err).Msg("Failed to look up API key")
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if key == nil {
				writeError(w, http.StatusUnauthorized, "Invalid API key")
				return
			}

			go func(id string) {
				if err := store.UpdateAPIKeyLastUsed(context.Background(), id, time.Now().UTC()); err != nil {
					log.Warn().Err(err).Str("api_key_id", id).Msg("Failed to update key last use")
				}
			}(key.ID)

			ctx := context.WithValue(r.Context(), apiKeyContextKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware adds a unique request ID to each request.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware logs every request. Bodies are never logged.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Str("request_id", getRequestID(r.Context())).
			Msg("Request completed")
	})
}

// AuditMiddleware records request shape and analysis outcome counts (never
// content) to the store.
func AuditMiddleware(store database.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			note := &auditNote{}

			next.ServeHTTP(wrapped, r.WithContext(context.WithValue(r.Context(), auditNoteKey, note)))

			entry := &models.AuditLog{
				ID:           uuid.New().String(),
				RequestID:    getRequestID(r.Context()),
				Endpoint:     r.URL.Path,
				Method:       r.Method,
				RequestSize:  r.ContentLength,
				ResponseCode: wrapped.status,
				DurationMs:   time.Since(start).Milliseconds(),
				Channel:      note.channel,
				Items:        note.items,
				Flagged:      note.flagged,
				Failed:       note.failed,
				Timestamp:    start.UTC(),
			}
			if key := getAPIKey(r.Context()); key != nil {
				entry.APIKeyID = key.ID
			}

			go func() {
				if err := store.LogRequest(context.Background(), entry); err != nil {
					log.Error().Err(err).Msg("Failed to log audit entry")
				}
			}()
		})
	}
}

// auditNote collects analysis outcomes from a handler for its audit entry.
type auditNote struct {
	channel models.Channel
	items   int
	flagged int
	failed  int
}

func noteAnalysis(ctx context.Context, channel models.Channel, res models.AnalysisResult) {
	n, ok := ctx.Value(auditNoteKey).(*auditNote)
	if !ok {
		return
	}
	n.channel, n.items = channel, 1
	if res.Label == models.LabelPotentialScam {
		n.flagged = 1
	}
}

func noteBatch(ctx context.Context, entries []models.BatchEntry, channels []models.Channel) {
	n, ok := ctx.Value(auditNoteKey).(*auditNote)
	if !ok {
		return
	}
	n.items = len(entries)
	for _, e := range entries {
		switch {
		case e.AnalysisResult == nil:
			n.failed++
		case e.Label == models.LabelPotentialScam:
			n.flagged++
		}
	}
	for _, ch := range channels {
		switch {
		case n.channel == "":
			n.channel = ch
		case ch != n.channel:
			n.channel = models.ChannelMixed
		}
	}
}

// RateLimitMiddleware limits each API key to its own requests_per_minute,
// and unauthenticated clients (by address) to defaultLimit.
func RateLimitMiddleware(defaultLimit int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		var mu sync.Mutex
		limiters := make(map[int]http.Handler)
		limiterFor := func(rpm int) http.Handler {
			mu.Lock()
			defer mu.Unlock()
			if h, ok := limiters[rpm]; ok {
				return h
			}
			h := httprate.Limit(
				rpm,
				time.Minute,
				httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
					if key := getAPIKey(r.Context()); key != nil {
						return key.ID, nil
					}
					return httprate.KeyByIP(r)
				}),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				}),
			)(next)
			limiters[rpm] = h
			return h
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit := defaultLimit
			if key := getAPIKey(r.Context()); key != nil && key.RequestsPerMinute > 0 {
				limit = key.RequestsPerMinute
			}
			limiterFor(limit).ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func hashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func getAPIKey(ctx context.Context) *models.APIKey {
	if key, ok := ctx.Value(apiKeyContextKey).(*models.APIKey); ok {
		return key
	}
	return nil
}

func getRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
