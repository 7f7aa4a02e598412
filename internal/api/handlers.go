// Package api provides HTTP API handlers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/scamwatch/sentinel/internal/config"
	"github.com/scamwatch/sentinel/internal/database"
	"github.com/scamwatch/sentinel/internal/fraud"
	"github.com/scamwatch/sentinel/internal/metrics"
	"github.com/scamwatch/sentinel/internal/models"
	"github.com/scamwatch/sentinel/internal/samples"
)

const version = "1.0.0"

// Handler contains all HTTP handlers.
type Handler struct {
	engine      *fraud.Engine
	store       database.Store
	samples     *samples.Set
	validate    *validator.Validate
	pingMessage string
	maxItems    int
	defaultRPM  int
}

// NewHandler creates a new handler.
func NewHandler(cfg *config.Config, engine *fraud.Engine, store database.Store, set *samples.Set) *Handler {
	return &Handler{
		engine:      engine,
		store:       store,
		samples:     set,
		validate:    newValidator(),
		pingMessage: cfg.Server.PingMessage,
		maxItems:    cfg.Batch.MaxItems,
		defaultRPM:  cfg.RateLimits.RequestsPerMinute,
	}
}

// Ping returns the configured liveness message.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": h.pingMessage})
}

// HealthCheck reports service health, including store reachability.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "healthy", http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("Store health check failed")
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"version":   version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Samples returns fixture records for the requested channel.
func (h *Handler) Samples(w http.ResponseWriter, r *http.Request) {
	kind := samples.ParseKind(r.URL.Query().Get("type"))
	writeJSON(w, http.StatusOK, h.samples.Get(kind))
}

// Analyze scores a single communication.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Debug().Strs("fields", missingFields(err)).Msg("Analyze request failed validation")
		writeError(w, http.StatusBadRequest, fraud.ErrMissingField.Error())
		return
	}

	result, err := h.engine.Analyze(req.Channel, req.Content, req.Metadata)
	if err != nil {
		if errors.Is(err, fraud.ErrMissingField) || errors.Is(err, fraud.ErrInvalidChannel) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Msg("Analysis failed")
		writeError(w, http.StatusInternalServerError, "Analysis failed")
		return
	}

	metrics.ObserveAnalysis(req.Channel, result)
	noteAnalysis(r.Context(), req.Channel, result)
	log.Debug().
		Str("channel", string(req.Channel)).
		Float64("score", result.Score).
		Str("severity", string(result.Severity)).
		Msg("Analysis completed")

	writeJSON(w, http.StatusOK, models.AnalyzeResponse{
		Channel:  req.Channel,
		Content:  req.Content,
		Metadata: req.Metadata,
		Analysis: result,
	})
}

// AnalyzeBatch scores a list of items. Item failures are reported inline
// and never fail the request.
func (h *Handler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items json.RawMessage `json:"items"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items, ok := rawItems(req.Items)
	if !ok {
		writeError(w, http.StatusBadRequest, "items must be an array")
		return
	}
	if len(items) > h.maxItems {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch exceeds %d items", h.maxItems))
		return
	}

	entries := h.engine.AnalyzeRawBatch(items)
	channels := itemChannels(items)
	metrics.ObserveBatch(entries, channels)
	noteBatch(r.Context(), entries, channels)

	writeJSON(w, http.StatusOK, models.BatchResponse{Results: entries})
}

// GetAuditLogs returns paginated audit logs.
func (h *Handler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	logs, err := h.store.GetAuditLogs(r.Context(), database.AuditFilter{
		Limit:    limit,
		Offset:   offset,
		Channel:  models.Channel(r.URL.Query().Get("channel")),
		APIKeyID: r.URL.Query().Get("api_key_id"),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to get audit logs")
		writeError(w, http.StatusInternalServerError, "Failed to get audit logs")
		return
	}
	if logs == nil {
		logs = []*models.AuditLog{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs":   logs,
		"limit":  limit,
		"offset": offset,
	})
}

type createKeyRequest struct {
	Name              string `json:"name" validate:"required"`
	RequestsPerMinute int    `json:"requests_per_minute" validate:"gte=0"`
}

// CreateAPIKey creates a new API key. A zero requests_per_minute uses the
// configured default.
func (h *Handler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req createKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.RequestsPerMinute == 0 {
		req.RequestsPerMinute = h.defaultRPM
	}

	rawKey, apiKey, err := generateKey(req.Name, req.RequestsPerMinute)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate key")
		return
	}

	if err := h.store.CreateAPIKey(r.Context(), apiKey); err != nil {
		log.Error().Err(err).Msg("Failed to create API key")
		writeError(w, http.StatusInternalServerError, "Failed to create API key")
		return
	}

	// The raw key is only ever returned here
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":                  apiKey.ID,
		"key":                 rawKey,
		"name":                apiKey.Name,
		"requests_per_minute": apiKey.RequestsPerMinute,
		"created_at":          apiKey.CreatedAt,
	})
}

// ListAPIKeys lists all API keys (without the actual keys).
func (h *Handler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.store.ListAPIKeys(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list API keys")
		writeError(w, http.StatusInternalServerError, "Failed to list API keys")
		return
	}
	if keys == nil {
		keys = []*models.APIKey{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"keys": keys,
	})
}

// DeleteAPIKey deletes an API key.
func (h *Handler) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "ID is required")
		return
	}

	if err := h.store.DeleteAPIKey(r.Context(), id); err != nil {
		log.Error().Err(err).Msg("Failed to delete API key")
		writeError(w, http.StatusInternalServerError, "Failed to delete API key")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// rawItems splits a JSON array into its elements. Anything other than an
// array is rejected.
func rawItems(raw json.RawMessage) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false
	}
	return items, true
}

// itemChannels peeks at each item's channel for metric labels.
func itemChannels(items []json.RawMessage) []models.Channel {
	out := make([]models.Channel, len(items))
	for i, raw := range items {
		var peek struct {
			Channel models.Channel `json:"channel"`
		}
		if json.Unmarshal(raw, &peek) == nil {
			out[i] = peek.Channel
		}
	}
	return out
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
