// Package models defines the core data structures used throughout the application.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Channel is the medium of the communication being analyzed.
type Channel string

const (
	ChannelText  Channel = "text"
	ChannelVoice Channel = "voice"
	ChannelVideo Channel = "video"
)

// ChannelMixed tags audit entries for batches spanning several channels. It
// is not an analyzable channel.
const ChannelMixed Channel = "mixed"

// Valid reports whether c is one of the supported channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelText, ChannelVoice, ChannelVideo:
		return true
	}
	return false
}

// Severity is a coarse banding of the risk score.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Label is the verdict derived from the risk score.
type Label string

const (
	LabelPotentialScam Label = "potential_scam"
	LabelUnclear       Label = "unclear"
)

// Highlight is a matched risk phrase and the offset of its first occurrence
// in the original content. Index counts Unicode code points, not bytes and
// not UTF-16 code units: a UI indexing a JavaScript string must convert for
// text containing characters outside the Basic Multilingual Plane (emoji).
type Highlight struct {
	Phrase string `json:"phrase"`
	Index  int    `json:"index"`
}

// AnalysisResult is the outcome of scoring one communication.
type AnalysisResult struct {
	Label      Label       `json:"label"`
	Score      float64     `json:"score"`
	Severity   Severity    `json:"severity"`
	Reasons    []string    `json:"reasons"`
	Highlights []Highlight `json:"highlights"`
	Advice     []string    `json:"advice"`
}

// TextMetadata carries optional SMS/email envelope fields.
type TextMetadata struct {
	Sender  string `json:"sender,omitempty"`
	Subject string `json:"subject,omitempty"`
	Source  string `json:"source,omitempty"`
}

// VoiceMetadata carries optional call signalling fields.
type VoiceMetadata struct {
	CallerID        string `json:"callerId,omitempty"`
	SpoofedCallerID bool   `json:"spoofedCallerId,omitempty"`
}

// DeepfakeIndicators are video-stream heuristics. Nil fields mean "not measured".
type DeepfakeIndicators struct {
	BlinkRatePerMin *float64 `json:"blinkRatePerMin,omitempty"`
	LipSyncScore    *float64 `json:"lipSyncScore,omitempty"`
}

// VideoMetadata carries optional video-call fields.
type VideoMetadata struct {
	DeepfakeIndicators *DeepfakeIndicators `json:"deepfakeIndicators,omitempty"`
	Platform           string              `json:"platform,omitempty"`
}

// Metadata is the union of all channel metadata. The embedded structs keep
// the wire format flat, e.g. {"sender": "...", "callerId": "..."}.
type Metadata struct {
	TextMetadata
	VoiceMetadata
	VideoMetadata
}

// AnalyzeRequest is the request body for single-item analysis.
type AnalyzeRequest struct {
	Channel  Channel  `json:"channel" validate:"required"`
	Content  string   `json:"content" validate:"required"`
	Metadata Metadata `json:"metadata"`
}

// AnalyzeResponse echoes the request alongside its analysis.
type AnalyzeResponse struct {
	Channel  Channel        `json:"channel"`
	Content  string         `json:"content"`
	Metadata Metadata       `json:"metadata"`
	Analysis AnalysisResult `json:"analysis"`
}

// ItemID identifies a batch item. Clients send either a JSON string or a
// number; both decode to the textual form.
type ItemID string

// UnmarshalJSON accepts strings, numbers and null.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*id = ""
		return nil
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id must be a string or number: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// BatchItem is one entry of a batch request. Metadata fields sit directly on
// the item rather than under a nested key.
type BatchItem struct {
	ID      ItemID  `json:"id"`
	Channel Channel `json:"channel"`
	Content string  `json:"content"`
	Metadata
}

// BatchEntry is one entry of a batch response: either an embedded result or
// an error, always tagged with the item ID.
type BatchEntry struct {
	ID ItemID `json:"id"`
	*AnalysisResult
	Error string `json:"error,omitempty"`
}

// BatchResponse wraps batch results.
type BatchResponse struct {
	Results []BatchEntry `json:"results"`
}

// SampleRecord is a fixture normalized into analyzable shape.
type SampleRecord struct {
	ID       string   `json:"id"`
	Channel  Channel  `json:"channel"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// APIKey represents an API key for authentication.
type APIKey struct {
	ID                string     `json:"id"`
	KeyHash           string     `json:"-"` // Never expose
	Name              string     `json:"name"`
	RequestsPerMinute int        `json:"requests_per_minute"`
	CreatedAt         time.Time  `json:"created_at"`
	LastUsedAt        *time.Time `json:"last_used_at,omitempty"`
}

// AuditLog represents an API request audit entry. It records request shape
// and analysis outcome counts, never the analyzed content.
type AuditLog struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id,omitempty"`
	APIKeyID     string    `json:"api_key_id"`
	Endpoint     string    `json:"endpoint"`
	Method       string    `json:"method"`
	RequestSize  int64     `json:"request_size"`
	ResponseCode int       `json:"response_code"`
	DurationMs   int64     `json:"duration_ms"`
	Channel      Channel   `json:"channel,omitempty"` // "mixed" for multi-channel batches
	Items        int       `json:"items"`
	Flagged      int       `json:"flagged"`
	Failed       int       `json:"failed"`
	Timestamp    time.Time `json:"timestamp"`
}
