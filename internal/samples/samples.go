// Package samples provides the fixture corpora served to the UI and the scan CLI.
package samples

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/scamwatch/sentinel/internal/models"
)

//go:embed data/*.json
var embedded embed.FS

// Kind selects which corpus to return.
type Kind string

const (
	KindText  Kind = "text"
	KindVoice Kind = "voice"
	KindVideo Kind = "video"
	KindAll   Kind = "all"
)

// ParseKind maps a query value to a Kind. Anything unrecognized selects all
// corpora.
func ParseKind(s string) Kind {
	switch k := Kind(s); k {
	case KindText, KindVoice, KindVideo:
		return k
	}
	return KindAll
}

// TextSample is an SMS or email fixture.
type TextSample struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// VoiceSample is a call-transcript fixture.
type VoiceSample struct {
	ID              string `json:"id"`
	CallerID        string `json:"callerId"`
	SpoofedCallerID bool   `json:"spoofedCallerId"`
	Transcript      string `json:"transcript"`
}

// VideoSample is a video-call-transcript fixture.
type VideoSample struct {
	ID                 string                     `json:"id"`
	Platform           string                     `json:"platform"`
	DeepfakeIndicators *models.DeepfakeIndicators `json:"deepfakeIndicators,omitempty"`
	Transcript         string                     `json:"transcript"`
}

// Set holds all three corpora.
type Set struct {
	Text  []TextSample  `json:"text"`
	Voice []VoiceSample `json:"voice"`
	Video []VideoSample `json:"video"`
}

// Load returns the embedded corpora.
func Load() (*Set, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("samples: %w", err)
	}
	return LoadFS(sub)
}

// LoadFS reads text_samples.json, voice_samples.json and video_samples.json
// from the root of fsys.
func LoadFS(fsys fs.FS) (*Set, error) {
	var set Set
	files := []struct {
		name string
		dst  any
	}{
		{"text_samples.json", &set.Text},
		{"voice_samples.json", &set.Voice},
		{"video_samples.json", &set.Video},
	}
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f.name)
		if err != nil {
			return nil, fmt.Errorf("samples: read %s: %w", f.name, err)
		}
		if err := json.Unmarshal(data, f.dst); err != nil {
			return nil, fmt.Errorf("samples: parse %s: %w", f.name, err)
		}
	}
	return &set, nil
}

// Get returns the channel-appropriate records for k: a slice for a single
// channel, or the whole Set for KindAll.
func (s *Set) Get(k Kind) any {
	switch k {
	case KindText:
		return s.Text
	case KindVoice:
		return s.Voice
	case KindVideo:
		return s.Video
	default:
		return s
	}
}

// Normalize flattens the selected corpora into analyzable records, text
// first, then voice, then video.
func (s *Set) Normalize(k Kind) []models.SampleRecord {
	var out []models.SampleRecord
	if k == KindAll || k == KindText {
		for _, t := range s.Text {
			out = append(out, models.SampleRecord{
				ID:      t.ID,
				Channel: models.ChannelText,
				Content: t.Content,
				Metadata: models.Metadata{TextMetadata: models.TextMetadata{
					Sender:  t.Sender,
					Subject: t.Subject,
					Source:  t.Source,
				}},
			})
		}
	}
	if k == KindAll || k == KindVoice {
		for _, v := range s.Voice {
			out = append(out, models.SampleRecord{
				ID:      v.ID,
				Channel: models.ChannelVoice,
				Content: v.Transcript,
				Metadata: models.Metadata{VoiceMetadata: models.VoiceMetadata{
					CallerID:        v.CallerID,
					SpoofedCallerID: v.SpoofedCallerID,
				}},
			})
		}
	}
	if k == KindAll || k == KindVideo {
		for _, v := range s.Video {
			out = append(out, models.SampleRecord{
				ID:      v.ID,
				Channel: models.ChannelVideo,
				Content: v.Transcript,
				Metadata: models.Metadata{VideoMetadata: models.VideoMetadata{
					DeepfakeIndicators: v.DeepfakeIndicators,
					Platform:           v.Platform,
				}},
			})
		}
	}
	return out
}

// BatchItems converts normalized records into batch input.
func BatchItems(records []models.SampleRecord) []models.BatchItem {
	items := make([]models.BatchItem, len(records))
	for i, r := range records {
		items[i] = models.BatchItem{
			ID:       models.ItemID(r.ID),
			Channel:  r.Channel,
			Content:  r.Content,
			Metadata: r.Metadata,
		}
	}
	return items
}
