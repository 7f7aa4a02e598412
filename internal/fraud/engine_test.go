package fraud

import (
	"testing"

	"github.com/scamwatch/sentinel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_Validation(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name    string
		channel models.Channel
		content string
		wantErr error
	}{
		{"missing channel", "", "hello", ErrMissingField},
		{"missing content", models.ChannelText, "", ErrMissingField},
		{"unknown channel", "fax", "hello", ErrInvalidChannel},
		{"text", models.ChannelText, "hello", nil},
		{"voice", models.ChannelVoice, "hello", nil},
		{"video", models.ChannelVideo, "hello", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Analyze(tt.channel, tt.content, models.Metadata{})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAnalyze_DispatchesByChannel(t *testing.T) {
	e := newTestEngine()
	md := models.Metadata{
		VoiceMetadata: models.VoiceMetadata{SpoofedCallerID: true},
		VideoMetadata: models.VideoMetadata{
			DeepfakeIndicators: &models.DeepfakeIndicators{BlinkRatePerMin: ptr(1)},
		},
	}

	text, err := e.Analyze(models.ChannelText, "hello", md)
	require.NoError(t, err)
	voice, err := e.Analyze(models.ChannelVoice, "hello", md)
	require.NoError(t, err)
	video, err := e.Analyze(models.ChannelVideo, "hello", md)
	require.NoError(t, err)

	assert.Empty(t, text.Reasons)
	assert.Equal(t, []string{reasonSpoof}, voice.Reasons)
	assert.Equal(t, []string{reasonDeepfake}, video.Reasons)
	assert.Len(t, text.Advice, 3)
	assert.Len(t, voice.Advice, 3)
	assert.Len(t, video.Advice, 5)
}

func TestNewEngine_Defaults(t *testing.T) {
	e := NewEngine(nil, Options{})

	res, err := e.Analyze(models.ChannelText, "digital arrest", models.Metadata{})

	require.NoError(t, err)
	assert.Equal(t, []string{"Keywords detected: digital arrest"}, res.Reasons)
	// zero weights contribute nothing
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, 1, e.opts.Workers)
}
