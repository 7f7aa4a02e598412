// Package fraud provides the multi-channel fraud analysis engine.
package fraud

import (
	"errors"

	"github.com/scamwatch/sentinel/internal/lexicon"
	"github.com/scamwatch/sentinel/internal/models"
)

// Validation errors for single-item requests.
var (
	ErrMissingField   = errors.New("channel and content are required")
	ErrInvalidChannel = errors.New("invalid channel")
	ErrEmptyContent   = errors.New("content is empty")
)

// Weights are the additive score contributions of each signal.
type Weights struct {
	Keyword     float64
	Urgency     float64
	Domain      float64
	CallerSpoof float64
	Deepfake    float64
}

// Thresholds are the video heuristics. Measurements strictly below a
// threshold flag the stream.
type Thresholds struct {
	MinBlinkRatePerMin float64
	MinLipSyncScore    float64
}

// Options configures an Engine.
type Options struct {
	Weights    Weights
	Thresholds Thresholds
	// Workers bounds concurrent item evaluation in AnalyzeBatch.
	Workers int
}

// DefaultOptions returns the standard scoring constants.
func DefaultOptions() Options {
	return Options{
		Weights: Weights{
			Keyword:     0.25,
			Urgency:     0.15,
			Domain:      0.20,
			CallerSpoof: 0.25,
			Deepfake:    0.25,
		},
		Thresholds: Thresholds{
			MinBlinkRatePerMin: 6,
			MinLipSyncScore:    0.7,
		},
		Workers: 4,
	}
}

// Engine scores communications against an injected lexicon. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	lex  *lexicon.Lexicon
	opts Options
}

// NewEngine creates a new analysis engine. A nil lexicon selects the
// built-in tables.
func NewEngine(lex *lexicon.Lexicon, opts Options) *Engine {
	if lex == nil {
		lex = lexicon.Default()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Engine{lex: lex, opts: opts}
}

// Analyze validates a single request and dispatches it to the channel's
// scorer.
func (e *Engine) Analyze(channel models.Channel, content string, md models.Metadata) (models.AnalysisResult, error) {
	if channel == "" || content == "" {
		return models.AnalysisResult{}, ErrMissingField
	}
	if !channel.Valid() {
		return models.AnalysisResult{}, ErrInvalidChannel
	}
	return e.score(channel, content, md), nil
}

func (e *Engine) score(channel models.Channel, content string, md models.Metadata) models.AnalysisResult {
	switch channel {
	case models.ChannelVoice:
		return e.ScoreVoice(content, md)
	case models.ChannelVideo:
		return e.ScoreVideo(content, md)
	default:
		return e.ScoreText(content, md.TextMetadata)
	}
}

// SeverityFor bands a score: above 0.75 is high, above 0.4 is medium.
func SeverityFor(score float64) models.Severity {
	switch {
	case score > 0.75:
		return models.SeverityHigh
	case score > 0.4:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// LabelFor marks scores above 0.5 as potential scams.
func LabelFor(score float64) models.Label {
	if score > 0.5 {
		return models.LabelPotentialScam
	}
	return models.LabelUnclear
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
