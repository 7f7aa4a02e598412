package fraud

import (
	"github.com/scamwatch/sentinel/internal/models"
)

var videoAdvice = []string{
	"Ask for official email confirmation from a .gov.in / official domain.",
	"Do not perform any payment on call/video; independently verify.",
}

const (
	defaultBlinkRatePerMin = 12.0
	defaultLipSyncScore    = 1.0
)

// ScoreVoice scores a call transcript and adds the caller-ID spoofing signal.
func (e *Engine) ScoreVoice(transcript string, md models.Metadata) models.AnalysisResult {
	base := e.ScoreText(transcript, md.TextMetadata)
	if !e.callerSpoofed(md.VoiceMetadata) {
		return base
	}
	return withSignal(base, e.opts.Weights.CallerSpoof, reasonSpoof)
}

// ScoreVideo scores a video-call transcript, adds the deepfake signal and
// extends the advice.
func (e *Engine) ScoreVideo(transcript string, md models.Metadata) models.AnalysisResult {
	base := e.ScoreText(transcript, md.TextMetadata)
	out := base
	if e.deepfakeSuspected(md.VideoMetadata) {
		out = withSignal(base, e.opts.Weights.Deepfake, reasonDeepfake)
	}
	out.Advice = append(append([]string{}, base.Advice...), videoAdvice...)
	return out
}

func (e *Engine) callerSpoofed(md models.VoiceMetadata) bool {
	return md.SpoofedCallerID || e.lex.SpoofedCallerID(md.CallerID)
}

// deepfakeSuspected applies the blink and lip-sync thresholds. Missing
// measurements default to 12 blinks/min and a lip-sync score of 1.0.
func (e *Engine) deepfakeSuspected(md models.VideoMetadata) bool {
	blink, lipSync := defaultBlinkRatePerMin, defaultLipSyncScore
	if ind := md.DeepfakeIndicators; ind != nil {
		if ind.BlinkRatePerMin != nil {
			blink = *ind.BlinkRatePerMin
		}
		if ind.LipSyncScore != nil {
			lipSync = *ind.LipSyncScore
		}
	}
	t := e.opts.Thresholds
	return blink < t.MinBlinkRatePerMin || lipSync < t.MinLipSyncScore
}
