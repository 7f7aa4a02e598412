package fraud

import (
	"regexp"
	"strings"

	"github.com/scamwatch/sentinel/internal/models"
	"golang.org/x/net/idna"
)

// senderDomain captures everything after the "@" of a local@domain address.
var senderDomain = regexp.MustCompile(`@([^\s>]+)$`)

var baseAdvice = []string{
	"Do not click links or share OTPs.",
	"Verify caller/sender via official website/app.",
	"Report to cybercrime.gov.in if in India.",
}

const (
	reasonDomain   = "Suspicious sender domain"
	reasonSpoof    = "Possible caller ID spoofing"
	reasonDeepfake = "Possible deepfake indicators (blink/lip-sync anomaly)"
)

// ScoreText scores raw text from any channel. It assumes content is non-empty.
func (e *Engine) ScoreText(content string, md models.TextMetadata) models.AnalysisResult {
	f := fold(content)
	kwHits := e.lex.MatchKeywords(f.text)
	urgHits := e.lex.MatchUrgency(f.text)
	domainFlag := e.suspiciousSender(md.Sender)

	w := e.opts.Weights
	score := clamp(float64(len(kwHits))*w.Keyword +
		float64(len(urgHits))*w.Urgency +
		flag(domainFlag)*w.Domain)

	reasons := []string{}
	if len(kwHits) > 0 {
		reasons = append(reasons, "Keywords detected: "+strings.Join(kwHits, ", "))
	}
	if len(urgHits) > 0 {
		reasons = append(reasons, "Urgency cues: "+strings.Join(urgHits, ", "))
	}
	if domainFlag {
		reasons = append(reasons, reasonDomain)
	}

	phrases := make([]string, 0, len(kwHits)+len(urgHits))
	phrases = append(phrases, kwHits...)
	phrases = append(phrases, urgHits...)

	return models.AnalysisResult{
		Label:      LabelFor(score),
		Score:      score,
		Severity:   SeverityFor(score),
		Reasons:    reasons,
		Highlights: f.highlight(phrases),
		Advice:     append([]string(nil), baseAdvice...),
	}
}

// suspiciousSender extracts the domain of a local@domain sender and checks it
// against the lexicon. Punycode domains are also checked in Unicode form.
func (e *Engine) suspiciousSender(sender string) bool {
	if sender == "" {
		return false
	}
	m := senderDomain.FindStringSubmatch(sender)
	if m == nil {
		return false
	}
	dom := strings.ToLower(m[1])
	variants := []string{dom}
	if strings.Contains(dom, "xn--") {
		if u, err := idna.ToUnicode(dom); err == nil && u != dom {
			variants = append(variants, strings.ToLower(u))
		}
	}
	return e.lex.SuspiciousDomain(variants...)
}

// withSignal returns a copy of base with an extra signal applied. Score,
// severity and label are recomputed together.
func withSignal(base models.AnalysisResult, weight float64, reason string) models.AnalysisResult {
	score := clamp(base.Score + weight)
	out := base
	out.Score = score
	out.Severity = SeverityFor(score)
	out.Label = LabelFor(score)
	out.Reasons = append(append([]string{}, base.Reasons...), reason)
	return out
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
