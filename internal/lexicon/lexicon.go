// Package lexicon holds the phrase tables used to score communications.
package lexicon

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var defaultKeywords = []string{
	"digital arrest",
	"arrest warrant",
	"immediate payment",
	"escrow",
	"verify now",
	"kyc now",
	"suspended",
	"threat",
	"legal action",
	"pan is flagged",
	"compromised",
	"refund deposit",
	"cyber cell",
	"law enforcement",
}

var defaultUrgency = []string{
	"immediately",
	"now",
	"within 10 minutes",
	"urgent",
	"final notice",
	"deadline",
	"last warning",
}

var defaultDomains = []string{
	"paytm-secure.co.in",
	"verify-secure-bank.com",
}

var defaultCallerPrefixes = []string{
	"140-",
}

// Term is a lexicon entry. Phrase keeps the configured spelling for display;
// needle is its lowercase form used for matching.
type Term struct {
	Phrase string
	needle string
}

// Needle returns the lowercase form of the phrase.
func (t Term) Needle() string { return t.needle }

// Lexicon is an immutable set of phrase tables. Build one with New, Default
// or Load; there are no mutating methods.
type Lexicon struct {
	keywords       []Term
	urgency        []Term
	domains        []Term
	callerPrefixes []Term
}

// File is the YAML layout of a lexicon override file.
type File struct {
	Keywords       []string `yaml:"keywords"`
	Urgency        []string `yaml:"urgency"`
	Domains        []string `yaml:"suspicious_domains"`
	CallerPrefixes []string `yaml:"caller_id_prefixes"`
}

// New builds a lexicon from the given tables. Blank entries are dropped.
func New(keywords, urgency, domains, callerPrefixes []string) *Lexicon {
	return &Lexicon{
		keywords:       terms(keywords),
		urgency:        terms(urgency),
		domains:        terms(domains),
		callerPrefixes: terms(callerPrefixes),
	}
}

// Default returns the built-in tables.
func Default() *Lexicon {
	return New(defaultKeywords, defaultUrgency, defaultDomains, defaultCallerPrefixes)
}

// Load reads a YAML lexicon file. Tables omitted from the file fall back to
// the built-in defaults.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}

	f := File{
		Keywords:       defaultKeywords,
		Urgency:        defaultUrgency,
		Domains:        defaultDomains,
		CallerPrefixes: defaultCallerPrefixes,
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon file: %w", err)
	}

	lex := New(f.Keywords, f.Urgency, f.Domains, f.CallerPrefixes)
	if len(lex.keywords) == 0 && len(lex.urgency) == 0 {
		return nil, fmt.Errorf("lexicon %s has no keyword or urgency phrases", path)
	}
	return lex, nil
}

// Keywords returns the scam keyword phrases in check order.
func (l *Lexicon) Keywords() []Term { return clone(l.keywords) }

// Urgency returns the urgency phrases in check order.
func (l *Lexicon) Urgency() []Term { return clone(l.urgency) }

// Domains returns the suspicious sender domain fragments.
func (l *Lexicon) Domains() []Term { return clone(l.domains) }

// CallerPrefixes returns caller-ID fragments that indicate spoofing.
func (l *Lexicon) CallerPrefixes() []Term { return clone(l.callerPrefixes) }

// MatchKeywords returns every keyword phrase contained in lowered.
func (l *Lexicon) MatchKeywords(lowered string) []string {
	return contained(l.keywords, lowered)
}

// MatchUrgency returns every urgency phrase contained in lowered.
func (l *Lexicon) MatchUrgency(lowered string) []string {
	return contained(l.urgency, lowered)
}

// SuspiciousDomain reports whether any lowercase domain variant contains a
// suspicious domain fragment.
func (l *Lexicon) SuspiciousDomain(domains ...string) bool {
	for _, d := range domains {
		if d == "" {
			continue
		}
		for _, t := range l.domains {
			if strings.Contains(d, t.needle) {
				return true
			}
		}
	}
	return false
}

// SpoofedCallerID reports whether callerID contains a non-standard prefix.
func (l *Lexicon) SpoofedCallerID(callerID string) bool {
	if callerID == "" {
		return false
	}
	lowered := strings.ToLower(callerID)
	for _, t := range l.callerPrefixes {
		if strings.Contains(lowered, t.needle) {
			return true
		}
	}
	return false
}

// Matching is plain substring containment, so "now" matches inside "know".
func contained(ts []Term, lowered string) []string {
	var hits []string
	for _, t := range ts {
		if strings.Contains(lowered, t.needle) {
			hits = append(hits, t.Phrase)
		}
	}
	return hits
}

func terms(phrases []string) []Term {
	out := make([]Term, 0, len(phrases))
	for _, p := range phrases {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, Term{Phrase: p, needle: strings.ToLower(p)})
	}
	return out
}

func clone(ts []Term) []Term {
	out := make([]Term, len(ts))
	copy(out, ts)
	return out
}
