package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Tables(t *testing.T) {
	lex := Default()

	assert.Len(t, lex.Keywords(), 14)
	assert.Len(t, lex.Urgency(), 7)
	assert.Len(t, lex.Domains(), 2)
	assert.Equal(t, "digital arrest", lex.Keywords()[0].Phrase)
}

func TestLexicon_ReturnsCopies(t *testing.T) {
	lex := Default()

	kws := lex.Keywords()
	kws[0] = Term{Phrase: "changed"}

	assert.Equal(t, "digital arrest", lex.Keywords()[0].Phrase)
}

func TestMatch_CaseInsensitiveKeepsDisplayCase(t *testing.T) {
	lex := New([]string{"Digital Arrest", "escrow"}, []string{"NOW"}, nil, nil)

	assert.Equal(t, []string{"Digital Arrest"}, lex.MatchKeywords("you are under digital arrest"))
	assert.Equal(t, []string{"NOW"}, lex.MatchUrgency("act now"))
	assert.Nil(t, lex.MatchKeywords("nothing here"))
}

func TestMatch_Order(t *testing.T) {
	lex := Default()

	hits := lex.MatchKeywords("cyber cell says digital arrest")

	assert.Equal(t, []string{"digital arrest", "cyber cell"}, hits)
}

func TestNew_DropsBlankEntries(t *testing.T) {
	lex := New([]string{"", "  ", "escrow"}, nil, []string{""}, nil)

	assert.Len(t, lex.Keywords(), 1)
	assert.Empty(t, lex.Domains())
	assert.False(t, lex.SuspiciousDomain("anything.com"))
}

func TestSuspiciousDomain(t *testing.T) {
	lex := Default()

	assert.True(t, lex.SuspiciousDomain("paytm-secure.co.in"))
	assert.True(t, lex.SuspiciousDomain("", "mail.verify-secure-bank.com"))
	assert.False(t, lex.SuspiciousDomain("paytm.com"))
	assert.False(t, lex.SuspiciousDomain())
}

func TestSpoofedCallerID(t *testing.T) {
	lex := Default()

	assert.True(t, lex.SpoofedCallerID("140-123-4567"))
	assert.True(t, lex.SpoofedCallerID("+91 140-123"))
	assert.False(t, lex.SpoofedCallerID("+91-98765-43210"))
	assert.False(t, lex.SpoofedCallerID(""))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
keywords:
  - gift card
  - wire transfer
suspicious_domains:
  - example-bank-login.com
`), 0644))

	lex, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"gift card"}, lex.MatchKeywords("buy a gift card"))
	// omitted tables keep the built-in defaults
	assert.Len(t, lex.Urgency(), 7)
	assert.Len(t, lex.CallerPrefixes(), 1)
	assert.True(t, lex.SuspiciousDomain("example-bank-login.com"))
	assert.False(t, lex.SuspiciousDomain("paytm-secure.co.in"))
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read lexicon file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("keywords: [unclosed"), 0644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "failed to parse lexicon file")

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("keywords: []\nurgency: []\n"), 0644))
	_, err = Load(empty)
	assert.ErrorContains(t, err, "no keyword or urgency phrases")
}
