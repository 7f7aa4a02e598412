package fraud

import (
	"testing"

	"github.com/scamwatch/sentinel/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestHighlight_FirstOccurrenceCaseInsensitive(t *testing.T) {
	got := Highlight("URGENT urgent Urgent", []string{"urgent"})

	assert.Equal(t, []models.Highlight{{Phrase: "urgent", Index: 0}}, got)
}

func TestHighlight_FollowsPhraseOrder(t *testing.T) {
	content := "Pay now or face legal action"

	got := Highlight(content, []string{"legal action", "now"})

	assert.Equal(t, []models.Highlight{
		{Phrase: "legal action", Index: 16},
		{Phrase: "now", Index: 4},
	}, got)
}

func TestHighlight_SkipsMissing(t *testing.T) {
	got := Highlight("nothing to see", []string{"escrow", "", "see"})

	assert.Equal(t, []models.Highlight{{Phrase: "see", Index: 11}}, got)
}

func TestHighlight_RuneOffsets(t *testing.T) {
	// "₹" is three bytes but one character
	got := Highlight("₹5000 refund deposit", []string{"refund deposit"})

	assert.Equal(t, []models.Highlight{{Phrase: "refund deposit", Index: 6}}, got)
}

func TestHighlight_AstralPlaneCountsOnce(t *testing.T) {
	// U+1F6A8 is four UTF-8 bytes and two UTF-16 code units
	got := Highlight("\U0001F6A8 escrow", []string{"escrow"})

	assert.Equal(t, []models.Highlight{{Phrase: "escrow", Index: 2}}, got)
}

func TestHighlight_WidthChangingLowercase(t *testing.T) {
	// "İ" is two bytes but lowercases to the one-byte "i"
	got := Highlight("İİ escrow", []string{"escrow"})

	assert.Equal(t, []models.Highlight{{Phrase: "escrow", Index: 3}}, got)
}

func TestHighlight_Empty(t *testing.T) {
	assert.Empty(t, Highlight("", []string{"now"}))
	assert.NotNil(t, Highlight("text", nil))
}
