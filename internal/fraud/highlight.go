package fraud

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/scamwatch/sentinel/internal/models"
)

// folded is a lowercase copy of a text with a map from each byte of the copy
// back to the rune offset in the original. Lowercasing can change the byte
// width of a rune, so offsets found in the copy are translated through the map.
type folded struct {
	text   string
	runeAt []int
}

func fold(s string) folded {
	var b strings.Builder
	b.Grow(len(s))
	runeAt := make([]int, 0, len(s))
	n := 0
	for _, r := range s {
		lr := unicode.ToLower(r)
		b.WriteRune(lr)
		for w := utf8.RuneLen(lr); w > 0; w-- {
			runeAt = append(runeAt, n)
		}
		n++
	}
	return folded{text: b.String(), runeAt: runeAt}
}

func (f folded) index(phrase string) int {
	i := strings.Index(f.text, strings.ToLower(phrase))
	if i < 0 {
		return -1
	}
	return f.runeAt[i]
}

// Highlight locates the first case-insensitive occurrence of each phrase in
// content. Output order follows phrases; phrases that do not occur are
// skipped. Index is a rune offset: an emoji before the match counts as one,
// where a JavaScript string index would count two.
func Highlight(content string, phrases []string) []models.Highlight {
	return fold(content).highlight(phrases)
}

func (f folded) highlight(phrases []string) []models.Highlight {
	hits := make([]models.Highlight, 0, len(phrases))
	for _, p := range phrases {
		if p == "" {
			continue
		}
		if i := f.index(p); i >= 0 {
			hits = append(hits, models.Highlight{Phrase: p, Index: i})
		}
	}
	return hits
}
