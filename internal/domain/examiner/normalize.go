package examiner

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize prepares text for keyword matching. It strips combining marks,
// applies Unicode case folding and collapses runs of whitespace.
func Normalize(text string) string {
	// Transformers and casers keep state, so they are built per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripMarks, text)
	if err != nil {
		stripped = text
	}
	folded := cases.Fold().String(stripped)
	return strings.Join(strings.Fields(folded), " ")
}

// tokens splits normalized text into letter/digit runs.
func tokens(normalized string) []string {
	return strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
