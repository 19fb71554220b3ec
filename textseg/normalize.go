package textseg

import (
	"strings"
	"unicode"
)

// Punctuation kept by Normalize, everything else outside letters,
// digits and underscore is dropped.
var keptPunctuation = map[rune]bool{
	'.': true, ',': true, '!': true, '?': true, '-': true, ':': true, ';': true,
}

// Normalize cleans raw text before segmentation: runes outside the
// allow-set (letters, digits, underscore and common punctuation) are
// removed, whitespace runs collapse to single spaces, and the result
// is trimmed. Normalize is pure and idempotent.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case keptPunctuation[r]:
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
