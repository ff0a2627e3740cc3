package section

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlpha       = regexp.MustCompile(`[^a-z]`)
	spacedLetters  = regexp.MustCompile(`\b([a-z])(?:\s+([a-z])\b)+`)
	trailingColon  = regexp.MustCompile(`:\s*$`)
)

// Normalize implements §4.5's stylized-header normalization: NFKD-fold
// accents (so "RÉSUMÉ"/"FORMATION" normalize the same as their unaccented
// forms), lowercase, collapse single-letter-space runs
// ("e x p e r i e n c e" -> "experience"), then strip non-alphabetic
// characters.
//
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s), since
// its output already contains only lowercase ASCII letters with no spaces
// left for the collapse pass to touch.
func Normalize(s string) string {
	folded := stripAccents(s)
	folded = strings.ToLower(folded)
	collapsed := collapseSpacedLetters(folded)
	return nonAlpha.ReplaceAllString(collapsed, "")
}

func stripAccents(s string) string {
	t := norm.NFKD.String(s)
	var b strings.Builder
	b.Grow(len(t))
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// collapseSpacedLetters turns "e x p e r i e n c e" into "experience" by
// repeatedly collapsing runs of single letters separated by whitespace.
func collapseSpacedLetters(s string) string {
	for {
		next := spacedLetters.ReplaceAllStringFunc(s, func(m string) string {
			return strings.ReplaceAll(m, " ", "")
		})
		if next == s {
			return next
		}
		s = next
	}
}

// TrimTrailingColon strips one trailing colon (and surrounding whitespace)
// used by the matcher's prefix/colon-trim step.
func TrimTrailingColon(s string) string {
	return trailingColon.ReplaceAllString(strings.TrimSpace(s), "")
}
