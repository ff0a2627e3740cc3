// Package assemble implements the Section Assembler (§4.7): it walks the
// column-traversal-ordered stream of lines a page produces, opens a new
// Section at each header, attaches intervening body lines, and merges
// repeated canonical names across pages.
package assemble

import (
	"regexp"

	"github.com/tsawler/sectio/layout"
	"github.com/tsawler/sectio/section"
)

// Section is one assembled output section: a canonical name, the column
// references its lines were drawn from, and its ordered body lines.
type Section struct {
	Canonical     string
	SourceColumns []ColumnRef
	BodyLines     []layout.TextLine
	FirstPage     int
	LastPage      int
}

// ColumnRef identifies one (page, column) a Section drew lines from.
type ColumnRef struct {
	Page   int
	Column int
}

// UnknownHeader is a diagnostic record for a header line that the matcher
// could not resolve above the learn threshold.
type UnknownHeader struct {
	Raw         string
	Page        int
	Score       float64
	Suggestions []section.Suggestion
}

// Diagnostics accompanies the assembled section list, per §4.7's output
// contract.
type Diagnostics struct {
	UnknownHeaders  []UnknownHeader
	LearnedVariants []string
}

var contactSniffer = regexp.MustCompile(`(?i)[\w.+-]+@[\w-]+\.[\w.-]+|\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b|https?://|www\.`)

// looksLikeContact reports whether text contains an email, phone, or URL
// token, per §4.7's bootstrap rule for pre-header lines.
func looksLikeContact(text string) bool {
	return contactSniffer.MatchString(text)
}
