// Package acquire implements Word Source (C1): the capability §9 names as
// "a single WordSource capability {acquire(document) -> Pages}" with two
// concrete variants, TextLayerSource and OCRSource, exposing the same
// model.Token schema regardless of origin.
package acquire

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/tsawler/sectio/model"
)

// ErrNoExtractableText names the per-page (not per-document) condition in
// which a page's text layer yields fewer than MinAlphaChars alphabetic
// characters. TextLayerSource does not return it: it leaves such a page
// token-empty instead.
var ErrNoExtractableText = errors.New("acquire: page has no extractable text")

// MinAlphaChars is the §4.1 default minimum alphabetic-character count a
// page's tokens must contain for the text-layer source to accept it. The
// count covers every token on the page; margin bands are not excluded.
const MinAlphaChars = 20

// Input identifies the document to acquire words from.
type Input struct {
	Path  string
	Bytes []byte
}

// WordSource is the §9 capability: acquire(document) -> Pages.
type WordSource interface {
	Acquire(ctx context.Context, in Input) (model.Document, error)
}

var nonAlphaRE = regexp.MustCompile(`[^a-zA-Z]`)

func alphaCount(s string) int {
	return len(s) - len(nonAlphaRE.ReplaceAllString(s, ""))
}

// normalizeToken collapses internal whitespace runs to a single space and
// preserves original case. It leaves punctuation unchanged.
func normalizeToken(s string) string {
	fields := strings.Fields(s)
	joined := strings.Join(fields, " ")
	return joined
}

var standalonePunct = regexp.MustCompile(`^[[:punct:]]+$`)

func isStandalonePunct(s string) bool {
	return standalonePunct.MatchString(s)
}
