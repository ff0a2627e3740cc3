package acquire

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tsawler/sectio/model"
	"github.com/tsawler/sectio/reader"
	"github.com/tsawler/sectio/text"
)

// TextLayerSource extracts positioned words directly from a PDF's text
// layer, wrapping the teacher's reader.Reader + text.Extractor. A page
// whose tokens hold fewer than MinAlphaChars alphabetic characters (counted
// over the whole page, margins included) is left token-empty for that page
// only; no error is returned and the document as a whole still succeeds
// (§4.1: "C1 must ... if both sources yield zero tokens for a page, that
// page contributes an empty result but does not fail the document").
type TextLayerSource struct {
	MinAlpha int
}

// NewTextLayerSource returns a TextLayerSource with the §4.1 default
// minimum alphabetic-character threshold.
func NewTextLayerSource() *TextLayerSource {
	return &TextLayerSource{MinAlpha: MinAlphaChars}
}

// Acquire opens the PDF at in.Path and extracts one model.Page per PDF
// page. Pages below the MinAlpha threshold still appear in the result
// with zero tokens; the caller (the orchestrator) decides whether to
// engage OCR for them.
func (s *TextLayerSource) Acquire(ctx context.Context, in Input) (model.Document, error) {
	if in.Path == "" {
		return model.Document{}, fmt.Errorf("acquire: %w", errNoPath)
	}
	f, err := os.Open(in.Path)
	if err != nil {
		return model.Document{}, fmt.Errorf("acquire: opening %s: %w", in.Path, err)
	}
	defer f.Close()

	r, err := reader.NewReader(f)
	if err != nil {
		return model.Document{}, fmt.Errorf("acquire: reading PDF %s: %w", in.Path, err)
	}

	count, err := r.PageCount()
	if err != nil {
		return model.Document{}, fmt.Errorf("acquire: page count: %w", err)
	}

	doc := model.NewDocument()
	minAlpha := s.MinAlpha
	if minAlpha == 0 {
		minAlpha = MinAlphaChars
	}

	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			return model.Document{}, ctx.Err()
		default:
		}

		pdfPage, err := r.GetPage(i)
		if err != nil {
			page := model.NewPage(612, 792)
			page.Number = i
			doc.Pages = append(doc.Pages, page)
			continue
		}
		width, _ := pdfPage.Width()
		height, _ := pdfPage.Height()
		if width <= 0 {
			width = 612
		}
		if height <= 0 {
			height = 792
		}

		page := model.NewPage(width, height)
		page.Number = i

		fragments, err := r.ExtractTextFragments(pdfPage)
		if err != nil || len(fragments) == 0 {
			doc.Pages = append(doc.Pages, page)
			continue
		}

		tokens := fragmentsToTokens(fragments, i, height)
		if alphaCountOfTokens(tokens) < minAlpha {
			// Body too sparse; leave the page token-empty so the
			// orchestrator's NoExtractableText fallback can engage OCR.
			doc.Pages = append(doc.Pages, page)
			continue
		}
		page.Tokens = tokens
		page.SortTokens()
		doc.Pages = append(doc.Pages, page)
	}

	return *doc, nil
}

var errNoPath = fmt.Errorf("input has no file path")

func alphaCountOfTokens(tokens []model.Token) int {
	n := 0
	for _, t := range tokens {
		n += alphaCount(t.Text)
	}
	return n
}

// fragmentsToTokens splits each TextFragment into words, allocating each
// word's x-span proportionally by rune count, and flips the PDF's
// bottom-left-origin Y axis into acquire's top-left convention.
func fragmentsToTokens(fragments []text.TextFragment, page int, pageHeight float64) []model.Token {
	var tokens []model.Token
	for _, frag := range fragments {
		words := strings.Fields(frag.Text)
		if len(words) == 0 {
			continue
		}
		totalRunes := 0
		for _, w := range words {
			totalRunes += len([]rune(w))
		}
		if totalRunes == 0 {
			continue
		}
		x := frag.X
		yTop := pageHeight - (frag.Y + frag.Height)
		for _, w := range words {
			clean := cleanWord(w)
			if clean == "" {
				x += frag.Width * float64(len([]rune(w))) / float64(totalRunes)
				continue
			}
			wlen := len([]rune(w))
			wWidth := frag.Width * float64(wlen) / float64(totalRunes)
			tokens = append(tokens, model.Token{
				Text:      clean,
				Page:      page,
				BBox:      model.BBox{X: x, Y: yTop, Width: wWidth, Height: frag.Height},
				FontSize:  frag.FontSize,
				FontFlags: fontFlagsFromName(frag.FontName),
				Confidence: 1.0,
			})
			x += wWidth
		}
	}
	return tokens
}

func cleanWord(w string) string {
	if isStandalonePunct(w) {
		return w
	}
	return strings.TrimFunc(w, func(r rune) bool {
		return strings.ContainsRune(".,;:!?\"'()[]{}", r)
	})
}

func fontFlagsFromName(name string) model.FontFlags {
	lower := strings.ToLower(name)
	var flags model.FontFlags
	if strings.Contains(lower, "bold") {
		flags |= model.FlagBold
	}
	if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		flags |= model.FlagItalic
	}
	if strings.Contains(lower, "mono") || strings.Contains(lower, "courier") || strings.Contains(lower, "consolas") {
		flags |= model.FlagMonospace
	}
	return flags
}
