package acquire

import (
	"context"
	"fmt"
	"strings"

	"github.com/tsawler/sectio/docx"
	"github.com/tsawler/sectio/model"
)

// DocxSource is the text-layer word source for DOCX containers. OOXML has
// no absolute page coordinates without running a full layout engine, so
// sectio treats every DOCX as a single synthetic full-width column: the
// teacher's docx.Reader.Document() already assembles paragraphs/headings
// top-to-bottom on one page (yPos starts at 750 and decreases per
// element, see docx/reader.go), which this source converts into Tokens by
// splitting each element's bounding box among its words in proportion to
// their rune counts. This
// is recorded as an Open Question resolution in DESIGN.md: sectio never
// claims true multi-column detection for DOCX input, only Type1 layout.
type DocxSource struct{}

// Acquire implements acquire.WordSource for DOCX files.
func (DocxSource) Acquire(ctx context.Context, in Input) (model.Document, error) {
	if in.Path == "" {
		return model.Document{}, fmt.Errorf("acquire: %w", errNoPath)
	}
	r, err := docx.Open(in.Path)
	if err != nil {
		return model.Document{}, fmt.Errorf("acquire: opening DOCX %s: %w", in.Path, err)
	}
	defer r.Close()

	teacherDoc, err := r.Document()
	if err != nil {
		return model.Document{}, fmt.Errorf("acquire: parsing DOCX %s: %w", in.Path, err)
	}

	out := model.NewDocument()
	out.Metadata = teacherDoc.Metadata

	for _, p := range teacherDoc.Pages {
		select {
		case <-ctx.Done():
			return model.Document{}, ctx.Err()
		default:
		}
		np := model.NewPage(p.Width, p.Height)
		np.Number = p.Number - 1 // 0-based
		for _, elem := range p.Elements {
			np.Tokens = append(np.Tokens, elementToTokens(elem, np.Number, p.Height)...)
		}
		np.SortTokens()
		out.Pages = append(out.Pages, np)
	}
	return *out, nil
}

func elementToTokens(elem model.Element, page int, pageHeight float64) []model.Token {
	te, ok := elem.(model.TextElement)
	if !ok {
		return nil
	}
	text := te.GetText()
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	bbox := elem.BoundingBox()

	var fontSize float64 = 11
	var flags model.FontFlags
	switch e := elem.(type) {
	case *model.Paragraph:
		fontSize = e.FontSize
		flags = styleFlags(e.Style)
	case *model.Heading:
		fontSize = e.FontSize
		flags = styleFlags(e.Style)
	}

	totalRunes := 0
	for _, w := range words {
		totalRunes += len([]rune(w))
	}
	if totalRunes == 0 {
		return nil
	}

	var tokens []model.Token
	x := bbox.X
	yTop := pageHeight - (bbox.Y + bbox.Height)
	for _, w := range words {
		wlen := len([]rune(w))
		wWidth := bbox.Width * float64(wlen) / float64(totalRunes)
		tokens = append(tokens, model.Token{
			Text:       w,
			Page:       page,
			BBox:       model.BBox{X: x, Y: yTop, Width: wWidth, Height: bbox.Height},
			FontSize:   fontSize,
			FontFlags:  flags,
			Confidence: 1.0,
		})
		x += wWidth
	}
	return tokens
}

func styleFlags(s model.TextStyle) model.FontFlags {
	var f model.FontFlags
	if s.Bold {
		f |= model.FlagBold
	}
	if s.Italic {
		f |= model.FlagItalic
	}
	return f
}
