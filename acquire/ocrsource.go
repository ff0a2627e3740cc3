package acquire

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tsawler/sectio/model"
	"github.com/tsawler/sectio/ocr"
	"github.com/tsawler/sectio/pages"
	"github.com/tsawler/sectio/reader"
)

// DefaultPerPageTimeout is the §5 per-page OCR deadline used when
// OCRSource.PerPageTimeout is zero: a page whose render+recognize exceeds
// this is skipped (left blank) rather than stalling the whole document, so
// the orchestrator's fallback ordering still runs within its own budget.
const DefaultPerPageTimeout = 30 * time.Second

// DefaultDPI, MinDPI and MaxDPI are §6/§4.1's OCR_DPI default and valid range.
const (
	DefaultDPI = 300
	MinDPI     = 150
	MaxDPI     = 400
)

// RasterSource renders a PDF page to a raster image at the given DPI, for
// pages with no embedded page image (§4.1: "sectio does not ship a
// PDF-to-raster renderer; callers supplying scanned pages without an
// embedded page image must supply their own rendering"). Most real-world
// scanned resumes are a single full-page Image XObject, which OCRSource
// extracts directly without needing this interface.
type RasterSource interface {
	Render(ctx context.Context, pdfPath string, pageIndex int, dpi int) (png []byte, scale float64, err error)
}

// OCRSource is the §4.1 OCR word source: renders a page to a raster (via an
// embedded page image, or a caller-supplied RasterSource) and runs it
// through an ocr.Provider, mapping recognized word boxes back into page
// coordinates via the render scale.
type OCRSource struct {
	Provider       ocr.Provider
	Languages      []string
	DPI            int
	Raster         RasterSource  // optional fallback when no embedded page image exists
	PerPageTimeout time.Duration // zero uses DefaultPerPageTimeout
}

// Acquire implements acquire.WordSource, OCRing every page.
func (s *OCRSource) Acquire(ctx context.Context, in Input) (model.Document, error) {
	return s.AcquirePages(ctx, in, nil)
}

// AcquirePages is Acquire restricted to a page subset: pageFilter, when
// non-nil, limits OCR to the given 0-based page indices.
func (s *OCRSource) AcquirePages(ctx context.Context, in Input, pageFilter map[int]bool) (model.Document, error) {
	if s.Provider == nil {
		return model.Document{}, fmt.Errorf("acquire: %w", ocr.ErrOCRUnavailable)
	}
	dpi := s.DPI
	if dpi == 0 {
		dpi = DefaultDPI
	}
	if dpi < MinDPI {
		dpi = MinDPI
	}
	if dpi > MaxDPI {
		dpi = MaxDPI
	}
	langs := s.Languages
	if len(langs) == 0 {
		langs = []string{"eng"}
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
	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			return model.Document{}, ctx.Err()
		default:
		}
		if pageFilter != nil && !pageFilter[i] {
			doc.Pages = append(doc.Pages, blankPage(r, i))
			continue
		}

		pdfPage, err := r.GetPage(i)
		if err != nil {
			doc.Pages = append(doc.Pages, blankPage(r, i))
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

		perPageTimeout := s.PerPageTimeout
		if perPageTimeout == 0 {
			perPageTimeout = DefaultPerPageTimeout
		}
		pageCtx, cancel := context.WithTimeout(ctx, perPageTimeout)

		raster, scale, err := s.renderPage(pageCtx, r, pdfPage, in.Path, i, dpi)
		if err != nil || len(raster) == 0 {
			cancel()
			doc.Pages = append(doc.Pages, page)
			continue
		}

		words, err := recognizeWithDeadline(pageCtx, s.Provider, raster, langs)
		cancel()
		if err != nil {
			doc.Pages = append(doc.Pages, page)
			continue
		}
		page.Tokens = wordsToTokens(words, i, scale, height)
		page.SortTokens()
		doc.Pages = append(doc.Pages, page)
	}
	return *doc, nil
}

// recognizeWithDeadline runs p.Recognize on its own goroutine and returns as
// soon as pageCtx is done, even if the underlying engine call (a blocking
// cgo call into Tesseract, for TesseractProvider) can't itself be
// interrupted — the goroutine is left to finish and its result discarded,
// trading a leaked call for a bounded per-page stage.
func recognizeWithDeadline(pageCtx context.Context, p ocr.Provider, image []byte, langs []string) ([]ocr.Word, error) {
	type result struct {
		words []ocr.Word
		err   error
	}
	done := make(chan result, 1)
	go func() {
		words, err := p.Recognize(pageCtx, image, langs)
		done <- result{words, err}
	}()
	select {
	case r := <-done:
		return r.words, r.err
	case <-pageCtx.Done():
		return nil, pageCtx.Err()
	}
}

func blankPage(r *reader.Reader, i int) *model.Page {
	p := model.NewPage(612, 792)
	p.Number = i
	return p
}

// renderPage prefers an embedded full-page image XObject (the overwhelming
// common case for a scanned resume); it falls back to the caller-supplied
// RasterSource otherwise.
func (s *OCRSource) renderPage(ctx context.Context, r *reader.Reader, pdfPage *pages.Page, path string, index, dpi int) ([]byte, float64, error) {
	if imgs, err := r.ExtractPageImages(pdfPage); err == nil && len(imgs) > 0 {
		best := imgs[0]
		for _, im := range imgs[1:] {
			if im.Width*im.Height > best.Width*best.Height {
				best = im
			}
		}
		png, err := best.ToPNG()
		if err == nil {
			width, _ := pdfPage.Width()
			scale := 1.0
			if width > 0 && best.Width > 0 {
				scale = width / float64(best.Width)
			}
			return png, scale, nil
		}
	}
	if s.Raster != nil {
		png, scale, err := s.Raster.Render(ctx, path, index, dpi)
		if err == nil {
			return png, scale, nil
		}
	}
	return nil, 0, fmt.Errorf("acquire: no raster available for page %d", index)
}

func wordsToTokens(words []ocr.Word, page int, scale, pageHeight float64) []model.Token {
	tokens := make([]model.Token, 0, len(words))
	for _, w := range words {
		x0 := float64(w.X0) * scale
		x1 := float64(w.X1) * scale
		y0 := float64(w.Y0) * scale
		y1 := float64(w.Y1) * scale
		tokens = append(tokens, model.Token{
			Text:       w.Text,
			Page:       page,
			BBox:       model.BBox{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0},
			FontSize:   y1 - y0,
			Confidence: w.Confidence / 100.0,
		})
	}
	return tokens
}
