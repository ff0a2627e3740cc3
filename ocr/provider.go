package ocr

import (
	"context"
	"errors"
	"fmt"
)

// ErrOCRUnavailable is the §7 OCRUnavailable error kind: the OCR provider
// isn't installed or its model can't load.
var ErrOCRUnavailable = errors.New("ocr: provider unavailable")

// Provider is the external OCR capability §9 names:
// recognize(image, languages) -> list<{text,bbox,confidence}>.
type Provider interface {
	Recognize(ctx context.Context, image []byte, languages []string) ([]Word, error)
}

// TesseractProvider adapts the gosseract-backed Client (or its stub, when
// built without the "ocr" tag) to the Provider interface. The orchestrator
// builds a new one for each OCR strategy run unless a provider is supplied
// through WithOCRProvider; no instance is shared across parses.
type TesseractProvider struct {
	client *Client
}

// NewTesseractProvider constructs a new client on every call. Returns ErrOCRUnavailable if the engine can't be constructed (e.g.
// Tesseract not installed, or built without -tags ocr).
func NewTesseractProvider() (*TesseractProvider, error) {
	c, err := New()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOCRUnavailable, err)
	}
	return &TesseractProvider{client: c}, nil
}

// Recognize implements Provider.
func (p *TesseractProvider) Recognize(ctx context.Context, image []byte, languages []string) ([]Word, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if len(languages) > 0 {
		lang := languages[0]
		for _, l := range languages[1:] {
			lang += "+" + l
		}
		if err := p.client.SetLanguage(lang); err != nil {
			return nil, fmt.Errorf("ocr: setting language: %w", err)
		}
	}
	words, err := p.client.RecognizeWords(image)
	if err != nil {
		return nil, fmt.Errorf("ocr: recognize: %w", err)
	}
	return words, nil
}

// Close releases the underlying engine's resources.
func (p *TesseractProvider) Close() error { return p.client.Close() }

// NullProvider is used when no OCR engine is wired; every call fails with
// ErrOCRUnavailable, matching the teacher's stub-on-disabled-tag pattern.
type NullProvider struct{}

// Recognize always returns ErrOCRUnavailable.
func (NullProvider) Recognize(context.Context, []byte, []string) ([]Word, error) {
	return nil, ErrOCRUnavailable
}
