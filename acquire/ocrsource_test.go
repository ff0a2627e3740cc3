package acquire

import (
	"context"
	"testing"

	"github.com/tsawler/sectio/ocr"
)

func TestWordsToTokensAppliesScaleAndConfidence(t *testing.T) {
	words := []ocr.Word{
		{Text: "Experience", X0: 100, Y0: 200, X1: 300, Y1: 240, Confidence: 92.5},
	}
	tokens := wordsToTokens(words, 2, 0.5, 800)
	if len(tokens) != 1 {
		t.Fatalf("wordsToTokens() produced %d tokens, want 1", len(tokens))
	}
	tok := tokens[0]
	if tok.Text != "Experience" {
		t.Errorf("Text = %q, want %q", tok.Text, "Experience")
	}
	if tok.Page != 2 {
		t.Errorf("Page = %d, want 2", tok.Page)
	}
	if tok.BBox.X != 50 || tok.BBox.Y != 100 {
		t.Errorf("BBox origin = (%v, %v), want (50, 100) after 0.5 scale", tok.BBox.X, tok.BBox.Y)
	}
	wantWidth, wantHeight := (300.0-100.0)*0.5, (240.0-200.0)*0.5
	if tok.BBox.Width != wantWidth || tok.BBox.Height != wantHeight {
		t.Errorf("BBox size = (%v, %v), want (%v, %v)", tok.BBox.Width, tok.BBox.Height, wantWidth, wantHeight)
	}
	if tok.Confidence != 0.925 {
		t.Errorf("Confidence = %v, want 0.925 (OCR confidence normalized to [0,1])", tok.Confidence)
	}
}

func TestWordsToTokensEmptyInput(t *testing.T) {
	tokens := wordsToTokens(nil, 0, 1, 800)
	if len(tokens) != 0 {
		t.Errorf("wordsToTokens(nil) produced %d tokens, want 0", len(tokens))
	}
}

func TestOCRSourceAcquireFailsWithoutProvider(t *testing.T) {
	s := &OCRSource{}
	_, err := s.Acquire(context.Background(), Input{Path: "resume.pdf"})
	if err == nil {
		t.Fatal("Acquire() with no Provider set should fail before touching ctx")
	}
}
