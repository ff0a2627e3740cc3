package acquire

import (
	"testing"

	"github.com/tsawler/sectio/model"
	"github.com/tsawler/sectio/text"
)

func TestAlphaCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"Hello, World!", 10},
		{"12345", 0},
		{"", 0},
		{"a1b2c3", 3},
	}
	for _, tt := range tests {
		if got := alphaCount(tt.in); got != tt.want {
			t.Errorf("alphaCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCleanWord(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Resume,", "Resume"},
		{"(Experience)", "Experience"},
		{"...", "..."}, // standalone punctuation run is kept as-is
		{"don't", "don't"},
	}
	for _, tt := range tests {
		if got := cleanWord(tt.in); got != tt.want {
			t.Errorf("cleanWord(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFontFlagsFromName(t *testing.T) {
	tests := []struct {
		name     string
		wantBold bool
		wantItal bool
		wantMono bool
	}{
		{"Arial-Bold", true, false, false},
		{"Times-Italic", false, true, false},
		{"Courier", false, false, true},
		{"Helvetica", false, false, false},
	}
	for _, tt := range tests {
		flags := fontFlagsFromName(tt.name)
		if flags.Has(model.FlagBold) != tt.wantBold {
			t.Errorf("fontFlagsFromName(%q) bold = %v, want %v", tt.name, flags.Has(model.FlagBold), tt.wantBold)
		}
		if flags.Has(model.FlagItalic) != tt.wantItal {
			t.Errorf("fontFlagsFromName(%q) italic = %v, want %v", tt.name, flags.Has(model.FlagItalic), tt.wantItal)
		}
		if flags.Has(model.FlagMonospace) != tt.wantMono {
			t.Errorf("fontFlagsFromName(%q) mono = %v, want %v", tt.name, flags.Has(model.FlagMonospace), tt.wantMono)
		}
	}
}

func TestFragmentsToTokensSplitsWordsAndFlipsY(t *testing.T) {
	fragments := []text.TextFragment{
		{Text: "Hello World", X: 10, Y: 700, Width: 100, Height: 12, FontSize: 12},
	}
	tokens := fragmentsToTokens(fragments, 0, 792)
	if len(tokens) != 2 {
		t.Fatalf("fragmentsToTokens() produced %d tokens, want 2", len(tokens))
	}
	if tokens[0].Text != "Hello" || tokens[1].Text != "World" {
		t.Errorf("tokens = %q, %q, want Hello, World", tokens[0].Text, tokens[1].Text)
	}
	// Y is flipped from PDF's bottom-left origin: yTop = pageHeight - (Y + Height) = 792 - 712 = 80.
	wantY := 792.0 - (700.0 + 12.0)
	if tokens[0].BBox.Y != wantY {
		t.Errorf("tokens[0].BBox.Y = %v, want %v", tokens[0].BBox.Y, wantY)
	}
	// The two words split the fragment's 100pt width proportionally by rune count.
	if tokens[0].BBox.Width <= 0 || tokens[1].BBox.Width <= 0 {
		t.Errorf("token widths = %v, %v, want both positive", tokens[0].BBox.Width, tokens[1].BBox.Width)
	}
}

func TestFragmentsToTokensSkipsEmptyFragment(t *testing.T) {
	fragments := []text.TextFragment{{Text: "   ", X: 0, Y: 0, Width: 10, Height: 10}}
	tokens := fragmentsToTokens(fragments, 0, 792)
	if len(tokens) != 0 {
		t.Errorf("fragmentsToTokens() produced %d tokens for blank text, want 0", len(tokens))
	}
}
