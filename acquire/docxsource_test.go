package acquire

import (
	"testing"

	"github.com/tsawler/sectio/model"
)

func TestElementToTokensSplitsParagraphWords(t *testing.T) {
	p := &model.Paragraph{
		Text:     "Managed engineering team",
		BBox:     model.NewBBox(72, 50, 180, 14),
		FontSize: 11,
		Style:    model.TextStyle{Bold: true},
	}

	tokens := elementToTokens(p, 0, 792)
	if len(tokens) != 3 {
		t.Fatalf("elementToTokens() produced %d tokens, want 3", len(tokens))
	}
	for i, want := range []string{"Managed", "engineering", "team"} {
		if tokens[i].Text != want {
			t.Errorf("tokens[%d].Text = %q, want %q", i, tokens[i].Text, want)
		}
		if !tokens[i].FontFlags.Has(model.FlagBold) {
			t.Errorf("tokens[%d] missing FlagBold from the paragraph's Style", i)
		}
		if tokens[i].FontSize != 11 {
			t.Errorf("tokens[%d].FontSize = %v, want 11", i, tokens[i].FontSize)
		}
	}
}

func TestElementToTokensHeadingUsesHeadingFontSize(t *testing.T) {
	h := &model.Heading{
		Text:     "Experience",
		Level:    2,
		BBox:     model.NewBBox(72, 700, 90, 16),
		FontSize: 16,
	}
	tokens := elementToTokens(h, 0, 792)
	if len(tokens) != 1 || tokens[0].Text != "Experience" {
		t.Fatalf("elementToTokens(heading) = %+v, want one token %q", tokens, "Experience")
	}
	if tokens[0].FontSize != 16 {
		t.Errorf("FontSize = %v, want 16", tokens[0].FontSize)
	}
}

func TestElementToTokensSkipsNonTextElement(t *testing.T) {
	img := &model.Image{BBox: model.NewBBox(0, 0, 10, 10)}
	tokens := elementToTokens(img, 0, 792)
	if tokens != nil {
		t.Errorf("elementToTokens(image) = %+v, want nil", tokens)
	}
}

func TestStyleFlags(t *testing.T) {
	flags := styleFlags(model.TextStyle{Bold: true, Italic: true})
	if !flags.Has(model.FlagBold) || !flags.Has(model.FlagItalic) {
		t.Errorf("styleFlags(Bold+Italic) = %v, want both flags set", flags)
	}
	if styleFlags(model.TextStyle{}) != 0 {
		t.Errorf("styleFlags(zero value) = %v, want 0", styleFlags(model.TextStyle{}))
	}
}
