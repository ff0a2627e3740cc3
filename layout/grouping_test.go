package layout

import (
	"testing"

	"github.com/tsawler/sectio/model"
)

func tok(text string, x, y, w, h, fontSize float64) model.Token {
	return model.Token{Text: text, BBox: model.NewBBox(x, y, w, h), FontSize: fontSize}
}

func TestGroupLinesSeparatesNonOverlappingRows(t *testing.T) {
	tokens := []model.Token{
		tok("Hello", 10, 100, 40, 12, 10),
		tok("World", 55, 100, 40, 12, 10),
		tok("Second", 10, 120, 40, 12, 10),
		tok("Line", 55, 120, 30, 12, 10),
	}

	lines := GroupLines(tokens)
	if len(lines) != 2 {
		t.Fatalf("GroupLines() produced %d lines, want 2", len(lines))
	}
	if lines[0].Text != "Hello World" {
		t.Errorf("lines[0].Text = %q, want %q", lines[0].Text, "Hello World")
	}
	if lines[1].Text != "Second Line" {
		t.Errorf("lines[1].Text = %q, want %q", lines[1].Text, "Second Line")
	}
}

func TestGroupLinesMergesOverlappingRow(t *testing.T) {
	tokens := []model.Token{
		tok("Same", 10, 100, 40, 12, 10),
		tok("Row", 55, 102, 30, 12, 10), // slight y offset, still within tolerance
	}

	lines := GroupLines(tokens)
	if len(lines) != 1 {
		t.Fatalf("GroupLines() produced %d lines, want 1 (tokens overlap vertically)", len(lines))
	}
	if lines[0].Text != "Same Row" {
		t.Errorf("lines[0].Text = %q, want %q", lines[0].Text, "Same Row")
	}
}

func TestGroupLinesBoldRatioAndFontStats(t *testing.T) {
	bold := tok("Bold", 10, 100, 30, 12, 14)
	bold.FontFlags = model.FlagBold
	plain := tok("Plain", 45, 100, 30, 12, 10)

	lines := GroupLines([]model.Token{bold, plain})
	if len(lines) != 1 {
		t.Fatalf("GroupLines() produced %d lines, want 1", len(lines))
	}
	line := lines[0]
	if line.BoldRatio != 0.5 {
		t.Errorf("BoldRatio = %v, want 0.5", line.BoldRatio)
	}
	if line.MaxFontSize != 14 {
		t.Errorf("MaxFontSize = %v, want 14", line.MaxFontSize)
	}
	if line.AvgFontSize != 12 {
		t.Errorf("AvgFontSize = %v, want 12", line.AvgFontSize)
	}
}

func TestGroupLinesDetectsBullet(t *testing.T) {
	tokens := []model.Token{tok("- Did a thing", 10, 100, 100, 12, 10)}
	lines := GroupLines(tokens)
	if !lines[0].IsBullet {
		t.Errorf("IsBullet = false, want true for %q", lines[0].Text)
	}
}

func TestGroupLinesMergesContinuationFragment(t *testing.T) {
	// A small fragment just below the main line, with a tiny gap and a
	// non-overlapping x-range, should fold into the line above it rather
	// than opening a new one (§4.4 step 4).
	lines := []TextLine{
		buildLine([]model.Token{tok("Paragraph line one", 10, 100, 150, 20, 12)}),
		buildLine([]model.Token{tok("x", 200, 120.2, 5, 2, 12)}),
	}
	merged := mergeContinuations(lines)
	if len(merged) != 1 {
		t.Fatalf("mergeContinuations() produced %d lines, want 1 merged continuation", len(merged))
	}
}

func TestMedianLineGap(t *testing.T) {
	tokens := []model.Token{
		tok("A", 10, 100, 30, 12, 10),
		tok("B", 10, 130, 30, 12, 10),
		tok("C", 10, 160, 30, 12, 10),
	}
	lines := GroupLines(tokens)
	got := MedianLineGap(lines)
	if got <= 0 {
		t.Errorf("MedianLineGap() = %v, want > 0 for evenly spaced lines", got)
	}
}
