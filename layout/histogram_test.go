package layout

import (
	"testing"

	"github.com/tsawler/sectio/model"
)

func tokensInRange(xStart, xEnd float64, count int, yStart float64) []model.Token {
	toks := make([]model.Token, 0, count)
	step := (xEnd - xStart) / float64(count)
	for i := 0; i < count; i++ {
		x := xStart + float64(i)*step
		y := yStart + float64(i)*2
		toks = append(toks, model.Token{
			Text: "w",
			BBox: model.NewBBox(x, y, step*0.8, 10),
		})
	}
	return toks
}

func TestClassifySingleColumn(t *testing.T) {
	page := model.Page{Width: 600, Height: 800}
	page.Tokens = tokensInRange(50, 550, 80, 100)

	class := Classify(page, DefaultHistogramConfig())
	if class.Kind != Type1 {
		t.Fatalf("Classify() kind = %v, want Type1 (single dense x-range should yield one peak)", class.Kind)
	}
}

func TestClassifyTwoColumns(t *testing.T) {
	page := model.Page{Width: 600, Height: 800}
	left := tokensInRange(40, 240, 60, 100)
	right := tokensInRange(360, 560, 60, 100)
	page.Tokens = append(left, right...)

	class := Classify(page, DefaultHistogramConfig())
	if class.Kind != Type2 {
		t.Fatalf("Classify() kind = %v, want Type2 (wide empty gutter between two dense clusters)", class.Kind)
	}
	if len(class.ColumnBounds) != 2 {
		t.Errorf("ColumnBounds = %v, want 2 columns", class.ColumnBounds)
	}
}

func TestClassifySparsePageDefaultsType1(t *testing.T) {
	page := model.Page{Width: 600, Height: 800}
	page.Tokens = tokensInRange(50, 550, 5, 100) // below MinTokensForSplit

	class := Classify(page, DefaultHistogramConfig())
	if class.Kind != Type1 {
		t.Errorf("Classify() kind = %v, want Type1 for a page with too few tokens to split", class.Kind)
	}
	if class.Confidence != 1 {
		t.Errorf("Confidence = %v, want 1 for the too-few-tokens shortcut", class.Confidence)
	}
}
