package model

import "testing"

// These cover exactly the model surface sectio's own acquisition sources
// exercise (Page/Token construction and sort order, Table cell text) rather
// than the full teacher model API, which sectio's own packages don't reach.

func TestNewPageDefaults(t *testing.T) {
	p := NewPage(612, 792)
	if p.Width != 612 || p.Height != 792 {
		t.Errorf("NewPage() = %+v, want Width=612 Height=792", p)
	}
	if len(p.Tokens) != 0 {
		t.Errorf("NewPage() Tokens = %v, want empty", p.Tokens)
	}
}

func TestPageSortTokensOrdersTopToBottomLeftToRight(t *testing.T) {
	p := NewPage(612, 792)
	p.Tokens = []Token{
		{Text: "second-line", BBox: BBox{X: 10, Y: 50}},
		{Text: "right", BBox: BBox{X: 100, Y: 10}},
		{Text: "left", BBox: BBox{X: 10, Y: 10}},
	}
	p.SortTokens()
	got := []string{p.Tokens[0].Text, p.Tokens[1].Text, p.Tokens[2].Text}
	want := []string{"left", "right", "second-line"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SortTokens() order = %v, want %v", got, want)
			break
		}
	}
}

func TestTableGetTextJoinsCellsAndRows(t *testing.T) {
	table := NewTable(2, 2)
	table.Rows[0][0] = Cell{Text: "Name", RowSpan: 1, ColSpan: 1}
	table.Rows[0][1] = Cell{Text: "Years", RowSpan: 1, ColSpan: 1}
	table.Rows[1][0] = Cell{Text: "Acme", RowSpan: 1, ColSpan: 1}
	table.Rows[1][1] = Cell{Text: "2020-2022", RowSpan: 1, ColSpan: 1}

	if table.RowCount() != 2 || table.ColCount() != 2 {
		t.Fatalf("RowCount/ColCount = %d/%d, want 2/2", table.RowCount(), table.ColCount())
	}
	text := table.GetText()
	if text != "Name\tYears\nAcme\t2020-2022\n" {
		t.Errorf("GetText() = %q, want tab/newline-joined cell text", text)
	}
}

func TestTableImplementsTextElement(t *testing.T) {
	var elem TextElement = NewTable(1, 1)
	if elem.Type() != ElementTypeTable {
		t.Errorf("Table.Type() = %v, want ElementTypeTable", elem.Type())
	}
}
