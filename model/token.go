package model

// FontFlags is a bitset of typographic capabilities carried by a Token,
// mirroring the Bold/Italic bits already used by TextStyle but adding
// Monospace, which section-header detection needs to rule out code-like
// lines.
type FontFlags uint8

const (
	FlagBold FontFlags = 1 << iota
	FlagItalic
	FlagMonospace
)

// Has reports whether the flag set contains f.
func (ff FontFlags) Has(f FontFlags) bool { return ff&f != 0 }

// Token is one positioned word, acquired either from a PDF's text layer or
// from OCR. Coordinates are in a uniform top-left-origin page space: X grows
// right, Y grows down, regardless of the source container's native
// convention (PDF content streams are bottom-left origin; the acquire
// package's PDF and DOCX sources flip the Y axis once at ingestion so every downstream package only ever deals
// with top-left coordinates).
type Token struct {
	Text       string
	Page       int // 0-based page index
	BBox       BBox
	FontSize   float64
	FontFlags  FontFlags
	Color      *Color // nil when unknown (e.g. some OCR backends)
	Confidence float64
}

// X0, X1, Y0, Y1 expose the token's bounding box edges in top-left
// coordinates (Y0 above Y1) for the many call sites that only need one edge.
func (t Token) X0() float64 { return t.BBox.Left() }
func (t Token) X1() float64 { return t.BBox.Right() }
func (t Token) Y0() float64 { return t.BBox.Y }
func (t Token) Y1() float64 { return t.BBox.Y + t.BBox.Height }

// XCenter returns the horizontal midpoint of the token's bounding box.
func (t Token) XCenter() float64 { return (t.X0() + t.X1()) / 2 }
