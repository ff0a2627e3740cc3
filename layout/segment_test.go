package layout

import (
	"context"
	"testing"

	"github.com/tsawler/sectio/model"
	"github.com/tsawler/sectio/section"
)

func segTok(text string, x, y, w, h float64) model.Token {
	return model.Token{Text: text, BBox: model.NewBBox(x, y, w, h)}
}

func TestSegmentType1ProducesOneFullWidthRegion(t *testing.T) {
	page := model.Page{Number: 0, Width: 600, Height: 800}
	page.Tokens = []model.Token{
		segTok("Hello", 10, 100, 40, 12),
		segTok("World", 10, 300, 40, 12),
	}
	class := LayoutClass{Kind: Type1, ColumnBounds: [][2]float64{{0, 600}}, Confidence: 1}

	regions := Segment(context.Background(), page, class, nil)
	if len(regions) != 1 {
		t.Fatalf("Segment() produced %d regions, want 1", len(regions))
	}
	if regions[0].XBounds != [2]float64{0, 600} {
		t.Errorf("XBounds = %v, want full page width", regions[0].XBounds)
	}
	if len(regions[0].Tokens) != 2 {
		t.Errorf("region has %d tokens, want 2", len(regions[0].Tokens))
	}
}

func TestSegmentType2AssignsByColumn(t *testing.T) {
	page := model.Page{Number: 0, Width: 600, Height: 800}
	page.Tokens = []model.Token{
		segTok("Left", 50, 100, 40, 12),
		segTok("Right", 450, 100, 40, 12),
	}
	class := LayoutClass{
		Kind:         Type2,
		ColumnBounds: [][2]float64{{0, 300}, {300, 600}},
		Confidence:   0.9,
	}

	regions := Segment(context.Background(), page, class, nil)
	if len(regions) != 2 {
		t.Fatalf("Segment() produced %d regions, want 2", len(regions))
	}
	if len(regions[0].Tokens) != 1 || regions[0].Tokens[0].Text != "Left" {
		t.Errorf("column 0 = %v, want [Left]", regions[0].Tokens)
	}
	if len(regions[1].Tokens) != 1 || regions[1].Tokens[0].Text != "Right" {
		t.Errorf("column 1 = %v, want [Right]", regions[1].Tokens)
	}
}

func TestSegmentDropsEmptyColumns(t *testing.T) {
	page := model.Page{Number: 0, Width: 600, Height: 800}
	page.Tokens = []model.Token{
		segTok("OnlyLeft", 50, 100, 40, 12),
	}
	class := LayoutClass{
		Kind:         Type2,
		ColumnBounds: [][2]float64{{0, 300}, {300, 600}},
		Confidence:   0.9,
	}

	regions := Segment(context.Background(), page, class, nil)
	if len(regions) != 1 {
		t.Fatalf("Segment() produced %d regions, want 1 (empty column dropped)", len(regions))
	}
	if len(regions[0].Tokens) != 1 {
		t.Errorf("surviving region has %d tokens, want 1", len(regions[0].Tokens))
	}
}

func TestSegmentType3SegmentsPerBand(t *testing.T) {
	page := model.Page{Number: 0, Width: 600, Height: 800}
	page.Tokens = []model.Token{
		segTok("Banner", 10, 50, 40, 12),
		segTok("Left", 50, 300, 40, 12),
		segTok("Right", 450, 300, 40, 12),
	}
	class := LayoutClass{
		Kind: Type3,
		Bands: []Band{
			{YTop: 0, YBot: 200, ColumnBounds: [][2]float64{{0, 600}}},
			{YTop: 200, YBot: 800, ColumnBounds: [][2]float64{{0, 300}, {300, 600}}},
		},
		Confidence: 0.7,
	}

	regions := Segment(context.Background(), page, class, nil)
	if len(regions) != 3 {
		t.Fatalf("Segment() produced %d regions, want 3 (1 banner band + 2 columns)", len(regions))
	}
	for _, r := range regions {
		if r.BandIndex < 0 {
			t.Errorf("Type3 region has BandIndex %d, want >= 0", r.BandIndex)
		}
	}
}

// headerLineTokens builds a single text row with two clusters of three
// tokens each (small internal gaps), separated by one large gap, so that
// splitByGap's 3x-median threshold isolates them into exactly two groups
// regardless of the two clusters' own internal spacing.
func headerLineTokens() []model.Token {
	return []model.Token{
		segTok("Key", 10, 20, 20, 14),
		segTok("Professional", 33, 20, 20, 14),
		segTok("Skills", 56, 20, 20, 14),
		segTok("Career", 176, 20, 20, 14),
		segTok("Work", 199, 20, 20, 14),
		segTok("History", 222, 20, 20, 14),
	}
}

func multiHeaderMatcher() *section.Matcher {
	skills := &section.Entry{Canonical: section.Skills, Variants: map[string]bool{
		section.Normalize("Key Professional Skills"): true,
	}}
	experience := &section.Entry{Canonical: section.Experience, Variants: map[string]bool{
		section.Normalize("Career Work History"): true,
	}}
	return section.NewMatcher(map[string]*section.Entry{
		section.Skills:     skills,
		section.Experience: experience,
	}, nil)
}

func TestDetectMultiHeaderAnchorsFindsTwoDistinctNames(t *testing.T) {
	line := buildLine(headerLineTokens())
	anchors := detectMultiHeaderAnchors(context.Background(), line, multiHeaderMatcher())
	if len(anchors) != 2 {
		t.Fatalf("detectMultiHeaderAnchors() = %d anchors, want 2: %+v", len(anchors), anchors)
	}
	if anchors[0].name == anchors[1].name {
		t.Errorf("anchors resolved to the same canonical name: %v", anchors[0].name)
	}
}

func TestSegmentMultiHeaderResplitSplitsSharedLine(t *testing.T) {
	page := model.Page{Number: 0, Width: 600, Height: 800}
	page.Tokens = append([]model.Token{}, headerLineTokens()...)
	for i := 0; i < 6; i++ {
		y := float64(50 + i*15)
		page.Tokens = append(page.Tokens,
			segTok("golang", 10, y, 50, 10),
			segTok("worked", 176, y, 60, 10),
		)
	}
	class := LayoutClass{Kind: Type1, ColumnBounds: [][2]float64{{0, 600}}, Confidence: 1}

	regions := Segment(context.Background(), page, class, multiHeaderMatcher())
	if len(regions) < 2 {
		t.Fatalf("Segment() with multi-header line produced %d regions, want >= 2", len(regions))
	}
}

func TestAssignColumnFallsBackToNearestCentroid(t *testing.T) {
	bounds := [][2]float64{{0, 100}, {200, 300}}
	centers := []float64{50, 250}

	// 150 falls in the gutter between the two bounds, 100 from both
	// centroids; the tie goes to the first column.
	got := assignColumn(150, bounds, centers)
	if got != 0 {
		t.Errorf("assignColumn(150) = %d, want 0 (nearest centroid)", got)
	}
}

func TestSplitByGapGroupsByWideGaps(t *testing.T) {
	// The four small gaps (3pt) keep the median low; splitByGap's 3x-median
	// threshold then isolates the one 100pt gap as a group boundary.
	groups := splitByGap(headerLineTokens())
	if len(groups) != 2 {
		t.Fatalf("splitByGap() produced %d groups, want 2", len(groups))
	}
	if len(groups[0]) != 3 || len(groups[1]) != 3 {
		t.Errorf("groups = %v, want two groups of 3 tokens each", groups)
	}
}
