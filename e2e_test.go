package sectio

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tsawler/sectio/assemble"
	"github.com/tsawler/sectio/layout"
	"github.com/tsawler/sectio/model"
	"github.com/tsawler/sectio/section"
)

func e2eTok(text string, x, y, w, h float64) model.Token {
	return model.Token{Text: text, BBox: model.NewBBox(x, y, w, h)}
}

func e2eMatcher(t *testing.T) *section.Matcher {
	t.Helper()
	db, err := section.Open(filepath.Join(t.TempDir(), "sections.yaml"))
	if err != nil {
		t.Fatalf("section.Open: %v", err)
	}
	return section.NewMatcher(db.Snapshot(), nil)
}

func sectionNames(sections []assemble.Section) []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Canonical
	}
	return names
}

func namesEqual(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// Scenario 1: single-column academic CV.
func TestE2ESingleColumnAcademicCV(t *testing.T) {
	tokens := []model.Token{
		e2eTok("John Doe", 10, 10, 80, 12),
		e2eTok("john@x.com", 10, 30, 80, 12),
		e2eTok("EXPERIENCE", 10, 60, 90, 12),
		e2eTok("Acme Corp 2020-2022", 10, 80, 140, 12),
		e2eTok("EDUCATION", 10, 110, 90, 12),
		e2eTok("BS CS 2020", 10, 130, 90, 12),
	}
	pages := []assemble.PageColumns{
		{PageIndex: 0, Regions: []layout.ColumnRegion{{ColumnIndex: 0, Tokens: tokens}}},
	}

	sections, _ := assemble.Build(context.Background(), pages, e2eMatcher(t), 0)
	want := []string{section.Contact, section.Experience, section.Education}
	if got := sectionNames(sections); !namesEqual(got, want) {
		t.Fatalf("sections = %v, want %v", got, want)
	}
}

// Scenario 2: clean two-column resume with a deep gutter; expects the full
// left column traversed before the right column.
func TestE2ETwoColumnResume(t *testing.T) {
	left := []model.Token{
		e2eTok("SUMMARY", 10, 10, 70, 12),
		e2eTok("Senior engineer.", 10, 30, 90, 12),
		e2eTok("EXPERIENCE", 10, 60, 90, 12),
		e2eTok("Acme Corp.", 10, 80, 80, 12),
		e2eTok("EDUCATION", 10, 110, 90, 12),
		e2eTok("BS CS.", 10, 130, 60, 12),
	}
	right := []model.Token{
		e2eTok("SKILLS", 320, 10, 60, 12),
		e2eTok("Go, Python.", 320, 30, 80, 12),
		e2eTok("CERTIFICATIONS", 320, 60, 120, 12),
		e2eTok("AWS SAA.", 320, 80, 70, 12),
	}
	pages := []assemble.PageColumns{
		{PageIndex: 0, Regions: []layout.ColumnRegion{
			{ColumnIndex: 0, Tokens: left},
			{ColumnIndex: 1, Tokens: right},
		}},
	}

	sections, _ := assemble.Build(context.Background(), pages, e2eMatcher(t), 0)
	want := []string{section.Summary, section.Experience, section.Education, section.Skills, section.Certifications}
	if got := sectionNames(sections); !namesEqual(got, want) {
		t.Fatalf("sections = %v, want %v (left column fully traversed before right)", got, want)
	}
}

// Scenario 3: hybrid layout, a full-width contact band over a two-column body.
func TestE2EHybridHeaderOverColumns(t *testing.T) {
	band := []model.Token{
		e2eTok("Jane Roe / jane@x.com", 10, 10, 200, 12),
	}
	left := []model.Token{
		e2eTok("EXPERIENCE", 10, 60, 90, 12),
		e2eTok("Led a team.", 10, 80, 90, 12),
	}
	right := []model.Token{
		e2eTok("SKILLS", 320, 60, 60, 12),
		e2eTok("Go, SQL.", 320, 80, 70, 12),
	}
	pages := []assemble.PageColumns{
		{PageIndex: 0, Regions: []layout.ColumnRegion{
			{ColumnIndex: 0, BandIndex: 0, SpansBand: true, Tokens: band},
			{ColumnIndex: 0, BandIndex: 1, Tokens: left},
			{ColumnIndex: 1, BandIndex: 1, Tokens: right},
		}},
	}

	sections, _ := assemble.Build(context.Background(), pages, e2eMatcher(t), 0)
	want := []string{section.Contact, section.Experience, section.Skills}
	if got := sectionNames(sections); !namesEqual(got, want) {
		t.Fatalf("sections = %v, want %v", got, want)
	}
}

// Scenario 4: a stylized (bold) header that only resolves via the
// pattern table (not an already-seeded exact variant) should be learned on
// first parse, then resolve via an exact match with zero new learning on a
// second parse of the same document.
func TestE2EStylizedHeaderLearnsVariantIdempotently(t *testing.T) {
	header := e2eTok("Bachelor's Degree", 10, 10, 120, 12)
	header.FontFlags = model.FlagBold // pushes the header-scoring signal above theta alongside the pattern-table match
	tokens := []model.Token{
		header,
		e2eTok("State University 2018.", 10, 30, 140, 12),
	}
	pages := []assemble.PageColumns{
		{PageIndex: 0, Regions: []layout.ColumnRegion{{ColumnIndex: 0, Tokens: tokens}}},
	}

	db, err := section.Open(filepath.Join(t.TempDir(), "sections.yaml"))
	if err != nil {
		t.Fatalf("section.Open: %v", err)
	}

	firstMatcher := section.NewMatcher(db.Snapshot(), nil)
	sections, _ := assemble.Build(context.Background(), pages, firstMatcher, 0)
	if len(sections) != 1 || sections[0].Canonical != section.Education {
		t.Fatalf("first parse sections = %+v, want one Education section", sections)
	}
	diff := firstMatcher.Diff()
	if diff.IsEmpty() {
		t.Fatal("first parse should have learned a new variant for the pattern-matched header")
	}
	if err := db.Commit(diff); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	secondMatcher := section.NewMatcher(db.Snapshot(), nil)
	sections2, _ := assemble.Build(context.Background(), pages, secondMatcher, 0)
	if len(sections2) != 1 || sections2[0].Canonical != section.Education {
		t.Fatalf("second parse sections = %+v, want one Education section", sections2)
	}
	if !secondMatcher.Diff().IsEmpty() {
		t.Error("second parse of the same document learned new variants; want zero (idempotence)")
	}
}

// Scenario 5: a single line carries two section names at distinct
// x-positions; Segment must re-split it into two columns, and assembly
// must produce both resulting Sections. The two phrases below only resolve
// via the pattern table at scores (0.6 each) below LearnThreshold (0.70),
// so Match's own step-4 auto-learn never fires; the two surface forms are
// only recorded because the resplit calls LearnMultiSectionSurface, which
// learns "independent of the score threshold" per §4.6.
func TestE2EMultiSectionLineResplit(t *testing.T) {
	page := model.Page{Number: 0, Width: 600, Height: 800}
	page.Tokens = []model.Token{
		e2eTok("My", 10, 20, 20, 14),
		e2eTok("Career", 33, 20, 20, 14),
		e2eTok("Profile", 56, 20, 20, 14),
		e2eTok("Please", 176, 20, 20, 14),
		e2eTok("Contact", 199, 20, 20, 14),
		e2eTok("Info", 222, 20, 20, 14),
	}
	for i := 0; i < 6; i++ {
		y := float64(50 + i*15)
		page.Tokens = append(page.Tokens,
			e2eTok("golang", 10, y, 50, 10),
			e2eTok("worked", 176, y, 60, 10),
		)
	}

	matcher := section.NewMatcher(nil, nil)

	class := layout.LayoutClass{Kind: layout.Type1, ColumnBounds: [][2]float64{{0, 600}}, Confidence: 1}
	regions := layout.Segment(context.Background(), page, class, matcher)
	if len(regions) < 2 {
		t.Fatalf("Segment() produced %d regions, want >= 2 after multi-header resplit", len(regions))
	}

	pages := []assemble.PageColumns{{PageIndex: 0, Regions: regions}}
	sections, _ := assemble.Build(context.Background(), pages, matcher, 0)

	got := map[string]bool{}
	for _, s := range sections {
		got[s.Canonical] = true
	}
	if !got[section.Summary] || !got[section.Contact] {
		t.Fatalf("sections = %v, want both Summary and Contact", sectionNames(sections))
	}

	diff := matcher.Diff()
	if len(diff.LearnedVariants()) < 2 {
		t.Errorf("LearnedVariants() = %v, want both surface forms recorded by the multi-section resplit", diff.LearnedVariants())
	}
}

// Scenario 6: when the text-layer strategy precedes OCR for a PDF, and OCR
// eventually supplies the tokens, the result must reflect that lineage in
// both the strategy ordering and the rung the final quality score maps to.
func TestE2EScannedPDFOCRFallbackOrdering(t *testing.T) {
	strategies := strategiesFor(kindPDFText)
	want := []strategy{strategyTextLayer, strategyOCR}
	if len(strategies) != len(want) || strategies[0] != want[0] || strategies[1] != want[1] {
		t.Fatalf("strategiesFor(kindPDFText) = %v, want %v", strategies, want)
	}

	// OCR-derived tokens (lower per-word confidence, still usable) should
	// assemble exactly as text-layer tokens would.
	ocrTokens := []model.Token{
		e2eTok("EXPERIENCE", 10, 10, 90, 12),
		e2eTok("Led", 10, 30, 20, 10),
		e2eTok("a", 35, 30, 10, 10),
		e2eTok("team.", 50, 30, 35, 10),
	}
	for i := range ocrTokens {
		ocrTokens[i].Confidence = 0.62
	}
	pages := []assemble.PageColumns{
		{PageIndex: 0, Regions: []layout.ColumnRegion{{ColumnIndex: 0, Tokens: ocrTokens}}},
	}
	sections, diag := assemble.Build(context.Background(), pages, e2eMatcher(t), 0)
	if len(sections) != 1 || sections[0].Canonical != section.Experience {
		t.Fatalf("sections = %+v, want one Experience section from OCR tokens", sections)
	}

	// Only 3 of the 5 quality signals hold here (experiencePresent,
	// noThinMultiPage, unknownRatioOK); sectionsFound needs >= 3 sections
	// and avgLineLengthOK needs body lines longer than 20 chars, neither
	// of which a single short OCR section clears.
	quality, _ := computeQuality(sections, diag)
	if quality != 0.6 {
		t.Fatalf("quality = %v, want 0.6 (3 of 5 signals)", quality)
	}
	if rung := RungFor(quality); rung != RungAcceptable {
		t.Errorf("rung = %v, want RungAcceptable for a 0.6 score", rung)
	}
}
