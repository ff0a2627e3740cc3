package assemble

import (
	"context"
	"testing"

	"github.com/tsawler/sectio/layout"
	"github.com/tsawler/sectio/model"
	"github.com/tsawler/sectio/section"
)

func buildTok(text string, x, y, w, h float64) model.Token {
	return model.Token{Text: text, BBox: model.NewBBox(x, y, w, h)}
}

func testMatcher() *section.Matcher {
	experience := &section.Entry{Canonical: section.Experience, Variants: map[string]bool{
		section.Normalize("Experience"): true,
	}}
	education := &section.Entry{Canonical: section.Education, Variants: map[string]bool{
		section.Normalize("Education"): true,
	}}
	return section.NewMatcher(map[string]*section.Entry{
		section.Experience: experience,
		section.Education:  education,
	}, nil)
}

func TestBuildOpensSectionAtHeaderAndAttachesBody(t *testing.T) {
	pages := []PageColumns{
		{
			PageIndex: 0,
			Regions: []layout.ColumnRegion{
				{
					ColumnIndex: 0,
					Tokens: []model.Token{
						buildTok("Experience", 10, 20, 70, 14),
						buildTok("Built", 10, 50, 30, 10),
						buildTok("things.", 45, 50, 40, 10),
					},
				},
			},
		},
	}

	sections, _ := Build(context.Background(), pages, testMatcher(), 0)
	if len(sections) != 1 {
		t.Fatalf("Build() produced %d sections, want 1", len(sections))
	}
	if sections[0].Canonical != section.Experience {
		t.Errorf("Canonical = %q, want %q", sections[0].Canonical, section.Experience)
	}
	if len(sections[0].BodyLines) != 1 || sections[0].BodyLines[0].Text != "Built things." {
		t.Errorf("BodyLines = %+v, want one line %q", sections[0].BodyLines, "Built things.")
	}
}

func TestBuildRecordsUnknownHeaderDiagnostic(t *testing.T) {
	header1 := buildTok("Kwyjibo", 10, 20, 50, 14)
	header1.FontSize = 16
	header1.FontFlags = model.FlagBold
	header2 := buildTok("Banana:", 65, 20, 50, 14)
	header2.FontSize = 16
	header2.FontFlags = model.FlagBold
	body1 := buildTok("Some", 10, 50, 30, 10)
	body1.FontSize = 10
	body2 := buildTok("body.", 45, 50, 30, 10)
	body2.FontSize = 10

	pages := []PageColumns{
		{
			PageIndex: 0,
			Regions: []layout.ColumnRegion{
				{
					ColumnIndex: 0,
					Tokens:      []model.Token{header1, header2, body1, body2},
				},
			},
		},
	}

	sections, diag := Build(context.Background(), pages, testMatcher(), 0)
	if len(diag.UnknownHeaders) != 1 {
		t.Fatalf("Diagnostics.UnknownHeaders = %v, want 1 entry", diag.UnknownHeaders)
	}
	found := false
	for _, s := range sections {
		if s.Canonical == section.Unknown {
			found = true
		}
	}
	if !found {
		t.Errorf("sections = %+v, want an Unknown section for the unresolved header", sections)
	}
}

func TestBuildBootstrapsContactFromPreHeaderLines(t *testing.T) {
	pages := []PageColumns{
		{
			PageIndex: 0,
			Regions: []layout.ColumnRegion{
				{
					ColumnIndex: 0,
					Tokens: []model.Token{
						buildTok("jane@example.com", 10, 10, 90, 10),
						buildTok("Experience", 10, 40, 70, 14),
						buildTok("Did", 10, 70, 20, 10),
						buildTok("stuff.", 35, 70, 30, 10),
					},
				},
			},
		},
	}

	sections, _ := Build(context.Background(), pages, testMatcher(), 0)
	if len(sections) != 2 {
		t.Fatalf("Build() produced %d sections, want 2 (Contact + Experience)", len(sections))
	}
	if sections[0].Canonical != section.Contact {
		t.Errorf("first section = %q, want %q (pre-header contact bootstrap)", sections[0].Canonical, section.Contact)
	}
}

func TestBuildMergesDuplicateCanonicalAcrossPages(t *testing.T) {
	pages := []PageColumns{
		{
			PageIndex: 0,
			Regions: []layout.ColumnRegion{
				{
					ColumnIndex: 0,
					Tokens: []model.Token{
						buildTok("Experience", 10, 20, 70, 14),
						buildTok("Job", 10, 50, 20, 10),
						buildTok("one.", 35, 50, 25, 10),
					},
				},
			},
		},
		{
			PageIndex: 1,
			Regions: []layout.ColumnRegion{
				{
					ColumnIndex: 0,
					Tokens: []model.Token{
						buildTok("Experience", 10, 20, 70, 14),
						buildTok("Job", 10, 50, 20, 10),
						buildTok("two.", 35, 50, 25, 10),
					},
				},
			},
		},
	}

	sections, _ := Build(context.Background(), pages, testMatcher(), 0)
	if len(sections) != 1 {
		t.Fatalf("Build() produced %d sections, want 1 (merged across pages)", len(sections))
	}
	s := sections[0]
	if len(s.BodyLines) != 2 {
		t.Errorf("BodyLines = %+v, want 2 lines merged from both pages", s.BodyLines)
	}
	if s.FirstPage != 0 || s.LastPage != 1 {
		t.Errorf("FirstPage/LastPage = %d/%d, want 0/1", s.FirstPage, s.LastPage)
	}
}

func TestLooksLikeContactDetectsEmailAndPhone(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"jane@example.com", true},
		{"555-123-4567", true},
		{"https://example.com/resume", true},
		{"Built things for customers.", false},
	}
	for _, tt := range tests {
		if got := looksLikeContact(tt.text); got != tt.want {
			t.Errorf("looksLikeContact(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
