package layout

import (
	"context"
	"testing"

	"github.com/tsawler/sectio/section"
)

func testEntries() map[string]*section.Entry {
	e := &section.Entry{Canonical: section.Experience, Variants: map[string]bool{}}
	e.Variants[section.Normalize("Experience")] = true
	return map[string]*section.Entry{section.Experience: e}
}

func TestAdaptiveTheta(t *testing.T) {
	highContrast := []TextLine{{MaxFontSize: 10}, {MaxFontSize: 10}, {MaxFontSize: 30}}
	if got := AdaptiveTheta(highContrast, 0); got != ThetaMin {
		t.Errorf("AdaptiveTheta(high contrast) = %v, want ThetaMin (%v)", got, ThetaMin)
	}

	lowContrast := []TextLine{{MaxFontSize: 11}, {MaxFontSize: 11}, {MaxFontSize: 11}}
	if got := AdaptiveTheta(lowContrast, 0); got != ThetaMax {
		t.Errorf("AdaptiveTheta(low contrast) = %v, want ThetaMax (%v)", got, ThetaMax)
	}

	if got := AdaptiveTheta(highContrast, 0.33); got != 0.33 {
		t.Errorf("AdaptiveTheta(override=0.33) = %v, want 0.33", got)
	}
}

func TestIsCasePattern(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"WORK EXPERIENCE", true},
		{"Work Experience", true},
		{"work experience and other things done over many years", false},
		{"123456", false},
	}
	for _, tt := range tests {
		if got := isCasePattern(tt.text); got != tt.want {
			t.Errorf("isCasePattern(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestHasTrailingColonOnly(t *testing.T) {
	if !hasTrailingColonOnly("Skills:") {
		t.Error("hasTrailingColonOnly(\"Skills:\") = false, want true")
	}
	if hasTrailingColonOnly("Skills") {
		t.Error("hasTrailingColonOnly(\"Skills\") = true, want false")
	}
}

func TestScoreLineKnownVariantDominates(t *testing.T) {
	matcher := section.NewMatcher(testEntries(), nil)

	score, canonical, kind := ScoreLine(context.Background(), TextLine{Text: "Experience"}, 0, 0, matcher)
	if canonical != section.Experience || kind != section.MatchExact {
		t.Fatalf("ScoreLine(%q) = (%v, %v, %v), want (%v, MatchExact, _)", "Experience", score, canonical, kind, section.Experience)
	}
	if score < weightKnownVariant {
		t.Errorf("score = %v, want >= weightKnownVariant (%v)", score, weightKnownVariant)
	}
}

func TestDetectorExcludesBullets(t *testing.T) {
	matcher := section.NewMatcher(testEntries(), nil)
	d := &Detector{Matcher: matcher}

	lines := []TextLine{
		{Text: "Experience", MaxFontSize: 14, SpaceAbove: 20},
		{Text: "- did a thing", IsBullet: true, MaxFontSize: 10, SpaceAbove: 2},
	}

	headers := d.Detect(context.Background(), lines)
	for _, h := range headers {
		if h.Line.IsBullet {
			t.Errorf("Detect() returned a bullet line as a header: %q", h.Line.Text)
		}
	}
}

func TestDetectorDemotesConsecutiveHeaderScoredLine(t *testing.T) {
	matcher := section.NewMatcher(testEntries(), nil)
	d := &Detector{Matcher: matcher}

	lines := []TextLine{
		{Text: "Experience", MaxFontSize: 14, SpaceAbove: 20},
		{Text: "Experience", MaxFontSize: 14, SpaceAbove: 1}, // immediate repeat, tiny gap: demoted
	}

	headers := d.Detect(context.Background(), lines)
	if len(headers) != 1 {
		t.Errorf("Detect() returned %d headers, want 1 (second header-scored line immediately following the first should be demoted)", len(headers))
	}
}
