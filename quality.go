package sectio

import (
	"github.com/tsawler/sectio/assemble"
	"github.com/tsawler/sectio/section"
)

// qualitySignals holds the five §4.8 Validate-stage predicates, each
// weighted equally (0.2) in the absence of a more specific weighting in
// the source material — recorded as an Open Question resolution in
// DESIGN.md.
type qualitySignals struct {
	sectionsFound        bool
	experiencePresent    bool
	noThinMultiPage       bool
	unknownRatioOK        bool
	avgLineLengthOK       bool
}

func computeQuality(sections []assemble.Section, diag assemble.Diagnostics) (float64, qualitySignals) {
	sig := qualitySignals{
		sectionsFound:     len(sections) >= 3,
		experiencePresent: hasSection(sections, section.Experience),
		noThinMultiPage:   noThinMultiPageSections(sections),
		unknownRatioOK:    unknownHeaderRatio(sections, diag) < 0.2,
		avgLineLengthOK:   avgLineCharCount(sections) > 20,
	}
	held := 0
	for _, ok := range []bool{sig.sectionsFound, sig.experiencePresent, sig.noThinMultiPage, sig.unknownRatioOK, sig.avgLineLengthOK} {
		if ok {
			held++
		}
	}
	score := float64(held) / 5
	return score, sig
}

func hasSection(sections []assemble.Section, name string) bool {
	for _, s := range sections {
		if s.Canonical == name {
			return true
		}
	}
	return false
}

func noThinMultiPageSections(sections []assemble.Section) bool {
	for _, s := range sections {
		if s.LastPage > s.FirstPage && len(s.BodyLines) < 3 {
			return false
		}
	}
	return true
}

func unknownHeaderRatio(sections []assemble.Section, diag assemble.Diagnostics) float64 {
	total := len(sections) + len(diag.UnknownHeaders)
	if total == 0 {
		return 0
	}
	return float64(len(diag.UnknownHeaders)) / float64(total)
}

func avgLineCharCount(sections []assemble.Section) float64 {
	total, count := 0, 0
	for _, s := range sections {
		for _, l := range s.BodyLines {
			total += len(l.Text)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}
