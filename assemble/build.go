package assemble

import (
	"context"

	"github.com/tsawler/sectio/layout"
	"github.com/tsawler/sectio/section"
)

// PageColumns is one page's C3 output: its layout class and the
// ColumnRegions Segment produced, already in left-to-right,
// top-to-bottom reading order (Segment's return order IS the column
// traversal order §4.7 specifies, since Type2/Type3 construction emits
// regions left-to-right within each band, and bands top-to-bottom).
type PageColumns struct {
	PageIndex int
	Regions   []layout.ColumnRegion
}

// streamLine is one line plus the (page, column) it was drawn from, used to
// build SourceColumns without re-deriving it later.
type streamLine struct {
	line layout.TextLine
	ref  ColumnRef
	page int
}

// Build implements C7: concatenates every page's column-traversal-ordered
// lines into one stream, opens/attaches/merges Sections by header, and
// returns the diagnostics §4.7 specifies.
func Build(ctx context.Context, pages []PageColumns, matcher *section.Matcher, thetaOverride float64) ([]Section, Diagnostics) {
	detector := &layout.Detector{Matcher: matcher, ThetaOverride: thetaOverride}

	var stream []streamLine
	headerAt := make(map[int]layout.Header) // index into stream -> Header

	for _, pc := range pages {
		for _, region := range pc.Regions {
			lines := layout.GroupLines(region.Tokens)
			headers := detector.Detect(ctx, lines)
			headerByLineIndex := make(map[int]layout.Header, len(headers))
			for _, h := range headers {
				for i, l := range lines {
					if sameLine(l, h.Line) {
						headerByLineIndex[i] = h
						break
					}
				}
			}
			for i, l := range lines {
				idx := len(stream)
				stream = append(stream, streamLine{
					line: l,
					ref:  ColumnRef{Page: pc.PageIndex, Column: region.ColumnIndex},
					page: pc.PageIndex,
				})
				if h, ok := headerByLineIndex[i]; ok {
					headerAt[idx] = h
				}
			}
		}
	}

	return walkStream(ctx, stream, headerAt, matcher)
}

func sameLine(a, b layout.TextLine) bool {
	return a.YTop == b.YTop && a.Text == b.Text
}

func walkStream(ctx context.Context, stream []streamLine, headerAt map[int]layout.Header, matcher *section.Matcher) ([]Section, Diagnostics) {
	order := make([]string, 0)
	byName := make(map[string]*Section)
	var diag Diagnostics

	var current *Section
	preHeader := true
	firstPageSet := make(map[string]bool)

	openSection := func(canonical string) *Section {
		if s, ok := byName[canonical]; ok {
			return s
		}
		s := &Section{Canonical: canonical}
		byName[canonical] = s
		order = append(order, canonical)
		return s
	}
	attach := func(s *Section, sl streamLine) {
		s.BodyLines = append(s.BodyLines, sl.line)
		s.SourceColumns = appendColumnRef(s.SourceColumns, sl.ref)
		if !firstPageSet[s.Canonical] {
			s.FirstPage = sl.page
			firstPageSet[s.Canonical] = true
		}
		if sl.page > s.LastPage {
			s.LastPage = sl.page
		}
	}

	var pendingPreHeader []streamLine

	for i, sl := range stream {
		if h, ok := headerAt[i]; ok {
			preHeader = false
			if pendingPreHeader != nil {
				flushPreHeader(pendingPreHeader, openSection, attach)
				pendingPreHeader = nil
			}
			if h.Canonical == section.Unknown || h.MatchKind == section.MatchUnknown {
				diag.UnknownHeaders = append(diag.UnknownHeaders, UnknownHeader{
					Raw: sl.line.Text, Page: sl.page, Score: h.Score,
					Suggestions: matcher.Suggest(ctx, sl.line.Text, 3),
				})
				current = openSection(section.Unknown)
				continue
			}
			current = openSection(h.Canonical)
			continue
		}
		if preHeader {
			pendingPreHeader = append(pendingPreHeader, sl)
			continue
		}
		if current == nil {
			current = openSection(section.Summary)
		}
		attach(current, sl)
	}
	if pendingPreHeader != nil {
		flushPreHeader(pendingPreHeader, openSection, attach)
	}

	sections := make([]Section, 0, len(order))
	for _, name := range order {
		s := *byName[name]
		sections = append(sections, s)
	}

	diag.LearnedVariants = learnedSurfaceForms(matcher)
	return sections, diag
}

func flushPreHeader(lines []streamLine, open func(string) *Section, attach func(*Section, streamLine)) {
	canonical := section.Summary
	for _, sl := range lines {
		if looksLikeContact(sl.line.Text) {
			canonical = section.Contact
			break
		}
	}
	s := open(canonical)
	for _, sl := range lines {
		attach(s, sl)
	}
}

func appendColumnRef(refs []ColumnRef, ref ColumnRef) []ColumnRef {
	for _, r := range refs {
		if r == ref {
			return refs
		}
	}
	return append(refs, ref)
}

func learnedSurfaceForms(matcher *section.Matcher) []string {
	if matcher == nil {
		return nil
	}
	return matcher.Diff().LearnedVariants()
}
