// Package layout implements the page-layout classifier, column segmenter,
// line grouper, and section-header detector described by the resume
// section-extraction pipeline.
//
// # Pipeline
//
// A page moves through four stages, each a pure function over value records:
//
//	class   := layout.Classify(page, layout.DefaultHistogramConfig())
//	regions := layout.Segment(ctx, page, class, matcher)
//	lines   := layout.GroupLines(region.Tokens)
//	headers := (&layout.Detector{Matcher: matcher}).Detect(ctx, lines)
//
// [Classify] builds a smoothed, normalized x-axis density histogram over
// body tokens and decides whether a page is [Type1] (single column),
// [Type2] (clean multi-column, deep wide gutter), or [Type3] (hybrid bands).
//
// [Segment] partitions a page's tokens into [ColumnRegion] values consistent
// with the LayoutClass, including the multi-section header re-split when a
// single line's tokens resolve to two or more distinct canonical section
// names at distinct x-positions.
//
// [GroupLines] clusters a column's tokens into [TextLine] values by vertical
// overlap, merging continuation fragments (superscripts, descenders) after
// the initial sweep.
//
// [Detector] scores each [TextLine] against the multi-signal header rubric
// (known-variant match, short line, case pattern, bold majority, font size,
// spacing, trailing colon) with a page-adaptive threshold, producing
// [Header] records the section assembler consumes.
package layout
