package layout

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tsawler/sectio/model"
)

// TextLine is a maximal horizontal cluster of Tokens sharing vertical
// overlap within a ColumnRegion (§4.4's Line). Named TextLine to keep it
// distinct from model.Line, the geometric line/rectangle type.
type TextLine struct {
	Column   int
	YTop     float64
	YBot     float64
	Tokens   []model.Token
	Text     string
	Height   float64

	MaxFontSize float64
	AvgFontSize float64
	BoldRatio   float64

	SpaceAbove float64
	SpaceBelow float64

	// IndentRatio is (line x0 - column x0) / column width. GroupLines leaves
	// it zero, and nothing in this module sets it.
	IndentRatio float64

	IsBullet bool
}

var bulletPattern = regexp.MustCompile(`^(\s*[•\-\*•●◦]\s+|\s*\d+[\.\)]\s+)`)

// GroupTolerance is τ in §4.4: a new line opens when a token's y0 exceeds
// the current line's y_bot minus τ·current_line_height.
const GroupTolerance = 0.5

// MergeGapRatio is the 0.15·min_line_height continuation-merge threshold.
const MergeGapRatio = 0.15

// GroupLines implements §4.4: sweep tokens top-down, open lines on the
// y-tolerance rule, then merge continuation fragments (superscripts,
// descenders split across a line boundary).
func GroupLines(tokens []model.Token) []TextLine {
	if len(tokens) == 0 {
		return nil
	}
	sorted := make([]model.Token, len(tokens))
	copy(sorted, tokens)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y0() != sorted[j].Y0() {
			return sorted[i].Y0() < sorted[j].Y0()
		}
		return sorted[i].X0() < sorted[j].X0()
	})

	var lines []TextLine
	var cur []model.Token
	curBot := 0.0
	curHeight := 0.0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		lines = append(lines, buildLine(cur))
		cur = nil
	}

	for _, t := range sorted {
		if len(cur) == 0 {
			cur = append(cur, t)
			curBot = t.Y1()
			curHeight = t.Y1() - t.Y0()
			continue
		}
		if t.Y0() > curBot-GroupTolerance*curHeight {
			flush()
			cur = append(cur, t)
			curBot = t.Y1()
			curHeight = t.Y1() - t.Y0()
			continue
		}
		cur = append(cur, t)
		if t.Y1() > curBot {
			curBot = t.Y1()
		}
		curHeight = curBot - cur[0].Y0()
	}
	flush()

	lines = mergeContinuations(lines)
	computeSpacing(lines)
	return lines
}

func buildLine(tokens []model.Token) TextLine {
	sorted := make([]model.Token, len(tokens))
	copy(sorted, tokens)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X0() < sorted[j].X0() })

	yTop, yBot := sorted[0].Y0(), sorted[0].Y1()
	var words []string
	var fontSum, maxFont float64
	boldCount := 0
	for _, t := range sorted {
		if t.Y0() < yTop {
			yTop = t.Y0()
		}
		if t.Y1() > yBot {
			yBot = t.Y1()
		}
		words = append(words, t.Text)
		fontSum += t.FontSize
		if t.FontSize > maxFont {
			maxFont = t.FontSize
		}
		if t.FontFlags.Has(model.FlagBold) {
			boldCount++
		}
	}
	text := strings.Join(words, " ")
	return TextLine{
		YTop:        yTop,
		YBot:        yBot,
		Tokens:      sorted,
		Text:        text,
		Height:      yBot - yTop,
		MaxFontSize: maxFont,
		AvgFontSize: fontSum / float64(len(sorted)),
		BoldRatio:   float64(boldCount) / float64(len(sorted)),
		IsBullet:    bulletPattern.MatchString(text),
	}
}

// mergeContinuations implements the §4.4 step 4 merge: a following line
// whose top is within 0.15*min(height) of the previous line's bottom, with
// non-overlapping x-ranges, is a continuation fragment and gets folded in.
func mergeContinuations(lines []TextLine) []TextLine {
	if len(lines) < 2 {
		return lines
	}
	out := make([]TextLine, 0, len(lines))
	out = append(out, lines[0])
	for i := 1; i < len(lines); i++ {
		prev := &out[len(out)-1]
		cur := lines[i]
		minHeight := prev.Height
		if cur.Height < minHeight {
			minHeight = cur.Height
		}
		gap := cur.YTop - prev.YBot
		xOverlap := overlapX(prev, &cur)
		if gap < MergeGapRatio*minHeight && !xOverlap {
			merged := append(append([]model.Token{}, prev.Tokens...), cur.Tokens...)
			*prev = buildLine(merged)
			continue
		}
		out = append(out, cur)
	}
	return out
}

func overlapX(a, b *TextLine) bool {
	ax0, ax1 := a.Tokens[0].X0(), a.Tokens[len(a.Tokens)-1].X1()
	bx0, bx1 := b.Tokens[0].X0(), b.Tokens[len(b.Tokens)-1].X1()
	return ax0 < bx1 && bx0 < ax1
}

func computeSpacing(lines []TextLine) {
	for i := range lines {
		if i == 0 {
			lines[i].SpaceAbove = 0
		} else {
			lines[i].SpaceAbove = lines[i].YTop - lines[i-1].YBot
		}
		if i == len(lines)-1 {
			lines[i].SpaceBelow = 0
		} else {
			lines[i].SpaceBelow = lines[i+1].YTop - lines[i].YBot
		}
	}
}

// MedianLineGap returns the median gap between consecutive lines, used by
// the header detector's "space_above >= 1.5x median gap" signal.
func MedianLineGap(lines []TextLine) float64 {
	var gaps []float64
	for i := 1; i < len(lines); i++ {
		gaps = append(gaps, lines[i].SpaceAbove)
	}
	return median(gaps)
}

// MedianFontSize returns the median of each line's MaxFontSize.
func MedianFontSize(lines []TextLine) float64 {
	var sizes []float64
	for _, l := range lines {
		sizes = append(sizes, l.MaxFontSize)
	}
	return median(sizes)
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
