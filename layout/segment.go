package layout

import (
	"context"
	"sort"

	"github.com/tsawler/sectio/model"
	"github.com/tsawler/sectio/section"
)

// FullWidthColumn is the column index used for a region spanning the whole
// page width (Type1, or a full-width band within Type3).
const FullWidthColumn = 0

// ColumnRegion is a vertical (or, within a Type3 band, band-local) slab of a
// page holding the tokens assigned to it. Column indices are ordered left to
// right within a band (or within the page outside Type3), so they repeat
// across Type3 bands; BandIndex is -1 outside Type3.
type ColumnRegion struct {
	PageIndex  int
	ColumnIndex int
	BandIndex  int // -1 unless this region belongs to a Type3 band
	XBounds    [2]float64
	YBounds    [2]float64 // band's y-range; full page height outside Type3
	Tokens     []model.Token
	SpansBand  bool // true when this region is a full-width band (Type3)
}

// MinTokensForResplit is the minimum token count a resulting column must
// have after a multi-section-header resplit, per §4.3.
const MinTokensForResplit = 5

// Segment implements C3: partitions a page's tokens into ColumnRegions
// according to its LayoutClass, then attempts the multi-section header
// re-split against m before returning.
func Segment(ctx context.Context, page model.Page, class LayoutClass, m *section.Matcher) []ColumnRegion {
	var regions []ColumnRegion
	switch class.Kind {
	case Type1:
		regions = []ColumnRegion{segmentFullWidth(page, 0, page.Height, -1)}
	case Type2:
		regions = segmentColumns(page, class.ColumnBounds, 0, page.Height, -1)
	case Type3:
		regions = segmentBands(page, class.Bands)
	default:
		regions = []ColumnRegion{segmentFullWidth(page, 0, page.Height, -1)}
	}

	regions = dropEmpty(regions)
	if len(regions) == 0 {
		regions = []ColumnRegion{segmentFullWidth(page, 0, page.Height, -1)}
	}

	if m != nil {
		if resplit, ok := tryMultiHeaderResplit(ctx, page, regions, m); ok {
			return resplit
		}
	}
	return regions
}

func segmentFullWidth(page model.Page, yTop, yBot float64, band int) ColumnRegion {
	var toks []model.Token
	for _, t := range page.Tokens {
		yc := (t.Y0() + t.Y1()) / 2
		if yc >= yTop && yc < yBot {
			toks = append(toks, t)
		}
	}
	return ColumnRegion{
		PageIndex:   page.Number,
		ColumnIndex: 0,
		BandIndex:   band,
		XBounds:     [2]float64{0, page.Width},
		YBounds:     [2]float64{yTop, yBot},
		Tokens:      toks,
		SpansBand:   band >= 0,
	}
}

func segmentColumns(page model.Page, bounds [][2]float64, yTop, yBot float64, band int) []ColumnRegion {
	regions := make([]ColumnRegion, len(bounds))
	centers := make([]float64, len(bounds))
	for i, b := range bounds {
		centers[i] = (b[0] + b[1]) / 2
		regions[i] = ColumnRegion{
			PageIndex:   page.Number,
			ColumnIndex: i,
			BandIndex:   band,
			XBounds:     b,
			YBounds:     [2]float64{yTop, yBot},
		}
	}
	for _, t := range page.Tokens {
		yc := (t.Y0() + t.Y1()) / 2
		if yc < yTop || yc >= yBot {
			continue
		}
		xc := t.XCenter()
		col := assignColumn(xc, bounds, centers)
		regions[col].Tokens = append(regions[col].Tokens, t)
	}
	return regions
}

// assignColumn assigns a token by x-center to the column whose bounds contain
// it. A token outside every bound goes to the column with the nearest
// centroid, the first column winning an exact tie. Tokens near a boundary but
// inside a bound are not reassigned by centroid distance.
func assignColumn(xc float64, bounds [][2]float64, centers []float64) int {
	for i, b := range bounds {
		if xc >= b[0] && xc < b[1] {
			return i
		}
	}
	best, bestDist := 0, -1.0
	for i, c := range centers {
		d := c - xc
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func segmentBands(page model.Page, bands []Band) []ColumnRegion {
	var regions []ColumnRegion
	for bi, band := range bands {
		if len(band.ColumnBounds) <= 1 {
			r := segmentFullWidth(page, band.YTop, band.YBot, bi)
			regions = append(regions, r)
			continue
		}
		regions = append(regions, segmentColumns(page, band.ColumnBounds, band.YTop, band.YBot, bi)...)
	}
	return regions
}

func dropEmpty(regions []ColumnRegion) []ColumnRegion {
	out := make([]ColumnRegion, 0, len(regions))
	for _, r := range regions {
		if len(r.Tokens) > 0 {
			out = append(out, r)
		}
	}
	return out
}

// tryMultiHeaderResplit implements §4.3's "multi-section header re-split":
// if a single top line's tokens resolve to two or more distinct canonical
// names at distinct x-positions, re-segment so each anchors its own column.
func tryMultiHeaderResplit(ctx context.Context, page model.Page, regions []ColumnRegion, m *section.Matcher) ([]ColumnRegion, bool) {
	for _, r := range regions {
		lines := GroupLines(r.Tokens)
		if len(lines) == 0 {
			continue
		}
		top := lines[0]
		anchors := detectMultiHeaderAnchors(ctx, top, m)
		if len(anchors) < 2 {
			continue
		}
		sort.Slice(anchors, func(i, j int) bool { return anchors[i].x < anchors[j].x })
		bounds := anchorBounds(anchors, r.XBounds)
		newRegions := segmentColumns(page, bounds, r.YBounds[0], r.YBounds[1], r.BandIndex)
		ok := true
		for _, nr := range newRegions {
			if len(nr.Tokens) < MinTokensForResplit {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		// §4.6: the re-split itself is a strong enough signal to record
		// both surface forms regardless of their individual match score.
		for _, a := range anchors {
			m.LearnMultiSectionSurface(a.name, a.raw)
		}
		return replaceRegion(regions, r, newRegions), true
	}
	return regions, false
}

type headerAnchor struct {
	name string
	raw  string
	x    float64
}

// detectMultiHeaderAnchors looks for two or more non-overlapping token spans
// within a single line that each normalize to a distinct known canonical
// name, grouping tokens by whitespace gaps wider than 3x the median token
// gap as a cheap proxy for "distinct x-position cluster".
func detectMultiHeaderAnchors(ctx context.Context, line TextLine, m *section.Matcher) []headerAnchor {
	if len(line.Tokens) < 2 {
		return nil
	}
	groups := splitByGap(line.Tokens)
	var anchors []headerAnchor
	seen := map[string]bool{}
	for _, g := range groups {
		text := joinTokens(g)
		name, kind, score := m.Match(ctx, text)
		if kind == section.MatchUnknown || score < 0.5 {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		x0, x1 := g[0].X0(), g[len(g)-1].X1()
		anchors = append(anchors, headerAnchor{name: name, raw: text, x: (x0 + x1) / 2})
	}
	return anchors
}

func splitByGap(tokens []model.Token) [][]model.Token {
	if len(tokens) == 0 {
		return nil
	}
	gaps := make([]float64, 0, len(tokens)-1)
	for i := 1; i < len(tokens); i++ {
		gaps = append(gaps, tokens[i].X0()-tokens[i-1].X1())
	}
	medianGap := median(gaps)
	threshold := medianGap * 3
	if threshold <= 0 {
		threshold = 20
	}
	var groups [][]model.Token
	cur := []model.Token{tokens[0]}
	for i := 1; i < len(tokens); i++ {
		gap := tokens[i].X0() - tokens[i-1].X1()
		if gap > threshold {
			groups = append(groups, cur)
			cur = nil
		}
		cur = append(cur, tokens[i])
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

func joinTokens(tokens []model.Token) string {
	var sb []byte
	for i, t := range tokens {
		if i > 0 {
			sb = append(sb, ' ')
		}
		sb = append(sb, t.Text...)
	}
	return string(sb)
}

func anchorBounds(anchors []headerAnchor, parent [2]float64) [][2]float64 {
	bounds := make([][2]float64, len(anchors))
	prev := parent[0]
	for i, a := range anchors {
		var next float64
		if i == len(anchors)-1 {
			next = parent[1]
		} else {
			next = (a.x + anchors[i+1].x) / 2
		}
		bounds[i] = [2]float64{prev, next}
		prev = next
	}
	return bounds
}

func replaceRegion(regions []ColumnRegion, old ColumnRegion, replacements []ColumnRegion) []ColumnRegion {
	out := make([]ColumnRegion, 0, len(regions)-1+len(replacements))
	for _, r := range regions {
		if r.ColumnIndex == old.ColumnIndex && r.BandIndex == old.BandIndex {
			for i, nr := range replacements {
				nr.ColumnIndex = r.ColumnIndex*100 + i
				out = append(out, nr)
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
