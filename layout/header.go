package layout

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/tsawler/sectio/section"
)

// Header is a TextLine that scored as a section boundary (§4.5's
// SectionHeader). Named Header to keep it distinct from model.Heading, the
// H1-H6 heading element.
type Header struct {
	Line      TextLine
	Canonical string
	MatchKind section.MatchKind
	Score     float64
}

// Signal weights, §4.5's table.
const (
	weightKnownVariant = 0.40
	weightShortLine    = 0.10
	weightCasePattern  = 0.15
	weightBoldMajority = 0.10
	weightFontSize     = 0.10
	weightSpaceAbove   = 0.10
	weightTrailingColon = 0.05
)

// Adaptive θ bounds and breakpoints, §4.5.
const (
	ThetaMin     = 0.25
	ThetaDefault = 0.30
	ThetaMax     = 0.40

	sigmaOverMuHighContrast = 0.5
	sigmaOverMuLowContrast  = 0.3
)

var allCapsRun = regexp.MustCompile(`^[A-Z0-9 &/,.'\-]+$`)

// AdaptiveTheta implements §4.5's per-page θ adaptation from the
// coefficient of variation (σ/μ) of line font sizes. A non-zero override
// (HEADER_SCORE_THRESHOLD_OVERRIDE) always wins.
func AdaptiveTheta(lines []TextLine, override float64) float64 {
	if override > 0 {
		return override
	}
	sizes := make([]float64, 0, len(lines))
	for _, l := range lines {
		sizes = append(sizes, l.MaxFontSize)
	}
	mu := mean(sizes)
	if mu == 0 {
		return ThetaDefault
	}
	sigma := stddev(sizes, mu)
	ratio := sigma / mu
	switch {
	case ratio > sigmaOverMuHighContrast:
		return ThetaMin
	case ratio < sigmaOverMuLowContrast:
		return ThetaMax
	default:
		return ThetaDefault
	}
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64, mu float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range vals {
		d := v - mu
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(vals)))
}

// ScoreLine computes the §4.5 weighted signal sum for one line, given the
// column's median font size and median line gap, plus a matcher used for
// the "matches a known canonical variant" signal.
func ScoreLine(ctx context.Context, line TextLine, columnMedianFont, columnMedianGap float64, m *section.Matcher) (score float64, canonical string, kind section.MatchKind) {
	canonical, kind, matchScore := m.Match(ctx, line.Text)
	if kind == section.MatchExact || kind == section.MatchNormalized {
		score += weightKnownVariant
	}

	if isShortLine(line) {
		score += weightShortLine
	}
	if isCasePattern(line.Text) {
		score += weightCasePattern
	}
	if line.BoldRatio >= 0.6 {
		score += weightBoldMajority
	}
	if columnMedianFont > 0 && line.MaxFontSize > 1.15*columnMedianFont {
		score += weightFontSize
	}
	if columnMedianGap > 0 && line.SpaceAbove >= 1.5*columnMedianGap {
		score += weightSpaceAbove
	}
	if hasTrailingColonOnly(line.Text) {
		score += weightTrailingColon
	}

	if score > 1.0 {
		score = 1.0
	}
	_ = matchScore
	return score, canonical, kind
}

func isShortLine(line TextLine) bool {
	return len(line.Tokens) <= 8 && len(line.Text) <= 60
}

func isCasePattern(text string) bool {
	letters, upper := 0, 0
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			letters++
		} else if r >= 'A' && r <= 'Z' {
			letters++
			upper++
		}
	}
	if letters == 0 {
		return false
	}
	alphaRatio := float64(letters) / float64(len([]rune(text)))
	if alphaRatio < 0.8 {
		return false
	}
	if allCapsRun.MatchString(strings.TrimSpace(text)) {
		return true
	}
	return isTitleCase(text)
}

func isTitleCase(text string) bool {
	words := strings.Fields(text)
	if len(words) == 0 {
		return false
	}
	titled := 0
	for _, w := range words {
		r := []rune(w)
		if len(r) == 0 {
			continue
		}
		if r[0] >= 'A' && r[0] <= 'Z' {
			titled++
		}
	}
	return float64(titled)/float64(len(words)) >= 0.8
}

func hasTrailingColonOnly(text string) bool {
	trimmed := strings.TrimSpace(text)
	if strings.HasSuffix(trimmed, ":") {
		return true
	}
	return trimmed == ":"
}

// Detector runs §4.5 candidate detection over all lines of a column,
// applying the page-level demotion and bullet-list exclusion edge cases.
type Detector struct {
	Matcher         *section.Matcher
	ThetaOverride   float64
}

// Detect scores every line and returns the ones that clear θ as Headers,
// in line order.
func (d *Detector) Detect(ctx context.Context, lines []TextLine) []Header {
	if len(lines) == 0 {
		return nil
	}
	theta := AdaptiveTheta(lines, d.ThetaOverride)
	medianFont := MedianFontSize(lines)
	medianGap := MedianLineGap(lines)

	scores := make([]float64, len(lines))
	canonicals := make([]string, len(lines))
	kinds := make([]section.MatchKind, len(lines))
	for i, l := range lines {
		if l.IsBullet {
			continue
		}
		s, c, k := ScoreLine(ctx, l, medianFont, medianGap, d.Matcher)
		scores[i], canonicals[i], kinds[i] = s, c, k
	}

	var headers []Header
	for i, l := range lines {
		if l.IsBullet || scores[i] < theta {
			continue
		}
		if i > 0 && scores[i-1] >= theta {
			gap := l.SpaceAbove
			if gap < 2*medianGap {
				continue // demoted: immediately preceded by another header-scored line
			}
		}
		headers = append(headers, Header{Line: l, Canonical: canonicals[i], MatchKind: kinds[i], Score: scores[i]})
	}
	return headers
}
