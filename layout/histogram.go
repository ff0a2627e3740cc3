package layout

import (
	"math"

	"github.com/tsawler/sectio/model"
)

// LayoutKind discriminates the three page layout shapes the histogram
// classifier can produce.
type LayoutKind int

const (
	// Type1 is a single reading column spanning the page body.
	Type1 LayoutKind = iota
	// Type2 is a clean multi-column layout with a deep, wide gutter between
	// every pair of adjacent columns.
	Type2
	// Type3 is a hybrid layout: some bands are full width, others are
	// multi-column, with shallow or narrow gutters that keep Type2 from
	// applying uniformly down the page.
	Type3
)

func (k LayoutKind) String() string {
	switch k {
	case Type1:
		return "single"
	case Type2:
		return "multi"
	case Type3:
		return "hybrid"
	default:
		return "unknown"
	}
}

// Band is one horizontal slice of a Type3 page: a y-range together with the
// column bounds (in x) detected within that slice alone.
type Band struct {
	YTop, YBot   float64
	ColumnBounds [][2]float64 // (x0,x1) per column; a single entry spanning the page means full-width
}

// LayoutClass is the result of classifying one page: which of Type1/Type2/
// Type3 it is, the column bounds that apply (for Type1/Type2), the bands
// (for Type3), and a confidence score in [0,1].
type LayoutClass struct {
	Kind         LayoutKind
	ColumnBounds [][2]float64 // Type1: one entry spanning the body width; Type2: one per column
	Bands        []Band       // populated only for Type3
	Confidence   float64
	Ambiguous    bool // not set by Classify; it always leaves this false
}

// HistogramConfig holds the tunables named in §4.2.
type HistogramConfig struct {
	Bins              int     // N, default 150, valid range [100,200]
	SmoothWindowRatio float64 // window = ceil(N/25), default yields 7 at N=150
	PeakThreshold     float64 // Ĥ >= this is a peak, default 0.35
	FloorThreshold    float64 // valley Ĥ <= this reaches "floor", default 0.08
	DeepValleyRatio   float64 // (peak_min-valley)/peak_min < this => Type1, default 0.6
	TopMarginRatio    float64 // excluded from primary classification, default 0.08
	BottomMarginRatio float64 // default 0.05
	MinTokensForSplit int     // pages with fewer tokens default to Type1, default 20
	MinColumnWidthFrac float64 // columns narrower than this fraction of page width merge into a neighbor, default 0.08
}

// DefaultHistogramConfig returns the §4.2 defaults.
func DefaultHistogramConfig() HistogramConfig {
	return HistogramConfig{
		Bins:               150,
		PeakThreshold:      0.35,
		FloorThreshold:     0.08,
		DeepValleyRatio:    0.6,
		TopMarginRatio:     0.08,
		BottomMarginRatio:  0.05,
		MinTokensForSplit:  20,
		MinColumnWidthFrac: 0.08,
	}
}

type peak struct {
	bin   int
	value float64
}

// Classify implements §4.2: builds a smoothed, normalized x-axis density
// histogram over body tokens and classifies the page as Type1/Type2/Type3.
func Classify(page model.Page, cfg HistogramConfig) LayoutClass {
	if cfg.Bins == 0 {
		cfg = DefaultHistogramConfig()
	}
	if len(page.Tokens) < cfg.MinTokensForSplit {
		return LayoutClass{
			Kind:         Type1,
			ColumnBounds: [][2]float64{{0, page.Width}},
			Confidence:   1,
		}
	}

	top := page.Height * cfg.TopMarginRatio
	bot := page.Height * (1 - cfg.BottomMarginRatio)
	body := make([]model.Token, 0, len(page.Tokens))
	for _, t := range page.Tokens {
		yc := (t.Y0() + t.Y1()) / 2
		if yc >= top && yc <= bot {
			body = append(body, t)
		}
	}
	if len(body) < cfg.MinTokensForSplit {
		return LayoutClass{Kind: Type1, ColumnBounds: [][2]float64{{0, page.Width}}, Confidence: 1}
	}

	hist, binWidth := buildHistogram(body, page.Width, cfg.Bins)
	smoothed := smooth(hist, smoothWindow(cfg.Bins))
	norm := normalize(smoothed)

	peaks := findPeaks(norm, cfg.PeakThreshold)
	if len(peaks) <= 1 {
		return LayoutClass{
			Kind:         Type1,
			ColumnBounds: [][2]float64{{0, page.Width}},
			Confidence:   1 - secondaryPeakValue(norm, peaks),
		}
	}

	deepestRatio, deepestValley, floorWide := valleyStats(norm, peaks, cfg.FloorThreshold)
	peakMin := math.Min(peaks[0].value, peaks[len(peaks)-1].value)

	if deepestRatio < cfg.DeepValleyRatio {
		return LayoutClass{
			Kind:         Type1,
			ColumnBounds: [][2]float64{{0, page.Width}},
			Confidence:   1 - secondaryPeakValue(norm, peaks),
		}
	}

	if floorWide {
		bounds := columnBoundsFromPeaks(peaks, binWidth, page.Width, cfg.MinColumnWidthFrac)
		conf := math.Min(1.0, (peakMin-deepestValley)/peakMin)
		return LayoutClass{Kind: Type2, ColumnBounds: bounds, Confidence: conf}
	}

	bands := classifyBands(page, cfg)
	conf := 1 - math.Min(1.0, (peakMin-deepestValley)/peakMin)
	return LayoutClass{Kind: Type3, Bands: bands, Confidence: conf}
}

func buildHistogram(tokens []model.Token, width float64, n int) (hist []float64, binWidth float64) {
	binWidth = math.Max(1, math.Round(width/float64(n)))
	nb := int(math.Ceil(width/binWidth)) + 1
	hist = make([]float64, nb)
	for _, t := range tokens {
		xc := t.XCenter()
		bin := int(xc / binWidth)
		if bin < 0 {
			bin = 0
		}
		if bin >= nb {
			bin = nb - 1
		}
		hist[bin] += t.X1() - t.X0()
	}
	return hist, binWidth
}

func smoothWindow(n int) int {
	w := int(math.Ceil(float64(n) / 25))
	if w < 1 {
		w = 1
	}
	return w
}

func smooth(h []float64, window int) []float64 {
	if window <= 1 {
		out := make([]float64, len(h))
		copy(out, h)
		return out
	}
	out := make([]float64, len(h))
	half := window / 2
	for i := range h {
		sum, count := 0.0, 0
		for j := i - half; j <= i+half; j++ {
			if j >= 0 && j < len(h) {
				sum += h[j]
				count++
			}
		}
		if count > 0 {
			out[i] = sum / float64(count)
		}
	}
	return out
}

func normalize(h []float64) []float64 {
	max := 0.0
	for _, v := range h {
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(h))
	if max == 0 {
		return out
	}
	for i, v := range h {
		out[i] = v / max
	}
	return out
}

func findPeaks(h []float64, threshold float64) []peak {
	var peaks []peak
	for i := range h {
		if h[i] < threshold {
			continue
		}
		isMax := true
		if i > 0 && h[i-1] > h[i] {
			isMax = false
		}
		if i < len(h)-1 && h[i+1] > h[i] {
			isMax = false
		}
		if isMax {
			peaks = append(peaks, peak{bin: i, value: h[i]})
		}
	}
	return peaks
}

func secondaryPeakValue(h []float64, peaks []peak) float64 {
	if len(peaks) == 0 {
		return 0
	}
	best, second := 0.0, 0.0
	for _, p := range peaks {
		if p.value > best {
			best, second = p.value, best
		} else if p.value > second {
			second = p.value
		}
	}
	return second
}

// valleyStats scans between every consecutive pair of peaks and returns:
//   - deepestRatio: min over all gaps of (peak_min-valley)/peak_min
//   - deepestValley: the valley Ĥ value achieving that ratio
//   - floorWide: whether some valley reaches the floor threshold across >=2 bins
func valleyStats(h []float64, peaks []peak, floorThreshold float64) (deepestRatio, deepestValley float64, floorWide bool) {
	deepestRatio = math.Inf(1)
	for i := 0; i+1 < len(peaks); i++ {
		a, b := peaks[i], peaks[i+1]
		valley := math.Inf(1)
		floorRun := 0
		bestFloorRun := 0
		for j := a.bin; j <= b.bin; j++ {
			if h[j] < valley {
				valley = h[j]
			}
			if h[j] <= floorThreshold {
				floorRun++
				if floorRun > bestFloorRun {
					bestFloorRun = floorRun
				}
			} else {
				floorRun = 0
			}
		}
		peakMin := math.Min(a.value, b.value)
		ratio := math.Inf(1)
		if peakMin > 0 {
			ratio = (peakMin - valley) / peakMin
		}
		if ratio < deepestRatio {
			deepestRatio = ratio
			deepestValley = valley
		}
		if bestFloorRun >= 2 {
			floorWide = true
		}
	}
	if math.IsInf(deepestRatio, 1) {
		deepestRatio = 0
	}
	return deepestRatio, deepestValley, floorWide
}

func columnBoundsFromPeaks(peaks []peak, binWidth, pageWidth, minFrac float64) [][2]float64 {
	centers := make([]float64, len(peaks))
	for i, p := range peaks {
		centers[i] = (float64(p.bin) + 0.5) * binWidth
	}
	bounds := make([][2]float64, 0, len(centers))
	prev := 0.0
	for i, c := range centers {
		var next float64
		if i == len(centers)-1 {
			next = pageWidth
		} else {
			next = (c + centers[i+1]) / 2
		}
		bounds = append(bounds, [2]float64{prev, next})
		prev = next
	}
	return mergeNarrowColumns(bounds, pageWidth, minFrac)
}

func mergeNarrowColumns(bounds [][2]float64, pageWidth, minFrac float64) [][2]float64 {
	minWidth := pageWidth * minFrac
	out := make([][2]float64, 0, len(bounds))
	for _, b := range bounds {
		if b[1]-b[0] < minWidth && len(out) > 0 {
			out[len(out)-1][1] = b[1]
			continue
		}
		out = append(out, b)
	}
	return out
}

// classifyBands slices the page into horizontal bands of height h/10 and
// reclassifies each band's x-histogram in isolation; a band that reverts to
// a single peak is recorded as full-width.
func classifyBands(page model.Page, cfg HistogramConfig) []Band {
	bandHeight := page.Height / 10
	if bandHeight <= 0 {
		return nil
	}
	var bands []Band
	for y := 0.0; y < page.Height; y += bandHeight {
		yTop, yBot := y, math.Min(y+bandHeight, page.Height)
		var toks []model.Token
		for _, t := range page.Tokens {
			yc := (t.Y0() + t.Y1()) / 2
			if yc >= yTop && yc < yBot {
				toks = append(toks, t)
			}
		}
		if len(toks) < cfg.MinTokensForSplit {
			bands = append(bands, Band{YTop: yTop, YBot: yBot, ColumnBounds: [][2]float64{{0, page.Width}}})
			continue
		}
		hist, binWidth := buildHistogram(toks, page.Width, cfg.Bins)
		norm := normalize(smooth(hist, smoothWindow(cfg.Bins)))
		peaks := findPeaks(norm, cfg.PeakThreshold)
		if len(peaks) <= 1 {
			bands = append(bands, Band{YTop: yTop, YBot: yBot, ColumnBounds: [][2]float64{{0, page.Width}}})
			continue
		}
		bounds := columnBoundsFromPeaks(peaks, binWidth, page.Width, cfg.MinColumnWidthFrac)
		bands = append(bands, Band{YTop: yTop, YBot: yBot, ColumnBounds: bounds})
	}
	return bands
}
