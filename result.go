package sectio

// Result is the stable JSON-shaped output record, §6.
type Result struct {
	File           FileInfo         `json:"file"`
	Layouts        []LayoutInfo     `json:"layouts"`
	Sections       []SectionOutput  `json:"sections"`
	UnknownHeaders []UnknownHeader  `json:"unknown_headers"`
	Quality        Quality          `json:"quality"`
	Metadata       ResultMetadata   `json:"metadata"`
}

// FileInfo describes the source document.
type FileInfo struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Pages   int    `json:"pages"`
	Scanned bool   `json:"scanned"`
}

// LayoutInfo is one page's classification.
type LayoutInfo struct {
	Page       int     `json:"page"`
	Type       string  `json:"type"`
	Columns    int     `json:"columns"`
	Confidence float64 `json:"confidence"`
}

// SectionOutput is one assembled section in the output record.
type SectionOutput struct {
	Name      string   `json:"name"`
	PageSpan  [2]int   `json:"page_span"`
	Lines     []string `json:"lines"`
}

// Suggestion is a candidate canonical name for an unresolved header.
type Suggestion struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// UnknownHeader describes a header line the matcher could not resolve.
type UnknownHeader struct {
	Raw         string       `json:"raw"`
	Page        int          `json:"page"`
	Score       float64      `json:"score"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Rung is the coarse quality classification §4.8/§6 specify.
type Rung string

const (
	RungExcellent Rung = "excellent"
	RungAcceptable Rung = "acceptable"
	RungPoor      Rung = "poor"
	RungFailed    Rung = "failed"
)

// Quality is the §4.8 validation outcome.
type Quality struct {
	Score float64 `json:"score"`
	Rung  Rung    `json:"rung"`
}

// ResultMetadata carries strategy/fallback bookkeeping plus sectio's
// additive run_id field (not in spec.md; additive per "expansion adds,
// never removes").
type ResultMetadata struct {
	StrategyUsed   string   `json:"strategy_used"`
	FallbacksTried []string `json:"fallbacks_tried"`
	ElapsedMs      int64    `json:"elapsed_ms"`
	RunID          string   `json:"run_id"`
}

// RungFor maps a quality score to its §4.8 rung.
func RungFor(score float64) Rung {
	switch {
	case score >= 0.8:
		return RungExcellent
	case score >= 0.6:
		return RungAcceptable
	case score >= 0.4:
		return RungPoor
	default:
		return RungFailed
	}
}
