package sectio

// strategy names the word-acquisition choice the orchestrator is trying;
// surfaced verbatim in metadata.strategy_used / fallbacks_tried.
type strategy string

const (
	strategyTextLayer strategy = "text-layer"
	strategyOCR       strategy = "ocr"
	strategyDocx      strategy = "docx"
)

// MaxFallbacks is K in §4.8: at most 3 strategies are tried per document.
const MaxFallbacks = 3

// strategiesFor returns the ordered fallback list §4.8 specifies per
// detected file kind.
func strategiesFor(kind detectedKind) []strategy {
	switch kind {
	case kindPDFText:
		return []strategy{strategyTextLayer, strategyOCR}
	case kindPDFScanned:
		return []strategy{strategyOCR}
	case kindDocx:
		return []strategy{strategyDocx}
	default:
		return []strategy{strategyTextLayer}
	}
}

// detectedKind is the §4.8 Detect stage's classification.
type detectedKind int

const (
	kindUnknown detectedKind = iota
	kindPDFText
	kindPDFScanned
	kindDocx
)
