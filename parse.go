// Package sectio is the orchestrator (C8): it composes C1-C7 into the
// Detect -> Extract -> Analyze -> Segment -> Validate -> {Commit|Fallback}
// state machine of §4.8, behind a fluent builder in the same
// clone-per-option style the teacher's tabula.Extractor uses
// (Open(filename).Pages(...).Text()), so a Parse chain is safe to share and
// fork: each With* call returns a new, independent *ParseOptions.
package sectio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/tsawler/sectio/acquire"
	"github.com/tsawler/sectio/assemble"
	"github.com/tsawler/sectio/config"
	"github.com/tsawler/sectio/embed"
	"github.com/tsawler/sectio/format"
	"github.com/tsawler/sectio/layout"
	"github.com/tsawler/sectio/model"
	"github.com/tsawler/sectio/ocr"
	"github.com/tsawler/sectio/section"
)

// Stage timeouts, §5. The embedding stage's own deadline lives next to the
// matcher that enforces it (section.EmbeddingTimeout), since every call site
// that can reach an embedder goes through *section.Matcher.
const (
	tokenAcquisitionTimeout = 60 * time.Second
	ocrPerPageTimeout       = 30 * time.Second
)

// ParseOptions is the immutable, cloned-per-option configuration for one
// parse chain.
type ParseOptions struct {
	path          string
	logger        *slog.Logger
	db            *section.DB
	embedder      embed.Provider
	ocrProvider   ocr.Provider
	raster        acquire.RasterSource
	cfg           config.Config
	thetaOverride float64
}

// Parse starts a fluent parse chain for the file at path. The embedder is
// left unset here (nil): Run resolves it lazily from cfg.EmbeddingsEnabled
// unless WithEmbedder overrides it explicitly, so an unconfigured
// EMBEDDINGS_ENABLED=true doesn't pay an OpenAI client construction cost on
// every chain that never calls Run.
func Parse(path string) *ParseOptions {
	return &ParseOptions{
		path:   path,
		logger: slog.Default(),
		cfg:    config.FromEnv(),
	}
}

func (o *ParseOptions) clone() *ParseOptions {
	c := *o
	return &c
}

// WithLogger returns a copy using l for structured logging.
func (o *ParseOptions) WithLogger(l *slog.Logger) *ParseOptions {
	c := o.clone()
	c.logger = l
	return c
}

// WithDatabase returns a copy using db as the section database instead of
// opening config.SectionDBPath itself.
func (o *ParseOptions) WithDatabase(db *section.DB) *ParseOptions {
	c := o.clone()
	c.db = db
	return c
}

// WithEmbedder returns a copy that queries embedder for the matcher's
// optional embedding step (§4.6 step 5).
func (o *ParseOptions) WithEmbedder(e embed.Provider) *ParseOptions {
	c := o.clone()
	c.embedder = e
	return c
}

// WithOCRProvider returns a copy that uses p for OCR fallback strategies.
func (o *ParseOptions) WithOCRProvider(p ocr.Provider) *ParseOptions {
	c := o.clone()
	c.ocrProvider = p
	return c
}

// WithRasterSource returns a copy that uses r to render pages with no
// embedded page image, for OCR fallback.
func (o *ParseOptions) WithRasterSource(r acquire.RasterSource) *ParseOptions {
	c := o.clone()
	c.raster = r
	return c
}

// WithThetaOverride returns a copy that disables adaptive θ in favor of a
// fixed header-score threshold (HEADER_SCORE_THRESHOLD_OVERRIDE).
func (o *ParseOptions) WithThetaOverride(theta float64) *ParseOptions {
	c := o.clone()
	c.thetaOverride = theta
	return c
}

// Run executes the full C8 state machine and returns a well-formed Result
// even when the parse fails: ErrParseFailed comes with a Result whose rung
// is "failed". ErrInvalidInput and ErrCancelled come with a nil Result
// (§7: "a failed parse still returns a well-formed output record").
func (o *ParseOptions) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := o.logger.With(slog.String("run_id", runID), slog.String("path", o.path))

	if _, err := os.Stat(o.path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	db := o.db
	if db == nil {
		opened, err := section.Open(o.cfg.SectionDBPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		db = opened
	}

	kind, scanned := detect(o.path)
	fileType := fileTypeString(kind)
	strategies := strategiesFor(kind)
	if len(strategies) > MaxFallbacks {
		strategies = strategies[:MaxFallbacks]
	}

	var (
		best        *parseAttempt
		fallbacks   []string
		attemptsRun int
	)

	for i, strat := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		if attemptsRun >= MaxFallbacks {
			break
		}
		attemptsRun++
		if i > 0 {
			fallbacks = append(fallbacks, string(strategies[i-1]))
		}

		log.Info("trying strategy", slog.String("strategy", string(strat)))
		attempt, err := o.runStrategy(ctx, strat, db)
		if err != nil {
			log.Warn("strategy failed", slog.String("strategy", string(strat)), slog.String("error", err.Error()))
			continue
		}
		if best == nil || attempt.quality > best.quality {
			best = attempt
		}
		if attempt.quality >= 0.6 {
			break
		}
	}

	elapsed := time.Since(start).Milliseconds()

	if best == nil {
		return &Result{
			File:     FileInfo{Name: o.path, Type: fileType, Scanned: scanned},
			Quality:  Quality{Score: 0, Rung: RungFailed},
			Metadata: ResultMetadata{FallbacksTried: fallbacks, ElapsedMs: elapsed, RunID: runID},
		}, fmt.Errorf("%w: all strategies produced quality below threshold", ErrParseFailed)
	}

	// An earlier, lower-scoring strategy can still end up as best once every
	// strategy has run without reaching the 0.6 early-exit; fallbacks must not
	// then list the winner as a fallback tried against itself.
	fallbacks = removeStrategy(fallbacks, string(best.strategy))

	if diff := best.diff; diff != nil {
		if err := db.Commit(diff); err != nil {
			log.Warn("section database commit failed", slog.String("error", err.Error()))
		}
	}

	result := &Result{
		File:           FileInfo{Name: o.path, Type: fileType, Pages: best.pageCount, Scanned: scanned},
		Layouts:        best.layouts,
		Sections:       best.sections,
		UnknownHeaders: best.unknownHeaders,
		Quality:        Quality{Score: best.quality, Rung: RungFor(best.quality)},
		Metadata: ResultMetadata{
			StrategyUsed:   string(best.strategy),
			FallbacksTried: fallbacks,
			ElapsedMs:      elapsed,
			RunID:          runID,
		},
	}
	return result, nil
}

func removeStrategy(strategies []string, s string) []string {
	out := strategies[:0]
	for _, v := range strategies {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func detect(path string) (detectedKind, bool) {
	switch format.Detect(path) {
	case format.DOCX:
		return kindDocx, false
	case format.PDF:
		return kindPDFText, false
	default:
		return kindUnknown, false
	}
}

func fileTypeString(k detectedKind) string {
	switch k {
	case kindDocx:
		return "docx"
	case kindPDFText, kindPDFScanned:
		return "pdf"
	default:
		return "unknown"
	}
}

// retryAcquire wraps one Acquire call with the teacher-idiom retry-go
// backoff, bounding transient read failures (the file is on a flaky mount,
// an OCR engine warming up) without hand-rolling a retry loop.
func retryAcquire(ctx context.Context, fn func() (model.Document, error)) (model.Document, error) {
	return retry.DoWithData(fn,
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(200*time.Millisecond),
	)
}

// parseAttempt is the outcome of running one strategy through
// Extract->Analyze->Segment->Validate.
type parseAttempt struct {
	strategy       strategy
	pageCount      int
	layouts        []LayoutInfo
	sections       []SectionOutput
	unknownHeaders []UnknownHeader
	quality        float64
	diff           *section.Diff
}

// runStrategy drives one Extract->Analyze->Segment->Validate pass for a
// single word-acquisition strategy.
func (o *ParseOptions) runStrategy(ctx context.Context, strat strategy, db *section.DB) (*parseAttempt, error) {
	source, err := o.sourceFor(strat)
	if err != nil {
		return nil, err
	}

	extractCtx, cancel := context.WithTimeout(ctx, tokenAcquisitionTimeout)
	defer cancel()

	doc, err := retryAcquire(extractCtx, func() (model.Document, error) {
		return source.Acquire(extractCtx, acquire.Input{Path: o.path})
	})
	if err != nil {
		return nil, fmt.Errorf("%s: extract: %w", strat, err)
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%s: extract: %w", strat, errNoExtractableText)
	}

	matcher := section.NewMatcher(db.Snapshot(), o.resolvedEmbedder())
	matcher.SetEmbeddingThreshold(o.cfg.EmbeddingSimilarityThreshold)
	theta := o.thetaOverride
	if theta == 0 {
		theta = o.cfg.HeaderScoreThresholdOverride
	}

	histCfg := layout.DefaultHistogramConfig()
	layouts := make([]LayoutInfo, 0, len(doc.Pages))
	var pageColumns []assemble.PageColumns

	for _, page := range doc.Pages {
		page.SortTokens()
		class := layout.Classify(*page, histCfg)
		regions := layout.Segment(ctx, *page, class, matcher)

		layouts = append(layouts, LayoutInfo{
			Page:       page.Number,
			Type:       class.Kind.String(),
			Columns:    len(class.ColumnBounds),
			Confidence: class.Confidence,
		})
		pageColumns = append(pageColumns, assemble.PageColumns{
			PageIndex: page.Number,
			Regions:   regions,
		})
	}

	sections, diag := assemble.Build(ctx, pageColumns, matcher, theta)

	quality, _ := computeQuality(sections, diag)

	return &parseAttempt{
		strategy:       strat,
		pageCount:      len(doc.Pages),
		layouts:        layouts,
		sections:       toSectionOutputs(sections),
		unknownHeaders: toUnknownHeaders(diag.UnknownHeaders),
		quality:        quality,
		diff:           matcher.Diff(),
	}, nil
}

// resolvedEmbedder returns the explicit WithEmbedder provider if set,
// otherwise lazily builds the sole EMBEDDINGS_ENABLED=true implementation
// (OpenAIProvider) per §6's knob, or NullProvider when embeddings are
// disabled — never changing correctness, only the matcher's recall (§9).
func (o *ParseOptions) resolvedEmbedder() embed.Provider {
	if o.embedder != nil {
		return o.embedder
	}
	if o.cfg.EmbeddingsEnabled {
		return embed.NewOpenAIProvider("", "")
	}
	return embed.NullProvider{}
}

// sourceFor resolves the concrete acquire.WordSource for a strategy.
func (o *ParseOptions) sourceFor(strat strategy) (acquire.WordSource, error) {
	switch strat {
	case strategyTextLayer:
		return acquire.NewTextLayerSource(), nil
	case strategyDocx:
		return acquire.DocxSource{}, nil
	case strategyOCR:
		provider := o.ocrProvider
		if provider == nil {
			p, err := ocr.NewTesseractProvider()
			if err != nil {
				provider = ocr.NullProvider{}
			} else {
				provider = p
			}
		}
		return &acquire.OCRSource{
			Provider:       provider,
			Languages:      o.cfg.OCRLanguages,
			DPI:            o.cfg.OCRDPI,
			Raster:         o.raster,
			PerPageTimeout: ocrPerPageTimeout,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, strat)
	}
}

func toSectionOutputs(sections []assemble.Section) []SectionOutput {
	out := make([]SectionOutput, 0, len(sections))
	for _, s := range sections {
		lines := make([]string, 0, len(s.BodyLines))
		for _, l := range s.BodyLines {
			lines = append(lines, l.Text)
		}
		out = append(out, SectionOutput{
			Name:     s.Canonical,
			PageSpan: [2]int{s.FirstPage, s.LastPage},
			Lines:    lines,
		})
	}
	return out
}

func toUnknownHeaders(headers []assemble.UnknownHeader) []UnknownHeader {
	out := make([]UnknownHeader, 0, len(headers))
	for _, h := range headers {
		suggestions := make([]Suggestion, 0, len(h.Suggestions))
		for _, s := range h.Suggestions {
			suggestions = append(suggestions, Suggestion{Name: s.Name, Score: s.Score})
		}
		out = append(out, UnknownHeader{
			Raw:         h.Raw,
			Page:        h.Page,
			Score:       h.Score,
			Suggestions: suggestions,
		})
	}
	return out
}
