package section

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"
)

// MatchKind is how a header string resolved to a canonical name.
type MatchKind int

const (
	MatchUnknown MatchKind = iota
	MatchExact
	MatchNormalized
	MatchEmbedding
	MatchPattern
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchNormalized:
		return "normalized"
	case MatchEmbedding:
		return "embedding"
	case MatchPattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// LearnThreshold is the §4.6 "score >= 0.70" bar for auto-learning a
// non-exact match's surface form as a new variant.
const LearnThreshold = 0.70

// EmbeddingSimilarityThreshold is the default cosine-similarity bar for an
// embedding match (EMBEDDINGS_ENABLED threshold, §6).
const EmbeddingSimilarityThreshold = 0.68

// EmbeddingTimeout is the §5 per-call deadline placed around every Embed
// call the matcher makes, so a hung or slow provider loses only recall for
// that one header, never the deadline governing the strategy it runs under.
const EmbeddingTimeout = 5 * time.Second

// Embedder is the optional capability §4.6 step 5 and §9 describe: absence
// (a nil Embedder) must not change correctness, only recall.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// embed bounds one embedder call to EmbeddingTimeout, independent of
// whatever deadline ctx already carries.
func (m *Matcher) embed(ctx context.Context, text string) ([]float32, error) {
	embedCtx, cancel := context.WithTimeout(ctx, EmbeddingTimeout)
	defer cancel()
	return m.embedder.Embed(embedCtx, text)
}

// Matcher runs the §4.6 match pipeline against a point-in-time snapshot of
// the database, buffering any learned variants into a Diff rather than
// mutating the database directly (readers snapshot, writers commit).
type Matcher struct {
	entries     map[string]*Entry
	embedder    Embedder
	embedThresh float64
	diff        *Diff
}

// NewMatcher builds a Matcher over a database snapshot. embedder may be nil.
func NewMatcher(entries map[string]*Entry, embedder Embedder) *Matcher {
	return &Matcher{
		entries:     entries,
		embedder:    embedder,
		embedThresh: EmbeddingSimilarityThreshold,
		diff:        NewDiff(),
	}
}

// SetEmbeddingThreshold overrides the default cosine-similarity bar.
func (m *Matcher) SetEmbeddingThreshold(t float64) { m.embedThresh = t }

// Diff returns the buffered learning mutations accumulated so far; pass it
// to DB.Commit at end-of-document.
func (m *Matcher) Diff() *Diff { return m.diff }

// Match implements the §4.6 pipeline steps 1-6 against the raw header
// candidate string s. ctx bounds the optional embedding step (§5); a nil
// ctx is not accepted, use context.Background() when no deadline applies.
func (m *Matcher) Match(ctx context.Context, s string) (canonical string, kind MatchKind, score float64) {
	norm := Normalize(s)

	// Step 2: exact, or normalized when reaching norm needed the
	// stylized-header folds (accent-stripping, letter-spacing collapse)
	// rather than only case-folding and punctuation/whitespace removal.
	if e, ok := m.exactMatch(norm); ok {
		k := exactOrNormalized(s)
		m.maybeLearn(ctx, e, norm, 1.0)
		return e, k, 1.0
	}

	// Step 3: trim trailing colon and retry exact.
	trimmedRaw := TrimTrailingColon(s)
	trimmed := Normalize(trimmedRaw)
	if trimmed != norm {
		if e, ok := m.exactMatch(trimmed); ok {
			k := exactOrNormalized(trimmedRaw)
			m.maybeLearn(ctx, e, trimmed, 1.0)
			return e, k, 1.0
		}
	}

	// Step 4: pattern table.
	if name, sc, ok := matchPattern(norm); ok {
		m.maybeLearn(ctx, name, norm, sc)
		return name, MatchPattern, sc
	}

	// Step 5: embedding (optional).
	if m.embedder != nil {
		if name, sim, ok := m.embeddingMatch(ctx, norm); ok {
			m.maybeLearn(ctx, name, norm, sim)
			return name, MatchEmbedding, sim
		}
	}

	return Unknown, MatchUnknown, 0.0
}

// exactOrNormalized distinguishes the two "already a known variant" match
// kinds by whether producing the final normalized form needed the deep,
// stylized-header folds (accent-stripping, single-letter-spacing collapse)
// rather than only lowercasing and punctuation/whitespace removal.
func exactOrNormalized(s string) MatchKind {
	lower := strings.ToLower(s)
	if stripAccents(lower) != lower || collapseSpacedLetters(lower) != lower {
		return MatchNormalized
	}
	return MatchExact
}

func (m *Matcher) exactMatch(norm string) (string, bool) {
	for name, e := range m.entries {
		if e.hasVariant(norm) {
			return name, true
		}
	}
	return "", false
}

func (m *Matcher) embeddingMatch(ctx context.Context, norm string) (string, float64, bool) {
	v, err := m.embed(ctx, norm)
	if err != nil || len(v) == 0 {
		return "", 0, false
	}
	bestName, bestSim := "", -1.0
	for name, e := range m.entries {
		if len(e.Centroid) == 0 {
			continue
		}
		sim := cosine(v, e.Centroid)
		if sim > bestSim {
			bestName, bestSim = name, sim
		}
	}
	if bestName == "" || bestSim < m.embedThresh {
		return "", 0, false
	}
	return bestName, bestSim, true
}

// maybeLearn implements §4.6's "on any successful non-exact match with
// score >= 0.70, add s' to E.variants ... update embedding_centroid as the
// running mean of learned variants' embeddings." Called for every match
// kind, including exact/normalized: for those the hasVariant guard below is
// always a no-op, since norm (by construction of an exact/normalized hit)
// already names a known variant — there is no new variant string left to
// record, only the fact that this surface form has now been seen again.
func (m *Matcher) maybeLearn(ctx context.Context, canonical, normalized string, score float64) {
	if score < LearnThreshold {
		return
	}
	if e, ok := m.entries[canonical]; ok && e.hasVariant(normalized) {
		return
	}
	m.diff.learn(canonical, normalized)
	if e, ok := m.entries[canonical]; ok {
		e.addVariant(normalized) // visible to later matches within this same parse
	}
	if m.embedder != nil {
		if v, err := m.embed(ctx, normalized); err == nil && len(v) > 0 {
			m.updateCentroid(canonical, v)
		}
	}
}

func (m *Matcher) updateCentroid(canonical string, v []float32) {
	e, ok := m.entries[canonical]
	if !ok {
		return
	}
	n := float64(e.UsageCount + 1)
	if len(e.Centroid) != len(v) {
		e.Centroid = append([]float32(nil), v...)
	} else {
		for i := range e.Centroid {
			e.Centroid[i] = float32((float64(e.Centroid[i])*(n-1) + float64(v[i])) / n)
		}
	}
	m.diff.setCentroid(canonical, e.Centroid)
}

// LearnMultiSectionSurface implements §4.6's "Multi-section detection
// injects each detected canonical name's observed surface form as a
// learned variant," independent of the score threshold above since the
// re-split itself is the strong signal.
func (m *Matcher) LearnMultiSectionSurface(canonical, rawSurface string) {
	norm := Normalize(rawSurface)
	if e, ok := m.entries[canonical]; ok && e.hasVariant(norm) {
		return
	}
	m.diff.learn(canonical, norm)
	if e, ok := m.entries[canonical]; ok {
		e.addVariant(norm)
	}
}

// Suggestion is a candidate canonical name offered for a header the match
// pipeline could not resolve, surfaced in the output record's
// unknown_headers[].suggestions (§6).
type Suggestion struct {
	Name  string
	Score float64
}

// Suggest ranks canonical entries and returns the top n candidates. With an
// embedder configured it ranks the entries that have a centroid by cosine
// similarity; without one, or when the embedding call fails, it ranks every
// entry by trigram similarity of s against its variants. It never
// mutates the matcher's diff: unlike Match, a suggestion is not itself a
// successful match and triggers no learning.
func (m *Matcher) Suggest(ctx context.Context, s string, n int) []Suggestion {
	norm := Normalize(s)
	if m.embedder != nil {
		if v, err := m.embed(ctx, norm); err == nil && len(v) > 0 {
			return m.topByEmbedding(v, n)
		}
	}
	return m.topByTrigram(norm, n)
}

func (m *Matcher) topByEmbedding(v []float32, n int) []Suggestion {
	out := make([]Suggestion, 0, len(m.entries))
	for name, e := range m.entries {
		if len(e.Centroid) == 0 {
			continue
		}
		out = append(out, Suggestion{Name: name, Score: cosine(v, e.Centroid)})
	}
	return topN(out, n)
}

func (m *Matcher) topByTrigram(norm string, n int) []Suggestion {
	out := make([]Suggestion, 0, len(m.entries))
	for name, e := range m.entries {
		best := 0.0
		for variant := range e.Variants {
			if sim := trigramSimilarity(norm, variant); sim > best {
				best = sim
			}
		}
		if sim := trigramSimilarity(norm, Normalize(name)); sim > best {
			best = sim
		}
		out = append(out, Suggestion{Name: name, Score: best})
	}
	return topN(out, n)
}

func topN(suggestions []Suggestion, n int) []Suggestion {
	sort.Slice(suggestions, func(i, j int) bool { return suggestions[i].Score > suggestions[j].Score })
	if n > 0 && len(suggestions) > n {
		suggestions = suggestions[:n]
	}
	return suggestions
}

// trigramSimilarity is the Jaccard index over each string's 3-character
// shingles, a cheap fuzzy-match measure that needs no external dependency
// for the common case (embeddings disabled).
func trigramSimilarity(a, b string) float64 {
	ta, tb := trigrams(a), trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for t := range ta {
		if tb[t] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func trigrams(s string) map[string]bool {
	if len(s) < 3 {
		return map[string]bool{s: true}
	}
	out := make(map[string]bool, len(s)-2)
	for i := 0; i+3 <= len(s); i++ {
		out[s[i:i+3]] = true
	}
	return out
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return -1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return -1
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
