package section

import (
	"context"
	"testing"
)

func newTestMatcher() *Matcher {
	return NewMatcher(seedEntries(), nil)
}

func TestMatcherExact(t *testing.T) {
	m := newTestMatcher()
	ctx := context.Background()

	tests := []struct {
		in   string
		want string
	}{
		{"Experience", Experience},
		{"Work Experience", Experience},
		{"EDUCATION", Education},
		{"Skills:", Skills},
	}

	for _, tt := range tests {
		canonical, kind, score := m.Match(ctx, tt.in)
		if canonical != tt.want {
			t.Errorf("Match(%q) canonical = %q, want %q", tt.in, canonical, tt.want)
		}
		if kind != MatchExact {
			t.Errorf("Match(%q) kind = %v, want MatchExact", tt.in, kind)
		}
		if score != 1.0 {
			t.Errorf("Match(%q) score = %v, want 1.0", tt.in, score)
		}
	}
}

// TestMatcherNormalized covers a letter-spaced, stylized header: it resolves
// against the same seed variant as its plain form, but only after the
// accent-fold/letter-spacing-collapse normalization, distinct from a literal
// (modulo case/punctuation) hit.
func TestMatcherNormalized(t *testing.T) {
	m := newTestMatcher()
	ctx := context.Background()

	canonical, kind, score := m.Match(ctx, "E X P E R I E N C E")
	if canonical != Experience {
		t.Fatalf("Match(%q) canonical = %q, want %q", "E X P E R I E N C E", canonical, Experience)
	}
	if kind != MatchNormalized {
		t.Errorf("Match(%q) kind = %v, want MatchNormalized", "E X P E R I E N C E", kind)
	}
	if score != 1.0 {
		t.Errorf("Match(%q) score = %v, want 1.0", "E X P E R I E N C E", score)
	}
}

func TestMatcherPattern(t *testing.T) {
	m := newTestMatcher()
	ctx := context.Background()

	// "Bachelor's Degree" isn't a seeded Education variant, but should
	// resolve via the pattern table.
	canonical, kind, score := m.Match(ctx, "Bachelor's Degree")
	if canonical != Education {
		t.Errorf("Match(%q) canonical = %q, want %q", "Bachelor's Degree", canonical, Education)
	}
	if kind != MatchPattern {
		t.Errorf("Match(%q) kind = %v, want MatchPattern", "Bachelor's Degree", kind)
	}
	if score < LearnThreshold {
		t.Errorf("Match(%q) score = %v, want >= %v to trigger learning", "Bachelor's Degree", score, LearnThreshold)
	}
}

func TestMatcherUnknown(t *testing.T) {
	m := newTestMatcher()
	canonical, kind, _ := m.Match(context.Background(), "Kwyjibo Banana Stand")
	if canonical != Unknown || kind != MatchUnknown {
		t.Errorf("Match(gibberish) = (%q, %v), want (%q, MatchUnknown)", canonical, kind, Unknown)
	}
}

func TestMatcherLearnsAboveThreshold(t *testing.T) {
	m := newTestMatcher()
	ctx := context.Background()
	m.Match(ctx, "Bachelor's Degree")

	diff := m.Diff()
	if diff.IsEmpty() {
		t.Fatal("expected a non-empty diff after a pattern match above LearnThreshold")
	}
	found := false
	for _, v := range diff.LearnedVariants() {
		if v == "Education: bachelorsdegree" {
			found = true
		}
	}
	if !found {
		t.Errorf("LearnedVariants() = %v, want an Education entry for the normalized surface form", diff.LearnedVariants())
	}

	// Re-matching the same surface form in the same parse must not learn it twice.
	m.Match(ctx, "Bachelor's Degree")
	if len(diff.LearnedVariants()) != 1 {
		t.Errorf("LearnedVariants() after repeat match = %v, want exactly one entry", diff.LearnedVariants())
	}
}

func TestMatcherDoesNotMutateSnapshotAcrossMatchers(t *testing.T) {
	entries := seedEntries()
	m1 := NewMatcher(entries, nil)
	m1.Match(context.Background(), "Bachelor's Degree")

	// A second matcher built over a *fresh* snapshot should not see m1's
	// in-process learning; only DB.Commit(diff) makes it durable.
	m2 := NewMatcher(seedEntries(), nil)
	canonical, kind, _ := m2.Match(context.Background(), "Bachelor's Degree")
	if kind != MatchPattern {
		t.Errorf("fresh matcher should still resolve via pattern, not a phantom exact match; got kind=%v canonical=%v", kind, canonical)
	}
}

type stubEmbedder struct {
	vectors map[string][]float32
}

func (s stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vectors[text], nil
}

func TestMatcherEmbeddingFallback(t *testing.T) {
	entries := seedEntries()
	entries[Experience].Centroid = []float32{1, 0, 0}

	embedder := stubEmbedder{vectors: map[string][]float32{
		"careerhistory": {1, 0, 0},
	}}
	m := NewMatcher(entries, embedder)
	m.SetEmbeddingThreshold(0.9)

	canonical, kind, score := m.Match(context.Background(), "Career History")
	if canonical != Experience || kind != MatchEmbedding {
		t.Fatalf("Match(%q) = (%q, %v, %v), want (%q, MatchEmbedding, >=0.9)", "Career History", canonical, kind, score, Experience)
	}
}

func TestMatcherSuggestRanksByTrigramSimilarity(t *testing.T) {
	m := NewMatcher(seedEntries(), nil)
	suggestions := m.Suggest(context.Background(), "Experiance", 3)
	if len(suggestions) == 0 {
		t.Fatal("Suggest() returned no suggestions")
	}
	if suggestions[0].Name != Experience {
		t.Errorf("Suggest(%q)[0].Name = %q, want %q", "Experiance", suggestions[0].Name, Experience)
	}
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i].Score > suggestions[i-1].Score {
			t.Errorf("Suggest() not sorted descending by score: %+v", suggestions)
		}
	}
}

func TestMatcherSuggestDoesNotLearn(t *testing.T) {
	m := NewMatcher(seedEntries(), nil)
	m.Suggest(context.Background(), "Totally Unrelated Gibberish", 3)
	if len(m.Diff().LearnedVariants()) != 0 {
		t.Errorf("Suggest() must not record learned variants, got %v", m.Diff().LearnedVariants())
	}
}
