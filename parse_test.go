package sectio

import (
	"context"
	"testing"

	"github.com/tsawler/sectio/embed"
)

func TestResolvedEmbedderDefaultsToNullProvider(t *testing.T) {
	o := Parse("unused.pdf")
	if _, ok := o.resolvedEmbedder().(embed.NullProvider); !ok {
		t.Errorf("resolvedEmbedder() = %T, want embed.NullProvider when EMBEDDINGS_ENABLED is unset", o.resolvedEmbedder())
	}
}

func TestResolvedEmbedderHonorsExplicitOverride(t *testing.T) {
	stub := stubProvider{}
	o := Parse("unused.pdf").WithEmbedder(stub)
	if o.resolvedEmbedder() != embed.Provider(stub) {
		t.Errorf("resolvedEmbedder() did not return the WithEmbedder override")
	}
}

func TestResolvedEmbedderBuildsOpenAIWhenEnabled(t *testing.T) {
	o := Parse("unused.pdf")
	o.cfg.EmbeddingsEnabled = true
	if _, ok := o.resolvedEmbedder().(*embed.OpenAIProvider); !ok {
		t.Errorf("resolvedEmbedder() = %T, want *embed.OpenAIProvider when EmbeddingsEnabled is true", o.resolvedEmbedder())
	}
}

type stubProvider struct{}

func (stubProvider) Embed(context.Context, string) ([]float32, error) { return []float32{1}, nil }
