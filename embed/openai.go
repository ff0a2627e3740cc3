package embed

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const openAIDefaultEmbeddingModel = openai.EmbeddingModelTextEmbedding3Small

// OpenAIProvider computes embeddings via the OpenAI embeddings endpoint. It
// is the sole EMBEDDINGS_ENABLED=true implementation sectio ships; the
// section matcher's embedding step (§4.6 step 5) treats any error from
// Embed the same as an absent provider, per §9's "no code path may assume
// embeddings are present."
type OpenAIProvider struct {
	model  string
	client openai.Client
}

// NewOpenAIProvider builds a provider for apiKey (an empty string falls
// back to the SDK's own OPENAI_API_KEY environment lookup) and model (an
// empty string defaults to text-embedding-3-small).
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = openAIDefaultEmbeddingModel
	}
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &OpenAIProvider{model: model, client: openai.NewClient(opts...)}
}

// Embed calls the embeddings endpoint for a single input string.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: p.model,
	})
	if err != nil {
		return nil, fmt.Errorf("embed: openai embeddings request: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embed: openai returned no embeddings")
	}
	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
