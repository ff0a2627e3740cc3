// Package embed provides the optional embedding capability §4.6 step 5 and
// §9 describe: `embed(text) -> vector`. Its absence must never change
// correctness, only recall, so every caller treats ErrNotConfigured as "no
// embedding available" rather than a failure.
package embed

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by NullProvider and by any provider that
// could not be constructed (e.g. missing API key).
var ErrNotConfigured = errors.New("embed: no embedding provider configured")

// Provider computes a fixed-dimensionality embedding vector for text. ctx
// carries the §5 embedding stage deadline so a slow or hung call can be
// bounded without the caller needing to know anything about the
// implementation behind the interface.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NullProvider is the default when EMBEDDINGS_ENABLED is false: it always
// fails, which callers treat as "recall only, no embedding match available."
type NullProvider struct{}

// Embed always returns ErrNotConfigured.
func (NullProvider) Embed(context.Context, string) ([]float32, error) { return nil, ErrNotConfigured }
