package proxies

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adriankh/reposage/internal/core"
)

// EmbeddingClient calls a remote embedding endpoint that accepts
// {"inputs": [...]} and returns one vector per input, same order. Inputs are
// batched to respect the endpoint's payload limits.
type EmbeddingClient struct {
	runner    *Runner
	provider  Provider
	batchSize int
}

func NewEmbeddingClient(runner *Runner, provider Provider, batchSize int) *EmbeddingClient {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &EmbeddingClient{runner: runner, provider: provider, batchSize: batchSize}
}

// Embed returns one vector per input text, in input order. All-or-nothing:
// any sub-batch failure fails the whole call.
func (c *EmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		body, err := c.runner.Do(ctx, Request{
			Service: "embeddings",
			URL:     c.provider.URL,
			Headers: c.provider.Headers,
			Body:    map[string]any{"inputs": batch},
		})
		if err != nil {
			return nil, err
		}

		var vectors [][]float32
		if err := json.Unmarshal(body, &vectors); err != nil {
			return nil, &core.RemoteServiceError{Service: "embeddings", Err: fmt.Errorf("parse response: %w", err)}
		}
		if len(vectors) != len(batch) {
			return nil, &core.RemoteServiceError{
				Service: "embeddings",
				Err:     fmt.Errorf("got %d vectors for %d inputs", len(vectors), len(batch)),
			}
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// WarmUp primes the connection to the embedding host.
func (c *EmbeddingClient) WarmUp(ctx context.Context) {
	c.runner.WarmUp(ctx, c.provider.URL, c.provider.Headers)
}

var _ core.Embedder = (*EmbeddingClient)(nil)
