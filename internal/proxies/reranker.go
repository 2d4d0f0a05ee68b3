package proxies

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/adriankh/reposage/internal/core"
	"github.com/adriankh/reposage/internal/models"
)

// RerankerClient calls a remote cross-encoder endpoint with
// {"query": ..., "documents": [...]} and gets back ranks sorted by
// descending score.
type RerankerClient struct {
	runner   *Runner
	provider Provider
}

func NewRerankerClient(runner *Runner, provider Provider) *RerankerClient {
	return &RerankerClient{runner: runner, provider: provider}
}

// Rerank scores the candidates against the query. The endpoint may enforce
// its own top-k cutoff; a shorter-than-input result is legal but logged so
// callers can see how many candidates were dropped.
func (c *RerankerClient) Rerank(ctx context.Context, query string, documents []string) ([]models.DocumentRank, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	body, err := c.runner.Do(ctx, Request{
		Service: "reranker",
		URL:     c.provider.URL,
		Headers: c.provider.Headers,
		Body: map[string]any{
			"query":     query,
			"documents": documents,
		},
	})
	if err != nil {
		return nil, err
	}

	var ranks []models.DocumentRank
	if err := json.Unmarshal(body, &ranks); err != nil {
		return nil, &core.RemoteServiceError{Service: "reranker", Err: fmt.Errorf("parse response: %w", err)}
	}

	for _, rank := range ranks {
		if rank.CorpusID < 0 || rank.CorpusID >= len(documents) {
			return nil, &core.RemoteServiceError{
				Service: "reranker",
				Err:     fmt.Errorf("corpus_id %d out of range for %d documents", rank.CorpusID, len(documents)),
			}
		}
	}

	if len(ranks) < len(documents) {
		log.Printf("reranker dropped %d of %d documents after its top_k cutoff",
			len(documents)-len(ranks), len(documents))
	}
	return ranks, nil
}

// WarmUp primes the connection to the reranker host.
func (c *RerankerClient) WarmUp(ctx context.Context) {
	c.runner.WarmUp(ctx, c.provider.URL, c.provider.Headers)
}

var _ core.Reranker = (*RerankerClient)(nil)
