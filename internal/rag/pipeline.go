// Package rag builds the retrieval context that grounds the chat answers:
// embed the query, pull the nearest chunks, rerank them with a
// cross-encoder, reorder for long-context prompting and format.
package rag

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/adriankh/reposage/internal/core"
	"github.com/adriankh/reposage/internal/models"
)

// Pipeline wires the retrieval stages together for all configured targets.
type Pipeline struct {
	targets    map[string]models.RepoCrawlTarget
	store      core.VectorStore
	embedder   core.Embedder
	reranker   core.Reranker
	summarizer core.Summarizer
	topK       int
}

func NewPipeline(
	targets map[string]models.RepoCrawlTarget,
	store core.VectorStore,
	embedder core.Embedder,
	reranker core.Reranker,
	summarizer core.Summarizer,
	topK int,
) *Pipeline {
	return &Pipeline{
		targets:    targets,
		store:      store,
		embedder:   embedder,
		reranker:   reranker,
		summarizer: summarizer,
		topK:       topK,
	}
}

// Target resolves a repo id to its configured crawl target.
func (p *Pipeline) Target(repoID string) (models.RepoCrawlTarget, error) {
	target, ok := p.targets[repoID]
	if !ok {
		return models.RepoCrawlTarget{}, core.ErrInvalidRepository
	}
	return target, nil
}

// BuildContext runs the full retrieval pipeline for a query against the
// given repo and returns the formatted context ready for the chat prompt.
// With a non-empty history the query is first rephrased into a
// self-contained question; retrieval uses the rephrased form while the
// caller keeps answering the raw one.
func (p *Pipeline) BuildContext(ctx context.Context, repoID, query string, history []models.ChatMessage) (string, error) {
	target, err := p.Target(repoID)
	if err != nil {
		return "", err
	}

	// Warm up the remote endpoints while the rephrase round-trips; the
	// warmups are best-effort and never fail the group.
	searchQuery := query
	g, gctx := errgroup.WithContext(ctx)
	if len(history) > 0 {
		g.Go(func() error {
			rephrased, err := p.summarizer.Rephrase(gctx, query, history)
			if err != nil {
				return fmt.Errorf("rephrase query: %w", err)
			}
			searchQuery = rephrased
			return nil
		})
	}
	g.Go(func() error {
		p.embedder.WarmUp(gctx)
		return nil
	})
	g.Go(func() error {
		p.reranker.WarmUp(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	documents, err := p.retrieve(ctx, target.TargetCollection, searchQuery)
	if err != nil {
		return "", err
	}

	return FormatContext(LongContextReorder(documents)), nil
}

// retrieve embeds the search query, runs the similarity search and reranks
// the hits, returning the documents best-first.
func (p *Pipeline) retrieve(ctx context.Context, collection, searchQuery string) ([]models.RAGDocument, error) {
	vectors, err := p.embedder.Embed(ctx, []string{searchQuery})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: expected 1 vector, got %d", len(vectors))
	}

	result, err := p.store.Query(ctx, collection, vectors[0], p.topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if len(result.Documents) == 0 {
		log.Printf("similarity search returned no documents for collection %q", collection)
		return nil, nil
	}

	ranks, err := p.reranker.Rerank(ctx, searchQuery, result.Documents)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	documents := make([]models.RAGDocument, 0, len(ranks))
	for _, rank := range ranks {
		if rank.CorpusID < 0 || rank.CorpusID >= len(result.Documents) {
			log.Printf("reranker returned out-of-range corpus_id %d, skipping", rank.CorpusID)
			continue
		}
		documents = append(documents, models.RAGDocument{
			PageContent:     result.Documents[rank.CorpusID],
			OriginalContent: result.Originals[rank.CorpusID],
			Metadata:        result.Metadatas[rank.CorpusID],
		})
	}
	return documents, nil
}
