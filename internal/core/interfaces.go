package core

import (
	"context"
	"io"

	"github.com/adriankh/reposage/internal/models"
)

// Embedder turns text into vectors by calling a remote embedding endpoint.
// Output length and order exactly match the input; a failed sub-batch fails
// the whole call.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	WarmUp(ctx context.Context)
}

// Reranker scores (query, candidate) pairs via a remote cross-encoder,
// returning ranks ordered by descending relevance. Scores are comparable
// only within one call.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]models.DocumentRank, error)
	WarmUp(ctx context.Context)
}

// Completer executes a rendered LLM task against a completion endpoint.
type Completer interface {
	Complete(ctx context.Context, task models.LLMTask) (string, error)
	// StreamComplete returns the completion as a plain-text stream of
	// answer fragments; the caller owns closing it.
	StreamComplete(ctx context.Context, task models.LLMTask) (io.ReadCloser, error)
}

// Summarizer produces natural-language summaries of a repository, a file or
// a code snippet, plus the history-aware query rephrasing used at request
// time.
type Summarizer interface {
	SummarizeRepo(ctx context.Context, repoName, readme, tree string) (string, error)
	SummarizeFile(ctx context.Context, req FileSummaryRequest) (string, error)
	SummarizeSnippet(ctx context.Context, req SnippetSummaryRequest) (string, error)
	Rephrase(ctx context.Context, query string, history []models.ChatMessage) (string, error)
}

// FileSummaryRequest carries the context needed to summarize one file.
type FileSummaryRequest struct {
	RepoName    string
	RepoSummary string
	Tree        string
	FilePath    string
	Language    string
	Content     string
}

// SnippetSummaryRequest carries the context needed to summarize one snippet.
type SnippetSummaryRequest struct {
	RepoName    string
	RepoSummary string
	Tree        string
	FilePath    string
	Language    string
	FileSummary string
	Context     string // neighbor window around the snippet
	Content     string
}

// VectorStore abstracts the nearest-neighbor index. A collection is a named
// partition corresponding to one indexed repository.
type VectorStore interface {
	GetOrCreate(ctx context.Context, collection string) error
	Add(ctx context.Context, collection string, chunks []models.DocumentChunk, vectors [][]float32) error
	Query(ctx context.Context, collection string, embedding []float32, topK int) (*models.SimilarityResult, error)
	ListCollections(ctx context.Context) ([]string, error)
	HasCollection(ctx context.Context, collection string) (bool, error)
	DeleteCollection(ctx context.Context, collection string) error
	// Replace hot-swaps the live collection with the temp one: delete live
	// if present, then rename temp to live. Best-effort two-step, no
	// multi-writer isolation.
	Replace(ctx context.Context, live, temp string) error
}

// StatsStore persists last-known commit metadata per repository.
// Get returns ErrNoStats when the repo was never crawled.
type StatsStore interface {
	Get(ctx context.Context, repoID string) (*models.RepoCrawlStats, error)
	Put(ctx context.Context, repoID string, stats *models.RepoCrawlStats) error
}
