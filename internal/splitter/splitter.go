// Package splitter turns a crawled repository into the summarized document
// chunks that get embedded and indexed. Every file yields at most one
// file-summary chunk plus one chunk per split code segment; embeddings are
// computed over the summaries while the raw text rides along untouched.
package splitter

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/adriankh/reposage/internal/core"
	"github.com/adriankh/reposage/internal/models"
)

// neighborRadius is how many snippets on either side feed the contextual
// window used when summarizing one snippet.
const neighborRadius = 2

// Splitter coordinates splitting and summarization for a whole repository.
type Splitter struct {
	summarizer core.Summarizer
	cache      *splitterCache
}

func New(summarizer core.Summarizer, chunkSize int) *Splitter {
	return &Splitter{
		summarizer: summarizer,
		cache:      newSplitterCache(chunkSize),
	}
}

// Split processes every document of the repository concurrently and returns
// all resulting chunks. The repository summary must already be populated.
// A failed file summary only drops that file's summary chunk; a failed
// snippet summary fails the whole run.
func (s *Splitter) Split(ctx context.Context, repo *models.Repository) ([]models.DocumentChunk, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var chunks []models.DocumentChunk

	for i := range repo.Documents {
		doc := &repo.Documents[i]
		g.Go(func() error {
			fileChunks, err := s.splitDocument(ctx, repo, doc)
			if err != nil {
				return err
			}
			mu.Lock()
			chunks = append(chunks, fileChunks...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunks, nil
}

type summaryResult struct {
	text string
	err  error
}

func (s *Splitter) splitDocument(ctx context.Context, repo *models.Repository, doc *models.Document) ([]models.DocumentChunk, error) {
	language := LanguageFor(doc.FilePath)

	// Kick off the file summary while the snippets are being cut.
	summaryCh := make(chan summaryResult, 1)
	go func() {
		text, err := s.summarizer.SummarizeFile(ctx, core.FileSummaryRequest{
			RepoName:    repo.Name,
			RepoSummary: repo.Summary,
			Tree:        repo.Tree,
			FilePath:    doc.FilePath,
			Language:    language,
			Content:     doc.Content,
		})
		summaryCh <- summaryResult{text: text, err: err}
	}()

	snippets := s.cache.forLanguage(language).Split(doc.Content)

	fileSummary := <-summaryCh
	if fileSummary.err != nil {
		log.Printf("failed to summarize document %s: %v", doc.FilePath, fileSummary.err)
		fileSummary.text = ""
	}

	chunks := make([]models.DocumentChunk, 0, len(snippets)+1)
	if fileSummary.text != "" {
		chunks = append(chunks, models.DocumentChunk{
			PageContent:     fileSummary.text,
			OriginalContent: doc.Content,
			Metadata: models.ChunkMetadata{
				FilePath:     doc.FilePath,
				Language:     language,
				DocumentType: models.DocTypeFileSummary,
				VecdbIdx:     fmt.Sprintf("%s:summary", doc.FilePath),
			},
		})
	}

	for idx, snippet := range snippets {
		summary, err := s.summarizer.SummarizeSnippet(ctx, core.SnippetSummaryRequest{
			RepoName:    repo.Name,
			RepoSummary: repo.Summary,
			Tree:        repo.Tree,
			FilePath:    doc.FilePath,
			Language:    language,
			FileSummary: fileSummary.text,
			Context:     neighborWindow(idx, snippets),
			Content:     snippet,
		})
		if err != nil {
			return nil, fmt.Errorf("summarize snippet %s:%d: %w", doc.FilePath, idx, err)
		}

		chunks = append(chunks, models.DocumentChunk{
			PageContent:     summary,
			OriginalContent: snippet,
			Metadata: models.ChunkMetadata{
				FilePath:     doc.FilePath,
				Language:     language,
				DocumentType: models.DocTypeCodeSnippet,
				VecdbIdx:     fmt.Sprintf("%s:%d", doc.FilePath, idx),
			},
		})
	}

	return chunks, nil
}

// neighborWindow joins the snippets within neighborRadius of index,
// inclusive on both sides and clamped at the array bounds. It gives the
// summarizer enough surrounding code to place the snippet.
func neighborWindow(index int, snippets []string) string {
	lo := index - neighborRadius
	if lo < 0 {
		lo = 0
	}
	hi := index + neighborRadius
	if hi > len(snippets)-1 {
		hi = len(snippets) - 1
	}
	return strings.Join(snippets[lo:hi+1], "\n")
}
