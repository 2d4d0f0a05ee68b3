package models

import (
	"time"
)

// RepoCrawlTarget is one configured repository to crawl and answer questions
// about. Loaded from static configuration, immutable at runtime.
type RepoCrawlTarget struct {
	RepoID           string `json:"repo_id"`
	URL              string `json:"url"`
	Branch           string `json:"branch"`
	Name             string `json:"name"`
	TargetCollection string `json:"target_collection"`
	Tag              string `json:"tag"`
}

// Document is one raw file pulled out of a cloned repository.
type Document struct {
	FilePath string // path relative to the repository root
	FileName string
	Content  string
}

// Repository is the transient crawl-time view of a cloned repo. It is built
// fresh per crawl run and discarded after indexing; only its derived chunks
// are persisted.
type Repository struct {
	Name      string
	Branch    string
	URL       string
	Tree      string // textual directory listing
	Summary   string // repo-level summary, populated mid-pipeline
	Documents []Document
}

// Document types stored in chunk metadata.
const (
	DocTypeFileSummary = "file-summary"
	DocTypeCodeSnippet = "code-snippet"
)

// ChunkMetadata travels with every chunk into and out of the vector store.
type ChunkMetadata struct {
	FilePath     string `json:"file_path"`
	Language     string `json:"language"`
	DocumentType string `json:"document_type"`
	VecdbIdx     string `json:"vecdb_idx"`
}

// DocumentChunk is the atomic retrievable unit. PageContent holds the text
// that actually gets embedded (a summary, not raw code); OriginalContent
// keeps the raw file or snippet text for the final answer context.
type DocumentChunk struct {
	PageContent     string
	OriginalContent string
	Metadata        ChunkMetadata
}

// RepoOwner mirrors the owner block of the source-control metadata provider.
type RepoOwner struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// BranchStats records which branch was crawled and up to which commit.
type BranchStats struct {
	Name         string `json:"name"`
	LastCommitTS int64  `json:"last_commit_ts"`
}

// RepoCrawlStats is persisted per repo id, written only after a fully
// successful crawl+index cycle. It exists to answer "is a re-crawl needed".
type RepoCrawlStats struct {
	GithubID    int64       `json:"github_id"`
	Name        string      `json:"name"`
	FullName    string      `json:"full_name"`
	Description string      `json:"description"`
	Owner       RepoOwner   `json:"owner"`
	Branch      BranchStats `json:"branch"`
	Tag         string      `json:"tag"`
	AddedTS     time.Time   `json:"added_ts"`
}

// RemoteRepoInfo is the fresh metadata fetched from the source-control
// provider at the start of a crawl run.
type RemoteRepoInfo struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description"`
	DefaultBranch string    `json:"default_branch"`
	Owner         RepoOwner `json:"owner"`
}

// SimilarityResult is the flattened response of one vector store query.
// All slices are parallel and ordered by ascending distance.
type SimilarityResult struct {
	Documents []string
	Originals []string
	Metadatas []ChunkMetadata
	Distances []float64
}

// RAGDocument is the runtime view over a retrieved chunk used when
// formatting the final context.
type RAGDocument struct {
	PageContent     string
	OriginalContent string
	Metadata        ChunkMetadata
}

// DocumentRank is one entry of a reranker response, higher score first.
type DocumentRank struct {
	CorpusID int     `json:"corpus_id"`
	Score    float64 `json:"score"`
}

// ChatMessage is a single (role, content) turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TaskSettings are the extra sampling settings sent along with an LLM task.
type TaskSettings struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
	Stream      bool
}

// LLMTask is a fully rendered completion request: the task builders fill the
// prompt templates with explicit field substitution at construction time.
type LLMTask struct {
	Name     string // short task name, used in logs
	Model    string
	System   string
	User     string
	Settings TaskSettings
}

// Messages returns the task prompts in chat-completions wire order.
func (t LLMTask) Messages() []ChatMessage {
	return []ChatMessage{
		{Role: "system", Content: t.System},
		{Role: "user", Content: t.User},
	}
}
