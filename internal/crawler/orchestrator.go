package crawler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adriankh/reposage/internal/core"
	"github.com/adriankh/reposage/internal/models"
	"github.com/adriankh/reposage/internal/splitter"
)

// tempSuffix marks the scratch collection a crawl run builds before the
// hot-swap into the live name.
const tempSuffix = ".temp"

// Orchestrator drives one crawl cycle over all configured targets.
type Orchestrator struct {
	targets    map[string]models.RepoCrawlTarget
	store      core.VectorStore
	stats      core.StatsStore
	github     *GitHubClient
	splitter   *splitter.Splitter
	summarizer core.Summarizer
	embedder   core.Embedder
	force      bool
}

func NewOrchestrator(
	targets map[string]models.RepoCrawlTarget,
	store core.VectorStore,
	stats core.StatsStore,
	github *GitHubClient,
	split *splitter.Splitter,
	summarizer core.Summarizer,
	embedder core.Embedder,
	force bool,
) *Orchestrator {
	return &Orchestrator{
		targets:    targets,
		store:      store,
		stats:      stats,
		github:     github,
		splitter:   split,
		summarizer: summarizer,
		embedder:   embedder,
		force:      force,
	}
}

// Run crawls every target concurrently. A failing target is logged and does
// not stop the others; the returned error only reports how many failed.
func (o *Orchestrator) Run(ctx context.Context) error {
	runID := uuid.NewString()
	log.Printf("crawl run %s: %d targets", runID, len(o.targets))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var failed int

	for repoID, target := range o.targets {
		wg.Add(1)
		go func(repoID string, target models.RepoCrawlTarget) {
			defer wg.Done()
			if err := o.crawlTarget(ctx, repoID, target); err != nil {
				log.Printf("crawl run %s: target %s failed: %v", runID, repoID, err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(repoID, target)
	}
	wg.Wait()

	if failed > 0 {
		return fmt.Errorf("crawl run %s: %d of %d targets failed", runID, failed, len(o.targets))
	}
	log.Printf("crawl run %s: done", runID)
	return nil
}

func (o *Orchestrator) crawlTarget(ctx context.Context, repoID string, target models.RepoCrawlTarget) error {
	info, err := o.github.RepoInfo(ctx, target.URL)
	if err != nil {
		return fmt.Errorf("fetch repo info: %w", err)
	}

	branch := target.Branch
	if branch == "" {
		branch = info.DefaultBranch
		log.Printf("target %s: using default branch %q", repoID, branch)
	}

	freshTS, err := o.github.LastCommitTS(ctx, target.URL, branch)
	if err != nil {
		return fmt.Errorf("fetch last commit: %w", err)
	}

	needed, err := o.needsCrawl(ctx, repoID, target, freshTS)
	if err != nil {
		return err
	}
	if !needed {
		log.Printf("target %s: up to date, skipping (last commit @ %d)", repoID, freshTS)
		return nil
	}

	tmpDir, err := os.MkdirTemp("", "crawl-"+info.Name+"-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	log.Printf("target %s: loading %s:%s at %s", repoID, target.URL, branch, tmpDir)
	repo, err := LoadRepository(ctx, target.URL, branch, tmpDir)
	if err != nil {
		return err
	}

	readme, err := splitter.ExpandRootReadme(repo.Documents)
	if err != nil {
		return fmt.Errorf("expand root readme: %w", err)
	}

	repo.Summary, err = o.summarizer.SummarizeRepo(ctx, repo.Name, readme, repo.Tree)
	if err != nil {
		return fmt.Errorf("summarize repo: %w", err)
	}

	chunks, err := o.splitter.Split(ctx, repo)
	if err != nil {
		return fmt.Errorf("split repo: %w", err)
	}
	log.Printf("target %s: %d chunks from %d documents", repoID, len(chunks), len(repo.Documents))

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.PageContent
	}
	vectors, err := o.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	if err := o.index(ctx, target.TargetCollection, chunks, vectors); err != nil {
		return err
	}

	// Stats are written only after the swap succeeded, so a failed run
	// leaves the target looking stale and it gets retried next cycle.
	stats := &models.RepoCrawlStats{
		GithubID:    info.ID,
		Name:        info.Name,
		FullName:    info.FullName,
		Description: info.Description,
		Owner:       info.Owner,
		Branch:      models.BranchStats{Name: branch, LastCommitTS: freshTS},
		Tag:         target.Tag,
		AddedTS:     time.Now().UTC(),
	}
	if err := o.stats.Put(ctx, repoID, stats); err != nil {
		return fmt.Errorf("store crawl stats: %w", err)
	}

	log.Printf("target %s: indexed into %q (last commit @ %d)", repoID, target.TargetCollection, freshTS)
	return nil
}

// needsCrawl decides whether the target must be re-indexed: forced runs,
// missing collections and missing stats always crawl; otherwise only when
// the remote has commits newer than the last successful run.
func (o *Orchestrator) needsCrawl(ctx context.Context, repoID string, target models.RepoCrawlTarget, freshTS int64) (bool, error) {
	if o.force {
		log.Printf("target %s: forced crawl", repoID)
		return true, nil
	}

	has, err := o.store.HasCollection(ctx, target.TargetCollection)
	if err != nil {
		return false, err
	}
	if !has {
		log.Printf("target %s: collection %q missing, crawling", repoID, target.TargetCollection)
		return true, nil
	}

	stored, err := o.stats.Get(ctx, repoID)
	if errors.Is(err, core.ErrNoStats) {
		log.Printf("target %s: no crawl stats, crawling", repoID)
		return true, nil
	}
	if err != nil {
		return false, err
	}

	if stored.Branch.LastCommitTS < freshTS {
		log.Printf("target %s: stale last commit ts=%d, new one %d, crawling",
			repoID, stored.Branch.LastCommitTS, freshTS)
		return true, nil
	}
	return false, nil
}

// index writes all chunks into the temp collection and hot-swaps it into
// the live name. A stale temp collection left behind by a failed run is
// dropped first.
func (o *Orchestrator) index(ctx context.Context, collection string, chunks []models.DocumentChunk, vectors [][]float32) error {
	temp := collection + tempSuffix

	has, err := o.store.HasCollection(ctx, temp)
	if err != nil {
		return err
	}
	if has {
		log.Printf("found previous %q collection, deleting it", temp)
		if err := o.store.DeleteCollection(ctx, temp); err != nil {
			return err
		}
	}

	if err := o.store.GetOrCreate(ctx, temp); err != nil {
		return err
	}
	if err := o.store.Add(ctx, temp, chunks, vectors); err != nil {
		return fmt.Errorf("add chunks to %q: %w", temp, err)
	}

	log.Printf("hot-swapping %q with %q", collection, temp)
	return o.store.Replace(ctx, collection, temp)
}
