package crawler

import (
	"context"
	"fmt"
	"testing"

	"github.com/adriankh/reposage/internal/core"
	"github.com/adriankh/reposage/internal/models"
)

// memStore is an in-memory VectorStore that records the operations a crawl
// performs.
type memStore struct {
	collections map[string][]models.DocumentChunk
	ops         []string
}

func newMemStore() *memStore {
	return &memStore{collections: make(map[string][]models.DocumentChunk)}
}

func (m *memStore) GetOrCreate(ctx context.Context, collection string) error {
	m.ops = append(m.ops, "create:"+collection)
	if _, ok := m.collections[collection]; !ok {
		m.collections[collection] = nil
	}
	return nil
}

func (m *memStore) Add(ctx context.Context, collection string, chunks []models.DocumentChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector mismatch")
	}
	m.ops = append(m.ops, "add:"+collection)
	m.collections[collection] = append(m.collections[collection], chunks...)
	return nil
}

func (m *memStore) Query(ctx context.Context, collection string, embedding []float32, topK int) (*models.SimilarityResult, error) {
	return &models.SimilarityResult{}, nil
}

func (m *memStore) ListCollections(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(m.collections))
	for name := range m.collections {
		out = append(out, name)
	}
	return out, nil
}

func (m *memStore) HasCollection(ctx context.Context, collection string) (bool, error) {
	_, ok := m.collections[collection]
	return ok, nil
}

func (m *memStore) DeleteCollection(ctx context.Context, collection string) error {
	m.ops = append(m.ops, "delete:"+collection)
	delete(m.collections, collection)
	return nil
}

func (m *memStore) Replace(ctx context.Context, live, temp string) error {
	m.ops = append(m.ops, "replace:"+live)
	chunks, ok := m.collections[temp]
	if !ok {
		return fmt.Errorf("temp collection %q missing", temp)
	}
	delete(m.collections, live)
	delete(m.collections, temp)
	m.collections[live] = chunks
	return nil
}

type memStats struct {
	stats map[string]*models.RepoCrawlStats
	puts  int
}

func newMemStats() *memStats {
	return &memStats{stats: make(map[string]*models.RepoCrawlStats)}
}

func (m *memStats) Get(ctx context.Context, repoID string) (*models.RepoCrawlStats, error) {
	s, ok := m.stats[repoID]
	if !ok {
		return nil, core.ErrNoStats
	}
	return s, nil
}

func (m *memStats) Put(ctx context.Context, repoID string, stats *models.RepoCrawlStats) error {
	m.puts++
	m.stats[repoID] = stats
	return nil
}

func testTarget() models.RepoCrawlTarget {
	return models.RepoCrawlTarget{
		RepoID:           "demo",
		URL:              "https://github.com/acme/demo",
		Branch:           "main",
		Name:             "Demo",
		TargetCollection: "demo",
	}
}

func TestNeedsCrawl(t *testing.T) {
	ctx := context.Background()

	t.Run("forced", func(t *testing.T) {
		o := &Orchestrator{store: newMemStore(), stats: newMemStats(), force: true}
		needed, err := o.needsCrawl(ctx, "demo", testTarget(), 100)
		if err != nil || !needed {
			t.Errorf("needed=%v err=%v, want true,nil", needed, err)
		}
	})

	t.Run("missing collection", func(t *testing.T) {
		o := &Orchestrator{store: newMemStore(), stats: newMemStats()}
		needed, err := o.needsCrawl(ctx, "demo", testTarget(), 100)
		if err != nil || !needed {
			t.Errorf("needed=%v err=%v, want true,nil", needed, err)
		}
	})

	t.Run("collection without stats", func(t *testing.T) {
		store := newMemStore()
		store.collections["demo"] = nil
		o := &Orchestrator{store: store, stats: newMemStats()}
		needed, err := o.needsCrawl(ctx, "demo", testTarget(), 100)
		if err != nil || !needed {
			t.Errorf("needed=%v err=%v, want true,nil", needed, err)
		}
	})

	t.Run("stale commit", func(t *testing.T) {
		store := newMemStore()
		store.collections["demo"] = nil
		stats := newMemStats()
		stats.stats["demo"] = &models.RepoCrawlStats{
			Branch: models.BranchStats{Name: "main", LastCommitTS: 50},
		}
		o := &Orchestrator{store: store, stats: stats}
		needed, err := o.needsCrawl(ctx, "demo", testTarget(), 100)
		if err != nil || !needed {
			t.Errorf("needed=%v err=%v, want true,nil", needed, err)
		}
	})

	t.Run("up to date", func(t *testing.T) {
		store := newMemStore()
		store.collections["demo"] = nil
		stats := newMemStats()
		stats.stats["demo"] = &models.RepoCrawlStats{
			Branch: models.BranchStats{Name: "main", LastCommitTS: 100},
		}
		o := &Orchestrator{store: store, stats: stats}
		needed, err := o.needsCrawl(ctx, "demo", testTarget(), 100)
		if err != nil || needed {
			t.Errorf("needed=%v err=%v, want false,nil", needed, err)
		}
	})
}

func TestIndexHotSwap(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.collections["demo"] = []models.DocumentChunk{{PageContent: "stale"}}

	chunks := []models.DocumentChunk{
		{PageContent: "fresh", Metadata: models.ChunkMetadata{VecdbIdx: "a.go:0"}},
	}
	vectors := [][]float32{{1, 2}}

	o := &Orchestrator{store: store}
	if err := o.index(ctx, "demo", chunks, vectors); err != nil {
		t.Fatalf("index failed: %v", err)
	}

	if _, ok := store.collections["demo.temp"]; ok {
		t.Error("temp collection should be gone after the swap")
	}
	live := store.collections["demo"]
	if len(live) != 1 || live[0].PageContent != "fresh" {
		t.Errorf("live collection not replaced: %+v", live)
	}
}

func TestIndexDropsStaleTemp(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.collections["demo.temp"] = []models.DocumentChunk{{PageContent: "leftover"}}

	o := &Orchestrator{store: store}
	if err := o.index(ctx, "demo", nil, nil); err != nil {
		t.Fatalf("index failed: %v", err)
	}

	found := false
	for _, op := range store.ops {
		if op == "delete:demo.temp" {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("stale temp collection was not deleted first, ops: %v", store.ops)
	}
	live := store.collections["demo"]
	if len(live) != 0 {
		t.Errorf("live collection should be empty, got %+v", live)
	}
}

func TestIndexFailedAddLeavesStatsUntouched(t *testing.T) {
	// A chunk/vector mismatch fails the add, so the swap never happens and
	// no stats are written by the caller.
	ctx := context.Background()
	store := newMemStore()
	o := &Orchestrator{store: store}

	err := o.index(ctx, "demo", []models.DocumentChunk{{PageContent: "x"}}, nil)
	if err == nil {
		t.Fatal("expected add failure to propagate")
	}
	if _, ok := store.collections["demo"]; ok {
		t.Error("live collection should not exist after a failed build")
	}
}

var _ core.VectorStore = (*memStore)(nil)
var _ core.StatsStore = (*memStats)(nil)
