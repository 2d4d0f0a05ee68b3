package proxies

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestEmbedBatchesInputs(t *testing.T) {
	var mu sync.Mutex
	var batches [][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Inputs []string `json:"inputs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		mu.Lock()
		batches = append(batches, payload.Inputs)
		mu.Unlock()

		vectors := make([][]float32, len(payload.Inputs))
		for i := range vectors {
			vectors[i] = []float32{float32(i), 1}
		}
		json.NewEncoder(w).Encode(vectors)
	}))
	defer srv.Close()

	client := NewEmbeddingClient(NewRunner(100, 2), NewProvider("embeddings", srv.URL, ""), 5)

	texts := []string{"a", "b", "c", "d", "e", "f"}
	vectors, err := client.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}

	if len(vectors) != len(texts) {
		t.Errorf("got %d vectors for %d inputs", len(vectors), len(texts))
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if len(batches[0]) != 5 || len(batches[1]) != 1 {
		t.Errorf("batch sizes = %d,%d, want 5,1", len(batches[0]), len(batches[1]))
	}
	if batches[1][0] != "f" {
		t.Errorf("batch order broken, last batch = %v", batches[1])
	}
}

func TestEmbedVectorCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// One vector for two inputs.
		w.Write([]byte(`[[0.1,0.2]]`))
	}))
	defer srv.Close()

	client := NewEmbeddingClient(NewRunner(100, 1), NewProvider("embeddings", srv.URL, ""), 5)
	_, err := client.Embed(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Fatal("expected error on vector count mismatch")
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	client := NewEmbeddingClient(NewRunner(100, 1), NewProvider("embeddings", "http://unused", ""), 5)
	vectors, err := client.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("embed of empty input failed: %v", err)
	}
	if vectors != nil {
		t.Errorf("expected nil vectors, got %v", vectors)
	}
}
