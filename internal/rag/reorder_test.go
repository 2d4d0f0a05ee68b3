package rag

import (
	"testing"

	"github.com/adriankh/reposage/internal/models"
)

func docs(ids ...string) []models.RAGDocument {
	out := make([]models.RAGDocument, len(ids))
	for i, id := range ids {
		out[i] = models.RAGDocument{PageContent: id}
	}
	return out
}

func ids(documents []models.RAGDocument) []string {
	out := make([]string, len(documents))
	for i, d := range documents {
		out[i] = d.PageContent
	}
	return out
}

func TestLongContextReorderFourDocs(t *testing.T) {
	got := ids(LongContextReorder(docs("d0", "d1", "d2", "d3")))
	want := []string{"d1", "d3", "d2", "d0"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("reorder = %v, want %v", got, want)
		}
	}
}

func TestLongContextReorderBestAtEdges(t *testing.T) {
	in := docs("d0", "d1", "d2", "d3", "d4", "d5", "d6")
	out := ids(LongContextReorder(in))

	if len(out) != len(in) {
		t.Fatalf("reorder changed length: %d -> %d", len(in), len(out))
	}
	// The top-ranked document must end up at one of the two edges.
	if out[0] != "d0" && out[len(out)-1] != "d0" {
		t.Errorf("best document not at an edge: %v", out)
	}
	// The worst-ranked document must end up in the interior.
	worst := "d6"
	if out[0] == worst || out[len(out)-1] == worst {
		t.Errorf("worst document at an edge: %v", out)
	}
}

func TestLongContextReorderSmallInputs(t *testing.T) {
	if got := LongContextReorder(nil); len(got) != 0 {
		t.Errorf("empty input should stay empty, got %v", got)
	}
	if got := ids(LongContextReorder(docs("d0"))); got[0] != "d0" {
		t.Errorf("single doc changed: %v", got)
	}
	got := ids(LongContextReorder(docs("d0", "d1")))
	if len(got) != 2 {
		t.Fatalf("two docs changed length: %v", got)
	}
}
