package rag

import "github.com/adriankh/reposage/internal/models"

// LongContextReorder rearranges documents ranked best-first so that the
// strongest ones sit at the edges of the final context and the weakest in
// the middle, mitigating the "lost in the middle" effect of long prompts.
//
// The ranked list is walked from worst to best, alternately appending and
// prepending, so e.g. [d0 d1 d2 d3] becomes [d1 d3 d2 d0].
func LongContextReorder(ranked []models.RAGDocument) []models.RAGDocument {
	reordered := make([]models.RAGDocument, 0, len(ranked))
	for i := len(ranked) - 1; i >= 0; i-- {
		doc := ranked[i]
		if (len(ranked)-1-i)%2 == 1 {
			reordered = append(reordered, doc)
		} else {
			reordered = append([]models.RAGDocument{doc}, reordered...)
		}
	}
	return reordered
}
