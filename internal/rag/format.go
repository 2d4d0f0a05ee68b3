package rag

import (
	"strings"

	"github.com/adriankh/reposage/internal/models"
)

const promptSeparator = "----------"

// FormatContext renders the reordered documents into the context block of
// the chat prompt. File summaries come first as (path, summary) entries,
// then code snippets with their raw code fenced, both joined by a visible
// separator. The relative order within each group follows the input.
func FormatContext(documents []models.RAGDocument) string {
	var files, snippets []models.RAGDocument
	for _, doc := range documents {
		if doc.Metadata.DocumentType == models.DocTypeFileSummary {
			files = append(files, doc)
		} else {
			snippets = append(snippets, doc)
		}
	}

	var b strings.Builder
	for _, file := range files {
		b.WriteString("\nFile: ")
		b.WriteString(file.Metadata.FilePath)
		b.WriteString("\nSummary: ")
		b.WriteString(file.PageContent)
		b.WriteString("\n\n")
		b.WriteString(promptSeparator)
	}

	for _, snippet := range snippets {
		b.WriteString("\nFile: ")
		b.WriteString(snippet.Metadata.FilePath)
		b.WriteString("\nCode: ```")
		b.WriteString(snippet.Metadata.Language)
		b.WriteString("\n")
		b.WriteString(snippet.OriginalContent)
		b.WriteString("\n```")
		b.WriteString("\nSummary: ")
		b.WriteString(snippet.PageContent)
		b.WriteString("\n\n")
		b.WriteString(promptSeparator)
	}

	return b.String()
}
