package rag

import (
	"strings"
	"testing"

	"github.com/adriankh/reposage/internal/models"
)

func TestFormatContext(t *testing.T) {
	documents := []models.RAGDocument{
		{
			PageContent:     "splits config loading from validation",
			OriginalContent: "def load_config():\n    pass",
			Metadata: models.ChunkMetadata{
				FilePath:     "libs/config.py",
				Language:     "python",
				DocumentType: models.DocTypeCodeSnippet,
			},
		},
		{
			PageContent:     "holds the configuration helpers",
			OriginalContent: "full file",
			Metadata: models.ChunkMetadata{
				FilePath:     "libs/config.py",
				Language:     "python",
				DocumentType: models.DocTypeFileSummary,
			},
		},
	}

	out := FormatContext(documents)

	if !strings.Contains(out, "File: libs/config.py") {
		t.Error("file path missing from context")
	}
	if !strings.Contains(out, "Summary: holds the configuration helpers") {
		t.Error("file summary missing from context")
	}
	if !strings.Contains(out, "```python\ndef load_config():") {
		t.Error("raw snippet code should be fenced with its language")
	}
	if !strings.Contains(out, promptSeparator) {
		t.Error("separator missing from context")
	}

	// File summaries render before snippets regardless of input order.
	fileIdx := strings.Index(out, "Summary: holds the configuration helpers")
	snippetIdx := strings.Index(out, "```python")
	if fileIdx > snippetIdx {
		t.Error("file-summary block should precede snippet blocks")
	}
}

func TestFormatContextEmpty(t *testing.T) {
	if out := FormatContext(nil); out != "" {
		t.Errorf("empty input should format to empty string, got %q", out)
	}
}

func TestFormatContextFileSummaryHasNoCodeFence(t *testing.T) {
	documents := []models.RAGDocument{
		{
			PageContent:     "summary only",
			OriginalContent: "raw file body",
			Metadata: models.ChunkMetadata{
				FilePath:     "a.go",
				Language:     "go",
				DocumentType: models.DocTypeFileSummary,
			},
		},
	}
	out := FormatContext(documents)
	if strings.Contains(out, "```") {
		t.Error("file-summary entries should not include fenced code")
	}
	if strings.Contains(out, "raw file body") {
		t.Error("file-summary entries should not include the raw file content")
	}
}
