package splitter

import (
	"errors"
	"strings"
	"testing"

	"github.com/adriankh/reposage/internal/core"
	"github.com/adriankh/reposage/internal/models"
)

func TestExpandRootReadmeMissing(t *testing.T) {
	docs := []models.Document{
		{FilePath: "main.go", FileName: "main.go", Content: "package main"},
		{FilePath: "docs/guide.md", FileName: "guide.md", Content: "# Guide"},
	}
	_, err := ExpandRootReadme(docs)
	if !errors.Is(err, core.ErrMissingRootReadme) {
		t.Errorf("expected ErrMissingRootReadme, got %v", err)
	}
}

func TestExpandRootReadmeMultiple(t *testing.T) {
	docs := []models.Document{
		{FilePath: "README.md", FileName: "README.md", Content: "# A"},
		{FilePath: "readme.md", FileName: "readme.md", Content: "# B"},
	}
	_, err := ExpandRootReadme(docs)
	if !errors.Is(err, core.ErrMultipleRootReadmes) {
		t.Errorf("expected ErrMultipleRootReadmes, got %v", err)
	}
}

func TestExpandRootReadmeMergesReferencedFiles(t *testing.T) {
	docs := []models.Document{
		{FilePath: "README.md", FileName: "README.md",
			Content: "# Demo\nSee docs/setup.md for setup.\n"},
		{FilePath: "docs/setup.md", FileName: "setup.md", Content: "run make install"},
		{FilePath: "docs/unlinked.md", FileName: "unlinked.md", Content: "never mentioned"},
	}

	merged, err := ExpandRootReadme(docs)
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}

	if !strings.HasPrefix(merged, "# Demo") {
		t.Error("merged readme should start with the root readme content")
	}
	if !strings.Contains(merged, "run make install") {
		t.Error("referenced markdown file should be inlined")
	}
	if !strings.Contains(merged, "Document path: docs/setup.md") {
		t.Error("inlined file should carry its path header")
	}
	if strings.Contains(merged, "never mentioned") {
		t.Error("unreferenced markdown files must not be inlined")
	}
}

func TestExpandRootReadmeNestedReadmeIsNotRoot(t *testing.T) {
	docs := []models.Document{
		{FilePath: "README.md", FileName: "README.md", Content: "# Root"},
		{FilePath: "sub/README.md", FileName: "README.md", Content: "# Sub"},
	}
	merged, err := ExpandRootReadme(docs)
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if !strings.HasPrefix(merged, "# Root") {
		t.Errorf("expected root readme content, got %q", merged)
	}
}
