package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/adriankh/reposage/internal/models"
)

// LoadRepository shallow-clones url at branch into tempPath and reads every
// text file into memory. Binary files and the .git directory are skipped.
func LoadRepository(ctx context.Context, url, branch, tempPath string) (*models.Repository, error) {
	name := url[strings.LastIndex(url, "/")+1:]
	rootPath := filepath.Join(tempPath, name)

	args := []string{"clone", "--depth", "1"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, url, rootPath)

	cmd := exec.CommandContext(ctx, "git", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("git clone %s: %w: %s", url, err, bytes.TrimSpace(out))
	}

	documents, err := loadDocuments(rootPath)
	if err != nil {
		return nil, err
	}

	tree, err := renderTree(rootPath)
	if err != nil {
		return nil, err
	}

	return &models.Repository{
		Name:      name,
		Branch:    branch,
		URL:       url,
		Tree:      tree,
		Documents: documents,
	}, nil
}

func loadDocuments(rootPath string) ([]models.Document, error) {
	var documents []models.Document

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if isBinary(content) {
			return nil
		}

		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		documents = append(documents, models.Document{
			FilePath: filepath.ToSlash(rel),
			FileName: d.Name(),
			Content:  string(content),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", rootPath, err)
	}
	return documents, nil
}

// isBinary uses the classic NUL-byte sniff over the head of the file.
func isBinary(content []byte) bool {
	head := content
	if len(head) > 8000 {
		head = head[:8000]
	}
	return bytes.IndexByte(head, 0) >= 0
}

// renderTree produces an indented textual listing of the repository layout,
// fed to the LLM as structural context.
func renderTree(rootPath string) (string, error) {
	var b strings.Builder
	b.WriteString(filepath.Base(rootPath))
	b.WriteByte('\n')

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == rootPath {
			return nil
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		depth := strings.Count(filepath.ToSlash(rel), "/")
		b.WriteString(strings.Repeat("    ", depth+1))
		b.WriteString(d.Name())
		if d.IsDir() {
			b.WriteByte('/')
		}
		b.WriteByte('\n')
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("render tree %s: %w", rootPath, err)
	}
	return b.String(), nil
}
