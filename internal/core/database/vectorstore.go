package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/adriankh/reposage/internal/core"
	"github.com/adriankh/reposage/internal/models"
)

// collectionTable maps a collection name to its backing table. Anything
// outside [a-z0-9_] is folded to '_', so "repo.temp" and "repo_temp" share a
// table; collection names are operator-chosen and assumed not to collide.
func collectionTable(collection string) string {
	var b strings.Builder
	b.WriteString("rag_")
	for _, r := range strings.ToLower(collection) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (c *DatabaseClient) GetOrCreate(ctx context.Context, collection string) error {
	q := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			vecdb_idx     TEXT PRIMARY KEY,
			document      TEXT NOT NULL,
			original      TEXT NOT NULL,
			file_path     TEXT NOT NULL,
			language      TEXT NOT NULL,
			document_type TEXT NOT NULL,
			embedding     vector(%d) NOT NULL
		)`, collectionTable(collection), c.embedDim)
	if _, err := c.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("create collection %s: %w", collection, err)
	}
	return nil
}

// Add upserts chunks with their precomputed embeddings in one transaction.
// chunks and vectors are parallel slices.
func (c *DatabaseClient) Add(ctx context.Context, collection string, chunks []models.DocumentChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("add to %s: %d chunks but %d vectors", collection, len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	q := fmt.Sprintf(`
		INSERT INTO %s
			(vecdb_idx, document, original, file_path, language, document_type, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (vecdb_idx) DO UPDATE SET
			document = EXCLUDED.document,
			original = EXCLUDED.original,
			file_path = EXCLUDED.file_path,
			language = EXCLUDED.language,
			document_type = EXCLUDED.document_type,
			embedding = EXCLUDED.embedding
	`, collectionTable(collection))
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		vec := pgvector.NewVector(vectors[i])
		if _, err := stmt.ExecContext(ctx,
			ch.Metadata.VecdbIdx, ch.PageContent, ch.OriginalContent,
			ch.Metadata.FilePath, ch.Metadata.Language, ch.Metadata.DocumentType, vec,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %s: %w", ch.Metadata.VecdbIdx, err)
		}
	}
	return tx.Commit()
}

// Query returns the topK nearest chunks by cosine distance, closest first.
func (c *DatabaseClient) Query(ctx context.Context, collection string, embedding []float32, topK int) (*models.SimilarityResult, error) {
	q := fmt.Sprintf(`
		SELECT document, original, file_path, language, document_type, vecdb_idx,
		       embedding <=> $1 AS distance
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2
	`, collectionTable(collection))

	rows, err := c.db.QueryContext(ctx, q, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	res := &models.SimilarityResult{}
	for rows.Next() {
		var (
			doc, orig string
			meta      models.ChunkMetadata
			dist      float64
		)
		if err := rows.Scan(&doc, &orig, &meta.FilePath, &meta.Language, &meta.DocumentType, &meta.VecdbIdx, &dist); err != nil {
			return nil, err
		}
		res.Documents = append(res.Documents, doc)
		res.Originals = append(res.Originals, orig)
		res.Metadatas = append(res.Metadatas, meta)
		res.Distances = append(res.Distances, dist)
	}
	return res, rows.Err()
}

func (c *DatabaseClient) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name LIKE 'rag\_%'
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, strings.TrimPrefix(name, "rag_"))
	}
	return out, rows.Err()
}

func (c *DatabaseClient) HasCollection(ctx context.Context, collection string) (bool, error) {
	var exists bool
	err := c.db.QueryRowContext(ctx, `
		SELECT EXISTS (
		  SELECT 1 FROM information_schema.tables
		  WHERE table_schema = 'public' AND table_name = $1
		)`, collectionTable(collection)).
		Scan(&exists)
	return exists, err
}

func (c *DatabaseClient) DeleteCollection(ctx context.Context, collection string) error {
	q := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, collectionTable(collection))
	if _, err := c.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("delete collection %s: %w", collection, err)
	}
	return nil
}

// Replace promotes the freshly built temp collection to live. The two steps
// are deliberately not atomic: if dropping the live table fails the rename is
// still attempted, favoring fresh data over the stale copy.
func (c *DatabaseClient) Replace(ctx context.Context, live, temp string) error {
	if err := c.DeleteCollection(ctx, live); err != nil {
		log.Printf("CRITICAL: failed to delete live collection %q before swap: %v", live, err)
	}
	q := fmt.Sprintf(`ALTER TABLE %s RENAME TO %s`, collectionTable(temp), collectionTable(live))
	if _, err := c.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("promote %s to %s: %w", temp, live, err)
	}
	return nil
}

var _ core.VectorStore = (*DatabaseClient)(nil)
