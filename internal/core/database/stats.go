package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/adriankh/reposage/internal/core"
	"github.com/adriankh/reposage/internal/models"
)

func (c *DatabaseClient) Get(ctx context.Context, repoID string) (*models.RepoCrawlStats, error) {
	var raw []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT stats FROM repo_crawl_stats WHERE repo_id = $1`, repoID).
		Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNoStats
	}
	if err != nil {
		return nil, err
	}

	var stats models.RepoCrawlStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("decode stats for %s: %w", repoID, err)
	}
	return &stats, nil
}

func (c *DatabaseClient) Put(ctx context.Context, repoID string, stats *models.RepoCrawlStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats for %s: %w", repoID, err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO repo_crawl_stats (repo_id, stats)
		VALUES ($1, $2)
		ON CONFLICT (repo_id) DO UPDATE SET stats = EXCLUDED.stats, updated_at = now()
	`, repoID, raw)
	return err
}

var _ core.StatsStore = (*DatabaseClient)(nil)
