package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/adriankh/reposage/internal/models"
)

// LoadTargets reads the crawl target registry from a JSON file keyed by repo
// id. If you add a repository here it will get crawled.
func LoadTargets(path string) (map[string]models.RepoCrawlTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read crawl targets: %w", err)
	}

	var targets map[string]models.RepoCrawlTarget
	if err := json.Unmarshal(data, &targets); err != nil {
		return nil, fmt.Errorf("parse crawl targets: %w", err)
	}

	for id, target := range targets {
		if target.URL == "" || target.TargetCollection == "" {
			return nil, fmt.Errorf("crawl target %q missing url or target_collection", id)
		}
		target.RepoID = id
		targets[id] = target
	}
	return targets, nil
}
