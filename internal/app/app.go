// Package app wires configuration, storage and the model clients into the
// running services.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/adriankh/reposage/internal/config"
	"github.com/adriankh/reposage/internal/core"
	db "github.com/adriankh/reposage/internal/core/database"
	"github.com/adriankh/reposage/internal/core/llm"
	"github.com/adriankh/reposage/internal/models"
	"github.com/adriankh/reposage/internal/proxies"
	"github.com/adriankh/reposage/internal/rag"
)

type App struct {
	Config     *config.Config
	DBClient   *db.DatabaseClient
	Targets    map[string]models.RepoCrawlTarget
	Embedder   core.Embedder
	Reranker   core.Reranker
	Completer  core.Completer
	Summarizer core.Summarizer
	Pipeline   *rag.Pipeline
	Server     *Server

	gemini *llm.GeminiCompleter
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	targets, err := config.LoadTargets(cfg.CrawlTargetsPath)
	if err != nil {
		return nil, fmt.Errorf("load crawl targets: %w", err)
	}
	log.Printf("Loaded %d crawl targets.", len(targets))

	runner := proxies.NewRunner(cfg.RequestsPerSecond, cfg.MaxAttempts)
	embedder := proxies.NewEmbeddingClient(runner,
		proxies.NewProvider("embeddings", cfg.EmbeddingsAPI, cfg.EmbeddingsAPIKey),
		cfg.EmbedBatchSize)
	reranker := proxies.NewRerankerClient(runner,
		proxies.NewProvider("reranker", cfg.RerankerAPI, cfg.RerankerAPIKey))

	app := &App{
		Config:   cfg,
		DBClient: dbClient,
		Targets:  targets,
		Embedder: embedder,
		Reranker: reranker,
	}

	switch cfg.LLMProvider {
	case "gemini":
		gemini, err := llm.NewGeminiCompleter(appCtx, cfg.GeminiAPIKey, cfg.ChatModel)
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize the gemini client, %w", err)
		}
		app.gemini = gemini
		app.Completer = gemini
	default:
		app.Completer = proxies.NewProxyCompleter(runner,
			proxies.NewProvider("llm", cfg.LLMAPI, cfg.LLMAPIKey))
	}

	app.Summarizer = proxies.NewLLMSummarizer(app.Completer, cfg.SummaryModel)
	app.Pipeline = rag.NewPipeline(targets, dbClient, embedder, reranker, app.Summarizer, cfg.SimSearchTopK)
	app.Server = NewServer(cfg, app)

	return app, nil
}

func (a *App) Close() {
	if a.gemini != nil {
		_ = a.gemini.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
