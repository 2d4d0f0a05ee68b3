package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/adriankh/reposage/internal/app"
	"github.com/adriankh/reposage/internal/config"
	"github.com/adriankh/reposage/internal/crawler"
	"github.com/adriankh/reposage/internal/splitter"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.LoadConfig()
	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer application.Close()

	orchestrator := crawler.NewOrchestrator(
		application.Targets,
		application.DBClient,
		application.DBClient,
		crawler.NewGitHubClient(cfg.GitHubAPIKey),
		splitter.New(application.Summarizer, cfg.ChunkSize),
		application.Summarizer,
		application.Embedder,
		cfg.ForceCrawl,
	)

	if err := orchestrator.Run(ctx); err != nil {
		log.Fatalf("crawl failed: %v", err)
	}
}
