package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string

	EmbedDim       int
	EmbedBatchSize int
	SimSearchTopK  int
	ChunkSize      int

	EmbeddingsAPI    string
	EmbeddingsAPIKey string
	RerankerAPI      string
	RerankerAPIKey   string

	LLMProvider string // "proxy" (OpenAI-compatible endpoint) or "gemini"
	LLMAPI      string
	LLMAPIKey   string
	SummaryModel string
	ChatModel    string
	GeminiAPIKey string

	GitHubAPIKey     string
	CrawlTargetsPath string
	ForceCrawl       bool

	RequestsPerSecond int
	MaxAttempts       int
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8080"),

		EmbedDim:       getEnvInt("EMBED_DIM", 1536),
		EmbedBatchSize: getEnvInt("EMBED_BATCH_SIZE", 5),
		SimSearchTopK:  getEnvInt("SIM_SEARCH_TOP_K", 10),
		ChunkSize:      getEnvInt("CHUNK_SIZE", 512),

		EmbeddingsAPI:    getEnv("EMBEDDINGS_API", ""),
		EmbeddingsAPIKey: getEnv("EMBEDDINGS_API_KEY", ""),
		RerankerAPI:      getEnv("RERANKER_API", ""),
		RerankerAPIKey:   getEnv("RERANKER_API_KEY", ""),

		LLMProvider:  getEnv("LLM_PROVIDER", "proxy"),
		LLMAPI:       getEnv("LLM_API", ""),
		LLMAPIKey:    getEnv("LLM_API_KEY", ""),
		SummaryModel: getEnv("SUMMARY_MODEL", "gpt-4o"),
		ChatModel:    getEnv("CHAT_MODEL", "gpt-3.5-turbo"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),

		GitHubAPIKey:     getEnv("GITHUB_API_KEY", ""),
		CrawlTargetsPath: getEnv("CRAWL_TARGETS", "crawl_targets.json"),
		ForceCrawl:       getEnvBool("FORCE_CRAWL", false),

		RequestsPerSecond: getEnvInt("LLM_REQUESTS_PER_SECOND", 3),
		MaxAttempts:       getEnvInt("LLM_MAX_ATTEMPTS", 4),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a bool, using default %v", key, v, def)
		return def
	}
	return b
}
