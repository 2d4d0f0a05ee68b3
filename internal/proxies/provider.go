// Package proxies holds the clients for the remote, rate-limited model
// endpoints: embeddings, reranker and chat completions. Every outbound call
// goes through the shared Runner.
package proxies

import (
	"github.com/adriankh/reposage/internal/models"
)

// Provider is one remote API host plus the headers it requires.
type Provider struct {
	Name    string
	URL     string
	Headers map[string]string
}

// NewProvider builds a provider with the usual JSON + bearer-token headers.
func NewProvider(name, url, apiKey string) Provider {
	headers := map[string]string{"Content-Type": "application/json"}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}
	return Provider{Name: name, URL: url, Headers: headers}
}

// completionPayload is the chat-completions wire shape.
type completionPayload struct {
	Model       string               `json:"model"`
	Messages    []models.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature,omitempty"`
	TopP        float64              `json:"top_p,omitempty"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
	Stream      bool                 `json:"stream,omitempty"`
}

func payloadFor(task models.LLMTask) completionPayload {
	return completionPayload{
		Model:       task.Model,
		Messages:    task.Messages(),
		Temperature: task.Settings.Temperature,
		TopP:        task.Settings.TopP,
		MaxTokens:   task.Settings.MaxTokens,
		Stream:      task.Settings.Stream,
	}
}
