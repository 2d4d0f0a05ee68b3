// Package llm holds the non-proxy completion backends.
package llm

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/adriankh/reposage/internal/core"
	"github.com/adriankh/reposage/internal/models"
)

// GeminiCompleter runs LLM tasks against Google Gemini instead of an
// OpenAI-compatible proxy. The task's model name is ignored in favor of the
// configured Gemini model.
type GeminiCompleter struct {
	client    *genai.Client
	modelName string
}

func NewGeminiCompleter(ctx context.Context, apiKey, modelName string) (*GeminiCompleter, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiCompleter{client: cl, modelName: modelName}, nil
}

func (g *GeminiCompleter) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiCompleter) model(task models.LLMTask) *genai.GenerativeModel {
	m := g.client.GenerativeModel(g.modelName)
	if task.System != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(task.System)},
		}
	}
	if task.Settings.Temperature != 0 {
		m.SetTemperature(float32(task.Settings.Temperature))
	}
	if task.Settings.TopP != 0 {
		m.SetTopP(float32(task.Settings.TopP))
	}
	if task.Settings.MaxTokens != 0 {
		m.SetMaxOutputTokens(int32(task.Settings.MaxTokens))
	}
	return m
}

func (g *GeminiCompleter) Complete(ctx context.Context, task models.LLMTask) (string, error) {
	resp, err := g.model(task).GenerateContent(ctx, genai.Text(task.User))
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", task.Name, err)
	}
	text := candidateText(resp)
	if text == "" {
		return "", core.ErrEmptyResponse
	}
	return text, nil
}

// StreamComplete adapts Gemini's iterator-based streaming to the reader
// contract: each chunk's text is written to the pipe as it arrives.
func (g *GeminiCompleter) StreamComplete(ctx context.Context, task models.LLMTask) (io.ReadCloser, error) {
	iter := g.model(task).GenerateContentStream(ctx, genai.Text(task.User))

	pr, pw := io.Pipe()
	go func() {
		for {
			resp, err := iter.Next()
			if err == iterator.Done {
				pw.Close()
				return
			}
			if err != nil {
				pw.CloseWithError(fmt.Errorf("gemini %s stream: %w", task.Name, err))
				return
			}
			if _, err := io.WriteString(pw, candidateText(resp)); err != nil {
				return
			}
		}
	}()
	return pr, nil
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

var _ core.Completer = (*GeminiCompleter)(nil)
