package proxies

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/adriankh/reposage/internal/core"
	"github.com/adriankh/reposage/internal/models"
)

// completionResponse is the non-streaming chat-completions body.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func parseCompletion(body []byte) (string, error) {
	var resp completionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", core.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// ProxyCompleter executes LLM tasks against an OpenAI-compatible chat
// completion endpoint through the shared rate-limited runner.
type ProxyCompleter struct {
	runner   *Runner
	provider Provider
}

func NewProxyCompleter(runner *Runner, provider Provider) *ProxyCompleter {
	return &ProxyCompleter{runner: runner, provider: provider}
}

// Complete runs the task and returns the completion text. Empty completions
// are retried by the runner; on terminal failure the prompt sizes per role
// are logged to help diagnose token-limit issues, without logging content.
func (c *ProxyCompleter) Complete(ctx context.Context, task models.LLMTask) (string, error) {
	payload := payloadFor(task)

	body, err := c.runner.Do(ctx, Request{
		Service: "completions:" + task.Name,
		URL:     c.provider.URL,
		Headers: c.provider.Headers,
		Body:    payload,
		Validate: func(body []byte) error {
			_, verr := parseCompletion(body)
			return verr
		},
	})
	if err != nil {
		for idx, message := range payload.Messages {
			log.Printf("%s: msg #%d: size of %s prompt: %d",
				task.Name, idx, message.Role, len(message.Content))
		}
		return "", err
	}

	return parseCompletion(body)
}

// StreamComplete issues the task with streaming enabled and returns the
// decoded answer text as it arrives. Streaming bypasses the retry loop: a
// broken stream is surfaced to the caller, who is already forwarding bytes
// downstream.
func (c *ProxyCompleter) StreamComplete(ctx context.Context, task models.LLMTask) (io.ReadCloser, error) {
	task.Settings.Stream = true
	data, err := json.Marshal(payloadFor(task))
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", task.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.provider.URL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	for k, v := range c.provider.Headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &core.RemoteServiceError{Service: "completions:" + task.Name, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &core.RemoteServiceError{
			Service: "completions:" + task.Name,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("unexpected status"),
		}
	}

	pr, pw := io.Pipe()
	go func() {
		defer resp.Body.Close()
		err := StreamDeltas(resp.Body, func(delta string) error {
			_, werr := io.WriteString(pw, delta)
			return werr
		})
		pw.CloseWithError(err)
	}()
	return pr, nil
}

var _ core.Completer = (*ProxyCompleter)(nil)
