package proxies

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adriankh/reposage/internal/core"
	"github.com/adriankh/reposage/internal/models"
)

func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func summaryTask(user string) models.LLMTask {
	return models.LLMTask{
		Name:   "test-task",
		Model:  "gpt-4o",
		System: "be brief",
		User:   user,
		Settings: models.TaskSettings{
			Temperature: 0.1,
			TopP:        1,
			MaxTokens:   128,
		},
	}
}

func TestParseCompletion(t *testing.T) {
	body := []byte(`{"choices":[{"message":{"content":"the answer"}}]}`)
	text, err := parseCompletion(body)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if text != "the answer" {
		t.Errorf("text = %q", text)
	}

	if _, err := parseCompletion([]byte(`{"choices":[]}`)); !errors.Is(err, core.ErrEmptyResponse) {
		t.Errorf("empty choices should be ErrEmptyResponse, got %v", err)
	}
	if _, err := parseCompletion([]byte(`{"choices":[{"message":{"content":""}}]}`)); !errors.Is(err, core.ErrEmptyResponse) {
		t.Errorf("empty content should be ErrEmptyResponse, got %v", err)
	}
	if _, err := parseCompletion([]byte(`not json`)); err == nil {
		t.Error("malformed body should fail")
	}
}

func TestCompleteSendsMessagesInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload completionPayload
		if err := jsonDecode(r, &payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" || payload.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", payload.Messages)
		}
		if payload.Model != "gpt-4o" {
			t.Errorf("model = %q", payload.Model)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	completer := NewProxyCompleter(NewRunner(100, 1), NewProvider("llm", srv.URL, "secret"))
	text, err := completer.Complete(context.Background(), summaryTask("summarize this"))
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if text != "ok" {
		t.Errorf("text = %q", text)
	}
}

func TestStreamCompleteDecodesSSE(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload completionPayload
		if err := jsonDecode(r, &payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		if !payload.Stream {
			t.Error("stream flag not set")
		}
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"par\"}}]}\n\n"))
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"tial\"}}]}\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	completer := NewProxyCompleter(NewRunner(100, 1), NewProvider("llm", srv.URL, ""))
	stream, err := completer.StreamComplete(context.Background(), summaryTask("stream it"))
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	defer stream.Close()

	out, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if string(out) != "partial" {
		t.Errorf("stream text = %q, want %q", out, "partial")
	}
}

func TestStreamCompleteBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	completer := NewProxyCompleter(NewRunner(100, 1), NewProvider("llm", srv.URL, ""))
	_, err := completer.StreamComplete(context.Background(), summaryTask("x"))

	var remoteErr *core.RemoteServiceError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteServiceError, got %v", err)
	}
	if remoteErr.Status != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", remoteErr.Status)
	}
}
