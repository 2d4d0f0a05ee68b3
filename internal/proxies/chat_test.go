package proxies

import (
	"errors"
	"strings"
	"testing"
)

var errTest = errors.New("test error")

func TestStreamDeltas(t *testing.T) {
	stream := strings.Join([]string{
		`data: {"choices":[{"delta":{"content":"Hello"}}]}`,
		``,
		`data: {"choices":[{"delta":{"content":" world"}}]}`,
		`: keep-alive comment`,
		`data: {"choices":[{"delta":{}}]}`,
		`data: not-json`,
		`data: [DONE]`,
	}, "\n")

	var got strings.Builder
	err := StreamDeltas(strings.NewReader(stream), func(delta string) error {
		got.WriteString(delta)
		return nil
	})
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	if got.String() != "Hello world" {
		t.Errorf("got %q, want %q", got.String(), "Hello world")
	}
}

func TestStreamDeltasEmitErrorStops(t *testing.T) {
	stream := "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n"

	var seen int
	err := StreamDeltas(strings.NewReader(stream), func(delta string) error {
		seen++
		return errTest
	})
	if err != errTest {
		t.Errorf("expected emit error to propagate, got %v", err)
	}
	if seen != 1 {
		t.Errorf("emit called %d times after error, want 1", seen)
	}
}

func TestBuildChatTask(t *testing.T) {
	task := BuildChatTask("gpt-3.5-turbo", "Bittensor", "what is a hotkey?", "File: wallet.py")

	if task.Model != "gpt-3.5-turbo" {
		t.Errorf("model = %q", task.Model)
	}
	if !strings.Contains(task.User, "what is a hotkey?") {
		t.Error("question missing from user prompt")
	}
	if !strings.Contains(task.User, "File: wallet.py") {
		t.Error("context missing from user prompt")
	}
	if !strings.Contains(task.User, "'Bittensor'") {
		t.Error("repo name missing from user prompt")
	}
	if strings.Contains(task.User, "{context}") || strings.Contains(task.User, "{question}") {
		t.Error("unfilled template placeholders left in prompt")
	}
}
