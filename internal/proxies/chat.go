package proxies

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/adriankh/reposage/internal/models"
)

const chatSystem = `You are an expert programming assistant. You provide concise, informative
and friendly answers to questions you are given. Your task is to answer a question asked about
a GitHub repository, using the provided contextual code fragments and documentation. You will
not make any assumptions about the codebase beyond what is presented to you as context.

Answer the question using the code and documentation below. Explain your reasoning in simple
steps. Be assertive and quote code fragments if needed.`

const chatUser = `Here's some relevant documentation about the '{repo_name}' repository:

{context}

---

Question:

{question}`

var chatSettings = models.TaskSettings{
	Temperature: 0.1,
	TopP:        1,
	MaxTokens:   4096,
}

// BuildChatTask renders the final answer prompt from the retrieved context
// and the user's raw question.
func BuildChatTask(model, repoName, question, context string) models.LLMTask {
	user := strings.NewReplacer(
		"{repo_name}", repoName,
		"{context}", context,
		"{question}", question,
	).Replace(chatUser)

	return models.LLMTask{
		Name:     "chat-with-repo",
		Model:    model,
		System:   chatSystem,
		User:     user,
		Settings: chatSettings,
	}
}

// streamChunk is one SSE payload of a streaming chat completion.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// StreamDeltas reads an OpenAI-style SSE stream and calls emit for each
// non-empty content delta, in order, until the stream ends or emit errors.
// Unparseable events are skipped rather than aborting the stream.
func StreamDeltas(r io.Reader, emit func(delta string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		if err := emit(chunk.Choices[0].Delta.Content); err != nil {
			return err
		}
	}
	return scanner.Err()
}
