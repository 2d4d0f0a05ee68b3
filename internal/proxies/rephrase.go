package proxies

import (
	"context"
	"strings"

	"github.com/adriankh/reposage/internal/models"
)

const rephraseSystem = `System: You are an AI assistant that rephrases user queries based on
conversation context. Analyze the historical chat and current query, then generate a rephrased
query considering the following:

    1. Identify the main topic or intent of the current query.
    2. Find relevant context from the historical chat to clarify or expand the query.
    3. Incorporate the context into the rephrased query to make it more specific or informative.
    4. Maintain the core meaning of the original query while enhancing it with context.
    5. If no relevant context exists, rephrase the query for clarity or grammatical correctness.

Example:

    Chat history:
        User: I'm interested in learning about the history of Rome.
        Assistant: Rome has a rich history dating back to 753 BCE, growing from a small town
        to a large empire. Are there any specific aspects you'd like to know more about?

    Latest query: Tell me about the early years.

    Rephrased: Tell me about the Rome's history from 753 BCE.

Format your response as:

Rephrased: [Your rephrased query here]`

const rephraseUser = `Given the following chat history:
{chat_history}

Rephrase this latest query: {query}`

const rephrasedPrefix = "Rephrased: "

var rephraseSettings = models.TaskSettings{
	Temperature: 0.1,
	TopP:        1,
	MaxTokens:   512,
}

// Rephrase rewrites the latest query in light of the chat history so that
// retrieval sees a self-contained question. The caller is expected to skip
// this entirely when the history is empty.
func (s *LLMSummarizer) Rephrase(ctx context.Context, query string, history []models.ChatMessage) (string, error) {
	lines := make([]string, 0, len(history))
	for _, message := range history {
		lines = append(lines, message.Role+": "+message.Content)
	}

	user := strings.NewReplacer(
		"{chat_history}", strings.Join(lines, "\n"),
		"{query}", query,
	).Replace(rephraseUser)

	text, err := s.completer.Complete(ctx, models.LLMTask{
		Name:     "rephrase",
		Model:    s.model,
		System:   rephraseSystem,
		User:     user,
		Settings: rephraseSettings,
	})
	if err != nil {
		return "", err
	}

	// The model is instructed to answer with a fixed prefix; tolerate it
	// being omitted.
	if idx := strings.Index(text, rephrasedPrefix); idx >= 0 {
		text = text[idx+len(rephrasedPrefix):]
	}
	return strings.TrimSpace(text), nil
}
