package models

import (
	"encoding/json"
	"fmt"
)

// ChatContent is the content field of an inbound chat message. The latest
// message carries a structured {query, repo} object; history turns carry a
// plain string.
type ChatContent struct {
	Query string `json:"query"`
	Repo  string `json:"repo"`
	Raw   string `json:"-"`
}

func (c *ChatContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Raw = s
		return nil
	}
	type plain ChatContent
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("chat content is neither string nor object: %w", err)
	}
	*c = ChatContent(p)
	return nil
}

// InboundMessage is one message of an inbound chat request.
type InboundMessage struct {
	Role    string      `json:"role"`
	Content ChatContent `json:"content"`
}

// ChatRequest is the inbound request body of the chat endpoint.
type ChatRequest struct {
	Model    string           `json:"model"`
	Messages []InboundMessage `json:"messages"`
}

// History returns all turns but the last one as plain chat messages.
func (r ChatRequest) History() []ChatMessage {
	if len(r.Messages) < 2 {
		return nil
	}
	history := make([]ChatMessage, 0, len(r.Messages)-1)
	for _, m := range r.Messages[:len(r.Messages)-1] {
		content := m.Content.Raw
		if content == "" {
			content = m.Content.Query
		}
		history = append(history, ChatMessage{Role: m.Role, Content: content})
	}
	return history
}
