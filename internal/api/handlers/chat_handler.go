package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/adriankh/reposage/internal/core"
	"github.com/adriankh/reposage/internal/models"
	"github.com/adriankh/reposage/internal/proxies"
	"github.com/adriankh/reposage/internal/rag"
)

// ChatHandler answers questions about an indexed repository, streaming the
// model's answer back as plain text chunks.
type ChatHandler struct {
	pipeline  *rag.Pipeline
	completer core.Completer
	chatModel string
}

func NewChatHandler(pipeline *rag.Pipeline, completer core.Completer, chatModel string) *ChatHandler {
	return &ChatHandler{pipeline: pipeline, completer: completer, chatModel: chatModel}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var chatReq models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&chatReq); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if len(chatReq.Messages) == 0 {
		http.Error(w, "empty messages", http.StatusBadRequest)
		return
	}

	last := chatReq.Messages[len(chatReq.Messages)-1]
	query, repoID := last.Content.Query, last.Content.Repo
	if query == "" || repoID == "" {
		http.Error(w, "last message must carry query and repo", http.StatusBadRequest)
		return
	}

	// Retrieval runs on the (possibly rephrased) query; the final answer
	// still addresses the user's raw question.
	ragContext, err := h.pipeline.BuildContext(ctx, repoID, query, chatReq.History())
	if err != nil {
		if errors.Is(err, core.ErrInvalidRepository) {
			http.Error(w, "not a valid repo", http.StatusBadRequest)
			return
		}
		log.Printf("chat: build context failed: %v", err)
		http.Error(w, "failed to build context", http.StatusInternalServerError)
		return
	}

	target, err := h.pipeline.Target(repoID)
	if err != nil {
		http.Error(w, "not a valid repo", http.StatusBadRequest)
		return
	}

	task := proxies.BuildChatTask(h.chatModel, target.Name, query, ragContext)
	stream, err := h.completer.StreamComplete(ctx, task)
	if err != nil {
		log.Printf("chat: stream failed: %v", err)
		http.Error(w, "completion failed", http.StatusInternalServerError)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	flusher, _ := w.(http.Flusher)

	buf := make([]byte, 4096)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			log.Printf("chat: stream interrupted: %v", err)
			return
		}
	}
}
