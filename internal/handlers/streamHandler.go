package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/akolanti/BookRAG/internal/adapter"
	"github.com/akolanti/BookRAG/internal/api"
)

// ChatStream godoc
// @Summary      Ask a question and stream the answer
// @Description  Server-sent events. Each frame is `data: {"type": ..., "data": ...}`. Types arrive in the order conversation_id, sources, text (repeated), done. A turn that fails mid-stream ends without done.
// @Tags         Chat
// @Accept       json
// @Produce      text/event-stream
// @Param        request  body      api.ChatRequest    true  "Message, optional conversation, selected text and chapter"
// @Success      200      {object}  api.StreamFrame
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      502      {object}  api.ErrorResponse
// @Router       /chat/stream [post]
func (h *Handler) ChatStream(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, "", err)
		return
	}

	// failures up to retrieval still get a normal JSON error
	stream, err := h.chat.AskStream(r.Context(), adapter.ToChatInput(req))
	if err != nil {
		h.writeError(w, r, req.ConversationID, err)
		return
	}
	defer stream.Close()

	log := h.logger.FromContext(r.Context())

	rc := clearWriteDeadline(w, r)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	for ev := range stream.Events() {
		frame, err := json.Marshal(adapter.ToStreamFrame(ev))
		if err != nil {
			log.Error("Could not encode stream frame", "type", ev.Type, "err", err)
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", frame); err != nil {
			log.Warn("Client went away mid-stream", "err", err)
			return
		}
		if err := rc.Flush(); err != nil {
			log.Warn("Could not flush stream frame", "err", err)
			return
		}
	}

	if err := stream.Err(); err != nil && r.Context().Err() == nil {
		log.Error("Answer stream aborted", "err", err)
	}
}
