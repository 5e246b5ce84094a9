package handlers

import (
	"net/http"
	"strings"

	"github.com/akolanti/BookRAG/internal/adapter"
	"github.com/akolanti/BookRAG/internal/adapter/utils"
	"github.com/akolanti/BookRAG/internal/api"
	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB"
)

// Root godoc
// @Summary      Service information
// @Tags         Service
// @Produce      json
// @Success      200  {object}  api.ServiceInfo
// @Router       / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, h.info)
}

// Health godoc
// @Summary      Liveness probe
// @Tags         Service
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "healthy"})
}

// Chat godoc
// @Summary      Ask a question about the book
// @Description  Answers in one response and stores both messages. Omit conversation_id to start a new conversation.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest    true  "Message, optional conversation, selected text and chapter"
// @Success      200      {object}  api.ChatResponse
// @Failure      400      {object}  api.ErrorResponse  "Empty message or bad body"
// @Failure      404      {object}  api.ErrorResponse  "Unknown conversation"
// @Failure      502      {object}  api.ErrorResponse  "Embedding, vector index or model failure"
// @Router       /chat/ [post]
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, "", err)
		return
	}
	out, err := h.chat.Ask(r.Context(), adapter.ToChatInput(req))
	if err != nil {
		h.writeError(w, r, req.ConversationID, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToChatResponse(out))
}

// ListConversations godoc
// @Summary      List recent conversations
// @Tags         Chat
// @Produce      json
// @Param        limit  query     int  false  "Maximum conversations to return"  default(20)
// @Success      200    {array}   api.ConversationListItem
// @Failure      400    {object}  api.ErrorResponse
// @Router       /chat/conversations [get]
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	convs, err := h.chat.ListConversations(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToConversationItems(convs))
}

// ConversationMessages godoc
// @Summary      Messages of a conversation, oldest first
// @Tags         Chat
// @Produce      json
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {array}   api.MessageItem
// @Failure      404  {object}  api.ErrorResponse
// @Router       /chat/conversations/{id}/messages [get]
func (h *Handler) ConversationMessages(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	msgs, err := h.chat.Messages(r.Context(), id)
	if err != nil {
		h.writeError(w, r, id, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToMessageItems(msgs))
}

// DeleteConversation godoc
// @Summary      Delete a conversation and its messages
// @Tags         Chat
// @Produce      json
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  api.MessageResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /chat/conversations/{id} [delete]
func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	if err := h.chat.DeleteConversation(r.Context(), id); err != nil {
		h.writeError(w, r, id, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{Message: "Conversation deleted"})
}

// Search godoc
// @Summary      Retrieve matching passages without generating an answer
// @Tags         Search
// @Produce      json
// @Param        q        query     string  true   "Search query"
// @Param        chapter  query     string  false  "Restrict to one chapter"
// @Param        top_k    query     int     false  "Maximum results"
// @Success      200      {object}  api.SearchResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      502      {object}  api.ErrorResponse
// @Router       /search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.writeError(w, r, "", appErrors.Validation("q is required"))
		return
	}
	topK, err := intQuery(r, "top_k", 0)
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	chapter := r.URL.Query().Get("chapter")
	results, err := h.answers.Retrieve(r.Context(), query, vectorDB.ChapterFilter(chapter), topK)
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSearchResponse(query, chapter, results))
}
