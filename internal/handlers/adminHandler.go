package handlers

import (
	"net/http"
	"strings"

	"github.com/akolanti/BookRAG/internal/adapter"
	"github.com/akolanti/BookRAG/internal/api"
	"github.com/akolanti/BookRAG/internal/domain/appErrors"
)

// Ingest godoc
// @Summary      Ingest the markdown corpus
// @Description  Walks docs_path for .md and .mdx files and indexes them. Per-file failures are reported in failed_files, not as an error. clear_existing drops the collection first, after the path is checked.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     AdminBearer
// @Param        request  body      api.IngestRequest  true  "Corpus directory"
// @Success      200      {object}  api.IngestResponse
// @Failure      400      {object}  api.ErrorResponse  "Path does not exist"
// @Failure      401      {object}  api.ErrorResponse
// @Router       /admin/ingest [post]
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req api.IngestRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, "", err)
		return
	}
	clearWriteDeadline(w, r)
	summary, err := h.ingestor.Run(r.Context(), adapter.ToIngestRequest(req))
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToIngestResponse(summary))
}

// IngestFile godoc
// @Summary      Ingest a single markdown file
// @Tags         Admin
// @Produce      json
// @Security     AdminBearer
// @Param        filepath  query     string  true  "Path of the file on the server"
// @Success      200       {object}  api.IngestFileResponse
// @Failure      400       {object}  api.ErrorResponse  "File not found"
// @Failure      502       {object}  api.ErrorResponse
// @Router       /admin/ingest/file [post]
func (h *Handler) IngestFile(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSpace(r.URL.Query().Get("filepath"))
	if path == "" {
		h.writeError(w, r, "", appErrors.Validation("filepath is required"))
		return
	}
	clearWriteDeadline(w, r)
	count, err := h.ingestor.IngestFile(r.Context(), path)
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.IngestFileResponse{ChunksCreated: count, File: path})
}

// ListDocuments godoc
// @Summary      List ingested documents
// @Tags         Admin
// @Produce      json
// @Security     AdminBearer
// @Success      200  {array}  api.DocumentItem
// @Router       /admin/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.ingestor.Documents(r.Context())
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentItems(docs))
}

// ClearDocuments godoc
// @Summary      Drop the vector collection and every document row
// @Tags         Admin
// @Produce      json
// @Security     AdminBearer
// @Success      200  {object}  api.ClearDocumentsResponse
// @Failure      502  {object}  api.ErrorResponse
// @Router       /admin/documents/all [delete]
func (h *Handler) ClearDocuments(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.ingestor.ClearAll(r.Context())
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.ClearDocumentsResponse{Message: "All documents cleared", Deleted: deleted})
}

// VectorStoreHealth godoc
// @Summary      Vector store connectivity
// @Description  Always 200; the body reports healthy with the collection names or unhealthy with the error.
// @Tags         Admin
// @Produce      json
// @Security     AdminBearer
// @Success      200  {object}  vectorDB.HealthStatus
// @Router       /admin/health/vector-store [get]
func (h *Handler) VectorStoreHealth(w http.ResponseWriter, r *http.Request) {
	status := h.index.HealthCheck(r.Context())
	if !status.Healthy {
		h.logger.FromContext(r.Context()).Warn("Vector store unhealthy", "err", status.Error)
	}
	writeJsonResponse(w, http.StatusOK, status)
}
