package handlers

import (
	"net/http"

	"github.com/akolanti/BookRAG/internal/adapter"
	"github.com/akolanti/BookRAG/internal/adapter/utils"
	"github.com/akolanti/BookRAG/internal/api"
)

// EnqueueIngestJob godoc
// @Summary      Queue a corpus ingestion job
// @Description  Same as /admin/ingest but runs in the worker pool. Poll status_url for the summary.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     AdminBearer
// @Param        request  body      api.IngestRequest    true  "Corpus directory"
// @Success      202      {object}  api.InitJobResponse  "Job queued"
// @Failure      400      {object}  api.ErrorResponse
// @Router       /admin/ingest/jobs [post]
func (h *Handler) EnqueueIngestJob(w http.ResponseWriter, r *http.Request) {
	var req api.IngestRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, "", err)
		return
	}
	queued, err := h.jobs.Enqueue(r.Context(), adapter.ToIngestRequest(req))
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(queued, h.prefix))
}

// GetIngestJob godoc
// @Summary      Ingestion job status
// @Tags         Admin
// @Produce      json
// @Security     AdminBearer
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse
// @Failure      404  {object}  api.ErrorResponse  "Job not found"
// @Router       /admin/ingest/jobs/{id} [get]
func (h *Handler) GetIngestJob(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	found, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, id, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(found))
}

// ListIngestJobs godoc
// @Summary      Recent ingestion jobs, newest first
// @Tags         Admin
// @Produce      json
// @Security     AdminBearer
// @Param        limit  query     int  false  "Maximum jobs to return"  default(20)
// @Success      200    {array}   api.JobResponse
// @Failure      400    {object}  api.ErrorResponse
// @Router       /admin/ingest/jobs [get]
func (h *Handler) ListIngestJobs(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	jobs, err := h.jobs.List(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponses(jobs))
}
