package adapter

import (
	"fmt"

	"github.com/akolanti/BookRAG/internal/api"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/domain/jobModel"
)

func ToInitJobResponse(job jobModel.Job, prefix string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        job.Id,
		Status:    string(job.Status),
		StatusURL: fmt.Sprintf("%s/admin/ingest/jobs/%s", prefix, job.Id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.OutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.OutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	var result *api.IngestResponse
	if job.Summary != nil {
		r := ToIngestResponse(*job.Summary)
		result = &r
	}

	res := api.JobResponse{
		Id:          job.Id,
		Status:      string(job.Status),
		CurrentStep: string(job.CurrentStep),
		Request:     ToAPIIngestRequest(job.Request),
		Result:      result,
		Error:       errorPtr,
		StartTime:   job.CreatedTime,
	}
	if !job.EndTime.IsZero() {
		end := job.EndTime
		res.EndTime = &end
	}
	return res
}

func ToAPIResponses(jobs []jobModel.Job) []api.JobResponse {
	out := make([]api.JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, ToAPIResponse(j))
	}
	return out
}

func ToIngestResponse(summary commonModels.IngestSummary) api.IngestResponse {
	failed := summary.FailedFiles
	if failed == nil {
		failed = []commonModels.FailedFile{}
	}
	return api.IngestResponse{
		TotalFiles:  summary.TotalFiles,
		Ingested:    summary.Ingested,
		Failed:      summary.Failed,
		TotalChunks: summary.TotalChunks,
		FailedFiles: failed,
	}
}

func ToIngestRequest(req api.IngestRequest) commonModels.IngestRequest {
	return commonModels.IngestRequest{DocsPath: req.DocsPath, ClearExisting: req.ClearExisting}
}

func ToAPIIngestRequest(req commonModels.IngestRequest) api.IngestRequest {
	return api.IngestRequest{DocsPath: req.DocsPath, ClearExisting: req.ClearExisting}
}

func ToDocumentItems(docs []commonModels.Document) []api.DocumentItem {
	items := make([]api.DocumentItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, api.DocumentItem{
			Id:         d.Id,
			Title:      d.Title,
			SourcePath: d.SourcePath,
			ChunkCount: d.ChunkCount,
			IndexedAt:  d.IndexedAt,
		})
	}
	return items
}

func BadRequest(id string, message string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Id: id,
		Error: api.OutgoingError{
			Code:    code,
			Message: message,
			Retry:   false,
		},
	}
}
