package api

import (
	"time"

	"github.com/akolanti/BookRAG/internal/domain/commonModels"
)

type ErrorResponse struct {
	Id    string        `json:"id,omitempty" example:"c6a7e1f0-3b1e-4a43-9b8e-1f2d3c4b5a69"`
	Error OutgoingError `json:"error"`
}

type OutgoingError struct {
	Code    int    `json:"code" example:"404"`
	Message string `json:"message" example:"conversation not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Conversation deleted"`
}

type ServiceInfo struct {
	Name    string `json:"name" example:"Physical AI Book RAG"`
	Version string `json:"version" example:"1.0.0"`
	Docs    string `json:"docs" example:"/swagger/index.html"`
	Status  string `json:"status" example:"running"`
}

type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
}

// chat ---------------------

type ChatRequest struct {
	ConversationID string `json:"conversation_id,omitempty" example:"c6a7e1f0-3b1e-4a43-9b8e-1f2d3c4b5a69"`
	Message        string `json:"message" validate:"required" example:"What is sensor fusion?"`
	SelectedText   string `json:"selected_text,omitempty" example:"A Kalman filter combines noisy measurements."`
	Chapter        string `json:"chapter,omitempty" example:"chapter-3"`
}

type ChatResponse struct {
	ConversationID string                      `json:"conversation_id"`
	MessageID      string                      `json:"message_id"`
	Answer         string                      `json:"answer"`
	Sources        []commonModels.SourceResult `json:"sources"`
}

// StreamFrame is the JSON carried by each SSE data line.
type StreamFrame struct {
	Type string `json:"type" example:"text"`
	Data any    `json:"data,omitempty"`
}

type ConversationListItem struct {
	Id           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count"`
}

type MessageItem struct {
	Id           string                      `json:"id"`
	Role         string                      `json:"role" example:"assistant"`
	Content      string                      `json:"content"`
	SelectedText *string                     `json:"selected_text"`
	Sources      []commonModels.SourceResult `json:"sources"`
	CreatedAt    time.Time                   `json:"created_at"`
}

// search ---------------------

type SearchResponse struct {
	Query   string                      `json:"query"`
	Chapter string                      `json:"chapter,omitempty"`
	Results []commonModels.SourceResult `json:"results"`
}

// admin ---------------------

type IngestRequest struct {
	DocsPath      string `json:"docs_path" validate:"required" example:"../book/docs"`
	ClearExisting bool   `json:"clear_existing" example:"false"`
}

type IngestResponse struct {
	TotalFiles  int                       `json:"total_files"`
	Ingested    int                       `json:"ingested"`
	Failed      int                       `json:"failed"`
	TotalChunks int                       `json:"total_chunks"`
	FailedFiles []commonModels.FailedFile `json:"failed_files"`
}

type IngestFileResponse struct {
	ChunksCreated int    `json:"chunks_created" example:"12"`
	File          string `json:"file" example:"../book/docs/chapter-1/intro.md"`
}

type DocumentItem struct {
	Id         string    `json:"id"`
	Title      string    `json:"title"`
	SourcePath string    `json:"source_path"`
	ChunkCount int       `json:"chunk_count"`
	IndexedAt  time.Time `json:"indexed_at"`
}

type ClearDocumentsResponse struct {
	Message string `json:"message" example:"All documents cleared"`
	Deleted int    `json:"deleted" example:"14"`
}

// jobs ---------------------

type InitJobResponse struct {
	Id        string `json:"id"`
	Status    string `json:"status" example:"QUEUED"`
	StatusURL string `json:"status_url"`
}

type JobResponse struct {
	Id          string          `json:"id"`
	Status      string          `json:"status" example:"COMPLETE"`
	CurrentStep string          `json:"current_step" example:"Complete"`
	Request     IngestRequest   `json:"request"`
	Result      *IngestResponse `json:"result,omitempty"`
	Error       *OutgoingError  `json:"error,omitempty"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     *time.Time      `json:"end_time,omitempty"`
}
