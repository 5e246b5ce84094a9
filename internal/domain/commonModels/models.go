package commonModels

import (
	"time"

	"github.com/akolanti/BookRAG/internal/config"
)

// Payload keys stored next to every vector.
const (
	PayloadText       = "text"
	PayloadSource     = "source"
	PayloadChapter    = "chapter"
	PayloadTitle      = "title"
	PayloadChunkIndex = "chunk_index"
)

// Chunk is one segment of a source file, ready to embed. It is never stored
// as is; the index keeps an IndexedPoint built from it.
type Chunk struct {
	Text       string `json:"text"`
	Source     string `json:"source"`
	Chapter    string `json:"chapter"`
	Title      string `json:"title"`
	ChunkIndex int    `json:"chunk_index"`
}

// Normalize substitutes the defaults for missing metadata.
func (c Chunk) Normalize() Chunk {
	if c.Source == "" {
		c.Source = config.UnknownChapter
	}
	if c.Chapter == "" {
		c.Chapter = config.UnknownChapter
	}
	if c.ChunkIndex < 0 {
		c.ChunkIndex = 0
	}
	return c
}

// Payload is the exact map written to the vector index.
func (c Chunk) Payload() map[string]any {
	n := c.Normalize()
	return map[string]any{
		PayloadText:       n.Text,
		PayloadSource:     n.Source,
		PayloadChapter:    n.Chapter,
		PayloadTitle:      n.Title,
		PayloadChunkIndex: int64(n.ChunkIndex),
	}
}

type IndexedPoint struct {
	Id      string
	Vector  []float32
	Payload Chunk
}

// SourceResult is a retrieved chunk with its similarity score. It only
// reaches storage as part of an assistant message.
type SourceResult struct {
	Text    string  `json:"text"`
	Source  string  `json:"source"`
	Chapter string  `json:"chapter"`
	Title   string  `json:"title"`
	Score   float32 `json:"score"`
}

// Document is the bookkeeping row for one ingested file.
type Document struct {
	Id         string         `json:"id"`
	Title      string         `json:"title"`
	SourcePath string         `json:"source_path"`
	ChunkCount int            `json:"chunk_count"`
	IndexedAt  time.Time      `json:"indexed_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type FileStage string

const (
	StagePending  FileStage = "pending"
	StageRead     FileStage = "read"
	StageChunked  FileStage = "chunked"
	StageEmbedded FileStage = "embedded"
	StageIndexed  FileStage = "indexed"
	StageRecorded FileStage = "recorded"
)

type FailedFile struct {
	File  string    `json:"file"`
	Error string    `json:"error"`
	Stage FileStage `json:"stage"`
}

type IngestSummary struct {
	TotalFiles  int          `json:"total_files"`
	Ingested    int          `json:"ingested"`
	Failed      int          `json:"failed"`
	TotalChunks int          `json:"total_chunks"`
	FailedFiles []FailedFile `json:"failed_files"`
}

type IngestRequest struct {
	DocsPath      string `json:"docs_path"`
	ClearExisting bool   `json:"clear_existing"`
}
