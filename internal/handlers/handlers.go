package handlers

import (
	"github.com/akolanti/BookRAG/internal/api"
	"github.com/akolanti/BookRAG/internal/chat"
	"github.com/akolanti/BookRAG/internal/job"
	"github.com/akolanti/BookRAG/internal/rag"
	"github.com/akolanti/BookRAG/internal/rag/ingest"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB"
	"github.com/akolanti/BookRAG/pkg/logger_i"
)

// Handler serves every API route. Collaborators are injected once at
// startup; the handler holds no other state.
type Handler struct {
	chat     *chat.Service
	answers  rag.Service
	ingestor *ingest.Ingestor
	jobs     *job.Service
	index    vectorDB.VectorIndex
	info     api.ServiceInfo
	prefix   string
	logger   *logger_i.Logger
}

type Dependencies struct {
	Chat     *chat.Service
	Answers  rag.Service
	Ingestor *ingest.Ingestor
	Jobs     *job.Service
	Index    vectorDB.VectorIndex
	AppName  string
	Version  string
	// Prefix is the API mount point, used to build status URLs.
	Prefix string
}

func New(deps Dependencies) *Handler {
	return &Handler{
		chat:     deps.Chat,
		answers:  deps.Answers,
		ingestor: deps.Ingestor,
		jobs:     deps.Jobs,
		index:    deps.Index,
		info: api.ServiceInfo{
			Name:    deps.AppName,
			Version: deps.Version,
			Docs:    "/swagger/index.html",
			Status:  "running",
		},
		prefix: deps.Prefix,
		logger: logger_i.NewLogger("RequestHandler"),
	}
}
