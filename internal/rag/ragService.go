package rag

import (
	"context"
	"strings"
	"time"

	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/metrics"
	"github.com/akolanti/BookRAG/internal/rag/embedding"
	"github.com/akolanti/BookRAG/internal/rag/llm"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB"
	"github.com/akolanti/BookRAG/pkg/logger_i"
)

/*
OPAQUE INTERFACE
---------------------------------------------------------
Service is the public contract used by the chat layer, the HTTP search
handler, the MCP tools and the CLI. The private service struct owns the
embedder, the index and the model provider; callers never reach them
directly, and tests swap them through NewService.
*/

type Service interface {
	// Retrieve embeds query and returns ranked chunks above the threshold.
	// topK <= 0 uses the configured default.
	Retrieve(ctx context.Context, query string, filter *vectorDB.SearchFilter, topK int) ([]commonModels.SourceResult, error)
	Answer(ctx context.Context, req AnswerRequest) (AnswerResult, error)
	// StreamAnswer retrieves before returning, so a retrieval failure never
	// yields a stream.
	StreamAnswer(ctx context.Context, req AnswerRequest) (*AnswerStream, error)
}

type AnswerRequest struct {
	Question     string
	History      []llm.Message
	SelectedText string
	// Chapter restricts retrieval to one chapter when set.
	Chapter string
}

type AnswerResult struct {
	Answer  string                      `json:"answer"`
	Sources []commonModels.SourceResult `json:"sources"`
}

type Options struct {
	TopK          int
	Threshold     float32
	HistoryWindow int
	BookTitle     string
}

func DefaultOptions() Options {
	return Options{
		TopK:          config.DefaultTopK,
		Threshold:     config.DefaultSimilarityThreshold,
		HistoryWindow: config.HistoryWindow,
		BookTitle:     config.DefaultBookTitle,
	}
}

type service struct {
	embedder embedding.Embedder
	index    vectorDB.VectorIndex
	provider llm.Provider
	opts     Options
	logger   *logger_i.Logger
}

func NewService(embedder embedding.Embedder, index vectorDB.VectorIndex, provider llm.Provider, opts Options) Service {
	return &service{
		embedder: embedder,
		index:    index,
		provider: provider,
		opts:     opts,
		logger:   logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) Retrieve(ctx context.Context, query string, filter *vectorDB.SearchFilter, topK int) ([]commonModels.SourceResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, appErrors.Validation("query is empty")
	}
	if topK <= 0 {
		topK = s.opts.TopK
	}
	log := s.logger.FromContext(ctx)

	vector, err := s.executeEmbeddingStep(ctx, log, query)
	if err != nil {
		log.Error("Embedding the query failed", "error", err)
		return nil, err
	}

	sources, err := s.executeVectorSearchStep(ctx, log, vector, topK, filter)
	if err != nil {
		log.Error("Vector search failed", "error", err)
		return nil, err
	}
	log.Debug("Retrieve", "sources", len(sources))
	return sources, nil
}

func (s *service) prepare(ctx context.Context, req AnswerRequest) ([]commonModels.SourceResult, []llm.Message, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, nil, appErrors.Validation("question is empty")
	}
	query := BuildSearchQuery(req.Question, req.SelectedText)
	sources, err := s.Retrieve(ctx, query, vectorDB.ChapterFilter(req.Chapter), s.opts.TopK)
	if err != nil {
		return nil, nil, err
	}
	return sources, BuildMessages(s.opts.BookTitle, req, sources, s.opts.HistoryWindow), nil
}

func (s *service) Answer(ctx context.Context, req AnswerRequest) (AnswerResult, error) {
	start := time.Now()
	log := s.logger.FromContext(ctx)

	sources, messages, err := s.prepare(ctx, req)
	if err != nil {
		metrics.CaptureAnswerMetrics("error", time.Since(start))
		return AnswerResult{}, err
	}

	answer, err := s.executeLLMStep(ctx, log, messages)
	if err != nil {
		log.Error("Generation failed", "error", err)
		metrics.CaptureAnswerMetrics("error", time.Since(start))
		return AnswerResult{}, err
	}

	metrics.CaptureAnswerMetrics("success", time.Since(start))
	return AnswerResult{Answer: answer, Sources: sources}, nil
}

func (s *service) StreamAnswer(ctx context.Context, req AnswerRequest) (*AnswerStream, error) {
	sources, messages, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return startStream(ctx, s.provider, sources, messages, s.logger.FromContext(ctx)), nil
}
