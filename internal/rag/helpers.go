package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/metrics"
	"github.com/akolanti/BookRAG/internal/rag/llm"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB"
	"github.com/akolanti/BookRAG/pkg/logger_i"
)

const contextSeparator = "\n\n---\n\n"

// BuildSearchQuery prepends the selected passage so retrieval favours chunks
// near it.
func BuildSearchQuery(question, selectedText string) string {
	if selectedText == "" {
		return question
	}
	return selectedText + "\n\n" + question
}

// BuildContext numbers sources from 1 in retrieval order.
func BuildContext(sources []commonModels.SourceResult) string {
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = fmt.Sprintf("[Source %d - %s (%s)]\n%s", i+1, s.Title, s.Chapter, s.Text)
	}
	return strings.Join(parts, contextSeparator)
}

// BuildMessages returns the system prompt, the last window history entries
// oldest first, then the question.
func BuildMessages(bookTitle string, req AnswerRequest, sources []commonModels.SourceResult, window int) []llm.Message {
	system := SystemPrompt(bookTitle, req.SelectedText)
	if len(sources) > 0 {
		system += relevantContentHeader + BuildContext(sources)
	}

	history := req.History
	if window >= 0 && len(history) > window {
		history = history[len(history)-window:]
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Question})
	return messages
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, query string) ([]float32, error) {
	log.Debug("Retrieve", "step", "embedding")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics(metrics.Embedding, time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, query)
}

func (s *service) executeVectorSearchStep(ctx context.Context, log *logger_i.Logger, vector []float32, topK int, filter *vectorDB.SearchFilter) ([]commonModels.SourceResult, error) {
	log.Debug("Retrieve", "step", "vector_search", "topK", topK)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics(metrics.VectorSearch, time.Since(start)) }()

	return s.index.Search(ctx, vector, topK, s.opts.Threshold, filter)
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, messages []llm.Message) (string, error) {
	log.Debug("Answer", "step", "llm_generation", "messages", len(messages))

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics(metrics.LLMGeneration, time.Since(start)) }()

	return s.provider.Generate(ctx, messages)
}
