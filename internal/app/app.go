// Package app builds the object graph shared by the HTTP server, the CLI
// and the MCP server. Every collaborator is constructed once here and passed
// down explicitly.
package app

import (
	"context"
	"fmt"

	"github.com/akolanti/BookRAG/internal/chat"
	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/internal/customHttpClient"
	"github.com/akolanti/BookRAG/internal/data/postgresStore"
	"github.com/akolanti/BookRAG/internal/data/redisStore"
	"github.com/akolanti/BookRAG/internal/data/store"
	"github.com/akolanti/BookRAG/internal/domain/chatModel"
	"github.com/akolanti/BookRAG/internal/domain/jobModel"
	"github.com/akolanti/BookRAG/internal/job"
	"github.com/akolanti/BookRAG/internal/rag"
	"github.com/akolanti/BookRAG/internal/rag/embedding"
	"github.com/akolanti/BookRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/BookRAG/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/BookRAG/internal/rag/ingest"
	"github.com/akolanti/BookRAG/internal/rag/llm"
	"github.com/akolanti/BookRAG/internal/rag/llm/gemini"
	"github.com/akolanti/BookRAG/internal/rag/llm/openaiLLM"
	"github.com/akolanti/BookRAG/internal/rag/splitter"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/BookRAG/internal/worker"
	"github.com/akolanti/BookRAG/pkg/logger_i"
)

type App struct {
	Settings config.Settings

	Index    vectorDB.VectorIndex
	Embedder embedding.Embedder
	Provider llm.Provider

	Conversations chatModel.ConversationStore
	Documents     chatModel.DocumentStore
	JobStore      jobModel.JobStore

	Answers  rag.Service
	Chat     *chat.Service
	Ingestor *ingest.Ingestor
	Jobs     *job.Service
	Pool     *worker.Pool
}

// Build validates settings and wires every component. Clients opened here
// are closed when ctx is cancelled.
func Build(ctx context.Context, settings config.Settings) (*App, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	logger := logger_i.NewLogger("app")

	a := &App{Settings: settings}

	var err error
	if a.Conversations, a.Documents, a.JobStore, err = buildStores(ctx, settings, logger); err != nil {
		return nil, err
	}
	if a.Index, err = buildIndex(ctx, settings); err != nil {
		return nil, err
	}
	if a.Embedder, err = buildEmbedder(ctx, settings); err != nil {
		return nil, err
	}
	if a.Provider, err = buildProvider(ctx, settings); err != nil {
		return nil, err
	}

	chunker, err := splitter.New(settings.ChunkSize, settings.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	a.Answers = rag.NewService(a.Embedder, a.Index, a.Provider, rag.Options{
		TopK:          settings.TopK,
		Threshold:     settings.SimilarityThreshold,
		HistoryWindow: settings.HistoryWindow,
		BookTitle:     settings.BookTitle,
	})
	a.Chat = chat.NewService(a.Answers, a.Conversations)
	a.Ingestor = ingest.NewIngestor(chunker, a.Embedder, a.Index, a.Documents, settings.IngestConcurrency)
	a.Jobs = job.InitJobService(job.ServiceConfig{JobStore: a.JobStore})
	a.Pool = worker.NewPool(a.Jobs, a.Ingestor)

	logger.Info("Application wired",
		"provider", settings.LLMProvider, "vectorBackend", settings.VectorBackend, "storeBackend", settings.StoreBackend)
	return a, nil
}

func buildStores(ctx context.Context, s config.Settings, logger *logger_i.Logger) (chatModel.ConversationStore, chatModel.DocumentStore, jobModel.JobStore, error) {
	switch s.StoreBackend {
	case config.StoreBackendPostgres:
		pg, err := postgresStore.Open(ctx, s.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		// jobs are short-lived and stay in process
		return pg, pg, store.InitInMemoryJobStore(), nil

	case config.StoreBackendRedis:
		chatDB, chatErr := redisStore.Open(ctx, redisStore.Options{Addr: s.RedisAddr, Password: s.RedisPassword, DB: config.RedisChatStore})
		jobDB, jobErr := redisStore.Open(ctx, redisStore.Options{Addr: s.RedisAddr, Password: s.RedisPassword, DB: config.RedisJobStore})
		if chatErr == nil && jobErr == nil {
			return store.NewRedisConversationStore(chatDB), store.NewRedisDocumentStore(chatDB), store.NewRedisJobStore(jobDB), nil
		}
		if !config.FALLBACK_REDIS_TO_MEMORY {
			if chatErr != nil {
				return nil, nil, nil, chatErr
			}
			return nil, nil, nil, jobErr
		}
		logger.Error("Redis stores are offline, falling back to in-memory stores", "chatErr", chatErr, "jobErr", jobErr)
	}

	return store.InitInMemoryConversationStore(), store.InitInMemoryDocumentStore(), store.InitInMemoryJobStore(), nil
}

func buildIndex(ctx context.Context, s config.Settings) (vectorDB.VectorIndex, error) {
	if s.VectorBackend == config.VectorBackendMemory {
		return memoryDB.New(s.CollectionName, s.EmbeddingDimensions), nil
	}
	return qdrantDB.New(ctx, qdrantDB.Config{
		Host:       s.QdrantHost,
		Port:       s.QdrantPort,
		APIKey:     s.QdrantAPIKey,
		UseTLS:     s.QdrantUseTLS,
		Collection: s.CollectionName,
		Dimension:  s.EmbeddingDimensions,
	})
}

func buildEmbedder(ctx context.Context, s config.Settings) (embedding.Embedder, error) {
	httpClient := customHttpClient.NewClient(config.ProviderHTTPTimeout)
	switch s.LLMProvider {
	case config.ProviderGemini:
		return googleEmbedding.New(ctx, googleEmbedding.Config{
			APIKey:     s.GoogleAPIKey,
			Model:      s.GoogleEmbeddingModel,
			Dimensions: s.EmbeddingDimensions,
			HTTPClient: httpClient,
		})
	case config.ProviderOpenAI:
		return openaiEmbedding.New(openaiEmbedding.Config{
			APIKey:     s.OpenAIAPIKey,
			BaseURL:    s.OpenAIBaseURL,
			Model:      s.EmbeddingModel,
			Dimensions: s.EmbeddingDimensions,
			HTTPClient: httpClient,
		})
	}
	return nil, fmt.Errorf("unsupported provider %q", s.LLMProvider)
}

func buildProvider(ctx context.Context, s config.Settings) (llm.Provider, error) {
	// no client deadline: answers stream for as long as the caller's context
	// allows, and single completions are bounded by Options.Timeout
	httpClient := customHttpClient.NewClient(0)
	switch s.LLMProvider {
	case config.ProviderGemini:
		return gemini.New(ctx, gemini.Config{
			APIKey:     s.GoogleAPIKey,
			Options:    llm.Options{Model: s.GeminiModel, Temperature: s.Temperature, MaxTokens: s.MaxTokens, Timeout: config.ProviderHTTPTimeout},
			HTTPClient: httpClient,
		})
	case config.ProviderOpenAI:
		return openaiLLM.New(openaiLLM.Config{
			APIKey:     s.OpenAIAPIKey,
			BaseURL:    s.OpenAIBaseURL,
			Options:    llm.Options{Model: s.ChatModel, Temperature: s.Temperature, MaxTokens: s.MaxTokens, Timeout: config.ProviderHTTPTimeout},
			HTTPClient: httpClient,
		})
	}
	return nil, fmt.Errorf("unsupported provider %q", s.LLMProvider)
}
