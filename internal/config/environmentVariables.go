package config

import (
	"log/slog"
	"time"
)

const (
	AppName    = "Physical AI Book RAG"
	AppVersion = "1.0.0"

	LOG_LEVEL_PROD              = slog.LevelInfo
	FALLBACK_REDIS_TO_MEMORY    = true //if redis init fails, the stores fall back to the in-memory implementations
	TRACE_ID_KEY                = "traceId"
	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//providers
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	//backends
	VectorBackendQdrant  = "qdrant"
	VectorBackendMemory  = "memory"
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"

	//embeddings
	DefaultEmbeddingModel      = "text-embedding-3-small"
	DefaultEmbeddingDimensions = 1536
	GoogleEmbeddingModel       = "gemini-embedding-001"
	DefaultCollectionName      = "physical_ai_book"

	//llm
	DefaultChatModel         = "gpt-4o-mini"
	GeminiModelName          = "gemini-2.5-flash"
	ModelTemperature float32 = 0.3
	ModelMaxTokens           = 1500
	DefaultBookTitle         = "Physical AI: From Perception to Action"

	//rag
	DefaultTopK                        = 5
	DefaultSimilarityThreshold float32 = 0.7
	DefaultChunkSize                   = 800
	DefaultChunkOverlap                = 100
	HistoryWindow                      = 12
	ConversationTitleLength            = 80
	DefaultConversationListLimit       = 20
	DefaultIngestConcurrency           = 1
	ChapterDirPrefix                   = "chapter-"
	UnknownChapter                     = "unknown"
	EmbeddingBatchSize                 = 100
	CodeBlockPlaceholder               = "[code example]"

	//async ingestion jobs
	MaxWorkerCount    int64 = 4
	MinWorkerCount    int64 = 1
	IdleWorkerTimeout       = 1 * time.Minute
	IngestJobTimeout        = 30 * time.Minute
	DefaultJobListLimit     = 20

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 60 * time.Second //streaming handlers clear their own deadline
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second
	QueryTimeout           = 60 * time.Second

	//server listening port
	ServerListenAddr = ":8000"
	APIPrefix        = "/api/v1"

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantHost             = "localhost"
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1                //2-5 is preferred for prod according to documentation
	QdrantKeepAliveTimeout = 30 * time.Second //5 * time.Minute for prod maybe- fine tune for performance

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second
	ProviderHTTPTimeout = 120 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore  = 0
	RedisChatStore = 1

	//redis timeouts
	RedisJobStoreTTL    = 24 * time.Hour
	RedisPingTimeout    = 3 * time.Second
	RedisIOTimeout      = 30 * time.Second
	PostgresPingTimeout = 5 * time.Second
)
