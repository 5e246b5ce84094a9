package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/joho/godotenv"
)

// Settings is the runtime configuration. The constants in this package are
// the defaults; every field can be overridden through the environment or a
// .env file in the working directory.
type Settings struct {
	AppName     string
	AppVersion  string
	ListenAddr  string
	APIPrefix   string
	CORSOrigins []string
	LogLevel    slog.Level
	LogJSON     bool

	LLMProvider string

	OpenAIAPIKey   string
	OpenAIBaseURL  string
	ChatModel      string
	EmbeddingModel string

	GoogleAPIKey         string
	GeminiModel          string
	GoogleEmbeddingModel string

	EmbeddingDimensions int

	VectorBackend  string
	QdrantHost     string
	QdrantPort     int
	QdrantAPIKey   string
	QdrantUseTLS   bool
	CollectionName string

	StoreBackend  string
	RedisAddr     string
	RedisPassword string
	PostgresDSN   string

	TopK                int
	SimilarityThreshold float32
	ChunkSize           int
	ChunkOverlap        int
	HistoryWindow       int
	Temperature         float32
	MaxTokens           int
	BookTitle           string

	DocsPath          string
	IngestConcurrency int

	// AdminToken guards the admin routes. Empty disables auth.
	AdminToken string
}

// Load reads .env (if present) and the process environment.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("load .env: %w", err)
	}

	e := &envReader{}
	s := Settings{
		AppName:     e.str("APP_NAME", AppName),
		AppVersion:  e.str("APP_VERSION", AppVersion),
		ListenAddr:  e.str("LISTEN_ADDR", ServerListenAddr),
		APIPrefix:   e.str("API_PREFIX", APIPrefix),
		CORSOrigins: e.list("CORS_ORIGINS", []string{"http://localhost:3000"}),
		LogLevel:    e.level("LOG_LEVEL", slog.LevelDebug),
		LogJSON:     e.boolean("LOG_JSON", false),

		LLMProvider: strings.ToLower(e.str("LLM_PROVIDER", ProviderOpenAI)),

		OpenAIAPIKey:   e.str("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  e.str("OPENAI_BASE_URL", ""),
		ChatModel:      e.str("CHAT_MODEL", DefaultChatModel),
		EmbeddingModel: e.str("EMBEDDING_MODEL", DefaultEmbeddingModel),

		GoogleAPIKey:         e.str("GOOGLE_API_KEY", ""),
		GeminiModel:          e.str("GEMINI_MODEL", GeminiModelName),
		GoogleEmbeddingModel: e.str("GOOGLE_EMBEDDING_MODEL", GoogleEmbeddingModel),

		EmbeddingDimensions: e.integer("EMBEDDING_DIMENSIONS", DefaultEmbeddingDimensions),

		VectorBackend:  strings.ToLower(e.str("VECTOR_BACKEND", VectorBackendQdrant)),
		QdrantHost:     e.str("QDRANT_HOST", QdrantHost),
		QdrantPort:     e.integer("QDRANT_PORT", QdrantGrpcPort),
		QdrantAPIKey:   e.str("QDRANT_API_KEY", ""),
		QdrantUseTLS:   e.boolean("QDRANT_USE_TLS", QdrantUseTLS),
		CollectionName: e.str("QDRANT_COLLECTION", DefaultCollectionName),

		StoreBackend:  strings.ToLower(e.str("STORE_BACKEND", StoreBackendRedis)),
		RedisAddr:     e.str("REDIS_ADDR", RedisAddr),
		RedisPassword: e.str("REDIS_PASSWORD", ""),
		PostgresDSN:   e.str("DATABASE_URL", ""),

		TopK:                e.integer("RAG_TOP_K", DefaultTopK),
		SimilarityThreshold: e.float("RAG_SIMILARITY_THRESHOLD", DefaultSimilarityThreshold),
		ChunkSize:           e.integer("CHUNK_SIZE", DefaultChunkSize),
		ChunkOverlap:        e.integer("CHUNK_OVERLAP", DefaultChunkOverlap),
		HistoryWindow:       e.integer("HISTORY_WINDOW", HistoryWindow),
		Temperature:         e.float("LLM_TEMPERATURE", ModelTemperature),
		MaxTokens:           e.integer("LLM_MAX_TOKENS", ModelMaxTokens),
		BookTitle:           e.str("BOOK_TITLE", DefaultBookTitle),

		DocsPath:          e.str("DOCS_PATH", "./docs"),
		IngestConcurrency: e.integer("INGEST_CONCURRENCY", DefaultIngestConcurrency),

		AdminToken: e.str("ADMIN_TOKEN", ""),
	}

	if len(e.errs) > 0 {
		return s, appErrors.Validation("invalid environment: %s", strings.Join(e.errs, "; "))
	}
	return s, nil
}

// Validate checks cross-field constraints that Load cannot.
func (s Settings) Validate() error {
	var problems []string

	switch s.LLMProvider {
	case ProviderOpenAI:
		if s.OpenAIAPIKey == "" {
			problems = append(problems, "OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderGemini:
		if s.GoogleAPIKey == "" {
			problems = append(problems, "GOOGLE_API_KEY is required for the gemini provider")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown LLM_PROVIDER %q", s.LLMProvider))
	}

	switch s.VectorBackend {
	case VectorBackendQdrant, VectorBackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown VECTOR_BACKEND %q", s.VectorBackend))
	}

	switch s.StoreBackend {
	case StoreBackendRedis, StoreBackendMemory:
	case StoreBackendPostgres:
		if s.PostgresDSN == "" {
			problems = append(problems, "DATABASE_URL is required for the postgres store")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown STORE_BACKEND %q", s.StoreBackend))
	}

	if s.EmbeddingDimensions <= 0 {
		problems = append(problems, "EMBEDDING_DIMENSIONS must be positive")
	}
	if s.ChunkSize <= 0 || s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		problems = append(problems, "CHUNK_OVERLAP must be in [0, CHUNK_SIZE)")
	}
	if s.TopK <= 0 {
		problems = append(problems, "RAG_TOP_K must be positive")
	}
	if s.SimilarityThreshold < -1 || s.SimilarityThreshold > 1 {
		problems = append(problems, "RAG_SIMILARITY_THRESHOLD must be within [-1, 1]")
	}
	if s.HistoryWindow < 0 {
		problems = append(problems, "HISTORY_WINDOW must not be negative")
	}
	if s.IngestConcurrency <= 0 {
		problems = append(problems, "INGEST_CONCURRENCY must be positive")
	}

	if len(problems) > 0 {
		return appErrors.Validation("%s", strings.Join(problems, "; "))
	}
	return nil
}

type envReader struct {
	errs []string
}

func (e *envReader) str(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (e *envReader) integer(key string, fallback int) int {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Sprintf("%s=%q is not an integer", key, raw))
		return fallback
	}
	return v
}

func (e *envReader) float(key string, fallback float32) float32 {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		e.errs = append(e.errs, fmt.Sprintf("%s=%q is not a number", key, raw))
		return fallback
	}
	return float32(v)
}

func (e *envReader) boolean(key string, fallback bool) bool {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Sprintf("%s=%q is not a boolean", key, raw))
		return fallback
	}
	return v
}

func (e *envReader) list(key string, fallback []string) []string {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (e *envReader) level(key string, fallback slog.Level) slog.Level {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		e.errs = append(e.errs, fmt.Sprintf("%s=%q is not a log level", key, raw))
		return fallback
	}
	return lvl
}
