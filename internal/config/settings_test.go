package config

import (
	"log/slog"
	"testing"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() Settings {
	return Settings{
		LLMProvider:         ProviderOpenAI,
		OpenAIAPIKey:        "sk-test",
		EmbeddingDimensions: DefaultEmbeddingDimensions,
		VectorBackend:       VectorBackendQdrant,
		StoreBackend:        StoreBackendRedis,
		TopK:                DefaultTopK,
		SimilarityThreshold: DefaultSimilarityThreshold,
		ChunkSize:           DefaultChunkSize,
		ChunkOverlap:        DefaultChunkOverlap,
		HistoryWindow:       HistoryWindow,
		IngestConcurrency:   1,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"LLM_PROVIDER", "RAG_TOP_K", "CHUNK_SIZE", "QDRANT_COLLECTION", "LOG_LEVEL", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, s.LLMProvider)
	assert.Equal(t, 5, s.TopK)
	assert.InDelta(t, 0.7, s.SimilarityThreshold, 1e-6)
	assert.Equal(t, 800, s.ChunkSize)
	assert.Equal(t, 100, s.ChunkOverlap)
	assert.Equal(t, 12, s.HistoryWindow)
	assert.Equal(t, "physical_ai_book", s.CollectionName)
	assert.Equal(t, "text-embedding-3-small", s.EmbeddingModel)
	assert.Equal(t, 1536, s.EmbeddingDimensions)
	assert.Equal(t, slog.LevelDebug, s.LogLevel)
	assert.Equal(t, []string{"http://localhost:3000"}, s.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("RAG_TOP_K", "3")
	t.Setenv("RAG_SIMILARITY_THRESHOLD", "0.5")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("LOG_LEVEL", "warn")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, s.LLMProvider)
	assert.Equal(t, 3, s.TopK)
	assert.InDelta(t, 0.5, s.SimilarityThreshold, 1e-6)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, s.CORSOrigins)
	assert.Equal(t, slog.LevelWarn, s.LogLevel)
}

func TestLoad_BadNumber(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RAG_TOP_K", "five")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"valid", func(*Settings) {}, false},
		{"missing openai key", func(s *Settings) { s.OpenAIAPIKey = "" }, true},
		{"gemini without key", func(s *Settings) { s.LLMProvider = ProviderGemini }, true},
		{"unknown provider", func(s *Settings) { s.LLMProvider = "llama" }, true},
		{"overlap too large", func(s *Settings) { s.ChunkOverlap = s.ChunkSize }, true},
		{"postgres without dsn", func(s *Settings) { s.StoreBackend = StoreBackendPostgres }, true},
		{"memory backends", func(s *Settings) {
			s.StoreBackend = StoreBackendMemory
			s.VectorBackend = VectorBackendMemory
		}, false},
		{"zero dimensions", func(s *Settings) { s.EmbeddingDimensions = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, appErrors.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}
