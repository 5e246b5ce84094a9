package googleEmbedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/rag/embedding"
	"github.com/akolanti/BookRAG/pkg/logger_i"
	"google.golang.org/genai"
)

const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

type Config struct {
	APIKey     string
	Model      string
	Dimensions int
	HTTPClient *http.Client
}

type embedFunc func(ctx context.Context, model string, contents []*genai.Content, conf *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)

type client struct {
	embed     embedFunc
	model     string
	dimension int32
	logger    *logger_i.Logger
}

func New(ctx context.Context, cfg Config) (embedding.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, appErrors.Validation("google api key is required")
	}
	if cfg.Model == "" || cfg.Dimensions <= 0 {
		return nil, appErrors.Validation("embedding model and a positive dimension are required")
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create google embedding client: %w", err)
	}

	logger := logger_i.NewLogger("google_embedding")
	logger.Info("Google Embedding client created", "model", cfg.Model)
	return &client{
		embed:     c.Models.EmbedContent,
		model:     cfg.Model,
		dimension: int32(cfg.Dimensions),
		logger:    logger,
	}, nil
}

func (c *client) Dimension() int { return int(c.dimension) }

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := c.logger.FromContext(ctx)
	res, err := c.doCall(ctx, getContent([]string{query}), taskQuery, log)
	if err != nil {
		log.Error("Error getting query embedding from Google", "error", err)
		return nil, appErrors.Embedding(err)
	}
	vectors := collect(res)
	if err := embedding.CheckBatch(vectors, 1, int(c.dimension)); err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// BatchEmbedding sends texts in slices the API accepts; any failing slice
// fails the whole batch.
func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	log := c.logger.FromContext(ctx).With("count", len(texts))

	vectors := make([][]float32, 0, len(texts))
	for _, part := range partition(texts, maxTextsPerCall) {
		res, err := c.doCall(ctx, getContent(part), taskDocument, log)
		if err != nil {
			log.Error("Error getting Embeddings from Google", "error", err)
			return nil, appErrors.Embedding(err)
		}
		vectors = append(vectors, collect(res)...)
	}

	if err := embedding.CheckBatch(vectors, len(texts), int(c.dimension)); err != nil {
		log.Error("embedding response rejected", "error", err)
		return nil, err
	}
	return vectors, nil
}

func collect(res *genai.EmbedContentResponse) [][]float32 {
	if res == nil {
		return nil
	}
	out := make([][]float32, 0, len(res.Embeddings))
	for _, e := range res.Embeddings {
		if e == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, e.Values)
	}
	return out
}
