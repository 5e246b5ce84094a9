package openaiEmbedding

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/rag/embedding"
	"github.com/akolanti/BookRAG/pkg/logger_i"
	openai "github.com/sashabaranov/go-openai"
)

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	HTTPClient *http.Client
}

type client struct {
	api       *openai.Client
	model     string
	dimension int
	logger    *logger_i.Logger
}

func New(cfg Config) (embedding.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, appErrors.Validation("openai api key is required")
	}
	if cfg.Model == "" || cfg.Dimensions <= 0 {
		return nil, appErrors.Validation("embedding model and a positive dimension are required")
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}

	return &client{
		api:       openai.NewClientWithConfig(oc),
		model:     cfg.Model,
		dimension: cfg.Dimensions,
		logger:    logger_i.NewLogger("openai_embedding"),
	}, nil
}

func (c *client) Dimension() int { return c.dimension }

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.BatchEmbedding(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	log := c.logger.FromContext(ctx)
	log.Debug("requesting embeddings", "count", len(texts), "model", c.model)

	req := openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: texts,
	}
	// only the v3 models accept a custom output size
	if strings.HasPrefix(c.model, "text-embedding-3") {
		req.Dimensions = c.dimension
	}

	resp, err := c.api.CreateEmbeddings(ctx, req)
	if err != nil {
		log.Error("embedding request failed", "error", err, "count", len(texts))
		return nil, appErrors.Embedding(fmt.Errorf("create openai embeddings: %w", err))
	}

	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	vectors := make([][]float32, len(data))
	for i, d := range data {
		vectors[i] = d.Embedding
	}
	if err := embedding.CheckBatch(vectors, len(texts), c.dimension); err != nil {
		log.Error("embedding response rejected", "error", err)
		return nil, err
	}
	return vectors, nil
}
