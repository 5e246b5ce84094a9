package embedding

import (
	"context"
	"fmt"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
)

// Embedder turns text into vectors of a fixed dimension. A batch either
// succeeds for every text or fails as a whole with an embedding failure.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// CheckBatch verifies that a provider answered with one vector of the
// expected dimension per input.
func CheckBatch(vectors [][]float32, count, dimension int) error {
	if len(vectors) != count {
		return appErrors.Embedding(fmt.Errorf("expected %d vectors, got %d", count, len(vectors)))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return appErrors.Embedding(fmt.Errorf("vector %d is empty", i))
		}
		if dimension > 0 && len(v) != dimension {
			return appErrors.Embedding(fmt.Errorf("vector %d has dimension %d, expected %d", i, len(v), dimension))
		}
	}
	return nil
}
