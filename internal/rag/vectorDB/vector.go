package vectorDB

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/google/uuid"
)

// SearchFilter restricts a search to points whose payload field equals Value.
type SearchFilter struct {
	Field string
	Value string
}

func ChapterFilter(chapter string) *SearchFilter {
	if chapter == "" {
		return nil
	}
	return &SearchFilter{Field: commonModels.PayloadChapter, Value: chapter}
}

type HealthStatus struct {
	Healthy     bool     `json:"-"`
	Status      string   `json:"status"`
	Collections []string `json:"collections,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func Healthy(collections []string) HealthStatus {
	return HealthStatus{Healthy: true, Status: "healthy", Collections: collections}
}

func Unhealthy(err error) HealthStatus {
	return HealthStatus{Status: "unhealthy", Error: err.Error()}
}

// VectorIndex is a collection of (vector, payload) points in a similarity
// search service.
type VectorIndex interface {
	EnsureCollection(ctx context.Context) error
	// Upsert stores every chunk under a fresh id and returns how many were written.
	Upsert(ctx context.Context, chunks []commonModels.Chunk, vectors [][]float32) (int, error)
	// Search returns at most topK results scoring at least threshold, best first.
	Search(ctx context.Context, vector []float32, topK int, threshold float32, filter *SearchFilter) ([]commonModels.SourceResult, error)
	// DeleteCollection drops every point. It is only ever called explicitly.
	DeleteCollection(ctx context.Context) error
	// HealthCheck reports problems instead of returning them.
	HealthCheck(ctx context.Context) HealthStatus
}

// BuildPoints validates chunks and vectors at the index boundary.
func BuildPoints(chunks []commonModels.Chunk, vectors [][]float32, dimension int) ([]commonModels.IndexedPoint, error) {
	if len(chunks) != len(vectors) {
		return nil, appErrors.Validation("got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	points := make([]commonModels.IndexedPoint, len(chunks))
	for i, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			return nil, appErrors.Validation("chunk %d has no text", i)
		}
		if len(vectors[i]) != dimension {
			return nil, appErrors.Validation("vector %d has dimension %d, collection expects %d", i, len(vectors[i]), dimension)
		}
		points[i] = commonModels.IndexedPoint{
			Id:      uuid.NewString(),
			Vector:  vectors[i],
			Payload: c.Normalize(),
		}
	}
	return points, nil
}

// ValidateSearch checks the query side of the boundary.
func ValidateSearch(vector []float32, dimension, topK int, filter *SearchFilter) error {
	if len(vector) != dimension {
		return appErrors.Validation("query vector has dimension %d, collection expects %d", len(vector), dimension)
	}
	if topK <= 0 {
		return appErrors.Validation("topK must be positive, got %d", topK)
	}
	if filter != nil {
		switch filter.Field {
		case commonModels.PayloadChapter, commonModels.PayloadSource, commonModels.PayloadTitle:
		default:
			return appErrors.Validation("cannot filter on %q", filter.Field)
		}
	}
	return nil
}

// Finalize drops results under threshold, orders by score and caps at topK.
// Backends apply it to whatever the engine returned.
func Finalize(results []commonModels.SourceResult, topK int, threshold float32) []commonModels.SourceResult {
	kept := make([]commonModels.SourceResult, 0, len(results))
	for _, r := range results {
		if r.Score >= threshold {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	if topK >= 0 && len(kept) > topK {
		kept = kept[:topK]
	}
	return kept
}

func Cosine(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb))), nil
}
