// Package memoryDB is an in-process vector index using brute-force cosine
// similarity. It backs tests and offline runs without a Qdrant instance.
package memoryDB

import (
	"context"
	"sync"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB"
	"github.com/akolanti/BookRAG/pkg/logger_i"
)

type Index struct {
	mu        sync.RWMutex
	name      string
	dimension int
	exists    bool
	points    []commonModels.IndexedPoint
	logger    *logger_i.Logger
}

func New(name string, dimension int) *Index {
	return &Index{
		name:      name,
		dimension: dimension,
		logger:    logger_i.NewLogger("memory_index"),
	}
}

func (s *Index) EnsureCollection(ctx context.Context) error {
	if s.dimension <= 0 {
		return appErrors.Validation("invalid dimension %d", s.dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exists = true
	return nil
}

func (s *Index) Upsert(ctx context.Context, chunks []commonModels.Chunk, vectors [][]float32) (int, error) {
	points, err := vectorDB.BuildPoints(chunks, vectors, s.dimension)
	if err != nil {
		return 0, err
	}
	if err := s.EnsureCollection(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append(s.points, points...)
	return len(points), nil
}

func (s *Index) Search(ctx context.Context, vector []float32, topK int, threshold float32, filter *vectorDB.SearchFilter) ([]commonModels.SourceResult, error) {
	if err := vectorDB.ValidateSearch(vector, s.dimension, topK, filter); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, appErrors.Upstream(appErrors.ServiceVectorIndex, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]commonModels.SourceResult, 0, len(s.points))
	for _, p := range s.points {
		if !matches(p.Payload, filter) {
			continue
		}
		score, err := vectorDB.Cosine(p.Vector, vector)
		if err != nil {
			return nil, appErrors.Upstream(appErrors.ServiceVectorIndex, err)
		}
		results = append(results, commonModels.SourceResult{
			Text:    p.Payload.Text,
			Source:  p.Payload.Source,
			Chapter: p.Payload.Chapter,
			Title:   p.Payload.Title,
			Score:   score,
		})
	}
	return vectorDB.Finalize(results, topK, threshold), nil
}

func (s *Index) DeleteCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.FromContext(ctx).Warn("Deleting collection", "collection", s.name, "points", len(s.points))
	s.points = nil
	s.exists = false
	return nil
}

func (s *Index) HealthCheck(ctx context.Context) vectorDB.HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var collections []string
	if s.exists {
		collections = []string{s.name}
	}
	return vectorDB.Healthy(collections)
}

// Len reports how many points are stored.
func (s *Index) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// Points returns a copy of the stored points in insertion order.
func (s *Index) Points() []commonModels.IndexedPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]commonModels.IndexedPoint, len(s.points))
	copy(out, s.points)
	return out
}

func matches(c commonModels.Chunk, filter *vectorDB.SearchFilter) bool {
	if filter == nil {
		return true
	}
	switch filter.Field {
	case commonModels.PayloadChapter:
		return c.Chapter == filter.Value
	case commonModels.PayloadSource:
		return c.Source == filter.Value
	case commonModels.PayloadTitle:
		return c.Title == filter.Value
	}
	return false
}
