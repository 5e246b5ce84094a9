package memoryDB

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unit returns a 2D unit vector at the given angle in degrees.
func unit(deg float64) []float32 {
	r := deg * math.Pi / 180
	return []float32{float32(math.Cos(r)), float32(math.Sin(r))}
}

func seeded(t *testing.T) *Index {
	t.Helper()
	idx := New("book", 2)
	require.NoError(t, idx.EnsureCollection(context.Background()))

	var chunks []commonModels.Chunk
	var vectors [][]float32
	for i, deg := range []float64{0, 10, 20, 30, 40, 50, 60, 90, 120, 180} {
		chapter := "chapter-1"
		if i%2 == 1 {
			chapter = "chapter-2"
		}
		chunks = append(chunks, commonModels.Chunk{
			Text:       fmt.Sprintf("angle %v", deg),
			Source:     chapter + "/intro.md",
			Chapter:    chapter,
			Title:      "Intro",
			ChunkIndex: i,
		})
		vectors = append(vectors, unit(deg))
	}
	n, err := idx.Upsert(context.Background(), chunks, vectors)
	require.NoError(t, err)
	require.Equal(t, 10, n)
	return idx
}

func TestSearch_ThresholdTopKOrder(t *testing.T) {
	idx := seeded(t)

	results, err := idx.Search(context.Background(), unit(0), 5, 0.7, nil)
	require.NoError(t, err)

	// cos(0..40deg) >= 0.766, cos(50deg) = 0.643
	require.Len(t, results, 5)
	for i, r := range results {
		assert.GreaterOrEqual(t, r.Score, float32(0.7))
		if i > 0 {
			assert.LessOrEqual(t, r.Score, results[i-1].Score)
		}
	}
	assert.Equal(t, "angle 0", results[0].Text)

	few, err := idx.Search(context.Background(), unit(0), 5, 0.9, nil)
	require.NoError(t, err)
	assert.Len(t, few, 3, "only 0, 10 and 20 degrees clear 0.9")
}

func TestSearch_ChapterFilter(t *testing.T) {
	idx := seeded(t)

	results, err := idx.Search(context.Background(), unit(0), 10, -1, vectorDB.ChapterFilter("chapter-2"))
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, "chapter-2", r.Chapter)
	}
}

func TestSearch_RejectsWrongDimension(t *testing.T) {
	idx := seeded(t)
	_, err := idx.Search(context.Background(), []float32{1, 0, 0}, 5, 0.7, nil)
	assert.True(t, appErrors.IsValidation(err))
}

func TestUpsert_FreshIdsNoDedup(t *testing.T) {
	idx := New("book", 2)
	chunk := []commonModels.Chunk{{Text: "same", Source: "a.md"}}

	_, err := idx.Upsert(context.Background(), chunk, [][]float32{unit(0)})
	require.NoError(t, err)
	_, err = idx.Upsert(context.Background(), chunk, [][]float32{unit(0)})
	require.NoError(t, err)

	points := idx.Points()
	require.Len(t, points, 2)
	assert.NotEqual(t, points[0].Id, points[1].Id)
}

func TestDeleteCollectionAndHealth(t *testing.T) {
	idx := seeded(t)
	assert.Equal(t, []string{"book"}, idx.HealthCheck(context.Background()).Collections)

	require.NoError(t, idx.DeleteCollection(context.Background()))
	assert.Zero(t, idx.Len())

	h := idx.HealthCheck(context.Background())
	assert.True(t, h.Healthy)
	assert.Empty(t, h.Collections)
}
