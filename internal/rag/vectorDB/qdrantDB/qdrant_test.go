package qdrantDB

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB"
	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeClient struct {
	exists      bool
	created     int
	fieldIndex  int
	deleted     int
	upserts     []*qdrant.UpsertPoints
	lastQuery   *qdrant.QueryPoints
	hits        []*qdrant.ScoredPoint
	queryErr    error
	upsertErr   error
	deleteErr   error
	collections []string
	listErr     error
}

func (f *fakeClient) CollectionExists(context.Context, string) (bool, error) { return f.exists, nil }

func (f *fakeClient) CreateCollection(context.Context, *qdrant.CreateCollection) error {
	f.created++
	f.exists = true
	return nil
}

func (f *fakeClient) CreateFieldIndex(context.Context, *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error) {
	f.fieldIndex++
	return &qdrant.UpdateResult{}, nil
}

func (f *fakeClient) DeleteCollection(context.Context, string) error {
	f.deleted++
	f.exists = false
	return f.deleteErr
}

func (f *fakeClient) ListCollections(context.Context) ([]string, error) {
	return f.collections, f.listErr
}

func (f *fakeClient) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.upserts = append(f.upserts, req)
	return &qdrant.UpdateResult{}, f.upsertErr
}

func (f *fakeClient) Query(_ context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	f.lastQuery = req
	return f.hits, f.queryErr
}

func (f *fakeClient) Close() error { return nil }

func hit(text, chapter string, score float32) *qdrant.ScoredPoint {
	return &qdrant.ScoredPoint{
		Id:    qdrant.NewIDNum(1),
		Score: score,
		Payload: qdrant.NewValueMap(map[string]any{
			commonModels.PayloadText:    text,
			commonModels.PayloadSource:  chapter + "/index.md",
			commonModels.PayloadChapter: chapter,
			commonModels.PayloadTitle:   "Index",
		}),
	}
}

func TestEnsureCollection_CreatesOnce(t *testing.T) {
	fake := &fakeClient{}
	idx := newIndex(fake, "book", 3)

	require.NoError(t, idx.EnsureCollection(context.Background()))
	require.NoError(t, idx.EnsureCollection(context.Background()))

	assert.Equal(t, 1, fake.created)
	assert.Equal(t, 1, fake.fieldIndex)
}

func TestUpsert_WritesPayload(t *testing.T) {
	fake := &fakeClient{exists: true}
	idx := newIndex(fake, "book", 2)

	chunks := []commonModels.Chunk{
		{Text: "first", Source: "chapter-1/a.md", Chapter: "chapter-1", Title: "A", ChunkIndex: 0},
		{Text: "second", ChunkIndex: 1},
	}
	n, err := idx.Upsert(context.Background(), chunks, [][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, fake.upserts, 1)
	points := fake.upserts[0].GetPoints()
	require.Len(t, points, 2)
	assert.NotEqual(t, points[0].GetId().GetUuid(), points[1].GetId().GetUuid())

	payload := points[1].GetPayload()
	assert.Equal(t, "second", payload[commonModels.PayloadText].GetStringValue())
	assert.Equal(t, "unknown", payload[commonModels.PayloadChapter].GetStringValue())
	assert.Equal(t, int64(1), payload[commonModels.PayloadChunkIndex].GetIntegerValue())
}

func TestUpsert_RejectsBadVectorsBeforeCalling(t *testing.T) {
	fake := &fakeClient{exists: true}
	idx := newIndex(fake, "book", 3)

	_, err := idx.Upsert(context.Background(), []commonModels.Chunk{{Text: "x"}}, [][]float32{{1, 0}})
	assert.True(t, appErrors.IsValidation(err))
	assert.Empty(t, fake.upserts)
}

func TestUpsert_UpstreamFailure(t *testing.T) {
	fake := &fakeClient{exists: true, upsertErr: status.Error(codes.Unavailable, "down")}
	idx := newIndex(fake, "book", 1)

	_, err := idx.Upsert(context.Background(), []commonModels.Chunk{{Text: "x"}}, [][]float32{{1}})
	assert.True(t, appErrors.IsUpstream(err))
}

func TestSearch_BuildsQueryAndFinalizes(t *testing.T) {
	fake := &fakeClient{hits: []*qdrant.ScoredPoint{
		hit("low", "chapter-2", 0.71),
		hit("high", "chapter-2", 0.93),
		hit("below", "chapter-2", 0.4),
	}}
	idx := newIndex(fake, "book", 2)

	results, err := idx.Search(context.Background(), []float32{1, 0}, 5, 0.7, vectorDB.ChapterFilter("chapter-2"))
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "high", results[0].Text)
	assert.Equal(t, "chapter-2", results[0].Chapter)
	assert.Equal(t, "Index", results[0].Title)

	q := fake.lastQuery
	require.NotNil(t, q)
	assert.Equal(t, uint64(5), q.GetLimit())
	assert.InDelta(t, 0.7, q.GetScoreThreshold(), 1e-6)
	require.NotNil(t, q.GetFilter())
	assert.Len(t, q.GetFilter().GetMust(), 1)
}

func TestSearch_MissingCollectionIsEmpty(t *testing.T) {
	fake := &fakeClient{queryErr: status.Error(codes.NotFound, "no collection")}
	idx := newIndex(fake, "book", 2)

	results, err := idx.Search(context.Background(), []float32{1, 0}, 5, 0.7, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Nil(t, fake.lastQuery.GetFilter())
}

func TestSearch_Failures(t *testing.T) {
	fake := &fakeClient{queryErr: errors.New("boom")}
	idx := newIndex(fake, "book", 2)

	_, err := idx.Search(context.Background(), []float32{1, 0}, 5, 0.7, nil)
	assert.True(t, appErrors.IsUpstream(err))

	_, err = idx.Search(context.Background(), []float32{1, 0, 0}, 5, 0.7, nil)
	assert.True(t, appErrors.IsValidation(err))
}

func TestDeleteCollection_ResetsEnsure(t *testing.T) {
	fake := &fakeClient{}
	idx := newIndex(fake, "book", 2)
	require.NoError(t, idx.EnsureCollection(context.Background()))

	fake.deleteErr = status.Error(codes.NotFound, "gone")
	require.NoError(t, idx.DeleteCollection(context.Background()))
	require.NoError(t, idx.EnsureCollection(context.Background()))

	assert.Equal(t, 2, fake.created)
}

func TestHealthCheck(t *testing.T) {
	fake := &fakeClient{collections: []string{"book"}}
	idx := newIndex(fake, "book", 2)

	h := idx.HealthCheck(context.Background())
	assert.True(t, h.Healthy)
	assert.Equal(t, []string{"book"}, h.Collections)

	fake.listErr = errors.New("connection refused")
	h = idx.HealthCheck(context.Background())
	assert.False(t, h.Healthy)
	assert.Equal(t, "unhealthy", h.Status)
	assert.Contains(t, h.Error, "connection refused")
}
