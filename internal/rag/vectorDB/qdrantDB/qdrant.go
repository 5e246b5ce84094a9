package qdrantDB

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB"
	"github.com/akolanti/BookRAG/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

// pointsClient is the subset of *qdrant.Client the index uses.
type pointsClient interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	CreateFieldIndex(ctx context.Context, request *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error)
	DeleteCollection(ctx context.Context, collectionName string) error
	ListCollections(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Close() error
}

type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Dimension  int
}

type Index struct {
	client     pointsClient
	collection string
	dimension  int
	ensured    atomic.Bool
	logger     *logger_i.Logger
}

// New dials Qdrant over gRPC and closes the connection when ctx ends.
func New(ctx context.Context, cfg Config) (*Index, error) {
	if cfg.Collection == "" {
		return nil, appErrors.Validation("empty collection name")
	}
	if cfg.Dimension <= 0 {
		return nil, appErrors.Validation("invalid dimension %d", cfg.Dimension)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		APIKey:   cfg.APIKey,
		UseTLS:   cfg.UseTLS,
		PoolSize: uint(config.QdrantPoolSize),
		GrpcOptions: []grpc.DialOption{
			grpc.WithKeepaliveParams(keepalive.ClientParameters{
				Time:                config.QdrantKeepAliveTimeout,
				Timeout:             config.QdrantKeepAliveTimeout / 3,
				PermitWithoutStream: true,
			}),
		},
	})
	if err != nil {
		return nil, appErrors.Upstream(appErrors.ServiceVectorIndex, fmt.Errorf("connect qdrant: %w", err))
	}

	idx := newIndex(client, cfg.Collection, cfg.Dimension)
	go idx.closeOnDone(ctx)
	return idx, nil
}

func newIndex(client pointsClient, collection string, dimension int) *Index {
	return &Index{
		client:     client,
		collection: collection,
		dimension:  dimension,
		logger:     logger_i.NewLogger("Qdrant").With("collection", collection),
	}
}

func (db *Index) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	db.logger.Info("Shutting down Qdrant")
	if err := db.client.Close(); err != nil {
		db.logger.Error("could not close Qdrant", "error", err)
		return
	}
	db.logger.Info("Closed Qdrant")
}

func (db *Index) EnsureCollection(ctx context.Context) error {
	if db.ensured.Load() {
		return nil
	}
	log := db.logger.FromContext(ctx)

	exists, err := db.client.CollectionExists(ctx, db.collection)
	if err != nil {
		return appErrors.Upstream(appErrors.ServiceVectorIndex, fmt.Errorf("check collection: %w", err))
	}
	if !exists {
		log.Info("Creating collection", "dimension", db.dimension)
		err = db.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: db.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(db.dimension),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil && status.Code(err) != codes.AlreadyExists {
			return appErrors.Upstream(appErrors.ServiceVectorIndex, fmt.Errorf("create collection: %w", err))
		}
		// keyword index so chapter filters stay cheap
		_, err = db.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: db.collection,
			FieldName:      commonModels.PayloadChapter,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			log.Warn("could not create chapter payload index", "error", err)
		}
	}
	db.ensured.Store(true)
	return nil
}

func (db *Index) Upsert(ctx context.Context, chunks []commonModels.Chunk, vectors [][]float32) (int, error) {
	points, err := vectorDB.BuildPoints(chunks, vectors, db.dimension)
	if err != nil {
		return 0, err
	}
	if len(points) == 0 {
		return 0, nil
	}
	if err := db.EnsureCollection(ctx); err != nil {
		return 0, err
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(p.Id),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(p.Payload.Payload()),
		}
	}

	_, err = db.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			// collection dropped behind our back
			db.ensured.Store(false)
		}
		return 0, appErrors.Upstream(appErrors.ServiceVectorIndex, fmt.Errorf("qdrant upsert failed: %w", err))
	}
	return len(points), nil
}

func (db *Index) Search(ctx context.Context, vector []float32, topK int, threshold float32, filter *vectorDB.SearchFilter) ([]commonModels.SourceResult, error) {
	if err := vectorDB.ValidateSearch(vector, db.dimension, topK, filter); err != nil {
		return nil, err
	}
	log := db.logger.FromContext(ctx)

	query := &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		ScoreThreshold: qdrant.PtrOf(threshold),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if filter != nil {
		query.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(filter.Field, filter.Value)},
		}
	}

	hits, err := db.client.Query(ctx, query)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			log.Warn("Searching a collection that does not exist yet")
			return []commonModels.SourceResult{}, nil
		}
		log.Error("Error querying Qdrant", "error", err)
		return nil, appErrors.Upstream(appErrors.ServiceVectorIndex, fmt.Errorf("qdrant query failed: %w", err))
	}

	results := make([]commonModels.SourceResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, toSourceResult(hit))
	}
	log.Debug("Found matches", "count", len(results))
	return vectorDB.Finalize(results, topK, threshold), nil
}

func (db *Index) DeleteCollection(ctx context.Context) error {
	db.logger.FromContext(ctx).Warn("Deleting collection and every indexed point")
	db.ensured.Store(false)

	err := db.client.DeleteCollection(ctx, db.collection)
	if err != nil && status.Code(err) != codes.NotFound {
		return appErrors.Upstream(appErrors.ServiceVectorIndex, fmt.Errorf("delete collection: %w", err))
	}
	return nil
}

func (db *Index) HealthCheck(ctx context.Context) vectorDB.HealthStatus {
	collections, err := db.client.ListCollections(ctx)
	if err != nil {
		db.logger.FromContext(ctx).Error("Qdrant health check failed", "error", err)
		return vectorDB.Unhealthy(err)
	}
	return vectorDB.Healthy(collections)
}

func toSourceResult(hit *qdrant.ScoredPoint) commonModels.SourceResult {
	p := hit.GetPayload()
	chunk := commonModels.Chunk{
		Text:    p[commonModels.PayloadText].GetStringValue(),
		Source:  p[commonModels.PayloadSource].GetStringValue(),
		Chapter: p[commonModels.PayloadChapter].GetStringValue(),
		Title:   p[commonModels.PayloadTitle].GetStringValue(),
	}.Normalize()
	return commonModels.SourceResult{
		Text:    chunk.Text,
		Source:  chunk.Source,
		Chapter: chunk.Chapter,
		Title:   chunk.Title,
		Score:   hit.GetScore(),
	}
}
