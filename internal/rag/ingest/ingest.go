package ingest

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/chatModel"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/metrics"
	"github.com/akolanti/BookRAG/internal/rag/embedding"
	"github.com/akolanti/BookRAG/internal/rag/splitter"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB"
	"github.com/akolanti/BookRAG/pkg/logger_i"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Ingestor turns corpus files into indexed chunks plus one Document row per
// file. Index and document writes are not transactional together.
type Ingestor struct {
	chunker     *splitter.Splitter
	embedder    embedding.Embedder
	index       vectorDB.VectorIndex
	documents   chatModel.DocumentStore
	concurrency int
	logger      *logger_i.Logger
}

func NewIngestor(chunker *splitter.Splitter, embedder embedding.Embedder, index vectorDB.VectorIndex, documents chatModel.DocumentStore, concurrency int) *Ingestor {
	if concurrency <= 0 {
		concurrency = config.DefaultIngestConcurrency
	}
	return &Ingestor{
		chunker:     chunker,
		embedder:    embedder,
		index:       index,
		documents:   documents,
		concurrency: concurrency,
		logger:      logger_i.NewLogger("Document Ingestion"),
	}
}

// WithConcurrency returns a copy that ingests n files at a time. n <= 0
// keeps the current limit.
func (in *Ingestor) WithConcurrency(n int) *Ingestor {
	cp := *in
	if n > 0 {
		cp.concurrency = n
	}
	return &cp
}

// IngestFile indexes one file and returns the number of chunks written.
// A file that yields no chunks is skipped without a Document row.
func (in *Ingestor) IngestFile(ctx context.Context, path string) (int, error) {
	log := in.logger.FromContext(ctx).With("file", path)

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = appErrors.Validation("file not found: %s", path)
		} else if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			err = appErrors.Validation("%s is a directory, not a file", path)
		}
		return 0, failAt(path, commonModels.StageRead, err)
	}

	meta, body := ParseFrontmatter(string(content))
	title := titleOf(meta, path)
	chapter := ChapterFromPath(path)

	pieces, err := in.chunker.Split(StripCodeBlocks(body))
	if err != nil {
		return 0, failAt(path, commonModels.StageChunked, err)
	}
	if len(pieces) == 0 {
		log.Warn("No chunks generated")
		return 0, nil
	}

	chunks := make([]commonModels.Chunk, len(pieces))
	for i, text := range pieces {
		chunks[i] = commonModels.Chunk{
			Text:       text,
			Source:     path,
			Chapter:    chapter,
			Title:      title,
			ChunkIndex: i,
		}
	}

	count, err := in.embedAndIndex(ctx, path, chunks)
	if err != nil {
		return 0, err
	}

	doc := commonModels.Document{
		Id:         uuid.NewString(),
		Title:      title,
		SourcePath: path,
		ChunkCount: count,
		IndexedAt:  time.Now().UTC(),
		Metadata: map[string]any{
			"chapter":     chapter,
			"frontmatter": meta,
		},
	}
	if err := in.documents.CreateDocument(ctx, doc); err != nil {
		// the points are already indexed; the failure list is the only trace
		return 0, failAt(path, commonModels.StageRecorded, err)
	}

	metrics.CaptureFileIngested(count)
	log.Info("Ingested file", "chunks", count, "chapter", chapter)
	return count, nil
}

func (in *Ingestor) embedAndIndex(ctx context.Context, path string, chunks []commonModels.Chunk) (int, error) {
	total := 0
	for start := 0; start < len(chunks); start += config.EmbeddingBatchSize {
		end := min(start+config.EmbeddingBatchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		began := time.Now()
		vectors, err := in.embedder.BatchEmbedding(ctx, texts)
		metrics.CaptureExecutionMetrics(metrics.Embedding, time.Since(began))
		if err != nil {
			return total, failAt(path, commonModels.StageEmbedded, err)
		}

		began = time.Now()
		n, err := in.index.Upsert(ctx, batch, vectors)
		metrics.CaptureExecutionMetrics(metrics.VectorUpsert, time.Since(began))
		if err != nil {
			return total, failAt(path, commonModels.StageIndexed, err)
		}
		total += n
	}
	return total, nil
}

// IngestCorpus ingests every markdown file under root. Per-file failures are
// reported in the summary; only a missing root is an error.
func (in *Ingestor) IngestCorpus(ctx context.Context, root string) (commonModels.IngestSummary, error) {
	log := in.logger.FromContext(ctx)

	if err := checkDir(root); err != nil {
		return commonModels.IngestSummary{}, err
	}
	files, err := ListCorpusFiles(root)
	if err != nil {
		return commonModels.IngestSummary{}, appErrors.Validation("cannot read docs path %s: %v", root, err)
	}
	log.Info("Ingesting corpus", "root", root, "files", len(files), "concurrency", in.concurrency)

	type result struct {
		chunks int
		err    error
	}
	results := make([]result, len(files))

	var g errgroup.Group
	g.SetLimit(in.concurrency)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = result{err: failAt(file, commonModels.StagePending, err)}
				return nil
			}
			n, err := in.IngestFile(ctx, file)
			results[i] = result{chunks: n, err: err}
			return nil
		})
	}
	_ = g.Wait()

	summary := commonModels.IngestSummary{
		TotalFiles:  len(files),
		FailedFiles: []commonModels.FailedFile{},
	}
	for i, r := range results {
		if r.err != nil {
			log.Error("Failed to ingest file", "file", files[i], "error", r.err)
			metrics.CaptureFileFailed()
			summary.Failed++
			summary.FailedFiles = append(summary.FailedFiles, commonModels.FailedFile{
				File:  files[i],
				Error: r.err.Error(),
				Stage: stageOf(r.err),
			})
			continue
		}
		summary.Ingested++
		summary.TotalChunks += r.chunks
	}

	log.Info("Corpus ingestion finished",
		"ingested", summary.Ingested, "failed", summary.Failed, "chunks", summary.TotalChunks)
	return summary, ctx.Err()
}

// Run is the caller-level entry point: the optional collection wipe happens
// only after the docs path has been checked.
func (in *Ingestor) Run(ctx context.Context, req commonModels.IngestRequest) (commonModels.IngestSummary, error) {
	if err := checkDir(req.DocsPath); err != nil {
		return commonModels.IngestSummary{}, err
	}
	if req.ClearExisting {
		in.logger.FromContext(ctx).Warn("Clearing existing collection before ingestion")
		if err := in.index.DeleteCollection(ctx); err != nil {
			return commonModels.IngestSummary{}, err
		}
	}
	return in.IngestCorpus(ctx, req.DocsPath)
}

// ClearAll drops the collection and every Document row, returning how many
// rows were removed.
func (in *Ingestor) ClearAll(ctx context.Context) (int, error) {
	in.logger.FromContext(ctx).Warn("Clearing all documents")
	if err := in.index.DeleteCollection(ctx); err != nil {
		return 0, err
	}
	return in.documents.DeleteAllDocuments(ctx)
}

func (in *Ingestor) Documents(ctx context.Context) ([]commonModels.Document, error) {
	return in.documents.ListDocuments(ctx)
}

func checkDir(root string) error {
	if root == "" {
		return appErrors.Validation("docs path is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return appErrors.Validation("path does not exist: %s", root)
	}
	if !info.IsDir() {
		return appErrors.Validation("path is not a directory: %s", root)
	}
	return nil
}
