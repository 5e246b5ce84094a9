// Package ragtest holds in-process fakes for the RAG collaborators.
package ragtest

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/rag/llm"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB"
)

// HashEmbedder maps each word to a signed bucket, so equal texts get equal
// vectors and texts without shared words are close to orthogonal.
type HashEmbedder struct {
	Dim int
	// FailOn makes BatchEmbedding fail when it returns true for any text.
	FailOn func(text string) bool

	mu    sync.Mutex
	calls int
}

func NewHashEmbedder(dim int) *HashEmbedder {
	return &HashEmbedder{Dim: dim}
}

func (e *HashEmbedder) Dimension() int { return e.Dim }

func (e *HashEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func (e *HashEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.BatchEmbedding(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *HashEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, appErrors.Embedding(err)
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if e.FailOn != nil && e.FailOn(text) {
			return nil, appErrors.Embedding(fmt.Errorf("refused text %d", i))
		}
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *HashEmbedder) vector(text string) []float32 {
	v := make([]float32, e.Dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		h := fnv.New64a()
		_, _ = h.Write([]byte(w))
		sum := h.Sum64()
		sign := float32(1)
		if sum&1 == 1 {
			sign = -1
		}
		v[(sum>>1)%uint64(e.Dim)] += sign
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		v[0] = 1
		return v
	}
	n := float32(math.Sqrt(norm))
	for i := range v {
		v[i] /= n
	}
	return v
}

// ScriptedLLM replays fixed deltas and records every prompt it was given.
type ScriptedLLM struct {
	Deltas []string
	Err    error
	// FailAfter ends the stream with StreamErr after that many deltas.
	FailAfter int
	StreamErr error
	// Hold keeps the stream open after the last delta until ctx ends.
	Hold bool

	mu    sync.Mutex
	calls [][]llm.Message
}

func NewScriptedLLM(deltas ...string) *ScriptedLLM {
	return &ScriptedLLM{Deltas: deltas}
}

func (p *ScriptedLLM) record(messages []llm.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, append([]llm.Message(nil), messages...))
}

// LastMessages returns the prompt of the most recent call.
func (p *ScriptedLLM) LastMessages() []llm.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return nil
	}
	return p.calls[len(p.calls)-1]
}

func (p *ScriptedLLM) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *ScriptedLLM) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	p.record(messages)
	if p.Err != nil {
		return "", p.Err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.Join(p.Deltas, ""), nil
}

func (p *ScriptedLLM) GenerateStream(ctx context.Context, messages []llm.Message, onDelta func(string) error) error {
	p.record(messages)
	if p.Err != nil {
		return p.Err
	}
	for i, d := range p.Deltas {
		if p.FailAfter > 0 && i == p.FailAfter {
			return p.StreamErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d == "" {
			continue
		}
		if err := onDelta(d); err != nil {
			return err
		}
	}
	if p.Hold {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

// SearchCall is one recorded Search invocation.
type SearchCall struct {
	Vector    []float32
	TopK      int
	Threshold float32
	Filter    *vectorDB.SearchFilter
}

// RecordingIndex returns canned results and records what it was asked.
type RecordingIndex struct {
	Results   []commonModels.SourceResult
	SearchErr error
	UpsertErr error

	mu       sync.Mutex
	searches []SearchCall
	upserted []commonModels.Chunk
	deleted  int
}

func (x *RecordingIndex) EnsureCollection(context.Context) error { return nil }

func (x *RecordingIndex) Upsert(_ context.Context, chunks []commonModels.Chunk, vectors [][]float32) (int, error) {
	if x.UpsertErr != nil {
		return 0, x.UpsertErr
	}
	if len(chunks) != len(vectors) {
		return 0, appErrors.Validation("got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.upserted = append(x.upserted, chunks...)
	return len(chunks), nil
}

func (x *RecordingIndex) Search(_ context.Context, vector []float32, topK int, threshold float32, filter *vectorDB.SearchFilter) ([]commonModels.SourceResult, error) {
	x.mu.Lock()
	x.searches = append(x.searches, SearchCall{Vector: vector, TopK: topK, Threshold: threshold, Filter: filter})
	x.mu.Unlock()
	if x.SearchErr != nil {
		return nil, x.SearchErr
	}
	return vectorDB.Finalize(append([]commonModels.SourceResult(nil), x.Results...), topK, threshold), nil
}

func (x *RecordingIndex) DeleteCollection(context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.deleted++
	x.upserted = nil
	return nil
}

func (x *RecordingIndex) HealthCheck(context.Context) vectorDB.HealthStatus {
	return vectorDB.Healthy([]string{"book"})
}

func (x *RecordingIndex) Searches() []SearchCall {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]SearchCall(nil), x.searches...)
}

func (x *RecordingIndex) Upserted() []commonModels.Chunk {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]commonModels.Chunk(nil), x.upserted...)
}

func (x *RecordingIndex) Deleted() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.deleted
}

// Documents is an in-memory DocumentStore with an injectable failure.
type Documents struct {
	CreateErr error

	mu   sync.Mutex
	docs []commonModels.Document
}

func (d *Documents) CreateDocument(_ context.Context, doc commonModels.Document) error {
	if d.CreateErr != nil {
		return d.CreateErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.docs = append(d.docs, doc)
	return nil
}

func (d *Documents) ListDocuments(context.Context) ([]commonModels.Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]commonModels.Document(nil), d.docs...), nil
}

func (d *Documents) DeleteAllDocuments(context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.docs)
	d.docs = nil
	return n, nil
}
