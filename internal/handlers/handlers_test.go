package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/BookRAG/internal/api"
	"github.com/akolanti/BookRAG/internal/chat"
	"github.com/akolanti/BookRAG/internal/data/store"
	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/job"
	"github.com/akolanti/BookRAG/internal/rag"
	"github.com/akolanti/BookRAG/internal/rag/ingest"
	"github.com/akolanti/BookRAG/internal/rag/ragtest"
	"github.com/akolanti/BookRAG/internal/rag/splitter"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prefix = "/api/v1"

var passages = []commonModels.SourceResult{
	{Text: "PID controllers correct error.", Source: "docs/chapter-4/control.md", Chapter: "chapter-4", Title: "Control", Score: 0.88},
	{Text: "Actuators move joints.", Source: "docs/chapter-4/actuators.md", Chapter: "chapter-4", Title: "Actuators", Score: 0.75},
}

type fixture struct {
	router   http.Handler
	index    *ragtest.RecordingIndex
	provider *ragtest.ScriptedLLM
	docs     *ragtest.Documents
	embedder *ragtest.HashEmbedder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		index:    &ragtest.RecordingIndex{Results: passages},
		provider: ragtest.NewScriptedLLM("Torque ", "control."),
		docs:     &ragtest.Documents{},
		embedder: ragtest.NewHashEmbedder(16),
	}
	embedder := f.embedder
	chunker, err := splitter.New(200, 20)
	require.NoError(t, err)
	answers := rag.NewService(embedder, f.index, f.provider, rag.DefaultOptions())

	h := New(Dependencies{
		Chat:     chat.NewService(answers, store.InitInMemoryConversationStore()),
		Answers:  answers,
		Ingestor: ingest.NewIngestor(chunker, embedder, f.index, f.docs, 1),
		Jobs:     job.InitJobService(job.ServiceConfig{JobStore: store.InitInMemoryJobStore()}),
		Index:    f.index,
		AppName:  "Book RAG",
		Version:  "test",
		Prefix:   prefix,
	})

	r := chi.NewRouter()
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Route(prefix, func(v1 chi.Router) {
		v1.Post("/chat/", h.Chat)
		v1.Post("/chat/stream", h.ChatStream)
		v1.Get("/chat/conversations", h.ListConversations)
		v1.Get("/chat/conversations/{id}/messages", h.ConversationMessages)
		v1.Delete("/chat/conversations/{id}", h.DeleteConversation)
		v1.Get("/search", h.Search)
		v1.Post("/admin/ingest", h.Ingest)
		v1.Post("/admin/ingest/file", h.IngestFile)
		v1.Post("/admin/ingest/jobs", h.EnqueueIngestJob)
		v1.Get("/admin/ingest/jobs", h.ListIngestJobs)
		v1.Get("/admin/ingest/jobs/{id}", h.GetIngestJob)
		v1.Get("/admin/documents", h.ListDocuments)
		v1.Delete("/admin/documents/all", h.ClearDocuments)
		v1.Get("/admin/health/vector-store", h.VectorStoreHealth)
	})
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRootAndHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[api.ServiceInfo](t, rec)
	assert.Equal(t, "Book RAG", info.Name)
	assert.Equal(t, "running", info.Status)

	rec = f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[api.HealthResponse](t, rec).Status)
}

func TestChat_AnswersAndContinues(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, prefix+"/chat/", api.ChatRequest{Message: "What corrects error?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[api.ChatResponse](t, rec)
	assert.Equal(t, "Torque control.", first.Answer)
	assert.Len(t, first.Sources, 2)
	require.NotEmpty(t, first.ConversationID)

	rec = f.do(t, http.MethodPost, prefix+"/chat/", api.ChatRequest{ConversationID: first.ConversationID, Message: "And actuators?"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first.ConversationID, decode[api.ChatResponse](t, rec).ConversationID)

	rec = f.do(t, http.MethodGet, prefix+"/chat/conversations/"+first.ConversationID+"/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msgs := decode[[]api.MessageItem](t, rec)
	require.Len(t, msgs, 4)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Nil(t, msgs[0].SelectedText)
	assert.Equal(t, "assistant", msgs[1].Role)
}

func TestChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		body      any
		setup     func(f *fixture)
		wantCode  int
		wantMsg   string
		wantRetry bool
	}{
		{name: "bad json", body: "{", wantCode: http.StatusBadRequest, wantMsg: "invalid request body"},
		{name: "empty message", body: api.ChatRequest{Message: "  "}, wantCode: http.StatusBadRequest, wantMsg: "message is empty"},
		{name: "unknown conversation", body: api.ChatRequest{ConversationID: "nope", Message: "hi"}, wantCode: http.StatusNotFound, wantMsg: "nope"},
		{
			name: "model failure",
			body: api.ChatRequest{Message: "hi"},
			setup: func(f *fixture) {
				f.provider.Err = appErrors.Upstream(appErrors.ServiceLLM, errors.New("quota exceeded"))
			},
			wantCode:  http.StatusBadGateway,
			wantMsg:   "upstream service failure",
			wantRetry: true,
		},
		{
			name: "unexpected failure",
			body: api.ChatRequest{Message: "hi"},
			setup: func(f *fixture) {
				f.index.SearchErr = errors.New("disk on fire")
			},
			wantCode: http.StatusInternalServerError,
			wantMsg:  "internal server error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			if tc.setup != nil {
				tc.setup(f)
			}

			rec := f.do(t, http.MethodPost, prefix+"/chat/", tc.body)

			require.Equal(t, tc.wantCode, rec.Code, rec.Body.String())
			res := decode[api.ErrorResponse](t, rec)
			assert.Equal(t, tc.wantCode, res.Error.Code)
			assert.Contains(t, res.Error.Message, tc.wantMsg)
			assert.Equal(t, tc.wantRetry, res.Error.Retry)
			assert.NotContains(t, res.Error.Message, "quota")
		})
	}
}

func TestSearch(t *testing.T) {
	t.Run("limits and filters", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodGet, prefix+"/search?q=controllers&chapter=chapter-4&top_k=1", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[api.SearchResponse](t, rec)
		assert.Equal(t, "controllers", res.Query)
		assert.Equal(t, "chapter-4", res.Chapter)
		require.Len(t, res.Results, 1)
		assert.Equal(t, "Control", res.Results[0].Title)

		calls := f.index.Searches()
		require.Len(t, calls, 1)
		assert.Equal(t, 1, calls[0].TopK)
		require.NotNil(t, calls[0].Filter)
		assert.Equal(t, "chapter-4", calls[0].Filter.Value)
	})

	t.Run("empty results are an empty list", func(t *testing.T) {
		f := newFixture(t)
		f.index.Results = nil

		rec := f.do(t, http.MethodGet, prefix+"/search?q=nothing", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"results":[]`)
	})

	for _, path := range []string{"/search", "/search?q=%20", "/search?q=x&top_k=abc", "/search?q=x&top_k=-2"} {
		t.Run("rejects "+path, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(t, http.MethodGet, prefix+path, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, f.index.Searches())
		})
	}
}

func TestConversations_ListAndDelete(t *testing.T) {
	f := newFixture(t)
	for _, q := range []string{"first", "second"} {
		rec := f.do(t, http.MethodPost, prefix+"/chat/", api.ChatRequest{Message: q})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := f.do(t, http.MethodGet, prefix+"/chat/conversations?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]api.ConversationListItem](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].MessageCount)

	rec = f.do(t, http.MethodGet, prefix+"/chat/conversations?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, prefix+"/chat/conversations/"+items[0].Id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Conversation deleted", decode[api.MessageResponse](t, rec).Message)

	rec = f.do(t, http.MethodDelete, prefix+"/chat/conversations/"+items[0].Id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, prefix+"/chat/conversations/"+items[0].Id+"/messages", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func writeDoc(t *testing.T, root, rel string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("# Sensors\n\nCameras and lidar give a robot its view of the world.\n"), 0o644))
	return path
}

func TestAdmin_IngestListAndClear(t *testing.T) {
	f := newFixture(t)
	root := t.TempDir()
	writeDoc(t, root, "chapter-2/sensors.md")
	single := writeDoc(t, t.TempDir(), "chapter-3/control.md")

	rec := f.do(t, http.MethodPost, prefix+"/admin/ingest", api.IngestRequest{DocsPath: root})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := decode[api.IngestResponse](t, rec)
	assert.Equal(t, 1, summary.TotalFiles)
	assert.Equal(t, 1, summary.Ingested)
	assert.NotNil(t, summary.FailedFiles)

	rec = f.do(t, http.MethodPost, prefix+"/admin/ingest/file?filepath="+single, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[api.IngestFileResponse](t, rec).ChunksCreated)

	rec = f.do(t, http.MethodGet, prefix+"/admin/documents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]api.DocumentItem](t, rec), 2)

	rec = f.do(t, http.MethodDelete, prefix+"/admin/documents/all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[api.ClearDocumentsResponse](t, rec).Deleted)
	assert.Equal(t, 1, f.index.Deleted())

	rec = f.do(t, http.MethodGet, prefix+"/admin/health/vector-store", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestAdmin_IngestRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, prefix+"/admin/ingest", api.IngestRequest{DocsPath: filepath.Join(t.TempDir(), "missing"), ClearExisting: true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, f.index.Deleted())

	rec = f.do(t, http.MethodPost, prefix+"/admin/ingest/file", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, prefix+"/admin/ingest/file?filepath=/does/not/exist.md", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, prefix+"/admin/ingest/file?filepath="+t.TempDir(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestAdmin_IngestOutlivesWriteTimeout(t *testing.T) {
	f := newFixture(t)
	f.embedder.FailOn = func(string) bool {
		time.Sleep(300 * time.Millisecond)
		return false
	}
	root := t.TempDir()
	writeDoc(t, root, "chapter-2/sensors.md")

	srv := httptest.NewUnstartedServer(f.router)
	srv.Config.WriteTimeout = 50 * time.Millisecond
	srv.Start()
	defer srv.Close()

	body, err := json.Marshal(api.IngestRequest{DocsPath: root})
	require.NoError(t, err)
	res, err := http.Post(srv.URL+prefix+"/admin/ingest", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	var summary api.IngestResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&summary))
	assert.Equal(t, 1, summary.Ingested)
}

func TestIngestJobs_EnqueueAndPoll(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, prefix+"/admin/ingest/jobs", api.IngestRequest{DocsPath: "./docs"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	queued := decode[api.InitJobResponse](t, rec)
	assert.Equal(t, "QUEUED", queued.Status)
	assert.Equal(t, prefix+"/admin/ingest/jobs/"+queued.Id, queued.StatusURL)

	rec = f.do(t, http.MethodGet, queued.StatusURL, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[api.JobResponse](t, rec)
	assert.Equal(t, queued.Id, status.Id)
	assert.Equal(t, "./docs", status.Request.DocsPath)
	assert.Nil(t, status.Result)
	assert.Nil(t, status.Error)

	rec = f.do(t, http.MethodPost, prefix+"/admin/ingest/jobs", api.IngestRequest{DocsPath: "./other", ClearExisting: true})
	require.Equal(t, http.StatusAccepted, rec.Code)
	second := decode[api.InitJobResponse](t, rec)

	rec = f.do(t, http.MethodGet, prefix+"/admin/ingest/jobs?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]api.JobResponse](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, second.Id, listed[0].Id)

	rec = f.do(t, http.MethodGet, prefix+"/admin/ingest/jobs/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, prefix+"/admin/ingest/jobs", api.IngestRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
