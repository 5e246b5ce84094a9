package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/rag/llm"
	"github.com/akolanti/BookRAG/internal/rag/ragtest"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB/memoryDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookSources = []commonModels.SourceResult{
	{Text: "Lidar measures distance with light.", Source: "docs/chapter-2/sensors.md", Chapter: "chapter-2", Title: "Sensors", Score: 0.91},
	{Text: "Cameras capture images.", Source: "docs/chapter-2/vision.md", Chapter: "chapter-2", Title: "Vision", Score: 0.82},
	{Text: "Unrelated filler.", Source: "docs/chapter-9/misc.md", Chapter: "chapter-9", Title: "Misc", Score: 0.4},
}

type harness struct {
	svc      Service
	embedder *ragtest.HashEmbedder
	index    *ragtest.RecordingIndex
	llm      *ragtest.ScriptedLLM
}

func newHarness(deltas ...string) harness {
	h := harness{
		embedder: ragtest.NewHashEmbedder(32),
		index:    &ragtest.RecordingIndex{Results: bookSources},
		llm:      ragtest.NewScriptedLLM(deltas...),
	}
	h.svc = NewService(h.embedder, h.index, h.llm, DefaultOptions())
	return h
}

func drain(t *testing.T, s *AnswerStream) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("stream did not finish")
		}
	}
}

func TestStreamAnswer_EventOrder(t *testing.T) {
	h := newHarness("Hel", "lo")
	ctx := context.Background()
	req := AnswerRequest{Question: "What does lidar do?"}

	stream, err := h.svc.StreamAnswer(ctx, req)
	require.NoError(t, err)
	events := drain(t, stream)

	require.Len(t, events, 4)
	assert.Equal(t, EventSources, events[0].Type)
	assert.Len(t, events[0].Sources, 2)
	assert.Equal(t, Event{Type: EventText, Text: "Hel"}, events[1])
	assert.Equal(t, Event{Type: EventText, Text: "lo"}, events[2])
	assert.Equal(t, EventDone, events[3].Type)
	assert.Equal(t, StreamCompleted, stream.State())
	assert.NoError(t, stream.Err())

	res, err := h.svc.Answer(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Hello", res.Answer)
	assert.Equal(t, events[0].Sources, res.Sources)
}

func TestStreamAnswer_CollectMatchesAnswer(t *testing.T) {
	h := newHarness("Lidar ", "uses ", "", "light.")
	ctx := context.Background()
	req := AnswerRequest{Question: "How does lidar work?"}

	stream, err := h.svc.StreamAnswer(ctx, req)
	require.NoError(t, err)
	streamed, err := stream.Collect()
	require.NoError(t, err)

	answered, err := h.svc.Answer(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, answered, streamed)
}

func TestRetrieve_ThresholdAndFilter(t *testing.T) {
	h := newHarness("x")
	results, err := h.svc.Retrieve(context.Background(), "lidar", vectorDB.ChapterFilter("chapter-2"), 0)
	require.NoError(t, err)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, float32(0.7))
	}

	calls := h.index.Searches()
	require.Len(t, calls, 1)
	assert.Equal(t, 5, calls[0].TopK)
	assert.Equal(t, float32(0.7), calls[0].Threshold)
	assert.Equal(t, &vectorDB.SearchFilter{Field: "chapter", Value: "chapter-2"}, calls[0].Filter)
}

func TestAnswer_SelectedTextQuery(t *testing.T) {
	h := newHarness("ok")
	ctx := context.Background()

	_, err := h.svc.Answer(ctx, AnswerRequest{Question: "Q", SelectedText: "S"})
	require.NoError(t, err)

	want, err := h.embedder.GetEmbedding(ctx, "S\n\nQ")
	require.NoError(t, err)
	calls := h.index.Searches()
	require.Len(t, calls, 1)
	assert.Equal(t, want, calls[0].Vector)

	messages := h.llm.LastMessages()
	system := messages[0].Content
	assert.Contains(t, system, "---\nS\n---")
	assert.NotContains(t, system, "Do not make up information")
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "Q"}, messages[len(messages)-1])
}

func TestAnswer_HistoryWindow(t *testing.T) {
	h := newHarness("ok")
	var history []llm.Message
	for i := 0; i < 20; i++ {
		role := llm.RoleUser
		if i%2 == 1 {
			role = llm.RoleAssistant
		}
		history = append(history, llm.Message{Role: role, Content: fmt.Sprintf("m%d", i)})
	}

	_, err := h.svc.Answer(context.Background(), AnswerRequest{Question: "latest", History: history})
	require.NoError(t, err)

	messages := h.llm.LastMessages()
	require.Len(t, messages, 14)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, history[8:], messages[1:13])
	assert.Equal(t, "latest", messages[13].Content)
}

func TestBuildMessages_ContextSection(t *testing.T) {
	req := AnswerRequest{Question: "q"}

	withSources := BuildMessages("Book", req, bookSources[:2], 12)
	assert.True(t, strings.HasSuffix(withSources[0].Content,
		"\n\nRELEVANT BOOK CONTENT:\n"+
			"[Source 1 - Sensors (chapter-2)]\nLidar measures distance with light."+
			"\n\n---\n\n"+
			"[Source 2 - Vision (chapter-2)]\nCameras capture images."))

	without := BuildMessages("Book", req, nil, 12)
	assert.NotContains(t, without[0].Content, "RELEVANT BOOK CONTENT")
	assert.Contains(t, without[0].Content, `the book "Book"`)
}

func TestBuildSearchQuery(t *testing.T) {
	assert.Equal(t, "Q", BuildSearchQuery("Q", ""))
	assert.Equal(t, "S\n\nQ", BuildSearchQuery("Q", "S"))
}

func TestAnswer_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("empty question", func(t *testing.T) {
		h := newHarness("x")
		_, err := h.svc.Answer(ctx, AnswerRequest{Question: "  "})
		assert.True(t, appErrors.IsValidation(err))
		assert.Zero(t, h.embedder.Calls())
	})

	t.Run("embedding", func(t *testing.T) {
		h := newHarness("x")
		h.embedder.FailOn = func(string) bool { return true }
		_, err := h.svc.Answer(ctx, AnswerRequest{Question: "q"})
		assert.ErrorIs(t, err, appErrors.ErrEmbedding)
		assert.Zero(t, h.llm.Calls())
	})

	t.Run("search", func(t *testing.T) {
		h := newHarness("x")
		h.index.SearchErr = appErrors.Upstream(appErrors.ServiceVectorIndex, errors.New("timeout"))
		stream, err := h.svc.StreamAnswer(ctx, AnswerRequest{Question: "q"})
		assert.Nil(t, stream)
		assert.True(t, appErrors.IsUpstream(err))
		assert.Zero(t, h.llm.Calls())
	})

	t.Run("generation", func(t *testing.T) {
		h := newHarness("x")
		h.llm.Err = appErrors.Upstream(appErrors.ServiceLLM, errors.New("503"))
		_, err := h.svc.Answer(ctx, AnswerRequest{Question: "q"})
		assert.True(t, appErrors.IsUpstream(err))
	})
}

func TestStreamAnswer_MidStreamFailureHasNoDone(t *testing.T) {
	h := newHarness("Hel", "lo", "!")
	h.llm.FailAfter = 1
	h.llm.StreamErr = appErrors.Upstream(appErrors.ServiceLLM, errors.New("connection reset"))

	stream, err := h.svc.StreamAnswer(context.Background(), AnswerRequest{Question: "q"})
	require.NoError(t, err)
	events := drain(t, stream)

	require.Len(t, events, 2)
	assert.Equal(t, EventSources, events[0].Type)
	assert.Equal(t, "Hel", events[1].Text)
	assert.Equal(t, StreamAborted, stream.State())
	assert.True(t, appErrors.IsUpstream(stream.Err()))

	_, err = stream.Collect()
	assert.Error(t, err)
}

func TestStreamAnswer_CloseStopsGeneration(t *testing.T) {
	h := newHarness("partial")
	h.llm.Hold = true

	stream, err := h.svc.StreamAnswer(context.Background(), AnswerRequest{Question: "q"})
	require.NoError(t, err)

	assert.Equal(t, EventSources, (<-stream.Events()).Type)
	assert.Equal(t, "partial", (<-stream.Events()).Text)
	assert.Equal(t, StreamRunning, stream.State())

	stream.Close()
	stream.Close()

	_, open := <-stream.Events()
	assert.False(t, open)
	assert.Equal(t, StreamAborted, stream.State())
	assert.ErrorIs(t, stream.Err(), context.Canceled)
}

func TestStreamAnswer_CallerCancel(t *testing.T) {
	h := newHarness("a", "b")
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := h.svc.StreamAnswer(ctx, AnswerRequest{Question: "q"})
	require.NoError(t, err)
	cancel()

	events := drain(t, stream)
	for _, ev := range events {
		assert.NotEqual(t, EventDone, ev.Type)
	}
	assert.Equal(t, StreamAborted, stream.State())
}

func TestRetrieve_SameTextScoresHighest(t *testing.T) {
	ctx := context.Background()
	embedder := ragtest.NewHashEmbedder(256)
	index := memoryDB.New("book", 256)

	texts := []string{
		"Reinforcement learning trains policies through reward signals.",
		"Servo motors hold a commanded angular position.",
	}
	vectors, err := embedder.BatchEmbedding(ctx, texts)
	require.NoError(t, err)
	chunks := []commonModels.Chunk{{Text: texts[0]}, {Text: texts[1]}}
	_, err = index.Upsert(ctx, chunks, vectors)
	require.NoError(t, err)

	svc := NewService(embedder, index, ragtest.NewScriptedLLM(), DefaultOptions())
	results, err := svc.Retrieve(ctx, texts[0], nil, 0)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, texts[0], results[0].Text)
	assert.Greater(t, results[0].Score, float32(0.99))

	other, err := vectorDB.Cosine(vectors[0], vectors[1])
	require.NoError(t, err)
	assert.Less(t, other, results[0].Score)
}
