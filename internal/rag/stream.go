package rag

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/metrics"
	"github.com/akolanti/BookRAG/internal/rag/llm"
	"github.com/akolanti/BookRAG/pkg/logger_i"
)

type EventType string

const (
	EventSources EventType = "sources"
	EventText    EventType = "text"
	EventDone    EventType = "done"
)

type Event struct {
	Type    EventType
	Text    string
	Sources []commonModels.SourceResult
}

type StreamState int32

const (
	StreamRunning StreamState = iota
	StreamCompleted
	StreamAborted
)

func (s StreamState) String() string {
	switch s {
	case StreamCompleted:
		return "completed"
	case StreamAborted:
		return "aborted"
	default:
		return "running"
	}
}

// AnswerStream delivers one sources event, any number of text events and a
// final done event, in that order. A stream that fails or is closed early
// ends without done and reports StreamAborted.
type AnswerStream struct {
	events chan Event
	cancel context.CancelFunc
	done   chan struct{}
	state  atomic.Int32

	mu  sync.Mutex
	err error
}

func startStream(ctx context.Context, provider llm.Provider, sources []commonModels.SourceResult, messages []llm.Message, log *logger_i.Logger) *AnswerStream {
	streamCtx, cancel := context.WithCancel(ctx)
	s := &AnswerStream{
		events: make(chan Event),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(streamCtx, provider, sources, messages, log)
	return s
}

func (s *AnswerStream) run(ctx context.Context, provider llm.Provider, sources []commonModels.SourceResult, messages []llm.Message, log *logger_i.Logger) {
	metrics.IncrementActiveStreams()
	start := time.Now()
	defer func() {
		metrics.DecrementActiveStreams()
		metrics.CaptureExecutionMetrics(metrics.LLMStream, time.Since(start))
		s.cancel()
		close(s.events)
		close(s.done)
	}()

	if err := s.send(ctx, Event{Type: EventSources, Sources: sources}); err != nil {
		s.abort(err)
		return
	}

	err := provider.GenerateStream(ctx, messages, func(delta string) error {
		return s.send(ctx, Event{Type: EventText, Text: delta})
	})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		log.Warn("Answer stream aborted", "error", err)
		s.abort(err)
		return
	}

	s.state.Store(int32(StreamCompleted))
	if err := s.send(ctx, Event{Type: EventDone}); err != nil {
		s.abort(err)
	}
}

func (s *AnswerStream) send(ctx context.Context, ev Event) error {
	select {
	case s.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AnswerStream) abort(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.state.Store(int32(StreamAborted))
}

// Events is closed after the last event.
func (s *AnswerStream) Events() <-chan Event {
	return s.events
}

// Err reports why the stream aborted. It is meaningful once Events is closed.
func (s *AnswerStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *AnswerStream) State() StreamState {
	return StreamState(s.state.Load())
}

// Close stops generation and waits for the producer to exit. It is safe to
// call more than once and after completion.
func (s *AnswerStream) Close() {
	s.cancel()
	<-s.done
}

// Collect drains the stream into the answer text and its sources.
func (s *AnswerStream) Collect() (AnswerResult, error) {
	var res AnswerResult
	var text []byte
	for ev := range s.events {
		switch ev.Type {
		case EventSources:
			res.Sources = ev.Sources
		case EventText:
			text = append(text, ev.Text...)
		}
	}
	<-s.done
	res.Answer = string(text)
	if s.State() != StreamCompleted {
		return res, s.Err()
	}
	return res, nil
}
