package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/rag"
	"github.com/akolanti/BookRAG/pkg/logger_i"
)

type EventType string

const (
	EventConversationId EventType = "conversation_id"
	EventSources        EventType = "sources"
	EventText           EventType = "text"
	EventDone           EventType = "done"
)

// Event is one SSE frame. Data holds the conversation id, the sources, a
// text delta, or for done the stored assistant message id.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

type DonePayload struct {
	MessageId string `json:"message_id"`
}

// Stream forwards the answer events of one conversation turn. The assistant
// message is stored only when generation completes, before done is sent.
type Stream struct {
	events chan Event
	answer *rag.AnswerStream
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// AskStream stores the user message right away and returns the running
// stream. Conversation and retrieval failures are returned before any event.
// A conversation started by this turn is dropped again if the turn does not
// reach done.
func (s *Service) AskStream(ctx context.Context, in Input) (*Stream, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, appErrors.Validation("message is empty")
	}
	conv, history, fresh, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}
	if fresh {
		if err := s.start(ctx, conv); err != nil {
			return nil, err
		}
	}
	if err := s.record(ctx, s.userMessage(conv.Id, in)); err != nil {
		s.rollback(ctx, conv.Id, fresh)
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	answer, err := s.answers.StreamAnswer(streamCtx, rag.AnswerRequest{
		Question:     in.Message,
		History:      history,
		SelectedText: in.SelectedText,
		Chapter:      in.Chapter,
	})
	if err != nil {
		cancel()
		s.rollback(ctx, conv.Id, fresh)
		return nil, err
	}

	st := &Stream{
		events: make(chan Event),
		answer: answer,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go st.run(streamCtx, s, conv.Id, fresh, s.logger.FromContext(ctx).With("conversationId", conv.Id))
	return st, nil
}

func (st *Stream) run(ctx context.Context, s *Service, conversationId string, fresh bool, log *logger_i.Logger) {
	stored := false
	defer func() {
		st.answer.Close()
		st.cancel()
		if !stored {
			s.rollback(ctx, conversationId, fresh)
		}
		close(st.events)
		close(st.done)
	}()

	if !st.send(ctx, Event{Type: EventConversationId, Data: conversationId}) {
		st.fail(ctx.Err())
		return
	}

	var sources []commonModels.SourceResult
	var text strings.Builder
	for ev := range st.answer.Events() {
		switch ev.Type {
		case rag.EventSources:
			sources = ev.Sources
			if !st.send(ctx, Event{Type: EventSources, Data: nonNil(sources)}) {
				st.fail(ctx.Err())
				return
			}
		case rag.EventText:
			text.WriteString(ev.Text)
			if !st.send(ctx, Event{Type: EventText, Data: ev.Text}) {
				st.fail(ctx.Err())
				return
			}
		case rag.EventDone:
			msg := s.assistantMessage(conversationId, text.String(), sources)
			if err := s.store.AppendMessage(ctx, msg); err != nil {
				log.Error("Could not store assistant message", "error", err)
				st.fail(err)
				return
			}
			stored = true
			if !st.send(ctx, Event{Type: EventDone, Data: DonePayload{MessageId: msg.Id}}) {
				st.fail(ctx.Err())
			}
			return
		}
	}

	// events closed without done
	err := st.answer.Err()
	log.Warn("Answer stream ended early, assistant message not stored", "error", err)
	st.fail(err)
}

func (st *Stream) send(ctx context.Context, ev Event) bool {
	select {
	case st.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (st *Stream) fail(err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.err == nil {
		st.err = err
	}
}

func (st *Stream) Events() <-chan Event {
	return st.events
}

// Err is set once Events is closed if the turn did not complete.
func (st *Stream) Err() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.err
}

// Close abandons the turn and waits for the producer to exit.
func (st *Stream) Close() {
	st.cancel()
	<-st.done
}
