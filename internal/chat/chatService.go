// Package chat keeps conversation state around the answer pipeline: it
// resolves or creates the conversation, feeds its history to the model and
// records both sides of every exchange.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/chatModel"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/rag"
	"github.com/akolanti/BookRAG/internal/rag/llm"
	"github.com/akolanti/BookRAG/pkg/logger_i"
	"github.com/google/uuid"
)

type Input struct {
	ConversationId string
	Message        string
	SelectedText   string
	Chapter        string
}

type Output struct {
	ConversationId string                      `json:"conversation_id"`
	MessageId      string                      `json:"message_id"`
	Answer         string                      `json:"answer"`
	Sources        []commonModels.SourceResult `json:"sources"`
}

type Service struct {
	answers rag.Service
	store   chatModel.ConversationStore
	now     func() time.Time
	logger  *logger_i.Logger
}

func NewService(answers rag.Service, store chatModel.ConversationStore) *Service {
	return &Service{
		answers: answers,
		store:   store,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger_i.NewLogger("Chat Service"),
	}
}

// Ask answers in one call and stores the user and assistant messages. A new
// conversation is stored only once the answer exists, so a failed turn
// leaves nothing behind.
func (s *Service) Ask(ctx context.Context, in Input) (Output, error) {
	if strings.TrimSpace(in.Message) == "" {
		return Output{}, appErrors.Validation("message is empty")
	}
	conv, history, fresh, err := s.resolve(ctx, in)
	if err != nil {
		return Output{}, err
	}

	res, err := s.answers.Answer(ctx, rag.AnswerRequest{
		Question:     in.Message,
		History:      history,
		SelectedText: in.SelectedText,
		Chapter:      in.Chapter,
	})
	if err != nil {
		return Output{}, err
	}

	if fresh {
		if err := s.start(ctx, conv); err != nil {
			return Output{}, err
		}
	}
	user := s.userMessage(conv.Id, in)
	assistant := s.assistantMessage(conv.Id, res.Answer, res.Sources)
	if err := s.record(ctx, user, assistant); err != nil {
		s.rollback(ctx, conv.Id, fresh)
		return Output{}, err
	}

	return Output{
		ConversationId: conv.Id,
		MessageId:      assistant.Id,
		Answer:         res.Answer,
		Sources:        nonNil(res.Sources),
	}, nil
}

// resolve loads the named conversation with its history, or prepares an
// unsaved one titled after the question. fresh reports the latter.
func (s *Service) resolve(ctx context.Context, in Input) (conv chatModel.Conversation, history []llm.Message, fresh bool, err error) {
	if in.ConversationId == "" {
		now := s.now()
		return chatModel.Conversation{
			Id:        uuid.NewString(),
			Title:     title(in.Message),
			CreatedAt: now,
			UpdatedAt: now,
		}, nil, true, nil
	}

	conv, err = s.store.GetConversation(ctx, in.ConversationId)
	if err != nil {
		return conv, nil, false, err
	}
	messages, err := s.store.ListMessages(ctx, conv.Id)
	if err != nil {
		return conv, nil, false, err
	}
	history = make([]llm.Message, len(messages))
	for i, m := range messages {
		history[i] = llm.Message{Role: string(m.Role), Content: m.Content}
	}
	return conv, history, false, nil
}

func (s *Service) start(ctx context.Context, conv chatModel.Conversation) error {
	if err := s.store.CreateConversation(ctx, conv); err != nil {
		return err
	}
	s.logger.FromContext(ctx).Debug("Started conversation", "conversationId", conv.Id)
	return nil
}

func (s *Service) record(ctx context.Context, msgs ...chatModel.Message) error {
	for _, m := range msgs {
		if err := s.store.AppendMessage(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// rollback drops a conversation this turn created. It runs after the request
// context may be gone, so it is detached from cancellation.
func (s *Service) rollback(ctx context.Context, conversationId string, fresh bool) {
	if !fresh {
		return
	}
	log := s.logger.FromContext(ctx).With("conversationId", conversationId)
	if err := s.store.DeleteConversation(context.WithoutCancel(ctx), conversationId); err != nil && !appErrors.IsNotFound(err) {
		log.Error("Could not drop conversation of a failed turn", "error", err)
		return
	}
	log.Warn("Dropped conversation of a failed turn")
}

func (s *Service) userMessage(conversationId string, in Input) chatModel.Message {
	return chatModel.Message{
		Id:             uuid.NewString(),
		ConversationId: conversationId,
		Role:           chatModel.RoleUser,
		Content:        in.Message,
		SelectedText:   in.SelectedText,
		CreatedAt:      s.now(),
	}
}

func (s *Service) assistantMessage(conversationId, answer string, sources []commonModels.SourceResult) chatModel.Message {
	return chatModel.Message{
		Id:             uuid.NewString(),
		ConversationId: conversationId,
		Role:           chatModel.RoleAssistant,
		Content:        answer,
		Sources:        sources,
		CreatedAt:      s.now(),
	}
}

func (s *Service) ListConversations(ctx context.Context, limit int) ([]chatModel.ConversationSummary, error) {
	if limit <= 0 {
		limit = config.DefaultConversationListLimit
	}
	return s.store.ListConversations(ctx, limit)
}

func (s *Service) Messages(ctx context.Context, conversationId string) ([]chatModel.Message, error) {
	return s.store.ListMessages(ctx, conversationId)
}

func (s *Service) DeleteConversation(ctx context.Context, conversationId string) error {
	s.logger.FromContext(ctx).Warn("Deleting conversation", "conversationId", conversationId)
	return s.store.DeleteConversation(ctx, conversationId)
}

func title(message string) string {
	r := []rune(strings.TrimSpace(message))
	if len(r) > config.ConversationTitleLength {
		r = r[:config.ConversationTitleLength]
	}
	return string(r)
}

func nonNil(sources []commonModels.SourceResult) []commonModels.SourceResult {
	if sources == nil {
		return []commonModels.SourceResult{}
	}
	return sources
}
