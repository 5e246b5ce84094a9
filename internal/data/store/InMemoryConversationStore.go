package store

import (
	"context"
	"sort"
	"sync"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/chatModel"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/pkg/logger_i"
)

type InMemoryConversationStore struct {
	chatLock      *sync.RWMutex
	conversations map[string]chatModel.Conversation
	messages      map[string][]chatModel.Message
	logger        *logger_i.Logger
}

func InitInMemoryConversationStore() *InMemoryConversationStore {
	return &InMemoryConversationStore{
		chatLock:      new(sync.RWMutex),
		conversations: make(map[string]chatModel.Conversation),
		messages:      make(map[string][]chatModel.Message),
		logger:        logger_i.NewLogger("InMem ConversationStore"),
	}
}

func (store *InMemoryConversationStore) CreateConversation(ctx context.Context, conv chatModel.Conversation) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.conversations[conv.Id] = conv
	store.logger.FromContext(ctx).Debug("Created conversation", "conversationId", conv.Id)
	return nil
}

func (store *InMemoryConversationStore) GetConversation(ctx context.Context, id string) (chatModel.Conversation, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	conv, ok := store.conversations[id]
	if !ok {
		return conv, appErrors.NotFound("conversation %s", id)
	}
	return conv, nil
}

func (store *InMemoryConversationStore) ListConversations(ctx context.Context, limit int) ([]chatModel.ConversationSummary, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()

	out := make([]chatModel.ConversationSummary, 0, len(store.conversations))
	for id, conv := range store.conversations {
		out = append(out, chatModel.ConversationSummary{Conversation: conv, MessageCount: len(store.messages[id])})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit < 0 {
		limit = 0
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (store *InMemoryConversationStore) DeleteConversation(ctx context.Context, id string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	if _, ok := store.conversations[id]; !ok {
		return appErrors.NotFound("conversation %s", id)
	}
	delete(store.conversations, id)
	delete(store.messages, id)
	return nil
}

func (store *InMemoryConversationStore) AppendMessage(ctx context.Context, msg chatModel.Message) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	conv, ok := store.conversations[msg.ConversationId]
	if !ok {
		return appErrors.NotFound("conversation %s", msg.ConversationId)
	}
	conv.UpdatedAt = msg.CreatedAt
	store.conversations[conv.Id] = conv
	store.messages[conv.Id] = append(store.messages[conv.Id], msg)
	return nil
}

func (store *InMemoryConversationStore) ListMessages(ctx context.Context, conversationId string) ([]chatModel.Message, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	if _, ok := store.conversations[conversationId]; !ok {
		return nil, appErrors.NotFound("conversation %s", conversationId)
	}
	return append([]chatModel.Message{}, store.messages[conversationId]...), nil
}

type InMemoryDocumentStore struct {
	docLock *sync.RWMutex
	docs    []commonModels.Document
}

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{docLock: new(sync.RWMutex)}
}

func (store *InMemoryDocumentStore) CreateDocument(ctx context.Context, doc commonModels.Document) error {
	store.docLock.Lock()
	defer store.docLock.Unlock()
	store.docs = append(store.docs, doc)
	return nil
}

func (store *InMemoryDocumentStore) ListDocuments(ctx context.Context) ([]commonModels.Document, error) {
	store.docLock.RLock()
	defer store.docLock.RUnlock()
	out := append([]commonModels.Document{}, store.docs...)
	sortDocuments(out)
	return out, nil
}

func (store *InMemoryDocumentStore) DeleteAllDocuments(ctx context.Context) (int, error) {
	store.docLock.Lock()
	defer store.docLock.Unlock()
	n := len(store.docs)
	store.docs = nil
	return n, nil
}
