package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/akolanti/BookRAG/internal/data/redisStore"
	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/chatModel"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

// Key layout:
//
//	conversation:<id>           JSON Conversation
//	conversation:<id>:messages  list of JSON Message, oldest first
//	conversations               sorted set of ids scored by creation time
//	documents                   hash of id -> JSON Document
const (
	conversationKeyPrefix = "conversation:"
	messagesKeySuffix     = ":messages"
	conversationIndexKey  = "conversations"
	documentsKey          = "documents"
)

func conversationKey(id string) string { return conversationKeyPrefix + id }
func messagesKey(id string) string     { return conversationKeyPrefix + id + messagesKeySuffix }

type RedisConversationStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func NewRedisConversationStore(store *redisStore.Store) *RedisConversationStore {
	return &RedisConversationStore{
		store:  store,
		logger: logger_i.NewLogger("ConversationStore"),
	}
}

func (s *RedisConversationStore) CreateConversation(ctx context.Context, conv chatModel.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	err = s.store.Tx(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, conversationKey(conv.Id), data, 0)
		pipe.ZAdd(ctx, conversationIndexKey, redis.Z{Score: float64(conv.CreatedAt.UnixMicro()), Member: conv.Id})
		return nil
	})
	if err != nil {
		return fmt.Errorf("create conversation %s: %w", conv.Id, err)
	}
	s.logger.FromContext(ctx).Debug("Created conversation", "conversationId", conv.Id)
	return nil
}

func (s *RedisConversationStore) GetConversation(ctx context.Context, id string) (chatModel.Conversation, error) {
	var conv chatModel.Conversation
	val, err := s.store.Get(ctx, conversationKey(id))
	if s.store.IsNil(err) {
		return conv, appErrors.NotFound("conversation %s", id)
	} else if err != nil {
		return conv, fmt.Errorf("get conversation %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(val), &conv); err != nil {
		return conv, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	return conv, nil
}

func (s *RedisConversationStore) ListConversations(ctx context.Context, limit int) ([]chatModel.ConversationSummary, error) {
	if limit <= 0 {
		return []chatModel.ConversationSummary{}, nil
	}
	ids, err := s.store.SortedNewest(ctx, conversationIndexKey, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = conversationKey(id)
	}
	values, err := s.store.MGet(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	out := make([]chatModel.ConversationSummary, 0, len(ids))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// deleted between the two reads
			continue
		}
		var conv chatModel.Conversation
		if err := json.Unmarshal([]byte(raw), &conv); err != nil {
			return nil, fmt.Errorf("decode conversation %s: %w", ids[i], err)
		}
		count, err := s.store.ListLen(ctx, messagesKey(conv.Id))
		if err != nil {
			return nil, fmt.Errorf("count messages of %s: %w", conv.Id, err)
		}
		out = append(out, chatModel.ConversationSummary{Conversation: conv, MessageCount: int(count)})
	}
	return out, nil
}

func (s *RedisConversationStore) DeleteConversation(ctx context.Context, id string) error {
	if _, err := s.GetConversation(ctx, id); err != nil {
		return err
	}
	err := s.store.Tx(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, conversationKey(id), messagesKey(id))
		pipe.ZRem(ctx, conversationIndexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete conversation %s: %w", id, err)
	}
	return nil
}

// AppendMessage checks the conversation and writes under WATCH, so a
// conversation deleted concurrently is not brought back.
func (s *RedisConversationStore) AppendMessage(ctx context.Context, msg chatModel.Message) error {
	msgData, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	key := conversationKey(msg.ConversationId)

	err = s.store.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return appErrors.NotFound("conversation %s", msg.ConversationId)
		} else if err != nil {
			return err
		}
		var conv chatModel.Conversation
		if err := json.Unmarshal([]byte(val), &conv); err != nil {
			return fmt.Errorf("decode conversation: %w", err)
		}
		conv.UpdatedAt = msg.CreatedAt
		convData, err := json.Marshal(conv)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, messagesKey(conv.Id), msgData)
			pipe.Set(ctx, key, convData, 0)
			return nil
		})
		return err
	}, key)

	if appErrors.IsNotFound(err) {
		return err
	} else if err != nil {
		return fmt.Errorf("append message to %s: %w", msg.ConversationId, err)
	}
	return nil
}

func (s *RedisConversationStore) ListMessages(ctx context.Context, conversationId string) ([]chatModel.Message, error) {
	if _, err := s.GetConversation(ctx, conversationId); err != nil {
		return nil, err
	}
	raw, err := s.store.ListGetAll(ctx, messagesKey(conversationId))
	if err != nil {
		return nil, fmt.Errorf("list messages of %s: %w", conversationId, err)
	}
	out := make([]chatModel.Message, 0, len(raw))
	for _, r := range raw {
		var m chatModel.Message
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			return nil, fmt.Errorf("decode message of %s: %w", conversationId, err)
		}
		out = append(out, m)
	}
	return out, nil
}

type RedisDocumentStore struct {
	store *redisStore.Store
}

func NewRedisDocumentStore(store *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{store: store}
}

func (s *RedisDocumentStore) CreateDocument(ctx context.Context, doc commonModels.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := s.store.HashSet(ctx, documentsKey, doc.Id, data); err != nil {
		return fmt.Errorf("save document %s: %w", doc.SourcePath, err)
	}
	return nil
}

func (s *RedisDocumentStore) ListDocuments(ctx context.Context) ([]commonModels.Document, error) {
	all, err := s.store.HashGetAll(ctx, documentsKey)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	docs := make([]commonModels.Document, 0, len(all))
	for id, raw := range all {
		var d commonModels.Document
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
		docs = append(docs, d)
	}
	sortDocuments(docs)
	return docs, nil
}

func (s *RedisDocumentStore) DeleteAllDocuments(ctx context.Context) (int, error) {
	n, err := s.store.HashLen(ctx, documentsKey)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	if err := s.store.Del(ctx, documentsKey); err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	return int(n), nil
}

func sortDocuments(docs []commonModels.Document) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].IndexedAt.Equal(docs[j].IndexedAt) {
			return docs[i].SourcePath < docs[j].SourcePath
		}
		return docs[i].IndexedAt.Before(docs[j].IndexedAt)
	})
}
