// Package postgresStore keeps conversations, messages and document rows in
// PostgreSQL.
package postgresStore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/domain/chatModel"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/pkg/logger_i"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool   *pgxpool.Pool
	logger *logger_i.Logger
}

// Open connects, checks the connection and ensures the schema. The pool is
// closed when ctx ends.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.PostgresPingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	s := &Store{pool: pool, logger: logger_i.NewLogger("Postgres Store")}
	go func() {
		<-ctx.Done()
		s.logger.Info("Closing Postgres pool")
		pool.Close()
	}()
	s.logger.Info("Postgres store init successfully")
	return s, nil
}

func (s *Store) CreateConversation(ctx context.Context, conv chatModel.Conversation) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversations (id, title, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		conv.Id, conv.Title, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create conversation %s: %w", conv.Id, err)
	}
	return nil
}

func (s *Store) GetConversation(ctx context.Context, id string) (chatModel.Conversation, error) {
	var conv chatModel.Conversation
	err := s.pool.QueryRow(ctx,
		`SELECT id, COALESCE(title, ''), created_at, updated_at FROM conversations WHERE id = $1`, id).
		Scan(&conv.Id, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return conv, appErrors.NotFound("conversation %s", id)
	}
	if err != nil {
		return conv, fmt.Errorf("get conversation %s: %w", id, err)
	}
	return conv, nil
}

func (s *Store) ListConversations(ctx context.Context, limit int) ([]chatModel.ConversationSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT c.id, COALESCE(c.title, ''), c.created_at, c.updated_at, COUNT(m.id)
		   FROM conversations c
		   LEFT JOIN messages m ON m.conversation_id = c.id
		  GROUP BY c.id
		  ORDER BY c.created_at DESC
		  LIMIT $1`, max(limit, 0))
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	out := []chatModel.ConversationSummary{}
	for rows.Next() {
		var c chatModel.ConversationSummary
		if err := rows.Scan(&c.Id, &c.Title, &c.CreatedAt, &c.UpdatedAt, &c.MessageCount); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete conversation %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return appErrors.NotFound("conversation %s", id)
	}
	return nil
}

func (s *Store) AppendMessage(ctx context.Context, msg chatModel.Message) error {
	var sources []byte
	if len(msg.Sources) > 0 {
		var err error
		if sources, err = json.Marshal(msg.Sources); err != nil {
			return err
		}
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE conversations SET updated_at = $2 WHERE id = $1`, msg.ConversationId, msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("touch conversation %s: %w", msg.ConversationId, err)
		}
		if tag.RowsAffected() == 0 {
			return appErrors.NotFound("conversation %s", msg.ConversationId)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO messages (id, conversation_id, role, content, selected_text, sources, created_at)
			 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)`,
			msg.Id, msg.ConversationId, string(msg.Role), msg.Content, msg.SelectedText, sources, msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		return nil
	})
}

func (s *Store) ListMessages(ctx context.Context, conversationId string) ([]chatModel.Message, error) {
	if _, err := s.GetConversation(ctx, conversationId); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, conversation_id, role, content, COALESCE(selected_text, ''), sources, created_at
		   FROM messages WHERE conversation_id = $1
		  ORDER BY created_at, seq`, conversationId)
	if err != nil {
		return nil, fmt.Errorf("list messages of %s: %w", conversationId, err)
	}
	defer rows.Close()

	out := []chatModel.Message{}
	for rows.Next() {
		var m chatModel.Message
		var role string
		var sources []byte
		if err := rows.Scan(&m.Id, &m.ConversationId, &role, &m.Content, &m.SelectedText, &sources, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = chatModel.Role(role)
		if len(sources) > 0 {
			if err := json.Unmarshal(sources, &m.Sources); err != nil {
				return nil, fmt.Errorf("decode sources of %s: %w", m.Id, err)
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) CreateDocument(ctx context.Context, doc commonModels.Document) error {
	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (id, title, source_path, chunk_count, indexed_at, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		doc.Id, doc.Title, doc.SourcePath, doc.ChunkCount, doc.IndexedAt, meta)
	if err != nil {
		return fmt.Errorf("save document %s: %w", doc.SourcePath, err)
	}
	return nil
}

func (s *Store) ListDocuments(ctx context.Context) ([]commonModels.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, source_path, chunk_count, indexed_at, metadata
		   FROM documents ORDER BY indexed_at, source_path`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := []commonModels.Document{}
	for rows.Next() {
		var d commonModels.Document
		var meta []byte
		if err := rows.Scan(&d.Id, &d.Title, &d.SourcePath, &d.ChunkCount, &d.IndexedAt, &meta); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &d.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata of %s: %w", d.Id, err)
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) DeleteAllDocuments(ctx context.Context) (int, error) {
	s.logger.FromContext(ctx).Warn("Deleting every document row")
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents`)
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
