package redisStore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
	Type   int
	logger *logger_i.Logger
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

// Open connects to one Redis logical database and closes the client when ctx
// ends. It fails if Redis does not answer a ping.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Addr == "" {
		opts.Addr = config.RedisAddr
	}
	client := redis.NewClient(&redis.Options{
		Addr:                  opts.Addr,
		Password:              opts.Password,
		DB:                    opts.DB,
		ContextTimeoutEnabled: true,
		ReadTimeout:           config.RedisIOTimeout,
		WriteTimeout:          config.RedisIOTimeout,
	})

	s := NewWithClient(client, opts.DB)

	pingCtx, cancel := context.WithTimeout(ctx, config.RedisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		s.logger.Error("Redis is offline", "addr", opts.Addr, "error", err)
		return nil, fmt.Errorf("redis %s db %d: %w", opts.Addr, opts.DB, err)
	}

	s.logger.Info("Redis store init successfully", "addr", opts.Addr)
	go s.closeOnDone(ctx)
	return s, nil
}

// NewWithClient wraps an existing client, e.g. one pointed at miniredis.
func NewWithClient(client *redis.Client, db int) *Store {
	return &Store{
		client: client,
		Type:   db,
		logger: logger_i.NewLogger("Redis Store").With("db", strconv.Itoa(db)),
	}
}

func (s *Store) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	s.logger.Info("Closing Redis store")
	if err := s.client.Close(); err != nil {
		s.logger.Error("Error closing redis client", "error", err)
		return
	}
	s.logger.Info("Redis store closed successfully")
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
