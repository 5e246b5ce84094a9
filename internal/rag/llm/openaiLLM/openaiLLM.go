package openaiLLM

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/rag/llm"
	"github.com/akolanti/BookRAG/pkg/logger_i"
	openai "github.com/sashabaranov/go-openai"
)

type Config struct {
	APIKey     string
	BaseURL    string
	Options    llm.Options
	HTTPClient *http.Client
}

type llmClient struct {
	client *openai.Client
	opts   llm.Options
	logger *logger_i.Logger
}

func New(cfg Config) (llm.Provider, error) {
	if cfg.APIKey == "" {
		return nil, appErrors.Validation("openai api key is required")
	}
	if cfg.Options.Model == "" {
		return nil, appErrors.Validation("chat model is required")
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}

	return &llmClient{
		client: openai.NewClientWithConfig(oc),
		opts:   cfg.Options,
		logger: logger_i.NewLogger("llm_openai"),
	}, nil
}

func (c *llmClient) request(messages []llm.Message) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:       c.opts.Model,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
		Messages:    make([]openai.ChatCompletionMessage, len(messages)),
	}
	for i, msg := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return req
}

func (c *llmClient) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	ctx, cancel := c.opts.Bound(ctx)
	defer cancel()
	resp, err := c.client.CreateChatCompletion(ctx, c.request(messages))
	if err != nil {
		c.logger.FromContext(ctx).Error("chat completion failed", "error", err)
		return "", appErrors.Upstream(appErrors.ServiceLLM, fmt.Errorf("create openai chat completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", appErrors.Upstream(appErrors.ServiceLLM, errors.New("openai chat completion returned no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *llmClient) GenerateStream(ctx context.Context, messages []llm.Message, onDelta func(string) error) error {
	log := c.logger.FromContext(ctx)
	req := c.request(messages)
	req.Stream = true

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		log.Error("opening chat stream failed", "error", err)
		return appErrors.Upstream(appErrors.ServiceLLM, fmt.Errorf("open openai chat stream: %w", err))
	}
	// closing releases the upstream connection on every exit path
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.Error("chat stream broke", "error", err)
			return appErrors.Upstream(appErrors.ServiceLLM, fmt.Errorf("read openai chat stream: %w", err))
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		if err := onDelta(delta); err != nil {
			return err
		}
	}
}
