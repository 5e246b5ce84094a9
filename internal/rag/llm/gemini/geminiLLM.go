package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
	"github.com/akolanti/BookRAG/internal/rag/llm"
	"github.com/akolanti/BookRAG/pkg/logger_i"
	"google.golang.org/genai"
)

type Config struct {
	APIKey     string
	Options    llm.Options
	HTTPClient *http.Client
}

type llmClient struct {
	client *genai.Client
	opts   llm.Options
	logger *logger_i.Logger
}

func New(ctx context.Context, cfg Config) (llm.Provider, error) {
	if cfg.APIKey == "" {
		return nil, appErrors.Validation("google api key is required")
	}
	if cfg.Options.Model == "" {
		return nil, appErrors.Validation("gemini model is required")
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	logger := logger_i.NewLogger("llm_gemini")
	logger.Info("Gemini client created", "model", cfg.Options.Model)
	return &llmClient{client: c, opts: cfg.Options, logger: logger}, nil
}

// toContents moves system messages into the system instruction and maps
// assistant turns onto the model role.
func toContents(messages []llm.Message) (*genai.Content, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			system = append(system, m.Content)
		case llm.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) == 0 {
		return nil, contents
	}
	return &genai.Content{Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}}}, contents
}

func (c *llmClient) config(system *genai.Content) *genai.GenerateContentConfig {
	temperature := c.opts.Temperature
	return &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       &temperature,
		MaxOutputTokens:   int32(c.opts.MaxTokens),
	}
}

func (c *llmClient) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	ctx, cancel := c.opts.Bound(ctx)
	defer cancel()
	system, contents := toContents(messages)
	result, err := c.client.Models.GenerateContent(ctx, c.opts.Model, contents, c.config(system))
	if err != nil {
		c.logger.FromContext(ctx).Error("gemini generation failed", "error", err)
		return "", appErrors.Upstream(appErrors.ServiceLLM, fmt.Errorf("gemini generate: %w", err))
	}
	return result.Text(), nil
}

func (c *llmClient) GenerateStream(ctx context.Context, messages []llm.Message, onDelta func(string) error) error {
	system, contents := toContents(messages)
	for chunk, err := range c.client.Models.GenerateContentStream(ctx, c.opts.Model, contents, c.config(system)) {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			c.logger.FromContext(ctx).Error("gemini stream broke", "error", err)
			return appErrors.Upstream(appErrors.ServiceLLM, fmt.Errorf("gemini stream: %w", err))
		}
		if chunk == nil {
			continue
		}
		if delta := chunk.Text(); delta != "" {
			if err := onDelta(delta); err != nil {
				return err
			}
		}
	}
	return nil
}
