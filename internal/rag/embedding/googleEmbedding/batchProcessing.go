package googleEmbedding

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/BookRAG/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// the embedContent endpoint takes at most 100 contents per request
const maxTextsPerCall = 100

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))

	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

func partition(texts []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		out = append(out, texts[start:end])
	}
	return out
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr.Code == http.StatusTooManyRequests {
		return true
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		return true
	}
	return false
}

// doCall makes a single request. Rate limits are logged and returned like
// any other failure; retrying is left to the caller.
func (c *client) doCall(ctx context.Context, content []*genai.Content, task string, log *logger_i.Logger) (*genai.EmbedContentResponse, error) {
	conf := &genai.EmbedContentConfig{OutputDimensionality: &c.dimension, TaskType: task}

	res, err := c.embed(ctx, c.model, content, conf)
	if err != nil && isRateLimited(err) {
		log.Warn("Rate limit hit", "model", c.model)
	}
	return res, err
}
