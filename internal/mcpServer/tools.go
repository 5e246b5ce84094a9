package mcpServer

import (
	"context"

	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/rag"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type SearchBookInput struct {
	Query   string `json:"query" jsonschema:"what to look for in the book"`
	Chapter string `json:"chapter,omitempty" jsonschema:"restrict results to one chapter, e.g. chapter-3"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of passages to return"`
}

type SearchBookOutput struct {
	Results []SourceOutput `json:"results"`
	Count   int            `json:"count"`
}

type SourceOutput struct {
	Text    string  `json:"text"`
	Source  string  `json:"source"`
	Chapter string  `json:"chapter"`
	Title   string  `json:"title"`
	Score   float32 `json:"score"`
}

type AskBookInput struct {
	Question     string `json:"question" jsonschema:"the question to answer from the book"`
	SelectedText string `json:"selected_text,omitempty" jsonschema:"a passage the question is about"`
	Chapter      string `json:"chapter,omitempty" jsonschema:"restrict retrieval to one chapter"`
}

type AskBookOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_book",
		Description: "Find passages of the book relevant to a query, best match first",
	}, s.handleSearchBook)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_book",
		Description: "Answer a question using passages retrieved from the book",
	}, s.handleAskBook)
}

func (s *Server) handleSearchBook(ctx context.Context, _ *mcp.CallToolRequest, input SearchBookInput) (*mcp.CallToolResult, SearchBookOutput, error) {
	results, err := s.answers.Retrieve(ctx, input.Query, vectorDB.ChapterFilter(input.Chapter), input.Limit)
	if err != nil {
		s.logger.FromContext(ctx).Warn("search_book failed", "err", err)
		return nil, SearchBookOutput{}, err
	}
	out := toSourceOutputs(results)
	return nil, SearchBookOutput{Results: out, Count: len(out)}, nil
}

func (s *Server) handleAskBook(ctx context.Context, _ *mcp.CallToolRequest, input AskBookInput) (*mcp.CallToolResult, AskBookOutput, error) {
	res, err := s.answers.Answer(ctx, rag.AnswerRequest{
		Question:     input.Question,
		SelectedText: input.SelectedText,
		Chapter:      input.Chapter,
	})
	if err != nil {
		s.logger.FromContext(ctx).Warn("ask_book failed", "err", err)
		return nil, AskBookOutput{}, err
	}
	return nil, AskBookOutput{Answer: res.Answer, Sources: toSourceOutputs(res.Sources)}, nil
}

func toSourceOutputs(results []commonModels.SourceResult) []SourceOutput {
	out := make([]SourceOutput, len(results))
	for i, r := range results {
		out[i] = SourceOutput{Text: r.Text, Source: r.Source, Chapter: r.Chapter, Title: r.Title, Score: r.Score}
	}
	return out
}
