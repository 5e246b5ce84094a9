package adapter

import (
	"github.com/akolanti/BookRAG/internal/api"
	"github.com/akolanti/BookRAG/internal/chat"
	"github.com/akolanti/BookRAG/internal/domain/chatModel"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
)

func ToChatInput(req api.ChatRequest) chat.Input {
	return chat.Input{
		ConversationId: req.ConversationID,
		Message:        req.Message,
		SelectedText:   req.SelectedText,
		Chapter:        req.Chapter,
	}
}

func ToChatResponse(out chat.Output) api.ChatResponse {
	return api.ChatResponse{
		ConversationID: out.ConversationId,
		MessageID:      out.MessageId,
		Answer:         out.Answer,
		Sources:        sourcesOrEmpty(out.Sources),
	}
}

func ToStreamFrame(ev chat.Event) api.StreamFrame {
	return api.StreamFrame{Type: string(ev.Type), Data: ev.Data}
}

func ToConversationItems(convs []chatModel.ConversationSummary) []api.ConversationListItem {
	items := make([]api.ConversationListItem, 0, len(convs))
	for _, c := range convs {
		items = append(items, api.ConversationListItem{
			Id:           c.Id,
			Title:        c.Title,
			CreatedAt:    c.CreatedAt,
			MessageCount: c.MessageCount,
		})
	}
	return items
}

func ToMessageItems(msgs []chatModel.Message) []api.MessageItem {
	items := make([]api.MessageItem, 0, len(msgs))
	for _, m := range msgs {
		item := api.MessageItem{
			Id:        m.Id,
			Role:      string(m.Role),
			Content:   m.Content,
			Sources:   m.Sources,
			CreatedAt: m.CreatedAt,
		}
		if m.SelectedText != "" {
			selected := m.SelectedText
			item.SelectedText = &selected
		}
		items = append(items, item)
	}
	return items
}

func sourcesOrEmpty(sources []commonModels.SourceResult) []commonModels.SourceResult {
	if sources == nil {
		return []commonModels.SourceResult{}
	}
	return sources
}

func ToSearchResponse(query, chapter string, results []commonModels.SourceResult) api.SearchResponse {
	return api.SearchResponse{Query: query, Chapter: chapter, Results: sourcesOrEmpty(results)}
}
