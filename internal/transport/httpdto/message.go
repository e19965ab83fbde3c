package httpdto

import (
	"chat-messages/internal/domain/message"
)

type CreateMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
}

type TagRequest struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type UpdateTagsRequest struct {
	Tags []TagRequest `json:"tags"`
}

func (r UpdateTagsRequest) ToDomain() []message.Tag {
	tags := make([]message.Tag, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, message.Tag{ID: t.ID, Type: message.TagType(t.Type)})
	}
	return tags
}

// MessageListResponse is one page of a conversation. NextBefore is empty on
// the last page.
type MessageListResponse struct {
	Messages   []message.ChatMessage `json:"messages"`
	NextBefore string                `json:"nextBefore,omitempty"`
}

func NewMessageListResponse(items []message.ChatMessage, limit int) MessageListResponse {
	if items == nil {
		items = []message.ChatMessage{}
	}
	resp := MessageListResponse{Messages: items}
	if limit > 0 && len(items) == limit {
		resp.NextBefore = items[len(items)-1].ID.Hex()
	}
	return resp
}
