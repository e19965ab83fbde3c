package repository

import (
	"context"
	"time"

	"chat-messages/internal/domain/message"
	chat_errors "chat-messages/pkg/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultListLimit = 40
	MaxListLimit     = 100
)

// ListOptions pages through a conversation, newest first.
type ListOptions struct {
	Limit  int
	Before primitive.ObjectID
}

// MessageData is the data access object for chat messages. Every method
// issues exactly one request to the collection and returns store errors
// unchanged.
type MessageData struct {
	coll MessageCollection
	now  func() time.Time
}

func NewMessageData(coll MessageCollection) *MessageData {
	return &MessageData{coll: coll, now: time.Now}
}

func (d *MessageData) Create(ctx context.Context, in message.CreateMessageInput, senderID primitive.ObjectID) (message.ChatMessage, error) {
	if err := in.Validate(); err != nil {
		return message.ChatMessage{}, err
	}
	if senderID.IsZero() {
		return message.ChatMessage{}, chat_errors.Invalid("sender id is required")
	}

	// stores keep millisecond precision
	created := d.now().UTC().Truncate(time.Millisecond)
	m := message.NewChatMessage(in.ConversationID, senderID, in.Text, created)
	if err := d.coll.InsertOne(ctx, &m); err != nil {
		return message.ChatMessage{}, err
	}
	m.Populate()
	return m, nil
}

func (d *MessageData) GetMessage(ctx context.Context, id string) (message.ChatMessage, error) {
	oid, err := message.ParseID(id)
	if err != nil {
		return message.ChatMessage{}, err
	}
	m, err := d.coll.FindByID(ctx, oid)
	if err != nil {
		return message.ChatMessage{}, err
	}
	m.Populate()
	return m, nil
}

// Delete soft deletes the message. Deleting an already deleted message
// succeeds and returns it unchanged.
func (d *MessageData) Delete(ctx context.Context, id primitive.ObjectID) (message.ChatMessage, error) {
	return d.update(ctx, id, message.MarkDeleted())
}

// UpdateTags replaces the tag list wholesale.
func (d *MessageData) UpdateTags(ctx context.Context, id primitive.ObjectID, tags []message.Tag) (message.ChatMessage, error) {
	if err := message.ValidateTags(tags); err != nil {
		return message.ChatMessage{}, err
	}
	return d.update(ctx, id, message.ReplaceTags(tags))
}

func (d *MessageData) Like(ctx context.Context, id, userID primitive.ObjectID) (message.ChatMessage, error) {
	if userID.IsZero() {
		return message.ChatMessage{}, chat_errors.Invalid("user id is required")
	}
	return d.update(ctx, id, message.AddLike(userID))
}

func (d *MessageData) Unlike(ctx context.Context, id, userID primitive.ObjectID) (message.ChatMessage, error) {
	if userID.IsZero() {
		return message.ChatMessage{}, chat_errors.Invalid("user id is required")
	}
	return d.update(ctx, id, message.RemoveLike(userID))
}

func (d *MessageData) Resolve(ctx context.Context, id primitive.ObjectID) (message.ChatMessage, error) {
	return d.update(ctx, id, message.SetResolved(true))
}

func (d *MessageData) Unresolve(ctx context.Context, id primitive.ObjectID) (message.ChatMessage, error) {
	return d.update(ctx, id, message.SetResolved(false))
}

func (d *MessageData) ListConversationMessages(ctx context.Context, conversationID primitive.ObjectID, opts ListOptions) ([]message.ChatMessage, error) {
	if conversationID.IsZero() {
		return nil, chat_errors.Invalid("conversation id is required")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	items, err := d.coll.Find(ctx, message.ListQuery{
		ConversationID: conversationID,
		Before:         opts.Before,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Populate()
	}
	return items, nil
}

// DeleteMany physically removes every message. Administrative use only.
func (d *MessageData) DeleteMany(ctx context.Context) (int64, error) {
	return d.coll.DeleteMany(ctx)
}

func (d *MessageData) Ping(ctx context.Context) error {
	return d.coll.Ping(ctx)
}

func (d *MessageData) update(ctx context.Context, id primitive.ObjectID, u message.Update) (message.ChatMessage, error) {
	if id.IsZero() {
		return message.ChatMessage{}, chat_errors.Invalid("message id is required")
	}
	m, err := d.coll.UpdateByID(ctx, id, u)
	if err != nil {
		return message.ChatMessage{}, err
	}
	m.Populate()
	return m, nil
}
