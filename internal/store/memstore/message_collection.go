package memstore

import (
	"context"
	"sort"
	"sync"

	"chat-messages/internal/domain/message"
	chat_errors "chat-messages/pkg/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageCollection keeps messages in process memory. It backs the
// "memory" store driver and the unit tests.
type MessageCollection struct {
	mu   sync.RWMutex
	docs map[primitive.ObjectID]message.ChatMessage
}

func NewMessageCollection() *MessageCollection {
	return &MessageCollection{docs: make(map[primitive.ObjectID]message.ChatMessage)}
}

func (c *MessageCollection) InsertOne(ctx context.Context, m *message.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if _, exists := c.docs[m.ID]; exists {
		return chat_errors.Invalid("duplicate id %s", m.ID.Hex())
	}
	c.docs[m.ID] = clone(*m)
	return nil
}

func (c *MessageCollection) FindByID(ctx context.Context, id primitive.ObjectID) (message.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return message.ChatMessage{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.docs[id]
	if !ok {
		return message.ChatMessage{}, chat_errors.ErrNotFound
	}
	return clone(m), nil
}

func (c *MessageCollection) UpdateByID(ctx context.Context, id primitive.ObjectID, u message.Update) (message.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return message.ChatMessage{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.docs[id]
	if !ok {
		return message.ChatMessage{}, chat_errors.ErrNotFound
	}
	m = clone(m)
	u.Apply(&m)
	c.docs[id] = m
	return clone(m), nil
}

func (c *MessageCollection) Find(ctx context.Context, q message.ListQuery) ([]message.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]message.ChatMessage, 0)
	for _, m := range c.docs {
		if m.ConversationID != q.ConversationID {
			continue
		}
		if !q.Before.IsZero() && !lessID(m.ID, q.Before) {
			continue
		}
		items = append(items, clone(m))
	}
	sort.Slice(items, func(i, j int) bool { return lessID(items[j].ID, items[i].ID) })
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return items, nil
}

func (c *MessageCollection) DeleteMany(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	n := int64(len(c.docs))
	c.docs = make(map[primitive.ObjectID]message.ChatMessage)
	return n, nil
}

func (c *MessageCollection) Ping(ctx context.Context) error {
	return ctx.Err()
}

func lessID(a, b primitive.ObjectID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func clone(m message.ChatMessage) message.ChatMessage {
	out := m
	out.Likes = append([]primitive.ObjectID{}, m.Likes...)
	out.Tags = append([]message.Tag{}, m.Tags...)
	out.Reactions = make([]message.Reaction, len(m.Reactions))
	for i, r := range m.Reactions {
		r.UserIDs = append([]primitive.ObjectID{}, r.UserIDs...)
		out.Reactions[i] = r
	}
	return out
}
