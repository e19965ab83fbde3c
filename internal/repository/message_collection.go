package repository

import (
	"context"

	"chat-messages/internal/domain/message"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageCollection is the storage contract MessageData depends on.
// Implementations translate a missing document into chat_errors.ErrNotFound
// and transport failures into chat_errors.ErrServiceUnavailable.
type MessageCollection interface {
	// InsertOne stores m, assigning m.ID when it is zero.
	InsertOne(ctx context.Context, m *message.ChatMessage) error
	FindByID(ctx context.Context, id primitive.ObjectID) (message.ChatMessage, error)
	// UpdateByID applies u atomically and returns the document after the update.
	UpdateByID(ctx context.Context, id primitive.ObjectID, u message.Update) (message.ChatMessage, error)
	Find(ctx context.Context, q message.ListQuery) ([]message.ChatMessage, error)
	DeleteMany(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}
