package services

import (
	"context"

	"chat-messages/internal/domain/message"
	"chat-messages/internal/events"
	"chat-messages/internal/repository"
	chat_errors "chat-messages/pkg/errors"
	"chat-messages/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MessageService is the business layer over MessageData. It enforces who
// may change a message and announces every successful change.
type MessageService struct {
	data      *repository.MessageData
	publisher events.Publisher
	logger    *logger.Logger
}

func NewMessageService(data *repository.MessageData, publisher events.Publisher, l *logger.Logger) *MessageService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if l == nil {
		l = logger.NewNop()
	}
	return &MessageService{data: data, publisher: publisher, logger: l}
}

func (s *MessageService) Send(ctx context.Context, in message.CreateMessageInput, senderID primitive.ObjectID) (message.ChatMessage, error) {
	m, err := s.data.Create(ctx, in, senderID)
	if err != nil {
		s.logger.ErrorCtx(ctx, "create message failed", zap.Error(err))
		return message.ChatMessage{}, err
	}
	s.publish(ctx, events.MessageCreated, m)
	return m, nil
}

func (s *MessageService) Get(ctx context.Context, id string) (message.ChatMessage, error) {
	return s.data.GetMessage(ctx, id)
}

// Delete soft deletes a message. Only its sender may delete it.
func (s *MessageService) Delete(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) (message.ChatMessage, error) {
	existing, err := s.data.GetMessage(ctx, id.Hex())
	if err != nil {
		return message.ChatMessage{}, err
	}
	if existing.SenderID != userID {
		return message.ChatMessage{}, chat_errors.ErrForbidden
	}
	if existing.Deleted {
		return existing, nil
	}

	m, err := s.data.Delete(ctx, id)
	if err != nil {
		s.logger.ErrorCtx(ctx, "delete message failed", zap.String("message_id", id.Hex()), zap.Error(err))
		return message.ChatMessage{}, err
	}
	s.publish(ctx, events.MessageDeleted, m)
	return m, nil
}

func (s *MessageService) UpdateTags(ctx context.Context, id primitive.ObjectID, tags []message.Tag) (message.ChatMessage, error) {
	m, err := s.data.UpdateTags(ctx, id, tags)
	if err != nil {
		s.logger.ErrorCtx(ctx, "update tags failed", zap.String("message_id", id.Hex()), zap.Error(err))
		return message.ChatMessage{}, err
	}
	s.publish(ctx, events.MessageTagsUpdated, m)
	return m, nil
}

func (s *MessageService) Like(ctx context.Context, id, userID primitive.ObjectID) (message.ChatMessage, error) {
	return s.mutate(ctx, events.MessageLiked, id, func() (message.ChatMessage, error) {
		return s.data.Like(ctx, id, userID)
	})
}

func (s *MessageService) Unlike(ctx context.Context, id, userID primitive.ObjectID) (message.ChatMessage, error) {
	return s.mutate(ctx, events.MessageUnliked, id, func() (message.ChatMessage, error) {
		return s.data.Unlike(ctx, id, userID)
	})
}

func (s *MessageService) Resolve(ctx context.Context, id primitive.ObjectID) (message.ChatMessage, error) {
	return s.mutate(ctx, events.MessageResolved, id, func() (message.ChatMessage, error) {
		return s.data.Resolve(ctx, id)
	})
}

func (s *MessageService) Unresolve(ctx context.Context, id primitive.ObjectID) (message.ChatMessage, error) {
	return s.mutate(ctx, events.MessageUnresolved, id, func() (message.ChatMessage, error) {
		return s.data.Unresolve(ctx, id)
	})
}

func (s *MessageService) ListConversation(ctx context.Context, conversationID primitive.ObjectID, opts repository.ListOptions) ([]message.ChatMessage, error) {
	return s.data.ListConversationMessages(ctx, conversationID, opts)
}

func (s *MessageService) Health(ctx context.Context) error {
	return s.data.Ping(ctx)
}

func (s *MessageService) mutate(ctx context.Context, eventType events.EventType, id primitive.ObjectID, fn func() (message.ChatMessage, error)) (message.ChatMessage, error) {
	m, err := fn()
	if err != nil {
		s.logger.ErrorCtx(ctx, string(eventType)+" failed", zap.String("message_id", id.Hex()), zap.Error(err))
		return message.ChatMessage{}, err
	}
	s.publish(ctx, eventType, m)
	return m, nil
}

// publish never fails the caller: the write has already happened.
func (s *MessageService) publish(ctx context.Context, eventType events.EventType, m message.ChatMessage) {
	env, err := events.NewEnvelope(eventType, m.ID.Hex(), m)
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		s.logger.ErrorCtx(ctx, "publish event failed",
			zap.String("event_type", string(eventType)),
			zap.String("message_id", m.ID.Hex()),
			zap.Error(err))
		return
	}
	s.logger.InfoCtx(ctx, string(eventType), zap.String("message_id", m.ID.Hex()))
}
