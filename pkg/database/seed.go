package database

import (
	"context"
	"fmt"
	"log"

	"chat-messages/internal/domain/message"
	"chat-messages/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SeedConfig holds configuration for seeding development data
type SeedConfig struct {
	Conversations           int
	MessagesPerConversation int
	Senders                 int
}

// DefaultSeedConfig returns default seed configuration
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		Conversations:           3,
		MessagesPerConversation: 10,
		Senders:                 4,
	}
}

// SeedResult holds the result of the seeding operation
type SeedResult struct {
	SenderIDs       []primitive.ObjectID
	ConversationIDs []primitive.ObjectID
	Messages        []message.ChatMessage
}

var sampleTexts = []string{
	"Hey everyone 👋",
	"Has anyone looked at the build failure?",
	"I pushed a fix, can someone review?",
	"Looks good to me",
	"Moving this to a sub topic",
	"Thanks, that solved it",
}

// Seed writes sample conversations through MessageData so every message
// passes the same validation as API traffic. Every third message is liked by
// the next sender, every fifth is tagged and the last one of each
// conversation is resolved.
func Seed(ctx context.Context, data *repository.MessageData, cfg *SeedConfig) (*SeedResult, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}
	if cfg.Senders < 1 {
		return nil, fmt.Errorf("seed needs at least one sender")
	}

	result := &SeedResult{}
	for i := 0; i < cfg.Senders; i++ {
		result.SenderIDs = append(result.SenderIDs, primitive.NewObjectID())
	}

	log.Println("Starting development seeding...")

	for c := 0; c < cfg.Conversations; c++ {
		conversationID := primitive.NewObjectID()
		result.ConversationIDs = append(result.ConversationIDs, conversationID)

		for n := 0; n < cfg.MessagesPerConversation; n++ {
			sender := result.SenderIDs[n%len(result.SenderIDs)]
			m, err := data.Create(ctx, message.CreateMessageInput{
				ConversationID: conversationID,
				Text:           sampleTexts[n%len(sampleTexts)],
			}, sender)
			if err != nil {
				return nil, fmt.Errorf("seed message: %w", err)
			}

			if n%3 == 2 {
				liker := result.SenderIDs[(n+1)%len(result.SenderIDs)]
				if m, err = data.Like(ctx, m.ID, liker); err != nil {
					return nil, fmt.Errorf("seed like: %w", err)
				}
			}
			if n%5 == 4 {
				tags := []message.Tag{{ID: fmt.Sprintf("topic-%d-%d", c, n), Type: message.TagTypeSubTopic}}
				if m, err = data.UpdateTags(ctx, m.ID, tags); err != nil {
					return nil, fmt.Errorf("seed tags: %w", err)
				}
			}
			if n == cfg.MessagesPerConversation-1 {
				if m, err = data.Resolve(ctx, m.ID); err != nil {
					return nil, fmt.Errorf("seed resolve: %w", err)
				}
			}
			result.Messages = append(result.Messages, m)
		}
	}

	log.Printf("Seeded %d messages across %d conversations", len(result.Messages), len(result.ConversationIDs))
	return result, nil
}
