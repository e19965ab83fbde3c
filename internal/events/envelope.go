package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	MessageCreated     EventType = "message.created"
	MessageDeleted     EventType = "message.deleted"
	MessageTagsUpdated EventType = "message.tags_updated"
	MessageLiked       EventType = "message.liked"
	MessageUnliked     EventType = "message.unliked"
	MessageResolved    EventType = "message.resolved"
	MessageUnresolved  EventType = "message.unresolved"
)

const AggregateMessage = "message"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     EventType       `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps payload for a message aggregate.
func NewEnvelope(eventType EventType, aggregateID string, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateType: AggregateMessage,
		AggregateID:   aggregateID,
		OccurredAt:    time.Now().UTC(),
		Payload:       raw,
	}, nil
}
