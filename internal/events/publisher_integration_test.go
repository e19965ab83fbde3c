//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"chat-messages/internal/config"
	"chat-messages/internal/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisherDeliversEnvelope(t *testing.T) {
	cfg := config.LoadTestConfig()
	if cfg.RedisAddr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())

	channel := "chat.messages.test." + uuid.NewString()
	sub := client.Subscribe(ctx, channel)
	t.Cleanup(func() { _ = sub.Close() })
	// Wait for the subscription to be confirmed before publishing.
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	env, err := events.NewEnvelope(events.MessageLiked, "5fe0cce861c8ea54018385af", map[string]int{"likesCount": 1})
	require.NoError(t, err)
	require.NoError(t, events.NewRedisPublisher(client, channel).Publish(ctx, env))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, channel, msg.Channel)

	var got events.Envelope
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, env.EventID, got.EventID)
	assert.Equal(t, events.MessageLiked, got.EventType)
	assert.Equal(t, events.AggregateMessage, got.AggregateType)
	assert.Equal(t, "5fe0cce861c8ea54018385af", got.AggregateID)
	assert.JSONEq(t, `{"likesCount":1}`, string(got.Payload))
}
