//go:build integration

package pgstore_test

import (
	"context"
	"testing"

	"chat-messages/internal/config"
	"chat-messages/internal/domain/message"
	"chat-messages/internal/repository"
	"chat-messages/internal/store/pgstore"
	"chat-messages/pkg/database"
	chat_errors "chat-messages/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newMessageData(t *testing.T) *repository.MessageData {
	t.Helper()
	cfg := config.LoadTestConfig()
	if cfg.PostgresDSN == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	pool, err := database.ConnectPostgres(ctx, cfg.PostgresDSN)
	require.NoError(t, err)

	coll := pgstore.NewMessageCollection(pool)
	require.NoError(t, coll.EnsureSchema(ctx))
	data := repository.NewMessageData(coll)

	_, err = data.DeleteMany(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = data.DeleteMany(context.Background())
		pool.Close()
	})
	return data
}

func TestPostgresRoundTrip(t *testing.T) {
	ctx := context.Background()
	data := newMessageData(t)
	senderID := primitive.NewObjectID()

	sent, err := data.Create(ctx, message.CreateMessageInput{ConversationID: primitive.NewObjectID(), Text: "Hello world"}, senderID)
	require.NoError(t, err)

	got, err := data.GetMessage(ctx, sent.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, sent, got)
}

func TestPostgresSoftDeleteAndTags(t *testing.T) {
	ctx := context.Background()
	data := newMessageData(t)
	tags := []message.Tag{{ID: primitive.NewObjectID().Hex(), Type: message.TagTypeSubTopic}}

	m, err := data.Create(ctx, message.CreateMessageInput{ConversationID: primitive.NewObjectID(), Text: "bye"}, primitive.NewObjectID())
	require.NoError(t, err)

	deleted, err := data.Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)

	tagged, err := data.UpdateTags(ctx, m.ID, tags)
	require.NoError(t, err)
	assert.Equal(t, tags, tagged.Tags)
	assert.True(t, tagged.Deleted)

	_, err = data.Delete(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, chat_errors.ErrNotFound)
}

func TestPostgresListConversationMessages(t *testing.T) {
	ctx := context.Background()
	data := newMessageData(t)
	conversationID := primitive.NewObjectID()

	for _, text := range []string{"one", "two", "three"} {
		_, err := data.Create(ctx, message.CreateMessageInput{ConversationID: conversationID, Text: text}, primitive.NewObjectID())
		require.NoError(t, err)
	}

	page, err := data.ListConversationMessages(ctx, conversationID, repository.ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "three", page[0].Text)
	assert.Equal(t, "two", page[1].Text)
}
