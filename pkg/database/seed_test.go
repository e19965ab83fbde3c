package database

import (
	"context"
	"testing"

	"chat-messages/internal/repository"
	"chat-messages/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	data := repository.NewMessageData(memstore.NewMessageCollection())

	result, err := Seed(ctx, data, &SeedConfig{Conversations: 2, MessagesPerConversation: 5, Senders: 2})
	require.NoError(t, err)

	assert.Len(t, result.SenderIDs, 2)
	assert.Len(t, result.ConversationIDs, 2)
	require.Len(t, result.Messages, 10)

	third := result.Messages[2]
	assert.Equal(t, 1, third.LikesCount)
	assert.Equal(t, result.SenderIDs[1], third.Likes[0])

	last := result.Messages[4]
	assert.True(t, last.Resolved)
	assert.Len(t, last.Tags, 1)

	page, err := data.ListConversationMessages(ctx, result.ConversationIDs[0], repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, page, 5)
}

func TestSeedNeedsSender(t *testing.T) {
	data := repository.NewMessageData(memstore.NewMessageCollection())
	_, err := Seed(context.Background(), data, &SeedConfig{Conversations: 1, MessagesPerConversation: 1})
	assert.Error(t, err)
}
